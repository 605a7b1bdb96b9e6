package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/muhuuh/todo-organisor-sub000/backend/internal/middleware"
	"github.com/muhuuh/todo-organisor-sub000/backend/internal/models"
	"github.com/muhuuh/todo-organisor-sub000/backend/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ingestSchema guards the machine-facing capture endpoint. Authenticated
// callers still get their payloads validated before anything hits the store.
const ingestSchema = `{
	"type": "object",
	"required": ["sub_task"],
	"additionalProperties": false,
	"properties": {
		"sub_task":      {"type": "string", "minLength": 1, "maxLength": 500},
		"main_task":     {"type": "string", "maxLength": 200},
		"category":      {"type": "string", "maxLength": 100},
		"importance":    {"enum": ["Low", "Medium", "High"]},
		"time_estimate": {"type": "integer", "minimum": 0},
		"bucket":        {"enum": ["Today", "Tomorrow", "Short-Term", "Mid-Term", "Long-Term", "On Hold"]}
	}
}`

var compiledIngestSchema = jsonschema.MustCompileString("ingest.json", ingestSchema)

type IngestHandler struct {
	stores *store.Manager
}

func NewIngestHandler(stores *store.Manager) *IngestHandler {
	return &IngestHandler{stores: stores}
}

// Ingest captures a task sent by an external tool (shortcuts, email hooks).
// The caller is identified by APIKeyMiddleware; defaults fill everything but
// the title.
func (h *IngestHandler) Ingest(c *gin.Context) {
	var payload interface{}
	if err := json.NewDecoder(c.Request.Body).Decode(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		return
	}
	if err := compiledIngestSchema.Validate(payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	fields, _ := payload.(map[string]interface{})
	draft := models.Task{
		SubTask: stringField(fields, "sub_task"),
		Bucket:  models.BucketToday,
	}
	if v := stringField(fields, "main_task"); v != "" {
		draft.MainTask = v
	}
	if v := stringField(fields, "category"); v != "" {
		draft.Category = v
	}
	if v := stringField(fields, "importance"); v != "" {
		draft.Importance = v
	}
	if v := stringField(fields, "bucket"); v != "" {
		draft.Bucket = v
	}
	if v, ok := fields["time_estimate"].(float64); ok {
		minutes := int(v)
		draft.TimeEstimate = &minutes
	}

	userID, _ := middleware.UserID(c)
	s, err := h.stores.For(c.Request.Context(), userID)
	if err != nil {
		handleStoreError(c, err)
		return
	}

	task, err := s.AddTask(c.Request.Context(), draft)
	if err != nil {
		handleStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "task captured",
		"task":    task,
	})
}

func stringField(fields map[string]interface{}, key string) string {
	v, _ := fields[key].(string)
	return v
}
