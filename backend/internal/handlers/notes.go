package handlers

import (
	"net/http"

	"github.com/muhuuh/todo-organisor-sub000/backend/internal/middleware"
	"github.com/muhuuh/todo-organisor-sub000/backend/internal/models"
	"github.com/muhuuh/todo-organisor-sub000/backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
)

type NoteHandler struct {
	noteService services.NoteService
}

func NewNoteHandler(noteService services.NoteService) *NoteHandler {
	return &NoteHandler{noteService: noteService}
}

func (h *NoteHandler) CreateNote(c *gin.Context) {
	var noteInput struct {
		Title   string   `json:"title" binding:"required"`
		Content string   `json:"content"`
		Tags    []string `json:"tags"`
	}
	if err := c.ShouldBindJSON(&noteInput); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, _ := middleware.UserID(c)
	note, err := h.noteService.CreateNote(c.Request.Context(), models.Note{
		UserID:  userID,
		Title:   noteInput.Title,
		Content: noteInput.Content,
		Tags:    models.StringList(noteInput.Tags),
	})
	if err != nil {
		handleNotFoundError(c, err, "note")
		return
	}
	c.JSON(http.StatusCreated, note)
}

// GetNotes lists notes, optionally filtered by ?tag= and ?q=.
func (h *NoteHandler) GetNotes(c *gin.Context) {
	userID, _ := middleware.UserID(c)

	notes, err := h.noteService.GetNotes(c.Request.Context(), userID, services.NoteFilter{
		Tag:    c.Query("tag"),
		Search: c.Query("q"),
	})
	if err != nil {
		handleNotFoundError(c, err, "note")
		return
	}
	c.JSON(http.StatusOK, gin.H{"notes": notes})
}

func (h *NoteHandler) GetNoteByID(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	id := uuid.FromStringOrNil(c.Param("id"))

	note, err := h.noteService.GetNoteByID(c.Request.Context(), id, userID)
	if err != nil {
		handleNotFoundError(c, err, "note")
		return
	}
	c.JSON(http.StatusOK, note)
}

func (h *NoteHandler) UpdateNote(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	id := uuid.FromStringOrNil(c.Param("id"))

	var noteInput struct {
		Title   string   `json:"title" binding:"required"`
		Content string   `json:"content"`
		Tags    []string `json:"tags"`
	}
	if err := c.ShouldBindJSON(&noteInput); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	note, err := h.noteService.UpdateNote(c.Request.Context(), id, userID, noteInput.Title, noteInput.Content, noteInput.Tags)
	if err != nil {
		handleNotFoundError(c, err, "note")
		return
	}
	c.JSON(http.StatusOK, note)
}

func (h *NoteHandler) DeleteNote(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	id := uuid.FromStringOrNil(c.Param("id"))

	if err := h.noteService.DeleteNote(c.Request.Context(), id, userID); err != nil {
		handleNotFoundError(c, err, "note")
		return
	}
	c.JSON(http.StatusNoContent, nil)
}

func (h *NoteHandler) GetTags(c *gin.Context) {
	userID, _ := middleware.UserID(c)

	tags, err := h.noteService.ListTags(c.Request.Context(), userID)
	if err != nil {
		handleNotFoundError(c, err, "note")
		return
	}
	c.JSON(http.StatusOK, gin.H{"tags": tags})
}
