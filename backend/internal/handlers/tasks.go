package handlers

import (
	"net/http"

	"github.com/muhuuh/todo-organisor-sub000/backend/internal/board"
	"github.com/muhuuh/todo-organisor-sub000/backend/internal/middleware"
	"github.com/muhuuh/todo-organisor-sub000/backend/internal/models"
	"github.com/muhuuh/todo-organisor-sub000/backend/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
)

type TaskHandler struct {
	stores *store.Manager
}

func NewTaskHandler(stores *store.Manager) *TaskHandler {
	return &TaskHandler{stores: stores}
}

func (h *TaskHandler) storeFor(c *gin.Context) (*store.TaskStore, bool) {
	userID, _ := middleware.UserID(c)
	s, err := h.stores.For(c.Request.Context(), userID)
	if err != nil {
		handleStoreError(c, err)
		return nil, false
	}
	return s, true
}

// BucketView is one column of the board: its tasks in display order plus the
// order project groups are rendered in.
type BucketView struct {
	Bucket     string        `json:"bucket"`
	GroupOrder []string      `json:"group_order"`
	Tasks      []models.Task `json:"tasks"`
}

// GetBoard returns the active tasks arranged per bucket.
func (h *TaskHandler) GetBoard(c *gin.Context) {
	s, ok := h.storeFor(c)
	if !ok {
		return
	}

	active := s.Active()
	buckets := make([]BucketView, 0, len(models.Buckets))
	for _, bucket := range models.Buckets {
		var inBucket []models.Task
		for _, t := range active {
			if t.Bucket == bucket {
				inBucket = append(inBucket, t)
			}
		}
		sorted := board.SortByOrder(inBucket)
		groups := board.GroupByProject(sorted)
		buckets = append(buckets, BucketView{
			Bucket:     bucket,
			GroupOrder: board.GroupDisplayOrder(groups),
			Tasks:      sorted,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"buckets": buckets,
		"version": s.Version(),
	})
}

// GetTasks returns the flat active list.
func (h *TaskHandler) GetTasks(c *gin.Context) {
	s, ok := h.storeFor(c)
	if !ok {
		return
	}

	tasks := s.Active()
	if bucket := c.Query("bucket"); bucket != "" {
		if !models.ValidBucket(bucket) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown bucket: " + bucket})
			return
		}
		filtered := make([]models.Task, 0, len(tasks))
		for _, t := range tasks {
			if t.Bucket == bucket {
				filtered = append(filtered, t)
			}
		}
		tasks = filtered
	}

	c.JSON(http.StatusOK, gin.H{
		"tasks":   tasks,
		"version": s.Version(),
	})
}

// GetArchive returns the completed/archived list.
func (h *TaskHandler) GetArchive(c *gin.Context) {
	s, ok := h.storeFor(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"tasks":   s.Completed(),
		"version": s.Version(),
	})
}

func (h *TaskHandler) CreateTask(c *gin.Context) {
	var taskInput struct {
		SubTask      string `json:"sub_task" binding:"required"`
		MainTask     string `json:"main_task"`
		Category     string `json:"category"`
		Importance   string `json:"importance"`
		TimeEstimate *int   `json:"time_estimate"`
		Bucket       string `json:"bucket"`
	}
	if err := c.ShouldBindJSON(&taskInput); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s, ok := h.storeFor(c)
	if !ok {
		return
	}

	task, err := s.AddTask(c.Request.Context(), models.Task{
		SubTask:      taskInput.SubTask,
		MainTask:     taskInput.MainTask,
		Category:     taskInput.Category,
		Importance:   taskInput.Importance,
		TimeEstimate: taskInput.TimeEstimate,
		Bucket:       taskInput.Bucket,
	})
	if err != nil {
		handleStoreError(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

// UpdateTaskField applies one editable-field change.
func (h *TaskHandler) UpdateTaskField(c *gin.Context) {
	id := uuid.FromStringOrNil(c.Param("id"))

	var patch struct {
		Field string      `json:"field" binding:"required"`
		Value interface{} `json:"value"`
	}
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s, ok := h.storeFor(c)
	if !ok {
		return
	}
	if err := s.UpdateField(c.Request.Context(), id, patch.Field, patch.Value); err != nil {
		handleStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "task updated successfully"})
}

func (h *TaskHandler) ToggleCompletion(c *gin.Context) {
	id := uuid.FromStringOrNil(c.Param("id"))

	var body struct {
		Completed bool `json:"completed"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s, ok := h.storeFor(c)
	if !ok {
		return
	}
	if err := s.ToggleCompletion(c.Request.Context(), id, body.Completed); err != nil {
		handleStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "task updated successfully"})
}

func (h *TaskHandler) ArchiveTask(c *gin.Context) {
	id := uuid.FromStringOrNil(c.Param("id"))

	s, ok := h.storeFor(c)
	if !ok {
		return
	}
	if err := s.ArchiveTask(c.Request.Context(), id); err != nil {
		handleStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "task archived"})
}

func (h *TaskHandler) UnarchiveTask(c *gin.Context) {
	id := uuid.FromStringOrNil(c.Param("id"))

	s, ok := h.storeFor(c)
	if !ok {
		return
	}
	if err := s.UnarchiveTask(c.Request.Context(), id); err != nil {
		handleStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "task restored"})
}

func (h *TaskHandler) DeleteTask(c *gin.Context) {
	id := uuid.FromStringOrNil(c.Param("id"))

	s, ok := h.storeFor(c)
	if !ok {
		return
	}
	if err := s.DeleteTask(c.Request.Context(), id); err != nil {
		handleStoreError(c, err)
		return
	}
	c.JSON(http.StatusNoContent, nil)
}

// MoveTask resolves a drag gesture into ordering updates and persists them.
func (h *TaskHandler) MoveTask(c *gin.Context) {
	var intent board.DragIntent
	if err := c.ShouldBindJSON(&intent); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s, ok := h.storeFor(c)
	if !ok {
		return
	}
	updates, err := s.MoveTask(c.Request.Context(), intent)
	if err != nil {
		handleStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"updates": updates,
		"version": s.Version(),
	})
}

// ReorderTasks applies a precomputed ordering batch.
func (h *TaskHandler) ReorderTasks(c *gin.Context) {
	var body struct {
		Updates []board.SortUpdate `json:"updates" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s, ok := h.storeFor(c)
	if !ok {
		return
	}
	if err := s.ReorderTasks(c.Request.Context(), body.Updates); err != nil {
		handleStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"version": s.Version()})
}
