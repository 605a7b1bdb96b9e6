package handlers

import (
	"net/http"

	"github.com/muhuuh/todo-organisor-sub000/backend/internal/middleware"
	"github.com/muhuuh/todo-organisor-sub000/backend/internal/models"
	"github.com/muhuuh/todo-organisor-sub000/backend/internal/services"

	"github.com/gin-gonic/gin"
)

type GoalHandler struct {
	goalService services.GoalService
}

func NewGoalHandler(goalService services.GoalService) *GoalHandler {
	return &GoalHandler{goalService: goalService}
}

func (h *GoalHandler) GetGoals(c *gin.Context) {
	userID, _ := middleware.UserID(c)

	goals, err := h.goalService.GetGoals(c.Request.Context(), userID)
	if err != nil {
		handleNotFoundError(c, err, "goal")
		return
	}
	c.JSON(http.StatusOK, gin.H{"goals": goals})
}

// SetGoal upserts the weekly target for one goal type.
func (h *GoalHandler) SetGoal(c *gin.Context) {
	var goalInput struct {
		GoalType string `json:"goal_type" binding:"required"`
		Target   int    `json:"target" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&goalInput); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if goalInput.GoalType != models.GoalTypeFocusHours && goalInput.GoalType != models.GoalTypeCompletedTasks {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown goal type"})
		return
	}

	userID, _ := middleware.UserID(c)
	goal, err := h.goalService.UpsertGoal(c.Request.Context(), userID, goalInput.GoalType, goalInput.Target)
	if err != nil {
		handleNotFoundError(c, err, "goal")
		return
	}
	c.JSON(http.StatusOK, goal)
}

func (h *GoalHandler) DeleteGoal(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	goalType := c.Param("goal_type")

	if err := h.goalService.DeleteGoal(c.Request.Context(), userID, goalType); err != nil {
		handleNotFoundError(c, err, "goal")
		return
	}
	c.JSON(http.StatusNoContent, nil)
}
