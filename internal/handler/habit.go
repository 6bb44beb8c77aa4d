package handler

import (
	"net/http"
	"strconv"
	"time"

	"habit-goal/internal/logger"
	"habit-goal/internal/model"
	"habit-goal/internal/service"

	"github.com/gin-gonic/gin"
)

type HabitHandler struct {
	svc *service.HabitService
}

func NewHabitHandler(svc *service.HabitService) *HabitHandler {
	return &HabitHandler{svc: svc}
}

func pathID(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

// POST /api/habits
func (h *HabitHandler) Create(c *gin.Context) {
	var req model.CreateHabitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	habit, err := h.svc.Create(c.Request.Context(), c.GetInt("user_id"), req, time.Now())
	if err != nil {
		fail(c, err)
		return
	}
	logger.Info("habit.created", "uid", habit.UserID, "habit", habit.ID)
	c.JSON(http.StatusOK, habit)
}

// GET /api/habits
func (h *HabitHandler) List(c *gin.Context) {
	habits, err := h.svc.List(c.Request.Context(), c.GetInt("user_id"), time.Now())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, habits)
}

// GET /api/habits/:id
func (h *HabitHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	habit, err := h.svc.Get(c.Request.Context(), c.GetInt("user_id"), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, habit)
}

// PUT /api/habits/:id
func (h *HabitHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req model.UpdateHabitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	habit, err := h.svc.Update(c.Request.Context(), c.GetInt("user_id"), id, req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, habit)
}

// DELETE /api/habits/:id
func (h *HabitHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), c.GetInt("user_id"), id); err != nil {
		fail(c, err)
		return
	}
	logger.Info("habit.deleted", "uid", c.GetInt("user_id"), "habit", id)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// POST /api/habits/:id/completions
func (h *HabitHandler) ToggleCompletion(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req model.ToggleCompletionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	now := time.Now()
	completed, err := h.svc.ToggleCompletion(c.Request.Context(), c.GetInt("user_id"), id, req.Date, req.Quality, now)
	if err != nil {
		fail(c, err)
		return
	}
	date := req.Date
	if date == "" {
		date = now.UTC().Format("2006-01-02")
	}
	c.JSON(http.StatusOK, model.ToggleCompletionResponse{Completed: completed, Date: date})
}

// GET /api/habits/:id/completions
func (h *HabitHandler) ListCompletions(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	completions, err := h.svc.ListCompletions(c.Request.Context(), c.GetInt("user_id"), id)
	if err != nil {
		fail(c, err)
		return
	}
	if completions == nil {
		completions = []model.HabitCompletion{}
	}
	c.JSON(http.StatusOK, completions)
}
