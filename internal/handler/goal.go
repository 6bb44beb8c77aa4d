package handler

import (
	"net/http"
	"time"

	"habit-goal/internal/logger"
	"habit-goal/internal/model"
	"habit-goal/internal/service"

	"github.com/gin-gonic/gin"
)

type GoalHandler struct {
	svc *service.GoalService
}

func NewGoalHandler(svc *service.GoalService) *GoalHandler {
	return &GoalHandler{svc: svc}
}

// POST /api/goals
func (h *GoalHandler) Create(c *gin.Context) {
	var req model.CreateGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	goal, err := h.svc.Create(c.Request.Context(), c.GetInt("user_id"), req)
	if err != nil {
		fail(c, err)
		return
	}
	logger.Info("goal.created", "uid", goal.UserID, "goal", goal.ID)
	c.JSON(http.StatusOK, goal)
}

// GET /api/goals
func (h *GoalHandler) List(c *gin.Context) {
	goals, err := h.svc.List(c.Request.Context(), c.GetInt("user_id"))
	if err != nil {
		fail(c, err)
		return
	}
	if goals == nil {
		goals = []model.Goal{}
	}
	c.JSON(http.StatusOK, goals)
}

// GET /api/goals/:id
func (h *GoalHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	goal, err := h.svc.Get(c.Request.Context(), c.GetInt("user_id"), id, time.Now())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, goal)
}

// PUT /api/goals/:id
func (h *GoalHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req model.UpdateGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	goal, err := h.svc.Update(c.Request.Context(), c.GetInt("user_id"), id, req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, goal)
}

// DELETE /api/goals/:id
func (h *GoalHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), c.GetInt("user_id"), id); err != nil {
		fail(c, err)
		return
	}
	logger.Info("goal.deleted", "uid", c.GetInt("user_id"), "goal", id)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// POST /api/goals/:id/habits
func (h *GoalHandler) LinkHabit(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req model.LinkHabitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	link, err := h.svc.LinkHabit(c.Request.Context(), c.GetInt("user_id"), id, req.HabitID, req.ContributionWeight)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, link)
}

// DELETE /api/goals/:id/habits/:habitId
func (h *GoalHandler) UnlinkHabit(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	habitID, ok := pathID(c, "habitId")
	if !ok {
		return
	}
	if err := h.svc.UnlinkHabit(c.Request.Context(), c.GetInt("user_id"), id, habitID); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// POST /api/goals/:id/milestones
func (h *GoalHandler) AddMilestone(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req model.CreateMilestoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	m, err := h.svc.AddMilestone(c.Request.Context(), c.GetInt("user_id"), id, req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

// GET /api/goals/:id/milestones
func (h *GoalHandler) ListMilestones(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	milestones, err := h.svc.ListMilestones(c.Request.Context(), c.GetInt("user_id"), id)
	if err != nil {
		fail(c, err)
		return
	}
	if milestones == nil {
		milestones = []model.Milestone{}
	}
	c.JSON(http.StatusOK, milestones)
}

// PUT /api/milestones/:id/progress
func (h *GoalHandler) SetMilestoneProgress(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req model.UpdateMilestoneProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Progress == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	m, err := h.svc.SetMilestoneProgress(c.Request.Context(), c.GetInt("user_id"), id, *req.Progress, time.Now())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

// POST /api/milestones/:id/complete
func (h *GoalHandler) CompleteMilestone(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	m, err := h.svc.CompleteMilestone(c.Request.Context(), c.GetInt("user_id"), id, time.Now())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

// DELETE /api/milestones/:id
func (h *GoalHandler) DeleteMilestone(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteMilestone(c.Request.Context(), c.GetInt("user_id"), id); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// GET /api/goals/:id/progress
func (h *GoalHandler) Progress(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	report, err := h.svc.Progress(c.Request.Context(), c.GetInt("user_id"), id, time.Now())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// GET /api/goals/:id/insights
func (h *GoalHandler) Insights(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	report, err := h.svc.Insights(c.Request.Context(), c.GetInt("user_id"), id, time.Now())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
