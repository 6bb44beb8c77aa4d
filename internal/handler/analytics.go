package handler

import (
	"net/http"
	"time"

	"habit-goal/internal/model"
	"habit-goal/internal/service"

	"github.com/gin-gonic/gin"
)

type AnalyticsHandler struct {
	svc *service.AnalyticsService
}

func NewAnalyticsHandler(svc *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{svc: svc}
}

// GET /api/analytics/weekly
func (h *AnalyticsHandler) Weekly(c *gin.Context) {
	summary, err := h.svc.WeeklySummary(c.Request.Context(), c.GetInt("user_id"), time.Now())
	if err != nil {
		fail(c, err)
		return
	}
	if summary == nil {
		summary = []model.WeeklyHabitSummary{}
	}
	c.JSON(http.StatusOK, summary)
}

// GET /api/analytics/overview
func (h *AnalyticsHandler) Overview(c *gin.Context) {
	overview, err := h.svc.Overview(c.Request.Context(), c.GetInt("user_id"), time.Now())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, overview)
}
