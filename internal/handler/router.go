package handler

import (
	"habit-goal/internal/config"
	"habit-goal/internal/middleware"
	"habit-goal/internal/progress"
	"habit-goal/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// NewRouter wires services, handlers and routes onto one gin engine.
func NewRouter(db *gorm.DB, cfg *config.Config) *gin.Engine {
	engine := progress.NewEngine(progress.Config{
		DefaultTargetAmount: cfg.Goals.DefaultTargetAmount,
		AchievementWeight:   cfg.Goals.AchievementWeight,
		MilestoneWeight:     cfg.Goals.MilestoneWeight,
		PaceThreshold:       cfg.Goals.PaceThreshold,
	})

	secret := []byte(cfg.Auth.JWTSecret)
	authH := NewAuthHandler(service.NewAuthService(db), secret)
	habitH := NewHabitHandler(service.NewHabitService(db))
	goalH := NewGoalHandler(service.NewGoalService(db, engine))
	analyticsH := NewAnalyticsHandler(service.NewAnalyticsService(db))
	importH := NewImportHandler(db)

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	r.POST("/api/auth/register", authH.Register)
	r.POST("/api/auth/login", authH.Login)

	api := r.Group("/api", middleware.JWTAuth(secret))
	api.GET("/profile", authH.Profile)
	api.PUT("/profile", authH.UpdateProfile)

	api.POST("/habits", habitH.Create)
	api.GET("/habits", habitH.List)
	api.GET("/habits/:id", habitH.Get)
	api.PUT("/habits/:id", habitH.Update)
	api.DELETE("/habits/:id", habitH.Delete)
	api.POST("/habits/:id/completions", habitH.ToggleCompletion)
	api.GET("/habits/:id/completions", habitH.ListCompletions)

	api.POST("/goals", goalH.Create)
	api.GET("/goals", goalH.List)
	api.GET("/goals/:id", goalH.Get)
	api.PUT("/goals/:id", goalH.Update)
	api.DELETE("/goals/:id", goalH.Delete)
	api.GET("/goals/:id/progress", goalH.Progress)
	api.GET("/goals/:id/insights", goalH.Insights)
	api.POST("/goals/:id/habits", goalH.LinkHabit)
	api.DELETE("/goals/:id/habits/:habitId", goalH.UnlinkHabit)
	api.POST("/goals/:id/milestones", goalH.AddMilestone)
	api.GET("/goals/:id/milestones", goalH.ListMilestones)
	api.PUT("/milestones/:id/progress", goalH.SetMilestoneProgress)
	api.POST("/milestones/:id/complete", goalH.CompleteMilestone)
	api.DELETE("/milestones/:id", goalH.DeleteMilestone)

	api.GET("/analytics/weekly", analyticsH.Weekly)
	api.GET("/analytics/overview", analyticsH.Overview)

	api.POST("/import/preview", importH.Preview)
	api.POST("/import/confirm", importH.Confirm)

	return r
}
