package main

import (
	"flag"
	"log/slog"
	"os"

	"habit-goal/internal/config"
	"habit-goal/internal/handler"
	applog "habit-goal/internal/logger"
	"habit-goal/internal/model"
)

func main() {
	configFile := flag.String("config", "", "config file path (e.g. etc/config-dev.yaml)")
	flag.Parse()

	cfg := config.Load(*configFile)
	applog.Init(cfg.Log)
	db, err := cfg.OpenGormDB()
	if err != nil {
		slog.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	if err := db.AutoMigrate(
		&model.User{}, &model.Habit{}, &model.HabitCompletion{},
		&model.Goal{}, &model.Milestone{}, &model.GoalHabit{},
	); err != nil {
		slog.Error("migrate failed", "err", err)
		os.Exit(1)
	}

	r := handler.NewRouter(db, cfg)

	slog.Info("server starting", "addr", cfg.Addr())
	if err := r.Run(cfg.Addr()); err != nil {
		slog.Error("server failed", "err", err)
	}
}
