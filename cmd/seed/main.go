package main

import (
	"flag"
	"log"
	"time"

	"habit-goal/internal/config"
	"habit-goal/internal/logger"
	"habit-goal/internal/model"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Seeds a demo account with a few habits, a month of completions and one
// goal, for local development and manual API testing.
func main() {
	configFile := flag.String("config", "etc/config-dev.yaml", "config file")
	username := flag.String("user", "demo", "demo username")
	password := flag.String("pass", "demo1234", "demo password")
	flag.Parse()

	logger.Init(config.LogConfig{Level: "info", Console: true})

	cfg := config.Load(*configFile)
	db, err := cfg.OpenGormDB()
	if err != nil {
		log.Fatal("db connect failed: ", err)
	}
	if err := db.AutoMigrate(
		&model.User{}, &model.Habit{}, &model.HabitCompletion{},
		&model.Goal{}, &model.Milestone{}, &model.GoalHabit{},
	); err != nil {
		log.Fatal("migrate failed: ", err)
	}

	if err := seed(db, *username, *password); err != nil {
		log.Fatal("seed failed: ", err)
	}
	logger.Info("=== all done ===")
}

func seed(db *gorm.DB, username, password string) error {
	var existing model.User
	if err := db.Where("username = ?", username).First(&existing).Error; err == nil {
		logger.Info("demo user already present", "uid", existing.ID)
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user := model.User{Username: username, Password: string(hash), Name: "Demo User"}
	if err := db.Create(&user).Error; err != nil {
		return err
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	monthAgo := today.AddDate(0, 0, -30)

	habits := []model.Habit{
		{UserID: user.ID, Name: "Read", Description: "Read 20 pages", StartDate: monthAgo.Format("2006-01-02"), Frequency: "daily"},
		{UserID: user.ID, Name: "Run", Description: "5k run", StartDate: monthAgo.Format("2006-01-02"), Frequency: "weekly"},
		{UserID: user.ID, Name: "Review budget", StartDate: monthAgo.Format("2006-01-02"), Frequency: "monthly"},
	}
	if err := db.Create(&habits).Error; err != nil {
		return err
	}

	// Reading on most days, running once a week.
	var completions []model.HabitCompletion
	for d := monthAgo; !d.After(today); d = d.AddDate(0, 0, 1) {
		if d.Weekday() == time.Sunday {
			continue
		}
		completions = append(completions, model.HabitCompletion{
			HabitID: habits[0].ID, CompletedDate: d.Format("2006-01-02"), Quality: 4,
		})
		if d.Weekday() == time.Saturday {
			completions = append(completions, model.HabitCompletion{
				HabitID: habits[1].ID, CompletedDate: d.Format("2006-01-02"), Quality: 3,
			})
		}
	}
	if err := db.Create(&completions).Error; err != nil {
		return err
	}

	goal := model.Goal{
		UserID:       user.ID,
		Title:        "Finish the reading list",
		TargetDate:   today.AddDate(0, 3, 0).Format("2006-01-02"),
		TargetAmount: 90,
		Status:       "active",
	}
	if err := db.Create(&goal).Error; err != nil {
		return err
	}
	links := []model.GoalHabit{
		{GoalID: goal.ID, HabitID: habits[0].ID, ContributionWeight: 0.8},
		{GoalID: goal.ID, HabitID: habits[1].ID, ContributionWeight: 0.2},
	}
	if err := db.Create(&links).Error; err != nil {
		return err
	}
	milestones := []model.Milestone{
		{GoalID: goal.ID, Title: "First book done", TargetDate: today.AddDate(0, 1, 0).Format("2006-01-02")},
		{GoalID: goal.ID, Title: "Halfway", TargetDate: today.AddDate(0, 2, 0).Format("2006-01-02")},
	}
	if err := db.Create(&milestones).Error; err != nil {
		return err
	}

	logger.Info("seeded demo data", "uid", user.ID, "habits", len(habits), "completions", len(completions))
	return nil
}
