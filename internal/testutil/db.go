package testutil

import (
	"path/filepath"
	"testing"

	"habit-goal/internal/model"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenTestDB opens a throwaway sqlite database in the test's temp dir with
// the full schema migrated.
func OpenTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	err = db.AutoMigrate(
		&model.User{}, &model.Habit{}, &model.HabitCompletion{},
		&model.Goal{}, &model.Milestone{}, &model.GoalHabit{},
	)
	if err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}
