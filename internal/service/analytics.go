package service

import (
	"context"
	"fmt"
	"time"

	"habit-goal/internal/model"
	"habit-goal/internal/progress"

	"gorm.io/gorm"
)

type AnalyticsService struct {
	db     *gorm.DB
	habits *HabitService
}

func NewAnalyticsService(db *gorm.DB) *AnalyticsService {
	return &AnalyticsService{db: db, habits: NewHabitService(db)}
}

// WeeklySummary reports the trailing seven days per habit against the
// expectation implied by its frequency. Days before the habit's start date
// are not expected.
func (s *AnalyticsService) WeeklySummary(ctx context.Context, userID int, asOf time.Time) ([]model.WeeklyHabitSummary, error) {
	var habits []model.Habit
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("id").Find(&habits).Error; err != nil {
		return nil, fmt.Errorf("query habits: %w", err)
	}

	day := asOf.UTC().Truncate(24 * time.Hour)
	windowStart := day.AddDate(0, 0, -6)

	out := make([]model.WeeklyHabitSummary, 0, len(habits))
	for _, h := range habits {
		var completed int64
		err := s.db.WithContext(ctx).Model(&model.HabitCompletion{}).
			Where("habit_id = ? AND completed_date >= ? AND completed_date <= ?",
				h.ID, windowStart.Format("2006-01-02"), day.Format("2006-01-02")).
			Count(&completed).Error
		if err != nil {
			return nil, fmt.Errorf("count completions: %w", err)
		}

		expected, err := expectedThisWeek(h, windowStart, day)
		if err != nil {
			return nil, err
		}

		rate := 100.0
		if expected > 0 {
			rate = float64(completed) / float64(expected) * 100
			if rate > 100 {
				rate = 100
			}
		} else if completed == 0 {
			rate = 0
		}

		out = append(out, model.WeeklyHabitSummary{
			HabitID:        h.ID,
			Name:           h.Name,
			Frequency:      h.Frequency,
			Completed:      int(completed),
			Expected:       expected,
			CompletionRate: rate,
		})
	}
	return out, nil
}

// expectedThisWeek counts how many completions the frequency calls for within
// the window: every eligible day for daily habits, one for weekly habits, and
// for monthly habits one only when the window crosses the start date's
// monthly anniversary.
func expectedThisWeek(h model.Habit, windowStart, windowEnd time.Time) (int, error) {
	start, err := time.ParseInLocation("2006-01-02", h.StartDate, time.UTC)
	if err != nil {
		return 0, fmt.Errorf("habit %d start date: %w", h.ID, err)
	}
	if start.After(windowEnd) {
		return 0, nil
	}

	switch h.Frequency {
	case "weekly":
		return 1, nil
	case "monthly":
		for d := windowStart; !d.After(windowEnd); d = d.AddDate(0, 0, 1) {
			if d.Before(start) {
				continue
			}
			if d.Day() == start.Day() {
				return 1, nil
			}
		}
		return 0, nil
	default: // daily
		expected := 0
		for d := windowStart; !d.After(windowEnd); d = d.AddDate(0, 0, 1) {
			if !d.Before(start) {
				expected++
			}
		}
		return expected, nil
	}
}

// Overview aggregates the dashboard headline numbers.
func (s *AnalyticsService) Overview(ctx context.Context, userID int, asOf time.Time) (*model.OverviewResponse, error) {
	var habitCount int64
	if err := s.db.WithContext(ctx).Model(&model.Habit{}).Where("user_id = ?", userID).Count(&habitCount).Error; err != nil {
		return nil, fmt.Errorf("count habits: %w", err)
	}
	var activeGoals int64
	err := s.db.WithContext(ctx).Model(&model.Goal{}).
		Where("user_id = ? AND status = ?", userID, "active").Count(&activeGoals).Error
	if err != nil {
		return nil, fmt.Errorf("count goals: %w", err)
	}

	var habitIDs []int
	if err := s.db.WithContext(ctx).Model(&model.Habit{}).Where("user_id = ?", userID).Pluck("id", &habitIDs).Error; err != nil {
		return nil, fmt.Errorf("query habit ids: %w", err)
	}

	best := 0
	for _, id := range habitIDs {
		dates, err := s.habits.CompletionDates(ctx, id)
		if err != nil {
			return nil, err
		}
		streaks, err := progress.ComputeStreaks(dates, asOf)
		if err != nil {
			return nil, fmt.Errorf("habit %d streaks: %w", id, err)
		}
		if streaks.Current > best {
			best = streaks.Current
		}
	}

	var completedToday int64
	if len(habitIDs) > 0 {
		err = s.db.WithContext(ctx).Model(&model.HabitCompletion{}).
			Where("habit_id IN ? AND completed_date = ?", habitIDs, asOf.UTC().Format("2006-01-02")).
			Count(&completedToday).Error
		if err != nil {
			return nil, fmt.Errorf("count today: %w", err)
		}
	}

	return &model.OverviewResponse{
		Habits:         int(habitCount),
		ActiveGoals:    int(activeGoals),
		BestStreak:     best,
		CompletedToday: int(completedToday),
	}, nil
}
