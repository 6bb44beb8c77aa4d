package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"habit-goal/internal/model"
	"habit-goal/internal/progress"

	"gorm.io/gorm"
)

type HabitService struct{ db *gorm.DB }

func NewHabitService(db *gorm.DB) *HabitService { return &HabitService{db: db} }

func validFrequency(f string) bool {
	return f == "daily" || f == "weekly" || f == "monthly"
}

func (s *HabitService) Create(ctx context.Context, userID int, req model.CreateHabitRequest, asOf time.Time) (*model.Habit, error) {
	if req.Frequency == "" {
		req.Frequency = "daily"
	}
	if !validFrequency(req.Frequency) {
		return nil, fmt.Errorf("%w: frequency must be daily, weekly or monthly", ErrInvalid)
	}
	start := req.StartDate
	if start == "" {
		start = asOf.UTC().Format("2006-01-02")
	} else {
		var err error
		if start, err = progress.NormalizeDay(start); err != nil {
			return nil, fmt.Errorf("%w: bad start_date", ErrInvalid)
		}
	}

	h := model.Habit{
		UserID:      userID,
		Name:        req.Name,
		Description: req.Description,
		StartDate:   start,
		Frequency:   req.Frequency,
	}
	if err := s.db.WithContext(ctx).Create(&h).Error; err != nil {
		return nil, fmt.Errorf("insert habit: %w", err)
	}
	return &h, nil
}

// Get loads one habit and enforces ownership. A habit belonging to another
// user is reported as forbidden, not as missing.
func (s *HabitService) Get(ctx context.Context, userID, habitID int) (*model.Habit, error) {
	var h model.Habit
	if err := s.db.WithContext(ctx).First(&h, habitID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query habit: %w", err)
	}
	if h.UserID != userID {
		return nil, ErrForbidden
	}
	return &h, nil
}

// List returns the user's habits with streak figures attached.
func (s *HabitService) List(ctx context.Context, userID int, asOf time.Time) ([]model.HabitWithStreaks, error) {
	var habits []model.Habit
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("id").Find(&habits).Error; err != nil {
		return nil, fmt.Errorf("query habits: %w", err)
	}

	out := make([]model.HabitWithStreaks, 0, len(habits))
	for _, h := range habits {
		dates, err := s.CompletionDates(ctx, h.ID)
		if err != nil {
			return nil, err
		}
		streaks, err := progress.ComputeStreaks(dates, asOf)
		if err != nil {
			return nil, fmt.Errorf("habit %d streaks: %w", h.ID, err)
		}
		out = append(out, model.HabitWithStreaks{
			Habit:         h,
			CurrentStreak: streaks.Current,
			LongestStreak: streaks.Longest,
			Completions:   len(dates),
		})
	}
	return out, nil
}

func (s *HabitService) Update(ctx context.Context, userID, habitID int, req model.UpdateHabitRequest) (*model.Habit, error) {
	h, err := s.Get(ctx, userID, habitID)
	if err != nil {
		return nil, err
	}
	updates := map[string]interface{}{}
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Description != "" {
		updates["description"] = req.Description
	}
	if req.Frequency != "" {
		if !validFrequency(req.Frequency) {
			return nil, fmt.Errorf("%w: frequency must be daily, weekly or monthly", ErrInvalid)
		}
		updates["frequency"] = req.Frequency
	}
	if len(updates) == 0 {
		return h, nil
	}
	if err := s.db.WithContext(ctx).Model(h).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("update habit: %w", err)
	}
	return h, nil
}

// Delete removes the habit together with its completions and goal links.
func (s *HabitService) Delete(ctx context.Context, userID, habitID int) error {
	if _, err := s.Get(ctx, userID, habitID); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("habit_id = ?", habitID).Delete(&model.HabitCompletion{}).Error; err != nil {
			return fmt.Errorf("delete completions: %w", err)
		}
		if err := tx.Where("habit_id = ?", habitID).Delete(&model.GoalHabit{}).Error; err != nil {
			return fmt.Errorf("delete links: %w", err)
		}
		if err := tx.Delete(&model.Habit{}, habitID).Error; err != nil {
			return fmt.Errorf("delete habit: %w", err)
		}
		return nil
	})
}

// ToggleCompletion marks or unmarks one calendar day. Marking an already
// completed day removes it; the returned flag reports the resulting state.
func (s *HabitService) ToggleCompletion(ctx context.Context, userID, habitID int, date string, quality int, asOf time.Time) (bool, error) {
	if _, err := s.Get(ctx, userID, habitID); err != nil {
		return false, err
	}
	if quality < 0 || quality > 5 {
		return false, fmt.Errorf("%w: quality must be 1-5", ErrInvalid)
	}

	day := asOf.UTC().Format("2006-01-02")
	if date != "" {
		var err error
		if day, err = progress.NormalizeDay(date); err != nil {
			return false, fmt.Errorf("%w: bad date", ErrInvalid)
		}
	}

	var existing model.HabitCompletion
	err := s.db.WithContext(ctx).
		Where("habit_id = ? AND completed_date = ?", habitID, day).
		First(&existing).Error
	if err == nil {
		if err := s.db.WithContext(ctx).Delete(&existing).Error; err != nil {
			return false, fmt.Errorf("delete completion: %w", err)
		}
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, fmt.Errorf("query completion: %w", err)
	}

	c := model.HabitCompletion{HabitID: habitID, CompletedDate: day, Quality: quality}
	if err := s.db.WithContext(ctx).Create(&c).Error; err != nil {
		return false, fmt.Errorf("insert completion: %w", err)
	}
	return true, nil
}

func (s *HabitService) ListCompletions(ctx context.Context, userID, habitID int) ([]model.HabitCompletion, error) {
	if _, err := s.Get(ctx, userID, habitID); err != nil {
		return nil, err
	}
	var out []model.HabitCompletion
	err := s.db.WithContext(ctx).
		Where("habit_id = ?", habitID).
		Order("completed_date").Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("query completions: %w", err)
	}
	return out, nil
}

// CompletionDates returns the habit's completion days without an ownership
// check; callers inside the package verify access before using it.
func (s *HabitService) CompletionDates(ctx context.Context, habitID int) ([]string, error) {
	var dates []string
	err := s.db.WithContext(ctx).
		Model(&model.HabitCompletion{}).
		Where("habit_id = ?", habitID).
		Order("completed_date").
		Pluck("completed_date", &dates).Error
	if err != nil {
		return nil, fmt.Errorf("query completion dates: %w", err)
	}
	return dates, nil
}
