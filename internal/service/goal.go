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

type GoalService struct {
	db     *gorm.DB
	engine *progress.Engine
	habits *HabitService
}

func NewGoalService(db *gorm.DB, engine *progress.Engine) *GoalService {
	return &GoalService{db: db, engine: engine, habits: NewHabitService(db)}
}

func (s *GoalService) Create(ctx context.Context, userID int, req model.CreateGoalRequest) (*model.Goal, error) {
	target, err := progress.NormalizeDay(req.TargetDate)
	if err != nil {
		return nil, fmt.Errorf("%w: bad target_date", ErrInvalid)
	}
	amount := req.TargetAmount
	if amount <= 0 {
		amount = s.engine.Defaults().DefaultTargetAmount
	}
	g := model.Goal{
		UserID:       userID,
		Title:        req.Title,
		Description:  req.Description,
		TargetDate:   target,
		TargetAmount: amount,
		Status:       "active",
	}
	if err := s.db.WithContext(ctx).Create(&g).Error; err != nil {
		return nil, fmt.Errorf("insert goal: %w", err)
	}
	return &g, nil
}

func (s *GoalService) List(ctx context.Context, userID int) ([]model.Goal, error) {
	var goals []model.Goal
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("id").Find(&goals).Error; err != nil {
		return nil, fmt.Errorf("query goals: %w", err)
	}
	return goals, nil
}

// Get loads one goal, recomputes its progress and persists the refreshed
// cache. The stored progress value is a cache, never a source of truth.
func (s *GoalService) Get(ctx context.Context, userID, goalID int, asOf time.Time) (*model.Goal, error) {
	g, err := s.load(ctx, userID, goalID)
	if err != nil {
		return nil, err
	}
	report, err := s.computeProgress(ctx, g, asOf)
	if err != nil {
		return nil, err
	}
	if report.ProgressPercent != g.Progress {
		if err := s.db.WithContext(ctx).Model(g).Update("progress", report.ProgressPercent).Error; err != nil {
			return nil, fmt.Errorf("cache progress: %w", err)
		}
	}
	g.Progress = report.ProgressPercent
	return g, nil
}

func (s *GoalService) Update(ctx context.Context, userID, goalID int, req model.UpdateGoalRequest) (*model.Goal, error) {
	g, err := s.load(ctx, userID, goalID)
	if err != nil {
		return nil, err
	}
	updates := map[string]interface{}{}
	if req.Title != "" {
		updates["title"] = req.Title
	}
	if req.Description != "" {
		updates["description"] = req.Description
	}
	if req.TargetDate != "" {
		target, err := progress.NormalizeDay(req.TargetDate)
		if err != nil {
			return nil, fmt.Errorf("%w: bad target_date", ErrInvalid)
		}
		updates["target_date"] = target
	}
	if req.Status != "" {
		if req.Status != "active" && req.Status != "completed" {
			return nil, fmt.Errorf("%w: status must be active or completed", ErrInvalid)
		}
		updates["status"] = req.Status
	}
	if len(updates) == 0 {
		return g, nil
	}
	if err := s.db.WithContext(ctx).Model(g).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("update goal: %w", err)
	}
	return g, nil
}

// Delete removes the goal together with its milestones and habit links.
func (s *GoalService) Delete(ctx context.Context, userID, goalID int) error {
	if _, err := s.load(ctx, userID, goalID); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("goal_id = ?", goalID).Delete(&model.Milestone{}).Error; err != nil {
			return fmt.Errorf("delete milestones: %w", err)
		}
		if err := tx.Where("goal_id = ?", goalID).Delete(&model.GoalHabit{}).Error; err != nil {
			return fmt.Errorf("delete links: %w", err)
		}
		if err := tx.Delete(&model.Goal{}, goalID).Error; err != nil {
			return fmt.Errorf("delete goal: %w", err)
		}
		return nil
	})
}

func (s *GoalService) LinkHabit(ctx context.Context, userID, goalID, habitID int, weight float64) (*model.GoalHabit, error) {
	if _, err := s.load(ctx, userID, goalID); err != nil {
		return nil, err
	}
	if _, err := s.habits.Get(ctx, userID, habitID); err != nil {
		return nil, err
	}
	var count int64
	s.db.WithContext(ctx).Model(&model.GoalHabit{}).
		Where("goal_id = ? AND habit_id = ?", goalID, habitID).Count(&count)
	if count > 0 {
		return nil, fmt.Errorf("%w: habit already linked", ErrInvalid)
	}
	link := model.GoalHabit{GoalID: goalID, HabitID: habitID, ContributionWeight: weight}
	if err := s.db.WithContext(ctx).Create(&link).Error; err != nil {
		return nil, fmt.Errorf("insert link: %w", err)
	}
	return &link, nil
}

func (s *GoalService) UnlinkHabit(ctx context.Context, userID, goalID, habitID int) error {
	if _, err := s.load(ctx, userID, goalID); err != nil {
		return err
	}
	res := s.db.WithContext(ctx).
		Where("goal_id = ? AND habit_id = ?", goalID, habitID).
		Delete(&model.GoalHabit{})
	if res.Error != nil {
		return fmt.Errorf("delete link: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GoalService) AddMilestone(ctx context.Context, userID, goalID int, req model.CreateMilestoneRequest) (*model.Milestone, error) {
	if _, err := s.load(ctx, userID, goalID); err != nil {
		return nil, err
	}
	target, err := progress.NormalizeDay(req.TargetDate)
	if err != nil {
		return nil, fmt.Errorf("%w: bad target_date", ErrInvalid)
	}
	m := model.Milestone{GoalID: goalID, Title: req.Title, TargetDate: target}
	if err := s.db.WithContext(ctx).Create(&m).Error; err != nil {
		return nil, fmt.Errorf("insert milestone: %w", err)
	}
	return &m, nil
}

// SetMilestoneProgress is the single write path for milestone progress; the
// completion flag is derived from the value and never drifts out of sync.
func (s *GoalService) SetMilestoneProgress(ctx context.Context, userID, milestoneID, value int, asOf time.Time) (*model.Milestone, error) {
	m, err := s.loadMilestone(ctx, userID, milestoneID)
	if err != nil {
		return nil, err
	}
	m.SetProgress(value, asOf)
	if err := s.saveMilestone(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *GoalService) CompleteMilestone(ctx context.Context, userID, milestoneID int, asOf time.Time) (*model.Milestone, error) {
	m, err := s.loadMilestone(ctx, userID, milestoneID)
	if err != nil {
		return nil, err
	}
	m.MarkComplete(asOf)
	if err := s.saveMilestone(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *GoalService) DeleteMilestone(ctx context.Context, userID, milestoneID int) error {
	m, err := s.loadMilestone(ctx, userID, milestoneID)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(&model.Milestone{}, m.ID).Error; err != nil {
		return fmt.Errorf("delete milestone: %w", err)
	}
	return nil
}

func (s *GoalService) ListMilestones(ctx context.Context, userID, goalID int) ([]model.Milestone, error) {
	if _, err := s.load(ctx, userID, goalID); err != nil {
		return nil, err
	}
	var out []model.Milestone
	if err := s.db.WithContext(ctx).Where("goal_id = ?", goalID).Order("target_date").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("query milestones: %w", err)
	}
	return out, nil
}

// Progress computes the full report and refreshes the cached value.
func (s *GoalService) Progress(ctx context.Context, userID, goalID int, asOf time.Time) (progress.ProgressReport, error) {
	g, err := s.load(ctx, userID, goalID)
	if err != nil {
		return progress.ProgressReport{}, err
	}
	report, err := s.computeProgress(ctx, g, asOf)
	if err != nil {
		return progress.ProgressReport{}, err
	}
	if err := s.db.WithContext(ctx).Model(g).Update("progress", report.ProgressPercent).Error; err != nil {
		return progress.ProgressReport{}, fmt.Errorf("cache progress: %w", err)
	}
	return report, nil
}

func (s *GoalService) Insights(ctx context.Context, userID, goalID int, asOf time.Time) (progress.InsightReport, error) {
	g, err := s.load(ctx, userID, goalID)
	if err != nil {
		return progress.InsightReport{}, err
	}
	input, habits, milestones, err := s.engineInputs(ctx, g)
	if err != nil {
		return progress.InsightReport{}, err
	}
	report, err := s.engine.ComputeInsights(input, habits, milestones, asOf)
	if err != nil {
		return progress.InsightReport{}, fmt.Errorf("compute insights: %w", err)
	}
	return report, nil
}

func (s *GoalService) load(ctx context.Context, userID, goalID int) (*model.Goal, error) {
	var g model.Goal
	if err := s.db.WithContext(ctx).First(&g, goalID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query goal: %w", err)
	}
	if g.UserID != userID {
		return nil, ErrForbidden
	}
	return &g, nil
}

func (s *GoalService) loadMilestone(ctx context.Context, userID, milestoneID int) (*model.Milestone, error) {
	var m model.Milestone
	if err := s.db.WithContext(ctx).First(&m, milestoneID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query milestone: %w", err)
	}
	if _, err := s.load(ctx, userID, m.GoalID); err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *GoalService) saveMilestone(ctx context.Context, m *model.Milestone) error {
	err := s.db.WithContext(ctx).Model(m).Select("progress", "is_completed", "completed_date").
		Updates(map[string]interface{}{
			"progress":       m.Progress,
			"is_completed":   m.IsCompleted,
			"completed_date": m.CompletedDate,
		}).Error
	if err != nil {
		return fmt.Errorf("update milestone: %w", err)
	}
	return nil
}

func (s *GoalService) computeProgress(ctx context.Context, g *model.Goal, asOf time.Time) (progress.ProgressReport, error) {
	input, habits, milestones, err := s.engineInputs(ctx, g)
	if err != nil {
		return progress.ProgressReport{}, err
	}
	report, err := s.engine.ComputeProgress(input, habits, milestones, asOf)
	if err != nil {
		return progress.ProgressReport{}, fmt.Errorf("compute progress: %w", err)
	}
	return report, nil
}

// engineInputs assembles the pure-computation inputs for one goal: the goal
// frame, every linked habit with its full completion history, and the
// milestone set.
func (s *GoalService) engineInputs(ctx context.Context, g *model.Goal) (progress.GoalInput, []progress.LinkedHabit, []progress.MilestoneInput, error) {
	target, err := time.ParseInLocation("2006-01-02", g.TargetDate, time.UTC)
	if err != nil {
		return progress.GoalInput{}, nil, nil, fmt.Errorf("goal %d target date: %w", g.ID, err)
	}
	input := progress.GoalInput{
		CreatedAt:    g.CreatedAt,
		TargetDate:   target,
		TargetAmount: g.TargetAmount,
	}

	var links []model.GoalHabit
	if err := s.db.WithContext(ctx).Where("goal_id = ?", g.ID).Find(&links).Error; err != nil {
		return progress.GoalInput{}, nil, nil, fmt.Errorf("query links: %w", err)
	}
	habits := make([]progress.LinkedHabit, 0, len(links))
	for _, link := range links {
		var h model.Habit
		if err := s.db.WithContext(ctx).First(&h, link.HabitID).Error; err != nil {
			return progress.GoalInput{}, nil, nil, fmt.Errorf("query linked habit %d: %w", link.HabitID, err)
		}
		var completions []model.HabitCompletion
		err := s.db.WithContext(ctx).
			Where("habit_id = ?", link.HabitID).
			Order("completed_date").Find(&completions).Error
		if err != nil {
			return progress.GoalInput{}, nil, nil, fmt.Errorf("query completions: %w", err)
		}
		lh := progress.LinkedHabit{
			HabitID:            h.ID,
			Name:               h.Name,
			ContributionWeight: link.ContributionWeight,
		}
		for _, c := range completions {
			lh.Completions = append(lh.Completions, progress.Completion{Date: c.CompletedDate, Quality: c.Quality})
		}
		habits = append(habits, lh)
	}

	var stored []model.Milestone
	if err := s.db.WithContext(ctx).Where("goal_id = ?", g.ID).Find(&stored).Error; err != nil {
		return progress.GoalInput{}, nil, nil, fmt.Errorf("query milestones: %w", err)
	}
	milestones := make([]progress.MilestoneInput, 0, len(stored))
	for _, m := range stored {
		mt, err := time.ParseInLocation("2006-01-02", m.TargetDate, time.UTC)
		if err != nil {
			return progress.GoalInput{}, nil, nil, fmt.Errorf("milestone %d target date: %w", m.ID, err)
		}
		milestones = append(milestones, progress.MilestoneInput{
			ID:          m.ID,
			TargetDate:  mt,
			IsCompleted: m.IsCompleted,
			Progress:    m.Progress,
		})
	}

	return input, habits, milestones, nil
}
