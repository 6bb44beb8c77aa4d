package service

import (
	"context"
	"testing"

	"habit-goal/internal/model"
	"habit-goal/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeeklySummaryDailyHabit(t *testing.T) {
	db := testutil.OpenTestDB(t)
	habitSvc := NewHabitService(db)
	svc := NewAnalyticsService(db)
	ctx := context.Background()

	h, err := habitSvc.Create(ctx, 1, model.CreateHabitRequest{
		Name: "read", StartDate: "2024-03-01", Frequency: "daily",
	}, testNow)
	require.NoError(t, err)
	for _, d := range []string{"2024-03-05", "2024-03-08", "2024-03-09", "2024-03-10"} {
		_, err := habitSvc.ToggleCompletion(ctx, 1, h.ID, d, 0, testNow)
		require.NoError(t, err)
	}

	summary, err := svc.WeeklySummary(ctx, 1, testNow)
	require.NoError(t, err)
	require.Len(t, summary, 1)
	// window is 2024-03-04 .. 2024-03-10: 3 of the 4 completions land in it
	assert.Equal(t, 3, summary[0].Completed)
	assert.Equal(t, 7, summary[0].Expected)
	assert.InDelta(t, 42.86, summary[0].CompletionRate, 0.01)
}

func TestWeeklySummaryHabitStartedMidWeek(t *testing.T) {
	db := testutil.OpenTestDB(t)
	habitSvc := NewHabitService(db)
	svc := NewAnalyticsService(db)
	ctx := context.Background()

	_, err := habitSvc.Create(ctx, 1, model.CreateHabitRequest{
		Name: "run", StartDate: "2024-03-08", Frequency: "daily",
	}, testNow)
	require.NoError(t, err)

	summary, err := svc.WeeklySummary(ctx, 1, testNow)
	require.NoError(t, err)
	require.Len(t, summary, 1)
	// only 2024-03-08 .. 2024-03-10 are expected days
	assert.Equal(t, 3, summary[0].Expected)
}

func TestWeeklySummaryWeeklyAndMonthly(t *testing.T) {
	db := testutil.OpenTestDB(t)
	habitSvc := NewHabitService(db)
	svc := NewAnalyticsService(db)
	ctx := context.Background()

	_, err := habitSvc.Create(ctx, 1, model.CreateHabitRequest{
		Name: "run", StartDate: "2024-01-01", Frequency: "weekly",
	}, testNow)
	require.NoError(t, err)
	// monthly anniversary on the 8th falls inside the 03-04..03-10 window
	_, err = habitSvc.Create(ctx, 1, model.CreateHabitRequest{
		Name: "budget", StartDate: "2024-01-08", Frequency: "monthly",
	}, testNow)
	require.NoError(t, err)
	// anniversary on the 20th falls outside the window
	_, err = habitSvc.Create(ctx, 1, model.CreateHabitRequest{
		Name: "backup", StartDate: "2024-01-20", Frequency: "monthly",
	}, testNow)
	require.NoError(t, err)

	summary, err := svc.WeeklySummary(ctx, 1, testNow)
	require.NoError(t, err)
	require.Len(t, summary, 3)
	assert.Equal(t, 1, summary[0].Expected)
	assert.Equal(t, 1, summary[1].Expected)
	assert.Equal(t, 0, summary[2].Expected)
}

func TestOverview(t *testing.T) {
	db := testutil.OpenTestDB(t)
	habitSvc := NewHabitService(db)
	svc := NewAnalyticsService(db)
	ctx := context.Background()

	read := newHabit(t, habitSvc, 1, "read")
	run := newHabit(t, habitSvc, 1, "run")
	for _, d := range []string{"2024-03-09", "2024-03-10"} {
		_, err := habitSvc.ToggleCompletion(ctx, 1, read.ID, d, 0, testNow)
		require.NoError(t, err)
	}
	_, err := habitSvc.ToggleCompletion(ctx, 1, run.ID, "2024-03-10", 0, testNow)
	require.NoError(t, err)

	require.NoError(t, db.Create(&model.Goal{UserID: 1, Title: "g", TargetDate: "2024-06-01", Status: "active"}).Error)
	require.NoError(t, db.Create(&model.Goal{UserID: 1, Title: "done", TargetDate: "2024-02-01", Status: "completed"}).Error)

	overview, err := svc.Overview(ctx, 1, testNow)
	require.NoError(t, err)
	assert.Equal(t, 2, overview.Habits)
	assert.Equal(t, 1, overview.ActiveGoals)
	assert.Equal(t, 2, overview.BestStreak)
	assert.Equal(t, 2, overview.CompletedToday)
}
