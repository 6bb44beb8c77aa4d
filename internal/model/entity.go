package model

import "time"

type User struct {
	ID       int    `gorm:"primaryKey" json:"id"`
	Username string `gorm:"uniqueIndex" json:"username"`
	Password string `json:"-"`
	Name     string `json:"name"`
}

type Habit struct {
	ID          int       `gorm:"primaryKey" json:"id"`
	UserID      int       `gorm:"index" json:"user_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	StartDate   string    `gorm:"type:date" json:"start_date"`
	Frequency   string    `gorm:"default:daily" json:"frequency"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type HabitCompletion struct {
	ID            int       `gorm:"primaryKey" json:"id"`
	HabitID       int       `gorm:"uniqueIndex:uk_habit_date" json:"habit_id"`
	CompletedDate string    `gorm:"type:date;uniqueIndex:uk_habit_date" json:"completed_date"`
	Quality       int       `json:"quality"` // 1-5, 0 means unrated
	CreatedAt     time.Time `json:"created_at"`
}

type Goal struct {
	ID           int       `gorm:"primaryKey" json:"id"`
	UserID       int       `gorm:"index" json:"user_id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	TargetDate   string    `gorm:"type:date" json:"target_date"`
	TargetAmount int       `json:"target_amount"`
	Status       string    `gorm:"default:active" json:"status"`
	Progress     int       `json:"progress"` // cache of the last computed value
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Milestone struct {
	ID            int    `gorm:"primaryKey" json:"id"`
	GoalID        int    `gorm:"index" json:"goal_id"`
	Title         string `json:"title"`
	TargetDate    string `gorm:"type:date" json:"target_date"`
	Progress      int    `json:"progress"`
	IsCompleted   bool   `json:"is_completed"`
	CompletedDate string `gorm:"type:date" json:"completed_date"`
}

type GoalHabit struct {
	ID                 int     `gorm:"primaryKey" json:"id"`
	GoalID             int     `gorm:"uniqueIndex:uk_goal_habit" json:"goal_id"`
	HabitID            int     `gorm:"uniqueIndex:uk_goal_habit" json:"habit_id"`
	ContributionWeight float64 `json:"contribution_weight"`
}

// SetProgress updates the milestone progress and keeps the completion flag
// in sync: a milestone is completed exactly when its progress reaches 100.
func (m *Milestone) SetProgress(value int, asOf time.Time) {
	if value < 0 {
		value = 0
	}
	if value > 100 {
		value = 100
	}
	m.Progress = value
	if value == 100 {
		if !m.IsCompleted {
			m.CompletedDate = asOf.UTC().Format("2006-01-02")
		}
		m.IsCompleted = true
	} else {
		m.IsCompleted = false
		m.CompletedDate = ""
	}
}

// MarkComplete completes the milestone outright, setting both fields together.
func (m *Milestone) MarkComplete(asOf time.Time) {
	m.SetProgress(100, asOf)
}

func (User) TableName() string            { return "users" }
func (Habit) TableName() string           { return "habits" }
func (HabitCompletion) TableName() string { return "habit_completions" }
func (Goal) TableName() string            { return "goals" }
func (Milestone) TableName() string       { return "milestones" }
func (GoalHabit) TableName() string       { return "goal_habits" }
