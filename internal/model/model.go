package model

type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Name     string `json:"name"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type CreateHabitRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	StartDate   string `json:"start_date"`
	Frequency   string `json:"frequency"`
}

type UpdateHabitRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Frequency   string `json:"frequency"`
}

type ToggleCompletionRequest struct {
	Date    string `json:"date"`
	Quality int    `json:"quality"`
}

type ToggleCompletionResponse struct {
	Completed bool   `json:"completed"`
	Date      string `json:"date"`
}

// HabitWithStreaks is the list-view shape: the habit plus its streak figures.
type HabitWithStreaks struct {
	Habit
	CurrentStreak int `json:"current_streak"`
	LongestStreak int `json:"longest_streak"`
	Completions   int `json:"completions"`
}

type CreateGoalRequest struct {
	Title        string `json:"title" binding:"required"`
	Description  string `json:"description"`
	TargetDate   string `json:"target_date" binding:"required"`
	TargetAmount int    `json:"target_amount"`
}

type UpdateGoalRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	TargetDate  string `json:"target_date"`
	Status      string `json:"status"`
}

type LinkHabitRequest struct {
	HabitID            int     `json:"habit_id" binding:"required"`
	ContributionWeight float64 `json:"contribution_weight"`
}

type CreateMilestoneRequest struct {
	Title      string `json:"title" binding:"required"`
	TargetDate string `json:"target_date" binding:"required"`
}

type UpdateMilestoneProgressRequest struct {
	Progress *int `json:"progress" binding:"required"`
}

type UpdateProfileRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

// WeeklyHabitSummary reports the last seven days of one habit against the
// expectation implied by its frequency.
type WeeklyHabitSummary struct {
	HabitID        int     `json:"habit_id"`
	Name           string  `json:"name"`
	Frequency      string  `json:"frequency"`
	Completed      int     `json:"completed"`
	Expected       int     `json:"expected"`
	CompletionRate float64 `json:"completion_rate"`
}

type OverviewResponse struct {
	Habits         int `json:"habits"`
	ActiveGoals    int `json:"active_goals"`
	BestStreak     int `json:"best_streak"`
	CompletedToday int `json:"completed_today"`
}
