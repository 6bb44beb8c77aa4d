package progress

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// Config carries the tunable constants of the progress engine.
type Config struct {
	// DefaultTargetAmount is used for goals that do not set their own
	// completion target.
	DefaultTargetAmount int
	// AchievementWeight and MilestoneWeight blend the two progress
	// dimensions into the composite percentage.
	AchievementWeight float64
	MilestoneWeight   float64
	// PaceThreshold is the required-daily-progress level (in percentage
	// points per day) above which a goal counts as behind pace.
	PaceThreshold float64
}

func DefaultConfig() Config {
	return Config{
		DefaultTargetAmount: 500,
		AchievementWeight:   0.7,
		MilestoneWeight:     0.3,
		PaceThreshold:       3,
	}
}

// Engine computes goal progress and insight reports. It is pure and safe for
// concurrent use.
type Engine struct {
	cfg Config
}

func NewEngine(cfg Config) *Engine {
	def := DefaultConfig()
	if cfg.DefaultTargetAmount <= 0 {
		cfg.DefaultTargetAmount = def.DefaultTargetAmount
	}
	if cfg.AchievementWeight <= 0 {
		cfg.AchievementWeight = def.AchievementWeight
	}
	if cfg.MilestoneWeight <= 0 {
		cfg.MilestoneWeight = def.MilestoneWeight
	}
	if cfg.PaceThreshold <= 0 {
		cfg.PaceThreshold = def.PaceThreshold
	}
	return &Engine{cfg: cfg}
}

// Defaults reports the effective engine configuration.
func (e *Engine) Defaults() Config { return e.cfg }

type Completion struct {
	Date    string
	Quality int // 1-5, 0 means unrated and counts as 3
}

type LinkedHabit struct {
	HabitID     int
	Name        string
	Completions []Completion
	// ContributionWeight is carried through from the goal-habit link. The
	// composite formula does not apply it: all habits contribute equally
	// via the raw completion tally.
	ContributionWeight float64
}

type GoalInput struct {
	CreatedAt    time.Time
	TargetDate   time.Time
	TargetAmount int
}

type MilestoneInput struct {
	ID          int
	TargetDate  time.Time
	IsCompleted bool
	Progress    int
}

type ProgressReport struct {
	ProgressPercent     int         `json:"progress_percent"`
	PacePercent         int         `json:"pace_percent"`
	AverageQuality      float64     `json:"average_quality"`
	TotalCompletions    int         `json:"total_completions"`
	QualityDistribution map[int]int `json:"quality_distribution"`
	Message             string      `json:"message"`
}

type HabitWindow struct {
	HabitID    int     `json:"habit_id"`
	Name       string  `json:"name"`
	Progress30 float64 `json:"progress_30"`
}

type HabitStreak struct {
	HabitID       int    `json:"habit_id"`
	Name          string `json:"name"`
	CurrentStreak int    `json:"current_streak"`
}

type Recommendation struct {
	Type     string `json:"type"`
	Priority string `json:"priority"`
	Message  string `json:"message"`
	Action   string `json:"action"`
}

type InsightReport struct {
	DaysToTarget          int              `json:"days_to_target"`
	RequiredDailyProgress float64          `json:"required_daily_progress"`
	CurrentProgress       int              `json:"current_progress"`
	StrongestHabit        *HabitWindow     `json:"strongest_habit"`
	WeakestHabit          *HabitWindow     `json:"weakest_habit"`
	HabitConsistency      int              `json:"habit_consistency"`
	StreakData            []HabitStreak    `json:"streak_data"`
	CompletedMilestones   int              `json:"completed_milestones"`
	UpcomingMilestones    int              `json:"upcoming_milestones"`
	PaceStatus            string           `json:"pace_status"`
	OnTrack               bool             `json:"on_track"`
	Recommendations       []Recommendation `json:"recommendations"`
}

// ComputeProgress produces the composite progress report for one goal from
// its linked habits and milestones. The completion tally is a raw count per
// occurrence; completions are not deduplicated across habits.
func (e *Engine) ComputeProgress(goal GoalInput, habits []LinkedHabit, milestones []MilestoneInput, asOf time.Time) (ProgressReport, error) {
	target := goal.TargetAmount
	if target <= 0 {
		target = e.cfg.DefaultTargetAmount
	}

	total := 0
	qualityPoints := 0
	dist := map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}
	for _, h := range habits {
		for _, c := range h.Completions {
			if _, err := NormalizeDay(c.Date); err != nil {
				return ProgressReport{}, err
			}
			total++
			q := c.Quality
			if q == 0 {
				q = 3
			}
			if q < 1 {
				q = 1
			}
			if q > 5 {
				q = 5
			}
			qualityPoints += q
			dist[q]++
		}
	}

	achievement := math.Min(float64(total)/float64(target), 1) * 100
	milestonePct := 0.0
	if len(milestones) > 0 {
		done := 0
		for _, m := range milestones {
			if m.IsCompleted {
				done++
			}
		}
		milestonePct = float64(done) / float64(len(milestones)) * 100
	}
	timePct := timeProgress(goal.CreatedAt, goal.TargetDate, asOf)

	combined := int(math.Round(achievement*e.cfg.AchievementWeight + milestonePct*e.cfg.MilestoneWeight))

	pace := 0
	if timePct > 0 {
		pace = int(math.Round(achievement / timePct * 100))
	}

	avgQuality := 0.0
	if total > 0 {
		avgQuality = math.Round(float64(qualityPoints)/float64(total)*10) / 10
	}

	return ProgressReport{
		ProgressPercent:     combined,
		PacePercent:         pace,
		AverageQuality:      avgQuality,
		TotalCompletions:    total,
		QualityDistribution: dist,
		Message:             progressMessage(pace, avgQuality, total),
	}, nil
}

// ComputeInsights produces pacing and habit-level insight data for one goal.
func (e *Engine) ComputeInsights(goal GoalInput, habits []LinkedHabit, milestones []MilestoneInput, asOf time.Time) (InsightReport, error) {
	report, err := e.ComputeProgress(goal, habits, milestones, asOf)
	if err != nil {
		return InsightReport{}, err
	}

	day := asOf.UTC().Truncate(24 * time.Hour)
	daysToTarget := int(math.Ceil(goal.TargetDate.UTC().Sub(day).Hours() / 24))

	required := 0.0
	if daysToTarget > 0 {
		required = float64(100-report.ProgressPercent) / float64(daysToTarget)
	}

	windowStart := day.AddDate(0, 0, -30)
	var strongest, weakest *HabitWindow
	consistencySum, consistencyN := 0, 0
	streaks := make([]HabitStreak, 0, len(habits))
	for _, h := range habits {
		inWindow := 0
		windowDays := make(map[string]struct{})
		dates := make([]string, 0, len(h.Completions))
		for _, c := range h.Completions {
			d, err := NormalizeDay(c.Date)
			if err != nil {
				return InsightReport{}, err
			}
			dates = append(dates, d)
			t, _ := time.ParseInLocation(dayFormat, d, time.UTC)
			if t.After(windowStart) && !t.After(day) {
				inWindow++
				windowDays[d] = struct{}{}
			}
		}

		w := HabitWindow{HabitID: h.HabitID, Name: h.Name, Progress30: float64(inWindow) / 30 * 100}
		if strongest == nil || w.Progress30 > strongest.Progress30 {
			c := w
			strongest = &c
		}
		if weakest == nil || w.Progress30 < weakest.Progress30 {
			c := w
			weakest = &c
		}

		if len(h.Completions) > 0 {
			consistencySum += int(math.Round(float64(len(windowDays)) / 30 * 100))
			consistencyN++
		}

		s, err := ComputeStreaks(dates, asOf)
		if err != nil {
			return InsightReport{}, err
		}
		streaks = append(streaks, HabitStreak{HabitID: h.HabitID, Name: h.Name, CurrentStreak: s.Current})
	}

	sort.SliceStable(streaks, func(i, j int) bool { return streaks[i].CurrentStreak > streaks[j].CurrentStreak })
	if len(streaks) > 2 {
		streaks = streaks[:2]
	}

	consistency := 0
	if consistencyN > 0 {
		consistency = consistencySum / consistencyN
	}

	completed, upcoming := 0, 0
	for _, m := range milestones {
		if m.IsCompleted {
			completed++
			continue
		}
		if !m.TargetDate.UTC().Truncate(24 * time.Hour).Before(day) {
			upcoming++
		}
	}

	onTrack := required <= e.cfg.PaceThreshold
	status := "on-track"
	var recs []Recommendation
	if !onTrack {
		status = "behind"
		recs = append(recs, Recommendation{
			Type:     "pace",
			Priority: "high",
			Message:  fmt.Sprintf("You need %.1f%% progress per day to reach this goal on time.", required),
			Action:   "increase daily completions",
		})
	}

	return InsightReport{
		DaysToTarget:          daysToTarget,
		RequiredDailyProgress: required,
		CurrentProgress:       report.ProgressPercent,
		StrongestHabit:        strongest,
		WeakestHabit:          weakest,
		HabitConsistency:      consistency,
		StreakData:            streaks,
		CompletedMilestones:   completed,
		UpcomingMilestones:    upcoming,
		PaceStatus:            status,
		OnTrack:               onTrack,
		Recommendations:       recs,
	}, nil
}

// timeProgress is the linear ratio of elapsed time to total goal duration,
// clamped to [0,100]. Goals whose target date does not lie after their
// creation date count as fully elapsed.
func timeProgress(created, target, asOf time.Time) float64 {
	total := target.Sub(created)
	if total <= 0 {
		return 100
	}
	elapsed := asOf.Sub(created)
	if elapsed <= 0 {
		return 0
	}
	return math.Min(elapsed.Seconds()/total.Seconds(), 1) * 100
}

func progressMessage(pace int, avgQuality float64, total int) string {
	status := "behind pace"
	if pace >= 100 {
		status = "on track"
	}
	var quality string
	switch {
	case avgQuality > 4:
		quality = "Completion quality is excellent."
	case avgQuality > 3:
		quality = "Completion quality is solid."
	default:
		quality = "Focus on the quality of each completion."
	}
	return fmt.Sprintf("You are %s with %d completions. %s", status, total, quality)
}
