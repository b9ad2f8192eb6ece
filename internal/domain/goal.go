package domain

// MaxGoalHistory caps the number of archived goals.
const MaxGoalHistory = 20

type GoalType string

const (
	GoalWeekly  GoalType = "weekly"
	GoalMonthly GoalType = "monthly"
	GoalCustom  GoalType = "custom"
)

const GoalStatusActive = "active"

// GoalCounters is used for both the target and the progress of a goal.
type GoalCounters struct {
	ModulesCompleted int `json:"modulesCompleted" validate:"min=0"`
	VideosWatched    int `json:"videosWatched" validate:"min=0"`
	LabsCompleted    int `json:"labsCompleted" validate:"min=0"`
	FlashcardsAdded  int `json:"flashcardsAdded" validate:"min=0"`
}

// GoalTargets is the input to goal creation.
type GoalTargets struct {
	GoalCounters
	// CustomDays sets the duration of a custom goal. Zero means 7.
	CustomDays int `validate:"min=0,max=365"`
}

// Goal is a time-boxed study target. At most one goal is active at a time.
type Goal struct {
	ID        string       `json:"id"`
	Type      GoalType     `json:"type"`
	Target    GoalCounters `json:"target"`
	Progress  GoalCounters `json:"progress"`
	StartDate string       `json:"startDate"`
	EndDate   string       `json:"endDate"`
	Status    string       `json:"status"`
}

// GoalRecord is the immutable history entry written when a goal completes.
type GoalRecord struct {
	ID             string       `json:"id"`
	Type           GoalType     `json:"type"`
	Achieved       bool         `json:"achieved"`
	CompletionRate int          `json:"completionRate"`
	EndDate        string       `json:"endDate"`
	Target         GoalCounters `json:"target"`
	Progress       GoalCounters `json:"progress"`
}

// Goals is the persisted goal container. History is oldest first.
// StreakGoals counts consecutive achieved goals.
type Goals struct {
	Current     *Goal        `json:"current"`
	History     []GoalRecord `json:"history"`
	StreakGoals int          `json:"streakGoals"`
}

// GoalPreset is a named tier of weekly targets.
type GoalPreset struct {
	Key         string       `json:"key"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Weekly      GoalCounters `json:"weekly"`
}
