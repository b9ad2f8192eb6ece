package domain

type RecommendationType string

const (
	RecommendContinue RecommendationType = "continue"
	RecommendReview   RecommendationType = "review"
	RecommendNext     RecommendationType = "next"
	RecommendQuickWin RecommendationType = "quick-win"
	RecommendStreak   RecommendationType = "streak"
)

// Recommendation suggests what to study next.
type Recommendation struct {
	Type        RecommendationType `json:"type"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Module      *Module            `json:"module,omitempty"`
	Priority    int                `json:"priority"`
}

// CourseMilestone is a course-completion tier (25%, 50%, ...).
type CourseMilestone struct {
	Percent          int    `json:"percent"`
	Label            string `json:"label"`
	ModulesNeeded    int    `json:"modulesNeeded"`
	ModulesRemaining int    `json:"modulesRemaining"`
	Completed        bool   `json:"isCompleted"`
	Next             bool   `json:"isNext"`
}

type InsightKind string

const (
	InsightMomentum InsightKind = "momentum"
	InsightReview   InsightKind = "review"
	InsightGoal     InsightKind = "goal"
)

// Insight is a short observation about the learner's study pattern.
type Insight struct {
	Kind InsightKind `json:"kind"`
	Text string      `json:"text"`
}
