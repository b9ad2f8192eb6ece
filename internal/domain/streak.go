package domain

import (
	"encoding/json"
	"time"
)

// MaxStreakHistory caps the number of day entries kept in a Streak.
const MaxStreakHistory = 365

type ActivityType string

const (
	ActivityVideo     ActivityType = "video"
	ActivityLab       ActivityType = "lab"
	ActivityFlashcard ActivityType = "flashcard"
	ActivityGeneral   ActivityType = "general"
)

// Streak is the persisted study streak record.
//
// StreakHistory is date-ascending with at most one entry per date.
type Streak struct {
	CurrentStreak int           `json:"currentStreak"`
	LongestStreak int           `json:"longestStreak"`
	LastStudyDate string        `json:"lastStudyDate"` // YYYY-MM-DD, null before the first activity
	StreakHistory []DayActivity `json:"streakHistory"`
}

// MarshalJSON writes an empty LastStudyDate as null.
func (s Streak) MarshalJSON() ([]byte, error) {
	type plain Streak
	return json.Marshal(struct {
		plain
		LastStudyDate *string `json:"lastStudyDate"`
	}{plain(s), nullDate(s.LastStudyDate)})
}

// nullDate maps "" to nil so an unset date is stored as JSON null. Decoding
// null into a string field leaves it empty, so no UnmarshalJSON is needed.
func nullDate(date string) *string {
	if date == "" {
		return nil
	}
	return &date
}

// DayActivity is the activity log for one calendar day.
type DayActivity struct {
	Date                string     `json:"date"`
	ActivitiesCompleted int        `json:"activitiesCompleted"`
	Activities          []Activity `json:"activities"`
}

type Activity struct {
	Type      ActivityType `json:"type"`
	Timestamp time.Time    `json:"timestamp"`
}

// RecentDay is one cell of a gap-filled activity sequence.
type RecentDay struct {
	Date                string `json:"date"`
	ActivitiesCompleted int    `json:"activitiesCompleted"`
	HasActivity         bool   `json:"hasActivity"`
}

// CalendarDay is one populated cell of a month calendar.
type CalendarDay struct {
	ActivitiesCompleted int `json:"activitiesCompleted"`
	Intensity           int `json:"intensity"` // 1..4
}

// StreakMilestone is a fixed streak length with derived progress.
type StreakMilestone struct {
	Days     int     `json:"days"`
	Name     string  `json:"name"`
	Achieved bool    `json:"achieved"`
	Progress float64 `json:"progress"` // 0..100
}
