package domain

import (
	"encoding/json"
	"time"
)

// MaxPerformanceHistory caps the number of daily snapshots kept.
const MaxPerformanceHistory = 365

// Snapshot captures aggregate progress for one calendar day.
type Snapshot struct {
	Date             string  `json:"date"`
	OverallProgress  float64 `json:"overallProgress"`
	ModulesCompleted int     `json:"modulesCompleted"`
	VideosCompleted  int     `json:"videosCompleted"`
	LabsCompleted    int     `json:"labsCompleted"`
	FlashcardsAdded  int     `json:"flashcardsAdded"`
	AvgConfidence    float64 `json:"avgConfidence"`
}

// PerformanceHistory is the persisted snapshot log. Daily is date-ascending,
// one entry per date. Weekly is carried through as stored.
type PerformanceHistory struct {
	Daily            []Snapshot        `json:"daily"`
	Weekly           []json.RawMessage `json:"weekly"`
	LastSnapshotDate string            `json:"lastSnapshotDate"` // null until the first snapshot
}

// MarshalJSON writes an empty LastSnapshotDate as null.
func (h PerformanceHistory) MarshalJSON() ([]byte, error) {
	type plain PerformanceHistory
	return json.Marshal(struct {
		plain
		LastSnapshotDate *string `json:"lastSnapshotDate"`
	}{plain(h), nullDate(h.LastSnapshotDate)})
}

// WeeklyVelocity is the number of modules completed in one 7-day window.
type WeeklyVelocity struct {
	WeekStart        string `json:"weekStart"`
	Label            string `json:"week"` // e.g. "Mar 4"
	ModulesCompleted int    `json:"modulesCompleted"`
}

// WeekSummary is the delta between the first and last snapshot of the current
// Monday-start week.
type WeekSummary struct {
	WeekStart                string  `json:"weekStart"`
	ModulesCompletedThisWeek int     `json:"modulesCompletedThisWeek"`
	VideosCompletedThisWeek  int     `json:"videosCompletedThisWeek"`
	LabsCompletedThisWeek    int     `json:"labsCompletedThisWeek"`
	ProgressGain             float64 `json:"progressGain"`
	AvgConfidence            float64 `json:"avgConfidence"`
}

type PredictionStatus string

const (
	PredictionInsufficientData PredictionStatus = "insufficient-data"
	PredictionCompleted        PredictionStatus = "completed"
	PredictionUnknown          PredictionStatus = "unknown"
	PredictionEstimated        PredictionStatus = "estimated"
)

// Prediction is the outcome of a completion-date forecast. Date is set only
// when Status is PredictionEstimated.
type Prediction struct {
	Status PredictionStatus `json:"status"`
	Date   time.Time        `json:"date,omitzero"`
}

// ConfidenceDistribution buckets started modules by confidence rating.
type ConfidenceDistribution struct {
	NeedsReview int `json:"needsReview"` // 1-2
	Moderate    int `json:"moderate"`    // 3
	Confident   int `json:"confident"`   // 4-5
	NotRated    int `json:"notRated"`
}
