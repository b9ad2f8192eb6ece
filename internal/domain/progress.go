package domain

// Confidence bounds. Zero is the external representation of "unrated".
const (
	ConfidenceUnrated = 0
	ConfidenceMin     = 1
	ConfidenceMax     = 5
)

// ModuleStatistics aggregates completion counts across a module list.
type ModuleStatistics struct {
	TotalModules     int     `json:"totalModules"`
	CompletedModules int     `json:"completedModules"`
	TotalVideos      int     `json:"totalVideos"`
	CompletedVideos  int     `json:"completedVideos"`
	TotalLabs        int     `json:"totalLabs"`
	CompletedLabs    int     `json:"completedLabs"`
	TotalFlashcards  int     `json:"totalFlashcards"`
	AddedFlashcards  int     `json:"addedFlashcards"`
	AvgConfidence    float64 `json:"avgConfidence"` // over rated modules only
}

// LastWatched points at the most recently opened video.
type LastWatched struct {
	ModuleID  int    `json:"moduleId"`
	VideoID   string `json:"videoId"`
	Timestamp int64  `json:"timestamp"` // Unix milliseconds
}

// LastWatchedModule resolves LastWatched against the catalog.
// Video is nil when the video no longer exists in the module.
type LastWatchedModule struct {
	Module    Module
	Video     *Video
	Timestamp int64
}
