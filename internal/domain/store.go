package domain

import (
	"context"
	"fmt"
	"strings"
)

//go:generate mockgen -source=store.go -destination=mock/store_mock.go

// Store is a string-keyed value store. All tracker state lives behind it.
type Store interface {
	// Get returns the value stored under key. ok is false when the key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
	// Keys returns every key starting with prefix, sorted. An empty prefix matches all keys.
	Keys(ctx context.Context, prefix string) ([]string, error)
}

// Fixed keys.
const (
	KeyLastWatched = "last_watched"
	KeyStreak      = "study-streak"
	KeyGoals       = "learning-goals"
	KeyPerformance = "performance-history"
	KeySettings    = "app-settings"
)

// ProgressKeyPrefixes lists the key prefixes treated as progress data by
// export, import and clear. Anything else (settings, theme, layout) is left alone.
var ProgressKeyPrefixes = []string{
	"video_",
	"lab_",
	"flashcards_",
	"confidence_",
	KeyLastWatched,
	KeyStreak,
	KeyGoals,
	KeyPerformance,
}

// IsProgressKey reports whether key belongs to the progress namespace.
func IsProgressKey(key string) bool {
	for _, prefix := range ProgressKeyPrefixes {
		if strings.HasPrefix(key, prefix) {
			return true
		}
	}
	return false
}

// VideoPositionKey holds the last playback position in seconds.
func VideoPositionKey(moduleID int, videoID string) string {
	return fmt.Sprintf("video_%d_%s", moduleID, videoID)
}

// VideoCompletedKey is "true" once a video is watched.
func VideoCompletedKey(moduleID int, videoID string) string {
	return fmt.Sprintf("video_%d_%s_completed", moduleID, videoID)
}

// LabCompletedKey is "true" once a module's lab is done.
func LabCompletedKey(moduleID int) string {
	return fmt.Sprintf("lab_%d_completed", moduleID)
}

// FlashcardsAddedKey is "true" once a module's deck is imported.
func FlashcardsAddedKey(moduleID int) string {
	return fmt.Sprintf("flashcards_%d_added", moduleID)
}

// ConfidenceKey holds a module's 1-5 rating.
func ConfidenceKey(moduleID int) string {
	return fmt.Sprintf("confidence_%d", moduleID)
}
