package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strconv"

	"github.com/msomdec/studytrack/internal/domain"
)

const flagTrue = "true"

// ProgressService derives completion state from per-item flags. Percentages
// are never stored; they are recomputed from the flags on every read.
type ProgressService struct {
	store domain.Store
	clock Clock
}

// NewProgressService creates a new ProgressService.
func NewProgressService(store domain.Store, clock Clock) *ProgressService {
	return &ProgressService{store: store, clock: clock}
}

func (s *ProgressService) flag(ctx context.Context, key string) (bool, error) {
	v, ok, err := s.store.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("read %s: %w", key, err)
	}
	return ok && v == flagTrue, nil
}

func (s *ProgressService) setFlag(ctx context.Context, key string) error {
	if err := s.store.Set(ctx, key, flagTrue); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

func (s *ProgressService) clearKey(ctx context.Context, key string) error {
	if err := s.store.Delete(ctx, key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// MarkVideoComplete sets the completion flag for a video.
func (s *ProgressService) MarkVideoComplete(ctx context.Context, moduleID int, videoID string) error {
	return s.setFlag(ctx, domain.VideoCompletedKey(moduleID, videoID))
}

// UnmarkVideoComplete removes the completion flag for a video.
func (s *ProgressService) UnmarkVideoComplete(ctx context.Context, moduleID int, videoID string) error {
	return s.clearKey(ctx, domain.VideoCompletedKey(moduleID, videoID))
}

// IsVideoComplete reports whether a video is marked complete.
func (s *ProgressService) IsVideoComplete(ctx context.Context, moduleID int, videoID string) (bool, error) {
	return s.flag(ctx, domain.VideoCompletedKey(moduleID, videoID))
}

// MarkLabComplete sets the lab flag for a module.
func (s *ProgressService) MarkLabComplete(ctx context.Context, moduleID int) error {
	return s.setFlag(ctx, domain.LabCompletedKey(moduleID))
}

// UnmarkLabComplete removes the lab flag for a module.
func (s *ProgressService) UnmarkLabComplete(ctx context.Context, moduleID int) error {
	return s.clearKey(ctx, domain.LabCompletedKey(moduleID))
}

// IsLabComplete reports whether a module's lab is marked complete.
func (s *ProgressService) IsLabComplete(ctx context.Context, moduleID int) (bool, error) {
	return s.flag(ctx, domain.LabCompletedKey(moduleID))
}

// MarkFlashcardsAdded records that a module's deck was imported.
func (s *ProgressService) MarkFlashcardsAdded(ctx context.Context, moduleID int) error {
	return s.setFlag(ctx, domain.FlashcardsAddedKey(moduleID))
}

// UnmarkFlashcardsAdded clears the flashcard flag for a module.
func (s *ProgressService) UnmarkFlashcardsAdded(ctx context.Context, moduleID int) error {
	return s.clearKey(ctx, domain.FlashcardsAddedKey(moduleID))
}

// AreFlashcardsAdded reports whether a module's deck was imported.
func (s *ProgressService) AreFlashcardsAdded(ctx context.Context, moduleID int) (bool, error) {
	return s.flag(ctx, domain.FlashcardsAddedKey(moduleID))
}

// SaveVideoPosition records the playback position of a video in seconds.
// The position must be a finite, non-negative number.
func (s *ProgressService) SaveVideoPosition(ctx context.Context, moduleID int, videoID string, seconds float64) error {
	if !validPosition(seconds) {
		return fmt.Errorf("%w: video position must be a finite number of seconds >= 0, got %v", domain.ErrInvalidInput, seconds)
	}
	key := domain.VideoPositionKey(moduleID, videoID)
	if err := s.store.Set(ctx, key, strconv.FormatFloat(seconds, 'f', -1, 64)); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

// VideoPosition returns the saved playback position, or 0.
func (s *ProgressService) VideoPosition(ctx context.Context, moduleID int, videoID string) (float64, error) {
	key := domain.VideoPositionKey(moduleID, videoID)
	v, ok, err := s.store.Get(ctx, key)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", key, err)
	}
	if !ok {
		return 0, nil
	}
	pos, err := strconv.ParseFloat(v, 64)
	if err != nil || !validPosition(pos) {
		slog.Warn("discarding malformed video position", "key", key, "value", v)
		return 0, nil
	}
	return pos, nil
}

func validPosition(seconds float64) bool {
	return !math.IsNaN(seconds) && !math.IsInf(seconds, 0) && seconds >= 0
}

// VideoWatchPercentage returns how much of a video has been played, capped at 100.
func (s *ProgressService) VideoWatchPercentage(ctx context.Context, moduleID int, videoID string, durationSeconds float64) (float64, error) {
	if durationSeconds <= 0 {
		return 0, nil
	}
	pos, err := s.VideoPosition(ctx, moduleID, videoID)
	if err != nil {
		return 0, err
	}
	return min(pos/durationSeconds*100, 100), nil
}

// SetModuleConfidence stores a 1-5 rating. Out-of-range values are logged
// and ignored; the caller sees no change rather than an error.
func (s *ProgressService) SetModuleConfidence(ctx context.Context, moduleID, confidence int) error {
	if confidence < domain.ConfidenceMin || confidence > domain.ConfidenceMax {
		slog.Error("confidence must be between 1 and 5", "module_id", moduleID, "confidence", confidence)
		return nil
	}
	key := domain.ConfidenceKey(moduleID)
	if err := s.store.Set(ctx, key, strconv.Itoa(confidence)); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

// ModuleConfidence returns the rating for a module, or 0 when unrated.
func (s *ProgressService) ModuleConfidence(ctx context.Context, moduleID int) (int, error) {
	key := domain.ConfidenceKey(moduleID)
	v, ok, err := s.store.Get(ctx, key)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", key, err)
	}
	if !ok {
		return domain.ConfidenceUnrated, nil
	}
	c, err := strconv.Atoi(v)
	if err != nil || c < domain.ConfidenceMin || c > domain.ConfidenceMax {
		slog.Warn("discarding malformed confidence", "key", key, "value", v)
		return domain.ConfidenceUnrated, nil
	}
	return c, nil
}

// ClearModuleConfidence removes a module's rating.
func (s *ProgressService) ClearModuleConfidence(ctx context.Context, moduleID int) error {
	return s.clearKey(ctx, domain.ConfidenceKey(moduleID))
}

// ModuleProgress returns the percentage of a module's eligible items that are
// complete. Eligible items are its videos plus the lab and flashcard deck when
// present. A module with nothing eligible is 0% done.
func (s *ProgressService) ModuleProgress(ctx context.Context, m domain.Module) (float64, error) {
	total, completed := 0, 0

	for _, v := range m.Videos {
		total++
		done, err := s.IsVideoComplete(ctx, m.ID, v.ID)
		if err != nil {
			return 0, err
		}
		if done {
			completed++
		}
	}

	if m.HasLab() {
		total++
		done, err := s.IsLabComplete(ctx, m.ID)
		if err != nil {
			return 0, err
		}
		if done {
			completed++
		}
	}

	if m.HasFlashcards() {
		total++
		done, err := s.AreFlashcardsAdded(ctx, m.ID)
		if err != nil {
			return 0, err
		}
		if done {
			completed++
		}
	}

	if total == 0 {
		return 0, nil
	}
	return float64(completed) / float64(total) * 100, nil
}

// OverallProgress is the unweighted mean of ModuleProgress across modules.
func (s *ProgressService) OverallProgress(ctx context.Context, modules []domain.Module) (float64, error) {
	if len(modules) == 0 {
		return 0, nil
	}
	sum := 0.0
	for _, m := range modules {
		p, err := s.ModuleProgress(ctx, m)
		if err != nil {
			return 0, err
		}
		sum += p
	}
	return sum / float64(len(modules)), nil
}

// ModulesNeedingReview returns started modules rated 1 or 2.
func (s *ProgressService) ModulesNeedingReview(ctx context.Context, modules []domain.Module) ([]domain.Module, error) {
	var out []domain.Module
	for _, m := range modules {
		c, err := s.ModuleConfidence(ctx, m.ID)
		if err != nil {
			return nil, err
		}
		if c == domain.ConfidenceUnrated || c > 2 {
			continue
		}
		p, err := s.ModuleProgress(ctx, m)
		if err != nil {
			return nil, err
		}
		if p > 0 {
			out = append(out, m)
		}
	}
	return out, nil
}

// ModuleStatistics aggregates completion counts. AvgConfidence averages only
// rated modules.
func (s *ProgressService) ModuleStatistics(ctx context.Context, modules []domain.Module) (domain.ModuleStatistics, error) {
	stats := domain.ModuleStatistics{TotalModules: len(modules)}
	confidenceSum, rated := 0, 0

	for _, m := range modules {
		p, err := s.ModuleProgress(ctx, m)
		if err != nil {
			return domain.ModuleStatistics{}, err
		}
		if p == 100 {
			stats.CompletedModules++
		}

		stats.TotalVideos += len(m.Videos)
		for _, v := range m.Videos {
			done, err := s.IsVideoComplete(ctx, m.ID, v.ID)
			if err != nil {
				return domain.ModuleStatistics{}, err
			}
			if done {
				stats.CompletedVideos++
			}
		}

		if m.HasLab() {
			stats.TotalLabs++
			done, err := s.IsLabComplete(ctx, m.ID)
			if err != nil {
				return domain.ModuleStatistics{}, err
			}
			if done {
				stats.CompletedLabs++
			}
		}

		if m.HasFlashcards() {
			stats.TotalFlashcards++
			done, err := s.AreFlashcardsAdded(ctx, m.ID)
			if err != nil {
				return domain.ModuleStatistics{}, err
			}
			if done {
				stats.AddedFlashcards++
			}
		}

		c, err := s.ModuleConfidence(ctx, m.ID)
		if err != nil {
			return domain.ModuleStatistics{}, err
		}
		if c > 0 {
			confidenceSum += c
			rated++
		}
	}

	if rated > 0 {
		stats.AvgConfidence = float64(confidenceSum) / float64(rated)
	}
	return stats, nil
}

// LastWatchedVideo returns the last-watched pointer, or nil if none is stored.
func (s *ProgressService) LastWatchedVideo(ctx context.Context) (*domain.LastWatched, error) {
	var lw domain.LastWatched
	ok, err := loadJSON(ctx, s.store, domain.KeyLastWatched, &lw)
	if err != nil || !ok {
		return nil, err
	}
	return &lw, nil
}

// SetLastWatchedVideo overwrites the last-watched pointer.
func (s *ProgressService) SetLastWatchedVideo(ctx context.Context, moduleID int, videoID string) error {
	return saveJSON(ctx, s.store, domain.KeyLastWatched, domain.LastWatched{
		ModuleID:  moduleID,
		VideoID:   videoID,
		Timestamp: s.clock().UnixMilli(),
	})
}

// LastWatchedModule resolves the last-watched pointer against the catalog.
// It returns nil when there is no pointer or its module is not in modules.
func (s *ProgressService) LastWatchedModule(ctx context.Context, modules []domain.Module) (*domain.LastWatchedModule, error) {
	lw, err := s.LastWatchedVideo(ctx)
	if err != nil || lw == nil {
		return nil, err
	}
	m := domain.FindModule(modules, lw.ModuleID)
	if m == nil {
		return nil, nil
	}
	return &domain.LastWatchedModule{
		Module:    *m,
		Video:     m.FindVideo(lw.VideoID),
		Timestamp: lw.Timestamp,
	}, nil
}

// ExportProgress returns every progress key and its raw value.
func (s *ProgressService) ExportProgress(ctx context.Context) (map[string]string, error) {
	keys, err := s.progressKeys(ctx)
	if err != nil {
		return nil, err
	}
	data := make(map[string]string, len(keys))
	for _, k := range keys {
		v, ok, err := s.store.Get(ctx, k)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", k, err)
		}
		if ok {
			data[k] = v
		}
	}
	return data, nil
}

// ImportProgress writes exported values back verbatim and returns how many
// keys were written. Keys outside the progress namespace are skipped.
func (s *ProgressService) ImportProgress(ctx context.Context, data map[string]string) (int, error) {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	written := 0
	for _, k := range keys {
		if !domain.IsProgressKey(k) {
			slog.Warn("skipping non-progress key on import", "key", k)
			continue
		}
		if err := s.store.Set(ctx, k, data[k]); err != nil {
			return written, fmt.Errorf("write %s: %w", k, err)
		}
		written++
	}
	return written, nil
}

// ClearAllProgress deletes every progress key. Settings, theme and layout
// keys survive.
func (s *ProgressService) ClearAllProgress(ctx context.Context) error {
	keys, err := s.progressKeys(ctx)
	if err != nil {
		return err
	}
	for _, k := range keys {
		if err := s.clearKey(ctx, k); err != nil {
			return err
		}
	}
	slog.Info("progress cleared", "keys", len(keys))
	return nil
}

func (s *ProgressService) progressKeys(ctx context.Context) ([]string, error) {
	all, err := s.store.Keys(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("list keys: %w", err)
	}
	var keys []string
	for _, k := range all {
		if domain.IsProgressKey(k) {
			keys = append(keys, k)
		}
	}
	return keys, nil
}
