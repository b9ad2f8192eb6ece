package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/msomdec/studytrack/internal/domain"
)

// ActivityService is the single entry point for user actions that touch
// progress, streak, and performance together.
//
// The steps of one action run in order: progress flag, streak activity,
// performance snapshot. They are not transactional. When a step fails the
// remaining steps are skipped and the error names the failed step; every
// step is safe to repeat, so retrying the whole action converges.
type ActivityService struct {
	progress    *ProgressService
	streak      *StreakService
	performance *PerformanceService
	clock       Clock
}

// NewActivityService creates a new ActivityService.
func NewActivityService(progress *ProgressService, streak *StreakService, performance *PerformanceService, clock Clock) *ActivityService {
	return &ActivityService{
		progress:    progress,
		streak:      streak,
		performance: performance,
		clock:       clock,
	}
}

// ComprehensiveStats bundles the figures shown on the dashboard.
type ComprehensiveStats struct {
	Progress       domain.ModuleStatistics `json:"progress"`
	Streak         domain.Streak           `json:"streak"`
	RecentActivity []domain.RecentDay      `json:"recentActivity"`
	Performance    []domain.Snapshot       `json:"performance"`
}

// RecordVideoCompletion marks or unmarks a video. Only the completing
// direction counts as study activity; unmarking reverts the flag and leaves
// streak and performance history as recorded.
func (s *ActivityService) RecordVideoCompletion(ctx context.Context, moduleID int, videoID string, complete bool, modules []domain.Module) error {
	if !complete {
		if err := s.progress.UnmarkVideoComplete(ctx, moduleID, videoID); err != nil {
			return fmt.Errorf("unmark video: %w", err)
		}
		return nil
	}
	if err := s.progress.MarkVideoComplete(ctx, moduleID, videoID); err != nil {
		return fmt.Errorf("mark video: %w", err)
	}
	return s.afterStudy(ctx, domain.ActivityVideo, modules)
}

// RecordLabCompletion marks or unmarks a module's lab.
func (s *ActivityService) RecordLabCompletion(ctx context.Context, moduleID int, complete bool, modules []domain.Module) error {
	if !complete {
		if err := s.progress.UnmarkLabComplete(ctx, moduleID); err != nil {
			return fmt.Errorf("unmark lab: %w", err)
		}
		return nil
	}
	if err := s.progress.MarkLabComplete(ctx, moduleID); err != nil {
		return fmt.Errorf("mark lab: %w", err)
	}
	return s.afterStudy(ctx, domain.ActivityLab, modules)
}

// RecordFlashcardsAdded marks or unmarks a module's flashcard deck.
func (s *ActivityService) RecordFlashcardsAdded(ctx context.Context, moduleID int, added bool, modules []domain.Module) error {
	if !added {
		if err := s.progress.UnmarkFlashcardsAdded(ctx, moduleID); err != nil {
			return fmt.Errorf("unmark flashcards: %w", err)
		}
		return nil
	}
	if err := s.progress.MarkFlashcardsAdded(ctx, moduleID); err != nil {
		return fmt.Errorf("mark flashcards: %w", err)
	}
	return s.afterStudy(ctx, domain.ActivityFlashcard, modules)
}

// RecordConfidenceRating sets a module's confidence, or clears it when
// confidence is 0, then refreshes today's snapshot. Ratings are not study
// activity for the streak.
func (s *ActivityService) RecordConfidenceRating(ctx context.Context, moduleID, confidence int, modules []domain.Module) error {
	if confidence == domain.ConfidenceUnrated {
		if err := s.progress.ClearModuleConfidence(ctx, moduleID); err != nil {
			return fmt.Errorf("clear confidence: %w", err)
		}
	} else if err := s.progress.SetModuleConfidence(ctx, moduleID, confidence); err != nil {
		return fmt.Errorf("set confidence: %w", err)
	}
	return s.snapshot(ctx, modules)
}

// RecordVideoOpened remembers the video as last watched. Opening a video is
// not study activity.
func (s *ActivityService) RecordVideoOpened(ctx context.Context, moduleID int, videoID string) error {
	if err := s.progress.SetLastWatchedVideo(ctx, moduleID, videoID); err != nil {
		return fmt.Errorf("set last watched: %w", err)
	}
	return nil
}

// RecordVideoPosition saves the playback position and marks the video as
// last watched.
func (s *ActivityService) RecordVideoPosition(ctx context.Context, moduleID int, videoID string, seconds float64) error {
	if err := s.progress.SaveVideoPosition(ctx, moduleID, videoID, seconds); err != nil {
		return fmt.Errorf("save position: %w", err)
	}
	return s.RecordVideoOpened(ctx, moduleID, videoID)
}

// InitializeTracking runs once per session: it expires a lapsed streak and
// takes today's first snapshot if there is none yet.
func (s *ActivityService) InitializeTracking(ctx context.Context, modules []domain.Module) error {
	if _, err := s.streak.CheckStreakStatus(ctx); err != nil {
		return fmt.Errorf("check streak: %w", err)
	}
	if len(modules) == 0 {
		return nil
	}
	h, err := s.performance.History(ctx)
	if err != nil {
		return fmt.Errorf("read performance history: %w", err)
	}
	if h.LastSnapshotDate == formatDate(s.clock()) {
		return nil
	}
	return s.snapshot(ctx, modules)
}

// ComprehensiveStats gathers module statistics, the streak, the last week of
// activity, and the last 30 days of snapshots.
func (s *ActivityService) ComprehensiveStats(ctx context.Context, modules []domain.Module) (ComprehensiveStats, error) {
	stats, err := s.progress.ModuleStatistics(ctx, modules)
	if err != nil {
		return ComprehensiveStats{}, fmt.Errorf("module statistics: %w", err)
	}
	streak, err := s.streak.Info(ctx)
	if err != nil {
		return ComprehensiveStats{}, fmt.Errorf("streak: %w", err)
	}
	recent, err := s.streak.RecentActivity(ctx, 7)
	if err != nil {
		return ComprehensiveStats{}, fmt.Errorf("recent activity: %w", err)
	}
	perf, err := s.performance.RecentPerformance(ctx, 30)
	if err != nil {
		return ComprehensiveStats{}, fmt.Errorf("recent performance: %w", err)
	}
	return ComprehensiveStats{
		Progress:       stats,
		Streak:         streak,
		RecentActivity: recent,
		Performance:    perf,
	}, nil
}

func (s *ActivityService) afterStudy(ctx context.Context, activityType domain.ActivityType, modules []domain.Module) error {
	if _, err := s.streak.RecordStudyActivity(ctx, activityType); err != nil {
		return fmt.Errorf("record streak activity: %w", err)
	}
	return s.snapshot(ctx, modules)
}

// snapshot refreshes today's performance entry. It is skipped without a
// module list, since the aggregate would be empty.
func (s *ActivityService) snapshot(ctx context.Context, modules []domain.Module) error {
	if len(modules) == 0 {
		slog.Debug("skipping performance snapshot without modules")
		return nil
	}
	if _, err := s.performance.RecordDailySnapshot(ctx, modules); err != nil {
		return fmt.Errorf("record snapshot: %w", err)
	}
	return nil
}
