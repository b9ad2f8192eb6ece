package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/msomdec/studytrack/internal/domain"
)

// predictionWindowDays is the span over which completion velocity is measured.
const predictionWindowDays = 14

// minPredictionHistory is the number of recorded days required before a
// completion date is predicted.
const minPredictionHistory = 7

// PerformanceService keeps one aggregate snapshot per day and derives trend
// analytics from them.
type PerformanceService struct {
	store    domain.Store
	progress *ProgressService
	clock    Clock
}

// NewPerformanceService creates a new PerformanceService.
func NewPerformanceService(store domain.Store, progress *ProgressService, clock Clock) *PerformanceService {
	return &PerformanceService{store: store, progress: progress, clock: clock}
}

// History returns the stored snapshot log.
func (s *PerformanceService) History(ctx context.Context) (domain.PerformanceHistory, error) {
	var h domain.PerformanceHistory
	ok, err := loadJSON(ctx, s.store, domain.KeyPerformance, &h)
	if err != nil {
		return domain.PerformanceHistory{}, err
	}
	if !ok {
		return domain.PerformanceHistory{}, nil
	}
	return h, nil
}

func (s *PerformanceService) save(ctx context.Context, h domain.PerformanceHistory) error {
	if h.Daily == nil {
		h.Daily = []domain.Snapshot{}
	}
	if h.Weekly == nil {
		h.Weekly = []json.RawMessage{}
	}
	return saveJSON(ctx, s.store, domain.KeyPerformance, h)
}

// RecordDailySnapshot computes today's aggregate stats and upserts them as
// today's snapshot. Repeated calls on one day leave a single entry.
func (s *PerformanceService) RecordDailySnapshot(ctx context.Context, modules []domain.Module) (domain.Snapshot, error) {
	overall, err := s.progress.OverallProgress(ctx, modules)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("overall progress: %w", err)
	}
	stats, err := s.progress.ModuleStatistics(ctx, modules)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("module statistics: %w", err)
	}

	today := formatDate(s.clock())
	snap := domain.Snapshot{
		Date:             today,
		OverallProgress:  math.Round(overall*10) / 10,
		ModulesCompleted: stats.CompletedModules,
		VideosCompleted:  stats.CompletedVideos,
		LabsCompleted:    stats.CompletedLabs,
		FlashcardsAdded:  stats.AddedFlashcards,
		AvgConfidence:    stats.AvgConfidence,
	}

	h, err := s.History(ctx)
	if err != nil {
		return domain.Snapshot{}, err
	}
	h.Daily = upsertSnapshot(h.Daily, snap)
	if len(h.Daily) > domain.MaxPerformanceHistory {
		h.Daily = h.Daily[len(h.Daily)-domain.MaxPerformanceHistory:]
	}
	h.LastSnapshotDate = today

	if err := s.save(ctx, h); err != nil {
		return domain.Snapshot{}, fmt.Errorf("save performance history: %w", err)
	}
	return snap, nil
}

// upsertSnapshot replaces the entry with the same date or inserts snap in
// date order.
func upsertSnapshot(daily []domain.Snapshot, snap domain.Snapshot) []domain.Snapshot {
	i, found := slices.BinarySearchFunc(daily, snap.Date, func(e domain.Snapshot, d string) int {
		return strings.Compare(e.Date, d)
	})
	out := slices.Clone(daily)
	if found {
		out[i] = snap
		return out
	}
	return slices.Insert(out, i, snap)
}

// Range returns the stored snapshots with start <= date <= end.
func (s *PerformanceService) Range(ctx context.Context, start, end string) ([]domain.Snapshot, error) {
	h, err := s.History(ctx)
	if err != nil {
		return nil, err
	}
	return snapshotsBetween(h.Daily, start, end), nil
}

func snapshotsBetween(daily []domain.Snapshot, start, end string) []domain.Snapshot {
	var out []domain.Snapshot
	for _, e := range daily {
		if e.Date >= start && e.Date <= end {
			out = append(out, e)
		}
	}
	return out
}

// RecentPerformance returns the last days calendar days, oldest first.
// Days without a snapshot are zero-valued, not interpolated.
func (s *PerformanceService) RecentPerformance(ctx context.Context, days int) ([]domain.Snapshot, error) {
	h, err := s.History(ctx)
	if err != nil {
		return nil, err
	}
	return recentSnapshots(h.Daily, s.clock(), days), nil
}

func recentSnapshots(daily []domain.Snapshot, now time.Time, days int) []domain.Snapshot {
	byDate := make(map[string]domain.Snapshot, len(daily))
	for _, e := range daily {
		byDate[e.Date] = e
	}
	out := make([]domain.Snapshot, 0, max(days, 0))
	for i := days - 1; i >= 0; i-- {
		date := formatDate(addDays(now, -i))
		snap, ok := byDate[date]
		if !ok {
			snap = domain.Snapshot{Date: date}
		}
		out = append(out, snap)
	}
	return out
}

// CurrentWeekSummary compares the first and last snapshot of the current
// Monday-start week. It returns nil when the week has no snapshots.
func (s *PerformanceService) CurrentWeekSummary(ctx context.Context) (*domain.WeekSummary, error) {
	now := s.clock()
	weekStart := formatDate(startOfWeek(now))
	week, err := s.Range(ctx, weekStart, formatDate(endOfWeek(now)))
	if err != nil {
		return nil, err
	}
	if len(week) == 0 {
		return nil, nil
	}
	first, last := week[0], week[len(week)-1]
	return &domain.WeekSummary{
		WeekStart:                weekStart,
		ModulesCompletedThisWeek: last.ModulesCompleted - first.ModulesCompleted,
		VideosCompletedThisWeek:  last.VideosCompleted - first.VideosCompleted,
		LabsCompletedThisWeek:    last.LabsCompleted - first.LabsCompleted,
		ProgressGain:             last.OverallProgress - first.OverallProgress,
		AvgConfidence:            last.AvgConfidence,
	}, nil
}

// WeeklyVelocity returns modules completed in each of the last weeks 7-day
// windows ending today, oldest first. A window with fewer than two snapshots
// has velocity 0.
func (s *PerformanceService) WeeklyVelocity(ctx context.Context, weeks int) ([]domain.WeeklyVelocity, error) {
	h, err := s.History(ctx)
	if err != nil {
		return nil, err
	}
	now := s.clock()
	out := make([]domain.WeeklyVelocity, 0, max(weeks, 0))
	for i := weeks - 1; i >= 0; i-- {
		weekEnd := addDays(now, -i*7)
		weekStart := addDays(weekEnd, -6)
		window := snapshotsBetween(h.Daily, formatDate(weekStart), formatDate(weekEnd))

		completed := 0
		if len(window) >= 2 {
			completed = max(0, window[len(window)-1].ModulesCompleted-window[0].ModulesCompleted)
		}
		out = append(out, domain.WeeklyVelocity{
			WeekStart:        formatDate(weekStart),
			Label:            weekStart.Format("Jan 2"),
			ModulesCompleted: completed,
		})
	}
	return out, nil
}

// PredictCompletionDate extrapolates a finish date from the change in
// completed modules over the last 14 days. This is a two-point linear
// estimate, not a regression. totalModules <= 0 means len(modules).
func (s *PerformanceService) PredictCompletionDate(ctx context.Context, modules []domain.Module, totalModules int) (domain.Prediction, error) {
	if totalModules <= 0 {
		totalModules = len(modules)
	}
	h, err := s.History(ctx)
	if err != nil {
		return domain.Prediction{}, err
	}
	if len(h.Daily) < minPredictionHistory {
		return domain.Prediction{Status: domain.PredictionInsufficientData}, nil
	}

	now := s.clock()
	recent := recentSnapshots(h.Daily, now, predictionWindowDays)
	first, last := recent[0], recent[len(recent)-1]

	remaining := totalModules - last.ModulesCompleted
	if remaining <= 0 {
		return domain.Prediction{Status: domain.PredictionCompleted}, nil
	}

	velocity := float64(last.ModulesCompleted-first.ModulesCompleted) / predictionWindowDays
	if velocity <= 0 {
		return domain.Prediction{Status: domain.PredictionUnknown}, nil
	}

	daysNeeded := int(math.Ceil(float64(remaining) / velocity))
	return domain.Prediction{
		Status: domain.PredictionEstimated,
		Date:   startOfDay(addDays(now, daysNeeded)),
	}, nil
}

// ConfidenceDistribution buckets started modules by rating. Modules with no
// progress are left out entirely.
func (s *PerformanceService) ConfidenceDistribution(ctx context.Context, modules []domain.Module) (domain.ConfidenceDistribution, error) {
	var dist domain.ConfidenceDistribution
	for _, m := range modules {
		p, err := s.progress.ModuleProgress(ctx, m)
		if err != nil {
			return domain.ConfidenceDistribution{}, err
		}
		if p <= 0 {
			continue
		}
		c, err := s.progress.ModuleConfidence(ctx, m.ID)
		if err != nil {
			return domain.ConfidenceDistribution{}, err
		}
		switch {
		case c == domain.ConfidenceUnrated:
			dist.NotRated++
		case c <= 2:
			dist.NeedsReview++
		case c == 3:
			dist.Moderate++
		default:
			dist.Confident++
		}
	}
	return dist, nil
}

// Reset deletes all performance history.
func (s *PerformanceService) Reset(ctx context.Context) error {
	if err := s.store.Delete(ctx, domain.KeyPerformance); err != nil {
		return fmt.Errorf("delete performance history: %w", err)
	}
	return nil
}
