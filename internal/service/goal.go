package service

import (
	"context"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/msomdec/studytrack/internal/domain"
	"github.com/msomdec/studytrack/pkg/validator"
)

const defaultCustomGoalDays = 7

var goalPresets = []domain.GoalPreset{
	{
		Key:         "beginner",
		Name:        "Beginner",
		Description: "Light study load - perfect for busy schedules",
		Weekly:      domain.GoalCounters{ModulesCompleted: 2, VideosWatched: 10, LabsCompleted: 1, FlashcardsAdded: 2},
	},
	{
		Key:         "moderate",
		Name:        "Moderate",
		Description: "Balanced pace - steady progress",
		Weekly:      domain.GoalCounters{ModulesCompleted: 4, VideosWatched: 20, LabsCompleted: 3, FlashcardsAdded: 4},
	},
	{
		Key:         "intense",
		Name:        "Intense",
		Description: "Fast track - maximum dedication",
		Weekly:      domain.GoalCounters{ModulesCompleted: 7, VideosWatched: 35, LabsCompleted: 5, FlashcardsAdded: 7},
	},
}

// GoalService manages the single active goal and the archive of finished
// ones. A goal is either completed (archived) or deleted (discarded).
type GoalService struct {
	store    domain.Store
	progress *ProgressService
	clock    Clock
}

// NewGoalService creates a new GoalService.
func NewGoalService(store domain.Store, progress *ProgressService, clock Clock) *GoalService {
	return &GoalService{store: store, progress: progress, clock: clock}
}

// ReconcileGoal reports whether goal has expired as of today. A goal stays
// live through its end date.
func ReconcileGoal(goal *domain.Goal, today time.Time) bool {
	return goal != nil && formatDate(today) > goal.EndDate
}

// GoalCompletion averages per-dimension completion over the dimensions with
// a nonzero target. Each dimension is capped at 100.
func GoalCompletion(goal *domain.Goal) float64 {
	if goal == nil {
		return 0
	}
	pairs := [][2]int{
		{goal.Target.ModulesCompleted, goal.Progress.ModulesCompleted},
		{goal.Target.VideosWatched, goal.Progress.VideosWatched},
		{goal.Target.LabsCompleted, goal.Progress.LabsCompleted},
		{goal.Target.FlashcardsAdded, goal.Progress.FlashcardsAdded},
	}
	var total float64
	n := 0
	for _, p := range pairs {
		if p[0] <= 0 {
			continue
		}
		total += min(float64(p[1])/float64(p[0])*100, 100)
		n++
	}
	if n == 0 {
		return 0
	}
	return total / float64(n)
}

// goalEndDate computes the last live day of a goal starting today. Weekly
// goals run to the end of next week.
func goalEndDate(goalType domain.GoalType, today time.Time, customDays int) time.Time {
	switch goalType {
	case domain.GoalWeekly:
		return endOfWeek(addDays(today, 7))
	case domain.GoalMonthly:
		return addMonths(today, 1)
	default:
		if customDays <= 0 {
			customDays = defaultCustomGoalDays
		}
		return addDays(today, customDays)
	}
}

func (s *GoalService) load(ctx context.Context) (domain.Goals, error) {
	var g domain.Goals
	ok, err := loadJSON(ctx, s.store, domain.KeyGoals, &g)
	if err != nil {
		return domain.Goals{}, err
	}
	if !ok {
		return domain.Goals{}, nil
	}
	return g, nil
}

func (s *GoalService) save(ctx context.Context, g domain.Goals) error {
	if g.History == nil {
		g.History = []domain.GoalRecord{}
	}
	if err := saveJSON(ctx, s.store, domain.KeyGoals, g); err != nil {
		return fmt.Errorf("save goals: %w", err)
	}
	return nil
}

// CreateGoal starts a new goal. Any active goal is completed and archived
// first, whatever its progress.
func (s *GoalService) CreateGoal(ctx context.Context, goalType domain.GoalType, targets domain.GoalTargets) (*domain.Goal, error) {
	switch goalType {
	case domain.GoalWeekly, domain.GoalMonthly, domain.GoalCustom:
	default:
		return nil, fmt.Errorf("%w: goal type must be weekly, monthly, or custom", domain.ErrInvalidInput)
	}
	if err := validator.ValidateStruct(targets); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	g, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	if g.Current != nil {
		g = archiveGoal(g)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generate goal id: %w", err)
	}
	today := s.clock()
	goal := &domain.Goal{
		ID:        "goal-" + id.String(),
		Type:      goalType,
		Target:    targets.GoalCounters,
		StartDate: formatDate(today),
		EndDate:   formatDate(goalEndDate(goalType, today, targets.CustomDays)),
		Status:    domain.GoalStatusActive,
	}
	g.Current = goal
	if err := s.save(ctx, g); err != nil {
		return nil, err
	}
	return goal, nil
}

// ActiveGoal returns the live goal, or nil. An expired goal is completed and
// archived on the way.
func (s *GoalService) ActiveGoal(ctx context.Context) (*domain.Goal, error) {
	g, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	if ReconcileGoal(g.Current, s.clock()) {
		if err := s.save(ctx, archiveGoal(g)); err != nil {
			return nil, err
		}
		return nil, nil
	}
	return g.Current, nil
}

// UpdateGoalProgress refreshes the active goal's progress from the module
// statistics. It returns nil when there is no active goal, including when
// the goal had expired and was archived by this call.
func (s *GoalService) UpdateGoalProgress(ctx context.Context, modules []domain.Module) (*domain.Goal, error) {
	g, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	if g.Current == nil {
		return nil, nil
	}
	if ReconcileGoal(g.Current, s.clock()) {
		if err := s.save(ctx, archiveGoal(g)); err != nil {
			return nil, err
		}
		return nil, nil
	}

	stats, err := s.progress.ModuleStatistics(ctx, modules)
	if err != nil {
		return nil, fmt.Errorf("module statistics: %w", err)
	}
	g.Current.Progress = domain.GoalCounters{
		ModulesCompleted: stats.CompletedModules,
		VideosWatched:    stats.CompletedVideos,
		LabsCompleted:    stats.CompletedLabs,
		FlashcardsAdded:  stats.AddedFlashcards,
	}
	if err := s.save(ctx, g); err != nil {
		return nil, err
	}
	return g.Current, nil
}

// CompleteCurrentGoal archives the active goal. It is a no-op without one.
func (s *GoalService) CompleteCurrentGoal(ctx context.Context) error {
	g, err := s.load(ctx)
	if err != nil {
		return err
	}
	if g.Current == nil {
		return nil
	}
	return s.save(ctx, archiveGoal(g))
}

// archiveGoal moves g.Current into the history and updates the achieved-goal
// streak.
func archiveGoal(g domain.Goals) domain.Goals {
	goal := g.Current
	completion := GoalCompletion(goal)
	achieved := completion >= 100

	g.History = append(slices.Clone(g.History), domain.GoalRecord{
		ID:             goal.ID,
		Type:           goal.Type,
		Achieved:       achieved,
		CompletionRate: int(math.Round(completion)),
		EndDate:        goal.EndDate,
		Target:         goal.Target,
		Progress:       goal.Progress,
	})
	if achieved {
		g.StreakGoals++
	} else {
		g.StreakGoals = 0
	}
	if len(g.History) > domain.MaxGoalHistory {
		g.History = g.History[len(g.History)-domain.MaxGoalHistory:]
	}
	g.Current = nil
	return g
}

// DeleteCurrentGoal discards the active goal without archiving it.
func (s *GoalService) DeleteCurrentGoal(ctx context.Context) error {
	g, err := s.load(ctx)
	if err != nil {
		return err
	}
	g.Current = nil
	return s.save(ctx, g)
}

// GoalHistory returns up to limit archived goals, newest first. limit must
// be positive.
func (s *GoalService) GoalHistory(ctx context.Context, limit int) ([]domain.GoalRecord, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: goal history limit must be positive", domain.ErrInvalidInput)
	}
	g, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	recent := slices.Clone(g.History[max(0, len(g.History)-limit):])
	slices.Reverse(recent)
	return recent, nil
}

// SuccessRate is the percentage of archived goals that were achieved.
func (s *GoalService) SuccessRate(ctx context.Context) (float64, error) {
	g, err := s.load(ctx)
	if err != nil {
		return 0, err
	}
	if len(g.History) == 0 {
		return 0, nil
	}
	achieved := 0
	for _, r := range g.History {
		if r.Achieved {
			achieved++
		}
	}
	return float64(achieved) / float64(len(g.History)) * 100, nil
}

// StreakGoals returns the number of consecutive achieved goals.
func (s *GoalService) StreakGoals(ctx context.Context) (int, error) {
	g, err := s.load(ctx)
	if err != nil {
		return 0, err
	}
	return g.StreakGoals, nil
}

// Presets returns the fixed weekly target tiers.
func (s *GoalService) Presets() []domain.GoalPreset {
	return slices.Clone(goalPresets)
}

// Preset looks up a tier by key.
func (s *GoalService) Preset(key string) (domain.GoalPreset, error) {
	i := slices.IndexFunc(goalPresets, func(p domain.GoalPreset) bool { return p.Key == key })
	if i < 0 {
		return domain.GoalPreset{}, fmt.Errorf("preset %q: %w", key, domain.ErrNotFound)
	}
	return goalPresets[i], nil
}

// Reset deletes all goal data.
func (s *GoalService) Reset(ctx context.Context) error {
	if err := s.store.Delete(ctx, domain.KeyGoals); err != nil {
		return fmt.Errorf("delete goals: %w", err)
	}
	return nil
}
