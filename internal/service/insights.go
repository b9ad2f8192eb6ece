package service

import (
	"cmp"
	"context"
	"fmt"
	"math"
	"slices"

	"github.com/msomdec/studytrack/internal/domain"
)

const maxRecommendations = 4

var courseMilestoneTiers = []struct {
	percent int
	label   string
}{
	{25, "Quarter Complete"},
	{50, "Halfway There"},
	{75, "Three Quarters"},
	{100, "Full Completion"},
}

// InsightService derives study suggestions from the trackers. It never
// writes progress state; reading the streak or goal may reconcile them.
type InsightService struct {
	progress *ProgressService
	streak   *StreakService
	goals    *GoalService
	clock    Clock
}

// NewInsightService creates a new InsightService.
func NewInsightService(progress *ProgressService, streak *StreakService, goals *GoalService, clock Clock) *InsightService {
	return &InsightService{progress: progress, streak: streak, goals: goals, clock: clock}
}

type moduleProgress struct {
	module  domain.Module
	percent float64
}

func (s *InsightService) moduleProgress(ctx context.Context, modules []domain.Module) ([]moduleProgress, error) {
	out := make([]moduleProgress, 0, len(modules))
	for _, m := range modules {
		p, err := s.progress.ModuleProgress(ctx, m)
		if err != nil {
			return nil, err
		}
		out = append(out, moduleProgress{module: m, percent: p})
	}
	return out, nil
}

// Recommendations suggests up to four things to study next, highest
// priority first.
func (s *InsightService) Recommendations(ctx context.Context, modules []domain.Module) ([]domain.Recommendation, error) {
	progress, err := s.moduleProgress(ctx, modules)
	if err != nil {
		return nil, err
	}
	var recs []domain.Recommendation
	recommended := func(id int) bool {
		return slices.ContainsFunc(recs, func(r domain.Recommendation) bool {
			return r.Module != nil && r.Module.ID == id
		})
	}

	lw, err := s.progress.LastWatchedModule(ctx, modules)
	if err != nil {
		return nil, err
	}
	if lw != nil {
		p, err := s.progress.ModuleProgress(ctx, lw.Module)
		if err != nil {
			return nil, err
		}
		if p < 100 {
			m := lw.Module
			recs = append(recs, domain.Recommendation{
				Type:        domain.RecommendContinue,
				Title:       "Continue Where You Left Off",
				Description: fmt.Sprintf("Resume Day %d: %s", m.Day, m.Title),
				Module:      &m,
				Priority:    10,
			})
		}
	}

	review, err := s.progress.ModulesNeedingReview(ctx, modules)
	if err != nil {
		return nil, err
	}
	if len(review) > 0 {
		m := review[0]
		c, err := s.progress.ModuleConfidence(ctx, m.ID)
		if err != nil {
			return nil, err
		}
		recs = append(recs, domain.Recommendation{
			Type:        domain.RecommendReview,
			Title:       "Review Low Confidence Module",
			Description: fmt.Sprintf("Day %d: %s (%d/5 confidence)", m.Day, m.Title, c),
			Module:      &m,
			Priority:    9,
		})
	}

	var next *domain.Module
	if i := slices.IndexFunc(progress, func(mp moduleProgress) bool { return mp.percent < 100 }); i >= 0 {
		next = &progress[i].module
	}
	if next != nil && !recommended(next.ID) {
		m := *next
		recs = append(recs, domain.Recommendation{
			Type:        domain.RecommendNext,
			Title:       "Continue Your Learning Path",
			Description: fmt.Sprintf("Start Day %d: %s", m.Day, m.Title),
			Module:      &m,
			Priority:    8,
		})
	}

	var best *moduleProgress
	for i, mp := range progress {
		if mp.percent > 50 && mp.percent < 100 && (best == nil || mp.percent > best.percent) {
			best = &progress[i]
		}
	}
	if best != nil && !recommended(best.module.ID) {
		m := best.module
		recs = append(recs, domain.Recommendation{
			Type:        domain.RecommendQuickWin,
			Title:       "Quick Win Opportunity",
			Description: fmt.Sprintf("Complete Day %d: %s (%d%% done)", m.Day, m.Title, int(math.Round(best.percent))),
			Module:      &m,
			Priority:    7,
		})
	}

	if next != nil {
		st, err := s.streak.Info(ctx)
		if err != nil {
			return nil, err
		}
		if st.CurrentStreak > 0 && st.LastStudyDate != formatDate(s.clock()) {
			m := *next
			recs = append(recs, domain.Recommendation{
				Type:        domain.RecommendStreak,
				Title:       "Maintain Your Streak",
				Description: fmt.Sprintf("You're on a %d-day streak! Study today to keep it going.", st.CurrentStreak),
				Module:      &m,
				Priority:    9,
			})
		}
	}

	slices.SortStableFunc(recs, func(a, b domain.Recommendation) int {
		return cmp.Compare(b.Priority, a.Priority)
	})
	if len(recs) > maxRecommendations {
		recs = recs[:maxRecommendations]
	}
	return recs, nil
}

func completedCount(progress []moduleProgress) int {
	n := 0
	for _, mp := range progress {
		if mp.percent == 100 {
			n++
		}
	}
	return n
}

// CourseMilestones reports the 25/50/75/100% completion tiers by fully
// completed modules. Only the lowest unreached tier is marked Next.
func (s *InsightService) CourseMilestones(ctx context.Context, modules []domain.Module) ([]domain.CourseMilestone, error) {
	progress, err := s.moduleProgress(ctx, modules)
	if err != nil {
		return nil, err
	}
	total := len(modules)
	completed := completedCount(progress)
	overall := 0.0
	if total > 0 {
		overall = float64(completed) / float64(total) * 100
	}

	out := make([]domain.CourseMilestone, 0, len(courseMilestoneTiers))
	nextSet := false
	for _, t := range courseMilestoneTiers {
		needed := int(math.Ceil(float64(t.percent) / 100 * float64(total)))
		done := total > 0 && overall >= float64(t.percent)
		m := domain.CourseMilestone{
			Percent:          t.percent,
			Label:            t.label,
			ModulesNeeded:    needed,
			ModulesRemaining: max(0, needed-completed),
			Completed:        done,
		}
		if !done && !nextSet {
			m.Next = true
			nextSet = true
		}
		out = append(out, m)
	}
	return out, nil
}

// UpcomingModules returns the first n modules that are not fully complete,
// in course order.
func (s *InsightService) UpcomingModules(ctx context.Context, modules []domain.Module, n int) ([]domain.Module, error) {
	progress, err := s.moduleProgress(ctx, modules)
	if err != nil {
		return nil, err
	}
	var out []domain.Module
	for _, mp := range progress {
		if len(out) >= n {
			break
		}
		if mp.percent < 100 {
			out = append(out, mp.module)
		}
	}
	return out, nil
}

// Insights returns short observations on course momentum, review backlog,
// and an active goal nearing its end.
func (s *InsightService) Insights(ctx context.Context, modules []domain.Module) ([]domain.Insight, error) {
	progress, err := s.moduleProgress(ctx, modules)
	if err != nil {
		return nil, err
	}
	var out []domain.Insight

	if len(modules) > 0 {
		rate := float64(completedCount(progress)) / float64(len(modules)) * 100
		var text string
		switch {
		case rate > 75:
			text = "You're almost there! Just a few more modules to complete the course."
		case rate > 50:
			text = "Great progress! You've completed over half the course."
		case rate > 25:
			text = "You're building momentum! Keep up the steady progress."
		case rate > 0:
			text = "Good start! Consistency is key to success."
		}
		if text != "" {
			out = append(out, domain.Insight{Kind: domain.InsightMomentum, Text: text})
		}
	}

	review, err := s.progress.ModulesNeedingReview(ctx, modules)
	if err != nil {
		return nil, err
	}
	if len(review) > 5 {
		out = append(out, domain.Insight{
			Kind: domain.InsightReview,
			Text: fmt.Sprintf("%d modules marked for review. Consider revisiting them.", len(review)),
		})
	}

	goal, err := s.goals.ActiveGoal(ctx)
	if err != nil {
		return nil, err
	}
	if goal != nil {
		now := s.clock()
		end, err := parseDate(goal.EndDate, now.Location())
		if err == nil {
			days := int(math.Round(end.Sub(startOfDay(now)).Hours() / 24))
			if days > 0 && days <= 3 {
				out = append(out, domain.Insight{
					Kind: domain.InsightGoal,
					Text: fmt.Sprintf("Your goal ends in %d days. Time to push for the finish!", days),
				})
			}
		}
	}
	return out, nil
}
