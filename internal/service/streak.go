package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/msomdec/studytrack/internal/domain"
)

var streakMilestones = []struct {
	days int
	name string
}{
	{7, "7-Day Warrior"},
	{14, "2-Week Champion"},
	{30, "Monthly Master"},
	{60, "60-Day Dedication"},
	{100, "Century Scholar"},
}

// StreakService maintains the daily activity log and the consecutive-day
// streak. Expiry is lazy: every read reconciles against today first.
type StreakService struct {
	store domain.Store
	clock Clock
}

// NewStreakService creates a new StreakService.
func NewStreakService(store domain.Store, clock Clock) *StreakService {
	return &StreakService{store: store, clock: clock}
}

// ReconcileStreak zeroes the current streak when the last study day is
// neither today nor yesterday. LongestStreak is never touched.
func ReconcileStreak(s domain.Streak, today time.Time) domain.Streak {
	if s.LastStudyDate == "" {
		return s
	}
	if s.LastStudyDate != formatDate(today) && s.LastStudyDate != formatDate(addDays(today, -1)) {
		s.CurrentStreak = 0
	}
	return s
}

// ApplyActivity records one activity at now and returns the new streak.
//
// A second activity on the same day only extends that day's log. A first
// activity on the day after LastStudyDate extends the streak; any other first
// activity starts a new streak of 1.
func ApplyActivity(s domain.Streak, activityType domain.ActivityType, now time.Time) domain.Streak {
	today := formatDate(now)
	act := domain.Activity{Type: activityType, Timestamp: now}

	s.StreakHistory = addDayActivity(s.StreakHistory, today, act)

	if s.LastStudyDate != today {
		if s.LastStudyDate != "" && s.LastStudyDate == formatDate(addDays(now, -1)) {
			s.CurrentStreak++
		} else {
			s.CurrentStreak = 1
		}
		s.LongestStreak = max(s.LongestStreak, s.CurrentStreak)
		s.LastStudyDate = today
	}

	if len(s.StreakHistory) > domain.MaxStreakHistory {
		s.StreakHistory = s.StreakHistory[len(s.StreakHistory)-domain.MaxStreakHistory:]
	}
	return s
}

// addDayActivity appends act to the entry for date, creating the entry in
// date order if needed. The input slice is not modified.
func addDayActivity(history []domain.DayActivity, date string, act domain.Activity) []domain.DayActivity {
	i, found := slices.BinarySearchFunc(history, date, func(e domain.DayActivity, d string) int {
		return strings.Compare(e.Date, d)
	})
	if found {
		out := slices.Clone(history)
		e := out[i]
		e.ActivitiesCompleted++
		e.Activities = append(slices.Clone(e.Activities), act)
		out[i] = e
		return out
	}
	entry := domain.DayActivity{
		Date:                date,
		ActivitiesCompleted: 1,
		Activities:          []domain.Activity{act},
	}
	return slices.Insert(slices.Clone(history), i, entry)
}

func (s *StreakService) load(ctx context.Context) (domain.Streak, error) {
	var st domain.Streak
	ok, err := loadJSON(ctx, s.store, domain.KeyStreak, &st)
	if err != nil {
		return domain.Streak{}, err
	}
	if !ok {
		return domain.Streak{}, nil
	}
	if !validStreak(st) {
		slog.Warn("discarding malformed stored value", "key", domain.KeyStreak, "error", "negative count")
		return domain.Streak{}, nil
	}
	return st, nil
}

func validStreak(st domain.Streak) bool {
	if st.CurrentStreak < 0 || st.LongestStreak < 0 {
		return false
	}
	for _, e := range st.StreakHistory {
		if e.ActivitiesCompleted < 0 {
			return false
		}
	}
	return true
}

func (s *StreakService) save(ctx context.Context, st domain.Streak) error {
	if st.StreakHistory == nil {
		st.StreakHistory = []domain.DayActivity{}
	}
	return saveJSON(ctx, s.store, domain.KeyStreak, st)
}

// RecordStudyActivity logs one activity for today and updates the streak.
func (s *StreakService) RecordStudyActivity(ctx context.Context, activityType domain.ActivityType) (domain.Streak, error) {
	if activityType == "" {
		activityType = domain.ActivityGeneral
	}
	st, err := s.load(ctx)
	if err != nil {
		return domain.Streak{}, err
	}
	st = ApplyActivity(st, activityType, s.clock())
	if err := s.save(ctx, st); err != nil {
		return domain.Streak{}, fmt.Errorf("save streak: %w", err)
	}
	return st, nil
}

// CheckStreakStatus reconciles the stored streak with today and persists the
// result if it changed. Safe to call any number of times.
func (s *StreakService) CheckStreakStatus(ctx context.Context) (domain.Streak, error) {
	st, err := s.load(ctx)
	if err != nil {
		return domain.Streak{}, err
	}
	reconciled := ReconcileStreak(st, s.clock())
	if reconciled.CurrentStreak != st.CurrentStreak {
		if err := s.save(ctx, reconciled); err != nil {
			return domain.Streak{}, fmt.Errorf("save streak: %w", err)
		}
	}
	return reconciled, nil
}

// Info returns the reconciled streak for display.
func (s *StreakService) Info(ctx context.Context) (domain.Streak, error) {
	return s.CheckStreakStatus(ctx)
}

// IsStreakAtRisk reports whether a live streak has no activity yet today.
func (s *StreakService) IsStreakAtRisk(ctx context.Context) (bool, error) {
	st, err := s.CheckStreakStatus(ctx)
	if err != nil {
		return false, err
	}
	return st.CurrentStreak > 0 && st.LastStudyDate != formatDate(s.clock()), nil
}

// RecentActivity returns the last days calendar days, oldest first, with
// zero-activity days filled in.
func (s *StreakService) RecentActivity(ctx context.Context, days int) ([]domain.RecentDay, error) {
	st, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	byDate := make(map[string]int, len(st.StreakHistory))
	for _, e := range st.StreakHistory {
		byDate[e.Date] = e.ActivitiesCompleted
	}

	now := s.clock()
	out := make([]domain.RecentDay, 0, max(days, 0))
	for i := days - 1; i >= 0; i-- {
		date := formatDate(addDays(now, -i))
		n, ok := byDate[date]
		out = append(out, domain.RecentDay{
			Date:                date,
			ActivitiesCompleted: n,
			HasActivity:         ok,
		})
	}
	return out, nil
}

// Calendar returns the days of the given month that have activity.
// Intensity is the activity count clamped to 0..4.
func (s *StreakService) Calendar(ctx context.Context, year int, month time.Month) (map[string]domain.CalendarDay, error) {
	st, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	prefix := fmt.Sprintf("%04d-%02d-", year, int(month))
	cal := make(map[string]domain.CalendarDay)
	for _, e := range st.StreakHistory {
		if strings.HasPrefix(e.Date, prefix) {
			cal[e.Date] = domain.CalendarDay{
				ActivitiesCompleted: e.ActivitiesCompleted,
				Intensity:           max(0, min(e.ActivitiesCompleted, 4)),
			}
		}
	}
	return cal, nil
}

// Milestones reports each fixed streak milestone. Achieved follows the
// longest streak; progress follows the current one.
func (s *StreakService) Milestones(ctx context.Context) ([]domain.StreakMilestone, error) {
	st, err := s.CheckStreakStatus(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.StreakMilestone, 0, len(streakMilestones))
	for _, m := range streakMilestones {
		progress := 100.0
		if st.CurrentStreak < m.days {
			progress = float64(st.CurrentStreak) / float64(m.days) * 100
		}
		out = append(out, domain.StreakMilestone{
			Days:     m.days,
			Name:     m.name,
			Achieved: st.LongestStreak >= m.days,
			Progress: progress,
		})
	}
	return out, nil
}

// Reset deletes all streak data.
func (s *StreakService) Reset(ctx context.Context) error {
	if err := s.store.Delete(ctx, domain.KeyStreak); err != nil {
		return fmt.Errorf("delete streak: %w", err)
	}
	return nil
}
