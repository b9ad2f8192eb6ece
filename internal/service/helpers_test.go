package service_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/msomdec/studytrack/internal/domain"
	"github.com/msomdec/studytrack/internal/repository/memory"
	"github.com/msomdec/studytrack/internal/service"
)

// testClock is a settable clock pinned to 10:00 UTC on a given date.
type testClock struct {
	now time.Time
}

func newTestClock(t *testing.T, date string) *testClock {
	t.Helper()
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		t.Fatalf("parse date %q: %v", date, err)
	}
	return &testClock{now: d.Add(10 * time.Hour)}
}

func (c *testClock) Now() time.Time { return c.now }

func (c *testClock) advanceDays(n int) { c.now = c.now.AddDate(0, 0, n) }

func (c *testClock) date(offset int) string {
	return c.now.AddDate(0, 0, offset).Format("2006-01-02")
}

type testServices struct {
	store       *memory.Store
	clock       *testClock
	progress    *service.ProgressService
	streak      *service.StreakService
	performance *service.PerformanceService
	goals       *service.GoalService
	activity    *service.ActivityService
	insights    *service.InsightService
	settings    *service.SettingsService
}

// newTestServices wires every tracker over one in-memory store.
// 2026-03-04 is a Wednesday.
func newTestServices(t *testing.T) *testServices {
	t.Helper()
	store := memory.New()
	clock := newTestClock(t, "2026-03-04")
	progress := service.NewProgressService(store, clock.Now)
	streak := service.NewStreakService(store, clock.Now)
	performance := service.NewPerformanceService(store, progress, clock.Now)
	goals := service.NewGoalService(store, progress, clock.Now)
	return &testServices{
		store:       store,
		clock:       clock,
		progress:    progress,
		streak:      streak,
		performance: performance,
		goals:       goals,
		activity:    service.NewActivityService(progress, streak, performance, clock.Now),
		insights:    service.NewInsightService(progress, streak, goals, clock.Now),
		settings:    service.NewSettingsService(store, clock.Now),
	}
}

// testModules returns a small catalog: module 1 has two videos, a lab and a
// flashcard deck; module 2 has a single video; module 3 has only a lab.
func testModules() []domain.Module {
	return []domain.Module{
		{
			ID: 1, Day: 1, Title: "Network Devices",
			Videos: []domain.Video{
				{ID: "v1", Title: "Intro", Duration: "10:00"},
				{ID: "v2", Title: "Switches", Duration: "5:30"},
			},
			Resources: domain.Resources{Lab: "Day 1 Lab.pkt", Flashcards: "Day 1 Flashcards.apkg"},
		},
		{
			ID: 2, Day: 2, Title: "Interfaces",
			Videos: []domain.Video{{ID: "v1", Title: "Interfaces", Duration: "8:00"}},
		},
		{
			ID: 3, Day: 3, Title: "Review",
			Resources: domain.Resources{Lab: "Day 3 Lab.pkt"},
		},
	}
}

// videoModules returns n modules with four videos each, IDs starting at 1.
func videoModules(n int) []domain.Module {
	out := make([]domain.Module, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, domain.Module{
			ID: i, Day: i, Title: "Module",
			Videos: []domain.Video{{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"}},
		})
	}
	return out
}

func markVideos(t *testing.T, p *service.ProgressService, moduleID int, videoIDs ...string) {
	t.Helper()
	for _, v := range videoIDs {
		if err := p.MarkVideoComplete(context.Background(), moduleID, v); err != nil {
			t.Fatalf("MarkVideoComplete(%d, %s): %v", moduleID, v, err)
		}
	}
}

func seedJSON(t *testing.T, store domain.Store, key string, v any) {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal %s: %v", key, err)
	}
	if err := store.Set(context.Background(), key, string(data)); err != nil {
		t.Fatalf("seed %s: %v", key, err)
	}
}

func jsonUnmarshal(raw string, v any) error {
	return json.Unmarshal([]byte(raw), v)
}
