package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/msomdec/studytrack/internal/domain"
)

const firstVideo = "H8W9oMNSuwo"

type cliHarness struct {
	t   *testing.T
	db  string
	now time.Time
}

func newCLIHarness(t *testing.T) *cliHarness {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("HOME", dir)
	return &cliHarness{
		t:   t,
		db:  filepath.Join(dir, "studytrack.db"),
		now: time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC),
	}
}

// run executes one CLI invocation against the harness database.
func (h *cliHarness) run(args ...string) (string, error) {
	h.t.Helper()
	var out bytes.Buffer
	clock := func() time.Time { return h.now }
	argv := append([]string{"studytrack", "--db", h.db}, args...)
	err := newApp(&out, clock).RunContext(context.Background(), argv)
	return out.String(), err
}

func (h *cliHarness) mustRun(args ...string) string {
	h.t.Helper()
	out, err := h.run(args...)
	require.NoError(h.t, err, "studytrack %v", args)
	return out
}

func (h *cliHarness) status() map[string]json.RawMessage {
	h.t.Helper()
	var got map[string]json.RawMessage
	require.NoError(h.t, json.Unmarshal([]byte(h.mustRun("status", "--json")), &got))
	return got
}

func TestCLI_VideoDonePersistsAcrossRuns(t *testing.T) {
	h := newCLIHarness(t)

	out := h.mustRun("video", "done", "1", firstVideo)
	assert.Contains(t, out, "Day 1: Network Devices is")

	st := h.status()
	var progress domain.ModuleStatistics
	require.NoError(t, json.Unmarshal(st["progress"], &progress))
	assert.Equal(t, 1, progress.CompletedVideos)

	var streak domain.Streak
	require.NoError(t, json.Unmarshal(st["streak"], &streak))
	assert.Equal(t, 1, streak.CurrentStreak)
	assert.Equal(t, "2026-03-04", streak.LastStudyDate)
}

func TestCLI_RejectsUnknownIDs(t *testing.T) {
	h := newCLIHarness(t)

	_, err := h.run("video", "done", "1", "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = h.run("lab", "done", "999")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = h.run("rate", "1", "7")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = h.run("rate", "one", "3")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCLI_SeekRejectsNonFinite(t *testing.T) {
	h := newCLIHarness(t)

	for _, arg := range []string{"NaN", "Inf", "+Inf"} {
		_, err := h.run("video", "seek", "1", firstVideo, arg)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, arg)
	}

	out := h.mustRun("video", "seek", "1", firstVideo, "513")
	assert.Contains(t, out, "saved at 8:33 (50% watched)")
}

func TestCLI_CalendarSurvivesBadImport(t *testing.T) {
	h := newCLIHarness(t)

	bad := map[string]string{
		domain.KeyStreak: `{"currentStreak":1,"longestStreak":1,"lastStudyDate":"2026-03-04",` +
			`"streakHistory":[{"date":"2026-03-04","activitiesCompleted":-1,"activities":[]}]}`,
	}
	raw, err := json.Marshal(bad)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, raw, 0o644))

	h.mustRun("import", path)
	out := h.mustRun("streak", "calendar")
	assert.Contains(t, out, "March 2026")
}

func TestCLI_ExportImportReset(t *testing.T) {
	h := newCLIHarness(t)

	h.mustRun("video", "done", "1", firstVideo)
	h.mustRun("rate", "1", "4")
	exportPath := filepath.Join(t.TempDir(), "export.json")
	assert.Contains(t, h.mustRun("export", exportPath), "Exported")

	raw, err := os.ReadFile(exportPath)
	require.NoError(t, err)
	var data map[string]string
	require.NoError(t, json.Unmarshal(raw, &data))
	assert.Equal(t, "true", data[domain.VideoCompletedKey(1, firstVideo)])
	assert.Equal(t, "4", data[domain.ConfidenceKey(1)])

	_, err = h.run("reset")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	h.mustRun("reset", "--force")

	var progress domain.ModuleStatistics
	require.NoError(t, json.Unmarshal(h.status()["progress"], &progress))
	assert.Zero(t, progress.CompletedVideos)

	h.mustRun("import", exportPath)
	require.NoError(t, json.Unmarshal(h.status()["progress"], &progress))
	assert.Equal(t, 1, progress.CompletedVideos)
	assert.Equal(t, 4.0, progress.AvgConfidence)
}

func TestCLI_GoalLifecycle(t *testing.T) {
	h := newCLIHarness(t)

	out := h.mustRun("goal", "create", "--preset", "beginner", "--videos", "1", "weekly")
	assert.Contains(t, out, "Created weekly goal goal-")

	h.mustRun("video", "done", "1", firstVideo)

	var goal domain.Goal
	require.NoError(t, json.Unmarshal([]byte(h.mustRun("goal", "show", "--json")), &goal))
	assert.Equal(t, domain.GoalCounters{ModulesCompleted: 2, VideosWatched: 1, LabsCompleted: 1, FlashcardsAdded: 2}, goal.Target)
	assert.Equal(t, 1, goal.Progress.VideosWatched)

	assert.Contains(t, h.mustRun("goal", "complete"), "Goal archived")
	assert.Contains(t, h.mustRun("goal", "show"), "No active goal.")

	var history []domain.GoalRecord
	require.NoError(t, json.Unmarshal([]byte(h.mustRun("goal", "history", "--json")), &history))
	require.Len(t, history, 1)
	assert.False(t, history[0].Achieved)

	_, err := h.run("goal", "create", "yearly")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCLI_Settings(t *testing.T) {
	h := newCLIHarness(t)

	h.mustRun("settings", "theme", "nord")
	_, err := h.run("settings", "theme", "neon")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	var st domain.Settings
	require.NoError(t, json.Unmarshal([]byte(h.mustRun("settings", "show", "--json")), &st))
	assert.Equal(t, "nord", st.Theme)

	out := h.mustRun("settings", "dashboard", "learning-goals", "off")
	assert.Regexp(t, `learning-goals\s+Learning Goals\s+off`, out)

	_, err = h.run("settings", "dashboard", "overall-progress", "off")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCLI_Ephemeral(t *testing.T) {
	h := newCLIHarness(t)

	var out bytes.Buffer
	app := newApp(&out, func() time.Time { return h.now })
	require.NoError(t, app.RunContext(context.Background(), []string{"studytrack", "--ephemeral", "video", "done", "1", firstVideo}))

	_, err := os.Stat(filepath.Join(filepath.Dir(h.db), "studytrack.db"))
	assert.True(t, os.IsNotExist(err), "ephemeral runs leave no database behind")
}

func TestFormatSeconds(t *testing.T) {
	assert.Equal(t, "0:00", formatSeconds(0))
	assert.Equal(t, "17:06", formatSeconds(1026))
	assert.Equal(t, "1:02:03", formatSeconds(3723.4))
}
