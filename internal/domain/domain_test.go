package domain

import (
	"encoding/json"
	"reflect"
	"slices"
	"strings"
	"testing"
)

func TestVideo_DurationSeconds(t *testing.T) {
	tests := []struct {
		duration string
		want     float64
	}{
		{"17:06", 1026},
		{"00:00", 0},
		{"1:02:03", 3723},
		{"", 0},
		{"abc", 0},
		{"1:2:3:4", 0},
		{"-1:00", 0},
	}
	for _, tt := range tests {
		got := Video{Duration: tt.duration}.DurationSeconds()
		if got != tt.want {
			t.Errorf("DurationSeconds(%q) = %v, want %v", tt.duration, got, tt.want)
		}
	}
}

func TestIsProgressKey(t *testing.T) {
	progress := []string{
		"video_1_abc",
		"video_1_abc_completed",
		"lab_3_completed",
		"flashcards_3_added",
		"confidence_7",
		KeyLastWatched,
		KeyStreak,
		KeyGoals,
		KeyPerformance,
	}
	for _, k := range progress {
		if !IsProgressKey(k) {
			t.Errorf("expected %q to be a progress key", k)
		}
	}

	for _, k := range []string{KeySettings, "theme", "dashboard-layout", ""} {
		if IsProgressKey(k) {
			t.Errorf("expected %q not to be a progress key", k)
		}
	}
}

func TestKeyBuilders(t *testing.T) {
	if got := VideoCompletedKey(1, "v1"); got != "video_1_v1_completed" {
		t.Fatalf("VideoCompletedKey = %q", got)
	}
	if got := VideoPositionKey(1, "v1"); got != "video_1_v1" {
		t.Fatalf("VideoPositionKey = %q", got)
	}
	if got := LabCompletedKey(12); got != "lab_12_completed" {
		t.Fatalf("LabCompletedKey = %q", got)
	}
	if got := FlashcardsAddedKey(12); got != "flashcards_12_added" {
		t.Fatalf("FlashcardsAddedKey = %q", got)
	}
	if got := ConfidenceKey(3); got != "confidence_3" {
		t.Fatalf("ConfidenceKey = %q", got)
	}
}

func TestFindModuleAndVideo(t *testing.T) {
	modules := []Module{
		{ID: 1, Videos: []Video{{ID: "a"}, {ID: "b"}}},
		{ID: 2},
	}
	m := FindModule(modules, 1)
	if m == nil || m.ID != 1 {
		t.Fatal("expected module 1")
	}
	if FindModule(modules, 9) != nil {
		t.Fatal("expected nil for unknown module")
	}
	if v := m.FindVideo("b"); v == nil || v.ID != "b" {
		t.Fatal("expected video b")
	}
	if m.FindVideo("z") != nil {
		t.Fatal("expected nil for unknown video")
	}
}

func TestThemeTagMatchesThemes(t *testing.T) {
	f, ok := reflect.TypeOf((*Settings)(nil)).Elem().FieldByName("Theme")
	if !ok {
		t.Fatal("Settings has no Theme field")
	}
	tag := f.Tag.Get("validate")
	_, list, found := strings.Cut(tag, "oneof=")
	if !found {
		t.Fatalf("Theme tag %q has no oneof rule", tag)
	}
	if got := strings.Fields(list); !slices.Equal(got, Themes) {
		t.Fatalf("oneof themes = %v, want %v", got, Themes)
	}
	if !slices.Contains(Themes, DefaultTheme) {
		t.Fatalf("DefaultTheme %q is not in Themes", DefaultTheme)
	}
}

func TestUnsetDatesMarshalAsNull(t *testing.T) {
	data, err := json.Marshal(Streak{})
	if err != nil {
		t.Fatalf("marshal streak: %v", err)
	}
	if !strings.Contains(string(data), `"lastStudyDate":null`) {
		t.Fatalf("streak JSON = %s, want null lastStudyDate", data)
	}

	data, err = json.Marshal(PerformanceHistory{})
	if err != nil {
		t.Fatalf("marshal history: %v", err)
	}
	if !strings.Contains(string(data), `"lastSnapshotDate":null`) {
		t.Fatalf("history JSON = %s, want null lastSnapshotDate", data)
	}

	in := Streak{CurrentStreak: 2, LongestStreak: 3, LastStudyDate: "2026-03-04", StreakHistory: []DayActivity{}}
	data, err = json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal streak: %v", err)
	}
	var out Streak
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal streak: %v", err)
	}
	if !reflect.DeepEqual(in, out) {
		t.Fatalf("round trip = %+v, want %+v", out, in)
	}

	var fresh Streak
	if err := json.Unmarshal([]byte(`{"lastStudyDate":null}`), &fresh); err != nil {
		t.Fatalf("unmarshal null: %v", err)
	}
	if fresh.LastStudyDate != "" {
		t.Fatalf("LastStudyDate = %q, want empty", fresh.LastStudyDate)
	}
}
