package catalog_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/msomdec/studytrack/internal/catalog"
	"github.com/msomdec/studytrack/internal/domain"
)

func TestDefault(t *testing.T) {
	modules, err := catalog.Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	if len(modules) != 63 {
		t.Fatalf("expected 63 modules, got %d", len(modules))
	}

	first := modules[0]
	if first.ID != 1 || first.Title != "Network Devices" {
		t.Fatalf("unexpected first module: %+v", first)
	}
	if len(first.Videos) != 3 {
		t.Fatalf("expected 3 videos, got %d", len(first.Videos))
	}
	if !first.HasLab() || !first.HasFlashcards() {
		t.Fatal("expected module 1 to have lab and flashcards")
	}

	last := modules[len(modules)-1]
	if last.HasLab() {
		t.Fatal("expected last module to have no lab")
	}
}

func TestLoad_EmptyPathUsesDefault(t *testing.T) {
	modules, err := catalog.Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(modules) == 0 {
		t.Fatal("expected built-in modules")
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	data := []byte(`modules:
  - id: 1
    day: 1
    title: Intro
    videos:
      - id: v1
        title: Welcome
        duration: "05:00"
    resources:
      lab: intro.pkt
  - id: 2
    day: 2
    title: Reading only
`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	modules, err := catalog.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(modules) != 2 {
		t.Fatalf("expected 2 modules, got %d", len(modules))
	}
	if modules[0].HasFlashcards() {
		t.Fatal("module 1 should have no flashcards")
	}
	if len(modules[1].Videos) != 0 {
		t.Fatal("module 2 should have no videos")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := catalog.Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestParse_Rejects(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"empty", "modules: []\n"},
		{"missing title", "modules:\n  - id: 1\n"},
		{"zero id", "modules:\n  - id: 0\n    title: x\n"},
		{"duplicate module", "modules:\n  - id: 1\n    title: a\n  - id: 1\n    title: b\n"},
		{"duplicate video", "modules:\n  - id: 1\n    title: a\n    videos:\n      - id: v\n      - id: v\n"},
		{"video without id", "modules:\n  - id: 1\n    title: a\n    videos:\n      - title: t\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := catalog.Parse([]byte(tt.data))
			if !errors.Is(err, domain.ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestParse_Malformed(t *testing.T) {
	if _, err := catalog.Parse([]byte("modules: [")); err == nil {
		t.Fatal("expected parse error")
	}
}
