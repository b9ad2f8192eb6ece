package domain

import (
	"strconv"
	"strings"
)

// Module is one day of the course catalog. Modules are read-only at runtime.
type Module struct {
	ID        int       `yaml:"id" json:"id" validate:"min=1"`
	Day       int       `yaml:"day" json:"day" validate:"min=0"`
	Title     string    `yaml:"title" json:"title" validate:"required"`
	Videos    []Video   `yaml:"videos" json:"videos" validate:"dive"`
	Resources Resources `yaml:"resources" json:"resources"`
}

// Video is a single lecture or lab walkthrough inside a module.
type Video struct {
	ID       string `yaml:"id" json:"id" validate:"required"`
	Title    string `yaml:"title" json:"title"`
	Duration string `yaml:"duration" json:"duration"` // "mm:ss" or "h:mm:ss"
}

// Resources names the downloadable lab and flashcard deck. Empty means none.
type Resources struct {
	Lab        string `yaml:"lab" json:"lab"`
	Flashcards string `yaml:"flashcards" json:"flashcards"`
}

// HasLab and HasFlashcards report whether the module ships that resource.
func (m Module) HasLab() bool        { return m.Resources.Lab != "" }
func (m Module) HasFlashcards() bool { return m.Resources.Flashcards != "" }

// FindVideo returns the video with the given ID, or nil.
func (m Module) FindVideo(videoID string) *Video {
	for i := range m.Videos {
		if m.Videos[i].ID == videoID {
			return &m.Videos[i]
		}
	}
	return nil
}

// DurationSeconds parses Duration. Unparseable durations return 0.
func (v Video) DurationSeconds() float64 {
	if v.Duration == "" {
		return 0
	}
	parts := strings.Split(v.Duration, ":")
	if len(parts) > 3 {
		return 0
	}
	total := 0
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return 0
		}
		total = total*60 + n
	}
	return float64(total)
}

// FindModule returns the module with the given ID, or nil.
func FindModule(modules []Module, id int) *Module {
	for i := range modules {
		if modules[i].ID == id {
			return &modules[i]
		}
	}
	return nil
}
