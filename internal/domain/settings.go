package domain

import "time"

const (
	SettingsVersion = "1.0"
	DefaultTheme    = "spacegrayLight"
)

// Themes lists the selectable color themes in display order.
var Themes = []string{
	"spacegrayLight", "spacegray", "spacegrayOceanic", "gruvboxLight", "gruvboxDark",
	"light", "dark", "nord", "rosePine", "mocha", "dracula",
}

// Settings is the persisted application settings record. It lives outside
// the progress namespace.
type Settings struct {
	Version         string           `json:"version"`
	ResourcesPath   string           `json:"resourcesPath"`
	Theme           string           `json:"theme" validate:"omitempty,oneof=spacegrayLight spacegray spacegrayOceanic gruvboxLight gruvboxDark light dark nord rosePine mocha dracula"`
	DashboardConfig *DashboardConfig `json:"dashboardConfig"`
	LastModified    time.Time        `json:"lastModified"`
}

type DashboardConfig struct {
	Sections []DashboardSectionState `json:"sections"`
}

type DashboardSectionState struct {
	ID      string `json:"id"`
	Enabled bool   `json:"enabled"`
	Order   int    `json:"order"`
}

// DashboardSection describes a dashboard panel and its defaults.
type DashboardSection struct {
	ID             string
	Title          string
	Description    string
	DefaultEnabled bool
	DefaultOrder   int
	Removable      bool
}
