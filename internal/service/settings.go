package service

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/msomdec/studytrack/internal/domain"
	"github.com/msomdec/studytrack/pkg/validator"
)

var dashboardSections = []domain.DashboardSection{
	{ID: "study-streak", Title: "Study Streak", Description: "Daily study streak and activity calendar", DefaultEnabled: true, DefaultOrder: 1, Removable: true},
	{ID: "learning-goals", Title: "Learning Goals", Description: "Set and track your study goals", DefaultEnabled: true, DefaultOrder: 2, Removable: true},
	{ID: "overall-progress", Title: "Overall Progress", Description: "Course completion overview with statistics", DefaultEnabled: true, DefaultOrder: 3, Removable: false},
	{ID: "modules-needing-review", Title: "Modules Needing Review", Description: "Modules with low confidence ratings", DefaultEnabled: true, DefaultOrder: 5, Removable: true},
	{ID: "smart-recommendations", Title: "Smart Recommendations", Description: "Study suggestions based on your progress", DefaultEnabled: true, DefaultOrder: 6, Removable: true},
	{ID: "upcoming-milestones", Title: "Upcoming Milestones", Description: "Track your upcoming achievements", DefaultEnabled: true, DefaultOrder: 9, Removable: true},
	{ID: "performance-charts", Title: "Performance Analytics", Description: "Detailed performance charts and graphs", DefaultEnabled: true, DefaultOrder: 10, Removable: true},
}

// SettingsService manages the app-settings record.
type SettingsService struct {
	store domain.Store
	clock Clock
}

// NewSettingsService creates a new SettingsService.
func NewSettingsService(store domain.Store, clock Clock) *SettingsService {
	return &SettingsService{store: store, clock: clock}
}

// DashboardSections returns the fixed dashboard section table.
func DashboardSections() []domain.DashboardSection {
	return slices.Clone(dashboardSections)
}

// DefaultDashboardConfig enables every section in its default order.
func DefaultDashboardConfig() domain.DashboardConfig {
	cfg := domain.DashboardConfig{Sections: make([]domain.DashboardSectionState, 0, len(dashboardSections))}
	for _, sec := range dashboardSections {
		cfg.Sections = append(cfg.Sections, domain.DashboardSectionState{
			ID:      sec.ID,
			Enabled: sec.DefaultEnabled,
			Order:   sec.DefaultOrder,
		})
	}
	return cfg
}

// Get returns the stored settings, or defaults when none are stored.
func (s *SettingsService) Get(ctx context.Context) (domain.Settings, error) {
	var st domain.Settings
	ok, err := loadJSON(ctx, s.store, domain.KeySettings, &st)
	if err != nil {
		return domain.Settings{}, err
	}
	if !ok {
		return domain.Settings{Version: domain.SettingsVersion, Theme: domain.DefaultTheme}, nil
	}
	if st.Theme == "" {
		st.Theme = domain.DefaultTheme
	}
	return st, nil
}

// Save validates and stores st, stamping LastModified.
func (s *SettingsService) Save(ctx context.Context, st domain.Settings) (domain.Settings, error) {
	if err := validator.ValidateStruct(st); err != nil {
		return domain.Settings{}, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	if st.Version == "" {
		st.Version = domain.SettingsVersion
	}
	st.LastModified = s.clock().UTC()
	if err := saveJSON(ctx, s.store, domain.KeySettings, st); err != nil {
		return domain.Settings{}, fmt.Errorf("save settings: %w", err)
	}
	return st, nil
}

func (s *SettingsService) update(ctx context.Context, fn func(*domain.Settings) error) (domain.Settings, error) {
	st, err := s.Get(ctx)
	if err != nil {
		return domain.Settings{}, err
	}
	if err := fn(&st); err != nil {
		return domain.Settings{}, err
	}
	return s.Save(ctx, st)
}

// SetResourcesPath records the folder holding lab and flashcard files.
func (s *SettingsService) SetResourcesPath(ctx context.Context, path string) (domain.Settings, error) {
	return s.update(ctx, func(st *domain.Settings) error {
		st.ResourcesPath = path
		return nil
	})
}

// SetTheme selects one of domain.Themes.
func (s *SettingsService) SetTheme(ctx context.Context, theme string) (domain.Settings, error) {
	return s.update(ctx, func(st *domain.Settings) error {
		st.Theme = theme
		return nil
	})
}

// DashboardConfig returns the stored layout merged over the defaults,
// sorted by order. Sections unknown to the table are dropped; sections
// missing from the stored layout get their defaults.
func (s *SettingsService) DashboardConfig(ctx context.Context) (domain.DashboardConfig, error) {
	st, err := s.Get(ctx)
	if err != nil {
		return domain.DashboardConfig{}, err
	}
	cfg := DefaultDashboardConfig()
	if st.DashboardConfig != nil {
		stored := make(map[string]domain.DashboardSectionState, len(st.DashboardConfig.Sections))
		for _, sec := range st.DashboardConfig.Sections {
			stored[sec.ID] = sec
		}
		for i, sec := range cfg.Sections {
			if v, ok := stored[sec.ID]; ok {
				cfg.Sections[i] = v
			}
		}
	}
	slices.SortStableFunc(cfg.Sections, func(a, b domain.DashboardSectionState) int {
		return cmp.Compare(a.Order, b.Order)
	})
	return cfg, nil
}

// SetSectionEnabled shows or hides a dashboard section. Sections that are
// not removable cannot be hidden.
func (s *SettingsService) SetSectionEnabled(ctx context.Context, id string, enabled bool) (domain.DashboardConfig, error) {
	i := slices.IndexFunc(dashboardSections, func(sec domain.DashboardSection) bool { return sec.ID == id })
	if i < 0 {
		return domain.DashboardConfig{}, fmt.Errorf("dashboard section %q: %w", id, domain.ErrNotFound)
	}
	if !enabled && !dashboardSections[i].Removable {
		return domain.DashboardConfig{}, fmt.Errorf("%w: section %q cannot be hidden", domain.ErrInvalidInput, id)
	}

	cfg, err := s.DashboardConfig(ctx)
	if err != nil {
		return domain.DashboardConfig{}, err
	}
	for j := range cfg.Sections {
		if cfg.Sections[j].ID == id {
			cfg.Sections[j].Enabled = enabled
		}
	}
	if _, err := s.update(ctx, func(st *domain.Settings) error {
		st.DashboardConfig = &cfg
		return nil
	}); err != nil {
		return domain.DashboardConfig{}, err
	}
	return cfg, nil
}

// Reset deletes the settings record.
func (s *SettingsService) Reset(ctx context.Context) error {
	if err := s.store.Delete(ctx, domain.KeySettings); err != nil {
		return fmt.Errorf("delete settings: %w", err)
	}
	return nil
}
