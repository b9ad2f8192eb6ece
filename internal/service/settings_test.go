package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/msomdec/studytrack/internal/domain"
	"github.com/msomdec/studytrack/internal/service"
)

func TestSettings_Defaults(t *testing.T) {
	s := newTestServices(t)

	st, err := s.settings.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.SettingsVersion, st.Version)
	assert.Equal(t, domain.DefaultTheme, st.Theme)
	assert.Empty(t, st.ResourcesPath)
	assert.Nil(t, st.DashboardConfig)
}

func TestSettings_SetTheme(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()

	st, err := s.settings.SetTheme(ctx, "nord")
	require.NoError(t, err)
	assert.Equal(t, "nord", st.Theme)
	assert.Equal(t, s.clock.Now(), st.LastModified)

	_, err = s.settings.SetTheme(ctx, "neon")
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}

	st, err = s.settings.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "nord", st.Theme)
}

func TestSettings_SetResourcesPath(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()

	_, err := s.settings.SetResourcesPath(ctx, "/home/me/ccna")
	require.NoError(t, err)

	st, err := s.settings.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "/home/me/ccna", st.ResourcesPath)
	assert.Equal(t, domain.DefaultTheme, st.Theme)
}

func TestDashboardConfig_Defaults(t *testing.T) {
	s := newTestServices(t)

	cfg, err := s.settings.DashboardConfig(context.Background())
	require.NoError(t, err)
	require.Len(t, cfg.Sections, len(service.DashboardSections()))
	assert.Equal(t, service.DefaultDashboardConfig(), cfg)
	assert.Equal(t, "study-streak", cfg.Sections[0].ID)
	assert.Equal(t, "performance-charts", cfg.Sections[len(cfg.Sections)-1].ID)
	for _, sec := range cfg.Sections {
		assert.True(t, sec.Enabled, sec.ID)
	}
}

func TestDashboardConfig_MergesStoredLayout(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()

	seedJSON(t, s.store, domain.KeySettings, domain.Settings{
		Version: "1.0",
		DashboardConfig: &domain.DashboardConfig{Sections: []domain.DashboardSectionState{
			{ID: "performance-charts", Enabled: false, Order: 0},
			{ID: "retired-panel", Enabled: true, Order: 4},
		}},
	})

	cfg, err := s.settings.DashboardConfig(ctx)
	require.NoError(t, err)
	require.Len(t, cfg.Sections, 7)
	assert.Equal(t, domain.DashboardSectionState{ID: "performance-charts", Enabled: false, Order: 0}, cfg.Sections[0])
	for _, sec := range cfg.Sections {
		assert.NotEqual(t, "retired-panel", sec.ID)
	}
}

func TestSetSectionEnabled(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()

	cfg, err := s.settings.SetSectionEnabled(ctx, "learning-goals", false)
	require.NoError(t, err)
	assert.False(t, cfg.Sections[1].Enabled)

	cfg, err = s.settings.DashboardConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.DashboardSectionState{ID: "learning-goals", Enabled: false, Order: 2}, cfg.Sections[1])

	_, err = s.settings.SetSectionEnabled(ctx, "overall-progress", false)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = s.settings.SetSectionEnabled(ctx, "overall-progress", true)
	assert.NoError(t, err)

	_, err = s.settings.SetSectionEnabled(ctx, "weather", true)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSettings_MalformedFallsBackToDefaults(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()

	require.NoError(t, s.store.Set(ctx, domain.KeySettings, "not json"))
	st, err := s.settings.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultTheme, st.Theme)
}

func TestSettings_Reset(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()

	_, err := s.settings.SetTheme(ctx, "dracula")
	require.NoError(t, err)
	require.NoError(t, s.settings.Reset(ctx))

	st, err := s.settings.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultTheme, st.Theme)
}
