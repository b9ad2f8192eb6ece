package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/msomdec/studytrack/internal/domain"
)

// loadJSON decodes the value under key into dst. It reports false when the
// key is absent. A value that does not decode is logged and also reported as
// absent; dst may then be partially written, so callers fall back to their
// defaults on false. The next save overwrites the bad value.
func loadJSON(ctx context.Context, store domain.Store, key string, dst any) (bool, error) {
	raw, ok, err := store.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("read %s: %w", key, err)
	}
	if !ok || raw == "" {
		return false, nil
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		slog.Warn("discarding malformed stored value", "key", key, "error", err)
		return false, nil
	}
	return true, nil
}

func saveJSON(ctx context.Context, store domain.Store, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := store.Set(ctx, key, string(data)); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}
