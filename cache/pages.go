package cache

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"costeo/logger"
)

// Path prefixes whose cached pages depend on entity data.
const (
	DashboardPath = "/api/v1/dashboard"
	ReportsPath   = "/api/v1/reports"
)

// PageKey identifies a cached GET response.
func PageKey(path string, hotelID uint, rawQuery string) string {
	return fmt.Sprintf("page:%s|h%d|%s", path, hotelID, rawQuery)
}

// PagePrefix matches every cached page under path.
func PagePrefix(path string) string {
	return "page:" + path
}

// Invalidator drops cached pages after writes. Failures are logged, not returned.
type Invalidator struct {
	store Store
	paths []string
}

// NewInvalidator returns an Invalidator for the given paths, or for the
// dashboard and reports paths when none are given.
func NewInvalidator(store Store, paths ...string) *Invalidator {
	if len(paths) == 0 {
		paths = []string{DashboardPath, ReportsPath}
	}
	return &Invalidator{store: store, paths: paths}
}

func (i *Invalidator) Invalidate(ctx context.Context) {
	if i == nil || i.store == nil {
		return
	}
	for _, p := range i.paths {
		if err := i.store.InvalidatePrefix(ctx, PagePrefix(p)); err != nil {
			logger.WithContext(ctx).Warn("cache invalidation failed", zap.String("path", p), zap.Error(err))
		}
	}
}
