// Package service holds background maintenance jobs
package service

import (
	"context"
	"strings"
	"time"

	"skyvault/drive-api/gateway"
	"skyvault/drive-api/internal/model"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Objects younger than this are skipped: they may belong to a create
// whose row insert hasn't landed yet
const orphanMinAge = time.Hour

// OrphanSweep periodically reconciles the bucket against the files table
// and deletes objects whose record never made it in (a create that failed
// between the object write and the row insert)
func OrphanSweep(t time.Duration, db *gorm.DB, objects gateway.Objects) {
	ticker := time.NewTicker(t)

	zap.L().Debug("Orphan sweep attached", zap.Duration("tick_every", t))

	go func() {
		for range ticker.C {
			SweepOnce(context.Background(), db, objects)
		}
	}()
}

// SweepOnce runs a single reconciliation pass
func SweepOnce(ctx context.Context, db *gorm.DB, objects gateway.Objects) {
	objs, err := objects.List(ctx)
	if err != nil {
		zap.L().Error("Failed to list bucket objects", zap.Error(err))
		return
	}

	cutoff := time.Now().Add(-orphanMinAge)

	// Object keys are <record id>/<name>
	candidates := make(map[string][]string)
	for _, o := range objs {
		if o.LastModified.After(cutoff) {
			continue
		}

		id, _, ok := strings.Cut(o.Key, "/")
		if !ok {
			continue
		}
		candidates[id] = append(candidates[id], o.Key)
	}

	if len(candidates) == 0 {
		return
	}

	ids := make([]string, 0, len(candidates))
	for id := range candidates {
		ids = append(ids, id)
	}

	var known []string
	err = db.
		WithContext(ctx).
		Model(model.File{}).
		Where("id IN ?", ids).
		Pluck("id", &known).
		Error
	if err != nil {
		zap.L().Error("Failed to query file records for sweep", zap.Error(err))
		return
	}

	for _, id := range known {
		delete(candidates, id)
	}

	for id, keys := range candidates {
		for _, key := range keys {
			if err := objects.Delete(ctx, key); err != nil {
				zap.L().Error("Failed to delete orphaned object",
					zap.String("key", key),
					zap.Error(err))
				continue
			}

			zap.L().Debug("Deleted orphaned object",
				zap.String("id", id),
				zap.String("key", key))
		}
	}
}
