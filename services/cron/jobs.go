package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/EnmanuelReynoso23/el-pensum/model"
	"github.com/EnmanuelReynoso23/el-pensum/services/storage"
	"go.uber.org/zap"
)

// CronLogRetention is how long job runs stay in cron_job_logs
const CronLogRetention = 90 * 24 * time.Hour

var assetPrefixes = []string{storage.PrefixLogos, storage.PrefixCampus, storage.PrefixSyllabi}

// referencedKeys collects the object keys of every logo, campus image and
// syllabus the catalog points at
func (m *CronManager) referencedKeys(ctx context.Context) (map[string]bool, error) {
	keys := make(map[string]bool)
	add := func(url string) {
		if key, ok := m.store.KeyFromURL(url); ok {
			keys[key] = true
		}
	}

	var universities []model.University
	if err := m.db.WithContext(ctx).Select("id", "logo_url", "campus_images").Find(&universities).Error; err != nil {
		return nil, fmt.Errorf("failed to query universities: %w", err)
	}
	for _, u := range universities {
		add(u.LogoURL)
		for _, img := range u.CampusImages {
			add(img)
		}
	}

	var syllabi []string
	if err := m.db.WithContext(ctx).Model(&model.Offering{}).
		Where("syllabus_url IS NOT NULL AND syllabus_url <> ''").
		Pluck("syllabus_url", &syllabi).Error; err != nil {
		return nil, fmt.Errorf("failed to query offerings: %w", err)
	}
	for _, url := range syllabi {
		add(url)
	}

	return keys, nil
}

// PruneOrphanAssets deletes stored logos, campus images and syllabi that no
// catalog row references and that are older than the grace period
func (m *CronManager) PruneOrphanAssets(ctx context.Context) (string, map[string]interface{}, error) {
	if m.store == nil {
		return "object storage not configured", nil, nil
	}

	referenced, err := m.referencedKeys(ctx)
	if err != nil {
		return "", nil, err
	}

	cutoff := m.now().Add(-m.orphanGrace)
	scanned, deleted, failed := 0, 0, 0

	for _, prefix := range assetPrefixes {
		objects, err := m.store.List(ctx, prefix)
		if err != nil {
			return "", nil, err
		}

		for _, obj := range objects {
			scanned++
			if referenced[obj.Key] || obj.LastModified.After(cutoff) {
				continue
			}
			if err := m.store.Delete(ctx, obj.Key); err != nil {
				m.logger.Warn("failed to delete orphan asset", zap.String("key", obj.Key), zap.Error(err))
				failed++
				continue
			}
			deleted++
		}
	}

	metadata := map[string]interface{}{
		"scanned": scanned,
		"deleted": deleted,
		"failed":  failed,
	}
	return fmt.Sprintf("Deleted %d of %d stored objects", deleted, scanned), metadata, nil
}

// CleanupOldData removes expired token blacklist entries and old job logs
func (m *CronManager) CleanupOldData(ctx context.Context) (string, map[string]interface{}, error) {
	tokens, err := m.blacklist.CleanupExpiredTokens(ctx)
	if err != nil {
		return "", nil, fmt.Errorf("failed to clean token blacklist: %w", err)
	}

	logs := m.db.WithContext(ctx).
		Where("created_at < ?", m.now().Add(-CronLogRetention)).
		Delete(&model.CronJobLog{})
	if logs.Error != nil {
		return "", nil, fmt.Errorf("failed to clean cron logs: %w", logs.Error)
	}

	metadata := map[string]interface{}{
		"tokens":    tokens,
		"cron_logs": logs.RowsAffected,
	}
	return fmt.Sprintf("Cleaned up %d total records", tokens+logs.RowsAffected), metadata, nil
}
