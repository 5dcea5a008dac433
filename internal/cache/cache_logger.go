package cache

import (
	"context"
	"log/slog"
)

// SafeInvalidatePattern invalidates a pattern and logs failures
func SafeInvalidatePattern(ctx context.Context, helper *CacheHelper, pattern string) {
	if err := helper.InvalidatePattern(ctx, pattern); err != nil {
		slog.ErrorContext(ctx, "Failed to invalidate cache pattern",
			"error", err,
			"pattern", pattern)
	}
}

// SafeDelete deletes keys and logs failures
func SafeDelete(ctx context.Context, helper *CacheHelper, keys ...string) {
	if err := helper.Delete(ctx, keys...); err != nil {
		slog.ErrorContext(ctx, "Failed to delete cache keys",
			"error", err,
			"keys", keys)
	}
}

func MobileKey(mobile string) string {
	return "mobile:" + mobile
}

func AdmissionKey(admissionID string) string {
	return "admission:" + admissionID
}

// InvalidateCandidateCache drops cached lookups for a candidate and the stats
func InvalidateCandidateCache(ctx context.Context, cm *CacheManager, admissionID, mobile string) {
	var keys []string
	if admissionID != "" {
		keys = append(keys, AdmissionKey(admissionID))
	}
	if mobile != "" {
		keys = append(keys, MobileKey(mobile))
	}
	SafeDelete(ctx, cm.Candidate, keys...)
	SafeInvalidatePattern(ctx, cm.Stats, "candidates:*")
}

// InvalidateGalleryCache drops the cached gallery listing
func InvalidateGalleryCache(ctx context.Context, cm *CacheManager) {
	SafeInvalidatePattern(ctx, cm.Content, "gallery:*")
}

// InvalidateNewsCache drops the cached news listing
func InvalidateNewsCache(ctx context.Context, cm *CacheManager) {
	SafeInvalidatePattern(ctx, cm.Content, "news:*")
}
