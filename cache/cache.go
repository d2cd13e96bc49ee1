package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"

	"backline/db"
	"backline/logger"
	"backline/model"
)

// Cache keys and lifetimes. The gallery listing cache absorbs page-through
// traffic against the external image host; the site config cache spares the
// database on every public page load.
const (
	galleryListingPrefix = "gallery:listing:"
	galleryListingTTL    = 30 * time.Second

	siteConfigKey = "site:config"
	siteConfigTTL = 60 * time.Second
)

// GalleryCache caches full gallery listings in redis.
type GalleryCache struct {
	ttl time.Duration
}

// NewGalleryCache returns the redis-backed listing cache.
func NewGalleryCache() *GalleryCache {
	return &GalleryCache{ttl: galleryListingTTL}
}

// GetListing returns a cached listing. A cold cache, an unreachable redis or
// a corrupt entry all read as a miss.
func (c *GalleryCache) GetListing(ctx context.Context, key string) ([]model.GalleryImage, bool) {
	if db.RedisClient == nil {
		return nil, false
	}
	raw, err := db.RedisClient.Get(ctx, galleryListingPrefix+key).Result()
	if err != nil {
		if err != redis.Nil {
			logger.Warn("Gallery cache read failed", logger.String("key", key), logger.ErrorField(err))
		}
		return nil, false
	}
	var images []model.GalleryImage
	if err := json.Unmarshal([]byte(raw), &images); err != nil {
		logger.Warn("Gallery cache entry corrupt, dropping", logger.String("key", key))
		db.RedisClient.Del(ctx, galleryListingPrefix+key)
		return nil, false
	}
	return images, true
}

// SetListing stores a listing. Failures only cost the next reader a fetch.
func (c *GalleryCache) SetListing(ctx context.Context, key string, images []model.GalleryImage) {
	if db.RedisClient == nil {
		return
	}
	raw, err := json.Marshal(images)
	if err != nil {
		return
	}
	if err := db.RedisClient.Set(ctx, galleryListingPrefix+key, raw, c.ttl).Err(); err != nil {
		logger.Warn("Gallery cache write failed", logger.String("key", key), logger.ErrorField(err))
	}
}

// GetSiteConfig returns the cached config map, or a miss.
func GetSiteConfig(ctx context.Context) (map[string]string, bool) {
	if db.RedisClient == nil {
		return nil, false
	}
	raw, err := db.RedisClient.Get(ctx, siteConfigKey).Result()
	if err != nil {
		return nil, false
	}
	var values map[string]string
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		db.RedisClient.Del(ctx, siteConfigKey)
		return nil, false
	}
	return values, true
}

// SetSiteConfig caches the config map.
func SetSiteConfig(ctx context.Context, values map[string]string) {
	if db.RedisClient == nil {
		return
	}
	raw, err := json.Marshal(values)
	if err != nil {
		return
	}
	if err := db.RedisClient.Set(ctx, siteConfigKey, raw, siteConfigTTL).Err(); err != nil {
		logger.Warn("Site config cache write failed", logger.ErrorField(err))
	}
}

// InvalidateSiteConfig drops the cached config after an admin write.
func InvalidateSiteConfig(ctx context.Context) {
	if db.RedisClient == nil {
		return
	}
	db.RedisClient.Del(ctx, siteConfigKey)
}

// FlushAppKeys deletes every key this application owns. Used by the redis
// maintenance command; deliberately not FLUSHDB so a shared instance is safe.
func FlushAppKeys(ctx context.Context) (int64, error) {
	if db.RedisClient == nil {
		return 0, nil
	}
	var deleted int64
	iter := db.RedisClient.Scan(ctx, 0, galleryListingPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := db.RedisClient.Del(ctx, iter.Val()).Err(); err != nil {
			return deleted, err
		}
		deleted++
	}
	if err := iter.Err(); err != nil {
		return deleted, err
	}
	n, err := db.RedisClient.Del(ctx, siteConfigKey).Result()
	return deleted + n, err
}
