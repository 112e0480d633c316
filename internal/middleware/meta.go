package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

const (
	startedAtKey = "request_started_at"
	cacheHitKey  = "cache_hit"
)

// ResponseMeta stamps the request start so handlers can report processing time.
func ResponseMeta() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(startedAtKey, time.Now())
		c.Next()
	}
}

// SetCacheHit records whether the payload about to be written came from cache.
func SetCacheHit(c *gin.Context, hit bool) {
	c.Set(cacheHitKey, hit)
}

// Meta builds the meta block for the current response.
func Meta(c *gin.Context) map[string]interface{} {
	meta := map[string]interface{}{}
	if hit, ok := c.Get(cacheHitKey); ok {
		meta[cacheHitKey] = hit
	}
	if v, ok := c.Get(startedAtKey); ok {
		if started, ok := v.(time.Time); ok {
			meta["processing_time_ms"] = time.Since(started).Milliseconds()
		}
	}
	if len(meta) == 0 {
		return nil
	}
	return meta
}
