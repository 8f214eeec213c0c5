package middleware

import (
	"bytes"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"costeo/cache"
	"costeo/logger"
	"costeo/utils"
)

const CacheHeader = "X-Cache"

type bodyRecorder struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *bodyRecorder) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// PageCache serves GET JSON responses from store. It must run after
// AuthMiddleware so the key carries the caller's hotel.
func PageCache(store cache.Store, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		claims, _ := utils.GetClaims(c)
		key := cache.PageKey(c.Request.URL.Path, claims.HotelID, c.Request.URL.RawQuery)
		log := logger.WithContext(c.Request.Context())

		body, err := store.Get(c.Request.Context(), key)
		switch {
		case err == nil:
			c.Header(CacheHeader, "HIT")
			c.Data(http.StatusOK, "application/json; charset=utf-8", body)
			c.Abort()
			return
		case !errors.Is(err, cache.ErrMiss):
			log.Warn("page cache read failed", zap.String("key", key), zap.Error(err))
		}

		rec := &bodyRecorder{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = rec
		c.Header(CacheHeader, "MISS")
		c.Next()

		if rec.Status() != http.StatusOK {
			return
		}
		if err := store.Set(c.Request.Context(), key, rec.body.Bytes(), ttl); err != nil {
			log.Warn("page cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
}

// InvalidateOnWrite drops cached pages around every non-GET request: once
// before the handler, so no page read during the write is served from an
// older entry, and again after a 2xx, to drop pages a concurrent GET stored
// while the write was running.
func InvalidateOnWrite(inv *cache.Invalidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}

		inv.Invalidate(c.Request.Context())
		c.Next()
		if status := c.Writer.Status(); status >= http.StatusOK && status < http.StatusMultipleChoices {
			inv.Invalidate(c.Request.Context())
		}
	}
}
