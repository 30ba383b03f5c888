package cache

import (
	"bytes"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/notes/internal/logging"
	"github.com/Skotchmaster/notes/internal/metrics"
	"github.com/Skotchmaster/notes/internal/middleware/auth"
)

const keyPrefix = "notes:response:"

// Key identifies a cached response by path, caller and query. Query keys are
// sorted so parameter order does not split entries.
func Key(c echo.Context) string {
	return keyPrefix + c.Request().URL.Path + "|" + auth.UserID(c) + "|" + c.QueryParams().Encode()
}

// Middleware serves GET responses from store when present and stores
// successful responses for ttl. A nil store disables caching. Store faults
// are logged and the request proceeds uncached.
func Middleware(store Store, ttl time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		if store == nil {
			return next
		}
		return func(c echo.Context) error {
			if c.Request().Method != http.MethodGet {
				return next(c)
			}
			ctx := c.Request().Context()
			l := logging.FromContext(ctx).With("component", "response_cache")
			key := Key(c)

			body, ok, err := store.Get(ctx, key)
			if err != nil {
				l.Warn("cache_get_failed", "key", key, "error", err)
			}
			if ok {
				metrics.CacheLookup(true)
				return c.JSONBlob(http.StatusOK, body)
			}
			metrics.CacheLookup(false)

			buf := new(bytes.Buffer)
			res := c.Response()
			res.Writer = &teeWriter{ResponseWriter: res.Writer, w: io.MultiWriter(res.Writer, buf)}

			if err := next(c); err != nil {
				return err
			}

			if res.Status == http.StatusOK && buf.Len() > 0 {
				if err := store.Set(ctx, key, buf.Bytes(), ttl); err != nil {
					l.Warn("cache_set_failed", "key", key, "error", err)
				}
			}
			return nil
		}
	}
}

type teeWriter struct {
	http.ResponseWriter
	w io.Writer
}

func (t *teeWriter) Write(b []byte) (int, error) {
	return t.w.Write(b)
}

func (t *teeWriter) Flush() {
	if f, ok := t.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
