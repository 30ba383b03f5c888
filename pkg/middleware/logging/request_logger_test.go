package loggingmw

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/notes/internal/logging"
)

func TestRequestLogger(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		handler echo.HandlerFunc
		status  int
		level   string
	}{
		{
			name:    "ok",
			handler: func(c echo.Context) error { return c.NoContent(http.StatusOK) },
			status:  http.StatusOK,
			level:   "INFO",
		},
		{
			name:    "client error",
			handler: func(echo.Context) error { return echo.NewHTTPError(http.StatusNotFound, "nope") },
			status:  http.StatusNotFound,
			level:   "WARN",
		},
		{
			name:    "server error",
			handler: func(echo.Context) error { return assert.AnError },
			status:  http.StatusInternalServerError,
			level:   "ERROR",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/x", nil)
			req.Header.Set(echo.HeaderXRequestID, "rid-1")
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			var fromCtx bool
			h := func(c echo.Context) error {
				fromCtx = logging.FromContext(c.Request().Context()) != nil
				return tt.handler(c)
			}

			require.NoError(t, RequestLogger(logging.NewWithWriter(&buf, "debug"))(h)(c))
			assert.True(t, fromCtx)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, "rid-1", rec.Header().Get(echo.HeaderXRequestID))

			var line map[string]any
			require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
			assert.Equal(t, tt.level, line["level"])
			assert.Equal(t, "request completed", line["msg"])
			assert.Equal(t, "rid-1", line["request_id"])
			assert.EqualValues(t, tt.status, line["status"])
		})
	}
}
