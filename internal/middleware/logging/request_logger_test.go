package loggingmw

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/JayaSurya08-dev/Nimbus/internal/logging"
)

func lines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, ln := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if ln == "" {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(ln), &m))
		out = append(out, m)
	}
	return out
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	e := echo.New()
	e.Use(RequestLogger(logging.NewWithWriter(&buf, "debug")))
	e.GET("/api/files", func(c echo.Context) error {
		logging.FromContext(c.Request().Context()).Info("inside_handler")
		return c.NoContent(http.StatusOK)
	})
	e.GET("/api/boom", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusNotFound, "file not found")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/files", nil)
	req.Header.Set(echo.HeaderXRequestID, "rid-1")
	e.ServeHTTP(httptest.NewRecorder(), req)

	got := lines(t, &buf)
	require.Len(t, got, 2)
	require.Equal(t, "inside_handler", got[0]["msg"])
	require.Equal(t, "rid-1", got[0]["request_id"])
	require.Equal(t, "request_completed", got[1]["msg"])
	require.EqualValues(t, 200, got[1]["status"])

	buf.Reset()
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/boom", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.JSONEq(t, `{"message":"file not found"}`, rec.Body.String())

	got = lines(t, &buf)
	require.Len(t, got, 1)
	require.Equal(t, "WARN", got[0]["level"])
	require.EqualValues(t, 404, got[0]["status"])
}
