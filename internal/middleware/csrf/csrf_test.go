package csrf

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

func newEcho(cfg Config) *echo.Echo {
	e := echo.New()
	e.Use(Middleware(cfg))
	ok := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	e.GET("/api/files", ok)
	e.POST("/api/upload", ok)
	e.POST("/api/login", ok)
	return e
}

func csrfCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == "XSRF-TOKEN" {
			return ck
		}
	}
	return nil
}

func TestCSRF_SafeMethodIssuesToken(t *testing.T) {
	e := newEcho(Config{})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/files", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	ck := csrfCookie(rec)
	require.NotNil(t, ck)
	require.False(t, ck.HttpOnly)
	require.Equal(t, ck.Value, rec.Header().Get("X-CSRF-Token"))
}

func TestCSRF_UnsafeMethod(t *testing.T) {
	e := newEcho(Config{AllowedOrigins: []string{"http://localhost:5173"}})

	post := func(token, origin string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/upload", nil)
		req.AddCookie(&http.Cookie{Name: "XSRF-TOKEN", Value: "tok"})
		if token != "" {
			req.Header.Set("X-CSRF-Token", token)
		}
		if origin != "" {
			req.Header.Set("Origin", origin)
		}
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec.Code
	}

	require.Equal(t, http.StatusOK, post("tok", "http://localhost:5173"))
	require.Equal(t, http.StatusOK, post("tok", "http://example.com"), "same origin as the request host")
	require.Equal(t, http.StatusForbidden, post("wrong", "http://localhost:5173"))
	require.Equal(t, http.StatusForbidden, post("", "http://localhost:5173"))
	require.Equal(t, http.StatusForbidden, post("tok", "http://evil.io"))
	require.Equal(t, http.StatusForbidden, post("tok", ""))
}

func TestCSRF_SkipPaths(t *testing.T) {
	e := newEcho(Config{SkipPaths: []string{"/api/login/"}})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/login", nil))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestCSRF_OriginCheck(t *testing.T) {
	post := func(e *echo.Echo, header, value string, mutate func(*http.Request)) int {
		req := httptest.NewRequest(http.MethodPost, "/api/upload", nil)
		req.AddCookie(&http.Cookie{Name: "XSRF-TOKEN", Value: "tok"})
		req.Header.Set("X-CSRF-Token", "tok")
		if header != "" {
			req.Header.Set(header, value)
		}
		if mutate != nil {
			mutate(req)
		}
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec.Code
	}

	e := newEcho(Config{})
	require.Equal(t, http.StatusForbidden, post(e, "Origin", "https://evil.io", nil), "foreign origin with a valid token")
	require.Equal(t, http.StatusForbidden, post(e, "Referer", "https://evil.io/page", nil))
	require.Equal(t, http.StatusOK, post(e, "Referer", "http://example.com/app", nil))
	require.Equal(t, http.StatusForbidden, post(e, "Origin", "https://example.com", nil), "scheme differs from the request")
	require.Equal(t, http.StatusOK, post(e, "Origin", "https://example.com", func(r *http.Request) {
		r.Header.Set("X-Forwarded-Proto", "https")
	}))

	open := newEcho(Config{SkipOriginCheck: true})
	require.Equal(t, http.StatusOK, post(open, "Origin", "https://evil.io", nil))
}
