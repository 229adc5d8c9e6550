package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/JayaSurya08-dev/Nimbus/internal/cache"
	"github.com/JayaSurya08-dev/Nimbus/internal/repo"
	"github.com/JayaSurya08-dev/Nimbus/internal/service"
	"github.com/JayaSurya08-dev/Nimbus/internal/testutil"
	"github.com/JayaSurya08-dev/Nimbus/internal/testutil/fakes"
)

type testEnv struct {
	T      *testing.T
	E      *echo.Echo
	A      *AuthHandler
	F      *FileHandler
	DB     *gorm.DB
	Store  *fakes.Store
	Mailer *fakes.Mailer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.InitTestDB(t)

	tokens := service.NewTokenService(
		repo.NewTokenRepo(db),
		[]byte("test-jwt-secret"),
		[]byte("test-refresh-secret"),
		5*time.Minute,
		7*24*time.Hour,
	)
	store := fakes.NewStore()
	mailer := &fakes.Mailer{}

	return &testEnv{
		T:      t,
		E:      echo.New(),
		DB:     db,
		Store:  store,
		Mailer: mailer,
		A: &AuthHandler{Auth: &service.AuthService{
			Users:         repo.NewUserRepo(db),
			Tokens:        tokens,
			Resets:        cache.NewMemory(15 * time.Minute),
			Mailer:        mailer,
			Google:        &fakes.Google{Identity: service.GoogleIdentity{Email: "grace@x.io", Name: "Grace Brewster Hopper"}},
			ResetURLBase:  "http://localhost:5173/reset-password",
			ResetTokenTTL: 15 * time.Minute,
		}},
		F: &FileHandler{Files: &service.FileService{
			Files:        repo.NewFileRepo(db),
			Store:        store,
			PublicBucket: true,
			SignedURLTTL: time.Hour,
		}},
	}
}

func (env *testEnv) context(req *http.Request) (echo.Context, *httptest.ResponseRecorder) {
	rec := httptest.NewRecorder()
	return env.E.NewContext(req, rec), rec
}

func jsonRequest(method, target string, body any) *http.Request {
	b, _ := json.Marshal(body)
	req := httptest.NewRequest(method, target, bytes.NewReader(b))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func uploadRequest(t *testing.T, field, filename string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if field != "" {
		fw, err := w.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	return req
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func cookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == name {
			return ck
		}
	}
	return nil
}

func requireHTTPError(t *testing.T, err error, code int) *echo.HTTPError {
	t.Helper()
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError, got %v", err)
	require.Equal(t, code, he.Code)
	return he
}
