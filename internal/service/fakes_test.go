package service

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/JayaSurya08-dev/Nimbus/internal/cache"
	"github.com/JayaSurya08-dev/Nimbus/internal/models"
	"github.com/JayaSurya08-dev/Nimbus/internal/repo"
	"github.com/JayaSurya08-dev/Nimbus/internal/testutil"
)

type fakeStore struct {
	mu        sync.Mutex
	objects   map[string][]byte
	putErr    error
	deleteOK  bool
	signFails bool
	deleted   []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: map[string][]byte{}, deleteOK: true}
}

func (f *fakeStore) Put(_ context.Context, obj Object) (*Receipt, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	b, err := io.ReadAll(obj.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[obj.Path] = b
	return &Receipt{Path: obj.Path, ETag: "etag"}, nil
}

func (f *fakeStore) PublicURL(path string) string {
	return "https://cdn.example/cloud-storage/" + path
}

func (f *fakeStore) SignedURL(_ context.Context, path string, ttl time.Duration) string {
	if f.signFails {
		return ""
	}
	return "https://cdn.example/signed/" + path + "?ttl=" + ttl.String()
}

func (f *fakeStore) Delete(_ context.Context, path string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, path)
	if !f.deleteOK {
		return false
	}
	delete(f.objects, path)
	return true
}

func (f *fakeStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.objects)
}

type sentMail struct {
	To, Subject, Body string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (m *fakeMailer) Send(_ context.Context, to, subject, body string) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{To: to, Subject: subject, Body: body})
	return nil
}

type fakeGoogle struct {
	identity *GoogleIdentity
}

func (g *fakeGoogle) Verify(_ context.Context, credential string) (*GoogleIdentity, error) {
	if credential != "good-credential" {
		return nil, errors.New("token signature invalid")
	}
	return g.identity, nil
}

type fakeIndex struct {
	docs      map[uint]string
	searchErr error
}

func (i *fakeIndex) IndexFile(_ context.Context, f *models.File) error {
	i.docs[f.ID] = f.Name
	return nil
}

func (i *fakeIndex) RemoveFile(_ context.Context, id uint) error {
	delete(i.docs, id)
	return nil
}

func (i *fakeIndex) Search(_ context.Context, ownerID uint, query string, from, size int) (int64, []models.File, error) {
	if i.searchErr != nil {
		return 0, nil, i.searchErr
	}
	var out []models.File
	for id, name := range i.docs {
		if name == query {
			out = append(out, models.File{ID: id, OwnerID: ownerID, Name: name, StoragePath: "idx/" + name})
		}
	}
	return int64(len(out)), out, nil
}

type testEnv struct {
	users  *repo.UserRepo
	tokens *TokenService
	resets *cache.Memory
	mailer *fakeMailer
	store  *fakeStore
	auth   *AuthService
	files  *FileService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.InitTestDB(t)

	users := repo.NewUserRepo(db)
	tokenSvc := NewTokenService(repo.NewTokenRepo(db), []byte("test-jwt-secret"), []byte("test-refresh-secret"), 5*time.Minute, 7*24*time.Hour)
	resets := cache.NewMemory(15 * time.Minute)
	mailer := &fakeMailer{}
	store := newFakeStore()

	return &testEnv{
		users:  users,
		tokens: tokenSvc,
		resets: resets,
		mailer: mailer,
		store:  store,
		auth: &AuthService{
			Users:         users,
			Tokens:        tokenSvc,
			Resets:        resets,
			Mailer:        mailer,
			Google:        &fakeGoogle{identity: &GoogleIdentity{Email: "grace@x", Name: "Grace Brewster Hopper"}},
			ResetURLBase:  "http://localhost:5173/reset-password/",
			ResetTokenTTL: 15 * time.Minute,
		},
		files: &FileService{
			Files:        repo.NewFileRepo(db),
			Store:        store,
			PublicBucket: true,
			SignedURLTTL: time.Hour,
		},
	}
}
