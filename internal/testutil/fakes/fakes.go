// Package fakes has in-memory stand-ins for the external collaborators of the
// services: object storage, mail and Google sign-in.
package fakes

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/JayaSurya08-dev/Nimbus/internal/service"
)

type Store struct {
	mu        sync.Mutex
	objects   map[string][]byte
	PutErr    error
	SignFails bool
}

func NewStore() *Store {
	return &Store{objects: map[string][]byte{}}
}

func (s *Store) Put(_ context.Context, obj service.Object) (*service.Receipt, error) {
	if s.PutErr != nil {
		return nil, s.PutErr
	}
	b, err := io.ReadAll(obj.Body)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[obj.Path] = b
	return &service.Receipt{Path: obj.Path}, nil
}

func (s *Store) PublicURL(path string) string {
	return "https://storage.test/cloud-storage/" + path
}

func (s *Store) SignedURL(_ context.Context, path string, _ time.Duration) string {
	if s.SignFails {
		return ""
	}
	return "https://storage.test/signed/" + path
}

func (s *Store) Delete(_ context.Context, path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, path)
	return true
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}

type Mail struct {
	To, Subject, Body string
}

type Mailer struct {
	mu   sync.Mutex
	sent []Mail
	Err  error
}

func (m *Mailer) Send(_ context.Context, to, subject, body string) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, Mail{To: to, Subject: subject, Body: body})
	return nil
}

func (m *Mailer) Last() (Mail, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return Mail{}, false
	}
	return m.sent[len(m.sent)-1], true
}

// Google accepts only ValidCredential.
type Google struct {
	Identity service.GoogleIdentity
}

const ValidCredential = "good-credential"

func (g *Google) Verify(_ context.Context, credential string) (*service.GoogleIdentity, error) {
	if credential != ValidCredential {
		return nil, errors.New("token signature invalid")
	}
	id := g.Identity
	return &id, nil
}
