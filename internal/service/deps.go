package service

import (
	"context"
	"io"
	"time"

	"github.com/JayaSurya08-dev/Nimbus/internal/logging"
)

type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// GoogleIdentity is what a verified Google ID token tells us about the caller.
type GoogleIdentity struct {
	Subject string
	Email   string
	Name    string
}

type GoogleVerifier interface {
	Verify(ctx context.Context, credential string) (*GoogleIdentity, error)
}

type EventPublisher interface {
	PublishEvent(ctx context.Context, topic, key string, event any) error
}

type Object struct {
	Path        string
	Body        io.Reader
	Size        int64
	ContentType string
}

type Receipt struct {
	Path      string
	ETag      string
	VersionID string
}

// ObjectStore is the object storage boundary. SignedURL returns "" and Delete false
// when the provider fails; neither propagates provider errors.
type ObjectStore interface {
	Put(ctx context.Context, obj Object) (*Receipt, error)
	PublicURL(path string) string
	SignedURL(ctx context.Context, path string, ttl time.Duration) string
	Delete(ctx context.Context, path string) bool
}

const (
	TopicUserEvents = "user_events"
	TopicFileEvents = "file_events"
)

func publish(ctx context.Context, p EventPublisher, topic, key string, event map[string]any) {
	if p == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := p.PublishEvent(ctx, topic, key, event); err != nil {
		logging.FromContext(ctx).Error("kafka_publish_error", "topic", topic, "error", err)
	}
}
