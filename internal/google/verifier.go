package google

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"google.golang.org/api/idtoken"
	"google.golang.org/api/option"

	"github.com/JayaSurya08-dev/Nimbus/internal/service"
)

var (
	ErrNoClientID      = errors.New("google: client id is not configured")
	ErrEmailUnverified = errors.New("google: email is not verified")
)

type validateFunc func(ctx context.Context, token, audience string) (*idtoken.Payload, error)

// Verifier checks Google ID tokens: signature against Google's published keys,
// issuer, expiry and audience == client id.
type Verifier struct {
	clientID string
	validate validateFunc
}

var _ service.GoogleVerifier = (*Verifier)(nil)

func NewVerifier(ctx context.Context, clientID string) (*Verifier, error) {
	if clientID == "" {
		return nil, ErrNoClientID
	}
	v, err := idtoken.NewValidator(ctx, option.WithHTTPClient(&http.Client{Timeout: 10 * time.Second}))
	if err != nil {
		return nil, fmt.Errorf("google: create validator: %w", err)
	}
	return &Verifier{clientID: clientID, validate: v.Validate}, nil
}

func (v *Verifier) Verify(ctx context.Context, credential string) (*service.GoogleIdentity, error) {
	payload, err := v.validate(ctx, credential, v.clientID)
	if err != nil {
		return nil, fmt.Errorf("google: validate id token: %w", err)
	}
	return identityFromPayload(payload)
}

func identityFromPayload(p *idtoken.Payload) (*service.GoogleIdentity, error) {
	if p == nil {
		return nil, errors.New("google: empty payload")
	}
	id := &service.GoogleIdentity{Subject: p.Subject}
	id.Email, _ = p.Claims["email"].(string)
	id.Name, _ = p.Claims["name"].(string)

	if verified, ok := p.Claims["email_verified"].(bool); ok && !verified {
		return nil, ErrEmailUnverified
	}
	return id, nil
}
