// Package cache holds short-lived single-use values such as password reset tokens.
package cache

import (
	"context"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// Store is a string key/value store with per-entry expiry.
type Store interface {
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, bool)
	Delete(ctx context.Context, key string)
	// Take returns the value and removes it in one step, so a key is handed out at most once.
	Take(ctx context.Context, key string) (string, bool)
}

type Memory struct {
	items *ttlcache.Cache[string, string]
}

func NewMemory(defaultTTL time.Duration) *Memory {
	return &Memory{
		items: ttlcache.New[string, string](
			ttlcache.WithTTL[string, string](defaultTTL),
			ttlcache.WithDisableTouchOnHit[string, string](),
		),
	}
}

// Start runs the expiry loop until ctx is done.
func (m *Memory) Start(ctx context.Context) {
	go m.items.Start()
	<-ctx.Done()
	m.items.Stop()
}

func (m *Memory) Set(_ context.Context, key, value string, ttl time.Duration) error {
	m.items.Set(key, value, ttl)
	return nil
}

// Get never returns an expired entry, whether or not the expiry loop is running.
func (m *Memory) Get(_ context.Context, key string) (string, bool) {
	item := m.items.Get(key)
	if item == nil || item.IsExpired() {
		return "", false
	}
	return item.Value(), true
}

func (m *Memory) Delete(_ context.Context, key string) {
	m.items.Delete(key)
}

func (m *Memory) Take(_ context.Context, key string) (string, bool) {
	item, ok := m.items.GetAndDelete(key)
	if !ok || item == nil || item.IsExpired() {
		return "", false
	}
	return item.Value(), true
}

func (m *Memory) Len() int {
	return m.items.Len()
}
