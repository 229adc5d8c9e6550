package es

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/elastic/go-elasticsearch/v9"
)

type Config struct {
	URL      string
	User     string
	Password string
}

// NewClient connects and pings the cluster once so misconfiguration shows up at startup.
func NewClient(ctx context.Context, cfg Config, l *slog.Logger) (*elasticsearch.Client, error) {
	l = l.With("component", "elasticsearch", "url", cfg.URL)

	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.URL},
		Username:  cfg.User,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("create elasticsearch client: %w", err)
	}

	res, err := client.Info(client.Info.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("elasticsearch info: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		l.Error("elasticsearch_error_response", "status", res.StatusCode, "body", string(body))
		return nil, fmt.Errorf("elasticsearch error: %s", res.Status())
	}

	l.Info("elasticsearch_connected")
	return client, nil
}
