package transport

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const (
	DefaultPresenceURL  = "http://localhost:8080/chat/users"
	maxPresencePayload  = 1 << 20
	presenceHTTPTimeout = 5 * time.Second
)

// HTTPPresenceFetcher reads the online-user list from the REST endpoint.
type HTTPPresenceFetcher struct {
	log    *slog.Logger
	url    string
	client *http.Client
}

func NewHTTPPresenceFetcher(log *slog.Logger, url string) *HTTPPresenceFetcher {
	if url == "" {
		url = DefaultPresenceURL
	}
	return &HTTPPresenceFetcher{log: log, url: url, client: &http.Client{Timeout: presenceHTTPTimeout}}
}

func (f *HTTPPresenceFetcher) FetchPresence(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", jsonContentType)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch presence: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch presence: unexpected status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPresencePayload))
	if err != nil {
		return nil, fmt.Errorf("fetch presence: %w", err)
	}
	f.log.Debug("Presence fetched", "bytes", len(body))
	return body, nil
}
