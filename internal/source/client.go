// Package source resolves the authoritative daily schedule for a
// (location, date) by walking a tiered sequence of sources: the published
// static bundle, the live dynamic query, then the local cache.
package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/minaret-labs/minaret/internal/model"
)

const (
	requestTimeout = 10 * time.Second

	// one retry per network fetch before the resolver falls to the next tier
	maxAttempts = 2
)

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: requestTimeout}
}

// getJSON fetches a URL and decodes the JSON body into out, retrying once.
// Any transport or non-200 failure maps to ErrSourceUnavailable so the
// resolver can fall through.
func getJSON(ctx context.Context, client *http.Client, url string, out any) error {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return fmt.Errorf("build request: %w", err)
		}
		resp, err := client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}
		if resp.StatusCode == http.StatusNotFound {
			return model.ErrNoDataForDate
		}
		if resp.StatusCode != http.StatusOK {
			lastErr = fmt.Errorf("unexpected status %d", resp.StatusCode)
			continue
		}
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("%w: decode %s: %v", model.ErrSourceUnavailable, url, err)
		}
		return nil
	}
	return fmt.Errorf("%w: %s: %v", model.ErrSourceUnavailable, url, lastErr)
}
