// Package service loads the event catalog from its static data source, an
// HTTP URL or a local file. The catalog is fetched exactly once per session;
// a failed load is terminal and never re-fetched.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"event-catalog-cli/model"
)

const (
	defaultSource      = "data/events.json"
	defaultUserAgent   = "event-catalog-cli"
	defaultMaxAttempts = 3
	defaultRetryBase   = 200 * time.Millisecond
	defaultRetryCap    = 1200 * time.Millisecond
)

// Repository retrieves the event data file. The retry loop only covers
// transient failures within a single FetchAll call.
type Repository struct {
	httpClient  *http.Client
	source      string
	userAgent   string
	maxAttempts int
	retryBase   time.Duration
	retryCap    time.Duration
}

// SourceError is returned when the data source responds with a non-2xx
// status.
type SourceError struct {
	StatusCode int
	Status     string
	Endpoint   string
	Body       string
}

func (e *SourceError) Error() string {
	if e == nil {
		return "event source error"
	}
	return fmt.Sprintf("event source error: %s: %s", e.Status, e.Body)
}

// IsNotFound reports whether the error represents a 404 from the source.
func IsNotFound(err error) bool {
	var srcErr *SourceError
	if errors.As(err, &srcErr) {
		return srcErr.StatusCode == http.StatusNotFound
	}
	return false
}

// NewRepository creates a repository reading from source, an http(s) URL or
// a file path. Empty source falls back to data/events.json next to the
// binary. If httpClient is nil, a default client is used.
func NewRepository(source string, httpClient *http.Client) *Repository {
	if strings.TrimSpace(source) == "" {
		source = defaultSource
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 12 * time.Second}
	}
	return &Repository{
		httpClient:  httpClient,
		source:      source,
		userAgent:   defaultUserAgent,
		maxAttempts: defaultMaxAttempts,
		retryBase:   defaultRetryBase,
		retryCap:    defaultRetryCap,
	}
}

func (r *Repository) Source() string {
	return r.source
}

// FetchAll loads the full catalog. A malformed or unreachable source is a
// hard failure; there is no partial catalog.
func (r *Repository) FetchAll(ctx context.Context) ([]model.EventRecord, error) {
	var events []model.EventRecord
	if isHTTP(r.source) {
		if err := r.getJSON(ctx, r.source, &events); err != nil {
			return nil, err
		}
	} else {
		data, err := os.ReadFile(r.source)
		if err != nil {
			return nil, fmt.Errorf("read events file: %w", err)
		}
		if err := json.Unmarshal(data, &events); err != nil {
			return nil, fmt.Errorf("parse events file %s: %w", r.source, err)
		}
	}
	if len(events) == 0 {
		return nil, errors.New("event source is empty")
	}
	for i, ev := range events {
		if ev.Id == "" {
			return nil, fmt.Errorf("event at index %d has no id", i)
		}
	}
	return events, nil
}

func isHTTP(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

func (r *Repository) getJSON(ctx context.Context, endpoint string, out any) error {
	maxAttempts := r.maxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("User-Agent", r.userAgent)
		req.Header.Set("Accept", "application/json")

		res, err := r.httpClient.Do(req)
		if err != nil {
			if r.shouldRetryNetworkError(err) && attempt < maxAttempts {
				if waitErr := r.waitRetry(ctx, attempt); waitErr != nil {
					return waitErr
				}
				continue
			}
			return fmt.Errorf("request failed: %w", err)
		}

		if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
			snippet, _ := io.ReadAll(io.LimitReader(res.Body, 8<<10))
			_ = res.Body.Close()

			srcErr := &SourceError{
				StatusCode: res.StatusCode,
				Status:     res.Status,
				Endpoint:   endpoint,
				Body:       strings.TrimSpace(string(snippet)),
			}
			if r.shouldRetryStatus(res.StatusCode) && attempt < maxAttempts {
				if waitErr := r.waitRetry(ctx, attempt); waitErr != nil {
					return waitErr
				}
				continue
			}
			return srcErr
		}

		dec := json.NewDecoder(res.Body)
		err = dec.Decode(out)
		_ = res.Body.Close()
		if err != nil {
			return fmt.Errorf("decode response from %s: %w", endpoint, err)
		}
		return nil
	}

	return errors.New("request failed after retries")
}

func (r *Repository) shouldRetryStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func (r *Repository) shouldRetryNetworkError(err error) bool {
	if err == nil {
		return false
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

func (r *Repository) waitRetry(ctx context.Context, attempt int) error {
	timer := time.NewTimer(r.retryDelay(attempt))
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (r *Repository) retryDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	base := r.retryBase
	if base <= 0 {
		base = defaultRetryBase
	}
	cap := r.retryCap
	if cap <= 0 {
		cap = defaultRetryCap
	}

	delay := base
	for i := 1; i < attempt; i++ {
		if delay >= cap/2 {
			return cap
		}
		delay *= 2
	}
	if delay > cap {
		return cap
	}
	return delay
}
