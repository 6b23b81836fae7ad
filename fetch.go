package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"
)

// fetcher performs SerpAPI requests with exponential backoff. Transient
// conditions (rate limiting, non-200 statuses, network errors) are retried
// up to MaxAttempts requests total; exhaustion surfaces as an error that
// the walker treats as "stop here with what we have".
type fetcher struct {
	client      *http.Client
	baseDelay   time.Duration
	maxAttempts int
	sleep       func(time.Duration)
}

func newFetcher(cfg config) *fetcher {
	attempts := cfg.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	delay := cfg.RetryBaseDelay
	if delay <= 0 {
		delay = defaultRetryBaseDelay
	}
	return &fetcher{
		client:      &http.Client{Timeout: cfg.FetchTimeout},
		baseDelay:   delay,
		maxAttempts: attempts,
		sleep:       time.Sleep,
	}
}

// fetchWithRetries GETs endpoint with params and decodes the JSON body.
// A 429 gets an extra wait of twice the current delay before rejoining the
// shared retry path; the shared path sleeps the current delay and doubles
// it after every failed attempt.
func (f *fetcher) fetchWithRetries(ctx context.Context, endpoint string, params url.Values) (map[string]any, error) {
	requestURL := endpoint
	if len(params) > 0 {
		requestURL = endpoint + "?" + params.Encode()
	}

	delay := f.baseDelay
	for attempt := 1; attempt <= f.maxAttempts; attempt++ {
		payload, retryable, err := f.fetchOnce(ctx, requestURL, delay)
		if err == nil {
			return payload, nil
		}
		if !retryable {
			return nil, err
		}
		log.Printf("Request error on attempt %d: %v", attempt, err)

		if attempt < f.maxAttempts {
			f.sleep(delay)
			delay *= 2
		}
	}

	log.Println("Max retries exceeded. Request failed.")
	return nil, fmt.Errorf("request to %s failed after %d attempts", endpoint, f.maxAttempts)
}

func (f *fetcher) fetchOnce(ctx context.Context, requestURL string, delay time.Duration) (map[string]any, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, false, err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, true, err
	}
	defer resp.Body.Close()

	log.Printf("API request status: %d", resp.StatusCode)

	switch {
	case resp.StatusCode == http.StatusOK:
		var payload map[string]any
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
			return nil, true, fmt.Errorf("decoding response body: %w", err)
		}
		return payload, false, nil

	case resp.StatusCode == http.StatusTooManyRequests:
		log.Printf("Rate limited, waiting %s before retrying...", 2*delay)
		f.sleep(2 * delay)
		return nil, true, fmt.Errorf("rate limited (status %d)", resp.StatusCode)

	default:
		log.Printf("Request failed with status %d", resp.StatusCode)
		log.Printf("Response: %s...", truncatedBody(resp.Body))
		return nil, true, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
}

func truncatedBody(r io.Reader) string {
	b, err := io.ReadAll(io.LimitReader(r, 200))
	if err != nil {
		return ""
	}
	return string(b)
}
