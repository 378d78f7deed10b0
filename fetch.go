package scholarbib

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// RetryPolicy bounds how often and how patiently a page is requested.
type RetryPolicy struct {
	MaxAttempts int
	// BaseDelay is waited before the first retry and doubles for every
	// following one, up to MaxDelay.
	BaseDelay time.Duration
	MaxDelay  time.Duration
	// RateLimitedWait and UnavailableWait are multiplied by the attempt number
	// and waited after a 429 or 503 response respectively.
	RateLimitedWait time.Duration
	UnavailableWait time.Duration
}

// DefaultProfilePolicy waits 5s, 10s, 20s and 40s between its five attempts.
func DefaultProfilePolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:     5,
		BaseDelay:       5 * time.Second,
		MaxDelay:        120 * time.Second,
		RateLimitedWait: 30 * time.Second,
		UnavailableWait: 20 * time.Second,
	}
}

func DefaultArticlePolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:     3,
		BaseDelay:       2 * time.Second,
		MaxDelay:        2 * time.Second,
		RateLimitedWait: 5 * time.Second,
		UnavailableWait: 5 * time.Second,
	}
}

// Backoff returns the delay before the given zero-based attempt.
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	if attempt <= 0 || p.BaseDelay <= 0 {
		return 0
	}
	shift := attempt - 1
	if shift > 30 {
		shift = 30
	}
	d := p.BaseDelay << uint(shift)
	if p.MaxDelay > 0 && (d > p.MaxDelay || d <= 0) {
		d = p.MaxDelay
	}
	return d
}

func (p RetryPolicy) statusWait(attempt int, err error) time.Duration {
	switch {
	case errors.Is(err, ErrRateLimited):
		return time.Duration(attempt+1) * p.RateLimitedWait
	case errors.Is(err, ErrUnavailable):
		return time.Duration(attempt+1) * p.UnavailableWait
	}
	return 0
}

func (sch *Scholar) fetch(ctx context.Context, url string, policy RetryPolicy) ([]byte, error) {
	attempts := policy.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if wait := policy.Backoff(attempt); wait > 0 {
			sch.log.Info().Int("attempt", attempt+1).Dur("wait", wait).Msg("waiting before retry")
			if err := sleep(ctx, wait); err != nil {
				return nil, err
			}
		}
		if err := sch.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("request pacing: %w", err)
		}

		body, err := sch.get(ctx, url, UserAgents[attempt%len(UserAgents)])
		if err == nil {
			sch.log.Debug().Int("attempt", attempt+1).Int("bytes", len(body)).Msg("request succeeded")
			return body, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		lastErr = err

		wait := policy.statusWait(attempt, err)
		if attempt == attempts-1 {
			wait = 0
		}
		sch.log.Warn().
			Err(err).
			Int("attempt", attempt+1).
			Int("max_attempts", attempts).
			Dur("wait", wait).
			Msg("request failed")
		if wait > 0 {
			if err := sleep(ctx, wait); err != nil {
				return nil, err
			}
		}
	}
	return nil, fmt.Errorf("%w after %d attempts: %w", ErrRetriesExhausted, attempts, lastErr)
}

func (sch *Scholar) get(ctx context.Context, url, agent string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", agent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := sch.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &StatusError{StatusCode: resp.StatusCode, Status: resp.Status, URL: url}
	}
	return io.ReadAll(resp.Body)
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
