package engine

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
)

const (
	retryMaxTries    = 3
	retryMaxElapsed  = 30 * time.Second
	retryInitialWait = 500 * time.Millisecond
	retryMaxWait     = 10 * time.Second
)

// RetryHTTP sends the request built by fn, retrying transient failures
// with exponential backoff. Retryable: 429/5xx statuses and transient
// network errors; everything else aborts immediately. A retryable
// status consumes the response and surfaces as *APIError on exhaustion.
func RetryHTTP(ctx context.Context, provider string, fn func() (*http.Response, error)) (*http.Response, error) {
	operation := func() (*http.Response, error) {
		resp, err := fn()
		if err != nil {
			if isTransient(err) {
				return nil, err
			}
			return nil, backoff.Permanent(err)
		}
		if isRetryableStatus(resp.StatusCode) {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			resp.Body.Close()
			return nil, &APIError{Provider: provider, Status: resp.StatusCode, Body: string(body)}
		}
		return resp, nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = retryInitialWait
	bo.MaxInterval = retryMaxWait

	return backoff.Retry(ctx, operation,
		backoff.WithBackOff(bo),
		backoff.WithMaxTries(retryMaxTries),
		backoff.WithMaxElapsedTime(retryMaxElapsed),
	)
}

// isTransient reports whether a request error is worth retrying.
func isTransient(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	return false
}

// isRetryableStatus reports whether an HTTP status is worth retrying.
func isRetryableStatus(code int) bool {
	switch code {
	case 429, 500, 502, 503, 504:
		return true
	}
	return false
}
