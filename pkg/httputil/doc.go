// Package httputil provides HTTP utilities for the description service client.
//
// # Retry
//
// [Retry] wraps requests with automatic retry for transient failures:
//
//   - Network errors
//   - 5xx server errors
//   - 429 rate limit responses
//
// Only errors wrapped in [RetryableError] are retried; everything else is
// returned immediately. The delay doubles after each attempt, and a
// [RetryableError] may carry a server-provided minimum wait (Retry-After):
//
//	err := httputil.RetryWithBackoff(ctx, func() error {
//	    resp, err := client.Do(req)
//	    if err != nil {
//	        return &httputil.RetryableError{Err: err}
//	    }
//	    ...
//	})
//
// # Configuration
//
// Default settings are suitable for most use cases:
//
//   - Max attempts: 3
//   - Base backoff: 1 second
package httputil
