// Package httputil holds transport helpers shared by the GitHub client and
// the HTTP server.
//
// [Backoff] re-runs an operation with exponential delays, but only for
// failures wrapped in [RetryableError] (network errors, 5xx responses).
// Everything else, including 404 and 401, fails immediately:
//
//	err := httputil.DefaultBackoff.Do(ctx, func() error {
//	    return client.post(ctx, query, &resp)
//	})
//
// A server-supplied Retry-After is honoured through [RetryableAfter].
package httputil
