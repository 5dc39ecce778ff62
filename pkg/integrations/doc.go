// Package integrations provides the shared HTTP plumbing for blockfall's
// upstream data sources.
//
// # Client Pattern
//
// Source clients embed [Client] and add domain calls on top:
//
//	gh := github.NewClient(token, c, keyer)
//	cal, err := gh.FetchCalendar(ctx, "octocat", from, to, false)  // false = use cache
//
// [Client] handles:
//   - JSON GET and POST requests with default headers
//   - Retry with exponential backoff for network errors and 5xx responses
//   - Response caching through any [cache.Cache] backend
//   - Mapping of HTTP status codes to [ErrNotFound], [ErrUnauthorized],
//     [ErrRateLimited] and [ErrNetwork]
//
// # Shared Infrastructure
//
// Timeouts come from [NewHTTPClient]; retry policy from [httputil.DefaultBackoff].
//
// [cache.Cache]: github.com/matzehuels/blockfall/pkg/cache.Cache
// [httputil.DefaultBackoff]: github.com/matzehuels/blockfall/pkg/httputil#DefaultBackoff
package integrations
