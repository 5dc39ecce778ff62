// Package github fetches contribution calendars from the GitHub GraphQL API.
//
// # Usage
//
//	client := github.NewClient(token, c, cache.NewDefaultKeyer())
//	cal, err := client.FetchCalendar(ctx, "octocat", from, to, false)
//	if err != nil {
//	    return err
//	}
//	grid := activity.FromWeeks(cal.ToWeeks(), 53)
//
// # Authentication
//
// The GraphQL API rejects anonymous requests, so a token is required
// (GITHUB_TOKEN; no scopes needed for public contributions).
//
// # Caching
//
// Calendars are cached under [cache.Keyer.CalendarKey] for [cache.TTLCalendar].
// Pass refresh=true to bypass the cache.
//
// # Offline input
//
// [FileProvider] reads a calendar from a JSON or YAML file with the same
// shape as [Calendar], or from a saved raw GraphQL response, for use with
// --input.
//
// [cache.Keyer.CalendarKey]: github.com/matzehuels/blockfall/pkg/cache.Keyer
// [cache.TTLCalendar]: github.com/matzehuels/blockfall/pkg/cache.TTLCalendar
package github
