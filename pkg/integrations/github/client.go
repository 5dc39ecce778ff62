package github

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/matzehuels/blockfall/pkg/cache"
	bferrors "github.com/matzehuels/blockfall/pkg/errors"
	"github.com/matzehuels/blockfall/pkg/integrations"
)

const defaultBaseURL = "https://api.github.com"

const calendarQuery = `query($login: String!, $from: DateTime!, $to: DateTime!) {
  user(login: $login) {
    login
    contributionsCollection(from: $from, to: $to) {
      contributionCalendar {
        totalContributions
        weeks { contributionDays { date contributionCount weekday } }
      }
    }
  }
}`

// Client provides access to the GitHub GraphQL API.
// It handles HTTP requests with caching, automatic retries and authentication.
type Client struct {
	*integrations.Client
	baseURL string
	keyer   cache.Keyer
	token   string
}

// NewClient creates a GitHub client. c and keyer may be nil to disable
// caching and use the default key layout.
func NewClient(token string, c cache.Cache, keyer cache.Keyer) *Client {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	headers := map[string]string{"Accept": "application/json"}
	if token != "" {
		headers["Authorization"] = "Bearer " + token
	}
	return &Client{
		Client:  integrations.NewClient(c, "", cache.TTLCalendar, headers),
		baseURL: defaultBaseURL,
		keyer:   keyer,
		token:   token,
	}
}

// SetBaseURL points the client at another API root, such as a GitHub
// Enterprise server ("https://ghe.example.com/api"). Only http and https
// URLs are accepted.
func (c *Client) SetBaseURL(u string) error {
	if err := bferrors.ValidateURL(u); err != nil {
		return err
	}
	c.baseURL = strings.TrimSuffix(u, "/")
	return nil
}

// FetchCalendar returns the contribution calendar of login between from and
// to. If refresh is true, cached data is bypassed.
func (c *Client) FetchCalendar(ctx context.Context, login string, from, to time.Time, refresh bool) (*Calendar, error) {
	if err := bferrors.ValidateLogin(login); err != nil {
		return nil, err
	}
	if c.token == "" {
		return nil, bferrors.New(bferrors.ErrCodeConfig, "a GitHub token is required: set GITHUB_TOKEN or pass --token")
	}
	if !from.Before(to) {
		return nil, bferrors.New(bferrors.ErrCodeInvalidInput, "empty date range %s..%s",
			from.Format(time.DateOnly), to.Format(time.DateOnly))
	}

	var cal Calendar
	key := c.keyer.CalendarKey(login, from, to)
	err := c.Cached(ctx, key, refresh, &cal, func() error {
		return c.fetchCalendar(ctx, login, from, to, &cal)
	})
	if err != nil {
		return nil, classify(err, login)
	}
	return &cal, nil
}

func (c *Client) fetchCalendar(ctx context.Context, login string, from, to time.Time, cal *Calendar) error {
	req := graphQLRequest{
		Query: calendarQuery,
		Variables: map[string]any{
			"login": login,
			"from":  from.UTC().Format(time.RFC3339),
			"to":    to.UTC().Format(time.RFC3339),
		},
	}
	var resp calendarResponse
	if err := c.PostJSON(ctx, c.baseURL+"/graphql", req, &resp); err != nil {
		return err
	}
	for _, e := range resp.Errors {
		if e.Type == "NOT_FOUND" {
			return fmt.Errorf("%w: github user %s", integrations.ErrNotFound, login)
		}
	}
	if len(resp.Errors) > 0 {
		msgs := make([]string, len(resp.Errors))
		for i, e := range resp.Errors {
			msgs[i] = e.Message
		}
		return fmt.Errorf("graphql: %s", strings.Join(msgs, "; "))
	}
	if resp.Data.User == nil {
		return fmt.Errorf("%w: github user %s", integrations.ErrNotFound, login)
	}
	*cal = *resp.toCalendar()
	return nil
}

// classify maps transport errors to coded errors for the CLI and server.
func classify(err error, login string) error {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	case errors.Is(err, integrations.ErrNotFound):
		return bferrors.Wrap(bferrors.ErrCodeNotFound, err, "GitHub user %q not found", login)
	case errors.Is(err, integrations.ErrUnauthorized):
		return bferrors.Wrap(bferrors.ErrCodeUnauthorized, err, "GitHub rejected the token")
	case errors.Is(err, integrations.ErrRateLimited):
		return bferrors.Wrap(bferrors.ErrCodeRateLimited, err, "GitHub rate limit exhausted")
	default:
		return bferrors.Wrap(bferrors.ErrCodeNetwork, err, "fetch contribution calendar for %s", login)
	}
}
