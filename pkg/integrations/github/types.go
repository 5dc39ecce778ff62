package github

import (
	"fmt"
	"time"

	"github.com/matzehuels/blockfall/pkg/activity"
)

// Calendar is a user's contribution calendar, oldest week first.
type Calendar struct {
	Login string `json:"login" yaml:"login"`
	Total int    `json:"total" yaml:"total"`
	Weeks []Week `json:"weeks" yaml:"weeks"`
}

// Week holds up to seven days. GitHub omits days outside the requested range
// in the first and last week.
type Week struct {
	Days []Day `json:"days" yaml:"days"`
}

// Day is one calendar day.
type Day struct {
	Date    string `json:"date" yaml:"date"` // YYYY-MM-DD
	Count   int    `json:"count" yaml:"count"`
	Weekday int    `json:"weekday" yaml:"weekday"` // 0 = Sunday
}

// ToWeeks converts the calendar to grid input. Each day lands in the slot
// of its weekday; slots GitHub did not report stay empty.
func (c *Calendar) ToWeeks() ([]activity.Week, error) {
	weeks := make([]activity.Week, len(c.Weeks))
	for i, w := range c.Weeks {
		for _, d := range w.Days {
			date, err := time.Parse(time.DateOnly, d.Date)
			if err != nil {
				return nil, fmt.Errorf("week %d: bad date %q: %w", i, d.Date, err)
			}
			slot := d.Weekday
			if slot < 0 || slot >= activity.DaysPerWeek {
				slot = int(date.Weekday())
			}
			weeks[i][slot] = activity.Day{Date: date, HasDate: true, Count: max(0, d.Count)}
		}
	}
	return weeks, nil
}

// graphQLRequest is the POST /graphql body.
type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

// graphQLError is one entry of a GraphQL "errors" array.
type graphQLError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// calendarResponse mirrors the GraphQL response for calendarQuery.
type calendarResponse struct {
	Data struct {
		User *struct {
			Login                   string `json:"login"`
			ContributionsCollection struct {
				ContributionCalendar struct {
					TotalContributions int `json:"totalContributions"`
					Weeks              []struct {
						ContributionDays []struct {
							Date              string `json:"date"`
							ContributionCount int    `json:"contributionCount"`
							Weekday           int    `json:"weekday"`
						} `json:"contributionDays"`
					} `json:"weeks"`
				} `json:"contributionCalendar"`
			} `json:"contributionsCollection"`
		} `json:"user"`
	} `json:"data"`
	Errors []graphQLError `json:"errors"`
}

func (r *calendarResponse) toCalendar() *Calendar {
	u := r.Data.User
	cal := u.ContributionsCollection.ContributionCalendar
	out := &Calendar{Login: u.Login, Total: cal.TotalContributions, Weeks: make([]Week, len(cal.Weeks))}
	for i, w := range cal.Weeks {
		days := make([]Day, len(w.ContributionDays))
		for j, d := range w.ContributionDays {
			days[j] = Day{Date: d.Date, Count: d.ContributionCount, Weekday: d.Weekday}
		}
		out.Weeks[i] = Week{Days: days}
	}
	return out
}
