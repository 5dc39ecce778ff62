//go:build integration

package github

import (
	"context"
	"os"
	"testing"
	"time"

	bferrors "github.com/matzehuels/blockfall/pkg/errors"
)

func TestFetchCalendar_Integration(t *testing.T) {
	token := os.Getenv("GITHUB_TOKEN")
	if token == "" {
		t.Skip("GITHUB_TOKEN not set, skipping integration test")
	}

	client := NewClient(token, nil, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	to := time.Now().UTC()
	from := to.AddDate(0, 0, -7*53)

	tests := []struct {
		name    string
		login   string
		wantErr bferrors.Code
	}{
		{"octocat", "octocat", ""},
		{"nonexistent", "no-such-user-blockfall-12345", bferrors.ErrCodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cal, err := client.FetchCalendar(ctx, tt.login, from, to, true)
			if tt.wantErr != "" {
				if !bferrors.Is(err, tt.wantErr) {
					t.Errorf("FetchCalendar(%q) error = %v, want %s", tt.login, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("FetchCalendar(%q) error: %v", tt.login, err)
			}
			if len(cal.Weeks) == 0 {
				t.Error("calendar has no weeks")
			}
			if _, err := cal.ToWeeks(); err != nil {
				t.Errorf("ToWeeks() error: %v", err)
			}
		})
	}
}
