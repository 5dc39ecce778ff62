// Package snapshot archives fetched contribution calendars.
//
// Every successful fetch can be written to a [Store]. When GitHub is
// unreachable the pipeline falls back to the latest archived calendar for the
// login, so a scheduled regeneration keeps producing the last known picture
// instead of failing.
//
// Backends are chosen by DSN with [Open]:
//
//	snapshot.Open(ctx, "/var/lib/blockfall/archive")       // one JSON file per snapshot
//	snapshot.Open(ctx, "sqlite:///var/lib/blockfall/a.db") // single SQLite file
//	snapshot.Open(ctx, "mongodb://db:27017/blockfall")     // shared MongoDB collection
package snapshot

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	bferrors "github.com/matzehuels/blockfall/pkg/errors"
	"github.com/matzehuels/blockfall/pkg/integrations/github"
)

// Info describes a snapshot without its calendar payload.
type Info struct {
	ID        string    `json:"id" bson:"_id"`
	Login     string    `json:"login" bson:"login"` // lower-cased
	From      time.Time `json:"from" bson:"from"`
	To        time.Time `json:"to" bson:"to"`
	FetchedAt time.Time `json:"fetched_at" bson:"fetched_at"`
	Total     int       `json:"total" bson:"total"`
}

// Snapshot is one archived calendar.
type Snapshot struct {
	Info     `bson:",inline"`
	Calendar *github.Calendar `json:"calendar" bson:"calendar"`
}

// New returns a snapshot of cal with a fresh ID, stamped with the current time.
func New(login string, from, to time.Time, cal *github.Calendar) *Snapshot {
	return &Snapshot{
		Info: Info{
			ID:        uuid.New().String(),
			Login:     strings.ToLower(login),
			From:      from.UTC(),
			To:        to.UTC(),
			FetchedAt: time.Now().UTC(),
			Total:     cal.Total,
		},
		Calendar: cal,
	}
}

// Store persists snapshots.
type Store interface {
	// Save archives s. Saving the same ID twice replaces the first copy.
	Save(ctx context.Context, s *Snapshot) error

	// Latest returns the most recently fetched snapshot for login, or a
	// NOT_FOUND error.
	Latest(ctx context.Context, login string) (*Snapshot, error)

	// List returns every snapshot of login, newest first.
	List(ctx context.Context, login string) ([]Info, error)

	// Close releases backend resources.
	Close() error
}

// Open returns the store selected by dsn: a mongodb:// or mongodb+srv://
// URI, a sqlite:// path (or any path ending in .db), or a directory.
func Open(ctx context.Context, dsn string) (Store, error) {
	switch {
	case dsn == "":
		return nil, bferrors.New(bferrors.ErrCodeConfig, "empty archive DSN")
	case strings.HasPrefix(dsn, "mongodb://"), strings.HasPrefix(dsn, "mongodb+srv://"):
		return OpenMongo(ctx, dsn)
	case strings.HasPrefix(dsn, "sqlite://"):
		return OpenSQLite(strings.TrimPrefix(dsn, "sqlite://"))
	case strings.HasSuffix(dsn, ".db"):
		return OpenSQLite(dsn)
	default:
		return OpenFile(strings.TrimPrefix(dsn, "file://"))
	}
}

func notFound(login string) error {
	return bferrors.New(bferrors.ErrCodeNotFound, "no archived calendar for %s", login)
}

func validate(s *Snapshot) error {
	if s == nil || s.Calendar == nil {
		return bferrors.New(bferrors.ErrCodeInvalidInput, "snapshot has no calendar")
	}
	if s.ID == "" || s.Login == "" {
		return bferrors.New(bferrors.ErrCodeInvalidInput, "snapshot needs an ID and a login")
	}
	return nil
}
