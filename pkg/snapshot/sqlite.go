package snapshot

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/matzehuels/blockfall/pkg/integrations/github"
)

// SQLiteStore keeps snapshots in a single SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS snapshots (
			id TEXT PRIMARY KEY,
			login TEXT NOT NULL,
			from_date TEXT NOT NULL,
			to_date TEXT NOT NULL,
			fetched_at INTEGER NOT NULL,
			total INTEGER NOT NULL,
			calendar TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_login ON snapshots(login, fetched_at);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteStore) Save(ctx context.Context, snap *Snapshot) error {
	if err := validate(snap); err != nil {
		return err
	}
	cal, err := json.Marshal(snap.Calendar)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO snapshots (id, login, from_date, to_date, fetched_at, total, calendar)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		snap.ID, snap.Login,
		snap.From.UTC().Format(time.RFC3339), snap.To.UTC().Format(time.RFC3339),
		snap.FetchedAt.UnixNano(), snap.Total, string(cal),
	)
	return err
}

func (s *SQLiteStore) Latest(ctx context.Context, login string) (*Snapshot, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, login, from_date, to_date, fetched_at, total, calendar
		FROM snapshots WHERE login = ? ORDER BY fetched_at DESC LIMIT 1`,
		strings.ToLower(login))

	var (
		snap Snapshot
		cal  string
	)
	if err := scanInfo(row, &snap.Info, &cal); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound(login)
		}
		return nil, err
	}
	snap.Calendar = new(github.Calendar)
	if err := json.Unmarshal([]byte(cal), snap.Calendar); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", snap.ID, err)
	}
	return &snap, nil
}

func (s *SQLiteStore) List(ctx context.Context, login string) ([]Info, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, login, from_date, to_date, fetched_at, total
		FROM snapshots WHERE login = ? ORDER BY fetched_at DESC`,
		strings.ToLower(login))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var infos []Info
	for rows.Next() {
		var info Info
		if err := scanInfo(rows, &info); err != nil {
			return nil, err
		}
		infos = append(infos, info)
	}
	return infos, rows.Err()
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

type scanner interface {
	Scan(dest ...any) error
}

func scanInfo(sc scanner, info *Info, extra ...any) error {
	var from, to string
	var fetched int64
	dest := append([]any{&info.ID, &info.Login, &from, &to, &fetched, &info.Total}, extra...)
	if err := sc.Scan(dest...); err != nil {
		return err
	}
	var err error
	if info.From, err = time.Parse(time.RFC3339, from); err != nil {
		return err
	}
	if info.To, err = time.Parse(time.RFC3339, to); err != nil {
		return err
	}
	info.FetchedAt = time.Unix(0, fetched).UTC()
	return nil
}
