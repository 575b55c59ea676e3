// Package sqlite persists session grids in a SQLite database through the
// pure-Go modernc driver.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/goliatone/go-genui/pkg/gridstore"
	"github.com/goliatone/go-genui/pkg/model"
)

//go:embed schema.sql
var schemaSQL string

const (
	defaultBusyTimeout = 5 * time.Second
	// fixed width so timestamps compare as strings
	timeLayout = "2006-01-02T15:04:05.000000000Z"
)

type Store struct {
	db          *sql.DB
	busyTimeout time.Duration
	enableWAL   bool
	now         func() time.Time
}

var _ gridstore.Store = (*Store)(nil)

type Option func(*Store)

func WithBusyTimeout(timeout time.Duration) Option {
	return func(s *Store) {
		if timeout >= 0 {
			s.busyTimeout = timeout
		}
	}
}

func WithWAL(enabled bool) Option {
	return func(s *Store) {
		s.enableWAL = enabled
	}
}

// New opens (creating if needed) the database at path. ":memory:" keeps the
// grid in process for tests.
func New(ctx context.Context, path string, opts ...Option) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("gridstore/sqlite: path is required")
	}

	s := &Store{
		busyTimeout: defaultBusyTimeout,
		enableWAL:   path != ":memory:",
		now:         time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	if path != ":memory:" && !strings.HasPrefix(path, "file:") {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("gridstore/sqlite: create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("gridstore/sqlite: open: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	s.db = db
	if err := s.initialize(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) initialize(ctx context.Context) error {
	if s.busyTimeout > 0 {
		ms := int(s.busyTimeout / time.Millisecond)
		if _, err := s.db.ExecContext(ctx, fmt.Sprintf("PRAGMA busy_timeout=%d;", ms)); err != nil {
			return fmt.Errorf("gridstore/sqlite: set busy_timeout: %w", err)
		}
	}
	if s.enableWAL {
		if _, err := s.db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
			return fmt.Errorf("gridstore/sqlite: enable wal: %w", err)
		}
	}
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("gridstore/sqlite: initialize schema: %w", err)
	}
	return nil
}

func (s *Store) Load(ctx context.Context, session string) ([]model.Node, error) {
	const q = `SELECT nodes FROM grids WHERE session_id = ?;`

	var raw string
	if err := s.db.QueryRowContext(ctx, q, session).Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, gridstore.ErrNotFound
		}
		return nil, fmt.Errorf("gridstore/sqlite: load %q: %w", session, err)
	}

	var nodes []model.Node
	if err := json.Unmarshal([]byte(raw), &nodes); err != nil {
		return nil, fmt.Errorf("gridstore/sqlite: decode %q: %w", session, err)
	}
	return nodes, nil
}

func (s *Store) Save(ctx context.Context, session string, nodes []model.Node) error {
	if strings.TrimSpace(session) == "" {
		return gridstore.ErrSessionRequired
	}
	if nodes == nil {
		nodes = []model.Node{}
	}
	raw, err := json.Marshal(nodes)
	if err != nil {
		return fmt.Errorf("gridstore/sqlite: encode %q: %w", session, err)
	}

	const q = `
INSERT INTO grids (session_id, nodes, node_count, created_at, updated_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(session_id) DO UPDATE SET
  nodes=excluded.nodes,
  node_count=excluded.node_count,
  updated_at=excluded.updated_at;
`
	now := s.now().UTC().Format(timeLayout)
	if _, err := s.db.ExecContext(ctx, q, session, string(raw), model.CountNodes(nodes), now, now); err != nil {
		return fmt.Errorf("gridstore/sqlite: save %q: %w", session, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, session string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM grids WHERE session_id = ?;`, session); err != nil {
		return fmt.Errorf("gridstore/sqlite: delete %q: %w", session, err)
	}
	return nil
}

// Prune removes grids untouched since before cutoff and returns how many went.
func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM grids WHERE updated_at < ?;`, cutoff.UTC().Format(timeLayout))
	if err != nil {
		return 0, fmt.Errorf("gridstore/sqlite: prune: %w", err)
	}
	return res.RowsAffected()
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
