// Package store implements the durable, deduplicated fact/idea ledger
// shared by every task: a thin facade over database/sql with a
// per-backend dialect, watermark-based tailing reads, and idempotent
// inserts that silently swallow uniqueness violations.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"ddsearch/internal/logging"
)

// ErrStoreTransport wraps failures reaching or querying the underlying
// database (as opposed to a uniqueness violation, which InsertOrIgnore
// swallows and never surfaces as an error at all).
var ErrStoreTransport = errors.New("store: transport error")

// Row is one persisted fact or idea: its monotonic id and canonical data.
type Row struct {
	ID   int64
	Data string
}

// Store wraps a single SQL connection pool for the facts/ideas tables.
// Writes are serialized through mu, so inserts from goroutines sharing one
// *Store never overlap; each insert is a single INSERT OR IGNORE / ON
// CONFLICT DO NOTHING statement that relies on the uniqueness constraint
// to drop duplicates.
type Store struct {
	db      *sql.DB
	dialect dialect
	address string
	mu      sync.Mutex
}

type dialect interface {
	// createTableSQL returns the DDL for the given table ("facts" or "ideas").
	createTableSQL(table string) string
	// insertIgnoreSQL returns the parameterized insert statement that is a
	// no-op (affects zero rows) when data already exists.
	insertIgnoreSQL(table string) string
	// selectNewSQL returns the watermark tailing query for the given table.
	selectNewSQL(table string) string
}

// Open opens (creating if necessary) the store at address. Recognized
// schemes:
//
//	sqlite://path/to/file.db   (mattn/go-sqlite3, WAL journal mode)
//	postgresql://...           (lib/pq)
//
// mysql:// and mariadb:// are accepted as well-formed addresses but return
// an error: no driver for either backend is linked into this build. An
// empty address opens a fresh temporary sqlite database file, mirroring
// the CLI's zero-argument default.
func Open(address string) (*Store, error) {
	if address == "" {
		f, err := os.CreateTemp("", "ddsearch-*.db")
		if err != nil {
			return nil, fmt.Errorf("store: creating temp database: %w", err)
		}
		path := f.Name()
		f.Close()
		address = "sqlite://" + path
	}

	scheme, rest, ok := strings.Cut(address, "://")
	if !ok {
		return nil, fmt.Errorf("store: address %q has no scheme", address)
	}

	switch scheme {
	case "sqlite", "sqlite3":
		return openSQLite(address, rest)
	case "postgresql", "postgres":
		return openPostgres(address, rest)
	case "mysql", "mariadb":
		return nil, fmt.Errorf("store: %s backend is not linked in this build", scheme)
	default:
		return nil, fmt.Errorf("store: unrecognized scheme %q", scheme)
	}
}

func openSQLite(address, path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("store: opening sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1)
	for _, pragma := range []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("store: setting %q: %w", pragma, err)
		}
	}
	s := &Store{db: db, dialect: sqliteDialect{}, address: address}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func openPostgres(address, rest string) (*Store, error) {
	db, err := sql.Open("postgres", "postgresql://"+rest)
	if err != nil {
		return nil, fmt.Errorf("store: opening postgres database: %w", err)
	}
	s := &Store{db: db, dialect: postgresDialect{}, address: address}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) initialize() error {
	for _, table := range []string{"facts", "ideas"} {
		if _, err := s.db.Exec(s.dialect.createTableSQL(table)); err != nil {
			return fmt.Errorf("store: creating table %q: %w", table, err)
		}
	}
	return nil
}

// InsertOrIgnore inserts data into table ("facts" or "ideas") unless an
// equal row already exists, in which case it is a silent no-op. inserted
// reports whether a new row was actually written.
func (s *Store) InsertOrIgnore(ctx context.Context, table, data string) (inserted bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, s.dialect.insertIgnoreSQL(table), data)
	if err != nil {
		// A cancelled context is shutdown, not a transport fault; report
		// it as-is so the supervisor's expected-error check still sees it.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return false, ctxErr
		}
		wrapped := fmt.Errorf("%w: inserting into %q: %s", ErrStoreTransport, table, err)
		logging.Get(logging.CategoryStore).Error(wrapped.Error())
		return false, wrapped
	}
	n, err := res.RowsAffected()
	if err != nil {
		wrapped := fmt.Errorf("%w: checking rows affected: %s", ErrStoreTransport, err)
		logging.Get(logging.CategoryStore).Error(wrapped.Error())
		return false, wrapped
	}
	return n > 0, nil
}

// ReadNewFacts returns facts rows with id strictly greater than after, in
// ascending id order.
func (s *Store) ReadNewFacts(ctx context.Context, after int64) ([]Row, error) {
	return s.readNew(ctx, "facts", after)
}

// ReadNewIdeas returns ideas rows with id strictly greater than after, in
// ascending id order.
func (s *Store) ReadNewIdeas(ctx context.Context, after int64) ([]Row, error) {
	return s.readNew(ctx, "ideas", after)
}

func (s *Store) readNew(ctx context.Context, table string, after int64) ([]Row, error) {
	rows, err := s.db.QueryContext(ctx, s.dialect.selectNewSQL(table), after)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		wrapped := fmt.Errorf("%w: reading %q after %d: %s", ErrStoreTransport, table, after, err)
		logging.Get(logging.CategoryStore).Error(wrapped.Error())
		return nil, wrapped
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var r Row
		if err := rows.Scan(&r.ID, &r.Data); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			wrapped := fmt.Errorf("%w: scanning %q row: %s", ErrStoreTransport, table, err)
			logging.Get(logging.CategoryStore).Error(wrapped.Error())
			return nil, wrapped
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		wrapped := fmt.Errorf("%w: iterating %q rows: %s", ErrStoreTransport, table, err)
		logging.Get(logging.CategoryStore).Error(wrapped.Error())
		return nil, wrapped
	}
	return out, nil
}

// Address returns the resolved store address, including the generated
// temporary file path when Open was given an empty address.
func (s *Store) Address() string {
	return s.address
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}
