// Package store exports written documents to a SQLite database.
package store

import (
	"context"
	"database/sql"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/ardnew/cmf/lang"
	"github.com/ardnew/cmf/log"
)

var (
	ErrOpen   = lang.NewError("failed to open database")
	ErrExport = lang.NewError("failed to export rows")
)

// Run identifies one merge whose output is exported.
type Run struct {
	ID      uuid.UUID
	Schema  string
	Mode    string
	Sources int
	Started time.Time
}

// NewRun returns a run with a fresh random identifier.
func NewRun(schema, mode string, sources int) Run {
	return Run{
		ID:      uuid.New(),
		Schema:  schema,
		Mode:    mode,
		Sources: sources,
		Started: time.Now(),
	}
}

// Store is an open export database.
type Store struct {
	db     *sql.DB
	path   string
	logger log.Logger
}

// Option configures a [Store].
type Option func(*Store)

// WithLogger sets the logger used while exporting.
func WithLogger(logger log.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// Open opens or creates the database at path.
func Open(ctx context.Context, path string, opts ...Option) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, ErrOpen.Wrap(err).With(slog.String("path", path))
	}

	db.SetMaxOpenConns(1)

	s := &Store{db: db, path: path}
	for _, opt := range opts {
		opt(s)
	}

	const runs = `
	CREATE TABLE IF NOT EXISTS runs (
		id         TEXT PRIMARY KEY,
		schema     TEXT NOT NULL,
		mode       TEXT NOT NULL,
		sources    INTEGER NOT NULL,
		started_at INTEGER NOT NULL,
		tables     TEXT NOT NULL DEFAULT ''
	)`

	if _, err := db.ExecContext(ctx, runs); err != nil {
		_ = db.Close()

		return nil, ErrOpen.Wrap(err).With(slog.String("path", path))
	}

	return s, nil
}

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

// Export replaces the named table with rows, whose first row is the header,
// and records run. All columns are stored as text.
func (s *Store) Export(ctx context.Context, run Run, name string, rows [][]string) error {
	if len(rows) == 0 {
		return ErrExport.With(slog.String("table", name), slog.String("issue", "no header"))
	}

	cols := columns(rows[0])

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ErrExport.Wrap(err)
	}
	defer func() { _ = tx.Rollback() }()

	ddl := make([]string, len(cols))
	for i, c := range cols {
		ddl[i] = quote(c) + " TEXT"
	}

	stmts := []string{
		"DROP TABLE IF EXISTS " + quote(name),
		"CREATE TABLE " + quote(name) + " (" + strings.Join(ddl, ", ") + ")",
	}

	for _, q := range stmts {
		if _, err := tx.ExecContext(ctx, q); err != nil {
			return ErrExport.Wrap(err).With(slog.String("table", name))
		}
	}

	marks := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")

	ins, err := tx.PrepareContext(ctx, "INSERT INTO "+quote(name)+" VALUES ("+marks+")")
	if err != nil {
		return ErrExport.Wrap(err).With(slog.String("table", name))
	}
	defer ins.Close()

	args := make([]any, len(cols))

	for _, row := range rows[1:] {
		for i := range args {
			args[i] = ""
			if i < len(row) {
				args[i] = row[i]
			}
		}

		if _, err := ins.ExecContext(ctx, args...); err != nil {
			return ErrExport.Wrap(err).With(slog.String("table", name))
		}
	}

	const upsert = `
	INSERT INTO runs (id, schema, mode, sources, started_at, tables)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT (id) DO UPDATE SET tables = runs.tables || ',' || excluded.tables`

	if _, err := tx.ExecContext(ctx, upsert,
		run.ID.String(), run.Schema, run.Mode, run.Sources, run.Started.Unix(), name,
	); err != nil {
		return ErrExport.Wrap(err).With(slog.String("table", "runs"))
	}

	if err := tx.Commit(); err != nil {
		return ErrExport.Wrap(err)
	}

	s.logger.DebugContext(ctx, "exported table",
		slog.String("path", s.path),
		slog.String("table", name),
		slog.String("run", run.ID.String()),
		slog.Int("rows", len(rows)-1),
	)

	return nil
}

// columns makes header labels unique by suffixing repeats. SQLite compares
// column names without case, so neither does this.
func columns(header []string) []string {
	used := make(map[string]bool, len(header))
	next := make(map[string]int, len(header))
	cols := make([]string, len(header))

	for i, h := range header {
		if h == "" {
			h = "column" + strconv.Itoa(i+1)
		}

		name := h
		for n := max(next[h], 2); used[strings.ToLower(name)]; n++ {
			name = h + "_" + strconv.Itoa(n)
			next[h] = n + 1
		}

		used[strings.ToLower(name)] = true
		cols[i] = name
	}

	return cols
}

func quote(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}
