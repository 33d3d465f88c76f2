// Package journal persists completed dispatch sequences to SQLite so a run
// can be audited after the fact.
package journal

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"

	"github.com/teslashibe/go-wastesort/internal/log"
	"github.com/teslashibe/go-wastesort/pkg/sorting"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Entry is one journaled dispatch.
type Entry struct {
	ID          string    `json:"id"`
	Class       string    `json:"class"`
	Category    string    `json:"category"`
	Belt        string    `json:"belt"`
	Distance    float64   `json:"distance"`
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`
}

// Journal is an append-only dispatch log.
type Journal struct {
	db  *sql.DB
	log *slog.Logger
}

var _ sorting.Listener = (*Journal)(nil)

// Open opens or creates the journal database at path and applies pending
// migrations.
func Open(path string) (*Journal, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	// One connection keeps writes from the loop and reads from the
	// dashboard serialized.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{"PRAGMA busy_timeout = 5000", "PRAGMA journal_mode = WAL"} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("configure journal: %w", err)
		}
	}

	j := &Journal{db: db, log: log.Component("journal")}
	if err := j.migrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	j.log.Info("journal opened", "path", path)
	return j, nil
}

// migrateUp applies all pending embedded migrations.
func (j *Journal) migrateUp() error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}
	driver, err := sqlite.WithInstance(j.db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("failed to create sqlite driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	// m is not closed: closing it would close the shared *sql.DB.
	m.Log = &migrateLogger{log: j.log}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up failed: %w", err)
	}
	return nil
}

// Record stores d.
func (j *Journal) Record(d sorting.Dispatch) error {
	_, err := j.db.Exec(`
		INSERT INTO dispatches (dispatch_id, class, category, belt, distance, started_at, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		d.ID.String(), d.Class, d.Category.String(), string(d.Belt), d.Distance,
		d.StartedAt.UnixNano(), d.CompletedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("record dispatch %s: %w", d.ID, err)
	}
	return nil
}

// OnDispatch records d, logging failures. A journal error never affects
// sorting.
func (j *Journal) OnDispatch(d sorting.Dispatch) {
	if err := j.Record(d); err != nil {
		j.log.Warn("failed to journal dispatch", "error", err)
	}
}

// Recent returns up to limit entries, newest first.
func (j *Journal) Recent(limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := j.db.Query(`
		SELECT dispatch_id, class, category, belt, distance, started_at, completed_at
		FROM dispatches
		ORDER BY completed_at DESC, rowid DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query dispatches: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var started, completed int64
		if err := rows.Scan(&e.ID, &e.Class, &e.Category, &e.Belt, &e.Distance, &started, &completed); err != nil {
			return nil, fmt.Errorf("scan dispatch: %w", err)
		}
		e.StartedAt = time.Unix(0, started).UTC()
		e.CompletedAt = time.Unix(0, completed).UTC()
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// CountByCategory returns the number of dispatches per category name.
func (j *Journal) CountByCategory() (map[string]int, error) {
	rows, err := j.db.Query(`SELECT category, COUNT(*) FROM dispatches GROUP BY category`)
	if err != nil {
		return nil, fmt.Errorf("count dispatches: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var cat string
		var n int
		if err := rows.Scan(&cat, &n); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		counts[cat] = n
	}
	return counts, rows.Err()
}

// Close closes the database.
func (j *Journal) Close() error {
	return j.db.Close()
}

// migrateLogger adapts slog to migrate.Logger.
type migrateLogger struct {
	log *slog.Logger
}

func (l *migrateLogger) Printf(format string, v ...interface{}) {
	l.log.Info(fmt.Sprintf("[migrate] "+format, v...))
}

func (l *migrateLogger) Verbose() bool {
	return false
}
