package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/tnicklin/actuator_loglevels/logger"
	"github.com/tnicklin/actuator_loglevels/models"
)

var _ Store = (*SQLiteStore)(nil)

//go:embed migrations/*.sql
var migrations embed.FS

const (
	memoryDSN    = "file::memory:?_foreign_keys=on&_busy_timeout=5000"
	defaultLimit = 20
)

// timeLayout is fixed width so that lexical order matches time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// ErrNotFound is returned by GetTransition for an unknown id.
var ErrNotFound = errors.New("store: transition not found")

type SQLiteStore struct {
	mu     sync.RWMutex
	db     *sql.DB
	path   string
	logger logger.Logger
}

type Params struct {
	// Path of the database file. Empty opens a shared in-memory database.
	Path   string
	Logger logger.Logger
}

func NewSQLiteStore(p Params) *SQLiteStore {
	return &SQLiteStore{
		path:   p.Path,
		logger: p.Logger,
	}
}

func (s *SQLiteStore) log() logger.Logger {
	if s.logger == nil {
		return logger.NewNop()
	}
	return s.logger
}

func (s *SQLiteStore) Open(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		return nil
	}

	dsn := memoryDSN
	if s.path != "" {
		dsn = sqliteFileDSN(s.path)
	}

	database, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return err
	}
	database.SetMaxOpenConns(1)
	database.SetMaxIdleConns(1)

	if err = database.PingContext(ctx); err != nil {
		_ = database.Close()
		return err
	}

	s.db = database
	if err = s.applyMigrations(ctx); err != nil {
		_ = database.Close()
		s.db = nil
		return err
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *SQLiteStore) RecordTransition(ctx context.Context, rec models.TransitionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return errors.New("store is not open")
	}
	if rec.ID == "" {
		return errors.New("store: transition id is empty")
	}

	s.log().DebugW("recording transition",
		"id", rec.ID,
		"source", rec.Trigger,
		"parameter", rec.Parameter,
		"outcomes", len(rec.Outcomes),
	)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.log().ErrorW("failed to begin transaction", "error", err)
		return err
	}

	_, err = tx.ExecContext(ctx, `
INSERT INTO transitions (id, source, parameter, started_at, finished_at, no_op, error)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
    source = excluded.source,
    parameter = excluded.parameter,
    started_at = excluded.started_at,
    finished_at = excluded.finished_at,
    no_op = excluded.no_op,
    error = excluded.error`,
		rec.ID,
		rec.Trigger,
		rec.Parameter,
		formatTime(rec.StartedAt),
		formatTime(rec.FinishedAt),
		rec.NoOp,
		rec.Error,
	)
	if err != nil {
		_ = tx.Rollback()
		s.log().ErrorW("failed to insert transition", "error", err, "id", rec.ID)
		return err
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM outcomes WHERE transition_id = ?`, rec.ID); err != nil {
		_ = tx.Rollback()
		return err
	}

	for i, o := range rec.Outcomes {
		_, err = tx.ExecContext(ctx, `
INSERT INTO outcomes (transition_id, position, logger_name, level, status_code, error)
VALUES (?, ?, ?, ?, ?, ?)`,
			rec.ID, i, o.Directive.Name, o.Directive.Level, o.StatusCode, o.Err,
		)
		if err != nil {
			_ = tx.Rollback()
			s.log().ErrorW("failed to insert outcome",
				"error", err,
				"id", rec.ID,
				"logger", o.Directive.Name,
			)
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		s.log().ErrorW("failed to commit transaction", "error", err)
		return err
	}
	return nil
}

func (s *SQLiteStore) GetTransition(ctx context.Context, id string) (*models.TransitionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, errors.New("store is not open")
	}

	row := s.db.QueryRowContext(ctx, `
SELECT id, source, parameter, started_at, finished_at, no_op, error
FROM transitions WHERE id = ?`, id)
	rec, err := scanTransition(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if rec.Outcomes, err = s.outcomes(ctx, rec.ID); err != nil {
		return nil, err
	}
	return &rec, nil
}

// ListTransitions returns the most recent transitions first.
func (s *SQLiteStore) ListTransitions(ctx context.Context, limit int) ([]models.TransitionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, errors.New("store is not open")
	}
	if limit <= 0 {
		limit = defaultLimit
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT id, source, parameter, started_at, finished_at, no_op, error
FROM transitions ORDER BY started_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}

	var out []models.TransitionRecord
	for rows.Next() {
		rec, err := scanTransition(rows)
		if err != nil {
			_ = rows.Close()
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		if out[i].Outcomes, err = s.outcomes(ctx, out[i].ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *SQLiteStore) outcomes(ctx context.Context, id string) ([]models.Outcome, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT logger_name, level, status_code, error
FROM outcomes WHERE transition_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Outcome
	for rows.Next() {
		var o models.Outcome
		if err := rows.Scan(&o.Directive.Name, &o.Directive.Level, &o.StatusCode, &o.Err); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTransition(row scanner) (models.TransitionRecord, error) {
	var (
		rec               models.TransitionRecord
		started, finished string
	)
	if err := row.Scan(&rec.ID, &rec.Trigger, &rec.Parameter, &started, &finished, &rec.NoOp, &rec.Error); err != nil {
		return models.TransitionRecord{}, err
	}
	rec.StartedAt = parseTime(started)
	rec.FinishedAt = parseTime(finished)
	return rec, nil
}

func (s *SQLiteStore) applyMigrations(ctx context.Context) error {
	if s.db == nil {
		return errors.New("store is not open")
	}

	entries, err := fs.ReadDir(migrations, "migrations")
	if err != nil {
		return err
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasSuffix(name, ".sql") {
			files = append(files, name)
		}
	}
	sort.Strings(files)

	for _, name := range files {
		content, err := fs.ReadFile(migrations, "migrations/"+name)
		if err != nil {
			return err
		}
		sqlText := strings.TrimSpace(string(content))
		if sqlText == "" {
			continue
		}
		if _, err := s.db.ExecContext(ctx, sqlText); err != nil {
			return fmt.Errorf("migration %s: %w", name, err)
		}
	}
	return nil
}

func sqliteFileDSN(path string) string {
	return fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", path)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
