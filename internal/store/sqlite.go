package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id            TEXT PRIMARY KEY,
	field         TEXT NOT NULL,
	analysis_type TEXT NOT NULL,
	title         TEXT NOT NULL,
	window_start  DATETIME NOT NULL,
	window_end    DATETIME NOT NULL,
	stages        TEXT NOT NULL,
	created_at    DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS run_areas (
	run_id TEXT NOT NULL REFERENCES runs(id),
	name   TEXT NOT NULL,
	pre    INTEGER NOT NULL,
	post   INTEGER NOT NULL,
	value  REAL,
	PRIMARY KEY (run_id, name)
);

CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);
CREATE INDEX IF NOT EXISTS idx_runs_field ON runs(field);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveRun(ctx context.Context, run *Run) error {
	stages, err := json.Marshal(run.Stages)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal stages")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin")
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, field, analysis_type, title, window_start, window_end, stages, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Field, run.AnalysisType, run.Title,
		run.WindowStart.UTC(), run.WindowEnd.UTC(), string(stages), run.CreatedAt.UTC(),
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: insert run %s", run.ID)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO run_areas (run_id, name, pre, post, value) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return eris.Wrap(err, "sqlite: prepare area insert")
	}
	defer stmt.Close()
	for _, a := range run.Areas {
		if _, err := stmt.ExecContext(ctx, run.ID, a.Name, a.Pre, a.Post, a.Value); err != nil {
			return eris.Wrapf(err, "sqlite: insert area %s", a.Name)
		}
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit run")
}

func (s *SQLiteStore) GetRun(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, field, analysis_type, title, window_start, window_end, stages, created_at FROM runs WHERE id = ?`,
		id,
	)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "sqlite: get run %s", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get run %s", id)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT name, pre, post, value FROM run_areas WHERE run_id = ? ORDER BY name`, id)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get areas %s", id)
	}
	defer rows.Close()

	for rows.Next() {
		var a Area
		var value sql.NullFloat64
		if err := rows.Scan(&a.Name, &a.Pre, &a.Post, &value); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan area")
		}
		if value.Valid {
			v := value.Float64
			a.Value = &v
		}
		run.Areas = append(run.Areas, a)
	}
	return run, eris.Wrap(rows.Err(), "sqlite: get areas iterate")
}

func (s *SQLiteStore) ListRuns(ctx context.Context, filter RunFilter) ([]Run, error) {
	query := `SELECT id, field, analysis_type, title, window_start, window_end, stages, created_at FROM runs WHERE 1=1`
	var args []any

	if filter.Field != "" {
		query += ` AND field = ?`
		args = append(args, filter.Field)
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan run")
		}
		runs = append(runs, *r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: list runs iterate")
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (*Run, error) {
	var r Run
	var stages string
	var start, end, created time.Time
	if err := sc.Scan(&r.ID, &r.Field, &r.AnalysisType, &r.Title, &start, &end, &stages, &created); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(stages), &r.Stages); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal stages")
	}
	r.WindowStart, r.WindowEnd, r.CreatedAt = start.UTC(), end.UTC(), created.UTC()
	return &r, nil
}
