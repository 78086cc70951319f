package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/detroit-open-data/ccw-yoy/internal/db"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(4)
	minConns := int32(1)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id            TEXT PRIMARY KEY,
	field         TEXT NOT NULL,
	analysis_type TEXT NOT NULL,
	title         TEXT NOT NULL,
	window_start  DATE NOT NULL,
	window_end    DATE NOT NULL,
	stages        JSONB NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS run_areas (
	run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	name   TEXT NOT NULL,
	pre    INTEGER NOT NULL,
	post   INTEGER NOT NULL,
	value  DOUBLE PRECISION,
	PRIMARY KEY (run_id, name)
);

CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_runs_field ON runs(field);
`

var areaColumns = []string{"run_id", "name", "pre", "post", "value"}

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) SaveRun(ctx context.Context, run *Run) error {
	stages, err := json.Marshal(run.Stages)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal stages")
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "postgres: begin")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	_, err = tx.Exec(ctx,
		`INSERT INTO runs (id, field, analysis_type, title, window_start, window_end, stages, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		run.ID, run.Field, run.AnalysisType, run.Title, run.WindowStart, run.WindowEnd, stages, run.CreatedAt,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: insert run %s", run.ID)
	}

	rows := make([][]any, 0, len(run.Areas))
	for _, a := range run.Areas {
		rows = append(rows, []any{run.ID, a.Name, a.Pre, a.Post, a.Value})
	}
	if _, err := db.CopyFrom(ctx, tx, "run_areas", areaColumns, rows); err != nil {
		return eris.Wrapf(err, "postgres: insert areas for run %s", run.ID)
	}

	return eris.Wrap(tx.Commit(ctx), "postgres: commit run")
}

func (s *PostgresStore) GetRun(ctx context.Context, id string) (*Run, error) {
	var r Run
	var stages []byte
	err := s.pool.QueryRow(ctx,
		`SELECT id, field, analysis_type, title, window_start, window_end, stages, created_at FROM runs WHERE id = $1`,
		id,
	).Scan(&r.ID, &r.Field, &r.AnalysisType, &r.Title, &r.WindowStart, &r.WindowEnd, &stages, &r.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "postgres: get run %s", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get run %s", id)
	}
	if err := json.Unmarshal(stages, &r.Stages); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal stages")
	}

	rows, err := s.pool.Query(ctx,
		`SELECT name, pre, post, value FROM run_areas WHERE run_id = $1 ORDER BY name`, id)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get areas %s", id)
	}
	defer rows.Close()

	for rows.Next() {
		var a Area
		if err := rows.Scan(&a.Name, &a.Pre, &a.Post, &a.Value); err != nil {
			return nil, eris.Wrap(err, "postgres: scan area")
		}
		r.Areas = append(r.Areas, a)
	}
	return &r, eris.Wrap(rows.Err(), "postgres: get areas iterate")
}

func (s *PostgresStore) ListRuns(ctx context.Context, filter RunFilter) ([]Run, error) {
	query := `SELECT id, field, analysis_type, title, window_start, window_end, stages, created_at FROM runs WHERE true`
	args := []any{}
	argIdx := 1

	if filter.Field != "" {
		query += fmt.Sprintf(` AND field = $%d`, argIdx)
		args = append(args, filter.Field)
		argIdx++
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var stages []byte
		if err := rows.Scan(&r.ID, &r.Field, &r.AnalysisType, &r.Title, &r.WindowStart, &r.WindowEnd, &stages, &r.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan run")
		}
		if err := json.Unmarshal(stages, &r.Stages); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal stages")
		}
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "postgres: list runs iterate")
}
