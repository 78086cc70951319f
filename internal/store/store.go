// Package store keeps a history of analysis runs. Only aggregate results
// are stored, never incident records.
package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/detroit-open-data/ccw-yoy/internal/resilience"
	"github.com/detroit-open-data/ccw-yoy/internal/study"
)

// ErrNotFound is returned when a run ID does not exist.
var ErrNotFound = errors.New("run not found")

// Run is one stored comparison.
type Run struct {
	ID           string       `json:"id"`
	CreatedAt    time.Time    `json:"created_at"`
	Field        string       `json:"field"`
	AnalysisType string       `json:"analysis_type"`
	Title        string       `json:"title"`
	WindowStart  time.Time    `json:"window_start"`
	WindowEnd    time.Time    `json:"window_end"`
	Stages       study.Stages `json:"stages"`
	Areas        []Area       `json:"areas,omitempty"`
}

// Area is one area's aggregate in a stored run. Value is nil for areas
// without post-pandemic incidents.
type Area struct {
	Name  string   `json:"name"`
	Pre   int      `json:"pre"`
	Post  int      `json:"post"`
	Value *float64 `json:"value,omitempty"`
}

// NewRun captures a report's aggregates under a fresh run ID.
func NewRun(r *study.Report, at time.Time) *Run {
	run := &Run{
		ID:           uuid.New().String(),
		CreatedAt:    at.UTC(),
		Field:        r.Field.String(),
		AnalysisType: r.Type.String(),
		Title:        r.Title,
		WindowStart:  r.Window.Start,
		WindowEnd:    r.Window.End,
		Stages:       r.Stages,
		Areas:        make([]Area, 0, len(r.Areas)),
	}
	for _, a := range r.Areas {
		area := Area{Name: a.Name, Pre: a.Pre, Post: a.Post}
		if a.HasValue {
			v := a.Value
			area.Value = &v
		}
		run.Areas = append(run.Areas, area)
	}
	return run
}

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Field string `json:"field,omitempty"`
	Limit int    `json:"limit,omitempty"`
}

// Store persists run history.
type Store interface {
	SaveRun(ctx context.Context, run *Run) error
	// GetRun returns a run with its areas, or ErrNotFound.
	GetRun(ctx context.Context, id string) (*Run, error)
	// ListRuns returns runs newest first, without their areas.
	ListRuns(ctx context.Context, filter RunFilter) ([]Run, error)

	Migrate(ctx context.Context) error
	Close() error
}

// Drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverNone     = "none"
)

const defaultListLimit = 20

// Open connects to the configured driver and applies migrations, retrying
// while the database refuses connections. The "none" driver returns a nil
// Store.
func Open(ctx context.Context, driver, databaseURL string) (Store, error) {
	var (
		s   Store
		err error
	)
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case DriverNone, "":
		return nil, nil
	case DriverSQLite:
		s, err = NewSQLite(databaseURL)
	case DriverPostgres:
		s, err = NewPostgres(ctx, databaseURL, nil)
	default:
		return nil, eris.Errorf("store: unknown driver %q", driver)
	}
	if err != nil {
		return nil, err
	}
	retry := resilience.DefaultRetryConfig()
	retry.OnRetry = resilience.RetryLogger("store.migrate")
	if err := resilience.Do(ctx, retry, s.Migrate); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}
