// Package storage archives finished dive simulations in a SQLite database so runs can be
// listed, compared and re-planned later.
package storage

import (
	"bytes"
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/chrissnell/decoplan/internal/dive"
	"github.com/chrissnell/decoplan/pkg/config"
	"github.com/chrissnell/decoplan/pkg/decompression"
	"github.com/chrissnell/decoplan/pkg/migrate"
	"github.com/chrissnell/decoplan/pkg/responseformat"
)

//go:embed migrations/*.sql
var migrations embed.FS

// ErrRunNotFound is returned when no run has the requested ID
var ErrRunNotFound = errors.New("run not found")

// RunStore is implemented by run archives
type RunStore interface {
	SaveRun(ctx context.Context, name string, p *dive.DivePlan) (RunRecord, error)
	ListRuns(ctx context.Context, limit int) ([]RunRecord, error)
	LoadSummary(ctx context.Context, id uuid.UUID) (dive.Summary, error)
	LoadPoints(ctx context.Context, id uuid.UUID) ([]dive.ProfilePoint, error)
	LoadStops(ctx context.Context, id uuid.UUID) ([]dive.DecoStop, error)
	Close() error
}

// RunRecord is the index entry of an archived run
type RunRecord struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	Model       string    `json:"model"`
	Mode        string    `json:"mode"`
	BottomDepth float64   `json:"bottom_depth"`
	BottomTime  float64   `json:"bottom_time"` // seconds
	GFLow       float64   `json:"gf_low"`
	GFHigh      float64   `json:"gf_high"`
	Runtime     float64   `json:"runtime"` // seconds
	DecoTime    float64   `json:"deco_time"`
	MaxDepth    float64   `json:"max_depth"`
	Points      int       `json:"points"`
}

// Archive is a SQLite backed RunStore
type Archive struct {
	db     *sql.DB
	path   string
	logger *zap.SugaredLogger
	now    func() time.Time
}

// Open opens or creates the archive at path and brings its schema up to date
func Open(path string, logger *zap.SugaredLogger) (*Archive, error) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	// SQLite allows one writer; a single connection also keeps :memory: databases whole
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	provider := migrate.NewFSProvider(migrations, "migrations", "archive_migrations")
	if err := migrate.NewMigrator(db, provider, logger).MigrateUp(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate archive: %w", err)
	}

	return &Archive{db: db, path: path, logger: logger, now: time.Now}, nil
}

// Close closes the database
func (a *Archive) Close() error {
	return a.db.Close()
}

// DB exposes the underlying connection, for plan providers reading the same file
func (a *Archive) DB() *sql.DB {
	return a.db
}

// SaveRun stores the last successful run of p under a new ID
func (a *Archive) SaveRun(ctx context.Context, name string, p *dive.DivePlan) (RunRecord, error) {
	if len(p.Profile) == 0 {
		return RunRecord{}, fmt.Errorf("plan has no simulated profile to archive")
	}

	summary := dive.Summarize(p)
	rec := RunRecord{
		ID:          uuid.New(),
		Name:        name,
		CreatedAt:   a.now().UTC(),
		Model:       p.ModelName,
		Mode:        p.Mode.String(),
		BottomDepth: p.BottomDepth,
		BottomTime:  p.BottomTime,
		GFLow:       p.GFLow,
		GFHigh:      p.GFHigh,
		Runtime:     summary.Runtime,
		DecoTime:    summary.DecoTime,
		MaxDepth:    summary.MaxDepth,
		Points:      summary.Points,
	}

	planData := config.FromDivePlan(p)
	planData.Name = name
	var planYAML bytes.Buffer
	if err := config.EncodeYAML(&planYAML, planData); err != nil {
		return RunRecord{}, fmt.Errorf("failed to encode plan: %w", err)
	}
	summaryBlob, err := responseformat.MarshalMsgPack(summary)
	if err != nil {
		return RunRecord{}, fmt.Errorf("failed to encode summary: %w", err)
	}

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return RunRecord{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, insertRunSQL,
		rec.ID.String(), rec.Name, rec.CreatedAt.Format(time.RFC3339Nano), rec.Model, rec.Mode,
		rec.BottomDepth, rec.BottomTime, rec.GFLow, rec.GFHigh,
		rec.Runtime, rec.DecoTime, rec.MaxDepth, rec.Points,
		planYAML.String(), summaryBlob)
	if err != nil {
		return RunRecord{}, fmt.Errorf("failed to insert run: %w", err)
	}

	if err := insertPoints(ctx, tx, rec.ID, p.Profile); err != nil {
		return RunRecord{}, err
	}
	if err := insertStops(ctx, tx, rec.ID, summary.Stops); err != nil {
		return RunRecord{}, err
	}

	if err := tx.Commit(); err != nil {
		return RunRecord{}, fmt.Errorf("failed to commit run: %w", err)
	}

	a.logger.Infow("archived dive run", "id", rec.ID, "name", rec.Name, "points", rec.Points, "path", a.path)
	return rec, nil
}

func insertPoints(ctx context.Context, tx *sql.Tx, id uuid.UUID, profile []dive.ProfilePoint) error {
	stmt, err := tx.PrepareContext(ctx, insertPointSQL)
	if err != nil {
		return fmt.Errorf("failed to prepare point insert: %w", err)
	}
	defer stmt.Close()

	for i, pt := range profile {
		snapshot, err := responseformat.MarshalMsgPack(pt.Model)
		if err != nil {
			return fmt.Errorf("failed to encode snapshot %d: %w", i, err)
		}
		_, err = stmt.ExecContext(ctx,
			id.String(), i, pt.Time, pt.Interval, pt.Depth, pt.Pressure,
			pt.Phase.String(), pt.Tank.String(), pt.TankName,
			pt.Oxygen, pt.Helium, pt.Nitrogen, pt.TankPressure,
			pt.PPOxygen, pt.PPHelium, pt.PPNitrogen,
			pt.GradientFactor, pt.GFSet, pt.Ascending, pt.DepthRunAvg,
			snapshot)
		if err != nil {
			return fmt.Errorf("failed to insert point %d: %w", i, err)
		}
	}
	return nil
}

func insertStops(ctx context.Context, tx *sql.Tx, id uuid.UUID, stops []dive.DecoStop) error {
	for _, stop := range stops {
		_, err := tx.ExecContext(ctx, insertStopSQL,
			id.String(), stop.Number, stop.Depth, stop.Duration, stop.Done, stop.Runtime)
		if err != nil {
			return fmt.Errorf("failed to insert stop %d: %w", stop.Number, err)
		}
	}
	return nil
}

// ListRuns returns the newest runs first. A limit of zero or less returns every run.
func (a *Archive) ListRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := a.db.QueryContext(ctx, listRunsSQL, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		var rec RunRecord
		var id, created string
		err := rows.Scan(&id, &rec.Name, &created, &rec.Model, &rec.Mode,
			&rec.BottomDepth, &rec.BottomTime, &rec.GFLow, &rec.GFHigh,
			&rec.Runtime, &rec.DecoTime, &rec.MaxDepth, &rec.Points)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run row: %w", err)
		}
		if rec.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("run has malformed id %q: %w", id, err)
		}
		if rec.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
			return nil, fmt.Errorf("run %s has malformed timestamp: %w", id, err)
		}
		runs = append(runs, rec)
	}
	return runs, rows.Err()
}

// LoadSummary returns the summary stored with a run
func (a *Archive) LoadSummary(ctx context.Context, id uuid.UUID) (dive.Summary, error) {
	var blob []byte
	err := a.db.QueryRowContext(ctx, "SELECT summary FROM runs WHERE id = ?", id.String()).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return dive.Summary{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return dive.Summary{}, fmt.Errorf("failed to query run %s: %w", id, err)
	}

	var summary dive.Summary
	if err := responseformat.UnmarshalMsgPack(blob, &summary); err != nil {
		return dive.Summary{}, fmt.Errorf("failed to decode summary of run %s: %w", id, err)
	}
	return summary, nil
}

// LoadPoints returns the archived profile of a run, in order
func (a *Archive) LoadPoints(ctx context.Context, id uuid.UUID) ([]dive.ProfilePoint, error) {
	if err := a.exists(ctx, id); err != nil {
		return nil, err
	}

	rows, err := a.db.QueryContext(ctx, selectPointsSQL, id.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query points: %w", err)
	}
	defer rows.Close()

	var points []dive.ProfilePoint
	for rows.Next() {
		var pt dive.ProfilePoint
		var phase, tank string
		var snapshot []byte
		err := rows.Scan(&pt.Time, &pt.Interval, &pt.Depth, &pt.Pressure,
			&phase, &tank, &pt.TankName,
			&pt.Oxygen, &pt.Helium, &pt.Nitrogen, &pt.TankPressure,
			&pt.PPOxygen, &pt.PPHelium, &pt.PPNitrogen,
			&pt.GradientFactor, &pt.GFSet, &pt.Ascending, &pt.DepthRunAvg,
			&snapshot)
		if err != nil {
			return nil, fmt.Errorf("failed to scan point row: %w", err)
		}
		if err := pt.Phase.UnmarshalText([]byte(phase)); err != nil {
			return nil, err
		}
		if pt.Tank, err = dive.ParseTankRole(tank); err != nil {
			return nil, err
		}
		var model decompression.ModelPoint
		if err := responseformat.UnmarshalMsgPack(snapshot, &model); err != nil {
			return nil, fmt.Errorf("failed to decode snapshot: %w", err)
		}
		pt.Model = model
		points = append(points, pt)
	}
	return points, rows.Err()
}

// LoadStops returns the stops held during a run
func (a *Archive) LoadStops(ctx context.Context, id uuid.UUID) ([]dive.DecoStop, error) {
	if err := a.exists(ctx, id); err != nil {
		return nil, err
	}

	rows, err := a.db.QueryContext(ctx, selectStopsSQL, id.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query stops: %w", err)
	}
	defer rows.Close()

	var stops []dive.DecoStop
	for rows.Next() {
		var stop dive.DecoStop
		if err := rows.Scan(&stop.Number, &stop.Depth, &stop.Duration, &stop.Done, &stop.Runtime); err != nil {
			return nil, fmt.Errorf("failed to scan stop row: %w", err)
		}
		stops = append(stops, stop)
	}
	return stops, rows.Err()
}

// DeleteRun removes a run and its points and stops
func (a *Archive) DeleteRun(ctx context.Context, id uuid.UUID) error {
	res, err := a.db.ExecContext(ctx, "DELETE FROM runs WHERE id = ?", id.String())
	if err != nil {
		return fmt.Errorf("failed to delete run %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return nil
}

func (a *Archive) exists(ctx context.Context, id uuid.UUID) error {
	var n int
	if err := a.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM runs WHERE id = ?", id.String()).Scan(&n); err != nil {
		return fmt.Errorf("failed to query run %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return nil
}
