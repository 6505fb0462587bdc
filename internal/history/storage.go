package history

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/uptrace/bun"
)

type RunRepository struct {
	db *bun.DB
}

func NewRunRepository(database *Database) *RunRepository {
	return &RunRepository{db: database.Bun()}
}

func (r *RunRepository) Insert(ctx context.Context, run *ParseRun) error {
	_, err := r.db.NewInsert().Model(run).Exec(ctx)
	return err
}

func (r *RunRepository) Finish(ctx context.Context, run *ParseRun) error {
	_, err := r.db.NewUpdate().Model(run).
		Column("outcome", "error_message", "output_file", "output_size", "map_name", "rounds", "finished_at").
		WherePK().
		Exec(ctx)
	return err
}

func (r *RunRepository) GetByID(ctx context.Context, id string) (*ParseRun, error) {
	run := new(ParseRun)
	err := r.db.NewSelect().Model(run).Where("id = ?", id).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return run, nil
}

// RecentRuns lists runs newest first.
func (r *RunRepository) RecentRuns(ctx context.Context, limit int) ([]ParseRun, error) {
	if limit <= 0 {
		limit = 20
	}
	var runs []ParseRun
	err := r.db.NewSelect().Model(&runs).
		OrderExpr("started_at DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return runs, nil
}

// RunsForDemo lists runs for one demo id, newest first.
func (r *RunRepository) RunsForDemo(ctx context.Context, demoID string, limit int) ([]ParseRun, error) {
	if limit <= 0 {
		limit = 20
	}
	var runs []ParseRun
	err := r.db.NewSelect().Model(&runs).
		Where("demo_id = ?", demoID).
		OrderExpr("started_at DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return runs, nil
}

// LatestRun returns the most recent run, or nil when the table is empty.
func (r *RunRepository) LatestRun(ctx context.Context) (*ParseRun, error) {
	run := new(ParseRun)
	err := r.db.NewSelect().Model(run).
		OrderExpr("started_at DESC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return run, nil
}

// FailureRate reports the error fraction across runs started after the
// given time. Zero runs yields zero.
func (r *RunRepository) FailureRate(ctx context.Context, since time.Time) (float64, error) {
	total, err := r.db.NewSelect().Model((*ParseRun)(nil)).
		Where("started_at > ?", since).
		Count(ctx)
	if err != nil {
		return 0, err
	}
	if total == 0 {
		return 0, nil
	}
	failed, err := r.db.NewSelect().Model((*ParseRun)(nil)).
		Where("started_at > ?", since).
		Where("outcome = ?", OutcomeError).
		Count(ctx)
	if err != nil {
		return 0, err
	}
	return float64(failed) / float64(total), nil
}
