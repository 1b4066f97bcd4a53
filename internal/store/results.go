package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/blockpi/backend/internal/models"
	"github.com/blockpi/backend/internal/sim"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var (
	ErrNotFound    = errors.New("store: result not found")
	ErrUnavailable = errors.New("store: database not configured")
)

const resultColumns = `id, public_id, m1, m2, v1_initial, v2_initial, total_time, collision_count,
	pi_approximation, hit_event_cap, events, trajectory, created_at`

// Store persists simulation results in PostgreSQL.
type Store struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// NewResult converts an engine result into a row ready to save.
func NewResult(r sim.Result) (*models.SimulationResult, error) {
	events, err := json.Marshal(r.Events)
	if err != nil {
		return nil, fmt.Errorf("marshal events: %w", err)
	}
	traj, err := json.Marshal(r.Trajectory)
	if err != nil {
		return nil, fmt.Errorf("marshal trajectory: %w", err)
	}

	row := &models.SimulationResult{
		M1:             r.Params.M1,
		M2:             r.Params.M2,
		V1Initial:      r.Params.V1,
		V2Initial:      r.Params.V2,
		TotalTime:      r.Params.TotalTime,
		CollisionCount: r.CollisionCount,
		HitEventCap:    r.HitEventCap,
		Events:         events,
		Trajectory:     traj,
	}
	if pi, ok := sim.PiApproximation(r.CollisionCount, r.Params.M1, r.Params.M2); ok {
		row.PiApproximation = sql.NullFloat64{Float64: pi, Valid: true}
	}
	return row, nil
}

// Save inserts res, assigning its public ID, row ID and creation time.
func (s *Store) Save(ctx context.Context, res *models.SimulationResult) error {
	if s == nil || s.db == nil {
		return ErrUnavailable
	}
	if res.PublicID == "" {
		res.PublicID = uuid.NewString()
	}

	err := s.db.QueryRowxContext(ctx, `
		INSERT INTO simulation_results
			(public_id, m1, m2, v1_initial, v2_initial, total_time, collision_count,
			 pi_approximation, hit_event_cap, events, trajectory, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,NOW())
		RETURNING id, created_at`,
		res.PublicID, res.M1, res.M2, res.V1Initial, res.V2Initial, res.TotalTime, res.CollisionCount,
		res.PiApproximation, res.HitEventCap, res.Events, res.Trajectory,
	).Scan(&res.ID, &res.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert simulation result: %w", err)
	}
	return nil
}

// Recent returns the latest results without their trajectories.
func (s *Store) Recent(ctx context.Context, limit int) ([]models.SimulationResult, error) {
	if s == nil || s.db == nil {
		return nil, ErrUnavailable
	}
	if limit <= 0 {
		limit = 10
	}

	results := []models.SimulationResult{}
	err := s.db.SelectContext(ctx, &results, `
		SELECT id, public_id, m1, m2, v1_initial, v2_initial, total_time, collision_count,
			pi_approximation, hit_event_cap, created_at
		FROM simulation_results
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list simulation results: %w", err)
	}
	return results, nil
}

// Get loads one result by public ID.
func (s *Store) Get(ctx context.Context, publicID string) (*models.SimulationResult, error) {
	if s == nil || s.db == nil {
		return nil, ErrUnavailable
	}
	if _, err := uuid.Parse(publicID); err != nil {
		return nil, ErrNotFound
	}

	var res models.SimulationResult
	err := s.db.GetContext(ctx, &res, `SELECT `+resultColumns+` FROM simulation_results WHERE public_id = $1`, publicID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get simulation result %s: %w", publicID, err)
	}
	return &res, nil
}

// Delete removes one result by public ID.
func (s *Store) Delete(ctx context.Context, publicID string) error {
	if s == nil || s.db == nil {
		return ErrUnavailable
	}
	if _, err := uuid.Parse(publicID); err != nil {
		return ErrNotFound
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM simulation_results WHERE public_id = $1`, publicID)
	if err != nil {
		return fmt.Errorf("delete simulation result %s: %w", publicID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// PruneOlderThan deletes results created before cutoff.
func (s *Store) PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	if s == nil || s.db == nil {
		return 0, ErrUnavailable
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM simulation_results WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune simulation results: %w", err)
	}
	return res.RowsAffected()
}

// Decode unpacks the stored JSON columns back into an engine result.
func Decode(res *models.SimulationResult) (sim.Result, error) {
	p := sim.DefaultParams(res.M1, res.M2, res.V1Initial)
	p.V2 = res.V2Initial
	p.TotalTime = res.TotalTime

	out := sim.Result{Params: p, CollisionCount: res.CollisionCount, HitEventCap: res.HitEventCap}
	if len(res.Events) > 0 {
		if err := res.Events.Unmarshal(&out.Events); err != nil {
			return sim.Result{}, fmt.Errorf("decode events: %w", err)
		}
	}
	if len(res.Trajectory) > 0 {
		if err := res.Trajectory.Unmarshal(&out.Trajectory); err != nil {
			return sim.Result{}, fmt.Errorf("decode trajectory: %w", err)
		}
	}
	return out, nil
}
