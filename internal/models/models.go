package models

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx/types"
	"github.com/lib/pq"
)

// SimulationResult is a saved simulation run
type SimulationResult struct {
	ID              int             `db:"id" json:"-"`
	PublicID        string          `db:"public_id" json:"id"`
	M1              float64         `db:"m1" json:"m1"`
	M2              float64         `db:"m2" json:"m2"`
	V1Initial       float64         `db:"v1_initial" json:"v1_initial"`
	V2Initial       float64         `db:"v2_initial" json:"v2_initial"`
	TotalTime       float64         `db:"total_time" json:"total_time"`
	CollisionCount  int             `db:"collision_count" json:"collision_count"`
	PiApproximation sql.NullFloat64 `db:"pi_approximation" json:"-"`
	HitEventCap     bool            `db:"hit_event_cap" json:"hit_event_cap"`
	Events          types.JSONText  `db:"events" json:"events,omitempty"`
	Trajectory      types.JSONText  `db:"trajectory" json:"trajectory,omitempty"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
}

// MarshalJSON renders the nullable π approximation as a number or null.
func (r SimulationResult) MarshalJSON() ([]byte, error) {
	type alias SimulationResult
	var pi *float64
	if r.PiApproximation.Valid {
		pi = &r.PiApproximation.Float64
	}
	return json.Marshal(struct {
		alias
		PiApproximation *float64 `json:"pi_approximation"`
	}{alias(r), pi})
}

// AdminAccount is an operator allowed to manage saved results
type AdminAccount struct {
	Username    string         `db:"username" json:"username"`
	DisplayName string         `db:"display_name" json:"display_name"`
	TokenHash   string         `db:"token_hash" json:"-"`
	Roles       pq.StringArray `db:"roles" json:"roles"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updated_at"`
}

// AdminAudit records one admin action
type AdminAudit struct {
	ID        int            `db:"id" json:"id"`
	Username  string         `db:"username" json:"username"`
	IP        string         `db:"ip" json:"ip"`
	Route     string         `db:"route" json:"route"`
	Action    string         `db:"action" json:"action"`
	Details   types.JSONText `db:"details" json:"details"`
	Success   bool           `db:"success" json:"success"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
}
