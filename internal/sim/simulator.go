package sim

import "math"

// EventKind identifies what a collision event hit.
type EventKind string

const (
	None       EventKind = ""
	BlockBlock EventKind = "blocks"
	Wall       EventKind = "wall"
)

// Params are the initial conditions of one run.
type Params struct {
	M1           float64 `json:"m1"`
	M2           float64 `json:"m2"`
	V1           float64 `json:"v1"`
	V2           float64 `json:"v2"`
	X1           float64 `json:"x1"`
	X2           float64 `json:"x2"`
	WallPosition float64 `json:"wall_position"`
	BlockWidth   float64 `json:"block_width"`
	TotalTime    float64 `json:"total_time"`
	FPS          int     `json:"fps"`       // rendering only
	MaxEvents    int     `json:"max_events"` // 0 means MaxEvents
}

// DefaultParams returns the classic layout: block 2 at rest near the wall,
// block 1 driven toward it with velocity v1.
func DefaultParams(m1, m2, v1 float64) Params {
	return Params{
		M1:           m1,
		M2:           m2,
		V1:           v1,
		X1:           DefaultX1,
		X2:           DefaultX2,
		WallPosition: DefaultWallPosition,
		BlockWidth:   DefaultBlockWidth,
		TotalTime:    DefaultTotalTime,
		FPS:          DefaultFPS,
	}
}

// Sample is one trajectory record.
type Sample struct {
	Time float64 `json:"time"`
	X1   float64 `json:"x1"`
	X2   float64 `json:"x2"`
	V1   float64 `json:"v1"`
	V2   float64 `json:"v2"`
}

// CollisionEvent is one processed event.
type CollisionEvent struct {
	Time float64   `json:"time"`
	Kind EventKind `json:"kind"`
}

// State is a snapshot of the mutable physical state.
type State struct {
	Time float64 `json:"time"`
	X1   float64 `json:"x1"`
	X2   float64 `json:"x2"`
	V1   float64 `json:"v1"`
	V2   float64 `json:"v2"`
}

// Result is what consumers read once Run returns.
type Result struct {
	Params         Params           `json:"params"`
	CollisionCount int              `json:"collision_count"`
	Trajectory     []Sample         `json:"trajectory"`
	Events         []CollisionEvent `json:"events"`
	HitEventCap    bool             `json:"hit_event_cap"`
}

// Simulator runs the event-driven two-block system. It is not safe for
// concurrent use; give each goroutine its own instance.
type Simulator struct {
	p         Params
	maxEvents int

	m1, m2 float64
	x1, x2 float64
	v1, v2 float64
	time   float64

	Trajectory []Sample
	Events     []CollisionEvent
}

// New validates p and returns a simulator positioned at the initial state.
func New(p Params) (*Simulator, error) {
	for _, f := range []float64{p.M1, p.M2, p.V1, p.V2, p.X1, p.X2, p.WallPosition, p.BlockWidth, p.TotalTime} {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, ErrNotFinite
		}
	}
	if p.M1 <= 0 || p.M2 <= 0 {
		return nil, ErrInvalidMass
	}
	if p.BlockWidth <= 0 {
		return nil, ErrInvalidWidth
	}
	if p.TotalTime <= 0 {
		return nil, ErrInvalidTotalTime
	}
	if p.X2 < p.WallPosition || p.X1 < p.X2+p.BlockWidth {
		return nil, ErrOverlap
	}

	s := &Simulator{p: p, maxEvents: p.MaxEvents}
	if s.maxEvents <= 0 {
		s.maxEvents = MaxEvents
	}
	s.reset()
	return s, nil
}

func (s *Simulator) reset() {
	s.m1, s.m2 = s.p.M1, s.p.M2
	s.x1, s.x2 = s.p.X1, s.p.X2
	s.v1, s.v2 = s.p.V1, s.p.V2
	s.time = 0
	s.Trajectory = make([]Sample, 0, 64)
	s.Events = make([]CollisionEvent, 0, 64)
}

// State returns the current physical state.
func (s *Simulator) State() State {
	return State{Time: s.time, X1: s.x1, X2: s.x2, V1: s.v1, V2: s.v2}
}

// NextEvent returns the time until the next collision and what it hits.
// It returns (+Inf, None) when neither blocks nor wall can collide again.
// On an exact tie the block-block event wins.
func (s *Simulator) NextEvent() (float64, EventKind) {
	tBlocks := math.Inf(1)
	if s.v2 > s.v1 {
		rel := s.v2 - s.v1
		if math.Abs(rel) >= Epsilon {
			tBlocks = (s.x1 - s.x2 - s.p.BlockWidth) / rel
			if tBlocks < 0 {
				tBlocks = math.Inf(1)
			}
		}
	}

	tWall := math.Inf(1)
	if s.v2 < 0 && math.Abs(s.v2) >= Epsilon {
		tWall = (s.p.WallPosition - s.x2) / s.v2
		if tWall < 0 {
			tWall = math.Inf(1)
		}
	}

	switch {
	case math.IsInf(tBlocks, 1) && math.IsInf(tWall, 1):
		return math.Inf(1), None
	case tBlocks <= tWall:
		return tBlocks, BlockBlock
	default:
		return tWall, Wall
	}
}

// ApplyCollision replaces the velocities as the event kind dictates.
// Positions are left untouched.
func (s *Simulator) ApplyCollision(kind EventKind) {
	switch kind {
	case BlockBlock:
		s.v1, s.v2 = elastic(s.m1, s.m2, s.v1, s.v2)
	case Wall:
		s.v2 = -s.v2
	}
}

// elastic is the 1-D elastic collision solution. The operation order is
// fixed: reference collision counts depend on its rounding.
func elastic(m1, m2, v1, v2 float64) (float64, float64) {
	newV1 := ((m1-m2)*v1 + 2*m2*v2) / (m1 + m2)
	newV2 := ((m2-m1)*v2 + 2*m1*v1) / (m1 + m2)
	return newV1, newV2
}

// Run resets to the initial conditions and processes events until the blocks
// separate for good, no event remains before the horizon, or the event cap is
// reached. It returns the number of processed events.
func (s *Simulator) Run() int {
	s.reset()
	s.record(s.time)

	for s.time < s.p.TotalTime && len(s.Events) < s.maxEvents {
		dt, kind := s.NextEvent()
		if math.IsInf(dt, 1) {
			remaining := s.p.TotalTime - s.time
			s.x1 += s.v1 * remaining
			s.x2 += s.v2 * remaining
			s.time = s.p.TotalTime
			s.record(s.time)
			break
		}

		s.time += dt
		s.x1 += s.v1 * dt
		s.x2 += s.v2 * dt
		s.ApplyCollision(kind)

		s.Events = append(s.Events, CollisionEvent{Time: s.time, Kind: kind})
		s.record(s.time + TimeOffset)

		// Both moving away from the wall with the driver ahead: nothing can
		// ever collide again.
		if s.v1 > 0 && s.v2 > 0 && s.v1 > s.v2 {
			break
		}
	}

	return len(s.Events)
}

func (s *Simulator) record(t float64) {
	s.Trajectory = append(s.Trajectory, Sample{Time: t, X1: s.x1, X2: s.x2, V1: s.v1, V2: s.v2})
}

// Result returns the outputs of the last Run.
func (s *Simulator) Result() Result {
	return Result{
		Params:         s.p,
		CollisionCount: len(s.Events),
		Trajectory:     s.Trajectory,
		Events:         s.Events,
		HitEventCap:    len(s.Events) >= s.maxEvents,
	}
}

// Simulate builds a simulator from p, runs it and returns the result.
func Simulate(p Params) (Result, error) {
	s, err := New(p)
	if err != nil {
		return Result{}, err
	}
	s.Run()
	return s.Result(), nil
}
