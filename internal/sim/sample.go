package sim

import (
	"math"
	"sort"
)

// Frame is one interpolated instant used by renderers.
type Frame struct {
	Time       float64 `json:"time"`
	X1         float64 `json:"x1"`
	X2         float64 `json:"x2"`
	Collisions int     `json:"collisions"`
}

// FrameCount is the number of frames covering totalTime at fps.
func FrameCount(totalTime float64, fps int) int {
	return int(totalTime * float64(fps))
}

// SampleFrames returns n frames evenly spaced between the first and last
// trajectory times, with positions linearly interpolated between samples.
func SampleFrames(r Result, n int) []Frame {
	if n <= 0 || len(r.Trajectory) == 0 {
		return nil
	}

	start := r.Trajectory[0].Time
	end := r.Trajectory[len(r.Trajectory)-1].Time

	frames := make([]Frame, n)
	for i := range frames {
		t := start
		if n > 1 {
			t = start + (end-start)*float64(i)/float64(n-1)
		}
		x1, x2 := Interpolate(r.Trajectory, t)
		frames[i] = Frame{
			Time:       t,
			X1:         x1,
			X2:         x2,
			Collisions: CollisionsUpTo(r.Events, t),
		}
	}
	return frames
}

// Interpolate returns block positions at t, clamped to the trajectory ends.
func Interpolate(traj []Sample, t float64) (float64, float64) {
	if len(traj) == 0 {
		return 0, 0
	}
	if t <= traj[0].Time {
		return traj[0].X1, traj[0].X2
	}
	last := traj[len(traj)-1]
	if t >= last.Time {
		return last.X1, last.X2
	}

	// first sample strictly after t
	j := sort.Search(len(traj), func(i int) bool { return traj[i].Time > t })
	a, b := traj[j-1], traj[j]
	span := b.Time - a.Time
	if span <= 0 {
		return b.X1, b.X2
	}
	f := (t - a.Time) / span
	return a.X1 + (b.X1-a.X1)*f, a.X2 + (b.X2-a.X2)*f
}

// CollisionsUpTo counts events at or before t.
func CollisionsUpTo(events []CollisionEvent, t float64) int {
	return sort.Search(len(events), func(i int) bool { return events[i].Time > t })
}

// Extent returns the largest block position reached, used to size a view.
func Extent(traj []Sample) float64 {
	max := math.Inf(-1)
	for _, s := range traj {
		if s.X1 > max {
			max = s.X1
		}
		if s.X2 > max {
			max = s.X2
		}
	}
	if math.IsInf(max, -1) {
		return 0
	}
	return max
}
