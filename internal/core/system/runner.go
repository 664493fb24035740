package system

import "time"

const phaseCount = int(PhaseCleanup) + 1

// FrameStats is the wall time each phase took in the most recent frame.
type FrameStats struct {
	Frame  uint64
	Phases [phaseCount]time.Duration
}

// Total is the summed duration of every phase.
func (s FrameStats) Total() time.Duration {
	var d time.Duration
	for _, p := range s.Phases {
		d += p
	}
	return d
}

// Slowest returns the phase that took longest.
func (s FrameStats) Slowest() (Phase, time.Duration) {
	slow := PhaseInput
	for p := range s.Phases {
		if s.Phases[p] > s.Phases[slow] {
			slow = Phase(p)
		}
	}
	return slow, s.Phases[slow]
}

// Runner executes one frame as a fixed sequence of phases. Systems are
// bucketed by phase at registration; within a phase they run in
// registration order. Phases never interleave, so
// Output and later systems read the scene without locks.
type Runner struct {
	phases [phaseCount][]System
	frames uint64
	stats  FrameStats
	now    func() time.Time
}

func NewRunner() *Runner {
	return &Runner{now: time.Now}
}

// Register adds s to its phase. Systems reporting an unknown phase run in
// PhaseCleanup.
func (r *Runner) Register(s System) {
	p := s.Phase()
	if p < PhaseInput || int(p) >= phaseCount {
		p = PhaseCleanup
	}
	r.phases[p] = append(r.phases[p], s)
}

// Len is the number of registered systems.
func (r *Runner) Len() int {
	n := 0
	for _, ss := range r.phases {
		n += len(ss)
	}
	return n
}

// Tick runs one frame and records per-phase timings.
func (r *Runner) Tick(dt time.Duration) {
	r.frames++
	r.stats.Frame = r.frames
	for p, systems := range r.phases {
		if len(systems) == 0 {
			r.stats.Phases[p] = 0
			continue
		}
		start := r.now()
		for _, s := range systems {
			s.Update(dt)
		}
		r.stats.Phases[p] = r.now().Sub(start)
	}
}

// Frames is the number of completed Tick calls.
func (r *Runner) Frames() uint64 { return r.frames }

// Stats describes the most recent frame.
func (r *Runner) Stats() FrameStats { return r.stats }
