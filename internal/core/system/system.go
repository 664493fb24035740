package system

import "time"

// Phase defines execution ordering within a single frame. Mutation of the
// scene happens up to PhaseUpdate; PhaseOutput and later only read it until
// PhaseCleanup closes the frame.
type Phase int

const (
	PhaseInput      Phase = iota // 0: external input
	PhasePreUpdate               // 1: deliver last frame's events
	PhaseUpdate                  // 2: scene mutation (scripts, gameplay)
	PhasePostUpdate              // 3: late mutation
	PhaseOutput                  // 4: drain the dirty set
	PhasePersist                 // 5: journal the change set
	PhaseCleanup                 // 6: destroy queued entities, reset dirty flags
)

func (p Phase) String() string {
	switch p {
	case PhaseInput:
		return "input"
	case PhasePreUpdate:
		return "pre-update"
	case PhaseUpdate:
		return "update"
	case PhasePostUpdate:
		return "post-update"
	case PhaseOutput:
		return "output"
	case PhasePersist:
		return "persist"
	case PhaseCleanup:
		return "cleanup"
	}
	return "unknown"
}

// System is the interface every frame system implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
