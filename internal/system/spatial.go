package system

import (
	"time"

	coresys "github.com/l1jgo/scenegraph/internal/core/system"
	"github.com/l1jgo/scenegraph/internal/spatial"
)

// SpatialIndexSystem feeds the frame's change set into the spatial grid.
// Register it after ChangeSetSystem. Phase 4 (Output).
type SpatialIndexSystem struct {
	source    ChangeSource
	grid      *spatial.Grid
	lastFrame uint64
}

func NewSpatialIndexSystem(source ChangeSource, grid *spatial.Grid) *SpatialIndexSystem {
	return &SpatialIndexSystem{source: source, grid: grid}
}

func (s *SpatialIndexSystem) Phase() coresys.Phase { return coresys.PhaseOutput }

func (s *SpatialIndexSystem) Update(_ time.Duration) {
	cs := s.source.Last()
	if cs.Len() == 0 || cs.Frame == s.lastFrame {
		return
	}
	s.lastFrame = cs.Frame
	for i, e := range cs.Entities {
		s.grid.Update(e, cs.Worlds[i].Col(3).Vec3())
	}
}
