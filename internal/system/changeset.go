package system

import (
	"slices"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/l1jgo/scenegraph/internal/core/ecs"
	"github.com/l1jgo/scenegraph/internal/core/event"
	"github.com/l1jgo/scenegraph/internal/core/scene"
	coresys "github.com/l1jgo/scenegraph/internal/core/system"
	"go.uber.org/zap"
)

// ChangeSetSystem drains the frame's dirty set into reusable buffers and
// publishes a copy on the bus for renderer/physics style consumers.
// Phase 4 (Output).
type ChangeSetSystem struct {
	store *scene.Store
	bus   *event.Bus
	log   *zap.Logger

	frame    uint64
	entities []ecs.Entity
	worlds   []mgl32.Mat4
}

func NewChangeSetSystem(store *scene.Store, bus *event.Bus, log *zap.Logger) *ChangeSetSystem {
	return &ChangeSetSystem{
		store:    store,
		bus:      bus,
		log:      log,
		entities: make([]ecs.Entity, 0, 256),
		worlds:   make([]mgl32.Mat4, 0, 256),
	}
}

func (s *ChangeSetSystem) Phase() coresys.Phase { return coresys.PhaseOutput }

func (s *ChangeSetSystem) Update(_ time.Duration) {
	s.frame++
	s.entities, s.worlds = s.store.Dirty(s.entities[:0], s.worlds[:0])
	if len(s.entities) == 0 {
		return
	}
	s.log.Debug("transforms changed", zap.Uint64("frame", s.frame), zap.Int("count", len(s.entities)))
	if s.bus != nil {
		event.Emit(s.bus, event.TransformsChanged{
			Frame:    s.frame,
			Entities: slices.Clone(s.entities),
			Worlds:   slices.Clone(s.worlds),
		})
	}
}

// Last returns the change set drained in the most recent Output phase. The
// slices are reused by the next drain; copy them to keep them longer.
func (s *ChangeSetSystem) Last() event.TransformsChanged {
	return event.TransformsChanged{Frame: s.frame, Entities: s.entities, Worlds: s.worlds}
}
