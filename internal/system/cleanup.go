package system

import (
	"time"

	"github.com/l1jgo/scenegraph/internal/core/ecs"
	"github.com/l1jgo/scenegraph/internal/core/event"
	coresys "github.com/l1jgo/scenegraph/internal/core/system"
	"go.uber.org/zap"
)

// CleanupSystem flushes the deferred entity destruction queue at frame end.
// Registered stores (transforms, labels) drop the entity before its
// generation is bumped. Phase 6 (Cleanup).
type CleanupSystem struct {
	world *ecs.World
	bus   *event.Bus
	log   *zap.Logger
	frame uint64
}

func NewCleanupSystem(world *ecs.World, bus *event.Bus, log *zap.Logger) *CleanupSystem {
	return &CleanupSystem{world: world, bus: bus, log: log}
}

func (s *CleanupSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

func (s *CleanupSystem) Update(_ time.Duration) {
	s.frame++
	destroyed := s.world.FlushDestroyQueue()
	if len(destroyed) == 0 {
		return
	}
	s.log.Debug("entities destroyed", zap.Uint64("frame", s.frame), zap.Int("count", len(destroyed)))
	if s.bus != nil {
		event.Emit(s.bus, event.EntitiesDestroyed{Frame: s.frame, Entities: destroyed})
	}
}
