package system

import (
	"time"

	"github.com/l1jgo/scenegraph/internal/core/scene"
	coresys "github.com/l1jgo/scenegraph/internal/core/system"
)

// ResetSystem clears the transform dirty flags, closing the frame. Register
// it after CleanupSystem. Phase 6 (Cleanup).
type ResetSystem struct {
	store *scene.Store
}

func NewResetSystem(store *scene.Store) *ResetSystem {
	return &ResetSystem{store: store}
}

func (s *ResetSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

func (s *ResetSystem) Update(_ time.Duration) {
	s.store.Reset()
}
