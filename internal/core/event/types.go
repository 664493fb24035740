package event

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/l1jgo/scenegraph/internal/core/ecs"
)

// TransformsChanged is one frame's dirty set. Entities[i] owns Worlds[i].
// Events put on the bus own their slices.
type TransformsChanged struct {
	Frame    uint64
	Entities []ecs.Entity
	Worlds   []mgl32.Mat4
}

func (c TransformsChanged) Len() int { return len(c.Entities) }

// EntitiesDestroyed lists the entities flushed from the destroy queue.
type EntitiesDestroyed struct {
	Frame    uint64
	Entities []ecs.Entity
}
