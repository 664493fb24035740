package ecs

import (
	"errors"
	"fmt"
)

// ErrStaleHandle reports an entity whose generation no longer matches its slot.
var ErrStaleHandle = errors.New("stale entity handle")

// World is the top-level ECS container. It owns the entity pool, the store
// registry, and a deferred destruction queue flushed at the end of a frame.
type World struct {
	pool         *EntityPool
	registry     *Registry
	destroyQueue []Entity
}

func NewWorld(cfg PoolConfig) *World {
	return &World{
		pool:         NewEntityPool(cfg),
		registry:     NewRegistry(),
		destroyQueue: make([]Entity, 0, 64),
	}
}

func (w *World) Pool() *EntityPool   { return w.pool }
func (w *World) Registry() *Registry { return w.registry }

func (w *World) CreateEntity() Entity {
	return w.pool.Create()
}

func (w *World) Alive(e Entity) bool {
	return w.pool.Alive(e)
}

// Check returns ErrStaleHandle when e is not alive.
func (w *World) Check(e Entity) error {
	if !w.pool.Alive(e) {
		return fmt.Errorf("%s: %w", e, ErrStaleHandle)
	}
	return nil
}

// MarkForDestruction queues an entity for end-of-frame cleanup.
func (w *World) MarkForDestruction(e Entity) {
	w.destroyQueue = append(w.destroyQueue, e)
}

// Pending is the number of entities waiting in the destroy queue.
func (w *World) Pending() int { return len(w.destroyQueue) }

// FlushDestroyQueue removes every queued entity from all registered stores
// and then destroys it, returning the entities that were actually alive.
// Stores are cleared before the generation bump so they can still resolve
// the handle.
func (w *World) FlushDestroyQueue() []Entity {
	destroyed := w.destroyQueue[:0:0]
	for _, e := range w.destroyQueue {
		if !w.pool.Alive(e) {
			continue
		}
		w.registry.RemoveAll(e)
		w.pool.Destroy(e)
		destroyed = append(destroyed, e)
	}
	w.destroyQueue = w.destroyQueue[:0]
	return destroyed
}
