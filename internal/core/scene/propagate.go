package scene

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/l1jgo/scenegraph/internal/core/ecs"
)

// Apply recomputes t's world matrix from its parent's current world matrix
// (identity for roots), marks t dirty, and propagates to the subtree.
func (s *Store) Apply(t Index) error {
	if err := s.check(t); err != nil {
		return fmt.Errorf("apply: %w", err)
	}
	s.dirty[t] = true
	return s.Transform(t, s.parentWorld(t))
}

// Transform sets world[t] = parentWorld × local[t] and recomputes every
// descendant from its freshly computed parent. Descendants are marked dirty
// only under DirtySubtree. The walk uses an explicit work list and stops
// with ErrCyclicLink if it visits more nodes than exist.
func (s *Store) Transform(t Index, parentWorld mgl32.Mat4) error {
	if err := s.check(t); err != nil {
		return fmt.Errorf("transform: %w", err)
	}
	s.world[t] = parentWorld.Mul4(s.local[t])

	stack := s.pushChildren(s.stack[:0], t)
	for visited := 0; len(stack) > 0; visited++ {
		if visited >= len(s.entity) {
			s.stack = stack[:0]
			return fmt.Errorf("transform below %s: %w", s.entity[t], ErrCyclicLink)
		}
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		s.world[n] = s.world[s.parent[n]].Mul4(s.local[n])
		if s.dirtyScope == DirtySubtree {
			s.dirty[n] = true
		}
		stack = s.pushChildren(stack, n)
	}
	s.stack = stack
	return nil
}

func (s *Store) pushChildren(stack []Index, t Index) []Index {
	for c := s.firstChild[t]; c != None; c = s.nextSibling[c] {
		stack = append(stack, c)
	}
	return stack
}

func (s *Store) parentWorld(t Index) mgl32.Mat4 {
	if p := s.parent[t]; p != None {
		return s.world[p]
	}
	return mgl32.Ident4()
}

// Reset clears every dirty flag. Call once per frame after consumers have
// drained Dirty.
func (s *Store) Reset() {
	clear(s.dirty)
}

// Dirty appends the owner and world matrix of every dirty transform in
// dense row order and returns the extended slices. The matrices are copies;
// row order is not creation order once rows have been destroyed.
func (s *Store) Dirty(entities []ecs.Entity, worlds []mgl32.Mat4) ([]ecs.Entity, []mgl32.Mat4) {
	for i, d := range s.dirty {
		if d {
			entities = append(entities, s.entity[i])
			worlds = append(worlds, s.world[i])
		}
	}
	return entities, worlds
}

// DirtyCount is the number of transforms currently flagged dirty.
func (s *Store) DirtyCount() int {
	n := 0
	for _, d := range s.dirty {
		if d {
			n++
		}
	}
	return n
}
