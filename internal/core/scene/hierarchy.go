package scene

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/l1jgo/scenegraph/internal/core/ecs"
)

// Link re-parents child under parent and keeps the child's current world
// position, orientation and scale. The child is appended after any
// existing children. Nothing changes when an error is returned.
func (s *Store) Link(child, parent ecs.Entity) error {
	c, err := s.TransformFor(child)
	if err != nil {
		return fmt.Errorf("link child: %w", err)
	}
	p, err := s.TransformFor(parent)
	if err != nil {
		return fmt.Errorf("link parent: %w", err)
	}
	if s.descendsFrom(p, c) {
		return fmt.Errorf("link %s under %s: %w", child, parent, ErrCyclicLink)
	}

	parentWorld := s.world[p]
	childWorld := s.world[c]

	childScale := basisScale(childWorld)
	normParent := normalized(parentWorld)
	if isSingular(normParent) {
		return fmt.Errorf("link %s under %s: %w", child, parent, ErrSingularParent)
	}
	relative := normParent.Inv().Mul4(normalized(childWorld))
	relative = scaleBasis(relative, childScale)

	s.detach(c)
	s.appendChild(p, c)

	s.local[c] = relative
	s.dirty[c] = true
	return s.Transform(c, parentWorld)
}

// Unlink makes e a root. Its world pose is frozen: local takes the last
// computed world matrix, so moving the former parent no longer affects it.
// Roots are left untouched.
func (s *Store) Unlink(e ecs.Entity) error {
	t, err := s.TransformFor(e)
	if err != nil {
		return fmt.Errorf("unlink: %w", err)
	}
	s.detach(t)
	return nil
}

// Parent returns the entity e is linked under. ok is false for roots.
func (s *Store) Parent(e ecs.Entity) (parent ecs.Entity, ok bool, err error) {
	t, err := s.TransformFor(e)
	if err != nil {
		return ecs.Nil, false, err
	}
	p := s.parent[t]
	if p == None {
		return ecs.Nil, false, nil
	}
	return s.entity[p], true, nil
}

// Children returns e's children in sibling order.
func (s *Store) Children(e ecs.Entity) ([]ecs.Entity, error) {
	t, err := s.TransformFor(e)
	if err != nil {
		return nil, err
	}
	var out []ecs.Entity
	for c := s.firstChild[t]; c != None; c = s.nextSibling[c] {
		out = append(out, s.entity[c])
	}
	return out, nil
}

// detach removes t from its parent's sibling list in constant time.
func (s *Store) detach(t Index) {
	p := s.parent[t]
	if p == None {
		return
	}
	prev, next := s.prevSibling[t], s.nextSibling[t]
	if prev == None {
		s.firstChild[p] = next
	} else {
		s.nextSibling[prev] = next
	}
	if next != None {
		s.prevSibling[next] = prev
	}

	s.parent[t] = None
	s.prevSibling[t] = None
	s.nextSibling[t] = None
	s.local[t] = s.world[t]
}

// appendChild links a root t as the last child of p.
func (s *Store) appendChild(p, t Index) {
	s.parent[t] = p
	s.nextSibling[t] = None

	last := s.firstChild[p]
	if last == None {
		s.firstChild[p] = t
		s.prevSibling[t] = None
		return
	}
	for s.nextSibling[last] != None {
		last = s.nextSibling[last]
	}
	s.nextSibling[last] = t
	s.prevSibling[t] = last
}

// descendsFrom reports whether ancestor is t or lies above it. The walk is
// bounded by the row count so a corrupted forest cannot loop forever.
func (s *Store) descendsFrom(t, ancestor Index) bool {
	for steps := 0; t != None && steps <= len(s.entity); steps++ {
		if t == ancestor {
			return true
		}
		t = s.parent[t]
	}
	return false
}

func isSingular(m mgl32.Mat4) bool {
	d := float64(m.Det())
	return d == 0 || math.IsNaN(d)
}
