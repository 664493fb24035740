// Package scene stores per-entity transforms as a forest of flat index
// links over parallel dense arrays, and tracks which transforms changed
// during the current frame.
//
// A Store has a single owner. Mutation and dirty-set consumption must not
// overlap; the frame runner enforces this by phase ordering.
package scene

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/l1jgo/scenegraph/internal/core/ecs"
)

// Index is a dense row position. It changes when another row is destroyed,
// so hold entities, not indices, across mutations.
type Index uint32

// None is the link sentinel meaning "no parent / child / sibling".
const None Index = math.MaxUint32

// Store is a structure-of-arrays table of transforms. All row slices have
// the same length at all times.
type Store struct {
	rows map[ecs.Entity]Index

	entity      []ecs.Entity
	local       []mgl32.Mat4
	world       []mgl32.Mat4
	parent      []Index
	firstChild  []Index
	prevSibling []Index
	nextSibling []Index
	dirty       []bool

	worldWrites WorldWriteMode
	dirtyScope  DirtyScope

	stack []Index // propagation work list, reused between calls
}

func NewStore(opts Options) *Store {
	n := opts.InitialCapacity
	if n < 0 {
		n = 0
	}
	return &Store{
		rows:        make(map[ecs.Entity]Index, n),
		entity:      make([]ecs.Entity, 0, n),
		local:       make([]mgl32.Mat4, 0, n),
		world:       make([]mgl32.Mat4, 0, n),
		parent:      make([]Index, 0, n),
		firstChild:  make([]Index, 0, n),
		prevSibling: make([]Index, 0, n),
		nextSibling: make([]Index, 0, n),
		dirty:       make([]bool, 0, n),
		worldWrites: opts.WorldWrites,
		dirtyScope:  opts.DirtyScope,
		stack:       make([]Index, 0, 32),
	}
}

func (s *Store) WorldWrites() WorldWriteMode { return s.worldWrites }
func (s *Store) DirtyScope() DirtyScope      { return s.dirtyScope }

// Len is the number of live transforms.
func (s *Store) Len() int { return len(s.entity) }

// CreateTransform appends a root transform with identity local and world
// matrices for e.
func (s *Store) CreateTransform(e ecs.Entity) (Index, error) {
	if _, ok := s.rows[e]; ok {
		return None, fmt.Errorf("create transform for %s: %w", e, ErrAlreadyExists)
	}
	next := Index(len(s.entity))

	s.entity = append(s.entity, e)
	s.local = append(s.local, mgl32.Ident4())
	s.world = append(s.world, mgl32.Ident4())
	s.parent = append(s.parent, None)
	s.firstChild = append(s.firstChild, None)
	s.prevSibling = append(s.prevSibling, None)
	s.nextSibling = append(s.nextSibling, None)
	s.dirty = append(s.dirty, false)

	s.rows[e] = next
	return next, nil
}

// DestroyTransform removes row t with swap-and-pop compaction. Children of t
// become roots that keep their current world pose, t is unlinked from its
// parent, and every row that referenced the relocated last row is rewired
// to its new position.
func (s *Store) DestroyTransform(t Index) error {
	if err := s.check(t); err != nil {
		return fmt.Errorf("destroy transform: %w", err)
	}

	for c := s.firstChild[t]; c != None; {
		next := s.nextSibling[c]
		s.detach(c)
		c = next
	}
	s.detach(t)

	e := s.entity[t]
	last := Index(len(s.entity) - 1)
	if t != last {
		s.relocate(last, t)
	}

	s.entity = s.entity[:last]
	s.local = s.local[:last]
	s.world = s.world[:last]
	s.parent = s.parent[:last]
	s.firstChild = s.firstChild[:last]
	s.prevSibling = s.prevSibling[:last]
	s.nextSibling = s.nextSibling[:last]
	s.dirty = s.dirty[:last]

	delete(s.rows, e)
	return nil
}

// DestroyTransformFor destroys the transform attached to e.
func (s *Store) DestroyTransformFor(e ecs.Entity) error {
	t, err := s.TransformFor(e)
	if err != nil {
		return err
	}
	return s.DestroyTransform(t)
}

// Remove implements ecs.Removable so a World can sequence transform
// destruction with entity destruction. Entities without a transform are
// ignored.
func (s *Store) Remove(e ecs.Entity) {
	if t, ok := s.rows[e]; ok {
		_ = s.DestroyTransform(t)
	}
}

func (s *Store) HasTransform(e ecs.Entity) bool {
	_, ok := s.rows[e]
	return ok
}

func (s *Store) TransformFor(e ecs.Entity) (Index, error) {
	t, ok := s.rows[e]
	if !ok {
		return None, fmt.Errorf("%s: %w", e, ErrNotFound)
	}
	return t, nil
}

// EntityAt returns the owner of row t.
func (s *Store) EntityAt(t Index) (ecs.Entity, error) {
	if err := s.check(t); err != nil {
		return ecs.Nil, err
	}
	return s.entity[t], nil
}

func (s *Store) check(t Index) error {
	if int64(t) >= int64(len(s.entity)) {
		return fmt.Errorf("index %d of %d: %w", t, len(s.entity), ErrOutOfRange)
	}
	return nil
}

// relocate moves row from into slot to and repoints every link that named
// from. Slot to must already be unreferenced.
func (s *Store) relocate(from, to Index) {
	if p := s.parent[from]; p != None && s.firstChild[p] == from {
		s.firstChild[p] = to
	}
	if prev := s.prevSibling[from]; prev != None {
		s.nextSibling[prev] = to
	}
	if next := s.nextSibling[from]; next != None {
		s.prevSibling[next] = to
	}
	for c := s.firstChild[from]; c != None; c = s.nextSibling[c] {
		s.parent[c] = to
	}

	s.entity[to] = s.entity[from]
	s.local[to] = s.local[from]
	s.world[to] = s.world[from]
	s.parent[to] = s.parent[from]
	s.firstChild[to] = s.firstChild[from]
	s.prevSibling[to] = s.prevSibling[from]
	s.nextSibling[to] = s.nextSibling[from]
	s.dirty[to] = s.dirty[from]

	s.rows[s.entity[to]] = to
}
