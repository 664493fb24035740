package scene

import (
	"errors"
	"fmt"
)

// ErrCorrupt is returned by Validate when a structural invariant is broken.
var ErrCorrupt = errors.New("transform store corrupt")

// Validate checks the structural invariants of the store: equal row
// lengths, a consistent entity map, in-range links, doubly linked sibling
// lists whose members all name the same parent, and an acyclic forest.
// World matrices are not compared because direct world writes leave them
// intentionally out of step with local.
func (s *Store) Validate() error {
	n := len(s.entity)
	for _, l := range []int{len(s.local), len(s.world), len(s.parent), len(s.firstChild),
		len(s.prevSibling), len(s.nextSibling), len(s.dirty)} {
		if l != n {
			return fmt.Errorf("row length %d, want %d: %w", l, n, ErrCorrupt)
		}
	}
	if len(s.rows) != n {
		return fmt.Errorf("map holds %d entities for %d rows: %w", len(s.rows), n, ErrCorrupt)
	}
	inRange := func(i Index) bool { return i == None || int64(i) < int64(n) }

	for i := 0; i < n; i++ {
		t := Index(i)
		if got, ok := s.rows[s.entity[t]]; !ok || got != t {
			return fmt.Errorf("row %d owner %s maps to %d: %w", t, s.entity[t], got, ErrCorrupt)
		}
		if !inRange(s.parent[t]) || !inRange(s.firstChild[t]) ||
			!inRange(s.prevSibling[t]) || !inRange(s.nextSibling[t]) {
			return fmt.Errorf("row %d has a dangling link: %w", t, ErrCorrupt)
		}
		p := s.parent[t]
		if p == None && (s.prevSibling[t] != None || s.nextSibling[t] != None) {
			return fmt.Errorf("root %d has siblings: %w", t, ErrCorrupt)
		}
		if prev := s.prevSibling[t]; prev != None && s.nextSibling[prev] != t {
			return fmt.Errorf("row %d prev/next mismatch: %w", t, ErrCorrupt)
		}
		if next := s.nextSibling[t]; next != None && s.prevSibling[next] != t {
			return fmt.Errorf("row %d next/prev mismatch: %w", t, ErrCorrupt)
		}
		if p != None && s.prevSibling[t] == None && s.firstChild[p] != t {
			return fmt.Errorf("row %d is unreachable from parent %d: %w", t, p, ErrCorrupt)
		}
		for c, steps := s.firstChild[t], 0; c != None; c, steps = s.nextSibling[c], steps+1 {
			if steps >= n || s.parent[c] != t {
				return fmt.Errorf("child list of row %d is broken: %w", t, ErrCorrupt)
			}
		}
		if p != None && s.descendsFrom(p, t) {
			return fmt.Errorf("row %d is its own ancestor: %w", t, ErrCorrupt)
		}
	}
	return nil
}
