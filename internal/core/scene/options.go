package scene

import "fmt"

// WorldWriteMode selects what SetWorldPosition and SetWorldRotation do.
type WorldWriteMode uint8

const (
	// WorldWriteDirect overwrites the world matrix only. Local is left
	// stale, descendants are not recomputed and nothing is marked dirty.
	// Callers that own their hierarchy invariants use this as a fast path.
	WorldWriteDirect WorldWriteMode = iota
	// WorldWriteDerive solves local from the requested world pose through
	// the inverse parent world matrix, then applies it like a local write.
	WorldWriteDerive
)

func (m WorldWriteMode) String() string {
	switch m {
	case WorldWriteDirect:
		return "direct"
	case WorldWriteDerive:
		return "derive"
	}
	return fmt.Sprintf("WorldWriteMode(%d)", uint8(m))
}

func ParseWorldWriteMode(s string) (WorldWriteMode, error) {
	switch s {
	case "", "direct":
		return WorldWriteDirect, nil
	case "derive":
		return WorldWriteDerive, nil
	}
	return 0, fmt.Errorf("world write mode %q: %w", s, ErrUnknownMode)
}

// DirtyScope selects which nodes a propagation pass marks dirty.
type DirtyScope uint8

const (
	// DirtyDirect flags only the node that was the target of Apply or Link.
	DirtyDirect DirtyScope = iota
	// DirtySubtree also flags every descendant whose world matrix was
	// recomputed.
	DirtySubtree
)

func (d DirtyScope) String() string {
	switch d {
	case DirtyDirect:
		return "direct"
	case DirtySubtree:
		return "subtree"
	}
	return fmt.Sprintf("DirtyScope(%d)", uint8(d))
}

func ParseDirtyScope(s string) (DirtyScope, error) {
	switch s {
	case "", "direct":
		return DirtyDirect, nil
	case "subtree":
		return DirtySubtree, nil
	}
	return 0, fmt.Errorf("dirty scope %q: %w", s, ErrUnknownMode)
}

// Options configures a Store.
type Options struct {
	InitialCapacity int
	WorldWrites     WorldWriteMode
	DirtyScope      DirtyScope
}
