// Package spatial buckets entities by world position so scripts and
// consumers can ask what is near a point without scanning the scene.
package spatial

import (
	"math"
	"slices"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/l1jgo/scenegraph/internal/core/ecs"
)

// DefaultCellSize is the edge length of a grid cell in world units.
const DefaultCellSize = 16

type cell struct {
	x, y, z int32
}

// Grid is a sparse uniform 3D grid. Only entities whose transform has been
// reported through Update are indexed. Accessed only from the frame
// goroutine, no locks.
type Grid struct {
	size  float32
	cells map[cell]map[ecs.Entity]struct{}
	where map[ecs.Entity]cell
	pos   map[ecs.Entity]mgl32.Vec3
}

func NewGrid(cellSize float32) *Grid {
	if cellSize <= 0 {
		cellSize = DefaultCellSize
	}
	return &Grid{
		size:  cellSize,
		cells: make(map[cell]map[ecs.Entity]struct{}),
		where: make(map[ecs.Entity]cell),
		pos:   make(map[ecs.Entity]mgl32.Vec3),
	}
}

func (g *Grid) cellOf(p mgl32.Vec3) cell {
	return cell{x: g.coord(p[0]), y: g.coord(p[1]), z: g.coord(p[2])}
}

// coord clamps to the int32 range; NaN lands in cell 0.
func (g *Grid) coord(v float32) int32 {
	c := math.Floor(float64(v) / float64(g.size))
	switch {
	case math.IsNaN(c):
		return 0
	case c <= math.MinInt32:
		return math.MinInt32
	case c >= math.MaxInt32:
		return math.MaxInt32
	}
	return int32(c)
}

// Update places e at p, moving it between cells when needed.
func (g *Grid) Update(e ecs.Entity, p mgl32.Vec3) {
	g.pos[e] = p
	k := g.cellOf(p)
	if old, ok := g.where[e]; ok {
		if old == k {
			return
		}
		g.unlink(e, old)
	}
	c := g.cells[k]
	if c == nil {
		c = make(map[ecs.Entity]struct{})
		g.cells[k] = c
	}
	c[e] = struct{}{}
	g.where[e] = k
}

// Remove drops e from the grid. It satisfies ecs.Removable so destroyed
// entities leave the index when the destroy queue is flushed.
func (g *Grid) Remove(e ecs.Entity) {
	k, ok := g.where[e]
	if !ok {
		return
	}
	g.unlink(e, k)
	delete(g.where, e)
	delete(g.pos, e)
}

func (g *Grid) unlink(e ecs.Entity, k cell) {
	c := g.cells[k]
	delete(c, e)
	if len(c) == 0 {
		delete(g.cells, k)
	}
}

// Position reports the last indexed position of e.
func (g *Grid) Position(e ecs.Entity) (mgl32.Vec3, bool) {
	p, ok := g.pos[e]
	return p, ok
}

// Len is the number of indexed entities.
func (g *Grid) Len() int { return len(g.where) }

// Nearby returns the entities within radius of p, sorted by handle. A
// negative or non-finite radius or point matches nothing. When the query
// spans more cells than there are indexed entities, positions are scanned
// directly instead of walking empty cells.
func (g *Grid) Nearby(p mgl32.Vec3, radius float32) []ecs.Entity {
	if radius < 0 || !finite(radius) || !finite(p[0]) || !finite(p[1]) || !finite(p[2]) {
		return nil
	}
	r2 := radius * radius
	var result []ecs.Entity

	span := math.Floor(float64(2*radius/g.size)) + 2
	if span*span*span > float64(len(g.where)) {
		for e, q := range g.pos {
			if d := q.Sub(p); d.Dot(d) <= r2 {
				result = append(result, e)
			}
		}
		slices.Sort(result)
		return result
	}

	lo := g.cellOf(p.Sub(mgl32.Vec3{radius, radius, radius}))
	hi := g.cellOf(p.Add(mgl32.Vec3{radius, radius, radius}))
	for x := int64(lo.x); x <= int64(hi.x); x++ {
		for y := int64(lo.y); y <= int64(hi.y); y++ {
			for z := int64(lo.z); z <= int64(hi.z); z++ {
				for e := range g.cells[cell{int32(x), int32(y), int32(z)}] {
					if d := g.pos[e].Sub(p); d.Dot(d) <= r2 {
						result = append(result, e)
					}
				}
			}
		}
	}
	slices.Sort(result)
	return result
}

func finite(v float32) bool {
	f := float64(v)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
