package spatial

import (
	"math"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/l1jgo/scenegraph/internal/core/ecs"
	"github.com/stretchr/testify/require"
)

func TestNearbyFiltersByDistance(t *testing.T) {
	g := NewGrid(10)
	g.Update(1, mgl32.Vec3{0, 0, 0})
	g.Update(2, mgl32.Vec3{4, 3, 0})  // distance 5
	g.Update(3, mgl32.Vec3{9, 9, 9})  // same neighbourhood, too far
	g.Update(4, mgl32.Vec3{-5, 0, 0}) // negative cell

	require.Equal(t, []ecs.Entity{1, 2, 4}, g.Nearby(mgl32.Vec3{}, 5))
	require.Equal(t, []ecs.Entity{1}, g.Nearby(mgl32.Vec3{}, 0))
	require.Nil(t, g.Nearby(mgl32.Vec3{}, -1))
	require.Equal(t, 4, g.Len())
}

func TestUpdateMovesBetweenCells(t *testing.T) {
	g := NewGrid(10)
	g.Update(7, mgl32.Vec3{1, 1, 1})
	g.Update(7, mgl32.Vec3{2, 2, 2}) // same cell
	require.Len(t, g.cells, 1)

	g.Update(7, mgl32.Vec3{101, 0, 0})
	require.Len(t, g.cells, 1, "empty cells are dropped")
	require.Empty(t, g.Nearby(mgl32.Vec3{1, 1, 1}, 5))
	require.Equal(t, []ecs.Entity{7}, g.Nearby(mgl32.Vec3{100, 0, 0}, 2))

	p, ok := g.Position(7)
	require.True(t, ok)
	require.Equal(t, mgl32.Vec3{101, 0, 0}, p)
}

func TestRemove(t *testing.T) {
	g := NewGrid(0)
	require.Equal(t, float32(DefaultCellSize), g.size)

	g.Update(1, mgl32.Vec3{})
	g.Remove(1)
	g.Remove(1)
	g.Remove(99)
	require.Equal(t, 0, g.Len())
	require.Empty(t, g.cells)
	_, ok := g.Position(1)
	require.False(t, ok)
}

func TestLargeRadiusSpansCells(t *testing.T) {
	g := NewGrid(1)
	for i := 0; i < 50; i++ {
		g.Update(ecs.Entity(i), mgl32.Vec3{float32(i), 0, 0})
	}
	require.Len(t, g.Nearby(mgl32.Vec3{25, 0, 0}, 10), 21)
}

func TestHugeRadiusScansPositions(t *testing.T) {
	g := NewGrid(1)
	g.Update(1, mgl32.Vec3{3, 4, 0})
	g.Update(2, mgl32.Vec3{-2e4, 0, 0})

	done := make(chan []ecs.Entity, 1)
	go func() { done <- g.Nearby(mgl32.Vec3{}, 1e5) }()
	select {
	case got := <-done:
		require.Equal(t, []ecs.Entity{1, 2}, got)
	case <-time.After(2 * time.Second):
		t.Fatal("query did not return")
	}
	require.Equal(t, []ecs.Entity{1}, g.Nearby(mgl32.Vec3{}, 1e3))
}

func TestNonFiniteQueriesMatchNothing(t *testing.T) {
	g := NewGrid(8)
	g.Update(1, mgl32.Vec3{})
	nan := float32(math.NaN())
	inf := float32(math.Inf(1))

	require.Nil(t, g.Nearby(mgl32.Vec3{}, nan))
	require.Nil(t, g.Nearby(mgl32.Vec3{}, inf))
	require.Nil(t, g.Nearby(mgl32.Vec3{nan, 0, 0}, 1))
	require.Nil(t, g.Nearby(mgl32.Vec3{0, inf, 0}, 1))
}

func TestFarPositionsClampToEdgeCells(t *testing.T) {
	g := NewGrid(1)
	far := mgl32.Vec3{3e38, -3e38, 0}
	g.Update(1, far)
	for i := 2; i < 40; i++ {
		g.Update(ecs.Entity(i), mgl32.Vec3{float32(i), 0, 0})
	}
	require.Equal(t, []ecs.Entity{1}, g.Nearby(far, 0.5))
	require.Equal(t, []ecs.Entity{2}, g.Nearby(mgl32.Vec3{2, 0, 0}, 0.4))
	require.Len(t, g.Nearby(mgl32.Vec3{20, 0, 0}, 1.5), 3)
}
