package scripting

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/l1jgo/scenegraph/internal/core/ecs"
	"github.com/l1jgo/scenegraph/internal/core/scene"
	"github.com/l1jgo/scenegraph/internal/spatial"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

type fixture struct {
	world  *ecs.World
	store  *scene.Store
	labels *ecs.ComponentStore[string]
	grid   *spatial.Grid
	engine *Engine
}

func newFixture(t *testing.T, dir string) *fixture {
	t.Helper()
	f := &fixture{
		world:  ecs.NewWorld(ecs.PoolConfig{ReuseThreshold: 0, MaxSlots: ecs.MaxSlots}),
		store:  scene.NewStore(scene.Options{}),
		labels: ecs.NewComponentStore[string](),
		grid:   spatial.NewGrid(4),
	}
	f.world.Registry().Register(f.store)
	f.world.Registry().Register(f.labels)
	f.world.Registry().Register(f.grid)

	e, err := NewEngine(dir, Bindings{World: f.world, Scene: f.store, Labels: f.labels, Grid: f.grid}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(e.Close)
	f.engine = e
	return f
}

func (f *fixture) global(name string) lua.LValue {
	return f.engine.vm.GetGlobal(name)
}

func (f *fixture) entity(t *testing.T, name string) ecs.Entity {
	t.Helper()
	n, ok := f.global(name).(lua.LNumber)
	require.True(t, ok, "global %s is not a number", name)
	return ecs.Entity(uint32(n))
}

func requireVec(t *testing.T, want, got mgl32.Vec3) {
	t.Helper()
	require.InDeltaSlice(t, want[:], got[:], 1e-4, "want %v got %v", want, got)
}

// requireOrientation compares component-wise with an absolute tolerance and
// accepts q and -q.
func requireOrientation(t *testing.T, want, got mgl32.Quat) {
	t.Helper()
	near := func(q mgl32.Quat) bool {
		v := []float32{want.W - q.W, want.V[0] - q.V[0], want.V[1] - q.V[1], want.V[2] - q.V[2]}
		for _, d := range v {
			if math.Abs(float64(d)) > 1e-4 {
				return false
			}
		}
		return true
	}
	require.True(t, near(got) || near(got.Scale(-1)), "want %v got %v", want, got)
}

func TestSpawnAndLink(t *testing.T) {
	f := newFixture(t, "")
	require.NoError(t, f.engine.DoString(`
		root = scene.spawn("root")
		arm = scene.spawn("arm")
		scene.set_position(root, 10, 0, 0)
		scene.link(arm, root)
		scene.set_position(arm, 0, 2, 0)
	`))

	root, arm := f.entity(t, "root"), f.entity(t, "arm")
	require.Equal(t, 2, f.store.Len())
	name, ok := f.labels.Get(arm)
	require.True(t, ok)
	require.Equal(t, "arm", name)

	p, ok, err := f.store.Parent(arm)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, root, p)

	wp, err := f.store.WorldPosition(arm)
	require.NoError(t, err)
	requireVec(t, mgl32.Vec3{10, 2, 0}, wp)
}

func TestQueries(t *testing.T) {
	f := newFixture(t, "")
	require.NoError(t, f.engine.DoString(`
		a = scene.spawn()
		b = scene.spawn("b")
		c = scene.spawn()
		scene.link(b, a)
		scene.link(c, a)
		kids = scene.children(a)
		nkids = #kids
		first = kids[1]
		orphan = scene.parent(a) == nil
		pb = scene.parent(b)
		la = scene.label(a)
		lb = scene.label(b)
		scene.set_scale(c, 2, 3, 4)
		sx, sy, sz = scene.scale(c)
		scene.set_rotation(c, math.pi / 2, 0, 0, 1)
		qw, qx, qy, qz = scene.rotation(c)
	`))

	require.Equal(t, lua.LNumber(2), f.global("nkids"))
	require.Equal(t, f.entity(t, "b"), f.entity(t, "first"))
	require.Equal(t, lua.LTrue, f.global("orphan"))
	require.Equal(t, f.entity(t, "a"), f.entity(t, "pb"))
	require.Equal(t, lua.LNil, f.global("la"))
	require.Equal(t, lua.LString("b"), f.global("lb"))

	require.InDelta(t, 2, float64(f.global("sx").(lua.LNumber)), 1e-4)
	require.InDelta(t, 3, float64(f.global("sy").(lua.LNumber)), 1e-4)
	require.InDelta(t, 4, float64(f.global("sz").(lua.LNumber)), 1e-4)

	want := mgl32.QuatRotate(mgl32.DegToRad(90), mgl32.Vec3{0, 0, 1})
	got := mgl32.Quat{
		W: float32(f.global("qw").(lua.LNumber)),
		V: mgl32.Vec3{
			float32(f.global("qx").(lua.LNumber)),
			float32(f.global("qy").(lua.LNumber)),
			float32(f.global("qz").(lua.LNumber)),
		},
	}
	requireOrientation(t, want, got)

	sc, err := f.store.LocalScale(f.entity(t, "c"))
	require.NoError(t, err)
	requireVec(t, mgl32.Vec3{2, 3, 4}, sc)
}

func TestWorldWritesFromLua(t *testing.T) {
	f := newFixture(t, "")
	require.NoError(t, f.engine.DoString(`
		e = scene.spawn()
		scene.set_world_position(e, 1, 2, 3)
		x, y, z = scene.world_position(e)
		scene.set_world_rotation(e, 0.5, 0, 1, 0)
	`))
	require.Equal(t, lua.LNumber(1), f.global("x"))
	require.Equal(t, lua.LNumber(2), f.global("y"))
	require.Equal(t, lua.LNumber(3), f.global("z"))

	q, err := f.store.WorldRotation(f.entity(t, "e"))
	require.NoError(t, err)
	want := mgl32.QuatRotate(0.5, mgl32.Vec3{0, 1, 0})
	requireOrientation(t, want, q)
}

func TestErrorsSurfaceAsLuaErrors(t *testing.T) {
	f := newFixture(t, "")
	require.NoError(t, f.engine.DoString(`
		a = scene.spawn()
		b = scene.spawn()
		scene.link(b, a)
	`))

	err := f.engine.DoString(`scene.link(a, b)`)
	require.Error(t, err)
	require.Contains(t, err.Error(), scene.ErrCyclicLink.Error())

	err = f.engine.DoString(`scene.set_rotation(a, 1, 0, 0, 0)`)
	require.Error(t, err)
	require.Contains(t, err.Error(), "zero length")

	err = f.engine.DoString(`scene.set_position(a, 1, 2)`)
	require.Error(t, err)
}

func TestDestroyIsDeferred(t *testing.T) {
	f := newFixture(t, "")
	require.NoError(t, f.engine.DoString(`
		e = scene.spawn("doomed")
		scene.destroy(e)
		still = scene.alive(e)
	`))
	require.Equal(t, lua.LTrue, f.global("still"))
	require.Equal(t, 1, f.world.Pending())

	destroyed := f.world.FlushDestroyQueue()
	require.Len(t, destroyed, 1)
	require.Equal(t, 0, f.store.Len())
	require.Equal(t, 0, f.labels.Len())

	require.NoError(t, f.engine.DoString(`gone = not scene.alive(e)`))
	require.Equal(t, lua.LTrue, f.global("gone"))

	err := f.engine.DoString(`scene.set_position(e, 1, 1, 1)`)
	require.Error(t, err)
	require.Contains(t, err.Error(), ecs.ErrStaleHandle.Error())
}

func TestHooksAndScriptDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "lib"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "lib", "util.lua"), []byte(`
		function advance(e, dx)
			local x, y, z = scene.position(e)
			scene.set_position(e, x + dx, y, z)
		end
	`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.lua"), []byte(`
		function on_start()
			mover = scene.spawn("mover")
		end
		function on_tick(dt)
			advance(mover, dt * 10)
		end
	`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.txt"), []byte("not lua"), 0o644))

	f := newFixture(t, dir)
	require.NoError(t, f.engine.Start())
	require.NoError(t, f.engine.Tick(100*time.Millisecond))
	require.NoError(t, f.engine.Tick(100*time.Millisecond))

	p, err := f.store.LocalPosition(f.entity(t, "mover"))
	require.NoError(t, err)
	requireVec(t, mgl32.Vec3{2, 0, 0}, p)
}

func TestMissingHooksAreIgnored(t *testing.T) {
	f := newFixture(t, filepath.Join(t.TempDir(), "absent"))
	require.NoError(t, f.engine.Start())
	require.NoError(t, f.engine.Tick(time.Millisecond))
	require.Equal(t, lua.LNumber(APIVersion), f.global("API_VERSION"))
}

func TestTickErrorIsReturned(t *testing.T) {
	f := newFixture(t, "")
	require.NoError(t, f.engine.DoString(`function on_tick(dt) error("boom") end`))
	err := f.engine.Tick(time.Millisecond)
	require.Error(t, err)
	require.Contains(t, err.Error(), "boom")
	require.Contains(t, err.Error(), "on_tick")
}

func TestNearby(t *testing.T) {
	f := newFixture(t, "")
	f.grid.Update(3, mgl32.Vec3{1, 0, 0})
	f.grid.Update(9, mgl32.Vec3{50, 0, 0})
	require.NoError(t, f.engine.DoString(`
		found = scene.nearby(0, 0, 0, 2)
		count = #found
		first = found[1]
	`))
	require.Equal(t, lua.LNumber(1), f.global("count"))
	require.Equal(t, lua.LNumber(3), f.global("first"))
}

func TestNearbyWithoutGrid(t *testing.T) {
	e, err := NewEngine("", Bindings{
		World:  ecs.NewWorld(ecs.PoolConfig{MaxSlots: ecs.MaxSlots}),
		Scene:  scene.NewStore(scene.Options{}),
		Labels: ecs.NewComponentStore[string](),
	}, zap.NewNop())
	require.NoError(t, err)
	defer e.Close()
	err = e.DoString(`scene.nearby(0, 0, 0, 1)`)
	require.Error(t, err)
	require.Contains(t, err.Error(), "not enabled")
}

func TestBadScriptFailsLoad(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.lua"), []byte(`this is not lua`), 0o644))
	_, err := NewEngine(dir, Bindings{
		World:  ecs.NewWorld(ecs.PoolConfig{MaxSlots: ecs.MaxSlots}),
		Scene:  scene.NewStore(scene.Options{}),
		Labels: ecs.NewComponentStore[string](),
	}, zap.NewNop())
	require.Error(t, err)
	require.Contains(t, err.Error(), "broken.lua")
}
