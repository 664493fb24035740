package scripting

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/l1jgo/scenegraph/internal/core/ecs"
	lua "github.com/yuin/gopher-lua"
)

// register installs the `scene` table. Entities cross into Lua as plain
// numbers; every function that takes one rejects stale handles.
//
//	scene.spawn([label]) -> e          scene.destroy(e)
//	scene.alive(e) -> bool             scene.label(e) -> string|nil
//	scene.link(child, parent)          scene.unlink(e)
//	scene.parent(e) -> e|nil           scene.children(e) -> {e...}
//	scene.set_position(e, x, y, z)     scene.position(e) -> x, y, z
//	scene.set_rotation(e, rad, ax, ay, az)
//	scene.rotation(e) -> w, x, y, z
//	scene.set_scale(e, x, y, z)        scene.scale(e) -> x, y, z
//	scene.set_world_position(e, x, y, z)
//	scene.world_position(e) -> x, y, z
//	scene.set_world_rotation(e, rad, ax, ay, az)
//	scene.nearby(x, y, z, radius) -> {e...}
func (e *Engine) register() {
	tbl := e.vm.SetFuncs(e.vm.NewTable(), map[string]lua.LGFunction{
		"spawn":              e.spawn,
		"destroy":            e.destroy,
		"alive":              e.alive,
		"label":              e.label,
		"link":               e.link,
		"unlink":             e.unlink,
		"parent":             e.parent,
		"children":           e.children,
		"set_position":       e.setPosition,
		"position":           e.position,
		"set_rotation":       e.setRotation,
		"rotation":           e.rotation,
		"set_scale":          e.setScale,
		"scale":              e.scale,
		"set_world_position": e.setWorldPosition,
		"world_position":     e.worldPosition,
		"set_world_rotation": e.setWorldRotation,
		"nearby":             e.nearby,
	})
	e.vm.SetGlobal("scene", tbl)
}

func (e *Engine) spawn(L *lua.LState) int {
	label := L.OptString(1, "")
	ent := e.world.CreateEntity()
	if ent.IsNil() {
		L.RaiseError("spawn: entity slots exhausted")
		return 0
	}
	if _, err := e.scene.CreateTransform(ent); err != nil {
		raise(L, err)
	}
	if label != "" {
		e.labels.Set(ent, label)
	}
	L.Push(lua.LNumber(ent))
	return 1
}

func (e *Engine) destroy(L *lua.LState) int {
	e.world.MarkForDestruction(e.checkEntity(L, 1))
	return 0
}

func (e *Engine) alive(L *lua.LState) int {
	L.Push(lua.LBool(e.world.Alive(ecs.Entity(uint32(L.CheckNumber(1))))))
	return 1
}

func (e *Engine) label(L *lua.LState) int {
	if name, ok := e.labels.Get(e.checkEntity(L, 1)); ok {
		L.Push(lua.LString(name))
	} else {
		L.Push(lua.LNil)
	}
	return 1
}

func (e *Engine) link(L *lua.LState) int {
	child := e.checkEntity(L, 1)
	parent := e.checkEntity(L, 2)
	raise(L, e.scene.Link(child, parent))
	return 0
}

func (e *Engine) unlink(L *lua.LState) int {
	raise(L, e.scene.Unlink(e.checkEntity(L, 1)))
	return 0
}

func (e *Engine) parent(L *lua.LState) int {
	p, ok, err := e.scene.Parent(e.checkEntity(L, 1))
	raise(L, err)
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(lua.LNumber(p))
	return 1
}

func (e *Engine) children(L *lua.LState) int {
	kids, err := e.scene.Children(e.checkEntity(L, 1))
	raise(L, err)
	t := L.CreateTable(len(kids), 0)
	for _, k := range kids {
		t.Append(lua.LNumber(k))
	}
	L.Push(t)
	return 1
}

func (e *Engine) setPosition(L *lua.LState) int {
	ent := e.checkEntity(L, 1)
	raise(L, e.scene.SetLocalPosition(ent, checkVec3(L, 2)))
	return 0
}

func (e *Engine) position(L *lua.LState) int {
	v, err := e.scene.LocalPosition(e.checkEntity(L, 1))
	raise(L, err)
	return pushVec3(L, v)
}

func (e *Engine) setRotation(L *lua.LState) int {
	ent := e.checkEntity(L, 1)
	raise(L, e.scene.SetLocalRotation(ent, checkAxisAngle(L, 2)))
	return 0
}

func (e *Engine) rotation(L *lua.LState) int {
	q, err := e.scene.LocalRotation(e.checkEntity(L, 1))
	raise(L, err)
	L.Push(lua.LNumber(q.W))
	pushVec3(L, q.V)
	return 4
}

func (e *Engine) setScale(L *lua.LState) int {
	ent := e.checkEntity(L, 1)
	raise(L, e.scene.SetLocalScale(ent, checkVec3(L, 2)))
	return 0
}

func (e *Engine) scale(L *lua.LState) int {
	v, err := e.scene.LocalScale(e.checkEntity(L, 1))
	raise(L, err)
	return pushVec3(L, v)
}

func (e *Engine) setWorldPosition(L *lua.LState) int {
	ent := e.checkEntity(L, 1)
	raise(L, e.scene.SetWorldPosition(ent, checkVec3(L, 2)))
	return 0
}

func (e *Engine) worldPosition(L *lua.LState) int {
	v, err := e.scene.WorldPosition(e.checkEntity(L, 1))
	raise(L, err)
	return pushVec3(L, v)
}

func (e *Engine) setWorldRotation(L *lua.LState) int {
	ent := e.checkEntity(L, 1)
	raise(L, e.scene.SetWorldRotation(ent, checkAxisAngle(L, 2)))
	return 0
}

func (e *Engine) nearby(L *lua.LState) int {
	if e.grid == nil {
		L.RaiseError("nearby: spatial index is not enabled")
		return 0
	}
	p := checkVec3(L, 1)
	found := e.grid.Nearby(p, float32(L.CheckNumber(4)))
	t := L.CreateTable(len(found), 0)
	for _, ent := range found {
		t.Append(lua.LNumber(ent))
	}
	L.Push(t)
	return 1
}

func (e *Engine) checkEntity(L *lua.LState, n int) ecs.Entity {
	ent := ecs.Entity(uint32(L.CheckNumber(n)))
	if err := e.world.Check(ent); err != nil {
		L.ArgError(n, err.Error())
	}
	return ent
}

func raise(L *lua.LState, err error) {
	if err != nil {
		L.RaiseError("%s", err.Error())
	}
}

func checkVec3(L *lua.LState, n int) mgl32.Vec3 {
	return mgl32.Vec3{
		float32(L.CheckNumber(n)),
		float32(L.CheckNumber(n + 1)),
		float32(L.CheckNumber(n + 2)),
	}
}

func checkAxisAngle(L *lua.LState, n int) mgl32.Quat {
	angle := float32(L.CheckNumber(n))
	axis := checkVec3(L, n+1)
	if axis.Len() == 0 {
		L.ArgError(n+1, "rotation axis has zero length")
	}
	return mgl32.QuatRotate(angle, axis.Normalize())
}

func pushVec3(L *lua.LState, v mgl32.Vec3) int {
	L.Push(lua.LNumber(v[0]))
	L.Push(lua.LNumber(v[1]))
	L.Push(lua.LNumber(v[2]))
	return 3
}
