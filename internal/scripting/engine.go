package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/l1jgo/scenegraph/internal/core/ecs"
	"github.com/l1jgo/scenegraph/internal/core/scene"
	"github.com/l1jgo/scenegraph/internal/spatial"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// APIVersion is exposed to scripts as the API_VERSION global.
const APIVersion = 1

// Bindings are the stores a script may mutate. Grid is optional.
type Bindings struct {
	World  *ecs.World
	Scene  *scene.Store
	Labels *ecs.ComponentStore[string]
	Grid   *spatial.Grid
}

// Engine wraps a single gopher-lua VM that builds and animates the scene.
// Scripts see a global `scene` table (see bindings.go) and may define
// on_start() and on_tick(dt_seconds). Single-goroutine access only: the
// engine runs inside the frame's mutation phase.
type Engine struct {
	vm     *lua.LState
	log    *zap.Logger
	world  *ecs.World
	scene  *scene.Store
	labels *ecs.ComponentStore[string]
	grid   *spatial.Grid
}

// NewEngine creates a Lua engine bound to b and loads every script under
// scriptsDir/lib and then scriptsDir. A missing directory loads nothing.
func NewEngine(scriptsDir string, b Bindings, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})
	vm.SetGlobal("API_VERSION", lua.LNumber(APIVersion))

	e := &Engine{
		vm:     vm,
		log:    log,
		world:  b.World,
		scene:  b.Scene,
		labels: b.Labels,
		grid:   b.Grid,
	}
	e.register()

	if scriptsDir == "" {
		return e, nil
	}
	for _, dir := range []string{filepath.Join(scriptsDir, "lib"), scriptsDir} {
		if err := e.loadDir(dir); err != nil {
			vm.Close()
			return nil, fmt.Errorf("load scripts: %w", err)
		}
	}
	return e, nil
}

// loadDir loads all .lua files in a directory in name order.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// DoString runs a chunk of Lua in the engine's VM.
func (e *Engine) DoString(src string) error {
	return e.vm.DoString(src)
}

// Start calls on_start once, if the scripts define it.
func (e *Engine) Start() error {
	return e.call("on_start")
}

// Tick calls on_tick(dt) with dt in seconds, if the scripts define it.
func (e *Engine) Tick(dt time.Duration) error {
	return e.call("on_tick", lua.LNumber(dt.Seconds()))
}

func (e *Engine) call(name string, args ...lua.LValue) error {
	fn := e.vm.GetGlobal(name)
	if fn == lua.LNil {
		return nil
	}
	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    0,
		Protect: true,
	}, args...); err != nil {
		return fmt.Errorf("lua %s: %w", name, err)
	}
	return nil
}

// Close releases the Lua VM.
func (e *Engine) Close() {
	e.vm.Close()
}
