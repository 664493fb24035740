// Profiling:
// go build ./cmd/sceneprof
// ./sceneprof -mode cpu
// go tool pprof -http=":8000" -nodefraction=0.001 ./sceneprof cpu.pprof

package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/l1jgo/scenegraph/internal/core/ecs"
	"github.com/l1jgo/scenegraph/internal/core/scene"
	"github.com/pkg/profile"
)

func main() {
	mode := flag.String("mode", "mem", "profile kind: cpu or mem")
	rounds := flag.Int("rounds", 20, "fresh scenes to build")
	iters := flag.Int("iters", 200, "frames per scene")
	fanout := flag.Int("fanout", 8, "children per node")
	depth := flag.Int("depth", 4, "hierarchy depth")
	flag.Parse()

	opts := []func(*profile.Profile){profile.ProfilePath("."), profile.NoShutdownHook}
	switch *mode {
	case "cpu":
		opts = append(opts, profile.CPUProfile)
	case "mem":
		opts = append(opts, profile.MemProfileAllocs)
	default:
		fmt.Fprintf(os.Stderr, "unknown mode %q\n", *mode)
		os.Exit(2)
	}
	p := profile.Start(opts...)
	n := run(*rounds, *iters, *fanout, *depth)
	p.Stop()
	fmt.Printf("%d transforms per scene\n", n)
}

// run builds a tree, then each frame moves the root, rotates every leaf,
// drains the dirty set and churns one leaf through destroy and recreate.
func run(rounds, iters, fanout, depth int) int {
	var size int
	for range rounds {
		w := ecs.NewWorld(ecs.PoolConfig{ReuseThreshold: ecs.DefaultReuseThreshold, MaxSlots: ecs.MaxSlots})
		s := scene.NewStore(scene.Options{InitialCapacity: 4096, DirtyScope: scene.DirtySubtree})
		w.Registry().Register(s)

		root := spawn(w, s)
		leaves := grow(w, s, []ecs.Entity{root}, fanout, depth)
		size = s.Len()

		var (
			entities []ecs.Entity
			worlds   []mgl32.Mat4
		)
		for i := range iters {
			angle := float32(i) * 0.01
			must(s.SetLocalPosition(root, mgl32.Vec3{angle, 0, 0}))
			q := mgl32.QuatRotate(angle, mgl32.Vec3{0, 1, 0})
			for _, leaf := range leaves {
				must(s.SetLocalRotation(leaf, q))
			}
			entities, worlds = s.Dirty(entities[:0], worlds[:0])

			victim := i % len(leaves)
			parent, _, err := s.Parent(leaves[victim])
			must(err)
			w.MarkForDestruction(leaves[victim])
			w.FlushDestroyQueue()
			leaves[victim] = spawn(w, s)
			must(s.Link(leaves[victim], parent))

			s.Reset()
		}
	}
	return size
}

func grow(w *ecs.World, s *scene.Store, level []ecs.Entity, fanout, depth int) []ecs.Entity {
	for d := 0; d < depth; d++ {
		next := make([]ecs.Entity, 0, len(level)*fanout)
		for _, parent := range level {
			for i := 0; i < fanout; i++ {
				child := spawn(w, s)
				must(s.SetLocalPosition(child, mgl32.Vec3{float32(i), 1, 0}))
				must(s.Link(child, parent))
				next = append(next, child)
			}
		}
		level = next
	}
	return level
}

func spawn(w *ecs.World, s *scene.Store) ecs.Entity {
	e := w.CreateEntity()
	_, err := s.CreateTransform(e)
	must(err)
	return e
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}
