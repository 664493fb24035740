package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/l1jgo/scenegraph/internal/config"
	"github.com/l1jgo/scenegraph/internal/core/ecs"
	"github.com/l1jgo/scenegraph/internal/core/event"
	"github.com/l1jgo/scenegraph/internal/core/scene"
	coresys "github.com/l1jgo/scenegraph/internal/core/system"
	"github.com/l1jgo/scenegraph/internal/persist"
	"github.com/l1jgo/scenegraph/internal/scripting"
	"github.com/l1jgo/scenegraph/internal/spatial"
	"github.com/l1jgo/scenegraph/internal/system"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner() {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m              scenegraph  v0.1.0           \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
}

func printSection(title string) {
	lineLen := 46 - len(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, value any) {
	s := fmt.Sprint(value)
	dotsLen := 42 - len(label) - len(s)
	if dotsLen < 3 {
		dotsLen = 3
	}
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), s)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

// ── Main loop ──────────────────────────────────────────────────────

func run() error {
	// 1. Load config
	cfgPath := "config/scenegraph.toml"
	if p := os.Getenv("SCENEGRAPH_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	printBanner()

	// 3. Scene
	printSection("scene")
	world := ecs.NewWorld(cfg.Scene.PoolConfig())
	store := scene.NewStore(cfg.Scene.StoreOptions())
	labels := ecs.NewComponentStore[string]()
	world.Registry().Register(store)
	world.Registry().Register(labels)
	grid := spatial.NewGrid(cfg.Spatial.CellSize)
	world.Registry().Register(grid)
	bus := event.NewBus()
	printStat("world writes", store.WorldWrites())
	printStat("dirty scope", store.DirtyScope())
	printStat("reuse threshold", cfg.Scene.ReuseThreshold)

	runner := coresys.NewRunner()
	runner.Register(system.NewEventDispatchSystem(bus))

	// 4. Scripts
	if cfg.Scripting.Enabled {
		engine, err := scripting.NewEngine(cfg.Scripting.Dir, scripting.Bindings{
			World:  world,
			Scene:  store,
			Labels: labels,
			Grid:   grid,
		}, log)
		if err != nil {
			return fmt.Errorf("scripting: %w", err)
		}
		defer engine.Close()
		if err := engine.Start(); err != nil {
			return fmt.Errorf("scripting: %w", err)
		}
		runner.Register(system.NewScriptSystem(engine, log))
		printStat("transforms after on_start", store.Len())
	}

	changes := system.NewChangeSetSystem(store, bus, log)
	runner.Register(changes)
	runner.Register(system.NewSpatialIndexSystem(changes, grid))

	// 5. Journal
	if cfg.Journal.Enabled {
		printSection("journal")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		db, err := persist.NewDB(ctx, cfg.Journal, log)
		if err != nil {
			return fmt.Errorf("journal database: %w", err)
		}
		defer db.Close()
		if err := persist.RunMigrations(ctx, db.Pool); err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
		repo := persist.NewJournalRepo(db, uuid.New())
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), cfg.Journal.WriteTimeout)
			defer cancel()
			n, err := repo.Frames(ctx)
			if err != nil {
				log.Warn("journal frame count unavailable", zap.Error(err))
				return
			}
			log.Info("journal session closed", zap.Stringer("session", repo.Session()), zap.Int64("frames", n))
		}()
		runner.Register(system.NewJournalSystem(changes, repo, cfg.Journal.WriteTimeout, log))
		printOK("PostgreSQL connected, migrations applied")
		printStat("session", repo.Session())
	}

	runner.Register(system.NewCleanupSystem(world, bus, log))
	runner.Register(system.NewResetSystem(store))

	event.Subscribe(bus, func(ev event.EntitiesDestroyed) {
		log.Debug("destroyed", zap.Uint64("frame", ev.Frame), zap.Int("count", len(ev.Entities)))
	})

	// 6. Frame loop
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.Loop.TickRate)
	defer ticker.Stop()

	printSection("running")
	fmt.Println()
	log.Info("frame loop started", zap.Duration("tick", cfg.Loop.TickRate), zap.Uint64("frames", cfg.Loop.Frames))

	for {
		select {
		case <-ticker.C:
			runner.Tick(cfg.Loop.TickRate)
			if st := runner.Stats(); st.Total() > cfg.Loop.TickRate {
				phase, d := st.Slowest()
				log.Warn("frame overran tick",
					zap.Uint64("frame", st.Frame),
					zap.Duration("took", st.Total()),
					zap.Stringer("slowest", phase),
					zap.Duration("phase_took", d))
			}
			if cfg.Loop.Frames > 0 && runner.Frames() >= cfg.Loop.Frames {
				log.Info("frame limit reached",
					zap.Uint64("frames", runner.Frames()),
					zap.Int("transforms", store.Len()))
				return nil
			}
		case sig := <-shutdownCh:
			log.Info("shutdown signal received",
				zap.String("signal", sig.String()),
				zap.Uint64("frames", runner.Frames()))
			return nil
		}
	}
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
