package system

import (
	"time"

	coresys "github.com/l1jgo/scenegraph/internal/core/system"
	"go.uber.org/zap"
)

// Ticker is a per-frame scene mutator, such as the Lua engine.
type Ticker interface {
	Tick(dt time.Duration) error
}

// ScriptSystem drives scene mutation from scripts. A failing tick is logged
// and the frame continues. Phase 2 (Update).
type ScriptSystem struct {
	ticker Ticker
	log    *zap.Logger
	errors int
}

func NewScriptSystem(ticker Ticker, log *zap.Logger) *ScriptSystem {
	return &ScriptSystem{ticker: ticker, log: log}
}

func (s *ScriptSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *ScriptSystem) Update(dt time.Duration) {
	if err := s.ticker.Tick(dt); err != nil {
		s.errors++
		s.log.Error("script tick failed", zap.Int("failures", s.errors), zap.Error(err))
	}
}

// Failures is the number of ticks that returned an error.
func (s *ScriptSystem) Failures() int { return s.errors }
