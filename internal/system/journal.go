package system

import (
	"context"
	"time"

	"github.com/l1jgo/scenegraph/internal/core/event"
	coresys "github.com/l1jgo/scenegraph/internal/core/system"
	"go.uber.org/zap"
)

// ChangeSource exposes the change set drained this frame.
type ChangeSource interface {
	Last() event.TransformsChanged
}

// JournalWriter persists one change set.
type JournalWriter interface {
	WriteFrame(ctx context.Context, cs event.TransformsChanged) error
}

// JournalSystem writes each non-empty change set to the journal before the
// frame is closed. Write failures are logged and the frame is skipped.
// Phase 5 (Persist).
type JournalSystem struct {
	source  ChangeSource
	writer  JournalWriter
	timeout time.Duration
	log     *zap.Logger

	lastFrame uint64
	written   int
	failed    int
}

func NewJournalSystem(source ChangeSource, writer JournalWriter, timeout time.Duration, log *zap.Logger) *JournalSystem {
	return &JournalSystem{source: source, writer: writer, timeout: timeout, log: log}
}

func (s *JournalSystem) Phase() coresys.Phase { return coresys.PhasePersist }

func (s *JournalSystem) Update(_ time.Duration) {
	cs := s.source.Last()
	if cs.Len() == 0 || cs.Frame == s.lastFrame {
		return
	}
	s.lastFrame = cs.Frame

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	if err := s.writer.WriteFrame(ctx, cs); err != nil {
		s.failed++
		s.log.Error("journal write failed",
			zap.Uint64("frame", cs.Frame), zap.Int("count", cs.Len()), zap.Error(err))
		return
	}
	s.written++
}

// Written and Failed count journaled and dropped frames.
func (s *JournalSystem) Written() int { return s.written }
func (s *JournalSystem) Failed() int  { return s.failed }
