package system

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type recorder struct {
	name  string
	phase Phase
	log   *[]string
}

func (r recorder) Phase() Phase { return r.phase }

func (r recorder) Update(time.Duration) { *r.log = append(*r.log, r.name) }

func TestRunnerOrdersByPhase(t *testing.T) {
	var log []string
	r := NewRunner()
	r.Register(recorder{"cleanup", PhaseCleanup, &log})
	r.Register(recorder{"reset", PhaseCleanup, &log})
	r.Register(recorder{"output", PhaseOutput, &log})
	r.Register(recorder{"update", PhaseUpdate, &log})
	r.Register(recorder{"dispatch", PhasePreUpdate, &log})
	r.Register(recorder{"stray", Phase(42), &log})
	require.Equal(t, 6, r.Len())

	r.Tick(time.Millisecond)
	require.Equal(t, []string{"dispatch", "update", "output", "cleanup", "reset", "stray"}, log)
	require.Equal(t, uint64(1), r.Frames())
}

func TestRunnerStats(t *testing.T) {
	var log []string
	r := NewRunner()
	clock := time.Unix(0, 0)
	r.now = func() time.Time {
		clock = clock.Add(time.Millisecond)
		return clock
	}
	r.Register(recorder{"update", PhaseUpdate, &log})
	r.Register(recorder{"output", PhaseOutput, &log})

	r.Tick(0)
	r.Tick(0)
	stats := r.Stats()
	require.Equal(t, uint64(2), stats.Frame)
	require.Equal(t, time.Millisecond, stats.Phases[PhaseUpdate])
	require.Equal(t, time.Duration(0), stats.Phases[PhaseCleanup], "empty phases are not timed")
	require.Equal(t, 2*time.Millisecond, stats.Total())

	stats.Phases[PhaseOutput] = 5 * time.Millisecond
	p, d := stats.Slowest()
	require.Equal(t, PhaseOutput, p)
	require.Equal(t, 5*time.Millisecond, d)
}

func TestPhaseString(t *testing.T) {
	require.Equal(t, "output", PhaseOutput.String())
	require.Equal(t, "unknown", Phase(42).String())
}
