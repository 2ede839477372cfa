package blocks

import (
	"sync"
	"sync/atomic"
)

// lifecycleController implements spec §4.10: a liveness flag flipped by
// terminal-event interception, an explicit Stop, or a fatal block error;
// and an idempotent, ordered shutdown that terminates the parallel pool
// before releasing source then processor resources, deduplicated by block
// identity.
type lifecycleController struct {
	alive     atomic.Bool
	shutOnce  sync.Once
	pool      *parallelPool
	sources   []*SourceBlock
	processors []*ProcessorBlock
	logger    Logger
}

func newLifecycleController(sources []*SourceBlock, processors []*ProcessorBlock, pool *parallelPool, logger Logger) *lifecycleController {
	l := &lifecycleController{sources: sources, processors: processors, pool: pool, logger: logger}
	l.alive.Store(true)
	return l
}

// Alive reports whether the runtime should keep ticking.
func (l *lifecycleController) Alive() bool { return l.alive.Load() }

// Stop flips the liveness flag. Safe to call multiple times and
// concurrently.
func (l *lifecycleController) Stop() { l.alive.Store(false) }

// Shutdown runs the ordered release sequence exactly once, even across
// repeated calls (e.g. once=true still calls Shutdown on exit).
func (l *lifecycleController) Shutdown() {
	l.shutOnce.Do(func() {
		l.alive.Store(false)

		if l.pool != nil {
			l.pool.Shutdown()
		}

		seenSource := make(map[*SourceBlock]bool, len(l.sources))
		for _, s := range l.sources {
			if seenSource[s] || s.release == nil {
				seenSource[s] = true
				continue
			}
			seenSource[s] = true
			if err := s.release(); err != nil {
				l.logger.Error("source release failed", map[string]any{"block": s.name, "error": err.Error()})
			}
		}

		seenProc := make(map[*ProcessorBlock]bool, len(l.processors))
		for _, p := range l.processors {
			if seenProc[p] || p.release == nil {
				seenProc[p] = true
				continue
			}
			seenProc[p] = true
			if err := p.release(); err != nil {
				l.logger.Error("processor release failed", map[string]any{"block": p.name, "error": err.Error()})
			}
		}

		l.logger.Info("shutdown complete", nil)
	})
}
