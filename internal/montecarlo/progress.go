package montecarlo

import (
	"sync"
	"sync/atomic"
)

// ProgressFunc receives completion percentages in [0, 100].
type ProgressFunc func(percent int)

// progressTracker aggregates trial counts from concurrent scenario workers
// and reports whole percentages, each at most once and in increasing order.
// 100 is withheld until finish so it always means "results are ready".
type progressTracker struct {
	total int64
	done  atomic.Int64

	mu   sync.Mutex
	last int
	emit ProgressFunc
}

func newProgressTracker(total int64, emit ProgressFunc) *progressTracker {
	p := &progressTracker{total: total, last: -1, emit: emit}
	p.report(0)
	return p
}

func (p *progressTracker) add(n int) {
	done := p.done.Add(int64(n))
	pct := 99
	if p.total > 0 {
		pct = int(done * 100 / p.total)
	}
	if pct > 99 {
		pct = 99
	}
	p.report(pct)
}

func (p *progressTracker) finish() { p.report(100) }

func (p *progressTracker) report(pct int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if pct <= p.last {
		return
	}
	p.last = pct
	if p.emit != nil {
		p.emit(pct)
	}
}
