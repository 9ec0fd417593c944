package montecarlo

import (
	"context"
	"sync"
)

// Task is a simulation running in the background.
type Task struct {
	progress chan int
	done     chan struct{}
	cancel   context.CancelFunc

	mu      sync.Mutex
	results []Result
	err     error
}

// Start launches Run on its own goroutine. Progress is delivered on a
// buffered channel that is closed when the run ends; updates are dropped
// rather than stalling workers if the reader falls behind, but the final
// 100 always fits in the buffer.
func (s *Simulator) Start(ctx context.Context, costs []float64) *Task {
	ctx, cancel := context.WithCancel(ctx)
	t := &Task{
		progress: make(chan int, 102),
		done:     make(chan struct{}),
		cancel:   cancel,
	}
	go func() {
		defer close(t.done)
		defer close(t.progress)
		defer cancel()
		res, err := s.Run(ctx, costs, func(p int) {
			select {
			case t.progress <- p:
			default:
			}
		})
		t.mu.Lock()
		t.results, t.err = res, err
		t.mu.Unlock()
	}()
	return t
}

// Progress returns the progress channel.
func (t *Task) Progress() <-chan int { return t.progress }

// Done is closed once results are available.
func (t *Task) Done() <-chan struct{} { return t.done }

// Cancel stops the run at its next checkpoint.
func (t *Task) Cancel() { t.cancel() }

// Wait blocks until the run finishes and returns its outcome.
func (t *Task) Wait() ([]Result, error) {
	<-t.done
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.results, t.err
}
