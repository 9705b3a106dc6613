package training

import (
	"sync"

	"transaction-matching-engine/pkg/logger"
)

// Worker runs retraining off the scoring hot path. Requests are
// coalesced per strategy: if a strategy is requested again while a
// request for it is still pending, the two collapse into one pass over
// the then-current feedback snapshot, so the newest request always
// supersedes older queued ones.
type Worker struct {
	trainer *Trainer
	log     logger.Logger

	mu      sync.Mutex
	pending map[string]struct{}

	wake chan struct{}
	done chan struct{}
	wg   sync.WaitGroup
}

// NewWorker creates a retraining worker
func NewWorker(trainer *Trainer, log logger.Logger) *Worker {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Worker{
		trainer: trainer,
		log:     log.WithComponent("retrain-worker"),
		pending: make(map[string]struct{}),
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
}

// Start launches the background goroutine
func (w *Worker) Start() {
	w.wg.Add(1)
	go w.run()
}

// Stop shuts the worker down after the in-flight pass finishes
func (w *Worker) Stop() {
	close(w.done)
	w.wg.Wait()
}

// Request enqueues a retrain for a strategy. Never blocks the caller.
func (w *Worker) Request(strategy string) {
	w.mu.Lock()
	w.pending[strategy] = struct{}{}
	w.mu.Unlock()

	select {
	case w.wake <- struct{}{}:
	default:
	}
}

func (w *Worker) run() {
	defer w.wg.Done()

	for {
		select {
		case <-w.done:
			return
		case <-w.wake:
		}

		for {
			name, ok := w.takePending()
			if !ok {
				break
			}

			if err := w.trainer.Train(name); err != nil {
				w.log.WithError(err).WithField("strategy", name).Warn("retrain pass failed")
			}

			select {
			case <-w.done:
				return
			default:
			}
		}
	}
}

// takePending removes and returns one pending strategy.
func (w *Worker) takePending() (string, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	for name := range w.pending {
		delete(w.pending, name)
		return name, true
	}
	return "", false
}
