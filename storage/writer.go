package storage

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"taskboard/domain"
)

const writeTimeout = 10 * time.Second

// Writer persists board snapshots in the background so mutations never wait
// on the KV. Save replaces any still-pending snapshot, so under a burst of
// mutations only the latest state is written; the KV holds full state, not a
// journal, so skipped intermediates are harmless.
type Writer struct {
	kv     KV
	logger *log.Logger

	mu      sync.Mutex
	pending *domain.State
	closed  bool

	kick chan struct{}
	stop chan struct{}
	done chan struct{}
}

// NewWriter starts the background persist loop.
func NewWriter(kv KV, logger *log.Logger) *Writer {
	if logger == nil {
		logger = log.StandardLogger()
	}
	w := &Writer{
		kv:     kv,
		logger: logger,
		kick:   make(chan struct{}, 1),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	go w.run()
	return w
}

// Save hands the snapshot to the background loop without blocking.
func (w *Writer) Save(s domain.State) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.pending = &s
	w.mu.Unlock()

	select {
	case w.kick <- struct{}{}:
	default:
	}
}

// Close stops the loop, flushing any snapshot still pending.
func (w *Writer) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	w.mu.Unlock()

	close(w.stop)
	<-w.done
}

func (w *Writer) run() {
	defer close(w.done)
	for {
		select {
		case <-w.kick:
			w.flush()
		case <-w.stop:
			w.flush()
			return
		}
	}
}

func (w *Writer) flush() {
	w.mu.Lock()
	snap := w.pending
	w.pending = nil
	w.mu.Unlock()

	if snap == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	SaveState(ctx, w.kv, *snap, w.logger)
	cancel()
}
