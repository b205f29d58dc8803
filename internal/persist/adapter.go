// Package persist writes journal state to the key/value backend and reads it
// back at startup.
package persist

import (
	"context"
	"sync"
	"time"

	"github.com/pbaille/tastemap/internal/domain"
	"github.com/pbaille/tastemap/pkg/logger"
)

const writeTimeout = 5 * time.Second

// KV is the storage backend: get/set of named blobs
type KV interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Adapter persists snapshots under one key. Save never blocks; a single
// background writer stores the most recent pending snapshot. Failed writes
// are logged and dropped.
type Adapter struct {
	kv  KV
	key string
	log *logger.Logger

	mu         sync.Mutex
	pending    *domain.Snapshot
	pendingGen uint64
	queued     uint64
	written    uint64
	progress   chan struct{}
	closed     bool

	wake      chan struct{}
	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// New starts an adapter writing to key
func New(kv KV, key string) *Adapter {
	a := &Adapter{
		kv:       kv,
		key:      key,
		log:      logger.Get().WithContext(map[string]interface{}{"key": key}),
		progress: make(chan struct{}),
		wake:     make(chan struct{}, 1),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go a.run()
	return a
}

// Key returns the storage key
func (a *Adapter) Key() string {
	return a.key
}

// Save queues snap for writing and returns immediately
func (a *Adapter) Save(snap domain.Snapshot) {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		a.log.Warn("Dropping snapshot saved after close")
		return
	}
	a.queued++
	a.pending = &snap
	a.pendingGen = a.queued
	a.mu.Unlock()

	select {
	case a.wake <- struct{}{}:
	default:
	}
}

// Flush waits until every snapshot saved before the call has been written
// (or has failed)
func (a *Adapter) Flush(ctx context.Context) error {
	a.mu.Lock()
	target := a.queued
	a.mu.Unlock()

	for {
		a.mu.Lock()
		if a.written >= target {
			a.mu.Unlock()
			return nil
		}
		ch := a.progress
		a.mu.Unlock()

		select {
		case <-ch:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Close writes what is pending and stops the writer
func (a *Adapter) Close(ctx context.Context) error {
	a.closeOnce.Do(func() {
		a.mu.Lock()
		a.closed = true
		a.mu.Unlock()
		close(a.stop)
	})
	select {
	case <-a.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (a *Adapter) run() {
	defer close(a.done)
	for {
		select {
		case <-a.wake:
			a.drain()
		case <-a.stop:
			a.drain()
			return
		}
	}
}

func (a *Adapter) drain() {
	for {
		a.mu.Lock()
		if a.pending == nil {
			a.mu.Unlock()
			return
		}
		snap, gen := *a.pending, a.pendingGen
		a.pending = nil
		a.mu.Unlock()

		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		if err := a.write(ctx, snap); err != nil {
			a.log.Error("Failed to persist state", err)
		}
		cancel()

		a.mu.Lock()
		a.written = gen
		close(a.progress)
		a.progress = make(chan struct{})
		a.mu.Unlock()
	}
}

func (a *Adapter) write(ctx context.Context, snap domain.Snapshot) error {
	data, err := Encode(snap)
	if err != nil {
		return err
	}
	return a.kv.Set(ctx, a.key, data)
}

// Load reads the saved state. A missing, unreadable or corrupt blob yields an
// empty snapshot and ok=false; it is never an error.
func (a *Adapter) Load(ctx context.Context) (domain.Snapshot, bool) {
	data, found, err := a.kv.Get(ctx, a.key)
	if err != nil {
		a.log.Warn("Could not read saved state, starting empty", map[string]interface{}{"error": err.Error()})
		return domain.Snapshot{}, false
	}
	if !found {
		return domain.Snapshot{}, false
	}
	snap, err := Decode(data)
	if err != nil {
		a.log.Warn("Saved state is unreadable, starting empty", map[string]interface{}{"error": err.Error()})
		return domain.Snapshot{}, false
	}
	return snap, true
}
