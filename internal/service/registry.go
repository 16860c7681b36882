package service

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"balagh/internal/locale"
	"balagh/internal/metrics"
	"balagh/internal/repository"
	"balagh/internal/storage"
)

// ErrInvalidDevice is returned for an empty device id
var ErrInvalidDevice = errors.New("invalid device id")

type registryEntry struct {
	state    *AppState
	lastUsed time.Time
	inUse    int
}

// Registry holds one AppState per device, rehydrating it from the store on
// first use and dropping it after it has been idle for the configured TTL.
// A state that is acquired is never dropped, so a device never has two
// live states.
type Registry struct {
	mu      sync.Mutex
	store   storage.Store
	opts    Options
	idleTTL time.Duration
	metrics metrics.Recorder
	states  map[string]*registryEntry
}

// NewRegistry creates a registry. opts.Direction is ignored; each device
// gets its own document direction.
func NewRegistry(store storage.Store, opts Options, idleTTL time.Duration) *Registry {
	opts.Direction = nil
	opts = opts.withDefaults()
	return &Registry{
		store:   store,
		opts:    opts,
		idleTTL: idleTTL,
		metrics: opts.Metrics,
		states:  make(map[string]*registryEntry),
	}
}

// DeviceNamespace is the storage prefix for a device's keys
func DeviceNamespace(deviceID string) string {
	return "device:" + deviceID
}

func (r *Registry) load(ctx context.Context, deviceID string) (*AppState, error) {
	opts := r.opts
	opts.Direction = locale.NewDocument(opts.DefaultLanguage)
	repo := repository.NewStateRepository(storage.Namespace(r.store, DeviceNamespace(deviceID)))
	return NewAppState(ctx, repo, opts)
}

func (r *Registry) entry(ctx context.Context, deviceID string) (*registryEntry, error) {
	if deviceID == "" {
		return nil, ErrInvalidDevice
	}

	now := r.opts.Now()
	if e, ok := r.states[deviceID]; ok {
		e.lastUsed = now
		return e, nil
	}

	state, err := r.load(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	e := &registryEntry{state: state, lastUsed: now}
	r.states[deviceID] = e
	r.metrics.RecordActiveStates(len(r.states))
	return e, nil
}

// Get returns the state for deviceID, loading it if needed. Callers that
// hold the state across other work should use Acquire.
func (r *Registry) Get(ctx context.Context, deviceID string) (*AppState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, err := r.entry(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	return e.state, nil
}

// Acquire returns the state for deviceID and keeps it from being evicted
// until release is called.
func (r *Registry) Acquire(ctx context.Context, deviceID string) (state *AppState, release func(), err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, err := r.entry(ctx, deviceID)
	if err != nil {
		return nil, nil, err
	}
	e.inUse++

	var once sync.Once
	release = func() {
		once.Do(func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			e.inUse--
			e.lastUsed = r.opts.Now()
		})
	}
	return e.state, release, nil
}

// Transient loads the state for deviceID without keeping it. It serves
// devices with nothing stored yet, so that requests which never write leave
// no trace in the registry.
func (r *Registry) Transient(ctx context.Context, deviceID string) (*AppState, error) {
	if deviceID == "" {
		return nil, ErrInvalidDevice
	}
	return r.load(ctx, deviceID)
}

// EvictIdle drops states idle for longer than the idle TTL and returns how many were dropped
func (r *Registry) EvictIdle() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.opts.Now().Add(-r.idleTTL)
	evicted := 0
	for id, e := range r.states {
		if e.inUse == 0 && e.lastUsed.Before(cutoff) {
			delete(r.states, id)
			evicted++
		}
	}
	if evicted > 0 {
		r.metrics.RecordActiveStates(len(r.states))
	}
	return evicted
}

// Len returns the number of states held in memory
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.states)
}

// Run evicts idle states periodically until ctx is cancelled
func (r *Registry) Run(ctx context.Context) {
	interval := r.idleTTL / 2
	if interval < time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.EvictIdle(); n > 0 {
				log.Printf("Evicted %d idle device states", n)
			}
		}
	}
}
