package utils

import (
	"sync"
	"time"
)

// InFlight tracks keys for mutating actions currently being processed by
// this process, so a duplicate submission can fail fast.
type InFlight struct {
	keys       map[string]time.Time
	mu         sync.Mutex
	staleAfter time.Duration
}

const defaultStaleAfter = 2 * time.Minute

func NewInFlight() *InFlight {
	return &InFlight{
		keys:       make(map[string]time.Time),
		staleAfter: defaultStaleAfter,
	}
}

// cleanupStale drops keys held longer than staleAfter. Caller holds mu.
func (f *InFlight) cleanupStale(now time.Time) {
	cutoff := now.Add(-f.staleAfter)
	for key, started := range f.keys {
		if started.Before(cutoff) {
			delete(f.keys, key)
		}
	}
}

// Acquire marks key as in flight. It returns false if the key is already
// held. The returned release func is safe to call more than once.
func (f *InFlight) Acquire(key string) (func(), bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	now := time.Now()
	f.cleanupStale(now)

	if _, held := f.keys[key]; held {
		return func() {}, false
	}
	f.keys[key] = now

	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			defer f.mu.Unlock()
			if started, ok := f.keys[key]; ok && started.Equal(now) {
				delete(f.keys, key)
			}
		})
	}, true
}

func (f *InFlight) Held(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, held := f.keys[key]
	return held
}

func (f *InFlight) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.keys)
}
