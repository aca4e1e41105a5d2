package sim

import (
	"fmt"
	"strings"
	"sync"
)

type signalEntry struct {
	name  string
	value float64
}

// A SignalStore is a thread-safe mapping from case-insensitive value names to
// numbers. Signals are created implicitly by the first Set for a name.
type SignalStore struct {
	values sync.Map // canonical key -> signalEntry
}

// NewSignalStore creates an empty SignalStore.
func NewSignalStore() *SignalStore {
	return &SignalStore{}
}

// canonicalKey trims a value name and lowers its case. The trimmed,
// original-case form is returned for display.
func canonicalKey(name string) (display, key string, err error) {
	display = strings.TrimSpace(name)
	if display == "" {
		return "", "", fmt.Errorf("%w: name is empty", ErrInvalidKey)
	}

	return display, strings.ToLower(display), nil
}

// Set upserts the value for a name.
func (s *SignalStore) Set(name string, value float64) error {
	display, key, err := canonicalKey(name)
	if err != nil {
		return err
	}

	s.values.Store(key, signalEntry{name: display, value: value})

	return nil
}

// Get returns the value for a name.
func (s *SignalStore) Get(name string) (float64, error) {
	_, key, err := canonicalKey(name)
	if err != nil {
		return 0, err
	}

	entry, ok := s.values.Load(key)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownKey, name)
	}

	return entry.(signalEntry).value, nil
}

// TryGet returns the value for a name and whether it exists.
func (s *SignalStore) TryGet(name string) (float64, bool) {
	_, key, err := canonicalKey(name)
	if err != nil {
		return 0, false
	}

	entry, ok := s.values.Load(key)
	if !ok {
		return 0, false
	}

	return entry.(signalEntry).value, true
}

// Snapshot returns a point-in-time copy of all signals, keyed by the display
// form of each name. It is safe to call concurrently with writers.
func (s *SignalStore) Snapshot() map[string]float64 {
	snapshot := make(map[string]float64)
	s.values.Range(func(_, v any) bool {
		entry := v.(signalEntry)
		snapshot[entry.name] = entry.value
		return true
	})

	return snapshot
}

// ReadSignal reads a signal as a unit-tagged value.
func ReadSignal[U UnitTag](s *SignalStore, name string) (Value[U], error) {
	raw, err := s.Get(name)
	if err != nil {
		return 0, err
	}

	return From[U](raw), nil
}

// WriteSignal writes a unit-tagged value to a signal.
func WriteSignal[U UnitTag](s *SignalStore, name string, v Value[U]) error {
	return s.Set(name, v.Raw())
}
