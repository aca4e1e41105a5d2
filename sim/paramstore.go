package sim

import (
	"fmt"
	"math"
	"sort"
	"sync"
)

// A ParamDefinition carries the metadata of a parameter. Min and Max are
// inclusive bounds; a nil bound is unbounded.
type ParamDefinition struct {
	Name        string   `json:"name"`
	Unit        string   `json:"unit"`
	Default     float64  `json:"default"`
	Min         *float64 `json:"min"`
	Max         *float64 `json:"max"`
	UnitLabel   string   `json:"unit_label,omitempty"`
	Description string   `json:"description,omitempty"`
}

// A ParamChange describes one effective parameter update. RequestedValue is
// the number the caller asked for; AppliedValue is what the store holds after
// clamping to the definition's bounds.
type ParamChange struct {
	Name           string
	OldValue       float64
	RequestedValue float64
	AppliedValue   float64
	Clamped        bool
}

// A ParamListener is notified synchronously from within Set. Listeners must
// not block and must not mutate the store.
type ParamListener func(ParamChange)

// A ParameterStore is a SignalStore-like value store whose entries carry
// definitions. Setting a defined parameter clamps the value to the declared
// bounds and notifies registered listeners of effective changes.
type ParameterStore struct {
	values sync.Map // canonical key -> float64

	defLock sync.RWMutex
	defs    map[string]ParamDefinition // canonical key -> definition

	listenerLock sync.Mutex
	listeners    []ParamListener
}

// NewParameterStore creates an empty ParameterStore.
func NewParameterStore() *ParameterStore {
	return &ParameterStore{
		defs: make(map[string]ParamDefinition),
	}
}

// Define registers a parameter definition and seeds the value with the
// default, unless a value already exists for the name. Redefining a parameter
// updates the metadata without clobbering the current value.
func (s *ParameterStore) Define(def ParamDefinition) error {
	display, key, err := canonicalKey(def.Name)
	if err != nil {
		return fmt.Errorf("%w: name is empty", ErrInvalidDefinition)
	}

	if def.Min != nil && def.Max != nil && *def.Min > *def.Max {
		return fmt.Errorf("%w: %q has min %g greater than max %g",
			ErrInvalidDefinition, display, *def.Min, *def.Max)
	}

	if !isFinite(def.Default) {
		return fmt.Errorf("%w: %q has non-finite default %g",
			ErrInvalidDefinition, display, def.Default)
	}

	def.Name = display

	s.defLock.Lock()
	s.defs[key] = def
	s.defLock.Unlock()

	s.values.LoadOrStore(key, def.Default)

	return nil
}

// Set updates the value of a parameter. The requested value is clamped to the
// definition's bounds. If the applied value differs from the previous one,
// registered listeners are notified. Non-finite values are rejected; a stored
// NaN can never be compared away by the swap loop below.
func (s *ParameterStore) Set(name string, requested float64) error {
	display, key, err := canonicalKey(name)
	if err != nil {
		return err
	}

	if !isFinite(requested) {
		return fmt.Errorf("%w: value must be finite, got %g",
			ErrInvalidArgument, requested)
	}

	s.defLock.RLock()
	def, defined := s.defs[key]
	s.defLock.RUnlock()

	applied := requested
	if defined {
		display = def.Name
		applied = clampToBounds(requested, def.Min, def.Max)
	}

	for {
		old, ok := s.values.Load(key)
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownKey, name)
		}

		oldValue := old.(float64)
		if oldValue == applied {
			return nil
		}

		if s.values.CompareAndSwap(key, old, applied) {
			s.notify(ParamChange{
				Name:           display,
				OldValue:       oldValue,
				RequestedValue: requested,
				AppliedValue:   applied,
				Clamped:        applied != requested,
			})

			return nil
		}
	}
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func clampToBounds(v float64, min, max *float64) float64 {
	if min != nil && v < *min {
		v = *min
	}

	if max != nil && v > *max {
		v = *max
	}

	return v
}

// Get returns the value of a parameter.
func (s *ParameterStore) Get(name string) (float64, error) {
	_, key, err := canonicalKey(name)
	if err != nil {
		return 0, err
	}

	v, ok := s.values.Load(key)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownKey, name)
	}

	return v.(float64), nil
}

// TryGet returns the value of a parameter and whether it exists.
func (s *ParameterStore) TryGet(name string) (float64, bool) {
	_, key, err := canonicalKey(name)
	if err != nil {
		return 0, false
	}

	v, ok := s.values.Load(key)
	if !ok {
		return 0, false
	}

	return v.(float64), true
}

// Snapshot returns a point-in-time copy of all parameter values, keyed by
// display name.
func (s *ParameterStore) Snapshot() map[string]float64 {
	s.defLock.RLock()
	defer s.defLock.RUnlock()

	snapshot := make(map[string]float64)
	s.values.Range(func(k, v any) bool {
		key := k.(string)

		name := key
		if def, ok := s.defs[key]; ok {
			name = def.Name
		}

		snapshot[name] = v.(float64)

		return true
	})

	return snapshot
}

// SnapshotDefinitions returns the registered definitions, sorted by name.
func (s *ParameterStore) SnapshotDefinitions() []ParamDefinition {
	s.defLock.RLock()
	defer s.defLock.RUnlock()

	defs := make([]ParamDefinition, 0, len(s.defs))
	for _, def := range s.defs {
		defs = append(defs, def)
	}

	sort.Slice(defs, func(i, j int) bool {
		return defs[i].Name < defs[j].Name
	})

	return defs
}

// Subscribe registers a listener for effective parameter changes.
func (s *ParameterStore) Subscribe(l ParamListener) {
	s.listenerLock.Lock()
	defer s.listenerLock.Unlock()

	s.listeners = append(s.listeners, l)
}

func (s *ParameterStore) notify(change ParamChange) {
	s.listenerLock.Lock()
	listeners := make([]ParamListener, len(s.listeners))
	copy(listeners, s.listeners)
	s.listenerLock.Unlock()

	for _, l := range listeners {
		l(change)
	}
}
