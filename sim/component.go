package sim

import "strings"

// A Named object is an object that has a name.
type Named interface {
	Name() string
}

// A Dependency declares one named value that a component reads or writes,
// together with the unit the component expects for it.
type Dependency struct {
	ValueName string
	Unit      string
}

// Dep creates a dependency descriptor for a value with the given unit tag.
func Dep[U UnitTag](name string) Dependency {
	return Dependency{
		ValueName: name,
		Unit:      unitNameOf[U](),
	}
}

func (d Dependency) canonicalName() string {
	return strings.ToLower(strings.TrimSpace(d.ValueName))
}

// A Component is a unit of computation in a pipeline. It declares the named
// values it reads and writes, and updates its outputs once per tick. Tick
// must not perform I/O or block; stateful components may keep private state
// across ticks.
type Component interface {
	Named

	Reads() []Dependency
	Writes() []Dependency

	Tick(now SimTime, dt VTimeInSec) error
}

// ComponentBase provides the name handling that components share.
type ComponentBase struct {
	name string
}

// NewComponentBase creates a new ComponentBase.
func NewComponentBase(name string) *ComponentBase {
	c := new(ComponentBase)
	c.name = name

	return c
}

// Name returns the name of the component.
func (c *ComponentBase) Name() string {
	return c.name
}
