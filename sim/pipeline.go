package sim

import "fmt"

// A Pipeline is a validated, ordered sequence of components. Within one tick,
// every value is fully computed by its writer before any reader consumes it.
// A Pipeline is immutable; changing the component set requires building a new
// one.
type Pipeline struct {
	components []Component
}

// Components returns the components in execution order.
func (p *Pipeline) Components() []Component {
	components := make([]Component, len(p.components))
	copy(components, p.components)

	return components
}

// Tick runs every component once, strictly in order. The first component
// error aborts the tick and is returned wrapped with the component's name.
func (p *Pipeline) Tick(now SimTime, dt VTimeInSec) error {
	for _, c := range p.components {
		if err := c.Tick(now, dt); err != nil {
			return fmt.Errorf("component %s: %w", c.Name(), err)
		}
	}

	return nil
}
