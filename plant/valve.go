package plant

import (
	"github.com/prosimlab/prosim/sim"
)

// A Valve restricts the pump flow according to its position parameter.
type Valve struct {
	*sim.ComponentBase

	signals *sim.SignalStore
	params  *sim.ParameterStore
}

// NewValve creates a Valve.
func NewValve(
	name string,
	signals *sim.SignalStore,
	params *sim.ParameterStore,
) *Valve {
	return &Valve{
		ComponentBase: sim.NewComponentBase(name),
		signals:       signals,
		params:        params,
	}
}

// Reads declares the valve's inputs.
func (v *Valve) Reads() []sim.Dependency {
	return []sim.Dependency{
		sim.Dep[sim.Flow](PumpFlow),
		sim.Dep[sim.Ratio](ValvePositionParam),
	}
}

// Writes declares the valve's outputs.
func (v *Valve) Writes() []sim.Dependency {
	return []sim.Dependency{sim.Dep[sim.Flow](ValveFlow)}
}

// Tick updates the downstream flow from the upstream flow and the valve
// position.
func (v *Valve) Tick(_ sim.SimTime, _ sim.VTimeInSec) error {
	in, err := sim.ReadSignal[sim.Flow](v.signals, PumpFlow)
	if err != nil {
		return err
	}

	position, err := v.params.Get(ValvePositionParam)
	if err != nil {
		return err
	}

	out := sim.From[sim.Flow](in.Raw() * position)

	return sim.WriteSignal(v.signals, ValveFlow, out)
}
