package plant

import (
	"github.com/prosimlab/prosim/sim"
)

// A Pump produces a flow proportional to its speed parameter.
type Pump struct {
	*sim.ComponentBase

	signals *sim.SignalStore
	params  *sim.ParameterStore
	maxFlow float64
}

// NewPump creates a Pump.
func NewPump(
	name string,
	signals *sim.SignalStore,
	params *sim.ParameterStore,
	cfg Config,
) *Pump {
	return &Pump{
		ComponentBase: sim.NewComponentBase(name),
		signals:       signals,
		params:        params,
		maxFlow:       cfg.PumpMaxFlow,
	}
}

// Reads declares the pump's inputs. The speed parameter has no writer in the
// pipeline; it is supplied externally.
func (p *Pump) Reads() []sim.Dependency {
	return []sim.Dependency{sim.Dep[sim.Percent](PumpSpeedParam)}
}

// Writes declares the pump's outputs.
func (p *Pump) Writes() []sim.Dependency {
	return []sim.Dependency{sim.Dep[sim.Flow](PumpFlow)}
}

// Tick updates the pump flow from the current speed.
func (p *Pump) Tick(_ sim.SimTime, _ sim.VTimeInSec) error {
	speed, err := p.params.Get(PumpSpeedParam)
	if err != nil {
		return err
	}

	flow := sim.From[sim.Flow](p.maxFlow * speed / 100)

	return sim.WriteSignal(p.signals, PumpFlow, flow)
}
