package plant

import (
	"github.com/prosimlab/prosim/sim"
)

// A Tank integrates its level from the net in- and outflow with an explicit
// Euler step. The level is private state that persists across ticks.
type Tank struct {
	*sim.ComponentBase

	signals    *sim.SignalStore
	area       float64
	drainCoeff float64

	level float64
}

// NewTank creates an empty Tank.
func NewTank(name string, signals *sim.SignalStore, cfg Config) *Tank {
	return &Tank{
		ComponentBase: sim.NewComponentBase(name),
		signals:       signals,
		area:          cfg.TankArea,
		drainCoeff:    cfg.TankDrainCoeff,
	}
}

// Reads declares the tank's inputs.
func (t *Tank) Reads() []sim.Dependency {
	return []sim.Dependency{sim.Dep[sim.Flow](ValveFlow)}
}

// Writes declares the tank's outputs.
func (t *Tank) Writes() []sim.Dependency {
	return []sim.Dependency{
		sim.Dep[sim.Position](TankLevel),
		sim.Dep[sim.Flow](TankOutflow),
	}
}

// Tick advances the tank level by one Euler step.
func (t *Tank) Tick(_ sim.SimTime, dt sim.VTimeInSec) error {
	inflow, err := sim.ReadSignal[sim.Flow](t.signals, ValveFlow)
	if err != nil {
		return err
	}

	outflow := t.drainCoeff * t.level

	t.level += (inflow.Raw() - outflow) / t.area * float64(dt)
	if t.level < 0 {
		t.level = 0
	}

	err = sim.WriteSignal(t.signals, TankLevel, sim.From[sim.Position](t.level))
	if err != nil {
		return err
	}

	return sim.WriteSignal(
		t.signals, TankOutflow, sim.From[sim.Flow](outflow))
}
