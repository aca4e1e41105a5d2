package plant

import (
	"github.com/prosimlab/prosim/sim"
)

// A PressureSensor reports the hydrostatic pressure at the tank bottom.
type PressureSensor struct {
	*sim.ComponentBase

	signals *sim.SignalStore
	density float64
}

// NewPressureSensor creates a PressureSensor.
func NewPressureSensor(
	name string,
	signals *sim.SignalStore,
	cfg Config,
) *PressureSensor {
	return &PressureSensor{
		ComponentBase: sim.NewComponentBase(name),
		signals:       signals,
		density:       cfg.FluidDensity,
	}
}

// Reads declares the sensor's inputs.
func (s *PressureSensor) Reads() []sim.Dependency {
	return []sim.Dependency{sim.Dep[sim.Position](TankLevel)}
}

// Writes declares the sensor's outputs.
func (s *PressureSensor) Writes() []sim.Dependency {
	return []sim.Dependency{sim.Dep[sim.Pressure](TankPressure)}
}

// Tick updates the reported pressure from the current level.
func (s *PressureSensor) Tick(_ sim.SimTime, _ sim.VTimeInSec) error {
	level, err := sim.ReadSignal[sim.Position](s.signals, TankLevel)
	if err != nil {
		return err
	}

	pressure := sim.From[sim.Pressure](s.density * gravity * level.Raw())

	return sim.WriteSignal(s.signals, TankPressure, pressure)
}
