// Package plant provides a small demonstration process: a pump feeds water
// through a valve into a tank that drains freely, with a sensor reporting
// the pressure at the tank bottom. It shows how components declare their
// dependencies and let the pipeline builder order them.
package plant

import (
	"github.com/prosimlab/prosim/sim"
	"github.com/prosimlab/prosim/simulation"
)

// Value names used by the demo plant.
const (
	PumpFlow     = "pump.flow"
	ValveFlow    = "valve.flow"
	TankLevel    = "tank.level"
	TankOutflow  = "tank.outflow"
	TankPressure = "tank.pressure"

	PumpSpeedParam     = "pump.speed"
	ValvePositionParam = "valve.position"
)

// Config holds the physical constants of the demo plant.
type Config struct {
	// PumpMaxFlow is the pump flow at 100% speed, in m^3/s.
	PumpMaxFlow float64 `toml:"pump_max_flow"`

	// TankArea is the tank cross-section, in m^2.
	TankArea float64 `toml:"tank_area"`

	// TankDrainCoeff relates the tank level to the free outflow, in
	// m^2/s.
	TankDrainCoeff float64 `toml:"tank_drain_coeff"`

	// FluidDensity is the fluid density, in kg/m^3.
	FluidDensity float64 `toml:"fluid_density"`
}

// DefaultConfig returns the constants of the demo plant.
func DefaultConfig() Config {
	return Config{
		PumpMaxFlow:    0.02,
		TankArea:       1.5,
		TankDrainCoeff: 0.005,
		FluidDensity:   1000,
	}
}

const gravity = 9.81

// Setup defines the plant's parameters and registers its components with a
// simulation.
func Setup(s *simulation.Simulation, cfg Config) error {
	err := s.DefineParam(sim.ParamDefinition{
		Name:        PumpSpeedParam,
		Unit:        "percent",
		Default:     50,
		Min:         f64(0),
		Max:         f64(100),
		UnitLabel:   "%",
		Description: "Pump speed as a fraction of full speed.",
	})
	if err != nil {
		return err
	}

	err = s.DefineParam(sim.ParamDefinition{
		Name:        ValvePositionParam,
		Unit:        "ratio",
		Default:     1,
		Min:         f64(0),
		Max:         f64(1),
		Description: "Valve opening; 0 is closed, 1 is fully open.",
	})
	if err != nil {
		return err
	}

	signals := s.Signals()
	params := s.Params()

	s.RegisterComponent(NewPump("Pump", signals, params, cfg))
	s.RegisterComponent(NewValve("Valve", signals, params))
	s.RegisterComponent(NewTank("Tank", signals, cfg))
	s.RegisterComponent(NewPressureSensor("PressureSensor", signals, cfg))

	return nil
}

func f64(v float64) *float64 { return &v }
