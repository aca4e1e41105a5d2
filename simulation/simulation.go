// Package simulation is the composition root for process simulations. It
// owns the value stores, the registered components and the runner, and wires
// the telemetry recorder and the monitoring server around the engine core.
package simulation

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/prosimlab/prosim/datarecording"
	"github.com/prosimlab/prosim/monitoring"
	"github.com/prosimlab/prosim/sim"
)

// A Simulation provides the services required to define and run a process
// simulation.
type Simulation struct {
	id          string
	stepSize    sim.VTimeInSec
	sampleEvery uint64
	logger      *zap.Logger

	signals *sim.SignalStore
	params  *sim.ParameterStore

	components    []sim.Component
	compNameIndex map[string]int

	recorder     datarecording.DataRecorder
	signalLogger *datarecording.SignalLogger
	monitor      *monitoring.Monitor
	runner       *sim.Runner
}

// ID returns the unique ID of the simulation instance.
func (s *Simulation) ID() string {
	return s.id
}

// Signals returns the signal store owned by the simulation.
func (s *Simulation) Signals() *sim.SignalStore {
	return s.signals
}

// Params returns the parameter store owned by the simulation.
func (s *Simulation) Params() *sim.ParameterStore {
	return s.params
}

// GetMonitor returns the monitor used in the simulation, or nil if
// monitoring is disabled.
func (s *Simulation) GetMonitor() *monitoring.Monitor {
	return s.monitor
}

// GetDataRecorder returns the telemetry recorder, or nil if recording is
// disabled.
func (s *Simulation) GetDataRecorder() datarecording.DataRecorder {
	return s.recorder
}

// Runner returns the runner. It is available after Start.
func (s *Simulation) Runner() *sim.Runner {
	return s.runner
}

// DefineParam registers a parameter definition. All parameters must be
// defined before Start.
func (s *Simulation) DefineParam(def sim.ParamDefinition) error {
	return s.params.Define(def)
}

// RegisterComponent registers a component with the simulation. Component
// names must be unique.
func (s *Simulation) RegisterComponent(c sim.Component) {
	compName := c.Name()
	if _, exists := s.compNameIndex[compName]; exists {
		panic("component " + compName + " already registered")
	}

	s.components = append(s.components, c)
	s.compNameIndex[compName] = len(s.components) - 1

	if s.monitor != nil {
		s.monitor.RegisterComponent(c)
	}
}

// GetComponentByName returns the component with the given name.
func (s *Simulation) GetComponentByName(name string) sim.Component {
	return s.components[s.compNameIndex[name]]
}

// Start builds the pipeline from the registered components and wires the
// runner, the telemetry recorder, and the monitoring server. Graph errors
// are fatal; a simulation with an invalid dependency graph must not start.
func (s *Simulation) Start() error {
	if s.runner != nil {
		return fmt.Errorf("simulation already started")
	}

	pipeline, err := sim.MakePipelineBuilder().
		WithComponents(s.components...).
		Build()
	if err != nil {
		return fmt.Errorf("building pipeline: %w", err)
	}

	runner, err := sim.NewRunner(pipeline, s.stepSize)
	if err != nil {
		return fmt.Errorf("creating runner: %w", err)
	}
	runner.WithLogger(s.logger)

	s.runner = runner

	if s.recorder != nil {
		s.signalLogger = datarecording.NewSignalLogger(
			s.recorder, s.signals, s.sampleEvery)
		s.runner.RegisterTickListener(s.signalLogger.OnTick)

		s.params.Subscribe(func(c sim.ParamChange) {
			s.signalLogger.RecordParamChange(s.runner.Now(), c)
		})
	}

	if s.monitor != nil {
		s.monitor.RegisterRunner(s.runner)
		s.monitor.StartServer()
	}

	return nil
}

// Run drives the simulation in real time until the context is cancelled.
func (s *Simulation) Run(ctx context.Context) error {
	if s.runner == nil {
		return fmt.Errorf("simulation not started")
	}

	return s.runner.Run(ctx)
}

// Terminate flushes and closes the telemetry recorder.
func (s *Simulation) Terminate() {
	if s.recorder != nil {
		s.recorder.Close()
	}
}
