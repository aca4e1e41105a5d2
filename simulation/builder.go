package simulation

import (
	"go.uber.org/zap"

	"github.com/prosimlab/prosim/datarecording"
	"github.com/prosimlab/prosim/monitoring"
	"github.com/prosimlab/prosim/sim"

	"github.com/rs/xid"
)

// Builder can be used to build a simulation.
type Builder struct {
	stepSize       sim.VTimeInSec
	sampleEvery    uint64
	monitorOn      bool
	monitorPort    int
	recordingOn    bool
	outputFileName string
	recorder       datarecording.DataRecorder
	logger         *zap.Logger
}

// MakeBuilder creates a new builder.
func MakeBuilder() Builder {
	return Builder{
		stepSize:    0.01,
		sampleEvery: 1,
		monitorOn:   true,
		recordingOn: true,
	}
}

// WithStepSize sets the fixed simulation step, in seconds.
func (b Builder) WithStepSize(step sim.VTimeInSec) Builder {
	b.stepSize = step
	return b
}

// WithSampleInterval sets how many ticks pass between recorded signal
// snapshots.
func (b Builder) WithSampleInterval(every uint64) Builder {
	b.sampleEvery = every
	return b
}

// WithoutMonitoring sets the simulation to not use monitoring.
func (b Builder) WithoutMonitoring() Builder {
	b.monitorOn = false
	return b
}

// WithMonitorPort sets the port number for the monitoring server.
func (b Builder) WithMonitorPort(port int) Builder {
	b.monitorPort = port
	return b
}

// WithoutRecording disables telemetry recording.
func (b Builder) WithoutRecording() Builder {
	b.recordingOn = false
	return b
}

// WithOutputFileName sets the custom output file name for the data recorder.
func (b Builder) WithOutputFileName(filename string) Builder {
	b.outputFileName = filename
	return b
}

// WithDataRecorder sets a custom telemetry backend, replacing the default
// SQLite recorder.
func (b Builder) WithDataRecorder(recorder datarecording.DataRecorder) Builder {
	b.recorder = recorder
	return b
}

// WithLogger sets the logger used by the simulation.
func (b Builder) WithLogger(logger *zap.Logger) Builder {
	b.logger = logger
	return b
}

func (b Builder) parametersMustBeValid() {
	if !b.monitorOn && b.monitorPort != 0 {
		panic("monitor port cannot be set when monitoring is disabled")
	}

	if !b.recordingOn && b.outputFileName != "" {
		panic("output file name cannot be set when recording is disabled")
	}

	if !b.recordingOn && b.recorder != nil {
		panic("data recorder cannot be set when recording is disabled")
	}

	if b.recorder != nil && b.outputFileName != "" {
		panic("output file name cannot be set with a custom data recorder")
	}

	if b.stepSize <= 0 {
		panic("step size must be positive")
	}
}

// Build builds the simulation.
func (b Builder) Build() *Simulation {
	b.parametersMustBeValid()

	s := &Simulation{
		stepSize:      b.stepSize,
		sampleEvery:   b.sampleEvery,
		signals:       sim.NewSignalStore(),
		params:        sim.NewParameterStore(),
		compNameIndex: make(map[string]int),
		logger:        b.logger,
	}

	s.id = xid.New().String()

	if s.logger == nil {
		s.logger = zap.NewNop()
	}

	if b.recordingOn {
		if b.recorder != nil {
			s.recorder = b.recorder
		} else {
			outputPath := b.outputFileName
			if outputPath == "" {
				outputPath = "prosim_" + s.id
			}

			s.recorder = datarecording.New(outputPath)
		}
	}

	if b.monitorOn {
		s.monitor = monitoring.NewMonitor().WithLogger(s.logger)
		if b.monitorPort > 0 {
			s.monitor.WithPortNumber(b.monitorPort)
		}
		s.monitor.RegisterStores(s.signals, s.params)
	}

	return s
}
