package datarecording

import (
	"github.com/prosimlab/prosim/sim"
)

// SignalSampleTable is the table that holds per-tick signal samples.
const SignalSampleTable = "signal_samples"

// ParamChangeTable is the table that holds effective parameter changes.
const ParamChangeTable = "param_changes"

// A SignalSample is one recorded signal value at the end of a tick.
type SignalSample struct {
	Tick        uint64
	TimeSeconds float64
	Name        string
	Value       float64
}

// A ParamChangeEntry is one recorded parameter change.
type ParamChangeEntry struct {
	Tick           uint64
	TimeSeconds    float64
	Name           string
	OldValue       float64
	RequestedValue float64
	AppliedValue   float64
	Clamped        bool
}

// A SignalLogger samples signal snapshots into a DataRecorder. Register
// OnTick as a runner tick listener.
type SignalLogger struct {
	recorder    DataRecorder
	signals     *sim.SignalStore
	sampleEvery uint64
}

// NewSignalLogger creates a SignalLogger that records a full signal snapshot
// every sampleEvery ticks. It creates the telemetry tables.
func NewSignalLogger(
	recorder DataRecorder,
	signals *sim.SignalStore,
	sampleEvery uint64,
) *SignalLogger {
	if sampleEvery == 0 {
		sampleEvery = 1
	}

	recorder.CreateTable(SignalSampleTable, SignalSample{})
	recorder.CreateTable(ParamChangeTable, ParamChangeEntry{})

	return &SignalLogger{
		recorder:    recorder,
		signals:     signals,
		sampleEvery: sampleEvery,
	}
}

// OnTick records a snapshot of all signals if the tick falls on the sampling
// interval.
func (l *SignalLogger) OnTick(now sim.SimTime) {
	if now.TickCount%l.sampleEvery != 0 {
		return
	}

	for name, value := range l.signals.Snapshot() {
		l.recorder.InsertData(SignalSampleTable, SignalSample{
			Tick:        now.TickCount,
			TimeSeconds: float64(now.ElapsedSeconds),
			Name:        name,
			Value:       value,
		})
	}
}

// RecordParamChange records one effective parameter change at the given
// simulation time.
func (l *SignalLogger) RecordParamChange(now sim.SimTime, c sim.ParamChange) {
	l.recorder.InsertData(ParamChangeTable, ParamChangeEntry{
		Tick:           now.TickCount,
		TimeSeconds:    float64(now.ElapsedSeconds),
		Name:           c.Name,
		OldValue:       c.OldValue,
		RequestedValue: c.RequestedValue,
		AppliedValue:   c.AppliedValue,
		Clamped:        c.Clamped,
	})
}
