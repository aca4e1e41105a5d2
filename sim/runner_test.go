package sim

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// buildPressureDoubler assembles the two-component scenario: A writes a
// constant pressure P, B reads P and writes Q = P * 2. The components are
// handed to the builder in the wrong order on purpose.
func buildPressureDoubler(signals *SignalStore) *Pipeline {
	a := newFakeComp("A")
	a.writes = []Dependency{Dep[Pressure]("P")}
	a.tickFunc = func(SimTime, VTimeInSec) error {
		return WriteSignal(signals, "P", From[Pressure](10))
	}

	b := newFakeComp("B")
	b.reads = []Dependency{Dep[Pressure]("P")}
	b.writes = []Dependency{Dep[Pressure]("Q")}
	b.tickFunc = func(SimTime, VTimeInSec) error {
		p, err := ReadSignal[Pressure](signals, "P")
		if err != nil {
			return err
		}

		return WriteSignal(signals, "Q", From[Pressure](p.Raw()*2))
	}

	pipeline, err := MakePipelineBuilder().WithComponents(b, a).Build()
	Expect(err).ToNot(HaveOccurred())

	return pipeline
}

var _ = Describe("Runner", func() {
	It("should reject non-positive step sizes", func() {
		_, err := NewRunner(&Pipeline{}, 0)
		Expect(err).To(MatchError(ErrInvalidArgument))
	})

	It("should compute reordered values after one tick", func() {
		signals := NewSignalStore()
		runner, err := NewRunner(buildPressureDoubler(signals), 0.01)
		Expect(err).ToNot(HaveOccurred())

		Expect(runner.StepOnce()).To(Succeed())

		q, err := signals.Get("Q")
		Expect(err).ToNot(HaveOccurred())
		Expect(q).To(BeNumerically("==", 20))
	})

	It("should advance tick count and elapsed time by step(n)", func() {
		signals := NewSignalStore()
		runner, _ := NewRunner(buildPressureDoubler(signals), 0.01)

		Expect(runner.Step(10)).To(Succeed())

		status := runner.Status()
		Expect(status.TickCount).To(Equal(uint64(10)))
		Expect(status.ElapsedSeconds).To(BeNumerically("~", 0.10, 1e-12))
	})

	It("should reject step counts smaller than 1", func() {
		runner, _ := NewRunner(&Pipeline{}, 0.01)

		Expect(runner.Step(0)).To(MatchError(ErrInvalidArgument))
		Expect(runner.Step(-3)).To(MatchError(ErrInvalidArgument))
	})

	It("should step manually even while paused", func() {
		signals := NewSignalStore()
		runner, _ := NewRunner(buildPressureDoubler(signals), 0.01)

		runner.Pause()

		Expect(runner.StepOnce()).To(Succeed())
		Expect(runner.Status().TickCount).To(Equal(uint64(1)))
	})

	It("should produce identical snapshots for identical step sequences", func() {
		run := func() map[string]float64 {
			signals := NewSignalStore()
			runner, _ := NewRunner(buildPressureDoubler(signals), 0.01)
			Expect(runner.Step(100)).To(Succeed())

			return signals.Snapshot()
		}

		first := run()
		second := run()

		Expect(first).To(Equal(second))
	})

	It("should propagate component errors on manual stepping", func() {
		tickErr := errors.New("sensor failure")

		bad := newFakeComp("Bad")
		bad.tickFunc = func(SimTime, VTimeInSec) error { return tickErr }

		pipeline, err := MakePipelineBuilder().WithComponents(bad).Build()
		Expect(err).ToNot(HaveOccurred())

		runner, _ := NewRunner(pipeline, 0.01)

		Expect(runner.StepOnce()).To(MatchError(tickErr))
	})

	It("should notify tick listeners after each completed tick", func() {
		signals := NewSignalStore()
		runner, _ := NewRunner(buildPressureDoubler(signals), 0.01)

		var ticks []uint64
		runner.RegisterTickListener(func(now SimTime) {
			ticks = append(ticks, now.TickCount)
		})

		Expect(runner.Step(3)).To(Succeed())

		Expect(ticks).To(Equal([]uint64{1, 2, 3}))
	})

	Context("when running in real time", func() {
		It("should tick until cancelled", func() {
			signals := NewSignalStore()
			runner, _ := NewRunner(buildPressureDoubler(signals), 0.001)

			ctx, cancel := context.WithCancel(context.Background())
			done := make(chan error, 1)
			go func() { done <- runner.Run(ctx) }()

			Eventually(func() uint64 {
				return runner.Status().TickCount
			}).WithTimeout(time.Second).Should(BeNumerically(">", 5))

			cancel()
			Eventually(done).Should(Receive(BeNil()))
			Expect(runner.Status().Running).To(BeFalse())
		})

		It("should not tick while paused", func() {
			signals := NewSignalStore()
			runner, _ := NewRunner(buildPressureDoubler(signals), 0.001)
			runner.Pause()

			ctx, cancel := context.WithCancel(context.Background())
			done := make(chan error, 1)
			go func() { done <- runner.Run(ctx) }()

			Consistently(func() uint64 {
				return runner.Status().TickCount
			}).WithTimeout(50 * time.Millisecond).Should(Equal(uint64(0)))

			runner.Resume()
			Eventually(func() uint64 {
				return runner.Status().TickCount
			}).WithTimeout(time.Second).Should(BeNumerically(">", 0))

			cancel()
			Eventually(done).Should(Receive(BeNil()))
		})

		It("should swallow component errors and keep ticking", func() {
			tickErr := errors.New("sensor failure")

			bad := newFakeComp("Bad")
			bad.tickFunc = func(SimTime, VTimeInSec) error { return tickErr }

			pipeline, err := MakePipelineBuilder().WithComponents(bad).Build()
			Expect(err).ToNot(HaveOccurred())

			runner, _ := NewRunner(pipeline, 0.001)

			ctx, cancel := context.WithCancel(context.Background())
			done := make(chan error, 1)
			go func() { done <- runner.Run(ctx) }()

			Eventually(func() uint64 {
				return runner.Status().TickCount
			}).WithTimeout(time.Second).Should(BeNumerically(">", 3))

			cancel()
			Eventually(done).Should(Receive(BeNil()))
		})

		It("should refuse to run twice concurrently", func() {
			signals := NewSignalStore()
			runner, _ := NewRunner(buildPressureDoubler(signals), 0.001)

			ctx, cancel := context.WithCancel(context.Background())
			done := make(chan error, 1)
			go func() { done <- runner.Run(ctx) }()

			Eventually(func() bool {
				return runner.Status().Running
			}).WithTimeout(time.Second).Should(BeTrue())

			Expect(runner.Run(ctx)).To(MatchError(ErrInvalidArgument))

			cancel()
			Eventually(done).Should(Receive(BeNil()))
		})

		It("should record lateness when ticks overrun the step", func() {
			slow := newFakeComp("Slow")
			slow.tickFunc = func(SimTime, VTimeInSec) error {
				time.Sleep(2 * time.Millisecond)
				return nil
			}

			pipeline, err := MakePipelineBuilder().WithComponents(slow).Build()
			Expect(err).ToNot(HaveOccurred())

			runner, _ := NewRunner(pipeline, 0.0001)

			ctx, cancel := context.WithCancel(context.Background())
			done := make(chan error, 1)
			go func() { done <- runner.Run(ctx) }()

			Eventually(func() uint64 {
				return runner.Status().LateTicks
			}).WithTimeout(time.Second).Should(BeNumerically(">", 0))

			cancel()
			Eventually(done).Should(Receive(BeNil()))

			Expect(runner.Status().MaxBehindSeconds).To(BeNumerically(">", 0))
		})
	})
})
