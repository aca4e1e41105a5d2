package sim

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("SignalStore", func() {
	var store *SignalStore

	BeforeEach(func() {
		store = NewSignalStore()
	})

	It("should create a signal on first set", func() {
		Expect(store.Set("Tank.Level", 1.5)).To(Succeed())

		v, err := store.Get("Tank.Level")
		Expect(err).ToNot(HaveOccurred())
		Expect(v).To(BeNumerically("==", 1.5))
	})

	It("should ignore case and surrounding whitespace", func() {
		Expect(store.Set("  Tank.Level ", 2.0)).To(Succeed())

		v, err := store.Get("TANK.LEVEL")
		Expect(err).ToNot(HaveOccurred())
		Expect(v).To(BeNumerically("==", 2.0))
	})

	It("should reject empty names", func() {
		Expect(store.Set("", 1.0)).To(MatchError(ErrInvalidKey))
		Expect(store.Set("   ", 1.0)).To(MatchError(ErrInvalidKey))
	})

	It("should fail to get an absent signal", func() {
		_, err := store.Get("missing")
		Expect(err).To(MatchError(ErrUnknownKey))
	})

	It("should try-get without failing", func() {
		_, ok := store.TryGet("missing")
		Expect(ok).To(BeFalse())

		Expect(store.Set("present", 3.0)).To(Succeed())

		v, ok := store.TryGet("present")
		Expect(ok).To(BeTrue())
		Expect(v).To(BeNumerically("==", 3.0))
	})

	It("should snapshot a point-in-time copy", func() {
		Expect(store.Set("a", 1.0)).To(Succeed())
		Expect(store.Set("b", 2.0)).To(Succeed())

		snapshot := store.Snapshot()

		Expect(store.Set("a", 10.0)).To(Succeed())

		Expect(snapshot).To(HaveLen(2))
		Expect(snapshot["a"]).To(BeNumerically("==", 1.0))
		Expect(snapshot["b"]).To(BeNumerically("==", 2.0))
	})

	It("should read and write unit-tagged values", func() {
		Expect(WriteSignal(store, "tank.pressure", From[Pressure](101325.0))).
			To(Succeed())

		p, err := ReadSignal[Pressure](store, "tank.pressure")
		Expect(err).ToNot(HaveOccurred())
		Expect(p.Raw()).To(BeNumerically("==", 101325.0))
	})
})
