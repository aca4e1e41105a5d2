package sim

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Value", func() {
	It("should construct from a raw number", func() {
		p := From[Pressure](101325.0)
		Expect(p.Raw()).To(BeNumerically("==", 101325.0))
	})

	It("should keep distinct unit names per tag", func() {
		Expect(unitNameOf[Pressure]()).To(Equal("pressure"))
		Expect(unitNameOf[Flow]()).To(Equal("flow"))
		Expect(unitNameOf[Ratio]()).To(Equal("ratio"))
		Expect(unitNameOf[Position]()).To(Equal("position"))
		Expect(unitNameOf[Velocity]()).To(Equal("velocity"))
		Expect(unitNameOf[Frequency]()).To(Equal("frequency"))
		Expect(unitNameOf[Mass]()).To(Equal("mass"))
		Expect(unitNameOf[Percent]()).To(Equal("percent"))
		Expect(unitNameOf[MassRate]()).To(Equal("massrate"))
	})

	It("should tag dependency descriptors with the unit name", func() {
		dep := Dep[Flow]("pump.flow")

		Expect(dep.ValueName).To(Equal("pump.flow"))
		Expect(dep.Unit).To(Equal("flow"))
	})
})
