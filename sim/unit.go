package sim

// A UnitTag marks the physical quantity that a value carries. Unit tags are
// empty marker types; they exist so that a pressure cannot be silently used
// where a flow is expected.
type UnitTag interface {
	UnitName() string
}

// Pressure is the unit tag for pressures, in pascal.
type Pressure struct{}

// UnitName returns the name of the unit.
func (Pressure) UnitName() string { return "pressure" }

// Flow is the unit tag for volumetric flow rates, in m^3/s.
type Flow struct{}

// UnitName returns the name of the unit.
func (Flow) UnitName() string { return "flow" }

// Ratio is the unit tag for dimensionless ratios in [0, 1].
type Ratio struct{}

// UnitName returns the name of the unit.
func (Ratio) UnitName() string { return "ratio" }

// Position is the unit tag for positions and levels, in meters.
type Position struct{}

// UnitName returns the name of the unit.
func (Position) UnitName() string { return "position" }

// Velocity is the unit tag for velocities, in m/s.
type Velocity struct{}

// UnitName returns the name of the unit.
func (Velocity) UnitName() string { return "velocity" }

// Frequency is the unit tag for rotational speeds and frequencies, in Hz.
type Frequency struct{}

// UnitName returns the name of the unit.
func (Frequency) UnitName() string { return "frequency" }

// Mass is the unit tag for masses, in kg.
type Mass struct{}

// UnitName returns the name of the unit.
func (Mass) UnitName() string { return "mass" }

// Percent is the unit tag for percentages in [0, 100].
type Percent struct{}

// UnitName returns the name of the unit.
func (Percent) UnitName() string { return "percent" }

// MassRate is the unit tag for mass flow rates, in kg/s.
type MassRate struct{}

// UnitName returns the name of the unit.
func (MassRate) UnitName() string { return "massrate" }

// A Value is a float64 tagged with the unit of the quantity it measures.
// The tag only exists at the type level; a Value is a plain float64 at
// runtime.
type Value[U UnitTag] float64

// From creates a unit-tagged value from a raw number.
func From[U UnitTag](raw float64) Value[U] {
	return Value[U](raw)
}

// Raw returns the untagged number. It is the escape hatch for generic code,
// such as serialization, that does not care about units.
func (v Value[U]) Raw() float64 {
	return float64(v)
}

func unitNameOf[U UnitTag]() string {
	var u U
	return u.UnitName()
}
