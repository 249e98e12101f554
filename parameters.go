package orekit

import "fmt"

// ParameterDriver is a named scalar physical parameter of a force model.
// Selected drivers participate in sensitivity computation and get their own
// free variable; unselected ones enter the computation as plain constants.
type ParameterDriver struct {
	name     string
	value    float64
	selected bool
}

// NewParameterDriver returns an unselected driver with the given nominal value.
func NewParameterDriver(name string, value float64) *ParameterDriver {
	return &ParameterDriver{name: name, value: value}
}

// Name returns the parameter name.
func (p *ParameterDriver) Name() string { return p.name }

// Value returns the current parameter value.
func (p *ParameterDriver) Value() float64 { return p.value }

// SetValue updates the current parameter value.
func (p *ParameterDriver) SetValue(v float64) { p.value = v }

// IsSelected returns whether this parameter is estimated.
func (p *ParameterDriver) IsSelected() bool { return p.selected }

// SetSelected marks this parameter as estimated or not. A force model's
// selection must not change shape between calls to the same Converter; doing
// so is a caller contract violation and is not detected.
func (p *ParameterDriver) SetSelected(sel bool) { p.selected = sel }

// String implements the Stringer interface.
func (p *ParameterDriver) String() string {
	sel := ""
	if p.selected {
		sel = " (estimated)"
	}
	return fmt.Sprintf("%s=%g%s", p.name, p.value, sel)
}

// ForceModel contributes an acceleration to the equations of motion and
// exposes the ordered list of its physical parameters. The driver list must
// be stable for the lifetime of any Converter it is used with.
type ForceModel interface {
	fmt.Stringer
	ParameterDrivers() []*ParameterDriver
	// Acceleration returns the inertial perturbing acceleration in km/s².
	Acceleration(s State) ([]float64, error)
	// DiffAcceleration is the differentiable evaluation: the state comes from
	// Converter.GetState and the params from Converter.GetParameters, in
	// driver declaration order.
	DiffAcceleration(s *DiffState, params []Diff) ([3]Diff, error)
}
