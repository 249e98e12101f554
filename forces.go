package orekit

import (
	"fmt"
	"math"
)

// rtnTriad returns the radial, transverse and normal unit vectors of the
// local orbital frame.
func rtnTriad(R, V []float64) (rHat, tHat, nHat []float64) {
	rHat = unit(R)
	nHat = unit(cross(R, V))
	tHat = cross(nHat, rHat)
	return
}

// diffRTNTriad is the differentiable version of rtnTriad.
func diffRTNTriad(R, V [3]Diff) (rHat, tHat, nHat [3]Diff) {
	rn := diffNorm(R)
	h := diffCross(R, V)
	hn := diffNorm(h)
	for i := 0; i < 3; i++ {
		rHat[i] = R[i].Div(rn)
		nHat[i] = h[i].Div(hn)
	}
	tHat = diffCross(nHat, rHat)
	return
}

// HarmonicsForce models the zonal harmonics J2 and J3 of the central body as
// perturbing Cartesian accelerations. Both coefficients are exposed as
// parameter drivers so they can be estimated.
type HarmonicsForce struct {
	Body    CelestialObject
	drivers []*ParameterDriver
}

// NewHarmonicsForce returns the zonal harmonics force of the given body, with
// driver values initialized from the body constants.
func NewHarmonicsForce(body CelestialObject) *HarmonicsForce {
	return &HarmonicsForce{Body: body, drivers: []*ParameterDriver{
		NewParameterDriver("J2", body.J(2)),
		NewParameterDriver("J3", body.J(3)),
	}}
}

// String implements the Stringer interface.
func (f *HarmonicsForce) String() string {
	return fmt.Sprintf("%s zonal harmonics", f.Body.Name)
}

// ParameterDrivers implements ForceModel.
func (f *HarmonicsForce) ParameterDrivers() []*ParameterDriver { return f.drivers }

// Acceleration implements ForceModel.
func (f *HarmonicsForce) Acceleration(s State) ([]float64, error) {
	R := s.Orbit.R()
	x, y, z := R[0], R[1], R[2]
	z2 := z * z
	z3 := z2 * z
	z4 := z3 * z
	r2 := x*x + y*y + z2
	r252 := math.Pow(r2, 5/2.)
	r272 := math.Pow(r2, 7/2.)
	r292 := math.Pow(r2, 9/2.)
	J2 := f.drivers[0].Value()
	J3 := f.drivers[1].Value()
	acc := make([]float64, 3)
	accJ2 := (3 / 2.) * J2 * math.Pow(f.Body.Radius, 2) * f.Body.μ
	acc[0] = accJ2 * (5*x*z2/r272 - x/r252)
	acc[1] = accJ2 * (5*y*z2/r272 - y/r252)
	acc[2] = accJ2 * (5*z3/r272 - 3*z/r252)
	if J3 != 0 {
		accJ3 := J3 * math.Pow(f.Body.Radius, 3) * f.Body.μ
		acc[0] += (5 / 2.) * accJ3 * (7*x*z3/r292 - 3*x*z/r272)
		acc[1] += (5 / 2.) * accJ3 * (7*y*z3/r292 - 3*y*z/r272)
		acc[2] += 0.5 * accJ3 * (35*z4/r292 - 30*z2/r272 + 3/r252)
	}
	return acc, nil
}

// DiffAcceleration implements ForceModel. Same formulas as Acceleration, on
// Diff scalars, with the coefficients taken from the params slice.
func (f *HarmonicsForce) DiffAcceleration(s *DiffState, params []Diff) ([3]Diff, error) {
	free := s.Free()
	x, y, z := s.Orbit.R[0], s.Orbit.R[1], s.Orbit.R[2]
	z2 := z.Square()
	z3 := z2.Mul(z)
	z4 := z3.Mul(z)
	r2 := x.Square().Add(y.Square()).Add(z2)
	r212 := r2.Sqrt()
	r252 := r2.Square().Mul(r212)
	r272 := r252.Mul(r2)
	r292 := r272.Mul(r2)
	J2 := params[0]
	J3 := params[1]
	re2μ := NewConstant(free, math.Pow(f.Body.Radius, 2)*f.Body.μ)
	accJ2 := J2.Mul(re2μ).Scale(3 / 2.)
	var acc [3]Diff
	acc[0] = accJ2.Mul(x.Mul(z2).Div(r272).Scale(5).Sub(x.Div(r252)))
	acc[1] = accJ2.Mul(y.Mul(z2).Div(r272).Scale(5).Sub(y.Div(r252)))
	acc[2] = accJ2.Mul(z3.Div(r272).Scale(5).Sub(z.Div(r252).Scale(3)))
	re3μ := NewConstant(free, math.Pow(f.Body.Radius, 3)*f.Body.μ)
	accJ3 := J3.Mul(re3μ)
	acc[0] = acc[0].Add(accJ3.Mul(x.Mul(z3).Div(r292).Scale(7).Sub(x.Mul(z).Div(r272).Scale(3))).Scale(5 / 2.))
	acc[1] = acc[1].Add(accJ3.Mul(y.Mul(z3).Div(r292).Scale(7).Sub(y.Mul(z).Div(r272).Scale(3))).Scale(5 / 2.))
	acc[2] = acc[2].Add(accJ3.Mul(z4.Div(r292).Scale(35).Sub(z2.Div(r272).Scale(30)).Add(NewConstant(free, 3).Div(r252))).Scale(0.5))
	return acc, nil
}

// EmpiricalForce is a constant acceleration expressed in the RTN local
// orbital frame, the classic catch-all for unmodeled dynamics in orbit
// determination. All three components are parameter drivers.
type EmpiricalForce struct {
	drivers []*ParameterDriver
}

// NewEmpiricalForce returns an empirical RTN acceleration, in km/s².
func NewEmpiricalForce(aR, aT, aN float64) *EmpiricalForce {
	return &EmpiricalForce{drivers: []*ParameterDriver{
		NewParameterDriver("aR", aR),
		NewParameterDriver("aT", aT),
		NewParameterDriver("aN", aN),
	}}
}

// String implements the Stringer interface.
func (f *EmpiricalForce) String() string { return "empirical RTN acceleration" }

// ParameterDrivers implements ForceModel.
func (f *EmpiricalForce) ParameterDrivers() []*ParameterDriver { return f.drivers }

// Acceleration implements ForceModel.
func (f *EmpiricalForce) Acceleration(s State) ([]float64, error) {
	R, V := s.Orbit.RV()
	rHat, tHat, nHat := rtnTriad(R, V)
	aR := f.drivers[0].Value()
	aT := f.drivers[1].Value()
	aN := f.drivers[2].Value()
	acc := make([]float64, 3)
	for i := 0; i < 3; i++ {
		acc[i] = aR*rHat[i] + aT*tHat[i] + aN*nHat[i]
	}
	return acc, nil
}

// DiffAcceleration implements ForceModel.
func (f *EmpiricalForce) DiffAcceleration(s *DiffState, params []Diff) ([3]Diff, error) {
	rHat, tHat, nHat := diffRTNTriad(s.Orbit.R, s.Orbit.V)
	var acc [3]Diff
	for i := 0; i < 3; i++ {
		acc[i] = params[0].Mul(rHat[i]).Add(params[1].Mul(tHat[i])).Add(params[2].Mul(nHat[i]))
	}
	return acc, nil
}
