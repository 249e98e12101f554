package orekit

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/gonum/floats"
)

type failingForce struct{}

func (failingForce) String() string                          { return "failing force" }
func (failingForce) ParameterDrivers() []*ParameterDriver    { return nil }
func (failingForce) Acceleration(s State) ([]float64, error) { return nil, errors.New("boom") }
func (failingForce) DiffAcceleration(s *DiffState, params []Diff) ([3]Diff, error) {
	return [3]Diff{}, errors.New("boom")
}

func TestPropagateTwoBody(t *testing.T) {
	start := NewEpochTAI(2017, 3, 1, 0, 0, 0)
	end := start.Shift(1800)
	orbit := NewOrbitFromOE(7000, 0.001, 30, 80, 40, 0, Earth)
	a0, ex0, ey0, hx0, hy0, _ := orbit.Equinoctial()

	eph := NewEphemeris()
	prop := NewPrecisePropagator(orbit, 1500, start, end, nil, InertialPointing{}, EME2000, 10*time.Second, ExportConfig{})
	prop.GenerateEphemeris(eph)
	if err := prop.Propagate(); err != nil {
		t.Fatal(err)
	}
	if !floats.EqualWithinAbs(prop.CurrentDT.Sub(end), 0, 1e-6) {
		t.Fatalf("propagation must end at the stop date, ended at %s", prop.CurrentDT)
	}
	if !eph.MinDate().Equals(start) {
		t.Fatalf("MinDate: got %s want %s", eph.MinDate(), start)
	}
	if !floats.EqualWithinAbs(eph.MaxDate().Sub(end), 0, 1e-6) {
		t.Fatalf("MaxDate: got %s want %s", eph.MaxDate(), end)
	}

	// Without perturbations the shape elements are integrals of motion, so
	// any intermediate query must return them unchanged.
	state, err := eph.Propagate(start.Shift(905))
	if err != nil {
		t.Fatal(err)
	}
	a, ex, ey, hx, hy, _ := state.Orbit.Equinoctial()
	if !floats.EqualWithinAbs(a, a0, 1e-3) {
		t.Fatalf("a: got %v want %v", a, a0)
	}
	if !floats.EqualWithinAbs(ex, ex0, 1e-7) || !floats.EqualWithinAbs(ey, ey0, 1e-7) {
		t.Fatalf("eccentricity vector drifted: (%v, %v) vs (%v, %v)", ex, ey, ex0, ey0)
	}
	if !floats.EqualWithinAbs(hx, hx0, 1e-9) || !floats.EqualWithinAbs(hy, hy0, 1e-9) {
		t.Fatalf("inclination vector drifted: (%v, %v) vs (%v, %v)", hx, hy, hx0, hy0)
	}
	if !floats.EqualWithinAbs(state.Mass, 1500, 1e-9) {
		t.Fatalf("mass: got %v", state.Mass)
	}

	// The dense output reproduces the integrator state exactly at the step
	// boundaries, including the very last one.
	final, err := eph.Propagate(eph.MaxDate())
	if err != nil {
		t.Fatal(err)
	}
	fa, fex, fey, fhx, fhy, flv := final.Orbit.Equinoctial()
	pa, pex, pey, phx, phy, plv := prop.Orbit.Equinoctial()
	vectorsEqual(t, "final elements",
		[]float64{fa, fex, fey, fhx, fhy, flv},
		[]float64{pa, pex, pey, phx, phy, plv}, 1e-9)
}

func TestPropagateJ2Regression(t *testing.T) {
	start := NewEpochTAI(2017, 3, 1, 0, 0, 0)
	duration := 1800.0
	orbit := NewOrbitFromOE(7000, 0.001, 30, 80, 40, 0, Earth)
	eph := NewEphemeris()
	prop := NewPrecisePropagator(orbit, 1500, start, start.Shift(duration),
		[]ForceModel{NewHarmonicsForce(Earth)}, InertialPointing{}, EME2000, 10*time.Second, ExportConfig{})
	prop.GenerateEphemeris(eph)
	if err := prop.Propagate(); err != nil {
		t.Fatal(err)
	}
	state, err := eph.Propagate(start.Shift(duration))
	if err != nil {
		t.Fatal(err)
	}
	// J2 causes a secular nodal regression for prograde orbits. Compare the
	// RAAN drift to the first order rate -1.5 n J2 (Re/p)² cos i.
	_, _, _, Ω, _, _, _, _, _ := state.Orbit.Elements()
	drift := Ω - Deg2rad(80)
	if drift >= 0 {
		t.Fatalf("expected nodal regression, got a drift of %v rad", drift)
	}
	n := 2 * math.Pi / orbit.Period().Seconds()
	p := orbit.SemiParameter()
	expected := -1.5 * n * Earth.J(2) * (Earth.Radius / p) * (Earth.Radius / p) * math.Cos(Deg2rad(30)) * duration
	// Short period oscillations ride on top of the secular drift, hence the
	// loose tolerance.
	if !floats.EqualWithinAbsOrRel(drift, expected, 1e-3, 0.5) {
		t.Fatalf("nodal regression: got %v want about %v", drift, expected)
	}
}

func TestPropagateUntil(t *testing.T) {
	start := NewEpochTAI(2017, 3, 1, 0, 0, 0)
	orbit := NewOrbitFromOE(7000, 0.001, 30, 80, 40, 0, Earth)
	prop := NewPrecisePropagator(orbit, 1500, start, start, nil, InertialPointing{}, EME2000, 10*time.Second, ExportConfig{})
	end := start.Shift(600)
	if err := prop.PropagateUntil(end); err != nil {
		t.Fatal(err)
	}
	if !floats.EqualWithinAbs(prop.CurrentDT.Sub(end), 0, 1e-6) {
		t.Fatalf("expected to stop at %s, stopped at %s", end, prop.CurrentDT)
	}
}

func TestPropagateForceFailure(t *testing.T) {
	start := NewEpochTAI(2017, 3, 1, 0, 0, 0)
	orbit := NewOrbitFromOE(7000, 0.001, 30, 80, 40, 0, Earth)
	prop := NewPrecisePropagator(orbit, 1500, start, start.Shift(60),
		[]ForceModel{failingForce{}}, InertialPointing{}, EME2000, 10*time.Second, ExportConfig{})
	if err := prop.Propagate(); err == nil {
		t.Fatal("a force model failure must abort the propagation")
	}
}

func TestEquinoctialRatesKeplerian(t *testing.T) {
	// Without perturbation only the true longitude moves, at the two-body
	// angular rate p^{-2} √(μp) w².
	o := NewOrbitFromOE(7200, 0.05, 20, 40, 15, 30, Earth)
	rates := equinoctialRates(o, [3]float64{0, 0, 0})
	for i := 0; i < 5; i++ {
		if rates[i] != 0 {
			t.Fatalf("rate %d: got %v want 0", i, rates[i])
		}
	}
	if rates[5] <= 0 {
		t.Fatalf("longitude rate must be positive, got %v", rates[5])
	}
	// At periapsis of a near-circular orbit the rate is close to the mean
	// motion.
	circ := NewOrbitFromOE(7000, 0.001, 30, 80, 40, 0, Earth)
	n := 2 * math.Pi / circ.Period().Seconds()
	if !floats.EqualWithinAbsOrRel(equinoctialRates(circ, [3]float64{0, 0, 0})[5], n, 1e-9, 1e-2) {
		t.Fatal("longitude rate inconsistent with the mean motion")
	}
}
