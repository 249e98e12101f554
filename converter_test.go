package orekit

import (
	"errors"
	"testing"

	"github.com/gonum/floats"
)

// countingAttitude counts every evaluation of the wrapped law, plain and
// differentiable alike.
type countingAttitude struct {
	base  AttitudeProvider
	calls int
}

func (c *countingAttitude) Attitude(o *Orbit, dt Epoch, frame Frame) (Attitude, error) {
	c.calls++
	return c.base.Attitude(o, dt, frame)
}

func (c *countingAttitude) DiffAttitude(o *DiffOrbit, dt Epoch, frame Frame) (DiffAttitude, error) {
	c.calls++
	return c.base.DiffAttitude(o, dt, frame)
}

// failingAttitude always fails, for error propagation tests.
type failingAttitude struct{}

func (failingAttitude) Attitude(o *Orbit, dt Epoch, frame Frame) (Attitude, error) {
	return Attitude{}, errors.New("attitude failure")
}

func (failingAttitude) DiffAttitude(o *DiffOrbit, dt Epoch, frame Frame) (DiffAttitude, error) {
	return DiffAttitude{}, errors.New("attitude failure")
}

func testState() State {
	return State{Orbit: *NewOrbitFromOE(7500, 0.02, 25, 50, 20, 10, Earth), Mass: 1500, Frame: EME2000}
}

func TestConverterSeeding(t *testing.T) {
	s := testState()
	conv, err := NewConverter(s, 6, InertialPointing{})
	if err != nil {
		t.Fatal(err)
	}
	base := conv.BaseState()
	if base.Free() != 6 {
		t.Fatalf("free count: got %d want 6", base.Free())
	}
	a, ex, _, _, _, _ := s.Orbit.Equinoctial()
	if base.Orbit.A.Value() != a || base.Orbit.A.Partial(0) != 1 {
		t.Fatal("semi major axis must be seeded as variable 0")
	}
	if base.Orbit.Ex.Value() != ex || base.Orbit.Ex.Partial(1) != 1 {
		t.Fatal("ex must be seeded as variable 1")
	}
	if base.Orbit.Lv.Partial(5) != 1 {
		t.Fatal("true longitude must be seeded as variable 5")
	}
	// With 6 free variables the mass is a constant.
	vectorsEqual(t, "mass partials", base.Mass.Partials(), make([]float64, 6), 0)

	conv7, err := NewConverter(s, 7, InertialPointing{})
	if err != nil {
		t.Fatal(err)
	}
	if got := conv7.BaseState().Mass.Partial(6); got != 1 {
		t.Fatalf("mass must be variable 6 when estimated, got partial %v", got)
	}
}

func TestConverterBadFree(t *testing.T) {
	for _, free := range []int{0, 5, 8} {
		if _, err := NewConverter(testState(), free, InertialPointing{}); err == nil {
			t.Fatalf("expected an error for %d free state parameters", free)
		}
	}
}

func TestConverterAttitudeFailure(t *testing.T) {
	conv, err := NewConverter(testState(), 6, failingAttitude{})
	if err == nil {
		t.Fatal("expected the attitude failure to propagate")
	}
	if conv != nil {
		t.Fatal("no converter must be produced on failure")
	}
}

func TestConverterCache(t *testing.T) {
	counting := &countingAttitude{base: NadirPointing{}}
	conv, err := NewConverter(testState(), 6, counting)
	if err != nil {
		t.Fatal(err)
	}
	fmA := NewEmpiricalForce(1e-7, 0, 0)
	fmA.ParameterDrivers()[0].SetSelected(true)
	fmA.ParameterDrivers()[1].SetSelected(true)
	fmB := NewHarmonicsForce(Earth)
	fmB.ParameterDrivers()[0].SetSelected(true)
	fmB.ParameterDrivers()[1].SetSelected(true)

	sA := conv.GetState(fmA)
	if sA.Free() != 8 {
		t.Fatalf("free count: got %d want 8", sA.Free())
	}
	if conv.GetState(fmA) != sA {
		t.Fatal("same model must reuse the cached state")
	}
	// Different model, same selected parameter count: same state.
	if conv.GetState(fmB) != sA {
		t.Fatal("models with equal parameter counts must share the state")
	}
	// No selected parameters: the minimal state itself.
	none := NewEmpiricalForce(0, 0, 0)
	if conv.GetState(none) != conv.BaseState() {
		t.Fatal("a parameterless model must get the minimal state")
	}
	if counting.calls != 1 {
		t.Fatalf("attitude must be evaluated exactly once, got %d calls", counting.calls)
	}
}

func TestConverterExtension(t *testing.T) {
	conv, err := NewConverter(testState(), 6, NadirPointing{})
	if err != nil {
		t.Fatal(err)
	}
	fm := NewEmpiricalForce(1e-7, -2e-7, 3e-8)
	for _, driver := range fm.ParameterDrivers() {
		driver.SetSelected(true)
	}
	base := conv.BaseState()
	ext := conv.GetState(fm)
	if ext.Free() != 9 {
		t.Fatalf("free count: got %d want 9", ext.Free())
	}
	// Values and state partials carry over, parameter slots are zero.
	if ext.Orbit.A.Value() != base.Orbit.A.Value() {
		t.Fatal("extension must preserve values")
	}
	for i := 0; i < 3; i++ {
		if ext.Orbit.R[i].Value() != base.Orbit.R[i].Value() {
			t.Fatal("extension must preserve the Cartesian coordinates")
		}
		for j := 0; j < 6; j++ {
			if ext.Orbit.R[i].Partial(j) != base.Orbit.R[i].Partial(j) {
				t.Fatal("extension must preserve the state partials")
			}
		}
		for j := 6; j < 9; j++ {
			if ext.Orbit.R[i].Partial(j) != 0 || ext.Attitude.Q[i].Partial(j) != 0 {
				t.Fatal("parameter slots must start at zero")
			}
		}
	}
}

func TestConverterParameters(t *testing.T) {
	conv, err := NewConverter(testState(), 6, InertialPointing{})
	if err != nil {
		t.Fatal(err)
	}
	fm := NewEmpiricalForce(1e-7, -2e-7, 3e-8)
	fm.ParameterDrivers()[0].SetSelected(true)
	fm.ParameterDrivers()[2].SetSelected(true)
	state := conv.GetState(fm)
	params := conv.GetParameters(state, fm)
	if len(params) != 3 {
		t.Fatalf("expected one parameter per driver, got %d", len(params))
	}
	for i, param := range params {
		if param.Free() != state.Free() {
			t.Fatalf("param %d free count inconsistent with the state", i)
		}
		if param.Value() != fm.ParameterDrivers()[i].Value() {
			t.Fatalf("param %d value: got %v", i, param.Value())
		}
	}
	// Selected drivers get sequential indices after the state variables, the
	// unselected one stays a constant.
	if params[0].Partial(6) != 1 {
		t.Fatal("first selected driver must be variable 6")
	}
	if !floats.Equal(params[1].Partials(), make([]float64, 8)) {
		t.Fatal("unselected driver must be a constant")
	}
	if params[2].Partial(7) != 1 {
		t.Fatal("second selected driver must be variable 7")
	}
}
