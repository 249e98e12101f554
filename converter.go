package orekit

import "fmt"

// Converter builds, on demand, forward-mode differentiable representations of
// a spacecraft state sized to however many sensitivity variables a given
// force model needs.
//
// The expensive step is evaluating the attitude law under differentiation, so
// it happens exactly once, when the converter is built with the minimal free
// variable count. Every larger state is derived from that one by structural
// extension, an O(state size) copy, and cached by extra parameter count.
//
// A Converter is owned by the estimation pass that created it; the cache
// population is not atomic, so instances must not be shared across concurrent
// Jacobian evaluations without external synchronization.
type Converter struct {
	freeStateParameters int
	provider            AttitudeProvider
	states              map[int]*DiffState
}

// NewConverter seeds a differentiable state from the nominal one.
// freeStateParameters is 6 to estimate the equinoctial elements only, or 7 to
// also estimate the mass. The attitude provider is evaluated once on the
// differentiable orbit; if it fails, no converter is produced.
func NewConverter(s State, freeStateParameters int, provider AttitudeProvider) (*Converter, error) {
	if freeStateParameters != 6 && freeStateParameters != 7 {
		return nil, fmt.Errorf("freeStateParameters must be 6 or 7, got %d", freeStateParameters)
	}
	free := freeStateParameters
	a, ex, ey, hx, hy, lv := s.Orbit.Equinoctial()
	dsA := NewVariable(0, free, a)
	dsEx := NewVariable(1, free, ex)
	dsEy := NewVariable(2, free, ey)
	dsHx := NewVariable(3, free, hx)
	dsHy := NewVariable(4, free, hy)
	dsLv := NewVariable(5, free, lv)
	// mass may have derivatives or not
	var dsMass Diff
	if free > 6 {
		dsMass = NewVariable(6, free, s.Mass)
	} else {
		dsMass = NewConstant(free, s.Mass)
	}
	dsOrbit := NewDiffOrbit(dsA, dsEx, dsEy, dsHx, dsHy, dsLv, s.Orbit.Origin, s.DT, s.Frame)
	dsAttitude, err := provider.DiffAttitude(&dsOrbit, s.DT, s.Frame)
	if err != nil {
		return nil, fmt.Errorf("attitude evaluation failed: %s", err)
	}
	c := &Converter{
		freeStateParameters: freeStateParameters,
		provider:            provider,
		states:              map[int]*DiffState{},
	}
	c.states[0] = &DiffState{Orbit: dsOrbit, Attitude: dsAttitude, Mass: dsMass}
	return c, nil
}

// FreeStateParameters returns the number of state free variables (6 or 7).
func (c *Converter) FreeStateParameters() int { return c.freeStateParameters }

// BaseState returns the minimal differentiable state, with no force model
// parameters appended.
func (c *Converter) BaseState() *DiffState { return c.states[0] }

// GetState returns the differentiable state sized for the force model: its
// free variable count is freeStateParameters plus the number of the model's
// selected drivers. States are built at most once per distinct parameter
// count and reused afterwards.
func (c *Converter) GetState(fm ForceModel) *DiffState {
	// count the required number of parameters
	nbParams := 0
	for _, driver := range fm.ParameterDrivers() {
		if driver.IsSelected() {
			nbParams++
		}
	}
	if state, found := c.states[nbParams]; found {
		return state
	}
	// first time this number of parameters is needed
	state := c.states[0].extend(c.freeStateParameters + nbParams)
	c.states[nbParams] = state
	return state
}

// GetParameters returns the force model parameters as differentiable values
// consistent with a state returned by GetState for the same model: selected
// drivers are seeded as free variables at sequential indices after the state
// variables, unselected drivers become constants.
func (c *Converter) GetParameters(state *DiffState, fm ForceModel) []Diff {
	free := state.Free()
	drivers := fm.ParameterDrivers()
	parameters := make([]Diff, len(drivers))
	index := c.freeStateParameters
	for i, driver := range drivers {
		if driver.IsSelected() {
			parameters[i] = NewVariable(index, free, driver.Value())
			index++
		} else {
			parameters[i] = NewConstant(free, driver.Value())
		}
	}
	return parameters
}
