package orekit

import (
	"errors"
	"fmt"
)

// rawStateSize is the dimension of the raw interpolated vector: the six
// equinoctial elements plus the mass.
const rawStateSize = 7

// ErrDateOutOfRange is returned by Ephemeris.Propagate for dates outside the
// covered interval. Out-of-range queries always fail; they are never clamped
// nor extrapolated.
var ErrDateOutOfRange = errors.New("date outside of ephemeris range")

// ErrNotInitialized is returned when querying an ephemeris whose context has
// not been fixed by Initialize.
var ErrNotInitialized = errors.New("ephemeris not initialized")

// Segment holds the local dense output of one integration step: polynomial
// coefficients for each raw state component, valid over [Start, End] (which
// may be decreasing for anti-chronological integration). Coefficients are in
// ascending powers of the normalized local time θ = (t-Start)/(End-Start).
type Segment struct {
	Start, End float64 // seconds from the ephemeris reference epoch
	coeff      [rawStateSize][]float64
}

// NewSegment builds a segment from explicit polynomial coefficients.
func NewSegment(start, end float64, coeff [rawStateSize][]float64) Segment {
	return Segment{Start: start, End: end, coeff: coeff}
}

// NewHermiteSegment builds the cubic Hermite dense output of one step from
// the raw states and their time derivatives at both step ends. This is the
// segment form produced by drivers whose integrator exposes states only at
// step boundaries. The interpolant reproduces y0, y1, dy0 and dy1 exactly.
func NewHermiteSegment(start, end float64, y0, y1, dy0, dy1 [rawStateSize]float64) Segment {
	h := end - start
	var coeff [rawStateSize][]float64
	for i := 0; i < rawStateSize; i++ {
		coeff[i] = []float64{
			y0[i],
			h * dy0[i],
			-3*y0[i] + 3*y1[i] - 2*h*dy0[i] - h*dy1[i],
			2*y0[i] - 2*y1[i] + h*dy0[i] + h*dy1[i],
		}
	}
	return Segment{Start: start, End: end, coeff: coeff}
}

// covers returns whether t lies within the segment interval.
func (s Segment) covers(t float64) bool {
	if s.Start <= s.End {
		return t >= s.Start && t <= s.End
	}
	return t >= s.End && t <= s.Start
}

// eval evaluates the local interpolation at t via Horner's scheme.
func (s Segment) eval(t float64) (y [rawStateSize]float64) {
	θ := (t - s.Start) / (s.End - s.Start)
	for i := 0; i < rawStateSize; i++ {
		c := s.coeff[i]
		v := c[len(c)-1]
		for j := len(c) - 2; j >= 0; j-- {
			v = v*θ + c[j]
		}
		y[i] = v
	}
	return
}

// Ephemeris stores numerically integrated orbital states for later retrieval,
// turning a forward integration into a randomly addressable bounded
// trajectory. It is filled step by step by a propagation driver and answers
// point queries once the integration has finished.
//
// Propagate is stateless: every call performs its own segment lookup and
// returns a fresh state, so concurrent read-only queries are safe once the
// ephemeris is initialized.
type Ephemeris struct {
	origin      CelestialObject
	frame       Frame
	ref         Epoch
	att         AttitudeProvider
	segments    []Segment
	initialized bool
	minDate     Epoch
	maxDate     Epoch
}

// NewEphemeris returns an empty ephemeris which must be filled by a
// propagation driver.
func NewEphemeris() *Ephemeris {
	return &Ephemeris{}
}

// HandleStep appends the dense output of one integration step. Steps arrive
// in integration order, which may be chronological or anti-chronological.
func (e *Ephemeris) HandleStep(seg Segment, isLast bool) {
	e.segments = append(e.segments, seg)
}

// Initialize fixes the reconstruction context once the integration is done:
// the reference epoch segment times are counted from, the frame, the
// gravitational context and the attitude law used to rebuild full states.
// The covered range is derived from the recorded initial and final times,
// swapped if the integration ran backward so that MinDate ≤ MaxDate.
func (e *Ephemeris) Initialize(ref Epoch, frame Frame, origin CelestialObject, att AttitudeProvider) error {
	if len(e.segments) == 0 {
		return errors.New("no integration steps recorded, cannot initialize ephemeris")
	}
	e.ref = ref
	e.frame = frame
	e.origin = origin
	e.att = att
	initial := e.segments[0].Start
	final := e.segments[len(e.segments)-1].End
	start := ref.Shift(initial)
	end := ref.Shift(final)
	if end.Before(start) {
		e.minDate = end
		e.maxDate = start
	} else {
		e.minDate = start
		e.maxDate = end
	}
	e.initialized = true
	return nil
}

// MinDate returns the first date of the covered range.
func (e *Ephemeris) MinDate() Epoch { return e.minDate }

// MaxDate returns the last date of the covered range.
func (e *Ephemeris) MaxDate() Epoch { return e.maxDate }

// Propagate returns the state at the given date. The raw vector is rebuilt
// from the segment covering the date, the orbit from the fixed frame and
// gravitational context, and the attitude is recomputed on the fly by the
// attitude law: it is never stored, which keeps the ephemeris compact.
// Repeated calls with the same date return equal states.
func (e *Ephemeris) Propagate(date Epoch) (State, error) {
	if !e.initialized {
		return State{}, ErrNotInitialized
	}
	if date.Before(e.minDate) || date.After(e.maxDate) {
		return State{}, fmt.Errorf("%s not in [%s, %s]: %w", date, e.minDate, e.maxDate, ErrDateOutOfRange)
	}
	t := date.Sub(e.ref)
	seg, err := e.locate(t)
	if err != nil {
		return State{}, err
	}
	raw := seg.eval(t)
	orbit := NewOrbitFromEquinoctial(raw[0], raw[1], raw[2], raw[3], raw[4], raw[5], e.origin)
	mass := raw[6]
	attitude, err := e.att.Attitude(orbit, date, e.frame)
	if err != nil {
		return State{}, fmt.Errorf("propagation failed: %s", err)
	}
	return State{DT: date, Orbit: *orbit, Attitude: attitude, Mass: mass, Frame: e.frame}, nil
}

// locate finds the segment covering t by bisection over the recorded steps.
func (e *Ephemeris) locate(t float64) (Segment, error) {
	forward := e.segments[len(e.segments)-1].End >= e.segments[0].Start
	lo, hi := 0, len(e.segments)-1
	for lo <= hi {
		mid := (lo + hi) / 2
		seg := e.segments[mid]
		if seg.covers(t) {
			return seg, nil
		}
		after := t > seg.Start && t > seg.End
		if after == forward {
			lo = mid + 1
		} else {
			hi = mid - 1
		}
	}
	// Bounds were checked by the caller; landing here means the steps do not
	// tile the interval.
	return Segment{}, fmt.Errorf("no integration step covers t=%f", t)
}

// Reset clears the accumulated steps so the same ephemeris can be reused for
// a new integration run.
func (e *Ephemeris) Reset() {
	e.segments = e.segments[:0]
	e.initialized = false
}
