package orekit

import (
	"errors"
	"math"
)

// Frame names an inertial reference frame. Frame transformations themselves
// are external collaborators; the core only tags states with the frame they
// are expressed in.
type Frame uint8

// Supported frames.
const (
	EME2000 Frame = iota
	TEME
	ICRF
)

func (f Frame) String() string {
	switch f {
	case EME2000:
		return "EME2000"
	case TEME:
		return "TEME"
	case ICRF:
		return "ICRF"
	default:
		return "unknown frame"
	}
}

// Attitude is the orientation state of the vehicle: a scalar-first quaternion,
// the rotation rate and the rotation acceleration, all in the tagged frame.
type Attitude struct {
	Q    [4]float64
	Rate [3]float64
	Acc  [3]float64
}

// AttitudeProvider computes the vehicle orientation from its orbit. It must
// be deterministic and side effect free, and it must support evaluation on
// the differentiable orbit representation so that attitude dependent force
// contributions carry correct partials end to end.
type AttitudeProvider interface {
	Attitude(o *Orbit, dt Epoch, frame Frame) (Attitude, error)
	DiffAttitude(o *DiffOrbit, dt Epoch, frame Frame) (DiffAttitude, error)
}

// State is the full spacecraft state: orbit, attitude and mass at an epoch,
// expressed in a frame. Immutable once built.
type State struct {
	DT       Epoch
	Orbit    Orbit
	Attitude Attitude
	Mass     float64
	Frame    Frame
}

// InertialPointing holds the body frame aligned with the reference frame.
type InertialPointing struct{}

// Attitude implements AttitudeProvider.
func (p InertialPointing) Attitude(o *Orbit, dt Epoch, frame Frame) (Attitude, error) {
	return Attitude{Q: [4]float64{1, 0, 0, 0}}, nil
}

// DiffAttitude implements AttitudeProvider. All partials are zero since the
// orientation does not depend on the orbit.
func (p InertialPointing) DiffAttitude(o *DiffOrbit, dt Epoch, frame Frame) (DiffAttitude, error) {
	free := o.A.Free()
	var att DiffAttitude
	att.Q[0] = NewConstant(free, 1)
	for i := 1; i < 4; i++ {
		att.Q[i] = NewConstant(free, 0)
	}
	for i := 0; i < 3; i++ {
		att.Rate[i] = NewConstant(free, 0)
		att.Acc[i] = NewConstant(free, 0)
	}
	return att, nil
}

// NadirPointing points the body +Z axis at the center of the central body.
// The quaternion is the shortest rotation taking +Z to the nadir direction,
// and the rate is the orbital angular velocity r×v/r². Singular for a nadir
// direction exactly along -Z.
type NadirPointing struct{}

// Attitude implements AttitudeProvider.
func (p NadirPointing) Attitude(o *Orbit, dt Epoch, frame Frame) (Attitude, error) {
	R, V := o.RV()
	u := unit(R)
	nadir := []float64{-u[0], -u[1], -u[2]}
	// Shortest rotation from +Z to nadir: q = normalize(1 + z·n, z×n).
	w := 1 + nadir[2]
	x := -nadir[1]
	y := nadir[0]
	n := math.Sqrt(w*w + x*x + y*y)
	if n < 1e-9 {
		return Attitude{}, errors.New("nadir attitude singular: nadir direction along -Z")
	}
	r2 := dot(R, R)
	h := cross(R, V)
	return Attitude{
		Q:    [4]float64{w / n, x / n, y / n, 0},
		Rate: [3]float64{h[0] / r2, h[1] / r2, h[2] / r2},
	}, nil
}

// DiffAttitude implements AttitudeProvider on the differentiable orbit. The
// same formulas are evaluated on Diff scalars so the orientation carries its
// partials with respect to the seeded variables.
func (p NadirPointing) DiffAttitude(o *DiffOrbit, dt Epoch, frame Frame) (DiffAttitude, error) {
	free := o.A.Free()
	rn := diffNorm(o.R)
	var nadir [3]Diff
	for i := 0; i < 3; i++ {
		nadir[i] = o.R[i].Div(rn).Neg()
	}
	w := nadir[2].AddScalar(1)
	x := nadir[1].Neg()
	y := nadir[0]
	n := w.Mul(w).Add(x.Mul(x)).Add(y.Mul(y)).Sqrt()
	if n.Value() < 1e-9 {
		return DiffAttitude{}, errors.New("nadir attitude singular: nadir direction along -Z")
	}
	r2 := diffDot(o.R, o.R)
	h := diffCross(o.R, o.V)
	var att DiffAttitude
	att.Q[0] = w.Div(n)
	att.Q[1] = x.Div(n)
	att.Q[2] = y.Div(n)
	att.Q[3] = NewConstant(free, 0)
	for i := 0; i < 3; i++ {
		att.Rate[i] = h[i].Div(r2)
		att.Acc[i] = NewConstant(free, 0)
	}
	return att, nil
}
