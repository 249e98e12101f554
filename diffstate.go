package orekit

// Differentiable counterparts of Orbit, Attitude and State: one Diff per
// scalar component, all sharing the same free variable count.

// diffDot performs the inner product on differentiable vectors.
func diffDot(a, b [3]Diff) Diff {
	return a[0].Mul(b[0]).Add(a[1].Mul(b[1])).Add(a[2].Mul(b[2]))
}

// diffNorm returns the norm of a differentiable vector.
func diffNorm(a [3]Diff) Diff {
	return diffDot(a, a).Sqrt()
}

// diffCross performs the cross product on differentiable vectors.
func diffCross(a, b [3]Diff) [3]Diff {
	return [3]Diff{
		a[1].Mul(b[2]).Sub(a[2].Mul(b[1])),
		a[2].Mul(b[0]).Sub(a[0].Mul(b[2])),
		a[0].Mul(b[1]).Sub(a[1].Mul(b[0])),
	}
}

// DiffOrbit is an orbit whose equinoctial elements, position and velocity all
// carry partials with respect to the seeded free variables.
type DiffOrbit struct {
	A, Ex, Ey, Hx, Hy, Lv Diff
	R, V                  [3]Diff
	Origin                CelestialObject
	DT                    Epoch
	Frame                 Frame
}

// NewDiffOrbit builds a differentiable orbit from equinoctial elements and
// converts them to position and velocity so the Cartesian coordinates carry
// the element partials.
func NewDiffOrbit(a, ex, ey, hx, hy, lv Diff, origin CelestialObject, dt Epoch, frame Frame) DiffOrbit {
	o := DiffOrbit{A: a, Ex: ex, Ey: ey, Hx: hx, Hy: hy, Lv: lv, Origin: origin, DT: dt, Frame: frame}
	o.R, o.V = equinoctialToCartesian(a, ex, ey, hx, hy, lv, origin.μ)
	return o
}

// equinoctialToCartesian converts equinoctial elements to position and
// velocity in the inertial frame (direct orbits, retrograde factor +1).
func equinoctialToCartesian(a, ex, ey, hx, hy, lv Diff, μ float64) (R, V [3]Diff) {
	free := a.Free()
	one := NewConstant(free, 1)
	two := NewConstant(free, 2)

	sinL, cosL := lv.SinCos()
	α2 := hx.Square().Sub(hy.Square())
	s2 := one.Add(hx.Square()).Add(hy.Square())
	hxhy := hx.Mul(hy)
	p := a.Mul(one.Sub(ex.Square()).Sub(ey.Square()))
	w := one.Add(ex.Mul(cosL)).Add(ey.Mul(sinL))
	r := p.Div(w)

	rOverS2 := r.Div(s2)
	R[0] = rOverS2.Mul(cosL.Add(α2.Mul(cosL)).Add(two.Mul(hxhy).Mul(sinL)))
	R[1] = rOverS2.Mul(sinL.Sub(α2.Mul(sinL)).Add(two.Mul(hxhy).Mul(cosL)))
	R[2] = rOverS2.Mul(two).Mul(hx.Mul(sinL).Sub(hy.Mul(cosL)))

	sqrtμOverP := NewConstant(free, μ).Div(p).Sqrt()
	vOverS2 := sqrtμOverP.Div(s2)
	V[0] = vOverS2.Neg().Mul(
		sinL.Add(α2.Mul(sinL)).Sub(two.Mul(hxhy).Mul(cosL)).Add(ey).Sub(two.Mul(ex).Mul(hxhy)).Add(α2.Mul(ey)))
	V[1] = vOverS2.Neg().Mul(
		cosL.Neg().Add(α2.Mul(cosL)).Add(two.Mul(hxhy).Mul(sinL)).Sub(ex).Add(two.Mul(ey).Mul(hxhy)).Add(α2.Mul(ex)))
	V[2] = vOverS2.Mul(two).Mul(hx.Mul(cosL).Add(hy.Mul(sinL)).Add(ex.Mul(hx)).Add(ey.Mul(hy)))
	return
}

// extend returns this orbit over a larger free variable set, copying every
// scalar structurally. The expensive element-to-Cartesian conversion is not
// redone.
func (o DiffOrbit) extend(free int) DiffOrbit {
	ext := DiffOrbit{
		A: o.A.Extend(free), Ex: o.Ex.Extend(free), Ey: o.Ey.Extend(free),
		Hx: o.Hx.Extend(free), Hy: o.Hy.Extend(free), Lv: o.Lv.Extend(free),
		Origin: o.Origin, DT: o.DT, Frame: o.Frame,
	}
	for i := 0; i < 3; i++ {
		ext.R[i] = o.R[i].Extend(free)
		ext.V[i] = o.V[i].Extend(free)
	}
	return ext
}

// DiffAttitude is an attitude whose quaternion, rate and acceleration carry
// partials.
type DiffAttitude struct {
	Q    [4]Diff
	Rate [3]Diff
	Acc  [3]Diff
}

func (a DiffAttitude) extend(free int) DiffAttitude {
	var ext DiffAttitude
	for i := 0; i < 4; i++ {
		ext.Q[i] = a.Q[i].Extend(free)
	}
	for i := 0; i < 3; i++ {
		ext.Rate[i] = a.Rate[i].Extend(free)
		ext.Acc[i] = a.Acc[i].Extend(free)
	}
	return ext
}

// DiffState is the differentiable spacecraft state handed to force models for
// sensitivity computation.
type DiffState struct {
	Orbit    DiffOrbit
	Attitude DiffAttitude
	Mass     Diff
}

// Free returns the free variable count shared by every component.
func (s *DiffState) Free() int { return s.Mass.Free() }

func (s *DiffState) extend(free int) *DiffState {
	return &DiffState{
		Orbit:    s.Orbit.extend(free),
		Attitude: s.Attitude.extend(free),
		Mass:     s.Mass.Extend(free),
	}
}
