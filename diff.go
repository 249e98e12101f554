package orekit

import (
	"fmt"
	"math"
)

// Diff is a forward-mode differentiable scalar: a value paired with its first
// order partial derivatives with respect to a fixed number of free variables,
// i.e. an order-1 truncated multivariate Taylor expansion. Two Diff values
// only combine when they share the same free variable count; mixing different
// counts is a programming error and panics.
type Diff struct {
	v float64
	g []float64
}

// NewVariable returns a Diff seeded as the free variable of the given index:
// a unit partial in its own slot and zero elsewhere.
func NewVariable(index, free int, value float64) Diff {
	if index < 0 || index >= free {
		panic(fmt.Errorf("variable index %d out of range for %d free variables", index, free))
	}
	g := make([]float64, free)
	g[index] = 1
	return Diff{value, g}
}

// NewConstant returns a Diff with all partials zero.
func NewConstant(free int, value float64) Diff {
	return Diff{value, make([]float64, free)}
}

// Value returns the scalar value.
func (d Diff) Value() float64 { return d.v }

// Free returns the number of free variables.
func (d Diff) Free() int { return len(d.g) }

// Partial returns the partial derivative with respect to free variable i.
func (d Diff) Partial(i int) float64 { return d.g[i] }

// Partials returns a copy of the gradient.
func (d Diff) Partials() []float64 {
	cpy := make([]float64, len(d.g))
	copy(cpy, d.g)
	return cpy
}

// Extend returns this value over a larger free variable set: the value and
// existing partials are copied unchanged and the new slots are zero, since
// the new free variables do not affect pre-existing quantities at the
// extension point. This is a pure structural operation and cannot fail.
func (d Diff) Extend(free int) Diff {
	if free < len(d.g) {
		panic(fmt.Errorf("cannot extend %d free variables down to %d", len(d.g), free))
	}
	g := make([]float64, free)
	copy(g, d.g)
	return Diff{d.v, g}
}

func (d Diff) compat(o Diff) {
	if len(d.g) != len(o.g) {
		panic(fmt.Errorf("free variable count mismatch: %d != %d", len(d.g), len(o.g)))
	}
}

// Add returns d + o.
func (d Diff) Add(o Diff) Diff {
	d.compat(o)
	g := make([]float64, len(d.g))
	for i := range g {
		g[i] = d.g[i] + o.g[i]
	}
	return Diff{d.v + o.v, g}
}

// Sub returns d - o.
func (d Diff) Sub(o Diff) Diff {
	d.compat(o)
	g := make([]float64, len(d.g))
	for i := range g {
		g[i] = d.g[i] - o.g[i]
	}
	return Diff{d.v - o.v, g}
}

// Mul returns d * o.
func (d Diff) Mul(o Diff) Diff {
	d.compat(o)
	g := make([]float64, len(d.g))
	for i := range g {
		g[i] = d.g[i]*o.v + d.v*o.g[i]
	}
	return Diff{d.v * o.v, g}
}

// Div returns d / o.
func (d Diff) Div(o Diff) Diff {
	d.compat(o)
	g := make([]float64, len(d.g))
	inv2 := 1 / (o.v * o.v)
	for i := range g {
		g[i] = (d.g[i]*o.v - d.v*o.g[i]) * inv2
	}
	return Diff{d.v / o.v, g}
}

// Neg returns -d.
func (d Diff) Neg() Diff {
	return d.Scale(-1)
}

// Scale returns c * d for a plain scalar c.
func (d Diff) Scale(c float64) Diff {
	g := make([]float64, len(d.g))
	for i := range g {
		g[i] = c * d.g[i]
	}
	return Diff{c * d.v, g}
}

// AddScalar returns d + c for a plain scalar c.
func (d Diff) AddScalar(c float64) Diff {
	g := make([]float64, len(d.g))
	copy(g, d.g)
	return Diff{d.v + c, g}
}

// Sqrt returns the square root of d.
func (d Diff) Sqrt() Diff {
	s := math.Sqrt(d.v)
	g := make([]float64, len(d.g))
	inv := 1 / (2 * s)
	for i := range g {
		g[i] = d.g[i] * inv
	}
	return Diff{s, g}
}

// Sin returns the sine of d.
func (d Diff) Sin() Diff {
	s, c := math.Sincos(d.v)
	g := make([]float64, len(d.g))
	for i := range g {
		g[i] = d.g[i] * c
	}
	return Diff{s, g}
}

// Cos returns the cosine of d.
func (d Diff) Cos() Diff {
	s, c := math.Sincos(d.v)
	g := make([]float64, len(d.g))
	for i := range g {
		g[i] = -d.g[i] * s
	}
	return Diff{c, g}
}

// SinCos returns both the sine and cosine of d.
func (d Diff) SinCos() (Diff, Diff) {
	return d.Sin(), d.Cos()
}

// Atan2 returns atan2(d, x).
func (d Diff) Atan2(x Diff) Diff {
	d.compat(x)
	denom := d.v*d.v + x.v*x.v
	g := make([]float64, len(d.g))
	for i := range g {
		g[i] = (x.v*d.g[i] - d.v*x.g[i]) / denom
	}
	return Diff{math.Atan2(d.v, x.v), g}
}

// Square returns d².
func (d Diff) Square() Diff {
	return d.Mul(d)
}

// String implements the Stringer interface.
func (d Diff) String() string {
	return fmt.Sprintf("%g%+v", d.v, d.g)
}
