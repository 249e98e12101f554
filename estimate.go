package orekit

import (
	"fmt"

	"github.com/ChristopherRabotin/gokalman"
	"github.com/gonum/matrix/mat64"
)

// ForcePartials gathers the first order sensitivities of the equinoctial
// element rates at one state: A is the 6 by freeStateParameters Jacobian with
// respect to the state free variables, B the 6 by P Jacobian with respect to
// the selected force model parameters, in selection order across the models.
// B is nil when no parameter is selected.
type ForcePartials struct {
	A      *mat64.Dense
	B      *mat64.Dense
	Params []string
}

// ComputePartials evaluates every force model through the converter and
// assembles the rate sensitivities. The Keplerian contribution to the true
// longitude rate is differentiated once on the minimal state; each force
// model then adds its Gaussian contribution, evaluated on a state sized for
// that model's selected parameters.
func ComputePartials(conv *Converter, forces []ForceModel) (*ForcePartials, error) {
	freeState := conv.FreeStateParameters()
	var names []string
	for _, fm := range forces {
		for _, driver := range fm.ParameterDrivers() {
			if driver.IsSelected() {
				names = append(names, driver.Name())
			}
		}
	}
	A := mat64.NewDense(6, freeState, nil)
	var B *mat64.Dense
	if len(names) > 0 {
		B = mat64.NewDense(6, len(names), nil)
	}

	kep := diffKeplerianRates(&conv.BaseState().Orbit)
	for i := 0; i < 6; i++ {
		for j := 0; j < freeState; j++ {
			A.Set(i, j, kep[i].Partial(j))
		}
	}

	offset := 0
	for _, fm := range forces {
		state := conv.GetState(fm)
		params := conv.GetParameters(state, fm)
		acc, err := fm.DiffAcceleration(state, params)
		if err != nil {
			return nil, fmt.Errorf("%s: %s", fm, err)
		}
		rHat, tHat, nHat := diffRTNTriad(state.Orbit.R, state.Orbit.V)
		accRTN := [3]Diff{diffDot(acc, rHat), diffDot(acc, tHat), diffDot(acc, nHat)}
		rates := diffGaussRates(&state.Orbit, accRTN)
		nbParams := state.Free() - freeState
		for i := 0; i < 6; i++ {
			for j := 0; j < freeState; j++ {
				A.Set(i, j, A.At(i, j)+rates[i].Partial(j))
			}
			for k := 0; k < nbParams; k++ {
				B.Set(i, offset+k, rates[i].Partial(freeState+k))
			}
		}
		offset += nbParams
	}
	return &ForcePartials{A: A, B: B, Params: names}, nil
}

// STM is the state transition matrix of the six equinoctial elements,
// advanced by first order Euler discretization of the variational equation.
type STM struct {
	Φ *mat64.Dense
}

// NewSTM returns an identity state transition matrix.
func NewSTM() *STM {
	return &STM{Φ: gokalman.DenseIdentity(6)}
}

// Advance updates the matrix over a step of dt seconds: Φ ← (I + A dt) Φ,
// with A the element block of the partials.
func (s *STM) Advance(p *ForcePartials, dt float64) {
	a6 := mat64.NewDense(6, 6, nil)
	for i := 0; i < 6; i++ {
		for j := 0; j < 6; j++ {
			a6.Set(i, j, p.A.At(i, j))
		}
	}
	var aΦ mat64.Dense
	aΦ.Mul(a6, s.Φ)
	aΦ.Scale(dt, &aΦ)
	var next mat64.Dense
	next.Add(s.Φ, &aΦ)
	s.Φ = &next
}

// diffKeplerianRates returns the unperturbed element rates: zero for the five
// slow elements, the mean orbital angular rate term for the true longitude.
func diffKeplerianRates(o *DiffOrbit) (rates [6]Diff) {
	free := o.A.Free()
	μ := o.Origin.μ
	one := NewConstant(free, 1)
	sinL, cosL := o.Lv.SinCos()
	oneMinusE2 := one.Sub(o.Ex.Square()).Sub(o.Ey.Square())
	p := o.A.Mul(oneMinusE2)
	w := one.Add(o.Ex.Mul(cosL)).Add(o.Ey.Mul(sinL))
	zero := NewConstant(free, 0)
	rates = [6]Diff{zero, zero, zero, zero, zero, p.Scale(μ).Sqrt().Mul(w.Div(p).Square())}
	return
}

// diffGaussRates returns the perturbation induced element rates for the given
// RTN acceleration, the differentiable mirror of equinoctialRates without the
// Keplerian longitude term.
func diffGaussRates(o *DiffOrbit, accRTN [3]Diff) (rates [6]Diff) {
	free := o.A.Free()
	μ := o.Origin.μ
	one := NewConstant(free, 1)
	sinL, cosL := o.Lv.SinCos()
	oneMinusE2 := one.Sub(o.Ex.Square()).Sub(o.Ey.Square())
	p := o.A.Mul(oneMinusE2)
	w := one.Add(o.Ex.Mul(cosL)).Add(o.Ey.Mul(sinL))
	s2 := one.Add(o.Hx.Square()).Add(o.Hy.Square())
	sqpμ := p.Scale(1 / μ).Sqrt()
	hsk := o.Hx.Mul(sinL).Sub(o.Hy.Mul(cosL))
	ar, at, an := accRTN[0], accRTN[1], accRTN[2]
	dp := p.Scale(2).Div(w).Mul(sqpμ).Mul(at)
	dex := sqpμ.Mul(
		ar.Mul(sinL).
			Add(w.AddScalar(1).Mul(cosL).Add(o.Ex).Mul(at).Div(w)).
			Sub(hsk.Mul(o.Ey).Mul(an).Div(w)))
	dey := sqpμ.Mul(
		ar.Mul(cosL).Neg().
			Add(w.AddScalar(1).Mul(sinL).Add(o.Ey).Mul(at).Div(w)).
			Add(hsk.Mul(o.Ex).Mul(an).Div(w)))
	dhx := sqpμ.Mul(s2).Mul(an).Mul(cosL).Div(w.Scale(2))
	dhy := sqpμ.Mul(s2).Mul(an).Mul(sinL).Div(w.Scale(2))
	dlv := sqpμ.Mul(hsk).Mul(an).Div(w)
	da := dp.Add(p.Scale(2).Mul(o.Ex.Mul(dex).Add(o.Ey.Mul(dey))).Div(oneMinusE2)).Div(oneMinusE2)
	return [6]Diff{da, dex, dey, dhx, dhy, dlv}
}
