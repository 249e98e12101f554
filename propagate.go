package orekit

import (
	"fmt"
	"math"
	"os"
	"sync"
	"time"

	"github.com/ChristopherRabotin/ode"
	kitlog "github.com/go-kit/kit/log"
)

const (
	// StepSize is the default step size of propagation.
	StepSize = 10 * time.Second
)

/* Handles the astrodynamical propagations. */

// Propagator integrates the equations of motion, two-body plus the configured
// force models, with a fixed step RK4. In ephemeris generation mode it emits
// one dense output segment per step into a bounded Ephemeris, from which any
// intermediate state can later be retrieved.
type Propagator struct {
	Orbit                      *Orbit // As pointer because the orbit changes during propagation.
	Mass                       float64
	Forces                     []ForceModel
	StartDT, StopDT, CurrentDT Epoch
	frame                      Frame
	att                        AttitudeProvider
	step                       time.Duration // time step
	eph                        *Ephemeris
	histChan                   chan<- (State)
	wg                         sync.WaitGroup
	logger                     kitlog.Logger
	err                        error
	done                       bool
	// dense output bookkeeping
	elapsed           float64
	prevRaw, prevRate [rawStateSize]float64
	havePrev          bool
}

// NewPropagator is the same as NewPrecisePropagator with the default step size.
func NewPropagator(o *Orbit, mass float64, start, end Epoch, forces []ForceModel, att AttitudeProvider, frame Frame, conf ExportConfig) *Propagator {
	return NewPrecisePropagator(o, mass, start, end, forces, att, frame, StepSize, conf)
}

// NewPrecisePropagator returns a new Propagator instance with a custom time step.
func NewPrecisePropagator(o *Orbit, mass float64, start, end Epoch, forces []ForceModel, att AttitudeProvider, frame Frame, step time.Duration, conf ExportConfig) *Propagator {
	klog := kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(os.Stdout))
	klog = kitlog.With(klog, "subsys", "astro")
	p := &Propagator{Orbit: o, Mass: mass, Forces: forces, StartDT: start, StopDT: end,
		CurrentDT: start, frame: frame, att: att, step: step, logger: klog}
	// If no filepath is provided, then no output will be written.
	if !conf.IsUseless() {
		histChan := make(chan (State), 1000) // a 1k entry buffer
		p.histChan = histChan
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			StreamStates(conf, histChan)
		}()
		p.stream()
	}
	if end.Before(start) {
		klog.Log("level", "warning", "message", "no end date")
	}
	return p
}

// GenerateEphemeris arms ephemeris generation mode: every integration step is
// recorded into the provided ephemeris, which is initialized when the
// propagation completes.
func (p *Propagator) GenerateEphemeris(e *Ephemeris) {
	p.eph = e
}

// LogStatus returns the status of the propagation.
func (p *Propagator) LogStatus() {
	p.logger.Log("level", "info", "date", p.CurrentDT, "mass(kg)", p.Mass, "orbit", p.Orbit)
}

// PropagateUntil propagates until the given time is reached.
func (p *Propagator) PropagateUntil(dt Epoch) error {
	p.StopDT = dt
	return p.Propagate()
}

// Propagate starts the propagation. Blocking.
func (p *Propagator) Propagate() error {
	p.LogStatus()
	// Seed the dense output with the initial state.
	p.elapsed = 0
	p.prevRaw, p.prevRate = p.rawAndRates(p.Orbit, p.Mass)
	p.havePrev = p.err == nil
	if p.err == nil {
		ode.NewRK4(0, p.step.Seconds(), p).Solve() // Blocking.
	}
	p.done = true
	if p.histChan != nil {
		close(p.histChan)
		p.wg.Wait() // Don't return until we're done writing all the files.
	}
	if p.err != nil {
		p.logger.Log("level", "critical", "status", "aborted", "err", p.err)
		return p.err
	}
	duration := p.CurrentDT.Sub(p.StartDT)
	durStr := (time.Duration(duration) * time.Second).String()
	if duration > 86400 {
		durStr += fmt.Sprintf(" (~%.3fd)", duration/86400)
	}
	p.logger.Log("level", "notice", "status", "finished", "duration", durStr)
	p.LogStatus()
	if p.eph != nil {
		if err := p.eph.Initialize(p.StartDT, p.frame, p.Orbit.Origin, p.att); err != nil {
			return err
		}
	}
	return nil
}

// GetState returns the state for the integrator: position, velocity, mass.
func (p *Propagator) GetState() (s []float64) {
	s = make([]float64, 7)
	R, V := p.Orbit.RV()
	for i := 0; i < 3; i++ {
		s[i] = R[i]
		s[i+3] = V[i]
	}
	s[6] = p.Mass
	return
}

// SetState sets the updated state and records the dense output of the
// completed step.
func (p *Propagator) SetState(t float64, s []float64) {
	if p.err != nil {
		return
	}
	R := []float64{s[0], s[1], s[2]}
	V := []float64{s[3], s[4], s[5]}
	*p.Orbit = *NewOrbitFromRV(R, V, p.Orbit.Origin)
	p.Mass = s[6]
	p.CurrentDT = p.CurrentDT.Shift(p.step.Seconds())
	prevElapsed := p.elapsed
	p.elapsed += p.step.Seconds()

	if p.eph != nil && p.havePrev {
		raw, rate := p.rawAndRates(p.Orbit, p.Mass)
		if p.err != nil {
			return
		}
		// Unwrap the true longitude so it stays continuous across steps; the
		// orbit reconstruction reads it modulo 2π anyway.
		raw[5] += 2 * math.Pi * math.Round((p.prevRaw[5]-raw[5])/(2*math.Pi))
		p.eph.HandleStep(NewHermiteSegment(prevElapsed, p.elapsed, p.prevRaw, raw, p.prevRate, rate), false)
		p.prevRaw, p.prevRate = raw, rate
	}
	p.stream()
}

// Stop implements the stop call of the integrator.
func (p *Propagator) Stop(t float64) bool {
	if p.err != nil {
		return true
	}
	return p.CurrentDT.Sub(p.StopDT) >= -1e-9
}

// Func is the integration function: two-body acceleration plus the force
// model contributions.
func (p *Propagator) Func(t float64, f []float64) (fDot []float64) {
	fDot = make([]float64, 7) // init return vector
	if p.err != nil {
		return
	}
	R := []float64{f[0], f[1], f[2]}
	V := []float64{f[3], f[4], f[5]}
	tmpOrbit := NewOrbitFromRV(R, V, p.Orbit.Origin)
	bodyAcc := -tmpOrbit.Origin.μ / math.Pow(tmpOrbit.RNorm(), 3)
	// d\vec{R}/dt
	fDot[0] = f[3]
	fDot[1] = f[4]
	fDot[2] = f[5]
	// d\vec{V}/dt
	fDot[3] = bodyAcc * f[0]
	fDot[4] = bodyAcc * f[1]
	fDot[5] = bodyAcc * f[2]
	// d(mass)/dt
	fDot[6] = 0
	pert, err := p.perturbingAcceleration(tmpOrbit, f[6], p.CurrentDT)
	if err != nil {
		p.err = err
		return
	}
	for i := 0; i < 3; i++ {
		fDot[i+3] += pert[i]
	}
	for i := 0; i < 7; i++ {
		if math.IsNaN(fDot[i]) {
			p.err = fmt.Errorf("fDot[%d]=NaN @ dt=%s cur=%s", i, p.CurrentDT, p.Orbit)
			return
		}
	}
	return
}

// perturbingAcceleration sums the inertial force model accelerations.
func (p *Propagator) perturbingAcceleration(o *Orbit, mass float64, dt Epoch) ([]float64, error) {
	pert := make([]float64, 3)
	state := State{DT: dt, Orbit: *o, Mass: mass, Frame: p.frame}
	for _, fm := range p.Forces {
		acc, err := fm.Acceleration(state)
		if err != nil {
			return nil, fmt.Errorf("%s: %s", fm, err)
		}
		for i := 0; i < 3; i++ {
			pert[i] += acc[i]
		}
	}
	return pert, nil
}

// rawAndRates returns the raw interpolation vector (equinoctial elements and
// mass) and its time derivatives at the given state, via the Gaussian VOP.
func (p *Propagator) rawAndRates(o *Orbit, mass float64) (raw, rate [rawStateSize]float64) {
	a, ex, ey, hx, hy, lv := o.Equinoctial()
	raw = [rawStateSize]float64{a, ex, ey, hx, hy, lv, mass}
	pert, err := p.perturbingAcceleration(o, mass, p.CurrentDT)
	if err != nil {
		p.err = err
		return
	}
	R, V := o.RV()
	rHat, tHat, nHat := rtnTriad(R, V)
	accRTN := [3]float64{dot(pert, rHat), dot(pert, tHat), dot(pert, nHat)}
	el := equinoctialRates(o, accRTN)
	copy(rate[:6], el[:])
	rate[6] = 0
	return
}

// stream pushes the current state to the history channel, if any.
func (p *Propagator) stream() {
	if p.histChan == nil || p.err != nil {
		return
	}
	att, err := p.att.Attitude(p.Orbit, p.CurrentDT, p.frame)
	if err != nil {
		p.err = err
		return
	}
	p.histChan <- State{DT: p.CurrentDT, Orbit: *p.Orbit, Attitude: att, Mass: p.Mass, Frame: p.frame}
}

// equinoctialRates returns the time derivatives of the equinoctial elements
// under the given RTN perturbing acceleration (Gauss variational equations,
// cf. Battin or Betts). The two-body contribution appears only in the true
// longitude rate.
func equinoctialRates(o *Orbit, accRTN [3]float64) (rates [6]float64) {
	μ := o.Origin.μ
	a, ex, ey, hx, hy, lv := o.Equinoctial()
	sinL, cosL := math.Sincos(lv)
	oneMinusE2 := 1 - ex*ex - ey*ey
	p := a * oneMinusE2
	w := 1 + ex*cosL + ey*sinL
	s2 := 1 + hx*hx + hy*hy
	sqpμ := math.Sqrt(p / μ)
	ar, at, an := accRTN[0], accRTN[1], accRTN[2]
	hsk := hx*sinL - hy*cosL
	dp := 2 * p / w * sqpμ * at
	dex := sqpμ * (ar*sinL + ((w+1)*cosL+ex)*at/w - hsk*ey*an/w)
	dey := sqpμ * (-ar*cosL + ((w+1)*sinL+ey)*at/w + hsk*ex*an/w)
	dhx := sqpμ * s2 * an * cosL / (2 * w)
	dhy := sqpμ * s2 * an * sinL / (2 * w)
	dlv := math.Sqrt(μ*p)*math.Pow(w/p, 2) + sqpμ*hsk*an/w
	da := (dp + 2*p*(ex*dex+ey*dey)/oneMinusE2) / oneMinusE2
	return [6]float64{da, dex, dey, dhx, dhy, dlv}
}
