package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	orekit "github.com/JosefProbst/Orekit"
	kitlog "github.com/go-kit/kit/log"
	"github.com/gonum/matrix/mat64"
)

var (
	duration = flag.Duration("duration", 2*time.Hour, "propagation duration")
	step     = flag.Duration("step", 10*time.Second, "integration step")
	asCSV    = flag.Bool("csv", false, "export the trajectory as CSV")
)

func main() {
	flag.Parse()
	klog := kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(os.Stdout))
	klog = kitlog.With(klog, "cmd", "odlab")

	// The leap second history comes from conf.toml, located via OD_CONFIG.
	start := orekit.NewEpochUTC(2017, 1, 1, 0, 0, 0)
	end := start.Shift(duration.Seconds())
	orbit := orekit.NewOrbitFromOE(7000, 0.001, 51.6, 30, 10, 0, orekit.Earth)
	forces := []orekit.ForceModel{
		orekit.NewHarmonicsForce(orekit.Earth),
		orekit.NewEmpiricalForce(0, 0, 0),
	}
	conf := orekit.ExportConfig{}
	if *asCSV {
		conf = orekit.ExportConfig{Filename: "odlab", AsCSV: true, Timestamp: true}
	}

	eph := orekit.NewEphemeris()
	prop := orekit.NewPrecisePropagator(orbit, 1500, start, end, forces, orekit.NadirPointing{}, orekit.EME2000, *step, conf)
	prop.GenerateEphemeris(eph)
	if err := prop.Propagate(); err != nil {
		klog.Log("level", "critical", "err", err)
		os.Exit(1)
	}
	klog.Log("level", "info", "ephemeris", fmt.Sprintf("[%s, %s]", eph.MinDate(), eph.MaxDate()))

	mid := start.Shift(end.Sub(start) / 2)
	state, err := eph.Propagate(mid)
	if err != nil {
		klog.Log("level", "critical", "err", err)
		os.Exit(1)
	}
	klog.Log("level", "info", "date", state.DT, "orbit", state.Orbit, "mass(kg)", state.Mass)

	// Sensitivities of the element rates at the retrieved state, estimating
	// the empirical acceleration components on top of the orbit and the mass.
	for _, driver := range forces[1].ParameterDrivers() {
		driver.SetSelected(true)
	}
	conv, err := orekit.NewConverter(state, 7, orekit.NadirPointing{})
	if err != nil {
		klog.Log("level", "critical", "err", err)
		os.Exit(1)
	}
	partials, err := orekit.ComputePartials(conv, forces)
	if err != nil {
		klog.Log("level", "critical", "err", err)
		os.Exit(1)
	}
	fmt.Printf("A = %v\n", mat64.Formatted(partials.A, mat64.Prefix("    ")))
	fmt.Printf("B (%v) = %v\n", partials.Params, mat64.Formatted(partials.B, mat64.Prefix("    ")))
	stm := orekit.NewSTM()
	stm.Advance(partials, step.Seconds())
	fmt.Printf("Φ = %v\n", mat64.Formatted(stm.Φ, mat64.Prefix("    ")))
}
