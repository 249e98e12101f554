package orekit

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	kitlog "github.com/go-kit/kit/log"
)

// ExportConfig configures the propagation state export.
type ExportConfig struct {
	Filename  string
	AsCSV     bool
	Timestamp bool
}

// IsUseless returns whether this config doesn't actually do anything.
func (c ExportConfig) IsUseless() bool {
	return !c.AsCSV
}

// StreamStates streams the states from the channel into a CSV file in the
// configured output directory, one row per propagation step, until the
// channel is closed. Meant to be run in a goroutine by the propagation
// driver.
func StreamStates(conf ExportConfig, stateChan <-chan (State)) {
	klog := kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(os.Stdout))
	klog = kitlog.With(klog, "subsys", "export")
	filename := fmt.Sprintf("%s/%s", odConfig().outputDir, conf.Filename)
	if conf.Timestamp {
		filename += time.Now().Format("-2006-01-02-15.04.05")
	}
	filename += ".csv"
	f, err := os.Create(filename)
	if err != nil {
		klog.Log("level", "error", "err", err)
		// Drain the channel so the propagation does not block on a full buffer.
		for range stateChan {
		}
		return
	}
	defer f.Close()
	klog.Log("level", "info", "file", filename)
	w := csv.NewWriter(f)
	w.Write([]string{"epoch", "a", "e", "i", "RAAN", "argPeri", "trueAnomaly",
		"ex", "ey", "hx", "hy", "Lv",
		"x", "y", "z", "vx", "vy", "vz", "mass"})
	numStates := 0
	for state := range stateChan {
		a, e, i, Ω, ω, ν, _, _, _ := state.Orbit.Elements()
		_, ex, ey, hx, hy, lv := state.Orbit.Equinoctial()
		R, V := state.Orbit.RV()
		row := []string{state.DT.String()}
		for _, v := range []float64{a, e, Rad2deg(i), Rad2deg(Ω), Rad2deg(ω), Rad2deg(ν),
			ex, ey, hx, hy, lv,
			R[0], R[1], R[2], V[0], V[1], V[2], state.Mass} {
			row = append(row, strconv.FormatFloat(v, 'f', -1, 64))
		}
		w.Write(row)
		numStates++
	}
	w.Flush()
	if err := w.Error(); err != nil {
		klog.Log("level", "error", "err", err)
	}
	klog.Log("level", "info", "states", numStates, "status", "done")
}
