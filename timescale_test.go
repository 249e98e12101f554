package orekit

import (
	"testing"

	"github.com/gonum/floats"
)

func TestFixedScales(t *testing.T) {
	if TAI.Name() != "TAI" || TT.Name() != "TT" || GPS.Name() != "GPS" {
		t.Fatal("fixed scale names incorrect")
	}
	for _, tai := range []float64{0, 1e8, -1e8} {
		if TAI.OffsetFromTAI(tai) != 0 || TAI.OffsetToTAI(tai) != 0 {
			t.Fatal("TAI offsets must be zero")
		}
		if TT.OffsetFromTAI(tai) != 32.184 || TT.OffsetToTAI(tai) != -32.184 {
			t.Fatal("TT must be 32.184s ahead of TAI")
		}
		if GPS.OffsetFromTAI(tai) != -19 || GPS.OffsetToTAI(tai) != 19 {
			t.Fatal("GPS must be 19s behind TAI")
		}
	}
}

func TestUTCScaleEmpty(t *testing.T) {
	if _, err := NewUTCScale(nil); err == nil {
		t.Fatal("expected an error on empty leap second table")
	}
}

func TestUTCScaleSorting(t *testing.T) {
	// Hand the table in chronological order, the scale must sort it most
	// recent first.
	utc, err := NewUTCScale(testLeaps())
	if err != nil {
		t.Fatal(err)
	}
	leaps := utc.Leaps()
	for i := 1; i < len(leaps); i++ {
		if leaps[i].UTCTime >= leaps[i-1].UTCTime {
			t.Fatalf("leap table not sorted most recent first at index %d", i)
		}
	}
	if leaps[0].OffsetAfter != -37 {
		t.Fatalf("most recent cumulative offset: got %v want -37", leaps[0].OffsetAfter)
	}
}

func TestUTCClockReset(t *testing.T) {
	utc, err := NewUTCScale(testLeaps())
	if err != nil {
		t.Fatal(err)
	}
	leap := MJD2000(57754) // 2017-01-01T00:00:00 UTC
	// On the UTC axis the new offset applies exactly from the leap date.
	if got := utc.OffsetToTAI(leap - 0.5); got != 36 {
		t.Fatalf("OffsetToTAI before leap: got %v want 36", got)
	}
	if got := utc.OffsetToTAI(leap); got != 37 {
		t.Fatalf("OffsetToTAI at leap: got %v want 37", got)
	}
	// On the TAI axis the clock runs into the inserted second and is then
	// reset: one second before the switch the old offset still applies.
	if got := utc.OffsetFromTAI(leap + 36 - 1e-3); got != -36 {
		t.Fatalf("OffsetFromTAI before reset: got %v want -36", got)
	}
	if got := utc.OffsetFromTAI(leap + 36); got != -37 {
		t.Fatalf("OffsetFromTAI at reset: got %v want -37", got)
	}
	if got := utc.OffsetFromTAI(leap + 37); got != -37 {
		t.Fatalf("OffsetFromTAI after leap: got %v want -37", got)
	}
	// The UTC reading steps back by one second at the reset, revisiting
	// 23:59:59.
	before := (leap + 36 - 1e-3) + utc.OffsetFromTAI(leap+36-1e-3)
	after := (leap + 36) + utc.OffsetFromTAI(leap+36)
	if !floats.EqualWithinAbs(before-after, 1-1e-3, 1e-6) {
		t.Fatalf("expected a 1s clock reset, got a %v step", before-after)
	}
}

func TestUTCOffsetSymmetry(t *testing.T) {
	utc, err := NewUTCScale(testLeaps())
	if err != nil {
		t.Fatal(err)
	}
	// Away from leap boundaries, converting a TAI location to UTC and asking
	// for the way back must yield the exact opposite offset.
	for _, tai := range []float64{
		MJD2000(42000), MJD2000(50000), MJD2000(53000),
		MJD2000(56000) + 12345.678, MJD2000(58000),
	} {
		from := utc.OffsetFromTAI(tai)
		to := utc.OffsetToTAI(tai + from)
		if to != -from {
			t.Fatalf("offset symmetry broken at tai=%v: from=%v to=%v", tai, from, to)
		}
	}
}

func TestUTCBeforeTable(t *testing.T) {
	utc, err := NewUTCScale(testLeaps())
	if err != nil {
		t.Fatal(err)
	}
	ancient := MJD2000(40000)
	if utc.OffsetFromTAI(ancient) != 0 || utc.OffsetToTAI(ancient) != 0 {
		t.Fatal("expected zero offsets before the start of the table")
	}
}

func TestUTCSingleton(t *testing.T) {
	registerTestLeaps()
	if UTC() != UTC() {
		t.Fatal("UTC must always return the same instance")
	}
	if err := RegisterLeapSeconds(testLeaps()); err == nil {
		t.Fatal("expected registration to fail once the scale is constructed")
	}
}
