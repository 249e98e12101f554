package orekit

import (
	"testing"
	"time"

	"github.com/gonum/floats"
)

func TestEpochOrigin(t *testing.T) {
	e := NewEpochTAI(2000, 1, 1, 12, 0, 0)
	if !floats.EqualWithinAbs(e.TAI(), 0, 1e-6) {
		t.Fatalf("J2000 must be the origin, got %v", e.TAI())
	}
	if e.String() != "2000-01-01T12:00:00.000 TAI" {
		t.Fatalf("unexpected formatting: %s", e.String())
	}
}

func TestEpochFixedScales(t *testing.T) {
	// The seconds count is ~5.4e8 at this epoch, so the offset addition
	// rounds by a fraction of a microsecond.
	e := NewEpochTAI(2017, 3, 1, 12, 0, 0)
	if got := e.In(TT) - e.In(TAI); !floats.EqualWithinAbs(got, 32.184, 1e-6) {
		t.Fatalf("TT-TAI: got %v want 32.184", got)
	}
	if got := e.In(GPS) - e.In(TAI); !floats.EqualWithinAbs(got, -19, 1e-6) {
		t.Fatalf("GPS-TAI: got %v want -19", got)
	}
}

func TestEpochUTCOffset(t *testing.T) {
	registerTestLeaps()
	e := NewEpochUTC(2017, 1, 1, 0, 0, 0)
	if !floats.EqualWithinAbs(e.TAI()-MJD2000(57754), 37, 1e-6) {
		t.Fatalf("2017-01-01 UTC must be 37s behind TAI, got %v", e.TAI()-MJD2000(57754))
	}
	// The leap inserts a full extra second of TAI between these two readings.
	// The Julian day arithmetic carries a few 1e-5 s of floating point noise.
	before := NewEpochUTC(2016, 12, 31, 23, 59, 59)
	if !floats.EqualWithinAbs(e.Sub(before), 2, 1e-3) {
		t.Fatalf("expected 2s across the leap, got %v", e.Sub(before))
	}
}

func TestEpochCalendarRoundTrip(t *testing.T) {
	registerTestLeaps()
	e := NewEpochUTC(2015, 3, 14, 15, 9, 26.5)
	y, m, d, h, min, s := e.Calendar(UTC())
	if y != 2015 || m != 3 || d != 14 || h != 15 || min != 9 {
		t.Fatalf("round trip failed: %04d-%02d-%02dT%02d:%02d:%v", y, m, d, h, min, s)
	}
	if !floats.EqualWithinAbs(s, 26.5, 1e-3) {
		t.Fatalf("seconds: got %v want 26.5", s)
	}
}

func TestEpochFromTime(t *testing.T) {
	registerTestLeaps()
	fromTime := NewEpochFromTime(time.Date(2017, 1, 1, 0, 0, 0, 0, time.UTC))
	fromCal := NewEpochUTC(2017, 1, 1, 0, 0, 0)
	if !floats.EqualWithinAbs(fromTime.Sub(fromCal), 0, 1e-3) {
		t.Fatalf("constructors disagree by %v s", fromTime.Sub(fromCal))
	}
}

func TestEpochArithmetic(t *testing.T) {
	e := NewEpochTAI(2010, 6, 1, 0, 0, 0)
	later := e.Shift(3600)
	if !floats.EqualWithinAbs(later.Sub(e), 3600, 1e-9) {
		t.Fatalf("Shift/Sub: got %v want 3600", later.Sub(e))
	}
	if !e.Before(later) || !later.After(e) || e.Equals(later) {
		t.Fatal("ordering predicates inconsistent")
	}
	if !e.Shift(0).Equals(e) {
		t.Fatal("zero shift must preserve the epoch")
	}
}
