package orekit

import (
	"testing"

	"github.com/gonum/floats"
)

// testLeaps mirrors data/leapseconds.txt: MJD of the day following the leap,
// leap size, cumulative TAI-UTC. Converted to the internal convention.
func testLeaps() []Leap {
	rows := [][3]float64{
		{41317, 10, 10}, {41499, 1, 11}, {41683, 1, 12}, {42048, 1, 13},
		{42413, 1, 14}, {42778, 1, 15}, {43144, 1, 16}, {43509, 1, 17},
		{43874, 1, 18}, {44239, 1, 19}, {44786, 1, 20}, {45151, 1, 21},
		{45516, 1, 22}, {46247, 1, 23}, {47161, 1, 24}, {47892, 1, 25},
		{48257, 1, 26}, {48804, 1, 27}, {49169, 1, 28}, {49534, 1, 29},
		{50083, 1, 30}, {50630, 1, 31}, {51179, 1, 32}, {53736, 1, 33},
		{54832, 1, 34}, {56109, 1, 35}, {57204, 1, 36}, {57754, 1, 37},
	}
	leaps := make([]Leap, len(rows))
	for i, row := range rows {
		leaps[i] = Leap{UTCTime: MJD2000(row[0]), Step: -row[1], OffsetAfter: -row[2]}
	}
	return leaps
}

// registerTestLeaps makes the process-wide UTC scale usable in tests. The
// registration fails once the singleton is constructed, which is fine: the
// table is the same in every test.
func registerTestLeaps() {
	RegisterLeapSeconds(testLeaps())
	UTC()
}

func assertPanic(t *testing.T, f func()) {
	t.Helper()
	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected a panic")
		}
	}()
	f()
}

func vectorsEqual(t *testing.T, name string, got, want []float64, tol float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("%s: length mismatch %d != %d", name, len(got), len(want))
	}
	for i := range got {
		if !floats.EqualWithinAbs(got[i], want[i], tol) {
			t.Fatalf("%s[%d]: got %v want %v", name, i, got[i], want[i])
		}
	}
}
