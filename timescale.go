package orekit

import (
	"errors"
	"sort"
	"sync"
)

// TimeScale maps the continuous internal TAI axis to an externally visible
// time scale. Offsets are in seconds: adding OffsetFromTAI to a TAI location
// yields the location in this scale, and conversely for OffsetToTAI.
type TimeScale interface {
	Name() string
	OffsetFromTAI(tai float64) float64
	OffsetToTAI(scaleTime float64) float64
}

// fixedScale is a time scale at a constant offset from TAI (TT, GPS...).
type fixedScale struct {
	name   string
	offset float64
}

func (s fixedScale) Name() string                      { return s.name }
func (s fixedScale) OffsetFromTAI(tai float64) float64 { return s.offset }
func (s fixedScale) OffsetToTAI(t float64) float64     { return -s.offset }

// TAI is the International Atomic Time scale, i.e. the internal axis itself.
var TAI TimeScale = fixedScale{"TAI", 0}

// TT is Terrestrial Time, at a constant 32.184s offset from TAI per IAU(1991).
var TT TimeScale = fixedScale{"TT", 32.184}

// GPS is the Global Positioning System time scale, 19s behind TAI.
var GPS TimeScale = fixedScale{"GPS", -19}

// Leap defines a single UTC leap second: the UTC epoch at which it occurred,
// the offset step it introduced (negative for an inserted second) and the
// cumulative UTC-TAI offset applicable after it.
type Leap struct {
	UTCTime     float64 // seconds since J2000 on the UTC axis
	Step        float64
	OffsetAfter float64
}

// UTCScale is Coordinated Universal Time.
//
// UTC is related to TAI using step adjustments decided by the IERS, the leap
// seconds. The handling of time *during* a leap deviates from the standard
// 61-second-minute representation: the leap is modeled as one clock reset at
// the end of the inserted second. For the leap between 2016-12-31T23:59:59 and
// 2017-01-01T00:00:00, time flows continuously for one second from 23:59:59 to
// 00:00:00 and *then* a -1s step resets the clock to 23:59:59 again, so the
// same UTC second is revisited once. That one-second ambiguity is intentional
// and relied upon: do not "fix" it.
type UTCScale struct {
	leaps []Leap // sorted by decreasing UTCTime, most recent first
}

// NewUTCScale returns a UTC time scale bound to the provided leap second
// history. The table may be handed in any order; it is sorted most recent
// first, as the latest leap is usually the only one scanned.
func NewUTCScale(leaps []Leap) (*UTCScale, error) {
	if len(leaps) == 0 {
		return nil, errors.New("no leap second data provided, cannot build UTC scale")
	}
	sorted := make([]Leap, len(leaps))
	copy(sorted, leaps)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].UTCTime > sorted[j].UTCTime })
	return &UTCScale{sorted}, nil
}

// Name implements TimeScale.
func (u *UTCScale) Name() string { return "UTC" }

// OffsetFromTAI returns the offset to add to a TAI location to get the UTC
// location. The scan is most recent leap first.
func (u *UTCScale) OffsetFromTAI(tai float64) float64 {
	for _, leap := range u.leaps {
		if tai+(leap.OffsetAfter-leap.Step) >= leap.UTCTime {
			return leap.OffsetAfter
		}
	}
	return 0
}

// OffsetToTAI returns the offset to add to a UTC location to get the TAI
// location.
func (u *UTCScale) OffsetToTAI(utcTime float64) float64 {
	for _, leap := range u.leaps {
		if utcTime >= leap.UTCTime {
			return -leap.OffsetAfter
		}
	}
	return 0
}

// Leaps returns a copy of the leap table, most recent first.
func (u *UTCScale) Leaps() []Leap {
	cpy := make([]Leap, len(u.leaps))
	copy(cpy, u.leaps)
	return cpy
}

var (
	utcOnce     sync.Once
	utcInstance *UTCScale
	utcPending  []Leap
	utcMu       sync.Mutex
)

// RegisterLeapSeconds hands the leap second history to the process-wide UTC
// scale. It must be called before the first use of UTC(); once the scale is
// constructed the table is immutable and further registrations fail.
func RegisterLeapSeconds(leaps []Leap) error {
	utcMu.Lock()
	defer utcMu.Unlock()
	if utcInstance != nil {
		return errors.New("UTC scale already constructed, leap second table is immutable")
	}
	utcPending = make([]Leap, len(leaps))
	copy(utcPending, leaps)
	return nil
}

// UTC returns the process-wide UTC scale. The first call constructs it, from
// the table handed in via RegisterLeapSeconds or, failing that, from the file
// named in the configuration. Construction is serialized: a single winner
// builds the instance and everyone else observes the completed scale.
// Panics if no leap second data is available, as every downstream epoch
// conversion would silently be wrong without it.
func UTC() *UTCScale {
	utcOnce.Do(func() {
		utcMu.Lock()
		leaps := utcPending
		utcMu.Unlock()
		if leaps == nil {
			loaded, err := loadLeapSeconds(odConfig().LeapSecondFile)
			if err != nil {
				panic("no leap second data: " + err.Error())
			}
			leaps = loaded
		}
		scale, err := NewUTCScale(leaps)
		if err != nil {
			panic(err)
		}
		utcMu.Lock()
		utcInstance = scale
		utcMu.Unlock()
	})
	return utcInstance
}
