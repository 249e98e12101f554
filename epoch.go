package orekit

import (
	"fmt"
	"time"

	"github.com/soniakeys/meeus/julian"
)

const (
	// J2000JD is the Julian Day of the internal origin, 2000-01-01T12:00:00.
	J2000JD   = 2451545.0
	secPerDay = 86400.0
)

// Epoch is an absolute instant, stored as a continuous seconds count on the
// TAI axis with a J2000 origin. All arithmetic happens on this axis; calendar
// scales only enter when reading an epoch out through a TimeScale.
type Epoch struct {
	tai float64
}

// NewEpochTAI returns the epoch of the given TAI calendar components.
func NewEpochTAI(year, month, day, hour, min int, sec float64) Epoch {
	return Epoch{calendarToSeconds(year, month, day, hour, min, sec)}
}

// NewEpochUTC returns the epoch of the given UTC calendar components. Note
// that within the one second following a leap the calendar reading is
// ambiguous (cf. UTCScale); this constructor resolves it to the post-leap
// instant, consistently with the clock reset convention.
func NewEpochUTC(year, month, day, hour, min int, sec float64) Epoch {
	utc := calendarToSeconds(year, month, day, hour, min, sec)
	return Epoch{utc + UTC().OffsetToTAI(utc)}
}

// NewEpochFromTime converts a Go time (taken in UTC) to an Epoch.
func NewEpochFromTime(t time.Time) Epoch {
	utc := (julian.TimeToJD(t.UTC()) - J2000JD) * secPerDay
	return Epoch{utc + UTC().OffsetToTAI(utc)}
}

func calendarToSeconds(year, month, day, hour, min int, sec float64) float64 {
	d := float64(day) + (float64(hour)+float64(min)/60+sec/3600)/24
	return (julian.CalendarGregorianToJD(year, month, d) - J2000JD) * secPerDay
}

// TAI returns the raw seconds count since J2000 TAI.
func (e Epoch) TAI() float64 { return e.tai }

// In returns the location of this epoch in the provided scale, as seconds
// since the J2000 origin of that scale's clock.
func (e Epoch) In(scale TimeScale) float64 {
	return e.tai + scale.OffsetFromTAI(e.tai)
}

// Shift returns this epoch shifted by the given number of seconds on the
// continuous axis.
func (e Epoch) Shift(seconds float64) Epoch {
	return Epoch{e.tai + seconds}
}

// Sub returns the signed duration in seconds from o to this epoch.
func (e Epoch) Sub(o Epoch) float64 { return e.tai - o.tai }

// Before returns whether this epoch is strictly before o.
func (e Epoch) Before(o Epoch) bool { return e.tai < o.tai }

// After returns whether this epoch is strictly after o.
func (e Epoch) After(o Epoch) bool { return e.tai > o.tai }

// Equals returns whether both epochs denote the same instant.
func (e Epoch) Equals(o Epoch) bool { return e.tai == o.tai }

// Calendar reads this epoch out in the provided scale.
func (e Epoch) Calendar(scale TimeScale) (year, month, day, hour, min int, sec float64) {
	jd := e.In(scale)/secPerDay + J2000JD
	y, m, d := julian.JDToCalendar(jd)
	day = int(d)
	frac := (d - float64(day)) * 24
	hour = int(frac)
	frac = (frac - float64(hour)) * 60
	min = int(frac)
	sec = (frac - float64(min)) * 60
	// Absorb floating point dust so that 59.999999999 prints as the next minute.
	if sec > 60-1e-6 {
		sec = 0
		min++
		if min == 60 {
			min = 0
			hour++
			if hour == 24 {
				hour = 0
				// Let the Julian day arithmetic handle month and year rollover.
				y, m, d = julian.JDToCalendar(jd + 0.5/secPerDay)
				day = int(d)
			}
		}
	}
	return y, m, day, hour, min, sec
}

// String formats the epoch on the TAI scale. UTC formatting requires the leap
// second history, TAI does not, so the Stringer stays infallible.
func (e Epoch) String() string {
	y, m, d, h, min, s := e.Calendar(TAI)
	return fmt.Sprintf("%04d-%02d-%02dT%02d:%02d:%06.3f TAI", y, m, d, h, min, s)
}

// MJD2000 converts a modified Julian day to seconds since the J2000 origin on
// the same scale's axis. Leap second tables are commonly published in MJD.
func MJD2000(mjd float64) float64 {
	return (mjd - 51544.5) * secPerDay
}
