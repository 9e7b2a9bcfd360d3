package osc

/*------------------------------------------------------------------
 *
 * Purpose:	64-bit NTP timetag carried by bundles. High 32 bits are
 *		seconds since 1900-01-01 UTC, low 32 bits are a binary
 *		fraction of a second. seconds=0,fraction=1 means "now".
 *
 *---------------------------------------------------------------*/

import "time"

// ntpEpochOffset is the number of seconds between the NTP epoch
// (1900-01-01) and the Unix epoch (1970-01-01).
const ntpEpochOffset = 2208988800

// Immediate is the reserved timetag value meaning "dispatch now".
const Immediate = Timetag(1)

// Timetag is a 64-bit fixed-point NTP timestamp. Ordering is the natural
// uint64 ordering, which is why it's represented as one integer rather
// than a (seconds, fraction) pair.
type Timetag uint64

// NewTimetag packs whole seconds-since-1900 and a fractional part.
func NewTimetag(seconds, fraction uint32) Timetag {
	return Timetag(uint64(seconds)<<32 | uint64(fraction))
}

func (t Timetag) Seconds() uint32  { return uint32(t >> 32) }
func (t Timetag) Fraction() uint32 { return uint32(t) }

// IsImmediate reports whether this is the reserved "dispatch now" value.
func (t Timetag) IsImmediate() bool { return t == Immediate }

// Time converts a Timetag to a system clock time.Time.
func (t Timetag) Time() time.Time {
	if t.IsImmediate() {
		return time.Now()
	}
	secs := int64(t.Seconds()) - ntpEpochOffset
	nanos := int64(float64(t.Fraction()) / (1 << 32) * 1e9)
	return time.Unix(secs, nanos).UTC()
}

// TimetagFromTime converts a system clock time.Time to a Timetag.
func TimetagFromTime(tm time.Time) Timetag {
	tm = tm.UTC()
	secs := uint32(tm.Unix() + ntpEpochOffset)
	frac := uint32(float64(tm.Nanosecond()) / 1e9 * (1 << 32))
	return NewTimetag(secs, frac)
}

// TimetagNow is shorthand for TimetagFromTime(time.Now()).
func TimetagNow() Timetag { return TimetagFromTime(time.Now()) }

// Before reports whether t is at or before now, treating Immediate as
// always due.
func (t Timetag) Before(now Timetag) bool {
	if t.IsImmediate() {
		return true
	}
	return t <= now
}
