// Package angle projects elapsed seconds onto clock-hand rotations.
package angle

import (
	"github.com/influxdata/stopwatch"
)

// BaseDeg is the rotation that lines each hand up with the at-rest artwork.
const BaseDeg = 90

// Base is the orientation of all three hands at zero elapsed seconds.
var Base = stopwatch.ClockHandAngles{
	SecondsDeg: BaseDeg,
	MinutesDeg: BaseDeg,
	HoursDeg:   BaseDeg,
}

// Project returns the hand angles for v. It is pure.
func Project(v stopwatch.ElapsedSeconds) stopwatch.ClockHandAngles {
	return stopwatch.ClockHandAngles{
		SecondsDeg: secondsDeg(v),
		MinutesDeg: minutesDeg(v),
		HoursDeg:   hoursDeg(v),
	}
}

func secondsDeg(v stopwatch.ElapsedSeconds) float64 {
	return BaseDeg + float64(v%60)*6
}

func minutesDeg(v stopwatch.ElapsedSeconds) float64 {
	return BaseDeg + float64(v/60)*6
}

func hoursDeg(v stopwatch.ElapsedSeconds) float64 {
	return BaseDeg + float64(v/3600)*30
}

// Changed is a set of hands whose angle changed in an update.
type Changed uint8

const (
	Seconds Changed = 1 << iota
	Minutes
	Hours
)

// Has reports whether all hands in m are in c.
func (c Changed) Has(m Changed) bool { return c&m == m }

// Projector is a selective projector. The seconds hand is recomputed on every
// update; the minutes hand only past the first minute or on reset to zero,
// and the hours hand only past the first hour or on reset to zero.
//
// A zero Projector starts at Base. It is not safe for concurrent use.
type Projector struct {
	angles stopwatch.ClockHandAngles
	init   bool
}

// Angles returns the last projected angles.
func (p *Projector) Angles() stopwatch.ClockHandAngles {
	if !p.init {
		return Base
	}
	return p.angles
}

// Update projects v and reports which hands moved.
func (p *Projector) Update(v stopwatch.ElapsedSeconds) (stopwatch.ClockHandAngles, Changed) {
	prev := p.Angles()
	next := prev

	next.SecondsDeg = secondsDeg(v)
	if v > 60 || v == 0 {
		next.MinutesDeg = minutesDeg(v)
	}
	if v > 3600 || v == 0 {
		next.HoursDeg = hoursDeg(v)
	}

	var c Changed
	if next.SecondsDeg != prev.SecondsDeg {
		c |= Seconds
	}
	if next.MinutesDeg != prev.MinutesDeg {
		c |= Minutes
	}
	if next.HoursDeg != prev.HoursDeg {
		c |= Hours
	}

	p.angles, p.init = next, true
	return next, c
}

// Reset puts every hand back at Base.
func (p *Projector) Reset() stopwatch.ClockHandAngles {
	p.angles, p.init = Base, true
	return Base
}
