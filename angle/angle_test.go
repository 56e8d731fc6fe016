package angle_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/influxdata/stopwatch"
	"github.com/influxdata/stopwatch/angle"
	"github.com/stretchr/testify/assert"
)

func TestProject(t *testing.T) {
	tests := []struct {
		name string
		v    stopwatch.ElapsedSeconds
		want stopwatch.ClockHandAngles
	}{
		{
			name: "zero is base",
			v:    0,
			want: angle.Base,
		},
		{
			name: "one second",
			v:    1,
			want: stopwatch.ClockHandAngles{SecondsDeg: 96, MinutesDeg: 90, HoursDeg: 90},
		},
		{
			name: "seconds wrap at a minute",
			v:    60,
			want: stopwatch.ClockHandAngles{SecondsDeg: 90, MinutesDeg: 96, HoursDeg: 90},
		},
		{
			name: "minute and a half",
			v:    90,
			want: stopwatch.ClockHandAngles{SecondsDeg: 270, MinutesDeg: 96, HoursDeg: 90},
		},
		{
			name: "one hour one minute one second",
			v:    3661,
			want: stopwatch.ClockHandAngles{SecondsDeg: 96, MinutesDeg: 456, HoursDeg: 120},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := angle.Project(tt.v)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("unexpected angles -want/+got:\n%s", diff)
			}
		})
	}
}

func TestProject_Pure(t *testing.T) {
	for _, v := range []stopwatch.ElapsedSeconds{0, 1, 59, 61, 3599, 3601, 86400} {
		assert.Equal(t, angle.Project(v), angle.Project(v))
	}
}

func TestProjector_ZeroValueIsBase(t *testing.T) {
	var p angle.Projector
	assert.Equal(t, angle.Base, p.Angles())
}

func TestProjector_MinutesMoveOnlyPastTheFirstMinute(t *testing.T) {
	var p angle.Projector

	var minuteChanges, secondChanges []stopwatch.ElapsedSeconds
	for v := stopwatch.ElapsedSeconds(0); v <= 65; v++ {
		_, c := p.Update(v)
		if c.Has(angle.Minutes) {
			minuteChanges = append(minuteChanges, v)
		}
		if c.Has(angle.Seconds) {
			secondChanges = append(secondChanges, v)
		}
	}

	assert.Equal(t, []stopwatch.ElapsedSeconds{61}, minuteChanges)
	// Tick 0 projects onto Base, so the seconds hand first moves at 1.
	assert.Len(t, secondChanges, 65)
	assert.Equal(t, stopwatch.ClockHandAngles{SecondsDeg: 120, MinutesDeg: 96, HoursDeg: 90}, p.Angles())
}

func TestProjector_HoursMoveOnlyPastTheFirstHour(t *testing.T) {
	var p angle.Projector

	got, c := p.Update(3600)
	assert.False(t, c.Has(angle.Hours))
	assert.Equal(t, float64(angle.BaseDeg), got.HoursDeg)
	assert.Equal(t, float64(90+60*6), got.MinutesDeg)

	got, c = p.Update(3601)
	assert.True(t, c.Has(angle.Hours))
	assert.Equal(t, float64(120), got.HoursDeg)
}

func TestProjector_ZeroResetsEveryHand(t *testing.T) {
	var p angle.Projector
	p.Update(7322)

	got, c := p.Update(0)
	assert.Equal(t, angle.Base, got)
	assert.True(t, c.Has(angle.Seconds|angle.Minutes|angle.Hours))
}

func TestProjector_AgreesWithProjectWhenGatesAreOpen(t *testing.T) {
	var p angle.Projector
	for _, v := range []stopwatch.ElapsedSeconds{0, 3601, 3700, 7200, 7201} {
		got, _ := p.Update(v)
		assert.Equal(t, angle.Project(v), got, "v=%d", v)
	}
}

func TestProjector_Reset(t *testing.T) {
	var p angle.Projector
	p.Update(125)
	assert.Equal(t, angle.Base, p.Reset())
	assert.Equal(t, angle.Base, p.Angles())
}
