package timetable

import (
	"time"

	"github.com/rs/zerolog/log"

	"github.com/crescent-hq/minaret/internal/model"
)

// Next describes the upcoming instant at an evaluation time. When every
// actionable clock time of the day has passed, Rollover is set and the
// countdown targets tomorrow's Fajr.
type Next struct {
	Name         model.PrayerName `json:"name"`
	ClockTime    string           `json:"clock_time"`
	MinutesUntil int              `json:"minutes_until"`
	Rollover     bool             `json:"rollover"`
}

// Resolve walks the actionable instants in daily order and marks the first
// one whose clock time has not passed as upcoming. Past instants keep
// whatever completion state they have; a prayer is only ever marked Done by
// an explicit user toggle, never by the clock.
//
// tomorrowFajr is the HH:MM Fajr mark of date+1, consulted only when the
// whole day is behind us. Resolve is idempotent and free of side effects
// beyond rewriting the upcoming flags on the given instants.
func Resolve(instants []*model.PrayerInstant, now time.Time, tomorrowFajr string) Next {
	nowMin := minutesOfDay(now)

	for _, in := range instants {
		in.IsUpcoming = false
		in.MinutesUntil = 0
	}

	for _, in := range instants {
		if !in.Actionable() {
			continue
		}
		t, err := clockMinutes(in.ClockTime)
		if err != nil {
			log.Warn().Str("prayer", string(in.Name)).Str("clock", in.ClockTime).Msg("skipping unparsable mark")
			continue
		}
		if t < nowMin {
			continue
		}
		in.IsUpcoming = true
		in.MinutesUntil = t - nowMin
		return Next{
			Name:         in.Name,
			ClockTime:    in.ClockTime,
			MinutesUntil: in.MinutesUntil,
		}
	}

	// Whole day behind us: countdown crosses midnight into tomorrow's Fajr.
	fajrMin, err := clockMinutes(tomorrowFajr)
	if err != nil {
		log.Warn().Str("clock", tomorrowFajr).Msg("unparsable tomorrow fajr, countdown truncated to midnight")
		fajrMin = 0
	}
	return Next{
		Name:         model.Fajr,
		ClockTime:    tomorrowFajr,
		MinutesUntil: (24*60 - nowMin) + fajrMin,
		Rollover:     true,
	}
}
