// Package ramadan maps Gregorian dates into the Ramadan observance window.
// The day number comes from the Hijri calendar reported by the calculator
// backend; there is no hard-coded start date.
package ramadan

import (
	"context"
	"fmt"
	"time"

	"github.com/crescent-hq/minaret/internal/calc"
	"github.com/crescent-hq/minaret/internal/model"
)

// hijriRamadan is the ninth month of the Hijri calendar.
const hijriRamadan = 9

// Window carries everything the notification scheduler needs for one
// Ramadan day: the day number and the sehri/iftar instants.
type Window struct {
	Day   int       `json:"day"`
	Sehri time.Time `json:"sehri"`
	Iftar time.Time `json:"iftar"`
}

// Calendar answers "which Ramadan day is this date, if any".
type Calendar struct {
	src calc.HijriDater
}

func NewCalendar(src calc.HijriDater) *Calendar {
	return &Calendar{src: src}
}

// DayNumber returns the 1-based Ramadan day number for the date, or
// (0, false) outside Ramadan.
func (c *Calendar) DayNumber(ctx context.Context, date time.Time, loc calc.Location, params calc.Params) (int, bool, error) {
	month, day, err := c.src.HijriDate(ctx, date, loc, params)
	if err != nil {
		return 0, false, fmt.Errorf("hijri date: %w", err)
	}
	if month != hijriRamadan {
		return 0, false, nil
	}
	return day, true, nil
}

// SehriIftar derives the day's meal-window instants from the Fajr and
// Maghrib marks: sehri ends a configured number of minutes before Fajr,
// iftar opens a configured number of minutes after Maghrib.
func SehriIftar(marks model.TimeMarkSet, date time.Time, settings model.Settings) (time.Time, time.Time, error) {
	fajr, err := atClock(date, marks.Fajr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("fajr mark: %w", err)
	}
	maghrib, err := atClock(date, marks.Maghrib)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("maghrib mark: %w", err)
	}

	sehri := fajr.Add(-time.Duration(settings.SehriOffsetMin) * time.Minute)
	iftar := maghrib.Add(time.Duration(settings.IftarOffsetMin) * time.Minute)
	return sehri, iftar, nil
}

// WindowFor combines DayNumber and SehriIftar; it returns (nil, nil)
// outside Ramadan. Location and calculation params come from the settings.
func (c *Calendar) WindowFor(ctx context.Context, date time.Time, marks model.TimeMarkSet, settings model.Settings) (*Window, error) {
	loc := calc.Location{Latitude: settings.Latitude, Longitude: settings.Longitude}
	params := calc.Params{Method: settings.Method, School: settings.School}
	day, in, err := c.DayNumber(ctx, date, loc, params)
	if err != nil || !in {
		return nil, err
	}
	sehri, iftar, err := SehriIftar(marks, date, settings)
	if err != nil {
		return nil, err
	}
	return &Window{Day: day, Sehri: sehri, Iftar: iftar}, nil
}

func atClock(date time.Time, clock string) (time.Time, error) {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("malformed clock time %q", clock)
	}
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour(), t.Minute(), 0, 0, date.Location()), nil
}
