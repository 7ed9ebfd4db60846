package model

import (
	"strings"
	"time"
)

// PrayerName identifies one of the six daily time marks.
type PrayerName string

const (
	Fajr    PrayerName = "fajr"
	Sunrise PrayerName = "sunrise"
	Dhuhr   PrayerName = "dhuhr"
	Asr     PrayerName = "asr"
	Maghrib PrayerName = "maghrib"
	Isha    PrayerName = "isha"
)

// MarkOrder is the fixed daily order of the six marks.
var MarkOrder = [6]PrayerName{Fajr, Sunrise, Dhuhr, Asr, Maghrib, Isha}

// CompletionState is tri-state on purpose: Sunrise is tracked but is not a
// prayer, so it can never be marked prayed.
type CompletionState string

const (
	NotApplicable CompletionState = "not_applicable"
	Pending       CompletionState = "pending"
	Done          CompletionState = "done"
)

// TimeMarkSet holds the six computed clock times for one calendar date,
// as HH:MM 24-hour strings in the user's local zone. Produced fresh per
// date by the calculator; never mutated.
type TimeMarkSet struct {
	Date    time.Time `json:"date"`
	Fajr    string    `json:"fajr"`
	Sunrise string    `json:"sunrise"`
	Dhuhr   string    `json:"dhuhr"`
	Asr     string    `json:"asr"`
	Maghrib string    `json:"maghrib"`
	Isha    string    `json:"isha"`
}

// Mark returns the clock time for the named mark.
func (m TimeMarkSet) Mark(name PrayerName) string {
	switch name {
	case Fajr:
		return m.Fajr
	case Sunrise:
		return m.Sunrise
	case Dhuhr:
		return m.Dhuhr
	case Asr:
		return m.Asr
	case Maghrib:
		return m.Maghrib
	case Isha:
		return m.Isha
	}
	return ""
}

// Title returns the display form of the name, e.g. "fajr" -> "Fajr".
func (n PrayerName) Title() string {
	s := string(n)
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// PrayerInstant is one mark of the day with its per-day mutable state.
type PrayerInstant struct {
	Name         PrayerName      `json:"name"`
	ClockTime    string          `json:"clock_time"`
	Date         time.Time       `json:"date"`
	Completion   CompletionState `json:"completion"`
	IsUpcoming   bool            `json:"is_upcoming"`
	MinutesUntil int             `json:"minutes_until"`
}

// Actionable reports whether the instant is a real prayer the user can
// mark prayed (everything except Sunrise).
func (p *PrayerInstant) Actionable() bool {
	return p.Completion != NotApplicable
}
