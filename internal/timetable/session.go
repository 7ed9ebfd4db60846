package timetable

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/crescent-hq/minaret/internal/calc"
	"github.com/crescent-hq/minaret/internal/model"
)

// Day is a read-only snapshot handed to callers: copies of the six
// instants plus the resolved next-prayer info. Stale means the calculator
// failed and the instants still describe the last day it produced.
type Day struct {
	Date     time.Time             `json:"date"`
	Marks    model.TimeMarkSet     `json:"marks"`
	Instants []model.PrayerInstant `json:"instants"`
	Next     Next                  `json:"next"`
	Stale    bool                  `json:"stale"`
}

// Session owns the mutable per-day state for one user: the single instant
// array for the current date, its completion flags, and the rollover to a
// fresh array when the date changes. Timer ticks and user actions race, so
// every entry point takes the session lock.
type Session struct {
	mu         sync.Mutex
	store      CompletionStore
	calculator calc.Calculator
	userID     int

	location calc.Location
	params   calc.Params

	day          time.Time
	marks        model.TimeMarkSet
	instants     []*model.PrayerInstant
	tomorrowFajr string
	stale        bool

	// now is swappable for tests.
	now func() time.Time
}

func NewSession(store CompletionStore, calculator calc.Calculator, userID int, loc calc.Location, params calc.Params) *Session {
	return &Session{
		store:      store,
		calculator: calculator,
		userID:     userID,
		location:   loc,
		params:     params,
		now:        time.Now,
	}
}

// Configure applies new location/calculation settings and forces a rebuild
// on the next evaluation.
func (s *Session) Configure(loc calc.Location, params calc.Params) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.location = loc
	s.params = params
	s.day = time.Time{}
}

// Snapshot returns the current day resolved against wall-clock now,
// rebuilding the day first if the date rolled over.
func (s *Session) Snapshot(ctx context.Context) (Day, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked(ctx, s.now())
}

// Toggle flips completion for the named prayer, persists the day's
// completion map, and re-resolves. Sunrise and unknown names fall through
// to a plain snapshot: an invalid toggle is a no-op, not an error.
func (s *Session) Toggle(ctx context.Context, name model.PrayerName) (Day, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if err := s.ensureDayLocked(ctx, now); err != nil {
		return Day{}, err
	}

	if Toggle(s.instants, name) {
		if err := s.store.SaveCompletion(s.userID, s.day, CompletionMap(s.instants)); err != nil {
			log.Error().Err(err).Str("prayer", string(name)).Msg("failed to persist completion")
		}
	}
	return s.snapshotLocked(ctx, now)
}

// Run re-resolves on a fixed cadence until ctx is done. onDayChange fires
// once at startup and again whenever the calendar date rolls over; the
// caller uses it to re-arm notifications.
func (s *Session) Run(ctx context.Context, interval time.Duration, onDayChange func(Day)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var lastDay time.Time
	for {
		day, err := s.Snapshot(ctx)
		if err != nil {
			log.Error().Err(err).Msg("timetable tick failed")
		} else {
			if !day.Date.Equal(lastDay) {
				lastDay = day.Date
				if onDayChange != nil {
					onDayChange(day)
				}
			}
			log.Debug().
				Str("next", string(day.Next.Name)).
				Int("minutes_until", day.Next.MinutesUntil).
				Bool("rollover", day.Next.Rollover).
				Msg("timetable resolved")
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *Session) snapshotLocked(ctx context.Context, now time.Time) (Day, error) {
	if err := s.ensureDayLocked(ctx, now); err != nil {
		return Day{}, err
	}

	tomorrowFajr := s.tomorrowFajr
	if tomorrowFajr == "" && allPast(s.instants, now) {
		marks, err := s.calculator.ComputeDailyTimes(ctx, s.day.AddDate(0, 0, 1), s.location, s.params)
		if err != nil {
			log.Error().Err(err).Msg("failed to compute tomorrow's marks for rollover")
		} else {
			s.tomorrowFajr = marks.Fajr
			tomorrowFajr = marks.Fajr
		}
	}

	next := Resolve(s.instants, now, tomorrowFajr)

	out := Day{Date: s.day, Marks: s.marks, Next: next, Stale: s.stale, Instants: make([]model.PrayerInstant, len(s.instants))}
	for i, in := range s.instants {
		out.Instants[i] = *in
	}
	return out, nil
}

// ensureDayLocked rebuilds the instant array when the date has rolled over
// (or settings changed). On calculator failure the previous day is kept and
// marked stale; only a session with no day at all propagates the error.
func (s *Session) ensureDayLocked(ctx context.Context, now time.Time) error {
	today := midnightOf(now)
	if s.instants != nil && s.day.Equal(today) {
		return nil
	}

	marks, err := s.calculator.ComputeDailyTimes(ctx, today, s.location, s.params)
	if err != nil {
		if s.instants == nil {
			return err
		}
		log.Error().Err(err).Msg("calculator unavailable, keeping last known day")
		s.stale = true
		return nil
	}

	instants := BuildDay(marks, today)
	completion, err := s.store.LoadCompletion(s.userID, today)
	if err != nil {
		log.Error().Err(err).Msg("failed to load completion, starting day pending")
	} else if len(completion) > 0 {
		ApplyCompletion(instants, completion)
	}

	s.day = today
	s.marks = marks
	s.instants = instants
	s.tomorrowFajr = ""
	s.stale = false
	return nil
}

func allPast(instants []*model.PrayerInstant, now time.Time) bool {
	nowMin := minutesOfDay(now)
	for _, in := range instants {
		if !in.Actionable() {
			continue
		}
		t, err := clockMinutes(in.ClockTime)
		if err != nil {
			continue
		}
		if t >= nowMin {
			return false
		}
	}
	return true
}

// SetClock overrides the session's time source; tests only.
func (s *Session) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}
