package timetable

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/crescent-hq/minaret/internal/calc"
	"github.com/crescent-hq/minaret/internal/model"
)

type fakeCalc struct {
	marks map[string]model.TimeMarkSet
	err   error
}

func (f *fakeCalc) ComputeDailyTimes(ctx context.Context, date time.Time, loc calc.Location, params calc.Params) (model.TimeMarkSet, error) {
	if f.err != nil {
		return model.TimeMarkSet{}, f.err
	}
	m, ok := f.marks[date.Format("2006-01-02")]
	if !ok {
		return model.TimeMarkSet{}, calc.ErrUnavailable
	}
	return m, nil
}

type fakeCompletionStore struct {
	loaded map[string]map[model.PrayerName]bool
	saved  map[string]map[model.PrayerName]bool
}

func newFakeCompletionStore() *fakeCompletionStore {
	return &fakeCompletionStore{
		loaded: map[string]map[model.PrayerName]bool{},
		saved:  map[string]map[model.PrayerName]bool{},
	}
}

func (f *fakeCompletionStore) LoadCompletion(userID int, day time.Time) (map[model.PrayerName]bool, error) {
	return f.loaded[day.Format("2006-01-02")], nil
}

func (f *fakeCompletionStore) SaveCompletion(userID int, day time.Time, completion map[model.PrayerName]bool) error {
	f.saved[day.Format("2006-01-02")] = completion
	return nil
}

func newTestSession(calculator calc.Calculator, store CompletionStore, now time.Time) *Session {
	s := NewSession(store, calculator, 1, calc.Location{}, calc.Params{})
	s.SetClock(func() time.Time { return now })
	return s
}

func TestSessionSnapshot(t *testing.T) {
	calculator := &fakeCalc{marks: map[string]model.TimeMarkSet{"2026-08-24": testMarks}}
	session := newTestSession(calculator, newFakeCompletionStore(), at(13, 0))

	day, err := session.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if day.Next.Name != model.Asr || day.Next.MinutesUntil != 165 {
		t.Fatalf("expected asr in 165m, got %s in %dm", day.Next.Name, day.Next.MinutesUntil)
	}
	if day.Stale {
		t.Fatal("fresh day should not be stale")
	}
	if len(day.Instants) != 6 {
		t.Fatalf("expected 6 instants, got %d", len(day.Instants))
	}
}

func TestSessionTogglePersists(t *testing.T) {
	calculator := &fakeCalc{marks: map[string]model.TimeMarkSet{"2026-08-24": testMarks}}
	store := newFakeCompletionStore()
	session := newTestSession(calculator, store, at(13, 0))

	day, err := session.Toggle(context.Background(), model.Fajr)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if day.Instants[0].Completion != model.Done {
		t.Fatalf("fajr should be done, got %s", day.Instants[0].Completion)
	}

	saved := store.saved["2026-08-24"]
	if saved == nil || !saved[model.Fajr] {
		t.Fatalf("completion not persisted: %+v", saved)
	}

	// Toggle never changes the resolved next prayer.
	if day.Next.Name != model.Asr {
		t.Fatalf("next changed after toggle: %s", day.Next.Name)
	}
}

func TestSessionToggleSunriseIsPlainSnapshot(t *testing.T) {
	calculator := &fakeCalc{marks: map[string]model.TimeMarkSet{"2026-08-24": testMarks}}
	store := newFakeCompletionStore()
	session := newTestSession(calculator, store, at(13, 0))

	day, err := session.Toggle(context.Background(), model.Sunrise)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if day.Instants[1].Completion != model.NotApplicable {
		t.Fatal("sunrise state changed")
	}
	if len(store.saved) != 0 {
		t.Fatal("no-op toggle must not persist anything")
	}
}

func TestSessionRolloverCountdown(t *testing.T) {
	calculator := &fakeCalc{marks: map[string]model.TimeMarkSet{
		"2026-08-24": testMarks,
		"2026-08-25": {Fajr: "05:12", Sunrise: "06:31", Dhuhr: "12:15", Asr: "15:44", Maghrib: "18:18", Isha: "19:38"},
	}}
	session := newTestSession(calculator, newFakeCompletionStore(), at(20, 30))

	day, err := session.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if !day.Next.Rollover {
		t.Fatal("expected rollover after isha")
	}
	if day.Next.MinutesUntil != 210+312 {
		t.Fatalf("expected %d minutes, got %d", 210+312, day.Next.MinutesUntil)
	}
}

func TestSessionStaleOnCalculatorFailure(t *testing.T) {
	calculator := &fakeCalc{marks: map[string]model.TimeMarkSet{"2026-08-24": testMarks}}
	store := newFakeCompletionStore()
	session := newTestSession(calculator, store, at(13, 0))

	if _, err := session.Snapshot(context.Background()); err != nil {
		t.Fatalf("snapshot: %v", err)
	}

	// Next day, calculator down: keep yesterday's schedule, flag it stale.
	session.SetClock(func() time.Time { return time.Date(2026, 8, 25, 9, 0, 0, 0, time.UTC) })
	calculator.err = calc.ErrUnavailable

	day, err := session.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("snapshot with stale data: %v", err)
	}
	if !day.Stale {
		t.Fatal("expected stale flag")
	}
	if !day.Date.Equal(time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected last known date, got %v", day.Date)
	}
}

func TestSessionFirstLoadFailurePropagates(t *testing.T) {
	calculator := &fakeCalc{err: calc.ErrUnavailable}
	session := newTestSession(calculator, newFakeCompletionStore(), at(13, 0))

	if _, err := session.Snapshot(context.Background()); !errors.Is(err, calc.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestSessionDayRolloverResetsCompletion(t *testing.T) {
	tomorrow := model.TimeMarkSet{Fajr: "05:12", Sunrise: "06:31", Dhuhr: "12:15", Asr: "15:44", Maghrib: "18:18", Isha: "19:38"}
	calculator := &fakeCalc{marks: map[string]model.TimeMarkSet{
		"2026-08-24": testMarks,
		"2026-08-25": tomorrow,
	}}
	store := newFakeCompletionStore()
	session := newTestSession(calculator, store, at(13, 0))

	if _, err := session.Toggle(context.Background(), model.Dhuhr); err != nil {
		t.Fatalf("toggle: %v", err)
	}

	session.SetClock(func() time.Time { return time.Date(2026, 8, 25, 9, 0, 0, 0, time.UTC) })
	day, err := session.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}

	if !day.Date.Equal(time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected new date, got %v", day.Date)
	}
	for _, in := range day.Instants {
		if in.Actionable() && in.Completion != model.Pending {
			t.Errorf("%s should reset to pending on a new day, got %s", in.Name, in.Completion)
		}
	}
}

func TestSessionReloadsPersistedCompletion(t *testing.T) {
	calculator := &fakeCalc{marks: map[string]model.TimeMarkSet{"2026-08-24": testMarks}}
	store := newFakeCompletionStore()
	store.loaded["2026-08-24"] = map[model.PrayerName]bool{model.Fajr: true}
	session := newTestSession(calculator, store, at(13, 0))

	day, err := session.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if day.Instants[0].Completion != model.Done {
		t.Fatalf("persisted fajr completion not applied: %s", day.Instants[0].Completion)
	}
}
