package notify

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/crescent-hq/minaret/internal/adhan"
	"github.com/crescent-hq/minaret/internal/model"
	"github.com/crescent-hq/minaret/internal/ramadan"
)

// Transport delivers arm requests to the device. Schedule must upsert by
// request identifier: re-sending an identifier replaces the pending trigger
// with that identifier, never duplicates it.
type Transport interface {
	Schedule(ctx context.Context, req model.NotificationRequest) error
	CancelAll(ctx context.Context) error
}

// ErrRefreshInFlight is returned when a refresh is requested while another
// one is still dispatching; racing upserts for the same identifier set is
// not allowed.
var ErrRefreshInFlight = errors.New("notification refresh already in flight")

// SchedulingError aggregates per-identifier transport failures from one
// refresh. A partial failure never aborts the remaining dispatches.
type SchedulingError struct {
	Failures map[string]error
}

func (e *SchedulingError) Error() string {
	ids := make([]string, 0, len(e.Failures))
	for id := range e.Failures {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return fmt.Sprintf("failed to schedule %d notification(s): %s", len(ids), strings.Join(ids, ", "))
}

// Scheduler derives idempotent notification requests from the day's
// instants and dispatches them. There is no cancel-before-schedule and no
// retry within a refresh: the transport's upsert semantics plus the daily
// re-invocation cadence cover both.
type Scheduler struct {
	transport       Transport
	dispatchTimeout time.Duration
	inFlight        atomic.Bool
}

func NewScheduler(transport Transport) *Scheduler {
	return &Scheduler{transport: transport, dispatchTimeout: 5 * time.Second}
}

// Refresh (re)arms everything for the day: an on-time daily repeat per
// prayer, a one-off pre-reminder per configured offset (skipped when the
// reminder instant is already past — tomorrow's comes from tomorrow's
// refresh), and the sehri/iftar pair when a Ramadan window is given.
// Returns the number of requests accepted by the transport.
func (s *Scheduler) Refresh(ctx context.Context, instants []model.PrayerInstant, settings model.Settings, window *ramadan.Window, now time.Time) (int, error) {
	if !s.inFlight.CompareAndSwap(false, true) {
		return 0, ErrRefreshInFlight
	}
	defer s.inFlight.Store(false)

	if !settings.NotificationsEnabled {
		if err := s.cancelAll(ctx); err != nil {
			return 0, err
		}
		return 0, nil
	}

	sound := adhan.NotificationSound(settings.AdhanSound)
	failures := map[string]error{}
	scheduled := 0

	for i := range instants {
		in := &instants[i]
		if !in.Actionable() {
			continue
		}

		for _, req := range s.requestsFor(in, settings, sound, now) {
			if err := s.dispatch(ctx, req); err != nil {
				log.Error().Err(err).Str("identifier", req.Identifier).Msg("notification dispatch failed")
				failures[req.Identifier] = err
				continue
			}
			scheduled++
		}
	}

	if window != nil && settings.RamadanAlertsEnabled {
		for _, req := range ramadanRequests(*window) {
			if err := s.dispatch(ctx, req); err != nil {
				log.Error().Err(err).Str("identifier", req.Identifier).Msg("ramadan dispatch failed")
				failures[req.Identifier] = err
				continue
			}
			scheduled++
		}
	}

	if len(failures) > 0 {
		return scheduled, &SchedulingError{Failures: failures}
	}
	return scheduled, nil
}

// requestsFor derives the on-time and (when still in the future) reminder
// requests for one prayer.
func (s *Scheduler) requestsFor(in *model.PrayerInstant, settings model.Settings, sound string, now time.Time) []model.NotificationRequest {
	hour, minute, err := splitClock(in.ClockTime)
	if err != nil {
		log.Warn().Str("prayer", string(in.Name)).Str("clock", in.ClockTime).Msg("skipping notifications for unparsable mark")
		return nil
	}

	channel := model.ChannelDefault
	if in.Name == model.Fajr {
		channel = model.ChannelUrgent
	}

	reqs := []model.NotificationRequest{{
		Identifier: fmt.Sprintf("%s-daily", in.Name),
		Title:      fmt.Sprintf("%s at %s", in.Name.Title(), in.ClockTime),
		Body:       fmt.Sprintf("It is time for %s.", in.Name.Title()),
		Sound:      sound,
		Channel:    channel,
		Trigger:    model.DailyRepeat(hour, minute),
	}}

	offset, ok := settings.ReminderOffsets[in.Name]
	if !ok || offset <= 0 {
		return reqs
	}

	prayerAt := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	reminderAt := prayerAt.Add(-time.Duration(offset) * time.Minute)
	// Strictly future only: a reminder whose instant already passed is
	// dropped for today, never fired immediately or moved to tomorrow.
	if !reminderAt.After(now) {
		return reqs
	}

	reqs = append(reqs, model.NotificationRequest{
		Identifier: fmt.Sprintf("%s-reminder", in.Name),
		Title:      fmt.Sprintf("%s in %d minutes", in.Name.Title(), offset),
		Body:       fmt.Sprintf("%s is at %s.", in.Name.Title(), in.ClockTime),
		Channel:    model.ChannelDefault,
		Trigger:    model.OneOff(reminderAt),
	})
	return reqs
}

func ramadanRequests(w ramadan.Window) []model.NotificationRequest {
	return []model.NotificationRequest{
		{
			Identifier: fmt.Sprintf("ramadan-sehri-day-%d", w.Day),
			Title:      "Sehri ends soon",
			Body:       fmt.Sprintf("Sehri ends at %s today.", w.Sehri.Format("15:04")),
			Channel:    model.ChannelUrgent,
			Trigger:    model.OneOff(w.Sehri),
		},
		{
			Identifier: fmt.Sprintf("ramadan-iftar-day-%d", w.Day),
			Title:      "Iftar time",
			Body:       fmt.Sprintf("Iftar opens at %s today.", w.Iftar.Format("15:04")),
			Channel:    model.ChannelUrgent,
			Trigger:    model.OneOff(w.Iftar),
		},
	}
}

func (s *Scheduler) dispatch(ctx context.Context, req model.NotificationRequest) error {
	ctx, cancel := context.WithTimeout(ctx, s.dispatchTimeout)
	defer cancel()
	return s.transport.Schedule(ctx, req)
}

func (s *Scheduler) cancelAll(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.dispatchTimeout)
	defer cancel()
	if err := s.transport.CancelAll(ctx); err != nil {
		return fmt.Errorf("cancel all notifications: %w", err)
	}
	return nil
}

func splitClock(clock string) (int, int, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(clock))
	if err != nil {
		return 0, 0, fmt.Errorf("malformed clock time %q", clock)
	}
	return t.Hour(), t.Minute(), nil
}
