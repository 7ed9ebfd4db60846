package timetable

import (
	"time"

	"github.com/crescent-hq/minaret/internal/model"
)

// CompletionStore persists the per-date completion map.
type CompletionStore interface {
	LoadCompletion(userID int, day time.Time) (map[model.PrayerName]bool, error)
	SaveCompletion(userID int, day time.Time, completion map[model.PrayerName]bool) error
}

// Toggle flips Done<->Pending for the named instant and reports whether
// anything changed. Sunrise (NotApplicable) and unknown names are silent
// no-ops, not errors.
func Toggle(instants []*model.PrayerInstant, name model.PrayerName) bool {
	for _, in := range instants {
		if in.Name != name {
			continue
		}
		switch in.Completion {
		case model.Pending:
			in.Completion = model.Done
		case model.Done:
			in.Completion = model.Pending
		default:
			return false
		}
		return true
	}
	return false
}

// ApplyCompletion overlays a persisted completion map onto a freshly built
// day. Entries for non-actionable instants are ignored.
func ApplyCompletion(instants []*model.PrayerInstant, completion map[model.PrayerName]bool) {
	for _, in := range instants {
		if !in.Actionable() {
			continue
		}
		if completion[in.Name] {
			in.Completion = model.Done
		} else {
			in.Completion = model.Pending
		}
	}
}

// CompletionMap extracts the persistable view of the day: one bool per
// actionable prayer.
func CompletionMap(instants []*model.PrayerInstant) map[model.PrayerName]bool {
	out := make(map[model.PrayerName]bool, 5)
	for _, in := range instants {
		if !in.Actionable() {
			continue
		}
		out[in.Name] = in.Completion == model.Done
	}
	return out
}
