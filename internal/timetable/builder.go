package timetable

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/crescent-hq/minaret/internal/model"
)

// BuildDay turns the six computed marks for a date into the day's ordered
// instants. Every mark is copied as-is, Sunrise starts NotApplicable,
// the five prayers start Pending. The returned slice is the single array
// for that date; resolution mutates its flags, never its identity.
func BuildDay(marks model.TimeMarkSet, date time.Time) []*model.PrayerInstant {
	day := midnightOf(date)
	instants := make([]*model.PrayerInstant, 0, len(model.MarkOrder))
	for _, name := range model.MarkOrder {
		state := model.Pending
		if name == model.Sunrise {
			state = model.NotApplicable
		}
		instants = append(instants, &model.PrayerInstant{
			Name:       name,
			ClockTime:  marks.Mark(name),
			Date:       day,
			Completion: state,
		})
	}
	return instants
}

// clockMinutes parses an HH:MM 24-hour string into minutes since midnight.
func clockMinutes(clock string) (int, error) {
	h, m, ok := strings.Cut(strings.TrimSpace(clock), ":")
	if !ok {
		return 0, fmt.Errorf("malformed clock time %q", clock)
	}
	hour, err := strconv.Atoi(h)
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("malformed clock time %q", clock)
	}
	minute, err := strconv.Atoi(m)
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("malformed clock time %q", clock)
	}
	return hour*60 + minute, nil
}

func midnightOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func minutesOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}
