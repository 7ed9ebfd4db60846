// Package calc is the boundary to the astronomical prayer-time computation.
// Nothing in this repository solves solar geometry; the engine consumes a
// Calculator and treats its output as given.
package calc

import (
	"context"
	"errors"
	"time"

	"github.com/crescent-hq/minaret/internal/model"
)

// ErrUnavailable is returned when no marks could be produced for a date.
// Callers keep their last-known day and surface a stale flag instead of
// failing.
var ErrUnavailable = errors.New("daily time marks unavailable")

// Location is the user's coordinates.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Params selects the calculation convention: Method is the authority
// (ISNA, MWL, ...) and School the madhab used for Asr (0 Shafi, 1 Hanafi).
type Params struct {
	Method int `json:"method"`
	School int `json:"school"`
}

// Calculator produces the six HH:MM marks for one date.
type Calculator interface {
	ComputeDailyTimes(ctx context.Context, date time.Time, loc Location, params Params) (model.TimeMarkSet, error)
}

// HijriDater additionally reports the Hijri calendar date for a Gregorian
// one; the Ramadan calendar is derived from it.
type HijriDater interface {
	HijriDate(ctx context.Context, date time.Time, loc Location, params Params) (month, day int, err error)
}
