package packets

import (
	"github.com/crescent-hq/minaret/internal/model"
	"github.com/crescent-hq/minaret/internal/timetable"
)

type TimetableResponse struct {
	Date     string                `json:"date"`
	Instants []model.PrayerInstant `json:"instants"`
	Next     timetable.Next        `json:"next"`
	Stale    bool                  `json:"stale"`
}

type PreviewSessionResponse struct {
	State  model.PreviewState `json:"state"`
	Loaded *model.AdhanOption `json:"loaded,omitempty"`
}

type RefreshResponse struct {
	Scheduled int               `json:"scheduled"`
	Failures  map[string]string `json:"failures,omitempty"`
}
