package endpoints

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/crescent-hq/minaret/internal/http/api"
	"github.com/crescent-hq/minaret/internal/http/api/prayer/packets"
	"github.com/crescent-hq/minaret/internal/model"
	"github.com/crescent-hq/minaret/internal/timetable"
)

type TimetableController struct {
	session *timetable.Session
}

func NewTimetableController(session *timetable.Session) *TimetableController {
	return &TimetableController{session: session}
}

func TimetableModule(session *timetable.Session) api.Module {
	ctl := NewTimetableController(session)
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/timetable/today", ctl.today)
		c.GET("/timetable/next", ctl.next)
		c.POST("/timetable/:prayer/toggle", ctl.toggle)
	})
}

func (t *TimetableController) today(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	day, err := t.session.Snapshot(ctx)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusServiceUnavailable, Message: "prayer times unavailable"}
	}
	return timetableResponse(day), nil
}

func (t *TimetableController) next(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	day, err := t.session.Snapshot(ctx)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusServiceUnavailable, Message: "prayer times unavailable"}
	}
	return day.Next, nil
}

func (t *TimetableController) toggle(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	name := model.PrayerName(ctx.Param("prayer"))
	if !validPrayer(name) {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "unknown prayer"}
	}

	day, err := t.session.Toggle(ctx, name)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusServiceUnavailable, Message: "prayer times unavailable"}
	}
	return timetableResponse(day), nil
}

func validPrayer(name model.PrayerName) bool {
	for _, n := range model.MarkOrder {
		if n == name {
			return true
		}
	}
	return false
}

func timetableResponse(day timetable.Day) packets.TimetableResponse {
	return packets.TimetableResponse{
		Date:     day.Date.Format("2006-01-02"),
		Instants: day.Instants,
		Next:     day.Next,
		Stale:    day.Stale,
	}
}
