package endpoints

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/crescent-hq/minaret/internal/db"
	"github.com/crescent-hq/minaret/internal/http/api"
	"github.com/crescent-hq/minaret/internal/http/api/prayer/packets"
	"github.com/crescent-hq/minaret/internal/model"
	"github.com/crescent-hq/minaret/internal/notify"
	"github.com/crescent-hq/minaret/internal/ramadan"
	"github.com/crescent-hq/minaret/internal/timetable"
)

type NotificationsController struct {
	store     db.Store
	session   *timetable.Session
	scheduler *notify.Scheduler
	calendar  *ramadan.Calendar
}

func NewNotificationsController(store db.Store, session *timetable.Session, scheduler *notify.Scheduler, calendar *ramadan.Calendar) *NotificationsController {
	return &NotificationsController{store: store, session: session, scheduler: scheduler, calendar: calendar}
}

func NotificationsModule(store db.Store, session *timetable.Session, scheduler *notify.Scheduler, calendar *ramadan.Calendar) api.Module {
	ctl := NewNotificationsController(store, session, scheduler, calendar)
	return api.ModuleFunc(func(c *api.Controller) {
		c.POST("/notifications/refresh", ctl.refresh)
	})
}

// POST /api/prayer/notifications/refresh re-arms everything for today.
// Partial transport failures come back per identifier with 207 semantics.
func (n *NotificationsController) refresh(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	day, err := n.session.Snapshot(ctx)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusServiceUnavailable, Message: "prayer times unavailable"}
	}

	settings, err := n.store.GetSettings(user.ID)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not load settings"}
	}

	var window *ramadan.Window
	if settings.RamadanAlertsEnabled {
		window, err = n.calendar.WindowFor(ctx, day.Date, day.Marks, settings)
		if err != nil {
			// Ramadan specials degrade gracefully; daily arming continues.
			log.Error().Err(err).Msg("ramadan window unavailable, skipping specials")
			window = nil
		}
	}

	scheduled, err := n.scheduler.Refresh(ctx, day.Instants, settings, window, time.Now())
	if err != nil {
		if errors.Is(err, notify.ErrRefreshInFlight) {
			return nil, &api.APIError{Code: http.StatusConflict, Message: "refresh already in flight"}
		}
		var schedErr *notify.SchedulingError
		if errors.As(err, &schedErr) {
			// Partial failure: report what stuck and what did not, caller
			// may retry via another refresh.
			failures := make(map[string]string, len(schedErr.Failures))
			for id, ferr := range schedErr.Failures {
				failures[id] = ferr.Error()
			}
			return packets.RefreshResponse{Scheduled: scheduled, Failures: failures}, nil
		}
		return nil, &api.APIError{Code: http.StatusBadGateway, Message: "notification transport unavailable"}
	}

	return packets.RefreshResponse{Scheduled: scheduled}, nil
}
