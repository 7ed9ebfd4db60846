package endpoints

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/crescent-hq/minaret/internal/adhan"
	"github.com/crescent-hq/minaret/internal/calc"
	"github.com/crescent-hq/minaret/internal/db"
	"github.com/crescent-hq/minaret/internal/http/api"
	"github.com/crescent-hq/minaret/internal/http/api/prayer/packets"
	"github.com/crescent-hq/minaret/internal/model"
	"github.com/crescent-hq/minaret/internal/timetable"
)

type SettingsController struct {
	store   db.Store
	session *timetable.Session
}

func NewSettingsController(store db.Store, session *timetable.Session) *SettingsController {
	return &SettingsController{store: store, session: session}
}

func SettingsModule(store db.Store, session *timetable.Session) api.Module {
	ctl := NewSettingsController(store, session)
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/settings", ctl.getSettings)
		c.PUT("/settings", ctl.updateSettings)
	})
}

func (s *SettingsController) getSettings(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	settings, err := s.store.GetSettings(user.ID)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not load settings"}
	}
	return settings, nil
}

func (s *SettingsController) updateSettings(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	var request packets.UpdateSettingsRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	if _, ok := adhan.OptionByValue(request.AdhanSound); !ok {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "unknown adhan sound"}
	}

	settings := model.Settings{
		UserID:               user.ID,
		City:                 request.City,
		Latitude:             request.Latitude,
		Longitude:            request.Longitude,
		Method:               request.Method,
		School:               request.School,
		AdhanSound:           request.AdhanSound,
		NotificationsEnabled: request.NotificationsEnabled,
		ReminderOffsets:      request.ReminderOffsets,
		RamadanAlertsEnabled: request.RamadanAlertsEnabled,
		SehriOffsetMin:       request.SehriOffsetMin,
		IftarOffsetMin:       request.IftarOffsetMin,
	}

	if err := s.store.SaveSettings(settings); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not save settings"}
	}

	// New location/params invalidate today's schedule.
	s.session.Configure(
		calc.Location{Latitude: settings.Latitude, Longitude: settings.Longitude},
		calc.Params{Method: settings.Method, School: settings.School},
	)

	return settings, nil
}
