package main

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/crescent-hq/minaret/internal/adhan"
	"github.com/crescent-hq/minaret/internal/db"
	"github.com/crescent-hq/minaret/internal/http/api"
	authapi "github.com/crescent-hq/minaret/internal/http/api/auth/endpoints"
	prayerapi "github.com/crescent-hq/minaret/internal/http/api/prayer/endpoints"
	"github.com/crescent-hq/minaret/internal/notify"
	"github.com/crescent-hq/minaret/internal/ramadan"
	"github.com/crescent-hq/minaret/internal/timetable"
)

// RegisterRoutes sets up all application routes
func RegisterRoutes(
	r *gin.Engine,
	env Environment,
	store db.Store,
	session *timetable.Session,
	scheduler *notify.Scheduler,
	calendar *ramadan.Calendar,
	player *adhan.Player,
) {
	// CORS
	r.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool { return true },
		AllowMethods: []string{
			"GET",
			"POST",
			"PUT",
			"PATCH",
			"DELETE",
			"OPTIONS",
			"HEAD",
		},
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Authorization",
			"Accept",
		},
		ExposeHeaders: []string{
			"Content-Length",
		},
		AllowCredentials: false,
	}))

	api.MountGroup(r, api.GroupConfig{
		Prefix: "/api/prayer",
		Auth:   false,
	},
		authapi.AuthPublicModule(env.SecretKey, store),
	)

	api.MountGroup(r, api.GroupConfig{
		Prefix:    "/api/prayer",
		Auth:      true,
		SecretKey: env.SecretKey,
		Store:     store,
	},
		prayerapi.TimetableModule(session),
		prayerapi.SettingsModule(store, session),
		prayerapi.NotificationsModule(store, session, scheduler, calendar),
		prayerapi.AdhanModule(player),
		authapi.AuthSessionModule(env.SecretKey, store),
	)
}
