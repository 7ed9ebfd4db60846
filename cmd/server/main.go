package main

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/crescent-hq/minaret/internal/adhan"
	"github.com/crescent-hq/minaret/internal/assets"
	"github.com/crescent-hq/minaret/internal/calc"
	"github.com/crescent-hq/minaret/internal/db"
	"github.com/crescent-hq/minaret/internal/mqttx"
	"github.com/crescent-hq/minaret/internal/notify"
	"github.com/crescent-hq/minaret/internal/ramadan"
	"github.com/crescent-hq/minaret/internal/redis"
	"github.com/crescent-hq/minaret/internal/timetable"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file found")
	}
	env := LoadEnvironment()

	// initialize PostgreSQL
	if err := db.Init(env.DatabaseURL); err != nil {
		log.Fatal().Err(err).Msg("db init failed")
	}
	if env.MigrationsPath != "" {
		if err := db.RunMigrations(env.MigrationsPath); err != nil {
			log.Fatal().Err(err).Msg("db migrate failed")
		}
	}
	store := db.NewStore()

	redis.InitRedis(env.RedisAddress, env.RedisUsername, env.RedisPassword)

	// calculator: Al Adhan behind the redis cache
	client := calc.NewAlAdhanClient(env.AlAdhanBaseURL)
	calculator := calc.NewCachedCalculator(client)
	calendar := ramadan.NewCalendar(client)

	settings, err := store.GetSettings(env.EngineUserID)
	if err != nil {
		log.Fatal().Err(err).Msg("could not load engine settings")
	}
	session := timetable.NewSession(
		store,
		calculator,
		env.EngineUserID,
		calc.Location{Latitude: settings.Latitude, Longitude: settings.Longitude},
		calc.Params{Method: settings.Method, School: settings.School},
	)

	// MQTT: notification upserts and audio preview commands
	mqttClient, err := mqttx.Connect(env.MQTTBrokerURL, "minaret-server")
	if err != nil {
		log.Fatal().Err(err).Msg("mqtt connect failed")
	}
	transport := mqttx.NewNotificationTransport(mqttClient, env.MQTTTopicPrefix)
	scheduler := notify.NewScheduler(transport)

	audio, err := mqttx.NewAudioTransport(mqttClient, env.MQTTTopicPrefix)
	if err != nil {
		log.Fatal().Err(err).Msg("audio transport init failed")
	}
	player := adhan.NewPlayer(audio, initSoundStore(env))

	// re-resolve every minute; re-arm notifications at startup and on each
	// day boundary
	ctx := context.Background()
	go session.Run(ctx, time.Minute, func(day timetable.Day) {
		rearm(ctx, env.EngineUserID, store, scheduler, calendar, day)
	})

	r := gin.Default()
	RegisterRoutes(r, env, store, session, scheduler, calendar, player)

	log.Info().Str("address", env.ServerAddress).Msg("listening")
	if err := r.Run(env.ServerAddress); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
}

func rearm(ctx context.Context, userID int, store db.Store, scheduler *notify.Scheduler, calendar *ramadan.Calendar, day timetable.Day) {
	settings, err := store.GetSettings(userID)
	if err != nil {
		log.Error().Err(err).Msg("rearm: could not load settings")
		return
	}

	var window *ramadan.Window
	if settings.RamadanAlertsEnabled {
		window, err = calendar.WindowFor(ctx, day.Date, day.Marks, settings)
		if err != nil {
			log.Error().Err(err).Msg("rearm: ramadan window unavailable")
			window = nil
		}
	}

	scheduled, err := scheduler.Refresh(ctx, day.Instants, settings, window, time.Now())
	if err != nil {
		log.Error().Err(err).Int("scheduled", scheduled).Msg("rearm finished with failures")
		return
	}
	log.Info().Int("scheduled", scheduled).Str("date", day.Date.Format("2006-01-02")).Msg("notifications armed")
}

func initSoundStore(env Environment) assets.SoundStore {
	if env.UseSpaces {
		spaces, err := assets.NewSpacesSounds(
			env.SpacesEndpoint,
			env.SpacesRegion,
			env.SpacesBucket,
			env.SpacesCDNURL,
			env.SpacesAccessKey,
			env.SpacesSecretKey,
			env.SpacesPrefix,
		)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize Spaces sound store")
		}
		log.Info().Str("cdn", env.SpacesCDNURL).Msg("using Spaces sound assets")
		return spaces
	}

	log.Info().Str("dir", env.SoundsDir).Msg("using local sound assets")
	return assets.NewLocalSounds(env.SoundsDir)
}
