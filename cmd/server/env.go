package main

import (
	"log"
	"os"
	"strconv"
)

type Environment struct {
	Environment    string
	ServerAddress  string
	SecretKey      string
	DatabaseURL    string
	MigrationsPath string
	RedisAddress   string
	RedisUsername  string
	RedisPassword  string

	EngineUserID int

	MQTTBrokerURL   string
	MQTTTopicPrefix string

	AlAdhanBaseURL string

	UseSpaces       bool
	SpacesEndpoint  string
	SpacesRegion    string
	SpacesBucket    string
	SpacesCDNURL    string
	SpacesAccessKey string
	SpacesSecretKey string
	SpacesPrefix    string
	SoundsDir       string
}

// LoadEnvironment reads and validates env vars
func LoadEnvironment() Environment {
	env := Environment{
		Environment:    os.Getenv("APP_ENV"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		SecretKey:      os.Getenv("JWT_SECRET"),
		ServerAddress:  os.Getenv("SERVER_ADDRESS"),
		MigrationsPath: os.Getenv("MIGRATIONS_PATH"),

		RedisAddress:  os.Getenv("REDIS_ADDRESS"),
		RedisUsername: os.Getenv("REDIS_USERNAME"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		EngineUserID: 1,

		MQTTBrokerURL:   os.Getenv("MQTT_BROKER_URL"),
		MQTTTopicPrefix: os.Getenv("MQTT_TOPIC_PREFIX"),

		AlAdhanBaseURL: os.Getenv("ALADHAN_BASE_URL"),

		UseSpaces:       os.Getenv("USE_SPACES") == "true",
		SpacesEndpoint:  os.Getenv("SPACES_ENDPOINT"),
		SpacesRegion:    os.Getenv("SPACES_REGION"),
		SpacesBucket:    os.Getenv("SPACES_BUCKET"),
		SpacesCDNURL:    os.Getenv("SPACES_CDN_URL"),
		SpacesAccessKey: os.Getenv("SPACES_ACCESS_KEY"),
		SpacesSecretKey: os.Getenv("SPACES_SECRET_KEY"),
		SpacesPrefix:    os.Getenv("SPACES_PREFIX"),
		SoundsDir:       os.Getenv("SOUNDS_DIR"),
	}

	if raw := os.Getenv("ENGINE_USER_ID"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil || id <= 0 {
			log.Fatalf("invalid ENGINE_USER_ID %q", raw)
		}
		env.EngineUserID = id
	}

	if env.MQTTBrokerURL == "" {
		env.MQTTBrokerURL = "tcp://0.0.0.0:1883"
	}
	if env.MQTTTopicPrefix == "" {
		env.MQTTTopicPrefix = "minaret"
	}
	if env.SoundsDir == "" {
		env.SoundsDir = "./sounds"
	}

	// Basic validation
	if env.DatabaseURL == "" || env.SecretKey == "" || env.ServerAddress == "" {
		log.Fatal("Missing required environment variables")
	}

	return env
}
