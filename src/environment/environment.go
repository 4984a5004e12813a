package environment

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"time"

	pulsarClient "github.com/apache/pulsar-client-go/pulsar"
	envLoader "github.com/caarlos0/env/v10"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	env *Environment

	// LogLevel is the level of the default slog handler. It follows LOG_LEVEL.
	LogLevel = new(slog.LevelVar)
)

// environment holds all the environment variables with primitive types
type environment struct {
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	WorkerCount int    `env:"WORKER_COUNT" envDefault:"0"`
	HTTPPort    int    `env:"HTTP_PORT" envDefault:"8080"`

	MongoDbURI      string `env:"MONGODB_URI" envDefault:"mongodb://localhost:27017"`
	MongoDbDatabase string `env:"MONGODB_DATABASE" envDefault:"unwindia"`

	PulsarURL          string `env:"PULSAR_URL" envDefault:"pulsar://localhost:6650"`
	PulsarAuth         string `env:"PULSAR_AUTH" envDefault:"none"`
	PulsarAuthParams   string `env:"PULSAR_AUTH_PARAMS"`
	PulsarBaseTopic    string `env:"PULSAR_BASE_TOPIC" envDefault:"persistent://public/unwindia/cricket"`
	PulsarCommandTopic string `env:"PULSAR_COMMAND_TOPIC" envDefault:"persistent://public/unwindia/cricket-commands"`

	OutboxProcessInterval time.Duration `env:"OUTBOX_PROCESS_INTERVAL" envDefault:"2s"`
	OutboxBatchSize       int64         `env:"OUTBOX_BATCH_SIZE" envDefault:"100"`
	OutboxMaxAttempts     int           `env:"OUTBOX_MAX_ATTEMPTS" envDefault:"10"`

	RedisAddr     string        `env:"REDIS_ADDR"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB" envDefault:"0"`
	ScoreboardTTL time.Duration `env:"SCOREBOARD_TTL" envDefault:"6h"`

	FollowOnThreshold int `env:"FOLLOW_ON_THRESHOLD" envDefault:"200"`
}

// Environment holds all environment configuration with more advanced typing and validation
type Environment struct {
	environment
	PulsarAuth pulsarClient.Authentication `json:"-"`
}

// PulsarAuth names the authentication method of the pulsar client
type PulsarAuth string

const (
	AUTH_NONE   PulsarAuth = "none"
	AUTH_TOKEN  PulsarAuth = "token"
	AUTH_OAUTH2 PulsarAuth = "oauth2"
)

func (p *PulsarAuth) Unmarshal(s string) error {
	switch v := PulsarAuth(strings.ToLower(strings.TrimSpace(s))); v {
	case "", AUTH_NONE:
		*p = AUTH_NONE
	case AUTH_TOKEN, AUTH_OAUTH2:
		*p = v
	default:
		return fmt.Errorf("unknown pulsar auth %q", s)
	}
	return nil
}

// SetLogLevel applies level to zerolog and to the default slog handler.
func SetLogLevel(level string) error {
	zl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return err
	}
	zerolog.SetGlobalLevel(zl)

	switch {
	case zl <= zerolog.DebugLevel:
		LogLevel.Set(slog.LevelDebug)
	case zl == zerolog.InfoLevel:
		LogLevel.Set(slog.LevelInfo)
	case zl == zerolog.WarnLevel:
		LogLevel.Set(slog.LevelWarn)
	default:
		LogLevel.Set(slog.LevelError)
	}
	return nil
}

// parse builds the typed environment from the raw variables.
func parse(e environment) (*Environment, error) {
	if err := SetLogLevel(e.LogLevel); err != nil {
		return nil, err
	}

	if e.WorkerCount <= 0 {
		e.WorkerCount = runtime.NumCPU() + e.WorkerCount
	}
	if e.WorkerCount <= 0 {
		e.WorkerCount = 1
	}

	var pulsarAuthParams = make(map[string]string)
	if e.PulsarAuthParams != "" {
		if err := json.Unmarshal([]byte(e.PulsarAuthParams), &pulsarAuthParams); err != nil {
			return nil, fmt.Errorf("PULSAR_AUTH_PARAMS: %w", err)
		}
	}

	var auth PulsarAuth
	if err := auth.Unmarshal(e.PulsarAuth); err != nil {
		return nil, err
	}

	var pulsarAuth pulsarClient.Authentication

	switch auth {
	case AUTH_TOKEN:
		pulsarAuth = pulsarClient.NewAuthenticationToken(pulsarAuthParams["token"])
	case AUTH_OAUTH2:
		pulsarAuth = pulsarClient.NewAuthenticationOAuth2(pulsarAuthParams)
	}

	return &Environment{
		environment: e,
		PulsarAuth:  pulsarAuth,
	}, nil
}

// Load initialized the environment variables
func load() *Environment {
	e := environment{}
	if err := envLoader.Parse(&e); err != nil {
		log.Panic().Err(err).Msg("Error parsing environment")
	}

	e2, err := parse(e)
	if err != nil {
		log.Panic().Err(err).Msg("Invalid environment")
	}

	log.Info().Interface("environment", e2.environment).Msgf("Loaded Environment")

	return e2
}

func Get() *Environment {
	if env == nil {
		env = load()
	}

	return env
}
