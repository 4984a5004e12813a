package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/GSH-LAN/Unwindia_cricket/src/database"
	"github.com/GSH-LAN/Unwindia_cricket/src/environment"
	"github.com/GSH-LAN/Unwindia_cricket/src/messagequeue"
	"github.com/GSH-LAN/Unwindia_cricket/src/scoreboard"
	"github.com/GSH-LAN/Unwindia_cricket/src/scoring"
	"github.com/GSH-LAN/Unwindia_cricket/src/server"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-pulsar/pkg/pulsar"
	pulsarClient "github.com/apache/pulsar-client-go/pulsar"
	"github.com/gammazero/workerpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// NewServeCommand runs the scoring service: http api, pulsar command consumer and outbox worker.
func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the cricket scoring service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context())
		},
	}
}

func serve(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	mainContext, cancel := context.WithCancel(ctx)
	defer cancel()

	env := environment.Get()

	db, err := database.NewClient(mainContext, env.MongoDbURI, env.MongoDbDatabase)
	if err != nil {
		return fmt.Errorf("connecting to mongodb: %w", err)
	}
	defer db.Close(context.Background())

	opts := []scoring.Option{scoring.WithFollowOnThreshold(env.FollowOnThreshold)}
	if env.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     env.RedisAddr,
			Password: env.RedisPassword,
			DB:       env.RedisDB,
		})
		defer redisClient.Close()

		if err := redisClient.Ping(mainContext).Err(); err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
		opts = append(opts, scoring.WithObserver(scoreboard.NewRedisWriter(redisClient, env.ScoreboardTTL)))
		slog.Info("Live scoreboard enabled", "redis", env.RedisAddr)
	}
	svc := scoring.NewService(db, opts...)

	wp := workerpool.New(env.WorkerCount)

	conn, err := pulsarClient.NewClient(pulsarClient.ClientOptions{
		URL:            env.PulsarURL,
		Authentication: env.PulsarAuth,
	})
	if err != nil {
		return errors.New("cannot connect to pulsar")
	}
	defer conn.Close()

	eventPublisher, err := pulsar.NewPublisherWithPulsarClient(
		conn,
		watermill.NewStdLoggerWithOut(log.Logger, zerolog.GlobalLevel() <= zerolog.DebugLevel, zerolog.GlobalLevel() == zerolog.TraceLevel),
	)
	if err != nil {
		return fmt.Errorf("creating event publisher: %w", err)
	}

	commands := make(chan *messagequeue.Command)
	subscriber, err := messagequeue.NewSubscriber(mainContext, conn, env.PulsarCommandTopic, commands)
	if err != nil {
		return fmt.Errorf("subscribing to %s: %w", env.PulsarCommandTopic, err)
	}

	srv, err := server.NewServer(mainContext, env, server.Dependencies{
		Service:    svc,
		Database:   db,
		WorkerPool: wp,
		Publisher:  eventPublisher,
		Subscriber: subscriber,
		Commands:   commands,
	})
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		cancel()
		if err := srv.Stop(); err != nil {
			slog.Error("Error stopping server", "error", err)
		}
	}()

	return srv.Start()
}
