package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/GSH-LAN/Unwindia_cricket/src/database"
	"github.com/GSH-LAN/Unwindia_cricket/src/environment"
	"github.com/GSH-LAN/Unwindia_cricket/src/messagequeue"
	"github.com/GSH-LAN/Unwindia_cricket/src/router"
	"github.com/GSH-LAN/Unwindia_cricket/src/scoring"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/gammazero/workerpool"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Consumer delivers commands into the channel it was created with once started.
type Consumer interface {
	StartConsumer()
}

// Dependencies are the collaborators of a Server. Publisher and Subscriber are optional.
type Dependencies struct {
	Service    *scoring.Service
	Database   database.DatabaseClient
	WorkerPool *workerpool.WorkerPool
	Publisher  message.Publisher
	Subscriber Consumer
	Commands   chan *messagequeue.Command
}

type Server struct {
	ctx         context.Context
	env         *environment.Environment
	service     *scoring.Service
	dbClient    database.DatabaseClient
	workerpool  *workerpool.WorkerPool
	subscriber  Consumer
	publisher   message.Publisher
	commandChan chan *messagequeue.Command
	router      *gin.Engine
	httpServer  *http.Server
	stop        chan struct{}
	stopOnce    sync.Once

	// pending holds the queued commands per inning while one of them is being processed.
	queueLock sync.Mutex
	pending   map[string][]*messagequeue.Command
}

func NewServer(ctx context.Context, env *environment.Environment, deps Dependencies) (*Server, error) {
	if deps.Service == nil {
		return nil, errors.New("scoring service is required")
	}
	if deps.WorkerPool == nil {
		deps.WorkerPool = workerpool.New(env.WorkerCount)
	}

	srv := Server{
		ctx:         ctx,
		env:         env,
		service:     deps.Service,
		dbClient:    deps.Database,
		workerpool:  deps.WorkerPool,
		subscriber:  deps.Subscriber,
		publisher:   deps.Publisher,
		commandChan: deps.Commands,
		router:      router.DefaultRouter(slog.Default()),
		stop:        make(chan struct{}),
		pending:     make(map[string][]*messagequeue.Command),
	}
	srv.setupRouter()
	srv.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", env.HTTPPort),
		Handler:           srv.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return &srv, nil
}

// Handler exposes the http routes of the server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start() error {
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Error running http server", "error", err)
		}
	}()

	if s.publisher != nil && s.dbClient != nil {
		go func() {
			worker := NewWorker(s.ctx, s.dbClient, s.publisher, s.env.PulsarBaseTopic, s.env.OutboxBatchSize, s.env.OutboxMaxAttempts)
			if err := worker.StartWorker(s.env.OutboxProcessInterval); err != nil {
				slog.Error("Outbox worker stopped", "error", err)
			}
		}()
	}

	if s.subscriber != nil {
		s.subscriber.StartConsumer()
	}
	for {
		select {
		case <-s.stop:
			slog.Info("Stopping processing, server stopped")
			return nil
		case <-s.ctx.Done():
			slog.Info("Stopping processing, context done")
			return nil
		case command := <-s.commandChan:
			s.dispatch(command)
		}
	}
}

func (s *Server) Stop() error {
	slog.Info("Stopping server")
	s.stopOnce.Do(func() { close(s.stop) })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := s.httpServer.Shutdown(ctx)
	s.workerpool.StopWait()
	return err
}

// dispatch runs commands of different innings on the pool. Commands of one inning are processed
// in the order they arrived.
func (s *Server) dispatch(command *messagequeue.Command) {
	s.queueLock.Lock()
	queue, busy := s.pending[command.InningID]
	s.pending[command.InningID] = append(queue, command)
	s.queueLock.Unlock()

	if !busy {
		s.workerpool.Submit(func() {
			s.drain(command.InningID)
		})
	}
}

func (s *Server) drain(inningID string) {
	for {
		s.queueLock.Lock()
		queue := s.pending[inningID]
		if len(queue) == 0 {
			delete(s.pending, inningID)
			s.queueLock.Unlock()
			return
		}
		command := queue[0]
		s.pending[inningID] = queue[1:]
		s.queueLock.Unlock()

		s.commandHandler(command)
	}
}

func (s *Server) commandHandler(command *messagequeue.Command) {
	commandsReceived.WithLabelValues(string(command.Type)).Inc()

	inningID, err := primitive.ObjectIDFromHex(command.InningID)
	if err != nil {
		slog.Error("Dropping command with invalid inning id", "inning", command.InningID, "message", command.MessageID)
		return
	}

	start := time.Now()
	switch command.Type {
	case messagequeue.CommandScoreBall:
		var res *scoring.BallResult
		res, err = s.service.ScoreBall(s.ctx, inningID, *command.Ball)
		observe("score_ball", start, err)
		if err == nil {
			slog.Info("Scored ball", "inning", command.InningID, "over", res.Ball.OverNumber, "ball", res.Ball.BallNumber, "inningComplete", res.InningComplete)
		}
	case messagequeue.CommandUndoBall:
		var res *scoring.UndoResult
		res, err = s.service.UndoBall(s.ctx, inningID)
		observe("undo_ball", start, err)
		if err == nil {
			slog.Info("Undid ball", "inning", command.InningID, "over", res.Ball.OverNumber, "ball", res.Ball.BallNumber)
		}
	}

	if err != nil {
		slog.Error("Error processing command", "error", err, "type", command.Type, "inning", command.InningID, "message", command.MessageID)
	}
}

func (s *Server) setupRouter() {
	internal := s.router.Group("/api/internal")
	internal.GET("/metrics", gin.WrapH(promhttp.Handler()))
	internal.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1Api := s.router.Group("/api/v1")

	matches := v1Api.Group("/matches")
	matches.POST("", s.setupMatchHandler)
	matches.POST("/:matchId/toss", s.tossHandler)
	matches.POST("/:matchId/followon", s.followOnHandler)
	matches.GET("/:matchId/state", s.scoringStateHandler)
	matches.GET("/:matchId/commentary", s.commentaryHandler)

	innings := v1Api.Group("/innings")
	innings.POST("/initialize", s.initializeInningHandler)
	innings.POST("/:inningId/start", s.startInningHandler)
	innings.POST("/:inningId/ball", s.scoreBallHandler)
	innings.POST("/:inningId/undo", s.undoBallHandler)
	innings.PUT("/:inningId/batsmen", s.updateBatsmenHandler)
	innings.PUT("/:inningId/bowler", s.updateBowlerHandler)
	innings.POST("/:inningId/declare", s.declareHandler)
	innings.GET("/:inningId/scorecard", s.scorecardHandler)
	innings.POST("/:inningId/interruptions", s.addInterruptionHandler)
	innings.POST("/:inningId/interruptions/end", s.endInterruptionHandler)
	innings.GET("/:inningId/summary", s.inningSummaryHandler)
	innings.GET("/:inningId/partnership", s.partnershipHandler)
	innings.GET("/:inningId/powerplay", s.powerplayHandler)
	innings.GET("/:inningId/overs/:overNumber", s.overSummaryHandler)
	innings.GET("/:inningId/bowlers/:bowler/spells", s.bowlerSpellsHandler)
	innings.GET("/:inningId/analysis/maidens", s.maidenOversHandler)
	innings.GET("/:inningId/analysis/wickets", s.wicketOversHandler)
	innings.GET("/:inningId/analysis/expensive", s.expensiveOversHandler)
	innings.GET("/:inningId/analysis/progression", s.progressionHandler)
}
