package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/GSH-LAN/Unwindia_cricket/src/models"
	"github.com/GSH-LAN/Unwindia_cricket/src/router"
	"github.com/GSH-LAN/Unwindia_cricket/src/scoring"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type tossRequest struct {
	WonBy     string              `json:"wonBy"`
	ElectedTo models.TossDecision `json:"electedTo"`
}

type startInningRequest struct {
	Striker    string `json:"striker"`
	NonStriker string `json:"nonStriker"`
	Bowler     string `json:"bowler"`
}

type batsmenRequest struct {
	Striker    string `json:"striker"`
	NonStriker string `json:"nonStriker"`
}

type bowlerRequest struct {
	Bowler string `json:"bowler"`
}

type declareRequest struct {
	DeclaredBy string `json:"declaredBy"`
	Reason     string `json:"reason"`
}

type followOnRequest struct {
	EnforcedBy string `json:"enforcedBy"`
}

type interruptionRequest struct {
	Reason string `json:"reason"`
}

// statusOf maps a scoring error kind to its http status.
func statusOf(err error) int {
	switch scoring.KindOf(err) {
	case scoring.KindValidation:
		return http.StatusBadRequest
	case scoring.KindNotFound:
		return http.StatusNotFound
	case scoring.KindState:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func respondError(ctx *gin.Context, err error) {
	var e *scoring.Error
	if !errors.As(err, &e) {
		slog.Error("Unclassified error", "error", err, "path", ctx.FullPath())
		router.AbortWithError(ctx, http.StatusInternalServerError, "internal", "internal error")
		return
	}

	if e.Kind == scoring.KindTransaction {
		slog.Error("Scoring transaction failed", "error", err, "path", ctx.FullPath())
	}
	router.AbortWithError(ctx, statusOf(err), string(e.Kind), e.Message, e.Fields...)
}

// respond finishes an operation handler and records its metrics.
func respond(ctx *gin.Context, operation string, start time.Time, status int, data any, err error) {
	observe(operation, start, err)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(status, gin.H{"success": true, "data": data})
}

func objectID(ctx *gin.Context, param string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(ctx.Param(param))
	if err != nil {
		router.AbortWithError(ctx, http.StatusBadRequest, string(scoring.KindValidation), "invalid "+param, param+": not a valid id")
		return primitive.NilObjectID, false
	}
	return id, true
}

func bind(ctx *gin.Context, req any) bool {
	if err := ctx.ShouldBindJSON(req); err != nil {
		router.AbortWithError(ctx, http.StatusBadRequest, string(scoring.KindValidation), "invalid request body", err.Error())
		return false
	}
	return true
}

func intQuery(ctx *gin.Context, name string) (int, bool) {
	raw := ctx.Query(name)
	if raw == "" {
		return 0, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		router.AbortWithError(ctx, http.StatusBadRequest, string(scoring.KindValidation), "invalid query", name+": must be a non-negative integer")
		return 0, false
	}
	return v, true
}

// overNumber parses the overNumber path parameter.
func overNumber(ctx *gin.Context) (int, bool) {
	v, err := strconv.Atoi(ctx.Param("overNumber"))
	if err != nil || v < 1 {
		router.AbortWithError(ctx, http.StatusBadRequest, string(scoring.KindValidation), "invalid overNumber", "overNumber: must be a positive integer")
		return 0, false
	}
	return v, true
}

func (s *Server) setupMatchHandler(ctx *gin.Context) {
	var req scoring.MatchSetup
	if !bind(ctx, &req) {
		return
	}
	start := time.Now()
	match, err := s.service.SetupMatch(ctx.Request.Context(), req)
	respond(ctx, "setup_match", start, http.StatusCreated, match, err)
}

func (s *Server) tossHandler(ctx *gin.Context) {
	matchID, ok := objectID(ctx, "matchId")
	if !ok {
		return
	}
	var req tossRequest
	if !bind(ctx, &req) {
		return
	}
	start := time.Now()
	match, err := s.service.RecordToss(ctx.Request.Context(), matchID, req.WonBy, req.ElectedTo)
	respond(ctx, "record_toss", start, http.StatusOK, match, err)
}

func (s *Server) initializeInningHandler(ctx *gin.Context) {
	var req scoring.InningSetup
	if !bind(ctx, &req) {
		return
	}
	start := time.Now()
	inning, err := s.service.InitializeInning(ctx.Request.Context(), req)
	respond(ctx, "initialize_inning", start, http.StatusCreated, inning, err)
}

func (s *Server) startInningHandler(ctx *gin.Context) {
	inningID, ok := objectID(ctx, "inningId")
	if !ok {
		return
	}
	var req startInningRequest
	if !bind(ctx, &req) {
		return
	}
	start := time.Now()
	inning, err := s.service.StartInning(ctx.Request.Context(), inningID, req.Striker, req.NonStriker, req.Bowler)
	respond(ctx, "start_inning", start, http.StatusOK, inning, err)
}

func (s *Server) scoreBallHandler(ctx *gin.Context) {
	inningID, ok := objectID(ctx, "inningId")
	if !ok {
		return
	}
	var req scoring.BallInput
	if !bind(ctx, &req) {
		return
	}
	start := time.Now()
	res, err := s.service.ScoreBall(ctx.Request.Context(), inningID, req)
	respond(ctx, "score_ball", start, http.StatusCreated, res, err)
}

func (s *Server) undoBallHandler(ctx *gin.Context) {
	inningID, ok := objectID(ctx, "inningId")
	if !ok {
		return
	}
	start := time.Now()
	res, err := s.service.UndoBall(ctx.Request.Context(), inningID)
	respond(ctx, "undo_ball", start, http.StatusOK, res, err)
}

func (s *Server) updateBatsmenHandler(ctx *gin.Context) {
	inningID, ok := objectID(ctx, "inningId")
	if !ok {
		return
	}
	var req batsmenRequest
	if !bind(ctx, &req) {
		return
	}
	start := time.Now()
	inning, err := s.service.UpdateBatsmen(ctx.Request.Context(), inningID, req.Striker, req.NonStriker)
	respond(ctx, "update_batsmen", start, http.StatusOK, inning, err)
}

func (s *Server) updateBowlerHandler(ctx *gin.Context) {
	inningID, ok := objectID(ctx, "inningId")
	if !ok {
		return
	}
	var req bowlerRequest
	if !bind(ctx, &req) {
		return
	}
	start := time.Now()
	inning, err := s.service.UpdateBowler(ctx.Request.Context(), inningID, req.Bowler)
	respond(ctx, "update_bowler", start, http.StatusOK, inning, err)
}

func (s *Server) declareHandler(ctx *gin.Context) {
	inningID, ok := objectID(ctx, "inningId")
	if !ok {
		return
	}
	var req declareRequest
	if !bind(ctx, &req) {
		return
	}
	start := time.Now()
	inning, err := s.service.DeclareInnings(ctx.Request.Context(), inningID, req.DeclaredBy, req.Reason)
	respond(ctx, "declare_innings", start, http.StatusOK, inning, err)
}

func (s *Server) followOnHandler(ctx *gin.Context) {
	matchID, ok := objectID(ctx, "matchId")
	if !ok {
		return
	}
	var req followOnRequest
	if !bind(ctx, &req) {
		return
	}
	start := time.Now()
	inning, err := s.service.EnforceFollowOn(ctx.Request.Context(), matchID, req.EnforcedBy)
	respond(ctx, "enforce_follow_on", start, http.StatusCreated, inning, err)
}

func (s *Server) scoringStateHandler(ctx *gin.Context) {
	matchID, ok := objectID(ctx, "matchId")
	if !ok {
		return
	}
	start := time.Now()
	state, err := s.service.GetScoringState(ctx.Request.Context(), matchID)
	respond(ctx, "get_scoring_state", start, http.StatusOK, state, err)
}

func (s *Server) commentaryHandler(ctx *gin.Context) {
	matchID, ok := objectID(ctx, "matchId")
	if !ok {
		return
	}
	inningNumber, ok := intQuery(ctx, "inning")
	if !ok {
		return
	}
	limit, ok := intQuery(ctx, "limit")
	if !ok {
		return
	}
	start := time.Now()
	entries, err := s.service.GetCommentary(ctx.Request.Context(), matchID, inningNumber, limit)
	respond(ctx, "get_commentary", start, http.StatusOK, entries, err)
}

func (s *Server) scorecardHandler(ctx *gin.Context) {
	inningID, ok := objectID(ctx, "inningId")
	if !ok {
		return
	}
	start := time.Now()
	card, err := s.service.GetScorecard(ctx.Request.Context(), inningID)
	respond(ctx, "get_scorecard", start, http.StatusOK, card, err)
}

func (s *Server) addInterruptionHandler(ctx *gin.Context) {
	inningID, ok := objectID(ctx, "inningId")
	if !ok {
		return
	}
	var req interruptionRequest
	if !bind(ctx, &req) {
		return
	}
	start := time.Now()
	stoppage, err := s.service.AddInterruption(ctx.Request.Context(), inningID, req.Reason)
	respond(ctx, "add_interruption", start, http.StatusCreated, stoppage, err)
}

func (s *Server) endInterruptionHandler(ctx *gin.Context) {
	inningID, ok := objectID(ctx, "inningId")
	if !ok {
		return
	}
	start := time.Now()
	stoppage, err := s.service.EndInterruption(ctx.Request.Context(), inningID)
	respond(ctx, "end_interruption", start, http.StatusOK, stoppage, err)
}

func (s *Server) inningSummaryHandler(ctx *gin.Context) {
	inningID, ok := objectID(ctx, "inningId")
	if !ok {
		return
	}
	start := time.Now()
	report, err := s.service.GetInningSummary(ctx.Request.Context(), inningID)
	respond(ctx, "get_inning_summary", start, http.StatusOK, report, err)
}

func (s *Server) partnershipHandler(ctx *gin.Context) {
	inningID, ok := objectID(ctx, "inningId")
	if !ok {
		return
	}
	start := time.Now()
	partnership, err := s.service.GetCurrentPartnership(ctx.Request.Context(), inningID)
	respond(ctx, "get_current_partnership", start, http.StatusOK, partnership, err)
}

func (s *Server) powerplayHandler(ctx *gin.Context) {
	inningID, ok := objectID(ctx, "inningId")
	if !ok {
		return
	}
	start := time.Now()
	status, err := s.service.GetPowerplayStatus(ctx.Request.Context(), inningID)
	respond(ctx, "get_powerplay_status", start, http.StatusOK, status, err)
}

func (s *Server) overSummaryHandler(ctx *gin.Context) {
	inningID, ok := objectID(ctx, "inningId")
	if !ok {
		return
	}
	number, ok := overNumber(ctx)
	if !ok {
		return
	}
	start := time.Now()
	summary, err := s.service.GetOverSummary(ctx.Request.Context(), inningID, number)
	respond(ctx, "get_over_summary", start, http.StatusOK, summary, err)
}

func (s *Server) bowlerSpellsHandler(ctx *gin.Context) {
	inningID, ok := objectID(ctx, "inningId")
	if !ok {
		return
	}
	start := time.Now()
	spells, err := s.service.GetBowlerSpells(ctx.Request.Context(), inningID, ctx.Param("bowler"))
	respond(ctx, "get_bowler_spells", start, http.StatusOK, spells, err)
}

func (s *Server) maidenOversHandler(ctx *gin.Context) {
	inningID, ok := objectID(ctx, "inningId")
	if !ok {
		return
	}
	start := time.Now()
	overs, err := s.service.GetMaidenOvers(ctx.Request.Context(), inningID)
	respond(ctx, "get_maiden_overs", start, http.StatusOK, overs, err)
}

func (s *Server) wicketOversHandler(ctx *gin.Context) {
	inningID, ok := objectID(ctx, "inningId")
	if !ok {
		return
	}
	start := time.Now()
	overs, err := s.service.GetWicketOvers(ctx.Request.Context(), inningID)
	respond(ctx, "get_wicket_overs", start, http.StatusOK, overs, err)
}

func (s *Server) expensiveOversHandler(ctx *gin.Context) {
	inningID, ok := objectID(ctx, "inningId")
	if !ok {
		return
	}
	limit, ok := intQuery(ctx, "limit")
	if !ok {
		return
	}
	start := time.Now()
	overs, err := s.service.GetExpensiveOvers(ctx.Request.Context(), inningID, limit)
	respond(ctx, "get_expensive_overs", start, http.StatusOK, overs, err)
}

func (s *Server) progressionHandler(ctx *gin.Context) {
	inningID, ok := objectID(ctx, "inningId")
	if !ok {
		return
	}
	start := time.Now()
	points, err := s.service.GetProgression(ctx.Request.Context(), inningID)
	respond(ctx, "get_over_progression", start, http.StatusOK, points, err)
}
