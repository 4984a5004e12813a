// Package scoreboard keeps a live copy of every match score in redis for fast reads.
package scoreboard

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/GSH-LAN/Unwindia_cricket/src/models"
	"github.com/GSH-LAN/Unwindia_cricket/src/scoring"
	"github.com/redis/go-redis/v9"
)

const (
	DefaultLiveTTL = 6 * time.Hour
	// FinishedTTL is used once the match has a result.
	FinishedTTL = 24 * time.Hour
)

// MatchSummary is the scoreboard view of a match.
type MatchSummary struct {
	MatchID           string             `json:"matchId"`
	Title             string             `json:"title"`
	Team1             string             `json:"team1"`
	Team2             string             `json:"team2"`
	Format            models.Format      `json:"format"`
	Status            models.MatchStatus `json:"status"`
	Result            models.MatchResult `json:"result,omitempty"`
	Winner            string             `json:"winner,omitempty"`
	ResultDescription string             `json:"resultDescription,omitempty"`
	LiveInning        string             `json:"liveInning,omitempty"`
}

// RedisWriter writes match and inning summaries after every committed scoring change.
type RedisWriter struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisWriter(client *redis.Client, ttl time.Duration) *RedisWriter {
	if ttl <= 0 {
		ttl = DefaultLiveTTL
	}
	return &RedisWriter{
		client: client,
		ttl:    ttl,
	}
}

func matchKey(matchID string) string {
	return fmt.Sprintf("cricket:match:%s:summary", matchID)
}

func inningKey(inningID string) string {
	return fmt.Sprintf("cricket:inning:%s:summary", inningID)
}

// Committed implements scoring.Observer. The scoreboard is a cache; failures are only logged.
func (w *RedisWriter) Committed(ctx context.Context, match *models.Match, inning *models.Inning) {
	if err := w.Write(ctx, match, inning); err != nil {
		slog.Error("Error writing scoreboard", "error", err, "match", match.ID.Hex())
	}
}

// Write stores the summary of match and, when given, of inning in one pipeline.
func (w *RedisWriter) Write(ctx context.Context, match *models.Match, inning *models.Inning) error {
	ttl := w.ttl
	if match.Status == models.MatchCompleted {
		ttl = FinishedTTL
	}

	summary := MatchSummary{
		MatchID:           match.ID.Hex(),
		Title:             match.Title,
		Team1:             match.Team1,
		Team2:             match.Team2,
		Format:            match.Format,
		Status:            match.Status,
		Result:            match.Result,
		Winner:            match.Winner,
		ResultDescription: match.ResultDescription,
	}

	pipe := w.client.TxPipeline()
	if inning != nil {
		data, err := json.Marshal(scoring.Summarize(inning))
		if err != nil {
			return fmt.Errorf("marshaling inning: %w", err)
		}
		pipe.Set(ctx, inningKey(inning.ID.Hex()), data, ttl)
		summary.LiveInning = inning.ID.Hex()
	} else if previous, err := w.ReadMatch(ctx, summary.MatchID); err == nil {
		summary.LiveInning = previous.LiveInning
	}

	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("marshaling match: %w", err)
	}
	pipe.Set(ctx, matchKey(summary.MatchID), data, ttl)

	_, err = pipe.Exec(ctx)
	return err
}

// ReadMatch returns the stored match summary. redis.Nil is returned for unknown matches.
func (w *RedisWriter) ReadMatch(ctx context.Context, matchID string) (*MatchSummary, error) {
	data, err := w.client.Get(ctx, matchKey(matchID)).Bytes()
	if err != nil {
		return nil, err
	}

	var summary MatchSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		return nil, fmt.Errorf("unmarshaling match: %w", err)
	}
	return &summary, nil
}

func (w *RedisWriter) ReadInning(ctx context.Context, inningID string) (*scoring.InningSummary, error) {
	data, err := w.client.Get(ctx, inningKey(inningID)).Bytes()
	if err != nil {
		return nil, err
	}

	var summary scoring.InningSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		return nil, fmt.Errorf("unmarshaling inning: %w", err)
	}
	return &summary, nil
}
