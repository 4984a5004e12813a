package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/GSH-LAN/Unwindia_cricket/src/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const shortMatch = `
title: Lions v Tigers
team1: Lions
team2: Tigers
format: custom
overs: 2
toss: {wonBy: Lions, electedTo: bat}
innings:
  - batting: Lions
    bowling: Tigers
    batters: [L1, L2, L3, L4]
    bowlers: [T1, T2]
    overs:
      - bowler: T1
        balls: [4, ".", 1, wd, "W:caught:T2", 2, "."]
      - bowler: T2
        balls: [6, ".", ".", lb1, ".", 1]
  - batting: Tigers
    bowling: Lions
    batters: [T1, T2, T3, T4]
    bowlers: [L3, L4]
    overs:
      - bowler: L3
        balls: [6, 6, 6]
`

func TestParseBall(t *testing.T) {
	tests := []struct {
		in   string
		want ballSpec
	}{
		{".", ballSpec{}},
		{"0", ballSpec{}},
		{"4", ballSpec{Runs: 4}},
		{"wd", ballSpec{Type: models.DeliveryWide, Extras: 1}},
		{"wd5", ballSpec{Type: models.DeliveryWide, Extras: 5}},
		{"nb", ballSpec{Type: models.DeliveryNoBall}},
		{"nb4", ballSpec{Type: models.DeliveryNoBall, Runs: 4}},
		{"b2", ballSpec{Type: models.DeliveryBye, Runs: 2}},
		{"lb", ballSpec{Type: models.DeliveryLegBye, Runs: 1}},
		{"W:bowled", ballSpec{Wicket: models.DismissalBowled}},
		{"W:stumped:Keeper", ballSpec{Wicket: models.DismissalStumped, Fielder: "Keeper"}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseBall(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, bad := range []string{"x", "wdx", "W:"} {
		_, err := parseBall(bad)
		assert.Error(t, err, bad)
	}
}

func TestBallSpec_Mapping(t *testing.T) {
	var over overFile
	err := yaml.Unmarshal([]byte(`
bowler: T1
balls:
  - 2
  - {runs: 1, wicket: run_out, playerOut: L2, fielder: T3}
`), &over)
	require.NoError(t, err)
	require.Len(t, over.Balls, 2)
	assert.Equal(t, 2, over.Balls[0].Runs)
	assert.Equal(t, ballSpec{Runs: 1, Wicket: models.DismissalRunOut, PlayerOut: "L2", Fielder: "T3"}, over.Balls[1])

	inning := &models.Inning{Striker: "L1", NonStriker: "L2", Overs: 3, Balls: 6}
	in := over.Balls[1].input(inning, "T1")
	assert.Equal(t, 4, in.OverNumber)
	assert.Equal(t, 6, in.BallNumber)
	assert.Equal(t, models.DeliveryNormal, in.DeliveryType)
	assert.True(t, in.IsWicket)
	assert.Equal(t, "L2", in.Dismissal.PlayerOut)
}

func TestReplay(t *testing.T) {
	var card scorecardFile
	require.NoError(t, yaml.Unmarshal([]byte(shortMatch), &card))

	var out bytes.Buffer
	require.NoError(t, replay(context.Background(), &card, &out))

	text := out.String()
	assert.Contains(t, text, "Lions, inning 1: 16/1 (2 ov)")
	assert.Contains(t, text, "Tigers, inning 2: 18/0 (0.3 ov)")
	assert.Contains(t, text, "not out")
	assert.Contains(t, text, "Tigers won by")
}

func TestReplay_Errors(t *testing.T) {
	var card scorecardFile
	require.NoError(t, yaml.Unmarshal([]byte(shortMatch), &card))
	card.Innings[1].Overs[0].Balls = append(card.Innings[1].Overs[0].Balls, ballSpec{Runs: 1})

	err := replay(context.Background(), &card, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after the inning ended")

	assert.ErrorIs(t, replay(context.Background(), &scorecardFile{}, &bytes.Buffer{}), ErrEmptyScorecard)

	err = yaml.Unmarshal([]byte("overs:\n  - bowler: T1\n    balls: [seven]\n"), &inningFile{})
	assert.ErrorContains(t, err, "unknown ball")
}

func TestReplayCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "match.yaml")
	require.NoError(t, os.WriteFile(path, []byte(shortMatch), 0o600))

	cmd := NewReplayCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{path})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "Tigers won by")

	cmd = NewReplayCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{filepath.Join(t.TempDir(), "missing.yaml")})
	assert.Error(t, cmd.Execute())
}
