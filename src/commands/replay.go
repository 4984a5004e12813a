package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/GSH-LAN/Unwindia_cricket/src/cricket"
	"github.com/GSH-LAN/Unwindia_cricket/src/database"
	"github.com/GSH-LAN/Unwindia_cricket/src/models"
	"github.com/GSH-LAN/Unwindia_cricket/src/scoring"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"gopkg.in/yaml.v3"
)

var ErrEmptyScorecard = errors.New("scorecard has no innings")

// NewReplayCommand scores a yaml scorecard against an in-memory store and prints the result.
func NewReplayCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "replay <scorecard.yaml>",
		Short: "Score a yaml scorecard offline and print the scorecards",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			var card scorecardFile
			if err := yaml.Unmarshal(data, &card); err != nil {
				return fmt.Errorf("reading %s: %w", args[0], err)
			}
			return replay(cmd.Context(), &card, cmd.OutOrStdout())
		},
	}
}

func replay(ctx context.Context, card *scorecardFile, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if len(card.Innings) == 0 {
		return ErrEmptyScorecard
	}

	svc := scoring.NewService(database.NewMemoryClient())

	match, err := svc.SetupMatch(ctx, scoring.MatchSetup{
		Title:          card.Title,
		Team1:          card.Team1,
		Team2:          card.Team2,
		Format:         models.Format(card.Format),
		OversPerInning: card.Overs,
	})
	if err != nil {
		return err
	}
	if _, err = svc.RecordToss(ctx, match.ID, card.Toss.WonBy, models.TossDecision(card.Toss.ElectedTo)); err != nil {
		return err
	}

	for i, spec := range card.Innings {
		inning, err := playInning(ctx, svc, match.ID, i+1, spec)
		if err != nil {
			return fmt.Errorf("inning %d: %w", i+1, err)
		}

		scorecard, err := svc.GetScorecard(ctx, inning.ID)
		if err != nil {
			return err
		}
		render(out, scorecard)
	}

	state, err := svc.GetScoringState(ctx, match.ID)
	if err != nil {
		return err
	}
	if state.Match.ResultDescription != "" {
		fmt.Fprintln(out, state.Match.ResultDescription)
	} else {
		fmt.Fprintf(out, "Match %s\n", state.Match.Status)
	}
	return nil
}

func playInning(ctx context.Context, svc *scoring.Service, matchID primitive.ObjectID, number int, spec inningFile) (*models.Inning, error) {
	var (
		inning *models.Inning
		err    error
	)
	if spec.FollowOn {
		inning, err = svc.EnforceFollowOn(ctx, matchID, spec.Bowling)
	} else {
		inning, err = svc.InitializeInning(ctx, scoring.InningSetup{
			MatchID:      matchID,
			InningNumber: number,
			BattingTeam:  spec.Batting,
			BowlingTeam:  spec.Bowling,
			PlayingXI:    spec.playingXI(),
		})
	}
	if err != nil {
		return nil, err
	}
	if len(spec.Overs) == 0 {
		return nil, errors.New("no overs bowled")
	}

	xi := inning.PlayingXI
	inning, err = svc.StartInning(ctx, inning.ID, xi.Batting[0].Player, xi.Batting[1].Player, spec.Overs[0].Bowler)
	if err != nil {
		return nil, err
	}

	for _, over := range spec.Overs {
		if inning.CurrentBowler == "" {
			if inning, err = svc.UpdateBowler(ctx, inning.ID, over.Bowler); err != nil {
				return nil, err
			}
		}
		for _, b := range over.Balls {
			if inning.Status != models.InningInProgress {
				return nil, fmt.Errorf("ball scored after the inning ended (%s)", inning.CompletionReason)
			}
			res, err := svc.ScoreBall(ctx, inning.ID, b.input(inning, over.Bowler))
			if err != nil {
				return nil, fmt.Errorf("over %d: %w", inning.Overs+1, err)
			}
			inning = res.Inning
		}
	}

	if spec.Declare && inning.Status == models.InningInProgress {
		if inning, err = svc.DeclareInnings(ctx, inning.ID, spec.Batting, ""); err != nil {
			return nil, err
		}
	}
	return inning, nil
}

func render(out io.Writer, card *scoring.Scorecard) {
	in := card.Inning
	fmt.Fprintf(out, "%s, inning %d: %d/%d (%s ov)\n", in.BattingTeam, in.InningNumber, in.Runs, in.Wickets, overs(in.Overs, in.Balls))

	batting := table.NewWriter()
	batting.SetOutputMirror(out)
	batting.SetStyle(table.StyleLight)
	batting.AppendHeader(table.Row{"Batter", "", "R", "B", "4s", "6s", "SR"})
	for _, stat := range card.Batting {
		batting.AppendRow(table.Row{stat.Player, howOut(stat), stat.Runs, stat.BallsFaced, stat.Fours, stat.Sixes, fmt.Sprintf("%.2f", stat.StrikeRate)})
	}
	extras := in.Extras
	batting.AppendFooter(table.Row{"Extras", fmt.Sprintf("wd %d, nb %d, b %d, lb %d, p %d", extras.Wides, extras.NoBalls, extras.Byes, extras.LegByes, extras.Penalty), extras.Total})
	batting.Render()

	bowling := table.NewWriter()
	bowling.SetOutputMirror(out)
	bowling.SetStyle(table.StyleLight)
	bowling.AppendHeader(table.Row{"Bowler", "O", "M", "R", "W", "Econ"})
	for _, stat := range card.Bowling {
		bowling.AppendRow(table.Row{stat.Player, overs(stat.Overs, stat.Balls), stat.Maidens, stat.Runs, stat.Wickets, fmt.Sprintf("%.2f", stat.Economy)})
	}
	bowling.Render()
	fmt.Fprintln(out)
}

func howOut(stat *models.BattingStat) string {
	switch {
	case stat.Dismissal != nil:
		return cricket.DismissalDescription(stat.Dismissal.Type)
	case stat.IsOut:
		return "out"
	}
	return "not out"
}

func overs(completed, balls int) string {
	if balls == 0 {
		return fmt.Sprint(completed)
	}
	return fmt.Sprintf("%d.%d", completed, balls)
}
