package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/GSH-LAN/Unwindia_cricket/src/models"
	"github.com/GSH-LAN/Unwindia_cricket/src/scoring"
	"gopkg.in/yaml.v3"
)

// scorecardFile is the yaml layout read by the replay command.
type scorecardFile struct {
	Title   string       `yaml:"title"`
	Team1   string       `yaml:"team1"`
	Team2   string       `yaml:"team2"`
	Format  string       `yaml:"format"`
	Overs   int          `yaml:"overs"`
	Toss    tossFile     `yaml:"toss"`
	Innings []inningFile `yaml:"innings"`
}

type tossFile struct {
	WonBy     string `yaml:"wonBy"`
	ElectedTo string `yaml:"electedTo"`
}

type inningFile struct {
	Batting string   `yaml:"batting"`
	Bowling string   `yaml:"bowling"`
	Batters []string `yaml:"batters"`
	Bowlers []string `yaml:"bowlers"`
	// FollowOn starts the inning by enforcing the follow-on instead of initializing it.
	FollowOn bool       `yaml:"followOn"`
	Declare  bool       `yaml:"declare"`
	Overs    []overFile `yaml:"overs"`
}

type overFile struct {
	Bowler string     `yaml:"bowler"`
	Balls  []ballSpec `yaml:"balls"`
}

// ballSpec is one delivery. It is written either in the short notation parsed by parseBall or
// as a mapping.
type ballSpec struct {
	Runs      int                  `yaml:"runs"`
	Type      models.DeliveryType  `yaml:"type"`
	Extras    int                  `yaml:"extras"`
	Wicket    models.DismissalType `yaml:"wicket"`
	PlayerOut string               `yaml:"playerOut"`
	Fielder   string               `yaml:"fielder"`
}

func (b *ballSpec) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		parsed, err := parseBall(node.Value)
		if err != nil {
			return fmt.Errorf("line %d: %w", node.Line, err)
		}
		*b = parsed
		return nil
	}

	type plain ballSpec
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	*b = ballSpec(p)
	return nil
}

// parseBall reads the short notation:
//
//	.  or 0      dot ball
//	1 .. 6       runs off the bat
//	wd, wd3      wide, optionally with the total number of wides
//	nb, nb4      no ball, optionally with runs off the bat
//	b2, lb1      byes and leg byes
//	W:caught:Fielder  wicket with dismissal type and optional fielder
func parseBall(s string) (ballSpec, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "." || s == "0":
		return ballSpec{}, nil
	case strings.HasPrefix(s, "W:"):
		parts := strings.Split(s, ":")
		if parts[1] == "" {
			return ballSpec{}, fmt.Errorf("wicket %q without dismissal type", s)
		}
		b := ballSpec{Wicket: models.DismissalType(parts[1])}
		if len(parts) > 2 {
			b.Fielder = parts[2]
		}
		return b, nil
	case strings.HasPrefix(s, "wd"):
		n, err := count(s[2:], 1)
		return ballSpec{Type: models.DeliveryWide, Extras: n}, err
	case strings.HasPrefix(s, "nb"):
		n, err := count(s[2:], 0)
		return ballSpec{Type: models.DeliveryNoBall, Runs: n}, err
	case strings.HasPrefix(s, "lb"):
		n, err := count(s[2:], 1)
		return ballSpec{Type: models.DeliveryLegBye, Runs: n}, err
	case strings.HasPrefix(s, "b"):
		n, err := count(s[1:], 1)
		return ballSpec{Type: models.DeliveryBye, Runs: n}, err
	}

	n, err := strconv.Atoi(s)
	if err != nil {
		return ballSpec{}, fmt.Errorf("unknown ball %q", s)
	}
	return ballSpec{Runs: n}, nil
}

func count(s string, fallback int) (int, error) {
	if s == "" {
		return fallback, nil
	}
	return strconv.Atoi(s)
}

// input completes the ball with the over, the ball number and the players taken from inning.
func (b ballSpec) input(inning *models.Inning, bowler string) scoring.BallInput {
	in := scoring.BallInput{
		OverNumber:   inning.Overs + 1,
		BallNumber:   min(inning.Balls+1, 6),
		Runs:         b.Runs,
		Batsman:      inning.Striker,
		NonStriker:   inning.NonStriker,
		Bowler:       bowler,
		DeliveryType: b.Type,
		Fielder:      b.Fielder,
	}
	if in.DeliveryType == "" {
		in.DeliveryType = models.DeliveryNormal
	}
	if b.Type == models.DeliveryWide && b.Extras > 0 {
		in.Extras = &models.BallExtras{Wides: b.Extras}
	}
	if b.Wicket != "" {
		in.IsWicket = true
		in.Dismissal = &models.Dismissal{Type: b.Wicket, PlayerOut: b.PlayerOut, Fielder: b.Fielder}
	}
	return in
}

func (in inningFile) playingXI() models.PlayingXI {
	var xi models.PlayingXI
	for i, p := range in.Batters {
		xi.Batting = append(xi.Batting, models.BattingSlot{Player: p, BattingPosition: i + 1})
	}
	for i, p := range in.Bowlers {
		xi.Bowling = append(xi.Bowling, models.BowlingSlot{Player: p, BowlingOrder: i + 1})
	}
	return xi
}
