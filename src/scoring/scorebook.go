package scoring

import (
	"context"
	"sort"
	"time"

	"github.com/GSH-LAN/Unwindia_cricket/src/cricket"
	"github.com/GSH-LAN/Unwindia_cricket/src/database"
	"github.com/GSH-LAN/Unwindia_cricket/src/models"
)

// scorebook is the in-memory working copy of an inning and its player statistics. Every change to
// an inning goes through it and is written back with save.
type scorebook struct {
	now     time.Time
	match   *models.Match
	inning  *models.Inning
	batting map[string]*models.BattingStat
	bowling map[string]*models.BowlingStat

	dirtyBatting map[string]bool
	dirtyBowling map[string]bool

	// previous statistics kept while the inning is replayed from scratch.
	previousBatting map[string]*models.BattingStat
	previousBowling map[string]*models.BowlingStat
}

func newScorebook(match *models.Match, inning *models.Inning, now time.Time) *scorebook {
	return &scorebook{
		now:          now,
		match:        match,
		inning:       inning,
		batting:      make(map[string]*models.BattingStat),
		bowling:      make(map[string]*models.BowlingStat),
		dirtyBatting: make(map[string]bool),
		dirtyBowling: make(map[string]bool),
	}
}

func loadScorebook(ctx context.Context, tx database.Tx, match *models.Match, inning *models.Inning, now time.Time) (*scorebook, error) {
	b := newScorebook(match, inning, now)

	batting, err := tx.ListBattingStats(ctx, inning.ID)
	if err != nil {
		return nil, err
	}
	for _, s := range batting {
		b.batting[s.Player] = s
	}

	bowling, err := tx.ListBowlingStats(ctx, inning.ID)
	if err != nil {
		return nil, err
	}
	for _, s := range bowling {
		b.bowling[s.Player] = s
	}
	return b, nil
}

// save writes the inning and every statistic touched since the scorebook was loaded. Statistics
// dropped by a replay are deleted.
func (b *scorebook) save(ctx context.Context, tx database.Tx) error {
	if err := tx.SaveInning(ctx, b.inning); err != nil {
		return err
	}

	for _, player := range sortedKeys(b.dirtyBatting) {
		if err := tx.SaveBattingStat(ctx, b.batting[player]); err != nil {
			return err
		}
	}
	for _, player := range sortedKeys(b.dirtyBowling) {
		if err := tx.SaveBowlingStat(ctx, b.bowling[player]); err != nil {
			return err
		}
	}

	for player, stat := range b.previousBatting {
		if _, kept := b.batting[player]; !kept {
			if err := tx.DeleteBattingStat(ctx, stat); err != nil {
				return err
			}
		}
	}
	for player, stat := range b.previousBowling {
		if _, kept := b.bowling[player]; !kept {
			if err := tx.DeleteBowlingStat(ctx, stat); err != nil {
				return err
			}
		}
	}
	return nil
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// start moves a not-started inning into progress with its openers at the crease.
func (b *scorebook) start(striker, nonStriker, bowler string) {
	in := b.inning
	at := b.now
	in.Status = models.InningInProgress
	in.StartTime = &at
	in.Openers = &models.Openers{Striker: striker, NonStriker: nonStriker, Bowler: bowler}
	b.openInning()
}

// openInning puts the inning back to the state right after its openers walked out.
func (b *scorebook) openInning() {
	in := b.inning
	at := *in.StartTime
	o := in.Openers

	in.Striker = o.Striker
	in.NonStriker = o.NonStriker
	in.CurrentBowler = o.Bowler
	in.Partnerships = []models.Partnership{{Batsman1: o.Striker, Batsman2: o.NonStriker, StartedAt: at}}

	b.batter(o.Striker, at)
	b.batter(o.NonStriker, at)
	b.bowler(o.Bowler, at)
}

// rewind clears every aggregate of the inning so its balls can be applied again from the start.
func (b *scorebook) rewind() {
	in := b.inning
	in.Status = models.InningInProgress
	in.CompletionReason = models.ReasonNone
	in.Runs, in.Wickets, in.Overs, in.Balls = 0, 0, 0, 0
	in.Extras = models.Extras{}
	in.FallOfWickets = nil
	in.Powerplays = nil
	in.EndTime = nil
	in.Duration = 0

	b.previousBatting, b.batting = b.batting, make(map[string]*models.BattingStat)
	b.previousBowling, b.bowling = b.bowling, make(map[string]*models.BowlingStat)
	b.dirtyBatting = make(map[string]bool)
	b.dirtyBowling = make(map[string]bool)

	b.openInning()
}

// setBatsmen puts striker and nonStriker at the crease. A new pair starts a new partnership.
func (b *scorebook) setBatsmen(striker, nonStriker string, at time.Time) {
	in := b.inning
	in.Striker, in.NonStriker = striker, nonStriker

	current := in.CurrentPartnership()
	if current != nil && current.Involves(striker, nonStriker) {
		return
	}
	if current != nil {
		current.EndedAt = &at
	}
	in.Partnerships = append(in.Partnerships, models.Partnership{Batsman1: striker, Batsman2: nonStriker, StartedAt: at})
	b.batter(striker, at)
	b.batter(nonStriker, at)
}

// applyBall runs the inning state machine for one delivery.
func (b *scorebook) applyBall(ball *models.Ball, over overProgress) {
	in := b.inning
	runs := cricket.CalculateBallRuns(ball.Runs, ball.Extras)
	legal := cricket.CountsTowardsOver(ball.DeliveryType)

	in.Runs += runs
	if legal {
		in.Balls++
		if in.Balls == cricket.BallsPerOver {
			in.Overs++
			in.Balls = 0
		}
	}
	in.Extras.Add(ball.Extras.Ledger())

	if p := in.CurrentPartnership(); p != nil {
		p.Runs += runs
		if legal {
			p.Balls++
		}
	}

	b.applyPowerplay(ball, runs)
	b.addBatting(ball)
	b.addBowling(ball)

	if ball.IsWicket && !b.applyWicket(ball) {
		if over.completed && over.maiden {
			b.bowler(ball.Bowler, ball.Timestamp).Maidens++
		}
		b.complete(models.ReasonAllOut)
		return
	}

	if cricket.RunsRun(ball.Runs, ball.DeliveryType, ball.Extras)%2 == 1 {
		in.Striker, in.NonStriker = in.NonStriker, in.Striker
	}

	if over.completed {
		b.completeOver(ball, over)
	}

	b.checkCompletion()
}

// applyWicket records the dismissal and brings in the next batsman. It returns false when nobody is
// left to come in.
func (b *scorebook) applyWicket(ball *models.Ball) bool {
	in := b.inning
	at := ball.Timestamp
	out := ball.DismissedPlayer()

	in.Wickets++

	var partnership int
	if p := in.CurrentPartnership(); p != nil {
		partnership = p.Runs
		p.EndedAt = &at
	}

	var dismissal *models.Dismissal
	if ball.Dismissal != nil {
		d := *ball.Dismissal
		dismissal = &d
	}
	in.FallOfWickets = append(in.FallOfWickets, models.FallOfWicket{
		WicketNumber: in.Wickets,
		Runs:         in.Runs,
		Partnership:  partnership,
		OverNumber:   ball.OverNumber,
		BallNumber:   ball.BallNumber,
		Batsman:      out,
		Dismissal:    dismissal,
		Timestamp:    at,
	})
	b.dismissBatter(out, dismissal, at)

	next := ""
	if in.Wickets < wicketsLimit(in) {
		next = b.nextBatsman()
	}

	switch out {
	case in.Striker:
		in.Striker = next
	case in.NonStriker:
		in.NonStriker = next
	}
	if next == "" {
		return false
	}

	in.Partnerships = append(in.Partnerships, models.Partnership{Batsman1: in.Striker, Batsman2: in.NonStriker, StartedAt: at})
	b.batter(next, at)
	return true
}

// nextBatsman is the lowest batting position neither dismissed nor at the crease.
func (b *scorebook) nextBatsman() string {
	in := b.inning
	order := make([]models.BattingSlot, len(in.PlayingXI.Batting))
	copy(order, in.PlayingXI.Batting)
	sort.SliceStable(order, func(i, j int) bool { return order[i].BattingPosition < order[j].BattingPosition })

	for _, slot := range order {
		if slot.Player == in.Striker || slot.Player == in.NonStriker || in.IsDismissed(slot.Player) {
			continue
		}
		return slot.Player
	}
	return ""
}

func (b *scorebook) completeOver(ball *models.Ball, over overProgress) {
	in := b.inning
	in.Striker, in.NonStriker = in.NonStriker, in.Striker

	stat := b.bowler(ball.Bowler, ball.Timestamp)
	if over.maiden {
		stat.Maidens++
	}

	if quota := b.match.Rules.MaxOversPerBowler; quota > 0 && stat.Overs >= quota && in.CurrentBowler == ball.Bowler {
		in.CurrentBowler = ""
	}
}

func (b *scorebook) applyPowerplay(ball *models.Ball, runs int) {
	window, ok := cricket.PowerplayFor(b.match.Rules.Powerplays, ball.OverNumber)
	if !ok {
		return
	}

	in := b.inning
	idx := -1
	for i, p := range in.Powerplays {
		if p.Type == window.Type {
			idx = i
			break
		}
	}
	if idx < 0 {
		in.Powerplays = append(in.Powerplays, models.Powerplay{Type: window.Type, FromOver: window.FromOver, ToOver: window.ToOver})
		idx = len(in.Powerplays) - 1
	}

	in.Powerplays[idx].Runs += runs
	if ball.IsWicket {
		in.Powerplays[idx].Wickets++
	}
}

// chasing is true for the last inning a format allows, the only one that can end on a target.
func (b *scorebook) chasing() bool {
	return b.inning.Target > 0 && b.inning.InningNumber == cricket.MaxInnings(b.match.Format)
}

func (b *scorebook) checkCompletion() {
	in := b.inning
	if in.Status != models.InningInProgress {
		return
	}

	c := cricket.IsInningsComplete(in.Wickets, in.Overs, wicketsLimit(in), in.OversLimit)
	switch {
	case c.Completed:
		b.complete(c.Reason)
	case b.chasing() && cricket.IsTargetReached(in.Runs, in.Target):
		b.complete(models.ReasonTargetReached)
	}
}

// complete ends the inning and finalizes the open partnership and every statistic.
func (b *scorebook) complete(reason models.CompletionReason) {
	b.finish(models.InningCompleted, reason)
}

func (b *scorebook) finish(status models.InningStatus, reason models.CompletionReason) {
	in := b.inning
	end := b.now

	in.Status = status
	in.CompletionReason = reason
	in.EndTime = &end
	if in.StartTime != nil {
		in.Duration = seconds(*in.StartTime, end)
	}
	if p := in.CurrentPartnership(); p != nil {
		p.EndedAt = &end
	}

	for player, stat := range b.batting {
		if stat.EndTime == nil {
			stat.EndTime = &end
			stat.Duration = elapsed(stat.StartTime, end)
		}
		stat.IsNotOut = !stat.IsOut
		b.dirtyBatting[player] = true
	}
	for player, stat := range b.bowling {
		if stat.EndTime == nil {
			stat.EndTime = &end
			stat.Duration = elapsed(stat.StartTime, end)
		}
		b.dirtyBowling[player] = true
	}
}

func wicketsLimit(in *models.Inning) int {
	if in.WicketsLimit > 0 {
		return in.WicketsLimit
	}
	return cricket.DefaultWickets
}

func seconds(from, to time.Time) int {
	return int(to.Sub(from).Seconds())
}

func elapsed(from *time.Time, to time.Time) int {
	if from == nil {
		return 0
	}
	return seconds(*from, to)
}
