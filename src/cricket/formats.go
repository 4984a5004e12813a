package cricket

import (
	"fmt"

	"github.com/GSH-LAN/Unwindia_cricket/src/models"
)

const DefaultFollowOnThreshold = 200

// PowerplayRules returns the powerplay windows of format. Unknown formats fall back to T20.
func PowerplayRules(format models.Format) []models.PowerplayWindow {
	switch format {
	case models.FormatT20:
		return []models.PowerplayWindow{{Type: models.PowerplayMandatory, FromOver: 1, ToOver: 6}}
	case models.FormatODI:
		return []models.PowerplayWindow{
			{Type: models.PowerplayMandatory, FromOver: 1, ToOver: 10},
			{Type: models.PowerplayBatting, FromOver: 11, ToOver: 40},
			{Type: models.PowerplayBowling, FromOver: 41, ToOver: 50},
		}
	case models.FormatTest:
		return nil
	case models.FormatT10:
		return []models.PowerplayWindow{{Type: models.PowerplayMandatory, FromOver: 1, ToOver: 3}}
	case models.FormatTheHundred:
		return []models.PowerplayWindow{
			{Type: models.PowerplayMandatory, FromOver: 1, ToOver: 25},
			{Type: models.PowerplayBowling, FromOver: 26, ToOver: 100},
		}
	}
	return PowerplayRules(models.FormatT20)
}

// PowerplayFor finds the window containing the 1-based overNumber.
func PowerplayFor(windows []models.PowerplayWindow, overNumber int) (models.PowerplayWindow, bool) {
	for _, w := range windows {
		if overNumber >= w.FromOver && overNumber <= w.ToOver {
			return w, true
		}
	}
	return models.PowerplayWindow{}, false
}

// MaxOversPerBowler returns the bowler quota for format; 0 means unlimited.
func MaxOversPerBowler(format models.Format, totalOvers int) int {
	switch format {
	case models.FormatT20:
		return 4
	case models.FormatODI:
		return 10
	case models.FormatTest:
		return 0
	case models.FormatT10:
		return 2
	case models.FormatTheHundred:
		return 20
	}
	return totalOvers / 5
}

// OversPerInning returns the preset over limit for format; 0 means unlimited.
func OversPerInning(format models.Format) int {
	switch format {
	case models.FormatT20:
		return 20
	case models.FormatODI:
		return 50
	case models.FormatT10:
		return 10
	case models.FormatTheHundred:
		// 100 balls, scored here as overs of six.
		return 17
	case models.FormatTest:
		return 0
	}
	return 20
}

// IsMultiInnings reports whether each side bats twice.
func IsMultiInnings(format models.Format) bool {
	return format == models.FormatTest
}

// MaxInnings is the number of innings a match of format may have.
func MaxInnings(format models.Format) int {
	if IsMultiInnings(format) {
		return 4
	}
	return 2
}

// DefaultRules builds the rule preset of format. overs overrides the over limit of custom matches.
func DefaultRules(format models.Format, overs int) models.MatchRules {
	if overs <= 0 || format != models.FormatCustom {
		overs = OversPerInning(format)
	}
	rules := models.MatchRules{
		OversPerInning:    overs,
		MaxOversPerBowler: MaxOversPerBowler(format, overs),
		WicketsPerInning:  DefaultWickets,
		Powerplays:        PowerplayRules(format),
	}
	if format == models.FormatCustom {
		rules.Powerplays = clipPowerplays(rules.Powerplays, overs)
	}
	if IsMultiInnings(format) {
		rules.FollowOnThreshold = DefaultFollowOnThreshold
	}
	return rules
}

// clipPowerplays drops the windows starting after the last over and shortens the one running past it.
func clipPowerplays(windows []models.PowerplayWindow, overs int) []models.PowerplayWindow {
	clipped := []models.PowerplayWindow{}
	for _, w := range windows {
		if w.FromOver > overs {
			continue
		}
		w.ToOver = min(w.ToOver, overs)
		clipped = append(clipped, w)
	}
	return clipped
}

type formatConfig struct {
	minOvers, maxOvers, minWickets, maxWickets int
}

func configFor(format models.Format) (formatConfig, bool) {
	switch format {
	case models.FormatT20:
		return formatConfig{5, 20, 5, 10}, true
	case models.FormatODI:
		return formatConfig{20, 50, 5, 10}, true
	case models.FormatTest:
		return formatConfig{0, 0, 5, 10}, true
	case models.FormatT10:
		return formatConfig{5, 10, 5, 10}, true
	case models.FormatTheHundred:
		return formatConfig{10, 17, 5, 10}, true
	case models.FormatCustom:
		return formatConfig{1, 100, 1, 10}, true
	}
	return formatConfig{}, false
}

// ValidateMatchConfig checks a rule set against the bounds of its format and returns every
// violation found.
func ValidateMatchConfig(format models.Format, rules models.MatchRules) []string {
	var errs []string
	cfg, ok := configFor(format)
	if !ok {
		return []string{fmt.Sprintf("unknown format %q", format)}
	}

	if cfg.maxOvers > 0 && (rules.OversPerInning < cfg.minOvers || rules.OversPerInning > cfg.maxOvers) {
		errs = append(errs, fmt.Sprintf("overs must be between %d and %d for %s", cfg.minOvers, cfg.maxOvers, format))
	}
	if rules.WicketsPerInning < cfg.minWickets || rules.WicketsPerInning > cfg.maxWickets {
		errs = append(errs, fmt.Sprintf("wickets must be between %d and %d", cfg.minWickets, cfg.maxWickets))
	}
	if rules.MaxOversPerBowler < 0 {
		errs = append(errs, "max overs per bowler cannot be negative")
	}
	for _, pp := range rules.Powerplays {
		if pp.FromOver < 1 || pp.ToOver < pp.FromOver {
			errs = append(errs, fmt.Sprintf("invalid %s powerplay window %d-%d", pp.Type, pp.FromOver, pp.ToOver))
		}
		if rules.OversPerInning > 0 && pp.ToOver > rules.OversPerInning && format != models.FormatTheHundred {
			errs = append(errs, "powerplay overs cannot exceed total overs")
		}
	}
	return errs
}
