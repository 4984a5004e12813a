package cricket

import (
	"fmt"
	"strings"

	"github.com/GSH-LAN/Unwindia_cricket/src/models"
)

func DismissalDescription(dismissal models.DismissalType) string {
	switch dismissal {
	case models.DismissalBowled:
		return "Bowled"
	case models.DismissalCaught:
		return "Caught"
	case models.DismissalLBW:
		return "LBW"
	case models.DismissalRunOut:
		return "Run out"
	case models.DismissalStumped:
		return "Stumped"
	case models.DismissalHitWicket:
		return "Hit wicket"
	case models.DismissalHitTwice:
		return "Hit the ball twice"
	case models.DismissalObstructingField:
		return "Obstructing the field"
	case models.DismissalTimedOut:
		return "Timed out"
	case models.DismissalHandledBall:
		return "Handled the ball"
	case models.DismissalRetired:
		return "Retired"
	case models.DismissalAbsent:
		return "Absent"
	}
	return "Out"
}

// Plural renders n with word, adding an s unless n is 1.
func Plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}

// BallDescription renders a short commentary line for a delivery.
func BallDescription(delivery models.DeliveryType, runs int, extras models.BallExtras, isWicket bool, dismissal models.DismissalType) string {
	var b strings.Builder

	switch delivery {
	case models.DeliveryWide:
		b.WriteString("Wide")
		if extras.Wides > 1 {
			fmt.Fprintf(&b, " (%d)", extras.Wides)
		}
	case models.DeliveryNoBall:
		b.WriteString("No ball")
		if runs > 0 {
			fmt.Fprintf(&b, " + %s", Plural(runs, "run"))
		}
	case models.DeliveryBye:
		b.WriteString(Plural(extras.Byes+runs, "bye"))
	case models.DeliveryLegBye:
		b.WriteString(Plural(extras.LegByes+runs, "leg bye"))
	case models.DeliveryDeadBall:
		b.WriteString("Dead ball")
	default:
		b.WriteString(Plural(runs, "run"))
	}

	if isWicket {
		fmt.Fprintf(&b, ", %s", DismissalDescription(dismissal))
	}

	switch BoundaryType(runs, delivery) {
	case "4":
		b.WriteString(", FOUR!")
	case "6":
		b.WriteString(", SIX!")
	}

	return strings.TrimSpace(b.String())
}
