// Package strategy implements total-dependent basic strategy charts
// and the true-count deviations (Illustrious 18 and Fab 4) used by the
// drills, the bots and the simulator.
package strategy

import "fmt"

// Action is a recommended play. The conditional actions encode the
// standard chart footnotes (double if allowed, otherwise hit) and
// collapse to a primary action once table permissions are known.
type Action int

const (
	Hit Action = iota + 1
	Stand
	Double
	Split
	Surrender

	DoubleOrHit
	DoubleOrStand
	SurrenderOrHit
	SurrenderOrStand
	SurrenderOrSplit
)

var actionNames = map[Action]string{
	Hit:              "HIT",
	Stand:            "STAND",
	Double:           "DOUBLE",
	Split:            "SPLIT",
	Surrender:        "SURRENDER",
	DoubleOrHit:      "DOUBLE_OR_HIT",
	DoubleOrStand:    "DOUBLE_OR_STAND",
	SurrenderOrHit:   "SURRENDER_OR_HIT",
	SurrenderOrStand: "SURRENDER_OR_STAND",
	SurrenderOrSplit: "SURRENDER_OR_SPLIT",
}

func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return fmt.Sprintf("Action(%d)", int(a))
}

// Resolve collapses a conditional action against what the table
// currently allows. Primary actions that turn out to be unavailable
// fall back to a hit.
func (a Action) Resolve(canDouble, canSurrender, canSplit bool) Action {
	switch a {
	case DoubleOrHit:
		if canDouble {
			return Double
		}
		return Hit
	case DoubleOrStand:
		if canDouble {
			return Double
		}
		return Stand
	case SurrenderOrHit:
		if canSurrender {
			return Surrender
		}
		return Hit
	case SurrenderOrStand:
		if canSurrender {
			return Surrender
		}
		return Stand
	case SurrenderOrSplit:
		if canSurrender {
			return Surrender
		}
		return Split
	case Double:
		if !canDouble {
			return Hit
		}
	case Split:
		if !canSplit {
			return Hit
		}
	case Surrender:
		if !canSurrender {
			return Hit
		}
	}
	return a
}
