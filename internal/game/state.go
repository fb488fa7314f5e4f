package game

import "fmt"

// State represents a position in the round lifecycle state machine
type State int

const (
	StateWaitingForBet State = iota
	StateDealing
	StateOfferingInsurance
	StatePlayerTurn
	StateDealerTurn
	StateResolving
	StateRoundComplete
	StateGameOver
)

var stateNames = map[State]string{
	StateWaitingForBet:     "WAITING_FOR_BET",
	StateDealing:           "DEALING",
	StateOfferingInsurance: "OFFERING_INSURANCE",
	StatePlayerTurn:        "PLAYER_TURN",
	StateDealerTurn:        "DEALER_TURN",
	StateResolving:         "RESOLVING",
	StateRoundComplete:     "ROUND_COMPLETE",
	StateGameOver:          "GAME_OVER",
}

// String returns the canonical wire name of the state
func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// ParseState resolves a canonical state name back to its State value
func ParseState(name string) (State, error) {
	for state, n := range stateNames {
		if n == name {
			return state, nil
		}
	}
	return 0, fmt.Errorf("game: unknown state %q", name)
}

// validTransitions is the full adjacency of the round state machine.
// Legality of a specific action additionally depends on rules, bankroll
// and hand contents; this graph only bounds which states may follow which.
var validTransitions = map[State][]State{
	StateWaitingForBet:     {StateDealing, StateGameOver},
	StateDealing:           {StatePlayerTurn, StateOfferingInsurance, StateResolving},
	StateOfferingInsurance: {StatePlayerTurn, StateResolving},
	StatePlayerTurn:        {StatePlayerTurn, StateDealerTurn, StateResolving},
	StateDealerTurn:        {StateResolving},
	StateResolving:         {StateRoundComplete},
	StateRoundComplete:     {StateWaitingForBet, StateGameOver},
	StateGameOver:          {},
}

// CanTransition reports whether the state graph permits moving from one
// state to another
func CanTransition(from, to State) bool {
	for _, next := range validTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
