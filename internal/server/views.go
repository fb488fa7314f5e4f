package server

import (
	"math"

	"github.com/lox/blackjacktrainer/blackjack"
	"github.com/lox/blackjacktrainer/internal/game"
)

// CardView is the wire form of a single card. The dealer's hole card is
// rendered as a placeholder with Hidden set, so transports can never leak
// the rank through type coercion.
type CardView struct {
	Rank   string `json:"rank"`
	Suit   string `json:"suit"`
	Value  int    `json:"value"`
	Hidden bool   `json:"hidden,omitempty"`
}

// HandView is the wire form of one player hand
type HandView struct {
	Cards       []CardView `json:"cards"`
	Value       int        `json:"value"`
	IsSoft      bool       `json:"is_soft"`
	IsBlackjack bool       `json:"is_blackjack"`
	IsBusted    bool       `json:"is_busted"`
	Bet         int64      `json:"bet"`
}

// DealerView is the dealer hand as seen by the client. Value is nil while
// the hole card is face down.
type DealerView struct {
	Cards []CardView `json:"cards"`
	Value *int       `json:"value"`
}

// Snapshot is the full game state returned by every REST call and carried
// on every push message.
type Snapshot struct {
	State               string     `json:"state"`
	PlayerHands         []HandView `json:"player_hands"`
	CurrentHandIndex    int        `json:"current_hand_index"`
	DealerHand          DealerView `json:"dealer_hand"`
	DealerShowing       *int       `json:"dealer_showing"`
	Bankroll            string     `json:"bankroll"`
	InsuranceBet        string     `json:"insurance_bet"`
	CanHit              bool       `json:"can_hit"`
	CanStand            bool       `json:"can_stand"`
	CanDouble           bool       `json:"can_double"`
	CanSplit            bool       `json:"can_split"`
	CanSurrender        bool       `json:"can_surrender"`
	CanInsure           bool       `json:"can_insure"`
	ShoeCardsRemaining  int        `json:"shoe_cards_remaining"`
	ShoeDecksRemaining  float64    `json:"shoe_decks_remaining"`
	ShoeNeedsShuffle    bool       `json:"shoe_needs_shuffle"`
}

func cardView(c blackjack.Card) CardView {
	return CardView{Rank: c.Rank.String(), Suit: c.Suit.String(), Value: c.Value()}
}

var hiddenCardView = CardView{Rank: "?", Suit: "?", Value: 0, Hidden: true}

func handView(h *blackjack.Hand) HandView {
	cards := h.Cards()
	view := HandView{
		Cards:       make([]CardView, 0, len(cards)),
		Value:       h.Value(),
		IsSoft:      h.IsSoft(),
		IsBlackjack: h.IsBlackjack(),
		IsBusted:    h.IsBusted(),
		Bet:         h.Bet,
	}
	for _, c := range cards {
		view.Cards = append(view.Cards, cardView(c))
	}
	return view
}

// holeCardHidden reports whether the engine state still conceals the
// dealer's second card.
func holeCardHidden(state game.State) bool {
	switch state {
	case game.StateDealing, game.StateOfferingInsurance, game.StatePlayerTurn:
		return true
	default:
		return false
	}
}

// SnapshotOf renders the engine into its client-facing snapshot
func SnapshotOf(engine *game.Engine) *Snapshot {
	state := engine.State()
	hideHole := holeCardHidden(state)

	dealer := engine.DealerHand()
	dealerCards := dealer.Cards()

	dealerView := DealerView{Cards: make([]CardView, 0, len(dealerCards))}
	for i, c := range dealerCards {
		if hideHole && i == 1 {
			dealerView.Cards = append(dealerView.Cards, hiddenCardView)
			continue
		}
		dealerView.Cards = append(dealerView.Cards, cardView(c))
	}

	var dealerShowing *int
	if len(dealerCards) > 0 {
		showing := dealer.Value()
		if hideHole {
			showing = dealerCards[0].Value()
		} else {
			dealerView.Value = &showing
		}
		dealerShowing = &showing
	}

	hands := engine.Hands()
	snap := &Snapshot{
		State:              state.String(),
		PlayerHands:        make([]HandView, 0, len(hands)),
		CurrentHandIndex:   engine.CurrentHandIndex(),
		DealerHand:         dealerView,
		DealerShowing:      dealerShowing,
		Bankroll:           engine.Bankroll().String(),
		InsuranceBet:       engine.InsuranceBet().String(),
		CanHit:             engine.CanHit(),
		CanStand:           engine.CanStand(),
		CanDouble:          engine.CanDouble(),
		CanSplit:           engine.CanSplit(),
		CanSurrender:       engine.CanSurrender(),
		CanInsure:          engine.CanInsure(),
		ShoeCardsRemaining: engine.Shoe().CardsRemaining(),
		ShoeDecksRemaining: math.Round(engine.Shoe().DecksRemaining()*100) / 100,
		ShoeNeedsShuffle:   engine.Shoe().NeedsShuffle(),
	}
	for _, h := range hands {
		snap.PlayerHands = append(snap.PlayerHands, handView(h))
	}
	return snap
}
