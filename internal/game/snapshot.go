package game

import (
	"fmt"
	"io"
	rand "math/rand/v2"

	"github.com/charmbracelet/log"
	"github.com/shopspring/decimal"

	"github.com/lox/blackjacktrainer/blackjack"
)

// SavedCard is the portable form of a card. Rank and suit are the numeric
// enum values, which keeps the encoding stable across renames.
type SavedCard struct {
	Rank int `json:"rank"`
	Suit int `json:"suit"`
}

// SavedHand is the portable form of a hand.
type SavedHand struct {
	Cards       []SavedCard `json:"cards"`
	Bet         int64       `json:"bet"`
	Doubled     bool        `json:"is_doubled"`
	SplitHand   bool        `json:"is_split_hand"`
	Surrendered bool        `json:"is_surrendered"`
}

// SavedRules is the portable form of a rule set.
type SavedRules struct {
	NumDecks         int             `json:"num_decks"`
	MinBet           int64           `json:"min_bet"`
	MaxBet           int64           `json:"max_bet"`
	DealerHitsSoft17 bool            `json:"dealer_hits_soft_17"`
	BlackjackPayout  decimal.Decimal `json:"blackjack_payout"`
	DoubleAfterSplit bool            `json:"double_after_split"`
	DoubleOn         string          `json:"double_on"`
	ResplitAces      bool            `json:"resplit_aces"`
	HitSplitAces     bool            `json:"hit_split_aces"`
	MaxSplits        int             `json:"max_splits"`
	Surrender        string          `json:"surrender"`
	InsuranceAllowed bool            `json:"insurance_allowed"`
	DealerPeeks      bool            `json:"dealer_peeks"`
}

// SavedGame is the full portable form of an engine. Monetary fields are
// decimal strings; the shoe is stored in draw order, next card first.
// Event subscribers are external and are not part of the snapshot.
type SavedGame struct {
	State            string      `json:"state"`
	Bankroll         string      `json:"bankroll"`
	InsuranceBet     string      `json:"insurance_bet"`
	CurrentHandIndex int         `json:"current_hand_index"`
	ShoeCards        []SavedCard `json:"shoe_cards"`
	ShoeNumDecks     int         `json:"shoe_num_decks"`
	ShoePenetration  float64     `json:"shoe_penetration"`
	PlayerHands      []SavedHand `json:"player_hands"`
	DealerHand       SavedHand   `json:"dealer_hand"`
	Rules            SavedRules  `json:"rules"`
}

func saveCard(c blackjack.Card) SavedCard {
	return SavedCard{Rank: int(c.Rank), Suit: int(c.Suit)}
}

func (sc SavedCard) toCard() (blackjack.Card, error) {
	rank := blackjack.Rank(sc.Rank)
	suit := blackjack.Suit(sc.Suit)
	if rank < blackjack.Two || rank > blackjack.Ace {
		return blackjack.Card{}, fmt.Errorf("game: invalid card rank %d", sc.Rank)
	}
	if suit < blackjack.Clubs || suit > blackjack.Spades {
		return blackjack.Card{}, fmt.Errorf("game: invalid card suit %d", sc.Suit)
	}
	return blackjack.NewCard(rank, suit), nil
}

func saveHand(h *blackjack.Hand) SavedHand {
	cards := h.Cards()
	saved := SavedHand{
		Cards:       make([]SavedCard, len(cards)),
		Bet:         h.Bet,
		Doubled:     h.Doubled,
		SplitHand:   h.SplitHand,
		Surrendered: h.Surrendered,
	}
	for i, c := range cards {
		saved.Cards[i] = saveCard(c)
	}
	return saved
}

func (sh SavedHand) toHand() (*blackjack.Hand, error) {
	cards := make([]blackjack.Card, len(sh.Cards))
	for i, sc := range sh.Cards {
		card, err := sc.toCard()
		if err != nil {
			return nil, err
		}
		cards[i] = card
	}
	hand := blackjack.NewHandWithCards(sh.Bet, cards...)
	hand.Doubled = sh.Doubled
	hand.SplitHand = sh.SplitHand
	hand.Surrendered = sh.Surrendered
	return hand, nil
}

func saveRules(r blackjack.RuleSet) SavedRules {
	return SavedRules{
		NumDecks:         r.NumDecks,
		MinBet:           r.MinBet,
		MaxBet:           r.MaxBet,
		DealerHitsSoft17: r.DealerHitsSoft17,
		BlackjackPayout:  r.BlackjackPayout,
		DoubleAfterSplit: r.DoubleAfterSplit,
		DoubleOn:         string(r.DoubleOn),
		ResplitAces:      r.ResplitAces,
		HitSplitAces:     r.HitSplitAces,
		MaxSplits:        r.MaxSplits,
		Surrender:        string(r.Surrender),
		InsuranceAllowed: r.InsuranceAllowed,
		DealerPeeks:      r.DealerPeeks,
	}
}

func (sr SavedRules) toRules() (blackjack.RuleSet, error) {
	rules := blackjack.RuleSet{
		NumDecks:         sr.NumDecks,
		MinBet:           sr.MinBet,
		MaxBet:           sr.MaxBet,
		DealerHitsSoft17: sr.DealerHitsSoft17,
		BlackjackPayout:  sr.BlackjackPayout,
		DoubleAfterSplit: sr.DoubleAfterSplit,
		DoubleOn:         blackjack.DoubleRule(sr.DoubleOn),
		ResplitAces:      sr.ResplitAces,
		HitSplitAces:     sr.HitSplitAces,
		MaxSplits:        sr.MaxSplits,
		Surrender:        blackjack.SurrenderRule(sr.Surrender),
		InsuranceAllowed: sr.InsuranceAllowed,
		DealerPeeks:      sr.DealerPeeks,
	}
	if err := rules.Validate(); err != nil {
		return blackjack.RuleSet{}, err
	}
	return rules, nil
}

// Snapshot captures the engine's full state in portable form.
func (e *Engine) Snapshot() *SavedGame {
	shoeCards := e.shoe.Cards()
	saved := &SavedGame{
		State:            e.state.String(),
		Bankroll:         e.player.bankroll.String(),
		InsuranceBet:     e.player.insuranceBet.String(),
		CurrentHandIndex: e.player.currentHandIndex,
		ShoeCards:        make([]SavedCard, len(shoeCards)),
		ShoeNumDecks:     e.shoe.NumDecks(),
		ShoePenetration:  e.shoe.Penetration(),
		PlayerHands:      make([]SavedHand, len(e.player.hands)),
		DealerHand:       saveHand(e.dealer),
		Rules:            saveRules(e.rules),
	}
	for i, c := range shoeCards {
		saved.ShoeCards[i] = saveCard(c)
	}
	for i, h := range e.player.hands {
		saved.PlayerHands[i] = saveHand(h)
	}
	return saved
}

// RestoreGame reconstructs an engine from a snapshot. The restored engine
// has a fresh emitter; subscribers attach afterwards. WithShoe and
// WithPenetration options are ignored since the snapshot dictates both.
func RestoreGame(saved *SavedGame, opts ...Option) (*Engine, error) {
	rules, err := saved.Rules.toRules()
	if err != nil {
		return nil, err
	}
	state, err := ParseState(saved.State)
	if err != nil {
		return nil, err
	}
	bankroll, err := decimal.NewFromString(saved.Bankroll)
	if err != nil {
		return nil, fmt.Errorf("game: invalid bankroll %q: %w", saved.Bankroll, err)
	}
	insurance, err := decimal.NewFromString(saved.InsuranceBet)
	if err != nil {
		return nil, fmt.Errorf("game: invalid insurance bet %q: %w", saved.InsuranceBet, err)
	}

	cfg := &engineConfig{penetration: DefaultPenetration}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = log.New(io.Discard)
	}
	rng := cfg.rng
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	shoe, err := blackjack.NewShoe(saved.ShoeNumDecks, saved.ShoePenetration, rng)
	if err != nil {
		return nil, err
	}
	shoeCards := make([]blackjack.Card, len(saved.ShoeCards))
	for i, sc := range saved.ShoeCards {
		card, err := sc.toCard()
		if err != nil {
			return nil, err
		}
		shoeCards[i] = card
	}
	shoe.SetCards(shoeCards)

	dealer, err := saved.DealerHand.toHand()
	if err != nil {
		return nil, err
	}
	hands := make([]*blackjack.Hand, len(saved.PlayerHands))
	for i, sh := range saved.PlayerHands {
		hand, err := sh.toHand()
		if err != nil {
			return nil, err
		}
		hands[i] = hand
	}

	return &Engine{
		rules:  rules,
		shoe:   shoe,
		dealer: dealer,
		player: playerState{
			hands:            hands,
			currentHandIndex: saved.CurrentHandIndex,
			bankroll:         bankroll,
			insuranceBet:     insurance,
		},
		state:   state,
		emitter: NewEmitter(),
		logger:  cfg.logger.WithPrefix("engine"),
	}, nil
}
