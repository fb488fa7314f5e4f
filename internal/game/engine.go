// Package game implements the blackjack round engine: a state machine that
// accepts player actions, deals from a shoe, resolves payouts in exact
// decimal arithmetic and streams every observable change as an event.
//
// The engine is transport-agnostic. It never blocks waiting for input;
// callers drive it by invoking actions and observe it through the event
// emitter and read-only accessors.
package game

import (
	"fmt"
	"io"
	rand "math/rand/v2"

	"github.com/charmbracelet/log"
	"github.com/shopspring/decimal"

	"github.com/lox/blackjacktrainer/blackjack"
)

// DefaultPenetration is the dealt fraction at which the shoe is reshuffled
// when no explicit penetration is configured.
const DefaultPenetration = 0.75

var two = decimal.NewFromInt(2)

// playerState tracks the player's side of a round.
type playerState struct {
	hands            []*blackjack.Hand
	currentHandIndex int
	bankroll         decimal.Decimal
	insuranceBet     decimal.Decimal
}

// activeHand returns the hand at currentHandIndex, or nil once the index
// has moved past the last hand.
func (p *playerState) activeHand() *blackjack.Hand {
	if p.currentHandIndex < 0 || p.currentHandIndex >= len(p.hands) {
		return nil
	}
	return p.hands[p.currentHandIndex]
}

func (p *playerState) resetHands() {
	p.hands = p.hands[:0]
	p.currentHandIndex = 0
	p.insuranceBet = decimal.Zero
}

// Engine is a single-player blackjack game. All methods must be called from
// one goroutine; callers that share an engine across connections are
// responsible for serializing access.
//
// Every action method returns whether the action was accepted. A rejected
// action emits INVALID_ACTION or INSUFFICIENT_FUNDS and changes nothing.
type Engine struct {
	rules   blackjack.RuleSet
	shoe    *blackjack.Shoe
	dealer  *blackjack.Hand
	player  playerState
	state   State
	emitter *Emitter
	logger  *log.Logger
}

// Option configures an Engine during creation.
type Option func(*engineConfig)

type engineConfig struct {
	shoe        *blackjack.Shoe
	rng         *rand.Rand
	penetration float64
	logger      *log.Logger
}

// WithShoe supplies a prepared shoe. The engine will not shuffle it before
// the first deal, so stacked shoes stay in their given order until the
// penetration trigger fires.
func WithShoe(shoe *blackjack.Shoe) Option {
	return func(c *engineConfig) {
		c.shoe = shoe
	}
}

// WithRNG supplies the random source used to shuffle the shoe. Games with
// the same RNG state and action sequence replay identically.
func WithRNG(rng *rand.Rand) Option {
	return func(c *engineConfig) {
		c.rng = rng
	}
}

// WithPenetration sets the shoe penetration fraction.
func WithPenetration(penetration float64) Option {
	return func(c *engineConfig) {
		c.penetration = penetration
	}
}

// WithLogger attaches a logger for debug-level action tracing.
func WithLogger(logger *log.Logger) Option {
	return func(c *engineConfig) {
		c.logger = logger
	}
}

// NewEngine creates an engine in WAITING_FOR_BET with a freshly shuffled
// shoe, unless one is supplied via WithShoe.
func NewEngine(rules blackjack.RuleSet, bankroll decimal.Decimal, opts ...Option) (*Engine, error) {
	if err := rules.Validate(); err != nil {
		return nil, err
	}

	cfg := &engineConfig{penetration: DefaultPenetration}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = log.New(io.Discard)
	}

	shoe := cfg.shoe
	if shoe == nil {
		var err error
		shoe, err = blackjack.NewShoe(rules.NumDecks, cfg.penetration, cfg.rng)
		if err != nil {
			return nil, err
		}
		shoe.Shuffle()
	}

	return &Engine{
		rules:   rules,
		shoe:    shoe,
		dealer:  blackjack.NewHand(0),
		player:  playerState{bankroll: bankroll},
		state:   StateWaitingForBet,
		emitter: NewEmitter(),
		logger:  cfg.logger.WithPrefix("engine"),
	}, nil
}

// Events returns the engine's event emitter for subscribing.
func (e *Engine) Events() *Emitter {
	return e.emitter
}

// State returns the current game state.
func (e *Engine) State() State {
	return e.state
}

// Rules returns the rule set the engine was created with.
func (e *Engine) Rules() blackjack.RuleSet {
	return e.rules
}

// Shoe returns the engine's shoe.
func (e *Engine) Shoe() *blackjack.Shoe {
	return e.shoe
}

// Bankroll returns the player's bankroll. It only changes at round
// resolution; bets are not deducted up front.
func (e *Engine) Bankroll() decimal.Decimal {
	return e.player.bankroll
}

// InsuranceBet returns the insurance side bet for the current round.
func (e *Engine) InsuranceBet() decimal.Decimal {
	return e.player.insuranceBet
}

// Hands returns the player's hands for the current round.
func (e *Engine) Hands() []*blackjack.Hand {
	hands := make([]*blackjack.Hand, len(e.player.hands))
	copy(hands, e.player.hands)
	return hands
}

// CurrentHandIndex returns the index of the hand awaiting action. It may be
// past the end of the hand list once the player turn is over.
func (e *Engine) CurrentHandIndex() int {
	return e.player.currentHandIndex
}

// ActiveHand returns the hand awaiting action, or nil if none.
func (e *Engine) ActiveHand() *blackjack.Hand {
	return e.player.activeHand()
}

// DealerHand returns the dealer's hand. During the player turn the second
// card is the face-down hole card; transports must not expose it.
func (e *Engine) DealerHand() *blackjack.Hand {
	return e.dealer
}

// DealerUpcard returns the dealer's face-up card.
func (e *Engine) DealerUpcard() (blackjack.Card, bool) {
	return e.dealer.FirstCard()
}

// transition moves the state machine along a declared edge. An undeclared
// edge is a bug in the engine, not a player error.
func (e *Engine) transition(to State) {
	if !CanTransition(e.state, to) {
		panic(fmt.Sprintf("game: illegal transition %s -> %s", e.state, to))
	}
	e.logger.Debug("state transition", "from", e.state, "to", to)
	e.state = to
}

// committed returns the total stake at risk in the current round.
func (e *Engine) committed() decimal.Decimal {
	total := e.player.insuranceBet
	for _, h := range e.player.hands {
		total = total.Add(decimal.NewFromInt(h.Bet))
	}
	return total
}

// available returns the bankroll not yet at risk this round. Bets are only
// settled at resolution, so mid-round actions must check against this
// rather than the raw bankroll to keep it from ever going negative.
func (e *Engine) available() decimal.Decimal {
	return e.player.bankroll.Sub(e.committed())
}

func (e *Engine) rejectState(message string) bool {
	e.logger.Debug("action rejected", "reason", message, "state", e.state)
	e.emitter.Emit(EventInvalidAction, map[string]any{
		"message": message,
		"state":   e.state.String(),
	})
	return false
}

func (e *Engine) rejectAction(message string) bool {
	e.logger.Debug("action rejected", "reason", message)
	e.emitter.Emit(EventInvalidAction, map[string]any{
		"message": message,
	})
	return false
}

func (e *Engine) rejectFunds(required int64, available decimal.Decimal) bool {
	e.logger.Debug("action rejected", "reason", "insufficient funds",
		"required", required, "available", available)
	e.emitter.Emit(EventInsufficientFunds, map[string]any{
		"required":  decimal.NewFromInt(required),
		"available": available,
	})
	return false
}

// Bet places a bet and starts a new round.
func (e *Engine) Bet(amount int64) bool {
	if e.state != StateWaitingForBet {
		return e.rejectState("Cannot bet in current state")
	}
	if amount < e.rules.MinBet || amount > e.rules.MaxBet {
		return e.rejectAction(fmt.Sprintf("Bet must be between %d and %d", e.rules.MinBet, e.rules.MaxBet))
	}
	if decimal.NewFromInt(amount).GreaterThan(e.player.bankroll) {
		return e.rejectFunds(amount, e.player.bankroll)
	}

	e.player.resetHands()
	e.dealer.Clear()
	e.player.hands = append(e.player.hands, blackjack.NewHand(amount))

	e.emitter.Emit(EventBetPlaced, map[string]any{
		"amount": decimal.NewFromInt(amount),
	})
	e.transition(StateDealing)
	e.dealOpening()
	return true
}

// dealOpening deals the four opening cards and routes to insurance, an
// immediate blackjack resolution or the player turn.
func (e *Engine) dealOpening() {
	if e.shoe.NeedsShuffle() {
		e.shoe.Shuffle()
		e.emitter.Emit(EventShoeShuffled, nil)
	}

	hand := e.player.hands[0]
	e.dealCard(hand, false)
	e.dealCard(e.dealer, false)
	e.dealCard(hand, false)
	e.dealCard(e.dealer, true)

	e.emitter.Emit(EventRoundStarted, nil)

	playerBJ := hand.IsBlackjack()
	if playerBJ {
		e.emitter.Emit(EventPlayerBlackjack, nil)
	}

	upcard, _ := e.dealer.FirstCard()
	if upcard.IsAce() && e.rules.InsuranceAllowed && !playerBJ {
		e.emitter.Emit(EventInsuranceOffered, nil)
		e.transition(StateOfferingInsurance)
		return
	}

	e.settleOpening()
}

// settleOpening runs the single authoritative dealer peek and routes the
// round. It is reached either directly from the opening deal or after the
// insurance decision.
func (e *Engine) settleOpening() {
	upcard, _ := e.dealer.FirstCard()
	peek := e.rules.DealerPeeks && (upcard.IsAce() || upcard.IsTenValue())
	if peek && e.dealer.IsBlackjack() {
		e.emitter.Emit(EventDealerBlackjack, nil)
		e.transition(StateResolving)
		e.resolve()
		return
	}

	if e.player.hands[0].IsBlackjack() {
		// Dealer never plays against a lone player blackjack; resolution
		// compares the hands as dealt.
		e.transition(StateResolving)
		e.resolve()
		return
	}

	e.transition(StatePlayerTurn)
}

// dealCard draws a card into a hand and emits CARD_DEALT. The dealer's
// hole card is announced with the hidden sentinel and a null value so
// subscribers cannot learn it early.
func (e *Engine) dealCard(hand *blackjack.Hand, faceDown bool) blackjack.Card {
	card := e.shoe.Draw()
	hand.AddCard(card)

	who := "player"
	if hand == e.dealer {
		who = "dealer"
	}
	if faceDown {
		e.emitter.Emit(EventCardDealt, map[string]any{
			"card":       HiddenCard,
			"hand":       who,
			"hand_value": nil,
		})
	} else {
		e.emitter.Emit(EventCardDealt, map[string]any{
			"card":       card.String(),
			"hand":       who,
			"hand_value": hand.Value(),
		})
	}
	return card
}

// Hit deals one more card to the active hand.
func (e *Engine) Hit() bool {
	if e.state != StatePlayerTurn {
		return e.rejectState("Cannot hit in current state")
	}
	hand := e.player.activeHand()
	if hand == nil || hand.IsBusted() {
		return e.rejectAction("Cannot hit")
	}

	e.dealCard(hand, false)
	e.emitter.Emit(EventPlayerHit, map[string]any{
		"hand_value": hand.Value(),
	})

	if hand.IsBusted() {
		e.emitter.Emit(EventPlayerBusts, map[string]any{
			"hand_index": e.player.currentHandIndex,
		})
		e.advanceHand()
		return true
	}
	return true
}

// Stand ends play on the active hand.
func (e *Engine) Stand() bool {
	if e.state != StatePlayerTurn {
		return e.rejectState("Cannot stand in current state")
	}
	hand := e.player.activeHand()
	if hand == nil {
		return e.rejectAction("Cannot stand")
	}

	e.emitter.Emit(EventPlayerStand, map[string]any{
		"hand_value": hand.Value(),
	})
	e.advanceHand()
	return true
}

// DoubleDown doubles the active hand's bet, deals exactly one card and
// ends play on the hand.
func (e *Engine) DoubleDown() bool {
	if e.state != StatePlayerTurn {
		return e.rejectState("Cannot double in current state")
	}
	hand := e.player.activeHand()
	if hand == nil || !hand.CanDouble() {
		return e.rejectAction("Cannot double")
	}
	if hand.SplitHand && !e.rules.DoubleAfterSplit {
		return e.rejectAction("Cannot double after split")
	}
	if !e.rules.DoubleAllowedOn(hand.Value()) {
		switch e.rules.DoubleOn {
		case blackjack.DoubleNineEleven:
			return e.rejectAction("Can only double on 9-11")
		default:
			return e.rejectAction("Can only double on 10-11")
		}
	}
	if decimal.NewFromInt(hand.Bet).GreaterThan(e.available()) {
		return e.rejectFunds(hand.Bet, e.available())
	}

	hand.Bet *= 2
	hand.Doubled = true

	e.dealCard(hand, false)
	e.emitter.Emit(EventPlayerDouble, map[string]any{
		"hand_value": hand.Value(),
		"new_bet":    decimal.NewFromInt(hand.Bet),
	})

	if hand.IsBusted() {
		e.emitter.Emit(EventPlayerBusts, map[string]any{
			"hand_index": e.player.currentHandIndex,
		})
	}
	e.advanceHand()
	return true
}

// Split turns a pair into two hands of equal bet and deals one card to
// each. Split aces receive a single card each unless the rules allow
// hitting them.
func (e *Engine) Split() bool {
	if e.state != StatePlayerTurn {
		return e.rejectState("Cannot split in current state")
	}
	hand := e.player.activeHand()
	if hand == nil || !hand.IsPair() {
		return e.rejectAction("Cannot split")
	}
	if len(e.player.hands) >= e.rules.MaxSplits {
		return e.rejectAction("Max splits reached")
	}
	first, _ := hand.FirstCard()
	if first.IsAce() && hand.SplitHand && !e.rules.ResplitAces {
		return e.rejectAction("Cannot resplit aces")
	}
	if decimal.NewFromInt(hand.Bet).GreaterThan(e.available()) {
		return e.rejectFunds(hand.Bet, e.available())
	}

	second := hand.PopCard()
	newHand := blackjack.NewHandWithCards(hand.Bet, second)
	newHand.SplitHand = true
	hand.SplitHand = true
	e.player.hands = append(e.player.hands, newHand)

	e.dealCard(hand, false)
	e.dealCard(newHand, false)

	e.emitter.Emit(EventPlayerSplit, map[string]any{
		"hand1_value": hand.Value(),
		"hand2_value": newHand.Value(),
	})

	if first.IsAce() && !e.rules.HitSplitAces {
		e.advanceHand()
		return true
	}
	return true
}

// Surrender forfeits half the bet. Only permitted as the first action on
// an un-split opening hand.
func (e *Engine) Surrender() bool {
	if e.state != StatePlayerTurn {
		return e.rejectState("Cannot surrender in current state")
	}
	if e.rules.Surrender == blackjack.SurrenderNone {
		return e.rejectAction("Surrender not allowed")
	}
	hand := e.player.activeHand()
	if hand == nil {
		return e.rejectAction("Cannot surrender")
	}
	if hand.NumCards() != 2 || hand.SplitHand {
		return e.rejectAction("Can only surrender on first action")
	}

	hand.Surrendered = true
	e.emitter.Emit(EventPlayerSurrender, nil)
	e.advanceHand()
	return true
}

// MaxInsurance returns the insurance ceiling: half the main bet, floored.
func (e *Engine) MaxInsurance() int64 {
	hand := e.player.activeHand()
	if hand == nil {
		return 0
	}
	return hand.Bet / 2
}

// TakeInsurance places an insurance side bet of the given amount.
func (e *Engine) TakeInsurance(amount int64) bool {
	if e.state != StateOfferingInsurance {
		return e.rejectState("Cannot take insurance in current state")
	}
	maxInsurance := e.MaxInsurance()
	if amount < 0 {
		return e.rejectAction("Insurance bet cannot be negative")
	}
	if amount > maxInsurance {
		return e.rejectAction(fmt.Sprintf("Insurance bet cannot exceed $%d", maxInsurance))
	}
	if decimal.NewFromInt(amount).GreaterThan(e.available()) {
		return e.rejectFunds(amount, e.available())
	}

	e.player.insuranceBet = decimal.NewFromInt(amount)
	e.emitter.Emit(EventInsuranceTaken, map[string]any{
		"amount": decimal.NewFromInt(amount),
	})
	e.completeInsurance()
	return true
}

// TakeMaxInsurance places the maximum insurance bet.
func (e *Engine) TakeMaxInsurance() bool {
	return e.TakeInsurance(e.MaxInsurance())
}

// DeclineInsurance declines the offered insurance.
func (e *Engine) DeclineInsurance() bool {
	if e.state != StateOfferingInsurance {
		return e.rejectState("Cannot decline insurance in current state")
	}

	e.player.insuranceBet = decimal.Zero
	e.emitter.Emit(EventInsuranceDeclined, nil)
	e.completeInsurance()
	return true
}

// completeInsurance runs the deferred dealer peek and continues the round.
func (e *Engine) completeInsurance() {
	if e.rules.DealerPeeks && e.dealer.IsBlackjack() {
		e.emitter.Emit(EventDealerBlackjack, nil)
		e.transition(StateResolving)
		e.resolve()
		return
	}
	e.transition(StatePlayerTurn)
}

// handComplete reports hands that take no further actions: split aces
// that have received their single card under one-card rules.
func (e *Engine) handComplete(hand *blackjack.Hand) bool {
	if !hand.SplitHand || e.rules.HitSplitAces || hand.NumCards() != 2 {
		return false
	}
	first, _ := hand.FirstCard()
	return first.IsAce()
}

// advanceHand moves to the next playable hand, or to dealer play or
// resolution once every hand is settled.
func (e *Engine) advanceHand() {
	e.player.currentHandIndex++
	for e.player.currentHandIndex < len(e.player.hands) &&
		e.handComplete(e.player.hands[e.player.currentHandIndex]) {
		e.player.currentHandIndex++
	}

	if e.player.currentHandIndex < len(e.player.hands) {
		return
	}

	allDead := true
	for _, h := range e.player.hands {
		if !h.IsBusted() && !h.Surrendered {
			allDead = false
			break
		}
	}
	if allDead {
		// Nothing to beat; the dealer keeps the hole card down.
		e.transition(StateResolving)
		e.resolve()
		return
	}

	e.transition(StateDealerTurn)
	e.playDealer()
}

// playDealer reveals the hole card and draws to the house total.
func (e *Engine) playDealer() {
	hole := e.dealer.Cards()[1]
	e.emitter.Emit(EventDealerReveals, map[string]any{
		"card":       hole.String(),
		"hand_value": e.dealer.Value(),
	})

	for e.dealerShouldHit() {
		e.dealCard(e.dealer, false)
		e.emitter.Emit(EventDealerHits, map[string]any{
			"hand_value": e.dealer.Value(),
		})
	}

	if e.dealer.IsBusted() {
		e.emitter.Emit(EventDealerBusts, nil)
	} else {
		e.emitter.Emit(EventDealerStands, map[string]any{
			"hand_value": e.dealer.Value(),
		})
	}

	e.transition(StateResolving)
	e.resolve()
}

func (e *Engine) dealerShouldHit() bool {
	value := e.dealer.Value()
	if value < 17 {
		return true
	}
	return value == 17 && e.dealer.IsSoft() && e.rules.DealerHitsSoft17
}

// resolve settles insurance and every hand, applies the net to the
// bankroll and ends the round.
func (e *Engine) resolve() {
	total := decimal.Zero

	if e.player.insuranceBet.IsPositive() {
		if e.dealer.IsBlackjack() {
			payout := e.player.insuranceBet.Mul(two)
			total = total.Add(payout)
			e.emitter.Emit(EventInsuranceWins, map[string]any{
				"amount": payout,
			})
		} else {
			total = total.Sub(e.player.insuranceBet)
			e.emitter.Emit(EventInsuranceLoses, map[string]any{
				"amount": e.player.insuranceBet,
			})
		}
	}

	for i, hand := range e.player.hands {
		var result decimal.Decimal
		bet := decimal.NewFromInt(hand.Bet)

		switch {
		case hand.Surrendered:
			result = bet.Neg().Div(two).RoundBank(0)
		case hand.IsBusted():
			result = bet.Neg()
		default:
			switch hand.Compare(e.dealer) {
			case 1:
				if hand.IsBlackjack() {
					result = bet.Mul(e.rules.BlackjackPayout).RoundBank(0)
				} else {
					result = bet
				}
				e.emitter.Emit(EventPlayerWins, map[string]any{
					"hand_index": i,
					"amount":     result,
				})
			case -1:
				result = bet.Neg()
				e.emitter.Emit(EventPlayerLoses, map[string]any{
					"hand_index": i,
					"amount":     bet,
				})
			default:
				result = decimal.Zero
				e.emitter.Emit(EventPush, map[string]any{
					"hand_index": i,
				})
			}
		}

		total = total.Add(result)
	}

	e.player.bankroll = e.player.bankroll.Add(total)
	e.emitter.Emit(EventRoundEnded, map[string]any{
		"result":   total,
		"bankroll": e.player.bankroll,
	})

	e.transition(StateRoundComplete)

	if e.player.bankroll.LessThan(decimal.NewFromInt(e.rules.MinBet)) {
		e.emitter.Emit(EventGameEnded, map[string]any{
			"reason": "bankrupt",
		})
		e.transition(StateGameOver)
		return
	}
	e.transition(StateWaitingForBet)
}

// NewRound acknowledges a completed round. The engine already returns to
// WAITING_FOR_BET on its own at resolution, so for transports whose
// clients send an explicit new-round message this is an idempotent ack.
func (e *Engine) NewRound() bool {
	switch e.state {
	case StateRoundComplete:
		e.transition(StateWaitingForBet)
		return true
	case StateWaitingForBet:
		return true
	}
	return false
}

// CanHit reports whether hitting is currently legal.
func (e *Engine) CanHit() bool {
	if e.state != StatePlayerTurn {
		return false
	}
	hand := e.player.activeHand()
	return hand != nil && !hand.IsBusted()
}

// CanStand reports whether standing is currently legal.
func (e *Engine) CanStand() bool {
	return e.state == StatePlayerTurn && e.player.activeHand() != nil
}

// CanDouble reports whether doubling is currently legal.
func (e *Engine) CanDouble() bool {
	if e.state != StatePlayerTurn {
		return false
	}
	hand := e.player.activeHand()
	if hand == nil || !hand.CanDouble() {
		return false
	}
	if hand.SplitHand && !e.rules.DoubleAfterSplit {
		return false
	}
	if !e.rules.DoubleAllowedOn(hand.Value()) {
		return false
	}
	return decimal.NewFromInt(hand.Bet).LessThanOrEqual(e.available())
}

// CanSplit reports whether splitting is currently legal.
func (e *Engine) CanSplit() bool {
	if e.state != StatePlayerTurn {
		return false
	}
	hand := e.player.activeHand()
	if hand == nil || !hand.IsPair() {
		return false
	}
	if len(e.player.hands) >= e.rules.MaxSplits {
		return false
	}
	first, _ := hand.FirstCard()
	if first.IsAce() && hand.SplitHand && !e.rules.ResplitAces {
		return false
	}
	return decimal.NewFromInt(hand.Bet).LessThanOrEqual(e.available())
}

// CanSurrender reports whether surrendering is currently legal.
func (e *Engine) CanSurrender() bool {
	if e.state != StatePlayerTurn {
		return false
	}
	if e.rules.Surrender == blackjack.SurrenderNone {
		return false
	}
	hand := e.player.activeHand()
	return hand != nil && hand.NumCards() == 2 && !hand.SplitHand
}

// CanInsure reports whether an insurance bet is currently possible.
func (e *Engine) CanInsure() bool {
	if e.state != StateOfferingInsurance {
		return false
	}
	hand := e.player.activeHand()
	if hand == nil {
		return false
	}
	return decimal.NewFromInt(hand.Bet / 2).LessThanOrEqual(e.available())
}
