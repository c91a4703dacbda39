package game

import (
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/history"
	"github.com/lox/blackjack/internal/persistence"
	"github.com/lox/blackjack/internal/randutil"
	"github.com/lox/blackjack/internal/roundid"
	"github.com/lox/blackjack/internal/stats"
	"github.com/lox/blackjack/internal/strategy"
)

// Saver receives a snapshot after every balance-changing round. Implementations
// must not block; persistence.Gateway debounces the actual write.
type Saver interface {
	Save(userID string, snap persistence.Snapshot)
}

// DefaultUserID is used when no user is configured.
const DefaultUserID = "player"

// Engine runs blackjack rounds for one player. It is not safe for concurrent
// use; callers serialize access.
type Engine struct {
	rules    Rules
	shoe     *deck.Shoe
	rng      *rand.Rand
	bus      EventBus
	saver    Saver
	clock    quartz.Clock
	logger   *log.Logger
	userID   string
	training bool
	newID    func() string

	balance     int
	balanceSet  bool
	handCounter int
	stats       stats.Counters
	statsSet    bool
	history     *history.History
	round       *Round
}

// Option configures an Engine.
type Option func(*Engine)

// WithRules replaces the default table rules.
func WithRules(r Rules) Option {
	return func(e *Engine) { e.rules = r }
}

// WithShoe deals from s instead of a freshly shuffled shoe.
func WithShoe(s *deck.Shoe) Option {
	return func(e *Engine) { e.shoe = s }
}

// WithRNG seeds the shoe built by the engine.
func WithRNG(rng *rand.Rand) Option {
	return func(e *Engine) { e.rng = rng }
}

// WithBalance sets the starting balance.
func WithBalance(balance int) Option {
	return func(e *Engine) {
		e.balance = balance
		e.balanceSet = true
	}
}

// WithSnapshot restores balance, hand counter and statistics for the
// snapshot's user.
func WithSnapshot(snap persistence.Snapshot) Option {
	return func(e *Engine) {
		if snap.UserID != "" {
			e.userID = snap.UserID
		}
		e.balance = snap.Balance
		e.balanceSet = true
		e.handCounter = snap.HandCounter
		e.stats = snap.Stats
		e.statsSet = true
	}
}

func WithSaver(s Saver) Option {
	return func(e *Engine) { e.saver = s }
}

func WithUser(userID string) Option {
	return func(e *Engine) { e.userID = userID }
}

func WithEventBus(bus EventBus) Option {
	return func(e *Engine) { e.bus = bus }
}

func WithClock(clock quartz.Clock) Option {
	return func(e *Engine) { e.clock = clock }
}

// WithTraining enables basic-strategy feedback for each player action.
func WithTraining(enabled bool) Option {
	return func(e *Engine) { e.training = enabled }
}

// WithRoundIDs overrides round ID generation.
func WithRoundIDs(next func() string) Option {
	return func(e *Engine) { e.newID = next }
}

// NewEngine creates an engine in PhaseIdle.
func NewEngine(logger *log.Logger, opts ...Option) *Engine {
	e := &Engine{
		rules:  DefaultRules(),
		clock:  quartz.NewReal(),
		logger: logger.WithPrefix("engine"),
		userID: DefaultUserID,
		newID:  roundid.New,
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.bus == nil {
		e.bus = NewEventBus()
	}
	if e.shoe == nil {
		if e.rng == nil {
			e.rng = randutil.NewSecure()
		}
		e.shoe = deck.NewShoe(e.rng,
			deck.WithDecks(e.rules.Decks),
			deck.WithThreshold(e.rules.ReshuffleThreshold),
		)
	}
	if !e.balanceSet {
		e.balance = e.rules.InitialBalance
	}
	if !e.statsSet {
		e.stats = stats.New(e.balance)
	}
	e.history = history.New(e.rules.HistorySize)
	e.bus.On(EventHandCompleted, func(ev GameEvent) {
		if hc, ok := ev.(HandCompletedEvent); ok {
			e.history.Add(hc.Entry)
		}
	})
	e.round = &Round{Phase: PhaseIdle}

	return e
}

// On registers a handler for one event type on the engine's bus.
func (e *Engine) On(eventType EventType, handler Handler) { e.bus.On(eventType, handler) }

// Subscribe registers a subscriber for every event on the engine's bus.
func (e *Engine) Subscribe(s EventSubscriber) { e.bus.Subscribe(s) }

// Unsubscribe removes a subscriber added with Subscribe.
func (e *Engine) Unsubscribe(s EventSubscriber) { e.bus.Unsubscribe(s) }

func (e *Engine) Balance() int             { return e.balance }
func (e *Engine) Phase() Phase             { return e.round.Phase }
func (e *Engine) Rules() Rules             { return e.rules }
func (e *Engine) UserID() string           { return e.userID }
func (e *Engine) HandNumber() int          { return e.handCounter }
func (e *Engine) ShoeRemaining() int       { return e.shoe.Remaining() }
func (e *Engine) ShoeTotal() int           { return e.shoe.Total() }
func (e *Engine) Stats() stats.Counters    { return e.stats }
func (e *Engine) History() []history.Entry { return e.history.Entries() }
func (e *Engine) Training() bool           { return e.training }

// SetTraining toggles basic-strategy feedback.
func (e *Engine) SetTraining(enabled bool) { e.training = enabled }

// AdvancedStats derives streaks, ROI and efficiency figures for the session.
func (e *Engine) AdvancedStats() stats.Advanced {
	return stats.Compute(e.history.Entries(), e.stats)
}

// Round returns a deep copy of the current or most recently settled round.
func (e *Engine) Round() Round { return e.round.Clone() }

// Snapshot returns the persistable part of the account.
func (e *Engine) Snapshot() persistence.Snapshot {
	return persistence.Snapshot{
		UserID:      e.userID,
		Balance:     e.balance,
		Timestamp:   e.clock.Now().UnixMilli(),
		HandCounter: e.handCounter,
		Stats:       e.stats,
		Version:     persistence.SnapshotVersion,
	}
}

// State returns the player's view of the table.
func (e *Engine) State() State {
	r := e.round
	s := State{
		RoundID:       r.ID,
		HandNumber:    r.HandNumber,
		Phase:         r.Phase,
		Balance:       e.balance,
		Bet:           r.Bet,
		PlayerHands:   make([]Hand, len(r.PlayerHands)),
		CurrentHand:   r.CurrentHand,
		Insurance:     r.Insurance,
		Available:     e.Available(),
		ShoeRemaining: e.shoe.Remaining(),
		ShoeTotal:     e.shoe.Total(),
	}
	for i, h := range r.PlayerHands {
		s.PlayerHands[i] = h.clone()
	}

	switch {
	case r.DealerRevealed:
		s.DealerCards = slices.Clone(r.Dealer.Cards)
		s.DealerValue = r.Dealer.Value()
	case len(r.Dealer.Cards) > 0:
		up := r.Dealer.UpCard()
		s.DealerCards = []deck.Card{up}
		s.DealerValue = up.Points()
		s.DealerHidden = true
	}
	return s
}

// Available lists the actions the current hand may take.
func (e *Engine) Available() []strategy.Action {
	r := e.round
	h := r.current()
	if r.Phase != PhasePlayerTurn || h == nil || h.Status != StatusPlaying {
		return nil
	}
	actions := []strategy.Action{strategy.Hit, strategy.Stand}
	if e.canDouble(r, h) {
		actions = append(actions, strategy.Double)
	}
	if e.canSplit(r, h) {
		actions = append(actions, strategy.Split)
	}
	if e.canSurrender(r, h) {
		actions = append(actions, strategy.Surrender)
	}
	return actions
}

func (e *Engine) canDouble(r *Round, h *Hand) bool {
	if len(h.Cards) != 2 || h.SplitAces {
		return false
	}
	if len(r.PlayerHands) > 1 && !e.rules.DoubleAfterSplit {
		return false
	}
	return e.balance >= h.Bet
}

func (e *Engine) canSplit(r *Round, h *Hand) bool {
	return len(h.Cards) == 2 &&
		h.Cards[0].Rank == h.Cards[1].Rank &&
		!h.SplitAces &&
		len(r.PlayerHands) < e.rules.MaxHands &&
		e.balance >= h.Bet
}

func (e *Engine) canSurrender(r *Round, h *Hand) bool {
	return e.rules.Surrender && len(r.PlayerHands) == 1 && len(h.Cards) == 2
}

// StartGame places bet and deals a new round. It is ignored outside PhaseIdle
// or when the bet is below the minimum or above the balance.
func (e *Engine) StartGame(bet int) {
	if e.round.Phase != PhaseIdle {
		e.ignore("start", "round in progress")
		return
	}
	if bet <= 0 || bet < e.rules.MinBet {
		e.ignore("start", "bet below minimum", "bet", bet, "min", e.rules.MinBet)
		return
	}
	if bet > e.balance {
		e.ignore("start", "insufficient balance", "bet", bet, "balance", e.balance)
		return
	}

	e.round = &Round{Phase: PhaseBetting, Bet: bet}
	if e.shoe.NeedsReshuffle() {
		e.shoe.Reset()
		e.logger.Debug("Reshuffled shoe", "cards", e.shoe.Remaining())
		e.publish(ShuffleEvent{
			Decks:     e.shoe.Decks(),
			Remaining: e.shoe.Remaining(),
			Total:     e.shoe.Total(),
			Shuffles:  e.shoe.Shuffles(),
			timestamp: e.clock.Now(),
		})
	}

	e.balance -= bet
	e.handCounter++
	r := &Round{
		ID:          e.newID(),
		HandNumber:  e.handCounter,
		Bet:         bet,
		Phase:       PhaseDealing,
		PlayerHands: []*Hand{{Bet: bet, Status: StatusPlaying}},
		StartedAt:   e.clock.Now(),
	}
	e.round = r

	player := r.PlayerHands[0]
	for range 2 {
		player.Cards = append(player.Cards, e.draw())
		r.Dealer.Cards = append(r.Dealer.Cards, e.draw())
	}
	e.logger.Debug("Dealt round", "round", r.ID, "bet", bet, "player", player.Cards, "upcard", r.Dealer.UpCard())

	// The phase is settled before game:started so handlers see the actions
	// they may take. A peeked dealer blackjack stays in dealing: the round is
	// over before the player acts.
	up := r.Dealer.UpCard()
	peeked := up.IsTenValue() && r.Dealer.IsBlackjack()
	switch {
	case up.IsAce():
		r.Phase = PhaseInsuranceOffer
		r.Insurance.Offered = true
	case !peeked:
		r.Phase = PhasePlayerTurn
		r.CurrentHand = 0
		if player.IsBlackjack() {
			player.Status = StatusBlackjack
		}
	}

	e.publish(GameStartedEvent{State: e.State(), timestamp: e.clock.Now()})
	if e.round != r {
		return
	}

	switch {
	case r.Phase == PhaseInsuranceOffer:
		e.publish(InsuranceOfferedEvent{Cost: bet / 2, UpCard: up, timestamp: e.clock.Now()})
	case peeked:
		e.logger.Debug("Dealer peeked blackjack", "round", r.ID)
		e.settle(r)
	default:
		e.advance(r)
	}
}

// RespondToInsurance answers an insurance offer. Accepting costs half the
// original bet; if the balance cannot cover it the insurance is not taken.
func (e *Engine) RespondToInsurance(accept bool) {
	r := e.round
	if r.Phase != PhaseInsuranceOffer {
		e.ignore("insurance", "no insurance offer")
		return
	}

	cost := r.Bet / 2
	if accept && cost > 0 && e.balance >= cost {
		e.balance -= cost
		r.Insurance.Taken = true
		r.Insurance.Stake = cost
	}
	dealerBlackjack := r.Dealer.IsBlackjack()

	e.publish(InsuranceResolvedEvent{
		Accepted:        accept,
		Taken:           r.Insurance.Taken,
		Stake:           r.Insurance.Stake,
		DealerBlackjack: dealerBlackjack,
		timestamp:       e.clock.Now(),
	})
	if e.round != r || r.Phase != PhaseInsuranceOffer {
		return
	}

	if dealerBlackjack {
		e.settle(r)
		return
	}
	e.beginPlayerTurn(r)
}

// Hit draws a card to the current hand. A bust ends the hand; reaching 21
// stands automatically.
func (e *Engine) Hit() {
	r, h, ok := e.activeHand("hit")
	if !ok {
		return
	}
	e.coach(r, h, strategy.Hit)

	card := e.draw()
	h.Cards = append(h.Cards, card)
	r.Actions = append(r.Actions, strategy.Hit)

	idx := r.CurrentHand
	bust := h.IsBust()
	switch {
	case bust:
		h.Status = StatusBust
	case h.Value() == 21:
		h.Status = StatusStand
	}

	e.publish(NewPlayerActionEvent(strategy.Hit, idx, h, &card, e.clock.Now()))
	if bust {
		e.publish(HandBustEvent{HandIndex: idx, Value: h.Value(), timestamp: e.clock.Now()})
	}
	e.advance(r)
}

// Stand ends the current hand.
func (e *Engine) Stand() {
	r, h, ok := e.activeHand("stand")
	if !ok {
		return
	}
	e.coach(r, h, strategy.Stand)

	h.Status = StatusStand
	r.Actions = append(r.Actions, strategy.Stand)
	e.publish(NewPlayerActionEvent(strategy.Stand, r.CurrentHand, h, nil, e.clock.Now()))
	e.advance(r)
}

// Double doubles the bet on a two-card hand, draws exactly one card and ends
// the hand.
func (e *Engine) Double() {
	r, h, ok := e.activeHand("double")
	if !ok {
		return
	}
	if !e.canDouble(r, h) {
		e.ignore("double", "not allowed", "cards", len(h.Cards), "bet", h.Bet, "balance", e.balance)
		return
	}
	e.coach(r, h, strategy.Double)

	e.balance -= h.Bet
	h.Bet *= 2
	h.Doubled = true

	card := e.draw()
	h.Cards = append(h.Cards, card)
	r.Actions = append(r.Actions, strategy.Double)

	idx := r.CurrentHand
	bust := h.IsBust()
	if bust {
		h.Status = StatusBust
	} else {
		h.Status = StatusStand
	}

	e.publish(NewPlayerActionEvent(strategy.Double, idx, h, &card, e.clock.Now()))
	if bust {
		e.publish(HandBustEvent{HandIndex: idx, Value: h.Value(), timestamp: e.clock.Now()})
	}
	e.advance(r)
}

// Split separates a pair into two hands, each receiving one new card. The new
// hand is played after the current one. Split aces receive one card each and
// stand.
func (e *Engine) Split() {
	r, h, ok := e.activeHand("split")
	if !ok {
		return
	}
	if !e.canSplit(r, h) {
		e.ignore("split", "not allowed", "cards", h.Cards, "hands", len(r.PlayerHands), "balance", e.balance)
		return
	}
	e.coach(r, h, strategy.Split)

	e.balance -= h.Bet
	aces := h.Cards[0].IsAce()
	second := &Hand{
		Cards:     []deck.Card{h.Cards[1]},
		Bet:       h.Bet,
		Status:    StatusPlaying,
		SplitAces: aces,
	}
	h.Cards = []deck.Card{h.Cards[0]}
	h.SplitAces = aces
	r.PlayerHands = slices.Insert(r.PlayerHands, r.CurrentHand+1, second)

	h.Cards = append(h.Cards, e.draw())
	second.Cards = append(second.Cards, e.draw())
	r.Actions = append(r.Actions, strategy.Split)

	if aces {
		h.Status = StatusStand
		second.Status = StatusStand
	}
	e.logger.Debug("Split hand", "round", r.ID, "hands", len(r.PlayerHands), "aces", aces)
	e.advance(r)
}

// Surrender forfeits half the bet on an unsplit two-card hand.
func (e *Engine) Surrender() {
	r, h, ok := e.activeHand("surrender")
	if !ok {
		return
	}
	if !e.canSurrender(r, h) {
		e.ignore("surrender", "not allowed", "cards", len(h.Cards), "hands", len(r.PlayerHands))
		return
	}
	e.coach(r, h, strategy.Surrender)

	refund := h.Bet / 2
	e.balance += refund
	h.Refund = refund
	h.Status = StatusSurrender
	r.Actions = append(r.Actions, strategy.Surrender)

	e.publish(NewPlayerActionEvent(strategy.Surrender, r.CurrentHand, h, nil, e.clock.Now()))
	e.advance(r)
}

// ResetBankroll restores the initial balance and clears session statistics
// and history. It is only honoured between rounds.
func (e *Engine) ResetBankroll() {
	if e.round.Phase != PhaseIdle {
		e.ignore("reset", "round in progress")
		return
	}

	e.balance = e.rules.InitialBalance
	e.handCounter = 0
	e.stats = stats.New(e.balance)
	e.history.Clear()
	e.shoe.Reset()
	e.round = &Round{Phase: PhaseIdle}
	e.logger.Info("Bankroll reset", "user", e.userID, "balance", e.balance)

	e.save()
	e.publish(BalanceEvent{
		Type:      EventBankrollReset,
		Balance:   e.balance,
		MinBet:    e.rules.MinBet,
		timestamp: e.clock.Now(),
	})
}

func (e *Engine) activeHand(action string) (*Round, *Hand, bool) {
	r := e.round
	if r.Phase != PhasePlayerTurn {
		e.ignore(action, "not player turn", "phase", r.Phase)
		return nil, nil, false
	}
	h := r.current()
	if h == nil || h.Status != StatusPlaying {
		e.ignore(action, "hand not playing")
		return nil, nil, false
	}
	return r, h, true
}

func (e *Engine) beginPlayerTurn(r *Round) {
	r.Phase = PhasePlayerTurn
	r.CurrentHand = 0
	if h := r.PlayerHands[0]; h.IsBlackjack() {
		h.Status = StatusBlackjack
	}
	e.advance(r)
}

// advance moves to the first hand from the current one that is still
// playing, or to the dealer when none is left.
func (e *Engine) advance(r *Round) {
	if e.round != r || r.Phase != PhasePlayerTurn {
		return
	}
	for i := r.CurrentHand; i < len(r.PlayerHands); i++ {
		if r.PlayerHands[i].Status == StatusPlaying {
			r.CurrentHand = i
			return
		}
	}
	e.playDealer(r)
}

// coach publishes basic-strategy feedback for action when training is on.
func (e *Engine) coach(r *Round, h *Hand, action strategy.Action) {
	if !e.training {
		return
	}
	opts := strategy.Options{
		CanDouble:        e.canDouble(r, h),
		CanSplit:         e.canSplit(r, h),
		CanSurrender:     e.canSurrender(r, h),
		DoubleAfterSplit: e.rules.DoubleAfterSplit,
	}
	eval := strategy.Evaluate(action, h.Cards, r.Dealer.UpCard(), opts)
	r.graded++
	if !eval.Optimal {
		r.mistakes++
	}
	e.publish(TrainingFeedbackEvent{HandIndex: r.CurrentHand, Evaluation: eval, timestamp: e.clock.Now()})
}

// draw deals the next card. Rounds are dealt from a shoe that is replenished
// before it can run dry, so an empty shoe here is a broken invariant.
func (e *Engine) draw() deck.Card {
	card, err := e.shoe.Draw()
	if err != nil {
		panic(fmt.Errorf("round %s: dealing: %w", e.round.ID, err))
	}
	return card
}

func (e *Engine) publish(ev GameEvent) {
	e.bus.Publish(ev)
}

func (e *Engine) save() {
	if e.saver == nil {
		return
	}
	e.saver.Save(e.userID, e.Snapshot())
}

func (e *Engine) ignore(action, reason string, keyvals ...any) {
	e.logger.Debug("Ignored action", append([]any{"action", action, "reason", reason}, keyvals...)...)
}
