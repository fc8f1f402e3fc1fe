package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"sol-checkout/pkg/logger"
	"sol-checkout/pkg/payment"
	"sol-checkout/pkg/quote"
	"sol-checkout/pkg/registry"
	"sol-checkout/pkg/submit"
	"sol-checkout/pkg/transfer"
	"sol-checkout/pkg/wallet"
)

// State is the position of a checkout session in its flow.
type State string

const (
	StateIdle       State = "idle"
	StateQuoting    State = "quoting"
	StateProcessing State = "processing"
	StateConfirming State = "confirming"
	StateCompleted  State = "completed"
	StateFailed     State = "failed"
)

const (
	DefaultDebounce      = 500 * time.Millisecond
	DefaultSubmitTimeout = 30 * time.Second
)

// Sink receives every payment record the controller emits.
type Sink interface {
	Add(p payment.Payment) error
}

// Deps are the collaborators a controller drives.
type Deps struct {
	Registry  *registry.Registry
	Quoter    quote.Quoter
	Swapper   quote.Swapper
	Builder   *transfer.Builder
	Submitter submit.Submitter
	Balances  wallet.BalanceSource
	Sink      Sink
	Logger    *logger.Logger
	Metrics   *Metrics
}

// Config describes one merchant's checkout. A zero SubmitTimeout means
// DefaultSubmitTimeout; a zero Debounce quotes immediately.
type Config struct {
	Merchant      payment.Merchant
	Debounce      time.Duration
	SubmitTimeout time.Duration
}

// Option configures a Controller.
type Option func(*Controller)

// WithClock overrides the clock used for payment timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithIDGenerator overrides how payment IDs are minted. Defaults to UUIDv4.
func WithIDGenerator(next func() string) Option {
	return func(c *Controller) { c.newID = next }
}

// OnStateChange registers a hook called after every transition. It runs with
// the controller unlocked.
func OnStateChange(fn func(from, to State)) Option {
	return func(c *Controller) { c.onChange = fn }
}

// Controller is one customer's checkout session. Quote requests are
// debounced and tagged with a generation; only the newest generation's
// result is ever applied.
type Controller struct {
	deps     Deps
	cfg      Config
	merchant solana.PublicKey
	outToken registry.TokenInfo
	log      *logger.Logger

	now      func() time.Time
	newID    func() string
	onChange func(from, to State)

	mu           sync.Mutex
	state        State
	wallet       *solana.PublicKey
	balance      decimal.Decimal
	balanceMint  string
	amount       decimal.Decimal
	inputMint    string
	current      *quote.Quote
	lastErr      error
	lastPayment  *payment.Payment
	generation   uint64
	pendingTimer *time.Timer
}

// NewController validates the merchant and resolves its preferred token.
// Registry, Quoter, Builder, Submitter and Sink are required.
func NewController(deps Deps, cfg Config, opts ...Option) (*Controller, error) {
	if deps.Registry == nil || deps.Quoter == nil || deps.Builder == nil || deps.Submitter == nil || deps.Sink == nil {
		return nil, fmt.Errorf("checkout: registry, quoter, builder, submitter and sink are required")
	}
	if err := cfg.Merchant.Validate(); err != nil {
		return nil, fmt.Errorf("invalid merchant: %w", err)
	}

	merchant, err := wallet.ParseAddress(cfg.Merchant.Address)
	if err != nil {
		return nil, fmt.Errorf("invalid merchant: %w", err)
	}
	outToken, err := deps.Registry.Resolve(cfg.Merchant.PreferredToken)
	if err != nil {
		return nil, fmt.Errorf("invalid merchant preferred token: %w", err)
	}

	if cfg.SubmitTimeout <= 0 {
		cfg.SubmitTimeout = DefaultSubmitTimeout
	}
	if cfg.Debounce < 0 {
		cfg.Debounce = 0
	}
	if deps.Swapper == nil {
		deps.Swapper = quote.NewSimulatedSwapper(0)
	}
	if deps.Logger == nil {
		deps.Logger = logger.Nop()
	}

	c := &Controller{
		deps:     deps,
		cfg:      cfg,
		merchant: merchant,
		outToken: outToken,
		log:      deps.Logger.WithField("merchant", cfg.Merchant.ID),
		now:      time.Now,
		newID:    func() string { return uuid.New().String() },
		state:    StateIdle,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// CurrentQuote returns the quote for the latest input, or nil.
func (c *Controller) CurrentQuote() *quote.Quote {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Err returns the error that ended the last quote or payment attempt.
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// LastPayment returns the most recent record emitted, successful or not.
func (c *Controller) LastPayment() *payment.Payment {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastPayment
}

// Balance returns the last fetched balance and the mint it belongs to.
func (c *Controller) Balance() (decimal.Decimal, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.balance, c.balanceMint
}

// Merchant returns the merchant this session pays.
func (c *Controller) Merchant() payment.Merchant {
	return c.cfg.Merchant
}

// ConnectWallet records the customer's address and fetches their balance
// for the selected token, if any.
func (c *Controller) ConnectWallet(ctx context.Context, address string) error {
	pk, err := wallet.ParseAddress(address)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.wallet = &pk
	c.balance = decimal.Zero
	c.balanceMint = ""
	hasToken := c.inputMint != ""
	c.mu.Unlock()

	c.log.Infof("wallet connected: %s", pk)

	if hasToken {
		if _, err := c.RefreshBalance(ctx); err != nil {
			return err
		}
	}
	return nil
}

// RefreshBalance fetches the wallet's balance of the selected input token.
func (c *Controller) RefreshBalance(ctx context.Context) (decimal.Decimal, error) {
	c.mu.Lock()
	owner := c.wallet
	mint := c.inputMint
	c.mu.Unlock()

	if owner == nil {
		return decimal.Zero, ErrNoWallet
	}
	if c.deps.Balances == nil {
		return decimal.Zero, fmt.Errorf("no balance source configured")
	}
	tok, err := c.deps.Registry.Lookup(mint)
	if err != nil {
		return decimal.Zero, err
	}

	bal, err := c.deps.Balances.Balance(ctx, *owner, tok)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to fetch balance: %w", err)
	}

	c.mu.Lock()
	// The selection may have changed while we were waiting.
	if c.inputMint == mint && c.wallet != nil && c.wallet.Equals(*owner) {
		c.balance = bal
		c.balanceMint = mint
	}
	c.mu.Unlock()

	c.log.Debugf("balance for %s: %s %s", owner, bal.String(), tok.Symbol)
	return bal, nil
}

// UpdateInput records a new amount or token and schedules a quote after the
// debounce window. Any quote still in flight for older input is discarded
// when it returns.
func (c *Controller) UpdateInput(amount decimal.Decimal, tokenID string) error {
	tok, err := c.deps.Registry.Resolve(tokenID)
	if err != nil {
		return err
	}

	c.mu.Lock()
	if c.busy() {
		c.mu.Unlock()
		return ErrBusy
	}

	gen := c.setInput(amount, tok.Mint)
	if !amount.IsPositive() {
		from := c.transition(StateIdle)
		c.mu.Unlock()
		c.notify(from, StateIdle)
		return nil
	}

	from := c.transition(StateQuoting)
	c.pendingTimer = time.AfterFunc(c.cfg.Debounce, func() {
		c.resolveQuote(context.Background(), gen)
	})
	c.mu.Unlock()

	c.notify(from, StateQuoting)
	return nil
}

// RefreshQuote is UpdateInput without the debounce: it quotes the current
// input immediately and returns the result.
func (c *Controller) RefreshQuote(ctx context.Context) (*quote.Quote, error) {
	c.mu.Lock()
	if c.busy() {
		c.mu.Unlock()
		return nil, ErrBusy
	}
	if c.inputMint == "" || !c.amount.IsPositive() {
		c.mu.Unlock()
		return nil, ErrInvalidAmount
	}
	gen := c.setInput(c.amount, c.inputMint)
	from := c.transition(StateQuoting)
	c.mu.Unlock()
	c.notify(from, StateQuoting)

	c.resolveQuote(ctx, gen)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generation != gen {
		return nil, fmt.Errorf("quote superseded by newer input")
	}
	return c.current, c.lastErr
}

// setInput must be called with c.mu held. It cancels any pending debounce
// and returns the new generation.
func (c *Controller) setInput(amount decimal.Decimal, mint string) uint64 {
	if c.pendingTimer != nil {
		c.pendingTimer.Stop()
		c.pendingTimer = nil
	}
	if mint != c.inputMint {
		c.balance = decimal.Zero
		c.balanceMint = ""
	}
	c.amount = amount
	c.inputMint = mint
	c.current = nil
	c.lastErr = nil
	c.generation++
	return c.generation
}

// resolveQuote fetches a quote for generation gen and applies it only if
// no newer input has arrived in the meantime.
func (c *Controller) resolveQuote(ctx context.Context, gen uint64) bool {
	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		return false
	}
	amount := c.amount
	inputMint := c.inputMint
	c.mu.Unlock()

	q, err := c.deps.Quoter.Quote(ctx, inputMint, c.outToken.Mint, amount)

	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		c.deps.Metrics.quote("stale")
		c.log.Debugf("discarding stale quote (generation %d)", gen)
		return false
	}

	if err != nil {
		c.current = nil
		c.lastErr = err
		c.deps.Metrics.quote("error")
		c.log.Warnf("quote failed: %v", err)
	} else {
		c.current = q
		c.lastErr = nil
		if q.Fallback {
			c.deps.Metrics.quote("fallback")
			for _, w := range q.Warnings {
				c.log.Warnf("quote warning: %s", w)
			}
		} else {
			c.deps.Metrics.quote("ok")
		}
	}
	from := c.transition(StateIdle)
	c.mu.Unlock()

	c.notify(from, StateIdle)
	return true
}

// Submit runs the payment: optional swap, transfer assembly, submission.
// Once processing has begun every outcome is recorded in the sink.
func (c *Controller) Submit(ctx context.Context) (*payment.Payment, error) {
	c.mu.Lock()
	needBalance := c.wallet != nil && c.inputMint != "" && c.balanceMint != c.inputMint
	c.mu.Unlock()
	var balanceErr error
	if needBalance {
		if _, balanceErr = c.RefreshBalance(ctx); balanceErr != nil {
			c.log.Warnf("balance refresh failed: %v", balanceErr)
		}
	}

	c.mu.Lock()
	if err := c.guard(balanceErr); err != nil {
		// A pending quote will still land; leave the session where it is.
		if errors.Is(err, ErrBusy) || c.state == StateQuoting {
			c.mu.Unlock()
			return nil, err
		}
		c.lastErr = err
		from := c.transition(StateFailed)
		c.mu.Unlock()

		c.notify(from, StateFailed)
		c.deps.Metrics.payment(string(StateFailed))
		c.log.Warnf("payment rejected: %v", err)
		return nil, err
	}

	q := c.current
	sender := *c.wallet
	from := c.transition(StateProcessing)
	c.mu.Unlock()
	c.notify(from, StateProcessing)

	log := c.log.WithFields(map[string]interface{}{
		"customer": sender.String(),
		"input":    q.InputSymbol,
		"output":   q.OutputSymbol,
	})

	settleAmount := q.InAmount
	swapped := false
	if q.NeedsSwap() {
		out, err := c.deps.Swapper.Swap(ctx, q)
		if err != nil {
			return c.fail(log, q, sender, q.OutAmount, fmt.Errorf("swap failed: %w", err))
		}
		settleAmount = out
		swapped = true
		log.Infof("swapped %s %s for %s %s", q.InAmount, q.InputSymbol, out, q.OutputSymbol)
	}

	tr, err := c.deps.Builder.BuildTransfer(ctx, settleAmount, q.OutputMint, sender, c.merchant)
	if err != nil {
		return c.fail(log, q, sender, settleAmount, fmt.Errorf("failed to build transfer: %w", err))
	}

	c.mu.Lock()
	from = c.transition(StateConfirming)
	c.mu.Unlock()
	c.notify(from, StateConfirming)

	submitCtx, cancel := context.WithTimeout(ctx, c.cfg.SubmitTimeout)
	defer cancel()

	started := time.Now()
	sig, err := c.deps.Submitter.Submit(submitCtx, tr)
	c.deps.Metrics.submitted(time.Since(started).Seconds())
	if err != nil {
		if swapped {
			log.Warnf("swap completed but transfer was not submitted; nothing is compensated")
		}
		return c.fail(log, q, sender, settleAmount, err)
	}

	p := c.record(q, sender, settleAmount, payment.StatusCompleted)
	p.Signature = sig

	if err := c.deps.Sink.Add(p); err != nil {
		log.Errorf("failed to record payment %s: %v", p.ID, err)
	}

	c.mu.Lock()
	c.lastPayment = &p
	c.lastErr = nil
	c.current = nil
	from = c.transition(StateCompleted)
	c.mu.Unlock()
	c.notify(from, StateCompleted)

	c.deps.Metrics.payment(string(StateCompleted))
	log.Infof("payment %s completed: %s %s, signature %s", p.ID, p.Amount, p.TokenSymbol, sig)
	return &p, nil
}

// Reset abandons the current input and returns to idle. The wallet stays
// connected.
func (c *Controller) Reset() {
	c.mu.Lock()
	if c.pendingTimer != nil {
		c.pendingTimer.Stop()
		c.pendingTimer = nil
	}
	c.generation++
	c.amount = decimal.Zero
	c.inputMint = ""
	c.current = nil
	c.lastErr = nil
	c.balance = decimal.Zero
	c.balanceMint = ""
	from := c.transition(StateIdle)
	c.mu.Unlock()

	c.notify(from, StateIdle)
}

// guard must be called with c.mu held. balanceErr is the error from the
// last balance refresh, if it failed.
func (c *Controller) guard(balanceErr error) error {
	if c.busy() {
		return ErrBusy
	}
	if c.wallet == nil {
		return ErrNoWallet
	}
	if c.state == StateQuoting || c.current == nil {
		return ErrNoQuote
	}
	if c.balanceMint != c.inputMint {
		if balanceErr != nil {
			return fmt.Errorf("%w: %w", ErrBalanceUnavailable, balanceErr)
		}
		return ErrBalanceUnavailable
	}
	if c.amount.GreaterThan(c.balance) {
		return fmt.Errorf("%w: have %s, need %s", ErrInsufficientBalance, c.balance.String(), c.amount.String())
	}
	return nil
}

// busy must be called with c.mu held.
func (c *Controller) busy() bool {
	return c.state == StateProcessing || c.state == StateConfirming
}

// transition must be called with c.mu held. It returns the previous state.
func (c *Controller) transition(to State) State {
	from := c.state
	c.state = to
	return from
}

func (c *Controller) notify(from, to State) {
	if c.onChange != nil && from != to {
		c.onChange(from, to)
	}
}

func (c *Controller) fail(log *logger.Logger, q *quote.Quote, sender solana.PublicKey, amount decimal.Decimal, err error) (*payment.Payment, error) {
	p := c.record(q, sender, amount, payment.StatusFailed)
	p.Error = UserMessage(err)

	if sinkErr := c.deps.Sink.Add(p); sinkErr != nil {
		log.Errorf("failed to record payment %s: %v", p.ID, sinkErr)
	}

	c.mu.Lock()
	c.lastPayment = &p
	c.lastErr = err
	from := c.transition(StateFailed)
	c.mu.Unlock()
	c.notify(from, StateFailed)

	c.deps.Metrics.payment(string(StateFailed))
	log.Errorf("payment %s failed: %v", p.ID, err)
	return nil, err
}

func (c *Controller) record(q *quote.Quote, sender solana.PublicKey, amount decimal.Decimal, status payment.Status) payment.Payment {
	p := payment.Payment{
		ID:              c.newID(),
		Amount:          amount,
		Token:           q.OutputMint,
		TokenSymbol:     q.OutputSymbol,
		Status:          status,
		CreatedAt:       c.now(),
		MerchantID:      c.cfg.Merchant.ID,
		CustomerAddress: sender.String(),
		InputAmount:     q.InAmount,
		Route:           q.Route,
	}
	if q.NeedsSwap() {
		p.InputToken = q.InputMint
	}
	return p
}
