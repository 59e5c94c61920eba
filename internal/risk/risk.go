// Package risk implements the exchange's pre-trade risk checks: a small,
// stateless-given-its-config set of fast validations run on every incoming
// order event before it reaches the book.
//
// Cancels always pass — there is nothing left to validate once a trader is
// withdrawing an order. Everything else is checked in a fixed order so a
// caller can always explain which single rule rejected an event.
package risk

import (
	"github.com/rishav/order-matching-engine/internal/accounts"
	"github.com/rishav/order-matching-engine/internal/types"
)

// Config holds the tunable limits the checker enforces.
type Config struct {
	MaxOrderValue int64      // max notional (price * qty) per order
	MaxOrderQty   types.Qty  // max quantity per order
	MaxPrice      types.Price
	MinPrice      types.Price
	CheckBalance  bool // require sufficient balance on the buy side

	// MaxPosition, when non-zero, caps a trader's resulting absolute
	// position. It is a supplemented check: the original risk taxonomy
	// declares ExceedsMaxPosition but never wires it up, since position
	// limits are naturally Accounts' job; this is off (0 == unbounded) by
	// default and only meaningful if a caller opts in.
	MaxPosition int64
}

// DefaultConfig returns the checker's default limits.
func DefaultConfig() Config {
	return Config{
		MaxOrderValue: 1_000_000_000,
		MaxOrderQty:   100_000,
		MaxPrice:      1_000_000,
		MinPrice:      1,
		CheckBalance:  true,
		MaxPosition:   0,
	}
}

// Checker runs pre-trade risk validation against a shared Config and an
// optional Accounts ledger for balance/position checks. It holds no other
// mutable state, so it needs no locking of its own.
type Checker struct {
	config   Config
	accounts *accounts.Accounts
}

// New constructs a Checker. accounts may be nil, in which case balance and
// position checks are skipped regardless of Config.
func New(config Config, ledger *accounts.Accounts) *Checker {
	return &Checker{config: config, accounts: ledger}
}

// SetAccounts installs (or replaces) the accounts ledger used for balance
// and position checks.
func (c *Checker) SetAccounts(ledger *accounts.Accounts) {
	c.accounts = ledger
}

// Config returns the checker's current configuration.
func (c *Checker) Config() Config { return c.config }

// SetConfig replaces the checker's configuration.
func (c *Checker) SetConfig(config Config) { c.config = config }

// Check validates event against the configured limits, short-circuiting on
// the first rule violated.
func (c *Checker) Check(event types.OrderEvent) types.RiskResult {
	if event.Type == types.Cancel {
		return types.Passed
	}

	if event.Type == types.NewLimit || event.Type == types.Modify {
		if event.Price < c.config.MinPrice || event.Price > c.config.MaxPrice {
			return types.InvalidPrice
		}
	}

	if event.Qty <= 0 || event.Qty > c.config.MaxOrderQty {
		return types.InvalidQty
	}

	notional := int64(event.Price) * int64(event.Qty)
	if notional > c.config.MaxOrderValue {
		return types.ExceedsMaxOrderValue
	}

	if c.config.MaxPosition > 0 && c.accounts != nil {
		current := c.accounts.GetPosition(event.TraderID)
		delta := int64(event.Qty)
		if event.Side == types.Sell {
			delta = -delta
		}
		projected := current + delta
		if projected > c.config.MaxPosition || projected < -c.config.MaxPosition {
			return types.ExceedsMaxPosition
		}
	}

	if c.config.CheckBalance && c.accounts != nil {
		if event.Side == types.Buy {
			if !c.accounts.HasSufficientBalance(event.TraderID, notional) {
				return types.InsufficientBalance
			}
		}
	}

	return types.Passed
}
