// Package accounts implements the exchange's post-trade ledger: cash
// balances, net positions, and trading statistics per trader.
//
// The classic "ATM problem" — many concurrent callers touching different
// accounts — is solved with striped locking: a fixed number of mutexes
// guard account *creation* (the one check-then-act step that needs
// exclusion), while every per-field update after that point is a plain
// atomic add, never a lock. A trader's stripe is its TraderID modulo the
// stripe count, so contention falls off linearly as the stripe count grows
// relative to the number of live traders.
package accounts

import (
	"sync"
	"sync/atomic"

	"github.com/rishav/order-matching-engine/internal/types"
)

// DefaultStripeCount is the number of mutexes guarding account creation.
const DefaultStripeCount = 16

// Account holds one trader's ledger state. All fields past TraderID are
// updated exclusively via atomics; no mutex ever guards them directly.
type Account struct {
	TraderID types.TraderID

	balance    atomic.Int64
	position   atomic.Int64
	tradeCount atomic.Uint64
	volume     atomic.Uint64

	_ [24]byte // pad towards a cache line, keeping hot counters apart from neighbors
}

// Balance returns the account's current cash balance.
func (a *Account) Balance() int64 { return a.balance.Load() }

// Position returns the account's current net position (positive is long).
func (a *Account) Position() int64 { return a.position.Load() }

// TradeCount returns the number of trades this account has participated in.
func (a *Account) TradeCount() uint64 { return a.tradeCount.Load() }

// Volume returns the account's cumulative traded quantity.
func (a *Account) Volume() uint64 { return a.volume.Load() }

// Accounts is a thread-safe ledger over a bounded universe of traders.
type Accounts struct {
	mu           sync.RWMutex // guards the accounts map's structure only
	accounts     map[types.TraderID]*Account
	stripes      []sync.Mutex
	stripeCount  int
	maxTraders   int
}

// New constructs a ledger with the given trader capacity hint and stripe
// count. A stripeCount of 0 uses DefaultStripeCount.
func New(maxTraders int, stripeCount int) *Accounts {
	if stripeCount <= 0 {
		stripeCount = DefaultStripeCount
	}
	return &Accounts{
		accounts:    make(map[types.TraderID]*Account, maxTraders),
		stripes:     make([]sync.Mutex, stripeCount),
		stripeCount: stripeCount,
		maxTraders:  maxTraders,
	}
}

func (a *Accounts) stripeIndex(traderID types.TraderID) int {
	return int(traderID) % a.stripeCount
}

// CreateAccount creates a new account with the given initial balance. It
// reports false if an account for traderID already exists.
func (a *Accounts) CreateAccount(traderID types.TraderID, initialBalance int64) bool {
	stripe := &a.stripes[a.stripeIndex(traderID)]
	stripe.Lock()
	defer stripe.Unlock()

	a.mu.RLock()
	_, exists := a.accounts[traderID]
	a.mu.RUnlock()
	if exists {
		return false
	}

	acct := &Account{TraderID: traderID}
	acct.balance.Store(initialBalance)

	a.mu.Lock()
	a.accounts[traderID] = acct
	a.mu.Unlock()
	return true
}

// GetOrCreate returns the existing account for traderID, creating one with
// initialBalance if it does not yet exist.
func (a *Accounts) GetOrCreate(traderID types.TraderID, initialBalance int64) *Account {
	if acct := a.Get(traderID); acct != nil {
		return acct
	}

	stripe := &a.stripes[a.stripeIndex(traderID)]
	stripe.Lock()
	defer stripe.Unlock()

	a.mu.RLock()
	acct, exists := a.accounts[traderID]
	a.mu.RUnlock()
	if exists {
		return acct
	}

	acct = &Account{TraderID: traderID}
	acct.balance.Store(initialBalance)

	a.mu.Lock()
	a.accounts[traderID] = acct
	a.mu.Unlock()
	return acct
}

// Get returns the account for traderID, or nil if it does not exist.
func (a *Accounts) Get(traderID types.TraderID) *Account {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.accounts[traderID]
}

// ApplyTrade atomically updates both sides of a trade: the maker's
// position/balance move opposite the taker's, per takerSide. No lock is
// held across both updates — each account's own atomics make each half of
// the update individually consistent, which is sufficient since no
// invariant spans the two accounts once the trade is recorded.
func (a *Accounts) ApplyTrade(makerID, takerID types.TraderID, takerSide types.Side, price types.Price, qty types.Qty) {
	notional := int64(price) * int64(qty)

	maker := a.Get(makerID)
	taker := a.Get(takerID)

	// Maker is on the opposite side of the taker.
	if takerSide == types.Buy {
		// Taker buys from maker: taker pays, gains position; maker receives, loses position.
		if taker != nil {
			taker.balance.Add(-notional)
			taker.position.Add(int64(qty))
		}
		if maker != nil {
			maker.balance.Add(notional)
			maker.position.Add(-int64(qty))
		}
	} else {
		if taker != nil {
			taker.balance.Add(notional)
			taker.position.Add(-int64(qty))
		}
		if maker != nil {
			maker.balance.Add(-notional)
			maker.position.Add(int64(qty))
		}
	}

	if maker != nil {
		maker.tradeCount.Add(1)
		maker.volume.Add(uint64(qty))
	}
	if taker != nil {
		taker.tradeCount.Add(1)
		taker.volume.Add(uint64(qty))
	}
}

// AdjustBalance applies a deposit (positive) or withdrawal (negative) to
// traderID's balance. It reports false if the account does not exist.
func (a *Accounts) AdjustBalance(traderID types.TraderID, amount int64) bool {
	acct := a.Get(traderID)
	if acct == nil {
		return false
	}
	acct.balance.Add(amount)
	return true
}

// HasSufficientBalance reports whether traderID's balance covers
// requiredAmount. An unknown trader never has sufficient balance.
func (a *Accounts) HasSufficientBalance(traderID types.TraderID, requiredAmount int64) bool {
	acct := a.Get(traderID)
	if acct == nil {
		return false
	}
	return acct.Balance() >= requiredAmount
}

// GetBalance returns traderID's balance, or 0 if the account does not exist.
func (a *Accounts) GetBalance(traderID types.TraderID) int64 {
	if acct := a.Get(traderID); acct != nil {
		return acct.Balance()
	}
	return 0
}

// GetPosition returns traderID's position, or 0 if the account does not exist.
func (a *Accounts) GetPosition(traderID types.TraderID) int64 {
	if acct := a.Get(traderID); acct != nil {
		return acct.Position()
	}
	return 0
}

// Size returns the number of accounts currently tracked.
func (a *Accounts) Size() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.accounts)
}

// Clear removes every account. It takes every stripe mutex before emptying
// the map, so no concurrent CreateAccount/GetOrCreate can race a clear in
// progress and resurrect an account in the map it just reset.
func (a *Accounts) Clear() {
	for i := range a.stripes {
		a.stripes[i].Lock()
		defer a.stripes[i].Unlock()
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.accounts = make(map[types.TraderID]*Account, a.maxTraders)
}
