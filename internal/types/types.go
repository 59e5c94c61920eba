// Package types defines the strong-typed scalars shared by every layer of
// the exchange core: prices, quantities, order and trader identifiers,
// and the nanosecond timestamps used for latency measurement.
//
// Key Design Decisions:
//
// 1. Distinct Types: Price, Qty, OrderID, and TraderID are all backed by
//    plain integers but kept as distinct Go types so a Qty can never be
//    passed where a Price is expected by accident. There is no implicit
//    conversion between them.
//
// 2. Fixed-Point Prices: Price and Qty are signed 64-bit integers in ticks
//    (e.g. cents), never floating point, so trade notionals never drift
//    from accumulated rounding error.
//
// 3. Nanosecond Time: Timestamp and Duration are plain int64/uint64
//    nanosecond counts rather than time.Time, matching the hot-path latency
//    bookkeeping the matching engine performs on every event.
package types

import "fmt"

// Price is a signed quantity in integer ticks (e.g. cents).
type Price int64

// Qty is a signed quantity of shares/contracts.
type Qty int64

// OrderID uniquely identifies an order for the lifetime of the engine.
type OrderID uint64

// TraderID identifies an account.
type TraderID uint32

// Timestamp is nanoseconds since the Unix epoch.
type Timestamp uint64

// Duration is a signed nanosecond duration, used for latency samples.
type Duration int64

// InvalidOrderID is the sentinel for "no order."
const InvalidOrderID OrderID = ^OrderID(0)

// InvalidTraderID is the sentinel for "no trader."
const InvalidTraderID TraderID = ^TraderID(0)

// Side is one side of the book.
type Side uint8

const (
	Buy Side = iota
	Sell
)

// Opposite returns the other side.
func (s Side) Opposite() Side {
	if s == Buy {
		return Sell
	}
	return Buy
}

func (s Side) String() string {
	if s == Buy {
		return "Buy"
	}
	return "Sell"
}

// EventType identifies the kind of OrderEvent flowing through the queue.
type EventType uint8

const (
	NewLimit EventType = iota
	NewMarket
	Cancel
	Modify
)

func (t EventType) String() string {
	switch t {
	case NewLimit:
		return "NewLimit"
	case NewMarket:
		return "NewMarket"
	case Cancel:
		return "Cancel"
	case Modify:
		return "Modify"
	default:
		return "Unknown"
	}
}

// Result is the outcome of a book operation.
type Result uint8

const (
	Accepted Result = iota
	PartiallyFilled
	FullyFilled
	Cancelled
	Modified
	Rejected
	NotFound
)

func (r Result) String() string {
	switch r {
	case Accepted:
		return "Accepted"
	case PartiallyFilled:
		return "PartiallyFilled"
	case FullyFilled:
		return "FullyFilled"
	case Cancelled:
		return "Cancelled"
	case Modified:
		return "Modified"
	case Rejected:
		return "Rejected"
	case NotFound:
		return "NotFound"
	default:
		return "Unknown"
	}
}

// Success reports whether the result represents a live or completed order,
// as opposed to one that never touched the book (Rejected, NotFound).
func (r Result) Success() bool {
	return r != Rejected && r != NotFound
}

// RiskResult is the outcome of a pre-trade risk check.
type RiskResult uint8

const (
	Passed RiskResult = iota
	InvalidPrice
	InvalidQty
	ExceedsMaxOrderValue
	ExceedsMaxPosition
	InsufficientBalance
	UnknownTrader
)

func (r RiskResult) String() string {
	switch r {
	case Passed:
		return "Passed"
	case InvalidPrice:
		return "InvalidPrice"
	case InvalidQty:
		return "InvalidQty"
	case ExceedsMaxOrderValue:
		return "ExceedsMaxOrderValue"
	case ExceedsMaxPosition:
		return "ExceedsMaxPosition"
	case InsufficientBalance:
		return "InsufficientBalance"
	case UnknownTrader:
		return "UnknownTrader"
	default:
		return "Unknown"
	}
}

// FormatPrice renders a tick price as a dollar string, assuming ticks are
// cents (the convention used by every caller in this module).
func FormatPrice(p Price) string {
	dollars := int64(p) / 100
	cents := int64(p) % 100
	if cents < 0 {
		cents = -cents
	}
	return fmt.Sprintf("$%d.%02d", dollars, cents)
}

// OrderEvent is the POD-like payload that flows through the spscqueue from
// the producer to the matching engine. It is intentionally flat — one
// struct covering every event type, rather than a tagged union of structs —
// so it copies cheaply through the bounded ring buffer.
type OrderEvent struct {
	Type        EventType
	OrderID     OrderID
	TraderID    TraderID
	Side        Side
	Price       Price
	Qty         Qty
	EnqueueTime Timestamp
}

// NewLimitEvent builds a NewLimit event.
func NewLimitEvent(id OrderID, trader TraderID, side Side, price Price, qty Qty, now Timestamp) OrderEvent {
	return OrderEvent{Type: NewLimit, OrderID: id, TraderID: trader, Side: side, Price: price, Qty: qty, EnqueueTime: now}
}

// NewMarketEvent builds a NewMarket event.
func NewMarketEvent(id OrderID, trader TraderID, side Side, qty Qty, now Timestamp) OrderEvent {
	return OrderEvent{Type: NewMarket, OrderID: id, TraderID: trader, Side: side, Qty: qty, EnqueueTime: now}
}

// CancelEvent builds a Cancel event.
func CancelEvent(id OrderID, now Timestamp) OrderEvent {
	return OrderEvent{Type: Cancel, OrderID: id, TraderID: InvalidTraderID, EnqueueTime: now}
}

// ModifyEvent builds a Modify event. The trader binding is never changed by
// a Modify, so no TraderID is carried here — the book re-uses the resting
// order's existing owner.
func ModifyEvent(id OrderID, newQty Qty, newPrice Price, now Timestamp) OrderEvent {
	return OrderEvent{Type: Modify, OrderID: id, TraderID: InvalidTraderID, Price: newPrice, Qty: newQty, EnqueueTime: now}
}
