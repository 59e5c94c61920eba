package book

import "github.com/rishav/order-matching-engine/internal/types"

// invalidIdx is the sentinel "no pool slot" value, matching pool.Invalid.
const invalidIdx = ^uint32(0)

// Order is the resting representation of an order stored in the book's
// order pool. Orders link into their PriceLevel's FIFO queue via pool
// indices (NextIdx/PrevIdx), not pointers, so a level's queue never forces
// a heap pointer chase.
type Order struct {
	ID           types.OrderID
	TraderID     types.TraderID
	Side         types.Side
	Price        types.Price
	QtyRemaining types.Qty
	QtyOriginal  types.Qty
	Timestamp    types.Timestamp

	NextIdx uint32
	PrevIdx uint32
}

// IsFilled reports whether the order has no remaining quantity.
func (o *Order) IsFilled() bool { return o.QtyRemaining <= 0 }

// QtyFilled returns the quantity executed so far.
func (o *Order) QtyFilled() types.Qty { return o.QtyOriginal - o.QtyRemaining }

// Trade is an execution report produced whenever an incoming order crosses
// a resting order.
type Trade struct {
	MakerOrderID   types.OrderID
	TakerOrderID   types.OrderID
	MakerTraderID  types.TraderID
	TakerTraderID  types.TraderID
	Price          types.Price
	Qty            types.Qty
	TakerSide      types.Side
	Timestamp      types.Timestamp
}

// TradeCallback is invoked synchronously, on the book's calling goroutine,
// for every trade produced by a match. It must not block or call back into
// the OrderBook — the book's mutex is held for the duration of the call.
type TradeCallback func(Trade)

// Response reports the outcome of an order operation.
type Response struct {
	Result       types.Result
	OrderID      types.OrderID
	QtyFilled    types.Qty
	QtyRemaining types.Qty
	TradeCount   int
}

// Success reports whether the order reached or remains in the book, as
// opposed to being rejected or not found.
func (r Response) Success() bool { return r.Result.Success() }
