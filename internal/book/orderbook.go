// Package book implements the limit order book: price levels kept as
// sorted slices (not a balanced tree), an intrusive per-level FIFO queue
// threaded through object-pool handles, and price-time-priority matching.
//
// Design decisions carried over from the reference implementation:
//   - bids_/asks_ are flat, sorted slices, not std::map/red-black trees —
//     cache locality over asymptotic insert complexity, since the number
//     of distinct price levels touched in practice is small.
//   - resting orders live in a fixed-capacity pool.Pool[Order]; the book
//     itself only ever holds uint32 handles into that pool, never pointers.
//   - a single mutex guards all mutation; the matching engine is meant to
//     be the book's only writer, but the lock leaves room for concurrent
//     read-only snapshots (market-data fan-out is out of scope here, see
//     SPEC_FULL.md, but the seam costs nothing to keep).
package book

import (
	"sort"
	"sync"
	"time"

	"github.com/rishav/order-matching-engine/internal/pool"
	"github.com/rishav/order-matching-engine/internal/types"
)

const (
	// DefaultMaxOrders bounds the number of simultaneously resting orders.
	DefaultMaxOrders = 1 << 20
	// DefaultMaxLevels is the reserved capacity hint for each side's level
	// slice; the slice still grows past this if needed.
	DefaultMaxLevels = 4096
)

// OrderBook is a single symbol's limit order book.
type OrderBook struct {
	mu sync.Mutex

	orders   *pool.Pool[Order]
	orderMap map[types.OrderID]uint32

	bids []PriceLevel // descending by price
	asks []PriceLevel // ascending by price

	tradeCallback TradeCallback

	totalTrades uint64
	totalVolume uint64
}

// NewOrderBook constructs an order book with the given resting-order
// capacity. maxLevels is only a capacity hint.
func NewOrderBook(maxOrders uint32, maxLevels int) *OrderBook {
	if maxOrders == 0 {
		maxOrders = DefaultMaxOrders
	}
	if maxLevels <= 0 {
		maxLevels = DefaultMaxLevels
	}
	return &OrderBook{
		orders:   pool.New[Order](maxOrders),
		orderMap: make(map[types.OrderID]uint32, maxOrders),
		bids:     make([]PriceLevel, 0, maxLevels),
		asks:     make([]PriceLevel, 0, maxLevels),
	}
}

// SetTradeCallback installs the callback invoked for every trade. It is
// called synchronously while the book's mutex is held, so it must not
// re-enter the book.
func (b *OrderBook) SetTradeCallback(cb TradeCallback) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tradeCallback = cb
}

// AddLimit submits a new resting-eligible limit order.
func (b *OrderBook) AddLimit(orderID types.OrderID, traderID types.TraderID, side types.Side, price types.Price, qty types.Qty) Response {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.addLimitLocked(orderID, traderID, side, price, qty)
}

func (b *OrderBook) addLimitLocked(orderID types.OrderID, traderID types.TraderID, side types.Side, price types.Price, qty types.Qty) Response {
	resp := Response{OrderID: orderID}

	if _, exists := b.orderMap[orderID]; exists {
		resp.Result = types.Rejected
		return resp
	}

	remaining, trades := b.matchOrder(orderID, traderID, side, price, qty, false)
	resp.TradeCount = trades
	resp.QtyFilled = qty - remaining
	resp.QtyRemaining = remaining

	if remaining <= 0 {
		resp.Result = types.FullyFilled
		return resp
	}

	order := Order{
		ID:           orderID,
		TraderID:     traderID,
		Side:         side,
		Price:        price,
		QtyRemaining: remaining,
		QtyOriginal:  qty,
		Timestamp:    types.Timestamp(time.Now().UnixNano()),
		NextIdx:      invalidIdx,
		PrevIdx:      invalidIdx,
	}
	idx := b.orders.Allocate(order)
	if idx == pool.Invalid {
		resp.Result = types.Rejected
		return resp
	}
	b.orderMap[orderID] = idx

	levels := b.levelsFor(side)
	li := b.findOrCreateLevel(levels, price, side == types.Buy)
	(*levels)[li].PushBack(b.orders, idx)

	if trades > 0 {
		resp.Result = types.PartiallyFilled
	} else {
		resp.Result = types.Accepted
	}
	return resp
}

// AddMarket submits a market order: it matches immediately against
// whatever liquidity exists and never rests.
func (b *OrderBook) AddMarket(orderID types.OrderID, traderID types.TraderID, side types.Side, qty types.Qty) Response {
	b.mu.Lock()
	defer b.mu.Unlock()

	resp := Response{OrderID: orderID}
	remaining, trades := b.matchOrder(orderID, traderID, side, 0, qty, true)
	resp.TradeCount = trades
	resp.QtyFilled = qty - remaining
	resp.QtyRemaining = remaining
	if remaining <= 0 {
		resp.Result = types.FullyFilled
	} else {
		resp.Result = types.PartiallyFilled
	}
	return resp
}

// Cancel removes a resting order.
func (b *OrderBook) Cancel(orderID types.OrderID) Response {
	b.mu.Lock()
	defer b.mu.Unlock()

	resp := Response{OrderID: orderID}
	idx, ok := b.orderMap[orderID]
	if !ok {
		resp.Result = types.NotFound
		return resp
	}

	order := b.orders.At(idx)
	resp.QtyRemaining = order.QtyRemaining

	b.removeOrderLocked(idx)
	delete(b.orderMap, orderID)

	resp.Result = types.Cancelled
	return resp
}

// Modify changes a resting order's price and/or quantity.
//
// If newPrice is non-zero and differs from the order's current price, the
// order loses its place in time priority: it is cancelled and re-added as
// a new order at the new price (possibly matching immediately). Within the
// same price, shrinking the quantity keeps priority; growing it loses
// priority, matching the same cancel+re-add path. The order's trader
// binding never changes on a Modify — the caller-supplied trader, if any,
// is ignored in favor of the order's existing owner.
func (b *OrderBook) Modify(orderID types.OrderID, newQty types.Qty, newPrice types.Price) Response {
	b.mu.Lock()
	defer b.mu.Unlock()

	resp := Response{OrderID: orderID}
	idx, ok := b.orderMap[orderID]
	if !ok {
		resp.Result = types.NotFound
		return resp
	}
	order := b.orders.At(idx)

	if newPrice != 0 && newPrice != order.Price {
		traderID, side := order.TraderID, order.Side
		b.removeOrderLocked(idx)
		delete(b.orderMap, orderID)
		return b.addLimitLocked(orderID, traderID, side, newPrice, newQty)
	}

	if newQty < order.QtyRemaining {
		levels := b.levelsFor(order.Side)
		if li := b.findLevel(*levels, order.Price, order.Side == types.Buy); li >= 0 {
			diff := order.QtyRemaining - newQty
			(*levels)[li].ReduceQty(diff)
		}
		order.QtyRemaining = newQty
		resp.QtyRemaining = newQty
		resp.Result = types.Modified
		return resp
	}

	traderID, side, price := order.TraderID, order.Side, order.Price
	b.removeOrderLocked(idx)
	delete(b.orderMap, orderID)
	return b.addLimitLocked(orderID, traderID, side, price, newQty)
}

// BestBid returns the highest resting bid price, if any.
func (b *OrderBook) BestBid() (types.Price, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.bids {
		if !b.bids[i].Empty() {
			return b.bids[i].Price, true
		}
	}
	return 0, false
}

// BestAsk returns the lowest resting ask price, if any.
func (b *OrderBook) BestAsk() (types.Price, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.asks {
		if !b.asks[i].Empty() {
			return b.asks[i].Price, true
		}
	}
	return 0, false
}

// MidPrice returns the midpoint of best bid and best ask, if both exist.
func (b *OrderBook) MidPrice() (float64, bool) {
	bid, haveBid := b.BestBid()
	ask, haveAsk := b.BestAsk()
	if !haveBid || !haveAsk {
		return 0, false
	}
	return (float64(bid) + float64(ask)) / 2.0, true
}

// Spread returns ask-minus-bid in ticks, if both sides exist.
func (b *OrderBook) Spread() (int64, bool) {
	bid, haveBid := b.BestBid()
	ask, haveAsk := b.BestAsk()
	if !haveBid || !haveAsk {
		return 0, false
	}
	return int64(ask) - int64(bid), true
}

// BestBidQty returns the total resting quantity at the best bid.
func (b *OrderBook) BestBidQty() types.Qty {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.bids {
		if !b.bids[i].Empty() {
			return b.bids[i].TotalQty
		}
	}
	return 0
}

// BestAskQty returns the total resting quantity at the best ask.
func (b *OrderBook) BestAskQty() types.Qty {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.asks {
		if !b.asks[i].Empty() {
			return b.asks[i].TotalQty
		}
	}
	return 0
}

// OrderCount returns the number of currently resting orders.
func (b *OrderBook) OrderCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return int(b.orders.Size())
}

// BidLevels returns the number of non-empty bid price levels.
func (b *OrderBook) BidLevels() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for i := range b.bids {
		if !b.bids[i].Empty() {
			n++
		}
	}
	return n
}

// AskLevels returns the number of non-empty ask price levels.
func (b *OrderBook) AskLevels() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for i := range b.asks {
		if !b.asks[i].Empty() {
			n++
		}
	}
	return n
}

// TradeCount returns the total number of trades this book has produced.
func (b *OrderBook) TradeCount() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.totalTrades
}

// TotalVolume returns the total quantity traded by this book.
func (b *OrderBook) TotalVolume() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.totalVolume
}

// HasOrder reports whether orderID is currently resting.
func (b *OrderBook) HasOrder(orderID types.OrderID) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.orderMap[orderID]
	return ok
}

// Clear removes every resting order and resets statistics.
func (b *OrderBook) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.orders.Clear()
	b.orderMap = make(map[types.OrderID]uint32, len(b.orderMap))
	b.bids = b.bids[:0]
	b.asks = b.asks[:0]
	b.totalTrades = 0
	b.totalVolume = 0
}

// matchOrder walks the opposite side's levels in price-time priority,
// filling against resting orders until either the incoming quantity is
// exhausted or no more levels are matchable. It returns the quantity left
// unfilled and the number of trades produced.
func (b *OrderBook) matchOrder(takerOrderID types.OrderID, takerTraderID types.TraderID, side types.Side, price types.Price, qty types.Qty, isMarket bool) (types.Qty, int) {
	levels := b.levelsFor(side.Opposite())
	remaining := qty
	trades := 0

	i := 0
	for i < len(*levels) && remaining > 0 {
		level := &(*levels)[i]

		if !isMarket {
			if side == types.Buy && level.Price > price {
				break
			}
			if side == types.Sell && level.Price < price {
				break
			}
		}

		for remaining > 0 && !level.Empty() {
			makerIdx := level.FrontIdx()
			maker := b.orders.At(makerIdx)

			fillQty := remaining
			if maker.QtyRemaining < fillQty {
				fillQty = maker.QtyRemaining
			}

			trade := Trade{
				MakerOrderID:  maker.ID,
				TakerOrderID:  takerOrderID,
				MakerTraderID: maker.TraderID,
				TakerTraderID: takerTraderID,
				Price:         maker.Price,
				Qty:           fillQty,
				TakerSide:     side,
				Timestamp:     types.Timestamp(time.Now().UnixNano()),
			}

			maker.QtyRemaining -= fillQty
			level.ReduceQty(fillQty)
			remaining -= fillQty

			b.emitTrade(trade)
			trades++
			b.totalTrades++
			b.totalVolume += uint64(fillQty)

			if maker.QtyRemaining <= 0 {
				level.Remove(b.orders, makerIdx)
				delete(b.orderMap, maker.ID)
				b.orders.Deallocate(makerIdx)
			}
		}

		if level.Empty() {
			*levels = append((*levels)[:i], (*levels)[i+1:]...)
			continue
		}
		i++
	}

	return remaining, trades
}

// levelsFor returns a pointer to the slice field backing side, so matching
// and level maintenance can mutate it in place.
func (b *OrderBook) levelsFor(side types.Side) *[]PriceLevel {
	if side == types.Buy {
		return &b.bids
	}
	return &b.asks
}

// findOrCreateLevel returns the index of price's level within levels,
// inserting a new empty level at the correct sorted position if needed.
// Bids are kept descending, asks ascending.
func (b *OrderBook) findOrCreateLevel(levels *[]PriceLevel, price types.Price, isBid bool) int {
	idx := searchInsertionPoint(*levels, price, isBid)
	if idx < len(*levels) && (*levels)[idx].Price == price {
		return idx
	}
	*levels = append(*levels, PriceLevel{})
	copy((*levels)[idx+1:], (*levels)[idx:])
	(*levels)[idx] = newPriceLevel(price)
	return idx
}

// findLevel returns the index of price's level, or -1 if it does not exist.
func (b *OrderBook) findLevel(levels []PriceLevel, price types.Price, isBid bool) int {
	idx := searchInsertionPoint(levels, price, isBid)
	if idx < len(levels) && levels[idx].Price == price {
		return idx
	}
	return -1
}

// searchInsertionPoint binary-searches the sorted levels slice for the
// first index whose price is not strictly better than price: the position
// where price either already lives or belongs.
func searchInsertionPoint(levels []PriceLevel, price types.Price, isBid bool) int {
	return sort.Search(len(levels), func(i int) bool {
		if isBid {
			return levels[i].Price <= price
		}
		return levels[i].Price >= price
	})
}

// removeOrderLocked unlinks the order at pool index idx from its level and
// returns it to the pool. Caller must hold b.mu.
func (b *OrderBook) removeOrderLocked(idx uint32) {
	order := b.orders.At(idx)
	levels := b.levelsFor(order.Side)

	if li := b.findLevel(*levels, order.Price, order.Side == types.Buy); li >= 0 {
		(*levels)[li].Remove(b.orders, idx)
		if (*levels)[li].Empty() {
			*levels = append((*levels)[:li], (*levels)[li+1:]...)
		}
	}
	b.orders.Deallocate(idx)
}

func (b *OrderBook) emitTrade(trade Trade) {
	if b.tradeCallback != nil {
		b.tradeCallback(trade)
	}
}
