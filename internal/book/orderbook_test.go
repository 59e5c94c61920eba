package book

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rishav/order-matching-engine/internal/types"
)

func newTestBook() *OrderBook {
	return NewOrderBook(64, 16)
}

func TestOrderBook_AddLimitRestsWhenNoCross(t *testing.T) {
	b := newTestBook()
	resp := b.AddLimit(1, 100, types.Buy, 10000, 10)

	assert.Equal(t, types.Accepted, resp.Result)
	assert.Equal(t, types.Qty(0), resp.QtyFilled)
	assert.Equal(t, types.Qty(10), resp.QtyRemaining)

	bid, ok := b.BestBid()
	require.True(t, ok)
	assert.Equal(t, types.Price(10000), bid)
}

func TestOrderBook_CrossingOrdersTrade(t *testing.T) {
	b := newTestBook()
	var trades []Trade
	b.SetTradeCallback(func(tr Trade) { trades = append(trades, tr) })

	resp := b.AddLimit(1, 100, types.Sell, 10000, 10)
	require.Equal(t, types.Accepted, resp.Result)

	resp = b.AddLimit(2, 200, types.Buy, 10000, 10)
	require.Equal(t, types.FullyFilled, resp.Result)
	assert.Equal(t, 1, resp.TradeCount)
	require.Len(t, trades, 1)

	trade := trades[0]
	assert.Equal(t, types.OrderID(1), trade.MakerOrderID)
	assert.Equal(t, types.OrderID(2), trade.TakerOrderID)
	assert.Equal(t, types.Price(10000), trade.Price)
	assert.Equal(t, types.Qty(10), trade.Qty)

	assert.False(t, b.HasOrder(1))
	assert.False(t, b.HasOrder(2))
}

func TestOrderBook_PartialFillLeavesRemainderResting(t *testing.T) {
	b := newTestBook()
	b.AddLimit(1, 100, types.Sell, 10000, 5)
	resp := b.AddLimit(2, 200, types.Buy, 10000, 10)

	assert.Equal(t, types.PartiallyFilled, resp.Result)
	assert.Equal(t, types.Qty(5), resp.QtyFilled)
	assert.Equal(t, types.Qty(5), resp.QtyRemaining)

	assert.True(t, b.HasOrder(2))
	assert.False(t, b.HasOrder(1))
}

func TestOrderBook_PriceTimePriority(t *testing.T) {
	b := newTestBook()
	var fills []types.OrderID
	b.SetTradeCallback(func(tr Trade) { fills = append(fills, tr.MakerOrderID) })

	b.AddLimit(1, 1, types.Sell, 10000, 5) // first at this price
	b.AddLimit(2, 2, types.Sell, 10000, 5) // second at same price, later in time

	b.AddLimit(3, 3, types.Buy, 10000, 10)

	require.Len(t, fills, 2)
	assert.Equal(t, types.OrderID(1), fills[0])
	assert.Equal(t, types.OrderID(2), fills[1])
}

func TestOrderBook_LimitDoesNotCrossBeyondPrice(t *testing.T) {
	b := newTestBook()
	b.AddLimit(1, 1, types.Sell, 10100, 5)
	resp := b.AddLimit(2, 2, types.Buy, 10000, 5)

	assert.Equal(t, types.Accepted, resp.Result)
	assert.Equal(t, types.Qty(0), resp.QtyFilled)
}

func TestOrderBook_MarketOrderMatchesRegardlessOfPrice(t *testing.T) {
	b := newTestBook()
	b.AddLimit(1, 1, types.Sell, 10500, 5)
	resp := b.AddMarket(2, 2, types.Buy, 5)

	assert.Equal(t, types.FullyFilled, resp.Result)
	assert.Equal(t, types.Qty(5), resp.QtyFilled)
}

func TestOrderBook_MarketOrderAgainstEmptyBookPartiallyFillsZero(t *testing.T) {
	b := newTestBook()
	resp := b.AddMarket(1, 1, types.Buy, 10)

	assert.Equal(t, types.PartiallyFilled, resp.Result)
	assert.Equal(t, types.Qty(0), resp.QtyFilled)
	assert.Equal(t, types.Qty(10), resp.QtyRemaining)
}

func TestOrderBook_DuplicateOrderIDRejected(t *testing.T) {
	b := newTestBook()
	b.AddLimit(1, 1, types.Buy, 10000, 5)
	resp := b.AddLimit(1, 2, types.Buy, 10000, 5)
	assert.Equal(t, types.Rejected, resp.Result)
}

func TestOrderBook_CancelUnknownOrderReturnsNotFound(t *testing.T) {
	b := newTestBook()
	resp := b.Cancel(999)
	assert.Equal(t, types.NotFound, resp.Result)
}

func TestOrderBook_CancelRemovesRestingOrder(t *testing.T) {
	b := newTestBook()
	b.AddLimit(1, 1, types.Buy, 10000, 5)
	resp := b.Cancel(1)

	assert.Equal(t, types.Cancelled, resp.Result)
	assert.False(t, b.HasOrder(1))
	_, ok := b.BestBid()
	assert.False(t, ok)
}

func TestOrderBook_ModifySamePriceSmallerQtyKeepsPriority(t *testing.T) {
	b := newTestBook()
	var fills []types.OrderID
	b.SetTradeCallback(func(tr Trade) { fills = append(fills, tr.MakerOrderID) })

	b.AddLimit(1, 1, types.Sell, 10000, 10)
	b.AddLimit(2, 2, types.Sell, 10000, 10)

	resp := b.Modify(1, 5, 10000)
	require.Equal(t, types.Modified, resp.Result)

	b.AddLimit(3, 3, types.Buy, 10000, 5)

	require.Len(t, fills, 1)
	assert.Equal(t, types.OrderID(1), fills[0], "reducing quantity at the same price must keep time priority")
}

func TestOrderBook_ModifyLargerQtyLosesPriority(t *testing.T) {
	b := newTestBook()
	var fills []types.OrderID
	b.SetTradeCallback(func(tr Trade) { fills = append(fills, tr.MakerOrderID) })

	b.AddLimit(1, 1, types.Sell, 10000, 5)
	b.AddLimit(2, 2, types.Sell, 10000, 5)

	b.Modify(1, 10, 10000)

	b.AddLimit(3, 3, types.Buy, 10000, 5)

	require.Len(t, fills, 1)
	assert.Equal(t, types.OrderID(2), fills[0], "increasing quantity at the same price must lose time priority")
}

func TestOrderBook_ModifyDifferentPriceReprices(t *testing.T) {
	b := newTestBook()
	b.AddLimit(1, 1, types.Buy, 10000, 5)
	resp := b.Modify(1, 5, 10050)

	require.Equal(t, types.Accepted, resp.Result)
	bid, ok := b.BestBid()
	require.True(t, ok)
	assert.Equal(t, types.Price(10050), bid)
}

func TestOrderBook_ModifySamePriceSameQtyIsCancelReadd(t *testing.T) {
	// Matches the reference implementation's modify(): equal quantity takes
	// the "increase" branch (not "< qty_remaining"), so it is a cancel+readd
	// like a genuine increase, landing at the back of the queue even though
	// nothing about the order actually changed.
	b := newTestBook()
	var fills []types.OrderID
	b.SetTradeCallback(func(tr Trade) { fills = append(fills, tr.MakerOrderID) })

	b.AddLimit(1, 1, types.Sell, 10000, 5)
	b.AddLimit(2, 2, types.Sell, 10000, 5)

	resp := b.Modify(1, 5, 10000)
	require.Equal(t, types.Accepted, resp.Result)
	assert.True(t, b.HasOrder(1))

	b.AddLimit(3, 3, types.Buy, 10000, 5)
	require.Len(t, fills, 1)
	assert.Equal(t, types.OrderID(2), fills[0])
}

func TestOrderBook_ModifyUnknownOrderReturnsNotFound(t *testing.T) {
	b := newTestBook()
	resp := b.Modify(42, 5, 10000)
	assert.Equal(t, types.NotFound, resp.Result)
}

func TestOrderBook_ModifyNeverChangesTraderBinding(t *testing.T) {
	b := newTestBook()
	var fills []types.TraderID
	b.SetTradeCallback(func(tr Trade) { fills = append(fills, tr.MakerTraderID) })

	b.AddLimit(1, 111, types.Sell, 10000, 10)
	b.Modify(1, 20, 10050) // grows + reprices, loses priority, re-added

	b.AddMarket(2, 222, types.Buy, 20)

	require.Len(t, fills, 1)
	assert.Equal(t, types.TraderID(111), fills[0])
}

func TestOrderBook_BestBidAskSpreadMidPrice(t *testing.T) {
	b := newTestBook()
	b.AddLimit(1, 1, types.Buy, 9900, 10)
	b.AddLimit(2, 2, types.Sell, 10100, 10)

	bid, _ := b.BestBid()
	ask, _ := b.BestAsk()
	assert.Equal(t, types.Price(9900), bid)
	assert.Equal(t, types.Price(10100), ask)

	spread, ok := b.Spread()
	require.True(t, ok)
	assert.Equal(t, int64(200), spread)

	mid, ok := b.MidPrice()
	require.True(t, ok)
	assert.Equal(t, 10000.0, mid)
}

func TestOrderBook_MultipleLevelsSortedCorrectly(t *testing.T) {
	b := newTestBook()
	b.AddLimit(1, 1, types.Buy, 9800, 1)
	b.AddLimit(2, 2, types.Buy, 10000, 1)
	b.AddLimit(3, 3, types.Buy, 9900, 1)

	bid, _ := b.BestBid()
	assert.Equal(t, types.Price(10000), bid)
	assert.Equal(t, 3, b.BidLevels())
}

func TestOrderBook_ClearResetsState(t *testing.T) {
	b := newTestBook()
	b.AddLimit(1, 1, types.Buy, 10000, 5)
	b.Clear()

	assert.Equal(t, 0, b.OrderCount())
	_, ok := b.BestBid()
	assert.False(t, ok)
}
