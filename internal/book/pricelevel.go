package book

import (
	"github.com/rishav/order-matching-engine/internal/pool"
	"github.com/rishav/order-matching-engine/internal/types"
)

// PriceLevel holds every resting order at a single price, in FIFO order.
// The queue is an intrusive doubly-linked list threaded through pool
// indices stored on each Order, rather than a Go slice or container type —
// this is what lets cancel/fill of an arbitrary order in the middle of the
// queue run in O(1) instead of O(n).
type PriceLevel struct {
	Price      types.Price
	TotalQty   types.Qty
	OrderCount uint32

	headIdx uint32
	tailIdx uint32
}

// newPriceLevel constructs an empty level at the given price.
func newPriceLevel(price types.Price) PriceLevel {
	return PriceLevel{Price: price, headIdx: invalidIdx, tailIdx: invalidIdx}
}

// Empty reports whether the level currently has no resting orders.
func (l *PriceLevel) Empty() bool { return l.OrderCount == 0 }

// FrontIdx returns the pool index of the order at the head of the queue,
// or invalidIdx if the level is empty.
func (l *PriceLevel) FrontIdx() uint32 { return l.headIdx }

// Front returns the order at the head of the queue, for matching.
func (l *PriceLevel) Front(orders *pool.Pool[Order]) *Order {
	if l.headIdx == invalidIdx {
		return nil
	}
	return orders.At(l.headIdx)
}

// PushBack appends the order at orderIdx to the tail of the queue.
func (l *PriceLevel) PushBack(orders *pool.Pool[Order], orderIdx uint32) {
	order := orders.At(orderIdx)
	order.PrevIdx = l.tailIdx
	order.NextIdx = invalidIdx

	if l.tailIdx != invalidIdx {
		orders.At(l.tailIdx).NextIdx = orderIdx
	} else {
		l.headIdx = orderIdx
	}
	l.tailIdx = orderIdx
	l.TotalQty += order.QtyRemaining
	l.OrderCount++
}

// Remove unlinks the order at orderIdx from the queue, wherever it sits.
func (l *PriceLevel) Remove(orders *pool.Pool[Order], orderIdx uint32) {
	order := orders.At(orderIdx)

	if order.PrevIdx != invalidIdx {
		orders.At(order.PrevIdx).NextIdx = order.NextIdx
	} else {
		l.headIdx = order.NextIdx
	}
	if order.NextIdx != invalidIdx {
		orders.At(order.NextIdx).PrevIdx = order.PrevIdx
	} else {
		l.tailIdx = order.PrevIdx
	}

	l.TotalQty -= order.QtyRemaining
	l.OrderCount--

	order.PrevIdx = invalidIdx
	order.NextIdx = invalidIdx
}

// ReduceQty lowers the level's tracked total quantity after a partial fill
// of its front order. It does not touch the order itself.
func (l *PriceLevel) ReduceQty(filled types.Qty) {
	l.TotalQty -= filled
}
