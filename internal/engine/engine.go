// Package engine implements the single-threaded matching engine consumer:
// one goroutine pulling OrderEvents off the bounded SPSC queue, applying
// them to the order book, and updating accounts and statistics.
//
// There is exactly one consumer goroutine per engine by construction; the
// book, accounts, and stats types are all safe for that goroutine to drive
// while other goroutines only read snapshots.
package engine

import (
	"context"
	"time"

	"github.com/rishav/order-matching-engine/internal/accounts"
	"github.com/rishav/order-matching-engine/internal/book"
	"github.com/rishav/order-matching-engine/internal/obslog"
	"github.com/rishav/order-matching-engine/internal/risk"
	"github.com/rishav/order-matching-engine/internal/spscqueue"
	"github.com/rishav/order-matching-engine/internal/stats"
	"github.com/rishav/order-matching-engine/internal/types"
)

// pollInterval is how often the consumer loop checks for a stop signal
// while otherwise blocked waiting for the next event.
const pollInterval = 10 * time.Millisecond

// Config configures a matching Engine.
type Config struct {
	MaxOrders      uint32
	MaxPriceLevels int

	MaxTraders     int
	InitialBalance int64

	Risk risk.Config

	// PinToCore, if set, is called with core 0 before the consumer enters
	// its run loop; its error is ignored. Pinning itself is an
	// external-collaborator concern (see SPEC_FULL.md) — the engine never
	// touches OS affinity syscalls directly, it only calls this hook.
	PinToCore func(core int) error

	Logger obslog.Sink
}

// DefaultConfig returns sane defaults matching the reference
// implementation's engine configuration.
func DefaultConfig() Config {
	return Config{
		MaxOrders:      book.DefaultMaxOrders,
		MaxPriceLevels: book.DefaultMaxLevels,
		MaxTraders:     1000,
		InitialBalance: 1_000_000_000,
		Risk:           risk.DefaultConfig(),
	}
}

// Engine owns the order book, the accounts ledger, the risk checker, and
// the statistics for a single symbol, and drains events from an input
// queue on its own goroutine.
type Engine struct {
	queue *spscqueue.Queue[types.OrderEvent]

	book     *book.OrderBook
	accounts *accounts.Accounts
	risk     *risk.Checker
	stats    *stats.EngineStats
	logger   obslog.Sink
	config   Config

	eventsProcessed uint64
	running         bool
}

// New constructs an Engine reading from queue.
func New(queue *spscqueue.Queue[types.OrderEvent], config Config) *Engine {
	if config.MaxTraders <= 0 {
		config.MaxTraders = 1000
	}
	e := &Engine{
		queue:    queue,
		book:     book.NewOrderBook(config.MaxOrders, config.MaxPriceLevels),
		accounts: accounts.New(config.MaxTraders, accounts.DefaultStripeCount),
		stats:    stats.NewEngineStats(),
		logger:   config.Logger,
		config:   config,
	}
	e.risk = risk.New(config.Risk, e.accounts)
	e.book.SetTradeCallback(e.onTrade)
	return e
}

// Book returns the engine's order book.
func (e *Engine) Book() *book.OrderBook { return e.book }

// Accounts returns the engine's accounts ledger.
func (e *Engine) Accounts() *accounts.Accounts { return e.accounts }

// Stats returns the engine's statistics.
func (e *Engine) Stats() *stats.EngineStats { return e.stats }

// EventsProcessed returns the number of events this engine has dispatched
// to the book so far. Events rejected by the risk check are not included;
// they are counted by Stats().RejectedCount().
func (e *Engine) EventsProcessed() uint64 { return e.eventsProcessed }

// IsRunning reports whether Run is currently executing.
func (e *Engine) IsRunning() bool { return e.running }

// Run drives the consumer loop until ctx is cancelled. It polls the queue
// with a short timeout so the stop signal is checked regularly rather than
// blocking forever on an empty queue, then drains whatever remains once
// cancellation is observed.
func (e *Engine) Run(ctx context.Context) {
	e.running = true
	defer func() { e.running = false }()

	if e.config.PinToCore != nil {
		// Best-effort: a failed pin does not stop the engine from running.
		_ = e.config.PinToCore(0)
	}

	for ctx.Err() == nil {
		event, ok := e.queue.TryPopFor(pollInterval)
		if !ok {
			continue
		}
		e.ProcessEvent(event)
	}

	for {
		event, ok := e.queue.TryPop()
		if !ok {
			break
		}
		e.ProcessEvent(event)
	}
}

// ProcessEvent applies a single event to the book, updating accounts and
// statistics. It is exported so tests can drive the engine without a
// running consumer goroutine.
func (e *Engine) ProcessEvent(event types.OrderEvent) {
	start := types.Timestamp(time.Now().UnixNano())
	e.stats.IncOrdersReceived()

	if event.Type != types.Cancel {
		e.accounts.GetOrCreate(event.TraderID, e.config.InitialBalance)
	}

	if result := e.risk.Check(event); result != types.Passed {
		e.stats.IncRejectedCount()
		if e.logger != nil {
			e.logger.Log("rejected order %d reason: %s", event.OrderID, result)
		}
		e.recordLatency(event.EnqueueTime, start)
		return
	}

	var resp book.Response
	switch event.Type {
	case types.NewLimit:
		resp = e.book.AddLimit(event.OrderID, event.TraderID, event.Side, event.Price, event.Qty)
	case types.NewMarket:
		resp = e.book.AddMarket(event.OrderID, event.TraderID, event.Side, event.Qty)
	case types.Cancel:
		resp = e.book.Cancel(event.OrderID)
	case types.Modify:
		resp = e.book.Modify(event.OrderID, event.Qty, event.Price)
	}

	e.eventsProcessed++

	switch resp.Result {
	case types.Accepted, types.PartiallyFilled, types.FullyFilled:
		e.stats.IncOrdersAccepted()
	case types.Cancelled:
		e.stats.IncOrdersCancelled()
	case types.Modified:
		e.stats.IncOrdersModified()
	}
	if resp.Success() && resp.QtyFilled > 0 {
		e.stats.AddFilledQty(uint64(resp.QtyFilled))
	}

	e.recordLatency(event.EnqueueTime, start)
}

func (e *Engine) onTrade(trade book.Trade) {
	e.accounts.ApplyTrade(trade.MakerTraderID, trade.TakerTraderID, trade.TakerSide, trade.Price, trade.Qty)
	e.stats.IncTradeCount()
	e.stats.AddVolume(uint64(trade.Qty))
	if e.logger != nil {
		e.logger.Log("trade: %d @ %d maker=%d taker=%d", trade.Qty, trade.Price, trade.MakerTraderID, trade.TakerTraderID)
	}
}

func (e *Engine) recordLatency(enqueueTime, processStart types.Timestamp) {
	now := types.Timestamp(time.Now().UnixNano())
	total := types.Duration(int64(now) - int64(enqueueTime))
	e.stats.RecordLatency(total)
}
