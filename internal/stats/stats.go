package stats

import (
	"sync/atomic"
	"time"

	"github.com/rishav/order-matching-engine/internal/types"
)

// paddedCounter keeps a single atomic counter on its own cache line, so
// the engine's hot-path increments to one counter (e.g. trades) never
// force a reload of a neighboring, unrelated counter (e.g. rejections).
type paddedCounter struct {
	value atomic.Uint64
	_     [56]byte
}

// EngineStats holds the matching engine's running counters and latency
// histogram. Every counter is updated with a plain atomic add on the
// engine's consumer goroutine and may be read from any other goroutine.
type EngineStats struct {
	tradeCount      paddedCounter
	volume          paddedCounter
	ordersReceived  paddedCounter
	ordersAccepted  paddedCounter
	ordersCancelled paddedCounter
	ordersModified  paddedCounter
	rejectedCount   paddedCounter
	filledQty       paddedCounter

	Latency *LatencyHistogram
}

// NewEngineStats constructs a zeroed EngineStats with a latency histogram
// of the default sample capacity.
func NewEngineStats() *EngineStats {
	return &EngineStats{Latency: NewLatencyHistogram(DefaultSampleSize)}
}

func (s *EngineStats) IncTradeCount()           { s.tradeCount.value.Add(1) }
func (s *EngineStats) AddVolume(qty uint64)     { s.volume.value.Add(qty) }
func (s *EngineStats) IncOrdersReceived()       { s.ordersReceived.value.Add(1) }
func (s *EngineStats) IncOrdersAccepted()       { s.ordersAccepted.value.Add(1) }
func (s *EngineStats) IncOrdersCancelled()      { s.ordersCancelled.value.Add(1) }
func (s *EngineStats) IncOrdersModified()       { s.ordersModified.value.Add(1) }
func (s *EngineStats) IncRejectedCount()        { s.rejectedCount.value.Add(1) }
func (s *EngineStats) AddFilledQty(qty uint64)  { s.filledQty.value.Add(qty) }

func (s *EngineStats) TradeCount() uint64      { return s.tradeCount.value.Load() }
func (s *EngineStats) Volume() uint64          { return s.volume.value.Load() }
func (s *EngineStats) OrdersReceived() uint64  { return s.ordersReceived.value.Load() }
func (s *EngineStats) OrdersAccepted() uint64  { return s.ordersAccepted.value.Load() }
func (s *EngineStats) OrdersCancelled() uint64 { return s.ordersCancelled.value.Load() }
func (s *EngineStats) OrdersModified() uint64  { return s.ordersModified.value.Load() }
func (s *EngineStats) RejectedCount() uint64   { return s.rejectedCount.value.Load() }
func (s *EngineStats) FilledQty() uint64       { return s.filledQty.value.Load() }

// RecordLatency stores one end-to-end processing latency sample.
func (s *EngineStats) RecordLatency(latencyNs types.Duration) {
	s.Latency.Record(latencyNs)
}

// Reset zeroes every counter and clears the latency histogram.
func (s *EngineStats) Reset() {
	s.tradeCount.value.Store(0)
	s.volume.value.Store(0)
	s.ordersReceived.value.Store(0)
	s.ordersAccepted.value.Store(0)
	s.ordersCancelled.value.Store(0)
	s.ordersModified.value.Store(0)
	s.rejectedCount.value.Store(0)
	s.filledQty.value.Store(0)
	s.Latency.Clear()
}

// Snapshot is a non-atomic, point-in-time copy of EngineStats, suitable for
// logging or reporting without holding any lock while the caller reads it.
type Snapshot struct {
	TradeCount      uint64
	Volume          uint64
	OrdersReceived  uint64
	OrdersAccepted  uint64
	OrdersCancelled uint64
	OrdersModified  uint64
	RejectedCount   uint64
	FilledQty       uint64
	Latency         LatencyStats
	Timestamp       types.Timestamp
}

// CaptureSnapshot copies every counter in s plus the current latency
// statistics into a Snapshot.
func CaptureSnapshot(s *EngineStats) Snapshot {
	return Snapshot{
		TradeCount:      s.TradeCount(),
		Volume:          s.Volume(),
		OrdersReceived:  s.OrdersReceived(),
		OrdersAccepted:  s.OrdersAccepted(),
		OrdersCancelled: s.OrdersCancelled(),
		OrdersModified:  s.OrdersModified(),
		RejectedCount:   s.RejectedCount(),
		FilledQty:       s.FilledQty(),
		Latency:         s.Latency.ComputeStats(),
		Timestamp:       types.Timestamp(time.Now().UnixNano()),
	}
}
