// Package stats implements the matching engine's observability surface:
// cache-line-padded atomic counters plus a fixed-capacity latency
// histogram with on-demand percentile computation.
package stats

import (
	"math"
	"sort"
	"sync"

	"github.com/rishav/order-matching-engine/internal/types"
)

// DefaultSampleSize bounds the number of latency samples retained; once
// full, new samples overwrite the oldest via the ring buffer's write
// position.
const DefaultSampleSize = 100_000

// LatencyStats summarizes a LatencyHistogram. The percentiles cover the
// samples the ring currently retains; Count, MinNs, MaxNs and MeanNs cover
// every sample recorded since the last Clear, so Count may exceed capacity.
type LatencyStats struct {
	MeanNs   float64
	MedianNs float64
	P50Ns    float64
	P90Ns    float64
	P95Ns    float64
	P99Ns    float64
	P999Ns   float64
	MinNs    types.Duration
	MaxNs    types.Duration
	Count    int
}

// LatencyHistogram is a fixed-capacity ring buffer of latency samples with
// running min/max/sum, so mean is always O(1); percentiles are computed
// on demand by sorting a snapshot of the stored samples.
type LatencyHistogram struct {
	mu sync.Mutex

	samples  []types.Duration
	capacity int
	writePos int
	count    int

	min types.Duration
	max types.Duration
	sum types.Duration
}

// NewLatencyHistogram constructs a histogram with the given sample capacity.
// A capacity of 0 uses DefaultSampleSize.
func NewLatencyHistogram(capacity int) *LatencyHistogram {
	if capacity <= 0 {
		capacity = DefaultSampleSize
	}
	return &LatencyHistogram{
		samples:  make([]types.Duration, capacity),
		capacity: capacity,
		min:      math.MaxInt64,
	}
}

// Record stores one latency sample.
func (h *LatencyHistogram) Record(latencyNs types.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.samples[h.writePos] = latencyNs
	h.writePos = (h.writePos + 1) % h.capacity
	h.count++

	if latencyNs < h.min {
		h.min = latencyNs
	}
	if latencyNs > h.max {
		h.max = latencyNs
	}
	h.sum += latencyNs
}

// ComputeStats calculates percentiles from the currently stored samples.
func (h *LatencyHistogram) ComputeStats() LatencyStats {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.count == 0 {
		return LatencyStats{}
	}

	sampleCount := h.count
	if sampleCount > h.capacity {
		sampleCount = h.capacity
	}
	sorted := make([]types.Duration, sampleCount)
	copy(sorted, h.samples[:sampleCount])
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	percentile := func(p float64) float64 {
		if sampleCount == 0 {
			return 0
		}
		index := (p / 100.0) * float64(sampleCount-1)
		lower := int(math.Floor(index))
		upper := int(math.Ceil(index))
		if lower == upper {
			return float64(sorted[lower])
		}
		frac := index - float64(lower)
		return float64(sorted[lower])*(1-frac) + float64(sorted[upper])*frac
	}

	stats := LatencyStats{
		Count: h.count,
		MinNs: h.min,
		MaxNs: h.max,
		MeanNs: float64(h.sum) / float64(h.count),
	}
	stats.MedianNs = percentile(50.0)
	stats.P50Ns = stats.MedianNs
	stats.P90Ns = percentile(90.0)
	stats.P95Ns = percentile(95.0)
	stats.P99Ns = percentile(99.0)
	stats.P999Ns = percentile(99.9)
	return stats
}

// Clear discards all recorded samples.
func (h *LatencyHistogram) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.writePos = 0
	h.count = 0
	h.min = math.MaxInt64
	h.max = 0
	h.sum = 0
}

// Count returns the number of samples recorded (may exceed capacity).
func (h *LatencyHistogram) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.count
}
