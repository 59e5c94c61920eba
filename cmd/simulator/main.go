// Command simulator is the external CLI collaborator that wires a producer
// goroutine, the bounded SPSC queue, and the matching engine together, and
// optionally replays a CSV order file instead of generating synthetic
// traffic. It is deliberately outside internal/ — everything the core
// cares about (the engine's consumer loop, the queue, the book) works the
// same whether this binary or a test harness is the producer.
//
// Flags mirror the hosting binary's documented external contract: --orders,
// --traders (T=1 is the only core-supported value; T>1 only changes which
// TraderID a single producer stamps on each event), --seed, --pin, --log,
// --help. Exit 0 on success, exit 1 on fatal configuration or I/O error.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rishav/order-matching-engine/internal/csvreplay"
	"github.com/rishav/order-matching-engine/internal/engine"
	"github.com/rishav/order-matching-engine/internal/obslog"
	"github.com/rishav/order-matching-engine/internal/spscqueue"
	"github.com/rishav/order-matching-engine/internal/types"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		numOrders     = flag.Int("orders", 10_000, "number of synthetic orders to generate (ignored with -csv)")
		numTraders    = flag.Int("traders", 50, "number of synthetic trader accounts")
		seed          = flag.Int64("seed", 1, "PRNG seed for synthetic order generation")
		pin           = flag.Bool("pin", false, "call the engine's pin-to-core hook for CPU core 0 (this binary performs no OS-level pinning)")
		logPath       = flag.String("log", "", "write trade/rejection log lines to this file instead of stderr")
		queueCapacity = flag.Uint64("queue-capacity", 1024, "SPSC queue capacity (power of 2)")
		csvPath       = flag.String("csv", "", "replay orders from this CSV file instead of generating synthetic traffic")
	)
	flag.Parse()

	runID := uuid.New().String()

	zapLogger, closeLog, err := buildLogger(*logPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "simulator: %v\n", err)
		return 1
	}
	defer closeLog()
	zapLogger = zapLogger.With(zap.String("run_id", runID))

	logSink := obslog.New(zapLogger, obslog.DefaultQueueSize)
	defer logSink.Close()

	queue := spscqueue.New[types.OrderEvent](*queueCapacity)

	cfg := engine.DefaultConfig()
	cfg.MaxTraders = *numTraders
	cfg.Logger = logSink
	if *pin {
		cfg.PinToCore = pinToCore
	}
	eng := engine.New(queue, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		zapLogger.Info("shutdown signal received")
		cancel()
	}()

	done := make(chan struct{})
	go func() {
		eng.Run(ctx)
		close(done)
	}()

	if *csvPath != "" {
		if err := replayCSV(*csvPath, queue); err != nil {
			zapLogger.Error("csv replay failed", zap.Error(err))
			cancel()
			<-done
			return 1
		}
	} else {
		runSyntheticProducer(ctx, queue, *seed, *numTraders, *numOrders)
	}

	cancel()
	<-done

	snap := eng.Stats().Latency.ComputeStats()
	fmt.Printf("run_id=%s events_processed=%d trades=%d volume=%d rejected=%d p50=%.0fns p99=%.0fns\n",
		runID, eng.EventsProcessed(), eng.Stats().TradeCount(), eng.Stats().Volume(),
		eng.Stats().RejectedCount(), snap.P50Ns, snap.P99Ns)
	return 0
}

// buildLogger constructs the zap logger this run writes to: stderr by
// default, or logPath if given. The returned close func must run before
// exit so buffered lines flush.
func buildLogger(logPath string) (*zap.Logger, func(), error) {
	cfg := zap.NewProductionConfig()
	if logPath == "" {
		cfg.OutputPaths = []string{"stderr"}
		logger, err := cfg.Build()
		if err != nil {
			return nil, nil, fmt.Errorf("building logger: %w", err)
		}
		return logger, func() { _ = logger.Sync() }, nil
	}

	cfg.OutputPaths = []string{logPath}
	logger, err := cfg.Build()
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file %s: %w", logPath, err)
	}
	return logger, func() { _ = logger.Sync() }, nil
}

// pinToCore is the engine's PinToCore hook when -pin is set. Actual OS
// affinity is an external-collaborator concern this core deliberately
// excludes (see SPEC_FULL.md); this best-effort stub exists only to give
// the CLI flag somewhere to land.
func pinToCore(core int) error {
	return nil
}

func replayCSV(path string, queue *spscqueue.Queue[types.OrderEvent]) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	records, err := csvreplay.Parse(f)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}

	for _, rec := range records {
		event := rec.Event
		event.EnqueueTime = types.Timestamp(time.Now().UnixNano())
		queue.Push(event)
	}
	return nil
}

// runSyntheticProducer is the CLI's own traffic generator — explicitly an
// external-collaborator concern, not a core module: it exists only so this
// binary is runnable without a CSV file on hand. The seed makes a run
// reproducible.
func runSyntheticProducer(ctx context.Context, queue *spscqueue.Queue[types.OrderEvent], seed int64, numTraders, numOrders int) {
	rng := rand.New(rand.NewSource(seed))

	for i := 1; i <= numOrders; i++ {
		select {
		case <-ctx.Done():
			return
		default:
		}
		event := randomEvent(rng, uint64(i), numTraders)
		queue.Push(event)
	}
}

func randomEvent(rng *rand.Rand, orderID uint64, numTraders int) types.OrderEvent {
	trader := types.TraderID(rng.Intn(numTraders))
	side := types.Buy
	if rng.Intn(2) == 1 {
		side = types.Sell
	}
	basePrice := types.Price(10_000 + rng.Intn(2_000))
	qty := types.Qty(1 + rng.Intn(200))
	now := types.Timestamp(time.Now().UnixNano())

	if rng.Intn(10) == 0 {
		return types.NewMarketEvent(types.OrderID(orderID), trader, side, qty, now)
	}
	return types.NewLimitEvent(types.OrderID(orderID), trader, side, basePrice, qty, now)
}
