// Package obslog provides the matching engine's optional logger sink: a
// thin, non-blocking adapter around a structured zap logger.
//
// The engine's hot path must never stall on I/O, so Log never blocks: if
// the sink is backed up, the message is dropped and counted rather than
// queued without bound, the same drop-on-backpressure policy the bounded
// SPSC queue's try-push family uses for the main event path.
package obslog

import (
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"
)

// Sink is the logging boundary the matching engine depends on. Anything
// satisfying this interface — including a *Logger — can be plugged in.
type Sink interface {
	Log(format string, args ...any)
}

// Logger adapts a *zap.Logger to the engine's Sink contract, tracking how
// many messages were logged versus dropped.
type Logger struct {
	zap *zap.Logger

	queue chan string

	messagesLogged  atomic.Uint64
	messagesDropped atomic.Uint64

	done chan struct{}
}

// DefaultQueueSize bounds how many pending log lines may be buffered before
// new ones are dropped.
const DefaultQueueSize = 4096

// New constructs a Logger backed by zapLogger, draining its internal queue
// on a background goroutine so Log itself never blocks on an I/O write.
func New(zapLogger *zap.Logger, queueSize int) *Logger {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	l := &Logger{
		zap:   zapLogger,
		queue: make(chan string, queueSize),
		done:  make(chan struct{}),
	}
	go l.drain()
	return l
}

func (l *Logger) drain() {
	defer close(l.done)
	for msg := range l.queue {
		l.zap.Info(msg)
	}
}

// Log formats and enqueues a log line. If the internal queue is full, the
// message is dropped and counted rather than blocking the caller.
func (l *Logger) Log(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	select {
	case l.queue <- msg:
		l.messagesLogged.Add(1)
	default:
		l.messagesDropped.Add(1)
	}
}

// MessagesLogged returns the number of messages successfully enqueued.
func (l *Logger) MessagesLogged() uint64 { return l.messagesLogged.Load() }

// MessagesDropped returns the number of messages dropped due to backpressure.
func (l *Logger) MessagesDropped() uint64 { return l.messagesDropped.Load() }

// Close stops accepting new messages and waits for the queue to drain.
func (l *Logger) Close() error {
	close(l.queue)
	<-l.done
	return l.zap.Sync()
}
