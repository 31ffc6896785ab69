// Package broadcaster streams fill reports off the matching path. The
// service publishes into a bounded queue and never waits; a single
// background loop encodes each report and hands it to a Sink.
package broadcaster

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"

	"matchbook/infra/logger"
	"matchbook/infra/metrics"
)

type Options struct {
	QueueSize    int
	WriteTimeout time.Duration
}

func (o Options) withDefaults() Options {
	if o.QueueSize <= 0 {
		o.QueueSize = 1024
	}
	if o.WriteTimeout <= 0 {
		o.WriteTimeout = 2 * time.Second
	}
	return o
}

type Broadcaster struct {
	sink    Sink
	ser     Serializer
	log     *logger.Logger
	metrics *metrics.Recorder

	queue   chan FillReport
	timeout time.Duration

	sent    atomic.Uint64
	failed  atomic.Uint64
	dropped atomic.Uint64
}

// Stats are cumulative counts since construction.
type Stats struct {
	Sent    uint64
	Failed  uint64
	Dropped uint64
}

// ------------------------------------------------
// CONSTRUCTOR
// ------------------------------------------------

func New(sink Sink, ser Serializer, log *logger.Logger, m *metrics.Recorder, opts Options) *Broadcaster {
	opts = opts.withDefaults()
	if log == nil {
		log = logger.Nop()
	}
	return &Broadcaster{
		sink:    sink,
		ser:     ser,
		log:     log.Component("broadcaster"),
		metrics: m,
		queue:   make(chan FillReport, opts.QueueSize),
		timeout: opts.WriteTimeout,
	}
}

// ------------------------------------------------
// PUBLISH (matching path)
// ------------------------------------------------

// Publish enqueues r without blocking. It returns false when the queue
// is full and the report was dropped.
func (b *Broadcaster) Publish(r FillReport) bool {
	select {
	case b.queue <- r:
		return true
	default:
		b.dropped.Add(1)
		b.metrics.ReportDropped()
		b.log.Warn("fill report dropped", "id", r.ID, "queue", cap(b.queue))
		return false
	}
}

// ------------------------------------------------
// RUN LOOP
// ------------------------------------------------

// Run delivers reports until ctx is cancelled, then drains whatever is
// still queued and closes the sink. Send failures are logged and the
// report is not retried.
func (b *Broadcaster) Run(ctx context.Context) error {
	b.log.Info("started", "encoding", b.ser.Name())

	for {
		select {
		case <-ctx.Done():
			n := b.drain(ctx)
			b.log.Info("stopped", "drained", n)
			if err := b.sink.Close(); err != nil {
				return errors.Wrap(err, "close sink")
			}
			return nil

		case r := <-b.queue:
			b.deliver(ctx, r)
		}
	}
}

func (b *Broadcaster) drain(ctx context.Context) int {
	n := 0
	for {
		select {
		case r := <-b.queue:
			b.deliver(ctx, r)
			n++
		default:
			return n
		}
	}
}

func (b *Broadcaster) deliver(ctx context.Context, r FillReport) {
	payload, err := b.ser.Encode(r)
	if err != nil {
		b.failed.Add(1)
		b.metrics.ReportSent(err)
		b.log.Error("encode fill report", "id", r.ID, "err", err)
		return
	}

	// Shutdown must not abort the final sends.
	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), b.timeout)
	defer cancel()

	err = b.sink.Send(sendCtx, r.Key(), payload)
	b.metrics.ReportSent(err)
	if err != nil {
		b.failed.Add(1)
		b.log.Error("send fill report", "id", r.ID, "err", err)
		return
	}
	b.sent.Add(1)
}

func (b *Broadcaster) Stats() Stats {
	return Stats{
		Sent:    b.sent.Load(),
		Failed:  b.failed.Load(),
		Dropped: b.dropped.Load(),
	}
}

// Pending is the number of reports waiting in the queue.
func (b *Broadcaster) Pending() int {
	return len(b.queue)
}
