package service

import (
	"sync"
	"time"

	"github.com/cockroachdb/errors"

	"matchbook/domain/orderbook"
	"matchbook/infra/logger"
	"matchbook/infra/metrics"
	"matchbook/jobs/broadcaster"
	"matchbook/snapshot"
)

// Reporter receives one report per handled order. Publish must not block.
type Reporter interface {
	Publish(broadcaster.FillReport) bool
}

// Clock is injected so tests can control elapsed time.
type Clock func() time.Time

// Fill is the service-level result of an incoming order.
type Fill struct {
	orderbook.Execution
	Requested int64
	Elapsed   time.Duration
}

/*
OrderService owns the book. Mutators take the write lock, queries take
the read lock. Metrics, logging and reporting happen after the lock is
released.
*/
type OrderService struct {
	mu   sync.RWMutex
	book *orderbook.OrderBook

	log      *logger.Logger
	metrics  *metrics.Recorder
	reporter Reporter
	clock    Clock
}

// NewOrderService wires all dependencies. log, m and reporter may be nil;
// a nil clock means time.Now.
func NewOrderService(
	book *orderbook.OrderBook,
	log *logger.Logger,
	m *metrics.Recorder,
	reporter Reporter,
	clock Clock,
) *OrderService {
	if log == nil {
		log = logger.Nop()
	}
	if clock == nil {
		clock = time.Now
	}
	return &OrderService{
		book:     book,
		log:      log.Component("orders"),
		metrics:  m,
		reporter: reporter,
		clock:    clock,
	}
}

//
// ──────────────────────────────────────────────────────────
// Commands
// ──────────────────────────────────────────────────────────
//

// AddOrder rests a new order on the book.
func (s *OrderService) AddOrder(qty int64, price float64, side orderbook.BookSide) error {
	s.mu.Lock()
	err := s.book.AddOrder(qty, price, side)
	levels := s.book.Levels(side)
	s.mu.Unlock()

	if err != nil {
		s.reject("add_order", err, "qty", qty, "price", price, "side", side.String())
		return err
	}

	s.metrics.OrderAdded(side.String())
	s.metrics.SetLevels(side.String(), levels)
	s.log.Debug("order added", "side", side.String(), "qty", qty, "price", price)
	return nil
}

// HandleOrder matches an incoming order and reports the outcome. An
// empty fill is a normal result, not an error.
func (s *OrderService) HandleOrder(
	typ orderbook.OrderType,
	qty int64,
	side orderbook.Side,
	limit float64,
) (Fill, error) {
	s.mu.Lock()
	start := s.clock()
	exec, err := s.book.HandleOrder(typ, qty, side, limit)
	end := s.clock()
	levels := s.book.Levels(side.Opposite())
	s.mu.Unlock()

	if err != nil {
		s.reject("handle_order", err, "type", typ.String(), "side", side.String(), "qty", qty, "limit", limit)
		return Fill{}, err
	}

	f := Fill{Execution: exec, Requested: qty, Elapsed: end.Sub(start)}

	s.metrics.ObserveHandle(typ.String(), side.String(), f.Elapsed, exec.Filled, exec.Notional)
	s.metrics.SetLevels(side.Opposite().String(), levels)

	if s.reporter != nil {
		s.reporter.Publish(broadcaster.NewFillReport(typ, side, qty, limit, exec, f.Elapsed, end))
	}

	s.log.Debug("order handled",
		"type", typ.String(),
		"side", side.String(),
		"requested", qty,
		"filled", exec.Filled,
		"notional", exec.Notional,
		"matches", len(exec.Matches),
		"elapsed", f.Elapsed,
	)
	return f, nil
}

//
// ──────────────────────────────────────────────────────────
// Queries
// ──────────────────────────────────────────────────────────
//

func (s *OrderService) BestQuote(side orderbook.BookSide) (float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.book.BestQuote(side)
}

func (s *OrderService) Spread() (float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.book.Spread()
}

// Snapshot copies up to depth levels per side; depth <= 0 means all.
func (s *OrderService) Snapshot(depth int) snapshot.Depth {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshot.Capture(s.book, depth)
}

func (s *OrderService) reject(op string, err error, attrs ...any) {
	reason := rejectReason(err)
	s.metrics.Rejected(op, reason)
	s.log.Warn("order rejected", append([]any{"op", op, "reason", reason, "err", err}, attrs...)...)
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, orderbook.ErrValidation):
		return "validation"
	case errors.Is(err, orderbook.ErrInvalidArgument):
		return "invalid_argument"
	default:
		return "other"
	}
}
