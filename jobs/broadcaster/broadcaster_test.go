package broadcaster

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matchbook/domain/orderbook"
	"matchbook/infra/logger"
	"matchbook/infra/metrics"
)

type recordingSink struct {
	mu      sync.Mutex
	keys    []string
	values  [][]byte
	failOn  int // 1-based send index to fail; 0 never
	calls   int
	closed  bool
	sendErr error
}

func (s *recordingSink) Send(ctx context.Context, key, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.calls == s.failOn {
		return s.sendErr
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.keys = append(s.keys, string(key))
	s.values = append(s.values, value)
	return nil
}

func (s *recordingSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *recordingSink) snapshot() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.values), s.closed
}

func report(filled int64) FillReport {
	exec := orderbook.Execution{Filled: filled, Notional: float64(filled) * 100}
	return NewFillReport(orderbook.Market, orderbook.Buy, 20, 0, exec, time.Microsecond, time.Unix(0, 0))
}

func TestRunDeliversAndDrainsOnCancel(t *testing.T) {
	sink := &recordingSink{}
	b := New(sink, JSONSerializer{}, logger.Nop(), nil, Options{QueueSize: 8})

	for i := int64(1); i <= 3; i++ {
		require.True(t, b.Publish(report(i)))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, b.Run(ctx))

	n, closed := sink.snapshot()
	assert.Equal(t, 3, n, "queued reports are drained on shutdown")
	assert.True(t, closed)
	assert.Equal(t, Stats{Sent: 3}, b.Stats())
	assert.Zero(t, b.Pending())
}

func TestRunDeliversWhileLive(t *testing.T) {
	sink := &recordingSink{}
	b := New(sink, JSONSerializer{}, logger.Nop(), nil, Options{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- b.Run(ctx) }()

	r := report(5)
	require.True(t, b.Publish(r))
	require.Eventually(t, func() bool {
		n, _ := sink.snapshot()
		return n == 1
	}, time.Second, 5*time.Millisecond)

	cancel()
	require.NoError(t, <-done)

	sink.mu.Lock()
	defer sink.mu.Unlock()
	assert.Equal(t, r.ID.String(), sink.keys[0])
	decoded, err := JSONSerializer{}.Decode(sink.values[0])
	require.NoError(t, err)
	assert.Equal(t, float64(5), decoded["filled"])
}

func TestPublishDropsWhenFull(t *testing.T) {
	m := metrics.New("test")
	b := New(&recordingSink{}, JSONSerializer{}, logger.Nop(), m, Options{QueueSize: 2})

	assert.True(t, b.Publish(report(1)))
	assert.True(t, b.Publish(report(2)))
	assert.False(t, b.Publish(report(3)))

	assert.Equal(t, uint64(1), b.Stats().Dropped)
	assert.Equal(t, 2, b.Pending())
}

func TestSendFailureIsCountedNotRetried(t *testing.T) {
	sink := &recordingSink{failOn: 1, sendErr: errors.New("broker unavailable")}
	b := New(sink, ProtoSerializer{}, logger.Nop(), nil, Options{QueueSize: 4})

	b.Publish(report(1))
	b.Publish(report(2))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, b.Run(ctx))

	assert.Equal(t, Stats{Sent: 1, Failed: 1}, b.Stats())
	n, _ := sink.snapshot()
	assert.Equal(t, 1, n)
}

func TestLogSinkAcceptsBothEncodings(t *testing.T) {
	s := NewLogSink(logger.Nop())
	r := report(1)

	for _, ser := range []Serializer{JSONSerializer{}, ProtoSerializer{}} {
		payload, err := ser.Encode(r)
		require.NoError(t, err)
		assert.NoError(t, s.Send(context.Background(), r.Key(), payload), ser.Name())
	}
	assert.NoError(t, s.Close())
}
