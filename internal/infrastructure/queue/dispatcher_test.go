package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vavastapak/account-service/internal/core/domain"
	"github.com/vavastapak/account-service/internal/pkg/metrics"
)

type recordingSender struct {
	mu    sync.Mutex
	sent  []domain.Notification
	err   error
	block chan struct{}
}

func (s *recordingSender) Send(ctx context.Context, n domain.Notification) error {
	if s.block != nil {
		select {
		case <-s.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, n)
	return nil
}

func (s *recordingSender) snapshot() []domain.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Notification(nil), s.sent...)
}

func TestDispatcher_DeliversInOrderPerRecipient(t *testing.T) {
	sender := &recordingSender{}
	d := NewDispatcher(3, time.Second, sender, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	for _, id := range []string{"1", "2", "3"} {
		require.True(t, d.Enqueue(domain.Notification{ID: id, To: "alice@example.com"}))
	}

	require.Eventually(t, func() bool { return len(sender.snapshot()) == 3 }, time.Second, 5*time.Millisecond)
	got := sender.snapshot()
	assert.Equal(t, []string{"1", "2", "3"}, []string{got[0].ID, got[1].ID, got[2].ID})
}

func TestDispatcher_EnqueueNeverBlocks(t *testing.T) {
	sender := &recordingSender{block: make(chan struct{})}
	d := NewDispatcher(1, time.Second, sender, zerolog.Nop())
	// Workers not started: the buffer fills and further messages are dropped.

	dropped := testutil.ToFloat64(metrics.NotificationsTotal.WithLabelValues("dropped"))
	for i := 0; i < channelBuffer; i++ {
		require.True(t, d.Enqueue(domain.Notification{To: "alice@example.com"}))
	}

	done := make(chan bool)
	go func() { done <- d.Enqueue(domain.Notification{To: "alice@example.com"}) }()

	select {
	case ok := <-done:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("Enqueue blocked on a full queue")
	}
	assert.Equal(t, dropped+1, testutil.ToFloat64(metrics.NotificationsTotal.WithLabelValues("dropped")))
}

func TestDispatcher_SendFailureIsCounted(t *testing.T) {
	sender := &recordingSender{err: errors.New("smtp down")}
	d := NewDispatcher(1, time.Second, sender, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	failed := testutil.ToFloat64(metrics.NotificationsTotal.WithLabelValues("failed"))
	d.Start(ctx)
	require.True(t, d.Enqueue(domain.Notification{To: "alice@example.com"}))

	require.Eventually(t, func() bool {
		return testutil.ToFloat64(metrics.NotificationsTotal.WithLabelValues("failed")) == failed+1
	}, time.Second, 5*time.Millisecond)
}

func TestDispatcher_SendTimeout(t *testing.T) {
	sender := &recordingSender{block: make(chan struct{})}
	d := NewDispatcher(1, 20*time.Millisecond, sender, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	failed := testutil.ToFloat64(metrics.NotificationsTotal.WithLabelValues("failed"))
	d.Start(ctx)
	require.True(t, d.Enqueue(domain.Notification{To: "slow@example.com"}))

	require.Eventually(t, func() bool {
		return testutil.ToFloat64(metrics.NotificationsTotal.WithLabelValues("failed")) >= failed+1
	}, time.Second, 5*time.Millisecond)
}

func TestDispatcher_ShardIndexIsStable(t *testing.T) {
	d := NewDispatcher(0, 0, &recordingSender{}, zerolog.Nop())
	assert.Len(t, d.workers, defaultWorkers)
	assert.Equal(t, defaultSendTimeout, d.sendTimeout)

	first := d.shardIndex("alice@example.com")
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, d.shardIndex("alice@example.com"))
	}
}
