package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/vavastapak/account-service/internal/core/domain"
	"github.com/vavastapak/account-service/internal/core/ports"
	"github.com/vavastapak/account-service/internal/pkg/metrics"
)

const (
	defaultWorkers     = 4
	defaultSendTimeout = 15 * time.Second
	channelBuffer      = 256
)

// Dispatcher delivers notifications on a fixed set of workers. Messages for
// the same recipient always land on the same worker, so they go out in the
// order they were enqueued.
type Dispatcher struct {
	workers     []chan domain.Notification
	sender      ports.EmailSender
	sendTimeout time.Duration
	log         zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// Non-positive arguments select the defaults.
func NewDispatcher(numWorkers int, sendTimeout time.Duration, sender ports.EmailSender, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	if sendTimeout <= 0 {
		sendTimeout = defaultSendTimeout
	}
	d := &Dispatcher{
		workers:     make([]chan domain.Notification, numWorkers),
		sender:      sender,
		sendTimeout: sendTimeout,
		log:         log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.Notification, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue hands n to its worker without blocking. It returns false and drops
// the message when that worker's buffer is full.
func (d *Dispatcher) Enqueue(n domain.Notification) bool {
	idx := d.shardIndex(n.To)
	select {
	case d.workers[idx] <- n:
		metrics.NotificationQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
		return true
	default:
		metrics.NotificationsTotal.WithLabelValues("dropped").Inc()
		d.log.Warn().
			Str("notification_id", n.ID).
			Int("worker_id", idx).
			Msg("notification queue full, message dropped")
		return false
	}
}

// shardIndex maps a recipient deterministically to a worker index.
func (d *Dispatcher) shardIndex(recipient string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(recipient))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.Notification) {
	depth := metrics.NotificationQueueDepth.WithLabelValues(strconv.Itoa(id))
	for {
		select {
		case <-ctx.Done():
			return
		case n, ok := <-ch:
			if !ok {
				return
			}
			depth.Set(float64(len(ch)))
			d.deliver(ctx, id, n)
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, id int, n domain.Notification) {
	sendCtx, cancel := context.WithTimeout(ctx, d.sendTimeout)
	defer cancel()

	start := time.Now()
	err := d.sender.Send(sendCtx, n)
	metrics.NotificationSendDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.NotificationsTotal.WithLabelValues("failed").Inc()
		d.log.Error().Err(err).
			Str("notification_id", n.ID).
			Int("worker_id", id).
			Msg("notification delivery failed")
		return
	}
	metrics.NotificationsTotal.WithLabelValues("sent").Inc()
	d.log.Debug().Str("notification_id", n.ID).Int("worker_id", id).Msg("notification sent")
}
