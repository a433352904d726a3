package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/namiiiah/Rent-Player-DiscordBot/internal/core/domain"
	"github.com/namiiiah/Rent-Player-DiscordBot/internal/core/ports"
	"github.com/namiiiah/Rent-Player-DiscordBot/internal/metrics"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// job is either a notification or a countdown frame.
type job struct {
	notification *domain.Notification
	frame        *domain.CountdownFrame
}

func (j job) channel() string {
	if j.notification != nil {
		return j.notification.Channel
	}
	return j.frame.Channel
}

// Dispatcher hands notifications to a sink on a fixed set of workers, sharded
// by target channel so messages to one channel keep their order. It
// implements ports.Notifier and never blocks the caller: a job that finds its
// worker queue full is dropped and counted.
type Dispatcher struct {
	workers []chan job
	sink    ports.Notifier
	log     zerolog.Logger
	wg      sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, sink ports.Notifier, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan job, numWorkers),
		sink:    sink,
		log:     log.With().Str("component", "dispatcher").Logger(),
	}
	for i := range d.workers {
		d.workers[i] = make(chan job, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Wait blocks until every worker has returned.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Notify queues n for delivery.
func (d *Dispatcher) Notify(_ context.Context, n domain.Notification) error {
	d.enqueue(job{notification: &n}, string(n.Kind))
	return nil
}

// Display queues a countdown frame for delivery.
func (d *Dispatcher) Display(_ context.Context, f domain.CountdownFrame) error {
	d.enqueue(job{frame: &f}, "countdown_frame")
	return nil
}

func (d *Dispatcher) enqueue(j job, kind string) {
	idx := d.shardIndex(j.channel())
	select {
	case d.workers[idx] <- j:
		metrics.NotifyQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	default:
		metrics.NotificationsTotal.WithLabelValues(kind, "dropped").Inc()
		d.log.Warn().Str("kind", kind).Str("channel", j.channel()).Int("worker_id", idx).Msg("notify queue full, dropping")
	}
}

// shardIndex maps a channel deterministically to a worker index.
func (d *Dispatcher) shardIndex(channel string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(channel))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan job) {
	defer d.wg.Done()
	label := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-ch:
			metrics.NotifyQueueDepth.WithLabelValues(label).Set(float64(len(ch)))
			d.deliver(ctx, id, j)
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, id int, j job) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error().Interface("panic", r).Int("worker_id", id).Msg("notification sink panicked")
		}
	}()

	if j.notification != nil {
		n := *j.notification
		if err := d.sink.Notify(ctx, n); err != nil {
			metrics.NotificationsTotal.WithLabelValues(string(n.Kind), "failed").Inc()
			d.log.Error().Err(err).
				Str("kind", string(n.Kind)).
				Str("channel", n.Channel).
				Int("worker_id", id).
				Msg("notification delivery failed")
			return
		}
		metrics.NotificationsTotal.WithLabelValues(string(n.Kind), "sent").Inc()
		return
	}

	if err := d.sink.Display(ctx, *j.frame); err != nil {
		d.log.Debug().Err(err).Str("channel", j.frame.Channel).Int("worker_id", id).Msg("frame delivery failed")
	}
}
