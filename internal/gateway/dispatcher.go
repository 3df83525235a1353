package gateway

import (
	"context"
	"hash/fnv"

	"github.com/rs/zerolog"

	"github.com/campuscare/campuscare/internal/core/domain"
)

const (
	defaultWorkers = 8
	channelBuffer  = 256
)

type dispatchItem struct {
	channel string
	event   *domain.Event
}

// Dispatcher routes bus events to a fixed set of workers using consistent
// hashing on the channel name, guaranteeing per-channel delivery ordering.
type Dispatcher struct {
	workers []chan dispatchItem
	hub     *Hub
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, hub *Hub, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan dispatchItem, numWorkers),
		hub:     hub,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan dispatchItem, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue sends an event to the worker responsible for its channel.
// The call is non-blocking up to channelBuffer capacity.
func (d *Dispatcher) Enqueue(channel string, event *domain.Event) {
	d.workers[d.shardIndex(channel)] <- dispatchItem{channel: channel, event: event}
}

// shardIndex maps a channel name deterministically to a worker index.
func (d *Dispatcher) shardIndex(channel string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(channel))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan dispatchItem) {
	for {
		select {
		case <-ctx.Done():
			return
		case item, ok := <-ch:
			if !ok {
				return
			}
			d.hub.Dispatch(item.channel, item.event)
			d.log.Debug().
				Str("channel", item.channel).
				Str("event_type", string(item.event.Type)).
				Int("worker_id", id).
				Msg("event dispatched")
		}
	}
}
