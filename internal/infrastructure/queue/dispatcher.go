package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/devconnector/connector-api/internal/api/metrics"
	"github.com/devconnector/connector-api/internal/core/domain"
	"github.com/devconnector/connector-api/internal/core/ports"
)

const (
	defaultWorkers = 8
	channelBuffer  = 256
	persistTimeout = 5 * time.Second
)

// Dispatcher persists activities on a fixed set of workers sharded by user
// id, so one user's activities are written in the order they happened.
type Dispatcher struct {
	workers []chan domain.Activity
	repo    ports.ActivityRepository
	log     zerolog.Logger
	wg      sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, repo ports.ActivityRepository, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan domain.Activity, numWorkers),
		repo:    repo,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.Activity, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers drain their channel and stop
// when ctx is cancelled; Wait blocks until they have.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Enqueue hands an activity to the worker owning its user. It never blocks
// a request: when the worker is saturated the activity is dropped.
func (d *Dispatcher) Enqueue(activity domain.Activity) {
	idx := d.shardIndex(activity.UserID)
	select {
	case d.workers[idx] <- activity:
		metrics.ActivityQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	default:
		metrics.ActivitiesTotal.WithLabelValues("dropped").Inc()
		d.log.Warn().
			Str("user_id", activity.UserID).
			Str("action", string(activity.Action)).
			Int("worker_id", idx).
			Msg("activity queue full, dropping")
	}
}

// shardIndex maps a user id deterministically to a worker index.
func (d *Dispatcher) shardIndex(userID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.Activity) {
	defer d.wg.Done()
	label := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			d.drain(id, ch)
			return
		case activity := <-ch:
			metrics.ActivityQueueDepth.WithLabelValues(label).Set(float64(len(ch)))
			d.persist(context.Background(), id, activity)
		}
	}
}

// drain flushes what is already queued at shutdown.
func (d *Dispatcher) drain(id int, ch <-chan domain.Activity) {
	for {
		select {
		case activity := <-ch:
			d.persist(context.Background(), id, activity)
		default:
			return
		}
	}
}

func (d *Dispatcher) persist(ctx context.Context, id int, activity domain.Activity) {
	ctx, cancel := context.WithTimeout(ctx, persistTimeout)
	defer cancel()

	start := time.Now()
	err := d.repo.Insert(ctx, &activity)
	metrics.ActivityPersistDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.ActivitiesTotal.WithLabelValues("failed").Inc()
		d.log.Error().Err(err).
			Str("user_id", activity.UserID).
			Str("action", string(activity.Action)).
			Int("worker_id", id).
			Msg("activity persistence failed")
		return
	}
	metrics.ActivitiesTotal.WithLabelValues("persisted").Inc()
}
