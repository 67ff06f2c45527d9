package notification

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"ticketsale/internal/domain/sales"
	"time"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
)

// Overflow receives jobs that exhausted their in-memory retries.
type Overflow interface {
	Add(job Job, cause error) (string, error)
}

// Result reports the final outcome of a job in the queue.
type Result struct {
	Job        Job
	Err        error
	Buffered   bool
	BufferFile string
}

type QueueConfig struct {
	MaxRetries    int
	RetryDelay    func(attempts int) time.Duration
	Now           func() time.Time
	ResultsBuffer int
}

func (c *QueueConfig) setDefaults() {
	if c.MaxRetries <= 0 {
		c.MaxRetries = MaxRetries
	}
	if c.RetryDelay == nil {
		c.RetryDelay = RetryDelay
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	if c.ResultsBuffer <= 0 {
		c.ResultsBuffer = 100
	}
}

// Queue delivers jobs one at a time. High priority jobs are served before normal
// ones, FIFO within a lane. Failed jobs are retried in place until MaxRetries,
// then handed to the overflow buffer.
type Queue struct {
	deliverer Deliverer
	overflow  Overflow
	config    QueueConfig

	mu     sync.Mutex
	high   []Job
	normal []Job

	wake    chan struct{}
	results chan Result
}

func NewQueue(deliverer Deliverer, overflow Overflow, config QueueConfig) *Queue {
	if deliverer == nil {
		panic("missing deliverer")
	}
	if overflow == nil {
		panic("missing overflow")
	}
	config.setDefaults()

	return &Queue{
		deliverer: deliverer,
		overflow:  overflow,
		config:    config,
		wake:      make(chan struct{}, 1),
		results:   make(chan Result, config.ResultsBuffer),
	}
}

func (q *Queue) Enqueue(job Job) {
	q.mu.Lock()
	if job.Priority == PriorityHigh {
		q.high = append(q.high, job)
	} else {
		q.normal = append(q.normal, job)
	}
	queueLength.Set(float64(len(q.high) + len(q.normal)))
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// Results emits one Result per finished job. Results are dropped when nobody reads them.
func (q *Queue) Results() <-chan Result {
	return q.results
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.high) + len(q.normal)
}

// Run is the single worker loop. It returns when ctx is cancelled.
func (q *Queue) Run(ctx context.Context) error {
	for {
		job, wait, ok := q.next()
		if ok {
			q.process(ctx, job)
			continue
		}

		var timer *time.Timer
		var timeout <-chan time.Time
		if wait > 0 {
			timer = time.NewTimer(wait)
			timeout = timer.C
		}

		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case <-q.wake:
		case <-timeout:
		}

		if timer != nil {
			timer.Stop()
		}
	}
}

// next pops the first due job. Otherwise it returns how long until one is due,
// or zero when the queue is empty.
func (q *Queue) next() (Job, time.Duration, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	now := q.config.Now()
	var earliest time.Time

	for _, lane := range []*[]Job{&q.high, &q.normal} {
		for i, job := range *lane {
			if !job.NextAttemptAt.After(now) {
				*lane = append((*lane)[:i:i], (*lane)[i+1:]...)
				queueLength.Set(float64(len(q.high) + len(q.normal)))
				return job, 0, true
			}
			if earliest.IsZero() || job.NextAttemptAt.Before(earliest) {
				earliest = job.NextAttemptAt
			}
		}
	}

	if earliest.IsZero() {
		return Job{}, 0, false
	}
	return Job{}, earliest.Sub(now), false
}

func (q *Queue) process(ctx context.Context, job Job) {
	job.Attempts++
	logger := log.FromContext(ctx).
		WithField("job_id", job.ID).
		WithField("type", job.Type).
		WithField("reference", job.Reference()).
		WithField("attempt", job.Attempts)

	start := time.Now()
	err := q.deliverer.Deliver(ctx, job)
	deliveryDuration.WithLabelValues(string(job.Type)).Observe(time.Since(start).Seconds())

	switch {
	case err == nil:
		jobsTotal.WithLabelValues(string(job.Type), outcomeDelivered).Inc()
		q.emit(Result{Job: job})

	case !sales.IsTransient(err):
		jobsTotal.WithLabelValues(string(job.Type), outcomeDropped).Inc()
		logger.WithError(err).Error("Notification job failed permanently")
		q.emit(Result{Job: job, Err: err})

	case job.Attempts < q.config.MaxRetries:
		delay := q.config.RetryDelay(job.Attempts)
		job.NextAttemptAt = q.config.Now().Add(delay)
		jobsTotal.WithLabelValues(string(job.Type), outcomeRetried).Inc()
		logger.WithError(err).WithField("retry_in", delay.String()).Warn("Notification job failed, retrying")
		q.requeue(job)

	default:
		name, bufErr := q.overflow.Add(job, err)
		if bufErr != nil {
			jobsTotal.WithLabelValues(string(job.Type), outcomeDropped).Inc()
			logger.WithError(bufErr).Error("Failed to buffer notification job")
			q.emit(Result{Job: job, Err: errors.Join(err, fmt.Errorf("failed to buffer job: %w", bufErr))})
			return
		}
		jobsTotal.WithLabelValues(string(job.Type), outcomeBuffered).Inc()
		logger.WithError(err).WithField("buffer_file", name).Warn("Notification job moved to durable buffer")
		q.emit(Result{Job: job, Err: err, Buffered: true, BufferFile: name})
	}
}

func (q *Queue) requeue(job Job) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if job.Priority == PriorityHigh {
		q.high = append(q.high, job)
	} else {
		q.normal = append(q.normal, job)
	}
	queueLength.Set(float64(len(q.high) + len(q.normal)))
}

func (q *Queue) emit(r Result) {
	select {
	case q.results <- r:
	default:
	}
}
