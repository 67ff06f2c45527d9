package scheduler

import (
	"context"
	"fmt"
	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/robfig/cron/v3"
	"sync"
	"time"
)

const (
	DefaultReminderSpec = "0 10 * * *"
	BufferSweepSpec     = "@every 60s"
	KeepAliveSpec       = "*/14 * * * *"
)

var runsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "scheduler_job_runs_total",
		Help: "Scheduled job runs by job and outcome",
	},
	[]string{"job", "outcome"},
)

// Scheduler runs periodic jobs. A run that is still going when its next tick
// comes is skipped rather than stacked.
type Scheduler struct {
	cron *cron.Cron

	mu      sync.Mutex
	ctx     context.Context
	entries map[string]cron.EntryID
}

func New(location *time.Location) *Scheduler {
	if location == nil {
		location = time.UTC
	}
	logger := cron.PrintfLogger(log.FromContext(context.Background()))

	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(location),
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
		ctx:     context.Background(),
		entries: map[string]cron.EntryID{},
	}
}

// Add registers fn under name. fn gets the context Run was called with.
func (s *Scheduler) Add(name, spec string, fn func(ctx context.Context) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[name]; ok {
		return fmt.Errorf("job %s already registered", name)
	}

	id, err := s.cron.AddFunc(spec, func() { s.run(name, fn) })
	if err != nil {
		return fmt.Errorf("invalid schedule %q for job %s: %w", spec, name, err)
	}
	s.entries[name] = id
	return nil
}

func (s *Scheduler) run(name string, fn func(ctx context.Context) error) {
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()

	ctx = log.ContextWithCorrelationID(ctx, "cron_"+name+"_"+uuid.NewString())
	logger := log.FromContext(ctx).WithField("job", name)

	start := time.Now()
	if err := fn(ctx); err != nil {
		runsTotal.WithLabelValues(name, "error").Inc()
		logger.WithError(err).Error("Scheduled job failed")
		return
	}
	runsTotal.WithLabelValues(name, "ok").Inc()
	logger.WithField("duration", time.Since(start)).Debug("Scheduled job finished")
}

// Next reports when the job is due next. The zero time means unknown or not started.
func (s *Scheduler) Next(name string) time.Time {
	s.mu.Lock()
	id, ok := s.entries[name]
	s.mu.Unlock()
	if !ok {
		return time.Time{}
	}
	return s.cron.Entry(id).Next
}

// Run starts the jobs and blocks until ctx is done, then waits for running jobs.
func (s *Scheduler) Run(ctx context.Context) error {
	s.mu.Lock()
	s.ctx = ctx
	s.mu.Unlock()

	s.cron.Start()
	<-ctx.Done()
	<-s.cron.Stop().Done()

	return nil
}
