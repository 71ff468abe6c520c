package utils

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Job is a unit of scheduled work. ctx is cancelled when the scheduler stops.
type Job func(ctx context.Context)

type scheduledJob struct {
	name string
	spec string
	fn   Job
}

// Scheduler runs registered jobs on cron specs. Start and Stop may be called
// any number of times.
type Scheduler struct {
	name string
	log  *zap.SugaredLogger

	mu     sync.Mutex
	cron   *cron.Cron
	cancel context.CancelFunc
	jobs   []scheduledJob
}

func NewScheduler(name string, log *zap.SugaredLogger) *Scheduler {
	return &Scheduler{name: name, log: log}
}

// AddJob registers fn under spec. Jobs added while running take effect on the
// next Start.
func (s *Scheduler) AddJob(name, spec string, fn Job) error {
	if _, err := cron.ParseStandard(spec); err != nil {
		return fmt.Errorf("invalid schedule %q for %s: %w", spec, name, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs = append(s.jobs, scheduledJob{name: name, spec: spec, fn: fn})
	return nil
}

func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil {
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := cron.New()
	for _, job := range s.jobs {
		job := job
		if _, err := c.AddFunc(job.spec, func() { s.run(ctx, job) }); err != nil {
			cancel()
			return fmt.Errorf("schedule %s: %w", job.name, err)
		}
	}

	c.Start()
	s.cron = c
	s.cancel = cancel
	s.log.Infow(fmt.Sprintf("[%s] Scheduler started", s.name), "jobs", len(s.jobs))
	return nil
}

// Stop halts the scheduler and waits for running jobs to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	c, cancel := s.cron, s.cancel
	s.cron, s.cancel = nil, nil
	s.mu.Unlock()

	if c == nil {
		return
	}
	cancel()
	<-c.Stop().Done()
	s.log.Infof("[%s] Scheduler stopped", s.name)
}

func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cron != nil
}

func (s *Scheduler) run(ctx context.Context, job scheduledJob) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Errorw(fmt.Sprintf("[%s] Job panicked", s.name), "job", job.name, "panic", r)
		}
	}()
	job.fn(ctx)
}
