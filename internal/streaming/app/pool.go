package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"video_stream_service/internal/streaming/domain"
	"video_stream_service/internal/streaming/repository"
	"video_stream_service/pkg/logger"
	"video_stream_service/pkg/metrics"

	"go.uber.org/zap"
)

// JobSource the dequeue half of the job queue
type JobSource interface {
	Dequeue(ctx context.Context) (domain.JobDelivery, error)
}

// Pool fixed number of workers fed by one dispatcher through a bounded channel.
// A job is only dequeued once a worker slot is free.
type Pool struct {
	source     JobSource
	supervisor *Supervisor
	events     repository.JobEventPublisher
	workers    int

	// ErrorBackoff pause after a dequeue error other than an empty poll
	ErrorBackoff time.Duration

	jobs   chan domain.JobDelivery
	slots  chan struct{}
	cancel context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.Mutex
	state  poolState
	now    func() time.Time
}

type poolState int

const (
	poolIdle poolState = iota
	poolRunning
	poolStopped
)

// NewPool create Pool, workers < 1 is treated as 1
func NewPool(source JobSource, supervisor *Supervisor, events repository.JobEventPublisher, workers int) *Pool {
	if workers < 1 {
		workers = 1
	}
	return &Pool{
		source:       source,
		supervisor:   supervisor,
		events:       events,
		workers:      workers,
		ErrorBackoff: time.Second,
		now:          time.Now,
	}
}

// Workers pool size
func (p *Pool) Workers() int { return p.workers }

// Running true between Start and Stop
func (p *Pool) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state == poolRunning
}

// Start launches the dispatcher and the workers, a second call is a no-op
func (p *Pool) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != poolIdle {
		return
	}
	p.state = poolRunning

	ctx, p.cancel = context.WithCancel(ctx)
	p.jobs = make(chan domain.JobDelivery, p.workers)
	p.slots = make(chan struct{}, p.workers)
	for i := 0; i < p.workers; i++ {
		p.slots <- struct{}{}
	}

	var workers sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		workers.Add(1)
		go func(id int) {
			defer workers.Done()
			p.work(ctx, id)
		}(i)
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.dispatch(ctx)
		close(p.jobs)
		workers.Wait()
	}()

	logger.Log.Info("worker pool started", zap.Int("workers", p.workers))
}

// Stop stops dequeuing and waits for in-flight jobs to finish
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.state != poolRunning {
		p.mu.Unlock()
		return
	}
	p.state = poolStopped
	cancel := p.cancel
	p.mu.Unlock()

	cancel()
	p.wg.Wait()
	logger.Log.Info("worker pool drained")
}

func (p *Pool) dispatch(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-p.slots:
		}

		d, err := p.source.Dequeue(ctx)
		if err != nil {
			p.slots <- struct{}{}
			if ctx.Err() != nil {
				return
			}
			if !errors.Is(err, repository.ErrQueueEmpty) {
				logger.Log.Error("dequeue failed", zap.Error(err))
				select {
				case <-ctx.Done():
					return
				case <-time.After(p.ErrorBackoff):
				}
			}
			continue
		}
		// a slot was reserved, the buffered send never blocks
		p.jobs <- d
	}
}

func (p *Pool) work(ctx context.Context, id int) {
	// in-flight encodes finish even after Stop
	runCtx := context.WithoutCancel(ctx)
	for d := range p.jobs {
		p.handle(runCtx, id, d)
		p.slots <- struct{}{}
	}
}

func (p *Pool) handle(ctx context.Context, workerID int, d domain.JobDelivery) {
	job := d.Job()
	log := logger.Log.With(zap.Int("worker", workerID), zap.String("job_id", job.ID), zap.String("video_id", job.VideoID))

	metrics.JobsInFlight.Inc()
	defer metrics.JobsInFlight.Dec()

	start := p.now()
	video, attempts, err := p.supervisor.Execute(ctx, job)
	elapsed := p.now().Sub(start)
	metrics.JobDuration.Observe(elapsed.Seconds())

	event := domain.JobEvent{
		JobID:      job.ID,
		VideoID:    job.VideoID,
		GroupID:    job.GroupID,
		Attempts:   attempts,
		DurationMS: elapsed.Milliseconds(),
		OccurredAt: p.now().UTC(),
	}

	if err != nil {
		metrics.JobsTotal.WithLabelValues(string(domain.JobFailed)).Inc()
		log.Error("job failed", zap.Int("attempts", attempts), zap.Duration("duration", elapsed), zap.Error(err))
		if ferr := d.Fail(err); ferr != nil {
			log.Error("mark job failed", zap.Error(ferr))
		}
		event.Type = domain.JobEventFailed
		event.Error = err.Error()
	} else {
		metrics.JobsTotal.WithLabelValues(string(domain.JobCompleted)).Inc()
		log.Info("job completed", zap.Int("attempts", attempts), zap.Duration("duration", elapsed))
		if cerr := d.Complete(); cerr != nil {
			log.Error("mark job completed", zap.Error(cerr))
		}
		event.Type = domain.JobEventCompleted
		for _, q := range video.Qualities {
			event.Qualities = append(event.Qualities, q.Resolution)
		}
	}

	if p.events != nil {
		if perr := p.events.Publish(ctx, event); perr != nil {
			log.Warn("publish job event", zap.Error(perr))
		}
	}
}
