package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/flashcording/agent-service/internal/agent"
	"github.com/flashcording/agent-service/internal/db"
	"github.com/flashcording/agent-service/internal/gamification"
	"github.com/flashcording/agent-service/internal/llm"
)

// ErrQueueFull is returned by Submit when the task queue has no room. The
// job record is already marked failed when this is returned.
var ErrQueueFull = errors.New("job queue is full")

// Store is the persistence surface the manager needs for job lifecycle
// transitions.
type Store interface {
	CreateJob(ctx context.Context, userID uuid.UUID, prompt string, contextJSON []byte, modelUsed string) (*db.AgentJob, error)
	StartJob(ctx context.Context, jobID uuid.UUID) error
	HeartbeatJob(ctx context.Context, jobID uuid.UUID) error
	CompleteJob(ctx context.Context, jobID uuid.UUID, resultJSON []byte, generatedCode, diff, currentStep, message string) error
	FailJob(ctx context.Context, jobID uuid.UUID, errorMessage string) error
	RecoverStaleJobs(ctx context.Context, lease time.Duration) (int64, error)
}

// Rewarder grants experience for completed jobs.
type Rewarder interface {
	AwardCodeGenerated(ctx context.Context, userID, jobID uuid.UUID) (*gamification.Progress, error)
}

// Options sizes the worker pool and its lease bookkeeping.
type Options struct {
	Workers           int
	QueueSize         int
	HeartbeatInterval time.Duration
	LeaseWindow       time.Duration

	// TerminalRetention is how long a finished job's progress topic stays
	// in the broker before it is dropped. Late stream subscribers within
	// this window still see the final event replayed.
	TerminalRetention time.Duration
}

func (o *Options) applyDefaults() {
	if o.Workers <= 0 {
		o.Workers = 4
	}
	if o.QueueSize <= 0 {
		o.QueueSize = 64
	}
	if o.HeartbeatInterval <= 0 {
		o.HeartbeatInterval = 15 * time.Second
	}
	if o.LeaseWindow <= 0 {
		o.LeaseWindow = 5 * time.Minute
	}
	if o.TerminalRetention <= 0 {
		o.TerminalRetention = time.Minute
	}
}

// Manager owns the worker pool that executes agent jobs. Submit is the only
// entry point for new work; the durable record sees exactly two writes per
// job after creation (processing, then one terminal state), with live
// progress flowing through the broker instead.
type Manager struct {
	store   Store
	client  llm.Client
	rewards Rewarder
	broker  *Broker
	opts    Options

	queue  chan *db.AgentJob
	group  *errgroup.Group
	cancel context.CancelFunc
}

// NewManager creates a manager. Start must be called before Submit.
func NewManager(store Store, client llm.Client, rewards Rewarder, opts Options) *Manager {
	opts.applyDefaults()
	return &Manager{
		store:   store,
		client:  client,
		rewards: rewards,
		broker:  NewBroker(),
		opts:    opts,
		queue:   make(chan *db.AgentJob, opts.QueueSize),
	}
}

// Broker exposes the progress broker for stream handlers.
func (m *Manager) Broker() *Broker {
	return m.broker
}

// Start recovers jobs orphaned by a previous crash and launches the worker
// pool. Workers run until Stop is called or the context is canceled.
func (m *Manager) Start(ctx context.Context) error {
	recovered, err := m.store.RecoverStaleJobs(ctx, m.opts.LeaseWindow)
	if err != nil {
		return fmt.Errorf("failed to recover stale jobs: %w", err)
	}
	if recovered > 0 {
		log.Printf("jobs: recovered %d stale jobs from previous run", recovered)
	}

	workCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.group, workCtx = errgroup.WithContext(workCtx)

	for i := 0; i < m.opts.Workers; i++ {
		m.group.Go(func() error {
			for {
				select {
				case <-workCtx.Done():
					return nil
				case job, ok := <-m.queue:
					if !ok {
						return nil
					}
					m.process(workCtx, job)
				}
			}
		})
	}
	return nil
}

// Stop halts the pool. Jobs interrupted mid-run keep their processing status
// until the next startup recovers them via the stale-heartbeat sweep.
func (m *Manager) Stop() {
	if m.cancel != nil {
		m.cancel()
	}
	if m.group != nil {
		_ = m.group.Wait()
	}
}

// Submit creates the durable record and enqueues it. The record is returned
// immediately in pending state; admission never blocks. When the queue is
// full the job is marked failed and ErrQueueFull is returned alongside the
// updated record.
func (m *Manager) Submit(ctx context.Context, userID uuid.UUID, prompt string, contextJSON []byte, model string) (*db.AgentJob, error) {
	job, err := m.store.CreateJob(ctx, userID, prompt, contextJSON, model)
	if err != nil {
		return nil, err
	}

	select {
	case m.queue <- job:
		return job, nil
	default:
		if failErr := m.store.FailJob(ctx, job.ID, ErrQueueFull.Error()); failErr != nil {
			log.Printf("jobs: failed to mark overflowed job %s: %v", job.ID, failErr)
		}
		job.Status = db.JobStatusFailed
		job.ErrorMessage = ErrQueueFull.Error()
		m.finish(Event{
			JobID:  job.ID,
			Status: db.JobStatusFailed,
			Error:  ErrQueueFull.Error(),
		})
		return job, ErrQueueFull
	}
}

// finish publishes a job's terminal event and schedules its broker topic
// for removal once the retention window passes, so the broker does not
// accumulate one topic per job ever run.
func (m *Manager) finish(event Event) {
	event.Terminal = true
	m.broker.Publish(event)
	jobID := event.JobID
	time.AfterFunc(m.opts.TerminalRetention, func() {
		m.broker.Forget(jobID)
	})
}

// LiveProgress reports the most recent in-flight progress for a job.
func (m *Manager) LiveProgress(jobID uuid.UUID) (Event, bool) {
	return m.broker.Last(jobID)
}

// jobResult is the payload persisted on completion: the full conversation
// plus the context analysis summary.
type jobResult struct {
	Messages []llm.Message         `json:"messages"`
	Analysis agent.ContextAnalysis `json:"analysis"`
}

func (m *Manager) process(ctx context.Context, job *db.AgentJob) {
	if err := m.store.StartJob(ctx, job.ID); err != nil {
		// Already failed (queue overflow race) or recovered; nothing to run.
		log.Printf("jobs: skipping job %s: %v", job.ID, err)
		return
	}

	m.broker.Publish(Event{
		JobID:       job.ID,
		Status:      db.JobStatusProcessing,
		CurrentStep: "Starting",
		Progress:    0,
	})

	hbCtx, stopHeartbeat := context.WithCancel(ctx)
	defer stopHeartbeat()
	go m.heartbeat(hbCtx, job.ID)

	var runContext agent.Context
	if len(job.Context) > 0 {
		if err := json.Unmarshal(job.Context, &runContext); err != nil {
			m.fail(ctx, job, fmt.Errorf("invalid job context: %w", err))
			return
		}
	}

	runner := agent.NewRunner(m.client, agent.WithProgress(func(ev agent.ProgressEvent) {
		m.broker.Publish(Event{
			JobID:       job.ID,
			Status:      db.JobStatusProcessing,
			CurrentStep: ev.CurrentStep,
			Progress:    ev.Progress,
		})
	}))

	final, err := runner.Run(ctx, agent.NewState(job.Prompt, runContext))
	stopHeartbeat()
	if err != nil {
		m.fail(ctx, job, err)
		return
	}

	resultJSON, err := json.Marshal(jobResult{
		Messages: final.Messages,
		Analysis: final.Analysis,
	})
	if err != nil {
		m.fail(ctx, job, fmt.Errorf("failed to serialize result: %w", err))
		return
	}

	const doneMessage = "Code generation completed successfully"
	if err := m.store.CompleteJob(ctx, job.ID, resultJSON, final.GeneratedCode, "", final.CurrentStep, doneMessage); err != nil {
		log.Printf("jobs: failed to persist completion for %s: %v", job.ID, err)
		m.fail(ctx, job, err)
		return
	}

	if m.rewards != nil {
		if _, err := m.rewards.AwardCodeGenerated(ctx, job.UserID, job.ID); err != nil {
			// The job itself succeeded; losing the reward is log-worthy only.
			log.Printf("jobs: failed to award experience for %s: %v", job.ID, err)
		}
	}

	m.finish(Event{
		JobID:       job.ID,
		Status:      db.JobStatusCompleted,
		CurrentStep: final.CurrentStep,
		Progress:    100,
		Message:     doneMessage,
	})
}

func (m *Manager) fail(ctx context.Context, job *db.AgentJob, cause error) {
	if err := m.store.FailJob(ctx, job.ID, cause.Error()); err != nil {
		log.Printf("jobs: failed to mark job %s failed: %v", job.ID, err)
	}
	m.finish(Event{
		JobID:  job.ID,
		Status: db.JobStatusFailed,
		Error:  cause.Error(),
	})
}

func (m *Manager) heartbeat(ctx context.Context, jobID uuid.UUID) {
	ticker := time.NewTicker(m.opts.HeartbeatInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := m.store.HeartbeatJob(ctx, jobID); err != nil {
				log.Printf("jobs: heartbeat for %s failed: %v", jobID, err)
			}
		}
	}
}
