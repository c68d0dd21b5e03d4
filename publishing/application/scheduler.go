package application

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/AzielCF/az-press/infrastructure/valkey"
	"github.com/AzielCF/az-press/pkg/pubworker"
	"github.com/AzielCF/az-press/publishing/repository"
	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
)

// SchedulerConfig controls the poll-and-dispatch loop.
type SchedulerConfig struct {
	PollInterval time.Duration // default 1 minute
	TickLimit    int           // max due posts fetched per tick, default 100
	BatchSize    int           // concurrent executions per sub-batch, default 10
}

// SchedulerStatus is the operational snapshot exposed upward.
type SchedulerStatus struct {
	Running         bool                `json:"running"`
	PollInterval    string              `json:"poll_interval"`
	TicksRun        int64               `json:"ticks_run"`
	ItemsDispatched int64               `json:"items_dispatched"`
	ItemsFailed     int64               `json:"items_failed"`
	LastTickAt      *time.Time          `json:"last_tick_at,omitempty"`
	NextDue         string              `json:"next_due,omitempty"`
	Pool            pubworker.PoolStats `json:"pool"`
}

// Scheduler periodically discovers due scheduled posts and hands them to the
// executor in bounded concurrent sub-batches. It is an owned resource: built
// once during wiring and controlled through Start/Stop, never a package-level
// singleton.
type Scheduler struct {
	repo     repository.IPublishingRepository
	executor *Executor
	pool     *pubworker.Pool
	vk       *valkey.Client // optional wake signal
	cfg      SchedulerConfig

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wake    chan struct{}

	ticksRun        int64
	itemsDispatched int64
	itemsFailed     int64
	lastTickUnix    int64

	now func() time.Time
}

func NewScheduler(
	repo repository.IPublishingRepository,
	executor *Executor,
	pool *pubworker.Pool,
	vk *valkey.Client,
	cfg SchedulerConfig,
) *Scheduler {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Minute
	}
	if cfg.TickLimit <= 0 {
		cfg.TickLimit = 100
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 10
	}
	return &Scheduler{
		repo:     repo,
		executor: executor,
		pool:     pool,
		vk:       vk,
		cfg:      cfg,
		wake:     make(chan struct{}, 1),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the scheduler's clock. Test hook.
func (s *Scheduler) WithClock(now func() time.Time) *Scheduler {
	s.now = now
	return s
}

// Start launches the polling loop. Starting twice is a no-op with a warning.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		logrus.Warn("[SCHEDULER] Already running, ignoring duplicate start")
		return
	}
	loopCtx, cancel := context.WithCancel(ctx)
	s.running = true
	s.cancel = cancel
	s.mu.Unlock()

	if s.vk != nil {
		go func() {
			err := s.vk.SubscribeSignal(loopCtx, s.Wake)
			if err != nil && loopCtx.Err() == nil {
				logrus.WithError(err).Error("[SCHEDULER] Wake-signal listener failed")
			}
		}()
	}

	go s.runLoop(loopCtx)

	logrus.Infof("[SCHEDULER] Started, polling every %s (tick limit %d, batch size %d)",
		s.cfg.PollInterval, s.cfg.TickLimit, s.cfg.BatchSize)
}

// Stop halts the polling loop. Safe to call when not running.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.cancel()
	s.running = false
	logrus.Info("[SCHEDULER] Stopped")
}

// Wake nudges the loop to tick ahead of the timer (e.g. when a post is
// scheduled inside the current poll window). Non-blocking.
func (s *Scheduler) Wake() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// TriggerNow runs one out-of-band tick, reusing the normal tick logic.
func (s *Scheduler) TriggerNow(ctx context.Context) int {
	logrus.Info("[SCHEDULER] Manual trigger requested")
	return s.Tick(ctx)
}

func (s *Scheduler) runLoop(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()

	// One-shot timer for the next upcoming post, armed after every tick.
	// Starts disarmed.
	nextDue := time.NewTimer(s.cfg.PollInterval)
	if !nextDue.Stop() {
		<-nextDue.C
	}
	defer nextDue.Stop()

	s.armNextDue(ctx, nextDue)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		case <-s.wake:
		case <-nextDue.C:
		}
		s.Tick(ctx)
		s.armNextDue(ctx, nextDue)
	}
}

// armNextDue re-arms the one-shot timer when the next post comes due before
// the ticker fires again. A wake signal for a post scheduled a few seconds
// out ticks too early to find it due; the timer armed here picks it up at its
// due instant instead of leaving it to wait out the poll interval.
func (s *Scheduler) armNextDue(ctx context.Context, t *time.Timer) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}

	next, err := s.repo.NextScheduledPostAt(ctx)
	if err != nil || next == nil {
		return
	}
	wait := next.Sub(s.now())
	// Posts already due after a tick are retry-paced; the ticker covers them.
	if wait <= 0 || wait >= s.cfg.PollInterval {
		return
	}
	t.Reset(wait)
}

// Tick runs one poll-and-dispatch cycle and returns how many due posts were
// dispatched. A tick never propagates an error: a failed due-query is logged
// and retried naturally on the next timer firing, and one item's failure
// never aborts its siblings.
func (s *Scheduler) Tick(ctx context.Context) int {
	now := s.now()
	atomic.AddInt64(&s.ticksRun, 1)
	atomic.StoreInt64(&s.lastTickUnix, now.Unix())

	due, err := s.repo.ListDueScheduledPosts(ctx, now, s.cfg.TickLimit)
	if err != nil {
		logrus.WithError(err).Error("[SCHEDULER] Due-post query failed, retrying next tick")
		return 0
	}
	if len(due) == 0 {
		return 0
	}

	logrus.Infof("[SCHEDULER] Tick found %d due post(s)", len(due))

	dispatched := 0
	for start := 0; start < len(due); start += s.cfg.BatchSize {
		end := start + s.cfg.BatchSize
		if end > len(due) {
			end = len(due)
		}

		jobs := make([]pubworker.PublishJob, 0, end-start)
		for _, post := range due[start:end] {
			postID := post.ID
			jobs = append(jobs, pubworker.PublishJob{
				PostID: postID,
				Handler: func(jobCtx context.Context) error {
					return s.executor.Execute(jobCtx, postID)
				},
			})
		}

		failed := s.pool.RunBatch(ctx, jobs)
		atomic.AddInt64(&s.itemsFailed, int64(failed))
		dispatched += len(jobs)
	}

	atomic.AddInt64(&s.itemsDispatched, int64(dispatched))
	return dispatched
}

// IsRunning reports whether the loop is active.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Status returns the operational snapshot for the status endpoint.
func (s *Scheduler) Status(ctx context.Context) SchedulerStatus {
	status := SchedulerStatus{
		Running:         s.IsRunning(),
		PollInterval:    s.cfg.PollInterval.String(),
		TicksRun:        atomic.LoadInt64(&s.ticksRun),
		ItemsDispatched: atomic.LoadInt64(&s.itemsDispatched),
		ItemsFailed:     atomic.LoadInt64(&s.itemsFailed),
		Pool:            s.pool.GetStats(),
	}

	if unix := atomic.LoadInt64(&s.lastTickUnix); unix > 0 {
		at := time.Unix(unix, 0).UTC()
		status.LastTickAt = &at
	}

	if next, err := s.repo.NextScheduledPostAt(ctx); err == nil && next != nil {
		status.NextDue = humanize.Time(*next)
	}

	return status
}
