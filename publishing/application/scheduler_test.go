package application_test

import (
	"context"
	"testing"
	"time"

	"github.com/AzielCF/az-press/content"
	contentRepo "github.com/AzielCF/az-press/content/repository"
	"github.com/AzielCF/az-press/pkg/pubworker"
	"github.com/AzielCF/az-press/publishing/application"
	"github.com/AzielCF/az-press/publishing/domain"
	"github.com/AzielCF/az-press/publishing/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestScheduler(t *testing.T, cfg application.SchedulerConfig) (*application.Scheduler, *pubworker.Pool, *repositoryBundle) {
	t.Helper()
	repo, store := setupStores(t)

	pool := pubworker.NewPool(4, 50)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	pool.Start(ctx)
	t.Cleanup(pool.Stop)

	exec := application.NewExecutor(repo, store, &fakeGenerator{}, nil, application.ExecutorConfig{MaxAttempts: 3})
	sched := application.NewScheduler(repo, exec, pool, nil, cfg)
	return sched, pool, &repositoryBundle{repo: repo, store: store}
}

type repositoryBundle struct {
	repo  *repository.PublishingGormRepository
	store *contentRepo.ArticleGormStore
}

func TestTick_DispatchesAllDuePosts(t *testing.T) {
	sched, _, stores := newTestScheduler(t, application.SchedulerConfig{BatchSize: 2, TickLimit: 100})
	ctx := context.Background()

	// Three due posts with real draft articles, one future post.
	ids := make([]string, 0, 3)
	for i := 0; i < 3; i++ {
		article, err := stores.store.Create(ctx, "site-1", "user-1", content.CreateArticleInput{
			Title: "due", Body: "b", Status: content.ArticleStatusDraft,
		})
		require.NoError(t, err)
		post := seedPost(t, stores.repo, func(p *domain.ScheduledPost) {
			p.ContentID = article.ID
		})
		ids = append(ids, post.ID)
	}
	future := seedPost(t, stores.repo, func(p *domain.ScheduledPost) {
		p.ScheduledAt = time.Now().UTC().Add(time.Hour)
		p.ContentID = "later"
	})

	dispatched := sched.Tick(ctx)
	assert.Equal(t, 3, dispatched)

	for _, id := range ids {
		got, err := stores.repo.GetScheduledPost(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, domain.ScheduledPostStatusPublished, got.Status)
	}

	untouched, err := stores.repo.GetScheduledPost(ctx, future.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ScheduledPostStatusPending, untouched.Status)
	assert.Equal(t, 0, untouched.PublishAttempts)
}

func TestTick_EmptyIsCheap(t *testing.T) {
	sched, pool, _ := newTestScheduler(t, application.SchedulerConfig{})

	assert.Equal(t, 0, sched.Tick(context.Background()))
	assert.Equal(t, int64(0), pool.GetStats().TotalDispatched)
}

func TestTick_HonorsTickLimit(t *testing.T) {
	sched, _, stores := newTestScheduler(t, application.SchedulerConfig{TickLimit: 2, BatchSize: 2})
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		article, err := stores.store.Create(ctx, "site-1", "user-1", content.CreateArticleInput{
			Title: "due", Body: "b", Status: content.ArticleStatusDraft,
		})
		require.NoError(t, err)
		seedPost(t, stores.repo, func(p *domain.ScheduledPost) {
			p.ContentID = article.ID
		})
	}

	assert.Equal(t, 2, sched.Tick(ctx), "a tick must fetch at most TickLimit posts")
	assert.Equal(t, 2, sched.Tick(ctx))
	assert.Equal(t, 1, sched.Tick(ctx))
	assert.Equal(t, 0, sched.Tick(ctx))
}

func TestTick_OneFailureNeverAbortsSiblings(t *testing.T) {
	sched, _, stores := newTestScheduler(t, application.SchedulerConfig{BatchSize: 10})
	ctx := context.Background()

	article, err := stores.store.Create(ctx, "site-1", "user-1", content.CreateArticleInput{
		Title: "good", Body: "b", Status: content.ArticleStatusDraft,
	})
	require.NoError(t, err)

	good := seedPost(t, stores.repo, func(p *domain.ScheduledPost) {
		p.ContentID = article.ID
	})
	bad := seedPost(t, stores.repo, func(p *domain.ScheduledPost) {
		p.ContentID = "missing-article"
	})

	dispatched := sched.Tick(ctx)
	assert.Equal(t, 2, dispatched)

	gotGood, err := stores.repo.GetScheduledPost(ctx, good.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ScheduledPostStatusPublished, gotGood.Status)

	gotBad, err := stores.repo.GetScheduledPost(ctx, bad.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ScheduledPostStatusPending, gotBad.Status)
	assert.Equal(t, 1, gotBad.PublishAttempts)

	status := sched.Status(ctx)
	assert.Equal(t, int64(2), status.ItemsDispatched)
	assert.Equal(t, int64(1), status.ItemsFailed)
}

func TestScheduler_StartStopLifecycle(t *testing.T) {
	sched, _, _ := newTestScheduler(t, application.SchedulerConfig{PollInterval: time.Hour})
	ctx := context.Background()

	assert.False(t, sched.IsRunning())

	sched.Start(ctx)
	assert.True(t, sched.IsRunning())

	// Duplicate start is a warning, not a second loop.
	sched.Start(ctx)
	assert.True(t, sched.IsRunning())

	sched.Stop()
	assert.False(t, sched.IsRunning())

	// Stop when stopped is safe.
	sched.Stop()
}

func TestScheduler_WakeTriggersTick(t *testing.T) {
	sched, _, stores := newTestScheduler(t, application.SchedulerConfig{PollInterval: time.Hour})
	ctx := context.Background()

	article, err := stores.store.Create(ctx, "site-1", "user-1", content.CreateArticleInput{
		Title: "due", Body: "b", Status: content.ArticleStatusDraft,
	})
	require.NoError(t, err)
	post := seedPost(t, stores.repo, func(p *domain.ScheduledPost) {
		p.ContentID = article.ID
	})

	sched.Start(ctx)
	defer sched.Stop()

	sched.Wake()

	require.Eventually(t, func() bool {
		got, err := stores.repo.GetScheduledPost(ctx, post.ID)
		return err == nil && got.Status == domain.ScheduledPostStatusPublished
	}, 2*time.Second, 20*time.Millisecond, "wake signal should run a tick long before the poll timer")
}

func TestScheduler_NearFuturePostDoesNotWaitForPollTimer(t *testing.T) {
	sched, _, stores := newTestScheduler(t, application.SchedulerConfig{PollInterval: time.Hour})
	ctx := context.Background()

	article, err := stores.store.Create(ctx, "site-1", "user-1", content.CreateArticleInput{
		Title: "soon", Body: "b", Status: content.ArticleStatusDraft,
	})
	require.NoError(t, err)
	// Due shortly after the wake-driven tick, which finds nothing due yet.
	post := seedPost(t, stores.repo, func(p *domain.ScheduledPost) {
		p.ContentID = article.ID
		p.ScheduledAt = time.Now().UTC().Add(250 * time.Millisecond)
	})

	sched.Start(ctx)
	defer sched.Stop()

	sched.Wake()

	require.Eventually(t, func() bool {
		got, err := stores.repo.GetScheduledPost(ctx, post.ID)
		return err == nil && got.Status == domain.ScheduledPostStatusPublished
	}, 3*time.Second, 25*time.Millisecond,
		"a post due inside the poll window must publish at its due instant, not on the next poll")
}
