package notification_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridianvault/backoffice/modules/notification"
)

func newTestScheduler(t *testing.T, store *notification.MemoryStore, emailSender notification.EmailEntrySender, interval time.Duration) *notification.Scheduler {
	t.Helper()
	proc := notification.NewProcessor(store, store, emailSender, &fakeSMSSender{}, notification.Config{}, nil)
	return notification.NewScheduler(proc, notification.Config{PollInterval: interval}, nil)
}

func TestScheduler_StartStop(t *testing.T) {
	t.Parallel()

	store := notification.NewMemoryStore()
	sched := newTestScheduler(t, store, &fakeEmailSender{}, time.Hour)

	require.NoError(t, sched.Start(context.Background()))
	assert.True(t, sched.Status().Running)

	// A second Start on an active scheduler is rejected.
	require.ErrorIs(t, sched.Start(context.Background()), notification.ErrSchedulerRunning)

	sched.Stop()
	assert.False(t, sched.Status().Running)

	// Stop is safe to repeat, and the scheduler can be restarted.
	sched.Stop()
	require.NoError(t, sched.Start(context.Background()))
	sched.Stop()
}

func TestScheduler_StartDrainsBacklog(t *testing.T) {
	t.Parallel()

	store := notification.NewMemoryStore()
	entryID, _ := enqueueEmail(t, store, time.Now().UTC().Add(-time.Minute))

	sched := newTestScheduler(t, store, &fakeEmailSender{}, time.Hour)
	require.NoError(t, sched.Start(context.Background()))
	defer sched.Stop()

	// The loop runs an immediate first pass; wait for it to land.
	require.Eventually(t, func() bool {
		entry, ok := store.EmailEntry(entryID)
		return ok && entry.Status == notification.StatusSent
	}, 2*time.Second, 10*time.Millisecond)
}

func TestScheduler_RunOnce(t *testing.T) {
	t.Parallel()

	store := notification.NewMemoryStore()
	enqueueEmail(t, store, time.Now().UTC().Add(-time.Minute))

	sched := newTestScheduler(t, store, &fakeEmailSender{}, time.Hour)

	// RunOnce works without the interval loop running.
	stats, err := sched.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.EmailSent)
}

func TestScheduler_OverlapGuard(t *testing.T) {
	t.Parallel()

	store := notification.NewMemoryStore()
	enqueueEmail(t, store, time.Now().UTC().Add(-time.Minute))

	started := make(chan struct{})
	release := make(chan struct{})
	blocking := emailSenderFunc(func(ctx context.Context, e *notification.EmailQueueEntry) (string, error) {
		close(started)
		<-release
		return "email-1", nil
	})

	sched := newTestScheduler(t, store, blocking, time.Hour)

	done := make(chan error, 1)
	go func() {
		_, err := sched.RunOnce(context.Background())
		done <- err
	}()

	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("pass never started")
	}

	// While a pass is in flight the guard rejects a second trigger.
	assert.True(t, sched.Status().Processing)
	_, err := sched.RunOnce(context.Background())
	require.ErrorIs(t, err, notification.ErrPassInProgress)

	close(release)
	require.NoError(t, <-done)
	assert.False(t, sched.Status().Processing)

	// With the pass finished a new trigger goes through again.
	_, err = sched.RunOnce(context.Background())
	require.NoError(t, err)
}
