package notification_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"council-vote/internal/domain/motion"
	"council-vote/internal/domain/notification"
	"council-vote/internal/platform/clock"
	"council-vote/internal/repository/memory"
)

var now = time.Date(2026, 7, 1, 10, 0, 0, 0, time.UTC)

func TestEnsureNotificationIsIdempotent(t *testing.T) {
	store := memory.NewStore()
	svc := notification.NewService(store, clock.NewManual(now), nil)
	id := uuid.New()

	var wg sync.WaitGroup
	created := make(chan bool, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := svc.EnsureNotification(context.Background(), id)
			if err != nil {
				t.Errorf("ensure: %v", err)
			}
			created <- ok
		}()
	}
	wg.Wait()
	close(created)

	count := 0
	for ok := range created {
		if ok {
			count++
		}
	}
	if count != 1 || store.NotificationCount(id) != 1 {
		t.Fatalf("expected exactly one row, created=%d rows=%d", count, store.NotificationCount(id))
	}

	n, err := svc.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if n.Status != notification.StatusPending || n.Attempts != 0 || !n.NextAttemptAt.Equal(now) {
		t.Fatalf("unexpected new row %+v", n)
	}
}

func TestBackfill(t *testing.T) {
	store := memory.NewStore()
	svc := notification.NewService(store, clock.NewManual(now), nil)
	ctx := context.Background()

	put := func(status motion.Status) uuid.UUID {
		m := motion.Motion{ID: uuid.New(), Status: status, Options: []string{"Yes", "No"}}
		store.PutMotion(m)
		return m.ID
	}
	closed := put(motion.StatusClosed)
	published := put(motion.StatusPublished)
	open := put(motion.StatusOpen)
	if _, err := svc.EnsureNotification(ctx, published); err != nil {
		t.Fatalf("ensure: %v", err)
	}

	n, err := svc.Backfill(ctx)
	if err != nil {
		t.Fatalf("backfill: %v", err)
	}
	if n != 1 || store.NotificationCount(closed) != 1 || store.NotificationCount(published) != 1 || store.NotificationCount(open) != 0 {
		t.Fatalf("unexpected backfill result %d", n)
	}
	if n, _ := svc.Backfill(ctx); n != 0 {
		t.Fatalf("second backfill must create nothing, got %d", n)
	}
}

func TestRenotify(t *testing.T) {
	store := memory.NewStore()
	clk := clock.NewManual(now)
	svc := notification.NewService(store, clk, nil)
	ctx := context.Background()
	id := uuid.New()

	if _, err := svc.Renotify(ctx, id); !errors.Is(err, notification.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	_, _ = svc.EnsureNotification(ctx, id)
	pending, err := svc.Renotify(ctx, id)
	if err != nil || pending.Status != notification.StatusPending {
		t.Fatalf("pending row must be returned unchanged, got %+v %v", pending, err)
	}

	row, _ := store.GetByMotion(ctx, id)
	prevStatus, prevAttempts := row.Status, row.Attempts
	row.RecordFailure(now, "x", 0)
	row.MarkSent(now)
	if err := store.Save(ctx, row, prevStatus, prevAttempts); err != nil {
		t.Fatalf("save: %v", err)
	}

	clk.Advance(time.Hour)
	reset, err := svc.Renotify(ctx, id)
	if err != nil {
		t.Fatalf("renotify: %v", err)
	}
	if reset.Status != notification.StatusPending || reset.Attempts != 0 || !reset.NextAttemptAt.Equal(now.Add(time.Hour)) {
		t.Fatalf("unexpected reset row %+v", reset)
	}
	if store.NotificationCount(id) != 1 {
		t.Fatalf("renotify must reuse the existing row")
	}
}
