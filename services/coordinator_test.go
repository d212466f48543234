package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"stopusing/client/api"
	"stopusing/client/apitest"
	"stopusing/client/cache"
	"stopusing/client/models"
	"stopusing/client/transport"
	"stopusing/client/validation"
)

type captureNotifier struct {
	mu        sync.Mutex
	successes []string
	failures  []string
}

func (n *captureNotifier) Success(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.successes = append(n.successes, msg)
}

func (n *captureNotifier) Error(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.failures = append(n.failures, msg)
}

func (n *captureNotifier) failureCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.failures)
}

func newTestEnv(t *testing.T) (*apitest.Server, *cache.Store, *Coordinator, *captureNotifier) {
	t.Helper()
	srv := apitest.NewServer()
	t.Cleanup(srv.Close)

	tr := transport.New(transport.Config{
		BaseURL:     srv.URL,
		Retries:     3,
		Timeout:     2 * time.Second,
		BackoffBase: time.Millisecond,
		Sleep:       func(context.Context, time.Duration) error { return nil },
	})
	store := cache.NewStore()
	notifier := &captureNotifier{}
	coord := NewCoordinator(store, api.New(tr), WithNotifier(notifier))
	return srv, store, coord, notifier
}

func seedTransaction(id int64, price int64, title string) models.Transaction {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	return models.Transaction{
		ID:         id,
		Price:      price,
		Title:      title,
		Type:       models.TypeNone,
		StartedAt:  now,
		SplitCount: 1,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func TestCreateTransactionOptimisticThenServerTruth(t *testing.T) {
	srv, store, coord, _ := newTestEnv(t)
	ctx := context.Background()
	filter := models.TransactionFilter{Type: models.TypeNone}

	// Prime the list cache so there is something to update optimistically.
	if _, err := coord.Transactions(ctx, filter); err != nil {
		t.Fatal(err)
	}

	srv.SetNextID(42)
	release := srv.Hold()
	defer release()

	done := make(chan error, 1)
	go func() {
		_, err := coord.CreateTransaction(ctx, models.TransactionInput{
			Price: 15000, Title: "Coffee", SplitCount: 1,
		})
		done <- err
	}()

	// The placeholder must show up before the network call resolves.
	deadline := time.Now().Add(2 * time.Second)
	var placeholder models.Transaction
	for {
		if v, ok := store.Get(listKey(filter)); ok {
			if list, ok := v.([]models.Transaction); ok && len(list) == 1 {
				placeholder = list[0]
				break
			}
		}
		if time.Now().After(deadline) {
			t.Fatal("Placeholder never appeared in the list cache")
		}
		time.Sleep(time.Millisecond)
	}
	if placeholder.ID >= 0 {
		t.Errorf("Expected a negative placeholder id, got %d", placeholder.ID)
	}
	if placeholder.Price != 15000 || placeholder.Title != "Coffee" {
		t.Errorf("Expected placeholder to carry the input, got %+v", placeholder)
	}

	release()
	if err := <-done; err != nil {
		t.Fatalf("Unexpected create error: %v", err)
	}

	if !store.IsStale(listKey(filter)) {
		t.Error("Expected the list cache to be invalidated after success")
	}

	list, err := coord.Transactions(ctx, filter)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 {
		t.Fatalf("Expected exactly one transaction after refetch, got %d", len(list))
	}
	if list[0].ID != 42 || list[0].Price != 15000 || list[0].Title != "Coffee" {
		t.Errorf("Expected server truth {42, 15000, Coffee}, got %+v", list[0])
	}
}

func TestDeleteTransactionRollsBackOnFailure(t *testing.T) {
	srv, store, coord, notifier := newTestEnv(t)
	ctx := context.Background()
	filter := models.TransactionFilter{Type: models.TypeNone}

	a := seedTransaction(1, 4500, "A")
	b := seedTransaction(2, 9000, "B")
	srv.Seed(a, b)

	before, err := coord.Transactions(ctx, filter)
	if err != nil {
		t.Fatal(err)
	}
	if len(before) != 2 {
		t.Fatalf("Expected 2 cached transactions, got %d", len(before))
	}

	// Fail the delete across its whole retry budget (1 initial + 3 retries).
	srv.FailNext(500, 4)

	err = coord.DeleteTransaction(ctx, 2)
	var httpErr *transport.HTTPError
	if !errors.As(err, &httpErr) || httpErr.Status != 500 {
		t.Fatalf("Expected HTTP 500 error, got %v", err)
	}

	v, ok := store.Get(listKey(filter))
	if !ok {
		t.Fatal("Expected the list cache to survive the rollback")
	}
	list := v.([]models.Transaction)
	if len(list) != 2 {
		t.Fatalf("Expected [A, B] restored, got %d entries", len(list))
	}
	if list[0] != a || list[1] != b {
		t.Errorf("Expected [A, B] restored verbatim in order, got %+v", list)
	}

	if notifier.failureCount() != 1 {
		t.Errorf("Expected one failure notification, got %d", notifier.failureCount())
	}
}

func TestDeleteTransactionEvictsDetail(t *testing.T) {
	srv, store, coord, _ := newTestEnv(t)
	ctx := context.Background()

	srv.Seed(seedTransaction(7, 1000, "snack"))
	if _, err := coord.Transaction(ctx, 7); err != nil {
		t.Fatal(err)
	}
	if _, ok := store.Get(detailKey(7)); !ok {
		t.Fatal("Expected a primed detail cache entry")
	}

	if err := coord.DeleteTransaction(ctx, 7); err != nil {
		t.Fatal(err)
	}
	if _, ok := store.Get(detailKey(7)); ok {
		t.Error("Expected the detail entry to be evicted after delete")
	}
}

func TestUpdateTransactionIdempotent(t *testing.T) {
	srv, _, coord, _ := newTestEnv(t)
	ctx := context.Background()

	srv.Seed(seedTransaction(1, 4500, "before"))

	in := models.TransactionInput{Price: 7000, Title: "after", Type: models.TypeOverExpense, SplitCount: 2}

	first, err := coord.UpdateTransaction(ctx, 1, in)
	if err != nil {
		t.Fatal(err)
	}
	second, err := coord.UpdateTransaction(ctx, 1, in)
	if err != nil {
		t.Fatal(err)
	}

	final, err := coord.Transaction(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	for _, tx := range []models.Transaction{first, second, final} {
		if tx.Price != 7000 || tx.Title != "after" || tx.Type != models.TypeOverExpense || tx.SplitCount != 2 {
			t.Errorf("Expected identical payloads to converge on the same state, got %+v", tx)
		}
	}
}

func TestUpdateTransactionInvalidatesEvenOnFailure(t *testing.T) {
	srv, store, coord, _ := newTestEnv(t)
	ctx := context.Background()
	filter := models.TransactionFilter{Type: models.TypeNone}

	a := seedTransaction(1, 4500, "A")
	srv.Seed(a)
	if _, err := coord.Transactions(ctx, filter); err != nil {
		t.Fatal(err)
	}

	srv.FailNext(500, 4)
	in := models.TransactionInput{Price: 9999, Title: "edited", SplitCount: 1}
	if _, err := coord.UpdateTransaction(ctx, 1, in); err == nil {
		t.Fatal("Expected update to fail")
	}

	v, _ := store.Get(listKey(filter))
	list := v.([]models.Transaction)
	if len(list) != 1 || list[0] != a {
		t.Errorf("Expected optimistic edit rolled back, got %+v", list)
	}
	if !store.IsStale(listKey(filter)) {
		t.Error("Expected the final invalidation pass to run on failure too")
	}
}

func TestValidationBlocksDispatch(t *testing.T) {
	srv, _, coord, notifier := newTestEnv(t)
	ctx := context.Background()

	before := srv.Requests()
	_, err := coord.CreateTransaction(ctx, models.TransactionInput{Price: -1})
	var vErr *validation.Error
	if !errors.As(err, &vErr) {
		t.Fatalf("Expected *validation.Error, got %v", err)
	}
	if srv.Requests() != before {
		t.Error("Expected no network traffic for invalid input")
	}
	if notifier.failureCount() != 0 {
		t.Error("Expected no failure notification for local validation")
	}
}

func TestConcurrentUpdatesLastWriteWins(t *testing.T) {
	srv, _, coord, _ := newTestEnv(t)
	ctx := context.Background()

	srv.Seed(seedTransaction(1, 1000, "start"))

	var wg sync.WaitGroup
	for _, title := range []string{"one", "two"} {
		wg.Add(1)
		go func(title string) {
			defer wg.Done()
			_, _ = coord.UpdateTransaction(ctx, 1, models.TransactionInput{Price: 2000, Title: title, SplitCount: 1})
		}(title)
	}
	wg.Wait()

	// Whatever interleaving happened, the invalidation-triggered refetch
	// must reconcile the cache with server truth.
	final, err := coord.Transaction(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if final.Title != "one" && final.Title != "two" {
		t.Errorf("Expected one of the two writes to win, got %+v", final)
	}
}

func TestLogoutDropsSession(t *testing.T) {
	srv, store, coord, _ := newTestEnv(t)
	ctx := context.Background()
	filter := models.TransactionFilter{Type: models.TypeNone}

	srv.Seed(seedTransaction(1, 4500, "A"))
	if _, err := coord.Transactions(ctx, filter); err != nil {
		t.Fatal(err)
	}

	if err := coord.Logout(ctx); err != nil {
		t.Fatal(err)
	}
	if _, ok := store.Get(listKey(filter)); ok {
		t.Error("Expected the cache to be empty after logout")
	}
}
