package services

import (
	"context"
	"testing"
	"time"

	"stopusing/client/api"
	"stopusing/client/apitest"
	"stopusing/client/cache"
	"stopusing/client/storage"
	"stopusing/client/transport"
)

func newBudgetEnv(t *testing.T) (*apitest.Server, *Coordinator, *storage.Store) {
	t.Helper()
	srv := apitest.NewServer()
	t.Cleanup(srv.Close)

	local, err := storage.Open(":memory:", "test-encryption-key")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { local.Close() })

	tr := transport.New(transport.Config{
		BaseURL:     srv.URL,
		Retries:     3,
		Timeout:     2 * time.Second,
		BackoffBase: time.Millisecond,
		Sleep:       func(context.Context, time.Duration) error { return nil },
	})
	coord := NewCoordinator(cache.NewStore(), api.New(tr),
		WithNotifier(&captureNotifier{}),
		WithLocalStore(local),
	)
	return srv, coord, local
}

func TestSetMonthlyGoalCreatesThenUpdates(t *testing.T) {
	_, coord, _ := newBudgetEnv(t)
	ctx := context.Background()

	first, err := coord.SetMonthlyGoal(ctx, "2026-08", 300000)
	if err != nil {
		t.Fatal(err)
	}
	if first.Price != 300000 || first.Month != "2026-08" {
		t.Errorf("Expected created goal {300000, 2026-08}, got %+v", first)
	}

	second, err := coord.SetMonthlyGoal(ctx, "2026-08", 250000)
	if err != nil {
		t.Fatal(err)
	}
	if second.ID != first.ID {
		t.Errorf("Expected the goal to update in place, got id %d then %d", first.ID, second.ID)
	}
	if second.Price != 250000 {
		t.Errorf("Expected updated price 250000, got %d", second.Price)
	}
}

func TestMonthlyGoalFallsBackToRememberedValue(t *testing.T) {
	srv, coord, local := newBudgetEnv(t)
	ctx := context.Background()

	if _, err := coord.SetMonthlyGoal(ctx, "2026-08", 300000); err != nil {
		t.Fatal(err)
	}
	if price, ok := local.RememberedGoal("2026-08"); !ok || price != 300000 {
		t.Fatalf("Expected the goal remembered locally, got %d (ok=%v)", price, ok)
	}

	// Backend down: the remembered value serves.
	srv.FailNext(500, 4)
	goal, ok, err := coord.MonthlyGoal(ctx, "2026-08")
	if err != nil {
		t.Fatalf("Expected fallback instead of error, got %v", err)
	}
	if !ok || goal.Price != 300000 {
		t.Errorf("Expected remembered goal 300000, got %+v (ok=%v)", goal, ok)
	}
}

func TestMonthlyGoalMissingEverywhere(t *testing.T) {
	_, coord, _ := newBudgetEnv(t)

	_, ok, err := coord.MonthlyGoal(context.Background(), "2026-09")
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("Expected no goal for an unset month")
	}
}

func TestCheckOverspendSendsAlarm(t *testing.T) {
	srv, coord, _ := newBudgetEnv(t)
	ctx := context.Background()

	if _, err := coord.SetMonthlyGoal(ctx, "2026-08", 10000); err != nil {
		t.Fatal(err)
	}
	srv.Seed(seedTransaction(1, 8000, "dinner"), seedTransaction(2, 5000, "taxi"))

	overspent, err := coord.CheckOverspend(ctx, "2026-08")
	if err != nil {
		t.Fatal(err)
	}
	if !overspent {
		t.Fatal("Expected the month to read as overspent")
	}

	alarms := srv.Alarms()
	if len(alarms) != 1 {
		t.Fatalf("Expected one alarm, got %d", len(alarms))
	}
	if alarms[0].Price != 3000 {
		t.Errorf("Expected alarm price 3000 (13000 spent - 10000 goal), got %d", alarms[0].Price)
	}
}

func TestCheckOverspendUnderGoal(t *testing.T) {
	srv, coord, _ := newBudgetEnv(t)
	ctx := context.Background()

	if _, err := coord.SetMonthlyGoal(ctx, "2026-08", 100000); err != nil {
		t.Fatal(err)
	}
	srv.Seed(seedTransaction(1, 8000, "dinner"))

	overspent, err := coord.CheckOverspend(ctx, "2026-08")
	if err != nil {
		t.Fatal(err)
	}
	if overspent {
		t.Error("Expected the month to read as within goal")
	}
	if len(srv.Alarms()) != 0 {
		t.Error("Expected no alarm under goal")
	}
}

func TestGoalProgress(t *testing.T) {
	cases := []struct {
		spent, goal int64
		want        string
	}{
		{50000, 100000, "50"},
		{13000, 30000, "43.33"},
		{120000, 100000, "120"},
		{0, 100000, "0"},
		{50000, 0, "0"},
	}
	for _, tc := range cases {
		if got := GoalProgress(tc.spent, tc.goal).String(); got != tc.want {
			t.Errorf("Expected progress %s for %d/%d, got %s", tc.want, tc.spent, tc.goal, got)
		}
	}
}

func TestDailyBudget(t *testing.T) {
	aug15 := time.Date(2026, 8, 15, 10, 0, 0, 0, time.UTC) // 17 days left incl. today
	if got := DailyBudget(300000, 130000, aug15); got != 10000 {
		t.Errorf("Expected 10000 per day (170000 over 17 days), got %d", got)
	}

	aug31 := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)
	if got := DailyBudget(300000, 100000, aug31); got != 200000 {
		t.Errorf("Expected the whole remainder on the last day, got %d", got)
	}

	if got := DailyBudget(100000, 150000, aug15); got != 0 {
		t.Errorf("Expected 0 when overspent, got %d", got)
	}

	if got := DailyBudget(100000, 100000, aug15); got != 0 {
		t.Errorf("Expected 0 at exactly goal, got %d", got)
	}
}
