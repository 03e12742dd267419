package services

import (
	"context"
	"errors"
	"testing"

	"duitku/internal/core"
)

func TestGoalLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	u := env.user(t, "Budi", "budi@example.com", "")

	goal, err := env.goals.Create(ctx, core.FinancialGoal{
		UserID: u.ID,
		Name:   "Dana darurat",
		Target: core.Money{Cents: 1000000},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if goal.Current.Cents != 0 {
		t.Errorf("current = %d, want 0", goal.Current.Cents)
	}

	goal, err = env.goals.AddSavings(ctx, u.ID, goal.ID, core.Money{Cents: 250000})
	if err != nil {
		t.Fatalf("add savings: %v", err)
	}
	if goal.Current.Cents != 250000 {
		t.Errorf("current = %d, want 250000", goal.Current.Cents)
	}

	// Contributions accumulate.
	goal, err = env.goals.AddSavings(ctx, u.ID, goal.ID, core.Money{Cents: 100000})
	if err != nil {
		t.Fatalf("add savings: %v", err)
	}
	if goal.Current.Cents != 350000 {
		t.Errorf("current = %d, want 350000", goal.Current.Cents)
	}

	if err := env.goals.Delete(ctx, u.ID, goal.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := env.goals.Get(ctx, u.ID, goal.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("after delete: got %v, want ErrNotFound", err)
	}
}

func TestAddSavingsValidatesAmount(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	u := env.user(t, "Budi", "budi@example.com", "")
	goal, err := env.goals.Create(ctx, core.FinancialGoal{
		UserID: u.ID, Name: "Liburan", Target: core.Money{Cents: 500000},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := env.goals.AddSavings(ctx, u.ID, goal.ID, core.Money{Cents: 0}); !errors.Is(err, core.ErrInvalidAmount) {
		t.Errorf("zero amount: got %v, want ErrInvalidAmount", err)
	}
	if _, err := env.goals.AddSavings(ctx, u.ID, goal.ID, core.Money{Cents: -100}); !errors.Is(err, core.ErrInvalidAmount) {
		t.Errorf("negative amount: got %v, want ErrInvalidAmount", err)
	}
}

func TestGoalsArePersonal(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.user(t, "Budi", "budi@example.com", "Keluarga")
	member := env.user(t, "Sari", "sari@example.com", "Keluarga")

	goal, err := env.goals.Create(ctx, core.FinancialGoal{
		UserID: owner.ID, Name: "Rumah baru", Target: core.Money{Cents: 10000000},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Family membership grants no access to goals.
	if _, err := env.goals.Get(ctx, member.ID, goal.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("cross-member get: got %v, want ErrNotFound", err)
	}
	goals, err := env.goals.List(ctx, member.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(goals) != 0 {
		t.Errorf("member sees %d goals", len(goals))
	}
}
