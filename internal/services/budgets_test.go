package services

import (
	"context"
	"errors"
	"testing"

	"duitku/internal/core"
)

func TestSaveBudgetChecksCategoryOwnership(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.user(t, "Budi", "budi@example.com", "")
	other := env.user(t, "Sari", "sari@example.com", "")
	cat := env.category(t, owner.ID, "Makanan")

	if _, err := env.budgets.Save(ctx, core.Budget{
		UserID: owner.ID, CategoryID: cat.ID,
		Amount: core.Money{Cents: 100000}, Month: 3, Year: 2025,
	}); err != nil {
		t.Fatalf("save: %v", err)
	}

	// Someone else's category is invisible, not forbidden.
	if _, err := env.budgets.Save(ctx, core.Budget{
		UserID: other.ID, CategoryID: cat.ID,
		Amount: core.Money{Cents: 100000}, Month: 3, Year: 2025,
	}); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("foreign category: got %v, want ErrNotFound", err)
	}
}

func TestBudgetProgressCountsFamilySpending(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.user(t, "Budi", "budi@example.com", "Keluarga")
	member := env.user(t, "Sari", "sari@example.com", "Keluarga")
	cat := env.category(t, owner.ID, "Makanan")

	if _, err := env.budgets.Save(ctx, core.Budget{
		UserID: owner.ID, CategoryID: cat.ID,
		Amount: core.Money{Cents: 100000}, Month: 3, Year: 2025,
	}); err != nil {
		t.Fatalf("save: %v", err)
	}

	env.expense(t, owner.ID, &cat.ID, 30000, core.NewDate(2025, 3, 5))
	env.expense(t, member.ID, &cat.ID, 25000, core.NewDate(2025, 3, 10))

	budgets, err := env.budgets.List(ctx, owner.ID, 2025, 3)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(budgets) != 1 {
		t.Fatalf("budgets = %d, want 1", len(budgets))
	}
	if budgets[0].Spent.Cents != 55000 {
		t.Errorf("spent = %d, want 55000", budgets[0].Spent.Cents)
	}
}

func TestListBudgetsRejectsBadMonth(t *testing.T) {
	env := newTestEnv(t)
	u := env.user(t, "Budi", "budi@example.com", "")

	if _, err := env.budgets.List(context.Background(), u.ID, 2025, 0); !errors.Is(err, core.ErrInvalidMonth) {
		t.Errorf("month 0: got %v, want ErrInvalidMonth", err)
	}
	if _, err := env.budgets.List(context.Background(), u.ID, 2025, 13); !errors.Is(err, core.ErrInvalidMonth) {
		t.Errorf("month 13: got %v, want ErrInvalidMonth", err)
	}
}
