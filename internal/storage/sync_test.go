package storage

import (
	"context"
	"testing"

	"duitku/internal/core"
)

func TestUnsyncedExpensesLifecycle(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	u := seedUser(t, repo, "Budi", "budi@example.com", "")
	e1 := seedExpense(t, repo, u.ID, nil, 10000, core.NewDate(2025, 3, 5))
	e2 := seedExpense(t, repo, u.ID, nil, 5000, core.NewDate(2025, 3, 6))

	pending, err := repo.UnsyncedExpenses(ctx, 10)
	if err != nil {
		t.Fatalf("unsynced: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("pending = %d, want 2", len(pending))
	}
	if pending[0].ID != e1.ID {
		t.Errorf("oldest first: got %d", pending[0].ID)
	}

	if err := repo.MarkExpenseSynced(ctx, e1.ID); err != nil {
		t.Fatalf("mark synced: %v", err)
	}
	pending, err = repo.UnsyncedExpenses(ctx, 10)
	if err != nil {
		t.Fatalf("unsynced: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != e2.ID {
		t.Errorf("pending after mark = %+v", pending)
	}

	// An update puts the row back in the queue.
	e2.Description = "edited"
	if err := repo.MarkExpenseSynced(ctx, e2.ID); err != nil {
		t.Fatalf("mark synced: %v", err)
	}
	if err := repo.UpdateExpense(ctx, e2); err != nil {
		t.Fatalf("update: %v", err)
	}
	pending, err = repo.UnsyncedExpenses(ctx, 10)
	if err != nil {
		t.Fatalf("unsynced: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != e2.ID {
		t.Errorf("updated row not re-queued: %+v", pending)
	}
}

func TestUnsyncedExpensesLimit(t *testing.T) {
	repo := newTestRepo(t)
	u := seedUser(t, repo, "Budi", "budi@example.com", "")
	for i := 0; i < 5; i++ {
		seedExpense(t, repo, u.ID, nil, 1000, core.NewDate(2025, 3, 5))
	}

	pending, err := repo.UnsyncedExpenses(context.Background(), 3)
	if err != nil {
		t.Fatalf("unsynced: %v", err)
	}
	if len(pending) != 3 {
		t.Errorf("pending = %d, want 3", len(pending))
	}
}

func TestExpenseForMirrorResolvesCategory(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	u := seedUser(t, repo, "Budi", "budi@example.com", "")
	cat := seedCategory(t, repo, u.ID, "Makanan")
	e := seedExpense(t, repo, u.ID, &cat.ID, 10000, core.NewDate(2025, 3, 5))

	got, err := repo.ExpenseForMirror(ctx, e.ID)
	if err != nil {
		t.Fatalf("for mirror: %v", err)
	}
	if got.CategoryName != "Makanan" {
		t.Errorf("category name = %q", got.CategoryName)
	}

	bare := seedExpense(t, repo, u.ID, nil, 5000, core.NewDate(2025, 3, 6))
	got, err = repo.ExpenseForMirror(ctx, bare.ID)
	if err != nil {
		t.Fatalf("for mirror: %v", err)
	}
	if got.CategoryName != "Uncategorized" {
		t.Errorf("category name = %q", got.CategoryName)
	}
}

func TestIncomeSyncLifecycle(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	u := seedUser(t, repo, "Budi", "budi@example.com", "")
	in, err := repo.CreateIncome(ctx, core.Income{
		UserID: u.ID, Amount: core.Money{Cents: 500000}, Source: "Gaji", Date: core.NewDate(2025, 3, 1),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	pending, err := repo.UnsyncedIncomes(ctx, 10)
	if err != nil {
		t.Fatalf("unsynced: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("pending = %d, want 1", len(pending))
	}

	if err := repo.MarkIncomeSynced(ctx, in.ID); err != nil {
		t.Fatalf("mark synced: %v", err)
	}
	pending, err = repo.UnsyncedIncomes(ctx, 10)
	if err != nil {
		t.Fatalf("unsynced: %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("pending after mark = %d", len(pending))
	}

	if _, err := repo.IncomeForMirror(ctx, in.ID); err != nil {
		t.Errorf("income for mirror: %v", err)
	}
}
