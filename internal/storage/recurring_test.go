package storage

import (
	"context"
	"errors"
	"testing"

	"duitku/internal/core"
)

func seedRecurringExpense(t *testing.T, repo *SQLiteRepository, userID int64, categoryID *int64, next core.Date) core.RecurringTransaction {
	t.Helper()
	rt, err := repo.CreateRecurring(context.Background(), core.RecurringTransaction{
		UserID:      userID,
		Kind:        core.KindExpense,
		Amount:      core.Money{Cents: 1500},
		Description: "Netflix",
		CategoryID:  categoryID,
		Frequency:   core.Monthly,
		StartDate:   next,
		NextDate:    next,
	})
	if err != nil {
		t.Fatalf("seed recurring: %v", err)
	}
	return rt
}

func TestDueRecurring(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	u := seedUser(t, repo, "Budi", "budi@example.com", "")
	cat := seedCategory(t, repo, u.ID, "Langganan")

	overdue := seedRecurringExpense(t, repo, u.ID, &cat.ID, core.NewDate(2025, 3, 1))
	dueToday := seedRecurringExpense(t, repo, u.ID, &cat.ID, core.NewDate(2025, 3, 9))
	seedRecurringExpense(t, repo, u.ID, &cat.ID, core.NewDate(2025, 3, 10)) // future

	due, err := repo.DueRecurring(ctx, core.NewDate(2025, 3, 9), nil)
	if err != nil {
		t.Fatalf("due: %v", err)
	}
	if len(due) != 2 {
		t.Fatalf("due = %d, want 2", len(due))
	}
	if due[0].ID != overdue.ID || due[1].ID != dueToday.ID {
		t.Errorf("due ids = %d, %d", due[0].ID, due[1].ID)
	}
}

func TestDueRecurringScope(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	a := seedUser(t, repo, "Budi", "budi@example.com", "")
	b := seedUser(t, repo, "Sari", "sari@example.com", "")
	catA := seedCategory(t, repo, a.ID, "Langganan")
	catB := seedCategory(t, repo, b.ID, "Langganan")

	mine := seedRecurringExpense(t, repo, a.ID, &catA.ID, core.NewDate(2025, 3, 1))
	seedRecurringExpense(t, repo, b.ID, &catB.ID, core.NewDate(2025, 3, 1))

	due, err := repo.DueRecurring(ctx, core.NewDate(2025, 3, 9), []int64{a.ID})
	if err != nil {
		t.Fatalf("due: %v", err)
	}
	if len(due) != 1 || due[0].ID != mine.ID {
		t.Fatalf("due = %+v, want only definition %d", due, mine.ID)
	}

	// An empty scope means every user.
	all, err := repo.DueRecurring(ctx, core.NewDate(2025, 3, 9), nil)
	if err != nil {
		t.Fatalf("due all: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("due all = %d, want 2", len(all))
	}
}

func TestListRecurringScope(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	a := seedUser(t, repo, "Budi", "budi@example.com", "")
	b := seedUser(t, repo, "Sari", "sari@example.com", "")
	catA := seedCategory(t, repo, a.ID, "Langganan")
	catB := seedCategory(t, repo, b.ID, "Langganan")

	seedRecurringExpense(t, repo, a.ID, &catA.ID, core.NewDate(2025, 4, 1))
	seedRecurringExpense(t, repo, b.ID, &catB.ID, core.NewDate(2025, 3, 1))

	defs, err := repo.ListRecurring(ctx, []int64{a.ID, b.ID})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(defs) != 2 {
		t.Fatalf("defs = %d, want 2", len(defs))
	}
	// Soonest next date first, regardless of owner.
	if defs[0].UserID != b.ID || defs[1].UserID != a.ID {
		t.Errorf("order = user %d, user %d", defs[0].UserID, defs[1].UserID)
	}

	solo, err := repo.ListRecurring(ctx, []int64{a.ID})
	if err != nil {
		t.Fatalf("list solo: %v", err)
	}
	if len(solo) != 1 || solo[0].UserID != a.ID {
		t.Errorf("solo = %+v", solo)
	}
}

func TestMaterializeExpenseAdvancesSchedule(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	u := seedUser(t, repo, "Budi", "budi@example.com", "")
	cat := seedCategory(t, repo, u.ID, "Langganan")
	rt := seedRecurringExpense(t, repo, u.ID, &cat.ID, core.NewDate(2025, 3, 8))

	e, err := repo.MaterializeExpense(ctx, core.Expense{
		UserID:      u.ID,
		CategoryID:  &cat.ID,
		Amount:      rt.Amount,
		Description: rt.Description,
		Date:        rt.NextDate,
	}, rt.ID, core.NewDate(2025, 4, 8))
	if err != nil {
		t.Fatalf("materialize: %v", err)
	}
	if e.ID == 0 {
		t.Fatal("no expense id assigned")
	}

	// The concrete row carries the scheduled date, not today.
	got, err := repo.GetExpense(ctx, u.ID, e.ID)
	if err != nil {
		t.Fatalf("get expense: %v", err)
	}
	if got.Date.String() != "2025-03-08" {
		t.Errorf("expense date = %s, want 2025-03-08", got.Date)
	}

	// The definition moved forward.
	after, err := repo.GetRecurring(ctx, u.ID, rt.ID)
	if err != nil {
		t.Fatalf("get recurring: %v", err)
	}
	if after.NextDate.String() != "2025-04-08" {
		t.Errorf("next date = %s, want 2025-04-08", after.NextDate)
	}

	// No longer due as of the old date.
	due, err := repo.DueRecurring(ctx, core.NewDate(2025, 3, 9), nil)
	if err != nil {
		t.Fatalf("due: %v", err)
	}
	if len(due) != 0 {
		t.Errorf("due after materialize = %d, want 0", len(due))
	}
}

func TestMaterializeExpenseUnknownDefinitionRollsBack(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	u := seedUser(t, repo, "Budi", "budi@example.com", "")

	_, err := repo.MaterializeExpense(ctx, core.Expense{
		UserID: u.ID,
		Amount: core.Money{Cents: 100},
		Date:   core.NewDate(2025, 3, 9),
	}, 9999, core.NewDate(2025, 4, 9))
	if !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}

	// The expense insert must have rolled back with it.
	expenses, err := repo.ListExpenses(ctx, []int64{u.ID})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(expenses) != 0 {
		t.Errorf("expenses = %d after rollback, want 0", len(expenses))
	}
}

func TestMaterializeIncome(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	u := seedUser(t, repo, "Budi", "budi@example.com", "")
	rt, err := repo.CreateRecurring(ctx, core.RecurringTransaction{
		UserID:    u.ID,
		Kind:      core.KindIncome,
		Amount:    core.Money{Cents: 500000},
		Source:    "Gaji",
		Frequency: core.Monthly,
		StartDate: core.NewDate(2025, 3, 1),
		NextDate:  core.NewDate(2025, 3, 1),
	})
	if err != nil {
		t.Fatalf("create recurring: %v", err)
	}

	in, err := repo.MaterializeIncome(ctx, core.Income{
		UserID: u.ID,
		Amount: rt.Amount,
		Source: rt.Source,
		Date:   rt.NextDate,
	}, rt.ID, core.NewDate(2025, 4, 1))
	if err != nil {
		t.Fatalf("materialize: %v", err)
	}

	got, err := repo.GetIncome(ctx, u.ID, in.ID)
	if err != nil {
		t.Fatalf("get income: %v", err)
	}
	if got.Source != "Gaji" || got.Amount.Cents != 500000 {
		t.Errorf("income = %+v", got)
	}
}

func TestDeleteRecurringLeavesHistory(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	u := seedUser(t, repo, "Budi", "budi@example.com", "")
	cat := seedCategory(t, repo, u.ID, "Langganan")
	rt := seedRecurringExpense(t, repo, u.ID, &cat.ID, core.NewDate(2025, 3, 8))

	e, err := repo.MaterializeExpense(ctx, core.Expense{
		UserID: u.ID, CategoryID: &cat.ID, Amount: rt.Amount, Date: rt.NextDate,
	}, rt.ID, core.NewDate(2025, 4, 8))
	if err != nil {
		t.Fatalf("materialize: %v", err)
	}

	if err := repo.DeleteRecurring(ctx, u.ID, rt.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	// Materialized rows survive the definition.
	if _, err := repo.GetExpense(ctx, u.ID, e.ID); err != nil {
		t.Errorf("materialized expense gone: %v", err)
	}
}
