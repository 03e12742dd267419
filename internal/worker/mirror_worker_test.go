package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"duitku/internal/amqp"
	"duitku/internal/core"
	"duitku/internal/log"
	"duitku/internal/sheets"
	"duitku/internal/storage"
)

type fakeAppender struct {
	rows []sheets.Row
	err  error
}

func (f *fakeAppender) Append(_ context.Context, row sheets.Row) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.rows = append(f.rows, row)
	return "Transactions!A2:F2", nil
}

func newTestWorker(t *testing.T) (*MirrorWorker, *storage.SQLiteRepository, *fakeAppender) {
	t.Helper()

	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	appender := &fakeAppender{}
	logger := log.New(log.Config{Handler: slog.NewTextHandler(io.Discard, nil)})
	return NewMirrorWorker(repo, appender, 25, logger), repo, appender
}

func seedExpense(t *testing.T, repo *storage.SQLiteRepository) core.Expense {
	t.Helper()
	ctx := context.Background()

	user, err := repo.RegisterUser(ctx, "Budi", "budi@example.com", "x", "")
	if err != nil {
		t.Fatalf("register user: %v", err)
	}
	cat, err := repo.CreateCategory(ctx, core.Category{UserID: user.ID, Name: "Makanan", CreatedBy: user.Name})
	if err != nil {
		t.Fatalf("create category: %v", err)
	}
	expense, err := repo.CreateExpense(ctx, core.Expense{
		UserID:      user.ID,
		CategoryID:  &cat.ID,
		Amount:      core.Money{Cents: 12500},
		Description: "Nasi goreng",
		Date:        core.DateOf(time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC)),
		CreatedBy:   user.Name,
	})
	if err != nil {
		t.Fatalf("create expense: %v", err)
	}
	return expense
}

func TestHandleMessageMirrorsExpense(t *testing.T) {
	w, repo, appender := newTestWorker(t)
	ctx := context.Background()
	expense := seedExpense(t, repo)

	err := w.HandleMessage(ctx, &amqp.TransactionMessage{Kind: core.KindExpense, ID: expense.ID})
	if err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}

	if len(appender.rows) != 1 {
		t.Fatalf("appended %d rows, want 1", len(appender.rows))
	}
	row := appender.rows[0]
	if row.Kind != core.KindExpense || row.Category != "Makanan" || row.Amount.Cents != 12500 {
		t.Errorf("row = %+v", row)
	}
	if row.CreatedBy != "Budi" {
		t.Errorf("createdBy = %q", row.CreatedBy)
	}

	pending, err := repo.UnsyncedExpenses(ctx, 10)
	if err != nil {
		t.Fatalf("UnsyncedExpenses: %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("%d rows still pending after mirror", len(pending))
	}
}

func TestHandleMessageMissingRowIsDone(t *testing.T) {
	w, _, appender := newTestWorker(t)

	// A vanished row must not error, or the queue would redeliver forever.
	err := w.HandleMessage(context.Background(), &amqp.TransactionMessage{Kind: core.KindExpense, ID: 9999})
	if err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}
	if len(appender.rows) != 0 {
		t.Errorf("appended %d rows for a missing expense", len(appender.rows))
	}
}

func TestHandleMessageUnknownKindIsDropped(t *testing.T) {
	w, _, appender := newTestWorker(t)

	err := w.HandleMessage(context.Background(), &amqp.TransactionMessage{Kind: "transfer", ID: 1})
	if err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}
	if len(appender.rows) != 0 {
		t.Errorf("appended %d rows for an unknown kind", len(appender.rows))
	}
}

func TestHandleMessageAppendFailureKeepsRowPending(t *testing.T) {
	w, repo, appender := newTestWorker(t)
	ctx := context.Background()
	expense := seedExpense(t, repo)

	appender.err = errors.New("sheets unavailable")
	err := w.HandleMessage(ctx, &amqp.TransactionMessage{Kind: core.KindExpense, ID: expense.ID})
	if err == nil {
		t.Fatal("expected error when append fails")
	}

	pending, err := repo.UnsyncedExpenses(ctx, 10)
	if err != nil {
		t.Fatalf("UnsyncedExpenses: %v", err)
	}
	if len(pending) != 1 {
		t.Errorf("%d rows pending, want 1", len(pending))
	}
}

func TestProcessPendingSweepsBothKinds(t *testing.T) {
	w, repo, appender := newTestWorker(t)
	ctx := context.Background()
	expense := seedExpense(t, repo)

	income, err := repo.CreateIncome(ctx, core.Income{
		UserID:    expense.UserID,
		Amount:    core.Money{Cents: 500000},
		Source:    "Gaji",
		Date:      core.DateOf(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)),
		CreatedBy: "Budi",
	})
	if err != nil {
		t.Fatalf("create income: %v", err)
	}

	if err := w.ProcessPending(ctx); err != nil {
		t.Fatalf("ProcessPending: %v", err)
	}
	if len(appender.rows) != 2 {
		t.Fatalf("appended %d rows, want 2", len(appender.rows))
	}

	// Income rows carry the source in the category column.
	var foundIncome bool
	for _, row := range appender.rows {
		if row.Kind == core.KindIncome {
			foundIncome = true
			if row.Category != "Gaji" || row.Amount.Cents != income.Amount.Cents {
				t.Errorf("income row = %+v", row)
			}
		}
	}
	if !foundIncome {
		t.Error("no income row appended")
	}

	// A second sweep finds nothing left.
	appender.rows = nil
	if err := w.ProcessPending(ctx); err != nil {
		t.Fatalf("second ProcessPending: %v", err)
	}
	if len(appender.rows) != 0 {
		t.Errorf("second sweep appended %d rows", len(appender.rows))
	}
}
