package services

import (
	"context"
	"fmt"
	"time"

	"duitku/internal/amqp"
	"duitku/internal/core"
	"duitku/internal/log"
	"duitku/internal/storage"
)

// RecurringService manages recurring definitions and materializes the ones
// that have come due.
type RecurringService struct {
	storage    *storage.SQLiteRepository
	amqpClient *amqp.Client
	reports    *ReportsService
	family     *FamilyService
	logger     *log.Logger
}

func NewRecurringService(storage *storage.SQLiteRepository, amqpClient *amqp.Client, family *FamilyService, reports *ReportsService, logger *log.Logger) *RecurringService {
	return &RecurringService{
		storage:    storage,
		amqpClient: amqpClient,
		family:     family,
		reports:    reports,
		logger:     logger.WithComponent(log.ComponentRecurring),
	}
}

// Create validates and stores a definition. NextDate starts at StartDate so
// the first materialization lands on the start day itself.
func (s *RecurringService) Create(ctx context.Context, rt core.RecurringTransaction) (core.RecurringTransaction, error) {
	if err := rt.Validate(); err != nil {
		return core.RecurringTransaction{}, err
	}
	if rt.NextDate.IsZero() {
		rt.NextDate = rt.StartDate
	}

	created, err := s.storage.CreateRecurring(ctx, rt)
	if err != nil {
		return core.RecurringTransaction{}, fmt.Errorf("create recurring: %w", err)
	}

	s.logger.InfoContext(ctx, "Recurring transaction created",
		log.FieldUserID, created.UserID,
		log.FieldKind, string(created.Kind),
		"frequency", string(created.Frequency),
		"next_date", created.NextDate.String())
	return created, nil
}

// List returns the definitions across the caller's family scope, matching
// the expense and income listings.
func (s *RecurringService) List(ctx context.Context, userID int64) ([]core.RecurringTransaction, error) {
	scope, err := s.family.Scope(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.storage.ListRecurring(ctx, scope)
}

func (s *RecurringService) Delete(ctx context.Context, userID, id int64) error {
	return s.storage.DeleteRecurring(ctx, userID, id)
}

// ProcessResult summarizes one materializer run.
type ProcessResult struct {
	Due       int
	Processed int
	Failed    int
}

// ProcessDue materializes the caller's family-scope definitions whose next
// date is on or before today. Each definition gets its own transaction: the
// concrete row is inserted dated next_date and next_date advances exactly one
// period, even when several periods have elapsed. One bad definition never
// blocks the rest.
func (s *RecurringService) ProcessDue(ctx context.Context, userID int64, ref time.Time) (ProcessResult, error) {
	scope, err := s.family.Scope(ctx, userID)
	if err != nil {
		return ProcessResult{}, err
	}
	return s.processScope(ctx, scope, ref)
}

// ProcessAllDue drains every user's schedule. Only the worker binary calls
// it; the API endpoint stays scoped to the caller's family.
func (s *RecurringService) ProcessAllDue(ctx context.Context, ref time.Time) (ProcessResult, error) {
	return s.processScope(ctx, nil, ref)
}

func (s *RecurringService) processScope(ctx context.Context, scope []int64, ref time.Time) (ProcessResult, error) {
	today := core.DateOf(ref)

	due, err := s.storage.DueRecurring(ctx, today, scope)
	if err != nil {
		return ProcessResult{}, fmt.Errorf("load due recurring: %w", err)
	}

	result := ProcessResult{Due: len(due)}
	if len(due) == 0 {
		return result, nil
	}

	s.logger.InfoContext(ctx, "Processing due recurring transactions",
		log.FieldCount, len(due),
		log.FieldDate, today.String())

	for _, rt := range due {
		if err := s.materialize(ctx, rt); err != nil {
			result.Failed++
			s.logger.ErrorContext(ctx, "Failed to materialize recurring transaction",
				"id", rt.ID,
				log.FieldKind, string(rt.Kind),
				log.FieldError, err)
			continue
		}
		result.Processed++
	}

	s.logger.InfoContext(ctx, "Recurring processing complete",
		"due", result.Due,
		"processed", result.Processed,
		"failed", result.Failed)
	return result, nil
}

func (s *RecurringService) materialize(ctx context.Context, rt core.RecurringTransaction) error {
	newNext := core.NextOccurrence(rt.Frequency, rt.NextDate)
	description := rt.Description
	if description == "" {
		description = "Recurring"
	}

	switch rt.Kind {
	case core.KindExpense:
		expense := core.Expense{
			UserID:      rt.UserID,
			CategoryID:  rt.CategoryID,
			Amount:      rt.Amount,
			Description: description,
			Date:        rt.NextDate,
			CreatedBy:   rt.CreatedBy,
		}
		created, err := s.storage.MaterializeExpense(ctx, expense, rt.ID, newNext)
		if err != nil {
			return err
		}
		s.publishMirror(ctx, core.KindExpense, created.ID)

	case core.KindIncome:
		source := rt.Source
		if source == "" {
			source = "Recurring"
		}
		income := core.Income{
			UserID:      rt.UserID,
			Amount:      rt.Amount,
			Source:      source,
			Description: description,
			Date:        rt.NextDate,
			CreatedBy:   rt.CreatedBy,
		}
		created, err := s.storage.MaterializeIncome(ctx, income, rt.ID, newNext)
		if err != nil {
			return err
		}
		s.publishMirror(ctx, core.KindIncome, created.ID)

	default:
		return fmt.Errorf("unknown transaction kind %q", rt.Kind)
	}

	if s.reports != nil {
		scope, err := s.family.Scope(ctx, rt.UserID)
		if err != nil {
			scope = []int64{rt.UserID}
		}
		s.reports.InvalidateUsers(scope)
	}
	return nil
}

func (s *RecurringService) publishMirror(ctx context.Context, kind core.TransactionKind, id int64) {
	if s.amqpClient == nil {
		return
	}
	msg := amqp.NewTransactionMessage(kind, id)
	if err := s.amqpClient.PublishTransaction(ctx, msg); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish mirror message",
			log.FieldKind, string(kind),
			"id", id,
			log.FieldError, err)
	}
}
