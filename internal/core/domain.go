package core

import (
	"strings"
	"time"
)

const (
	Daily   Frequency = "daily"
	Weekly  Frequency = "weekly"
	Monthly Frequency = "monthly"
	Yearly  Frequency = "yearly"
)

const (
	KindIncome  TransactionKind = "income"
	KindExpense TransactionKind = "expense"
)

type (
	// Frequency is the repetition period of a recurring transaction.
	Frequency string

	// TransactionKind distinguishes money coming in from money going out.
	TransactionKind string

	User struct {
		ID        int64
		Name      string
		Email     string
		FamilyID  *int64
		CreatedAt time.Time
	}

	// Family is a sharing group. Exactly one member owns it; aggregation
	// scope extends to every member.
	Family struct {
		ID        int64
		Name      string
		OwnerID   int64
		CreatedAt time.Time
	}

	// Category is scoped to the user who created it, not the family.
	Category struct {
		ID        int64
		UserID    int64
		Name      string
		CreatedBy string
		CreatedAt time.Time
	}

	Expense struct {
		ID            int64
		UserID        int64
		CategoryID    *int64
		Amount        Money
		Description   string
		PaymentMethod string
		Date          Date
		CreatedAt     time.Time
		CreatedBy     string
	}

	Income struct {
		ID          int64
		UserID      int64
		Amount      Money
		Source      string
		Description string
		Date        Date
		CreatedAt   time.Time
		CreatedBy   string
	}

	// Budget is unique per (user, category, year, month); saving the same
	// key again overwrites the amount.
	Budget struct {
		ID         int64
		UserID     int64
		CategoryID int64
		Amount     Money
		Month      int
		Year       int
		CreatedBy  string
	}

	// RecurringTransaction is a template that materializes into concrete
	// Income or Expense rows. NextDate is the only mutable scheduling
	// state and moves strictly forward.
	RecurringTransaction struct {
		ID          int64
		UserID      int64
		Kind        TransactionKind
		Amount      Money
		Description string
		CategoryID  *int64
		Source      string
		Frequency   Frequency
		StartDate   Date
		NextDate    Date
		EndDate     Date
		CreatedAt   time.Time
		CreatedBy   string
	}

	FinancialGoal struct {
		ID         int64
		UserID     int64
		Name       string
		Target     Money
		Current    Money
		TargetDate Date
		CreatedAt  time.Time
		CreatedBy  string
	}

	// ReportFilters narrow aggregation queries. All conditions are ANDed;
	// zero values mean "no constraint".
	ReportFilters struct {
		From        Date    `json:"from"`
		To          Date    `json:"to"`
		CategoryIDs []int64 `json:"categoryIds"`
	}

	// CustomReport is a saved set of filters under a user-chosen name.
	CustomReport struct {
		ID        int64
		UserID    int64
		Name      string
		Filters   ReportFilters
		CreatedAt time.Time
	}
)

func (f Frequency) Validate() error {
	switch f {
	case Daily, Weekly, Monthly, Yearly:
		return nil
	default:
		return ErrInvalidFrequency
	}
}

func (k TransactionKind) Validate() error {
	switch k {
	case KindIncome, KindExpense:
		return nil
	default:
		return validation("type must be income or expense")
	}
}

func (e Expense) Validate() error {
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if len(e.Description) > 200 {
		return ErrDescriptionLong
	}
	return nil
}

func (i Income) Validate() error {
	if err := i.Date.Validate(); err != nil {
		return err
	}
	if err := i.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(i.Source) == "" {
		return ErrEmptySource
	}
	if len(i.Description) > 200 {
		return ErrDescriptionLong
	}
	return nil
}

func (b Budget) Validate() error {
	if err := b.Amount.Validate(); err != nil {
		return err
	}
	if b.CategoryID <= 0 {
		return ErrMissingCategory
	}
	if b.Month < 1 || b.Month > 12 {
		return ErrInvalidMonth
	}
	return nil
}

func (rt RecurringTransaction) Validate() error {
	if err := rt.Kind.Validate(); err != nil {
		return err
	}
	if err := rt.Amount.Validate(); err != nil {
		return err
	}
	if err := rt.Frequency.Validate(); err != nil {
		return err
	}
	if err := rt.StartDate.Validate(); err != nil {
		return err
	}
	if rt.Kind == KindExpense && (rt.CategoryID == nil || *rt.CategoryID <= 0) {
		return ErrMissingCategory
	}
	if rt.Kind == KindIncome && strings.TrimSpace(rt.Source) == "" {
		return ErrMissingSource
	}
	if !rt.EndDate.IsZero() && rt.EndDate.Before(rt.StartDate) {
		return validation("end date must not precede start date")
	}
	if len(rt.Description) > 200 {
		return ErrDescriptionLong
	}
	return nil
}

func (g FinancialGoal) Validate() error {
	if len(strings.TrimSpace(g.Name)) < 3 {
		return validation("goal name must be at least 3 characters")
	}
	return g.Target.Validate()
}

// NextOccurrence advances a schedule date by exactly one period. Monthly and
// yearly use calendar arithmetic, so Jan 31 + 1 month rolls over the way
// time.AddDate does.
func NextOccurrence(freq Frequency, after Date) Date {
	switch freq {
	case Daily:
		return Date{Time: after.AddDate(0, 0, 1)}
	case Weekly:
		return Date{Time: after.AddDate(0, 0, 7)}
	case Monthly:
		return Date{Time: after.AddDate(0, 1, 0)}
	case Yearly:
		return Date{Time: after.AddDate(1, 0, 0)}
	default:
		return after
	}
}
