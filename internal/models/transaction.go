package models

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TransactionType is the effect a transaction has on the user's funds.
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "INCOME"
	TransactionTypeExpense TransactionType = "EXPENSE"
)

// Valid reports whether the type is one of the known transaction types.
func (t TransactionType) Valid() bool {
	return t == TransactionTypeIncome || t == TransactionTypeExpense
}

// Transaction represents a single income or expense of a user.
type Transaction struct {
	DefaultModel
	UserID       uuid.UUID       `gorm:"index"`
	CategoryID   uuid.UUID
	Category     Category
	RecurrenceID *uuid.UUID      // Set when the transaction was generated from a recurrence
	Date         time.Time       // Time of day is currently only used for sorting
	Amount       decimal.Decimal `gorm:"type:DECIMAL(20,2)"`
	Type         TransactionType
	Note         string
}

// AfterFind updates the timestamps to use UTC as
// timezone, not +0000. Yes, this is different.
//
// We already store them in UTC, but somehow reading
// them from the database returns them as +0000.
func (t *Transaction) AfterFind(tx *gorm.DB) (err error) {
	err = t.DefaultModel.AfterFind(tx)
	if err != nil {
		return err
	}

	t.Date = t.Date.In(time.UTC)
	return
}

// BeforeSave
//   - sets the timezone for the Date to UTC
//   - trims whitespace from string fields
func (t *Transaction) BeforeSave(_ *gorm.DB) (err error) {
	t.Note = strings.TrimSpace(t.Note)

	// Ensure that the RecurrenceID is nil and not a pointer to a nil UUID
	if t.RecurrenceID != nil && *t.RecurrenceID == uuid.Nil {
		t.RecurrenceID = nil
	}

	t.Date = t.Date.In(time.UTC)

	return
}

// validate checks the business rules for the transaction. It is called by
// the mutation functions below, before create and after the fields of an
// update have been applied.
func (t Transaction) validate(tx *gorm.DB) error {
	if !t.Type.Valid() {
		return ErrTransactionTypeInvalid
	}

	if !t.Amount.IsPositive() {
		return ErrTransactionAmountNotPositive
	}

	if !t.Amount.Equal(t.Amount.Round(2)) {
		return ErrAmountPrecision
	}

	if t.Date.IsZero() {
		return ErrTransactionDateRequired
	}

	_, err := categoryOwnedBy(tx, t.CategoryID, t.UserID)
	return err
}

// CreateTransaction persists a new transaction.
//
// The insert and the budget adjustment for expenses are one atomic unit: a
// transaction is never visible without its contribution to the budget's
// spent value.
func CreateTransaction(db *gorm.DB, transaction *Transaction) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := transaction.validate(tx); err != nil {
			return err
		}

		if err := tx.Create(transaction).Error; err != nil {
			return err
		}

		if transaction.Type == TransactionTypeExpense {
			return applyBudgetDelta(tx, transaction.UserID, transaction.CategoryID, transaction.Date, transaction.Amount)
		}

		return nil
	})
}

// UpdateTransaction applies a partial update to the transaction.
//
// Budget consistency is kept by reversing the old contribution before the
// fields change and applying the resulting contribution afterwards. This
// handles every type transition as well as moves between categories and
// months. Both ledger sides and the row update commit or roll back
// together.
func UpdateTransaction(db *gorm.DB, transaction *Transaction, update Transaction, fields []any) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if transaction.Type == TransactionTypeExpense {
			err := applyBudgetDelta(tx, transaction.UserID, transaction.CategoryID, transaction.Date, transaction.Amount.Neg())
			if err != nil {
				return err
			}
		}

		// Check the target category before the row update so that an
		// unknown category surfaces as a lookup failure, not as a
		// foreign key violation
		if slices.Contains(fields, any("CategoryID")) {
			if _, err := categoryOwnedBy(tx, update.CategoryID, transaction.UserID); err != nil {
				return err
			}
		}

		err := tx.Model(transaction).Select("", fields...).Updates(update).Error
		if err != nil {
			return err
		}

		// The model now holds the resulting state
		if err := transaction.validate(tx); err != nil {
			return err
		}

		if transaction.Type == TransactionTypeExpense {
			return applyBudgetDelta(tx, transaction.UserID, transaction.CategoryID, transaction.Date, transaction.Amount)
		}

		return nil
	})
}

// DeleteTransaction deletes the transaction and reverses its budget
// contribution in the same atomic unit.
func DeleteTransaction(db *gorm.DB, transaction *Transaction) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if transaction.Type == TransactionTypeExpense {
			err := applyBudgetDelta(tx, transaction.UserID, transaction.CategoryID, transaction.Date, transaction.Amount.Neg())
			if err != nil {
				return err
			}
		}

		return tx.Delete(transaction).Error
	})
}

// CategorySum is the spending in a single category.
type CategorySum struct {
	CategoryID uuid.UUID       `json:"categoryId"`
	Category   string          `json:"category"`
	Amount     decimal.Decimal `json:"amount"`
}

// Summary aggregates the transactions of a user over a date range.
type Summary struct {
	TotalIncome   decimal.Decimal `json:"totalIncome"`
	TotalExpenses decimal.Decimal `json:"totalExpenses"`
	NetSavings    decimal.Decimal `json:"netSavings"`
	ByCategory    []CategorySum   `json:"byCategory"`
}

// Summarize computes the transaction summary for [from, until).
func Summarize(db *gorm.DB, userID uuid.UUID, from, until time.Time) (Summary, error) {
	summary := Summary{
		TotalIncome:   decimal.Zero,
		TotalExpenses: decimal.Zero,
		ByCategory:    []CategorySum{},
	}

	for transactionType, target := range map[TransactionType]*decimal.Decimal{
		TransactionTypeIncome:  &summary.TotalIncome,
		TransactionTypeExpense: &summary.TotalExpenses,
	} {
		var sum decimal.NullDecimal

		err := db.Table("transactions").
			Select("SUM(amount)").
			Where("user_id = ? AND type = ?", userID, transactionType).
			Where("date >= date(?) AND date < date(?)", from, until).
			Where("deleted_at IS NULL").
			Find(&sum).Error
		if err != nil {
			return Summary{}, err
		}

		if sum.Valid {
			*target = sum.Decimal
		}
	}

	summary.NetSavings = summary.TotalIncome.Sub(summary.TotalExpenses)

	err := db.Table("transactions").
		Select("transactions.category_id AS category_id, categories.name AS category, SUM(transactions.amount) AS amount").
		Joins("JOIN categories ON categories.id = transactions.category_id").
		Where("transactions.user_id = ? AND transactions.type = ?", userID, TransactionTypeExpense).
		Where("transactions.date >= date(?) AND transactions.date < date(?)", from, until).
		Where("transactions.deleted_at IS NULL").
		Group("transactions.category_id, categories.name").
		Order("amount DESC").
		Find(&summary.ByCategory).Error
	if err != nil {
		return Summary{}, err
	}

	return summary, nil
}
