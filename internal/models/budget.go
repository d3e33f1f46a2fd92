package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/pocketledger/backend/internal/types"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Budget is a spending target for one category in one calendar month.
//
// Spent is a cached aggregate over the expense transactions sharing the
// budget's (user, category, month) key. It is maintained incrementally by
// the transaction mutation functions and can be rebuilt from scratch with
// RecalculateSpent.
//
// Budgets are opt-in: expenses in a category without a budget for their
// month are not tracked anywhere and do not create a budget.
type Budget struct {
	DefaultModel
	UserID     uuid.UUID `gorm:"uniqueIndex:budgets_user_category_month"`
	CategoryID uuid.UUID `gorm:"uniqueIndex:budgets_user_category_month"`
	Category   Category
	Month      types.Month     `gorm:"uniqueIndex:budgets_user_category_month"`
	Amount     decimal.Decimal `gorm:"type:DECIMAL(20,2)"`
	Spent      decimal.Decimal `gorm:"type:DECIMAL(20,2)"`
}

// validate checks the business rules for the budget.
func (b Budget) validate(tx *gorm.DB) error {
	if b.Amount.IsNegative() {
		return ErrBudgetAmountNegative
	}

	if !b.Amount.Equal(b.Amount.Round(2)) {
		return ErrAmountPrecision
	}

	if b.Month.IsZero() {
		return ErrBudgetMonthRequired
	}

	_, err := categoryOwnedBy(tx, b.CategoryID, b.UserID)
	return err
}

// applyBudgetDelta adjusts the cached spent value of the budget matching
// the (user, category, month of date) key.
//
// The increment is executed by the database so that concurrent writers
// cannot lose updates. When no budget exists for the key, the delta is
// dropped: budgets are opt-in per category and month.
func applyBudgetDelta(tx *gorm.DB, userID, categoryID uuid.UUID, date time.Time, delta decimal.Decimal) error {
	month := types.MonthOf(date)

	return tx.Model(&Budget{}).
		Where("user_id = ? AND category_id = ? AND month = ?", userID, categoryID, month).
		Update("spent", gorm.Expr("spent + ?", delta)).Error
}

// recomputeSpent rebuilds the cached spent value from the expense
// transactions in the budget's month.
func (b *Budget) recomputeSpent(tx *gorm.DB) error {
	var spent decimal.NullDecimal

	err := tx.Table("transactions").
		Select("SUM(amount)").
		Where("user_id = ? AND category_id = ? AND type = ?", b.UserID, b.CategoryID, TransactionTypeExpense).
		Where("date >= date(?) AND date < date(?)", b.Month, b.Month.AddDate(0, 1)).
		Where("deleted_at IS NULL").
		Find(&spent).Error
	if err != nil {
		return err
	}

	b.Spent = decimal.Zero
	if spent.Valid {
		b.Spent = spent.Decimal
	}

	return tx.Model(b).Update("spent", b.Spent).Error
}

// GetOrCreateBudget returns the budget for the (user, category, month) key,
// creating it if it does not exist and updating its amount if it does.
//
// A freshly created budget's spent value is seeded from the expense
// transactions that already exist for its key.
func GetOrCreateBudget(db *gorm.DB, userID, categoryID uuid.UUID, month types.Month, amount decimal.Decimal) (Budget, error) {
	budget := Budget{
		UserID:     userID,
		CategoryID: categoryID,
		Month:      month,
		Amount:     amount,
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := budget.validate(tx); err != nil {
			return err
		}

		var existing Budget
		err := tx.Where("user_id = ? AND category_id = ? AND month = ?", userID, categoryID, month).First(&existing).Error
		if err == nil {
			err = tx.Model(&existing).Update("amount", amount).Error
			if err != nil {
				return err
			}

			budget = existing
			return nil
		}

		if !errors.Is(err, ErrResourceNotFound) {
			return err
		}

		if err := tx.Create(&budget).Error; err != nil {
			return err
		}

		return budget.recomputeSpent(tx)
	})
	if err != nil {
		return Budget{}, err
	}

	return budget, nil
}

// UpdateBudgetAmount sets a new amount for the budget.
func UpdateBudgetAmount(db *gorm.DB, budget *Budget, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return ErrBudgetAmountNegative
	}

	if !amount.Equal(amount.Round(2)) {
		return ErrAmountPrecision
	}

	// Select the amount column explicitly so that a Category loaded on
	// the model is not saved along with it
	return db.Model(budget).Select("Amount").Updates(Budget{Amount: amount}).Error
}

// BudgetsForMonth returns all budgets of the user in the month.
func BudgetsForMonth(db *gorm.DB, userID uuid.UUID, month types.Month) ([]Budget, error) {
	budgets := []Budget{}

	err := db.
		Joins("Category").
		Where("budgets.user_id = ? AND budgets.month = ?", userID, month).
		Order("Category.name ASC").
		Find(&budgets).Error
	if err != nil {
		return nil, err
	}

	return budgets, nil
}

// RecalculateSpent rebuilds the spent value of every budget of the user in
// the month. It is the repair counterpart to the incremental deltas.
func RecalculateSpent(db *gorm.DB, userID uuid.UUID, month types.Month) ([]Budget, error) {
	var budgets []Budget

	err := db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("user_id = ? AND month = ?", userID, month).Find(&budgets).Error
		if err != nil {
			return err
		}

		for i := range budgets {
			if err := budgets[i].recomputeSpent(tx); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return budgets, nil
}

// CopyBudgets creates budgets for the target month from the previous
// month's budgets.
//
// Categories that already have a budget in the target month are left
// untouched. New budgets copy the amount and start with spent = 0. When
// the previous month has no budgets at all there is nothing to copy and
// an error is returned.
func CopyBudgets(db *gorm.DB, userID uuid.UUID, targetMonth types.Month) ([]Budget, error) {
	previousMonth := targetMonth.AddDate(0, -1)
	budgets := []Budget{}

	err := db.Transaction(func(tx *gorm.DB) error {
		var source []Budget
		err := tx.Where("user_id = ? AND month = ?", userID, previousMonth).Find(&source).Error
		if err != nil {
			return err
		}

		if len(source) == 0 {
			return ErrNoBudgetsToCopy
		}

		for _, previous := range source {
			var existing Budget
			err := tx.Where("user_id = ? AND category_id = ? AND month = ?", userID, previous.CategoryID, targetMonth).First(&existing).Error
			if err == nil {
				budgets = append(budgets, existing)
				continue
			}

			if !errors.Is(err, ErrResourceNotFound) {
				return err
			}

			budget := Budget{
				UserID:     userID,
				CategoryID: previous.CategoryID,
				Month:      targetMonth,
				Amount:     previous.Amount,
				Spent:      decimal.Zero,
			}

			if err := tx.Create(&budget).Error; err != nil {
				return err
			}

			budgets = append(budgets, budget)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return budgets, nil
}
