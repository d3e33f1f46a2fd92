package models_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pocketledger/backend/internal/models"
	"github.com/pocketledger/backend/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (suite *TestSuiteStandard) budgetSpent(id uuid.UUID) decimal.Decimal {
	var budget models.Budget
	require.Nil(suite.T(), models.DB.First(&budget, "id = ?", id).Error)
	return budget.Spent
}

func (suite *TestSuiteStandard) TestTransactionCreateAdjustsBudget() {
	user := suite.createTestUser()
	category := suite.createTestCategory(models.Category{UserID: user, Name: "Food"})
	budget := suite.createTestBudget(models.Budget{
		UserID:     user,
		CategoryID: category.ID,
		Month:      types.NewMonth(2024, 6),
		Amount:     decimal.NewFromFloat(400),
	})

	transaction := suite.createTestTransaction(models.Transaction{
		UserID:     user,
		CategoryID: category.ID,
		Type:       models.TransactionTypeExpense,
		Amount:     decimal.NewFromFloat(50),
		Date:       time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC),
	})

	assert.True(suite.T(), suite.budgetSpent(budget.ID).Equal(decimal.NewFromFloat(50)), "spent is %s", suite.budgetSpent(budget.ID))

	// Updating the amount re-budgets the difference
	err := models.UpdateTransaction(models.DB, &transaction, models.Transaction{Amount: decimal.NewFromFloat(70)}, []any{"Amount"})
	require.Nil(suite.T(), err)
	assert.True(suite.T(), suite.budgetSpent(budget.ID).Equal(decimal.NewFromFloat(70)), "spent is %s", suite.budgetSpent(budget.ID))

	// Deleting returns the budget to its original state
	err = models.DeleteTransaction(models.DB, &transaction)
	require.Nil(suite.T(), err)
	assert.True(suite.T(), suite.budgetSpent(budget.ID).IsZero(), "spent is %s", suite.budgetSpent(budget.ID))
}

func (suite *TestSuiteStandard) TestTransactionIncomeDoesNotTouchBudget() {
	user := suite.createTestUser()
	category := suite.createTestCategory(models.Category{UserID: user, Name: "Salary"})
	budget := suite.createTestBudget(models.Budget{
		UserID:     user,
		CategoryID: category.ID,
		Month:      types.NewMonth(2024, 6),
		Amount:     decimal.NewFromFloat(100),
	})

	suite.createTestTransaction(models.Transaction{
		UserID:     user,
		CategoryID: category.ID,
		Type:       models.TransactionTypeIncome,
		Amount:     decimal.NewFromFloat(2500),
		Date:       time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
	})

	assert.True(suite.T(), suite.budgetSpent(budget.ID).IsZero())
}

func (suite *TestSuiteStandard) TestTransactionWithoutBudgetIsDropped() {
	user := suite.createTestUser()
	category := suite.createTestCategory(models.Category{UserID: user, Name: "Untracked"})

	// No budget exists for the category, the expense must still succeed
	transaction := suite.createTestTransaction(models.Transaction{
		UserID:     user,
		CategoryID: category.ID,
		Type:       models.TransactionTypeExpense,
		Amount:     decimal.NewFromFloat(13.37),
		Date:       time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC),
	})

	assert.NotEqual(suite.T(), uuid.Nil, transaction.ID)
}

func (suite *TestSuiteStandard) TestTransactionNoteUpdateKeepsBudget() {
	user := suite.createTestUser()
	category := suite.createTestCategory(models.Category{UserID: user, Name: "Food"})
	budget := suite.createTestBudget(models.Budget{
		UserID:     user,
		CategoryID: category.ID,
		Month:      types.NewMonth(2024, 6),
		Amount:     decimal.NewFromFloat(400),
	})

	transaction := suite.createTestTransaction(models.Transaction{
		UserID:     user,
		CategoryID: category.ID,
		Type:       models.TransactionTypeExpense,
		Amount:     decimal.NewFromFloat(50),
		Date:       time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC),
	})

	err := models.UpdateTransaction(models.DB, &transaction, models.Transaction{Note: "Lunch"}, []any{"Note"})
	require.Nil(suite.T(), err)

	assert.Equal(suite.T(), "Lunch", transaction.Note)
	assert.True(suite.T(), suite.budgetSpent(budget.ID).Equal(decimal.NewFromFloat(50)))
}

func (suite *TestSuiteStandard) TestTransactionMoveAcrossBudgets() {
	user := suite.createTestUser()
	food := suite.createTestCategory(models.Category{UserID: user, Name: "Food"})
	travel := suite.createTestCategory(models.Category{UserID: user, Name: "Travel"})

	foodJune := suite.createTestBudget(models.Budget{
		UserID:     user,
		CategoryID: food.ID,
		Month:      types.NewMonth(2024, 6),
		Amount:     decimal.NewFromFloat(400),
	})
	travelJuly := suite.createTestBudget(models.Budget{
		UserID:     user,
		CategoryID: travel.ID,
		Month:      types.NewMonth(2024, 7),
		Amount:     decimal.NewFromFloat(300),
	})

	transaction := suite.createTestTransaction(models.Transaction{
		UserID:     user,
		CategoryID: food.ID,
		Type:       models.TransactionTypeExpense,
		Amount:     decimal.NewFromFloat(120),
		Date:       time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC),
	})

	err := models.UpdateTransaction(models.DB, &transaction, models.Transaction{
		CategoryID: travel.ID,
		Date:       time.Date(2024, 7, 2, 0, 0, 0, 0, time.UTC),
	}, []any{"CategoryID", "Date"})
	require.Nil(suite.T(), err)

	assert.True(suite.T(), suite.budgetSpent(foodJune.ID).IsZero(), "old budget still has %s", suite.budgetSpent(foodJune.ID))
	assert.True(suite.T(), suite.budgetSpent(travelJuly.ID).Equal(decimal.NewFromFloat(120)), "new budget has %s", suite.budgetSpent(travelJuly.ID))
}

func (suite *TestSuiteStandard) TestTransactionTypeFlips() {
	user := suite.createTestUser()
	category := suite.createTestCategory(models.Category{UserID: user, Name: "Mixed"})
	budget := suite.createTestBudget(models.Budget{
		UserID:     user,
		CategoryID: category.ID,
		Month:      types.NewMonth(2024, 6),
		Amount:     decimal.NewFromFloat(200),
	})

	transaction := suite.createTestTransaction(models.Transaction{
		UserID:     user,
		CategoryID: category.ID,
		Type:       models.TransactionTypeExpense,
		Amount:     decimal.NewFromFloat(80),
		Date:       time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC),
	})

	// EXPENSE -> INCOME reverses the contribution
	err := models.UpdateTransaction(models.DB, &transaction, models.Transaction{Type: models.TransactionTypeIncome}, []any{"Type"})
	require.Nil(suite.T(), err)
	assert.True(suite.T(), suite.budgetSpent(budget.ID).IsZero())

	// INCOME -> EXPENSE applies it again
	err = models.UpdateTransaction(models.DB, &transaction, models.Transaction{Type: models.TransactionTypeExpense}, []any{"Type"})
	require.Nil(suite.T(), err)
	assert.True(suite.T(), suite.budgetSpent(budget.ID).Equal(decimal.NewFromFloat(80)))
}

func (suite *TestSuiteStandard) TestTransactionValidation() {
	user := suite.createTestUser()
	category := suite.createTestCategory(models.Category{UserID: user, Name: "Food"})

	tests := []struct {
		name        string
		transaction models.Transaction
		err         error
	}{
		{
			"negative amount",
			models.Transaction{UserID: user, CategoryID: category.ID, Type: models.TransactionTypeExpense, Amount: decimal.NewFromFloat(-1), Date: date(2024, 6, 1)},
			models.ErrTransactionAmountNotPositive,
		},
		{
			"zero amount",
			models.Transaction{UserID: user, CategoryID: category.ID, Type: models.TransactionTypeExpense, Amount: decimal.Zero, Date: date(2024, 6, 1)},
			models.ErrTransactionAmountNotPositive,
		},
		{
			"too many decimal places",
			models.Transaction{UserID: user, CategoryID: category.ID, Type: models.TransactionTypeExpense, Amount: decimal.NewFromFloat(1.999), Date: date(2024, 6, 1)},
			models.ErrAmountPrecision,
		},
		{
			"invalid type",
			models.Transaction{UserID: user, CategoryID: category.ID, Type: "TRANSFER", Amount: decimal.NewFromFloat(1), Date: date(2024, 6, 1)},
			models.ErrTransactionTypeInvalid,
		},
		{
			"no date",
			models.Transaction{UserID: user, CategoryID: category.ID, Type: models.TransactionTypeExpense, Amount: decimal.NewFromFloat(1)},
			models.ErrTransactionDateRequired,
		},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			err := models.CreateTransaction(models.DB, &tt.transaction)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func (suite *TestSuiteStandard) TestTransactionForeignCategory() {
	user := suite.createTestUser()
	other := suite.createTestUser()
	category := suite.createTestCategory(models.Category{UserID: other, Name: "Not yours"})

	err := models.CreateTransaction(models.DB, &models.Transaction{
		UserID:     user,
		CategoryID: category.ID,
		Type:       models.TransactionTypeExpense,
		Amount:     decimal.NewFromFloat(10),
		Date:       date(2024, 6, 1),
	})

	assert.ErrorIs(suite.T(), err, models.ErrResourceNotFound)
}

func (suite *TestSuiteStandard) TestUpdateTransactionUnknownCategory() {
	user := suite.createTestUser()
	category := suite.createTestCategory(models.Category{UserID: user, Name: "Food"})

	transaction := suite.createTestTransaction(models.Transaction{
		UserID:     user,
		CategoryID: category.ID,
		Type:       models.TransactionTypeExpense,
		Amount:     decimal.NewFromFloat(10),
		Date:       date(2024, 6, 5),
	})

	err := models.UpdateTransaction(models.DB, &transaction, models.Transaction{CategoryID: uuid.New()}, []any{"CategoryID"})
	assert.ErrorIs(suite.T(), err, models.ErrResourceNotFound)

	// The transaction keeps its category
	var reloaded models.Transaction
	require.Nil(suite.T(), models.DB.First(&reloaded, "id = ?", transaction.ID).Error)
	assert.Equal(suite.T(), category.ID, reloaded.CategoryID)
}

func (suite *TestSuiteStandard) TestSummarize() {
	user := suite.createTestUser()
	food := suite.createTestCategory(models.Category{UserID: user, Name: "Food"})
	salary := suite.createTestCategory(models.Category{UserID: user, Name: "Salary"})

	suite.createTestTransaction(models.Transaction{
		UserID: user, CategoryID: salary.ID, Type: models.TransactionTypeIncome,
		Amount: decimal.NewFromFloat(2500), Date: time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC),
	})
	suite.createTestTransaction(models.Transaction{
		UserID: user, CategoryID: food.ID, Type: models.TransactionTypeExpense,
		Amount: decimal.NewFromFloat(120.50), Date: time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC),
	})
	suite.createTestTransaction(models.Transaction{
		UserID: user, CategoryID: food.ID, Type: models.TransactionTypeExpense,
		Amount: decimal.NewFromFloat(80), Date: time.Date(2024, 6, 20, 19, 30, 0, 0, time.UTC),
	})

	// Outside of the range
	suite.createTestTransaction(models.Transaction{
		UserID: user, CategoryID: food.ID, Type: models.TransactionTypeExpense,
		Amount: decimal.NewFromFloat(999), Date: time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC),
	})

	summary, err := models.Summarize(models.DB, user,
		time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC))
	require.Nil(suite.T(), err)

	assert.True(suite.T(), summary.TotalIncome.Equal(decimal.NewFromFloat(2500)))
	assert.True(suite.T(), summary.TotalExpenses.Equal(decimal.NewFromFloat(200.50)))
	assert.True(suite.T(), summary.NetSavings.Equal(decimal.NewFromFloat(2299.50)))

	require.Len(suite.T(), summary.ByCategory, 1)
	assert.Equal(suite.T(), "Food", summary.ByCategory[0].Category)
	assert.True(suite.T(), summary.ByCategory[0].Amount.Equal(decimal.NewFromFloat(200.50)))
}
