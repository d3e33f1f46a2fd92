package v1_test

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	v1 "github.com/pocketledger/backend/internal/controllers/v1"
	"github.com/pocketledger/backend/internal/types"
	"github.com/pocketledger/backend/test"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (suite *TestSuiteStandard) TestBudgetsOptions() {
	tests := []struct {
		name   string
		id     string
		status int
	}{
		{"No Budget with this ID", uuid.New().String(), http.StatusNotFound},
		{"Not a valid UUID", "NotParseableAsUUID", http.StatusBadRequest},
		{"Budget exists", suite.createTestBudget(suite.T(), v1.BudgetEditable{}).Data.ID.String(), http.StatusNoContent},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			path := fmt.Sprintf("%s/%s", "http://example.com/v1/budgets", tt.id)
			r := suite.request(t, http.MethodOptions, path, "")
			test.AssertHTTPStatus(t, &r, tt.status)

			if tt.status == http.StatusNoContent {
				// Budgets cannot be deleted
				assert.Equal(t, "GET, PATCH", r.Header().Get("allow"))
			}
		})
	}
}

func (suite *TestSuiteStandard) TestBudgetsCreate() {
	category := suite.createTestCategory(suite.T(), v1.CategoryEditable{Name: "Groceries"})

	r := suite.request(suite.T(), http.MethodPost, "http://example.com/v1/budgets", v1.BudgetEditable{
		CategoryID: category.Data.ID,
		Month:      types.NewMonth(2024, 6),
		Amount:     decimal.NewFromFloat(400),
	})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.BudgetResponse
	test.DecodeResponse(suite.T(), &r, &response)

	require.NotNil(suite.T(), response.Data)
	assert.True(suite.T(), response.Data.Amount.Equal(decimal.NewFromFloat(400)))
	assert.True(suite.T(), response.Data.Spent.IsZero())
	assert.True(suite.T(), response.Data.Remaining.Equal(decimal.NewFromFloat(400)))
	assert.Contains(suite.T(), response.Data.Links.Category, fmt.Sprintf("/v1/categories/%s", category.Data.ID))
}

// Creating a budget for a key that already has one updates the amount
// instead of failing.
func (suite *TestSuiteStandard) TestBudgetsCreateUpserts() {
	category := suite.createTestCategory(suite.T(), v1.CategoryEditable{})

	first := suite.createTestBudget(suite.T(), v1.BudgetEditable{
		CategoryID: category.Data.ID,
		Month:      types.NewMonth(2024, 6),
		Amount:     decimal.NewFromFloat(400),
	})

	second := suite.createTestBudget(suite.T(), v1.BudgetEditable{
		CategoryID: category.Data.ID,
		Month:      types.NewMonth(2024, 6),
		Amount:     decimal.NewFromFloat(550),
	})

	assert.Equal(suite.T(), first.Data.ID, second.Data.ID)
	assert.True(suite.T(), second.Data.Amount.Equal(decimal.NewFromFloat(550)))
}

// A budget created after transactions already exist starts out with their
// expenses counted.
func (suite *TestSuiteStandard) TestBudgetsCreateSeedsSpent() {
	category := suite.createTestCategory(suite.T(), v1.CategoryEditable{})

	suite.createTestTransaction(suite.T(), v1.TransactionEditable{
		CategoryID: category.Data.ID,
		Date:       time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC),
		Amount:     decimal.NewFromFloat(75.50),
	})

	budget := suite.createTestBudget(suite.T(), v1.BudgetEditable{
		CategoryID: category.Data.ID,
		Month:      types.NewMonth(2024, 6),
		Amount:     decimal.NewFromFloat(200),
	})

	assert.True(suite.T(), budget.Data.Spent.Equal(decimal.NewFromFloat(75.50)))
	assert.True(suite.T(), budget.Data.Remaining.Equal(decimal.NewFromFloat(124.50)))
	assert.True(suite.T(), budget.Data.PercentUsed.Equal(decimal.NewFromFloat(37.75)))
}

func (suite *TestSuiteStandard) TestBudgetsCreateInvalid() {
	category := suite.createTestCategory(suite.T(), v1.CategoryEditable{})

	tests := []struct {
		name   string
		body   any
		status int
	}{
		{"Broken body", `{ broken`, http.StatusBadRequest},
		{"Empty body", "", http.StatusBadRequest},
		{"No category", v1.BudgetEditable{Month: types.NewMonth(2024, 6), Amount: decimal.NewFromFloat(100)}, http.StatusNotFound},
		{"Unknown category", v1.BudgetEditable{CategoryID: uuid.New(), Month: types.NewMonth(2024, 6), Amount: decimal.NewFromFloat(100)}, http.StatusNotFound},
		{"No month", v1.BudgetEditable{CategoryID: category.Data.ID, Amount: decimal.NewFromFloat(100)}, http.StatusBadRequest},
		{"Negative amount", v1.BudgetEditable{CategoryID: category.Data.ID, Month: types.NewMonth(2024, 6), Amount: decimal.NewFromFloat(-100)}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := suite.request(t, http.MethodPost, "http://example.com/v1/budgets", tt.body)
			test.AssertHTTPStatus(t, &r, tt.status)
		})
	}
}

func (suite *TestSuiteStandard) TestBudgetsList() {
	groceries := suite.createTestCategory(suite.T(), v1.CategoryEditable{Name: "Groceries"})
	rent := suite.createTestCategory(suite.T(), v1.CategoryEditable{Name: "Rent"})

	suite.createTestBudget(suite.T(), v1.BudgetEditable{
		CategoryID: rent.Data.ID,
		Month:      types.NewMonth(2024, 6),
		Amount:     decimal.NewFromFloat(1200),
	})
	suite.createTestBudget(suite.T(), v1.BudgetEditable{
		CategoryID: groceries.Data.ID,
		Month:      types.NewMonth(2024, 6),
		Amount:     decimal.NewFromFloat(400),
	})

	// A budget in another month must not show up
	suite.createTestBudget(suite.T(), v1.BudgetEditable{
		CategoryID: groceries.Data.ID,
		Month:      types.NewMonth(2024, 7),
		Amount:     decimal.NewFromFloat(450),
	})

	suite.createTestTransaction(suite.T(), v1.TransactionEditable{
		CategoryID: groceries.Data.ID,
		Date:       time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC),
		Amount:     decimal.NewFromFloat(100),
	})

	r := suite.request(suite.T(), http.MethodGet, "http://example.com/v1/budgets?month=2024-06", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.BudgetListResponse
	test.DecodeResponse(suite.T(), &r, &response)

	require.Len(suite.T(), response.Data, 2)

	// Sorted by category name
	assert.Equal(suite.T(), "Groceries", response.Data[0].CategoryName)
	assert.Equal(suite.T(), "Rent", response.Data[1].CategoryName)

	require.NotNil(suite.T(), response.Totals)
	assert.True(suite.T(), response.Totals.Budgeted.Equal(decimal.NewFromFloat(1600)))
	assert.True(suite.T(), response.Totals.Spent.Equal(decimal.NewFromFloat(100)))
	assert.True(suite.T(), response.Totals.Remaining.Equal(decimal.NewFromFloat(1500)))
}

func (suite *TestSuiteStandard) TestBudgetsListMonthRequired() {
	tests := []struct {
		name  string
		query string
	}{
		{"No month", ""},
		{"Unparseable month", "month=June"},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := suite.request(t, http.MethodGet, "http://example.com/v1/budgets?"+tt.query, "")
			test.AssertHTTPStatus(t, &r, http.StatusBadRequest)

			var response v1.BudgetListResponse
			test.DecodeResponse(t, &r, &response)
			require.NotNil(t, response.Error)
			assert.Equal(t, "the month query parameter must be set", *response.Error)
		})
	}
}

func (suite *TestSuiteStandard) TestBudgetsGetSingle() {
	budget := suite.createTestBudget(suite.T(), v1.BudgetEditable{})

	r := suite.request(suite.T(), http.MethodGet, fmt.Sprintf("http://example.com/v1/budgets/%s", budget.Data.ID), "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	// Budgets of other users must not be accessible
	r = suite.requestAs(suite.T(), uuid.New(), http.MethodGet, fmt.Sprintf("http://example.com/v1/budgets/%s", budget.Data.ID), "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNotFound)
}

func (suite *TestSuiteStandard) TestBudgetsUpdate() {
	budget := suite.createTestBudget(suite.T(), v1.BudgetEditable{Amount: decimal.NewFromFloat(400)})

	r := suite.request(suite.T(), http.MethodPatch, fmt.Sprintf("http://example.com/v1/budgets/%s", budget.Data.ID), map[string]any{
		"amount": "450.00",
	})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.BudgetResponse
	test.DecodeResponse(suite.T(), &r, &response)
	assert.True(suite.T(), response.Data.Amount.Equal(decimal.NewFromFloat(450)))
}

func (suite *TestSuiteStandard) TestBudgetsUpdateInvalid() {
	budget := suite.createTestBudget(suite.T(), v1.BudgetEditable{})

	tests := []struct {
		name string
		body any
	}{
		{"Negative amount", map[string]any{"amount": "-1.00"}},
		{"Too much precision", map[string]any{"amount": "10.999"}},
		{"Broken body", `{ broken`},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := suite.request(t, http.MethodPatch, fmt.Sprintf("http://example.com/v1/budgets/%s", budget.Data.ID), tt.body)
			test.AssertHTTPStatus(t, &r, http.StatusBadRequest)
		})
	}
}

func (suite *TestSuiteStandard) TestBudgetsCopy() {
	groceries := suite.createTestCategory(suite.T(), v1.CategoryEditable{Name: "Groceries"})
	rent := suite.createTestCategory(suite.T(), v1.CategoryEditable{Name: "Rent"})

	suite.createTestBudget(suite.T(), v1.BudgetEditable{
		CategoryID: groceries.Data.ID,
		Month:      types.NewMonth(2024, 6),
		Amount:     decimal.NewFromFloat(400),
	})
	suite.createTestBudget(suite.T(), v1.BudgetEditable{
		CategoryID: rent.Data.ID,
		Month:      types.NewMonth(2024, 6),
		Amount:     decimal.NewFromFloat(1200),
	})

	// This budget already exists in the target month and must keep its amount
	existing := suite.createTestBudget(suite.T(), v1.BudgetEditable{
		CategoryID: rent.Data.ID,
		Month:      types.NewMonth(2024, 7),
		Amount:     decimal.NewFromFloat(1250),
	})

	r := suite.request(suite.T(), http.MethodPost, "http://example.com/v1/budgets/copy?month=2024-07", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusCreated)

	var response v1.BudgetListResponse
	test.DecodeResponse(suite.T(), &r, &response)
	require.Len(suite.T(), response.Data, 2)

	for _, budget := range response.Data {
		assert.True(suite.T(), budget.Month.Equal(types.NewMonth(2024, 7)), "month is %s", budget.Month)
		assert.True(suite.T(), budget.Spent.IsZero())

		if budget.ID == existing.Data.ID {
			assert.True(suite.T(), budget.Amount.Equal(decimal.NewFromFloat(1250)))
		} else {
			assert.True(suite.T(), budget.Amount.Equal(decimal.NewFromFloat(400)))
		}
	}
}

func (suite *TestSuiteStandard) TestBudgetsCopyNoSource() {
	r := suite.request(suite.T(), http.MethodPost, "http://example.com/v1/budgets/copy?month=2024-07", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNotFound)
}

func (suite *TestSuiteStandard) TestBudgetsRecalculate() {
	category := suite.createTestCategory(suite.T(), v1.CategoryEditable{})

	budget := suite.createTestBudget(suite.T(), v1.BudgetEditable{
		CategoryID: category.Data.ID,
		Month:      types.NewMonth(2024, 6),
		Amount:     decimal.NewFromFloat(200),
	})

	suite.createTestTransaction(suite.T(), v1.TransactionEditable{
		CategoryID: category.Data.ID,
		Date:       time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC),
		Amount:     decimal.NewFromFloat(60),
	})

	r := suite.request(suite.T(), http.MethodPost, "http://example.com/v1/budgets/recalculate?month=2024-06", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.BudgetListResponse
	test.DecodeResponse(suite.T(), &r, &response)
	require.Len(suite.T(), response.Data, 1)
	assert.Equal(suite.T(), budget.Data.ID, response.Data[0].ID)
	assert.True(suite.T(), response.Data[0].Spent.Equal(decimal.NewFromFloat(60)))
}
