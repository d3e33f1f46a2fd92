package v1

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pocketledger/backend/internal/models"
	"github.com/pocketledger/backend/internal/types"
	"github.com/shopspring/decimal"
)

// BudgetEditable represents all user configurable parameters
type BudgetEditable struct {
	CategoryID uuid.UUID       `json:"categoryId" example:"3b1ea324-d438-4419-882a-2fc91d71772f"` // ID of the category the budget limits
	Month      types.Month     `json:"month" example:"2024-06"`                                   // Month the budget is for
	Amount     decimal.Decimal `json:"amount" example:"400.00"`                                   // Budgeted amount, zero or positive
}

type BudgetLinks struct {
	Self     string `json:"self" example:"https://example.com/v1/budgets/a3e7cf9e-7d0f-439e-b4a4-17b6678d0282"`         // The budget itself
	Category string `json:"category" example:"https://example.com/v1/categories/3b1ea324-d438-4419-882a-2fc91d71772f"` // The category the budget limits
}

type Budget struct {
	models.DefaultModel
	BudgetEditable
	CategoryName string          `json:"categoryName" example:"Groceries"` // Name of the category
	Spent        decimal.Decimal `json:"spent" example:"123.45"`           // Amount spent in the month
	Remaining    decimal.Decimal `json:"remaining" example:"276.55"`       // Amount still available
	PercentUsed  decimal.Decimal `json:"percentUsed" example:"30.86"`      // Spent share of the budgeted amount in percent
	Links        BudgetLinks     `json:"links"`
}

func newBudget(c *gin.Context, model models.Budget) Budget {
	url := c.GetString(string(models.DBContextURL))

	percentUsed := decimal.Zero
	if model.Amount.IsPositive() {
		percentUsed = model.Spent.Div(model.Amount).Mul(decimal.NewFromInt(100)).Round(2)
	}

	return Budget{
		DefaultModel: model.DefaultModel,
		BudgetEditable: BudgetEditable{
			CategoryID: model.CategoryID,
			Month:      model.Month,
			Amount:     model.Amount,
		},
		CategoryName: model.Category.Name,
		Spent:        model.Spent,
		Remaining:    model.Amount.Sub(model.Spent),
		PercentUsed:  percentUsed,
		Links: BudgetLinks{
			Self:     fmt.Sprintf("%s/v1/budgets/%s", url, model.ID),
			Category: fmt.Sprintf("%s/v1/categories/%s", url, model.CategoryID),
		},
	}
}

// BudgetTotals sums up all budgets of the response.
type BudgetTotals struct {
	Budgeted  decimal.Decimal `json:"budgeted" example:"1200.00"` // Total budgeted amount
	Spent     decimal.Decimal `json:"spent" example:"456.78"`     // Total spent amount
	Remaining decimal.Decimal `json:"remaining" example:"743.22"` // Total remaining amount
}

func newBudgetTotals(budgets []models.Budget) BudgetTotals {
	totals := BudgetTotals{
		Budgeted:  decimal.Zero,
		Spent:     decimal.Zero,
		Remaining: decimal.Zero,
	}

	for _, budget := range budgets {
		totals.Budgeted = totals.Budgeted.Add(budget.Amount)
		totals.Spent = totals.Spent.Add(budget.Spent)
	}

	totals.Remaining = totals.Budgeted.Sub(totals.Spent)
	return totals
}

type BudgetListResponse struct {
	Data   []Budget      `json:"data"`                                                          // List of Budgets
	Totals *BudgetTotals `json:"totals"`                                                        // Totals over all budgets in the response
	Error  *string       `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

type BudgetResponse struct {
	Data  *Budget `json:"data"`                                                          // Data for the Budget
	Error *string `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

// BudgetAmountEditable is the only field that can be changed on an
// existing budget.
type BudgetAmountEditable struct {
	Amount decimal.Decimal `json:"amount" example:"450.00"` // Budgeted amount, zero or positive
}
