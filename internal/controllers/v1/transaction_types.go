package v1

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pocketledger/backend/internal/httputil"
	"github.com/pocketledger/backend/internal/models"
	"github.com/shopspring/decimal"
)

// TransactionEditable represents all user configurable parameters
type TransactionEditable struct {
	CategoryID uuid.UUID              `json:"categoryId" example:"3b1ea324-d438-4419-882a-2fc91d71772f"` // ID of the category
	Date       time.Time              `json:"date" example:"2024-06-01T00:00:00Z"`                       // Date of the transaction
	Amount     decimal.Decimal        `json:"amount" example:"14.50"`                                    // Amount, always positive
	Type       models.TransactionType `json:"type" example:"EXPENSE" default:"EXPENSE"`                  // INCOME or EXPENSE
	Note       string                 `json:"note" example:"Lunch" default:""`                           // Notes about the transaction
}

func (editable TransactionEditable) model(userID uuid.UUID) models.Transaction {
	return models.Transaction{
		UserID:     userID,
		CategoryID: editable.CategoryID,
		Date:       editable.Date,
		Amount:     editable.Amount,
		Type:       editable.Type,
		Note:       editable.Note,
	}
}

type TransactionLinks struct {
	Self string `json:"self" example:"https://example.com/v1/transactions/d430d7c3-d14c-4712-9336-ee56965a6673"` // The transaction itself
}

type Transaction struct {
	models.DefaultModel
	TransactionEditable
	RecurrenceID *uuid.UUID       `json:"recurrenceId"` // Set when the transaction was generated from a recurrence
	Links        TransactionLinks `json:"links"`
}

func newTransaction(c *gin.Context, model models.Transaction) Transaction {
	url := c.GetString(string(models.DBContextURL))

	return Transaction{
		DefaultModel: model.DefaultModel,
		TransactionEditable: TransactionEditable{
			CategoryID: model.CategoryID,
			Date:       model.Date,
			Amount:     model.Amount,
			Type:       model.Type,
			Note:       model.Note,
		},
		RecurrenceID: model.RecurrenceID,
		Links: TransactionLinks{
			Self: fmt.Sprintf("%s/v1/transactions/%s", url, model.ID),
		},
	}
}

type TransactionListResponse struct {
	Data  []Transaction `json:"data"`                                                          // List of Transactions
	Error *string       `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

type TransactionResponse struct {
	Data  *Transaction `json:"data"`                                                          // Data for the Transaction
	Error *string      `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

type SummaryResponse struct {
	Data  *models.Summary `json:"data"`                                           // The computed summary
	Error *string         `json:"error" example:"the from parameter must be set"` // The error, if any occurred
}

type TransactionQueryFilter struct {
	CategoryID string `form:"category"`                   // By ID of the category
	Type       string `form:"type"`                       // INCOME or EXPENSE
	Note       string `form:"note" filterField:"false"`   // By note
	Search     string `form:"search" filterField:"false"` // By string in note
	From       string `form:"from" filterField:"false"`   // Earliest date (YYYY-MM-DD, inclusive)
	Until      string `form:"until" filterField:"false"`  // Latest date (YYYY-MM-DD, inclusive)
}

func (f TransactionQueryFilter) model() (models.Transaction, error) {
	categoryID, err := httputil.UUIDFromString(f.CategoryID)
	if err != nil {
		return models.Transaction{}, err
	}

	return models.Transaction{
		CategoryID: categoryID,
		Type:       models.TransactionType(f.Type),
	}, nil
}
