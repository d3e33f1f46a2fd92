package v1

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pocketledger/backend/internal/models"
	"github.com/shopspring/decimal"
)

// RecurrenceEditable represents all user configurable parameters
type RecurrenceEditable struct {
	CategoryID uuid.UUID              `json:"categoryId" example:"3b1ea324-d438-4419-882a-2fc91d71772f"` // ID of the category
	Amount     decimal.Decimal        `json:"amount" example:"15.99"`                                    // Amount, always positive
	Type       models.TransactionType `json:"type" example:"EXPENSE" default:"EXPENSE"`                  // INCOME or EXPENSE
	Note       string                 `json:"note" example:"Video streaming" default:""`                 // Notes about the recurrence
	Frequency  models.Frequency       `json:"frequency" example:"MONTHLY"`                               // How often a transaction is generated
	StartDate  time.Time              `json:"startDate" example:"2024-01-01T00:00:00Z"`                  // First due date. Cannot be changed later
	EndDate    *time.Time             `json:"endDate" example:"2024-12-31T00:00:00Z"`                    // Optional last date occurrences may fall on
	IsActive   bool                   `json:"isActive" example:"true" default:"true"`                    // Whether the recurrence generates transactions
}

func (editable RecurrenceEditable) model(userID uuid.UUID) models.Recurrence {
	return models.Recurrence{
		UserID:     userID,
		CategoryID: editable.CategoryID,
		Amount:     editable.Amount,
		Type:       editable.Type,
		Note:       editable.Note,
		Frequency:  editable.Frequency,
		StartDate:  editable.StartDate,
		EndDate:    editable.EndDate,
		IsActive:   editable.IsActive,
	}
}

type RecurrenceLinks struct {
	Self string `json:"self" example:"https://example.com/v1/recurrences/d430d7c3-d14c-4712-9336-ee56965a6673"` // The recurrence itself
}

type Recurrence struct {
	models.DefaultModel
	RecurrenceEditable
	NextDueDate time.Time       `json:"nextDueDate" example:"2024-07-01T00:00:00Z"` // Date the next transaction will be generated for
	Links       RecurrenceLinks `json:"links"`
}

func newRecurrence(c *gin.Context, model models.Recurrence) Recurrence {
	url := c.GetString(string(models.DBContextURL))

	return Recurrence{
		DefaultModel: model.DefaultModel,
		RecurrenceEditable: RecurrenceEditable{
			CategoryID: model.CategoryID,
			Amount:     model.Amount,
			Type:       model.Type,
			Note:       model.Note,
			Frequency:  model.Frequency,
			StartDate:  model.StartDate,
			EndDate:    model.EndDate,
			IsActive:   model.IsActive,
		},
		NextDueDate: model.NextDueDate,
		Links: RecurrenceLinks{
			Self: fmt.Sprintf("%s/v1/recurrences/%s", url, model.ID),
		},
	}
}

type RecurrenceListResponse struct {
	Data  []Recurrence `json:"data"`                                                          // List of Recurrences
	Error *string      `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

type RecurrenceResponse struct {
	Data  *Recurrence `json:"data"`                                                          // Data for the Recurrence
	Error *string     `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

type ProcessingResponse struct {
	Data  *models.ProcessingResult `json:"data"`  // Transactions generated by this call
	Error *string                  `json:"error"` // The error, if any occurred
}

// Upcoming is a recurrence annotated with the days until it is due.
type Upcoming struct {
	Recurrence
	DaysUntilDue int `json:"daysUntilDue" example:"5"` // Days until the next occurrence. Zero or negative when due
}

type UpcomingListResponse struct {
	Data  []Upcoming `json:"data"`                                                               // Upcoming recurrences, soonest first
	Error *string    `json:"error" example:"the days query parameter must be between 1 and 90"` // The error, if any occurred
}
