package models

import (
	"math"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Frequency is the interval at which a recurrence generates transactions.
type Frequency string

const (
	FrequencyDaily     Frequency = "DAILY"
	FrequencyWeekly    Frequency = "WEEKLY"
	FrequencyBiweekly  Frequency = "BIWEEKLY"
	FrequencyMonthly   Frequency = "MONTHLY"
	FrequencyQuarterly Frequency = "QUARTERLY"
	FrequencyYearly    Frequency = "YEARLY"
)

// Valid reports whether the frequency is one of the known frequencies.
func (f Frequency) Valid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyBiweekly, FrequencyMonthly, FrequencyQuarterly, FrequencyYearly:
		return true
	}

	return false
}

// NextDate returns the occurrence one period after current.
//
// Month-based frequencies keep the day of the month. When the target month
// is shorter, the day is clamped to the last day of that month instead of
// rolling over: Jan 31 + MONTHLY is Feb 28 (Feb 29 in leap years), and
// Feb 29 + YEARLY is Feb 28. The function has no error cases.
func (f Frequency) NextDate(current time.Time) time.Time {
	switch f {
	case FrequencyDaily:
		return current.AddDate(0, 0, 1)
	case FrequencyWeekly:
		return current.AddDate(0, 0, 7)
	case FrequencyBiweekly:
		return current.AddDate(0, 0, 14)
	case FrequencyMonthly:
		return addMonthsClamped(current, 1)
	case FrequencyQuarterly:
		return addMonthsClamped(current, 3)
	case FrequencyYearly:
		return addMonthsClamped(current, 12)
	}

	return current
}

// addMonthsClamped adds months to t, clamping the day of the month to the
// last valid day of the target month. time.Time.AddDate would normalize
// Jan 31 + 1 month into early March instead.
func addMonthsClamped(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	hour, minute, second := t.Clock()

	firstOfTarget := time.Date(year, month+time.Month(months), 1, 0, 0, 0, 0, t.Location())
	lastDay := firstOfTarget.AddDate(0, 1, -1).Day()

	if day > lastDay {
		day = lastDay
	}

	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), day, hour, minute, second, t.Nanosecond(), t.Location())
}

// Recurrence is a template that generates a transaction every period until
// an optional end date is reached.
//
// NextDueDate is advanced exclusively by ProcessDueRecurrences. IsActive
// transitions to false when the next occurrence would pass the end date or
// by manual deactivation; only a manual update reactivates a template.
type Recurrence struct {
	DefaultModel
	UserID      uuid.UUID       `gorm:"index"`
	CategoryID  uuid.UUID
	Category    Category
	Amount      decimal.Decimal `gorm:"type:DECIMAL(20,2)"`
	Type        TransactionType
	Note        string
	Frequency   Frequency
	StartDate   time.Time
	EndDate     *time.Time
	NextDueDate time.Time
	IsActive    bool
}

// AfterFind updates the timestamps and dates to use UTC as timezone.
func (r *Recurrence) AfterFind(tx *gorm.DB) (err error) {
	err = r.DefaultModel.AfterFind(tx)
	if err != nil {
		return err
	}

	r.StartDate = r.StartDate.In(time.UTC)
	r.NextDueDate = r.NextDueDate.In(time.UTC)

	if r.EndDate != nil {
		end := r.EndDate.In(time.UTC)
		r.EndDate = &end
	}

	return
}

// BeforeSave trims whitespace and sets the timezone for all dates to UTC.
func (r *Recurrence) BeforeSave(_ *gorm.DB) (err error) {
	r.Note = strings.TrimSpace(r.Note)
	r.StartDate = r.StartDate.In(time.UTC)
	r.NextDueDate = r.NextDueDate.In(time.UTC)

	if r.EndDate != nil {
		end := r.EndDate.In(time.UTC)
		r.EndDate = &end
	}

	return
}

// validate checks the business rules for the recurrence.
func (r Recurrence) validate(tx *gorm.DB) error {
	if !r.Type.Valid() {
		return ErrTransactionTypeInvalid
	}

	if !r.Frequency.Valid() {
		return ErrRecurrenceFrequencyInvalid
	}

	if !r.Amount.IsPositive() {
		return ErrRecurrenceAmountNotPositive
	}

	if !r.Amount.Equal(r.Amount.Round(2)) {
		return ErrAmountPrecision
	}

	if r.StartDate.IsZero() {
		return ErrRecurrenceStartDateRequired
	}

	if r.EndDate != nil && r.EndDate.Before(r.StartDate) {
		return ErrRecurrenceEndBeforeStart
	}

	_, err := categoryOwnedBy(tx, r.CategoryID, r.UserID)
	return err
}

// CreateRecurrence persists a new recurrence. The first occurrence is due
// at the start date.
func CreateRecurrence(db *gorm.DB, recurrence *Recurrence) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := recurrence.validate(tx); err != nil {
			return err
		}

		recurrence.NextDueDate = recurrence.StartDate
		recurrence.IsActive = true

		return tx.Create(recurrence).Error
	})
}

// UpdateRecurrence applies a partial update to the recurrence. The start
// date is immutable, which the controller enforces on the field list.
func UpdateRecurrence(db *gorm.DB, recurrence *Recurrence, update Recurrence, fields []any) error {
	return db.Transaction(func(tx *gorm.DB) error {
		// Check the target category before the row update so that an
		// unknown category surfaces as a lookup failure, not as a
		// foreign key violation
		if slices.Contains(fields, any("CategoryID")) {
			if _, err := categoryOwnedBy(tx, update.CategoryID, recurrence.UserID); err != nil {
				return err
			}
		}

		err := tx.Model(recurrence).Select("", fields...).Updates(update).Error
		if err != nil {
			return err
		}

		return recurrence.validate(tx)
	})
}

// DeleteRecurrence deletes the recurrence. Transactions that were
// generated from it stay and lose their back-reference.
func DeleteRecurrence(db *gorm.DB, recurrence *Recurrence) error {
	return db.Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&Transaction{}).
			Where("recurrence_id = ?", recurrence.ID).
			Update("recurrence_id", nil).Error
		if err != nil {
			return err
		}

		return tx.Delete(recurrence).Error
	})
}

// ProcessedRecurrence reports one transaction generated by
// ProcessDueRecurrences.
type ProcessedRecurrence struct {
	RecurrenceID  uuid.UUID       `json:"recurrenceId"`
	TransactionID uuid.UUID       `json:"transactionId"`
	Amount        decimal.Decimal `json:"amount"`
}

// ProcessingResult is the outcome of one ProcessDueRecurrences call.
type ProcessingResult struct {
	Processed    int                   `json:"processed"`
	Transactions []ProcessedRecurrence `json:"transactions"`
}

// ProcessDueRecurrences materializes every due recurrence of the user into
// a transaction and advances the template by one period.
//
// The generated transaction is dated at the recurrence's current due date,
// not at now. A template that is overdue by several periods is therefore
// caught up one period per call instead of being fast-forwarded, which
// makes the operation safe to run from a periodic job. The whole batch is
// one atomic unit.
func ProcessDueRecurrences(db *gorm.DB, userID uuid.UUID, now time.Time) (ProcessingResult, error) {
	result := ProcessingResult{
		Transactions: []ProcessedRecurrence{},
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		var due []Recurrence

		err := tx.Where("user_id = ? AND is_active = ?", userID, true).
			Where("next_due_date <= ?", now).
			Where("end_date IS NULL OR end_date >= ?", now).
			Find(&due).Error
		if err != nil {
			return err
		}

		for _, recurrence := range due {
			transaction := Transaction{
				UserID:       userID,
				CategoryID:   recurrence.CategoryID,
				RecurrenceID: &recurrence.ID,
				Date:         recurrence.NextDueDate,
				Amount:       recurrence.Amount,
				Type:         recurrence.Type,
				Note:         recurrence.Note,
			}

			if err := tx.Create(&transaction).Error; err != nil {
				return err
			}

			if transaction.Type == TransactionTypeExpense {
				err := applyBudgetDelta(tx, userID, transaction.CategoryID, transaction.Date, transaction.Amount)
				if err != nil {
					return err
				}
			}

			next := recurrence.Frequency.NextDate(recurrence.NextDueDate)
			active := recurrence.EndDate == nil || !next.After(*recurrence.EndDate)

			err := tx.Model(&recurrence).Select("NextDueDate", "IsActive").Updates(Recurrence{
				NextDueDate: next,
				IsActive:    active,
			}).Error
			if err != nil {
				return err
			}

			result.Processed++
			result.Transactions = append(result.Transactions, ProcessedRecurrence{
				RecurrenceID:  recurrence.ID,
				TransactionID: transaction.ID,
				Amount:        transaction.Amount,
			})
		}

		return nil
	})
	if err != nil {
		return ProcessingResult{}, err
	}

	return result, nil
}

// UpcomingRecurrence is a recurrence annotated with the days until it is
// due. DaysUntilDue is zero or negative for recurrences that are due now
// or overdue.
type UpcomingRecurrence struct {
	Recurrence
	DaysUntilDue int `json:"daysUntilDue"`
}

// UpcomingRecurrences returns the active recurrences of the user that are
// due within the window.
func UpcomingRecurrences(db *gorm.DB, userID uuid.UUID, now time.Time, windowDays int) ([]UpcomingRecurrence, error) {
	until := now.AddDate(0, 0, windowDays)

	var recurrences []Recurrence
	err := db.Where("user_id = ? AND is_active = ?", userID, true).
		Where("next_due_date <= ?", until).
		Order("next_due_date ASC").
		Find(&recurrences).Error
	if err != nil {
		return nil, err
	}

	upcoming := make([]UpcomingRecurrence, 0, len(recurrences))
	for _, recurrence := range recurrences {
		upcoming = append(upcoming, UpcomingRecurrence{
			Recurrence:   recurrence,
			DaysUntilDue: int(math.Ceil(recurrence.NextDueDate.Sub(now).Hours() / 24)),
		})
	}

	return upcoming, nil
}

// UsersWithDueRecurrences returns the IDs of all users that have at least
// one due recurrence. It drives the periodic processing job.
func UsersWithDueRecurrences(db *gorm.DB, now time.Time) ([]uuid.UUID, error) {
	var ids []uuid.UUID

	err := db.Model(&Recurrence{}).
		Where("is_active = ? AND next_due_date <= ?", true, now).
		Where("end_date IS NULL OR end_date >= ?", now).
		Distinct().
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, err
	}

	return ids, nil
}
