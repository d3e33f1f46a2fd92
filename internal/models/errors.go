package models

import (
	"errors"
	"fmt"
)

var (
	ErrGeneral          = errors.New("an error occurred on the server during your request")
	ErrResourceNotFound = errors.New("there is no")
)

// ErrAmountPrecision applies to all monetary values in the backend.
var ErrAmountPrecision = errors.New("amounts must not have more than two decimal places")

// Category errors
var (
	ErrCategoryNameRequired  = errors.New("the category name must be set")
	ErrCategoryNameNotUnique = errors.New("the category name is already in use")
	ErrCategoryStillInUse    = errors.New("the category is still referenced by transactions, budgets or recurrences")
)

// Transaction errors
var (
	ErrTransactionAmountNotPositive = errors.New("the transaction amount must be positive")
	ErrTransactionDateRequired      = errors.New("the transaction date must be set")
	ErrTransactionTypeInvalid       = errors.New("the transaction type must be INCOME or EXPENSE")
)

// Budget errors
var (
	ErrBudgetAmountNegative = errors.New("the budget amount must not be negative")
	ErrBudgetMonthRequired  = errors.New("the budget month must be set")
	ErrBudgetMonthNotUnique = errors.New("there already is a budget for this category and month")
	ErrNoBudgetsToCopy      = fmt.Errorf("%w budget in the previous month to copy", ErrResourceNotFound)
)

// Recurrence errors
var (
	ErrRecurrenceAmountNotPositive = errors.New("the recurrence amount must be positive")
	ErrRecurrenceFrequencyInvalid  = errors.New("the recurrence frequency is invalid")
	ErrRecurrenceStartDateRequired = errors.New("the recurrence start date must be set")
	ErrRecurrenceEndBeforeStart    = errors.New("the recurrence end date must not be before the start date")
)
