package v1

import (
	"errors"
	"net/http"
	"slices"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pocketledger/backend/internal/httputil"
	"github.com/pocketledger/backend/internal/models"
)

// RegisterTransactionRoutes registers the routes for transactions with
// the RouterGroup that is passed.
func RegisterTransactionRoutes(r *gin.RouterGroup) {
	// Root group
	{
		r.OPTIONS("", OptionsTransactionList)
		r.GET("", GetTransactions)
		r.POST("", CreateTransaction)
	}

	// Summary
	{
		r.OPTIONS("/summary", OptionsTransactionSummary)
		r.GET("/summary", GetTransactionSummary)
	}

	// Transaction with ID
	{
		r.OPTIONS("/:id", OptionsTransactionDetail)
		r.GET("/:id", GetTransaction)
		r.PATCH("/:id", UpdateTransaction)
		r.DELETE("/:id", DeleteTransaction)
	}
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Transactions
// @Success		204
// @Router			/v1/transactions [options]
func OptionsTransactionList(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Transactions
// @Success		204
// @Router			/v1/transactions/summary [options]
func OptionsTransactionSummary(c *gin.Context) {
	httputil.OptionsGet(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Transactions
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/transactions/{id} [options]
func OptionsTransactionDetail(c *gin.Context) {
	if _, ok := getTransactionResource(c); !ok {
		return
	}

	httputil.OptionsGetPatchDelete(c)
}

func getTransactionResource(c *gin.Context) (models.Transaction, bool) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return models.Transaction{}, false
	}

	var transaction models.Transaction
	err = models.DB.First(&transaction, "id = ? AND user_id = ?", uri.ID, currentUser(c)).Error
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return models.Transaction{}, false
	}

	return transaction, true
}

// @Summary		Create transaction
// @Description	Creates a new transaction. For expenses, the budget of the category and month tracks the amount immediately.
// @Tags			Transactions
// @Produce		json
// @Success		201			{object}	TransactionResponse
// @Failure		400			{object}	TransactionResponse
// @Failure		404			{object}	TransactionResponse
// @Param			transaction	body		TransactionEditable	true	"Transaction"
// @Router			/v1/transactions [post]
func CreateTransaction(c *gin.Context) {
	var editable TransactionEditable

	err := httputil.BindData(c, &editable)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), TransactionResponse{
			Error: &e,
		})
		return
	}

	transaction := editable.model(currentUser(c))

	err = models.CreateTransaction(models.DB, &transaction)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), TransactionResponse{
			Error: &e,
		})
		return
	}

	data := newTransaction(c, transaction)
	c.JSON(http.StatusCreated, TransactionResponse{Data: &data})
}

// @Summary		Get transactions
// @Description	Returns the transactions of the user, most recent first
// @Tags			Transactions
// @Produce		json
// @Success		200	{object}	TransactionListResponse
// @Failure		400	{object}	TransactionListResponse
// @Router			/v1/transactions [get]
// @Param			category	query	string	false	"Filter by category ID"
// @Param			type		query	string	false	"Filter by type (INCOME or EXPENSE)"
// @Param			note		query	string	false	"Filter by note"
// @Param			search		query	string	false	"Search for this text in the note"
// @Param			from		query	string	false	"Earliest date to include (YYYY-MM-DD)"
// @Param			until		query	string	false	"Latest date to include (YYYY-MM-DD)"
func GetTransactions(c *gin.Context) {
	var filter TransactionQueryFilter

	// Every parameter is bound into a string, so this will always succeed
	_ = c.Bind(&filter)

	queryFields, setFields := httputil.GetURLFields(c.Request.URL, filter)

	filterModel, err := filter.model()
	if err != nil {
		s := err.Error()
		c.JSON(status(err), TransactionListResponse{
			Error: &s,
		})
		return
	}

	q := models.DB.
		Order("date DESC, created_at DESC").
		Where("user_id = ?", currentUser(c)).
		Where(&filterModel, queryFields...)

	if filter.From != "" {
		q = q.Where("date >= date(?)", filter.From)
	}

	if filter.Until != "" {
		q = q.Where("date < date(?, '+1 day')", filter.Until)
	}

	if filter.Note != "" {
		q = q.Where("note LIKE ?", "%"+filter.Note+"%")
	} else if slices.Contains(setFields, "Note") {
		q = q.Where("note = ''")
	}

	if filter.Search != "" {
		q = q.Where("note LIKE ?", "%"+filter.Search+"%")
	}

	var transactions []models.Transaction
	err = q.Find(&transactions).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), TransactionListResponse{
			Error: &s,
		})
		return
	}

	data := make([]Transaction, 0)
	for _, transaction := range transactions {
		data = append(data, newTransaction(c, transaction))
	}

	c.JSON(http.StatusOK, TransactionListResponse{Data: data})
}

// @Summary		Get transaction
// @Description	Returns a specific transaction
// @Tags			Transactions
// @Produce		json
// @Success		200	{object}	TransactionResponse
// @Failure		400	{object}	TransactionResponse
// @Failure		404	{object}	TransactionResponse
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/transactions/{id} [get]
func GetTransaction(c *gin.Context) {
	transaction, ok := getTransactionResource(c)
	if !ok {
		return
	}

	data := newTransaction(c, transaction)
	c.JSON(http.StatusOK, TransactionResponse{Data: &data})
}

// @Summary		Update transaction
// @Description	Update an existing transaction. Only values to be updated need to be specified. Budgets of the affected months are adjusted.
// @Tags			Transactions
// @Accept			json
// @Produce		json
// @Success		200			{object}	TransactionResponse
// @Failure		400			{object}	TransactionResponse
// @Failure		404			{object}	TransactionResponse
// @Param			id			path		URIID				true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Param			transaction	body		TransactionEditable	true	"Transaction"
// @Router			/v1/transactions/{id} [patch]
func UpdateTransaction(c *gin.Context) {
	transaction, ok := getTransactionResource(c)
	if !ok {
		return
	}

	updateFields, err := httputil.GetBodyFields(c, TransactionEditable{})
	if err != nil {
		s := err.Error()
		c.JSON(status(err), TransactionResponse{
			Error: &s,
		})
		return
	}

	var data TransactionEditable
	err = httputil.BindData(c, &data)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), TransactionResponse{
			Error: &s,
		})
		return
	}

	err = models.UpdateTransaction(models.DB, &transaction, data.model(transaction.UserID), updateFields)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), TransactionResponse{
			Error: &s,
		})
		return
	}

	r := newTransaction(c, transaction)
	c.JSON(http.StatusOK, TransactionResponse{Data: &r})
}

// @Summary		Delete transaction
// @Description	Deletes a transaction. For expenses, the budget of the category and month is adjusted.
// @Tags			Transactions
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/transactions/{id} [delete]
func DeleteTransaction(c *gin.Context) {
	transaction, ok := getTransactionResource(c)
	if !ok {
		return
	}

	err := models.DeleteTransaction(models.DB, &transaction)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	c.JSON(http.StatusNoContent, nil)
}

// @Summary		Transaction summary
// @Description	Returns income, expense and net savings totals for a date range together with a per-category expense breakdown
// @Tags			Transactions
// @Produce		json
// @Success		200		{object}	SummaryResponse
// @Failure		400		{object}	SummaryResponse
// @Param			from	query		string	true	"First date of the range (YYYY-MM-DD)"
// @Param			until	query		string	true	"Last date of the range (YYYY-MM-DD, inclusive)"
// @Router			/v1/transactions/summary [get]
func GetTransactionSummary(c *gin.Context) {
	var query struct {
		From  time.Time `form:"from" time_format:"2006-01-02" time_utc:"1" binding:"required"`
		Until time.Time `form:"until" time_format:"2006-01-02" time_utc:"1" binding:"required"`
	}

	err := c.ShouldBindQuery(&query)
	if err != nil {
		e := errors.New("the from and until query parameters must be set as YYYY-MM-DD dates").Error()
		c.JSON(http.StatusBadRequest, SummaryResponse{
			Error: &e,
		})
		return
	}

	// Summarize uses a half-open range, the until parameter is inclusive
	summary, err := models.Summarize(models.DB, currentUser(c), query.From, query.Until.AddDate(0, 0, 1))
	if err != nil {
		s := err.Error()
		c.JSON(status(err), SummaryResponse{
			Error: &s,
		})
		return
	}

	c.JSON(http.StatusOK, SummaryResponse{Data: &summary})
}
