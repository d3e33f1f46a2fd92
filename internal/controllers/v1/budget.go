package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pocketledger/backend/internal/httputil"
	"github.com/pocketledger/backend/internal/models"
	"github.com/pocketledger/backend/internal/types"
)

// RegisterBudgetRoutes registers the routes for budgets with
// the RouterGroup that is passed.
func RegisterBudgetRoutes(r *gin.RouterGroup) {
	// Root group
	{
		r.OPTIONS("", OptionsBudgetList)
		r.GET("", GetBudgets)
		r.POST("", CreateBudget)
	}

	// Month-wide operations
	{
		r.OPTIONS("/copy", OptionsBudgetCopy)
		r.POST("/copy", CopyBudgets)
		r.OPTIONS("/recalculate", OptionsBudgetRecalculate)
		r.POST("/recalculate", RecalculateBudgets)
	}

	// Budget with ID
	{
		r.OPTIONS("/:id", OptionsBudgetDetail)
		r.GET("/:id", GetBudget)
		r.PATCH("/:id", UpdateBudget)
	}
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Budgets
// @Success		204
// @Router			/v1/budgets [options]
func OptionsBudgetList(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Budgets
// @Success		204
// @Router			/v1/budgets/copy [options]
func OptionsBudgetCopy(c *gin.Context) {
	httputil.OptionsPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Budgets
// @Success		204
// @Router			/v1/budgets/recalculate [options]
func OptionsBudgetRecalculate(c *gin.Context) {
	httputil.OptionsPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Budgets
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/budgets/{id} [options]
func OptionsBudgetDetail(c *gin.Context) {
	if _, ok := getBudgetResource(c); !ok {
		return
	}

	httputil.OptionsGetPatch(c)
}

func getBudgetResource(c *gin.Context) (models.Budget, bool) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return models.Budget{}, false
	}

	var budget models.Budget
	err = models.DB.Joins("Category").First(&budget, "budgets.id = ? AND budgets.user_id = ?", uri.ID, currentUser(c)).Error
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return models.Budget{}, false
	}

	return budget, true
}

// monthFromQuery parses the mandatory month query parameter. On failure it
// has already written the response.
func monthFromQuery(c *gin.Context) (types.Month, bool) {
	var query QueryMonth

	err := c.ShouldBindQuery(&query)
	if err != nil || query.Month.IsZero() {
		e := errMonthNotSetInQuery.Error()
		c.JSON(http.StatusBadRequest, BudgetListResponse{
			Error: &e,
		})
		return types.Month{}, false
	}

	return types.MonthOf(query.Month), true
}

// @Summary		Get or create budget
// @Description	Sets the budget for a category and month. If the budget already exists, its amount is updated. New budgets start with the spent value recomputed from existing expenses in that month.
// @Tags			Budgets
// @Produce		json
// @Success		200		{object}	BudgetResponse
// @Failure		400		{object}	BudgetResponse
// @Failure		404		{object}	BudgetResponse
// @Param			budget	body		BudgetEditable	true	"Budget"
// @Router			/v1/budgets [post]
func CreateBudget(c *gin.Context) {
	var editable BudgetEditable

	err := httputil.BindData(c, &editable)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), BudgetResponse{
			Error: &e,
		})
		return
	}

	budget, err := models.GetOrCreateBudget(models.DB, currentUser(c), editable.CategoryID, editable.Month, editable.Amount)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), BudgetResponse{
			Error: &e,
		})
		return
	}

	data := newBudget(c, budget)
	c.JSON(http.StatusOK, BudgetResponse{Data: &data})
}

// @Summary		Get budgets
// @Description	Returns the budgets of the user for a month, with totals over all of them
// @Tags			Budgets
// @Produce		json
// @Success		200		{object}	BudgetListResponse
// @Failure		400		{object}	BudgetListResponse
// @Param			month	query		string	true	"Month to list budgets for (YYYY-MM)"
// @Router			/v1/budgets [get]
func GetBudgets(c *gin.Context) {
	month, ok := monthFromQuery(c)
	if !ok {
		return
	}

	budgets, err := models.BudgetsForMonth(models.DB, currentUser(c), month)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), BudgetListResponse{
			Error: &s,
		})
		return
	}

	data := make([]Budget, 0)
	for _, budget := range budgets {
		data = append(data, newBudget(c, budget))
	}

	totals := newBudgetTotals(budgets)
	c.JSON(http.StatusOK, BudgetListResponse{Data: data, Totals: &totals})
}

// @Summary		Get budget
// @Description	Returns a specific budget
// @Tags			Budgets
// @Produce		json
// @Success		200	{object}	BudgetResponse
// @Failure		400	{object}	BudgetResponse
// @Failure		404	{object}	BudgetResponse
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/budgets/{id} [get]
func GetBudget(c *gin.Context) {
	budget, ok := getBudgetResource(c)
	if !ok {
		return
	}

	data := newBudget(c, budget)
	c.JSON(http.StatusOK, BudgetResponse{Data: &data})
}

// @Summary		Update budget
// @Description	Sets a new amount for an existing budget. The spent value is not affected.
// @Tags			Budgets
// @Accept			json
// @Produce		json
// @Success		200		{object}	BudgetResponse
// @Failure		400		{object}	BudgetResponse
// @Failure		404		{object}	BudgetResponse
// @Param			id		path		URIID					true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Param			budget	body		BudgetAmountEditable	true	"Budget"
// @Router			/v1/budgets/{id} [patch]
func UpdateBudget(c *gin.Context) {
	budget, ok := getBudgetResource(c)
	if !ok {
		return
	}

	var data BudgetAmountEditable
	err := httputil.BindData(c, &data)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), BudgetResponse{
			Error: &s,
		})
		return
	}

	err = models.UpdateBudgetAmount(models.DB, &budget, data.Amount)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), BudgetResponse{
			Error: &s,
		})
		return
	}

	r := newBudget(c, budget)
	c.JSON(http.StatusOK, BudgetResponse{Data: &r})
}

// @Summary		Copy budgets
// @Description	Copies all budget amounts of the previous month into the target month. Existing budgets in the target month are never overwritten. The copies start with a spent value of zero.
// @Tags			Budgets
// @Produce		json
// @Success		201		{object}	BudgetListResponse
// @Failure		400		{object}	BudgetListResponse
// @Failure		404		{object}	BudgetListResponse
// @Param			month	query		string	true	"Target month (YYYY-MM)"
// @Router			/v1/budgets/copy [post]
func CopyBudgets(c *gin.Context) {
	month, ok := monthFromQuery(c)
	if !ok {
		return
	}

	budgets, err := models.CopyBudgets(models.DB, currentUser(c), month)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), BudgetListResponse{
			Error: &s,
		})
		return
	}

	data := make([]Budget, 0)
	for _, budget := range budgets {
		data = append(data, newBudget(c, budget))
	}

	totals := newBudgetTotals(budgets)
	c.JSON(http.StatusCreated, BudgetListResponse{Data: data, Totals: &totals})
}

// @Summary		Recalculate budgets
// @Description	Recomputes the spent value of every budget in the month from the transactions table. Use this to verify or restore ledger consistency.
// @Tags			Budgets
// @Produce		json
// @Success		200		{object}	BudgetListResponse
// @Failure		400		{object}	BudgetListResponse
// @Param			month	query		string	true	"Month to recalculate (YYYY-MM)"
// @Router			/v1/budgets/recalculate [post]
func RecalculateBudgets(c *gin.Context) {
	month, ok := monthFromQuery(c)
	if !ok {
		return
	}

	budgets, err := models.RecalculateSpent(models.DB, currentUser(c), month)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), BudgetListResponse{
			Error: &s,
		})
		return
	}

	data := make([]Budget, 0)
	for _, budget := range budgets {
		data = append(data, newBudget(c, budget))
	}

	totals := newBudgetTotals(budgets)
	c.JSON(http.StatusOK, BudgetListResponse{Data: data, Totals: &totals})
}
