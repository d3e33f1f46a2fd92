package v1

import (
	"net/http"
	"slices"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pocketledger/backend/internal/httputil"
	"github.com/pocketledger/backend/internal/models"
)

// RegisterRecurrenceRoutes registers the routes for recurrences with
// the RouterGroup that is passed.
func RegisterRecurrenceRoutes(r *gin.RouterGroup) {
	// Root group
	{
		r.OPTIONS("", OptionsRecurrenceList)
		r.GET("", GetRecurrences)
		r.POST("", CreateRecurrence)
	}

	// Processing and lookahead
	{
		r.OPTIONS("/process", OptionsRecurrenceProcess)
		r.POST("/process", ProcessRecurrences)
		r.OPTIONS("/upcoming", OptionsRecurrenceUpcoming)
		r.GET("/upcoming", GetUpcomingRecurrences)
	}

	// Recurrence with ID
	{
		r.OPTIONS("/:id", OptionsRecurrenceDetail)
		r.GET("/:id", GetRecurrence)
		r.PATCH("/:id", UpdateRecurrence)
		r.DELETE("/:id", DeleteRecurrence)
	}
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Recurrences
// @Success		204
// @Router			/v1/recurrences [options]
func OptionsRecurrenceList(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Recurrences
// @Success		204
// @Router			/v1/recurrences/process [options]
func OptionsRecurrenceProcess(c *gin.Context) {
	httputil.OptionsPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Recurrences
// @Success		204
// @Router			/v1/recurrences/upcoming [options]
func OptionsRecurrenceUpcoming(c *gin.Context) {
	httputil.OptionsGet(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Recurrences
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/recurrences/{id} [options]
func OptionsRecurrenceDetail(c *gin.Context) {
	if _, ok := getRecurrenceResource(c); !ok {
		return
	}

	httputil.OptionsGetPatchDelete(c)
}

func getRecurrenceResource(c *gin.Context) (models.Recurrence, bool) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return models.Recurrence{}, false
	}

	var recurrence models.Recurrence
	err = models.DB.First(&recurrence, "id = ? AND user_id = ?", uri.ID, currentUser(c)).Error
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return models.Recurrence{}, false
	}

	return recurrence, true
}

// @Summary		Create recurrence
// @Description	Creates a new recurrence. The first occurrence is due at the start date.
// @Tags			Recurrences
// @Produce		json
// @Success		201			{object}	RecurrenceResponse
// @Failure		400			{object}	RecurrenceResponse
// @Failure		404			{object}	RecurrenceResponse
// @Param			recurrence	body		RecurrenceEditable	true	"Recurrence"
// @Router			/v1/recurrences [post]
func CreateRecurrence(c *gin.Context) {
	var editable RecurrenceEditable

	err := httputil.BindData(c, &editable)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), RecurrenceResponse{
			Error: &e,
		})
		return
	}

	recurrence := editable.model(currentUser(c))

	err = models.CreateRecurrence(models.DB, &recurrence)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), RecurrenceResponse{
			Error: &e,
		})
		return
	}

	data := newRecurrence(c, recurrence)
	c.JSON(http.StatusCreated, RecurrenceResponse{Data: &data})
}

// @Summary		Get recurrences
// @Description	Returns the recurrences of the user
// @Tags			Recurrences
// @Produce		json
// @Success		200	{object}	RecurrenceListResponse
// @Failure		400	{object}	RecurrenceListResponse
// @Router			/v1/recurrences [get]
func GetRecurrences(c *gin.Context) {
	var recurrences []models.Recurrence
	err := models.DB.
		Order("next_due_date ASC").
		Where("user_id = ?", currentUser(c)).
		Find(&recurrences).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), RecurrenceListResponse{
			Error: &s,
		})
		return
	}

	data := make([]Recurrence, 0)
	for _, recurrence := range recurrences {
		data = append(data, newRecurrence(c, recurrence))
	}

	c.JSON(http.StatusOK, RecurrenceListResponse{Data: data})
}

// @Summary		Get recurrence
// @Description	Returns a specific recurrence
// @Tags			Recurrences
// @Produce		json
// @Success		200	{object}	RecurrenceResponse
// @Failure		400	{object}	RecurrenceResponse
// @Failure		404	{object}	RecurrenceResponse
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/recurrences/{id} [get]
func GetRecurrence(c *gin.Context) {
	recurrence, ok := getRecurrenceResource(c)
	if !ok {
		return
	}

	data := newRecurrence(c, recurrence)
	c.JSON(http.StatusOK, RecurrenceResponse{Data: &data})
}

// @Summary		Update recurrence
// @Description	Update an existing recurrence. Only values to be updated need to be specified. The start date cannot be changed.
// @Tags			Recurrences
// @Accept			json
// @Produce		json
// @Success		200			{object}	RecurrenceResponse
// @Failure		400			{object}	RecurrenceResponse
// @Failure		404			{object}	RecurrenceResponse
// @Param			id			path		URIID				true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Param			recurrence	body		RecurrenceEditable	true	"Recurrence"
// @Router			/v1/recurrences/{id} [patch]
func UpdateRecurrence(c *gin.Context) {
	recurrence, ok := getRecurrenceResource(c)
	if !ok {
		return
	}

	updateFields, err := httputil.GetBodyFields(c, RecurrenceEditable{})
	if err != nil {
		s := err.Error()
		c.JSON(status(err), RecurrenceResponse{
			Error: &s,
		})
		return
	}

	if slices.Contains(updateFields, any("StartDate")) {
		s := errStartDateImmutable.Error()
		c.JSON(http.StatusBadRequest, RecurrenceResponse{
			Error: &s,
		})
		return
	}

	var data RecurrenceEditable
	err = httputil.BindData(c, &data)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), RecurrenceResponse{
			Error: &s,
		})
		return
	}

	err = models.UpdateRecurrence(models.DB, &recurrence, data.model(recurrence.UserID), updateFields)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), RecurrenceResponse{
			Error: &s,
		})
		return
	}

	r := newRecurrence(c, recurrence)
	c.JSON(http.StatusOK, RecurrenceResponse{Data: &r})
}

// @Summary		Delete recurrence
// @Description	Deletes a recurrence. Transactions that were generated from it stay.
// @Tags			Recurrences
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/recurrences/{id} [delete]
func DeleteRecurrence(c *gin.Context) {
	recurrence, ok := getRecurrenceResource(c)
	if !ok {
		return
	}

	err := models.DeleteRecurrence(models.DB, &recurrence)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	c.JSON(http.StatusNoContent, nil)
}

// @Summary		Process due recurrences
// @Description	Generates a transaction for every recurrence of the user that is due. A recurrence that is overdue by several periods is caught up one period per call.
// @Tags			Recurrences
// @Produce		json
// @Success		200	{object}	ProcessingResponse
// @Failure		400	{object}	ProcessingResponse
// @Router			/v1/recurrences/process [post]
func ProcessRecurrences(c *gin.Context) {
	result, err := models.ProcessDueRecurrences(models.DB, currentUser(c), time.Now().In(time.UTC))
	if err != nil {
		s := err.Error()
		c.JSON(status(err), ProcessingResponse{
			Error: &s,
		})
		return
	}

	c.JSON(http.StatusOK, ProcessingResponse{Data: &result})
}

// @Summary		Upcoming recurrences
// @Description	Returns the active recurrences that are due within the given number of days, soonest first. Overdue recurrences are included with a negative daysUntilDue.
// @Tags			Recurrences
// @Produce		json
// @Success		200		{object}	UpcomingListResponse
// @Failure		400		{object}	UpcomingListResponse
// @Param			days	query		int	false	"Window in days, 1 to 90. Defaults to 7"
// @Router			/v1/recurrences/upcoming [get]
func GetUpcomingRecurrences(c *gin.Context) {
	var query struct {
		Days int `form:"days,default=7"`
	}

	err := c.ShouldBindQuery(&query)
	if err != nil || query.Days < 1 || query.Days > 90 {
		e := errDaysOutOfRange.Error()
		c.JSON(http.StatusBadRequest, UpcomingListResponse{
			Error: &e,
		})
		return
	}

	upcoming, err := models.UpcomingRecurrences(models.DB, currentUser(c), time.Now().In(time.UTC), query.Days)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), UpcomingListResponse{
			Error: &s,
		})
		return
	}

	data := make([]Upcoming, 0)
	for _, u := range upcoming {
		data = append(data, Upcoming{
			Recurrence:   newRecurrence(c, u.Recurrence),
			DaysUntilDue: u.DaysUntilDue,
		})
	}

	c.JSON(http.StatusOK, UpcomingListResponse{Data: data})
}
