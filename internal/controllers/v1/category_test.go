package v1_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	v1 "github.com/pocketledger/backend/internal/controllers/v1"
	"github.com/pocketledger/backend/internal/models"
	"github.com/pocketledger/backend/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCategoriesDBClosed verifies that errors are processed correctly when
// the database is closed.
func (suite *TestSuiteStandard) TestCategoriesDBClosed() {
	tests := []struct {
		name string             // Name of the test
		test func(t *testing.T) // Code to run
	}{
		{
			"Creation fails",
			func(t *testing.T) {
				suite.createTestCategory(t, v1.CategoryEditable{}, http.StatusInternalServerError)
			},
		},
		{
			"GET fails",
			func(t *testing.T) {
				recorder := suite.request(t, http.MethodGet, "http://example.com/v1/categories", "")
				test.AssertHTTPStatus(t, &recorder, http.StatusInternalServerError)

				var response v1.CategoryListResponse
				test.DecodeResponse(t, &recorder, &response)
				assert.Contains(t, *response.Error, models.ErrGeneral.Error())
			},
		},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			suite.CloseDB()

			tt.test(t)
		})
	}
}

// TestCategoriesOptions verifies that OPTIONS requests are handled correctly.
func (suite *TestSuiteStandard) TestCategoriesOptions() {
	tests := []struct {
		name   string
		id     string // path at the categories endpoint to test
		status int    // Expected HTTP status code
	}{
		{"No Category with this ID", uuid.New().String(), http.StatusNotFound},
		{"Not a valid UUID", "NotParseableAsUUID", http.StatusBadRequest},
		{"Category exists", suite.createTestCategory(suite.T(), v1.CategoryEditable{}).Data.ID.String(), http.StatusNoContent},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			path := fmt.Sprintf("%s/%s", "http://example.com/v1/categories", tt.id)
			r := suite.request(t, http.MethodOptions, path, "")
			test.AssertHTTPStatus(t, &r, tt.status)

			if tt.status == http.StatusNoContent {
				assert.Equal(t, "GET, PATCH, DELETE", r.Header().Get("allow"))
			}
		})
	}
}

func (suite *TestSuiteStandard) TestCategoriesCreate() {
	r := suite.request(suite.T(), http.MethodPost, "http://example.com/v1/categories", v1.CategoryEditable{Name: "Groceries", Note: "Everything food"})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusCreated)

	var response v1.CategoryResponse
	test.DecodeResponse(suite.T(), &r, &response)

	require.NotNil(suite.T(), response.Data)
	assert.Equal(suite.T(), "Groceries", response.Data.Name)
	assert.Equal(suite.T(), "Everything food", response.Data.Note)
	assert.Contains(suite.T(), response.Data.Links.Self, "/v1/categories/")
}

func (suite *TestSuiteStandard) TestCategoriesCreateInvalid() {
	tests := []struct {
		name   string
		body   any
		status int
	}{
		{"Empty name", v1.CategoryEditable{Name: "   "}, http.StatusBadRequest},
		{"Broken body", `{ broken`, http.StatusBadRequest},
		{"Empty body", "", http.StatusBadRequest},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := suite.request(t, http.MethodPost, "http://example.com/v1/categories", tt.body)
			test.AssertHTTPStatus(t, &r, tt.status)
		})
	}
}

func (suite *TestSuiteStandard) TestCategoriesCreateDuplicateName() {
	suite.createTestCategory(suite.T(), v1.CategoryEditable{Name: "Groceries"})
	suite.createTestCategory(suite.T(), v1.CategoryEditable{Name: "Groceries"}, http.StatusBadRequest)

	// A different user is free to use the same name
	r := suite.requestAs(suite.T(), uuid.New(), http.MethodPost, "http://example.com/v1/categories", v1.CategoryEditable{Name: "Groceries"})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusCreated)
}

func (suite *TestSuiteStandard) TestCategoriesList() {
	suite.createTestCategory(suite.T(), v1.CategoryEditable{Name: "Rent"})
	suite.createTestCategory(suite.T(), v1.CategoryEditable{Name: "Groceries"})

	// A category of another user must not appear in the list
	suite.requestAs(suite.T(), uuid.New(), http.MethodPost, "http://example.com/v1/categories", v1.CategoryEditable{Name: "Foreign"})

	r := suite.request(suite.T(), http.MethodGet, "http://example.com/v1/categories", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.CategoryListResponse
	test.DecodeResponse(suite.T(), &r, &response)

	require.Len(suite.T(), response.Data, 2)

	// Sorted by name
	assert.Equal(suite.T(), "Groceries", response.Data[0].Name)
	assert.Equal(suite.T(), "Rent", response.Data[1].Name)
}

func (suite *TestSuiteStandard) TestCategoriesListFilter() {
	suite.createTestCategory(suite.T(), v1.CategoryEditable{Name: "Groceries", Note: "Everything food"})
	suite.createTestCategory(suite.T(), v1.CategoryEditable{Name: "Rent"})

	tests := []struct {
		name  string
		query string
		count int
	}{
		{"Name", "name=Gro", 1},
		{"Search in note", "search=food", 1},
		{"No match", "name=DoesNotExist", 0},
		{"Empty note", "note=", 1},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := suite.request(t, http.MethodGet, "http://example.com/v1/categories?"+tt.query, "")
			test.AssertHTTPStatus(t, &r, http.StatusOK)

			var response v1.CategoryListResponse
			test.DecodeResponse(t, &r, &response)
			assert.Len(t, response.Data, tt.count)
		})
	}
}

func (suite *TestSuiteStandard) TestCategoriesGetSingle() {
	category := suite.createTestCategory(suite.T(), v1.CategoryEditable{})

	tests := []struct {
		name   string
		id     string
		status int
	}{
		{"Existing Category", category.Data.ID.String(), http.StatusOK},
		{"ID nil", uuid.Nil.String(), http.StatusNotFound},
		{"Unknown ID", uuid.New().String(), http.StatusNotFound},
		{"Invalid ID", "NotParseableAsUUID", http.StatusBadRequest},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := suite.request(t, http.MethodGet, fmt.Sprintf("http://example.com/v1/categories/%s", tt.id), "")
			test.AssertHTTPStatus(t, &r, tt.status)
		})
	}
}

// Resources of other users look like they do not exist at all.
func (suite *TestSuiteStandard) TestCategoriesUserScoping() {
	category := suite.createTestCategory(suite.T(), v1.CategoryEditable{})

	r := suite.requestAs(suite.T(), uuid.New(), http.MethodGet, fmt.Sprintf("http://example.com/v1/categories/%s", category.Data.ID), "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNotFound)
}

func (suite *TestSuiteStandard) TestCategoriesUpdate() {
	category := suite.createTestCategory(suite.T(), v1.CategoryEditable{Name: "Groceries", Note: "Everything food"})

	r := suite.request(suite.T(), http.MethodPatch, fmt.Sprintf("http://example.com/v1/categories/%s", category.Data.ID), map[string]any{
		"note": "Food and drink",
	})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.CategoryResponse
	test.DecodeResponse(suite.T(), &r, &response)

	// Only the note changed
	assert.Equal(suite.T(), "Groceries", response.Data.Name)
	assert.Equal(suite.T(), "Food and drink", response.Data.Note)
}

func (suite *TestSuiteStandard) TestCategoriesDelete() {
	category := suite.createTestCategory(suite.T(), v1.CategoryEditable{})

	r := suite.request(suite.T(), http.MethodDelete, fmt.Sprintf("http://example.com/v1/categories/%s", category.Data.ID), "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNoContent)

	r = suite.request(suite.T(), http.MethodGet, fmt.Sprintf("http://example.com/v1/categories/%s", category.Data.ID), "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNotFound)
}

func (suite *TestSuiteStandard) TestCategoriesDeleteInUse() {
	category := suite.createTestCategory(suite.T(), v1.CategoryEditable{})
	suite.createTestTransaction(suite.T(), v1.TransactionEditable{CategoryID: category.Data.ID})

	r := suite.request(suite.T(), http.MethodDelete, fmt.Sprintf("http://example.com/v1/categories/%s", category.Data.ID), "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)

	var response struct {
		Error string `json:"error"`
	}
	test.DecodeResponse(suite.T(), &r, &response)
	assert.Equal(suite.T(), models.ErrCategoryStillInUse.Error(), response.Error)
}
