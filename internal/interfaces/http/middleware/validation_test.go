package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/restaurant/backend/internal/domain/shared"
	"github.com/restaurant/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testDetail struct {
	Name  string `json:"name" binding:"required"`
	Value string `json:"value" binding:"required"`
}

type testMenuItem struct {
	Name    string       `json:"name" binding:"required"`
	InStock *int         `json:"inStock" binding:"required,min=0,max=1000"`
	Details []testDetail `json:"additionalDetails" binding:"max=5,dive"`
}

type testLine struct {
	MenuItemID string `json:"menuItemId" binding:"required,uuid"`
	Quantity   int    `json:"quantity" binding:"required,min=1"`
}

func bindAndHandle(t *testing.T, body string, target any) *httptest.ResponseRecorder {
	t.Helper()
	SetupValidator()

	router := gin.New()
	router.POST("/test", func(c *gin.Context) {
		if err := c.ShouldBindJSON(target); err != nil {
			if !HandleValidationError(c, err) {
				c.Status(http.StatusTeapot)
			}
			return
		}
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(body)))
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) dto.ErrorResponse {
	t.Helper()
	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestHandleValidationError_Struct(t *testing.T) {
	w := bindAndHandle(t, `{"inStock": 2000, "additionalDetails": [{"name": "Size"}]}`, &testMenuItem{})

	require.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, shared.CodeValidation, resp.Code)

	fields := map[string]string{}
	for _, d := range resp.Errors {
		fields[d.Field] = d.Message
	}
	assert.Equal(t, "This field is required", fields["name"])
	assert.Equal(t, "Must be at most 1000", fields["inStock"])
	assert.Equal(t, "This field is required", fields["additionalDetails[0].value"])
}

func TestHandleValidationError_ListBody(t *testing.T) {
	var lines []testLine
	w := bindAndHandle(t, `[{"menuItemId": "not-a-uuid", "quantity": 1}, {"menuItemId": "6f1c4d8e-3b0a-4f57-9d7e-2b8c1e0a9f11", "quantity": 0}]`, &lines)

	require.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeError(t, w)
	require.Len(t, resp.Errors, 2)
	assert.Equal(t, "menuItemId", resp.Errors[0].Field)
	assert.Equal(t, "Invalid UUID format", resp.Errors[0].Message)
	assert.Equal(t, "quantity", resp.Errors[1].Field)
}

func TestHandleValidationError_NotValidation(t *testing.T) {
	w := bindAndHandle(t, `{"name": `, &testMenuItem{})
	assert.Equal(t, http.StatusTeapot, w.Code)

	_, ok := ValidationDetails(errors.New("plain"))
	assert.False(t, ok)
}
