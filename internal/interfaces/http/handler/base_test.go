package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/casaverde/backoffice/internal/domain/treasury"
	"github.com/casaverde/backoffice/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func performWithError(t *testing.T, err error) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	h := &BaseHandler{}
	router := gin.New()
	router.GET("/test", func(c *gin.Context) {
		h.HandleError(c, err)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/test", nil))
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestHandleError_DomainErrors(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedCode   string
	}{
		{
			name:           "blocked request maps to 422",
			err:            treasury.ErrRequestBlocked,
			expectedStatus: http.StatusUnprocessableEntity,
			expectedCode:   dto.ErrCodeRequestBlocked,
		},
		{
			name:           "form token mismatch maps to 409",
			err:            treasury.ErrFormTokenMismatch,
			expectedStatus: http.StatusConflict,
			expectedCode:   dto.ErrCodeFormTokenMismatch,
		},
		{
			name:           "invalid transition maps to 422",
			err:            treasury.ErrInvalidTransition,
			expectedStatus: http.StatusUnprocessableEntity,
			expectedCode:   dto.ErrCodeInvalidState,
		},
		{
			name:           "invalid amount maps to 400",
			err:            treasury.ErrInvalidAmount,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   dto.ErrCodeInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := performWithError(t, tt.err)

			assert.Equal(t, tt.expectedStatus, w.Code)
			resp := decodeResponse(t, w)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.expectedCode, resp.Error.Code)
		})
	}
}

func TestHandleError_UnknownError(t *testing.T) {
	w := performWithError(t, errors.New("database exploded"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeInternal, resp.Error.Code)
	// Internal details must not leak to the client
	assert.NotContains(t, resp.Error.Message, "database exploded")
}

func TestHandleError_Nil(t *testing.T) {
	gin.SetMode(gin.TestMode)

	h := &BaseHandler{}
	router := gin.New()
	router.GET("/test", func(c *gin.Context) {
		h.HandleError(c, nil)
		h.Success(c, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/test", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHandleError_IncludesRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	h := &BaseHandler{}
	router := gin.New()
	router.GET("/test", func(c *gin.Context) {
		c.Set(RequestIDKey, "req-55")
		h.HandleError(c, treasury.ErrRequestBlocked)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/test", nil))

	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "req-55", resp.Error.RequestID)
}
