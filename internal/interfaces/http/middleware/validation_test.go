package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/smartfertilizer/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signupRequest struct {
	Name     string   `json:"name" binding:"required,max=100"`
	Email    string   `json:"email" binding:"required,email"`
	Password string   `json:"password" binding:"required,min=6"`
	Lat      *float64 `json:"latitude" binding:"omitempty,latitude"`
}

func bindRouter() *gin.Engine {
	SetupValidator()
	router := gin.New()
	router.POST("/test", func(c *gin.Context) {
		var req signupRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleBindError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	})
	return router
}

func postJSON(router http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHandleBindError(t *testing.T) {
	router := bindRouter()

	t.Run("reports every invalid field by json name", func(t *testing.T) {
		w := postJSON(router, `{"email": "not-an-email", "password": "123", "latitude": 120}`)

		require.Equal(t, http.StatusBadRequest, w.Code)
		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.False(t, resp.Success)
		assert.Equal(t, "Validation failed", resp.Message)

		fields := map[string]string{}
		for _, e := range resp.Errors {
			fields[e.Field] = e.Message
		}
		assert.Equal(t, map[string]string{
			"name":     "name is required",
			"email":    "Please provide a valid email",
			"password": "password must be at least 6 characters",
			"latitude": "Latitude must be between -90 and 90",
		}, fields)
	})

	t.Run("password values are never echoed", func(t *testing.T) {
		w := postJSON(router, `{"name": "A", "email": "a@b.co", "password": "123"}`)

		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.NotContains(t, w.Body.String(), `"value":"123"`)
		assert.Contains(t, w.Body.String(), `"message":"password must be at least 6 characters"`)
	})

	t.Run("malformed json", func(t *testing.T) {
		w := postJSON(router, `{"name": `)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"success":false,"message":"`+MsgInvalidBody+`"}`, w.Body.String())
	})

	t.Run("valid input", func(t *testing.T) {
		w := postJSON(router, `{"name": "Asha", "email": "asha@example.com", "password": "secret1", "latitude": 18.5}`)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}
