package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestGinContext(method, path string, body interface{}) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()

	var req *http.Request
	if body != nil {
		bodyBytes, _ := json.Marshal(body)
		req, _ = http.NewRequest(method, path, bytes.NewReader(bodyBytes))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req, _ = http.NewRequest(method, path, nil)
	}

	c, _ := gin.CreateTestContext(w)
	c.Request = req
	return c, w
}

func parseJSONResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err, "response body should be valid JSON: %s", w.Body.String())
	return resp
}

// Request validation happens before any service call, so a handler with a
// nil service is enough here.

func TestRegister_ValidationErrors(t *testing.T) {
	handler := &AuthHandler{}

	tests := []struct {
		name string
		body interface{}
	}{
		{name: "empty body", body: nil},
		{
			name: "missing email",
			body: map[string]interface{}{"password": "longenough", "full_name": "Someone"},
		},
		{
			name: "invalid email format",
			body: map[string]interface{}{"email": "not-an-email", "password": "longenough", "full_name": "Someone"},
		},
		{
			name: "password below minimum length",
			body: map[string]interface{}{"email": "a@b.com", "password": "short", "full_name": "Someone"},
		},
		{
			name: "missing full name",
			body: map[string]interface{}{"email": "a@b.com", "password": "longenough"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := newTestGinContext("POST", "/api/auth/register", tt.body)
			handler.Register(c)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			resp := parseJSONResponse(t, w)
			assert.Contains(t, resp, "error")
		})
	}
}

func TestLogin_ValidationErrors(t *testing.T) {
	handler := &AuthHandler{}

	tests := []struct {
		name string
		body interface{}
	}{
		{name: "empty body", body: nil},
		{name: "missing password", body: map[string]interface{}{"email": "a@b.com"}},
		{name: "missing email", body: map[string]interface{}{"password": "whatever"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := newTestGinContext("POST", "/api/auth/login", tt.body)
			handler.Login(c)

			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestSubmitAttempt_ValidationErrors(t *testing.T) {
	handler := &AttemptHandler{}

	c, w := newTestGinContext("POST", "/api/attempts/9/submit", map[string]interface{}{})
	c.Set("attemptID", uint(9))
	handler.SubmitAttempt(c)

	assert.Equal(t, http.StatusBadRequest, w.Code, "answers array is required")
}

func TestSanitizeForExcel(t *testing.T) {
	assert.Equal(t, "plain", sanitizeForExcel("plain"))
	assert.Equal(t, "'=cmd()", sanitizeForExcel("=cmd()"))
	assert.Equal(t, "'+1", sanitizeForExcel("+1"))
	assert.Equal(t, "'@import", sanitizeForExcel("@import"))
	assert.Equal(t, "", sanitizeForExcel(""))
}
