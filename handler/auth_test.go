package handler

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	e := newEnv(t)

	code, body := e.do(t, http.MethodPost, "/auth/register", "", gin.H{
		"name":     "Alice",
		"email":    "alice@example.com",
		"password": "s3cret",
	})

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "user created successfully", body["message"])
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	e := newEnv(t)
	e.register(t, "alice@example.com")

	code, body := e.do(t, http.MethodPost, "/auth/register", "", gin.H{
		"name":     "Another Alice",
		"email":    "alice@example.com",
		"password": "other",
	})

	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "user already exists", body["message"])
}

func TestRegisterValidationErrors(t *testing.T) {
	e := newEnv(t)

	code, body := e.do(t, http.MethodPost, "/auth/register", "", gin.H{
		"name":     "Alice",
		"email":    "not-an-email",
		"password": "s3cret",
	})

	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "validation failed", body["message"])

	errs, ok := body["errors"].([]any)
	require.True(t, ok)
	require.Len(t, errs, 1)
	field := errs[0].(map[string]any)
	assert.Equal(t, "email", field["field"])
}

func TestLoginReturnsToken(t *testing.T) {
	e := newEnv(t)
	e.register(t, "alice@example.com")

	code, body := e.do(t, http.MethodPost, "/auth/login", "", gin.H{
		"email":    "alice@example.com",
		"password": "s3cret",
	})

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "user login successfully", body["message"])
	assert.NotEmpty(t, body["token"])
}

func TestLoginUnknownEmailIsNotFound(t *testing.T) {
	e := newEnv(t)

	code, _ := e.do(t, http.MethodPost, "/auth/login", "", gin.H{
		"email":    "nobody@example.com",
		"password": "s3cret",
	})

	assert.Equal(t, http.StatusNotFound, code)
}

func TestLoginWrongPasswordIsUnauthorized(t *testing.T) {
	e := newEnv(t)
	e.register(t, "alice@example.com")

	code, _ := e.do(t, http.MethodPost, "/auth/login", "", gin.H{
		"email":    "alice@example.com",
		"password": "wrong",
	})

	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestMe(t *testing.T) {
	e := newEnv(t)
	e.register(t, "alice@example.com")
	token := e.login(t, "alice@example.com")

	code, body := e.do(t, http.MethodGet, "/user/me", token, nil)

	assert.Equal(t, http.StatusOK, code)
	user, ok := body["user"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "alice@example.com", user["email"])
	assert.Equal(t, "Test User", user["name"])
	assert.NotContains(t, user, "password")
}
