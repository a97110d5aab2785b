package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flashcording/agent-service/internal/types"
)

func testAuthHandler(t *testing.T) (*AuthHandler, *fakeUserStore) {
	t.Helper()
	store := newFakeUserStore()
	userService := NewUserService(store, testPasswordConfig(t))
	return NewAuthHandler(userService, testJWTService()), store
}

func postJSON(t *testing.T, handler http.HandlerFunc, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestAuthHandlerRegister(t *testing.T) {
	handler, _ := testAuthHandler(t)

	rec := postJSON(t, handler.Register, "/auth/register", types.CreateUserRequest{
		Username: "learner1",
		Email:    "learner@example.com",
		Password: "supersecret",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp types.LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "learner1", resp.User.Username)
	assert.Equal(t, 1, resp.User.Level)
}

func TestAuthHandlerRegisterValidation(t *testing.T) {
	handler, _ := testAuthHandler(t)

	rec := postJSON(t, handler.Register, "/auth/register", types.CreateUserRequest{
		Username: "learner1",
		Email:    "not-an-email",
		Password: "supersecret",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "validation error")
}

func TestAuthHandlerRegisterDuplicate(t *testing.T) {
	handler, _ := testAuthHandler(t)

	first := postJSON(t, handler.Register, "/auth/register", types.CreateUserRequest{
		Username: "learner1", Email: "dup@example.com", Password: "supersecret",
	})
	require.Equal(t, http.StatusCreated, first.Code)

	second := postJSON(t, handler.Register, "/auth/register", types.CreateUserRequest{
		Username: "learner2", Email: "dup@example.com", Password: "supersecret",
	})
	assert.Equal(t, http.StatusConflict, second.Code)
}

func TestAuthHandlerLogin(t *testing.T) {
	handler, _ := testAuthHandler(t)

	postJSON(t, handler.Register, "/auth/register", types.CreateUserRequest{
		Username: "learner1", Email: "learner@example.com", Password: "supersecret",
	})

	rec := postJSON(t, handler.Login, "/auth/login", types.LoginRequest{
		Email: "learner@example.com", Password: "supersecret",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp types.LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)

	// The issued token round-trips through validation.
	claims, err := testJWTService().ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.GetUserID())
}

func TestAuthHandlerLoginRejectsBadPassword(t *testing.T) {
	handler, _ := testAuthHandler(t)

	postJSON(t, handler.Register, "/auth/register", types.CreateUserRequest{
		Username: "learner1", Email: "learner@example.com", Password: "supersecret",
	})

	rec := postJSON(t, handler.Login, "/auth/login", types.LoginRequest{
		Email: "learner@example.com", Password: "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthHandlerInvalidBody(t *testing.T) {
	handler, _ := testAuthHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	handler.Register(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
