package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCreateUserRequestValidate(t *testing.T) {
	valid := CreateUserRequest{Username: "learner1", Email: "learner@example.com", Password: "supersecret"}
	assert.NoError(t, valid.Validate())

	cases := []struct {
		name string
		req  CreateUserRequest
	}{
		{"short username", CreateUserRequest{Username: "ab", Email: "a@b.com", Password: "supersecret"}},
		{"bad email", CreateUserRequest{Username: "learner1", Email: "not-an-email", Password: "supersecret"}},
		{"short password", CreateUserRequest{Username: "learner1", Email: "a@b.com", Password: "short"}},
		{"empty", CreateUserRequest{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Error(t, tc.req.Validate())
		})
	}
}

func TestLoginRequestValidate(t *testing.T) {
	valid := LoginRequest{Email: "a@b.com", Password: "anything"}
	assert.NoError(t, valid.Validate())

	assert.Error(t, (&LoginRequest{Email: "a@b.com"}).Validate())
	assert.Error(t, (&LoginRequest{Password: "x"}).Validate())
}

func TestUpdatePasswordRequestValidate(t *testing.T) {
	valid := UpdatePasswordRequest{CurrentPassword: "oldpassword", NewPassword: "newpassword"}
	assert.NoError(t, valid.Validate())

	assert.Error(t, (&UpdatePasswordRequest{CurrentPassword: "old", NewPassword: "short"}).Validate())
}
