package service

import (
	"context"
	"testing"

	"marketplace-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignUpAndSignIn(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user, err := env.users.SignUp(ctx, "johndoe", "gaslbj3l4i", "johndoe@email.com")
	require.NoError(t, err)
	assert.Equal(t, "johndoe", user.Username)
	assert.Equal(t, "johndoe@email.com", user.Email)
	assert.Empty(t, user.PasswordHash)
	assert.Empty(t, user.Cart)

	require.NoError(t, env.users.SignIn(ctx, "johndoe", "gaslbj3l4i"))

	err = env.users.SignIn(ctx, "johndoe", "wrong")
	assert.ErrorIs(t, err, models.ErrBadCredentials)

	err = env.users.SignIn(ctx, "janedoe", "gaslbj3l4i")
	assert.ErrorIs(t, err, models.ErrUserNotFound)
}

func TestSignUpValidationOrder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.users.SignUp(ctx, "johndoe", "pw", "johndoe@email.com")
	require.NoError(t, err)

	tests := []struct {
		name     string
		username string
		password string
		email    string
		wantMsg  string
	}{
		{"missing username", "", "pw", "a@b.com", "Username not provided"},
		{"username taken", "johndoe", "pw", "other@b.com", "Username already being used"},
		{"missing password", "janedoe", "", "a@b.com", "Password not provided"},
		{"missing email", "janedoe", "pw", "", "Email not provided"},
		{"email taken", "janedoe", "pw", "johndoe@email.com", "Email already registered"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.users.SignUp(ctx, tt.username, tt.password, tt.email)
			require.Error(t, err)
			assert.True(t, models.IsValidation(err))
			assert.Equal(t, tt.wantMsg, err.Error())
		})
	}
}

func TestGetStripsCredentials(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.users.SignUp(ctx, "johndoe", "pw", "johndoe@email.com")
	require.NoError(t, err)

	user, err := env.users.Get(ctx, "johndoe")
	require.NoError(t, err)
	assert.Empty(t, user.PasswordHash)
}
