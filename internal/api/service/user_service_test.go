package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ozcanmiraay/cs162-todo-list-app/internal/api/apperr"
	"github.com/ozcanmiraay/cs162-todo-list-app/internal/api/models"
)

func TestRegisterValidation(t *testing.T) {
	tests := []struct {
		name string
		req  models.RegisterRequest
	}{
		{name: "empty username", req: models.RegisterRequest{Username: "", Password: "secret"}},
		{name: "empty password", req: models.RegisterRequest{Username: "alice", Password: ""}},
		{name: "both empty", req: models.RegisterRequest{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEnv(t)
			_, err := e.users.Register(context.Background(), &tt.req)
			if !errors.Is(err, apperr.ErrInvalidInput) {
				t.Errorf("Register() error = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	req := &models.RegisterRequest{Username: "alice", Password: "secret"}
	user, err := e.users.Register(ctx, req)
	require.NoError(t, err)
	require.NotZero(t, user.ID)

	_, err = e.users.Register(ctx, req)
	require.ErrorIs(t, err, apperr.ErrConflict, "second registration of the same username must conflict")

	// A different username still works.
	_, err = e.users.Register(ctx, &models.RegisterRequest{Username: "bob", Password: "secret"})
	require.NoError(t, err)
}

func TestRegisterNeverStoresPlaintext(t *testing.T) {
	e := newTestEnv(t)
	user, err := e.users.Register(context.Background(), &models.RegisterRequest{
		Username: "alice", Password: "secret",
	})
	require.NoError(t, err)
	require.NotEqual(t, "secret", user.PasswordHash)
	require.NotEmpty(t, user.PasswordHash)
}

func TestLoginAndSessionLifecycle(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	userID := e.register(t, "alice")

	// Unknown user.
	_, _, err := e.users.Login(ctx, &models.LoginRequest{Username: "nobody", Password: "hunter22"})
	require.ErrorIs(t, err, apperr.ErrNotFound)

	// Wrong password.
	_, _, err = e.users.Login(ctx, &models.LoginRequest{Username: "alice", Password: "wrong"})
	require.ErrorIs(t, err, apperr.ErrInvalidCredential)

	// Success establishes a resolvable session.
	user, token, err := e.users.Login(ctx, &models.LoginRequest{Username: "alice", Password: "hunter22"})
	require.NoError(t, err)
	require.Equal(t, userID, user.ID)

	resolved, ok, err := e.users.Resolve(ctx, token)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, userID, resolved)

	current, ok, err := e.users.Current(ctx, token)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "alice", current.Username)

	// Logout invalidates and is idempotent.
	require.NoError(t, e.users.Logout(ctx, token))
	_, ok, err = e.users.Resolve(ctx, token)
	require.NoError(t, err)
	require.False(t, ok)
	require.NoError(t, e.users.Logout(ctx, token))
}

func TestResolveRejectsGarbage(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	for _, token := range []string{"", "garbage", "a.b.c"} {
		_, ok, err := e.users.Resolve(ctx, token)
		require.NoError(t, err)
		require.False(t, ok, "token %q must not resolve", token)
	}
}
