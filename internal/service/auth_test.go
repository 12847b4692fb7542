package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IstyxI/foodgram/internal/types"
)

func registerRequest(email, username string) types.RegisterRequest {
	return types.RegisterRequest{
		Email:     email,
		Username:  username,
		FirstName: "Test",
		LastName:  "User",
		Password:  "password123",
	}
}

func TestRegisterAndLogin(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAuthService(db, "test-secret")
	ctx := context.Background()

	user, token, err := svc.Register(ctx, registerRequest("cook@example.com", "cook"))
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.NotEmpty(t, token)
	assert.Equal(t, "cook", user.Username)
	assert.NotEqual(t, "password123", user.PasswordHash)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)

	loginToken, err := svc.Login(ctx, "cook@example.com", "password123")
	require.NoError(t, err)
	assert.NotEmpty(t, loginToken)

	_, err = svc.Login(ctx, "cook@example.com", "wrong-password")
	assert.Error(t, err)
}

func TestRegisterReservedUsername(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAuthService(db, "test-secret")

	_, _, err := svc.Register(context.Background(), registerRequest("me@example.com", "me"))
	assert.True(t, IsValidationError(err))
}

func TestRegisterInvalidUsername(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAuthService(db, "test-secret")

	for _, name := range []string{"has space", "semi;colon", "sla/sh"} {
		_, _, err := svc.Register(context.Background(), registerRequest("x@example.com", name))
		assert.True(t, IsValidationError(err), "username %q should be rejected", name)
	}

	// The permitted extra characters are accepted.
	_, _, err := svc.Register(context.Background(), registerRequest("ok@example.com", "us.er@host+x-1_2"))
	assert.NoError(t, err)
}

func TestRegisterDuplicate(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAuthService(db, "test-secret")
	ctx := context.Background()

	_, _, err := svc.Register(ctx, registerRequest("cook@example.com", "cook"))
	require.NoError(t, err)

	_, _, err = svc.Register(ctx, registerRequest("cook@example.com", "other"))
	assert.True(t, IsValidationError(err), "duplicate email")

	_, _, err = svc.Register(ctx, registerRequest("other@example.com", "cook"))
	assert.True(t, IsValidationError(err), "duplicate username")
}

func TestValidateTokenWrongSecret(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	_, token, err := NewAuthService(db, "secret-a").Register(ctx, registerRequest("cook@example.com", "cook"))
	require.NoError(t, err)

	_, err = NewAuthService(db, "secret-b").ValidateToken(token)
	assert.Error(t, err)
}

func TestListUsersPaginates(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAuthService(db, "test-secret")
	ctx := context.Background()

	for _, name := range []string{"carol", "alice", "bob"} {
		createTestUser(t, db, name)
	}

	users, total, err := svc.ListUsers(ctx, 1, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, users, 2)
	assert.Equal(t, "alice", users[0].Username)
	assert.Equal(t, "bob", users[1].Username)

	users, total, err = svc.ListUsers(ctx, 2, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, users, 1)
	assert.Equal(t, "carol", users[0].Username)

	// Out-of-range arguments fall back to the defaults.
	users, _, err = svc.ListUsers(ctx, 0, -1)
	require.NoError(t, err)
	assert.Len(t, users, 3)
}

func TestSetAvatar(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAuthService(db, "test-secret")
	ctx := context.Background()

	user, _, err := svc.Register(ctx, registerRequest("cook@example.com", "cook"))
	require.NoError(t, err)

	require.NoError(t, svc.SetAvatar(ctx, user.ID, "https://cdn.example.com/a.png"))
	loaded, err := svc.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/a.png", loaded.AvatarURL)

	require.NoError(t, svc.SetAvatar(ctx, user.ID, ""))
	loaded, err = svc.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, loaded.AvatarURL)
}
