package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forkful/backend/internal/service"
	"github.com/forkful/backend/internal/testhelpers"
)

func TestRegisterAndLogin(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := service.NewAuthService(db, "test-secret")
	ctx := context.Background()

	token, user, err := svc.Register(ctx, "alice@example.com", "alice", "Alice", "Smith", "password123")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.NotEmpty(t, token)
	assert.Equal(t, "alice", user.Username)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "alice", claims.Username)

	loginToken, err := svc.Login(ctx, "alice@example.com", "password123")
	require.NoError(t, err)
	assert.NotEmpty(t, loginToken)
}

func TestRegisterDuplicate(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := service.NewAuthService(db, "test-secret")
	ctx := context.Background()

	_, _, err := svc.Register(ctx, "alice@example.com", "alice", "", "", "password123")
	require.NoError(t, err)

	_, _, err = svc.Register(ctx, "alice@example.com", "alice2", "", "", "password123")
	assert.True(t, errors.Is(err, service.ErrDuplicate), "duplicate email")

	_, _, err = svc.Register(ctx, "other@example.com", "alice", "", "", "password123")
	assert.True(t, errors.Is(err, service.ErrDuplicate), "duplicate username")
}

func TestLoginInvalidCredentials(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := service.NewAuthService(db, "test-secret")
	ctx := context.Background()

	_, _, err := svc.Register(ctx, "alice@example.com", "alice", "", "", "password123")
	require.NoError(t, err)

	_, err = svc.Login(ctx, "alice@example.com", "wrong-password")
	assert.True(t, errors.Is(err, service.ErrInvalidCredentials))

	_, err = svc.Login(ctx, "nobody@example.com", "password123")
	assert.True(t, errors.Is(err, service.ErrInvalidCredentials))
}

func TestValidateTokenRejectsTampered(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := service.NewAuthService(db, "test-secret")
	other := service.NewAuthService(db, "other-secret")

	token, _, err := svc.Register(context.Background(), "alice@example.com", "alice", "", "", "password123")
	require.NoError(t, err)

	_, err = other.ValidateToken(token)
	assert.Error(t, err)

	_, err = svc.ValidateToken("not-a-token")
	assert.Error(t, err)
}
