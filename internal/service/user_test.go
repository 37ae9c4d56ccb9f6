package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forkful/backend/internal/service"
	"github.com/forkful/backend/internal/testhelpers"
)

func TestUserGet(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := service.NewUserService(db)
	ctx := context.Background()

	alice := testhelpers.CreateTestUser(t, db, "alice")

	got, err := svc.Get(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)

	_, err = svc.Get(ctx, uuid.New())
	assert.True(t, errors.Is(err, service.ErrNotFound))
}

func TestUserSubscriptions(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	users := service.NewUserService(db)
	edges := service.NewEdgeService(db)
	ctx := context.Background()

	alice := testhelpers.CreateTestUser(t, db, "alice")
	bob := testhelpers.CreateTestUser(t, db, "bob")
	carol := testhelpers.CreateTestUser(t, db, "carol")

	require.NoError(t, edges.Add(ctx, service.EdgeFollow, alice.ID, carol.ID))
	require.NoError(t, edges.Add(ctx, service.EdgeFollow, alice.ID, bob.ID))
	require.NoError(t, edges.Add(ctx, service.EdgeFollow, bob.ID, alice.ID))

	authors, err := users.Subscriptions(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, authors, 2)
	assert.Equal(t, "bob", authors[0].Username)
	assert.Equal(t, "carol", authors[1].Username)
}

func TestUserRecipePreviews(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := service.NewUserService(db)
	ctx := context.Background()

	alice := testhelpers.CreateTestUser(t, db, "alice")
	for _, name := range []string{"One", "Two", "Three"} {
		testhelpers.CreateTestRecipe(t, db, alice, name)
	}

	previews, err := svc.RecipePreviews(ctx, alice.ID, 2)
	require.NoError(t, err)
	assert.Len(t, previews, 2)

	count, err := svc.RecipeCount(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}
