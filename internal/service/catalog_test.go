package service_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forkful/backend/internal/service"
	"github.com/forkful/backend/internal/testhelpers"
)

func TestListIngredientsNameFilter(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := service.NewCatalogService(db)
	ctx := context.Background()

	testhelpers.CreateTestIngredient(t, db, "Sea Salt", "g")
	testhelpers.CreateTestIngredient(t, db, "salted butter", "g")
	testhelpers.CreateTestIngredient(t, db, "pepper", "g")

	// Substring match is case-insensitive.
	found, err := svc.ListIngredients(ctx, "SALT")
	require.NoError(t, err)
	assert.Len(t, found, 2)

	all, err := svc.ListIngredients(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	none, err := svc.ListIngredients(ctx, "cinnamon")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestImportIngredients(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := service.NewCatalogService(db)
	ctx := context.Background()

	csv := "flour,g\negg,pcs\n\nmilk,ml\n"
	count, err := svc.ImportIngredients(ctx, strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	// Re-running the import does not duplicate rows.
	_, err = svc.ImportIngredients(ctx, strings.NewReader(csv))
	require.NoError(t, err)

	all, err := svc.ListIngredients(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestTags(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := service.NewCatalogService(db)
	ctx := context.Background()

	breakfast := testhelpers.CreateTestTag(t, db, "breakfast")
	testhelpers.CreateTestTag(t, db, "dinner")

	tags, err := svc.ListTags(ctx)
	require.NoError(t, err)
	assert.Len(t, tags, 2)

	got, err := svc.GetTag(ctx, breakfast.ID)
	require.NoError(t, err)
	assert.Equal(t, "breakfast", got.Name)
}
