package service_test

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forkful/backend/internal/service"
	"github.com/forkful/backend/internal/testhelpers"
)

func TestShoppingListAggregate(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	recipes := service.NewRecipeService(db)
	edges := service.NewEdgeService(db)
	svc := service.NewShoppingListService(db)
	ctx := context.Background()

	alice := testhelpers.CreateTestUser(t, db, "alice")
	egg := testhelpers.CreateTestIngredient(t, db, "egg", "pcs")
	flour := testhelpers.CreateTestIngredient(t, db, "flour", "g")

	pancakes, err := recipes.Create(ctx, alice.ID, service.RecipeInput{
		Name:        "Pancakes",
		CookingTime: 20,
		Ingredients: []service.IngredientInput{
			{IngredientID: egg.ID, Amount: 2},
			{IngredientID: flour.ID, Amount: 200},
		},
	})
	require.NoError(t, err)

	omelette, err := recipes.Create(ctx, alice.ID, service.RecipeInput{
		Name:        "Omelette",
		CookingTime: 10,
		Ingredients: []service.IngredientInput{{IngredientID: egg.ID, Amount: 3}},
	})
	require.NoError(t, err)

	require.NoError(t, edges.Add(ctx, service.EdgeCart, alice.ID, pancakes.ID))
	require.NoError(t, edges.Add(ctx, service.EdgeCart, alice.ID, omelette.ID))

	items, err := svc.Aggregate(ctx, alice.ID)
	require.NoError(t, err)

	// Shared ingredients merge into one summed line, sorted by name.
	require.Len(t, items, 2)
	assert.Equal(t, service.ShoppingItem{Name: "egg", Unit: "pcs", Amount: 5}, items[0])
	assert.Equal(t, service.ShoppingItem{Name: "flour", Unit: "g", Amount: 200}, items[1])

	lines := service.FormatLines(items)
	assert.Equal(t, []string{"Egg(pcs) - 5", "Flour(g) - 200"}, lines)
}

func TestShoppingListAggregateEmptyCart(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := service.NewShoppingListService(db)

	alice := testhelpers.CreateTestUser(t, db, "alice")

	items, err := svc.Aggregate(context.Background(), alice.ID)
	require.NoError(t, err)
	assert.Empty(t, items)

	doc, err := svc.BuildDocument(context.Background(), alice.ID)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(doc, []byte("%PDF")))
}

func TestShoppingListAggregateScopedToUser(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	recipes := service.NewRecipeService(db)
	edges := service.NewEdgeService(db)
	svc := service.NewShoppingListService(db)
	ctx := context.Background()

	alice := testhelpers.CreateTestUser(t, db, "alice")
	bob := testhelpers.CreateTestUser(t, db, "bob")
	egg := testhelpers.CreateTestIngredient(t, db, "egg", "pcs")

	omelette, err := recipes.Create(ctx, alice.ID, service.RecipeInput{
		Name:        "Omelette",
		CookingTime: 10,
		Ingredients: []service.IngredientInput{{IngredientID: egg.ID, Amount: 3}},
	})
	require.NoError(t, err)
	require.NoError(t, edges.Add(ctx, service.EdgeCart, bob.ID, omelette.ID))

	items, err := svc.Aggregate(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestPaginateLines(t *testing.T) {
	t.Run("empty input keeps one page", func(t *testing.T) {
		pages := service.PaginateLines(nil, service.ShoppingListLinesPerPage)
		require.Len(t, pages, 1)
		assert.Empty(t, pages[0])
	})

	t.Run("exactly one full page", func(t *testing.T) {
		lines := makeLines(service.ShoppingListLinesPerPage)
		pages := service.PaginateLines(lines, service.ShoppingListLinesPerPage)
		require.Len(t, pages, 1)
		assert.Len(t, pages[0], service.ShoppingListLinesPerPage)
	})

	t.Run("one line past the break starts a new page", func(t *testing.T) {
		lines := makeLines(service.ShoppingListLinesPerPage + 1)
		pages := service.PaginateLines(lines, service.ShoppingListLinesPerPage)
		require.Len(t, pages, 2)
		assert.Len(t, pages[0], service.ShoppingListLinesPerPage)
		require.Len(t, pages[1], 1)
		assert.Equal(t, lines[service.ShoppingListLinesPerPage], pages[1][0])
	})
}

func TestRenderShoppingListPDF(t *testing.T) {
	doc, err := service.RenderShoppingListPDF(makeLines(80))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(doc, []byte("%PDF")))
}

func makeLines(n int) []string {
	lines := make([]string, n)
	for i := range lines {
		lines[i] = fmt.Sprintf("Item %02d(g) - %d", i, i+1)
	}
	return lines
}
