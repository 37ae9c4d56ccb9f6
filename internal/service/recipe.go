package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/forkful/backend/internal/models"
)

// IngredientInput is one (ingredient, amount) pair of a recipe payload.
type IngredientInput struct {
	IngredientID uuid.UUID
	Amount       int
}

// RecipeInput carries the validated fields of a create or update request.
// ImageURL is the already-stored image location; inline upload decoding
// happens in ImageService before the input reaches this service.
type RecipeInput struct {
	Name        string
	ImageURL    string
	Text        string
	CookingTime int
	Ingredients []IngredientInput
	TagIDs      []uuid.UUID
}

// RecipeFilter narrows List results.
type RecipeFilter struct {
	TagSlugs    []string
	AuthorID    *uuid.UUID
	FavoritedBy *uuid.UUID
	InCartOf    *uuid.UUID
	Limit       int
	Page        int
}

// RecipeService owns the recipe mutation transaction: create and update
// replace the tag set and the full ingredient-amount set atomically, so a
// concurrent reader never sees a recipe with a partial ingredient list.
type RecipeService struct {
	db *gorm.DB
}

func NewRecipeService(db *gorm.DB) *RecipeService {
	return &RecipeService{db: db}
}

func validateRecipeInput(input RecipeInput) error {
	if len(input.Ingredients) == 0 {
		return validationErrorf("recipe must have at least one ingredient")
	}
	seen := make(map[uuid.UUID]bool, len(input.Ingredients))
	for _, ing := range input.Ingredients {
		if ing.Amount <= 0 {
			return validationErrorf("ingredient amount must be positive")
		}
		if seen[ing.IngredientID] {
			return validationErrorf("duplicate ingredient %s", ing.IngredientID)
		}
		seen[ing.IngredientID] = true
	}
	if input.CookingTime <= 0 {
		return validationErrorf("cooking time must be positive")
	}
	seenTags := make(map[uuid.UUID]bool, len(input.TagIDs))
	for _, id := range input.TagIDs {
		if seenTags[id] {
			return validationErrorf("duplicate tag %s", id)
		}
		seenTags[id] = true
	}
	return nil
}

// Create validates the payload and writes the recipe together with its
// ingredient amounts and tag links in one transaction.
func (s *RecipeService) Create(ctx context.Context, authorID uuid.UUID, input RecipeInput) (*models.Recipe, error) {
	if err := validateRecipeInput(input); err != nil {
		return nil, err
	}

	recipe := &models.Recipe{
		AuthorID:    authorID,
		Name:        input.Name,
		ImageURL:    input.ImageURL,
		Text:        input.Text,
		CookingTime: input.CookingTime,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tags, err := resolveTags(tx, input.TagIDs)
		if err != nil {
			return err
		}
		if err := ensureIngredientsExist(tx, input.Ingredients); err != nil {
			return err
		}
		if err := tx.Create(recipe).Error; err != nil {
			return err
		}
		if err := insertAmounts(tx, recipe.ID, input.Ingredients); err != nil {
			return err
		}
		return replaceTags(tx, recipe, tags)
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, recipe.ID)
}

// Update replaces the recipe's scalar fields and swaps both association
// sets. The previous ingredient-amount rows and tag links are discarded
// and recreated inside the same transaction; a failure at any point rolls
// everything back.
func (s *RecipeService) Update(ctx context.Context, recipeID, actorID uuid.UUID, input RecipeInput) (*models.Recipe, error) {
	recipe, err := s.Get(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	if err := s.checkOwnership(ctx, recipe, actorID); err != nil {
		return nil, err
	}
	if err := validateRecipeInput(input); err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tags, err := resolveTags(tx, input.TagIDs)
		if err != nil {
			return err
		}
		if err := ensureIngredientsExist(tx, input.Ingredients); err != nil {
			return err
		}

		updates := map[string]interface{}{
			"name":         input.Name,
			"text":         input.Text,
			"cooking_time": input.CookingTime,
		}
		if input.ImageURL != "" {
			updates["image_url"] = input.ImageURL
		}
		if err := tx.Model(&models.Recipe{}).Where("id = ?", recipeID).Updates(updates).Error; err != nil {
			return err
		}

		if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.IngredientAmount{}).Error; err != nil {
			return err
		}
		if err := insertAmounts(tx, recipeID, input.Ingredients); err != nil {
			return err
		}
		return replaceTags(tx, recipe, tags)
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, recipeID)
}

// Delete removes the recipe and every dependent join row in one
// transaction.
func (s *RecipeService) Delete(ctx context.Context, recipeID, actorID uuid.UUID) error {
	recipe, err := s.Get(ctx, recipeID)
	if err != nil {
		return err
	}
	if err := s.checkOwnership(ctx, recipe, actorID); err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.IngredientAmount{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.Favorite{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.ShoppingCartEntry{}).Error; err != nil {
			return err
		}
		if err := tx.Model(recipe).Association("Tags").Clear(); err != nil {
			return err
		}
		return tx.Delete(&models.Recipe{}, "id = ?", recipeID).Error
	})
}

// Get retrieves a recipe with its author, tags and ingredient amounts.
func (s *RecipeService) Get(ctx context.Context, id uuid.UUID) (*models.Recipe, error) {
	var recipe models.Recipe
	err := s.db.WithContext(ctx).
		Preload("Author").
		Preload("Tags").
		Preload("Ingredients.Ingredient").
		First(&recipe, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("recipe %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return &recipe, nil
}

// List returns recipes matching the filter, newest first, plus the total
// count before pagination.
func (s *RecipeService) List(ctx context.Context, filter RecipeFilter) ([]models.Recipe, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Recipe{})

	if len(filter.TagSlugs) > 0 {
		// Subquery instead of a join so a recipe matching several of the
		// requested slugs still lists and counts once.
		query = query.Where(
			"recipes.id IN (?)",
			s.db.Table("recipe_tags").
				Select("recipe_tags.recipe_id").
				Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
				Where("tags.slug IN ?", filter.TagSlugs),
		)
	}
	if filter.AuthorID != nil {
		query = query.Where("recipes.author_id = ?", *filter.AuthorID)
	}
	if filter.FavoritedBy != nil {
		query = query.Where(
			"recipes.id IN (?)",
			s.db.Model(&models.Favorite{}).Select("recipe_id").Where("user_id = ?", *filter.FavoritedBy),
		)
	}
	if filter.InCartOf != nil {
		query = query.Where(
			"recipes.id IN (?)",
			s.db.Model(&models.ShoppingCartEntry{}).Select("recipe_id").Where("user_id = ?", *filter.InCartOf),
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
		if filter.Page > 1 {
			query = query.Offset((filter.Page - 1) * filter.Limit)
		}
	}

	var recipes []models.Recipe
	err := query.
		Preload("Author").
		Preload("Tags").
		Preload("Ingredients.Ingredient").
		Order("recipes.created_at DESC").
		Find(&recipes).Error
	if err != nil {
		return nil, 0, err
	}
	return recipes, total, nil
}

// checkOwnership allows the recipe's author and administrators.
func (s *RecipeService) checkOwnership(ctx context.Context, recipe *models.Recipe, actorID uuid.UUID) error {
	if recipe.AuthorID == actorID {
		return nil
	}
	var actor models.User
	if err := s.db.WithContext(ctx).First(&actor, "id = ?", actorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPermissionDenied
		}
		return err
	}
	if actor.IsAdmin {
		return nil
	}
	return ErrPermissionDenied
}

func resolveTags(tx *gorm.DB, tagIDs []uuid.UUID) ([]models.Tag, error) {
	if len(tagIDs) == 0 {
		return nil, nil
	}
	var tags []models.Tag
	if err := tx.Where("id IN ?", tagIDs).Find(&tags).Error; err != nil {
		return nil, err
	}
	if len(tags) != len(tagIDs) {
		return nil, fmt.Errorf("tag: %w", ErrNotFound)
	}
	return tags, nil
}

func ensureIngredientsExist(tx *gorm.DB, inputs []IngredientInput) error {
	ids := make([]uuid.UUID, len(inputs))
	for i, ing := range inputs {
		ids[i] = ing.IngredientID
	}
	var count int64
	if err := tx.Model(&models.Ingredient{}).Where("id IN ?", ids).Count(&count).Error; err != nil {
		return err
	}
	if count != int64(len(ids)) {
		return fmt.Errorf("ingredient: %w", ErrNotFound)
	}
	return nil
}

func replaceTags(tx *gorm.DB, recipe *models.Recipe, tags []models.Tag) error {
	assoc := tx.Model(recipe).Association("Tags")
	if len(tags) == 0 {
		return assoc.Clear()
	}
	return assoc.Replace(&tags)
}

func insertAmounts(tx *gorm.DB, recipeID uuid.UUID, inputs []IngredientInput) error {
	amounts := make([]models.IngredientAmount, len(inputs))
	for i, ing := range inputs {
		amounts[i] = models.IngredientAmount{
			RecipeID:     recipeID,
			IngredientID: ing.IngredientID,
			Amount:       ing.Amount,
		}
	}
	return tx.Create(&amounts).Error
}
