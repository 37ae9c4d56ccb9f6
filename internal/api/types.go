package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/forkful/backend/internal/models"
)

// RegisterRequest represents the request body for user registration.
type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Username  string `json:"username" binding:"required"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Password  string `json:"password" binding:"required,min=8"`
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// IngredientAmountRequest is one (ingredient id, amount) pair of a
// recipe payload.
type IngredientAmountRequest struct {
	ID     uuid.UUID `json:"id" binding:"required"`
	Amount int       `json:"amount"`
}

// RecipeRequest represents the request body for creating or updating a
// recipe. Image is an inline base64 data URI; amounts and cooking time
// are range-checked by the recipe service.
type RecipeRequest struct {
	Name        string                    `json:"name" binding:"required"`
	Image       string                    `json:"image"`
	Text        string                    `json:"text"`
	CookingTime int                       `json:"cooking_time"`
	Ingredients []IngredientAmountRequest `json:"ingredients"`
	Tags        []uuid.UUID               `json:"tags"`
}

// ProfileResponse is the public view of a user.
type ProfileResponse struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	IsSubscribed bool      `json:"is_subscribed"`
}

// RecipeIngredientResponse is one ingredient line of a recipe view.
type RecipeIngredientResponse struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	MeasurementUnit string    `json:"measurement_unit"`
	Amount          int       `json:"amount"`
}

// RecipeResponse is the full recipe view.
type RecipeResponse struct {
	ID               uuid.UUID                  `json:"id"`
	Author           ProfileResponse            `json:"author"`
	Name             string                     `json:"name"`
	Image            string                     `json:"image"`
	Text             string                     `json:"text"`
	CookingTime      int                        `json:"cooking_time"`
	Tags             []models.Tag               `json:"tags"`
	Ingredients      []RecipeIngredientResponse `json:"ingredients"`
	IsFavorited      bool                       `json:"is_favorited"`
	IsInShoppingCart bool                       `json:"is_in_shopping_cart"`
	CreatedAt        time.Time                  `json:"created_at"`
}

// RecipeInfoResponse is the compact recipe view returned by the edge
// endpoints.
type RecipeInfoResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Image       string    `json:"image"`
	CookingTime int       `json:"cooking_time"`
}

// SubscriptionResponse is an author profile together with recipe
// previews and the recipe count.
type SubscriptionResponse struct {
	ProfileResponse
	Recipes      []RecipeInfoResponse `json:"recipes"`
	RecipesCount int64                `json:"recipes_count"`
}

func profileResponse(user *models.User, isSubscribed bool) ProfileResponse {
	return ProfileResponse{
		ID:           user.ID,
		Email:        user.Email,
		Username:     user.Username,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		IsSubscribed: isSubscribed,
	}
}

func recipeInfoResponse(recipe *models.Recipe) RecipeInfoResponse {
	return RecipeInfoResponse{
		ID:          recipe.ID,
		Name:        recipe.Name,
		Image:       recipe.ImageURL,
		CookingTime: recipe.CookingTime,
	}
}
