package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/forkful/backend/internal/middleware"
	"github.com/forkful/backend/internal/models"
	"github.com/forkful/backend/internal/service"
)

type RecipeHandler struct {
	recipeService       *service.RecipeService
	edgeService         *service.EdgeService
	shoppingListService *service.ShoppingListService
	imageService        *service.ImageService
	authService         *service.AuthService
	rateLimiter         *middleware.RateLimiter
}

func NewRecipeHandler(
	recipeService *service.RecipeService,
	edgeService *service.EdgeService,
	shoppingListService *service.ShoppingListService,
	imageService *service.ImageService,
	authService *service.AuthService,
	rateLimiter *middleware.RateLimiter,
) *RecipeHandler {
	return &RecipeHandler{
		recipeService:       recipeService,
		edgeService:         edgeService,
		shoppingListService: shoppingListService,
		imageService:        imageService,
		authService:         authService,
		rateLimiter:         rateLimiter,
	}
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := middleware.AuthMiddleware(h.authService)
	optional := middleware.OptionalAuthMiddleware(h.authService)

	recipes := router.Group("/recipes")
	{
		recipes.GET("", optional, h.ListRecipes)
		recipes.GET("/download_shopping_cart", auth, h.DownloadShoppingCart)
		recipes.GET("/:id", optional, h.GetRecipe)

		if h.rateLimiter != nil {
			recipes.POST("", auth, h.rateLimiter.RateLimitMiddleware(), h.CreateRecipe)
		} else {
			recipes.POST("", auth, h.CreateRecipe)
		}
		recipes.PATCH("/:id", auth, h.UpdateRecipe)
		recipes.DELETE("/:id", auth, h.DeleteRecipe)

		recipes.POST("/:id/favorite", auth, h.FavoriteRecipe)
		recipes.DELETE("/:id/favorite", auth, h.UnfavoriteRecipe)
		recipes.POST("/:id/shopping_cart", auth, h.AddToShoppingCart)
		recipes.DELETE("/:id/shopping_cart", auth, h.RemoveFromShoppingCart)
	}
}

func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	filter := service.RecipeFilter{
		TagSlugs: c.QueryArray("tags"),
	}
	filter.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "0"))
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))

	if author := c.Query("author"); author != "" {
		authorID, err := uuid.Parse(author)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid author id"})
			return
		}
		filter.AuthorID = &authorID
	}

	viewerID, authenticated := currentUserID(c)
	if authenticated {
		if c.Query("is_favorited") == "1" || c.Query("is_favorited") == "true" {
			filter.FavoritedBy = &viewerID
		}
		if c.Query("is_in_shopping_cart") == "1" || c.Query("is_in_shopping_cart") == "true" {
			filter.InCartOf = &viewerID
		}
	}

	recipes, total, err := h.recipeService.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	results := make([]RecipeResponse, len(recipes))
	for i := range recipes {
		resp, err := h.recipeResponse(c, &recipes[i])
		if err != nil {
			respondError(c, err)
			return
		}
		results[i] = resp
	}

	c.JSON(http.StatusOK, gin.H{
		"count":   total,
		"recipes": results,
	})
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return
	}

	recipe, err := h.recipeService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	resp, err := h.recipeResponse(c, recipe)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	var req RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input, err := h.recipeInput(c, req)
	if err != nil {
		respondError(c, err)
		return
	}

	recipe, err := h.recipeService.Create(c.Request.Context(), userID, input)
	if err != nil {
		respondError(c, err)
		return
	}

	resp, err := h.recipeResponse(c, recipe)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"recipe": resp})
}

func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return
	}
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	var req RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input, err := h.recipeInput(c, req)
	if err != nil {
		respondError(c, err)
		return
	}

	recipe, err := h.recipeService.Update(c.Request.Context(), id, userID, input)
	if err != nil {
		respondError(c, err)
		return
	}

	resp, err := h.recipeResponse(c, recipe)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipe": resp})
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return
	}
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	if err := h.recipeService.Delete(c.Request.Context(), id, userID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) FavoriteRecipe(c *gin.Context) {
	h.addEdge(c, service.EdgeFavorite)
}

func (h *RecipeHandler) UnfavoriteRecipe(c *gin.Context) {
	h.removeEdge(c, service.EdgeFavorite)
}

func (h *RecipeHandler) AddToShoppingCart(c *gin.Context) {
	h.addEdge(c, service.EdgeCart)
}

func (h *RecipeHandler) RemoveFromShoppingCart(c *gin.Context) {
	h.removeEdge(c, service.EdgeCart)
}

// DownloadShoppingCart aggregates the acting user's cart into the merged
// shopping list and serves it as a PDF attachment.
func (h *RecipeHandler) DownloadShoppingCart(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	doc, err := h.shoppingListService.BuildDocument(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+service.ShoppingListFilename+`"`)
	c.Data(http.StatusOK, "application/pdf", doc)
}

func (h *RecipeHandler) addEdge(c *gin.Context, kind service.EdgeKind) {
	recipeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return
	}
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	if err := h.edgeService.Add(c.Request.Context(), kind, userID, recipeID); err != nil {
		respondError(c, err)
		return
	}

	recipe, err := h.recipeService.Get(c.Request.Context(), recipeID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, recipeInfoResponse(recipe))
}

func (h *RecipeHandler) removeEdge(c *gin.Context, kind service.EdgeKind) {
	recipeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return
	}
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	if err := h.edgeService.Remove(c.Request.Context(), kind, userID, recipeID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// recipeInput turns the request payload into a service input, decoding
// and storing the inline image when one is supplied.
func (h *RecipeHandler) recipeInput(c *gin.Context, req RecipeRequest) (service.RecipeInput, error) {
	input := service.RecipeInput{
		Name:        req.Name,
		Text:        req.Text,
		CookingTime: req.CookingTime,
		TagIDs:      req.Tags,
	}
	for _, ing := range req.Ingredients {
		input.Ingredients = append(input.Ingredients, service.IngredientInput{
			IngredientID: ing.ID,
			Amount:       ing.Amount,
		})
	}

	if req.Image != "" {
		url, err := h.imageService.SaveDataURI(c.Request.Context(), req.Image)
		if err != nil {
			return service.RecipeInput{}, err
		}
		input.ImageURL = url
	}
	return input, nil
}

func (h *RecipeHandler) recipeResponse(c *gin.Context, recipe *models.Recipe) (RecipeResponse, error) {
	viewerID, authenticated := currentUserID(c)

	isFavorited := false
	isInCart := false
	isSubscribed := false
	if authenticated {
		var err error
		if isFavorited, err = h.edgeService.Exists(c.Request.Context(), service.EdgeFavorite, viewerID, recipe.ID); err != nil {
			return RecipeResponse{}, err
		}
		if isInCart, err = h.edgeService.Exists(c.Request.Context(), service.EdgeCart, viewerID, recipe.ID); err != nil {
			return RecipeResponse{}, err
		}
		if viewerID != recipe.AuthorID {
			if isSubscribed, err = h.edgeService.Exists(c.Request.Context(), service.EdgeFollow, viewerID, recipe.AuthorID); err != nil {
				return RecipeResponse{}, err
			}
		}
	}

	ingredients := make([]RecipeIngredientResponse, len(recipe.Ingredients))
	for i, ia := range recipe.Ingredients {
		ingredients[i] = RecipeIngredientResponse{
			ID:              ia.IngredientID,
			Name:            ia.Ingredient.Name,
			MeasurementUnit: ia.Ingredient.MeasurementUnit,
			Amount:          ia.Amount,
		}
	}

	tags := recipe.Tags
	if tags == nil {
		tags = []models.Tag{}
	}

	return RecipeResponse{
		ID:               recipe.ID,
		Author:           profileResponse(&recipe.Author, isSubscribed),
		Name:             recipe.Name,
		Image:            recipe.ImageURL,
		Text:             recipe.Text,
		CookingTime:      recipe.CookingTime,
		Tags:             tags,
		Ingredients:      ingredients,
		IsFavorited:      isFavorited,
		IsInShoppingCart: isInCart,
		CreatedAt:        recipe.CreatedAt,
	}, nil
}
