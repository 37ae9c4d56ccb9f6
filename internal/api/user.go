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

type UserHandler struct {
	userService *service.UserService
	edgeService *service.EdgeService
	authService *service.AuthService
}

func NewUserHandler(userService *service.UserService, edgeService *service.EdgeService, authService *service.AuthService) *UserHandler {
	return &UserHandler{
		userService: userService,
		edgeService: edgeService,
		authService: authService,
	}
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	users := router.Group("/users")
	{
		users.GET("", middleware.OptionalAuthMiddleware(h.authService), h.ListUsers)
		users.GET("/me", middleware.AuthMiddleware(h.authService), h.Me)
		users.GET("/subscriptions", middleware.AuthMiddleware(h.authService), h.Subscriptions)
		users.GET("/:id", middleware.OptionalAuthMiddleware(h.authService), h.GetUser)
		users.POST("/:id/subscribe", middleware.AuthMiddleware(h.authService), h.Subscribe)
		users.DELETE("/:id/subscribe", middleware.AuthMiddleware(h.authService), h.Unsubscribe)
	}
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))

	users, err := h.userService.List(c.Request.Context(), limit, page)
	if err != nil {
		respondError(c, err)
		return
	}

	viewerID, _ := currentUserID(c)
	profiles := make([]ProfileResponse, len(users))
	for i := range users {
		subscribed, err := h.isSubscribed(c, viewerID, users[i].ID)
		if err != nil {
			respondError(c, err)
			return
		}
		profiles[i] = profileResponse(&users[i], subscribed)
	}

	c.JSON(http.StatusOK, gin.H{"users": profiles})
}

func (h *UserHandler) GetUser(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	user, err := h.userService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	viewerID, _ := currentUserID(c)
	subscribed, err := h.isSubscribed(c, viewerID, user.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, profileResponse(user, subscribed))
}

func (h *UserHandler) Me(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	user, err := h.userService.Get(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, profileResponse(user, false))
}

// Subscriptions lists the authors the acting user follows, each with
// recipe previews and a recipe count.
func (h *UserHandler) Subscriptions(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	authors, err := h.userService.Subscriptions(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	previewLimit, _ := strconv.Atoi(c.DefaultQuery("recipes_limit", "0"))
	results := make([]SubscriptionResponse, len(authors))
	for i := range authors {
		resp, err := h.subscriptionResponse(c, &authors[i], userID, previewLimit)
		if err != nil {
			respondError(c, err)
			return
		}
		results[i] = resp
	}

	c.JSON(http.StatusOK, gin.H{"subscriptions": results})
}

func (h *UserHandler) Subscribe(c *gin.Context) {
	authorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	if err := h.edgeService.Add(c.Request.Context(), service.EdgeFollow, userID, authorID); err != nil {
		respondError(c, err)
		return
	}

	author, err := h.userService.Get(c.Request.Context(), authorID)
	if err != nil {
		respondError(c, err)
		return
	}
	resp, err := h.subscriptionResponse(c, author, userID, 0)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *UserHandler) Unsubscribe(c *gin.Context) {
	authorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	if err := h.edgeService.Remove(c.Request.Context(), service.EdgeFollow, userID, authorID); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *UserHandler) subscriptionResponse(c *gin.Context, author *models.User, viewerID uuid.UUID, previewLimit int) (SubscriptionResponse, error) {
	subscribed, err := h.isSubscribed(c, viewerID, author.ID)
	if err != nil {
		return SubscriptionResponse{}, err
	}

	recipes, err := h.userService.RecipePreviews(c.Request.Context(), author.ID, previewLimit)
	if err != nil {
		return SubscriptionResponse{}, err
	}
	previews := make([]RecipeInfoResponse, len(recipes))
	for i := range recipes {
		previews[i] = recipeInfoResponse(&recipes[i])
	}

	count, err := h.userService.RecipeCount(c.Request.Context(), author.ID)
	if err != nil {
		return SubscriptionResponse{}, err
	}

	return SubscriptionResponse{
		ProfileResponse: profileResponse(author, subscribed),
		Recipes:         previews,
		RecipesCount:    count,
	}, nil
}

func (h *UserHandler) isSubscribed(c *gin.Context, viewerID, authorID uuid.UUID) (bool, error) {
	if viewerID == uuid.Nil || viewerID == authorID {
		return false, nil
	}
	return h.edgeService.Exists(c.Request.Context(), service.EdgeFollow, viewerID, authorID)
}
