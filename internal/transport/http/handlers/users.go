package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/plateful/restaurant-review-api/internal/core/domain"
	"github.com/plateful/restaurant-review-api/internal/transport/http/middleware"
	"github.com/plateful/restaurant-review-api/internal/usecase"
)

// UserHandler exposes registration, login and profile endpoints.
type UserHandler struct {
	users *usecase.UserService
}

func NewUserHandler(users *usecase.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// RegisterRoutes binds user endpoints. The guards are prepended to the
// register and login routes so the rate limiter runs before the handler.
func (h *UserHandler) RegisterRoutes(r *gin.RouterGroup, registerGuards, loginGuards []gin.HandlerFunc) {
	reviewerOnly := middleware.RequireRole(domain.RoleReviewer, domain.RoleAdmin)

	r.POST("/register", append(append([]gin.HandlerFunc{}, registerGuards...), h.Register)...)
	r.POST("/login", append(append([]gin.HandlerFunc{}, loginGuards...), h.Login)...)
	r.GET("/me", h.Me)
	r.GET("/:id", reviewerOnly, h.Profile)
	r.PUT("/:id", reviewerOnly, h.UpdateProfile)
	r.PUT("/:id/password", reviewerOnly, h.ChangePassword)
	r.GET("/:id/favorites", reviewerOnly, h.FavoriteRestaurants)
	r.GET("/:id/reviews", reviewerOnly, h.Reviews)
	r.GET("/:id/restaurants", reviewerOnly, h.CreatedRestaurants)
}

func (h *UserHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondWithError(c, http.StatusBadRequest, "invalid registration payload")
		return
	}

	view, err := h.users.Register(c.Request.Context(), usecase.RegisterInput{
		Username: req.Username,
		Password: req.Password,
		Email:    req.Email,
	})
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrUsernameTaken, Status: http.StatusBadRequest, Message: "username already taken"},
			{Err: usecase.ErrPasswordTooShort, Status: http.StatusBadRequest, Message: "password must be at least 6 characters"},
			{Err: usecase.ErrInvalidEmail, Status: http.StatusBadRequest, Message: "invalid email address"},
			{Err: usecase.ErrInvalidInput, Status: http.StatusBadRequest, Message: "invalid registration payload"},
		}, http.StatusInternalServerError, "failed to register user")
		return
	}

	c.JSON(http.StatusCreated, view)
}

func (h *UserHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondWithError(c, http.StatusBadRequest, "invalid login payload")
		return
	}

	token, err := h.users.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrInvalidCredentials, Status: http.StatusUnauthorized, Message: "invalid username or password"},
		}, http.StatusInternalServerError, "failed to log in")
		return
	}

	c.JSON(http.StatusOK, LoginResponse{Token: token})
}

func (h *UserHandler) Me(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		RespondWithError(c, http.StatusUnauthorized, "authentication required")
		return
	}

	view, err := h.users.Profile(c.Request.Context(), principal.UserID)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrUserNotFound, Status: http.StatusNotFound, Message: "user not found"},
		}, http.StatusInternalServerError, "failed to load profile")
		return
	}

	c.JSON(http.StatusOK, view)
}

func (h *UserHandler) Profile(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	view, err := h.users.Profile(c.Request.Context(), id)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrUserNotFound, Status: http.StatusNotFound, Message: "user not found"},
		}, http.StatusInternalServerError, "failed to load profile")
		return
	}

	c.JSON(http.StatusOK, view)
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		RespondWithError(c, http.StatusUnauthorized, "authentication required")
		return
	}

	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondWithError(c, http.StatusBadRequest, "invalid profile payload")
		return
	}

	view, err := h.users.UpdateProfile(c.Request.Context(), principal, id, usecase.UpdateProfileInput{
		Email:          req.Email,
		ProfilePicture: req.ProfilePicture,
	})
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrForbidden, Status: http.StatusForbidden, Message: "cannot modify another user's profile"},
			{Err: usecase.ErrUserNotFound, Status: http.StatusNotFound, Message: "user not found"},
			{Err: usecase.ErrInvalidEmail, Status: http.StatusBadRequest, Message: "invalid email address"},
		}, http.StatusInternalServerError, "failed to update profile")
		return
	}

	c.JSON(http.StatusOK, view)
}

func (h *UserHandler) ChangePassword(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		RespondWithError(c, http.StatusUnauthorized, "authentication required")
		return
	}

	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondWithError(c, http.StatusBadRequest, "invalid password payload")
		return
	}

	err := h.users.ChangePassword(c.Request.Context(), principal, id, req.CurrentPassword, req.NewPassword)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrForbidden, Status: http.StatusForbidden, Message: "cannot change another user's password"},
			{Err: usecase.ErrUserNotFound, Status: http.StatusNotFound, Message: "user not found"},
			{Err: usecase.ErrPasswordTooShort, Status: http.StatusBadRequest, Message: "password must be at least 6 characters"},
			{Err: usecase.ErrInvalidCredentials, Status: http.StatusBadRequest, Message: "current password is incorrect"},
		}, http.StatusInternalServerError, "failed to change password")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "password updated"})
}

func (h *UserHandler) FavoriteRestaurants(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	views, err := h.users.FavoriteRestaurants(c.Request.Context(), id)
	if err != nil {
		RespondWithError(c, http.StatusInternalServerError, "failed to load favorite restaurants")
		return
	}
	if views == nil {
		views = []usecase.RestaurantView{}
	}

	c.JSON(http.StatusOK, views)
}

func (h *UserHandler) Reviews(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	views, err := h.users.Reviews(c.Request.Context(), id)
	if err != nil {
		RespondWithError(c, http.StatusInternalServerError, "failed to load reviews")
		return
	}
	if views == nil {
		views = []usecase.ReviewView{}
	}

	c.JSON(http.StatusOK, views)
}

func (h *UserHandler) CreatedRestaurants(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	views, err := h.users.CreatedRestaurants(c.Request.Context(), id)
	if err != nil {
		RespondWithError(c, http.StatusInternalServerError, "failed to load created restaurants")
		return
	}
	if views == nil {
		views = []usecase.RestaurantView{}
	}

	c.JSON(http.StatusOK, views)
}
