package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/plateful/restaurant-review-api/internal/core/domain"
	"github.com/plateful/restaurant-review-api/internal/transport/http/middleware"
	"github.com/plateful/restaurant-review-api/internal/usecase"
)

const defaultListLimit = 10

// RestaurantHandler exposes restaurant listing, lifecycle and favorite endpoints.
type RestaurantHandler struct {
	restaurants *usecase.RestaurantService
	favorites   *usecase.FavoriteService
	users       *usecase.UserService
}

func NewRestaurantHandler(restaurants *usecase.RestaurantService, favorites *usecase.FavoriteService, users *usecase.UserService) *RestaurantHandler {
	return &RestaurantHandler{restaurants: restaurants, favorites: favorites, users: users}
}

// RegisterRoutes binds restaurant endpoints.
func (h *RestaurantHandler) RegisterRoutes(r *gin.RouterGroup) {
	reviewerOnly := middleware.RequireRole(domain.RoleReviewer, domain.RoleAdmin)

	r.GET("", h.List)
	r.POST("", reviewerOnly, h.Create)
	r.GET("/popular", h.Popular)
	r.GET("/latest", h.Latest)
	r.GET("/favorites", reviewerOnly, h.Favorites)
	r.GET("/:id", h.Get)
	r.PUT("/:id", reviewerOnly, h.Update)
	r.DELETE("/:id", reviewerOnly, h.Delete)
	r.GET("/:id/rating", h.Rating)
	r.POST("/:id/favorite", reviewerOnly, h.AddFavorite)
	r.DELETE("/:id/favorite", reviewerOnly, h.RemoveFavorite)
	r.GET("/:id/favorite/status", h.FavoriteStatus)
}

func (h *RestaurantHandler) List(c *gin.Context) {
	query := usecase.RestaurantQuery{
		Keyword:  c.Query("keyword"),
		Category: c.Query("category"),
		Sort:     c.Query("sort"),
	}

	var err error
	if query.Page, err = intQuery(c, "page", 0); err != nil {
		RespondWithError(c, http.StatusBadRequest, "invalid page")
		return
	}
	if query.Size, err = intQuery(c, "size", defaultListLimit); err != nil {
		RespondWithError(c, http.StatusBadRequest, "invalid size")
		return
	}
	if raw := c.Query("minRating"); raw != "" {
		if query.MinRating, err = strconv.ParseFloat(raw, 64); err != nil {
			RespondWithError(c, http.StatusBadRequest, "invalid minRating")
			return
		}
	}

	page, err := h.restaurants.List(c.Request.Context(), query, viewerID(c))
	if err != nil {
		RespondWithError(c, http.StatusInternalServerError, "failed to list restaurants")
		return
	}

	c.JSON(http.StatusOK, page)
}

func (h *RestaurantHandler) Create(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		RespondWithError(c, http.StatusUnauthorized, "authentication required")
		return
	}

	input, ok := restaurantPayload(c)
	if !ok {
		return
	}

	image, err := imageFromForm(c, "image")
	if err != nil {
		RespondWithError(c, http.StatusBadRequest, "invalid image part")
		return
	}

	view, err := h.restaurants.Create(c.Request.Context(), principal, input, image)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrInvalidInput, Status: http.StatusBadRequest, Message: "invalid restaurant payload"},
			{Err: usecase.ErrInvalidImage, Status: http.StatusBadRequest, Message: "invalid image"},
		}, http.StatusInternalServerError, "failed to create restaurant")
		return
	}

	c.JSON(http.StatusCreated, view)
}

func (h *RestaurantHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	view, err := h.restaurants.Get(c.Request.Context(), id, viewerID(c))
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrRestaurantNotFound, Status: http.StatusNotFound, Message: "restaurant not found"},
		}, http.StatusInternalServerError, "failed to load restaurant")
		return
	}

	c.JSON(http.StatusOK, view)
}

func (h *RestaurantHandler) Update(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		RespondWithError(c, http.StatusUnauthorized, "authentication required")
		return
	}

	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	input, ok := restaurantPayload(c)
	if !ok {
		return
	}

	image, err := imageFromForm(c, "image")
	if err != nil {
		RespondWithError(c, http.StatusBadRequest, "invalid image part")
		return
	}

	view, err := h.restaurants.Update(c.Request.Context(), principal, id, input, image)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrRestaurantNotFound, Status: http.StatusNotFound, Message: "restaurant not found"},
			{Err: usecase.ErrForbidden, Status: http.StatusForbidden, Message: "only the creator or an admin can modify this restaurant"},
			{Err: usecase.ErrInvalidInput, Status: http.StatusBadRequest, Message: "invalid restaurant payload"},
			{Err: usecase.ErrInvalidImage, Status: http.StatusBadRequest, Message: "invalid image"},
		}, http.StatusInternalServerError, "failed to update restaurant")
		return
	}

	c.JSON(http.StatusOK, view)
}

func (h *RestaurantHandler) Delete(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		RespondWithError(c, http.StatusUnauthorized, "authentication required")
		return
	}

	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.restaurants.Delete(c.Request.Context(), principal, id); err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrRestaurantNotFound, Status: http.StatusNotFound, Message: "restaurant not found"},
			{Err: usecase.ErrForbidden, Status: http.StatusForbidden, Message: "only the creator or an admin can delete this restaurant"},
		}, http.StatusInternalServerError, "failed to delete restaurant")
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *RestaurantHandler) Rating(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	rating, err := h.restaurants.Rating(c.Request.Context(), id)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrRestaurantNotFound, Status: http.StatusNotFound, Message: "restaurant not found"},
		}, http.StatusInternalServerError, "failed to load rating")
		return
	}

	c.JSON(http.StatusOK, RatingResponse{AverageRating: rating})
}

func (h *RestaurantHandler) Popular(c *gin.Context) {
	h.respondWithListing(c, h.restaurants.Popular)
}

func (h *RestaurantHandler) Latest(c *gin.Context) {
	h.respondWithListing(c, h.restaurants.Latest)
}

func (h *RestaurantHandler) Favorites(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		RespondWithError(c, http.StatusUnauthorized, "authentication required")
		return
	}

	views, err := h.users.FavoriteRestaurants(c.Request.Context(), principal.UserID)
	if err != nil {
		RespondWithError(c, http.StatusInternalServerError, "failed to load favorites")
		return
	}
	if views == nil {
		views = []usecase.RestaurantView{}
	}

	c.JSON(http.StatusOK, views)
}

func (h *RestaurantHandler) AddFavorite(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		RespondWithError(c, http.StatusUnauthorized, "authentication required")
		return
	}

	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.favorites.Add(c.Request.Context(), principal, id); err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrRestaurantNotFound, Status: http.StatusNotFound, Message: "restaurant not found"},
			{Err: usecase.ErrAlreadyFavorited, Status: http.StatusBadRequest, Message: "restaurant already in favorites"},
		}, http.StatusInternalServerError, "failed to add favorite")
		return
	}

	c.JSON(http.StatusCreated, MessageResponse{Message: "added to favorites"})
}

func (h *RestaurantHandler) RemoveFavorite(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		RespondWithError(c, http.StatusUnauthorized, "authentication required")
		return
	}

	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.favorites.Remove(c.Request.Context(), principal, id); err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrRestaurantNotFound, Status: http.StatusNotFound, Message: "restaurant not found"},
			{Err: usecase.ErrNotFavorited, Status: http.StatusBadRequest, Message: "restaurant is not in favorites"},
		}, http.StatusInternalServerError, "failed to remove favorite")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "removed from favorites"})
}

func (h *RestaurantHandler) FavoriteStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		// Anonymous viewers never have favorites.
		c.JSON(http.StatusOK, FavoriteStatusResponse{Favorited: false})
		return
	}

	favorited, err := h.favorites.Status(c.Request.Context(), principal, id)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrRestaurantNotFound, Status: http.StatusNotFound, Message: "restaurant not found"},
		}, http.StatusInternalServerError, "failed to load favorite status")
		return
	}

	c.JSON(http.StatusOK, FavoriteStatusResponse{Favorited: favorited})
}

func (h *RestaurantHandler) respondWithListing(c *gin.Context, list func(ctx context.Context, limit int, viewerID *int64) ([]usecase.RestaurantView, error)) {
	limit, err := intQuery(c, "limit", defaultListLimit)
	if err != nil {
		RespondWithError(c, http.StatusBadRequest, "invalid limit")
		return
	}

	views, err := list(c.Request.Context(), limit, viewerID(c))
	if err != nil {
		RespondWithError(c, http.StatusInternalServerError, "failed to list restaurants")
		return
	}
	if views == nil {
		views = []usecase.RestaurantView{}
	}

	c.JSON(http.StatusOK, views)
}

// restaurantPayload decodes the JSON "restaurant" part of a multipart
// request. A false return means an error response was already written.
func restaurantPayload(c *gin.Context) (usecase.RestaurantInput, bool) {
	raw := c.PostForm("restaurant")
	if raw == "" {
		RespondWithError(c, http.StatusBadRequest, "missing restaurant part")
		return usecase.RestaurantInput{}, false
	}

	var input usecase.RestaurantInput
	if err := json.Unmarshal([]byte(raw), &input); err != nil {
		RespondWithError(c, http.StatusBadRequest, "invalid restaurant payload")
		return usecase.RestaurantInput{}, false
	}

	return input, true
}

func intQuery(c *gin.Context, name string, fallback int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}
