package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/plateful/restaurant-review-api/internal/core/domain"
	"github.com/plateful/restaurant-review-api/internal/transport/http/middleware"
	"github.com/plateful/restaurant-review-api/internal/usecase"
)

// ReviewHandler exposes review lifecycle and like endpoints.
type ReviewHandler struct {
	reviews *usecase.ReviewService
}

func NewReviewHandler(reviews *usecase.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviews: reviews}
}

// RegisterRoutes binds review endpoints. The create route takes the
// target restaurant ID as its path parameter; every other parameterised
// route addresses a review.
func (h *ReviewHandler) RegisterRoutes(r *gin.RouterGroup) {
	reviewerOnly := middleware.RequireRole(domain.RoleReviewer, domain.RoleAdmin)

	r.POST("/:id", reviewerOnly, h.Create)
	r.GET("/restaurant/:restaurantId/page", h.Page)
	r.PUT("/:id", reviewerOnly, h.Update)
	r.DELETE("/:id", reviewerOnly, h.Delete)
	r.POST("/:id/like", reviewerOnly, h.Like)
	r.DELETE("/:id/like", reviewerOnly, h.Unlike)
	r.GET("/:id/like-count", h.LikeCount)
}

func (h *ReviewHandler) Create(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		RespondWithError(c, http.StatusUnauthorized, "authentication required")
		return
	}

	restaurantID, ok := pathID(c, "id")
	if !ok {
		return
	}

	input, ok := reviewPayload(c)
	if !ok {
		return
	}

	image, err := imageFromForm(c, "image")
	if err != nil {
		RespondWithError(c, http.StatusBadRequest, "invalid image part")
		return
	}

	view, err := h.reviews.Create(c.Request.Context(), principal, restaurantID, input, image)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrRestaurantNotFound, Status: http.StatusNotFound, Message: "restaurant not found"},
			{Err: usecase.ErrInvalidInput, Status: http.StatusBadRequest, Message: "invalid review payload"},
			{Err: usecase.ErrInvalidImage, Status: http.StatusBadRequest, Message: "invalid image"},
		}, http.StatusInternalServerError, "failed to create review")
		return
	}

	c.JSON(http.StatusCreated, view)
}

func (h *ReviewHandler) Page(c *gin.Context) {
	restaurantID, ok := pathID(c, "restaurantId")
	if !ok {
		return
	}

	page, err := intQuery(c, "page", 0)
	if err != nil {
		RespondWithError(c, http.StatusBadRequest, "invalid page")
		return
	}
	size, err := intQuery(c, "size", defaultListLimit)
	if err != nil {
		RespondWithError(c, http.StatusBadRequest, "invalid size")
		return
	}

	result, err := h.reviews.Page(c.Request.Context(), restaurantID, page, size, c.Query("sort"), viewerID(c))
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrRestaurantNotFound, Status: http.StatusNotFound, Message: "restaurant not found"},
		}, http.StatusInternalServerError, "failed to list reviews")
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *ReviewHandler) Update(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		RespondWithError(c, http.StatusUnauthorized, "authentication required")
		return
	}

	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	input, ok := reviewPayload(c)
	if !ok {
		return
	}

	image, err := imageFromForm(c, "image")
	if err != nil {
		RespondWithError(c, http.StatusBadRequest, "invalid image part")
		return
	}

	view, err := h.reviews.Update(c.Request.Context(), principal, id, input, image)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrReviewNotFound, Status: http.StatusNotFound, Message: "review not found"},
			{Err: usecase.ErrForbidden, Status: http.StatusForbidden, Message: "only the author can modify this review"},
			{Err: usecase.ErrInvalidInput, Status: http.StatusBadRequest, Message: "invalid review payload"},
			{Err: usecase.ErrInvalidImage, Status: http.StatusBadRequest, Message: "invalid image"},
		}, http.StatusInternalServerError, "failed to update review")
		return
	}

	c.JSON(http.StatusOK, view)
}

func (h *ReviewHandler) Delete(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		RespondWithError(c, http.StatusUnauthorized, "authentication required")
		return
	}

	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.reviews.Delete(c.Request.Context(), principal, id); err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrReviewNotFound, Status: http.StatusNotFound, Message: "review not found"},
			{Err: usecase.ErrForbidden, Status: http.StatusForbidden, Message: "only the author or an admin can delete this review"},
		}, http.StatusInternalServerError, "failed to delete review")
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *ReviewHandler) Like(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		RespondWithError(c, http.StatusUnauthorized, "authentication required")
		return
	}

	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.reviews.Like(c.Request.Context(), principal, id); err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrReviewNotFound, Status: http.StatusNotFound, Message: "review not found"},
			{Err: usecase.ErrAlreadyLiked, Status: http.StatusBadRequest, Message: "review already liked"},
		}, http.StatusInternalServerError, "failed to like review")
		return
	}

	c.JSON(http.StatusCreated, MessageResponse{Message: "review liked"})
}

func (h *ReviewHandler) Unlike(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		RespondWithError(c, http.StatusUnauthorized, "authentication required")
		return
	}

	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.reviews.Unlike(c.Request.Context(), principal, id); err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrReviewNotFound, Status: http.StatusNotFound, Message: "review not found"},
			{Err: usecase.ErrNotLiked, Status: http.StatusBadRequest, Message: "review is not liked"},
		}, http.StatusInternalServerError, "failed to unlike review")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "like removed"})
}

func (h *ReviewHandler) LikeCount(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	count, err := h.reviews.LikeCount(c.Request.Context(), id)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrReviewNotFound, Status: http.StatusNotFound, Message: "review not found"},
		}, http.StatusInternalServerError, "failed to load like count")
		return
	}

	c.JSON(http.StatusOK, LikeCountResponse{LikeCount: count})
}

// reviewPayload decodes the JSON "review" part of a multipart request.
// A false return means an error response was already written.
func reviewPayload(c *gin.Context) (usecase.ReviewInput, bool) {
	raw := c.PostForm("review")
	if raw == "" {
		RespondWithError(c, http.StatusBadRequest, "missing review part")
		return usecase.ReviewInput{}, false
	}

	var input usecase.ReviewInput
	if err := json.Unmarshal([]byte(raw), &input); err != nil {
		RespondWithError(c, http.StatusBadRequest, "invalid review payload")
		return usecase.ReviewInput{}, false
	}

	return input, true
}
