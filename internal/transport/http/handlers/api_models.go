package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/plateful/restaurant-review-api/internal/infra/logger"
)

// ErrorResponse is the uniform error payload: a short error code, a
// human-readable message, and the request ID for correlation.
type ErrorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// NewErrorResponse builds the error body for a status code. The short
// error code is derived from the status; the message carries the
// human-readable detail.
func NewErrorResponse(c *gin.Context, status int, message string) ErrorResponse {
	return ErrorResponse{
		Error:     errorCode(status),
		Message:   message,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		RequestID: requestIDFrom(c.Request.Context()),
	}
}

func errorCode(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "Validation failed"
	case http.StatusUnauthorized:
		return "Unauthorized"
	case http.StatusForbidden:
		return "Forbidden"
	case http.StatusNotFound:
		return "Not found"
	case http.StatusTooManyRequests:
		return "Too many requests"
	default:
		return "Internal error"
	}
}

func requestIDFrom(ctx context.Context) string {
	if id, ok := ctx.Value(logger.RequestIDKey{}).(string); ok {
		return id
	}
	return ""
}

// MessageResponse represents a simple message payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// RegisterRequest defines the account registration payload.
type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Email    string `json:"email" binding:"required"`
}

// LoginRequest defines the payload for the login endpoint.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse carries the bearer token issued for a successful login.
type LoginResponse struct {
	Token string `json:"token"`
}

// UpdateProfileRequest captures the mutable profile fields.
type UpdateProfileRequest struct {
	Email          string  `json:"email"`
	ProfilePicture *string `json:"profilePicture,omitempty"`
}

// ChangePasswordRequest captures a password change payload.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword" binding:"required"`
}

// FavoriteStatusResponse reports whether the caller bookmarked a restaurant.
type FavoriteStatusResponse struct {
	Favorited bool `json:"favorited"`
}

// RatingResponse carries a restaurant's current average rating.
type RatingResponse struct {
	AverageRating float64 `json:"averageRating"`
}

// LikeCountResponse carries the number of likes on a review.
type LikeCountResponse struct {
	LikeCount int64 `json:"likeCount"`
}

// ImageURLResponse carries the public URL of an uploaded image.
type ImageURLResponse struct {
	URL string `json:"url"`
}
