package usecase

import "errors"

var (
	// ErrUserNotFound indicates the requested user does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrRestaurantNotFound indicates the requested restaurant does not exist.
	ErrRestaurantNotFound = errors.New("restaurant not found")
	// ErrReviewNotFound indicates the requested review does not exist.
	ErrReviewNotFound = errors.New("review not found")

	// ErrInvalidCredentials indicates a failed username/password login.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrForbidden indicates the caller holds a valid identity but lacks
	// the role or ownership the operation demands.
	ErrForbidden = errors.New("insufficient permissions")

	// ErrUsernameTaken indicates the desired username is already registered.
	ErrUsernameTaken = errors.New("username already taken")
	// ErrPasswordTooShort indicates the password fails the minimum length rule.
	ErrPasswordTooShort = errors.New("password must be at least 6 characters")
	// ErrInvalidEmail indicates the email address is malformed.
	ErrInvalidEmail = errors.New("invalid email address")

	// ErrAlreadyLiked indicates the user already liked the review.
	ErrAlreadyLiked = errors.New("review already liked")
	// ErrNotLiked indicates the user never liked the review.
	ErrNotLiked = errors.New("review not liked")
	// ErrAlreadyFavorited indicates the restaurant is already among the user's favorites.
	ErrAlreadyFavorited = errors.New("restaurant already favorited")
	// ErrNotFavorited indicates the restaurant is not among the user's favorites.
	ErrNotFavorited = errors.New("restaurant not favorited")

	// ErrInvalidImage indicates the uploaded file is missing, oversized or
	// of an unsupported content type.
	ErrInvalidImage = errors.New("invalid image upload")
	// ErrImageNotFound indicates the requested stored image does not exist.
	ErrImageNotFound = errors.New("image not found")
	// ErrInvalidInput indicates a malformed request payload or
	// business-rule violation.
	ErrInvalidInput = errors.New("invalid input")
)
