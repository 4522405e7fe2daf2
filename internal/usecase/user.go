package usecase

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/plateful/restaurant-review-api/internal/core/domain"
	"github.com/plateful/restaurant-review-api/internal/core/port"
	"github.com/plateful/restaurant-review-api/internal/infra/logger"
	"github.com/plateful/restaurant-review-api/internal/infra/security"
	"github.com/plateful/restaurant-review-api/internal/repository"
)

const minPasswordLength = 6

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// RegisterInput captures the payload for user registration.
type RegisterInput struct {
	Username string
	Password string
	Email    string
}

// UpdateProfileInput captures the mutable profile fields.
type UpdateProfileInput struct {
	Email          string
	ProfilePicture *string
}

// UserView is the one-directional read model of a user. The password
// hash never leaves the service layer.
type UserView struct {
	ID             int64     `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	Role           string    `json:"role"`
	ProfilePicture *string   `json:"profilePicture,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

// NewUserView assembles the read model of a user.
func NewUserView(user domain.User) UserView {
	return UserView{
		ID:             user.ID,
		Username:       user.Username,
		Email:          user.Email,
		Role:           string(user.Role),
		ProfilePicture: user.ProfilePicture,
		CreatedAt:      user.CreatedAt,
	}
}

// UserService handles registration, login and profile operations.
type UserService struct {
	users       port.UserRepository
	reviews     port.ReviewRepository
	restaurants port.RestaurantRepository
	favorites   port.FavoriteRepository
	tokens      *security.TokenService
	events      port.EventPublisher
	logger      *zap.Logger
	now         func() time.Time
}

// NewUserService constructs UserService.
func NewUserService(
	users port.UserRepository,
	reviews port.ReviewRepository,
	restaurants port.RestaurantRepository,
	favorites port.FavoriteRepository,
	tokens *security.TokenService,
	events port.EventPublisher,
	log *zap.Logger,
) *UserService {
	if log == nil {
		log = zap.NewNop()
	}
	return &UserService{
		users:       users,
		reviews:     reviews,
		restaurants: restaurants,
		favorites:   favorites,
		tokens:      tokens,
		events:      events,
		logger:      log,
		now:         time.Now,
	}
}

// Register validates the input and persists a new user with the
// reviewer role.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (UserView, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" {
		return UserView{}, fmt.Errorf("%w: username is required", ErrInvalidInput)
	}
	if len(input.Password) < minPasswordLength {
		return UserView{}, ErrPasswordTooShort
	}
	email := strings.TrimSpace(input.Email)
	if !emailPattern.MatchString(email) {
		return UserView{}, ErrInvalidEmail
	}

	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return UserView{}, ErrUsernameTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return UserView{}, fmt.Errorf("lookup username: %w", err)
	}

	hash, err := security.HashPassword(input.Password)
	if err != nil {
		return UserView{}, fmt.Errorf("hash password: %w", err)
	}

	user := domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleReviewer,
		CreatedAt:    s.now().UTC(),
	}

	id, err := s.users.Create(ctx, user)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return UserView{}, ErrUsernameTaken
		}
		return UserView{}, fmt.Errorf("create user: %w", err)
	}
	user.ID = id

	if s.events != nil {
		event := domain.UserRegisteredEvent{
			UserID:       user.ID,
			Username:     user.Username,
			Email:        user.Email,
			RegisteredAt: user.CreatedAt,
		}
		if err := s.events.PublishUserRegistered(ctx, event); err != nil {
			logger.WithContext(ctx).Warn("publish user registered event failed",
				zap.Int64("user_id", user.ID), zap.Error(err))
		}
	}

	logger.WithContext(ctx).Info("user registered",
		zap.Int64("user_id", user.ID),
		zap.String("email", logger.MaskEmail(user.Email)))

	return NewUserView(user), nil
}

// Authenticate verifies credentials and issues an access token. Any
// failure collapses to ErrInvalidCredentials; callers never learn
// whether the username or the password was wrong.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (string, error) {
	user, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("lookup user: %w", err)
	}

	valid, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return "", fmt.Errorf("verify password: %w", err)
	}
	if !valid {
		return "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(domain.Principal{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
	})
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}

	return token, nil
}

// ResolvePrincipal maps a validated token subject onto the
// request-scoped principal.
func (s *UserService) ResolvePrincipal(ctx context.Context, username string) (domain.Principal, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Principal{}, ErrUserNotFound
		}
		return domain.Principal{}, fmt.Errorf("lookup user: %w", err)
	}

	return domain.Principal{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
	}, nil
}

// Profile returns the read model of a user by id.
func (s *UserService) Profile(ctx context.Context, id int64) (UserView, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return UserView{}, ErrUserNotFound
		}
		return UserView{}, fmt.Errorf("lookup user: %w", err)
	}
	return NewUserView(*user), nil
}

// UpdateProfile mutates profile fields. Only the user themselves or an
// admin may update a profile.
func (s *UserService) UpdateProfile(ctx context.Context, principal domain.Principal, id int64, input UpdateProfileInput) (UserView, error) {
	if principal.UserID != id && !principal.IsAdmin() {
		return UserView{}, ErrForbidden
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return UserView{}, ErrUserNotFound
		}
		return UserView{}, fmt.Errorf("lookup user: %w", err)
	}

	if email := strings.TrimSpace(input.Email); email != "" {
		if !emailPattern.MatchString(email) {
			return UserView{}, ErrInvalidEmail
		}
		user.Email = email
	}
	if input.ProfilePicture != nil {
		user.ProfilePicture = input.ProfilePicture
	}

	if err := s.users.Update(ctx, *user); err != nil {
		return UserView{}, fmt.Errorf("update user: %w", err)
	}

	return NewUserView(*user), nil
}

// ChangePassword verifies the current password and stores a new hash.
func (s *UserService) ChangePassword(ctx context.Context, principal domain.Principal, id int64, current, next string) error {
	if principal.UserID != id && !principal.IsAdmin() {
		return ErrForbidden
	}
	if len(next) < minPasswordLength {
		return ErrPasswordTooShort
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("lookup user: %w", err)
	}

	if principal.UserID == id {
		valid, err := security.VerifyPassword(current, user.PasswordHash)
		if err != nil {
			return fmt.Errorf("verify current password: %w", err)
		}
		if !valid {
			return ErrInvalidCredentials
		}
	}

	hash, err := security.HashPassword(next)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.users.UpdatePassword(ctx, id, hash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	return nil
}

// FavoriteRestaurants lists the restaurants the user bookmarked.
func (s *UserService) FavoriteRestaurants(ctx context.Context, userID int64) ([]RestaurantView, error) {
	restaurants, err := s.favorites.ListRestaurants(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list favorite restaurants: %w", err)
	}
	return s.restaurantViews(ctx, restaurants, &userID)
}

// Reviews lists the reviews written by the user, with like projections.
func (s *UserService) Reviews(ctx context.Context, userID int64) ([]ReviewView, error) {
	reviews, err := s.reviews.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list user reviews: %w", err)
	}
	return NewReviewViews(reviews, &userID), nil
}

// CreatedRestaurants lists the restaurants the user registered.
func (s *UserService) CreatedRestaurants(ctx context.Context, userID int64) ([]RestaurantView, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	restaurants, err := s.restaurants.ListByCreator(ctx, user.Username)
	if err != nil {
		return nil, fmt.Errorf("list created restaurants: %w", err)
	}
	return s.restaurantViews(ctx, restaurants, &userID)
}

// restaurantViews assembles full views, pulling each restaurant's
// review set for the aggregates.
func (s *UserService) restaurantViews(ctx context.Context, restaurants []domain.Restaurant, viewerID *int64) ([]RestaurantView, error) {
	views := make([]RestaurantView, 0, len(restaurants))
	for _, restaurant := range restaurants {
		reviews, err := s.reviews.ListByRestaurant(ctx, restaurant.ID)
		if err != nil {
			return nil, fmt.Errorf("list reviews for restaurant %d: %w", restaurant.ID, err)
		}
		views = append(views, NewRestaurantView(restaurant, reviews, viewerID))
	}
	return views, nil
}
