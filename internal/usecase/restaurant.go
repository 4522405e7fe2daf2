package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/plateful/restaurant-review-api/internal/core/domain"
	"github.com/plateful/restaurant-review-api/internal/core/port"
	"github.com/plateful/restaurant-review-api/internal/infra/logger"
	"github.com/plateful/restaurant-review-api/internal/repository"
)

const defaultPageSize = 10

// ImageUpload carries a decoded multipart file part.
type ImageUpload struct {
	ContentType string
	Data        []byte
}

// RestaurantInput captures the mutable fields of a restaurant.
type RestaurantInput struct {
	Name        string `json:"name"`
	Address     string `json:"address"`
	Phone       string `json:"phone"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

// RestaurantQuery narrows and pages the public restaurant listing.
type RestaurantQuery struct {
	Keyword   string
	Category  string
	MinRating float64
	Page      int
	Size      int
	Sort      string
}

// RestaurantPage is the paginated listing envelope.
type RestaurantPage struct {
	Content       []RestaurantView `json:"content"`
	TotalElements int              `json:"totalElements"`
	TotalPages    int              `json:"totalPages"`
	CurrentPage   int              `json:"currentPage"`
	Size          int              `json:"size"`
}

// RestaurantService handles restaurant lifecycle and listings.
type RestaurantService struct {
	restaurants port.RestaurantRepository
	reviews     port.ReviewRepository
	likes       port.LikeRepository
	favorites   port.FavoriteRepository
	rating      *RatingService
	images      *ImageService
	events      port.EventPublisher
	logger      *zap.Logger
	now         func() time.Time
}

// NewRestaurantService constructs RestaurantService.
func NewRestaurantService(
	restaurants port.RestaurantRepository,
	reviews port.ReviewRepository,
	likes port.LikeRepository,
	favorites port.FavoriteRepository,
	rating *RatingService,
	images *ImageService,
	events port.EventPublisher,
	log *zap.Logger,
) *RestaurantService {
	if log == nil {
		log = zap.NewNop()
	}
	return &RestaurantService{
		restaurants: restaurants,
		reviews:     reviews,
		likes:       likes,
		favorites:   favorites,
		rating:      rating,
		images:      images,
		events:      events,
		logger:      log,
		now:         time.Now,
	}
}

func validateRestaurantInput(input RestaurantInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return fmt.Errorf("%w: restaurant name is required", ErrInvalidInput)
	}
	return nil
}

// Create registers a new restaurant owned by the principal, with an
// optional image upload.
func (s *RestaurantService) Create(ctx context.Context, principal domain.Principal, input RestaurantInput, image *ImageUpload) (RestaurantView, error) {
	if err := validateRestaurantInput(input); err != nil {
		return RestaurantView{}, err
	}

	restaurant := domain.Restaurant{
		Name:              strings.TrimSpace(input.Name),
		Address:           strings.TrimSpace(input.Address),
		Phone:             strings.TrimSpace(input.Phone),
		Category:          strings.TrimSpace(input.Category),
		Description:       input.Description,
		CreatedByUsername: principal.Username,
		CreatedAt:         s.now().UTC(),
	}

	if image != nil {
		url, err := s.images.Upload(ctx, "restaurants", image.ContentType, image.Data)
		if err != nil {
			return RestaurantView{}, err
		}
		restaurant.ImageURL = &url
	}

	id, err := s.restaurants.Create(ctx, restaurant)
	if err != nil {
		return RestaurantView{}, fmt.Errorf("create restaurant: %w", err)
	}
	restaurant.ID = id

	if s.events != nil {
		event := domain.RestaurantCreatedEvent{
			RestaurantID: restaurant.ID,
			Name:         restaurant.Name,
			Category:     restaurant.Category,
			CreatedBy:    restaurant.CreatedByUsername,
			CreatedAt:    restaurant.CreatedAt,
		}
		if err := s.events.PublishRestaurantCreated(ctx, event); err != nil {
			logger.WithContext(ctx).Warn("publish restaurant created event failed",
				zap.Int64("restaurant_id", restaurant.ID), zap.Error(err))
		}
	}

	viewerID := principal.UserID
	return NewRestaurantView(restaurant, nil, &viewerID), nil
}

// Get returns the full view of a restaurant, with its review set and
// aggregates.
func (s *RestaurantService) Get(ctx context.Context, id int64, viewerID *int64) (RestaurantView, error) {
	restaurant, err := s.restaurants.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return RestaurantView{}, ErrRestaurantNotFound
		}
		return RestaurantView{}, fmt.Errorf("lookup restaurant: %w", err)
	}

	reviews, err := s.reviews.ListByRestaurant(ctx, id)
	if err != nil {
		return RestaurantView{}, fmt.Errorf("list reviews: %w", err)
	}

	return NewRestaurantView(*restaurant, reviews, viewerID), nil
}

// List returns the public paginated listing. The minimum-rating filter
// is applied after aggregation, against the freshly computed averages.
func (s *RestaurantService) List(ctx context.Context, query RestaurantQuery, viewerID *int64) (RestaurantPage, error) {
	size := query.Size
	if size <= 0 {
		size = defaultPageSize
	}
	page := query.Page
	if page < 0 {
		page = 0
	}

	filter := domain.RestaurantFilter{
		Keyword:  query.Keyword,
		Category: query.Category,
		Page:     page,
		Size:     size,
		Sort:     query.Sort,
	}

	restaurants, total, err := s.restaurants.List(ctx, filter)
	if err != nil {
		return RestaurantPage{}, fmt.Errorf("list restaurants: %w", err)
	}

	views := make([]RestaurantView, 0, len(restaurants))
	for _, restaurant := range restaurants {
		reviews, err := s.reviews.ListByRestaurant(ctx, restaurant.ID)
		if err != nil {
			return RestaurantPage{}, fmt.Errorf("list reviews for restaurant %d: %w", restaurant.ID, err)
		}
		view := NewRestaurantView(restaurant, reviews, viewerID)
		if query.MinRating > 0 && view.AverageRating < query.MinRating {
			total--
			continue
		}
		views = append(views, view)
	}

	totalPages := 0
	if total > 0 {
		totalPages = int(math.Ceil(float64(total) / float64(size)))
	}

	return RestaurantPage{
		Content:       views,
		TotalElements: total,
		TotalPages:    totalPages,
		CurrentPage:   page,
		Size:          size,
	}, nil
}

// Popular returns the most reviewed restaurants.
func (s *RestaurantService) Popular(ctx context.Context, limit int, viewerID *int64) ([]RestaurantView, error) {
	restaurants, err := s.restaurants.ListPopular(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list popular restaurants: %w", err)
	}
	return s.views(ctx, restaurants, viewerID)
}

// Latest returns the most recently registered restaurants.
func (s *RestaurantService) Latest(ctx context.Context, limit int, viewerID *int64) ([]RestaurantView, error) {
	restaurants, err := s.restaurants.ListLatest(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list latest restaurants: %w", err)
	}
	return s.views(ctx, restaurants, viewerID)
}

// Update mutates a restaurant. Only the owner or an admin may update;
// a new image replaces and deletes the previous one.
func (s *RestaurantService) Update(ctx context.Context, principal domain.Principal, id int64, input RestaurantInput, image *ImageUpload) (RestaurantView, error) {
	if err := validateRestaurantInput(input); err != nil {
		return RestaurantView{}, err
	}

	restaurant, err := s.restaurants.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return RestaurantView{}, ErrRestaurantNotFound
		}
		return RestaurantView{}, fmt.Errorf("lookup restaurant: %w", err)
	}

	if restaurant.CreatedByUsername != principal.Username && !principal.IsAdmin() {
		return RestaurantView{}, ErrForbidden
	}

	restaurant.Name = strings.TrimSpace(input.Name)
	restaurant.Address = strings.TrimSpace(input.Address)
	restaurant.Phone = strings.TrimSpace(input.Phone)
	restaurant.Category = strings.TrimSpace(input.Category)
	restaurant.Description = input.Description

	if image != nil {
		url, err := s.images.Upload(ctx, "restaurants", image.ContentType, image.Data)
		if err != nil {
			return RestaurantView{}, err
		}
		if restaurant.ImageURL != nil {
			if err := s.images.Delete(ctx, *restaurant.ImageURL); err != nil {
				logger.WithContext(ctx).Warn("delete replaced restaurant image failed",
					zap.Int64("restaurant_id", id), zap.Error(err))
			}
		}
		restaurant.ImageURL = &url
	}

	if err := s.restaurants.Update(ctx, *restaurant); err != nil {
		return RestaurantView{}, fmt.Errorf("update restaurant: %w", err)
	}

	reviews, err := s.reviews.ListByRestaurant(ctx, id)
	if err != nil {
		return RestaurantView{}, fmt.Errorf("list reviews: %w", err)
	}

	viewerID := principal.UserID
	return NewRestaurantView(*restaurant, reviews, &viewerID), nil
}

// Delete removes a restaurant together with its reviews, likes,
// favorites and stored image. Only the owner or an admin may delete.
func (s *RestaurantService) Delete(ctx context.Context, principal domain.Principal, id int64) error {
	restaurant, err := s.restaurants.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrRestaurantNotFound
		}
		return fmt.Errorf("lookup restaurant: %w", err)
	}

	if restaurant.CreatedByUsername != principal.Username && !principal.IsAdmin() {
		return ErrForbidden
	}

	reviews, err := s.reviews.ListByRestaurant(ctx, id)
	if err != nil {
		return fmt.Errorf("list reviews: %w", err)
	}
	for _, review := range reviews {
		if err := s.likes.RemoveByReview(ctx, review.ID); err != nil {
			return fmt.Errorf("remove likes for review %d: %w", review.ID, err)
		}
		if review.ImageURL != nil {
			if err := s.images.Delete(ctx, *review.ImageURL); err != nil {
				logger.WithContext(ctx).Warn("delete review image failed",
					zap.Int64("review_id", review.ID), zap.Error(err))
			}
		}
	}

	if err := s.reviews.DeleteByRestaurant(ctx, id); err != nil {
		return fmt.Errorf("delete reviews: %w", err)
	}
	if err := s.favorites.RemoveByRestaurant(ctx, id); err != nil {
		return fmt.Errorf("remove favorites: %w", err)
	}

	if restaurant.ImageURL != nil {
		if err := s.images.Delete(ctx, *restaurant.ImageURL); err != nil {
			logger.WithContext(ctx).Warn("delete restaurant image failed",
				zap.Int64("restaurant_id", id), zap.Error(err))
		}
	}

	if err := s.restaurants.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete restaurant: %w", err)
	}

	s.rating.Invalidate(ctx, id)

	logger.WithContext(ctx).Info("restaurant deleted",
		zap.Int64("restaurant_id", id), zap.Int64("user_id", principal.UserID))

	return nil
}

// Rating returns the current average rating for a restaurant.
func (s *RestaurantService) Rating(ctx context.Context, id int64) (float64, error) {
	if _, err := s.restaurants.GetByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, ErrRestaurantNotFound
		}
		return 0, fmt.Errorf("lookup restaurant: %w", err)
	}
	return s.rating.Average(ctx, id)
}

func (s *RestaurantService) views(ctx context.Context, restaurants []domain.Restaurant, viewerID *int64) ([]RestaurantView, error) {
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
