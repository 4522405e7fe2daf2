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

// ReviewInput captures the mutable fields of a review.
type ReviewInput struct {
	Content string `json:"content"`
	Rating  int    `json:"rating"`
}

// ReviewPage is the paginated review listing envelope. The star
// distribution and average always describe the full review set, not
// just the returned page.
type ReviewPage struct {
	Content          []ReviewView `json:"content"`
	TotalElements    int          `json:"totalElements"`
	TotalPages       int          `json:"totalPages"`
	CurrentPage      int          `json:"currentPage"`
	Size             int          `json:"size"`
	StarDistribution map[int]int  `json:"starDistribution"`
	AverageRating    float64      `json:"averageRating"`
}

// ReviewService handles review lifecycle and like operations.
type ReviewService struct {
	reviews     port.ReviewRepository
	restaurants port.RestaurantRepository
	likes       port.LikeRepository
	rating      *RatingService
	images      *ImageService
	events      port.EventPublisher
	logger      *zap.Logger
	now         func() time.Time
}

// NewReviewService constructs ReviewService.
func NewReviewService(
	reviews port.ReviewRepository,
	restaurants port.RestaurantRepository,
	likes port.LikeRepository,
	rating *RatingService,
	images *ImageService,
	events port.EventPublisher,
	log *zap.Logger,
) *ReviewService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ReviewService{
		reviews:     reviews,
		restaurants: restaurants,
		likes:       likes,
		rating:      rating,
		images:      images,
		events:      events,
		logger:      log,
		now:         time.Now,
	}
}

func validateReviewInput(input ReviewInput) error {
	if strings.TrimSpace(input.Content) == "" {
		return fmt.Errorf("%w: review content is required", ErrInvalidInput)
	}
	if input.Rating < 1 || input.Rating > 5 {
		return fmt.Errorf("%w: rating must be between 1 and 5", ErrInvalidInput)
	}
	return nil
}

// Create posts a review for a restaurant and recomputes its average
// rating within the same request.
func (s *ReviewService) Create(ctx context.Context, principal domain.Principal, restaurantID int64, input ReviewInput, image *ImageUpload) (ReviewView, error) {
	if err := validateReviewInput(input); err != nil {
		return ReviewView{}, err
	}

	if _, err := s.restaurants.GetByID(ctx, restaurantID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ReviewView{}, ErrRestaurantNotFound
		}
		return ReviewView{}, fmt.Errorf("lookup restaurant: %w", err)
	}

	review := domain.Review{
		RestaurantID: restaurantID,
		UserID:       principal.UserID,
		Content:      input.Content,
		Rating:       input.Rating,
		CreatedAt:    s.now().UTC(),
	}

	if image != nil {
		url, err := s.images.Upload(ctx, "reviews", image.ContentType, image.Data)
		if err != nil {
			return ReviewView{}, err
		}
		review.ImageURL = &url
	}

	id, err := s.reviews.Create(ctx, review)
	if err != nil {
		return ReviewView{}, fmt.Errorf("create review: %w", err)
	}

	if _, err := s.rating.Recompute(ctx, restaurantID); err != nil {
		return ReviewView{}, fmt.Errorf("recompute rating: %w", err)
	}

	if s.events != nil {
		event := domain.ReviewCreatedEvent{
			ReviewID:     id,
			RestaurantID: restaurantID,
			UserID:       principal.UserID,
			Rating:       review.Rating,
			CreatedAt:    review.CreatedAt,
		}
		if err := s.events.PublishReviewCreated(ctx, event); err != nil {
			logger.WithContext(ctx).Warn("publish review created event failed",
				zap.Int64("review_id", id), zap.Error(err))
		}
	}

	created, err := s.reviews.GetByID(ctx, id)
	if err != nil {
		return ReviewView{}, fmt.Errorf("load created review: %w", err)
	}

	viewerID := principal.UserID
	return NewReviewView(*created, &viewerID), nil
}

// Get returns a single review view.
func (s *ReviewService) Get(ctx context.Context, id int64, viewerID *int64) (ReviewView, error) {
	review, err := s.reviews.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ReviewView{}, ErrReviewNotFound
		}
		return ReviewView{}, fmt.Errorf("lookup review: %w", err)
	}
	return NewReviewView(*review, viewerID), nil
}

// Page returns one page of a restaurant's reviews together with
// aggregates over the complete review set. Out-of-range pages yield an
// empty content list. sort="likes" orders by descending like count
// before slicing; any other value keeps collection order.
func (s *ReviewService) Page(ctx context.Context, restaurantID int64, page, size int, sort string, viewerID *int64) (ReviewPage, error) {
	if _, err := s.restaurants.GetByID(ctx, restaurantID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ReviewPage{}, ErrRestaurantNotFound
		}
		return ReviewPage{}, fmt.Errorf("lookup restaurant: %w", err)
	}

	reviews, err := s.reviews.ListByRestaurant(ctx, restaurantID)
	if err != nil {
		return ReviewPage{}, fmt.Errorf("list reviews: %w", err)
	}

	if size <= 0 {
		size = defaultPageSize
	}
	if page < 0 {
		page = 0
	}

	if strings.EqualFold(strings.TrimSpace(sort), "likes") {
		SortReviewsByLikes(reviews)
	}

	total := len(reviews)
	totalPages := 0
	if total > 0 {
		totalPages = int(math.Ceil(float64(total) / float64(size)))
	}

	pageReviews := PaginateReviews(reviews, page, size)

	return ReviewPage{
		Content:          NewReviewViews(pageReviews, viewerID),
		TotalElements:    total,
		TotalPages:       totalPages,
		CurrentPage:      page,
		Size:             size,
		StarDistribution: StarDistribution(reviews),
		AverageRating:    AverageRating(reviews),
	}, nil
}

// Update mutates a review. Only the author may update their review.
func (s *ReviewService) Update(ctx context.Context, principal domain.Principal, id int64, input ReviewInput, image *ImageUpload) (ReviewView, error) {
	if err := validateReviewInput(input); err != nil {
		return ReviewView{}, err
	}

	review, err := s.reviews.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ReviewView{}, ErrReviewNotFound
		}
		return ReviewView{}, fmt.Errorf("lookup review: %w", err)
	}

	if review.UserID != principal.UserID {
		return ReviewView{}, ErrForbidden
	}

	review.Content = input.Content
	review.Rating = input.Rating
	updatedAt := s.now().UTC()
	review.UpdatedAt = &updatedAt

	if image != nil {
		url, err := s.images.Upload(ctx, "reviews", image.ContentType, image.Data)
		if err != nil {
			return ReviewView{}, err
		}
		if review.ImageURL != nil {
			if err := s.images.Delete(ctx, *review.ImageURL); err != nil {
				logger.WithContext(ctx).Warn("delete replaced review image failed",
					zap.Int64("review_id", id), zap.Error(err))
			}
		}
		review.ImageURL = &url
	}

	if err := s.reviews.Update(ctx, *review); err != nil {
		return ReviewView{}, fmt.Errorf("update review: %w", err)
	}

	if _, err := s.rating.Recompute(ctx, review.RestaurantID); err != nil {
		return ReviewView{}, fmt.Errorf("recompute rating: %w", err)
	}

	viewerID := principal.UserID
	return NewReviewView(*review, &viewerID), nil
}

// Delete removes a review. The author or an admin may delete.
func (s *ReviewService) Delete(ctx context.Context, principal domain.Principal, id int64) error {
	review, err := s.reviews.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrReviewNotFound
		}
		return fmt.Errorf("lookup review: %w", err)
	}

	if review.UserID != principal.UserID && !principal.IsAdmin() {
		return ErrForbidden
	}

	if err := s.likes.RemoveByReview(ctx, id); err != nil {
		return fmt.Errorf("remove likes: %w", err)
	}

	if review.ImageURL != nil {
		if err := s.images.Delete(ctx, *review.ImageURL); err != nil {
			logger.WithContext(ctx).Warn("delete review image failed",
				zap.Int64("review_id", id), zap.Error(err))
		}
	}

	if err := s.reviews.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete review: %w", err)
	}

	if _, err := s.rating.Recompute(ctx, review.RestaurantID); err != nil {
		return fmt.Errorf("recompute rating: %w", err)
	}

	return nil
}

// Like records that the principal liked the review. Liking an already
// liked review is a validation error, never a silent success; the
// storage-level uniqueness constraint closes the check-then-act race.
func (s *ReviewService) Like(ctx context.Context, principal domain.Principal, reviewID int64) error {
	if _, err := s.reviews.GetByID(ctx, reviewID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrReviewNotFound
		}
		return fmt.Errorf("lookup review: %w", err)
	}

	liked, err := s.likes.Exists(ctx, principal.UserID, reviewID)
	if err != nil {
		return fmt.Errorf("check like: %w", err)
	}
	if liked {
		return ErrAlreadyLiked
	}

	if err := s.likes.Add(ctx, principal.UserID, reviewID); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return ErrAlreadyLiked
		}
		return fmt.Errorf("add like: %w", err)
	}

	if s.events != nil {
		event := domain.ReviewLikedEvent{
			ReviewID: reviewID,
			UserID:   principal.UserID,
			LikedAt:  s.now().UTC(),
		}
		if err := s.events.PublishReviewLiked(ctx, event); err != nil {
			logger.WithContext(ctx).Warn("publish review liked event failed",
				zap.Int64("review_id", reviewID), zap.Error(err))
		}
	}

	return nil
}

// Unlike removes the principal's like. Unliking without a prior like
// is an error, not a no-op.
func (s *ReviewService) Unlike(ctx context.Context, principal domain.Principal, reviewID int64) error {
	if err := s.likes.Remove(ctx, principal.UserID, reviewID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotLiked
		}
		return fmt.Errorf("remove like: %w", err)
	}
	return nil
}

// LikeCount returns the number of likes a review has received.
func (s *ReviewService) LikeCount(ctx context.Context, reviewID int64) (int64, error) {
	if _, err := s.reviews.GetByID(ctx, reviewID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, ErrReviewNotFound
		}
		return 0, fmt.Errorf("lookup review: %w", err)
	}
	return s.likes.CountByReview(ctx, reviewID)
}
