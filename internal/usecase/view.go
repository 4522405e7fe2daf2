package usecase

import (
	"sort"
	"time"

	"github.com/plateful/restaurant-review-api/internal/core/domain"
)

// ReviewView is the one-directional read model of a review. It never
// serializes its inverse associations; everything personalized is
// computed against the viewer at assembly time.
type ReviewView struct {
	ID             int64      `json:"id"`
	RestaurantID   int64      `json:"restaurantId"`
	RestaurantName string     `json:"restaurantName"`
	Author         string     `json:"author"`
	Content        string     `json:"content"`
	Rating         int        `json:"rating"`
	ImageURL       *string    `json:"imageUrl,omitempty"`
	LikeCount      int        `json:"likeCount"`
	IsLiked        bool       `json:"isLiked"`
	IsEdited       bool       `json:"isEdited"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      *time.Time `json:"updatedAt,omitempty"`
}

// RestaurantView is the one-directional read model of a restaurant with
// its aggregates computed from the full review set.
type RestaurantView struct {
	ID            int64        `json:"id"`
	Name          string       `json:"name"`
	Address       string       `json:"address"`
	Phone         string       `json:"phone"`
	Category      string       `json:"category"`
	Description   string       `json:"description"`
	CreatedBy     string       `json:"createdBy"`
	ImageURL      *string      `json:"imageUrl,omitempty"`
	AverageRating float64      `json:"averageRating"`
	ReviewCount   int          `json:"reviewCount"`
	CreatedAt     time.Time    `json:"createdAt"`
	Reviews       []ReviewView `json:"reviews,omitempty"`
}

// NewReviewView assembles the read model for a single review. A nil
// viewerID denotes an unauthenticated caller, for whom isLiked is
// always false.
func NewReviewView(review domain.Review, viewerID *int64) ReviewView {
	liked := false
	if viewerID != nil {
		for _, like := range review.Likes {
			if like.UserID == *viewerID {
				liked = true
				break
			}
		}
	}

	return ReviewView{
		ID:             review.ID,
		RestaurantID:   review.RestaurantID,
		RestaurantName: review.RestaurantName,
		Author:         review.AuthorUsername,
		Content:        review.Content,
		Rating:         review.Rating,
		ImageURL:       review.ImageURL,
		LikeCount:      len(review.Likes),
		IsLiked:        liked,
		IsEdited:       review.Edited(),
		CreatedAt:      review.CreatedAt,
		UpdatedAt:      review.UpdatedAt,
	}
}

// NewReviewViews assembles views preserving collection order.
func NewReviewViews(reviews []domain.Review, viewerID *int64) []ReviewView {
	views := make([]ReviewView, 0, len(reviews))
	for _, review := range reviews {
		views = append(views, NewReviewView(review, viewerID))
	}
	return views
}

// NewRestaurantView assembles the read model of a restaurant from the
// restaurant row and its complete review set.
func NewRestaurantView(restaurant domain.Restaurant, reviews []domain.Review, viewerID *int64) RestaurantView {
	return RestaurantView{
		ID:            restaurant.ID,
		Name:          restaurant.Name,
		Address:       restaurant.Address,
		Phone:         restaurant.Phone,
		Category:      restaurant.Category,
		Description:   restaurant.Description,
		CreatedBy:     restaurant.CreatedByUsername,
		ImageURL:      restaurant.ImageURL,
		AverageRating: AverageRating(reviews),
		ReviewCount:   len(reviews),
		CreatedAt:     restaurant.CreatedAt,
		Reviews:       NewReviewViews(reviews, viewerID),
	}
}

// AverageRating computes the mean rating of the review set, or 0.0 for
// an empty set.
func AverageRating(reviews []domain.Review) float64 {
	if len(reviews) == 0 {
		return 0.0
	}

	sum := 0
	for _, review := range reviews {
		sum += review.Rating
	}
	return float64(sum) / float64(len(reviews))
}

// SortReviewsByLikes orders reviews by descending like count. The sort
// is stable; ties keep their original relative order.
func SortReviewsByLikes(reviews []domain.Review) {
	sort.SliceStable(reviews, func(i, j int) bool {
		return len(reviews[i].Likes) > len(reviews[j].Likes)
	})
}

// PaginateReviews returns the subrange [page*size, page*size+size) of
// the review slice. An out-of-range page yields an empty slice.
func PaginateReviews(reviews []domain.Review, page, size int) []domain.Review {
	if page < 0 || size <= 0 {
		return nil
	}

	start := page * size
	if start >= len(reviews) {
		return nil
	}

	end := start + size
	if end > len(reviews) {
		end = len(reviews)
	}

	return reviews[start:end]
}

// StarDistribution counts reviews per rating value. All five buckets
// are always present, defaulting to zero.
func StarDistribution(reviews []domain.Review) map[int]int {
	distribution := map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}
	for _, review := range reviews {
		if review.Rating >= 1 && review.Rating <= 5 {
			distribution[review.Rating]++
		}
	}
	return distribution
}
