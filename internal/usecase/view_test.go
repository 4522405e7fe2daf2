package usecase

import (
	"math"
	"testing"
	"time"

	"github.com/plateful/restaurant-review-api/internal/core/domain"
)

func reviewWithRating(id int64, rating int) domain.Review {
	return domain.Review{
		ID:        id,
		Rating:    rating,
		CreatedAt: time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC),
	}
}

func reviewWithLikes(id int64, likerIDs ...int64) domain.Review {
	review := reviewWithRating(id, 4)
	for _, likerID := range likerIDs {
		review.Likes = append(review.Likes, domain.ReviewLike{UserID: likerID, ReviewID: id})
	}
	return review
}

func TestAverageRating(t *testing.T) {
	cases := []struct {
		name    string
		ratings []int
		want    float64
	}{
		{"empty set", nil, 0.0},
		{"single review", []int{4}, 4.0},
		{"mixed ratings", []int{5, 3, 4}, 4.0},
		{"non integer mean", []int{5, 4}, 4.5},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var reviews []domain.Review
			for i, rating := range tc.ratings {
				reviews = append(reviews, reviewWithRating(int64(i+1), rating))
			}

			got := AverageRating(reviews)
			if math.Abs(got-tc.want) > 1e-9 {
				t.Fatalf("AverageRating = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestNewReviewViewIsLiked(t *testing.T) {
	review := reviewWithLikes(1, 10, 20)
	viewer := int64(10)
	stranger := int64(30)

	cases := []struct {
		name   string
		viewer *int64
		want   bool
	}{
		{"liker sees liked", &viewer, true},
		{"non liker sees not liked", &stranger, false},
		{"unauthenticated always false", nil, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			view := NewReviewView(review, tc.viewer)
			if view.IsLiked != tc.want {
				t.Fatalf("IsLiked = %v, want %v", view.IsLiked, tc.want)
			}
			if view.LikeCount != 2 {
				t.Fatalf("LikeCount = %d, want 2", view.LikeCount)
			}
		})
	}
}

func TestNewReviewViewIsEdited(t *testing.T) {
	createdAt := time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name      string
		updatedAt *time.Time
		want      bool
	}{
		{"never updated", nil, false},
		{"updated equals created", &createdAt, false},
		{"updated one second later", timePtr(createdAt.Add(time.Second)), true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			review := domain.Review{ID: 1, CreatedAt: createdAt, UpdatedAt: tc.updatedAt}
			if got := NewReviewView(review, nil).IsEdited; got != tc.want {
				t.Fatalf("IsEdited = %v, want %v", got, tc.want)
			}
		})
	}
}

func timePtr(t time.Time) *time.Time { return &t }

func TestNewRestaurantView(t *testing.T) {
	restaurant := domain.Restaurant{ID: 3, Name: "Noodle House"}

	t.Run("no reviews", func(t *testing.T) {
		view := NewRestaurantView(restaurant, nil, nil)
		if view.AverageRating != 0.0 {
			t.Fatalf("AverageRating = %v, want 0.0", view.AverageRating)
		}
		if view.ReviewCount != 0 {
			t.Fatalf("ReviewCount = %d, want 0", view.ReviewCount)
		}
	})

	t.Run("aggregates from review set", func(t *testing.T) {
		reviews := []domain.Review{
			reviewWithRating(1, 5),
			reviewWithRating(2, 3),
		}
		view := NewRestaurantView(restaurant, reviews, nil)
		if view.AverageRating != 4.0 {
			t.Fatalf("AverageRating = %v, want 4.0", view.AverageRating)
		}
		if view.ReviewCount != 2 {
			t.Fatalf("ReviewCount = %d, want 2", view.ReviewCount)
		}
		if len(view.Reviews) != 2 || view.Reviews[0].ID != 1 {
			t.Fatalf("nested reviews should preserve collection order")
		}
	})
}

func TestSortReviewsByLikesStable(t *testing.T) {
	reviews := []domain.Review{
		reviewWithLikes(1, 10),
		reviewWithLikes(2, 10, 20, 30),
		reviewWithLikes(3, 10),
		reviewWithLikes(4, 10, 20),
	}

	SortReviewsByLikes(reviews)

	wantOrder := []int64{2, 4, 1, 3}
	for i, want := range wantOrder {
		if reviews[i].ID != want {
			t.Fatalf("position %d = review %d, want %d", i, reviews[i].ID, want)
		}
	}
}

func TestPaginateReviews(t *testing.T) {
	reviews := make([]domain.Review, 12)
	for i := range reviews {
		reviews[i] = reviewWithRating(int64(i+1), 4)
	}

	cases := []struct {
		name string
		page int
		size int
		want int
	}{
		{"first page", 0, 5, 5},
		{"last partial page", 2, 5, 2},
		{"out of range page", 3, 5, 0},
		{"negative page", -1, 5, 0},
		{"zero size", 0, 0, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := PaginateReviews(reviews, tc.page, tc.size)
			if len(got) != tc.want {
				t.Fatalf("len = %d, want %d", len(got), tc.want)
			}
		})
	}

	t.Run("subrange preserves order", func(t *testing.T) {
		page := PaginateReviews(reviews, 1, 5)
		if page[0].ID != 6 || page[4].ID != 10 {
			t.Fatalf("page 1 = [%d..%d], want [6..10]", page[0].ID, page[4].ID)
		}
	})
}

func TestStarDistribution(t *testing.T) {
	reviews := []domain.Review{
		reviewWithRating(1, 5),
		reviewWithRating(2, 5),
		reviewWithRating(3, 3),
	}

	distribution := StarDistribution(reviews)

	want := map[int]int{1: 0, 2: 0, 3: 1, 4: 0, 5: 2}
	for star := 1; star <= 5; star++ {
		count, present := distribution[star]
		if !present {
			t.Fatalf("bucket %d missing, all five buckets must be present", star)
		}
		if count != want[star] {
			t.Fatalf("bucket %d = %d, want %d", star, count, want[star])
		}
	}
}
