package domain

import "time"

// Review mirrors the persisted representation in the reviews table.
// Author, RestaurantName and Likes are projections loaded eagerly by the
// repository; views never rely on lazy association traversal.
type Review struct {
	ID           int64
	RestaurantID int64
	UserID       int64
	Content      string
	Rating       int
	ImageURL     *string
	CreatedAt    time.Time
	UpdatedAt    *time.Time

	AuthorUsername string
	AuthorRole     Role
	RestaurantName string
	Likes          []ReviewLike
}

// Edited reports whether the review changed after creation. Equal
// timestamps mean the review was never edited.
func (r Review) Edited() bool {
	return r.UpdatedAt != nil && !r.CreatedAt.IsZero() && r.CreatedAt.Before(*r.UpdatedAt)
}

// ReviewLike records a single user liking a single review. At most one
// row may exist per (user, review) pair.
type ReviewLike struct {
	UserID    int64
	ReviewID  int64
	CreatedAt time.Time
}
