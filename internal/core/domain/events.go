package domain

import "time"

// UserRegisteredEvent is published after a successful registration.
type UserRegisteredEvent struct {
	UserID       int64
	Username     string
	Email        string
	RegisteredAt time.Time
}

// RestaurantCreatedEvent is published after a restaurant is created.
type RestaurantCreatedEvent struct {
	RestaurantID int64
	Name         string
	Category     string
	CreatedBy    string
	CreatedAt    time.Time
}

// ReviewCreatedEvent is published after a review is created.
type ReviewCreatedEvent struct {
	ReviewID     int64
	RestaurantID int64
	UserID       int64
	Rating       int
	CreatedAt    time.Time
}

// ReviewLikedEvent is published after a review receives a like.
type ReviewLikedEvent struct {
	ReviewID int64
	UserID   int64
	LikedAt  time.Time
}
