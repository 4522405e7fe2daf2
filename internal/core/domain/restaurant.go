package domain

import "time"

// Restaurant mirrors the persisted representation in the restaurants table.
// AverageRating is a cached column only; the source of truth is always the
// live review set and the value is recomputed after every review mutation.
type Restaurant struct {
	ID                int64
	Name              string
	Address           string
	Phone             string
	Category          string
	Description       string
	CreatedByUsername string
	ImageURL          *string
	AverageRating     float64
	CreatedAt         time.Time
}

// RestaurantFilter narrows restaurant listings.
type RestaurantFilter struct {
	Keyword  string
	Category string
	Page     int
	Size     int
	// Sort is "column" or "column,desc"; empty means newest first.
	Sort string
}

// Favorite links a user to a restaurant they bookmarked.
// At most one row may exist per (user, restaurant) pair.
type Favorite struct {
	UserID       int64
	RestaurantID int64
	CreatedAt    time.Time
}
