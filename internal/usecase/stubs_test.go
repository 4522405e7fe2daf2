package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/plateful/restaurant-review-api/internal/core/domain"
	"github.com/plateful/restaurant-review-api/internal/repository"
)

// In-memory repository stubs backing the service tests.

type stubUserRepo struct {
	users  map[int64]domain.User
	nextID int64
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[int64]domain.User)}
}

func (r *stubUserRepo) Create(_ context.Context, user domain.User) (int64, error) {
	for _, existing := range r.users {
		if existing.Username == user.Username {
			return 0, repository.ErrDuplicate
		}
	}
	r.nextID++
	user.ID = r.nextID
	r.users[user.ID] = user
	return user.ID, nil
}

func (r *stubUserRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &user, nil
}

func (r *stubUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	for _, user := range r.users {
		if user.Username == username {
			u := user
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *stubUserRepo) Update(_ context.Context, user domain.User) error {
	if _, ok := r.users[user.ID]; !ok {
		return repository.ErrNotFound
	}
	r.users[user.ID] = user
	return nil
}

func (r *stubUserRepo) UpdatePassword(_ context.Context, id int64, hash string) error {
	user, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	user.PasswordHash = hash
	r.users[id] = user
	return nil
}

type stubRestaurantRepo struct {
	restaurants map[int64]domain.Restaurant
	nextID      int64
}

func newStubRestaurantRepo() *stubRestaurantRepo {
	return &stubRestaurantRepo{restaurants: make(map[int64]domain.Restaurant)}
}

func (r *stubRestaurantRepo) Create(_ context.Context, restaurant domain.Restaurant) (int64, error) {
	r.nextID++
	restaurant.ID = r.nextID
	r.restaurants[restaurant.ID] = restaurant
	return restaurant.ID, nil
}

func (r *stubRestaurantRepo) GetByID(_ context.Context, id int64) (*domain.Restaurant, error) {
	restaurant, ok := r.restaurants[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &restaurant, nil
}

func (r *stubRestaurantRepo) all() []domain.Restaurant {
	out := make([]domain.Restaurant, 0, len(r.restaurants))
	for _, restaurant := range r.restaurants {
		out = append(out, restaurant)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *stubRestaurantRepo) List(_ context.Context, filter domain.RestaurantFilter) ([]domain.Restaurant, int, error) {
	all := r.all()
	return all, len(all), nil
}

func (r *stubRestaurantRepo) ListByCreator(_ context.Context, username string) ([]domain.Restaurant, error) {
	var out []domain.Restaurant
	for _, restaurant := range r.all() {
		if restaurant.CreatedByUsername == username {
			out = append(out, restaurant)
		}
	}
	return out, nil
}

func (r *stubRestaurantRepo) ListPopular(_ context.Context, limit int) ([]domain.Restaurant, error) {
	return r.all(), nil
}

func (r *stubRestaurantRepo) ListLatest(_ context.Context, limit int) ([]domain.Restaurant, error) {
	return r.all(), nil
}

func (r *stubRestaurantRepo) Update(_ context.Context, restaurant domain.Restaurant) error {
	if _, ok := r.restaurants[restaurant.ID]; !ok {
		return repository.ErrNotFound
	}
	r.restaurants[restaurant.ID] = restaurant
	return nil
}

func (r *stubRestaurantRepo) UpdateAverageRating(_ context.Context, id int64, rating float64) error {
	restaurant, ok := r.restaurants[id]
	if !ok {
		return repository.ErrNotFound
	}
	restaurant.AverageRating = rating
	r.restaurants[id] = restaurant
	return nil
}

func (r *stubRestaurantRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.restaurants[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.restaurants, id)
	return nil
}

type stubReviewRepo struct {
	reviews map[int64]domain.Review
	likes   *stubLikeRepo
	nextID  int64
}

func newStubReviewRepo(likes *stubLikeRepo) *stubReviewRepo {
	return &stubReviewRepo{reviews: make(map[int64]domain.Review), likes: likes}
}

func (r *stubReviewRepo) Create(_ context.Context, review domain.Review) (int64, error) {
	r.nextID++
	review.ID = r.nextID
	r.reviews[review.ID] = review
	return review.ID, nil
}

func (r *stubReviewRepo) withLikes(review domain.Review) domain.Review {
	review.Likes = nil
	if r.likes != nil {
		for _, like := range r.likes.likes {
			if like.ReviewID == review.ID {
				review.Likes = append(review.Likes, like)
			}
		}
	}
	return review
}

func (r *stubReviewRepo) GetByID(_ context.Context, id int64) (*domain.Review, error) {
	review, ok := r.reviews[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	loaded := r.withLikes(review)
	return &loaded, nil
}

func (r *stubReviewRepo) list(match func(domain.Review) bool) []domain.Review {
	var out []domain.Review
	for _, review := range r.reviews {
		if match(review) {
			out = append(out, r.withLikes(review))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *stubReviewRepo) ListByRestaurant(_ context.Context, restaurantID int64) ([]domain.Review, error) {
	return r.list(func(review domain.Review) bool { return review.RestaurantID == restaurantID }), nil
}

func (r *stubReviewRepo) ListByUser(_ context.Context, userID int64) ([]domain.Review, error) {
	return r.list(func(review domain.Review) bool { return review.UserID == userID }), nil
}

func (r *stubReviewRepo) Update(_ context.Context, review domain.Review) error {
	if _, ok := r.reviews[review.ID]; !ok {
		return repository.ErrNotFound
	}
	review.Likes = nil
	r.reviews[review.ID] = review
	return nil
}

func (r *stubReviewRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.reviews[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.reviews, id)
	return nil
}

func (r *stubReviewRepo) DeleteByRestaurant(_ context.Context, restaurantID int64) error {
	for id, review := range r.reviews {
		if review.RestaurantID == restaurantID {
			delete(r.reviews, id)
		}
	}
	return nil
}

type stubLikeRepo struct {
	likes map[string]domain.ReviewLike
}

func newStubLikeRepo() *stubLikeRepo {
	return &stubLikeRepo{likes: make(map[string]domain.ReviewLike)}
}

func likeKey(userID, reviewID int64) string {
	return fmt.Sprintf("%d:%d", userID, reviewID)
}

func (r *stubLikeRepo) Add(_ context.Context, userID, reviewID int64) error {
	key := likeKey(userID, reviewID)
	if _, ok := r.likes[key]; ok {
		return repository.ErrDuplicate
	}
	r.likes[key] = domain.ReviewLike{UserID: userID, ReviewID: reviewID, CreatedAt: time.Now()}
	return nil
}

func (r *stubLikeRepo) Remove(_ context.Context, userID, reviewID int64) error {
	key := likeKey(userID, reviewID)
	if _, ok := r.likes[key]; !ok {
		return repository.ErrNotFound
	}
	delete(r.likes, key)
	return nil
}

func (r *stubLikeRepo) Exists(_ context.Context, userID, reviewID int64) (bool, error) {
	_, ok := r.likes[likeKey(userID, reviewID)]
	return ok, nil
}

func (r *stubLikeRepo) CountByReview(_ context.Context, reviewID int64) (int64, error) {
	var count int64
	for _, like := range r.likes {
		if like.ReviewID == reviewID {
			count++
		}
	}
	return count, nil
}

func (r *stubLikeRepo) RemoveByReview(_ context.Context, reviewID int64) error {
	for key, like := range r.likes {
		if like.ReviewID == reviewID {
			delete(r.likes, key)
		}
	}
	return nil
}

type stubFavoriteRepo struct {
	favorites   map[string]domain.Favorite
	restaurants *stubRestaurantRepo
}

func newStubFavoriteRepo(restaurants *stubRestaurantRepo) *stubFavoriteRepo {
	return &stubFavoriteRepo{favorites: make(map[string]domain.Favorite), restaurants: restaurants}
}

func favoriteKey(userID, restaurantID int64) string {
	return fmt.Sprintf("%d:%d", userID, restaurantID)
}

func (r *stubFavoriteRepo) Add(_ context.Context, userID, restaurantID int64) error {
	key := favoriteKey(userID, restaurantID)
	if _, ok := r.favorites[key]; ok {
		return repository.ErrDuplicate
	}
	r.favorites[key] = domain.Favorite{UserID: userID, RestaurantID: restaurantID, CreatedAt: time.Now()}
	return nil
}

func (r *stubFavoriteRepo) Remove(_ context.Context, userID, restaurantID int64) error {
	key := favoriteKey(userID, restaurantID)
	if _, ok := r.favorites[key]; !ok {
		return repository.ErrNotFound
	}
	delete(r.favorites, key)
	return nil
}

func (r *stubFavoriteRepo) Exists(_ context.Context, userID, restaurantID int64) (bool, error) {
	_, ok := r.favorites[favoriteKey(userID, restaurantID)]
	return ok, nil
}

func (r *stubFavoriteRepo) ListRestaurants(_ context.Context, userID int64) ([]domain.Restaurant, error) {
	var out []domain.Restaurant
	for _, favorite := range r.favorites {
		if favorite.UserID != userID {
			continue
		}
		if restaurant, ok := r.restaurants.restaurants[favorite.RestaurantID]; ok {
			out = append(out, restaurant)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *stubFavoriteRepo) RemoveByRestaurant(_ context.Context, restaurantID int64) error {
	for key, favorite := range r.favorites {
		if favorite.RestaurantID == restaurantID {
			delete(r.favorites, key)
		}
	}
	return nil
}

type stubRatingCache struct {
	ratings map[int64]float64
}

func newStubRatingCache() *stubRatingCache {
	return &stubRatingCache{ratings: make(map[int64]float64)}
}

func (c *stubRatingCache) SetAverageRating(_ context.Context, restaurantID int64, rating float64) error {
	c.ratings[restaurantID] = rating
	return nil
}

func (c *stubRatingCache) GetAverageRating(_ context.Context, restaurantID int64) (float64, bool, error) {
	rating, ok := c.ratings[restaurantID]
	return rating, ok, nil
}

func (c *stubRatingCache) Invalidate(_ context.Context, restaurantID int64) error {
	delete(c.ratings, restaurantID)
	return nil
}

type stubBlobStore struct {
	objects map[string][]byte
}

func newStubBlobStore() *stubBlobStore {
	return &stubBlobStore{objects: make(map[string][]byte)}
}

func (s *stubBlobStore) Upload(_ context.Context, objectName, _ string, data []byte) (string, error) {
	s.objects[objectName] = data
	return "https://blobs.test/" + objectName, nil
}

func (s *stubBlobStore) Download(_ context.Context, objectName string) ([]byte, string, error) {
	data, ok := s.objects[objectName]
	if !ok {
		return nil, "", errors.New("object not found")
	}
	return data, "image/jpeg", nil
}

func (s *stubBlobStore) Delete(_ context.Context, url string) error {
	for name := range s.objects {
		if "https://blobs.test/"+name == url {
			delete(s.objects, name)
			return nil
		}
	}
	return nil
}
