package middleware

import (
	"net/http"
	"testing"
)

func TestPathClassifierSkip(t *testing.T) {
	classifier := NewPathClassifier()

	cases := []struct {
		name   string
		method string
		path   string
		skip   bool
	}{
		{"image asset any method", http.MethodPost, "/images/abc.png", true},
		{"login", http.MethodPost, "/users/login", true},
		{"register", http.MethodPost, "/users/register", true},

		{"restaurant collection", http.MethodGet, "/restaurants", true},
		{"popular listing", http.MethodGet, "/restaurants/popular", true},
		{"latest listing", http.MethodGet, "/restaurants/latest", true},
		{"restaurant review page", http.MethodGet, "/reviews/restaurant/7/page", true},
		{"favorite status", http.MethodGet, "/restaurants/12/favorite/status", true},

		{"restaurant detail requires auth", http.MethodGet, "/restaurants/42", false},
		{"favorites list requires auth", http.MethodGet, "/restaurants/favorites", false},
		{"favorite mutation requires auth", http.MethodPost, "/restaurants/1/favorite", false},
		{"user profile requires auth", http.MethodGet, "/users/5", false},
		{"user favorites requires auth", http.MethodGet, "/users/5/favorites", false},
		{"user reviews requires auth", http.MethodGet, "/users/5/reviews", false},
		{"user restaurants requires auth", http.MethodGet, "/users/5/restaurants", false},
		{"review creation requires auth", http.MethodPost, "/reviews/restaurant/7", false},
		{"review like requires auth", http.MethodPost, "/reviews/9/like", false},
		{"review unlike requires auth", http.MethodDelete, "/reviews/9/like", false},

		{"restaurant creation requires auth", http.MethodPost, "/restaurants", false},
		{"restaurant update requires auth", http.MethodPut, "/restaurants/3", false},
		{"review update requires auth", http.MethodPut, "/reviews/3", false},
		{"unknown path requires auth", http.MethodGet, "/admin/anything", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := classifier.Skip(tc.method, tc.path); got != tc.skip {
				t.Fatalf("Skip(%s %s) = %v, want %v", tc.method, tc.path, got, tc.skip)
			}
		})
	}
}

func TestPathClassifierIdempotent(t *testing.T) {
	classifier := NewPathClassifier()

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/restaurants"},
		{http.MethodGet, "/restaurants/42"},
		{http.MethodPost, "/reviews/9/like"},
	}

	for _, p := range paths {
		first := classifier.Skip(p.method, p.path)
		second := classifier.Skip(p.method, p.path)
		if first != second {
			t.Fatalf("Skip(%s %s) not stable: %v then %v", p.method, p.path, first, second)
		}
	}
}

func TestProtectedPatternsWinOverPublicPrefixes(t *testing.T) {
	classifier := NewPathClassifier()

	// Every protected pattern also textually matches a broader public
	// prefix for GET; the protected rule must still win.
	protected := []string{
		"/restaurants/favorites",
		"/restaurants/8/favorite",
		"/reviews/restaurant/8",
		"/users/8",
	}

	for _, path := range protected {
		if classifier.Skip(http.MethodGet, path) {
			t.Errorf("Skip(GET %s) = true, want auth required", path)
		}
	}
}
