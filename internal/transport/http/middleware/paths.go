package middleware

import (
	"net/http"
	"regexp"
	"strings"
)

// protectedPatterns are full-path matches that always require
// authentication, regardless of method. They are checked before the
// GET heuristic so numeric-id personal resources stay protected even
// when a broader public prefix would textually match.
var protectedPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^/restaurants/favorites$`),
	regexp.MustCompile(`^/restaurants/\d+/favorite$`),
	regexp.MustCompile(`^/users/\d+$`),
	regexp.MustCompile(`^/users/\d+/(favorites|reviews|restaurants)$`),
	regexp.MustCompile(`^/reviews/restaurant/\d+$`),
	regexp.MustCompile(`^/reviews/\d+/like$`),
}

// restaurantDetailPattern identifies single-restaurant detail paths,
// which are excluded from the public GET heuristic.
var restaurantDetailPattern = regexp.MustCompile(`^/restaurants/\d+$`)

// PathClassifier decides, per (method, path), whether authentication
// is required. It is a pure function of its inputs; classifying the
// same request twice always yields the same decision.
type PathClassifier struct{}

// NewPathClassifier constructs a classifier.
func NewPathClassifier() PathClassifier {
	return PathClassifier{}
}

// Skip reports whether the request may bypass authentication
// entirely. Rules are evaluated in order; the first match wins:
//
//  1. Image asset paths are always public.
//  2. Login and registration are always public.
//  3. Explicitly protected patterns require auth regardless of method.
//  4. GET requests against collection and listing paths are public.
//  5. Everything else requires auth.
func (PathClassifier) Skip(method, path string) bool {
	if strings.HasPrefix(path, "/images/") {
		return true
	}

	if path == "/users/login" || path == "/users/register" {
		return true
	}

	for _, pattern := range protectedPatterns {
		if pattern.MatchString(path) {
			return false
		}
	}

	if method == http.MethodGet {
		if path == "/restaurants" {
			return true
		}
		if strings.HasPrefix(path, "/restaurants/") &&
			path != "/restaurants/favorites" &&
			!restaurantDetailPattern.MatchString(path) {
			return true
		}
		if strings.HasPrefix(path, "/reviews/restaurant/") {
			return true
		}
	}

	return false
}
