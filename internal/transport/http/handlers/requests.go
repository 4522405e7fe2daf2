package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/plateful/restaurant-review-api/internal/transport/http/middleware"
	"github.com/plateful/restaurant-review-api/internal/usecase"
)

// pathID extracts a numeric path parameter. A second return of false
// means a 400 response has already been written.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		RespondWithError(c, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return id, true
}

// viewerID returns the authenticated user's ID, or nil for anonymous
// requests on public routes.
func viewerID(c *gin.Context) *int64 {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		return nil
	}
	id := principal.UserID
	return &id
}

// imageFromForm reads an optional multipart image part. A missing part
// is not an error.
func imageFromForm(c *gin.Context, field string) (*usecase.ImageUpload, error) {
	fileHeader, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, err
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}

	return &usecase.ImageUpload{
		ContentType: fileHeader.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}
