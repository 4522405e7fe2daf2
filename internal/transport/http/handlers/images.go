package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/plateful/restaurant-review-api/internal/usecase"
)

// ImageHandler exposes the standalone image endpoints used by clients
// that upload images ahead of creating the owning entity.
type ImageHandler struct {
	images *usecase.ImageService
}

func NewImageHandler(images *usecase.ImageService) *ImageHandler {
	return &ImageHandler{images: images}
}

// RegisterRoutes binds image endpoints. Stored objects carry a folder
// prefix in their name, so download and delete take a wildcard.
func (h *ImageHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/upload", h.Upload)
	r.GET("/*name", h.Download)
	r.DELETE("/*name", h.Delete)
}

func (h *ImageHandler) Upload(c *gin.Context) {
	image, err := imageFromForm(c, "file")
	if err != nil {
		RespondWithError(c, http.StatusBadRequest, "invalid file part")
		return
	}
	if image == nil {
		RespondWithError(c, http.StatusBadRequest, "missing file part")
		return
	}

	url, err := h.images.Upload(c.Request.Context(), "uploads", image.ContentType, image.Data)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrInvalidImage, Status: http.StatusBadRequest, Message: "invalid image"},
		}, http.StatusInternalServerError, "failed to upload image")
		return
	}

	c.JSON(http.StatusOK, ImageURLResponse{URL: url})
}

func (h *ImageHandler) Download(c *gin.Context) {
	name := objectName(c)
	if name == "" {
		RespondWithError(c, http.StatusBadRequest, "missing image name")
		return
	}

	data, contentType, err := h.images.Fetch(c.Request.Context(), name)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrImageNotFound, Status: http.StatusNotFound, Message: "image not found"},
		}, http.StatusInternalServerError, "failed to load image")
		return
	}

	if contentType == "" {
		contentType = "image/jpeg"
	}
	c.Data(http.StatusOK, contentType, data)
}

func (h *ImageHandler) Delete(c *gin.Context) {
	name := objectName(c)
	if name == "" {
		RespondWithError(c, http.StatusBadRequest, "missing image name")
		return
	}

	if err := h.images.Delete(c.Request.Context(), name); err != nil {
		RespondWithError(c, http.StatusInternalServerError, "failed to delete image")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "image deleted"})
}

func objectName(c *gin.Context) string {
	return strings.Trim(c.Param("name"), "/")
}
