package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/tabletop/backend/internal/models"
	"github.com/tabletop/backend/internal/services"
)

type ImageHandler struct {
	images    *services.ImageService
	maxSizeMB int64
}

func NewImageHandler(images *services.ImageService, maxSizeMB int64) *ImageHandler {
	return &ImageHandler{
		images:    images,
		maxSizeMB: maxSizeMB,
	}
}

// Upload stores a game image taken from the multipart field "image".
func (h *ImageHandler) Upload(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	file, header, ok := readImageField(w, r, h.maxSizeMB<<20)
	if !ok {
		return
	}
	defer file.Close()

	ctx, cancel := context.WithTimeout(r.Context(), outboundTimeout)
	defer cancel()

	resp, err := h.images.UploadGameImage(ctx, identity.UserID, services.ImageUpload{
		Filename: header.Filename,
		Size:     header.Size,
		Body:     file,
	})
	if err != nil {
		writeUploadError(w, r, err, "JPEG, PNG, GIF, WebP", fmt.Sprintf("Image must be %dMB or smaller", h.maxSizeMB))
		return
	}

	writeJSON(w, http.StatusCreated, models.NewSuccessResponse(resp))
}
