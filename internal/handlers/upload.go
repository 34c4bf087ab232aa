package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/tabletop/backend/internal/models"
	"github.com/tabletop/backend/internal/services"
)

// multipartSlack covers the form framing around the file itself.
const multipartSlack = 1 << 20

// readImageField parses a multipart body of at most maxBytes and opens its
// "image" field. It writes the 400 itself and reports false on failure.
func readImageField(w http.ResponseWriter, r *http.Request, maxBytes int64) (multipart.File, *multipart.FileHeader, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes+multipartSlack)
	if err := r.ParseMultipartForm(maxBytes + multipartSlack); err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("File too large or invalid form data"))
		return nil, nil, false
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("No image file provided"))
		return nil, nil, false
	}
	return file, header, true
}

// writeUploadError maps image service errors. allowed names the accepted formats.
func writeUploadError(w http.ResponseWriter, r *http.Request, err error, allowed, tooLarge string) {
	switch {
	case errors.Is(err, services.ErrInvalidImage):
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Invalid image type. Allowed: "+allowed))
	case errors.Is(err, services.ErrImageTooLarge):
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse(tooLarge))
	case errors.Is(err, services.ErrImageRejected):
		writeJSON(w, http.StatusUnprocessableEntity, models.NewErrorResponse("Image rejected: violates community guidelines"))
	default:
		writeServerError(w, r, err, "Failed to upload image")
	}
}
