package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/tabletop/backend/internal/logging"
	"github.com/tabletop/backend/internal/models"
	"github.com/tabletop/backend/internal/services"
)

type ContactHandler struct {
	contacts services.ContactService
	captcha  services.CaptchaVerifier
	notifier services.ContactNotifier
}

// NewContactHandler takes a nil captcha when no reCAPTCHA secret is set and a
// nil notifier when mail forwarding is off.
func NewContactHandler(contacts services.ContactService, captcha services.CaptchaVerifier, notifier services.ContactNotifier) *ContactHandler {
	return &ContactHandler{
		contacts: contacts,
		captcha:  captcha,
		notifier: notifier,
	}
}

func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req models.ContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Invalid request body"))
		return
	}

	if errors := req.Validate(h.captcha != nil); len(errors) > 0 {
		writeJSON(w, http.StatusBadRequest, models.NewValidationErrorResponse(errors))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), outboundTimeout)
	defer cancel()
	logger := logging.FromContext(ctx)

	if h.captcha != nil {
		remoteIP := clientIP(r)
		ok, reason, err := h.captcha.Verify(ctx, req.RecaptchaToken, remoteIP)
		if err != nil {
			writeServerError(w, r, err, "Failed to verify reCAPTCHA")
			return
		}
		if !ok {
			logger.Info().Str("ip", remoteIP).Str("reason", reason).Msg("recaptcha failed")
			writeJSON(w, http.StatusForbidden, models.NewErrorResponse("reCAPTCHA verification failed"))
			return
		}
	}

	msg, err := h.contacts.Save(ctx, &req)
	if err != nil {
		writeServerError(w, r, err, "Failed to send message")
		return
	}

	if h.notifier != nil {
		if err := h.notifier.NotifyContact(ctx, msg); err != nil {
			logger.Error().Err(err).Str("contact_id", msg.ID).Msg("contact mail forward failed")
		}
	}

	writeJSON(w, http.StatusCreated, models.NewSuccessResponse(map[string]string{"id": msg.ID}))
}
