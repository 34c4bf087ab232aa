package models

import (
	"net/mail"
	"strings"
	"time"
)

type ContactMessage struct {
	ID        string    `json:"id" bson:"_id"`
	Name      string    `json:"name" bson:"name"`
	Email     string    `json:"email" bson:"email"`
	Message   string    `json:"message" bson:"message"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

type ContactRequest struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	Message        string `json:"message"`
	RecaptchaToken string `json:"recaptchaToken"`
}

func (r *ContactRequest) Validate(requireRecaptcha bool) map[string]string {
	errors := map[string]string{}

	name := strings.TrimSpace(r.Name)
	email := strings.TrimSpace(r.Email)
	msg := strings.TrimSpace(r.Message)

	if name == "" {
		errors["name"] = "Name is required"
	} else if len(name) > 120 {
		errors["name"] = "Name is too long"
	}

	if email == "" {
		errors["email"] = "Email is required"
	} else if len(email) > 254 {
		errors["email"] = "Email is too long"
	} else if _, err := mail.ParseAddress(email); err != nil {
		errors["email"] = "Invalid email format"
	}

	if msg == "" {
		errors["message"] = "Message is required"
	} else if len(msg) > 4000 {
		errors["message"] = "Message is too long"
	}

	if requireRecaptcha && strings.TrimSpace(r.RecaptchaToken) == "" {
		errors["recaptchaToken"] = "reCAPTCHA token is required"
	}

	return errors
}
