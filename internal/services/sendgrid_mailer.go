package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/tabletop/backend/internal/models"
)

const sendGridEndpoint = "https://api.sendgrid.com/v3/mail/send"

// ContactNotifier forwards a saved contact message to the site owners.
type ContactNotifier interface {
	NotifyContact(ctx context.Context, msg *models.ContactMessage) error
}

type SendGridMailer struct {
	APIKey     string
	FromEmail  string
	ToEmail    string
	Endpoint   string
	HTTPClient *http.Client
}

func NewSendGridMailer(apiKey, fromEmail, toEmail string) *SendGridMailer {
	return &SendGridMailer{
		APIKey:     strings.TrimSpace(apiKey),
		FromEmail:  strings.TrimSpace(fromEmail),
		ToEmail:    strings.TrimSpace(toEmail),
		Endpoint:   sendGridEndpoint,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type sendGridAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type sendGridContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type sendGridPersonalization struct {
	To         []sendGridAddress `json:"to"`
	Subject    string            `json:"subject"`
	CustomArgs map[string]string `json:"custom_args,omitempty"`
}

type sendGridRequest struct {
	Personalizations []sendGridPersonalization `json:"personalizations"`
	From             sendGridAddress           `json:"from"`
	ReplyTo          *sendGridAddress          `json:"reply_to,omitempty"`
	Content          []sendGridContent         `json:"content"`
}

func (m *SendGridMailer) NotifyContact(ctx context.Context, msg *models.ContactMessage) error {
	switch {
	case m.APIKey == "":
		return fmt.Errorf("missing SENDGRID_API_KEY")
	case m.FromEmail == "":
		return fmt.Errorf("missing CONTACT_FROM_EMAIL")
	case m.ToEmail == "":
		return fmt.Errorf("missing CONTACT_TO_EMAIL")
	}

	plain := fmt.Sprintf(
		"Contact message %s\nFrom: %s <%s>\nReceived: %s\n\n%s\n",
		msg.ID,
		msg.Name,
		msg.Email,
		msg.CreatedAt.Format(time.RFC3339),
		msg.Message,
	)

	body, err := json.Marshal(sendGridRequest{
		Personalizations: []sendGridPersonalization{{
			To:         []sendGridAddress{{Email: m.ToEmail}},
			Subject:    "Contact form: " + msg.Name,
			CustomArgs: map[string]string{"contact_id": msg.ID},
		}},
		From:    sendGridAddress{Email: m.FromEmail, Name: "Tabletop Contact Form"},
		ReplyTo: &sendGridAddress{Email: msg.Email, Name: msg.Name},
		Content: []sendGridContent{{Type: "text/plain", Value: plain}},
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.Endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+m.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	// 202 Accepted on success.
	if resp.StatusCode != http.StatusAccepted {
		return fmt.Errorf("sendgrid mail send http %d", resp.StatusCode)
	}
	return nil
}
