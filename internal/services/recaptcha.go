package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const recaptchaEndpoint = "https://www.google.com/recaptcha/api/siteverify"

// CaptchaVerifier checks a client-side challenge token. A failed challenge is
// reported as ok=false with a reason, not as an error.
type CaptchaVerifier interface {
	Verify(ctx context.Context, token, remoteIP string) (ok bool, reason string, err error)
}

// RecaptchaVerifier checks reCAPTCHA v2 checkbox tokens. When Hostname is set,
// tokens solved on any other site are refused.
type RecaptchaVerifier struct {
	Secret     string
	Hostname   string
	Endpoint   string
	HTTPClient *http.Client
}

type siteVerifyResult struct {
	Success     bool      `json:"success"`
	ChallengeTS time.Time `json:"challenge_ts"`
	Hostname    string    `json:"hostname"`
	ErrorCodes  []string  `json:"error-codes"`
}

func NewRecaptchaVerifier(secret string) *RecaptchaVerifier {
	return &RecaptchaVerifier{
		Secret:     strings.TrimSpace(secret),
		Endpoint:   recaptchaEndpoint,
		HTTPClient: &http.Client{Timeout: 8 * time.Second},
	}
}

func (v *RecaptchaVerifier) Verify(ctx context.Context, token, remoteIP string) (bool, string, error) {
	if v.Secret == "" {
		return false, "missing_secret", nil
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return false, "missing_token", nil
	}

	result, err := v.siteVerify(ctx, token, strings.TrimSpace(remoteIP))
	if err != nil {
		return false, "", err
	}

	switch {
	case !result.Success && len(result.ErrorCodes) > 0:
		return false, strings.Join(result.ErrorCodes, ","), nil
	case !result.Success:
		return false, "verification_failed", nil
	case v.Hostname != "" && !strings.EqualFold(result.Hostname, v.Hostname):
		return false, "hostname_mismatch", nil
	}
	return true, "", nil
}

func (v *RecaptchaVerifier) siteVerify(ctx context.Context, token, remoteIP string) (*siteVerifyResult, error) {
	form := url.Values{
		"secret":   {v.Secret},
		"response": {token},
	}
	if remoteIP != "" {
		form.Set("remoteip", remoteIP)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.Endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("recaptcha request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("recaptcha verify: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("recaptcha verify: http %d", resp.StatusCode)
	}

	var result siteVerifyResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("recaptcha verify: decode: %w", err)
	}
	return &result, nil
}
