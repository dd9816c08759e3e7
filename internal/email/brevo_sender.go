package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// BrevoSender envia correos transaccionales via la API HTTP de Brevo.
type BrevoSender struct {
	baseURL  string
	apiKey   string
	from     string
	fromName string
	client   *http.Client
}

func NewBrevoSender(baseURL, apiKey, from, fromName string) (*BrevoSender, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("brevo api key is required")
	}
	if strings.TrimSpace(from) == "" {
		return nil, fmt.Errorf("brevo sender email is required")
	}
	if baseURL == "" {
		baseURL = "https://api.brevo.com/v3"
	}
	return &BrevoSender{
		baseURL:  strings.TrimRight(baseURL, "/"),
		apiKey:   apiKey,
		from:     from,
		fromName: fromName,
		client:   &http.Client{Timeout: 15 * time.Second},
	}, nil
}

func (s *BrevoSender) Send(ctx context.Context, toEmail, subject, htmlBody string) error {
	if strings.TrimSpace(toEmail) == "" {
		return fmt.Errorf("to email is required")
	}

	reqBody := brevoRequest{
		Sender:      brevoContact{Name: s.fromName, Email: s.from},
		To:          []brevoContact{{Email: toEmail}},
		Subject:     subject,
		HTMLContent: htmlBody,
	}
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/smtp/email", bytes.NewReader(bodyBytes))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("api-key", s.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var apiErr brevoError
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Message != "" {
			return fmt.Errorf("brevo api error: status=%d: %s", resp.StatusCode, apiErr.Message)
		}
		return fmt.Errorf("brevo http error: status=%d", resp.StatusCode)
	}

	var br brevoResponse
	if err := json.Unmarshal(respBody, &br); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	if br.MessageID == "" {
		return fmt.Errorf("brevo empty message id")
	}
	return nil
}

type brevoContact struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

type brevoRequest struct {
	Sender      brevoContact   `json:"sender"`
	To          []brevoContact `json:"to"`
	Subject     string         `json:"subject"`
	HTMLContent string         `json:"htmlContent"`
}

type brevoResponse struct {
	MessageID string `json:"messageId"`
}

type brevoError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
