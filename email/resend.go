package email

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/flokiorg/lokirent/logger"
	"github.com/flokiorg/lokirent/pkg/version"
)

type resendClient struct {
	apiUrl string
	apiKey string
	client *http.Client
}

func NewResendClient(apiUrl string, apiKey string, timeout time.Duration) (*resendClient, error) {
	if apiKey == "" {
		return nil, errors.New("resend api key is required")
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &resendClient{
		apiUrl: strings.TrimSuffix(apiUrl, "/"),
		apiKey: apiKey,
		client: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

type sendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Html    string   `json:"html,omitempty"`
	Text    string   `json:"text,omitempty"`
	ReplyTo string   `json:"reply_to,omitempty"`
}

func (c *resendClient) Send(ctx context.Context, msg Message) (string, error) {
	payloadBytes, err := json.Marshal(sendRequest{
		From:    msg.From,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Html:    msg.Html,
		Text:    msg.Text,
		ReplyTo: msg.ReplyTo,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiUrl+"/emails", bytes.NewReader(payloadBytes))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("User-Agent", version.UserAgent())

	res, err := c.client.Do(req)
	if err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to call resend API")
		return "", err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, 1024*1024))
	if err != nil {
		return "", fmt.Errorf("failed to read resend response body: %w", err)
	}

	if res.StatusCode >= 400 {
		logger.Logger.Error().
			Int("statusCode", res.StatusCode).
			Str("body", string(body)).
			Msg("resend API returned non-success code")
		return "", fmt.Errorf("resend API error (%d): %s", res.StatusCode, string(body))
	}

	var response struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return "", fmt.Errorf("failed to deserialize resend response: %w", err)
	}
	return response.ID, nil
}
