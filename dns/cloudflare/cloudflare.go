package cloudflare

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/flokiorg/lokirent/constants"
	"github.com/flokiorg/lokirent/dns"
	"github.com/flokiorg/lokirent/logger"
	"github.com/flokiorg/lokirent/pkg/version"
)

type cloudflareClient struct {
	apiUrl   string
	apiToken string
	client   *http.Client
}

func NewCloudflareClient(apiUrl string, apiToken string, timeout time.Duration) (*cloudflareClient, error) {
	if apiToken == "" {
		return nil, errors.New("cloudflare api token is required")
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &cloudflareClient{
		apiUrl:   strings.TrimSuffix(apiUrl, "/"),
		apiToken: apiToken,
		client: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

type createRecordRequest struct {
	Type    string `json:"type"`
	Name    string `json:"name"`
	Content string `json:"content"`
	TTL     int    `json:"ttl"`
	Proxied bool   `json:"proxied"`
	Comment string `json:"comment"`
}

type updateRecordRequest struct {
	Content string `json:"content"`
}

type apiResponse struct {
	Success bool `json:"success"`
	Result  *struct {
		ID string `json:"id"`
	} `json:"result"`
	Errors []struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"errors"`
}

func (r *apiResponse) errorMessage() string {
	if len(r.Errors) == 0 {
		return "Unknown error"
	}
	messages := make([]string, 0, len(r.Errors))
	for _, apiErr := range r.Errors {
		messages = append(messages, apiErr.Message)
	}
	return strings.Join(messages, ", ")
}

func (c *cloudflareClient) CreateRecord(ctx context.Context, record dns.Record) (string, error) {
	response, err := c.do(ctx, http.MethodPost, c.recordsUrl(record.Zone), createRecordRequest{
		Type:    record.Type,
		Name:    record.Name,
		Content: record.Content,
		TTL:     constants.DNS_RECORD_TTL,
		Proxied: record.Proxied,
		Comment: record.Comment,
	})
	if err != nil {
		return "", err
	}
	if response.Result == nil || response.Result.ID == "" {
		return "", errors.New("no record ID in cloudflare response")
	}

	logger.Logger.Info().
		Str("name", record.Name).
		Str("type", record.Type).
		Str("record_id", response.Result.ID).
		Msg("Created DNS record")
	return response.Result.ID, nil
}

func (c *cloudflareClient) UpdateRecord(ctx context.Context, zone string, recordID string, content string) error {
	_, err := c.do(ctx, http.MethodPatch, c.recordsUrl(zone)+"/"+url.PathEscape(recordID), updateRecordRequest{
		Content: content,
	})
	return err
}

func (c *cloudflareClient) DeleteRecord(ctx context.Context, zone string, recordID string) error {
	_, err := c.do(ctx, http.MethodDelete, c.recordsUrl(zone)+"/"+url.PathEscape(recordID), nil)
	if err == nil {
		logger.Logger.Info().Str("record_id", recordID).Msg("Deleted DNS record")
	}
	return err
}

func (c *cloudflareClient) recordsUrl(zone string) string {
	return fmt.Sprintf("%s/zones/%s/dns_records", c.apiUrl, url.PathEscape(zone))
}

func (c *cloudflareClient) do(ctx context.Context, method string, endpoint string, payload interface{}) (*apiResponse, error) {
	var body io.Reader
	if payload != nil {
		payloadBytes, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(payloadBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+c.apiToken)
	req.Header.Set("User-Agent", version.UserAgent())

	res, err := c.client.Do(req)
	if err != nil {
		logger.Logger.Error().Err(err).Str("method", method).Msg("Failed to call cloudflare API")
		return nil, err
	}
	defer res.Body.Close()

	resBody, err := io.ReadAll(io.LimitReader(res.Body, 1024*1024))
	if err != nil {
		return nil, fmt.Errorf("failed to read cloudflare response body: %w", err)
	}

	if res.StatusCode != http.StatusOK {
		logger.Logger.Error().
			Str("method", method).
			Int("statusCode", res.StatusCode).
			Str("body", string(resBody)).
			Msg("cloudflare API returned non-success code")
		return nil, fmt.Errorf("cloudflare DNS API error (%d): %s", res.StatusCode, string(resBody))
	}

	var response apiResponse
	if err := json.Unmarshal(resBody, &response); err != nil {
		return nil, fmt.Errorf("failed to deserialize cloudflare response: %w", err)
	}
	if !response.Success {
		return nil, fmt.Errorf("cloudflare DNS error: %s", response.errorMessage())
	}
	return &response, nil
}
