package coinos

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

	"github.com/flokiorg/lokirent/lnclient"
	"github.com/flokiorg/lokirent/logger"
	"github.com/flokiorg/lokirent/pkg/version"
)

type coinosClient struct {
	apiUrl   string
	apiToken string
	client   *http.Client
}

func NewCoinosClient(apiUrl string, apiToken string, timeout time.Duration) (*coinosClient, error) {
	if apiToken == "" {
		return nil, errors.New("coinos api token is required")
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &coinosClient{
		apiUrl:   strings.TrimSuffix(apiUrl, "/"),
		apiToken: apiToken,
		client: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

type createInvoiceRequest struct {
	Invoice invoiceRequest `json:"invoice"`
}

type invoiceRequest struct {
	Amount  uint64 `json:"amount"`
	Type    string `json:"type"`
	Webhook string `json:"webhook"`
	Secret  string `json:"secret"`
}

type invoiceResponse struct {
	ID     string `json:"id"`
	Amount uint64 `json:"amount"`
	Text   string `json:"text"`
	Hash   string `json:"hash"`
}

func (c *coinosClient) CreateInvoice(ctx context.Context, amountSats uint64, callbackUrl string, secret string) (*lnclient.Invoice, error) {
	payloadBytes, err := json.Marshal(createInvoiceRequest{
		Invoice: invoiceRequest{
			Amount:  amountSats,
			Type:    "lightning",
			Webhook: callbackUrl,
			Secret:  secret,
		},
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiUrl+"/invoice", bytes.NewReader(payloadBytes))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiToken)
	req.Header.Set("User-Agent", version.UserAgent())

	res, err := c.client.Do(req)
	if err != nil {
		logger.Logger.Error().Err(err).Uint64("amount", amountSats).Msg("Failed to request coinos invoice")
		return nil, err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, 1024*1024))
	if err != nil {
		return nil, fmt.Errorf("failed to read coinos response body: %w", err)
	}

	if res.StatusCode != http.StatusOK {
		logger.Logger.Error().
			Int("statusCode", res.StatusCode).
			Str("body", string(body)).
			Msg("coinos invoice endpoint returned non-success code")
		return nil, fmt.Errorf("coinos API error (%d): %s", res.StatusCode, string(body))
	}

	var invoice invoiceResponse
	if err := json.Unmarshal(body, &invoice); err != nil {
		return nil, fmt.Errorf("failed to deserialize coinos invoice: %w", err)
	}
	if invoice.Text == "" {
		return nil, errors.New("coinos returned an invoice without payment request")
	}

	return &lnclient.Invoice{
		ID:     invoice.ID,
		Text:   invoice.Text,
		Hash:   invoice.Hash,
		Amount: invoice.Amount,
	}, nil
}
