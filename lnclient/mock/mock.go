// Package mock issues fake invoices for deployments running with MOCK_PAYMENT.
package mock

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/flokiorg/lokirent/lnclient"
)

type mockClient struct {
	counter atomic.Uint64
}

func NewMockClient() *mockClient {
	return &mockClient{}
}

func (c *mockClient) CreateInvoice(ctx context.Context, amountSats uint64, callbackUrl string, secret string) (*lnclient.Invoice, error) {
	id := fmt.Sprintf("%x%04x", time.Now().UnixMilli(), c.counter.Add(1))
	return &lnclient.Invoice{
		ID:     "mock_inv_" + id,
		Text:   fmt.Sprintf("lnbc%dn1mock_invoice_for_testing", amountSats),
		Hash:   "mock_hash_" + id,
		Amount: amountSats,
	}, nil
}
