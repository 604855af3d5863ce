package lnclient

import (
	"context"
)

// Invoice is a payable Lightning invoice issued by the payment provider.
type Invoice struct {
	ID     string
	Text   string // bolt11
	Hash   string // settlement hash, may be empty
	Amount uint64
}

type LNClient interface {
	// CreateInvoice requests an invoice for amountSats. The provider calls
	// callbackUrl on settlement and echoes secret in the payload.
	CreateInvoice(ctx context.Context, amountSats uint64, callbackUrl string, secret string) (*Invoice, error)
}

// PaymentWebhook is the settlement notification posted by the provider.
type PaymentWebhook struct {
	ID        string `json:"id,omitempty"`
	Amount    int64  `json:"amount,omitempty"`
	Hash      string `json:"hash"`
	Confirmed bool   `json:"confirmed"`
	Secret    string `json:"secret"`
}

// Actionable reports whether the payload carries everything needed to match
// an order. Anything else is acknowledged and ignored.
func (p *PaymentWebhook) Actionable() bool {
	return p != nil && p.Confirmed && p.Secret != "" && p.Hash != ""
}
