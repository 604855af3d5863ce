package models

import "time"

// Order is stored at orders/{order_id}. Orders are never deleted.
type Order struct {
	OrderID           string           `json:"order_id"`
	Username          string           `json:"username"`
	Plan              Plan             `json:"plan"`
	AmountSats        uint64           `json:"amount_sats"`
	Bolt11            string           `json:"bolt11"`
	Status            OrderStatus      `json:"status"`
	CreatedAt         Timestamp        `json:"created_at"`
	ExpiresAt         Timestamp        `json:"expires_at"`
	CoinosInvoiceHash *string          `json:"coinos_invoice_hash,omitempty"`
	WebhookSecret     *string          `json:"webhook_secret,omitempty"`
	WebhookChallenge  *string          `json:"webhook_challenge,omitempty"`
	ServicesRequested *ServicesRequest `json:"services_requested,omitempty"`
	ManagementToken   *string          `json:"management_token,omitempty"`
	RenewalFor        *string          `json:"renewal_for,omitempty"`
	WebhookUrl        *string          `json:"webhook_url,omitempty"`
}

func (o *Order) IsRenewal() bool {
	return o.RenewalFor != nil && *o.RenewalFor != ""
}

// Expired reports whether the invoice validity window has passed at now.
func (o *Order) Expired(now time.Time) bool {
	return !now.Before(o.ExpiresAt.Time)
}

// ServicesRequest holds the payloads a buyer asked for. A nil entry means
// the service was not requested.
type ServicesRequest struct {
	Email     *EmailRequest     `json:"email,omitempty"`
	Subdomain *SubdomainRequest `json:"subdomain,omitempty"`
	Nip05     *Nip05Request     `json:"nip05,omitempty"`
}

type EmailRequest struct {
	ForwardTo string `json:"forward_to"`
}

type SubdomainRequest struct {
	RecordType string `json:"type"`
	Target     string `json:"target"`
	Proxied    bool   `json:"proxied"`
}

type Nip05Request struct {
	Pubkey string   `json:"pubkey"`
	Relays []string `json:"relays,omitempty"`
}

// Kinds lists the requested service kinds in a stable order.
func (r *ServicesRequest) Kinds() []ServiceKind {
	if r == nil {
		return nil
	}
	var kinds []ServiceKind
	if r.Subdomain != nil {
		kinds = append(kinds, ServiceSubdomain)
	}
	if r.Email != nil {
		kinds = append(kinds, ServiceEmail)
	}
	if r.Nip05 != nil {
		kinds = append(kinds, ServiceNip05)
	}
	return kinds
}

func (r *ServicesRequest) Empty() bool {
	return len(r.Kinds()) == 0
}
