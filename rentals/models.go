package rentals

import (
	"github.com/flokiorg/lokirent/models"
)

type ListRentalsParams struct {
	Page   int
	Limit  int
	Status string
}

type RentalEntry struct {
	Username         string      `json:"username"`
	Status           string      `json:"status"`
	Plan             models.Plan `json:"plan"`
	CreatedAt        string      `json:"created_at"`
	ExpiresAt        string      `json:"expires_at"`
	MinutesRemaining int64       `json:"minutes_remaining"`
	HasEmail         bool        `json:"has_email"`
	HasSubdomain     bool        `json:"has_subdomain"`
	HasNip05         bool        `json:"has_nip05"`
}

type ListRentalsResponse struct {
	Rentals []RentalEntry `json:"rentals"`
	Total   int           `json:"total"`
	Page    int           `json:"page"`
	Limit   int           `json:"limit"`
}

type Stats struct {
	ActiveRentals    uint64 `json:"active_rentals"`
	ExpiredRentals   uint64 `json:"expired_rentals"`
	BannedUsers      uint64 `json:"banned_users"`
	ExpiringSoon     uint64 `json:"expiring_soon"`
	TotalRevenueSats uint64 `json:"total_revenue_sats"`
}

type SweepResult struct {
	Expired int `json:"expired"`
	Failed  int `json:"failed"`
}

// DirectProvisionRequest creates a rental without payment.
type DirectProvisionRequest struct {
	Username   string      `json:"username"`
	Service    string      `json:"service"`
	Plan       models.Plan `json:"plan"`
	Pubkey     *string     `json:"pubkey,omitempty"`
	DnsType    *string     `json:"dns_type,omitempty"`
	DnsValue   *string     `json:"dns_value,omitempty"`
	ForwardTo  *string     `json:"forward_to,omitempty"`
	WebhookUrl *string     `json:"webhook_url,omitempty"`
}

// UpdateSettingsRequest holds owner changes; nil fields are left untouched.
type UpdateSettingsRequest struct {
	WebhookUrl      *string   `json:"webhook_url,omitempty"`
	Nip05Relays     *[]string `json:"nip05_relays,omitempty"`
	SubdomainTarget *string   `json:"subdomain_target,omitempty"`
}
