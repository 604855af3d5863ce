package models

import "time"

type ServiceKind string

const (
	ServiceSubdomain ServiceKind = "subdomain"
	ServiceEmail     ServiceKind = "email"
	ServiceNip05     ServiceKind = "nip05"
)

func GetServiceKinds() []ServiceKind {
	return []ServiceKind{ServiceSubdomain, ServiceEmail, ServiceNip05}
}

// Rental is stored at rentals/{username}.
type Rental struct {
	Username        string         `json:"username"`
	Status          RentalStatus   `json:"status"`
	CreatedAt       Timestamp      `json:"created_at"`
	ExpiresAt       Timestamp      `json:"expires_at"`
	Plan            Plan           `json:"plan"`
	Services        RentalServices `json:"services"`
	ManagementToken *string        `json:"management_token,omitempty"`
	WebhookUrl      *string        `json:"webhook_url,omitempty"`
}

// IsValidAt derives validity from both the stored status and the expiry
// instant, since the expiry sweep may lag behind.
func (r *Rental) IsValidAt(now time.Time) bool {
	return r.Status == RentalStatusActive && r.ExpiresAt.After(now)
}

type RentalServices struct {
	Email     *EmailService     `json:"email,omitempty"`
	Subdomain *SubdomainService `json:"subdomain,omitempty"`
	Nip05     *Nip05Service     `json:"nip05,omitempty"`
}

// EnabledKinds lists enabled services in a stable order.
func (s *RentalServices) EnabledKinds() []ServiceKind {
	var kinds []ServiceKind
	if s.Subdomain != nil && s.Subdomain.Enabled {
		kinds = append(kinds, ServiceSubdomain)
	}
	if s.Email != nil && s.Email.Enabled {
		kinds = append(kinds, ServiceEmail)
	}
	if s.Nip05 != nil && s.Nip05.Enabled {
		kinds = append(kinds, ServiceNip05)
	}
	return kinds
}

type SubdomainService struct {
	Enabled    bool    `json:"enabled"`
	RecordType string  `json:"type"`
	Target     string  `json:"target"`
	Proxied    bool    `json:"proxied"`
	CfRecordID *string `json:"cf_record_id,omitempty"`
}

type EmailService struct {
	Enabled   bool    `json:"enabled"`
	ForwardTo string  `json:"forward_to"`
	CfRuleID  *string `json:"cf_rule_id,omitempty"`
}

type Nip05Service struct {
	Enabled   bool     `json:"enabled"`
	PubkeyHex string   `json:"pubkey_hex"`
	Relays    []string `json:"relays"`
}

// BanRecord is stored at bans/{username}; its existence is the ban.
type BanRecord struct {
	Username string    `json:"username"`
	BannedAt Timestamp `json:"banned_at"`
	Reason   *string   `json:"reason"`
}

// AdminChallenge is stored at challenges/{challenge} while an admin login is pending.
type AdminChallenge struct {
	Challenge string    `json:"challenge"`
	CreatedAt Timestamp `json:"created_at"`
	ExpiresAt Timestamp `json:"expires_at"`
}
