package api

import (
	"context"

	"github.com/nbd-wtf/go-nostr"

	"github.com/flokiorg/lokirent/lnclient"
	"github.com/flokiorg/lokirent/models"
	"github.com/flokiorg/lokirent/nip05"
	"github.com/flokiorg/lokirent/orders"
	"github.com/flokiorg/lokirent/rentals"
)

type API interface {
	GetInfo(ctx context.Context) (*InfoResponse, error)
	Health(ctx context.Context) (*HealthResponse, error)
	GetLogOutput(ctx context.Context, getLogRequest *GetLogOutputRequest) (*GetLogOutputResponse, error)

	CheckUsername(ctx context.Context, username string) (*CheckUsernameResponse, error)
	GetPricing(ctx context.Context) (models.PricingTable, error)
	UpdatePricing(ctx context.Context, table models.PricingTable) (models.PricingTable, error)

	CreateOrder(ctx context.Context, createOrderRequest *orders.CreateOrderRequest) (*orders.CreateOrderResponse, error)
	ConfirmOrderChallenge(ctx context.Context, orderID string, challenge string) (*orders.InvoiceResponse, error)
	GetOrderStatus(ctx context.Context, orderID string) (*orders.OrderStatusResponse, error)
	HandlePaymentWebhook(ctx context.Context, payload *lnclient.PaymentWebhook) orders.WebhookResult
	RenewRental(ctx context.Context, renewRequest *orders.RenewRequest) (*RenewResponse, error)
	UpdateRentalSettings(ctx context.Context, managementToken string, updateSettingsRequest *rentals.UpdateSettingsRequest) (*RentalResponse, error)
	ResolveNip05(ctx context.Context, name string) (*nip05.Document, error)
	RelayInboundEmail(ctx context.Context, inboundEmail *rentals.InboundEmail) error

	CreateAdminChallenge(ctx context.Context) (*AdminChallengeResponse, error)
	VerifyAdminLogin(ctx context.Context, event *nostr.Event) error
	ListRentals(ctx context.Context, listRentalsRequest *ListRentalsRequest) (*rentals.ListRentalsResponse, error)
	GetStats(ctx context.Context) (*rentals.Stats, error)
	BanUser(ctx context.Context, username string, banRequest *BanRequest) error
	UnbanUser(ctx context.Context, username string) error
	ExtendRental(ctx context.Context, username string, extendRequest *ExtendRequest) error
	RevokeRental(ctx context.Context, username string) error
	DirectProvision(ctx context.Context, provisionRequest *rentals.DirectProvisionRequest) (*DirectProvisionResponse, error)
}

type InfoResponse struct {
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Version     string               `json:"version"`
	Domain      string               `json:"domain"`
	Plans       []models.Plan        `json:"plans"`
	Services    []models.ServiceKind `json:"services"`
	MockPayment bool                 `json:"mock_payment"`
	MockDNS     bool                 `json:"mock_dns"`
}

type HealthAlarmKind string

const (
	HealthAlarmKindStoreUnreachable HealthAlarmKind = "store_unreachable"
	HealthAlarmKindMockPayment      HealthAlarmKind = "mock_payment"
	HealthAlarmKindMockDNS          HealthAlarmKind = "mock_dns"
)

type HealthAlarm struct {
	Kind       HealthAlarmKind `json:"kind"`
	RawDetails any             `json:"raw_details,omitempty"`
}

func NewHealthAlarm(kind HealthAlarmKind, rawDetails any) HealthAlarm {
	return HealthAlarm{
		Kind:       kind,
		RawDetails: rawDetails,
	}
}

type HealthResponse struct {
	Status string        `json:"status"`
	Alarms []HealthAlarm `json:"alarms,omitempty"`
}

type GetLogOutputRequest struct {
	MaxLen int `query:"maxLen"`
}

type GetLogOutputResponse struct {
	Log string `json:"logs"`
}

type CheckUsernameResponse struct {
	Available bool    `json:"available"`
	Username  string  `json:"username"`
	Error     *string `json:"error,omitempty"`
}

type RenewResponse struct {
	OrderID    string `json:"order_id"`
	AmountSats uint64 `json:"amount_sats"`
	Bolt11     string `json:"bolt11"`
	ExpiresAt  string `json:"expires_at"`
}

// RentalResponse is the owner's view of a rental. The management token is never echoed.
type RentalResponse struct {
	Username   string                `json:"username"`
	Status     models.RentalStatus   `json:"status"`
	Plan       models.Plan           `json:"plan"`
	ExpiresAt  string                `json:"expires_at"`
	Services   models.RentalServices `json:"services"`
	WebhookUrl *string               `json:"webhook_url,omitempty"`
}

type AdminChallengeResponse struct {
	Challenge string `json:"challenge"`
}

type ListRentalsRequest struct {
	Page   int    `query:"page"`
	Limit  int    `query:"limit"`
	Status string `query:"status"`
}

type BanRequest struct {
	Reason *string `json:"reason"`
}

type ExtendRequest struct {
	Minutes uint64 `json:"minutes"`
}

type DirectProvisionResponse struct {
	Success         bool   `json:"success"`
	Username        string `json:"username"`
	ExpiresAt       string `json:"expires_at"`
	ManagementToken string `json:"management_token"`
}
