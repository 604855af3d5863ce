package orders

import (
	"github.com/flokiorg/lokirent/models"
)

type CreateOrderRequest struct {
	Username   string                  `json:"username"`
	Plan       models.Plan             `json:"plan"`
	Services   *models.ServicesRequest `json:"services"`
	WebhookUrl string                  `json:"webhook_url"`
}

type CreateOrderResponse struct {
	OrderID    string `json:"order_id"`
	AmountSats uint64 `json:"amount_sats"`
	ExpiresAt  string `json:"expires_at"`
	Message    string `json:"message"`
}

// InvoiceResponse is returned once an invoice has been issued for an order.
type InvoiceResponse struct {
	OrderID         string             `json:"order_id"`
	Status          models.OrderStatus `json:"status"`
	AmountSats      uint64             `json:"amount_sats"`
	Bolt11          string             `json:"bolt11"`
	ExpiresAt       string             `json:"expires_at"`
	ManagementToken *string            `json:"management_token,omitempty"`
}

type RenewRequest struct {
	ManagementToken string                  `json:"management_token"`
	Plan            models.Plan             `json:"plan"`
	Services        *models.ServicesRequest `json:"services,omitempty"`
	WebhookUrl      *string                 `json:"webhook_url,omitempty"`
}

type OrderStatusResponse struct {
	OrderID         string             `json:"order_id"`
	Status          models.OrderStatus `json:"status"`
	Bolt11          string             `json:"bolt11,omitempty"`
	ManagementToken *string            `json:"management_token,omitempty"`
}

// WebhookResult is the short reason acknowledged to the payment provider.
type WebhookResult string

const (
	WebhookIgnored          WebhookResult = "ignored"
	WebhookNoSecret         WebhookResult = "no secret"
	WebhookNoHash           WebhookResult = "no hash"
	WebhookNoMatchingOrder  WebhookResult = "no matching order"
	WebhookOrderExpired     WebhookResult = "order expired"
	WebhookActivationFailed WebhookResult = "activation failed"
	WebhookOK               WebhookResult = "ok"
	WebhookError            WebhookResult = "error"
)
