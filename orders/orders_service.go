package orders

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/flokiorg/lokirent/config"
	"github.com/flokiorg/lokirent/constants"
	"github.com/flokiorg/lokirent/lnclient"
	"github.com/flokiorg/lokirent/logger"
	"github.com/flokiorg/lokirent/models"
	"github.com/flokiorg/lokirent/notifications"
	"github.com/flokiorg/lokirent/pricing"
	"github.com/flokiorg/lokirent/provisioning"
	"github.com/flokiorg/lokirent/rentals"
	"github.com/flokiorg/lokirent/store"
	"github.com/flokiorg/lokirent/utils"
)

var errActivationFailed = errors.New("rental activation failed")

const createOrderMessage = "Order created. A challenge URL has been sent to your webhook; request it to receive the invoice."

type OrdersService interface {
	CreateOrder(ctx context.Context, request *CreateOrderRequest) (*CreateOrderResponse, error)
	ConfirmChallenge(ctx context.Context, orderID string, challenge string) (*InvoiceResponse, error)
	HandlePaymentWebhook(ctx context.Context, payload *lnclient.PaymentWebhook) (WebhookResult, error)
	GetStatus(ctx context.Context, orderID string) (*OrderStatusResponse, error)
	CreateRenewalOrder(ctx context.Context, request *RenewRequest) (*InvoiceResponse, error)
	ExpireStaleOrders(ctx context.Context) (int, error)
	Quote(ctx context.Context, plan models.Plan, kinds []models.ServiceKind) (uint64, error)
}

type ordersService struct {
	cfg            config.Config
	repos          *store.Repositories
	rentalsService rentals.RentalsService
	lnClient       lnclient.LNClient
	notifier       notifications.Notifier
	now            func() time.Time
}

func NewOrdersService(cfg config.Config, repos *store.Repositories, rentalsService rentals.RentalsService, lnClient lnclient.LNClient, notifier notifications.Notifier, now func() time.Time) *ordersService {
	if now == nil {
		now = time.Now
	}
	return &ordersService{
		cfg:            cfg,
		repos:          repos,
		rentalsService: rentalsService,
		lnClient:       lnClient,
		notifier:       notifier,
		now:            now,
	}
}

func (svc *ordersService) CreateOrder(ctx context.Context, request *CreateOrderRequest) (*CreateOrderResponse, error) {
	if err := utils.ValidateUsername(request.Username); err != nil {
		return nil, models.NewValidationError("%s", err.Error())
	}
	plan, err := models.ParsePlan(string(request.Plan))
	if err != nil {
		return nil, models.NewValidationError("Invalid plan: %s", request.Plan)
	}
	services, err := provisioning.ValidateServices(request.Services)
	if err != nil {
		return nil, err
	}
	webhookUrl := strings.TrimSpace(request.WebhookUrl)
	if webhookUrl == "" {
		return nil, models.NewValidationError("webhook_url is required")
	}
	if err := utils.ValidateHTTPURL(webhookUrl); err != nil {
		return nil, models.NewValidationError("Invalid webhook URL: %s", err.Error())
	}

	if err := svc.rentalsService.CheckAvailability(ctx, request.Username); err != nil {
		return nil, err
	}

	amount, err := svc.Quote(ctx, plan, services.Kinds())
	if err != nil {
		return nil, err
	}

	orderID, err := newOrderID()
	if err != nil {
		return nil, err
	}
	challenge, err := utils.RandomToken(constants.CHALLENGE_PREFIX, 16)
	if err != nil {
		return nil, err
	}

	now := svc.now()
	order := &models.Order{
		OrderID:           orderID,
		Username:          request.Username,
		Plan:              plan,
		AmountSats:        amount,
		Status:            models.OrderStatusWebhookPending,
		CreatedAt:         models.NewTimestamp(now),
		ExpiresAt:         models.NewTimestamp(now.Add(svc.cfg.GetOrderTTL())),
		WebhookChallenge:  &challenge,
		ServicesRequested: services,
		WebhookUrl:        &webhookUrl,
	}
	if err := svc.repos.Orders.Save(ctx, order); err != nil {
		logger.Logger.Error().Err(err).Str("order_id", orderID).Msg("Failed to save order")
		return nil, err
	}

	svc.notifier.Notify(webhookUrl, constants.WEBHOOK_EVENT_CHALLENGE, map[string]interface{}{
		"challenge_url": svc.cfg.GetChallengeUrl(orderID, challenge),
		"order_id":      orderID,
	})

	logger.Logger.Info().
		Str("order_id", orderID).
		Str("username", order.Username).
		Uint64("amount_sats", amount).
		Msg("Order created")

	return &CreateOrderResponse{
		OrderID:    orderID,
		AmountSats: amount,
		ExpiresAt:  order.ExpiresAt.String(),
		Message:    createOrderMessage,
	}, nil
}

// Quote prices kinds for plan using the stored pricing table.
func (svc *ordersService) Quote(ctx context.Context, plan models.Plan, kinds []models.ServiceKind) (uint64, error) {
	if len(kinds) == 0 {
		return 0, models.NewValidationError("At least one service must be requested")
	}
	table, err := svc.repos.Pricing.Get(ctx)
	if err != nil {
		return 0, err
	}
	return pricing.Price(plan, kinds, table)
}

func (svc *ordersService) ConfirmChallenge(ctx context.Context, orderID string, challenge string) (*InvoiceResponse, error) {
	order, err := svc.repos.Orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, models.NewNotFoundError("Order not found")
	}
	if order.Status != models.OrderStatusWebhookPending {
		return nil, models.NewConflictError("Order is not awaiting challenge confirmation")
	}
	if order.Expired(svc.now()) {
		return nil, models.NewExpiredError("Order has expired")
	}
	if order.WebhookChallenge == nil || subtle.ConstantTimeCompare([]byte(*order.WebhookChallenge), []byte(challenge)) != 1 {
		return nil, models.NewNotFoundError("Invalid challenge")
	}

	if err := svc.issueInvoice(ctx, order); err != nil {
		return nil, err
	}
	return svc.afterInvoice(ctx, order)
}

// issueInvoice requests an invoice for the stored amount and moves the order
// to pending. Nothing is persisted when the provider call fails.
func (svc *ordersService) issueInvoice(ctx context.Context, order *models.Order) error {
	secret, err := utils.RandomToken(constants.PAYMENT_SECRET_PREFIX, 16)
	if err != nil {
		return err
	}

	invoiceCtx, cancel := context.WithTimeout(ctx, svc.providerTimeout())
	defer cancel()
	invoice, err := svc.lnClient.CreateInvoice(invoiceCtx, order.AmountSats, svc.cfg.GetPaymentCallbackUrl(), secret)
	if err != nil {
		logger.Logger.Error().Err(err).Str("order_id", order.OrderID).Msg("Failed to create invoice")
		return models.NewUpstreamError("Failed to create invoice", err)
	}

	if err := transition(order, models.OrderStatusPending); err != nil {
		return err
	}
	order.Bolt11 = invoice.Text
	order.WebhookSecret = &secret
	if invoice.Hash != "" {
		hash := invoice.Hash
		order.CoinosInvoiceHash = &hash
	}
	return svc.repos.Orders.Save(ctx, order)
}

// afterInvoice settles the order straight away in payment-simulation mode.
func (svc *ordersService) afterInvoice(ctx context.Context, order *models.Order) (*InvoiceResponse, error) {
	if svc.cfg.IsMockPayment() {
		hash := ""
		if order.CoinosInvoiceHash != nil {
			hash = *order.CoinosInvoiceHash
		}
		if err := svc.settle(ctx, order, hash); err != nil {
			return nil, err
		}
	}

	return &InvoiceResponse{
		OrderID:         order.OrderID,
		Status:          order.Status,
		AmountSats:      order.AmountSats,
		Bolt11:          order.Bolt11,
		ExpiresAt:       order.ExpiresAt.String(),
		ManagementToken: provisionedToken(order),
	}, nil
}

// settle marks order paid and activates its rental. An activation failure
// leaves the order paid for a retry or manual follow-up.
func (svc *ordersService) settle(ctx context.Context, order *models.Order, hash string) error {
	if err := transition(order, models.OrderStatusPaid); err != nil {
		return err
	}
	if hash != "" {
		order.CoinosInvoiceHash = &hash
	}
	if err := svc.repos.Orders.Save(ctx, order); err != nil {
		return err
	}

	token, err := svc.rentalsService.Activate(ctx, order)
	if err != nil {
		logger.Logger.Error().Err(err).
			Str("order_id", order.OrderID).
			Str("username", order.Username).
			Msg("Failed to activate rental for paid order")
		return fmt.Errorf("%w: %w", errActivationFailed, err)
	}

	if err := transition(order, models.OrderStatusProvisioned); err != nil {
		return err
	}
	order.ManagementToken = &token
	if err := svc.repos.Orders.Save(ctx, order); err != nil {
		return err
	}

	logger.Logger.Info().Str("order_id", order.OrderID).Str("username", order.Username).Msg("Order provisioned")
	return nil
}

func (svc *ordersService) HandlePaymentWebhook(ctx context.Context, payload *lnclient.PaymentWebhook) (WebhookResult, error) {
	if payload == nil || !payload.Confirmed {
		return WebhookIgnored, nil
	}
	if payload.Secret == "" {
		return WebhookNoSecret, nil
	}
	if payload.Hash == "" {
		return WebhookNoHash, nil
	}

	matches, err := svc.repos.Orders.FindBy(ctx, func(order *models.Order) bool {
		return order.Status == models.OrderStatusPending &&
			order.WebhookSecret != nil &&
			subtle.ConstantTimeCompare([]byte(*order.WebhookSecret), []byte(payload.Secret)) == 1
	})
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		logger.Logger.Debug().Str("hash", payload.Hash).Msg("Payment webhook matched no pending order")
		return WebhookNoMatchingOrder, nil
	}
	if len(matches) > 1 {
		logger.Logger.Warn().Int("count", len(matches)).Msg("Payment secret matched several orders, using the first")
	}

	order := matches[0]
	if order.Expired(svc.now()) {
		logger.Logger.Warn().
			Str("order_id", order.OrderID).
			Str("hash", payload.Hash).
			Msg("Payment webhook arrived after order expiry")
		return WebhookOrderExpired, nil
	}

	if err := svc.settle(ctx, order, payload.Hash); err != nil {
		if errors.Is(err, errActivationFailed) {
			return WebhookActivationFailed, nil
		}
		return "", err
	}
	return WebhookOK, nil
}

func (svc *ordersService) GetStatus(ctx context.Context, orderID string) (*OrderStatusResponse, error) {
	order, err := svc.repos.Orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, models.NewNotFoundError("Order not found")
	}
	response := &OrderStatusResponse{
		OrderID:         order.OrderID,
		Status:          order.Status,
		ManagementToken: provisionedToken(order),
	}
	if order.Status == models.OrderStatusPending {
		response.Bolt11 = order.Bolt11
	}
	return response, nil
}

func (svc *ordersService) CreateRenewalOrder(ctx context.Context, request *RenewRequest) (*InvoiceResponse, error) {
	rental, err := svc.rentalsService.FindByManagementToken(ctx, strings.TrimSpace(request.ManagementToken))
	if err != nil {
		return nil, err
	}
	banned, err := svc.rentalsService.IsBanned(ctx, rental.Username)
	if err != nil {
		return nil, err
	}
	if banned {
		return nil, models.NewBannedError()
	}

	plan, err := models.ParsePlan(string(request.Plan))
	if err != nil {
		return nil, models.NewValidationError("Invalid plan: %s", request.Plan)
	}

	var services *models.ServicesRequest
	if !request.Services.Empty() {
		services, err = provisioning.ValidateServices(request.Services)
		if err != nil {
			return nil, err
		}
	}

	var webhookUrl *string
	if request.WebhookUrl != nil && strings.TrimSpace(*request.WebhookUrl) != "" {
		trimmed := strings.TrimSpace(*request.WebhookUrl)
		if err := utils.ValidateHTTPURL(trimmed); err != nil {
			return nil, models.NewValidationError("Invalid webhook URL: %s", err.Error())
		}
		webhookUrl = &trimmed
	}

	amount, err := svc.Quote(ctx, plan, renewalKinds(rental, services))
	if err != nil {
		return nil, err
	}
	orderID, err := newOrderID()
	if err != nil {
		return nil, err
	}

	now := svc.now()
	username := rental.Username
	order := &models.Order{
		OrderID:           orderID,
		Username:          username,
		Plan:              plan,
		AmountSats:        amount,
		Status:            models.OrderStatusWebhookPending,
		CreatedAt:         models.NewTimestamp(now),
		ExpiresAt:         models.NewTimestamp(now.Add(svc.cfg.GetOrderTTL())),
		ServicesRequested: services,
		RenewalFor:        &username,
		WebhookUrl:        webhookUrl,
	}
	if err := svc.issueInvoice(ctx, order); err != nil {
		return nil, err
	}

	logger.Logger.Info().
		Str("order_id", orderID).
		Str("username", username).
		Uint64("amount_sats", amount).
		Msg("Renewal order created")

	return svc.afterInvoice(ctx, order)
}

// renewalKinds prices the services the rental keeps plus any added ones.
func renewalKinds(rental *models.Rental, added *models.ServicesRequest) []models.ServiceKind {
	kinds := rental.Services.EnabledKinds()
	for _, kind := range added.Kinds() {
		found := false
		for _, existing := range kinds {
			if existing == kind {
				found = true
				break
			}
		}
		if !found {
			kinds = append(kinds, kind)
		}
	}
	return kinds
}

func (svc *ordersService) ExpireStaleOrders(ctx context.Context) (int, error) {
	now := svc.now()
	stale, err := svc.repos.Orders.FindBy(ctx, func(order *models.Order) bool {
		return (order.Status == models.OrderStatusWebhookPending || order.Status == models.OrderStatusPending) &&
			order.Expired(now)
	})
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, order := range stale {
		if err := transition(order, models.OrderStatusExpired); err != nil {
			continue
		}
		if err := svc.repos.Orders.Save(ctx, order); err != nil {
			logger.Logger.Error().Err(err).Str("order_id", order.OrderID).Msg("Failed to expire order")
			continue
		}
		expired++
	}
	if expired > 0 {
		logger.Logger.Info().Int("count", expired).Msg("Expired stale orders")
	}
	return expired, nil
}

func (svc *ordersService) providerTimeout() time.Duration {
	timeout := svc.cfg.GetEnv().ProviderTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return timeout
}

func transition(order *models.Order, next models.OrderStatus) error {
	if !order.Status.CanTransitionTo(next) {
		return models.NewConflictError("Order %s cannot move from %s to %s", order.OrderID, order.Status, next)
	}
	order.Status = next
	return nil
}

func provisionedToken(order *models.Order) *string {
	if order.Status != models.OrderStatusProvisioned {
		return nil
	}
	return order.ManagementToken
}

func newOrderID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("failed to generate order id: %w", err)
	}
	return constants.ORDER_ID_PREFIX + id.String(), nil
}
