package api

import (
	"context"
	"crypto/subtle"
	"strings"
	"time"

	"github.com/nbd-wtf/go-nostr"

	"github.com/flokiorg/lokirent/config"
	"github.com/flokiorg/lokirent/constants"
	"github.com/flokiorg/lokirent/lnclient"
	"github.com/flokiorg/lokirent/logger"
	"github.com/flokiorg/lokirent/models"
	"github.com/flokiorg/lokirent/nip05"
	"github.com/flokiorg/lokirent/orders"
	"github.com/flokiorg/lokirent/pkg/version"
	"github.com/flokiorg/lokirent/pricing"
	"github.com/flokiorg/lokirent/rentals"
	"github.com/flokiorg/lokirent/service"
	"github.com/flokiorg/lokirent/store"
	"github.com/flokiorg/lokirent/utils"
)

type api struct {
	cfg        config.Config
	repos      *store.Repositories
	ordersSvc  orders.OrdersService
	rentalsSvc rentals.RentalsService
	now        func() time.Time
}

func NewAPI(svc service.Service) *api {
	return &api{
		cfg:        svc.GetConfig(),
		repos:      svc.GetRepositories(),
		ordersSvc:  svc.GetOrdersService(),
		rentalsSvc: svc.GetRentalsService(),
		now:        time.Now,
	}
}

func (api *api) GetInfo(ctx context.Context) (*InfoResponse, error) {
	return &InfoResponse{
		Name:        constants.APP_IDENTIFIER,
		Description: "Lightning-paid email forwarding, subdomains and NIP-05 identities. No signup.",
		Version:     version.Tag,
		Domain:      api.cfg.GetDomain(),
		Plans:       models.GetPlans(),
		Services:    models.GetServiceKinds(),
		MockPayment: api.cfg.IsMockPayment(),
		MockDNS:     api.cfg.IsMockDNS(),
	}, nil
}

func (api *api) Health(ctx context.Context) (*HealthResponse, error) {
	var alarms []HealthAlarm

	if _, err := api.repos.Pricing.Get(ctx); err != nil {
		alarms = append(alarms, NewHealthAlarm(HealthAlarmKindStoreUnreachable, err.Error()))
	}
	if api.cfg.IsMockPayment() {
		alarms = append(alarms, NewHealthAlarm(HealthAlarmKindMockPayment, nil))
	}
	if api.cfg.IsMockDNS() {
		alarms = append(alarms, NewHealthAlarm(HealthAlarmKindMockDNS, nil))
	}

	return &HealthResponse{Status: "ok", Alarms: alarms}, nil
}

func (api *api) GetLogOutput(ctx context.Context, getLogRequest *GetLogOutputRequest) (*GetLogOutputResponse, error) {
	logFileName := logger.GetLogFilePath()
	if logFileName == "" {
		return &GetLogOutputResponse{Log: "file log is disabled"}, nil
	}
	logData, err := utils.ReadFileTail(logFileName, getLogRequest.MaxLen)
	if err != nil {
		return nil, err
	}
	return &GetLogOutputResponse{Log: string(logData)}, nil
}

func (api *api) CheckUsername(ctx context.Context, username string) (*CheckUsernameResponse, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if err := utils.ValidateUsername(username); err != nil {
		message := err.Error()
		return &CheckUsernameResponse{Username: username, Error: &message}, nil
	}

	err := api.rentalsSvc.CheckAvailability(ctx, username)
	switch models.ErrorCode(err) {
	case constants.ERROR_INTERNAL:
		if err != nil {
			return nil, err
		}
		return &CheckUsernameResponse{Available: true, Username: username}, nil
	case constants.ERROR_BANNED:
		message := err.Error()
		return &CheckUsernameResponse{Username: username, Error: &message}, nil
	default:
		return &CheckUsernameResponse{Username: username}, nil
	}
}

// GetPricing returns the effective table: stored cells over the defaults.
func (api *api) GetPricing(ctx context.Context) (models.PricingTable, error) {
	table, err := api.repos.Pricing.Get(ctx)
	if err != nil {
		return nil, err
	}
	return pricing.Resolve(table), nil
}

func (api *api) UpdatePricing(ctx context.Context, table models.PricingTable) (models.PricingTable, error) {
	if len(table) == 0 {
		return nil, models.NewValidationError("Invalid pricing JSON")
	}
	if err := pricing.Validate(table); err != nil {
		return nil, err
	}
	if err := api.repos.Pricing.Save(ctx, table); err != nil {
		return nil, err
	}
	logger.Logger.Info().Int("plans", len(table)).Msg("Pricing table updated")
	return pricing.Resolve(table), nil
}

func (api *api) CreateOrder(ctx context.Context, createOrderRequest *orders.CreateOrderRequest) (*orders.CreateOrderResponse, error) {
	return api.ordersSvc.CreateOrder(ctx, createOrderRequest)
}

func (api *api) ConfirmOrderChallenge(ctx context.Context, orderID string, challenge string) (*orders.InvoiceResponse, error) {
	return api.ordersSvc.ConfirmChallenge(ctx, orderID, challenge)
}

func (api *api) GetOrderStatus(ctx context.Context, orderID string) (*orders.OrderStatusResponse, error) {
	return api.ordersSvc.GetStatus(ctx, orderID)
}

func (api *api) HandlePaymentWebhook(ctx context.Context, payload *lnclient.PaymentWebhook) orders.WebhookResult {
	result, err := api.ordersSvc.HandlePaymentWebhook(ctx, payload)
	if err != nil {
		logger.Logger.Error().Err(err).Str("hash", payload.Hash).Msg("Failed to process payment webhook")
		return orders.WebhookError
	}
	return result
}

func (api *api) RenewRental(ctx context.Context, renewRequest *orders.RenewRequest) (*RenewResponse, error) {
	invoice, err := api.ordersSvc.CreateRenewalOrder(ctx, renewRequest)
	if err != nil {
		return nil, err
	}
	return &RenewResponse{
		OrderID:    invoice.OrderID,
		AmountSats: invoice.AmountSats,
		Bolt11:     invoice.Bolt11,
		ExpiresAt:  invoice.ExpiresAt,
	}, nil
}

func (api *api) UpdateRentalSettings(ctx context.Context, managementToken string, updateSettingsRequest *rentals.UpdateSettingsRequest) (*RentalResponse, error) {
	rental, err := api.rentalsSvc.UpdateSettings(ctx, managementToken, updateSettingsRequest)
	if err != nil {
		return nil, err
	}
	return toRentalResponse(rental), nil
}

func (api *api) ResolveNip05(ctx context.Context, name string) (*nip05.Document, error) {
	return api.rentalsSvc.ResolveNip05(ctx, name)
}

func (api *api) RelayInboundEmail(ctx context.Context, inboundEmail *rentals.InboundEmail) error {
	return api.rentalsSvc.RelayInboundEmail(ctx, inboundEmail)
}

func (api *api) CreateAdminChallenge(ctx context.Context) (*AdminChallengeResponse, error) {
	if api.cfg.GetAdminPubkey() == "" {
		return nil, models.NewNotFoundError("Admin login is not configured")
	}
	challenge, err := utils.RandomToken(constants.ADMIN_CHALLENGE_PREFIX, 16)
	if err != nil {
		return nil, err
	}
	now := api.now()
	err = api.repos.Challenges.Save(ctx, &models.AdminChallenge{
		Challenge: challenge,
		CreatedAt: models.NewTimestamp(now),
		ExpiresAt: models.NewTimestamp(now.Add(constants.ADMIN_CHALLENGE_TTL)),
	})
	if err != nil {
		return nil, err
	}
	return &AdminChallengeResponse{Challenge: challenge}, nil
}

// VerifyAdminLogin checks a signed login event: the configured admin key must
// have signed the content of a live challenge. The challenge is consumed.
func (api *api) VerifyAdminLogin(ctx context.Context, event *nostr.Event) error {
	if event == nil {
		return models.NewValidationError("Missing login event")
	}
	adminPubkey, err := nip05.NormalizePubkey(api.cfg.GetAdminPubkey())
	if err != nil {
		return models.NewForbiddenError("Unauthorized: invalid pubkey")
	}
	if subtle.ConstantTimeCompare([]byte(strings.ToLower(event.PubKey)), []byte(adminPubkey)) != 1 {
		return models.NewForbiddenError("Unauthorized: invalid pubkey")
	}
	ok, err := event.CheckSignature()
	if err != nil || !ok {
		return models.NewForbiddenError("Unauthorized: invalid signature")
	}

	challengeValue := strings.TrimSpace(event.Content)
	if challengeValue == "" {
		return models.NewValidationError("Missing challenge in event content")
	}
	challenge, err := api.repos.Challenges.Get(ctx, challengeValue)
	if err != nil {
		return err
	}
	if challenge == nil {
		return models.NewValidationError("Invalid challenge")
	}
	if err := api.repos.Challenges.Delete(ctx, challengeValue); err != nil {
		return err
	}
	if !challenge.ExpiresAt.After(api.now()) {
		return models.NewValidationError("Challenge expired")
	}

	logger.Logger.Info().Str("pubkey", adminPubkey).Msg("Admin logged in")
	return nil
}

func (api *api) ListRentals(ctx context.Context, listRentalsRequest *ListRentalsRequest) (*rentals.ListRentalsResponse, error) {
	return api.rentalsSvc.ListRentals(ctx, rentals.ListRentalsParams{
		Page:   listRentalsRequest.Page,
		Limit:  listRentalsRequest.Limit,
		Status: listRentalsRequest.Status,
	})
}

func (api *api) GetStats(ctx context.Context) (*rentals.Stats, error) {
	return api.rentalsSvc.GetStats(ctx)
}

func (api *api) BanUser(ctx context.Context, username string, banRequest *BanRequest) error {
	_, err := api.rentalsSvc.AdminBan(ctx, username, banRequest.Reason)
	return err
}

func (api *api) UnbanUser(ctx context.Context, username string) error {
	return api.rentalsSvc.AdminUnban(ctx, username)
}

func (api *api) ExtendRental(ctx context.Context, username string, extendRequest *ExtendRequest) error {
	_, err := api.rentalsSvc.AdminExtend(ctx, username, extendRequest.Minutes)
	return err
}

func (api *api) RevokeRental(ctx context.Context, username string) error {
	_, err := api.rentalsSvc.AdminRevoke(ctx, username)
	return err
}

func (api *api) DirectProvision(ctx context.Context, provisionRequest *rentals.DirectProvisionRequest) (*DirectProvisionResponse, error) {
	rental, err := api.rentalsSvc.AdminDirectProvision(ctx, provisionRequest)
	if err != nil {
		return nil, err
	}
	response := &DirectProvisionResponse{
		Success:   true,
		Username:  rental.Username,
		ExpiresAt: rental.ExpiresAt.String(),
	}
	if rental.ManagementToken != nil {
		response.ManagementToken = *rental.ManagementToken
	}
	return response, nil
}

func toRentalResponse(rental *models.Rental) *RentalResponse {
	return &RentalResponse{
		Username:   rental.Username,
		Status:     rental.Status,
		Plan:       rental.Plan,
		ExpiresAt:  rental.ExpiresAt.String(),
		Services:   rental.Services,
		WebhookUrl: rental.WebhookUrl,
	}
}
