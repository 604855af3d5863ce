package orders

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/flokiorg/lokirent/config"
	"github.com/flokiorg/lokirent/constants"
	"github.com/flokiorg/lokirent/lnclient"
	"github.com/flokiorg/lokirent/models"
	"github.com/flokiorg/lokirent/provisioning"
	"github.com/flokiorg/lokirent/rentals"
	"github.com/flokiorg/lokirent/store"
	"github.com/flokiorg/lokirent/tests"
	"github.com/flokiorg/lokirent/tests/mocks"
)

var testStart = time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

const callbackUrl = "https://" + tests.TestDomain + "/api/webhook/coinos"

type fixture struct {
	cfg       config.Config
	svc       *ordersService
	repos     *store.Repositories
	lnClient  *mocks.MockLNClient
	dnsClient *mocks.MockDNSClient
	notifier  *mocks.MockNotifier
	clock     *tests.Clock
}

func newFixture(t *testing.T, mutators ...func(*config.AppConfig)) *fixture {
	f := &fixture{
		cfg:       tests.NewTestConfig(t, mutators...),
		repos:     tests.NewTestRepositories(t),
		lnClient:  mocks.NewMockLNClient(t),
		dnsClient: mocks.NewMockDNSClient(t),
		notifier:  mocks.NewMockNotifier(t),
		clock:     tests.NewClock(testStart),
	}
	coordinator := provisioning.NewCoordinator(f.cfg, f.dnsClient, mocks.NewMockEmailClient(t))
	rentalsService := rentals.NewRentalsService(f.cfg, f.repos, coordinator, mocks.NewMockEmailClient(t), f.notifier, f.clock.Now)
	f.svc = NewOrdersService(f.cfg, f.repos, rentalsService, f.lnClient, f.notifier, f.clock.Now)
	return f
}

// createOrder creates an order for username and returns it with its challenge.
func (f *fixture) createOrder(t *testing.T, username string, services *models.ServicesRequest) (*CreateOrderResponse, string) {
	var challengeUrl string
	f.notifier.EXPECT().
		Notify("https://hooks.example.com/"+username, constants.WEBHOOK_EVENT_CHALLENGE, mock.Anything).
		Run(func(url string, event string, properties map[string]interface{}) {
			challengeUrl, _ = properties["challenge_url"].(string)
		}).
		Return().Once()

	response, err := f.svc.CreateOrder(context.Background(), &CreateOrderRequest{
		Username:   username,
		Plan:       models.PlanThirtyDays,
		Services:   services,
		WebhookUrl: "https://hooks.example.com/" + username,
	})
	require.NoError(t, err)

	order := f.getOrder(t, response.OrderID)
	require.NotNil(t, order.WebhookChallenge)
	assert.Equal(t, f.cfg.GetChallengeUrl(response.OrderID, *order.WebhookChallenge), challengeUrl)
	return response, *order.WebhookChallenge
}

func (f *fixture) expectInvoice(amount uint64, hash string) {
	f.lnClient.EXPECT().CreateInvoice(mock.Anything, amount, callbackUrl, mock.AnythingOfType("string")).
		Return(&lnclient.Invoice{ID: "inv-1", Text: "lnbc1test", Hash: hash, Amount: amount}, nil).Once()
}

func (f *fixture) getOrder(t *testing.T, orderID string) *models.Order {
	order, err := f.repos.Orders.Get(context.Background(), orderID)
	require.NoError(t, err)
	require.NotNil(t, order)
	return order
}

func subdomainRequest() *models.ServicesRequest {
	return &models.ServicesRequest{Subdomain: &models.SubdomainRequest{RecordType: "CNAME", Target: "alice.github.io"}}
}

func TestCreateOrder_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	valid := func() *CreateOrderRequest {
		return &CreateOrderRequest{
			Username:   "alice",
			Plan:       models.PlanOneDay,
			Services:   subdomainRequest(),
			WebhookUrl: "https://hooks.example.com/alice",
		}
	}

	request := valid()
	request.Username = "-alice"
	_, err := f.svc.CreateOrder(ctx, request)
	assert.Equal(t, constants.ERROR_BAD_REQUEST, models.ErrorCode(err))

	request = valid()
	request.Username = "admin"
	_, err = f.svc.CreateOrder(ctx, request)
	assert.Equal(t, constants.ERROR_BAD_REQUEST, models.ErrorCode(err))

	request = valid()
	request.Plan = "2w"
	_, err = f.svc.CreateOrder(ctx, request)
	assert.Equal(t, constants.ERROR_BAD_REQUEST, models.ErrorCode(err))

	request = valid()
	request.Services = &models.ServicesRequest{}
	_, err = f.svc.CreateOrder(ctx, request)
	assert.Equal(t, constants.ERROR_BAD_REQUEST, models.ErrorCode(err))

	request = valid()
	request.WebhookUrl = ""
	_, err = f.svc.CreateOrder(ctx, request)
	assert.Equal(t, constants.ERROR_BAD_REQUEST, models.ErrorCode(err))

	require.NoError(t, f.repos.Bans.Save(ctx, &models.BanRecord{Username: "alice", BannedAt: models.NewTimestamp(testStart)}))
	_, err = f.svc.CreateOrder(ctx, valid())
	assert.Equal(t, constants.ERROR_BANNED, models.ErrorCode(err))

	require.NoError(t, f.repos.Rentals.Save(ctx, &models.Rental{
		Username:  "bob",
		Status:    models.RentalStatusActive,
		CreatedAt: models.NewTimestamp(testStart),
		ExpiresAt: models.NewTimestamp(testStart.Add(time.Hour)),
		Plan:      models.PlanOneDay,
	}))
	request = valid()
	request.Username = "bob"
	_, err = f.svc.CreateOrder(ctx, request)
	assert.Equal(t, constants.ERROR_CONFLICT, models.ErrorCode(err))
}

func TestCreateOrder_PricesFromStoredTable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.repos.Pricing.Save(ctx, models.PricingTable{
		models.PlanThirtyDays: {"subdomain": 111},
	}))

	response, challenge := f.createOrder(t, "carol", &models.ServicesRequest{
		Subdomain: &models.SubdomainRequest{RecordType: "A", Target: "203.0.113.9"},
		Email:     &models.EmailRequest{ForwardTo: "carol@example.com"},
	})
	assert.Equal(t, uint64(111+150), response.AmountSats)
	assert.Equal(t, testStart.Add(15*time.Minute).Format(models.TimestampLayout), response.ExpiresAt)
	assert.NotEmpty(t, response.Message)
	assert.True(t, strings.HasPrefix(response.OrderID, constants.ORDER_ID_PREFIX))
	assert.True(t, strings.HasPrefix(challenge, constants.CHALLENGE_PREFIX))

	order := f.getOrder(t, response.OrderID)
	assert.Equal(t, models.OrderStatusWebhookPending, order.Status)
	assert.Empty(t, order.Bolt11)

	// later price changes never touch open orders
	require.NoError(t, f.repos.Pricing.Save(ctx, models.PricingTable{
		models.PlanThirtyDays: {"subdomain": 999},
	}))
	f.expectInvoice(261, "hash-c")
	invoice, err := f.svc.ConfirmChallenge(ctx, response.OrderID, challenge)
	require.NoError(t, err)
	assert.Equal(t, uint64(261), invoice.AmountSats)
}

func TestConfirmChallenge_Rejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	response, challenge := f.createOrder(t, "dave", subdomainRequest())

	_, err := f.svc.ConfirmChallenge(ctx, response.OrderID, "wch_wrong")
	assert.Equal(t, constants.ERROR_NOT_FOUND, models.ErrorCode(err))
	assert.Equal(t, models.OrderStatusWebhookPending, f.getOrder(t, response.OrderID).Status)

	_, err = f.svc.ConfirmChallenge(ctx, "ord_missing", challenge)
	assert.Equal(t, constants.ERROR_NOT_FOUND, models.ErrorCode(err))

	f.lnClient.EXPECT().CreateInvoice(mock.Anything, uint64(150), callbackUrl, mock.Anything).
		Return(nil, assert.AnError).Once()
	_, err = f.svc.ConfirmChallenge(ctx, response.OrderID, challenge)
	assert.Equal(t, constants.ERROR_UPSTREAM, models.ErrorCode(err))
	order := f.getOrder(t, response.OrderID)
	assert.Equal(t, models.OrderStatusWebhookPending, order.Status)
	assert.Nil(t, order.WebhookSecret)

	f.clock.Advance(15 * time.Minute)
	_, err = f.svc.ConfirmChallenge(ctx, response.OrderID, challenge)
	assert.Equal(t, constants.ERROR_EXPIRED, models.ErrorCode(err))
	assert.Equal(t, models.OrderStatusWebhookPending, f.getOrder(t, response.OrderID).Status)
}

func TestHandlePaymentWebhook_IgnoredPayloads(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := []struct {
		payload  *lnclient.PaymentWebhook
		expected WebhookResult
	}{
		{nil, WebhookIgnored},
		{&lnclient.PaymentWebhook{Confirmed: false, Secret: "sec_1", Hash: "h"}, WebhookIgnored},
		{&lnclient.PaymentWebhook{Confirmed: true, Hash: "h"}, WebhookNoSecret},
		{&lnclient.PaymentWebhook{Confirmed: true, Secret: "sec_1"}, WebhookNoHash},
		{&lnclient.PaymentWebhook{Confirmed: true, Secret: "sec_unknown", Hash: "h"}, WebhookNoMatchingOrder},
	}
	for _, tc := range cases {
		result, err := f.svc.HandlePaymentWebhook(ctx, tc.payload)
		require.NoError(t, err)
		assert.Equal(t, tc.expected, result)
	}
}

func TestEndToEnd_AliceThirtyDaySubdomain(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	response, challenge := f.createOrder(t, "alice", subdomainRequest())
	assert.Equal(t, uint64(150), response.AmountSats)

	f.expectInvoice(150, "")
	invoice, err := f.svc.ConfirmChallenge(ctx, response.OrderID, challenge)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, invoice.Status)
	assert.Equal(t, "lnbc1test", invoice.Bolt11)
	assert.Nil(t, invoice.ManagementToken)

	status, err := f.svc.GetStatus(ctx, response.OrderID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, status.Status)
	assert.Equal(t, "lnbc1test", status.Bolt11)
	assert.Nil(t, status.ManagementToken)

	order := f.getOrder(t, response.OrderID)
	require.NotNil(t, order.WebhookSecret)
	assert.True(t, strings.HasPrefix(*order.WebhookSecret, constants.PAYMENT_SECRET_PREFIX))

	f.clock.Advance(2 * time.Minute)
	f.dnsClient.EXPECT().CreateRecord(mock.Anything, mock.Anything).Return("rec-alice", nil).Once()
	f.notifier.EXPECT().Notify("https://hooks.example.com/alice", constants.WEBHOOK_EVENT_RENTAL_PROVISIONED, mock.Anything).Return().Once()

	payload := &lnclient.PaymentWebhook{Confirmed: true, Secret: *order.WebhookSecret, Hash: "settled-hash"}
	result, err := f.svc.HandlePaymentWebhook(ctx, payload)
	require.NoError(t, err)
	assert.Equal(t, WebhookOK, result)

	// duplicate delivery is a no-op
	result, err = f.svc.HandlePaymentWebhook(ctx, payload)
	require.NoError(t, err)
	assert.Equal(t, WebhookNoMatchingOrder, result)

	status, err = f.svc.GetStatus(ctx, response.OrderID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusProvisioned, status.Status)
	require.NotNil(t, status.ManagementToken)
	assert.NotEmpty(t, *status.ManagementToken)
	assert.Empty(t, status.Bolt11)

	order = f.getOrder(t, response.OrderID)
	assert.Equal(t, "settled-hash", *order.CoinosInvoiceHash)

	rental, err := f.repos.Rentals.Get(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, rental)
	assert.Equal(t, f.clock.Now().Add(30*24*time.Hour), rental.ExpiresAt.Time)
	assert.Equal(t, "rec-alice", *rental.Services.Subdomain.CfRecordID)
	assert.Equal(t, *status.ManagementToken, *rental.ManagementToken)
}

func TestHandlePaymentWebhook_AfterExpiry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	response, challenge := f.createOrder(t, "erin", subdomainRequest())
	f.expectInvoice(150, "hash-e")
	_, err := f.svc.ConfirmChallenge(ctx, response.OrderID, challenge)
	require.NoError(t, err)
	order := f.getOrder(t, response.OrderID)

	f.clock.Advance(20 * time.Minute)
	result, err := f.svc.HandlePaymentWebhook(ctx, &lnclient.PaymentWebhook{Confirmed: true, Secret: *order.WebhookSecret, Hash: "late"})
	require.NoError(t, err)
	assert.Equal(t, WebhookOrderExpired, result)
	assert.Equal(t, models.OrderStatusPending, f.getOrder(t, response.OrderID).Status)

	rental, err := f.repos.Rentals.Get(ctx, "erin")
	require.NoError(t, err)
	assert.Nil(t, rental)

	count, err := f.svc.ExpireStaleOrders(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, models.OrderStatusExpired, f.getOrder(t, response.OrderID).Status)
}

func TestHandlePaymentWebhook_ActivationFailureLeavesOrderPaid(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	response, challenge := f.createOrder(t, "frank", subdomainRequest())
	f.expectInvoice(150, "")
	_, err := f.svc.ConfirmChallenge(ctx, response.OrderID, challenge)
	require.NoError(t, err)
	order := f.getOrder(t, response.OrderID)

	f.dnsClient.EXPECT().CreateRecord(mock.Anything, mock.Anything).Return("", assert.AnError).Once()

	result, err := f.svc.HandlePaymentWebhook(ctx, &lnclient.PaymentWebhook{Confirmed: true, Secret: *order.WebhookSecret, Hash: "h-frank"})
	require.NoError(t, err)
	assert.Equal(t, WebhookActivationFailed, result)

	order = f.getOrder(t, response.OrderID)
	assert.Equal(t, models.OrderStatusPaid, order.Status)
	assert.Nil(t, order.ManagementToken)

	rental, err := f.repos.Rentals.Get(ctx, "frank")
	require.NoError(t, err)
	assert.Nil(t, rental)
}

func TestConfirmChallenge_MockPaymentProvisionsImmediately(t *testing.T) {
	f := newFixture(t, func(c *config.AppConfig) {
		c.MockPayment = true
	})
	ctx := context.Background()
	response, challenge := f.createOrder(t, "grace", subdomainRequest())

	f.expectInvoice(150, "mock_hash")
	f.dnsClient.EXPECT().CreateRecord(mock.Anything, mock.Anything).Return("rec-grace", nil).Once()
	f.notifier.EXPECT().Notify("https://hooks.example.com/grace", constants.WEBHOOK_EVENT_RENTAL_PROVISIONED, mock.Anything).Return().Once()

	invoice, err := f.svc.ConfirmChallenge(ctx, response.OrderID, challenge)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusProvisioned, invoice.Status)
	require.NotNil(t, invoice.ManagementToken)

	order := f.getOrder(t, response.OrderID)
	assert.Equal(t, models.OrderStatusProvisioned, order.Status)
	assert.Equal(t, "mock_hash", *order.CoinosInvoiceHash)
}

func TestCreateRenewalOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	token := "mgmt_heidi"
	require.NoError(t, f.repos.Rentals.Save(ctx, &models.Rental{
		Username:  "heidi",
		Status:    models.RentalStatusActive,
		CreatedAt: models.NewTimestamp(testStart.Add(-20 * 24 * time.Hour)),
		ExpiresAt: models.NewTimestamp(testStart.Add(10 * 24 * time.Hour)),
		Plan:      models.PlanThirtyDays,
		Services: models.RentalServices{
			Email: &models.EmailService{Enabled: true, ForwardTo: "heidi@example.com"},
			Nip05: &models.Nip05Service{Enabled: true, PubkeyHex: strings.Repeat("b", 64), Relays: []string{}},
		},
		ManagementToken: &token,
	}))

	_, err := f.svc.CreateRenewalOrder(ctx, &RenewRequest{ManagementToken: "mgmt_nope", Plan: models.PlanThirtyDays})
	assert.Equal(t, constants.ERROR_NOT_FOUND, models.ErrorCode(err))

	f.expectInvoice(150+75, "")
	invoice, err := f.svc.CreateRenewalOrder(ctx, &RenewRequest{ManagementToken: token, Plan: models.PlanThirtyDays})
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, invoice.Status)
	assert.Equal(t, uint64(225), invoice.AmountSats)

	order := f.getOrder(t, invoice.OrderID)
	require.True(t, order.IsRenewal())
	assert.Equal(t, "heidi", *order.RenewalFor)

	result, err := f.svc.HandlePaymentWebhook(ctx, &lnclient.PaymentWebhook{Confirmed: true, Secret: *order.WebhookSecret, Hash: "h-renew"})
	require.NoError(t, err)
	assert.Equal(t, WebhookOK, result)

	rental, err := f.repos.Rentals.Get(ctx, "heidi")
	require.NoError(t, err)
	assert.Equal(t, testStart.Add(40*24*time.Hour), rental.ExpiresAt.Time)

	status, err := f.svc.GetStatus(ctx, invoice.OrderID)
	require.NoError(t, err)
	assert.Equal(t, token, *status.ManagementToken)

	require.NoError(t, f.repos.Bans.Save(ctx, &models.BanRecord{Username: "heidi", BannedAt: models.NewTimestamp(testStart)}))
	_, err = f.svc.CreateRenewalOrder(ctx, &RenewRequest{ManagementToken: token, Plan: models.PlanOneDay})
	assert.Equal(t, constants.ERROR_BANNED, models.ErrorCode(err))
}

func TestExpireStaleOrders(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	fresh, _ := f.createOrder(t, "ivan", subdomainRequest())
	f.clock.Advance(10 * time.Minute)
	stale, _ := f.createOrder(t, "judy", subdomainRequest())
	require.NoError(t, f.repos.Orders.Save(ctx, &models.Order{
		OrderID:   "ord_done",
		Username:  "kate",
		Plan:      models.PlanOneDay,
		Status:    models.OrderStatusProvisioned,
		CreatedAt: models.NewTimestamp(testStart),
		ExpiresAt: models.NewTimestamp(testStart),
	}))

	f.clock.Advance(6 * time.Minute)
	count, err := f.svc.ExpireStaleOrders(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, models.OrderStatusExpired, f.getOrder(t, fresh.OrderID).Status)
	assert.Equal(t, models.OrderStatusWebhookPending, f.getOrder(t, stale.OrderID).Status)
	assert.Equal(t, models.OrderStatusProvisioned, f.getOrder(t, "ord_done").Status)
}
