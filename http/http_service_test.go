package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/nbd-wtf/go-nostr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/flokiorg/lokirent/api"
	"github.com/flokiorg/lokirent/config"
	"github.com/flokiorg/lokirent/constants"
	"github.com/flokiorg/lokirent/lnclient"
	"github.com/flokiorg/lokirent/models"
	"github.com/flokiorg/lokirent/orders"
	"github.com/flokiorg/lokirent/provisioning"
	"github.com/flokiorg/lokirent/rentals"
	"github.com/flokiorg/lokirent/store"
	"github.com/flokiorg/lokirent/tests"
	"github.com/flokiorg/lokirent/tests/mocks"
)

const adminApiToken = "admin-secret"

type testService struct {
	cfg        config.Config
	repos      *store.Repositories
	ordersSvc  orders.OrdersService
	rentalsSvc rentals.RentalsService
}

func (svc *testService) Shutdown() {}

func (svc *testService) GetConfig() config.Config {
	return svc.cfg
}

func (svc *testService) GetRepositories() *store.Repositories {
	return svc.repos
}

func (svc *testService) GetOrdersService() orders.OrdersService {
	return svc.ordersSvc
}

func (svc *testService) GetRentalsService() rentals.RentalsService {
	return svc.rentalsSvc
}

type testServer struct {
	e        *echo.Echo
	svc      *testService
	lnClient *mocks.MockLNClient
	notifier *mocks.MockNotifier
}

// Helper to create a fully wired HttpService backed by an in-memory store
func createTestServer(t *testing.T, mutators ...func(*config.AppConfig)) *testServer {
	cfg := tests.NewTestConfig(t, mutators...)
	repos := tests.NewTestRepositories(t)
	lnClient := mocks.NewMockLNClient(t)
	notifier := mocks.NewMockNotifier(t)
	emailClient := mocks.NewMockEmailClient(t)

	coordinator := provisioning.NewCoordinator(cfg, mocks.NewMockDNSClient(t), emailClient)
	rentalsSvc := rentals.NewRentalsService(cfg, repos, coordinator, emailClient, notifier, nil)
	svc := &testService{
		cfg:        cfg,
		repos:      repos,
		rentalsSvc: rentalsSvc,
		ordersSvc:  orders.NewOrdersService(cfg, repos, rentalsSvc, lnClient, notifier, nil),
	}

	e := echo.New()
	httpSvc := NewHttpService(svc)
	httpSvc.statusPollInterval = 20 * time.Millisecond
	httpSvc.RegisterSharedRoutes(e)

	return &testServer{e: e, svc: svc, lnClient: lnClient, notifier: notifier}
}

func (ts *testServer) do(method string, target string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	rec := httptest.NewRecorder()
	ts.e.ServeHTTP(rec, req)
	return rec
}

func bearer(token string) map[string]string {
	return map[string]string{echo.HeaderAuthorization: "Bearer " + token}
}

func (ts *testServer) saveRental(t *testing.T, username string, expiresAt time.Time, nip05Pubkey string) {
	rental := &models.Rental{
		Username:  username,
		Status:    models.RentalStatusActive,
		CreatedAt: models.NewTimestamp(expiresAt.Add(-24 * time.Hour)),
		ExpiresAt: models.NewTimestamp(expiresAt),
		Plan:      models.PlanOneDay,
	}
	if nip05Pubkey != "" {
		rental.Services.Nip05 = &models.Nip05Service{
			Enabled:   true,
			PubkeyHex: nip05Pubkey,
			Relays:    []string{"wss://relay.example.com"},
		}
	}
	require.NoError(t, ts.svc.repos.Rentals.Save(context.Background(), rental))
}

func TestCheckUsernameHandler(t *testing.T) {
	ts := createTestServer(t)
	ts.saveRental(t, "taken", time.Now().Add(time.Hour), "")
	require.NoError(t, ts.svc.repos.Bans.Save(context.Background(), &models.BanRecord{Username: "mallory"}))

	var response api.CheckUsernameResponse

	rec := ts.do(http.MethodGet, "/api/check/alice", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.True(t, response.Available)
	assert.Nil(t, response.Error)

	rec = ts.do(http.MethodGet, "/api/check/taken", nil, nil)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.False(t, response.Available)
	assert.Nil(t, response.Error)

	rec = ts.do(http.MethodGet, "/api/check/mallory", nil, nil)
	response = api.CheckUsernameResponse{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.False(t, response.Available)
	require.NotNil(t, response.Error)
	assert.Equal(t, "This username is blocked", *response.Error)

	rec = ts.do(http.MethodGet, "/api/check/a", nil, nil)
	response = api.CheckUsernameResponse{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.False(t, response.Available)
	assert.NotNil(t, response.Error)
}

func TestCreateOrderHandler_Validation(t *testing.T) {
	ts := createTestServer(t)

	rec := ts.do(http.MethodPost, "/api/order", map[string]interface{}{
		"username":    "alice",
		"plan":        "2w",
		"services":    map[string]interface{}{"email": map[string]string{"forward_to": "alice@example.com"}},
		"webhook_url": "https://hooks.example.com/alice",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/order", strings.NewReader("{not json"))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec = httptest.NewRecorder()
	ts.e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Bad request")
}

func TestOrderFlow_ChallengeInvoiceWebhook(t *testing.T) {
	ts := createTestServer(t)
	pubkey, err := nostr.GetPublicKey(nostr.GeneratePrivateKey())
	require.NoError(t, err)

	var challengeUrl string
	ts.notifier.EXPECT().
		Notify("https://hooks.example.com/alice", constants.WEBHOOK_EVENT_CHALLENGE, mock.Anything).
		Run(func(url string, event string, properties map[string]interface{}) {
			challengeUrl, _ = properties["challenge_url"].(string)
		}).
		Return().Once()
	ts.notifier.EXPECT().
		Notify("https://hooks.example.com/alice", constants.WEBHOOK_EVENT_RENTAL_PROVISIONED, mock.Anything).
		Return().Once()

	rec := ts.do(http.MethodPost, "/api/order", map[string]interface{}{
		"username":    "alice",
		"plan":        "30d",
		"services":    map[string]interface{}{"nip05": map[string]string{"pubkey": pubkey}},
		"webhook_url": "https://hooks.example.com/alice",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var createResponse orders.CreateOrderResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &createResponse))
	assert.Equal(t, uint64(75), createResponse.AmountSats)
	require.NotEmpty(t, challengeUrl)

	rec = ts.do(http.MethodGet, "/api/order/"+createResponse.OrderID+"/confirm/wch_wrong", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var secret string
	ts.lnClient.EXPECT().
		CreateInvoice(mock.Anything, uint64(75), "https://"+tests.TestDomain+"/api/webhook/coinos", mock.Anything).
		RunAndReturn(func(ctx context.Context, amountSats uint64, callbackUrl string, s string) (*lnclient.Invoice, error) {
			secret = s
			return &lnclient.Invoice{Text: "lnbc750n1test", Hash: "hash-1"}, nil
		}).Once()

	confirmPath := strings.TrimPrefix(challengeUrl, "https://"+tests.TestDomain)
	rec = ts.do(http.MethodGet, confirmPath, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var invoiceResponse orders.InvoiceResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &invoiceResponse))
	assert.Equal(t, models.OrderStatusPending, invoiceResponse.Status)
	assert.Equal(t, "lnbc750n1test", invoiceResponse.Bolt11)

	rec = ts.do(http.MethodPost, "/api/webhook/coinos", map[string]interface{}{
		"confirmed": true,
		"secret":    secret,
		"hash":      "hash-1",
	}, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	rec = ts.do(http.MethodGet, "/api/order/"+createResponse.OrderID+"/status", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var statusResponse orders.OrderStatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &statusResponse))
	assert.Equal(t, models.OrderStatusProvisioned, statusResponse.Status)
	require.NotNil(t, statusResponse.ManagementToken)
	assert.True(t, strings.HasPrefix(*statusResponse.ManagementToken, constants.MANAGEMENT_TOKEN_PREFIX))

	rec = ts.do(http.MethodGet, "/.well-known/nostr.json?name=alice", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
	assert.Contains(t, rec.Body.String(), pubkey)
}

func TestCoinosWebhookHandler_AlwaysAcknowledges(t *testing.T) {
	ts := createTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/webhook/coinos", strings.NewReader("garbage"))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	ts.e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ignored", rec.Body.String())

	rec = ts.do(http.MethodPost, "/api/webhook/coinos", map[string]interface{}{"confirmed": true, "hash": "h"}, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "no secret", rec.Body.String())

	rec = ts.do(http.MethodPost, "/api/webhook/coinos", map[string]interface{}{"confirmed": true, "secret": "sec_unknown", "hash": "h"}, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "no matching order", rec.Body.String())
}

func TestNip05Handler(t *testing.T) {
	ts := createTestServer(t)
	pubkey, err := nostr.GetPublicKey(nostr.GeneratePrivateKey())
	require.NoError(t, err)
	ts.saveRental(t, "bob", time.Now().Add(time.Hour), pubkey)
	ts.saveRental(t, "carol", time.Now().Add(-time.Minute), pubkey)

	rec := ts.do(http.MethodGet, "/.well-known/nostr.json", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "*", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))

	rec = ts.do(http.MethodGet, "/.well-known/nostr.json?name=BOB", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var doc struct {
		Names  map[string]string   `json:"names"`
		Relays map[string][]string `json:"relays"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Equal(t, pubkey, doc.Names["bob"])
	assert.Equal(t, []string{"wss://relay.example.com"}, doc.Relays[pubkey])

	// expired but not yet swept
	rec = ts.do(http.MethodGet, "/.well-known/nostr.json?name=carol", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "*", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
}

func TestAdminRoutes_RequireAuth(t *testing.T) {
	ts := createTestServer(t)

	rec := ts.do(http.MethodGet, "/api/admin/stats", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = ts.do(http.MethodGet, "/api/admin/stats", nil, bearer("wrong-token"))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = ts.do(http.MethodGet, "/api/admin/stats", nil, bearer(adminApiToken))
	assert.Equal(t, http.StatusOK, rec.Code)

	// a valid session without admin permission
	claims := &jwtCustomClaims{
		Permission: "readonly",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("jwt-test-secret"))
	require.NoError(t, err)
	rec = ts.do(http.MethodGet, "/api/admin/stats", nil, bearer(token))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAdminRoutes_WithoutApiTokenConfigured(t *testing.T) {
	ts := createTestServer(t, func(appConfig *config.AppConfig) {
		appConfig.AdminApiToken = ""
	})

	rec := ts.do(http.MethodGet, "/api/admin/stats", nil, bearer(""))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminLogin_SignedChallenge(t *testing.T) {
	sk := nostr.GeneratePrivateKey()
	pubkey, err := nostr.GetPublicKey(sk)
	require.NoError(t, err)
	ts := createTestServer(t, func(appConfig *config.AppConfig) {
		appConfig.AdminPubkey = pubkey
	})

	rec := ts.do(http.MethodPost, "/api/admin/challenge", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var challengeResponse api.AdminChallengeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &challengeResponse))
	require.True(t, strings.HasPrefix(challengeResponse.Challenge, constants.ADMIN_CHALLENGE_PREFIX))

	event := nostr.Event{
		CreatedAt: nostr.Now(),
		Kind:      27235,
		Tags:      nostr.Tags{},
		Content:   challengeResponse.Challenge,
	}
	require.NoError(t, event.Sign(sk))

	rec = ts.do(http.MethodPost, "/api/admin/login", event, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var tokenResponse authTokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tokenResponse))
	require.NotEmpty(t, tokenResponse.Token)

	rec = ts.do(http.MethodGet, "/api/admin/stats", nil, bearer(tokenResponse.Token))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(http.MethodGet, "/api/admin/rentals?token="+tokenResponse.Token, nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// challenges are single use
	rec = ts.do(http.MethodPost, "/api/admin/login", event, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid challenge")
}

func TestAdminLogin_Rejections(t *testing.T) {
	sk := nostr.GeneratePrivateKey()
	pubkey, err := nostr.GetPublicKey(sk)
	require.NoError(t, err)
	ts := createTestServer(t, func(appConfig *config.AppConfig) {
		appConfig.AdminPubkey = pubkey
	})

	otherEvent := nostr.Event{CreatedAt: nostr.Now(), Kind: 27235, Tags: nostr.Tags{}, Content: "ach_x"}
	require.NoError(t, otherEvent.Sign(nostr.GeneratePrivateKey()))
	rec := ts.do(http.MethodPost, "/api/admin/login", otherEvent, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "Unauthorized: invalid pubkey")

	emptyEvent := nostr.Event{CreatedAt: nostr.Now(), Kind: 27235, Tags: nostr.Tags{}, Content: "  "}
	require.NoError(t, emptyEvent.Sign(sk))
	rec = ts.do(http.MethodPost, "/api/admin/login", emptyEvent, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Missing challenge in event content")

	require.NoError(t, ts.svc.repos.Challenges.Save(context.Background(), &models.AdminChallenge{
		Challenge: "ach_stale",
		CreatedAt: models.NewTimestamp(time.Now().Add(-10 * time.Minute)),
		ExpiresAt: models.NewTimestamp(time.Now().Add(-5 * time.Minute)),
	}))
	staleEvent := nostr.Event{CreatedAt: nostr.Now(), Kind: 27235, Tags: nostr.Tags{}, Content: "ach_stale"}
	require.NoError(t, staleEvent.Sign(sk))
	rec = ts.do(http.MethodPost, "/api/admin/login", staleEvent, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Challenge expired")
}

func TestAdminBanUnbanExtendRevoke(t *testing.T) {
	ts := createTestServer(t)
	ts.saveRental(t, "dave", time.Now().Add(time.Hour), "")
	admin := bearer(adminApiToken)

	rec := ts.do(http.MethodPost, "/api/admin/unban/dave", nil, admin)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "User is not banned")

	rec = ts.do(http.MethodPost, "/api/admin/extend/dave", map[string]uint64{"minutes": 0}, admin)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Minutes must be between 1 and 525600")

	rec = ts.do(http.MethodPost, "/api/admin/extend/nobody", map[string]uint64{"minutes": 60}, admin)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(http.MethodPost, "/api/admin/extend/dave", map[string]uint64{"minutes": 60}, admin)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "extended", rec.Body.String())

	rec = ts.do(http.MethodPost, "/api/admin/revoke/dave", nil, admin)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "revoked", rec.Body.String())

	rec = ts.do(http.MethodPost, "/api/admin/revoke/dave", nil, admin)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = ts.do(http.MethodPost, "/api/admin/ban/dave", map[string]string{"reason": "spam"}, admin)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "banned", rec.Body.String())

	rec = ts.do(http.MethodPost, "/api/admin/ban/dave", nil, admin)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = ts.do(http.MethodGet, "/api/admin/rentals?status=banned", nil, admin)
	require.Equal(t, http.StatusOK, rec.Code)
	var listResponse rentals.ListRentalsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listResponse))
	require.Len(t, listResponse.Rentals, 1)
	assert.Equal(t, "dave", listResponse.Rentals[0].Username)

	rec = ts.do(http.MethodPost, "/api/admin/unban/dave", nil, admin)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "unbanned", rec.Body.String())
}

func TestAdminPricing(t *testing.T) {
	ts := createTestServer(t)
	admin := bearer(adminApiToken)

	rec := ts.do(http.MethodPut, "/api/admin/pricing", map[string]interface{}{
		"2w": map[string]uint64{"email": 1},
	}, admin)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(http.MethodPut, "/api/admin/pricing", map[string]interface{}{
		"30d": map[string]uint64{"email": 111},
	}, admin)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = ts.do(http.MethodGet, "/api/pricing", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var table models.PricingTable
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &table))
	assert.Equal(t, uint64(111), table[models.PlanThirtyDays][constants.SERVICE_EMAIL])
	// untouched cells fall back to the defaults
	assert.Equal(t, uint64(150), table[models.PlanThirtyDays][constants.SERVICE_SUBDOMAIN])
	assert.Equal(t, uint64(10), table[models.PlanOneDay][constants.SERVICE_EMAIL])
}

func TestAdminProvisionHandler(t *testing.T) {
	ts := createTestServer(t)
	pubkey, err := nostr.GetPublicKey(nostr.GeneratePrivateKey())
	require.NoError(t, err)

	rec := ts.do(http.MethodPost, "/api/admin/provision", map[string]interface{}{
		"username": "erin",
		"service":  "nip05",
		"plan":     "7d",
		"pubkey":   pubkey,
	}, bearer(adminApiToken))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var provisionResponse api.DirectProvisionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &provisionResponse))
	assert.True(t, provisionResponse.Success)
	assert.Equal(t, "erin", provisionResponse.Username)
	assert.True(t, strings.HasPrefix(provisionResponse.ManagementToken, constants.MANAGEMENT_TOKEN_PREFIX))

	rec = ts.do(http.MethodGet, "/api/check/erin", nil, nil)
	assert.Contains(t, rec.Body.String(), `"available":false`)
}

func TestInfoAndHealthHandlers(t *testing.T) {
	ts := createTestServer(t, func(appConfig *config.AppConfig) {
		appConfig.MockPayment = true
	})

	rec := ts.do(http.MethodGet, "/api/info", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var info api.InfoResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	assert.Equal(t, tests.TestDomain, info.Domain)
	assert.Len(t, info.Plans, 5)
	assert.True(t, info.MockPayment)

	rec = ts.do(http.MethodGet, "/health", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var health api.HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, "ok", health.Status)
	require.Len(t, health.Alarms, 1)
	assert.Equal(t, api.HealthAlarmKindMockPayment, health.Alarms[0].Kind)
}

func TestErrorResponse_StatusMapping(t *testing.T) {
	httpSvc := &HttpService{}
	e := echo.New()

	testCases := []struct {
		err    error
		status int
		body   string
	}{
		{models.NewValidationError("bad plan"), http.StatusBadRequest, "bad plan"},
		{models.NewBannedError(), http.StatusForbidden, "This username is blocked"},
		{models.NewForbiddenError("nope"), http.StatusForbidden, "nope"},
		{models.NewNotFoundError("Order not found"), http.StatusNotFound, "Order not found"},
		{models.NewConflictError("taken"), http.StatusConflict, "taken"},
		{models.NewExpiredError("Order expired"), http.StatusGone, "Order expired"},
		{models.NewUpstreamError("Failed to create invoice", assert.AnError), http.StatusBadGateway, "Failed to create invoice"},
		{assert.AnError, http.StatusInternalServerError, "Internal server error"},
	}

	for _, tc := range testCases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := httpSvc.errorResponse(c, tc.err)
		assert.NoError(t, err)
		assert.Equal(t, tc.status, rec.Code)

		var errorResponse ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errorResponse))
		assert.Equal(t, tc.body, errorResponse.Message)
		assert.NotContains(t, errorResponse.Message, assert.AnError.Error())
	}
}
