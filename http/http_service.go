package http

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/nbd-wtf/go-nostr"

	"github.com/flokiorg/lokirent/api"
	"github.com/flokiorg/lokirent/config"
	"github.com/flokiorg/lokirent/constants"
	"github.com/flokiorg/lokirent/lnclient"
	"github.com/flokiorg/lokirent/logger"
	"github.com/flokiorg/lokirent/models"
	"github.com/flokiorg/lokirent/nip05"
	"github.com/flokiorg/lokirent/orders"
	"github.com/flokiorg/lokirent/rentals"
	"github.com/flokiorg/lokirent/service"
)

const adminPermission = "admin"

type ErrorResponse struct {
	Message string `json:"message"`
}

type authTokenResponse struct {
	Token string `json:"token"`
}

type jwtCustomClaims struct {
	Permission string `json:"permission,omitempty"`
	jwt.RegisteredClaims
}

type updateRentalSettingsRequest struct {
	ManagementToken string `json:"management_token"`
	rentals.UpdateSettingsRequest
}

type HttpService struct {
	api                api.API
	cfg                config.Config
	statusPollInterval time.Duration
}

func NewHttpService(svc service.Service) *HttpService {
	return &HttpService{
		api:                api.NewAPI(svc),
		cfg:                svc.GetConfig(),
		statusPollInterval: defaultStatusPollInterval,
	}
}

func (httpSvc *HttpService) RegisterSharedRoutes(e *echo.Echo) {
	e.HideBanner = true

	e.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		ContentSecurityPolicy: "default-src 'none'; frame-ancestors 'none'",
		ReferrerPolicy:        "no-referrer",
	}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogRemoteIP:  true,
		LogUserAgent: true,
		LogHost:      true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, values middleware.RequestLoggerValues) error {
			logger.HttpLogger.Info().
				Str("uri", values.URI).
				Int("status", values.Status).
				Str("remote_ip", values.RemoteIP).
				Str("user_agent", values.UserAgent).
				Str("host", values.Host).
				Str("request_id", values.RequestID).
				Msg("handled API request")
			return nil
		},
	}))

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.BodyLimit("1M"))

	e.GET("/api/info", httpSvc.infoHandler)
	e.GET("/health", httpSvc.healthHandler)
	e.GET("/api/check/:username", httpSvc.checkUsernameHandler)
	e.GET("/api/pricing", httpSvc.pricingHandler)

	orderRateLimiter := middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(5))
	e.POST("/api/order", httpSvc.createOrderHandler, orderRateLimiter)
	e.GET("/api/order/:order_id/status", httpSvc.orderStatusHandler)
	e.GET("/api/order/:order_id/ws", httpSvc.orderStatusStreamHandler)
	e.GET("/api/order/:order_id/confirm/:challenge", httpSvc.confirmOrderHandler)
	e.POST("/api/renew", httpSvc.renewHandler, orderRateLimiter)
	e.PATCH("/api/settings", httpSvc.updateSettingsHandler, orderRateLimiter)
	e.POST("/api/webhook/coinos", httpSvc.coinosWebhookHandler)

	nip05Cors := middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodOptions},
	})
	e.GET("/.well-known/nostr.json", httpSvc.nip05Handler, nip05Cors)
	e.OPTIONS("/.well-known/nostr.json", func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	}, nip05Cors)

	// one login attempt per second with room for the challenge round trip
	loginRateLimiter := middleware.RateLimiter(middleware.NewRateLimiterMemoryStoreWithConfig(
		middleware.RateLimiterMemoryStoreConfig{Rate: 1, Burst: 3, ExpiresIn: 3 * time.Minute},
	))
	e.POST("/api/admin/challenge", httpSvc.adminChallengeHandler, loginRateLimiter)
	e.POST("/api/admin/login", httpSvc.adminLoginHandler, loginRateLimiter)

	adminGroup := e.Group("/api/admin")
	adminGroup.Use(httpSvc.requireAdmin)

	adminGroup.GET("/rentals", httpSvc.adminRentalsHandler)
	adminGroup.GET("/stats", httpSvc.adminStatsHandler)
	adminGroup.POST("/ban/:username", httpSvc.adminBanHandler)
	adminGroup.POST("/unban/:username", httpSvc.adminUnbanHandler)
	adminGroup.POST("/extend/:username", httpSvc.adminExtendHandler)
	adminGroup.POST("/revoke/:username", httpSvc.adminRevokeHandler)
	adminGroup.POST("/provision", httpSvc.adminProvisionHandler)
	adminGroup.GET("/pricing", httpSvc.pricingHandler)
	adminGroup.PUT("/pricing", httpSvc.adminUpdatePricingHandler)
	adminGroup.GET("/logs", httpSvc.getLogOutputHandler)
	adminGroup.POST("/email/inbound", httpSvc.inboundEmailHandler)
}

func (httpSvc *HttpService) jwtConfig() echojwt.Config {
	return echojwt.Config{
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(jwtCustomClaims)
		},
		KeyFunc: func(token *jwt.Token) (interface{}, error) {
			secret, err := httpSvc.cfg.GetJWTSecret()
			if err != nil {
				return nil, err
			}
			return []byte(secret), nil
		},
		TokenLookup: "header:Authorization:Bearer ,query:token",
	}
}

// requireAdmin accepts either the static ADMIN_API_TOKEN or a session JWT
// issued by adminLoginHandler.
func (httpSvc *HttpService) requireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	withSession := echojwt.WithConfig(httpSvc.jwtConfig())(func(c echo.Context) error {
		token, ok := c.Get("user").(*jwt.Token)
		if !ok {
			return c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Unauthorized"})
		}
		claims, ok := token.Claims.(*jwtCustomClaims)
		if !ok || claims.Permission != adminPermission {
			return c.JSON(http.StatusForbidden, ErrorResponse{
				Message: "This operation requires admin permissions",
			})
		}
		return next(c)
	})

	return func(c echo.Context) error {
		if httpSvc.isAdminApiToken(c.Request().Header.Get(echo.HeaderAuthorization)) {
			return next(c)
		}
		return withSession(c)
	}
}

func (httpSvc *HttpService) isAdminApiToken(authHeader string) bool {
	adminToken := httpSvc.cfg.GetAdminApiToken()
	if adminToken == "" {
		return false
	}
	bearer, found := strings.CutPrefix(authHeader, "Bearer ")
	if !found {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(bearer), []byte(adminToken)) == 1
}

func (httpSvc *HttpService) createJWT(pubkey string) (string, error) {
	claims := &jwtCustomClaims{
		Permission: adminPermission,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   pubkey,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(constants.ADMIN_SESSION_TTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	secret, err := httpSvc.cfg.GetJWTSecret()
	if err != nil {
		return "", err
	}

	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", err
	}
	return signed, nil
}

// errorResponse maps typed domain errors to HTTP statuses. Internal errors
// are logged and never echoed.
func (httpSvc *HttpService) errorResponse(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	switch models.ErrorCode(err) {
	case constants.ERROR_BAD_REQUEST:
		status = http.StatusBadRequest
	case constants.ERROR_FORBIDDEN, constants.ERROR_BANNED:
		status = http.StatusForbidden
	case constants.ERROR_NOT_FOUND:
		status = http.StatusNotFound
	case constants.ERROR_CONFLICT:
		status = http.StatusConflict
	case constants.ERROR_EXPIRED:
		status = http.StatusGone
	case constants.ERROR_UPSTREAM:
		status = http.StatusBadGateway
	}

	if status == http.StatusInternalServerError {
		logger.Logger.Error().Err(err).
			Str("uri", c.Request().RequestURI).
			Msg("Request failed")
		return c.JSON(status, ErrorResponse{Message: "Internal server error"})
	}
	if status == http.StatusBadGateway {
		logger.Logger.Warn().Err(err).Str("uri", c.Request().RequestURI).Msg("Upstream provider failed")
	}
	return c.JSON(status, ErrorResponse{Message: publicMessage(err)})
}

// publicMessage drops the wrapped provider error from the response body.
func publicMessage(err error) string {
	var modelErr *models.Error
	if errors.As(err, &modelErr) {
		return modelErr.Message
	}
	return err.Error()
}

func (httpSvc *HttpService) infoHandler(c echo.Context) error {
	responseBody, err := httpSvc.api.GetInfo(c.Request().Context())
	if err != nil {
		return httpSvc.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, responseBody)
}

func (httpSvc *HttpService) healthHandler(c echo.Context) error {
	healthResponse, err := httpSvc.api.Health(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: fmt.Sprintf("Failed to check health: %v", err),
		})
	}

	return c.JSON(http.StatusOK, healthResponse)
}

func (httpSvc *HttpService) checkUsernameHandler(c echo.Context) error {
	checkResponse, err := httpSvc.api.CheckUsername(c.Request().Context(), c.Param("username"))
	if err != nil {
		return httpSvc.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, checkResponse)
}

func (httpSvc *HttpService) pricingHandler(c echo.Context) error {
	table, err := httpSvc.api.GetPricing(c.Request().Context())
	if err != nil {
		return httpSvc.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, table)
}

func (httpSvc *HttpService) createOrderHandler(c echo.Context) error {
	var createOrderRequest orders.CreateOrderRequest
	if err := c.Bind(&createOrderRequest); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: fmt.Sprintf("Bad request: %s", err.Error()),
		})
	}

	createOrderResponse, err := httpSvc.api.CreateOrder(c.Request().Context(), &createOrderRequest)
	if err != nil {
		return httpSvc.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, createOrderResponse)
}

func (httpSvc *HttpService) orderStatusHandler(c echo.Context) error {
	statusResponse, err := httpSvc.api.GetOrderStatus(c.Request().Context(), c.Param("order_id"))
	if err != nil {
		return httpSvc.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, statusResponse)
}

func (httpSvc *HttpService) confirmOrderHandler(c echo.Context) error {
	invoiceResponse, err := httpSvc.api.ConfirmOrderChallenge(c.Request().Context(), c.Param("order_id"), c.Param("challenge"))
	if err != nil {
		return httpSvc.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, invoiceResponse)
}

func (httpSvc *HttpService) renewHandler(c echo.Context) error {
	var renewRequest orders.RenewRequest
	if err := c.Bind(&renewRequest); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: fmt.Sprintf("Bad request: %s", err.Error()),
		})
	}

	renewResponse, err := httpSvc.api.RenewRental(c.Request().Context(), &renewRequest)
	if err != nil {
		return httpSvc.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, renewResponse)
}

func (httpSvc *HttpService) updateSettingsHandler(c echo.Context) error {
	var settingsRequest updateRentalSettingsRequest
	if err := c.Bind(&settingsRequest); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: fmt.Sprintf("Bad request: %s", err.Error()),
		})
	}

	rentalResponse, err := httpSvc.api.UpdateRentalSettings(c.Request().Context(), settingsRequest.ManagementToken, &settingsRequest.UpdateSettingsRequest)
	if err != nil {
		return httpSvc.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, rentalResponse)
}

// coinosWebhookHandler always answers 200 so the provider does not retry
// deliveries that can never match.
func (httpSvc *HttpService) coinosWebhookHandler(c echo.Context) error {
	var payload lnclient.PaymentWebhook
	if err := c.Bind(&payload); err != nil {
		logger.Logger.Warn().Err(err).Msg("Malformed payment webhook")
		return c.String(http.StatusOK, string(orders.WebhookIgnored))
	}

	result := httpSvc.api.HandlePaymentWebhook(c.Request().Context(), &payload)
	return c.String(http.StatusOK, string(result))
}

func (httpSvc *HttpService) nip05Handler(c echo.Context) error {
	name := c.QueryParam("name")
	if name == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Missing ?name parameter"})
	}

	doc, err := httpSvc.api.ResolveNip05(c.Request().Context(), name)
	if errors.Is(err, nip05.ErrNotFound) {
		return c.JSON(http.StatusNotFound, ErrorResponse{Message: "Username not found"})
	}
	if err != nil {
		return httpSvc.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, doc)
}

func (httpSvc *HttpService) adminChallengeHandler(c echo.Context) error {
	challengeResponse, err := httpSvc.api.CreateAdminChallenge(c.Request().Context())
	if err != nil {
		return httpSvc.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, challengeResponse)
}

func (httpSvc *HttpService) adminLoginHandler(c echo.Context) error {
	var event nostr.Event
	if err := c.Bind(&event); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid event JSON",
		})
	}

	if err := httpSvc.api.VerifyAdminLogin(c.Request().Context(), &event); err != nil {
		return httpSvc.errorResponse(c, err)
	}

	token, err := httpSvc.createJWT(strings.ToLower(event.PubKey))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: fmt.Sprintf("Failed to save session: %s", err.Error()),
		})
	}

	return c.JSON(http.StatusOK, &authTokenResponse{
		Token: token,
	})
}

func (httpSvc *HttpService) adminRentalsHandler(c echo.Context) error {
	var listRentalsRequest api.ListRentalsRequest
	if err := c.Bind(&listRentalsRequest); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: fmt.Sprintf("Bad request: %s", err.Error()),
		})
	}

	listResponse, err := httpSvc.api.ListRentals(c.Request().Context(), &listRentalsRequest)
	if err != nil {
		return httpSvc.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, listResponse)
}

func (httpSvc *HttpService) adminStatsHandler(c echo.Context) error {
	stats, err := httpSvc.api.GetStats(c.Request().Context())
	if err != nil {
		return httpSvc.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, stats)
}

func (httpSvc *HttpService) adminBanHandler(c echo.Context) error {
	var banRequest api.BanRequest
	// the reason is optional, an empty body is fine
	if c.Request().ContentLength != 0 {
		if err := c.Bind(&banRequest); err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{
				Message: fmt.Sprintf("Bad request: %s", err.Error()),
			})
		}
	}

	if err := httpSvc.api.BanUser(c.Request().Context(), c.Param("username"), &banRequest); err != nil {
		return httpSvc.errorResponse(c, err)
	}
	return c.String(http.StatusOK, "banned")
}

func (httpSvc *HttpService) adminUnbanHandler(c echo.Context) error {
	if err := httpSvc.api.UnbanUser(c.Request().Context(), c.Param("username")); err != nil {
		return httpSvc.errorResponse(c, err)
	}
	return c.String(http.StatusOK, "unbanned")
}

func (httpSvc *HttpService) adminExtendHandler(c echo.Context) error {
	var extendRequest api.ExtendRequest
	if err := c.Bind(&extendRequest); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: fmt.Sprintf("Bad request: %s", err.Error()),
		})
	}

	if err := httpSvc.api.ExtendRental(c.Request().Context(), c.Param("username"), &extendRequest); err != nil {
		return httpSvc.errorResponse(c, err)
	}
	return c.String(http.StatusOK, "extended")
}

func (httpSvc *HttpService) adminRevokeHandler(c echo.Context) error {
	if err := httpSvc.api.RevokeRental(c.Request().Context(), c.Param("username")); err != nil {
		return httpSvc.errorResponse(c, err)
	}
	return c.String(http.StatusOK, "revoked")
}

func (httpSvc *HttpService) adminProvisionHandler(c echo.Context) error {
	var provisionRequest rentals.DirectProvisionRequest
	if err := c.Bind(&provisionRequest); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: fmt.Sprintf("Bad request: %s", err.Error()),
		})
	}

	provisionResponse, err := httpSvc.api.DirectProvision(c.Request().Context(), &provisionRequest)
	if err != nil {
		return httpSvc.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, provisionResponse)
}

func (httpSvc *HttpService) adminUpdatePricingHandler(c echo.Context) error {
	var table models.PricingTable
	if err := (&echo.DefaultBinder{}).BindBody(c, &table); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid pricing JSON",
		})
	}

	resolved, err := httpSvc.api.UpdatePricing(c.Request().Context(), table)
	if err != nil {
		return httpSvc.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, resolved)
}

func (httpSvc *HttpService) getLogOutputHandler(c echo.Context) error {
	var getLogRequest api.GetLogOutputRequest
	if err := c.Bind(&getLogRequest); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: fmt.Sprintf("Bad request: %s", err.Error()),
		})
	}

	getLogResponse, err := httpSvc.api.GetLogOutput(c.Request().Context(), &getLogRequest)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: fmt.Sprintf("Failed to get log output: %v", err),
		})
	}

	return c.JSON(http.StatusOK, getLogResponse)
}

func (httpSvc *HttpService) inboundEmailHandler(c echo.Context) error {
	var inboundEmail rentals.InboundEmail
	if err := c.Bind(&inboundEmail); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: fmt.Sprintf("Bad request: %s", err.Error()),
		})
	}

	if err := httpSvc.api.RelayInboundEmail(c.Request().Context(), &inboundEmail); err != nil {
		return httpSvc.errorResponse(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
