package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/flokiorg/lokirent/constants"
	"github.com/flokiorg/lokirent/logger"
)

type config struct {
	Env       *AppConfig
	jwtSecret string
	mu        sync.Mutex
}

func NewConfig(env *AppConfig) (*config, error) {
	cfg := &config{}
	err := cfg.init(env)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

func (cfg *config) init(env *AppConfig) error {
	if env == nil {
		return errors.New("missing app config")
	}
	cfg.Env = env

	if cfg.Env.Domain == "" {
		return errors.New("DOMAIN must not be empty")
	}
	if cfg.Env.OrderTTL <= 0 {
		cfg.Env.OrderTTL = constants.ORDER_TTL
	}

	switch cfg.Env.StoreBackend {
	case constants.STORE_BACKEND_SQLITE, constants.STORE_BACKEND_S3, constants.STORE_BACKEND_REDIS, constants.STORE_BACKEND_POSTGRES:
	default:
		return fmt.Errorf("unsupported STORE_BACKEND %q", cfg.Env.StoreBackend)
	}

	if !cfg.Env.MockPayment && cfg.Env.CoinosApiToken == "" {
		logger.Logger.Warn().Msg("COINOS_API_TOKEN not set, invoice creation will fail")
	}
	if cfg.Env.CloudflareZoneId == "" {
		logger.Logger.Warn().Msg("CF_ZONE_ID not set, skipping DNS provisioning")
	}
	if cfg.Env.AdminApiToken == "" && cfg.Env.AdminPubkey == "" {
		logger.Logger.Warn().Msg("No admin credentials configured, admin API is unreachable")
	}

	cfg.jwtSecret = cfg.Env.JWTSecret
	return nil
}

func (cfg *config) GetEnv() *AppConfig {
	return cfg.Env
}

func (cfg *config) GetDomain() string {
	return cfg.Env.Domain
}

func (cfg *config) GetBaseUrl() string {
	if cfg.Env.BaseUrl != "" {
		return strings.TrimSuffix(cfg.Env.BaseUrl, "/")
	}
	return "https://" + cfg.Env.Domain
}

func (cfg *config) GetPaymentCallbackUrl() string {
	return cfg.GetBaseUrl() + "/api/webhook/coinos"
}

func (cfg *config) GetChallengeUrl(orderID string, challenge string) string {
	return fmt.Sprintf("%s/api/order/%s/confirm/%s", cfg.GetBaseUrl(), url.PathEscape(orderID), url.PathEscape(challenge))
}

func (cfg *config) GetOrderTTL() time.Duration {
	return cfg.Env.OrderTTL
}

func (cfg *config) IsMockPayment() bool {
	return cfg.Env.MockPayment
}

func (cfg *config) IsMockDNS() bool {
	return cfg.Env.MockDNS
}

func (cfg *config) GetDNSZoneId() string {
	return cfg.Env.CloudflareZoneId
}

func (cfg *config) GetAdminApiToken() string {
	return cfg.Env.AdminApiToken
}

func (cfg *config) GetAdminPubkey() string {
	return cfg.Env.AdminPubkey
}

// GetJWTSecret returns the configured admin session secret, generating an
// ephemeral one when none is set. Ephemeral secrets log every admin out on restart.
func (cfg *config) GetJWTSecret() (string, error) {
	cfg.mu.Lock()
	defer cfg.mu.Unlock()

	if cfg.jwtSecret != "" {
		return cfg.jwtSecret, nil
	}
	hexSecret, err := randomHex(32)
	if err != nil {
		logger.Logger.Error().Err(err).Msg("failed to generate JWT secret")
		return "", err
	}
	logger.Logger.Info().Msg("Generated ephemeral JWT secret")
	cfg.jwtSecret = hexSecret
	return cfg.jwtSecret, nil
}

func randomHex(n int) (string, error) {
	bytes := make([]byte, n)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
