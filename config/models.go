package config

import "time"

type AppConfig struct {
	Port         string `envconfig:"PORT" default:"8080"`
	Domain       string `envconfig:"DOMAIN" default:"lokirent.io"`
	BaseUrl      string `envconfig:"BASE_URL"`
	Workdir      string `envconfig:"WORK_DIR"`
	LogLevel     string `envconfig:"LOG_LEVEL" default:"4"`
	LogToFile    bool   `envconfig:"LOG_TO_FILE" default:"false"`
	LogDBQueries bool   `envconfig:"LOG_DB_QUERIES" default:"false"`

	StoreBackend string `envconfig:"STORE_BACKEND" default:"sqlite"`
	DatabaseUri  string `envconfig:"DATABASE_URI" default:"lokirent.db"`
	S3Bucket     string `envconfig:"S3_BUCKET"`
	S3Endpoint   string `envconfig:"S3_ENDPOINT"`
	S3Region     string `envconfig:"S3_REGION" default:"auto"`
	S3AccessKey  string `envconfig:"S3_ACCESS_KEY"`
	S3SecretKey  string `envconfig:"S3_SECRET_KEY"`
	RedisUrl     string `envconfig:"REDIS_URL"`
	PostgresUrl  string `envconfig:"POSTGRES_URL"`

	CoinosApiUrl   string `envconfig:"COINOS_API_URL" default:"https://coinos.io/api"`
	CoinosApiToken string `envconfig:"COINOS_API_TOKEN"`
	MockPayment    bool   `envconfig:"MOCK_PAYMENT" default:"false"`

	CloudflareApiUrl   string `envconfig:"CF_API_URL" default:"https://api.cloudflare.com/client/v4"`
	CloudflareApiToken string `envconfig:"CF_API_TOKEN"`
	CloudflareZoneId   string `envconfig:"CF_ZONE_ID"`
	MockDNS            bool   `envconfig:"MOCK_DNS" default:"false"`

	AmqpUrl      string `envconfig:"AMQP_URL"`
	AmqpExchange string `envconfig:"AMQP_EXCHANGE" default:"lokirent.events"`

	ResendApiUrl string `envconfig:"RESEND_API_URL" default:"https://api.resend.com"`
	ResendApiKey string `envconfig:"RESEND_API_KEY"`
	EmailFrom    string `envconfig:"EMAIL_FROM"`

	AdminApiToken string `envconfig:"ADMIN_API_TOKEN"`
	AdminPubkey   string `envconfig:"ADMIN_PUBKEY"`
	JWTSecret     string `envconfig:"JWT_SECRET"`

	SweepInterval   time.Duration `envconfig:"SWEEP_INTERVAL" default:"5m"`
	ProviderTimeout time.Duration `envconfig:"PROVIDER_TIMEOUT" default:"15s"`
	OrderTTL        time.Duration `envconfig:"ORDER_TTL" default:"15m"`
}

type Config interface {
	GetEnv() *AppConfig
	GetDomain() string
	GetBaseUrl() string
	GetPaymentCallbackUrl() string
	GetChallengeUrl(orderID string, challenge string) string
	GetOrderTTL() time.Duration
	IsMockPayment() bool
	IsMockDNS() bool
	GetDNSZoneId() string
	GetJWTSecret() (string, error)
	GetAdminApiToken() string
	GetAdminPubkey() string
}
