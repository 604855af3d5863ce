package service

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/adrg/xdg"
	"gorm.io/gorm"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/flokiorg/lokirent/config"
	"github.com/flokiorg/lokirent/constants"
	"github.com/flokiorg/lokirent/db"
	"github.com/flokiorg/lokirent/db/migrations"
	"github.com/flokiorg/lokirent/dns"
	"github.com/flokiorg/lokirent/dns/cloudflare"
	dnsmock "github.com/flokiorg/lokirent/dns/mock"
	"github.com/flokiorg/lokirent/email"
	"github.com/flokiorg/lokirent/lnclient"
	"github.com/flokiorg/lokirent/lnclient/coinos"
	lnmock "github.com/flokiorg/lokirent/lnclient/mock"
	"github.com/flokiorg/lokirent/logger"
	"github.com/flokiorg/lokirent/notifications"
	"github.com/flokiorg/lokirent/orders"
	"github.com/flokiorg/lokirent/pkg/version"
	"github.com/flokiorg/lokirent/provisioning"
	"github.com/flokiorg/lokirent/rentals"
	"github.com/flokiorg/lokirent/store"
)

const notificationQueueSize = 256

type service struct {
	cfg config.Config

	db          *gorm.DB
	closer      io.Closer
	repos       *store.Repositories
	ordersSvc   orders.OrdersService
	rentalsSvc  rentals.RentalsService
	notifier    notifications.Dispatcher
	ctx         context.Context
	wg          *sync.WaitGroup
	sweepCancel context.CancelFunc
}

type options struct {
	sweeper bool
}

type Option func(*options)

// WithoutSweeper skips the periodic expiry sweep, for one-shot tools that
// share the store with a running server.
func WithoutSweeper() Option {
	return func(o *options) {
		o.sweeper = false
	}
}

func NewService(ctx context.Context, opts ...Option) (*service, error) {
	serviceOptions := &options{sweeper: true}
	for _, opt := range opts {
		opt(serviceOptions)
	}

	// Load config from environment variables / .env file
	godotenv.Load(".env")
	appConfig := &config.AppConfig{}
	err := envconfig.Process("", appConfig)
	if err != nil {
		return nil, err
	}

	logger.Init(appConfig.LogLevel)
	logger.Logger.Info().Msg("Lokirent " + version.Tag)

	if appConfig.Workdir == "" {
		appConfig.Workdir = filepath.Join(xdg.DataHome, "/"+constants.APP_IDENTIFIER)
		logger.Logger.Info().Interface("workdir", appConfig.Workdir).Msg("No workdir specified, using default")
	}
	// make sure workdir exists
	os.MkdirAll(appConfig.Workdir, os.ModePerm)

	if appConfig.LogToFile {
		err = logger.AddFileLogger(appConfig.Workdir)
		if err != nil {
			return nil, err
		}
	}

	cfg, err := config.NewConfig(appConfig)
	if err != nil {
		return nil, err
	}

	svc := &service{
		cfg: cfg,
		ctx: ctx,
		wg:  &sync.WaitGroup{},
	}

	objects, err := svc.openObjectStore(ctx, appConfig)
	if err != nil {
		return nil, err
	}
	svc.repos = store.NewRepositories(objects)

	lnClient, err := newLNClient(cfg)
	if err != nil {
		return nil, err
	}
	dnsClient, err := newDNSClient(cfg)
	if err != nil {
		return nil, err
	}
	emailClient, err := newEmailClient(cfg)
	if err != nil {
		return nil, err
	}

	svc.notifier, err = newNotifier(appConfig)
	if err != nil {
		return nil, err
	}
	svc.notifier.Start(ctx)

	coordinator := provisioning.NewCoordinator(cfg, dnsClient, emailClient)
	rentalsSvc := rentals.NewRentalsService(cfg, svc.repos, coordinator, emailClient, svc.notifier, nil)
	svc.rentalsSvc = rentalsSvc
	svc.ordersSvc = orders.NewOrdersService(cfg, svc.repos, rentalsSvc, lnClient, svc.notifier, nil)

	if serviceOptions.sweeper {
		svc.startSweeper(ctx)
	}

	return svc, nil
}

// openObjectStore selects the document backend named by STORE_BACKEND.
func (svc *service) openObjectStore(ctx context.Context, appConfig *config.AppConfig) (store.ObjectStore, error) {
	switch appConfig.StoreBackend {
	case constants.STORE_BACKEND_S3:
		objects, err := store.NewS3ObjectStore(store.S3Config{
			Bucket:    appConfig.S3Bucket,
			Endpoint:  appConfig.S3Endpoint,
			Region:    appConfig.S3Region,
			AccessKey: appConfig.S3AccessKey,
			SecretKey: appConfig.S3SecretKey,
		})
		if err != nil {
			return nil, err
		}
		logger.Logger.Info().Str("bucket", appConfig.S3Bucket).Msg("Using S3 object store")
		return objects, nil

	case constants.STORE_BACKEND_REDIS:
		if appConfig.RedisUrl == "" {
			return nil, errors.New("REDIS_URL must be set for the redis store backend")
		}
		objects, err := store.NewRedisObjectStore(appConfig.RedisUrl, constants.APP_IDENTIFIER+":")
		if err != nil {
			return nil, err
		}
		if err := objects.Ping(ctx); err != nil {
			objects.Close()
			return nil, err
		}
		svc.closer = objects
		logger.Logger.Info().Msg("Using redis object store")
		return objects, nil

	case constants.STORE_BACKEND_POSTGRES:
		if appConfig.PostgresUrl == "" {
			return nil, errors.New("POSTGRES_URL must be set for the postgres store backend")
		}
		objects, err := store.NewPostgresObjectStore(ctx, appConfig.PostgresUrl)
		if err != nil {
			return nil, err
		}
		svc.closer = objects
		logger.Logger.Info().Msg("Using postgres object store")
		return objects, nil

	default:
		// If DATABASE_URI is a URI or a path, leave it unchanged.
		// If it only contains a filename, prepend the workdir.
		if !strings.HasPrefix(appConfig.DatabaseUri, "file:") {
			databasePath, _ := filepath.Split(appConfig.DatabaseUri)
			if databasePath == "" {
				appConfig.DatabaseUri = filepath.Join(appConfig.Workdir, appConfig.DatabaseUri)
			}
		}

		gormDB, err := db.NewDB(appConfig.DatabaseUri, appConfig.LogDBQueries)
		if err != nil {
			return nil, err
		}
		if err := migrations.Migrate(gormDB); err != nil {
			logger.Logger.Error().Err(err).Msg("Failed to migrate")
			db.Stop(gormDB)
			return nil, err
		}
		svc.db = gormDB
		return store.NewGormObjectStore(gormDB), nil
	}
}

// newNotifier delivers owner webhooks and, when AMQP_URL is set, mirrors
// rental lifecycle events to the broker exchange.
func newNotifier(appConfig *config.AppConfig) (notifications.Dispatcher, error) {
	webhooks := notifications.NewWebhookNotifier(notificationQueueSize, appConfig.ProviderTimeout)
	if appConfig.AmqpUrl == "" {
		return webhooks, nil
	}
	publisher, err := notifications.NewRabbitPublisher(appConfig.AmqpUrl, appConfig.AmqpExchange)
	if err != nil {
		return nil, err
	}
	logger.Logger.Info().Str("exchange", appConfig.AmqpExchange).Msg("Publishing rental events to AMQP broker")
	return notifications.NewBrokerNotifier(webhooks, publisher, notificationQueueSize), nil
}

func newLNClient(cfg config.Config) (lnclient.LNClient, error) {
	if cfg.IsMockPayment() {
		logger.Logger.Warn().Msg("MOCK_PAYMENT enabled, invoices are settled without payment")
		return lnmock.NewMockClient(), nil
	}
	env := cfg.GetEnv()
	return coinos.NewCoinosClient(env.CoinosApiUrl, env.CoinosApiToken, env.ProviderTimeout)
}

func newDNSClient(cfg config.Config) (dns.DNSClient, error) {
	if cfg.IsMockDNS() {
		logger.Logger.Warn().Msg("MOCK_DNS enabled, DNS records are only logged")
		return dnsmock.NewMockDNSClient(), nil
	}
	env := cfg.GetEnv()
	return cloudflare.NewCloudflareClient(env.CloudflareApiUrl, env.CloudflareApiToken, env.ProviderTimeout)
}

func newEmailClient(cfg config.Config) (email.EmailClient, error) {
	env := cfg.GetEnv()
	if env.ResendApiKey == "" {
		logger.Logger.Warn().Msg("RESEND_API_KEY not set, outgoing email is disabled")
		return email.NewNoopClient(), nil
	}
	return email.NewResendClient(env.ResendApiUrl, env.ResendApiKey, env.ProviderTimeout)
}

func (svc *service) Shutdown() {
	if svc.sweepCancel != nil {
		svc.sweepCancel()
	}
	svc.wg.Wait()

	// drain pending owner webhooks before closing the store
	svc.notifier.Stop()

	if svc.db != nil {
		err := db.Stop(svc.db)
		if err != nil {
			logger.Logger.Error().Err(err).Msg("Failed to stop database")
		}
	}
	if svc.closer != nil {
		if err := svc.closer.Close(); err != nil {
			logger.Logger.Error().Err(err).Msg("Failed to close object store")
		}
	}
	logger.Logger.Info().Msg("Service stopped")
}

func (svc *service) GetConfig() config.Config {
	return svc.cfg
}

func (svc *service) GetRepositories() *store.Repositories {
	return svc.repos
}

func (svc *service) GetOrdersService() orders.OrdersService {
	return svc.ordersSvc
}

func (svc *service) GetRentalsService() rentals.RentalsService {
	return svc.rentalsSvc
}
