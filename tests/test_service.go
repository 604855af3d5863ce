package tests

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/flokiorg/lokirent/config"
	"github.com/flokiorg/lokirent/db/migrations"
	"github.com/flokiorg/lokirent/logger"
	"github.com/flokiorg/lokirent/store"
)

const TestDomain = "lokirent.test"
const TestZoneId = "zone-test"

func init() {
	logger.Init("2")
}

// NewTestConfig returns a config for a test deployment. Pass mutators to
// change individual settings before validation.
func NewTestConfig(t *testing.T, mutators ...func(*config.AppConfig)) config.Config {
	appConfig := &config.AppConfig{
		Port:             "8080",
		Domain:           TestDomain,
		StoreBackend:     "sqlite",
		CloudflareZoneId: TestZoneId,
		CoinosApiToken:   "test-token",
		AdminApiToken:    "admin-secret",
		JWTSecret:        "jwt-test-secret",
		OrderTTL:         15 * time.Minute,
		ProviderTimeout:  5 * time.Second,
	}
	for _, mutate := range mutators {
		mutate(appConfig)
	}
	cfg, err := config.NewConfig(appConfig)
	require.NoError(t, err)
	return cfg
}

// NewTestObjectStore opens a private in-memory sqlite database for t.
func NewTestObjectStore(t *testing.T) *store.GormObjectStore {
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	gormDB, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, migrations.Migrate(gormDB))

	t.Cleanup(func() {
		sqlDB, err := gormDB.DB()
		if err == nil {
			sqlDB.Close()
		}
	})
	return store.NewGormObjectStore(gormDB)
}

func NewTestRepositories(t *testing.T) *store.Repositories {
	return store.NewRepositories(NewTestObjectStore(t))
}

// Clock is a settable time source for services under test.
type Clock struct {
	Current time.Time
}

func NewClock(start time.Time) *Clock {
	return &Clock{Current: start}
}

func (c *Clock) Now() time.Time {
	return c.Current
}

func (c *Clock) Advance(d time.Duration) {
	c.Current = c.Current.Add(d)
}
