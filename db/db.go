package db

import (
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/flokiorg/lokirent/logger"
)

// NewDB opens the sqlite database at uri. Migrations are run by the caller.
func NewDB(uri string, logDBQueries bool) (*gorm.DB, error) {
	config := &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	}
	if logDBQueries {
		config.Logger = gormlogger.Default.LogMode(gormlogger.Info)
	}

	gormDB, err := gorm.Open(sqlite.Open(uri), config)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", uri, err)
	}

	// sqlite allows a single writer; WAL lets the sweep read while a webhook writes
	err = gormDB.Exec("PRAGMA journal_mode = WAL").Error
	if err != nil {
		return nil, err
	}
	err = gormDB.Exec("PRAGMA busy_timeout = 5000").Error
	if err != nil {
		return nil, err
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetConnMaxLifetime(time.Hour)

	logger.Logger.Debug().Str("uri", uri).Msg("Opened database")
	return gormDB, nil
}

func Stop(gormDB *gorm.DB) error {
	sqlDB, err := gormDB.DB()
	if err != nil {
		return fmt.Errorf("failed to get database connection: %w", err)
	}
	return sqlDB.Close()
}
