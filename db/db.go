package db

import (
	"errors"
	"fmt"

	"shop_return_desk/models"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrNotFound is returned for an id that does not exist.
var ErrNotFound = errors.New("record not found")

// ConnectDB opens Postgres and migrates the service's tables.
func ConnectDB(dsn string, log *zap.Logger) (*gorm.DB, error) {
	conn, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := Migrate(conn); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	log.Info("database connected")
	return conn, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{}, &models.Credential{}, &models.Invite{},
		&models.ReturnItem{}, &models.LaptopReturn{},
	); err != nil {
		return err
	}

	// default listing order
	for _, table := range []string{models.ReturnItemTable, models.LaptopReturnTable} {
		if err := db.Exec(fmt.Sprintf(`
		  CREATE INDEX IF NOT EXISTS %s_listing_order
		  ON %s (return_date DESC, created_at DESC, id DESC);
		`, table, table)).Error; err != nil {
			return err
		}
	}
	return nil
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
