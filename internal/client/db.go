package client

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"tebex-support-bot/internal/model"
)

// InitDB opens the backing store selected by the DATABASE_URL scheme
// (sqlite://path, mysql://dsn or postgres://dsn) and migrates the schema.
func InitDB(databaseURL string) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch {
	case strings.HasPrefix(databaseURL, "sqlite://"):
		dialector = sqlite.Open(strings.TrimPrefix(databaseURL, "sqlite://"))
	case strings.HasPrefix(databaseURL, "mysql://"):
		dialector = mysql.Open(strings.TrimPrefix(databaseURL, "mysql://"))
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		dialector = postgres.Open(databaseURL)
	default:
		return nil, fmt.Errorf("unsupported database url: %q", databaseURL)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(
		&model.Customer{},
		&model.Transaction{},
		&model.TransactionPackage{},
		&model.CustomerDeveloper{},
		&model.Ticket{},
		&model.TicketCategory{},
		&model.TicketCategoryField{},
		&model.TicketMember{},
		&model.TicketMessage{},
		&model.Setting{},
	); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	if err := seedSettings(db); err != nil {
		return nil, fmt.Errorf("seed settings: %w", err)
	}

	return db, nil
}

// Settings are not dynamically creatable at runtime, so every known key has
// to exist before the settings store loads.
func seedSettings(db *gorm.DB) error {
	defaults := []model.Setting{
		{Name: "customer_role", DataType: "role_id", Value: ""},
		{Name: "customers_dev_role", DataType: "role_id", Value: ""},
		{Name: "payment_log_channel", DataType: "channel_id", Value: ""},
		{Name: "notifying_discord_id", DataType: "user_id", Value: ""},
		{Name: "max_developers", DataType: "number", Value: "2"},
	}

	for _, setting := range defaults {
		var count int64
		if err := db.Model(&model.Setting{}).Where("name = ?", setting.Name).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}
		if err := db.Create(&setting).Error; err != nil {
			return err
		}
	}

	return nil
}
