package models

import (
	"fmt"

	"github.com/iolph/wpr/internal/config"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

func InitDB(cfg *config.DatabaseConfig) error {
	var dialector gorm.Dialector

	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	case "mysql":
		dialector = mysql.Open(cfg.DSN)
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	default:
		return fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return fmt.Errorf("failed to connect database: %w", err)
	}

	DB = db
	return nil
}

func AutoMigrate() error {
	return DB.AutoMigrate(
		&User{},
		&Report{},
		&Analysis{},
		&TeamDigest{},
		&SystemConfig{},
		&SystemLog{},
	)
}

func GetDB() *gorm.DB {
	return DB
}

// SeedDefaultData creates default system config rows if not present.
func SeedDefaultData() error {
	defaultConfigs := []SystemConfig{
		{Key: "peer_neutral_rating", Value: "3.0", Type: "float", Group: "analysis", Label: "Peer rating used when no peer feedback exists"},
		{Key: "dashboard_cache_ttl_seconds", Value: "3600", Type: "int", Group: "dashboard", Label: "Dashboard aggregate cache TTL"},
		{Key: "email_enabled", Value: "true", Type: "bool", Group: "email", Label: "Send confirmation emails"},
		{Key: "digest_enabled", Value: "false", Type: "bool", Group: "digest", Label: "Enable weekly team digest"},
		{Key: "digest_schedule", Value: "0 9 * * 1", Type: "string", Group: "digest", Label: "Digest cron schedule (Monday 09:00)"},
		{Key: "digest_recipients", Value: "", Type: "string", Group: "digest", Label: "Comma-separated digest recipient emails"},
		{Key: "log_retention_days", Value: "30", Type: "int", Group: "system", Label: "System log retention days"},
	}

	for _, cfg := range defaultConfigs {
		var count int64
		DB.Model(&SystemConfig{}).Where("`key` = ?", cfg.Key).Count(&count)
		if count == 0 {
			if err := DB.Create(&cfg).Error; err != nil {
				return err
			}
		}
	}

	return nil
}
