package config

import (
	"fmt"
	"log"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"ledger-gateway/internal/model"
)

// InitSinkDatabase opens the gorm connection for the ledger sink.
func InitSinkDatabase(cfg *Config) (*gorm.DB, error) {
	sink := cfg.Sink

	var dialector gorm.Dialector
	switch sink.Type {
	case model.DatabaseTypeMySQL:
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			sink.Username, sink.Password, sink.Host, sink.Port, sink.Database)
		dialector = mysql.Open(dsn)
	default:
		sslMode := "disable"
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			sink.Host, sink.Port, sink.Username, sink.Password, sink.Database, sslMode)
		dialector = postgres.Open(dsn)
	}

	// Configure GORM logger based on log level
	var logLevel logger.LogLevel
	switch cfg.Logging.Level {
	case "debug":
		logLevel = logger.Info
	case "info":
		logLevel = logger.Warn
	case "warn":
		logLevel = logger.Error
	default:
		logLevel = logger.Silent
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to sink database: %w", err)
	}

	// Test the connection
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping sink database: %w", err)
	}

	log.Println("Sink database connection established successfully")
	return db, nil
}
