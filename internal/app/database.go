package app

import (
	"fmt"
	"path"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/servicehub/servicehub/config"
)

// getDatabase opens the configured database. Postgres is the production
// store; sqlite keeps a file under the workdir for development setups.
func getDatabase(cfg config.DBConfig, workdir string) *gorm.DB {
	logLevel := gormlogger.Warn
	if cfg.Debug {
		logLevel = gormlogger.Info
	}
	gcfg := &gorm.Config{
		Logger: gormlogger.Default.LogMode(logLevel),
	}

	var dialector gorm.Dialector
	switch cfg.Type {
	case "sqlite":
		dialector = sqlite.Open(path.Join(workdir, "data", cfg.Name+".db"))
	default:
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable TimeZone=%s",
			cfg.Host, cfg.Port, cfg.User, cfg.Passwd, cfg.Name, time.Local.String())
		dialector = postgres.Open(dsn)
	}

	db, err := gorm.Open(dialector, gcfg)
	if err != nil {
		zap.S().Panicf("database connect error: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		zap.S().Panicf("database handle error: %v", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxConn)
	sqlDB.SetMaxIdleConns(cfg.IdleConn)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db
}
