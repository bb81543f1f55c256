package database

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Driver   string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
	// Path используется только для sqlite.
	Path string
}

func (c *Config) DSN() string {
	switch c.Driver {
	case DriverSQLite:
		// immediate-транзакции берут RESERVED lock сразу, без апгрейда блокировки посреди tx
		return fmt.Sprintf("file:%s?_busy_timeout=10000&_txlock=immediate&_foreign_keys=on", c.Path)
	default:
		return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
			c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
	}
}

func Open(c *Config, logMode gormlogger.LogLevel) (*gorm.DB, error) {
	gcfg := &gorm.Config{
		Logger:  gormlogger.Default.LogMode(logMode),
		NowFunc: func() time.Time { return time.Now().UTC() },
	}

	switch c.Driver {
	case DriverSQLite:
		if dir := filepath.Dir(c.Path); dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create sqlite dir: %w", err)
			}
		}
		db, err := gorm.Open(sqlite.Open(c.DSN()), gcfg)
		if err != nil {
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		// sqlite допускает одного писателя, держим одно соединение
		sqlDB.SetMaxOpenConns(1)
		return db, nil
	case DriverPostgres, "":
		db, err := gorm.Open(postgres.Open(c.DSN()), gcfg)
		if err != nil {
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(20)
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetConnMaxLifetime(time.Hour)
		if err := sqlDB.Ping(); err != nil {
			return nil, fmt.Errorf("failed to ping DB: %w", err)
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unsupported db driver %q", c.Driver)
	}
}

func ConnectDB(c *Config, log *zap.Logger) *gorm.DB {
	db, err := Open(c, gormlogger.Warn)
	if err != nil {
		log.Fatal("Не удалось подключиться к базе данных", zap.String("driver", c.Driver), zap.Error(err))
	}
	log.Info("База данных подключена", zap.String("driver", c.Driver))
	return db
}

// ConnectDBForMigration открывает соединение с подробным логом SQL.
func ConnectDBForMigration(c *Config, log *zap.Logger) *gorm.DB {
	db, err := Open(c, gormlogger.Info)
	if err != nil {
		log.Fatal("Не удалось подключиться к базе данных для миграции", zap.String("driver", c.Driver), zap.Error(err))
	}
	return db
}

func CloseDB(db *gorm.DB, log *zap.Logger) {
	sqlDB, err := db.DB()
	if err != nil {
		log.Error("Не удалось получить sql.DB", zap.Error(err))
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Error("Ошибка при закрытии базы данных", zap.Error(err))
		return
	}
	log.Info("Соединение с базой данных закрыто")
}
