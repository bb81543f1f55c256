package testutil

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/emrecankuyucu/jurnalAdis/pkg/database"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// SetupTestDB открывает встроенную sqlite-базу во временной директории теста.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	cfg := &database.Config{
		Driver: database.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "pos_test.db"),
	}
	db, err := database.Open(cfg, gormlogger.Silent)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// SetupTestPostgres поднимает postgres в контейнере. Тест пропускается,
// если docker недоступен.
func SetupTestPostgres(t *testing.T) *gorm.DB {
	t.Helper()
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	ctr, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("pos_test"),
		tcpostgres.WithUsername("pos"),
		tcpostgres.WithPassword("pos"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("start postgres container: %v", err)
	}
	t.Cleanup(func() {
		_ = testcontainers.TerminateContainer(ctr)
	})

	host, err := ctr.Host(ctx)
	if err != nil {
		t.Fatalf("container host: %v", err)
	}
	port, err := ctr.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("container port: %v", err)
	}

	cfg := &database.Config{
		Driver:   database.DriverPostgres,
		Host:     host,
		Port:     port.Port(),
		User:     "pos",
		Password: "pos",
		Name:     "pos_test",
		SSLMode:  "disable",
	}
	db, err := database.Open(cfg, gormlogger.Silent)
	if err != nil {
		t.Fatalf("open postgres: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}
