package main

import (
	"context"
	"os"

	"github.com/emrecankuyucu/jurnalAdis/config"
	"github.com/emrecankuyucu/jurnalAdis/internal/migrate"
	"github.com/emrecankuyucu/jurnalAdis/pkg/database"
	"github.com/emrecankuyucu/jurnalAdis/pkg/logger"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()
	isDev := os.Getenv("ENV") == "development"
	if err := logger.Init(isDev); err != nil {
		panic(err)
	}

	defer logger.Sync()

	log := logger.L()

	dbCfg := config.LoadDB(log)

	db := database.ConnectDBForMigration(&dbCfg, log)
	defer database.CloseDB(db, log)

	ctx := context.Background()

	opts := migrate.DefaultMigrateOptions()

	if err := migrate.MigrateDB(ctx, db, log, opts); err != nil {
		log.Fatal("Ошибка при выполнении миграции", zap.Error(err))
	}

	log.Info("Миграция успешно завершена")
}
