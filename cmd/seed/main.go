package main

import (
	"context"
	"os"

	"github.com/emrecankuyucu/jurnalAdis/config"
	"github.com/emrecankuyucu/jurnalAdis/internal/migrate"
	"github.com/emrecankuyucu/jurnalAdis/internal/repository"
	"github.com/emrecankuyucu/jurnalAdis/internal/seed"
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

	db := database.ConnectDB(&dbCfg, log)
	defer database.CloseDB(db, log)

	ctx := context.Background()

	if err := migrate.MigrateDB(ctx, db, log, migrate.DefaultMigrateOptions()); err != nil {
		log.Fatal("Ошибка при выполнении миграции", zap.Error(err))
	}

	repos := repository.New(db)

	mode := "seed"
	if len(os.Args) > 1 {
		mode = os.Args[1]
	}

	switch mode {
	case "reset":
		log.Warn("running database reset")
		if err := seed.Reset(ctx, repos, log); err != nil {
			log.Fatal("failed to reset database", zap.Error(err))
		}
	case "seed":
		log.Info("running seed")
		if _, err := seed.Seed(ctx, repos, log); err != nil {
			log.Fatal("failed to seed database", zap.Error(err))
		}
	default:
		log.Fatal("unknown mode, expected seed or reset", zap.String("mode", mode))
	}
}
