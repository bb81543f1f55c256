package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/emrecankuyucu/jurnalAdis/config"
	"github.com/emrecankuyucu/jurnalAdis/internal/cache"
	"github.com/emrecankuyucu/jurnalAdis/internal/migrate"
	"github.com/emrecankuyucu/jurnalAdis/internal/producer"
	"github.com/emrecankuyucu/jurnalAdis/internal/repository"
	"github.com/emrecankuyucu/jurnalAdis/internal/service"
	gtransport "github.com/emrecankuyucu/jurnalAdis/internal/transport/grpc"
	"github.com/emrecankuyucu/jurnalAdis/internal/transport/rest"
	"github.com/emrecankuyucu/jurnalAdis/pkg/database"
	"github.com/emrecankuyucu/jurnalAdis/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	_ = godotenv.Load()
	isDev := os.Getenv("ENV") == "development"
	if err := logger.Init(isDev); err != nil {
		panic(err)
	}

	defer logger.Sync()

	log := logger.L()

	cfg := config.Load(log)
	if !isDev {
		gin.SetMode(gin.ReleaseMode)
	}

	db := database.ConnectDB(&cfg.DB.Config, log)
	defer database.CloseDB(db, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// встроенная sqlite база создаётся и мигрируется при старте
	if cfg.DB.Driver == database.DriverSQLite {
		if err := migrate.MigrateDB(ctx, db, log, migrate.DefaultMigrateOptions()); err != nil {
			log.Fatal("Ошибка при выполнении миграции", zap.Error(err))
		}
	}

	var productCache service.ProductCache
	if cfg.Redis.Enabled {
		rc, err := cache.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.TTL(), log)
		if err != nil {
			log.Warn("Redis недоступен, каталог читается без кэша", zap.Error(err))
		} else {
			defer rc.Close()
			productCache = rc
		}
	}

	// шина событий опциональна (nil отключает публикацию)
	var events service.EventBus
	if len(cfg.KafkaBrokers) > 0 {
		ep := producer.NewEventProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer ep.Close()
		events = ep
		log.Info("Публикация событий в Kafka включена", zap.Strings("brokers", cfg.KafkaBrokers), zap.String("topic", cfg.KafkaTopic))
	}

	repos := repository.New(db)
	orders := service.NewOrderService(repos, events, productCache, log)
	stock := service.NewStockService(repos, events, productCache, log)
	catalog := service.NewCatalogService(repos, productCache, log)
	tables := service.NewTableService(repos)
	reports := service.NewReportService(repos, cfg.Location)

	ping := func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}

	r, err := rest.Router(rest.Deps{
		Orders:    orders,
		Stock:     stock,
		Catalog:   catalog,
		Tables:    tables,
		Reports:   reports,
		Location:  cfg.Location,
		RateLimit: cfg.RateLimit,
		Ping:      ping,
	}, log)
	if err != nil {
		log.Fatal("failed to build router", zap.Error(err))
	}

	httpSrv := &http.Server{
		Addr:              cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	grpcSrv := gtransport.NewServer(log)
	lis, err := net.Listen("tcp", cfg.GRPCPort)
	if err != nil {
		log.Fatal("failed to listen", zap.Error(err))
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("Starting HTTP server", zap.String("addr", cfg.Port))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		log.Info("Starting gRPC server", zap.String("addr", cfg.GRPCPort))
		return grpcSrv.Serve(lis)
	})

	g.Go(func() error {
		grpcSrv.WatchHealth(gctx, ping, 15*time.Second)
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down servers...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := httpSrv.Shutdown(shutdownCtx)
		grpcSrv.Shutdown()
		return err
	})

	if err := g.Wait(); err != nil {
		log.Error("server stopped with error", zap.Error(err))
		return
	}
	log.Info("Servers stopped gracefully")
}
