package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/emrecankuyucu/jurnalAdis/internal/models"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	genKey        = "catalog:gen"
	productsKeyFm = "catalog:products:%d:%s"
)

// RedisClient кэширует списки каталога. Инвалидация сдвигает поколение,
// старые ключи доживают свой TTL и больше не читаются.
type RedisClient struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

func NewRedisClient(addr, password string, db int, ttl time.Duration, log *zap.Logger) (*RedisClient, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Info("Redis connected successfully", zap.String("addr", addr))

	if ttl <= 0 {
		ttl = time.Minute
	}
	return &RedisClient{client: rdb, ttl: ttl, log: log}, nil
}

func (r *RedisClient) Close() error {
	return r.client.Close()
}

func (r *RedisClient) generation(ctx context.Context) (int64, error) {
	gen, err := r.client.Get(ctx, genKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

// GetProducts возвращает список и поколение, под которым его искали.
// При ошибке redis поколение -1.
func (r *RedisClient) GetProducts(ctx context.Context, key string) ([]models.Product, int64, bool) {
	gen, err := r.generation(ctx)
	if err != nil {
		r.log.Warn("redis: не удалось прочитать поколение каталога", zap.Error(err))
		return nil, -1, false
	}

	raw, err := r.client.Get(ctx, fmt.Sprintf(productsKeyFm, gen, key)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.log.Warn("redis: ошибка чтения каталога", zap.String("key", key), zap.Error(err))
			return nil, -1, false
		}
		return nil, gen, false
	}

	var list []models.Product
	if err := json.Unmarshal(raw, &list); err != nil {
		r.log.Warn("redis: битая запись каталога", zap.String("key", key), zap.Error(err))
		return nil, gen, false
	}
	return list, gen, true
}

// SetProducts пишет список под поколением gen, полученным в GetProducts до чтения из базы.
func (r *RedisClient) SetProducts(ctx context.Context, gen int64, key string, list []models.Product) {
	if gen < 0 {
		return
	}
	raw, err := json.Marshal(list)
	if err != nil {
		return
	}
	if err := r.client.Set(ctx, fmt.Sprintf(productsKeyFm, gen, key), raw, r.ttl).Err(); err != nil {
		r.log.Warn("redis: не удалось записать каталог", zap.String("key", key), zap.Error(err))
	}
}

func (r *RedisClient) Invalidate(ctx context.Context) {
	if err := r.client.Incr(ctx, genKey).Err(); err != nil {
		r.log.Warn("redis: не удалось сбросить кэш каталога", zap.Error(err))
	}
}
