// redis.go
package repository

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"go-durak/config"
)

var (
	Rdb *redis.Client
	Ctx = context.Background()
)

func InitRedis(cfg config.Config) error {
	Rdb = redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr, // Redis 地址（Docker 里用服务名或内网IP）
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	if _, err := Rdb.Ping(Ctx).Result(); err != nil {
		return fmt.Errorf("Redis 连接失败: %w", err)
	}
	zap.L().Info("✅ Redis 连接成功", zap.String("addr", cfg.RedisAddr), zap.Int("db", cfg.RedisDB))
	return nil
}
