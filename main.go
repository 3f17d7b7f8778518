package main

import (
	"context"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"go-durak/config"
	"go-durak/repository"
	"go-durak/router"
	"go-durak/service"
	"go-durak/utils"
	"go-durak/ws"
)

func main() {
	cfg := config.Load()

	logger, err := utils.InitLogger(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	utils.SetSecrets(cfg.JWTSecret, "")

	if err := repository.InitRedis(cfg); err != nil {
		zap.L().Fatal("❌ 连接 Redis 失败", zap.Error(err))
	}

	results, err := repository.OpenResults(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		zap.L().Fatal("❌ 打开结果库失败", zap.String("driver", cfg.DBDriver), zap.Error(err))
	}
	defer results.Close()
	if err := results.Migrate(context.Background()); err != nil {
		zap.L().Fatal("❌ 初始化结果表失败", zap.Error(err))
	}

	svc := service.NewRoomService(repository.Rdb, results, service.Options{AIEndpoint: cfg.AIEndpoint})
	hub := ws.NewHub(svc, cfg.AIDelay)
	svc.SetPresence(hub)

	gin.SetMode(cfg.GinMode)
	r := gin.Default()

	corsConfig := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(cfg.CORSOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.CORSOrigins
	} else {
		corsConfig.AllowAllOrigins = true // 允许所有来源
	}
	r.Use(cors.New(corsConfig))

	router.InitRouter(r, router.Deps{Rooms: svc, Results: results, Hub: hub})

	go hub.ScheduleDailyRoomReset(context.Background())

	zap.L().Info("🚀 服务启动", zap.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		zap.L().Fatal("服务退出", zap.Error(err))
	}
}
