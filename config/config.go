package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config 服务启动配置，全部来自环境变量
type Config struct {
	Port          string
	RedisAddr     string
	RedisDB       int
	RedisPassword string
	DBDriver      string // mysql / sqlite
	DBDSN         string
	JWTSecret     string
	CORSOrigins   []string // 为空表示允许所有来源
	AIDelay       time.Duration
	AIEndpoint    string // 外部 AI 服务地址，为空时 remote 策略不可用
	LogLevel      string
	GinMode       string
}

func Load() Config {
	cfg := Config{
		Port:          getEnv("PORT", "8000"),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:       getInt("REDIS_DB", 0),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		DBDriver:      getEnv("DB_DRIVER", "sqlite"),
		DBDSN:         getEnv("DB_DSN", "durak.db"),
		JWTSecret:     getEnv("JWT_ACCESS_SECRET", "access-secret"),
		AIDelay:       time.Duration(getInt("AI_DELAY_MS", 1500)) * time.Millisecond,
		AIEndpoint:    os.Getenv("AI_ENDPOINT"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		GinMode:       getEnv("GIN_MODE", "debug"),
	}
	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.CORSOrigins = append(cfg.CORSOrigins, o)
			}
		}
	}
	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
