package config

import (
	"reflect"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "REDIS_ADDR", "REDIS_DB", "DB_DRIVER", "DB_DSN", "AI_DELAY_MS", "CORS_ORIGINS"} {
		t.Setenv(k, "")
	}
	cfg := Load()
	if cfg.Port != "8000" || cfg.RedisAddr != "localhost:6379" || cfg.RedisDB != 0 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.DBDriver != "sqlite" || cfg.AIDelay != 1500*time.Millisecond {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.CORSOrigins != nil {
		t.Fatalf("origins = %v", cfg.CORSOrigins)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("AI_DELAY_MS", "0")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test,")
	t.Setenv("DB_DRIVER", "mysql")

	cfg := Load()
	if cfg.Port != "9000" || cfg.RedisDB != 3 || cfg.AIDelay != 0 || cfg.DBDriver != "mysql" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if !reflect.DeepEqual(cfg.CORSOrigins, []string{"http://a.test", "http://b.test"}) {
		t.Fatalf("origins = %v", cfg.CORSOrigins)
	}

	t.Setenv("REDIS_DB", "not-a-number")
	if Load().RedisDB != 0 {
		t.Fatal("bad int should fall back to default")
	}
}
