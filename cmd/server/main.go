package main

import (
	"context"
	"log"
	"time"

	"github.com/suPer8Hu/insight-platform/internal/ai"
	"github.com/suPer8Hu/insight-platform/internal/config"
	"github.com/suPer8Hu/insight-platform/internal/db"
	"github.com/suPer8Hu/insight-platform/internal/httpapi"
	"github.com/suPer8Hu/insight-platform/internal/store/rabbitmq"
	"github.com/suPer8Hu/insight-platform/internal/store/redisstore"
)

func main() {
	cfg := config.Load()

	gdb := db.Connect(cfg.DBDSN)

	rds := redisstore.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := rds.Ping(pingCtx); err != nil {
		log.Fatalf("redis ping: %v", err)
	}
	cancel()

	reg := ai.NewRegistry()
	reg.Register("deepseek", func(ctx context.Context) (ai.Provider, error) {
		return ai.NewDeepSeekProvider(cfg.DeepSeekBaseURL, cfg.DeepSeekAPIKey, cfg.DeepSeekModel), nil
	})

	provider, err := reg.Get(context.Background(), cfg.AIProvider)
	if err != nil {
		log.Fatalf("ai provider: %v", err)
	}

	// async path is optional; without rabbit the SSE path still works
	var pub *rabbitmq.Publisher
	if p, err := rabbitmq.NewPublisher(cfg.RabbitURL, cfg.RabbitQueue); err != nil {
		log.Printf("rabbit unavailable, async QA disabled: %v", err)
	} else {
		pub = p
		defer pub.Close()
	}

	r := httpapi.NewRouter(gdb, cfg, rds, provider, pub)

	log.Printf("server listening addr=%s", cfg.HTTPAddr)
	if err := r.Run(cfg.HTTPAddr); err != nil {
		log.Fatalf("server: %v", err)
	}
}
