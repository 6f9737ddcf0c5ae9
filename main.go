package main

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"taskboard/api"
	"taskboard/board"
	"taskboard/config"
	"taskboard/storage"
)

func main() {
	env, err := config.LoadEnv()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if env.Debug {
		log.SetLevel(log.DebugLevel)
	}
	logger := log.StandardLogger()

	var kv storage.KV
	var deduper api.Deduper
	if env.RedisURL != "" {
		rc := redis.NewClient(redisOptions(env.RedisURL))
		kv = storage.NewRedisKV(rc, env.KeyPrefix)
		deduper = api.NewRedisDeduper(rc, env.DedupeTTL)
	} else {
		logger.Warn("REDIS_URL not set; state is kept in memory only")
		kv = storage.NewMemoryKV()
	}

	loadCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	initial := storage.LoadState(loadCtx, kv, logger)
	cancel()

	writer := storage.NewWriter(kv, logger)
	defer writer.Close()

	broker := api.NewUpdateBroker()
	store := board.NewStore(initial, writer, broker, logger)
	drag := board.NewDragCoordinator(store, logger)

	var auth *api.Auth
	if env.AuthEnv.TestMode {
		auth = api.NewTestAuth(env.AuthEnv.TestSecret)
	} else {
		jwksURL := fmt.Sprintf("https://%s/.well-known/jwks.json", env.AuthEnv.Domain)
		jwks, err := keyfunc.Get(jwksURL, keyfunc.Options{})
		if err != nil {
			log.Fatalf("jwks: %v", err)
		}
		auth = api.NewAuth(jwks, env.AuthEnv.Audience, "https://"+env.AuthEnv.Domain+"/")
	}

	e := echo.New()
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	api.Register(e, store, drag, auth, deduper, broker, logger)

	e.Logger.Fatal(e.Start(env.ListenAddr))
}

// redisOptions accepts both redis:// URLs and the comma-separated
// "host:port,password=...,ssl=true" form some hosted offerings emit.
func redisOptions(conn string) *redis.Options {
	opts, err := redis.ParseURL(conn)
	if err == nil {
		return opts
	}
	parts := strings.Split(conn, ",")
	opts = &redis.Options{Addr: parts[0]}
	for _, p := range parts[1:] {
		kv := strings.SplitN(p, "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch strings.ToLower(kv[0]) {
		case "password":
			opts.Password = kv[1]
		case "ssl":
			if strings.ToLower(kv[1]) == "true" {
				opts.TLSConfig = &tls.Config{}
			}
		}
	}
	return opts
}
