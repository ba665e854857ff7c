package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"VConnct/data/mongoutil"
	"VConnct/global"
	"VConnct/logger"
	"VConnct/middleware"
	chathandler "VConnct/module/chat"
	chatservice "VConnct/module/chat/service"
	insighthandler "VConnct/module/insight"
	insightservice "VConnct/module/insight/service"
	userhandler "VConnct/module/user"
	userservice "VConnct/module/user/service"
	"VConnct/service/ai"
	"VConnct/service/gateway"
	"VConnct/service/media"
	"VConnct/service/natsx"
	"VConnct/service/storage"
	redissrv "VConnct/service/storage/redis"
	"VConnct/tools/ids"
	"VConnct/tools/security"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	cfg, err := global.Load(*configPath)
	if err != nil {
		logger.Errorf("load config: %v", err)
		os.Exit(1)
	}
	logger.Init(cfg.Server.LogLevel)
	defer logger.Sync()
	ids.SetNodeID(cfg.Server.NodeID)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dialCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	db, err := mongoutil.Connect(dialCtx, &cfg.Mongo)
	cancel()
	if err != nil {
		logger.Errorf("mongo: %v", err)
		os.Exit(1)
	}

	var (
		revoked *storage.RevocationList
		limiter *storage.RateLimiter
	)
	if cfg.Redis.Addr != "" {
		if err := redissrv.Init(redissrv.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		}); err != nil {
			logger.Errorf("redis: %v", err)
			os.Exit(1)
		}
		revoked = storage.NewRevocationList(redissrv.Get())
		limiter = storage.NewRateLimiter(redissrv.Get(), 100, time.Minute)
	} else {
		logger.Warn("redis not configured; token revocation and rate limiting disabled")
	}

	var bus *natsx.Client
	if len(cfg.Nats.Servers) > 0 {
		bus, err = natsx.Dial(natsx.Config{Servers: cfg.Nats.Servers, Name: cfg.Nats.Name})
		if err != nil {
			// events are an optional mirror, never a boot dependency
			logger.Warnf("nats unavailable, events disabled: %v", err)
			bus = nil
		}
	}

	uploader := media.NewCloudinary(cfg.Cloudinary)
	userSvc := userservice.New(db, security.Options{Secret: cfg.JWTSecret(), TTL: cfg.JWT.TTL}, revoked, uploader)
	validator := gateway.NewSessionValidator(cfg.JWTSecret(), userSvc, revoked)
	gw := gateway.New(gateway.Config{
		SendQueueSize:  cfg.Gateway.SendQueueSize,
		AuthTimeout:    cfg.Gateway.AuthTimeout,
		WriteTimeout:   cfg.Gateway.WriteTimeout,
		PingInterval:   cfg.Gateway.PingInterval,
		PongTimeout:    cfg.Gateway.PongTimeout,
		MaxMessageSize: cfg.Gateway.MaxMessageSize,
	}, validator)
	chatSvc := chatservice.New(db, userSvc, uploader, gw, bus)
	insightSvc := insightservice.New(db, chatSvc, ai.NewClient(cfg.HuggingFace))

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.CORS(cfg.Server.ClientOrigin))

	auth := middleware.Auth(validator)
	secureCookie := strings.HasPrefix(cfg.Server.ClientOrigin, "https://")

	api := r.Group("/api")
	userhandler.NewHandler(userSvc, cfg.JWT.TTL, secureCookie).Register(api.Group("/auth"), auth)

	msgGroup := api.Group("/message")
	msgGroup.Use(middleware.RateLimit(limiter), auth)
	chathandler.NewHandler(chatSvc).Register(msgGroup)

	insGroup := api.Group("/insights")
	insGroup.Use(auth)
	insighthandler.NewHandler(insightSvc).Register(insGroup)

	r.GET("/ws", gw.HandleWS)
	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r,
	}
	go func() {
		logger.Infof("listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Errorf("serve: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutCtx)
	gw.Close()
	bus.Close()
	_ = redissrv.Close()
}
