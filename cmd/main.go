package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/weiawesome/wes-chat-relay/internal/broadcast"
	"github.com/weiawesome/wes-chat-relay/internal/cluster"
	"github.com/weiawesome/wes-chat-relay/internal/codec"
	"github.com/weiawesome/wes-chat-relay/internal/config"
	"github.com/weiawesome/wes-chat-relay/internal/domain"
	"github.com/weiawesome/wes-chat-relay/internal/handler"
	"github.com/weiawesome/wes-chat-relay/internal/hub"
	"github.com/weiawesome/wes-chat-relay/internal/registry"
	"github.com/weiawesome/wes-chat-relay/internal/service"
	pkglog "github.com/weiawesome/wes-chat-relay/pkg/log"
	"github.com/weiawesome/wes-chat-relay/pkg/pubsub"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		l := pkglog.L()
		l.Fatal().Err(err).Msg("failed to load configuration")
	}

	nodeID := domain.NodeID(cfg.Node.ID)
	if nodeID == "" {
		nodeID = domain.NewNodeID()
	}

	// Initialize structured logger
	pkglog.Init(pkglog.Config{
		Level:       cfg.Log.Level,
		Pretty:      cfg.Log.Pretty,
		ServiceName: "chat-relay",
		NodeID:      nodeID.String(),
	})
	logger := pkglog.L().With().Str(pkglog.FieldMode, cfg.Node.Mode).Logger()

	logger.Info().Str("host", cfg.Server.Host).Int("port", cfg.Server.Port).Msg("starting chat-relay")

	jsonCodec := codec.NewJSON()
	h := hub.NewHub(jsonCodec)

	ctx, cancel := context.WithCancel(context.Background())

	// Select the broadcaster for the deployment mode
	var (
		broadcaster broadcast.Broadcaster
		bus         pubsub.PubSub
	)
	if cfg.IsCluster() {
		bus, err = pubsub.NewPubSub(cfg.PubSub.Config, nodeID.String())
		if err != nil {
			cancel()
			logger.Fatal().Err(err).Str(pkglog.FieldDriver, cfg.PubSub.Driver).Msg("failed to create cluster bus")
		}

		adapter := cluster.NewAdapter(bus, cfg.PubSub.Topic, nodeID, jsonCodec, h)
		if err := adapter.Subscribe(ctx); err != nil {
			cancel()
			logger.Fatal().Err(err).Str(pkglog.FieldTopic, cfg.PubSub.Topic).Msg("failed to subscribe to cluster topic")
		}

		broadcaster = broadcast.NewClustered(nodeID, h, adapter, cfg.PubSub.PublishTimeout)
		logger.Info().Str(pkglog.FieldDriver, cfg.PubSub.Driver).Str(pkglog.FieldTopic, cfg.PubSub.Topic).Msg("cluster mode enabled")
	} else {
		broadcaster = broadcast.NewLocal(h)
		logger.Info().Msg("local mode enabled")
	}

	// Optional node registry
	var reg *registry.RedisRegistry
	if cfg.Registry.Enabled {
		reg, err = registry.NewRedisRegistry(cfg.Registry, nodeID, h.Count)
		if err != nil {
			cancel()
			logger.Fatal().Err(err).Msg("failed to initialize node registry")
		}
		if err := reg.StartHeartbeat(ctx); err != nil {
			cancel()
			logger.Fatal().Err(err).Msg("failed to start registry heartbeat")
		}
	}

	// Create service and handlers
	chatSvc := service.NewChatService(h, broadcaster, jsonCodec)
	wsHandler := handler.NewWSHandler(chatSvc, cfg.WebSocket)

	var nodes handler.NodeLister
	if reg != nil {
		nodes = reg
	}
	httpHandler := handler.NewHTTPHandler(nodeID, cfg.Node.Mode, h, nodes)

	// Setup routes
	router := mux.NewRouter()
	wsHandler.RegisterRoutes(router)
	httpHandler.RegisterRoutes(router)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      pkglog.HTTPMiddleware(logger)(router),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info().Str("addr", addr).Msg("chat-relay listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down chat-relay")

	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := server.Shutdown(shutdownCtx); err != nil { // 1. stop accepting connections
			logger.Error().Err(err).Msg("server shutdown error")
		}

		h.CloseAll() // 2. disconnect websocket clients

		cancel() // 3. stop bus subscription and heartbeat

		if bus != nil {
			if err := bus.Close(); err != nil { // 4. wait for in-flight bus handlers
				logger.Error().Err(err).Msg("cluster bus close error")
			}
		}

		if reg != nil {
			if err := reg.Close(); err != nil { // 5. remove this node from the registry
				logger.Error().Err(err).Msg("registry close error")
			}
		}
	}()

	select {
	case <-shutdownDone:
		logger.Info().Msg("chat-relay stopped")
	case <-time.After(30 * time.Second):
		logger.Warn().Msg("shutdown timed out after 30s")
	}
}
