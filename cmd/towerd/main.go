package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/towerspire/server/internal/auth"
	"github.com/towerspire/server/internal/config"
	"github.com/towerspire/server/internal/database"
	"github.com/towerspire/server/internal/logger"
	"github.com/towerspire/server/internal/server"
	"github.com/towerspire/server/internal/session"
)

func main() {
	serverConfigFile := flag.String("config", "config/server.yaml", "Path to server config YAML file")
	gameConfigFile := flag.String("game", "config/game.yaml", "Path to game tuning YAML file")
	flag.Parse()

	serverCfg, err := config.LoadServerConfig(*serverConfigFile)
	if err != nil {
		log.Fatalf("Failed to load server config: %v", err)
	}

	logger.Initialize(serverCfg.Logging)
	logger.Info("Starting tower server")

	gameCfg, err := config.Load(*gameConfigFile)
	if err != nil {
		logger.Warning("Failed to load game config, using defaults", "path", *gameConfigFile, "error", err)
		gameCfg = config.Default()
	}

	if serverCfg.Auth.JWTSecret == "" {
		serverCfg.Auth.JWTSecret = randomSecret()
		logger.Warning("No JWT secret configured, generated an ephemeral one; sessions will not survive a restart")
	}

	if len(serverCfg.WebSocket.AllowedOrigins) == 0 {
		logger.Info("WebSocket origin policy", "mode", "same-origin")
	} else if len(serverCfg.WebSocket.AllowedOrigins) == 1 && serverCfg.WebSocket.AllowedOrigins[0] == "*" {
		logger.Warning("WebSocket origin policy allows all origins (not recommended for production)")
	} else {
		logger.Info("WebSocket origin policy", "allowed_origins", serverCfg.WebSocket.AllowedOrigins)
	}

	db, err := database.Open(serverCfg.Database)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()
	logger.Info("Database initialized", "driver", serverCfg.Database.Driver)

	if n, err := db.PruneExpiredSessions(); err != nil {
		logger.Warning("Failed to prune expired sessions", "error", err)
	} else if n > 0 {
		logger.Info("Pruned expired sessions", "count", n)
	}

	srv := server.New(serverCfg, session.Services{
		Game: gameCfg,
		Auth: auth.New(db, serverCfg.Auth),
		DB:   db,
	})

	go func() {
		if err := srv.ListenAndServe(); err != nil {
			log.Fatalf("Server error: %v", err)
		}
	}()
	logger.Info("Tower server running", "address", serverCfg.Listen.Addr())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Shutdown error", "error", err)
	}
	logger.Info("Server stopped")
}

func randomSecret() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		log.Fatalf("Failed to generate JWT secret: %v", err)
	}
	return hex.EncodeToString(buf)
}
