package main

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/tomz197/syntaxdefense/internal/config"
	gameconfig "github.com/tomz197/syntaxdefense/internal/loop/config"
	"github.com/tomz197/syntaxdefense/internal/loop/server"
	"github.com/tomz197/syntaxdefense/internal/web"
)

const (
	defaultHost = "0.0.0.0"
	defaultPort = "8080"
)

//go:embed index.html
var htmlPage string

func main() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load .env: %v\n", err)
	}
	logger := config.NewLogger("web")

	host := config.GetEnv("WEB_HOST", defaultHost)
	port := config.GetEnv("WEB_PORT", defaultPort)
	sshHost := config.GetEnv("SSH_DISPLAY_HOST", "your-server.com")
	boardSize, err := config.GetEnvInt("LEADERBOARD_SIZE", gameconfig.LeaderboardSize)
	if err != nil {
		logger.Warn("invalid LEADERBOARD_SIZE, using default", "err", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	hub := server.NewServer(server.Options{TopN: boardSize, Logger: logger.WithPrefix("hub")})
	go hub.Run(ctx)

	page := strings.ReplaceAll(htmlPage, "{{.SSHHost}}", sshHost)
	srv := &http.Server{
		Addr:              net.JoinHostPort(host, port),
		Handler:           web.NewHandler(hub, web.Options{Page: page, Logger: logger}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("starting web server", "url", "http://"+srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", "err", err)
		}
	}()

	<-done
	logger.Info("shutting down server")

	// WebSocket sessions end when they receive the hub's shutdown event.
	hub.Shutdown(5 * time.Second)
	cancel()

	shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "err", err)
	}
}
