package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/tomz197/syntaxdefense/internal/audio"
	"github.com/tomz197/syntaxdefense/internal/config"
	"github.com/tomz197/syntaxdefense/internal/loop/client"
	"github.com/tomz197/syntaxdefense/internal/loop/server"
	"github.com/tomz197/syntaxdefense/internal/session"
	"golang.org/x/term"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load .env: %v\n", err)
	}

	// The terminal belongs to the game, so logs only go to a file when asked.
	logger := log.New(io.Discard)
	if path := config.GetEnv("GAME_LOG_FILE", ""); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to open log file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		logger = config.NewLogger("game")
		logger.SetOutput(f)
	}

	var listeners []session.Listener
	if config.GetEnvBool("GAME_AUDIO", true) {
		sm := audio.NewSoundManager()
		if err := sm.Initialize(); err != nil {
			logger.Warn("audio disabled", "err", err)
		} else {
			defer sm.Cleanup()
			listeners = append(listeners, sm)
		}
	}

	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to enable raw mode: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = term.Restore(fd, oldState)
	}()

	// A private hub keeps the leaderboard for this run.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	hub := server.NewServer(server.Options{Logger: logger})
	go hub.Run(ctx)

	reader := bufio.NewReader(os.Stdin)
	c := client.NewClient(hub, reader, os.Stdout, client.ClientOptions{
		Username:  config.GetEnv("USER", ""),
		Listeners: listeners,
		Logger:    logger,
	})
	if err := c.Run(); err != nil {
		_ = term.Restore(fd, oldState)
		fmt.Fprintf(os.Stderr, "game error: %v\n", err)
		os.Exit(1)
	}
}
