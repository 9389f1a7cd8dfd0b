package main

import (
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v2"

	"github.com/leofalp/promptcraft/core/client"
	"github.com/leofalp/promptcraft/core/client/middleware"
	"github.com/leofalp/promptcraft/core/settings"
	"github.com/leofalp/promptcraft/providers/ai/anthropic"
	"github.com/leofalp/promptcraft/providers/ai/gemini"
	"github.com/leofalp/promptcraft/providers/ai/openai"
)

const version = "0.1.0"

func newApp() *cli.App {
	return &cli.App{
		Name:    "promptcraft",
		Usage:   "Compose, enhance and export prompts for video, image and diffusion tools",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "settings",
				Aliases: []string{"s"},
				Usage:   "Load provider settings from `FILE`",
				Value:   settings.DefaultPath(),
				EnvVars: []string{"PROMPTCRAFT_SETTINGS"},
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Log every provider call",
			},
		},
		Commands: []*cli.Command{
			serveCommand(),
			enhanceCommand(),
			composeCommand(),
			exportCommand(),
			settingsCommand(),
			catalogCommand(),
		},
	}
}

func settingsStore(c *cli.Context) *settings.FileStore {
	return settings.NewFileStore(c.String("settings"))
}

// newLogger writes to the app's error stream. Provider calls are logged at
// Info, so they only show with --verbose.
func newLogger(c *cli.Context) *slog.Logger {
	level := slog.LevelWarn
	if c.Bool("verbose") {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(c.App.ErrWriter, &slog.HandlerOptions{Level: level}))
}

// newClient wires every provider behind a client that reads store on each
// call.
func newClient(store settings.Store, logger *slog.Logger) (*client.Client, error) {
	c, err := client.New(
		settings.Source(store),
		client.WithProviders(gemini.New(), anthropic.New(), openai.New()),
		client.WithMiddleware(middleware.NewLoggingMiddleware(logger, middleware.LogLevelStandard)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return c, nil
}
