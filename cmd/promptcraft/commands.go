package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/leofalp/promptcraft/catalog"
	"github.com/leofalp/promptcraft/core/builder"
	"github.com/leofalp/promptcraft/core/compose"
	"github.com/leofalp/promptcraft/core/export"
	"github.com/leofalp/promptcraft/core/prompt"
	"github.com/leofalp/promptcraft/internal/api"
	"github.com/leofalp/promptcraft/internal/reference"
	"github.com/leofalp/promptcraft/providers/ai"
)

var toolFlag = &cli.StringFlag{
	Name:    "tool",
	Aliases: []string{"t"},
	Usage:   "Target tool: sora, veo, grok, midjourney, comfy or a1111",
	Value:   string(prompt.Sora),
}

var modifierFlag = &cli.StringSliceFlag{
	Name:    "modifier",
	Aliases: []string{"m"},
	Usage:   "Append a modifier tag (repeatable)",
}

func parseTool(c *cli.Context) (prompt.ToolID, error) {
	tool, ok := prompt.ParseToolID(c.String("tool"))
	if !ok {
		return "", fmt.Errorf("unknown tool %q", c.String("tool"))
	}
	return tool, nil
}

// stateFromFlags builds a prompt state holding the main text from the
// arguments and the modifiers, negative prompt and tone from flags.
func stateFromFlags(c *cli.Context, tool prompt.ToolID) (*prompt.Store, error) {
	store := prompt.NewStore()

	if _, err := store.Update(tool, prompt.FieldMain, strings.Join(c.Args().Slice(), " ")); err != nil {
		return nil, err
	}
	for _, tag := range c.StringSlice("modifier") {
		if _, err := store.AddModifier(tool, tag); err != nil {
			return nil, fmt.Errorf("modifier %q: %w", tag, err)
		}
	}
	if negative := c.String("negative"); negative != "" {
		if _, err := store.Update(tool, prompt.FieldNegative, negative); err != nil {
			return nil, err
		}
	}
	if tone := c.String("tone"); tone != "" {
		if _, err := store.Update(tool, prompt.FieldTone, tone); err != nil {
			return nil, err
		}
	}
	return store, nil
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the local JSON API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Usage: "Listen address",
				Value: "127.0.0.1:8787",
			},
		},
		Action: runServe,
	}
}

func runServe(c *cli.Context) error {
	logger := newLogger(c)
	store := settingsStore(c)

	aiClient, err := newClient(store, logger)
	if err != nil {
		return err
	}

	server, err := api.NewServer(c.String("addr"), api.Options{
		Settings: store,
		Enhancer: aiClient,
		Logger:   logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(c.App.Writer, "Serving PromptCraft API on http://%s\n", c.String("addr"))
	return server.Start(ctx)
}

func enhanceCommand() *cli.Command {
	return &cli.Command{
		Name:      "enhance",
		Usage:     "Rewrite a prompt with the configured AI provider",
		ArgsUsage: "PROMPT...",
		Flags: []cli.Flag{
			toolFlag,
			&cli.StringFlag{
				Name:  "tone",
				Usage: "Grok tone: Standard, Fun Mode or Technical",
			},
			&cli.StringFlag{
				Name:  "from-url",
				Usage: "Seed the prompt with the Markdown of a web page",
			},
			&cli.BoolFlag{
				Name:  "auto-negative",
				Usage: "Generate a negative prompt instead (comfy, a1111)",
			},
		},
		Action: runEnhance,
	}
}

func runEnhance(c *cli.Context) error {
	tool, err := parseTool(c)
	if err != nil {
		return err
	}
	store, err := stateFromFlags(c, tool)
	if err != nil {
		return err
	}

	if rawURL := c.String("from-url"); rawURL != "" {
		page, err := reference.New().Fetch(c.Context, rawURL)
		if err != nil {
			return fmt.Errorf("failed to fetch reference: %w", err)
		}
		if _, err := store.Update(tool, prompt.FieldMain, page.Markdown); err != nil {
			return err
		}
	}

	logger := newLogger(c)
	aiClient, err := newClient(settingsStore(c), logger)
	if err != nil {
		return err
	}
	b, err := builder.New(tool, store, aiClient, builder.WithLogger(logger))
	if err != nil {
		return err
	}

	run := b.Enhance
	if c.Bool("auto-negative") {
		run = b.AutoNegative
	}

	text, err := run(c.Context)
	if err != nil {
		var enhanceErr *builder.EnhanceError
		if errors.As(err, &enhanceErr) {
			return fmt.Errorf("%s (%s)", enhanceErr.Message, enhanceErr.Kind)
		}
		return err
	}

	fmt.Fprintln(c.App.Writer, text)
	return nil
}

func composeCommand() *cli.Command {
	return &cli.Command{
		Name:      "compose",
		Usage:     "Print the final prompt text",
		ArgsUsage: "PROMPT...",
		Flags:     []cli.Flag{toolFlag, modifierFlag},
		Action: func(c *cli.Context) error {
			tool, err := parseTool(c)
			if err != nil {
				return err
			}
			store, err := stateFromFlags(c, tool)
			if err != nil {
				return err
			}
			text, _ := compose.Current(store.Snapshot(), tool)
			fmt.Fprintln(c.App.Writer, text)
			return nil
		},
	}
}

func exportCommand() *cli.Command {
	return &cli.Command{
		Name:      "export",
		Usage:     "Write the prompt as a markdown document",
		ArgsUsage: "PROMPT...",
		Flags: []cli.Flag{
			toolFlag,
			modifierFlag,
			&cli.StringFlag{
				Name:  "negative",
				Usage: "Negative prompt (comfy, a1111)",
			},
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Usage:   "Output `DIR`",
				Value:   ".",
			},
		},
		Action: runExport,
	}
}

func runExport(c *cli.Context) error {
	tool, err := parseTool(c)
	if err != nil {
		return err
	}
	store, err := stateFromFlags(c, tool)
	if err != nil {
		return err
	}

	shape, _ := store.Shape(tool)
	now := time.Now()
	document := export.Markdown(tool, shape, compose.Compose(tool, shape), now)

	path := filepath.Join(c.String("out"), export.FileName(tool, now))
	if err := os.WriteFile(path, []byte(document), 0o644); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}

	fmt.Fprintf(c.App.Writer, "Exported %s\n", path)
	return nil
}

func settingsCommand() *cli.Command {
	return &cli.Command{
		Name:  "settings",
		Usage: "Show or change the AI provider settings",
		Subcommands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Print the current settings with the key masked",
				Action: runSettingsShow,
			},
			{
				Name:  "set",
				Usage: "Change the settings; omitted flags keep their value",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "provider", Usage: "gemini, anthropic or openai"},
					&cli.StringFlag{Name: "key", Usage: "API key"},
					&cli.StringFlag{Name: "model", Usage: "Model name; empty selects the provider default"},
					&cli.StringFlag{Name: "base-url", Usage: "Base URL of an OpenAI-compatible endpoint"},
				},
				Action: runSettingsSet,
			},
		},
	}
}

func runSettingsShow(c *cli.Context) error {
	current, err := settingsStore(c).Load()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	printSettings(c, current)
	return nil
}

func runSettingsSet(c *cli.Context) error {
	store := settingsStore(c)
	current, err := store.Load()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	if c.IsSet("provider") {
		id, ok := ai.ParseProviderID(c.String("provider"))
		if !ok {
			return fmt.Errorf("unknown provider %q", c.String("provider"))
		}
		current.Provider = id
	}
	if c.IsSet("key") {
		current.APIKey = c.String("key")
	}
	if c.IsSet("model") {
		current.Model = c.String("model")
	}
	if c.IsSet("base-url") {
		current.BaseURL = c.String("base-url")
	}

	if err := store.Save(current); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	fmt.Fprintf(c.App.Writer, "Saved settings to %s\n", store.Path())
	printSettings(c, current)
	return nil
}

func printSettings(c *cli.Context, s ai.Settings) {
	masked := s.Masked()
	fmt.Fprintf(c.App.Writer, "provider: %s\n", masked.Provider)
	fmt.Fprintf(c.App.Writer, "key:      %s\n", masked.APIKey)
	fmt.Fprintf(c.App.Writer, "model:    %s\n", masked.Model)
	fmt.Fprintf(c.App.Writer, "baseUrl:  %s\n", masked.BaseURL)
}

func catalogCommand() *cli.Command {
	return &cli.Command{
		Name:  "catalog",
		Usage: "List tools, tag categories and node templates",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "json", Usage: "Print the catalog as JSON"},
		},
		Action: func(c *cli.Context) error {
			cat := catalog.Default()
			if c.Bool("json") {
				enc := json.NewEncoder(c.App.Writer)
				enc.SetIndent("", "  ")
				return enc.Encode(cat)
			}

			w := c.App.Writer
			fmt.Fprintln(w, "Tools:")
			for _, tool := range cat.Tools {
				fmt.Fprintf(w, "  %-11s %s\n", tool.ID, tool.Description)
			}
			printCategories(w, "Video tags:", cat.VideoCategories)
			printCategories(w, "Diffusion tags:", cat.SDCategories)
			fmt.Fprintf(w, "Grok badges: %s\n", strings.Join(cat.GrokBadges, " | "))
			fmt.Fprintln(w, "Node templates:")
			for _, template := range cat.NodeTemplates {
				fmt.Fprintf(w, "  %-22s %s (%s)\n", template.Key, template.Title, template.Type)
			}
			return nil
		},
	}
}

func printCategories(w io.Writer, title string, categories []catalog.TagCategory) {
	fmt.Fprintln(w, title)
	for _, category := range categories {
		fmt.Fprintf(w, "  %-9s %s\n", category.Name, strings.Join(category.Tags, ", "))
	}
}
