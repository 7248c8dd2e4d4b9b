package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/wikimark/internal"
	pkgconfig "github.com/starford/wikimark/pkg/config"
)

var version = "dev"

func options(cmd *cli.Command) ([]internal.Option, error) {
	configPath := cmd.String("config")

	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadOptional(configPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return []internal.Option{
		internal.WithConfig(cfg),
		internal.WithVersion(version),
	}, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	opts, err := options(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func build(ctx context.Context, cmd *cli.Command) error {
	opts, err := options(cmd)
	if err != nil {
		return err
	}
	if err := internal.Build(ctx, opts...); err != nil {
		return fmt.Errorf("build error: %w", err)
	}
	return nil
}

func serveMCP(ctx context.Context, cmd *cli.Command) error {
	opts, err := options(cmd)
	if err != nil {
		return err
	}
	if err := internal.ServeMCP(ctx, opts...); err != nil {
		return fmt.Errorf("mcp error: %w", err)
	}
	return nil
}

func render(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 1 {
		return fmt.Errorf("render: expected exactly one file argument")
	}
	opts, err := options(cmd)
	if err != nil {
		return err
	}

	out := os.Stdout
	if p := cmd.String("out"); p != "" {
		f, err := os.Create(p)
		if err != nil {
			return fmt.Errorf("render: %w", err)
		}
		defer f.Close()
		out = f
	}
	return internal.RenderFile(ctx, cmd.Args().First(), out, opts...)
}

func main() {
	cmd := &cli.Command{
		Name:           "wikimark",
		Usage:          "Render Obsidian-flavoured Markdown vaults to HTML",
		Version:        version,
		DefaultCommand: "serve",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Serve the rendered vault with live reload and the JSON API",
				Action: serve,
			},
			{
				Name:   "build",
				Usage:  "Render the whole vault into the output directory",
				Action: build,
			},
			{
				Name:   "mcp",
				Usage:  "Serve MCP tools on stdin/stdout",
				Action: serveMCP,
			},
			{
				Name:      "render",
				Usage:     "Render a single Markdown file",
				ArgsUsage: "<file>",
				Action:    render,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "out",
						Aliases: []string{"o"},
						Usage:   "Write HTML to this file instead of stdout",
					},
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
