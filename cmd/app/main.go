package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/memomind/memomind/internal"
	pkgconfig "github.com/memomind/memomind/pkg/config"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.Load(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func main() {
	configFlag := &cli.StringFlag{
		Name:        "config",
		Aliases:     []string{"c"},
		Usage:       "Path to config file",
		DefaultText: "config/config.yaml",
		Value:       "config/config.yaml",
		Sources:     cli.EnvVars("APP_CONFIG_FILE"),
	}

	cmd := &cli.Command{
		Name:  "memomind",
		Usage: "Chat with your Markdown notes: vault ingestion, vector retrieval, and grounded answers",
		Flags: []cli.Flag{configFlag},
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "Start the HTTP server with the vault watcher",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					cfg, err := loadConfig(cmd)
					if err != nil {
						return err
					}
					return internal.Run(ctx, internal.WithConfig(cfg))
				},
			},
			{
				Name:  "extract",
				Usage: "Parse the vault and write note records to JSON",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "out",
						Usage: "Output JSON path",
						Value: "processed_notes.json",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					cfg, err := loadConfig(cmd)
					if err != nil {
						return err
					}
					return internal.RunExtract(cfg, cmd.String("out"))
				},
			},
			{
				Name:  "index",
				Usage: "Sync the vault into the vector store once",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					cfg, err := loadConfig(cmd)
					if err != nil {
						return err
					}
					return internal.RunIndex(ctx, cfg)
				},
			},
			{
				Name:  "dataset",
				Usage: "Generate question/answer pairs from the vault as CSV",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "out",
						Usage: "Output CSV path",
						Value: "custom_dataset.csv",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					cfg, err := loadConfig(cmd)
					if err != nil {
						return err
					}
					return internal.RunDataset(ctx, cfg, cmd.String("out"))
				},
			},
			{
				Name:  "mcp",
				Usage: "Serve Memo-Mind tools over the Model Context Protocol (stdio)",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					cfg, err := loadConfig(cmd)
					if err != nil {
						return err
					}
					return internal.RunMCP(ctx, cfg)
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
