package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/starford/havenfs/internal"
	"github.com/starford/havenfs/internal/diag"
	"github.com/starford/havenfs/internal/document"
	"github.com/starford/havenfs/internal/lsp"
	"github.com/starford/havenfs/internal/schema"
	pkgconfig "github.com/starford/havenfs/pkg/config"
)

var version = "dev"

var stdout io.Writer = os.Stdout

// loadConfig reads the config file. A missing file falls back to the
// defaults unless the path was given explicitly.
func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	path := cmd.String("config")
	cfg := internal.NewDefaultConfig()

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) && !cmd.IsSet("config") {
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid default config: %w", err)
		}
		return cfg, nil
	}
	if err := pkgconfig.Load(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	opts := []internal.Option{
		internal.WithConfig(cfg),
		internal.WithVersion(version),
	}

	if err := internal.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}

	return nil
}

func parse(_ context.Context, cmd *cli.Command) error {
	file := cmd.Args().First()
	if file == "" {
		return fmt.Errorf("parse: file argument is required")
	}
	format := cmd.String("format")
	if format != "json" && format != "yaml" {
		return fmt.Errorf("parse: unknown format %q", format)
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("parse: %w", err)
	}
	res := document.Parse(string(data), diag.NewSink())

	if cmd.Bool("validate") {
		if err := schema.ValidateResult(res); err != nil {
			return err
		}
	}
	if err := writeResult(stdout, res, format); err != nil {
		return err
	}

	if cmd.Bool("strict") && res.HasDiagnostics() {
		fmt.Fprint(os.Stderr, diag.Summary(res.Diagnostics))
		return fmt.Errorf("parse: %s: %d diagnostics", file, len(res.Diagnostics))
	}
	return nil
}

func writeResult(w io.Writer, res document.Result, format string) error {
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return fmt.Errorf("parse: encode: %w", err)
	}
	if format == "json" {
		_, err = fmt.Fprintln(w, string(data))
		return err
	}

	// YAML goes through the JSON shape so both formats share field names.
	var generic any
	if err := json.Unmarshal(data, &generic); err != nil {
		return fmt.Errorf("parse: encode: %w", err)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(generic); err != nil {
		return fmt.Errorf("parse: encode yaml: %w", err)
	}
	return enc.Close()
}

func runMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if ws := cmd.String("workspace"); ws != "" {
		cfg.Workspace.Path = ws
	}

	return internal.RunMCP(ctx,
		internal.WithConfig(cfg),
		internal.WithVersion(version),
		internal.WithLogWriter(os.Stderr),
	)
}

func runLSP(_ context.Context, cmd *cli.Command) error {
	verbosity := 0
	if cmd.Bool("debug") {
		verbosity = 2
	}
	return lsp.NewServer(version, verbosity).RunStdio()
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:    "haven",
		Usage:   "Parse, index and serve Haven FS description files",
		Version: version,
		Action:  serve,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file (.yaml or .toml)",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API, event stream and workspace watcher",
				Action: serve,
			},
			{
				Name:      "parse",
				Usage:     "Parse one description file and print the result",
				ArgsUsage: "<file>",
				Action:    parse,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Output format: json or yaml",
						Value:   "json",
					},
					&cli.BoolFlag{
						Name:  "validate",
						Usage: "Check the result against the published JSON Schema",
					},
					&cli.BoolFlag{
						Name:  "strict",
						Usage: "Exit with status 1 when diagnostics were reported",
					},
				},
			},
			{
				Name:   "mcp",
				Usage:  "Serve MCP tools over stdio",
				Action: runMCP,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "workspace",
						Aliases: []string{"w"},
						Usage:   "Workspace directory (overrides the config file)",
					},
				},
			},
			{
				Name:   "lsp",
				Usage:  "Run the language server over stdio",
				Action: runLSP,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "debug",
						Usage: "Verbose language server logging on stderr",
					},
				},
			},
		},
	}
}

func main() {
	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
