package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/leapstack-labs/drizzleport/internal/cli/config"
	"github.com/leapstack-labs/drizzleport/internal/cli/output"
	"github.com/leapstack-labs/drizzleport/pkg/ast"
	"github.com/leapstack-labs/drizzleport/pkg/parser"
	"github.com/spf13/cobra"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext collects the loaded config, the context logger and a
// renderer writing to the command's streams.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())
	mode := output.Mode(cfg.OutputFormat)
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}
}

// SchemaPath returns the positional schema argument if given, otherwise the
// configured schema.
func (c *CommandContext) SchemaPath(args []string) string {
	if len(args) > 0 && args[0] != "" {
		return args[0]
	}
	return c.Cfg.Schema
}

// getConfig returns the current configuration, or the defaults when no
// config was loaded (commands built directly in tests).
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}
	return &config.Config{
		Schema:        config.DefaultSchema,
		Out:           config.DefaultOut,
		LogLevel:      slog.LevelInfo,
		OutputFormat:  config.DefaultOutput,
		WatchDebounce: config.DefaultWatchDebounce,
		Banner:        config.DefaultBanner,
	}
}

// parseSchemaFile reads and parses the schema at path.
func parseSchemaFile(path string, logger *slog.Logger) (*ast.Schema, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema: %w", err)
	}
	logger.Debug("parsing schema", "path", path, "bytes", len(src))
	schema, err := parser.Parse(string(src), parser.WithFile(path), parser.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to parse schema: %w", err)
	}
	return schema, nil
}
