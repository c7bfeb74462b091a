package commands

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/leapstack-labs/drizzleport/internal/cli/output"
	"github.com/leapstack-labs/drizzleport/pkg/drizzle"
	"github.com/spf13/cobra"
)

// ConvertOutput is the machine-readable result of one conversion.
type ConvertOutput struct {
	Schema      string `json:"schema" yaml:"schema"`
	Out         string `json:"out" yaml:"out"`
	Bytes       int    `json:"bytes" yaml:"bytes"`
	Models      int    `json:"models" yaml:"models"`
	Views       int    `json:"views" yaml:"views"`
	Enums       int    `json:"enums" yaml:"enums"`
	DataSources int    `json:"datasources" yaml:"datasources"`
}

// NewConvertCommand creates the convert command.
func NewConvertCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "convert [schema]",
		Aliases: []string{"generate"},
		Short:   "Convert a Prisma schema into Drizzle ORM TypeScript",
		Long: `Parse a Prisma schema and write the equivalent drizzle-orm/pg-core declarations.

The schema path defaults to the configured schema (schema.prisma). The output
file is only replaced once generation has fully succeeded.

With --watch the schema is converted again whenever it changes, until interrupted.`,
		Example: `  # Convert schema.prisma into out.ts
  drizzleport convert

  # Convert a specific schema into a specific file
  drizzleport convert prisma/schema.prisma --out src/db/schema.ts

  # Print the generated code instead of writing a file
  drizzleport convert --stdout

  # Regenerate on every change
  drizzleport convert --watch`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, args)
		},
	}

	cmd.Flags().String("out", "", "Output file (default: out.ts, '-' for stdout)")
	cmd.Flags().Bool("stdout", false, "Write generated code to stdout")
	cmd.Flags().BoolP("watch", "w", false, "Regenerate whenever the schema changes")
	cmd.Flags().Duration("watch-debounce", 0, "Delay before regenerating after a change (default: 100ms)")
	cmd.Flags().Bool("banner", true, "Start the generated file with a 'Code generated' comment")

	return cmd
}

func runConvert(cmd *cobra.Command, args []string) error {
	cmdCtx := NewCommandContext(cmd)
	cfg := cmdCtx.Cfg

	toStdout, _ := cmd.Flags().GetBool("stdout")
	watch, _ := cmd.Flags().GetBool("watch")
	if cfg.Out == "-" {
		toStdout = true
	}

	c := &converter{
		schemaPath: cmdCtx.SchemaPath(args),
		outPath:    cfg.Out,
		banner:     cfg.Banner,
		logger:     cmdCtx.Logger,
	}

	if toStdout {
		if watch {
			return fmt.Errorf("--watch needs an output file, not stdout")
		}
		code, _, err := c.generate()
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(cmdCtx.Renderer.Writer(), code)
		return err
	}

	r := cmdCtx.Renderer
	if !watch {
		result, err := c.run()
		if err != nil {
			return err
		}
		if result.Models == 0 && result.Views == 0 {
			r.Warning(fmt.Sprintf("%s declares no models or views; %s has no tables", result.Schema, result.Out))
		}
		return reportConversion(r, result)
	}

	if !isStructured(r.EffectiveMode()) {
		r.Info(fmt.Sprintf("Watching %s for changes (Ctrl+C to stop)", c.schemaPath))
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return watchSchema(ctx, c, cfg.WatchDebounce, func(result *ConvertOutput, err error) {
		reportWatchCycle(r, c.schemaPath, result, err)
	})
}

func isStructured(mode output.OutputMode) bool {
	return mode == output.ModeJSON || mode == output.ModeYAML
}

// reportWatchCycle reports one regeneration in watch mode. Structured modes
// emit one document per successful cycle and send failures to stderr.
func reportWatchCycle(r *output.Renderer, schemaPath string, result *ConvertOutput, err error) {
	if isStructured(r.EffectiveMode()) {
		if err != nil {
			r.Error(err.Error())
			return
		}
		_ = reportConversion(r, result)
		return
	}

	if err != nil {
		r.StatusLine(schemaPath, false, err.Error())
		return
	}
	r.StatusLine(result.Out, true, fmt.Sprintf("%d bytes, %d models, %d views, %d enums",
		result.Bytes, result.Models, result.Views, result.Enums))
}

// converter runs one parse, generate and write cycle.
type converter struct {
	schemaPath string
	outPath    string
	banner     bool
	logger     *slog.Logger
}

func (c *converter) generate() (string, *ConvertOutput, error) {
	schema, err := parseSchemaFile(c.schemaPath, c.logger)
	if err != nil {
		return "", nil, err
	}

	code, err := drizzle.Generate(schema, drizzle.WithBanner(c.banner))
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate %s: %w", c.schemaPath, err)
	}

	return code, &ConvertOutput{
		Schema:      c.schemaPath,
		Out:         c.outPath,
		Bytes:       len(code),
		Models:      schema.Models.Len(),
		Views:       schema.Views.Len(),
		Enums:       schema.Enums.Len(),
		DataSources: schema.DataSources.Len(),
	}, nil
}

// run converts the schema and replaces the output file. Nothing is written
// when parsing or generation fails.
func (c *converter) run() (*ConvertOutput, error) {
	code, result, err := c.generate()
	if err != nil {
		return nil, err
	}
	if err := writeFileAtomic(c.outPath, []byte(code)); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", c.outPath, err)
	}
	c.logger.Info("generated drizzle schema", "schema", c.schemaPath, "out", c.outPath, "bytes", result.Bytes)
	return result, nil
}

// writeFileAtomic writes data to a temp file beside path and renames it
// into place.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil { //nolint:gosec // generated source is meant to be readable
		return err
	}
	return os.Rename(tmpName, path)
}

func reportConversion(r *output.Renderer, result *ConvertOutput) error {
	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(result)
	case output.ModeYAML:
		return r.YAML(result)
	case output.ModeMarkdown:
		r.Println(output.FormatHeader(1, "Conversion"))
		r.Println(output.FormatKeyValue("Schema", result.Schema))
		r.Println(output.FormatKeyValue("Output", result.Out))
		r.Println(output.FormatKeyValue("Models", fmt.Sprintf("%d", result.Models)))
		r.Println(output.FormatKeyValue("Views", fmt.Sprintf("%d", result.Views)))
		r.Println(output.FormatKeyValue("Enums", fmt.Sprintf("%d", result.Enums)))
		return nil
	default:
		r.Success(fmt.Sprintf("Wrote %s (%d bytes)", result.Out, result.Bytes))
		r.Muted(fmt.Sprintf("%d models, %d views, %d enums from %s",
			result.Models, result.Views, result.Enums, result.Schema))
		return nil
	}
}
