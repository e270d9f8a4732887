package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/mesdx/hdrenum/internal/config"
	"github.com/mesdx/hdrenum/internal/converter"
	"github.com/mesdx/hdrenum/internal/enums"
	"github.com/mesdx/hdrenum/internal/inputs"
	"github.com/mesdx/hdrenum/internal/treesitter"
	"github.com/mesdx/hdrenum/internal/watch"
)

// Version is the version of the hdrenum CLI.
// Update this constant manually on every release.
const Version = "v0.1.0"

type rootFlags struct {
	configPath    string
	output        string
	repeatPerFile bool
	typedefNames  bool
	constEnum     bool
	watch         bool
	verbose       bool
	writeConfig   bool
}

// NewRootCmd creates the root command for hdrenum.
func NewRootCmd() *cobra.Command {
	var f rootFlags

	rootCmd := &cobra.Command{
		Use:   "hdrenum [flags] <file|dir>...",
		Short: "Convert C header enums to export enum declarations",
		Long: "hdrenum reads C headers and prints every named enum as an export enum block,\n" +
			"stripping the prefix shared by its constants and omitting values that follow\n" +
			"their predecessor.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: false,
		Args: func(cmd *cobra.Command, args []string) error {
			if f.writeConfig {
				return nil
			}
			return cobra.MinimumNArgs(1)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args, &f)
		},
	}

	flags := rootCmd.Flags()
	flags.StringVar(&f.configPath, "config", "", "config file (default ./"+config.FileName+" if present)")
	flags.StringVarP(&f.output, "output", "o", "", "write output to this file instead of stdout")
	flags.BoolVar(&f.repeatPerFile, "repeat-per-file", false, "print all enums collected so far after every input file")
	flags.BoolVar(&f.typedefNames, "typedef-names", false, "name anonymous enums after their typedef")
	flags.BoolVar(&f.constEnum, "const-enum", false, "emit 'export const enum'")
	flags.BoolVar(&f.watch, "watch", false, "rerun when an input header changes")
	flags.BoolVarP(&f.verbose, "verbose", "v", false, "log skipped declarations and print a summary")
	flags.BoolVar(&f.writeConfig, "write-config", false, "write the effective configuration to ./"+config.FileName+" and exit")

	return rootCmd
}

func run(cmd *cobra.Command, args []string, f *rootFlags) error {
	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}
	cfg, err := config.Resolve(f.configPath, wd)
	if err != nil {
		return err
	}
	applyFlags(cmd, cfg, f)

	if f.writeConfig {
		path := config.ConfigPath(wd)
		if err := config.Save(cfg, path); err != nil {
			return err
		}
		cmd.PrintErrf("%s Wrote %s\n", successStyle.Render("✓"), path)
		return nil
	}

	logger, err := newLogger(cmd.ErrOrStderr(), cfg.LogLevel, f.verbose)
	if err != nil {
		return err
	}

	matcher, err := inputs.NewMatcher(cfg.Include, cfg.Exclude)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	j := &job{cfg: cfg, args: args, matcher: matcher, logger: logger, stdout: cmd.OutOrStdout()}
	report, err := j.run(ctx)
	if err != nil {
		return err
	}
	if f.verbose || f.watch {
		printSummary(cmd, report)
	}
	if !f.watch {
		return nil
	}

	w, err := watch.New(watch.Config{
		Args:    args,
		Matcher: matcher,
		Logger:  logger,
		OnChange: func(ctx context.Context) error {
			report, err := j.run(ctx)
			if err != nil {
				return err
			}
			printSummary(cmd, report)
			return nil
		},
	})
	if err != nil {
		return err
	}
	cmd.PrintErrf("%s Watching for changes (Ctrl+C to stop)\n", infoStyle.Render("→"))
	return w.Run(ctx)
}

// applyFlags overrides config values with flags the user set explicitly.
func applyFlags(cmd *cobra.Command, cfg *config.Config, f *rootFlags) {
	flags := cmd.Flags()
	if flags.Changed("output") {
		cfg.Output = f.output
	}
	if flags.Changed("repeat-per-file") {
		cfg.RepeatPerFile = f.repeatPerFile
	}
	if flags.Changed("typedef-names") {
		cfg.TypedefNames = f.typedefNames
	}
	if flags.Changed("const-enum") {
		cfg.ConstEnum = f.constEnum
	}
}

func newLogger(w io.Writer, level string, verbose bool) (*log.Logger, error) {
	logger := log.NewWithOptions(w, log.Options{Prefix: "hdrenum"})
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log_level %q: %w", level, err)
	}
	if verbose {
		lvl = log.DebugLevel
	}
	logger.SetLevel(lvl)
	return logger, nil
}

// job is one complete conversion. Every call to run starts from an empty
// registry.
type job struct {
	cfg     *config.Config
	args    []string
	matcher *inputs.Matcher
	logger  *log.Logger
	stdout  io.Writer
}

func (j *job) run(ctx context.Context) (converter.Report, error) {
	files, err := inputs.Expand(j.args, j.matcher)
	if err != nil {
		return converter.Report{}, err
	}

	provider, err := treesitter.NewProvider(treesitter.Options{TypedefNames: j.cfg.TypedefNames})
	if err != nil {
		return converter.Report{}, err
	}
	conv := converter.New(provider, converter.Options{
		RepeatPerFile: j.cfg.RepeatPerFile,
		Emit: enums.EmitOptions{
			ConstEnum: j.cfg.ConstEnum,
			Header:    j.cfg.Header,
		},
	}, j.logger)

	var buf bytes.Buffer
	out := j.stdout
	if j.cfg.Output != "" {
		out = &buf
	}

	report, err := conv.Run(ctx, files, out)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return report, nil
		}
		return report, err
	}

	if j.cfg.Output != "" {
		if err := os.WriteFile(j.cfg.Output, buf.Bytes(), 0644); err != nil {
			return report, fmt.Errorf("failed to write output: %w", err)
		}
	}
	return report, nil
}
