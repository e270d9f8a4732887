// Package converter runs the header-to-enum conversion over a list of files.
package converter

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/mesdx/hdrenum/internal/enums"
	"github.com/mesdx/hdrenum/internal/symbols"
)

// Options control emission.
type Options struct {
	// RepeatPerFile prints the whole registry after every file, skipped
	// files included. Otherwise the registry is printed once at the end.
	RepeatPerFile bool

	Emit enums.EmitOptions
}

// Report summarizes one run.
type Report struct {
	Files   int // files parsed and traversed
	Skipped int // files the provider could not parse
	enums.Stats
}

// Converter owns the registry for one run. Create a new one per run.
type Converter struct {
	provider symbols.Provider
	registry *enums.Registry
	emitter  *enums.Emitter
	opts     Options
	logger   *log.Logger
}

// New returns a converter with an empty registry. A nil logger discards
// diagnostics.
func New(provider symbols.Provider, opts Options, logger *log.Logger) *Converter {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Converter{
		provider: provider,
		registry: enums.NewRegistry(),
		emitter:  enums.NewEmitter(opts.Emit),
		opts:     opts,
		logger:   logger,
	}
}

// Run converts paths in order and writes the result to w. Unparseable
// files are skipped. Cancellation is checked between files; the error
// returned is either ctx's error or a write failure.
func (c *Converter) Run(ctx context.Context, paths []string, w io.Writer) (Report, error) {
	var report Report
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		stats, ok := c.processFile(path)
		if !ok {
			report.Skipped++
		} else {
			report.Files++
			report.Stats.Add(stats)
		}

		if c.opts.RepeatPerFile {
			if err := c.emitter.Emit(w, c.registry.Groupings()); err != nil {
				return report, fmt.Errorf("emit after %s: %w", path, err)
			}
		}
	}

	if !c.opts.RepeatPerFile {
		if err := c.emitter.Emit(w, c.registry.Groupings()); err != nil {
			return report, fmt.Errorf("emit: %w", err)
		}
	}
	return report, nil
}

// processFile parses one file, collects its enums and releases the parse
// state before returning.
func (c *Converter) processFile(path string) (enums.Stats, bool) {
	logger := c.logger.With("file", path)

	unit, err := c.provider.Parse(path)
	if err != nil {
		logger.Warn("skipping unreadable file", "err", err)
		return enums.Stats{}, false
	}
	defer func() {
		if err := unit.Close(); err != nil {
			logger.Debug("failed to release parse state", "err", err)
		}
	}()

	if unit.HasErrors() {
		logger.Debug("file has syntax errors, some enums may be missing")
	}

	stats := enums.NewCollector(c.registry, logger).Collect(unit.Root())
	logger.Debug("processed file", "registered", stats.Registered, "duplicates", stats.Duplicate)
	return stats, true
}
