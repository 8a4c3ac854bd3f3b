// Command segbench compares arena and reference footprints and exports
// sample PDF documents.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kingpin/v2"
	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"github.com/hupe1980/segbench"
	"github.com/hupe1980/segbench/arena"
	"github.com/hupe1980/segbench/internal/mmap"
	"github.com/hupe1980/segbench/resource"
)

// globalFlags are shared by every command.
type globalFlags struct {
	logLevel     *string
	logFormat    *string
	allocator    *string
	growthFactor *float64
	memoryLimit  *string
	ioLimit      *string
}

func addGlobalFlags(app *kingpin.Application) *globalFlags {
	return &globalFlags{
		logLevel: app.Flag("log-level", "Minimum log level.").
			Envar("SEGBENCH_LOG_LEVEL").Default("warn").Enum("debug", "info", "warn", "error"),
		logFormat: app.Flag("log-format", "Log output format.").
			Envar("SEGBENCH_LOG_FORMAT").Default("text").Enum("text", "json"),
		allocator: app.Flag("allocator", "Arena backing memory.").
			Envar("SEGBENCH_ALLOCATOR").Default("heap").Enum("heap", "mmap"),
		growthFactor: app.Flag("growth-factor", "Arena growth factor, greater than 1.").
			Envar("SEGBENCH_GROWTH_FACTOR").Default("2").Float64(),
		memoryLimit: app.Flag("memory-limit", "Arena memory budget, e.g. 512MiB. Empty means unlimited.").
			Envar("SEGBENCH_MEMORY_LIMIT").String(),
		ioLimit: app.Flag("io-limit", "Save throughput limit per second, e.g. 10MiB. Empty means unlimited.").
			Envar("SEGBENCH_IO_LIMIT").String(),
	}
}

func (g *globalFlags) logger() *segbench.Logger {
	var level slog.Level
	_ = level.UnmarshalText([]byte(*g.logLevel))

	if *g.logFormat == "json" {
		return segbench.NewJSONLogger(level)
	}
	return segbench.NewTextLogger(level)
}

// controller returns nil when no limit is set.
func (g *globalFlags) controller() (*resource.Controller, error) {
	var cfg resource.Config

	if *g.memoryLimit != "" {
		n, err := parseBytes(*g.memoryLimit)
		if err != nil {
			return nil, fmt.Errorf("memory limit: %w", err)
		}
		cfg.MemoryLimitBytes = n
	}
	if *g.ioLimit != "" {
		n, err := parseBytes(*g.ioLimit)
		if err != nil {
			return nil, fmt.Errorf("io limit: %w", err)
		}
		cfg.IOLimitBytesPerSec = n
	}

	if cfg == (resource.Config{}) {
		return nil, nil
	}
	return resource.NewController(cfg), nil
}

// options builds the Runtime options shared by every command.
func (g *globalFlags) options() ([]segbench.Option, *resource.Controller, error) {
	rc, err := g.controller()
	if err != nil {
		return nil, nil, err
	}

	opts := []segbench.Option{
		segbench.WithLogger(g.logger()),
		segbench.WithGrowthFactor(*g.growthFactor),
		segbench.WithResourceController(rc),
	}
	if *g.allocator == "mmap" {
		opts = append(opts, segbench.WithAllocator(arena.MmapAllocator{Advice: mmap.AccessSequential}))
	}
	return opts, rc, nil
}

func parseBytes(s string) (int64, error) {
	n, err := humanize.ParseBytes(strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	if n > 1<<62 {
		return 0, fmt.Errorf("%s is too large", s)
	}
	return int64(n), nil
}

func exitWithErr(err error) {
	fmt.Fprintf(os.Stderr, "%s %v\n", color.RedString("error:"), err)
	os.Exit(1)
}

func main() {
	app := kingpin.New("segbench", "Arena footprint benchmark and sample document exporter.")
	app.HelpFlag.Short('h')

	g := addGlobalFlags(app)
	addBenchCommand(app, g)
	addExportCommand(app, g)
	addPresetsCommand(app)

	if _, err := app.Parse(os.Args[1:]); err != nil {
		exitWithErr(err)
	}
}
