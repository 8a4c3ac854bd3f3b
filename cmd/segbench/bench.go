package main

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/alecthomas/kingpin/v2"
	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"github.com/hupe1980/segbench"
	"github.com/hupe1980/segbench/harness"
	"github.com/hupe1980/segbench/resource"
)

// benchCommand compares the arena against the reference collection.
type benchCommand struct {
	g         *globalFlags
	records   *int
	realistic *bool
	seed      *uint64
}

func (cmd *benchCommand) run(_ *kingpin.ParseContext) error {
	opts, rc, err := cmd.g.options()
	if err != nil {
		return err
	}

	rt := segbench.New(opts...)
	defer func() { _ = rt.Close() }()

	if err := <-rt.Initialize(context.Background()); err != nil {
		return err
	}

	h, err := rt.Harness()
	if err != nil {
		return err
	}

	bold := color.New(color.Bold)
	bold.Printf("Records: %s\n", humanize.Comma(int64(*cmd.records)))

	cmp, err := h.Compare(*cmd.records)
	if err != nil {
		return err
	}
	printComparison(cmp)

	if *cmd.realistic {
		src := rand.New(rand.NewPCG(*cmd.seed, *cmd.seed)) //nolint:gosec // demo data
		report, err := h.RunRealistic(*cmd.records, src)
		if err != nil {
			return err
		}
		bold.Println("Realistic (illustrative):")
		fmt.Printf("\t%s\n", report)
	}

	printBudget(rc)
	return nil
}

func printComparison(cmp harness.Comparison) {
	fmt.Printf("\t%s\n", cmp.Arena)
	fmt.Printf("\t%s\n", cmp.Reference)

	verdict := color.GreenString("arena is smaller")
	if !cmp.ArenaSmaller() {
		verdict = color.YellowString("arena is not smaller")
	}
	fmt.Printf("\t%s (ratio %.3f)\n", verdict, cmp.Ratio())
}

func printBudget(rc *resource.Controller) {
	if rc == nil {
		return
	}
	fmt.Printf("\tmemory budget: peak %s of %s\n",
		humanize.IBytes(uint64(rc.PeakMemoryUsage())), //nolint:gosec // non-negative
		humanize.IBytes(uint64(rc.MemoryLimit())),     //nolint:gosec // non-negative
	)
}

func addBenchCommand(app *kingpin.Application, g *globalFlags) {
	cmd := &benchCommand{g: g}
	bench := app.Command("bench", "Compare the arena footprint with individually allocated records.").Action(cmd.run)
	cmd.records = bench.Flag("records", "Number of records to store.").
		Short('n').Envar("SEGBENCH_RECORDS").Default("1000000").Int()
	cmd.realistic = bench.Flag("realistic", "Also fill an arena with randomized records.").Bool()
	cmd.seed = bench.Flag("seed", "Seed for randomized records.").Default("1").Uint64()
}
