// Command simbench drives many independent copies of a scenario
// concurrently via simulator.RunParallel and reports elapsed time, to
// exercise the multi-instance concurrency model.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/urfave/cli/v2"

	"github.com/corridorsim/corridor/scenario"
	"github.com/corridorsim/corridor/simulator"
)

func main() {
	app := &cli.App{
		Name:  "simbench",
		Usage: "run N parallel instances of a scenario for a fixed number of ticks",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "scenario", Aliases: []string{"s"}, Value: "b", Usage: "one of a,b,c,d,e"},
			&cli.IntFlag{Name: "instances", Aliases: []string{"n"}, Value: 8, Usage: "number of parallel simulator instances"},
			&cli.IntFlag{Name: "ticks", Value: 200, Usage: "fixed ticks per instance"},
			&cli.Float64Flag{Name: "dt", Value: 0.1, Usage: "seconds per tick"},
			&cli.BoolFlag{Name: "json", Usage: "emit the summary as a single JSON line instead of text"},
		},
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// instanceSummary is one simulator's contribution to the benchmark summary.
type instanceSummary struct {
	RunID string `json:"run_id"`
	Ticks uint64 `json:"ticks"`
}

// summary is simbench's JSON output when -json is passed: a single line
// for the whole benchmark, with one Runs entry per instance.
type summary struct {
	Scenario      string            `json:"scenario"`
	Instances     int               `json:"instances"`
	Ticks         int               `json:"ticks"`
	Dt            float64           `json:"dt"`
	ElapsedMillis float64           `json:"elapsed_ms"`
	TicksPerSec   float64           `json:"ticks_per_sec"`
	Runs          []instanceSummary `json:"runs"`
}

var builders = map[string]func() (*scenario.Built, error){
	"a": scenario.A,
	"b": scenario.B,
	"c": scenario.C,
	"d": scenario.D,
	"e": scenario.E,
}

func run(c *cli.Context) error {
	name := c.String("scenario")
	build, ok := builders[name]
	if !ok {
		return fmt.Errorf("unknown scenario %q", name)
	}
	n := c.Int("instances")
	ticks := c.Int("ticks")
	dt := c.Float64("dt")

	instances := make([]*simulator.Simulator, 0, n)
	for i := 0; i < n; i++ {
		built, err := build()
		if err != nil {
			return fmt.Errorf("instance %d: building scenario: %w", i, err)
		}
		sim := simulator.New(built.Net, simulator.DefaultOptions())
		if name != "a" {
			if _, err := built.Net.Spawn(built.Src, built.Dst); err != nil {
				return fmt.Errorf("instance %d: spawning: %w", i, err)
			}
		}
		instances = append(instances, sim)
	}

	start := time.Now()
	if err := simulator.RunParallel(context.Background(), instances, dt, ticks); err != nil {
		return fmt.Errorf("run: %w", err)
	}
	elapsed := time.Since(start)
	ticksPerSec := float64(n*ticks) / elapsed.Seconds()

	if c.Bool("json") {
		runs := make([]instanceSummary, len(instances))
		for i, sim := range instances {
			runs[i] = instanceSummary{RunID: sim.RunID(), Ticks: sim.Ticks()}
		}
		out, err := jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(summary{
			Scenario:      name,
			Instances:     n,
			Ticks:         ticks,
			Dt:            dt,
			ElapsedMillis: float64(elapsed.Microseconds()) / 1000,
			TicksPerSec:   ticksPerSec,
			Runs:          runs,
		})
		if err != nil {
			return fmt.Errorf("marshal summary: %w", err)
		}
		fmt.Println(string(out))
		return nil
	}

	fmt.Printf("ran %d instances x %d ticks (dt=%.3f) in %s (%.0f ticks/sec total)\n",
		n, ticks, dt, elapsed, ticksPerSec)
	for _, sim := range instances {
		fmt.Printf("  run %s: %d ticks\n", sim.RunID(), sim.Ticks())
	}
	return nil
}
