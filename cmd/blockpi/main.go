package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/blockpi/backend/internal/experiment"
	"github.com/blockpi/backend/internal/sim"
	"github.com/charmbracelet/log"
)

const usage = `usage:
  blockpi run [flags] [m1] [m2] [v1] [v2]
  blockpi pi  [flags]

run flags:
  -total-time float   simulated seconds (default 10)
  -plot               draw block positions over time

pi flags:
  -digits int         sweep mass ratios 100^0 .. 100^n (default 3)
`

var logger = log.NewWithOptions(os.Stderr, log.Options{Prefix: "blockpi"})

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "run":
		err = runCmd(os.Args[2:])
	case "pi":
		err = piCmd(os.Args[2:])
	case "-h", "--help", "help":
		fmt.Print(usage)
		return
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		logger.Fatal("command failed", "err", err)
	}
}

func runCmd(args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	totalTime := fs.Float64("total-time", sim.DefaultTotalTime, "simulated seconds")
	plot := fs.Bool("plot", false, "draw block positions")
	if err := fs.Parse(args); err != nil {
		return err
	}

	vals := []float64{100, 1, -1, 0}
	for i, a := range fs.Args() {
		if i >= len(vals) {
			return fmt.Errorf("too many arguments")
		}
		v, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return fmt.Errorf("argument %d: %w", i+1, err)
		}
		vals[i] = v
	}

	p := sim.DefaultParams(vals[0], vals[1], vals[2])
	p.V2 = vals[3]
	p.TotalTime = *totalTime

	logger.Debug("simulating", "m1", p.M1, "m2", p.M2, "v1", p.V1, "v2", p.V2, "total_time", p.TotalTime)
	res, err := sim.Simulate(p)
	if err != nil {
		return err
	}
	if res.HitEventCap {
		logger.Warn("event cap reached; count is a lower bound", "cap", sim.MaxEvents)
	}

	fmt.Println(summary(res))
	if *plot {
		fmt.Println(positionPlot(res, 70, 15))
	}
	return nil
}

func piCmd(args []string) error {
	fs := flag.NewFlagSet("pi", flag.ContinueOnError)
	digits := fs.Int("digits", 3, "number of π digits to sweep for")
	if err := fs.Parse(args); err != nil {
		return err
	}

	rows, err := experiment.Run(context.Background(), experiment.DigitRatios(*digits), -1)
	if err != nil {
		return err
	}
	fmt.Println(piTable(rows))
	return nil
}
