package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"ipl-win-predictor/internal/app"
	"ipl-win-predictor/internal/cfg"
	"ipl-win-predictor/internal/match"
	"ipl-win-predictor/internal/resolver"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("winpredict", flag.ContinueOnError)
	var (
		batting  = fs.String("batting", "", "Batting team")
		bowling  = fs.String("bowling", "", "Bowling team")
		city     = fs.String("city", "", "Host city")
		target   = fs.Int("target", 0, "Target set by the first innings")
		score    = fs.Int("score", 0, "Current score of the chasing side")
		overs    = fs.String("overs", "0", "Overs completed, e.g. 18.4")
		wickets  = fs.Int("wickets", 0, "Wickets fallen")
		list     = fs.Bool("list", false, "List teams, cities and overs values and exit")
		asJSON   = fs.Bool("json", false, "Print the outcome as JSON")
		logLevel = fs.String("log-level", "", "Log level (overrides LOG_LEVEL)")
		timeout  = fs.Duration("timeout", 5*time.Second, "Prediction timeout")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *list {
		printDomain(out)
		return nil
	}

	config, err := cfg.Load()
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}
	if *logLevel != "" {
		config.LogLevel = *logLevel
	}
	app.SetupLogging(config.LogLevel, true, os.Stderr)

	o, err := match.ParseOvers(*overs)
	if err != nil {
		return err
	}
	state := match.State{
		BattingTeam: match.Team(*batting),
		BowlingTeam: match.Team(*bowling),
		City:        match.City(*city),
		Target:      *target,
		Score:       *score,
		Overs:       o,
		WicketsOut:  *wickets,
	}
	if err := state.Validate(); err != nil {
		return err
	}

	classifier, closeFn, err := app.OpenClassifier(config, nil)
	if err != nil {
		return fmt.Errorf("failed to open classifier: %w", err)
	}
	defer closeFn()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	r := resolver.New(classifier, resolver.WithTolerance(config.ProbTolerance))
	outcome, err := r.Resolve(ctx, state)
	if err != nil {
		return err
	}

	if *asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(outcome)
	}
	printOutcome(out, state, outcome)
	return nil
}

func printOutcome(out io.Writer, s match.State, o resolver.Outcome) {
	win, loss := o.Percentages()
	fmt.Fprintf(out, "%s - %d%%\n", s.BattingTeam, win)
	fmt.Fprintf(out, "%s - %d%%\n", s.BowlingTeam, loss)
	if o.Message != "" {
		fmt.Fprintln(out, o.Message)
	}
	if o.Summary != "" {
		fmt.Fprintln(out, o.Summary)
	}
}

func printDomain(out io.Writer) {
	fmt.Fprintln(out, "Teams:")
	for _, t := range match.Teams() {
		fmt.Fprintf(out, "  %s\n", t)
	}
	fmt.Fprintln(out, "Cities:")
	for _, c := range match.Cities() {
		fmt.Fprintf(out, "  %s\n", c)
	}
	values := match.ValidOvers()
	labels := make([]string, len(values))
	for i, v := range values {
		labels[i] = v.String()
	}
	fmt.Fprintf(out, "Overs:\n  %s\n", strings.Join(labels, " "))
}
