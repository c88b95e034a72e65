// Command irisdc scores one open-data readiness survey response read from
// a CSV export or a JSON file and prints the scores as JSON.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"readiness-workers/internal/assessment"
	apperrors "readiness-workers/internal/common/errors"
	"readiness-workers/internal/common/logger"
)

const (
	exitOK = iota
	exitError
	exitUsage
	exitIncomplete
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("irisdc", flag.ContinueOnError)
	fs.SetOutput(stderr)
	input := fs.String("input", "-", "Survey file, or - for stdin")
	format := fs.String("format", "", "Input format: csv or json (default from the file extension)")
	row := fs.Int("row", 2, "CSV row holding the answers, 1-based")
	policyFile := fs.String("policy", "", "Scoring policy overlay (YAML or JSON)")
	schedule := fs.String("schedule", "", "Field schedule version")
	strict := fs.Bool("strict", false, "Exit non-zero when any category cannot be scored")
	scoresOnly := fs.Bool("scores", false, "Print only the scores mapping")
	surveyID := fs.String("survey", "", "Survey identifier to include in the report")
	logLevel := fs.String("log-level", "error", "Log level: debug, info, warn, error")

	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if fs.NArg() > 0 && *input == "-" {
		*input = fs.Arg(0)
	}

	log := logger.NewStructured(logger.Options{Level: *logLevel, Format: "console", Output: "stderr"})

	var r io.Reader = stdin
	if *input != "-" {
		f, err := os.Open(*input)
		if err != nil {
			fmt.Fprintf(stderr, "irisdc: %v\n", err)
			return exitError
		}
		defer f.Close()
		r = f
		if *format == "" {
			*format = detectFormat(*input)
		}
	}
	if *format == "" {
		*format = "csv"
	}

	req, err := readRequest(r, *format, *row)
	if err != nil {
		fmt.Fprintf(stderr, "irisdc: %v\n", err)
		return exitError
	}
	req.SurveyID = *surveyID
	req.Strict = *strict

	svc, err := assessment.Build(*policyFile, *schedule, nil, nil, log, assessment.Options{})
	if err != nil {
		fmt.Fprintf(stderr, "irisdc: %v\n", err)
		return exitError
	}

	result, err := svc.Assess(context.Background(), req)
	code := exitOK
	if err != nil {
		var se *apperrors.StandardError
		if !errors.As(err, &se) || se.Code != apperrors.ErrCodeCategoryScoringFailed || result == nil {
			fmt.Fprintf(stderr, "irisdc: %v\n", err)
			return exitError
		}
		fmt.Fprintf(stderr, "irisdc: %s\n", se.Details)
		code = exitIncomplete
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	var out interface{} = result
	if *scoresOnly {
		out = result.Scores
	}
	if err := enc.Encode(out); err != nil {
		fmt.Fprintf(stderr, "irisdc: %v\n", err)
		return exitError
	}
	return code
}
