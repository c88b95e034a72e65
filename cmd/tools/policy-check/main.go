// cmd/tools/policy-check/main.go
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"readiness-workers/internal/readiness"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	validateCmd := flag.NewFlagSet("validate", flag.ContinueOnError)
	dumpCmd := flag.NewFlagSet("dump", flag.ContinueOnError)
	validateCmd.SetOutput(stderr)
	dumpCmd.SetOutput(stderr)

	// Validate command flags
	validatePath := validateCmd.String("path", "", "Policy overlay file (YAML or JSON)")

	// Dump command flags
	dumpPath := dumpCmd.String("path", "", "Policy overlay file; empty dumps the reference policy")

	if len(args) < 1 {
		help(stderr)
		return 1
	}

	switch args[0] {
	case "validate":
		if err := validateCmd.Parse(args[1:]); err != nil {
			return 2
		}
		if *validatePath == "" {
			fmt.Fprintln(stderr, "Error: path is required for validate.")
			validateCmd.Usage()
			return 1
		}
		p, err := readiness.LoadPolicy(*validatePath)
		if err != nil {
			fmt.Fprintf(stderr, "Policy is invalid: %v\n", err)
			return 1
		}
		fmt.Fprintf(stdout, "Policy %s is valid.\n", *validatePath)
		for _, c := range readiness.Categories() {
			fmt.Fprintf(stdout, "  %-13s ceiling %g\n", c, p.Ceiling(c))
		}

	case "dump":
		if err := dumpCmd.Parse(args[1:]); err != nil {
			return 2
		}
		p, err := readiness.LoadPolicy(*dumpPath)
		if err != nil {
			fmt.Fprintf(stderr, "Error loading policy: %v\n", err)
			return 1
		}
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(p); err != nil {
			fmt.Fprintf(stderr, "Error encoding policy: %v\n", err)
			return 1
		}

	default:
		help(stderr)
		return 1
	}
	return 0
}

func help(w io.Writer) {
	fmt.Fprintln(w, "Usage: policy-check <command> [arguments]")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  validate -path <file>   Load a policy overlay and check it")
	fmt.Fprintln(w, "  dump [-path <file>]     Print the effective policy as JSON")
}
