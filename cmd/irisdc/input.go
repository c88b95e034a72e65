package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"readiness-workers/internal/assessment"
)

// readRequest loads one survey response. CSV exports carry the header on
// row 1 and the answers on row 2; JSON files hold an object of keyed
// answers or an array of positional ones.
func readRequest(r io.Reader, format string, row int) (assessment.Request, error) {
	switch format {
	case "csv":
		raw, err := readCSVRow(r, row)
		if err != nil {
			return assessment.Request{}, err
		}
		return assessment.Request{RawAnswers: raw}, nil
	case "json":
		return readJSON(r)
	default:
		return assessment.Request{}, fmt.Errorf("unknown input format %q", format)
	}
}

func readCSVRow(r io.Reader, row int) ([]string, error) {
	if row < 1 {
		return nil, fmt.Errorf("row must be 1 or greater, got %d", row)
	}
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	for i := 1; ; i++ {
		rec, err := cr.Read()
		if err == io.EOF {
			return nil, fmt.Errorf("input has no row %d", row)
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		if i == row {
			return rec, nil
		}
	}
}

func readJSON(r io.Reader) (assessment.Request, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return assessment.Request{}, fmt.Errorf("read json: %w", err)
	}
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		var raw []string
		if err := json.Unmarshal(data, &raw); err != nil {
			return assessment.Request{}, fmt.Errorf("decode answers: %w", err)
		}
		return assessment.Request{RawAnswers: raw}, nil
	}
	var answers map[string]string
	if err := json.Unmarshal(data, &answers); err != nil {
		return assessment.Request{}, fmt.Errorf("decode answers: %w", err)
	}
	return assessment.Request{Answers: answers}, nil
}

func detectFormat(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return "json"
	}
	return "csv"
}
