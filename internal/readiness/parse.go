package readiness

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

var (
	errNotFinite = errors.New("value is not a finite number")
	errHexFloat  = errors.New("hexadecimal notation is not accepted")
)

// parseNumber reads a plain decimal answer. Surrounding whitespace is
// ignored. NaN, infinities, overflow and hex floats are parse errors so
// every score stays a finite, serializable number.
func parseNumber(field, raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	if hasHexPrefix(s) {
		return 0, &ParseError{Field: field, Value: raw, Err: errHexFloat}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			err = errNotFinite
		}
		return 0, &ParseError{Field: field, Value: raw, Err: err}
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &ParseError{Field: field, Value: raw, Err: errNotFinite}
	}
	return v, nil
}

func hasHexPrefix(s string) bool {
	s = strings.TrimLeft(s, "+-")
	return len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X')
}

// parsePercentage strips every leading and trailing '%' before parsing.
func parsePercentage(field, raw string) (float64, error) {
	v, err := parseNumber(field, strings.Trim(raw, "%"))
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			pe.Value = raw
		}
		return 0, err
	}
	return v, nil
}

// numberField fetches and parses a numeric field in one step.
func numberField(r Record, field string) (float64, error) {
	raw, err := r.Get(field)
	if err != nil {
		return 0, err
	}
	return parseNumber(field, raw)
}

// selectionField fetches a multi-select field and parses it.
func selectionField(r Record, field, sep string, vocabulary func(string) bool) (Selection, error) {
	raw, err := r.Get(field)
	if err != nil {
		return Selection{}, err
	}
	return ParseSelection(raw, sep, vocabulary), nil
}
