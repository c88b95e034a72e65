package readiness

// scoreOpenness awards a fixed weight for every dataset format with a
// positive count. Training fields are part of the record but not scored.
func scoreOpenness(r Record, p *Policy) (float64, error) {
	op := p.Openness
	formats := []struct {
		field  string
		points int
	}{
		{FieldOpnScans, op.ScansPoints},
		{FieldOpnSpreadsheets, op.SpreadsheetsPoints},
		{FieldOpnPlaintext, op.PlaintextPoints},
		{FieldOpnGeospatial, op.GeospatialPoints},
	}

	sum := 0
	for _, f := range formats {
		v, err := numberField(r, f.field)
		if err != nil {
			return 0, err
		}
		if v > 0 {
			sum += f.points
		}
	}

	return float64(sum) / p.Ceiling(Openness), nil
}
