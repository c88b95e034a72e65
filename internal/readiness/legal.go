package readiness

// scoreLegal scores local and state open-data regulation status. A status
// field that is absent scores like an unrecognized answer. License and
// decree fields are not scored.
func scoreLegal(r Record, p *Policy) (float64, error) {
	local, _ := r.Lookup(FieldLegLocalStatus)
	state, _ := r.Lookup(FieldLegStateStatus)

	sum := p.Legal.Points(local) + p.Legal.Points(state)
	return float64(sum) / p.Ceiling(Legal), nil
}
