package readiness

// scoreFundings scales the budget percentage by a bonus per funding source
// in process. An empty in-process answer still counts as one source.
func scoreFundings(r Record, p *Policy) (float64, error) {
	raw, err := r.Get(FieldFundsPercentage)
	if err != nil {
		return 0, err
	}
	percentage, err := parsePercentage(FieldFundsPercentage, raw)
	if err != nil {
		return 0, err
	}

	inProcess, err := selectionField(r, FieldFundsInProcess, p.ListSeparator, nil)
	if err != nil {
		return 0, err
	}

	base := percentage / p.Fundings.PercentDivisor
	score := base * (1 + p.Fundings.InProcessFactor*float64(inProcess.Len()))
	return score / p.Ceiling(Fundings), nil
}
