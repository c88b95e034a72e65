package readiness

// scoreImpact counts self-assessment mechanisms without validating them.
func scoreImpact(r Record, p *Policy) (float64, error) {
	mechanisms, err := selectionField(r, FieldImpSelfAssessment, p.ListSeparator, nil)
	if err != nil {
		return 0, err
	}
	return float64(mechanisms.Len()) / p.Ceiling(Impact), nil
}
