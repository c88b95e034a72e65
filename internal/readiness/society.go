package readiness

// scoreSociety rewards civil society allies and planned events. Elements are
// counted, not deduplicated, and an empty allies answer is one element.
func scoreSociety(r Record, p *Policy) (float64, error) {
	sp := p.Society

	allies, err := selectionField(r, FieldSocAllies, p.ListSeparator, nil)
	if err != nil {
		return 0, err
	}
	events, err := r.Get(FieldSocEvents)
	if err != nil {
		return 0, err
	}

	sum := 0
	switch n := allies.Len(); {
	case n > 1:
		sum += sp.SeveralAlliesPoints
	case n == 1:
		sum += sp.SingleAllyPoints
	}

	if events == sp.Affirmative {
		sum += sp.EventsPoints
	}

	return float64(sum) / p.Ceiling(Society), nil
}
