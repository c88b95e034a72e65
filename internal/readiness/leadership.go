package readiness

// scoreLeadership weighs official allies by the official multiplier and
// unofficial allies at face value. Labels outside the ally table count
// nothing. The result is not clamped, so long official lists can exceed 1.
func scoreLeadership(r Record, p *Policy) (float64, error) {
	sep := p.ListSeparator
	vocab := p.Leadership.isAlly

	official, err := selectionField(r, FieldLeadOfficial, sep, vocab)
	if err != nil {
		return 0, err
	}
	unofficial, err := selectionField(r, FieldLeadUnofficial, sep, vocab)
	if err != nil {
		return 0, err
	}

	officialSum := 0
	for _, ally := range official.Known() {
		w, _ := p.Leadership.Weight(ally.Label)
		officialSum += w * p.Leadership.OfficialMultiplier
	}

	unofficialSum := 0
	for _, ally := range unofficial.Known() {
		w, _ := p.Leadership.Weight(ally.Label)
		unofficialSum += w
	}

	return float64(officialSum+unofficialSum) / p.Ceiling(Leadership), nil
}
