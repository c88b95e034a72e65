package readiness

// scoreCapabilities sums independent institutional capability indicators.
func scoreCapabilities(r Record, p *Policy) (float64, error) {
	cp := p.Capabilities

	teamSize, err := numberField(r, FieldCapTeamSize)
	if err != nil {
		return 0, err
	}
	weeklyHours, err := numberField(r, FieldCapODTime)
	if err != nil {
		return 0, err
	}
	tools, err := selectionField(r, FieldCapODTools, p.ListSeparator, nil)
	if err != nil {
		return 0, err
	}
	metadata, err := r.Get(FieldCapMetadata)
	if err != nil {
		return 0, err
	}
	frequency, err := r.Get(FieldCapFrequency)
	if err != nil {
		return 0, err
	}
	contentTools, err := r.Get(FieldCapContentTools)
	if err != nil {
		return 0, err
	}
	dbms, err := r.Get(FieldCapDBMS)
	if err != nil {
		return 0, err
	}

	sum := 0
	if teamSize >= cp.MinTeamSize && weeklyHours >= cp.MinWeeklyHours {
		sum += cp.TeamPoints
	}

	// An empty answer is one blank tool and earns points like any other.
	for _, tool := range tools.Choices {
		if tool.Label != cp.ToolNotInstalled {
			sum += cp.ToolPoints
		}
	}

	// Negative free-text answers ("Ninguna", "N/A") still count.
	if metadata != "" {
		sum += cp.MetadataPoints
	}

	sum += cp.Frequency.Points(frequency)

	if contentTools != cp.NoneLabel {
		sum += cp.ContentToolPoints
	}
	if dbms != cp.NoneLabel {
		sum += cp.DBMSPoints
	}

	return float64(sum) / p.Ceiling(Capabilities), nil
}
