package readiness

// Category names one of the seven readiness dimensions.
type Category string

const (
	Leadership   Category = "leadership"
	Fundings     Category = "fundings"
	Capabilities Category = "capabilities"
	Openness     Category = "openness"
	Legal        Category = "legal"
	Society      Category = "society"
	Impact       Category = "impact"
)

// Categories returns the seven categories in reporting order.
func Categories() []Category {
	return []Category{Leadership, Fundings, Capabilities, Openness, Legal, Society, Impact}
}

// Valid reports whether c is one of the seven known categories.
func (c Category) Valid() bool {
	for _, known := range Categories() {
		if c == known {
			return true
		}
	}
	return false
}

func (c Category) String() string {
	return string(c)
}
