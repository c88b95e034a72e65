package readiness

import "strings"

// Choice is one label of a multi-select answer. Known is set when the label
// belongs to the closed vocabulary the field is scored against; open-ended
// fields pass labels through with Known unset.
type Choice struct {
	Label string `json:"label"`
	Known bool   `json:"known"`
}

// Selection is a parsed multi-select answer.
type Selection struct {
	Raw     string   `json:"raw"`
	Choices []Choice `json:"choices"`
}

// ParseSelection splits raw on sep. An empty answer yields one empty choice,
// which the reference policy counts as an element.
func ParseSelection(raw, sep string, vocabulary func(label string) bool) Selection {
	parts := strings.Split(raw, sep)
	choices := make([]Choice, len(parts))
	for i, p := range parts {
		choices[i] = Choice{Label: p}
		if vocabulary != nil {
			choices[i].Known = vocabulary(p)
		}
	}
	return Selection{Raw: raw, Choices: choices}
}

// Len returns the number of choices, including degenerate empty ones.
func (s Selection) Len() int {
	return len(s.Choices)
}

// Labels returns the choice labels in answer order.
func (s Selection) Labels() []string {
	out := make([]string, len(s.Choices))
	for i, c := range s.Choices {
		out[i] = c.Label
	}
	return out
}

// Known returns the choices that matched the vocabulary.
func (s Selection) Known() []Choice {
	var out []Choice
	for _, c := range s.Choices {
		if c.Known {
			out = append(out, c)
		}
	}
	return out
}
