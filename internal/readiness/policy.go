package readiness

import (
	"errors"
	"fmt"
)

// AllyWeight assigns a weight to a leadership ally role label.
type AllyWeight struct {
	Label  string `mapstructure:"label" json:"label"`
	Weight int    `mapstructure:"weight" json:"weight"`
}

type LeadershipPolicy struct {
	Allies             []AllyWeight `mapstructure:"allies" json:"allies"`
	OfficialMultiplier int          `mapstructure:"official_multiplier" json:"officialMultiplier"`
}

// Weight returns the weight of label and whether the label is in the table.
func (p LeadershipPolicy) Weight(label string) (int, bool) {
	for _, a := range p.Allies {
		if a.Label == label {
			return a.Weight, true
		}
	}
	return 0, false
}

func (p LeadershipPolicy) isAlly(label string) bool {
	_, ok := p.Weight(label)
	return ok
}

type FundingsPolicy struct {
	PercentDivisor  float64 `mapstructure:"percent_divisor" json:"percentDivisor"`
	InProcessFactor float64 `mapstructure:"in_process_factor" json:"inProcessFactor"`
}

// FrequencyPolicy buckets the data update frequency answer.
type FrequencyPolicy struct {
	High          []string `mapstructure:"high" json:"high"`
	HighPoints    int      `mapstructure:"high_points" json:"highPoints"`
	Partial       []string `mapstructure:"partial" json:"partial"`
	PartialPoints int      `mapstructure:"partial_points" json:"partialPoints"`
	Never         []string `mapstructure:"never" json:"never"`
	NeverPoints   int      `mapstructure:"never_points" json:"neverPoints"`
	// DefaultPoints applies to any unrecognized answer.
	DefaultPoints int `mapstructure:"default_points" json:"defaultPoints"`
}

// Points returns the points for a frequency answer.
func (p FrequencyPolicy) Points(answer string) int {
	switch {
	case containsLabel(p.High, answer):
		return p.HighPoints
	case containsLabel(p.Partial, answer):
		return p.PartialPoints
	case containsLabel(p.Never, answer):
		return p.NeverPoints
	default:
		return p.DefaultPoints
	}
}

type CapabilitiesPolicy struct {
	MinTeamSize       float64         `mapstructure:"min_team_size" json:"minTeamSize"`
	MinWeeklyHours    float64         `mapstructure:"min_weekly_hours" json:"minWeeklyHours"`
	TeamPoints        int             `mapstructure:"team_points" json:"teamPoints"`
	ToolNotInstalled  string          `mapstructure:"tool_not_installed" json:"toolNotInstalled"`
	ToolPoints        int             `mapstructure:"tool_points" json:"toolPoints"`
	MetadataPoints    int             `mapstructure:"metadata_points" json:"metadataPoints"`
	Frequency         FrequencyPolicy `mapstructure:"frequency" json:"frequency"`
	NoneLabel         string          `mapstructure:"none_label" json:"noneLabel"`
	ContentToolPoints int             `mapstructure:"content_tool_points" json:"contentToolPoints"`
	DBMSPoints        int             `mapstructure:"dbms_points" json:"dbmsPoints"`
}

type OpennessPolicy struct {
	ScansPoints        int `mapstructure:"scans_points" json:"scansPoints"`
	SpreadsheetsPoints int `mapstructure:"spreadsheets_points" json:"spreadsheetsPoints"`
	PlaintextPoints    int `mapstructure:"plaintext_points" json:"plaintextPoints"`
	GeospatialPoints   int `mapstructure:"geospatial_points" json:"geospatialPoints"`
}

type LegalPolicy struct {
	Established       string `mapstructure:"established" json:"established"`
	EstablishedPoints int    `mapstructure:"established_points" json:"establishedPoints"`
	Planning          string `mapstructure:"planning" json:"planning"`
	PlanningPoints    int    `mapstructure:"planning_points" json:"planningPoints"`
}

// Points returns the points for one status answer.
func (p LegalPolicy) Points(status string) int {
	switch status {
	case p.Established:
		return p.EstablishedPoints
	case p.Planning:
		return p.PlanningPoints
	default:
		return 0
	}
}

type SocietyPolicy struct {
	SeveralAlliesPoints int    `mapstructure:"several_allies_points" json:"severalAlliesPoints"`
	SingleAllyPoints    int    `mapstructure:"single_ally_points" json:"singleAllyPoints"`
	Affirmative         string `mapstructure:"affirmative" json:"affirmative"`
	EventsPoints        int    `mapstructure:"events_points" json:"eventsPoints"`
}

// Policy holds every constant of the scoring policy. It is built once and
// handed to the engine; nothing in this package keeps a mutable copy.
type Policy struct {
	ListSeparator string               `mapstructure:"list_separator" json:"listSeparator"`
	Ceilings      map[Category]float64 `mapstructure:"ceilings" json:"ceilings"`
	Leadership    LeadershipPolicy     `mapstructure:"leadership" json:"leadership"`
	Fundings      FundingsPolicy       `mapstructure:"fundings" json:"fundings"`
	Capabilities  CapabilitiesPolicy   `mapstructure:"capabilities" json:"capabilities"`
	Openness      OpennessPolicy       `mapstructure:"openness" json:"openness"`
	Legal         LegalPolicy          `mapstructure:"legal" json:"legal"`
	Society       SocietyPolicy        `mapstructure:"society" json:"society"`
}

// DefaultPolicy returns the reference policy, labels as they appear in the
// survey answers.
func DefaultPolicy() Policy {
	return Policy{
		ListSeparator: ", ",
		Ceilings: map[Category]float64{
			Leadership:   30,
			Fundings:     1,
			Capabilities: 12,
			Openness:     8,
			Legal:        4,
			Society:      3,
			Impact:       2,
		},
		Leadership: LeadershipPolicy{
			Allies: []AllyWeight{
				{Label: "Alcalde", Weight: 5},
				{Label: "Regidores de Oposición", Weight: 3},
				{Label: "Secretario de Ayuntamiento", Weight: 3},
				{Label: "Grupos de Empresarios o Sindicatos", Weight: 3},
				{Label: "Síndicos", Weight: 2},
				{Label: "Regidores", Weight: 2},
				{Label: "IFAI", Weight: 2},
				{Label: "Persona a cargo de las políticas de datos abiertos en la ciudad", Weight: 2},
				{Label: "Organizaciones de la sociedad civil", Weight: 1},
				{Label: "Ciudadanos Individuales", Weight: 1},
			},
			OfficialMultiplier: 3,
		},
		Fundings: FundingsPolicy{
			PercentDivisor:  10,
			InProcessFactor: 0.05,
		},
		Capabilities: CapabilitiesPolicy{
			MinTeamSize:      1,
			MinWeeklyHours:   40,
			TeamPoints:       2,
			ToolNotInstalled: "No instalado todavía",
			ToolPoints:       3,
			MetadataPoints:   1,
			Frequency: FrequencyPolicy{
				// "Inemdiatas" is spelled as the survey form emits it.
				High:          []string{"Mensual", "Semanal", "Inemdiatas"},
				HighPoints:    2,
				Partial:       []string{"Semestral", "Varía"},
				PartialPoints: 1,
				Never:         []string{"No se actualizan"},
				NeverPoints:   0,
				DefaultPoints: 1,
			},
			NoneLabel:         "Ninguno",
			ContentToolPoints: 1,
			DBMSPoints:        1,
		},
		Openness: OpennessPolicy{
			ScansPoints:        1,
			SpreadsheetsPoints: 2,
			PlaintextPoints:    3,
			GeospatialPoints:   3,
		},
		Legal: LegalPolicy{
			Established:       "Establecida",
			EstablishedPoints: 2,
			Planning:          "En planeación",
			PlanningPoints:    1,
		},
		Society: SocietyPolicy{
			SeveralAlliesPoints: 2,
			SingleAllyPoints:    1,
			Affirmative:         "Si",
			EventsPoints:        1,
		},
	}
}

// Ceiling returns the normalization divisor of c.
func (p *Policy) Ceiling(c Category) float64 {
	return p.Ceilings[c]
}

// Validate checks the policy for values that would make scores meaningless.
func (p *Policy) Validate() error {
	var errs []error

	if p.ListSeparator == "" {
		errs = append(errs, errors.New("list_separator must not be empty"))
	}
	for _, c := range Categories() {
		ceiling, ok := p.Ceilings[c]
		if !ok {
			errs = append(errs, fmt.Errorf("ceiling for %s is missing", c))
			continue
		}
		if ceiling <= 0 {
			errs = append(errs, fmt.Errorf("ceiling for %s must be positive, got %v", c, ceiling))
		}
	}
	for c := range p.Ceilings {
		if !c.Valid() {
			errs = append(errs, fmt.Errorf("unknown category %q in ceilings", c))
		}
	}

	seen := make(map[string]bool, len(p.Leadership.Allies))
	for _, a := range p.Leadership.Allies {
		if a.Weight < 0 {
			errs = append(errs, fmt.Errorf("ally %q has negative weight %d", a.Label, a.Weight))
		}
		if seen[a.Label] {
			errs = append(errs, fmt.Errorf("ally %q is listed twice", a.Label))
		}
		seen[a.Label] = true
	}
	if p.Leadership.OfficialMultiplier < 0 {
		errs = append(errs, errors.New("leadership official_multiplier must not be negative"))
	}
	if p.Fundings.PercentDivisor <= 0 {
		errs = append(errs, errors.New("fundings percent_divisor must be positive"))
	}

	return errors.Join(errs...)
}

func containsLabel(labels []string, s string) bool {
	for _, l := range labels {
		if l == s {
			return true
		}
	}
	return false
}
