package notifyreadinessreport

import (
	"fmt"
	"strings"
	"text/template"

	"readiness-workers/internal/readiness"
)

var summaryTemplate = template.Must(template.New("summary").Parse(
	`Readiness report {{.ReportID}}{{if .SurveyID}} for survey {{.SurveyID}}{{end}}
Assessed at {{.AssessedAt}} with schedule {{.ScheduleVersion}}.

Scores:
{{range .Lines}}  {{.}}
{{end}}{{if .Failed}}
Not scored: {{.Failed}}
{{end}}`))

type summaryData struct {
	ReportID        string
	SurveyID        string
	AssessedAt      string
	ScheduleVersion string
	Lines           []string
	Failed          string
}

func subject(in *Input) string {
	state := "complete"
	if !in.Report.Complete {
		state = "partial"
	}
	if in.Report.SurveyID != "" {
		return fmt.Sprintf("Open data readiness for %s (%s)", in.Report.SurveyID, state)
	}
	return fmt.Sprintf("Open data readiness report %s (%s)", in.ReportID, state)
}

func renderSummary(in *Input) (string, error) {
	r := in.Report
	data := summaryData{
		ReportID:        in.ReportID,
		SurveyID:        r.SurveyID,
		AssessedAt:      r.AssessedAt.UTC().Format("2006-01-02 15:04 MST"),
		ScheduleVersion: r.ScheduleVersion,
		Failed:          strings.Join(r.FailedCategories(), ", "),
	}
	for _, c := range readiness.Categories() {
		if v, ok := r.Scores[c]; ok {
			data.Lines = append(data.Lines, fmt.Sprintf("%-13s %.2f", c, v))
		}
	}

	var sb strings.Builder
	if err := summaryTemplate.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("render summary: %w", err)
	}
	return sb.String(), nil
}
