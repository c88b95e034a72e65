// Package readinesstest provides survey fixtures for tests.
package readinesstest

import "readiness-workers/internal/readiness"

// Expected scores of CompleteAnswers(nil) under the default policy.
var ExpectedScores = readiness.Scores{
	readiness.Leadership:   0.5,
	readiness.Fundings:     5.5,
	readiness.Capabilities: 4.0 / 12,
	readiness.Openness:     0,
	readiness.Legal:        1,
	readiness.Society:      1.0 / 3,
	readiness.Impact:       0.5,
}

// CompleteAnswers returns a fully populated response keyed by field name.
// overrides replace individual answers.
func CompleteAnswers(overrides map[string]string) map[string]string {
	answers := map[string]string{
		readiness.FieldTimestamp:            "2015-06-01 10:00:00",
		readiness.FieldLeadOfficial:         "Alcalde",
		readiness.FieldLeadUnofficial:       "",
		readiness.FieldFundsBudget:          "1000000",
		readiness.FieldFundsSources:         "Municipal",
		readiness.FieldFundsInProcess:       "A, B",
		readiness.FieldFundsExercised:       "500000",
		readiness.FieldFundsPercentage:      "50%",
		readiness.FieldCapTeamSize:          "2",
		readiness.FieldCapExtTeam:           "0",
		readiness.FieldCapODTime:            "40",
		readiness.FieldCapODTools:           "No instalado todavía",
		readiness.FieldCapMetadata:          "",
		readiness.FieldCapManagement:        "",
		readiness.FieldCapFrequency:         "Mensual",
		readiness.FieldCapQuality:           "",
		readiness.FieldCapMethodology:       "",
		readiness.FieldCapContentTools:      "Ninguno",
		readiness.FieldCapContentBudget:     "0",
		readiness.FieldCapContentTime:       "0",
		readiness.FieldOpnPhysical:          "10",
		readiness.FieldOpnScans:             "0",
		readiness.FieldOpnSpreadsheets:      "0",
		readiness.FieldOpnPlaintext:         "0",
		readiness.FieldOpnGeospatial:        "0",
		readiness.FieldOpnTraining:          "Si",
		readiness.FieldOpnTrainingTechnical: "",
		readiness.FieldOpnTrainingOrg:       "",
		readiness.FieldOpnTrainingLegal:     "",
		readiness.FieldOpnTrainingAgencies:  "",
		readiness.FieldLegLicense:           "CC-BY",
		readiness.FieldLegLicenseComments:   "",
		readiness.FieldSocAllies:            "",
		readiness.FieldSocEvents:            "No",
		readiness.FieldLegDecree:            "",
		readiness.FieldLegLocalStatus:       "Establecida",
		readiness.FieldLegLocalReference:    "",
		readiness.FieldLegStateStatus:       "Establecida",
		readiness.FieldLegStateReference:    "",
		readiness.FieldImpSelfAssessment:    "Encuestas",
		readiness.FieldCapDBMS:              "Ninguno",
		readiness.FieldCapDesign:            "",
	}
	for k, v := range overrides {
		answers[k] = v
	}
	return answers
}

// RawAnswers lays answers out in the column order of s. Fields missing
// from answers become empty strings.
func RawAnswers(s readiness.Schedule, answers map[string]string) []string {
	raw := make([]string, s.Len())
	for i, f := range s.Fields {
		raw[i] = answers[f]
	}
	return raw
}

// Without returns a copy of answers lacking field.
func Without(answers map[string]string, field string) map[string]string {
	out := make(map[string]string, len(answers))
	for k, v := range answers {
		if k != field {
			out[k] = v
		}
	}
	return out
}
