package readiness

// completeAnswers returns a fully populated response; overrides replace
// individual fields.
func completeAnswers(overrides map[string]string) map[string]string {
	answers := map[string]string{
		FieldTimestamp:            "2015-06-01 10:00:00",
		FieldLeadOfficial:         "Alcalde",
		FieldLeadUnofficial:       "",
		FieldFundsBudget:          "1000000",
		FieldFundsSources:         "Municipal",
		FieldFundsInProcess:       "A, B",
		FieldFundsExercised:       "500000",
		FieldFundsPercentage:      "50%",
		FieldCapTeamSize:          "2",
		FieldCapExtTeam:           "0",
		FieldCapODTime:            "40",
		FieldCapODTools:           "No instalado todavía",
		FieldCapMetadata:          "",
		FieldCapManagement:        "",
		FieldCapFrequency:         "Mensual",
		FieldCapQuality:           "",
		FieldCapMethodology:       "",
		FieldCapContentTools:      "Ninguno",
		FieldCapContentBudget:     "0",
		FieldCapContentTime:       "0",
		FieldOpnPhysical:          "10",
		FieldOpnScans:             "0",
		FieldOpnSpreadsheets:      "0",
		FieldOpnPlaintext:         "0",
		FieldOpnGeospatial:        "0",
		FieldOpnTraining:          "Si",
		FieldOpnTrainingTechnical: "",
		FieldOpnTrainingOrg:       "",
		FieldOpnTrainingLegal:     "",
		FieldOpnTrainingAgencies:  "",
		FieldLegLicense:           "CC-BY",
		FieldLegLicenseComments:   "",
		FieldSocAllies:            "",
		FieldSocEvents:            "No",
		FieldLegDecree:            "",
		FieldLegLocalStatus:       "Establecida",
		FieldLegLocalReference:    "",
		FieldLegStateStatus:       "Establecida",
		FieldLegStateReference:    "",
		FieldImpSelfAssessment:    "Encuestas",
		FieldCapDBMS:              "Ninguno",
		FieldCapDesign:            "",
	}
	for k, v := range overrides {
		answers[k] = v
	}
	return answers
}

// rawFromAnswers lays answers out in schedule order.
func rawFromAnswers(s Schedule, answers map[string]string) []string {
	raw := make([]string, s.Len())
	for i, f := range s.Fields {
		raw[i] = answers[f]
	}
	return raw
}

func withoutField(answers map[string]string, field string) map[string]string {
	out := make(map[string]string, len(answers))
	for k, v := range answers {
		if k != field {
			out[k] = v
		}
	}
	return out
}
