package readiness

// Field names of the reference survey layout.
const (
	FieldTimestamp            = "timestamp"
	FieldLeadOfficial         = "lead_official"
	FieldLeadUnofficial       = "lead_unofficial"
	FieldFundsBudget          = "funds_budget"
	FieldFundsSources         = "funds_sources"
	FieldFundsInProcess       = "funds_inprocess"
	FieldFundsExercised       = "funds_exercised"
	FieldFundsPercentage      = "funds_percentage"
	FieldCapTeamSize          = "cap_teamsize"
	FieldCapExtTeam           = "cap_extteam"
	FieldCapODTime            = "cap_od_time"
	FieldCapODTools           = "cap_od_tools"
	FieldCapMetadata          = "cap_metadata"
	FieldCapManagement        = "cap_management"
	FieldCapFrequency         = "cap_frequency"
	FieldCapQuality           = "cap_quality"
	FieldCapMethodology       = "cap_methodology"
	FieldCapContentTools      = "cap_content_tools"
	FieldCapContentBudget     = "cap_content_budget"
	FieldCapContentTime       = "cap_content_time"
	FieldOpnPhysical          = "opn_physical"
	FieldOpnScans             = "opn_scans"
	FieldOpnSpreadsheets      = "opn_spreadsheets"
	FieldOpnPlaintext         = "opn_plaintext"
	FieldOpnGeospatial        = "opn_geospatial"
	FieldOpnTraining          = "opn_training"
	FieldOpnTrainingTechnical = "opn_training_technical"
	FieldOpnTrainingOrg       = "opn_training_org"
	FieldOpnTrainingLegal     = "opn_training_legal"
	FieldOpnTrainingAgencies  = "opn_training_agencies"
	FieldLegLicense           = "leg_license"
	FieldLegLicenseComments   = "leg_license_comments"
	FieldSocAllies            = "soc_allies"
	FieldSocEvents            = "soc_events"
	FieldLegDecree            = "leg_decree"
	FieldLegLocalStatus       = "leg_local_status"
	FieldLegLocalReference    = "leg_local_reference"
	FieldLegStateStatus       = "leg_state_status"
	FieldLegStateReference    = "leg_state_reference"
	FieldImpSelfAssessment    = "imp_self_assessment"
	FieldCapDBMS              = "cap_dbms"
	FieldCapDesign            = "cap_design"
)

// Schedule maps answer positions to field names. The order must match the
// column order of the upstream survey export; there is no drift detection.
type Schedule struct {
	Version string   `json:"version"`
	Fields  []string `json:"fields"`
}

// DefaultSchedule is the 42-column layout of the reference survey.
var DefaultSchedule = Schedule{
	Version: "2015.1",
	Fields: []string{
		FieldTimestamp, FieldLeadOfficial, FieldLeadUnofficial,
		FieldFundsBudget, FieldFundsSources, FieldFundsInProcess, FieldFundsExercised, FieldFundsPercentage,
		FieldCapTeamSize, FieldCapExtTeam, FieldCapODTime, FieldCapODTools, FieldCapMetadata, FieldCapManagement,
		FieldCapFrequency, FieldCapQuality, FieldCapMethodology, FieldCapContentTools, FieldCapContentBudget,
		FieldCapContentTime, FieldOpnPhysical, FieldOpnScans, FieldOpnSpreadsheets, FieldOpnPlaintext,
		FieldOpnGeospatial, FieldOpnTraining, FieldOpnTrainingTechnical, FieldOpnTrainingOrg, FieldOpnTrainingLegal,
		FieldOpnTrainingAgencies, FieldLegLicense, FieldLegLicenseComments, FieldSocAllies, FieldSocEvents,
		FieldLegDecree, FieldLegLocalStatus, FieldLegLocalReference, FieldLegStateStatus, FieldLegStateReference,
		FieldImpSelfAssessment, FieldCapDBMS, FieldCapDesign,
	},
}

// Len returns the number of fields in the schedule.
func (s Schedule) Len() int {
	return len(s.Fields)
}

// Contains reports whether field is part of the schedule.
func (s Schedule) Contains(field string) bool {
	for _, f := range s.Fields {
		if f == field {
			return true
		}
	}
	return false
}

// Position returns the zero-based column of field, or -1.
func (s Schedule) Position(field string) int {
	for i, f := range s.Fields {
		if f == field {
			return i
		}
	}
	return -1
}

// Extract binds the i-th raw answer to the i-th schedule field. Fields past
// the end of raw are left absent; answers past the end of the schedule are
// dropped. Values are stored untouched.
func Extract(raw []string, s Schedule) Record {
	n := len(raw)
	if n > len(s.Fields) {
		n = len(s.Fields)
	}

	values := make(map[string]string, n)
	for i := 0; i < n; i++ {
		values[s.Fields[i]] = raw[i]
	}
	return Record{values: values}
}

// LookupSchedule returns the schedule registered under version. An empty
// version selects DefaultSchedule.
func LookupSchedule(version string) (Schedule, bool) {
	if version == "" || version == DefaultSchedule.Version {
		return DefaultSchedule, true
	}
	return Schedule{}, false
}
