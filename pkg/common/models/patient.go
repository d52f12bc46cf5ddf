package models

import "fmt"

type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
)

var Genders = []Gender{GenderMale, GenderFemale}

type Race string

const (
	RaceWhite    Race = "White"
	RaceBlack    Race = "Black"
	RaceHispanic Race = "Hispanic"
	RaceAsian    Race = "Asian"
	RaceOther    Race = "Other"
)

var Races = []Race{RaceWhite, RaceBlack, RaceHispanic, RaceAsian, RaceOther}

// DiagnosisCode is an ICD-10 code.
type DiagnosisCode string

var DiagnosisCodes = []DiagnosisCode{
	"I10", "E11.9", "J45.909", "I50.9", "E78.5",
	"K21.9", "N18.9", "I25.10", "E03.9", "M79.3",
	"F41.9", "I63.9", "C50.919", "E66.9", "I48.91",
}

// ProcedureCode is an ICD-10-PCS code.
type ProcedureCode string

var ProcedureCodes = []ProcedureCode{
	"0U5B7ZZ", "3E0P3MZ", "0WQF0ZZ", "4A02X4Z", "0D160Z4",
	"0U5B8ZZ", "3E0P3NZ", "0WQF1ZZ", "4A02X5Z", "0D160Z5",
}

type TreatmentType string

const (
	TreatmentSurgery        TreatmentType = "Surgery"
	TreatmentMedicalTherapy TreatmentType = "Medical Therapy"
	TreatmentObservation    TreatmentType = "Observation"
	TreatmentEmergencyCare  TreatmentType = "Emergency Care"
	TreatmentRehabilitation TreatmentType = "Rehabilitation"
)

var TreatmentTypes = []TreatmentType{
	TreatmentSurgery, TreatmentMedicalTherapy, TreatmentObservation,
	TreatmentEmergencyCare, TreatmentRehabilitation,
}

var treatmentFactors = map[TreatmentType]float64{
	TreatmentSurgery:        1.8,
	TreatmentMedicalTherapy: 1.0,
	TreatmentObservation:    0.7,
	TreatmentEmergencyCare:  1.5,
	TreatmentRehabilitation: 1.2,
}

type InsuranceType string

const (
	InsuranceMedicare  InsuranceType = "Medicare"
	InsurancePrivate   InsuranceType = "Private Insurance"
	InsuranceMedicaid  InsuranceType = "Medicaid"
	InsuranceUninsured InsuranceType = "Uninsured"
)

var InsuranceTypes = []InsuranceType{
	InsuranceMedicare, InsurancePrivate, InsuranceMedicaid, InsuranceUninsured,
}

var insuranceFactors = map[InsuranceType]float64{
	InsuranceMedicare:  0.9,
	InsurancePrivate:   1.1,
	InsuranceMedicaid:  0.8,
	InsuranceUninsured: 0.7,
}

func (g Gender) Valid() bool { return contains(Genders, g) }

func (r Race) Valid() bool { return contains(Races, r) }

func (d DiagnosisCode) Valid() bool { return contains(DiagnosisCodes, d) }

func (p ProcedureCode) Valid() bool { return contains(ProcedureCodes, p) }

func (t TreatmentType) Valid() bool { return contains(TreatmentTypes, t) }

func (i InsuranceType) Valid() bool { return contains(InsuranceTypes, i) }

// Factor is the charge multiplier for the treatment; zero for unknown values.
func (t TreatmentType) Factor() float64 { return treatmentFactors[t] }

// Factor is the charge multiplier for the payer; zero for unknown values.
func (i InsuranceType) Factor() float64 { return insuranceFactors[i] }

func ParseGender(s string) (Gender, error) {
	return parse("gender", s, Genders)
}

func ParseRace(s string) (Race, error) {
	return parse("race", s, Races)
}

func ParseDiagnosisCode(s string) (DiagnosisCode, error) {
	return parse("diagnosis_code", s, DiagnosisCodes)
}

func ParseProcedureCode(s string) (ProcedureCode, error) {
	return parse("procedure_code", s, ProcedureCodes)
}

func ParseTreatmentType(s string) (TreatmentType, error) {
	return parse("treatment_type", s, TreatmentTypes)
}

func ParseInsuranceType(s string) (InsuranceType, error) {
	return parse("insurance_type", s, InsuranceTypes)
}

func contains[T ~string](set []T, v T) bool {
	for _, candidate := range set {
		if candidate == v {
			return true
		}
	}
	return false
}

func parse[T ~string](field, s string, set []T) (T, error) {
	v := T(s)
	if !contains(set, v) {
		if s == "" {
			return v, &ValidationError{Field: field, Reason: "is required"}
		}
		return v, &ValidationError{Field: field, Reason: fmt.Sprintf("unknown value %q", s)}
	}
	return v, nil
}

// PatientFeatures are the model inputs for one patient.
type PatientFeatures struct {
	Age           int           `json:"age" validate:"agerange"`
	Gender        Gender        `json:"gender" validate:"required,closedset"`
	Race          Race          `json:"race" validate:"required,closedset"`
	DiagnosisCode DiagnosisCode `json:"diagnosis_code" validate:"required,closedset"`
	ProcedureCode ProcedureCode `json:"procedure_code" validate:"required,closedset"`
	LengthOfStay  int           `json:"length_of_stay" validate:"stayrange"`
	TreatmentType TreatmentType `json:"treatment_type" validate:"required,closedset"`
	InsuranceType InsuranceType `json:"insurance_type" validate:"required,closedset"`
}

// PatientRecord is one generated dataset row.
type PatientRecord struct {
	PatientFeatures
	TotalCharges float64 `json:"total_charges"`
}

const (
	MinTotalCharges = 1000.0
	MaxTotalCharges = 50000.0
)

// Columns is the CSV column order; total_charges is always last.
var Columns = []string{
	"age", "gender", "race", "diagnosis_code", "procedure_code",
	"length_of_stay", "treatment_type", "insurance_type", "total_charges",
}

// Bounds holds the accepted numeric ranges for age and length of stay.
type Bounds struct {
	AgeMin, AgeMax   int
	StayMin, StayMax int
}

var (
	// GeneratorBounds are the ranges the synthetic generator clamps to.
	GeneratorBounds = Bounds{AgeMin: 18, AgeMax: 95, StayMin: 1, StayMax: 30}
	// FormBounds are the ranges offered by the estimator form.
	FormBounds = Bounds{AgeMin: 18, AgeMax: 90, StayMin: 1, StayMax: 15}
)

const (
	DefaultFormAge  = 45
	DefaultFormStay = 3
)
