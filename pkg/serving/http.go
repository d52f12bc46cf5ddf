package serving

import (
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/synaptica-ai/hospital-charges/pkg/common/logger"
	"github.com/synaptica-ai/hospital-charges/pkg/common/models"
)

//go:embed templates/form.html
var templateFS embed.FS

var formTemplate = template.Must(template.ParseFS(templateFS, "templates/form.html"))

type Choices struct {
	Genders        []models.Gender        `json:"gender"`
	Races          []models.Race          `json:"race"`
	DiagnosisCodes []models.DiagnosisCode `json:"diagnosis_code"`
	ProcedureCodes []models.ProcedureCode `json:"procedure_code"`
	TreatmentTypes []models.TreatmentType `json:"treatment_type"`
	InsuranceTypes []models.InsuranceType `json:"insurance_type"`
}

var formChoices = Choices{
	Genders:        models.Genders,
	Races:          models.Races,
	DiagnosisCodes: models.DiagnosisCodes,
	ProcedureCodes: models.ProcedureCodes,
	TreatmentTypes: models.TreatmentTypes,
	InsuranceTypes: models.InsuranceTypes,
}

type formView struct {
	Choices Choices
	Bounds  models.Bounds
	Values  models.PatientFeatures
	Result  *Estimate
	Error   string
}

type Handler struct {
	estimator *Estimator
}

func NewHandler(estimator *Estimator) *Handler {
	return &Handler{estimator: estimator}
}

func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/", h.handleForm).Methods(http.MethodGet)
	r.HandleFunc("/", h.handleFormSubmit).Methods(http.MethodPost)
	r.HandleFunc("/api/v1/estimate", h.handleEstimate).Methods(http.MethodPost)
	r.HandleFunc("/api/v1/schema", h.handleSchema).Methods(http.MethodGet)
}

// DefaultFeatures are the values the form starts with.
func DefaultFeatures() models.PatientFeatures {
	return models.PatientFeatures{
		Age:           models.DefaultFormAge,
		Gender:        models.Genders[0],
		Race:          models.Races[0],
		DiagnosisCode: models.DiagnosisCodes[0],
		ProcedureCode: models.ProcedureCodes[0],
		LengthOfStay:  models.DefaultFormStay,
		TreatmentType: models.TreatmentTypes[0],
		InsuranceType: models.InsuranceTypes[0],
	}
}

func (h *Handler) handleForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, formView{Values: DefaultFeatures()})
}

func (h *Handler) handleFormSubmit(w http.ResponseWriter, r *http.Request) {
	features, err := parseForm(r)
	if err != nil {
		h.render(w, http.StatusUnprocessableEntity, formView{Values: features, Error: err.Error()})
		return
	}
	estimate, err := h.estimator.Estimate(r.Context(), features)
	if err != nil {
		if models.IsValidationError(err) {
			h.render(w, http.StatusUnprocessableEntity, formView{Values: features, Error: err.Error()})
			return
		}
		logger.Log.WithError(err).Error("failed to estimate charges")
		h.render(w, http.StatusInternalServerError, formView{Values: features, Error: "failed to estimate charges"})
		return
	}
	h.render(w, http.StatusOK, formView{Values: features, Result: &estimate})
}

func (h *Handler) handleEstimate(w http.ResponseWriter, r *http.Request) {
	var features models.PatientFeatures
	if err := json.NewDecoder(r.Body).Decode(&features); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"error": "invalid request"})
		return
	}
	estimate, err := h.estimator.Estimate(r.Context(), features)
	if err != nil {
		var ve *models.ValidationError
		if errors.As(err, &ve) {
			writeJSON(w, http.StatusBadRequest, map[string]interface{}{"error": ve.Error(), "field": ve.Field})
			return
		}
		logger.Log.WithError(err).Error("failed to estimate charges")
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{"error": "failed to estimate charges"})
		return
	}
	writeJSON(w, http.StatusOK, estimate)
}

func (h *Handler) handleSchema(w http.ResponseWriter, r *http.Request) {
	b := h.estimator.Bounds()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"choices": formChoices,
		"age":     map[string]int{"min": b.AgeMin, "max": b.AgeMax, "default": models.DefaultFormAge},
		"length_of_stay": map[string]int{
			"min": b.StayMin, "max": b.StayMax, "default": models.DefaultFormStay,
		},
		"model_version": h.estimator.ModelVersion(),
	})
}

func (h *Handler) render(w http.ResponseWriter, status int, view formView) {
	view.Choices = formChoices
	view.Bounds = h.estimator.Bounds()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := formTemplate.Execute(w, view); err != nil {
		logger.Log.WithError(err).Error("failed to render form")
	}
}

func parseForm(r *http.Request) (models.PatientFeatures, error) {
	features := models.PatientFeatures{
		Gender:        models.Gender(r.PostFormValue("gender")),
		Race:          models.Race(r.PostFormValue("race")),
		DiagnosisCode: models.DiagnosisCode(r.PostFormValue("diagnosis_code")),
		ProcedureCode: models.ProcedureCode(r.PostFormValue("procedure_code")),
		TreatmentType: models.TreatmentType(r.PostFormValue("treatment_type")),
		InsuranceType: models.InsuranceType(r.PostFormValue("insurance_type")),
	}
	var err error
	if features.Age, err = formInt(r, "age"); err != nil {
		return features, err
	}
	if features.LengthOfStay, err = formInt(r, "length_of_stay"); err != nil {
		return features, err
	}
	return features, nil
}

func formInt(r *http.Request, field string) (int, error) {
	raw := r.PostFormValue(field)
	if raw == "" {
		return 0, &models.ValidationError{Field: field, Reason: "is required"}
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &models.ValidationError{Field: field, Reason: "must be a whole number"}
	}
	return value, nil
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Log.WithError(err).Error("failed to encode response")
	}
}
