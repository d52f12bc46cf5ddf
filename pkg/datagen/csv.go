package datagen

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/synaptica-ai/hospital-charges/pkg/common/models"
)

var ErrHeaderMismatch = errors.New("unexpected CSV header")

// WriteError is an I/O failure while persisting a dataset file.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// WriteCSV writes a header and one row per record in models.Columns order.
func WriteCSV(w io.Writer, records []models.PatientRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(models.Columns); err != nil {
		return err
	}
	for _, r := range records {
		if err := cw.Write(recordRow(r)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCSVFile renders the whole file in memory and writes it in one call.
func WriteCSVFile(path string, records []models.PatientRecord) error {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, records); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return &WriteError{Path: path, Err: err}
		}
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	return nil
}

func recordRow(r models.PatientRecord) []string {
	return []string{
		strconv.Itoa(r.Age),
		string(r.Gender),
		string(r.Race),
		string(r.DiagnosisCode),
		string(r.ProcedureCode),
		strconv.Itoa(r.LengthOfStay),
		string(r.TreatmentType),
		string(r.InsuranceType),
		strconv.FormatFloat(r.TotalCharges, 'f', -1, 64),
	}
}

// ReadCSV parses a dataset written by WriteCSV, validating every row.
func ReadCSV(r io.Reader) ([]models.PatientRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(models.Columns)

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if strings.Join(header, ",") != strings.Join(models.Columns, ",") {
		return nil, fmt.Errorf("%w: %v", ErrHeaderMismatch, header)
	}

	var records []models.PatientRecord
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		record, err := parseRow(row)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		records = append(records, record)
	}
	return records, nil
}

func ReadCSVFile(path string) ([]models.PatientRecord, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadCSV(f)
}

func parseRow(row []string) (models.PatientRecord, error) {
	age, err := strconv.Atoi(row[0])
	if err != nil {
		return models.PatientRecord{}, &models.ValidationError{Field: "age", Reason: "must be a whole number"}
	}
	stay, err := strconv.Atoi(row[5])
	if err != nil {
		return models.PatientRecord{}, &models.ValidationError{Field: "length_of_stay", Reason: "must be a whole number"}
	}
	charges, err := strconv.ParseFloat(row[8], 64)
	if err != nil {
		return models.PatientRecord{}, &models.ValidationError{Field: "total_charges", Reason: "must be a number"}
	}
	record := models.PatientRecord{
		PatientFeatures: models.PatientFeatures{
			Age:           age,
			Gender:        models.Gender(row[1]),
			Race:          models.Race(row[2]),
			DiagnosisCode: models.DiagnosisCode(row[3]),
			ProcedureCode: models.ProcedureCode(row[4]),
			LengthOfStay:  stay,
			TreatmentType: models.TreatmentType(row[6]),
			InsuranceType: models.InsuranceType(row[7]),
		},
		TotalCharges: charges,
	}
	return record, record.Validate()
}
