// Package storage keeps generated datasets in Postgres next to their CSV files.
package storage

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/synaptica-ai/hospital-charges/pkg/common/logger"
	"github.com/synaptica-ai/hospital-charges/pkg/common/models"
	"github.com/synaptica-ai/hospital-charges/pkg/datagen"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	SourceOriginal  = "original"
	SourceSynthetic = "synthetic"

	defaultBatchSize = 500
)

type DatasetRun struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	Seed           int64
	Samples        int
	Scale          int
	OriginalPath   string
	SyntheticPath  string
	Expanded       bool `gorm:"index"`
	ExpansionError string
	DroppedRows    int
	Summary        datatypes.JSONMap `gorm:"type:jsonb"`
	StartedAt      time.Time
	CompletedAt    time.Time
	CreatedAt      time.Time
}

func (DatasetRun) TableName() string {
	return "dataset_runs"
}

type PatientRow struct {
	ID            uint      `gorm:"primaryKey"`
	RunID         uuid.UUID `gorm:"type:uuid;index"`
	Source        string    `gorm:"index"`
	Age           int
	Gender        string
	Race          string
	DiagnosisCode string
	ProcedureCode string
	LengthOfStay  int
	TreatmentType string
	InsuranceType string
	TotalCharges  float64
}

func (PatientRow) TableName() string {
	return "patient_records"
}

var _ datagen.DatasetSink = (*DatasetStore)(nil)

// DatasetStore implements datagen.DatasetSink on gorm.
type DatasetStore struct {
	db        *gorm.DB
	batchSize int
}

func NewDatasetStore(db *gorm.DB) *DatasetStore {
	return &DatasetStore{db: db, batchSize: defaultBatchSize}
}

func (s *DatasetStore) AutoMigrate() error {
	return s.db.AutoMigrate(&DatasetRun{}, &PatientRow{})
}

// SaveDataset writes the run and all of its rows in one transaction.
func (s *DatasetStore) SaveDataset(ctx context.Context, report datagen.Report, original, synthetic []models.PatientRecord) error {
	run, err := runFromReport(report)
	if err != nil {
		return err
	}
	rows := append(patientRows(report.RunID, SourceOriginal, original), patientRows(report.RunID, SourceSynthetic, synthetic)...)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&run).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.CreateInBatches(rows, s.batchSize).Error
	})
	if err != nil {
		return err
	}

	logger.Log.WithFields(map[string]interface{}{
		"run_id": report.RunID,
		"rows":   len(rows),
	}).Info("Dataset persisted")
	return nil
}

// Records loads the rows of one run and source in insertion order.
func (s *DatasetStore) Records(ctx context.Context, runID uuid.UUID, source string) ([]models.PatientRecord, error) {
	var rows []PatientRow
	err := s.db.WithContext(ctx).
		Where("run_id = ? AND source = ?", runID, source).
		Order("id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]models.PatientRecord, len(rows))
	for i, r := range rows {
		out[i] = r.Record()
	}
	return out, nil
}

func runFromReport(report datagen.Report) (DatasetRun, error) {
	summary, err := toJSONMap(report.Original)
	if err != nil {
		return DatasetRun{}, err
	}
	return DatasetRun{
		ID:             report.RunID,
		Seed:           report.Profile.Seed,
		Samples:        report.Profile.Samples,
		Scale:          report.Profile.Scale,
		OriginalPath:   report.OriginalPath,
		SyntheticPath:  report.SyntheticPath,
		Expanded:       report.Expanded,
		ExpansionError: report.ExpansionError,
		DroppedRows:    report.DroppedRows,
		Summary:        summary,
		StartedAt:      report.StartedAt,
		CompletedAt:    report.CompletedAt,
		CreatedAt:      time.Now().UTC(),
	}, nil
}

func patientRows(runID uuid.UUID, source string, records []models.PatientRecord) []PatientRow {
	rows := make([]PatientRow, len(records))
	for i, r := range records {
		rows[i] = PatientRow{
			RunID:         runID,
			Source:        source,
			Age:           r.Age,
			Gender:        string(r.Gender),
			Race:          string(r.Race),
			DiagnosisCode: string(r.DiagnosisCode),
			ProcedureCode: string(r.ProcedureCode),
			LengthOfStay:  r.LengthOfStay,
			TreatmentType: string(r.TreatmentType),
			InsuranceType: string(r.InsuranceType),
			TotalCharges:  r.TotalCharges,
		}
	}
	return rows
}

func (r PatientRow) Record() models.PatientRecord {
	return models.PatientRecord{
		PatientFeatures: models.PatientFeatures{
			Age:           r.Age,
			Gender:        models.Gender(r.Gender),
			Race:          models.Race(r.Race),
			DiagnosisCode: models.DiagnosisCode(r.DiagnosisCode),
			ProcedureCode: models.ProcedureCode(r.ProcedureCode),
			LengthOfStay:  r.LengthOfStay,
			TreatmentType: models.TreatmentType(r.TreatmentType),
			InsuranceType: models.InsuranceType(r.InsuranceType),
		},
		TotalCharges: r.TotalCharges,
	}
}

func toJSONMap(v interface{}) (datatypes.JSONMap, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	out := datatypes.JSONMap{}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}
