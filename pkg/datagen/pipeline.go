package datagen

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/synaptica-ai/hospital-charges/pkg/common/logger"
	"github.com/synaptica-ai/hospital-charges/pkg/common/models"
)

const eventSource = "datagen"

// DatasetSink persists a finished run alongside the CSV files.
type DatasetSink interface {
	SaveDataset(ctx context.Context, report Report, original, synthetic []models.PatientRecord) error
}

// EventPublisher announces finished runs.
type EventPublisher interface {
	PublishEvent(ctx context.Context, eventType string, source string, data map[string]interface{}) error
}

type Report struct {
	RunID          uuid.UUID   `json:"run_id"`
	Profile        Profile     `json:"profile"`
	OriginalPath   string      `json:"original_path"`
	SyntheticPath  string      `json:"synthetic_path,omitempty"`
	Original       Summary     `json:"original"`
	Synthetic      *Summary    `json:"synthetic,omitempty"`
	Comparison     *Comparison `json:"comparison,omitempty"`
	Expanded       bool        `json:"expanded"`
	ExpansionError string      `json:"expansion_error,omitempty"`
	DroppedRows    int         `json:"dropped_rows"`
	StartedAt      time.Time   `json:"started_at"`
	CompletedAt    time.Time   `json:"completed_at"`
}

type Pipeline struct {
	synthesizer Synthesizer
	sink        DatasetSink
	publisher   EventPublisher
	now         func() time.Time
}

type PipelineOption func(*Pipeline)

func WithSink(sink DatasetSink) PipelineOption {
	return func(p *Pipeline) { p.sink = sink }
}

func WithPublisher(publisher EventPublisher) PipelineOption {
	return func(p *Pipeline) { p.publisher = publisher }
}

func WithClock(now func() time.Time) PipelineOption {
	return func(p *Pipeline) { p.now = now }
}

// NewPipeline wires the collaborators; a nil synthesizer means Unavailable.
func NewPipeline(synthesizer Synthesizer, opts ...PipelineOption) *Pipeline {
	if synthesizer == nil {
		synthesizer = Unavailable{}
	}
	p := &Pipeline{synthesizer: synthesizer, now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run generates the base dataset, writes it, then tries to expand it. Only
// generation and CSV write failures abort the run.
func (p *Pipeline) Run(ctx context.Context, profile Profile) (Report, error) {
	if err := profile.Validate(); err != nil {
		return Report{}, err
	}
	report := Report{
		RunID:        uuid.New(),
		Profile:      profile,
		OriginalPath: profile.OriginalPath(),
		StartedAt:    p.now().UTC(),
	}
	log := logger.Log.WithField("run_id", report.RunID)

	log.WithFields(map[string]interface{}{
		"samples": profile.Samples,
		"seed":    profile.Seed,
	}).Info("Generating original healthcare dataset")
	original, err := NewGenerator(profile.Seed).Generate(profile.Samples)
	if err != nil {
		return report, err
	}
	report.Original = Summarize(original)

	if err := WriteCSVFile(report.OriginalPath, original); err != nil {
		return report, err
	}
	log.WithField("path", report.OriginalPath).Info("Original dataset saved")

	var synthetic []models.PatientRecord
	if profile.SkipExpansion {
		report.ExpansionError = "expansion skipped"
	} else {
		synthetic, err = p.expand(ctx, original, profile.Scale, &report)
		if err != nil {
			return report, err
		}
	}

	if synthetic != nil {
		report.SyntheticPath = profile.SyntheticPath()
		if err := WriteCSVFile(report.SyntheticPath, synthetic); err != nil {
			return report, err
		}
		log.WithFields(map[string]interface{}{
			"path":    report.SyntheticPath,
			"records": len(synthetic),
		}).Info("Synthetic dataset saved")
	}

	report.CompletedAt = p.now().UTC()
	p.persist(ctx, report, original, synthetic)
	p.announce(ctx, report)
	return report, nil
}

// expand returns nil rows when the synthesizer is unavailable.
func (p *Pipeline) expand(ctx context.Context, original []models.PatientRecord, scale int, report *Report) ([]models.PatientRecord, error) {
	log := logger.Log.WithField("run_id", report.RunID)
	log.WithField("scale", scale).Info("Generating synthetic data")

	rows, err := p.synthesizer.Synthesize(ctx, original, scale)
	var valid []models.PatientRecord
	if err == nil {
		var dropped int
		valid, dropped = FilterValid(rows)
		report.DroppedRows = dropped
		if dropped > 0 {
			log.WithField("dropped", dropped).Warn("Dropped synthetic rows outside the dataset schema")
		}
		if len(valid) == 0 {
			err = &UnavailableError{Reason: fmt.Sprintf("no valid rows among %d returned", len(rows))}
		}
	}
	if errors.Is(err, ErrSynthesizerUnavailable) {
		log.WithError(err).Warn("Data could not be expanded; keeping the original dataset only")
		report.ExpansionError = err.Error()
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if want := len(original) * scale; len(valid) != want {
		log.WithFields(map[string]interface{}{
			"expected": want,
			"received": len(valid),
		}).Warn("Synthetic row count differs from requested scale")
	}

	summary := Summarize(valid)
	comparison := Compare(report.Original, summary)
	comparison.DroppedRows = report.DroppedRows
	report.Synthetic = &summary
	report.Comparison = &comparison
	report.Expanded = true
	return valid, nil
}

func (p *Pipeline) persist(ctx context.Context, report Report, original, synthetic []models.PatientRecord) {
	if p.sink == nil {
		return
	}
	if err := p.sink.SaveDataset(ctx, report, original, synthetic); err != nil {
		logger.Log.WithError(err).WithField("run_id", report.RunID).Error("failed to persist dataset")
	}
}

func (p *Pipeline) announce(ctx context.Context, report Report) {
	if p.publisher == nil {
		return
	}
	data := map[string]interface{}{
		"run_id":            report.RunID.String(),
		"seed":              report.Profile.Seed,
		"original_records":  report.Original.Records,
		"original_path":     report.OriginalPath,
		"expanded":          report.Expanded,
		"synthetic_path":    report.SyntheticPath,
		"synthetic_records": 0,
	}
	if report.Synthetic != nil {
		data["synthetic_records"] = report.Synthetic.Records
	}
	if err := p.publisher.PublishEvent(ctx, models.EventDatasetGenerated, eventSource, data); err != nil {
		logger.Log.WithError(err).WithField("run_id", report.RunID).Error("failed to publish dataset event")
	}
}
