package datagen

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/synaptica-ai/hospital-charges/pkg/common/models"
)

type repeatSynthesizer struct {
	extra []models.PatientRecord
	err   error
}

func (s repeatSynthesizer) Synthesize(ctx context.Context, data []models.PatientRecord, scale int) ([]models.PatientRecord, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make([]models.PatientRecord, 0, len(data)*scale+len(s.extra))
	for i := 0; i < len(data)*scale; i++ {
		out = append(out, data[i%len(data)])
	}
	return append(out, s.extra...), nil
}

type invalidSynthesizer struct{}

func (invalidSynthesizer) Synthesize(ctx context.Context, data []models.PatientRecord, scale int) ([]models.PatientRecord, error) {
	out := make([]models.PatientRecord, len(data)*scale)
	for i := range out {
		out[i] = data[i%len(data)]
		out[i].Age = 200
	}
	return out, nil
}

type recordingSink struct {
	mu        sync.Mutex
	reports   []Report
	original  int
	synthetic int
	err       error
}

func (s *recordingSink) SaveDataset(ctx context.Context, report Report, original, synthetic []models.PatientRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports = append(s.reports, report)
	s.original = len(original)
	s.synthetic = len(synthetic)
	return s.err
}

type recordingPublisher struct {
	eventType string
	source    string
	data      map[string]interface{}
}

func (p *recordingPublisher) PublishEvent(ctx context.Context, eventType, source string, data map[string]interface{}) error {
	p.eventType, p.source, p.data = eventType, source, data
	return nil
}

func testProfile(t *testing.T) Profile {
	p := DefaultProfile()
	p.Samples = 40
	p.Scale = 3
	p.OutputDir = t.TempDir()
	return p
}

func TestPipelineWithoutSynthesizerKeepsOriginal(t *testing.T) {
	profile := testProfile(t)

	report, err := NewPipeline(nil).Run(context.Background(), profile)
	require.NoError(t, err)

	assert.False(t, report.Expanded)
	assert.Contains(t, report.ExpansionError, "no synthesizer configured")
	assert.Nil(t, report.Synthetic)
	assert.Empty(t, report.SyntheticPath)
	assert.Equal(t, 40, report.Original.Records)

	records, err := ReadCSVFile(profile.OriginalPath())
	require.NoError(t, err)
	assert.Len(t, records, 40)

	_, err = os.Stat(profile.SyntheticPath())
	assert.True(t, os.IsNotExist(err))
}

func TestPipelineExpandsAndNotifies(t *testing.T) {
	profile := testProfile(t)
	invalid := sampleRecord()
	invalid.LengthOfStay = 0
	sink := &recordingSink{}
	publisher := &recordingPublisher{}
	fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	pipeline := NewPipeline(
		repeatSynthesizer{extra: []models.PatientRecord{invalid}},
		WithSink(sink),
		WithPublisher(publisher),
		WithClock(func() time.Time { return fixed }),
	)
	report, err := pipeline.Run(context.Background(), profile)
	require.NoError(t, err)

	assert.True(t, report.Expanded)
	assert.Equal(t, 1, report.DroppedRows)
	require.NotNil(t, report.Synthetic)
	assert.Equal(t, 120, report.Synthetic.Records)
	require.NotNil(t, report.Comparison)
	assert.Equal(t, 3.0, report.Comparison.ScaleFactor)
	assert.Equal(t, 1, report.Comparison.DroppedRows)
	assert.Equal(t, fixed, report.StartedAt)
	assert.Equal(t, fixed, report.CompletedAt)

	synthetic, err := ReadCSVFile(profile.SyntheticPath())
	require.NoError(t, err)
	assert.Len(t, synthetic, 120)

	require.Len(t, sink.reports, 1)
	assert.Equal(t, report.RunID, sink.reports[0].RunID)
	assert.Equal(t, 40, sink.original)
	assert.Equal(t, 120, sink.synthetic)

	assert.Equal(t, models.EventDatasetGenerated, publisher.eventType)
	assert.Equal(t, "datagen", publisher.source)
	assert.Equal(t, report.RunID.String(), publisher.data["run_id"])
	assert.Equal(t, 120, publisher.data["synthetic_records"])
}

func TestPipelineIsReproducible(t *testing.T) {
	first := testProfile(t)
	second := testProfile(t)

	_, err := NewPipeline(nil).Run(context.Background(), first)
	require.NoError(t, err)
	_, err = NewPipeline(nil).Run(context.Background(), second)
	require.NoError(t, err)

	a, err := os.ReadFile(first.OriginalPath())
	require.NoError(t, err)
	b, err := os.ReadFile(second.OriginalPath())
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestPipelineSkipExpansion(t *testing.T) {
	profile := testProfile(t)
	profile.SkipExpansion = true
	called := errors.New("synthesizer should not run")

	report, err := NewPipeline(repeatSynthesizer{err: called}).Run(context.Background(), profile)
	require.NoError(t, err)
	assert.False(t, report.Expanded)
	assert.Equal(t, "expansion skipped", report.ExpansionError)
}

func TestPipelineSinkFailureIsNotFatal(t *testing.T) {
	profile := testProfile(t)
	sink := &recordingSink{err: errors.New("connection refused")}

	_, err := NewPipeline(nil, WithSink(sink)).Run(context.Background(), profile)
	assert.NoError(t, err)
	assert.Len(t, sink.reports, 1)
}

func TestPipelineFailures(t *testing.T) {
	t.Run("invalid profile", func(t *testing.T) {
		profile := testProfile(t)
		profile.Samples = 0
		_, err := NewPipeline(nil).Run(context.Background(), profile)
		assert.ErrorIs(t, err, ErrInvalidSampleCount)
	})
	t.Run("unwritable output", func(t *testing.T) {
		profile := testProfile(t)
		blocker := filepath.Join(profile.OutputDir, "blocker")
		require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))
		profile.OutputDir = filepath.Join(blocker, "out")

		_, err := NewPipeline(nil).Run(context.Background(), profile)
		var we *WriteError
		assert.ErrorAs(t, err, &we)
	})
	t.Run("synthesizer failure", func(t *testing.T) {
		boom := errors.New("boom")
		_, err := NewPipeline(repeatSynthesizer{err: boom}).Run(context.Background(), testProfile(t))
		assert.ErrorIs(t, err, boom)
	})
}

func TestPipelineFallsBackWhenNoSyntheticRowIsValid(t *testing.T) {
	profile := testProfile(t)
	sink := &recordingSink{}

	report, err := NewPipeline(invalidSynthesizer{}, WithSink(sink)).Run(context.Background(), profile)
	require.NoError(t, err)

	assert.False(t, report.Expanded)
	assert.Nil(t, report.Synthetic)
	assert.Empty(t, report.SyntheticPath)
	assert.Equal(t, 120, report.DroppedRows)
	assert.Contains(t, report.ExpansionError, "no valid rows among 120 returned")
	assert.Equal(t, 0, sink.synthetic)

	_, err = os.Stat(profile.SyntheticPath())
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(profile.OriginalPath())
	assert.NoError(t, err)
}
