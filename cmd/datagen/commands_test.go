package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/synaptica-ai/hospital-charges/pkg/datagen"
)

func runReport(t *testing.T, profile datagen.Profile, synth datagen.Synthesizer) string {
	t.Helper()
	profile.Samples = 20
	profile.OutputDir = t.TempDir()
	report, err := datagen.NewPipeline(synth).Run(context.Background(), profile)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, printReport(&buf, report))
	return buf.String()
}

func TestPrintReportSkippedExpansion(t *testing.T) {
	profile := datagen.DefaultProfile()
	profile.SkipExpansion = true

	out := runReport(t, profile, nil)
	assert.Contains(t, out, "Synthetic expansion skipped as requested")
	assert.NotContains(t, out, "could not be expanded")
	assert.Contains(t, out, "Original data saved to")
}

func TestPrintReportUnavailableSynthesizer(t *testing.T) {
	out := runReport(t, datagen.DefaultProfile(), datagen.Unavailable{Reason: "SYNTHESIZER_URL is not set"})
	assert.Contains(t, out, "Data could not be expanded: synthesizer unavailable: SYNTHESIZER_URL is not set")
	assert.NotContains(t, out, "skipped as requested")
}
