package sync

import (
	"context"
	"testing"

	"github.com/catalogsync/backend/internal/domain/catalog"
	"github.com/catalogsync/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestEANMappingFillsOnlyEmptyCodes(t *testing.T) {
	store, source := newStepEnv(t)
	ctx := context.Background()
	runID := uuid.New()

	uploadExtract(t, store, "feed/mapping/mapping.tsv",
		"ManufacturerCode\tEAN\n"+
			"M1\t4006381333931\n"+
			"M3\t5099206021356\n")

	merged := []*catalog.ProductRecord{
		{Key: "A1", ManufacturerCode: "M1"},                               // mapped
		{Key: "B2", ManufacturerCode: "M9"},                               // no mapping entry
		{Key: "C3", ManufacturerCode: "M3", ProductCode: "1234567890123"}, // untouched
		{Key: "D4"}, // no manufacturer code, not counted
	}
	require.NoError(t, writeRecords(ctx, store, artifactKey(runID, stageMerged), merged))

	step := NewEANMappingStep(source, store, zap.NewNop())
	counters, err := step.Execute(ctx, runID, StepConfig{})
	require.NoError(t, err)

	assert.Equal(t, 1, counters["mapped"])
	assert.Equal(t, 1, counters["missing"])

	records, err := readRecords(ctx, store, artifactKey(runID, stageMapped))
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, "4006381333931", records[0].ProductCode)
	assert.Equal(t, "", records[1].ProductCode)
	assert.Equal(t, "1234567890123", records[2].ProductCode)
	assert.Equal(t, "", records[3].ProductCode)
}

func TestEANMappingWithoutExtractKeepsRows(t *testing.T) {
	store, source := newStepEnv(t)
	ctx := context.Background()
	runID := uuid.New()

	merged := []*catalog.ProductRecord{
		{Key: "A1", ManufacturerCode: "M1"},
	}
	require.NoError(t, writeRecords(ctx, store, artifactKey(runID, stageMerged), merged))

	step := NewEANMappingStep(source, store, zap.NewNop())
	counters, err := step.Execute(ctx, runID, StepConfig{})
	require.NoError(t, err)
	assert.Equal(t, 0, counters["mapped"])
	assert.Equal(t, 1, counters["missing"])

	records, err := readRecords(ctx, store, artifactKey(runID, stageMapped))
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestEANMappingMissingUpstreamArtifact(t *testing.T) {
	store, source := newStepEnv(t)

	step := NewEANMappingStep(source, store, zap.NewNop())
	_, err := step.Execute(context.Background(), uuid.New(), StepConfig{})
	assert.ErrorIs(t, err, shared.ErrArtifactMissing)
}
