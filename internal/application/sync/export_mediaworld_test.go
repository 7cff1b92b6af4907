package sync

import (
	"context"
	"strings"
	"testing"

	"github.com/catalogsync/backend/internal/domain/catalog"
	"github.com/catalogsync/backend/internal/domain/pricing"
	"github.com/catalogsync/backend/internal/infrastructure/flatfile"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func offerRecord(key, mfg string) *catalog.ProductRecord {
	return &catalog.ProductRecord{
		Key:               key,
		ManufacturerCode:  mfg,
		ProductCode:       "0123456789012",
		Description:       "Item " + key,
		Stock:             5,
		FinalPriceCents:   13299,
		FinalPriceDisplay: pricing.Cents(13299).Display(),
		ListPriceWithFee:  14700,
		HasListWithFee:    true,
	}
}

func TestExportMediaworldValidation(t *testing.T) {
	store, _ := newStepEnv(t)
	ctx := context.Background()
	runID := uuid.New()

	longCode := strings.Repeat("X", 45)
	noFee := offerRecord("D4", "M4")
	noFee.HasListWithFee = false
	noFee.ListPriceWithFee = 0
	cheap := offerRecord("E5", "M5")
	cheap.FinalPriceCents = 50
	cheap.FinalPriceDisplay = pricing.Cents(50).Display()

	entries := []*catalog.ProductRecord{
		offerRecord("A1", "M1"),     // emitted
		offerRecord("B2", longCode), // manufacturer code too long
		offerRecord("C3", "M/3"),    // path separator
		noFee,                       // missing compare-at price
		cheap,                       // below the sane price floor
	}
	require.NoError(t, writeRecords(ctx, store, artifactKey(runID, stageCatalog), entries))

	step := NewExportMediaworldStep(store, zap.NewNop())
	counters, err := step.Execute(ctx, runID, StepConfig{PreparationDays: 2})
	require.NoError(t, err)
	assert.Equal(t, 1, counters["emitted"])
	assert.Equal(t, 4, counters["skipped"])

	export, err := store.Download(ctx, exportKey(runID, mediaworldExportName))
	require.NoError(t, err)

	r, err := flatfile.NewReaderFromBytes(export, flatfile.WithDelimiter(';'))
	require.NoError(t, err)
	require.NoError(t, r.ParseHeader())
	assert.Len(t, r.Headers(), 22)

	row, err := r.ReadRow()
	require.NoError(t, err)
	assert.Equal(t, "M1", row.Get("sku"))
	assert.Equal(t, "0123456789012", row.Get("product-id"))
	assert.Equal(t, "EAN", row.Get("product-id-type"))
	assert.Equal(t, "147,00", row.Get("price"))
	assert.Equal(t, "5", row.Get("quantity"))
	assert.Equal(t, "11", row.Get("state"))
	assert.Equal(t, "132,99", row.Get("discount-price"))
	assert.Equal(t, "2", row.Get("leadtime-to-ship"))
	assert.Equal(t, "update", row.Get("update-delete"))
	assert.Equal(t, "STD", row.Get("logistic-class"))
}

func TestExportMediaworldStockAndPatternRules(t *testing.T) {
	store, _ := newStepEnv(t)
	ctx := context.Background()
	runID := uuid.New()

	outOfStock := offerRecord("A1", "M1")
	outOfStock.Stock = 0
	badCode := offerRecord("B2", "M2")
	badCode.ProductCode = "12345"

	entries := []*catalog.ProductRecord{outOfStock, badCode}
	require.NoError(t, writeRecords(ctx, store, artifactKey(runID, stageCatalog), entries))

	step := NewExportMediaworldStep(store, zap.NewNop())
	counters, err := step.Execute(ctx, runID, StepConfig{PreparationDays: 1})
	require.NoError(t, err)
	assert.Equal(t, 0, counters["emitted"])
	assert.Equal(t, 2, counters["skipped"])
}
