package sync

import (
	"bytes"
	"context"
	"strconv"

	"github.com/catalogsync/backend/internal/domain/pipeline"
	"github.com/catalogsync/backend/internal/infrastructure/flatfile"
	"github.com/catalogsync/backend/internal/infrastructure/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const epriceExportName = "eprice_offers.csv"

// epriceColumns is the compact offer schema header.
var epriceColumns = []string{"ean", "sku", "description", "quantity", "price", "leadtime"}

// ExportEpriceStep maps catalog rows into the compact offer schema.
type ExportEpriceStep struct {
	store  storage.ObjectStore
	logger *zap.Logger
}

// NewExportEpriceStep creates the export_eprice step
func NewExportEpriceStep(store storage.ObjectStore, logger *zap.Logger) *ExportEpriceStep {
	return &ExportEpriceStep{store: store, logger: logger}
}

// Name returns the step name
func (s *ExportEpriceStep) Name() pipeline.StepName { return pipeline.StepExportEprice }

// Execute writes the compact export from the catalog artifact.
func (s *ExportEpriceStep) Execute(ctx context.Context, runID uuid.UUID, cfg StepConfig) (map[string]int, error) {
	entries, err := readRecords(ctx, s.store, artifactKey(runID, stageCatalog))
	if err != nil {
		return nil, err
	}

	counters := map[string]int{"emitted": 0, "skipped": 0}
	leadtime := strconv.Itoa(cfg.PreparationDays)

	var buf bytes.Buffer
	w := flatfile.NewWriter(&buf,
		flatfile.WithWriteDelimiter(exportDelimiter),
		flatfile.WithTextColumns(0, 1))

	if err := w.Write(epriceColumns); err != nil {
		return nil, err
	}
	for _, rec := range entries {
		if rec.ProductCode == "" || rec.ManufacturerCode == "" ||
			rec.Stock <= 0 || !rec.HasFinalPrice() {
			counters["skipped"]++
			continue
		}
		row := []string{
			rec.ProductCode,
			rec.ManufacturerCode,
			rec.Description,
			strconv.Itoa(rec.Stock),
			rec.FinalPriceDisplay,
			leadtime,
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
		counters["emitted"]++
	}
	if err := w.Flush(); err != nil {
		return nil, err
	}

	if err := s.store.Upload(ctx, exportKey(runID, epriceExportName), buf.Bytes(), exportContentType); err != nil {
		return nil, err
	}
	s.logger.Info("Compact export written",
		zap.String("run_id", runID.String()),
		zap.Int("emitted", counters["emitted"]),
		zap.Int("skipped", counters["skipped"]))
	return counters, nil
}
