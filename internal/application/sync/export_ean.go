package sync

import (
	"bytes"
	"context"
	"fmt"

	"github.com/catalogsync/backend/internal/domain/catalog"
	"github.com/catalogsync/backend/internal/domain/pipeline"
	"github.com/catalogsync/backend/internal/infrastructure/flatfile"
	"github.com/catalogsync/backend/internal/infrastructure/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	catalogExportName = "catalog.csv"
	discardReportName = "discard_report.csv"

	exportContentType = "text/csv"
	exportDelimiter   = ';'
)

// ExportEANStep normalizes product codes to EAN-13, deduplicates by best
// final price, and emits the master catalog plus a discard report.
type ExportEANStep struct {
	store  storage.ObjectStore
	logger *zap.Logger
}

// NewExportEANStep creates the export_ean step
func NewExportEANStep(store storage.ObjectStore, logger *zap.Logger) *ExportEANStep {
	return &ExportEANStep{store: store, logger: logger}
}

// Name returns the step name
func (s *ExportEANStep) Name() pipeline.StepName { return pipeline.StepExportEAN }

// Execute builds the deduplicated catalog artifact and exports.
func (s *ExportEANStep) Execute(ctx context.Context, runID uuid.UUID, _ StepConfig) (map[string]int, error) {
	records, err := readRecords(ctx, s.store, artifactKey(runID, stagePriced))
	if err != nil {
		return nil, err
	}

	counters := map[string]int{
		"exported": 0, "missing": 0, "nonNumeric": 0,
		"invalidLength": 0, "duplicates": 0,
	}

	dedup := catalog.NewDeduplicator()
	for _, rec := range records {
		code, reason := catalog.NormalizeEAN(rec.ProductCode)
		switch reason {
		case catalog.RejectMissing:
			counters["missing"]++
		case catalog.RejectNonNumeric:
			counters["nonNumeric"]++
		case catalog.RejectInvalidLength:
			counters["invalidLength"]++
		default:
			dedup.Add(code, rec)
		}
	}

	entries := dedup.Entries()
	discarded := dedup.Discarded()
	counters["exported"] = len(entries)
	counters["duplicates"] = len(discarded)

	if err := writeRecords(ctx, s.store, artifactKey(runID, stageCatalog), entries); err != nil {
		return nil, err
	}
	if err := s.writeCatalogExport(ctx, runID, entries); err != nil {
		return nil, err
	}
	if err := s.writeDiscardReport(ctx, runID, discarded); err != nil {
		return nil, err
	}

	s.logger.Info("Catalog built",
		zap.String("run_id", runID.String()),
		zap.Int("exported", counters["exported"]),
		zap.Int("duplicates", counters["duplicates"]))
	return counters, nil
}

// writeCatalogExport emits the human-facing master catalog. The code
// column is text-forced so spreadsheet consumers keep leading zeros.
func (s *ExportEANStep) writeCatalogExport(ctx context.Context, runID uuid.UUID, entries []*catalog.ProductRecord) error {
	var buf bytes.Buffer
	w := flatfile.NewWriter(&buf,
		flatfile.WithWriteDelimiter(exportDelimiter),
		flatfile.WithTextColumns(0))

	if err := w.Write([]string{"ean", "sku", "description", "quantity", "price"}); err != nil {
		return err
	}
	for _, rec := range entries {
		row := []string{
			rec.ProductCode,
			rec.ManufacturerCode,
			rec.Description,
			fmt.Sprintf("%d", rec.Stock),
			rec.FinalPriceDisplay,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return s.store.Upload(ctx, exportKey(runID, catalogExportName), buf.Bytes(), exportContentType)
}

// writeDiscardReport emits one row per deduplication loser.
func (s *ExportEANStep) writeDiscardReport(ctx context.Context, runID uuid.UUID, discarded []catalog.DiscardedEntry) error {
	var buf bytes.Buffer
	w := flatfile.NewWriter(&buf,
		flatfile.WithWriteDelimiter(exportDelimiter),
		flatfile.WithTextColumns(0))

	if err := w.Write([]string{"ean", "key", "price"}); err != nil {
		return err
	}
	for _, d := range discarded {
		if err := w.Write([]string{d.Code, d.Key, d.PriceDisplay}); err != nil {
			return err
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return s.store.Upload(ctx, exportKey(runID, discardReportName), buf.Bytes(), exportContentType)
}
