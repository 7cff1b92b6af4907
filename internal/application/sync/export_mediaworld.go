package sync

import (
	"bytes"
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/catalogsync/backend/internal/domain/catalog"
	"github.com/catalogsync/backend/internal/domain/pipeline"
	"github.com/catalogsync/backend/internal/domain/pricing"
	"github.com/catalogsync/backend/internal/infrastructure/flatfile"
	"github.com/catalogsync/backend/internal/infrastructure/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const mediaworldExportName = "mediaworld_offers.csv"

// Offer row constants for the detailed-offer schema.
const (
	mwProductIDType = "EAN"
	mwStateNew      = "11"
	mwDiscountType  = "1"
	mwUpdateAction  = "update"
	mwLogisticClass = "STD"
)

// Row acceptance bounds for the detailed-offer export.
const (
	mwMaxManufacturerCodeLen = 40
	mwMinFinalPrice          = pricing.Cents(100)      // 1.00
	mwMaxFinalPrice          = pricing.Cents(10000000) // 100000.00
)

var mwProductCodePattern = regexp.MustCompile(`^[0-9]{12,14}$`)

// mediaworldColumns is the detailed-offer schema header.
var mediaworldColumns = []string{
	"sku",
	"product-id",
	"product-id-type",
	"description",
	"internal-description",
	"price",
	"price-additional-info",
	"quantity",
	"min-quantity-alert",
	"state",
	"available-start-date",
	"available-end-date",
	"discount-price",
	"discount-start-date",
	"discount-end-date",
	"discount-ranges",
	"discount-type",
	"leadtime-to-ship",
	"update-delete",
	"logistic-class",
	"favourite-rank",
	"channels",
}

// ExportMediaworldStep maps catalog rows into the detailed-offer schema.
// Validation is strict: rows that fail any acceptance rule are counted
// and dropped rather than emitted permissively.
type ExportMediaworldStep struct {
	store  storage.ObjectStore
	logger *zap.Logger
}

// NewExportMediaworldStep creates the export_mediaworld step
func NewExportMediaworldStep(store storage.ObjectStore, logger *zap.Logger) *ExportMediaworldStep {
	return &ExportMediaworldStep{store: store, logger: logger}
}

// Name returns the step name
func (s *ExportMediaworldStep) Name() pipeline.StepName { return pipeline.StepExportMediaworld }

// Execute writes the detailed-offer export from the catalog artifact.
func (s *ExportMediaworldStep) Execute(ctx context.Context, runID uuid.UUID, cfg StepConfig) (map[string]int, error) {
	entries, err := readRecords(ctx, s.store, artifactKey(runID, stageCatalog))
	if err != nil {
		return nil, err
	}

	counters := map[string]int{"emitted": 0, "skipped": 0}
	leadtime := strconv.Itoa(cfg.PreparationDays)

	var buf bytes.Buffer
	// Code and price columns are text-forced to preserve leading zeros.
	w := flatfile.NewWriter(&buf,
		flatfile.WithWriteDelimiter(exportDelimiter),
		flatfile.WithTextColumns(0, 1, 5, 12))

	if err := w.Write(mediaworldColumns); err != nil {
		return nil, err
	}
	for _, rec := range entries {
		if !acceptMediaworldRow(rec) {
			counters["skipped"]++
			continue
		}
		row := []string{
			rec.ManufacturerCode,
			rec.ProductCode,
			mwProductIDType,
			rec.Description,
			"",
			rec.ListPriceWithFee.Display(),
			"",
			strconv.Itoa(rec.Stock),
			"",
			mwStateNew,
			"",
			"",
			rec.FinalPriceDisplay,
			"",
			"",
			"",
			mwDiscountType,
			leadtime,
			mwUpdateAction,
			mwLogisticClass,
			"",
			"",
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
		counters["emitted"]++
	}
	if err := w.Flush(); err != nil {
		return nil, err
	}

	if err := s.store.Upload(ctx, exportKey(runID, mediaworldExportName), buf.Bytes(), exportContentType); err != nil {
		return nil, err
	}
	s.logger.Info("Detailed-offer export written",
		zap.String("run_id", runID.String()),
		zap.Int("emitted", counters["emitted"]),
		zap.Int("skipped", counters["skipped"]))
	return counters, nil
}

// acceptMediaworldRow applies the acceptance rules of the detailed-offer
// schema in fixed order.
func acceptMediaworldRow(rec *catalog.ProductRecord) bool {
	if rec.ManufacturerCode == "" ||
		len(rec.ManufacturerCode) > mwMaxManufacturerCodeLen ||
		strings.ContainsRune(rec.ManufacturerCode, '/') {
		return false
	}
	if !mwProductCodePattern.MatchString(rec.ProductCode) {
		return false
	}
	if rec.Stock <= 0 {
		return false
	}
	if !rec.HasListWithFee || rec.ListPriceWithFee <= 0 {
		return false
	}
	if rec.FinalPriceCents < mwMinFinalPrice || rec.FinalPriceCents > mwMaxFinalPrice {
		return false
	}
	return true
}
