package sync

import (
	"context"
	"errors"
	"fmt"

	"github.com/catalogsync/backend/internal/domain/catalog"
	"github.com/catalogsync/backend/internal/domain/pipeline"
	"github.com/catalogsync/backend/internal/domain/shared"
	"github.com/catalogsync/backend/internal/infrastructure/feed"
	"github.com/catalogsync/backend/internal/infrastructure/flatfile"
	"github.com/catalogsync/backend/internal/infrastructure/storage"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Source extract column names, resolved by header text, never position.
const (
	colKey              = "Code"
	colStock            = "Stock"
	colListPrice        = "ListPrice"
	colBestPrice        = "BestPrice"
	colSurcharge        = "Surcharge"
	colManufacturerCode = "ManufacturerCode"
	colEAN              = "EAN"
	colDescription      = "Description"
)

// minStock is the stock threshold below which a material row is dropped
const minStock = 2

// priceInfo is one PriceIndex entry
type priceInfo struct {
	list      decimal.Decimal
	best      decimal.Decimal
	surcharge decimal.Decimal
}

// ParseMergeStep builds the stock and price indices from the newest
// extracts, then streams the material extract through the join filters
// and persists the surviving rows as the merged artifact.
type ParseMergeStep struct {
	source feed.Source
	store  storage.ObjectStore
	logger *zap.Logger
}

// NewParseMergeStep creates the parse_merge step
func NewParseMergeStep(source feed.Source, store storage.ObjectStore, logger *zap.Logger) *ParseMergeStep {
	return &ParseMergeStep{source: source, store: store, logger: logger}
}

// Name returns the step name
func (s *ParseMergeStep) Name() pipeline.StepName { return pipeline.StepParseMerge }

// Execute runs the join. Index construction and the join itself are hash
// lookups, O(n) over the extracts; a malformed row never aborts the step.
func (s *ParseMergeStep) Execute(ctx context.Context, runID uuid.UUID, _ StepConfig) (map[string]int, error) {
	stockIndex, err := s.buildStockIndex(ctx)
	if err != nil {
		return nil, err
	}
	priceIndex, err := s.buildPriceIndex(ctx)
	if err != nil {
		return nil, err
	}

	data, name, err := s.source.Latest(ctx, feed.CategoryMaterial)
	if err != nil {
		return nil, sourceError(feed.CategoryMaterial, err)
	}
	r, err := flatfile.NewReaderFromBytes(data)
	if err != nil {
		return nil, err
	}
	if err := r.ParseHeader(); err != nil {
		return nil, fmt.Errorf("material extract %s: %w", name, err)
	}
	if missing := r.RequireColumns(colKey, colManufacturerCode, colEAN, colDescription); len(missing) > 0 {
		return nil, &flatfile.MissingColumnsError{File: name, Columns: missing}
	}

	counters := map[string]int{
		"total": 0, "kept": 0,
		"noStock": 0, "noPrice": 0, "lowStock": 0, "noValid": 0,
	}
	var records []*catalog.ProductRecord

	malformed, err := r.EachRow(func(row *flatfile.Row) {
		key := row.Get(colKey)
		if key == "" {
			return
		}
		counters["total"]++

		// Filters apply in fixed order, each with its own counter.
		stock, inStock := stockIndex[key]
		if !inStock {
			counters["noStock"]++
			return
		}
		prices, inPrice := priceIndex[key]
		if !inPrice {
			counters["noPrice"]++
			return
		}
		if stock < minStock {
			counters["lowStock"]++
			return
		}
		if !prices.list.IsPositive() && !prices.best.IsPositive() {
			counters["noValid"]++
			return
		}

		records = append(records, &catalog.ProductRecord{
			Key:              key,
			ManufacturerCode: row.Get(colManufacturerCode),
			ProductCode:      row.Get(colEAN),
			Description:      row.Get(colDescription),
			Stock:            stock,
			ListPrice:        prices.list,
			BestPrice:        prices.best,
			Surcharge:        prices.surcharge,
		})
		counters["kept"]++
	})
	if err != nil {
		return nil, err
	}
	if malformed > 0 {
		s.logger.Warn("Malformed material rows skipped",
			zap.String("file", name), zap.Int("count", malformed))
	}

	key := artifactKey(runID, stageMerged)
	if err := writeRecords(ctx, s.store, key, records); err != nil {
		return nil, err
	}
	s.logger.Info("Merged artifact written",
		zap.String("key", key),
		zap.Int("kept", counters["kept"]),
		zap.Int("total", counters["total"]))
	return counters, nil
}

// buildStockIndex maps product key to stock count; a later duplicate key
// overwrites the earlier one and malformed counts default to 0.
func (s *ParseMergeStep) buildStockIndex(ctx context.Context) (map[string]int, error) {
	data, name, err := s.source.Latest(ctx, feed.CategoryStock)
	if err != nil {
		return nil, sourceError(feed.CategoryStock, err)
	}
	r, err := flatfile.NewReaderFromBytes(data)
	if err != nil {
		return nil, err
	}
	if err := r.ParseHeader(); err != nil {
		return nil, fmt.Errorf("stock extract %s: %w", name, err)
	}
	if missing := r.RequireColumns(colKey, colStock); len(missing) > 0 {
		return nil, &flatfile.MissingColumnsError{File: name, Columns: missing}
	}

	index := make(map[string]int)
	if _, err := r.EachRow(func(row *flatfile.Row) {
		key := row.Get(colKey)
		if key == "" {
			return
		}
		qty, _ := flatfile.ParseInt(row.Get(colStock))
		index[key] = qty
	}); err != nil {
		return nil, err
	}
	return index, nil
}

// buildPriceIndex maps product key to its price triple, same overwrite
// policy as the stock index.
func (s *ParseMergeStep) buildPriceIndex(ctx context.Context) (map[string]priceInfo, error) {
	data, name, err := s.source.Latest(ctx, feed.CategoryPrice)
	if err != nil {
		return nil, sourceError(feed.CategoryPrice, err)
	}
	r, err := flatfile.NewReaderFromBytes(data)
	if err != nil {
		return nil, err
	}
	if err := r.ParseHeader(); err != nil {
		return nil, fmt.Errorf("price extract %s: %w", name, err)
	}
	if missing := r.RequireColumns(colKey, colListPrice, colBestPrice, colSurcharge); len(missing) > 0 {
		return nil, &flatfile.MissingColumnsError{File: name, Columns: missing}
	}

	index := make(map[string]priceInfo)
	if _, err := r.EachRow(func(row *flatfile.Row) {
		key := row.Get(colKey)
		if key == "" {
			return
		}
		info := priceInfo{}
		info.list, _ = flatfile.ParseDecimal(row.Get(colListPrice))
		info.best, _ = flatfile.ParseDecimal(row.Get(colBestPrice))
		info.surcharge, _ = flatfile.ParseDecimal(row.Get(colSurcharge))
		index[key] = info
	}); err != nil {
		return nil, err
	}
	return index, nil
}

// sourceError classifies a feed failure: an empty category is an
// upstream-missing fault, anything else propagates as-is.
func sourceError(category feed.Category, err error) error {
	var noFile *feed.ErrNoFile
	if errors.As(err, &noFile) {
		return fmt.Errorf("%w: %s extract", shared.ErrSourceMissing, category)
	}
	return fmt.Errorf("failed to fetch %s extract: %w", category, err)
}
