package sync

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strconv"

	"github.com/catalogsync/backend/internal/domain/catalog"
	"github.com/catalogsync/backend/internal/domain/pricing"
	"github.com/catalogsync/backend/internal/domain/shared"
	"github.com/catalogsync/backend/internal/infrastructure/flatfile"
	"github.com/catalogsync/backend/internal/infrastructure/storage"
	"github.com/google/uuid"
)

// Pipeline stage names. Each stage owns exactly one intermediate
// artifact below the run's key prefix, so concurrent runs never collide.
const (
	stageMerged  = "merged"
	stageMapped  = "mapped"
	stagePriced  = "priced"
	stageCatalog = "catalog"
)

const artifactContentType = "text/tab-separated-values"

// artifactKey returns the run-scoped key of a stage's intermediate table.
func artifactKey(runID uuid.UUID, stage string) string {
	return path.Join("runs", runID.String(), stage+".tsv")
}

// exportKey returns the run-scoped key of a human-facing export file.
func exportKey(runID uuid.UUID, name string) string {
	return path.Join("runs", runID.String(), "exports", name)
}

// artifactColumns is the stable column set of the intermediate table.
var artifactColumns = []string{
	"key",
	"manufacturer_code",
	"product_code",
	"description",
	"stock",
	"list_price",
	"best_price",
	"surcharge",
	"final_price",
	"final_price_cents",
	"list_price_with_fee_cents",
}

// writeRecords persists the full intermediate table for a stage,
// replacing any prior artifact at that key.
func writeRecords(ctx context.Context, store storage.ObjectStore, key string, records []*catalog.ProductRecord) error {
	var buf bytes.Buffer
	w := flatfile.NewWriter(&buf)

	if err := w.Write(artifactColumns); err != nil {
		return fmt.Errorf("failed to write artifact header: %w", err)
	}
	for _, rec := range records {
		listWithFee := ""
		if rec.HasListWithFee {
			listWithFee = strconv.FormatInt(int64(rec.ListPriceWithFee), 10)
		}
		row := []string{
			rec.Key,
			rec.ManufacturerCode,
			rec.ProductCode,
			rec.Description,
			strconv.Itoa(rec.Stock),
			rec.ListPrice.String(),
			rec.BestPrice.String(),
			rec.Surcharge.String(),
			rec.FinalPriceDisplay,
			strconv.FormatInt(int64(rec.FinalPriceCents), 10),
			listWithFee,
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write artifact row: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to flush artifact: %w", err)
	}

	return store.Upload(ctx, key, buf.Bytes(), artifactContentType)
}

// readRecords loads the full intermediate table written by an upstream
// stage. A missing artifact means the steps ran out of order.
func readRecords(ctx context.Context, store storage.ObjectStore, key string) ([]*catalog.ProductRecord, error) {
	data, err := store.Download(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, fmt.Errorf("%w: %s", shared.ErrArtifactMissing, key)
		}
		return nil, fmt.Errorf("failed to download artifact %s: %w", key, err)
	}

	r, err := flatfile.NewReaderFromBytes(data)
	if err != nil {
		return nil, err
	}
	if err := r.ParseHeader(); err != nil {
		return nil, fmt.Errorf("artifact %s: %w", key, err)
	}
	if missing := r.RequireColumns(artifactColumns...); len(missing) > 0 {
		return nil, &flatfile.MissingColumnsError{File: key, Columns: missing}
	}

	var records []*catalog.ProductRecord
	if _, err := r.EachRow(func(row *flatfile.Row) {
		rec := &catalog.ProductRecord{
			Key:               row.Get("key"),
			ManufacturerCode:  row.Get("manufacturer_code"),
			ProductCode:       row.Get("product_code"),
			Description:       row.Get("description"),
			FinalPriceDisplay: row.Get("final_price"),
		}
		rec.Stock, _ = flatfile.ParseInt(row.Get("stock"))
		rec.ListPrice, _ = flatfile.ParseDecimal(row.Get("list_price"))
		rec.BestPrice, _ = flatfile.ParseDecimal(row.Get("best_price"))
		rec.Surcharge, _ = flatfile.ParseDecimal(row.Get("surcharge"))

		if cents, err := strconv.ParseInt(row.Get("final_price_cents"), 10, 64); err == nil {
			rec.FinalPriceCents = pricing.Cents(cents)
		}
		if raw := row.Get("list_price_with_fee_cents"); raw != "" {
			if cents, err := strconv.ParseInt(raw, 10, 64); err == nil {
				rec.ListPriceWithFee = pricing.Cents(cents)
				rec.HasListWithFee = true
			}
		}
		records = append(records, rec)
	}); err != nil {
		return nil, err
	}
	return records, nil
}
