package sync

import (
	"context"
	"errors"
	"fmt"

	"github.com/catalogsync/backend/internal/domain/pipeline"
	"github.com/catalogsync/backend/internal/infrastructure/feed"
	"github.com/catalogsync/backend/internal/infrastructure/flatfile"
	"github.com/catalogsync/backend/internal/infrastructure/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EANMappingStep fills empty product codes from the external
// manufacturer-code to EAN mapping extract. Rows are never dropped and
// an existing non-empty code is never overwritten.
type EANMappingStep struct {
	source feed.Source
	store  storage.ObjectStore
	logger *zap.Logger
}

// NewEANMappingStep creates the ean_mapping step
func NewEANMappingStep(source feed.Source, store storage.ObjectStore, logger *zap.Logger) *EANMappingStep {
	return &EANMappingStep{source: source, store: store, logger: logger}
}

// Name returns the step name
func (s *EANMappingStep) Name() pipeline.StepName { return pipeline.StepEANMapping }

// Execute loads the merged table, applies the mapping, and writes the
// full table back as the mapped artifact.
func (s *EANMappingStep) Execute(ctx context.Context, runID uuid.UUID, _ StepConfig) (map[string]int, error) {
	records, err := readRecords(ctx, s.store, artifactKey(runID, stageMerged))
	if err != nil {
		return nil, err
	}

	mapping, err := s.loadMapping(ctx)
	if err != nil {
		return nil, err
	}

	counters := map[string]int{"mapped": 0, "missing": 0}
	for _, rec := range records {
		if rec.ProductCode != "" || rec.ManufacturerCode == "" {
			continue
		}
		if code, ok := mapping[rec.ManufacturerCode]; ok && code != "" {
			rec.ProductCode = code
			counters["mapped"]++
		} else {
			counters["missing"]++
		}
	}

	if err := writeRecords(ctx, s.store, artifactKey(runID, stageMapped), records); err != nil {
		return nil, err
	}
	return counters, nil
}

// loadMapping reads the newest mapping extract into a manufacturer-code
// to EAN table. The extract is optional: an empty category yields an
// empty mapping, not a fault.
func (s *EANMappingStep) loadMapping(ctx context.Context) (map[string]string, error) {
	data, name, err := s.source.Latest(ctx, feed.CategoryMapping)
	if err != nil {
		var noFile *feed.ErrNoFile
		if errors.As(err, &noFile) {
			s.logger.Info("No mapping extract available, leaving codes as-is")
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("failed to fetch mapping extract: %w", err)
	}

	r, err := flatfile.NewReaderFromBytes(data)
	if err != nil {
		return nil, err
	}
	if err := r.ParseHeader(); err != nil {
		return nil, fmt.Errorf("mapping extract %s: %w", name, err)
	}
	if missing := r.RequireColumns(colManufacturerCode, colEAN); len(missing) > 0 {
		return nil, &flatfile.MissingColumnsError{File: name, Columns: missing}
	}

	mapping := make(map[string]string)
	if _, err := r.EachRow(func(row *flatfile.Row) {
		mfg := row.Get(colManufacturerCode)
		if mfg == "" {
			return
		}
		mapping[mfg] = row.Get(colEAN)
	}); err != nil {
		return nil, err
	}
	return mapping, nil
}
