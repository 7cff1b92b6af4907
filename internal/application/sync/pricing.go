package sync

import (
	"context"

	"github.com/catalogsync/backend/internal/domain/pipeline"
	"github.com/catalogsync/backend/internal/domain/pricing"
	"github.com/catalogsync/backend/internal/infrastructure/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PricingStep computes the final sale price and the compare-at price for
// every row of the mapped table. The computation is pure integer-cent
// arithmetic, so re-running over an unchanged table with unchanged fees
// produces byte-identical output.
type PricingStep struct {
	store  storage.ObjectStore
	logger *zap.Logger
}

// NewPricingStep creates the pricing step
func NewPricingStep(store storage.ObjectStore, logger *zap.Logger) *PricingStep {
	return &PricingStep{store: store, logger: logger}
}

// Name returns the step name
func (s *PricingStep) Name() pipeline.StepName { return pipeline.StepPricing }

// Execute prices each row and writes the priced artifact.
func (s *PricingStep) Execute(ctx context.Context, runID uuid.UUID, cfg StepConfig) (map[string]int, error) {
	records, err := readRecords(ctx, s.store, artifactKey(runID, stageMapped))
	if err != nil {
		return nil, err
	}

	fees := cfg.FeeConfig()
	counters := map[string]int{"priced": 0, "noBase": 0}

	for _, rec := range records {
		list := pricing.CentsFromDecimal(rec.ListPrice)
		best := pricing.CentsFromDecimal(rec.BestPrice)
		surcharge := pricing.CentsFromDecimal(rec.Surcharge)

		base := pricing.BasePrice(list, best, surcharge)
		if base > 0 {
			rec.FinalPriceCents = pricing.SalePrice(base, fees)
			rec.FinalPriceDisplay = rec.FinalPriceCents.Display()
			counters["priced"]++
		} else {
			rec.FinalPriceCents = 0
			rec.FinalPriceDisplay = ""
			counters["noBase"]++
		}

		rec.ListPriceWithFee, rec.HasListWithFee =
			pricing.ListPriceWithFee(list, best, rec.FinalPriceCents, fees)
	}

	if err := writeRecords(ctx, s.store, artifactKey(runID, stagePriced), records); err != nil {
		return nil, err
	}
	s.logger.Info("Priced artifact written",
		zap.String("run_id", runID.String()),
		zap.Int("priced", counters["priced"]),
		zap.Int("no_base", counters["noBase"]))
	return counters, nil
}
