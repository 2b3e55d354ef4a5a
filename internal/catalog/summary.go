package catalog

import (
	"sheetpos/pos/internal/domain"

	"github.com/montanaflynn/stats"
	log "github.com/sirupsen/logrus"
)

// PriceSummary describes the spread of default prices in an import.
type PriceSummary struct {
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
}

func summarizePrices(products []domain.Product) PriceSummary {
	data := make(stats.Float64Data, 0, len(products))
	for _, p := range products {
		data = append(data, p.DefaultPrice)
	}

	var summary PriceSummary
	var err error
	if summary.Min, err = data.Min(); err != nil {
		log.Debugf("Skipping price summary: %v", err)
		return PriceSummary{}
	}
	summary.Max, _ = data.Max()
	summary.Mean, _ = data.Mean()
	summary.Median, _ = data.Median()

	summary.Mean, _ = stats.Round(summary.Mean, 2)
	return summary
}
