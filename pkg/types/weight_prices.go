package types

import (
	"strings"

	"github.com/shopspring/decimal"
)

// WeightPrices maps a weight option label (e.g. "500g") to its unit price.
// Stored as jsonb; replaces the free-text serialized mapping the storefront
// originally carried so malformed data is rejected at the storage boundary.
type WeightPrices map[string]decimal.Decimal

// Resolve returns the price for the given label. Labels are matched after
// trimming surrounding whitespace; the second return reports whether the
// label is priced.
func (w WeightPrices) Resolve(label string) (decimal.Decimal, bool) {
	if len(w) == 0 {
		return decimal.Zero, false
	}
	price, ok := w[strings.TrimSpace(label)]
	return price, ok
}

// Labels returns the priced weight labels in no particular order.
func (w WeightPrices) Labels() []string {
	labels := make([]string, 0, len(w))
	for label := range w {
		labels = append(labels, label)
	}
	return labels
}
