package syncer

import (
	"strings"

	"github.com/shopspring/decimal"
)

// NormalizePrice renders a price as a fixed 2-decimal string so that
// "199.9", "199.90" and " 199.90 " all compare equal. Unparseable input is
// returned trimmed, so garbage still diffs against real prices.
func NormalizePrice(s string) string {
	s = strings.TrimSpace(s)
	d, err := decimal.NewFromString(s)
	if err != nil {
		return s
	}
	return d.StringFixed(2)
}

// PricesEqual compares two price strings after normalization.
func PricesEqual(a, b string) bool {
	return NormalizePrice(a) == NormalizePrice(b)
}
