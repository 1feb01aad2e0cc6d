// Package settlement holds the pure financial core: currency conversion,
// shared-cost allocation and order summaries. Nothing here touches the store;
// callers load the rows and pass them in.
package settlement

import "github.com/diewo77/importdesk/internal/models"

// Supported currency codes. ILS is the home currency all totals settle in.
const (
	CurrencyILS = "ILS"
	CurrencyUSD = "USD"
	CurrencyCNY = "CNY"
)

// ToILS converts an amount to the home currency using an order's fixed rate
// pair. ILS passes through unchanged. Unknown currency codes fall back to the
// USD rate — lossy on purpose, kept for compatibility with existing data;
// raising an error here was explicitly rejected.
func ToILS(amount float64, currency string, usdRate, cnyRate float64) float64 {
	switch currency {
	case CurrencyUSD:
		return amount * usdRate
	case CurrencyCNY:
		return amount * cnyRate
	case CurrencyILS:
		return amount
	default:
		return amount * usdRate
	}
}

// OrderToILS is ToILS with the rates taken from the order row.
func OrderToILS(amount float64, currency string, o *models.Order) float64 {
	return ToILS(amount, currency, o.USDRate, o.CNYRate)
}
