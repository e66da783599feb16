package commission

import "sort"

// DefaultRatePercent is the platform-wide fallback commission rate. Deployments
// override it through the calculator; suppliers override it per account.
const DefaultRatePercent = 10

// Calculator computes the platform's cut of an order. It is pure: results are
// computed once at order creation and persisted, never re-derived from live
// rates afterwards.
type Calculator struct {
	defaultRate int
}

func NewCalculator(defaultRatePercent int) Calculator {
	if defaultRatePercent <= 0 {
		defaultRatePercent = DefaultRatePercent
	}
	return Calculator{defaultRate: defaultRatePercent}
}

// RateFor resolves a supplier's configured rate, falling back to the platform
// default when the supplier has none (<= 0).
func (c Calculator) RateFor(supplierRate int) int {
	if supplierRate <= 0 {
		return c.defaultRate
	}
	return supplierRate
}

// Split divides an amount into the platform commission and the supplier
// earning for a given rate.
func Split(amount, ratePercent int) (commissionAmount, supplierEarning int) {
	commissionAmount = amount * ratePercent / 100
	supplierEarning = amount - commissionAmount
	return commissionAmount, supplierEarning
}

// SupplierShare is one supplier's slice of an order.
type SupplierShare struct {
	SupplierID  string `json:"supplier_id"`
	RatePercent int    `json:"rate_percent"`
	Subtotal    int    `json:"subtotal"`
	Commission  int    `json:"commission"`
	Earning     int    `json:"earning"`
}

// SplitOrder computes commission per supplier subtotal using each supplier's
// configured rate and returns the order-level commission plus the breakdown.
// Shares are ordered by supplier id so the result is deterministic.
func (c Calculator) SplitOrder(subtotals map[string]int, rateBySupplier map[string]int) (int, []SupplierShare) {
	supplierIDs := make([]string, 0, len(subtotals))
	for id := range subtotals {
		supplierIDs = append(supplierIDs, id)
	}
	sort.Strings(supplierIDs)

	var total int
	shares := make([]SupplierShare, 0, len(supplierIDs))
	for _, id := range supplierIDs {
		rate := c.RateFor(rateBySupplier[id])
		commissionAmount, earning := Split(subtotals[id], rate)
		total += commissionAmount
		shares = append(shares, SupplierShare{
			SupplierID:  id,
			RatePercent: rate,
			Subtotal:    subtotals[id],
			Commission:  commissionAmount,
			Earning:     earning,
		})
	}
	return total, shares
}
