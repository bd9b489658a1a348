package quotations

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/packquote/packquote/internal/pricing"
)

// computeTotals sets every item total and the quotation amounts from unit
// prices and quantities. It is the only place stored amounts are derived.
func computeTotals(q *Quotation, taxRate float64) {
	lines := make([]float64, len(q.Items))
	for i := range q.Items {
		q.Items[i].UnitPrice = pricing.RoundUnitPrice(q.Items[i].UnitPrice)
		q.Items[i].TotalPrice = pricing.LineTotal(q.Items[i].UnitPrice, q.Items[i].Quantity)
		lines[i] = q.Items[i].TotalPrice
	}
	totals := pricing.QuotationTotals(lines, taxRate)
	q.SubtotalAmount = totals.Subtotal
	q.TaxAmount = totals.Tax
	q.TotalAmount = totals.Total
	q.SKUCount = len(q.Items)
}

// reround repairs stored amounts that break the rounding rules and reports
// whether anything changed. Tax is kept unless the subtotal moves, in which
// case it is recomputed with taxRate.
func reround(q *Quotation, taxRate float64) bool {
	changed := false
	lines := make([]float64, len(q.Items))
	for i := range q.Items {
		want := pricing.LineTotal(q.Items[i].UnitPrice, q.Items[i].Quantity)
		if q.Items[i].TotalPrice != want {
			q.Items[i].TotalPrice = want
			changed = true
		}
		lines[i] = want
	}

	totals := pricing.QuotationTotals(lines, taxRate)
	if q.SubtotalAmount != totals.Subtotal {
		q.SubtotalAmount = totals.Subtotal
		q.TaxAmount = totals.Tax
		changed = true
	}

	total := decimal.NewFromFloat(q.SubtotalAmount).Add(decimal.NewFromFloat(q.TaxAmount)).InexactFloat64()
	if q.TotalAmount != total {
		q.TotalAmount = total
		changed = true
	}
	if q.SKUCount != len(q.Items) {
		q.SKUCount = len(q.Items)
		changed = true
	}
	return changed
}

func formatNumber(year, seq int) string {
	return fmt.Sprintf("QT-%d-%04d", year, seq)
}
