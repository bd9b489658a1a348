package pricing

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// RoundUpToHundred rounds a yen amount up to the next multiple of 100.
func RoundUpToHundred(amount decimal.Decimal) decimal.Decimal {
	return amount.Div(hundred).Ceil().Mul(hundred)
}

// RoundUnitPrice rounds a unit price to the sen, the precision unit prices
// are stored with.
func RoundUnitPrice(unitPrice float64) float64 {
	return decimal.NewFromFloat(unitPrice).Round(2).InexactFloat64()
}

// LineTotal is the canonical item total: the sen-rounded unit price times
// quantity, rounded up to 100 yen.
func LineTotal(unitPrice float64, quantity int) float64 {
	total := decimal.NewFromFloat(unitPrice).Round(2).Mul(decimal.NewFromInt(int64(quantity)))
	return RoundUpToHundred(total).InexactFloat64()
}

// Totals are the stored quotation amounts.
type Totals struct {
	Subtotal float64 `json:"subtotal"`
	Tax      float64 `json:"tax"`
	Total    float64 `json:"total"`
}

// QuotationTotals sums item totals and adds consumption tax rounded up to
// the yen, so Total is always Subtotal + Tax.
func QuotationTotals(lineTotals []float64, taxRate float64) Totals {
	subtotal := decimal.Zero
	for _, lt := range lineTotals {
		subtotal = subtotal.Add(decimal.NewFromFloat(lt))
	}
	tax := subtotal.Mul(decimal.NewFromFloat(taxRate)).Ceil()
	return Totals{
		Subtotal: subtotal.InexactFloat64(),
		Tax:      tax.InexactFloat64(),
		Total:    subtotal.Add(tax).InexactFloat64(),
	}
}

// RoundYen rounds to whole yen, half away from zero.
func RoundYen(amount float64) float64 {
	return decimal.NewFromFloat(amount).Round(0).InexactFloat64()
}
