package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/packquote/packquote/internal/specsheet"
)

func TestApplyMargin(t *testing.T) {
	m := ApplyMargin(105000, 0.5)
	assert.InDelta(t, 157500.0, m.SellPrice, 1e-9)
	assert.InDelta(t, m.SellPrice-m.Cost, m.Margin, 1e-9)
	assert.InDelta(t, m.Margin/m.Cost, m.MarginRate, 1e-9)

	zero := ApplyMargin(0, 0.5)
	assert.Equal(t, 0.0, zero.MarginRate)
}

func TestProfitAgainst(t *testing.T) {
	p := ProfitAgainst(200000, 150000)
	assert.Equal(t, 50000.0, p.Profit)
	assert.Equal(t, 25.0, p.ProfitMargin)

	assert.Equal(t, 0.0, ProfitAgainst(0, 100).ProfitMargin)
}

func TestRounding(t *testing.T) {
	assert.True(t, RoundUpToHundred(decimal.NewFromInt(100)).Equal(decimal.NewFromInt(100)))
	assert.True(t, RoundUpToHundred(decimal.NewFromInt(101)).Equal(decimal.NewFromInt(200)))
	assert.True(t, RoundUpToHundred(decimal.Zero).IsZero())

	assert.Equal(t, 12500.0, LineTotal(12.5, 1000))
	assert.Equal(t, 12400.0, LineTotal(12.34, 1000))
	assert.Equal(t, 100.0, LineTotal(0.1, 3))

	assert.Equal(t, 0.0, RoundUnitPrice(0.001))
	assert.Equal(t, 12.35, RoundUnitPrice(12.345))
	assert.Equal(t, 0.0, LineTotal(0.001, 100000))
	assert.Equal(t, 1000.0, LineTotal(0.005, 100000))

	totals := QuotationTotals([]float64{12400, 5000}, 0.1)
	assert.Equal(t, Totals{Subtotal: 17400, Tax: 1740, Total: 19140}, totals)

	ceil := QuotationTotals([]float64{1234}, 0.1)
	assert.Equal(t, 124.0, ceil.Tax)
	assert.Equal(t, ceil.Subtotal+ceil.Tax, ceil.Total)
}

func TestFormatYen(t *testing.T) {
	assert.Equal(t, "¥157,500", FormatYen(157500))
	assert.Equal(t, "¥100", FormatYen(99.6))
	assert.Equal(t, "-¥1,200", FormatYen(-1200))
	assert.Equal(t, "¥0", FormatYen(0))
}

func TestPresent(t *testing.T) {
	rates := DefaultRates()
	product := specsheet.Product{
		Family:      specsheet.FamilyPouch,
		ProductType: "flat_3_side",
		Dimensions:  specsheet.Dimensions{Width: 100, Height: 150},
	}
	first, err := QuoteSKU(0, product, 5000, 2, rates)
	require.NoError(t, err)
	second, err := QuoteSKU(1, product, 3000, 2, rates)
	require.NoError(t, err)

	view := Present([]SKUQuote{first, second}, rates, 300000)

	require.Len(t, view.SKUs, 2)
	order := Aggregate([]SKUCostBreakdown{first.Breakdown, second.Breakdown}, rates)
	assert.Equal(t, RoundYen(order.GrandTotal), view.Summary.Total.Value)
	assert.Equal(t, FormatYen(order.GrandTotal), view.Summary.Total.Formatted)
	assert.Equal(t, order.Delivery.Boxes, view.DeliveryBoxes)
	assert.InDelta(t, 300000-order.GrandTotal, view.Profit.Profit, 1e-9)
	assert.InDelta(t, view.SuggestedPrice.SellPrice-view.SuggestedPrice.Cost, view.SuggestedPrice.Margin, 1e-9)
	assert.Equal(t, 0.12, view.ExchangeRate)

	snap := SnapshotOf(order)
	assert.Equal(t, RoundYen(order.Materials), snap.Materials)
	assert.Equal(t, RoundYen(order.GrandTotal), snap.Total)
}

func TestRatesClone(t *testing.T) {
	base := DefaultRates()
	clone := base.Clone()
	clone.Materials["PET"] = Material{UnitPrice: 1, Density: 1}
	assert.Equal(t, 2800.0, base.Materials["PET"].UnitPrice)

	pe, ok := base.Material("PE")
	require.True(t, ok)
	assert.Equal(t, base.Materials["LLDPE"], pe)
}
