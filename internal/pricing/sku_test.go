package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/packquote/packquote/internal/specsheet"
)

func TestComposeWorkedExample(t *testing.T) {
	b := Compose(Components{
		Material:     50000,
		Printing:     20000,
		Lamination:   10000,
		Slitter:      5000,
		PouchProcess: 15000,
	}, 0.05, 1000, 0)

	assert.Equal(t, 100000.0, b.Subtotal)
	assert.InDelta(t, 105000.0, b.WithDuty, 1e-6)
	assert.InDelta(t, 5000.0, b.Duty, 1e-6)
	assert.InDelta(t, 105.0, b.UnitCost, 1e-9)

	sell := ApplyMargin(b.WithDuty, 0.5)
	assert.InDelta(t, 157500.0, sell.SellPrice, 1e-6)
}

func TestCalculateSKUStandPouch(t *testing.T) {
	rates := DefaultRates()
	in := SKUInput{
		Quantity:      1000,
		Meters:        900,
		MaterialWidth: 590,
		Columns:       1,
		Kind:          KindStand,
		PouchWidth:    130,
	}
	b, err := CalculateSKU(in, rates)
	require.NoError(t, err)

	assert.InDelta(t, 25557.19992, b.MaterialCost, 0.01)
	assert.InDelta(t, 51300.0, b.PrintingCost, 0.01)
	assert.InDelta(t, 9558.0, b.LaminationCost, 0.01)
	assert.InDelta(t, 3600.0, b.SlitterCost, 0.01)
	assert.InDelta(t, 30000.0, b.PouchProcessCost, 0.01)
	assert.InDelta(t, 58.07547, b.WeightKg, 0.0001)

	sum := b.MaterialCost + b.PrintingCost + b.LaminationCost + b.SlitterCost + b.PouchProcessCost
	assert.Equal(t, sum, b.Subtotal)
	assert.InDelta(t, b.Subtotal*(1+rates.DutyRate), b.WithDuty, 1e-9)
	assert.InDelta(t, b.WithDuty-b.Subtotal, b.Duty, 1e-9)
}

func TestCalculateSKUMatteAndRollFilm(t *testing.T) {
	rates := DefaultRates()
	in := SKUInput{Quantity: 500, Meters: 900, MaterialWidth: 760, Kind: KindRollFilm, Matte: true}
	b, err := CalculateSKU(in, rates)
	require.NoError(t, err)

	// 900 m × 475 + 0.76 m × 20 × 900 m, converted at 0.12.
	assert.InDelta(t, (427500.0+13680.0)*0.12, b.PrintingCost, 0.01)
	assert.Equal(t, 0.0, b.PouchProcessCost)
}

func TestCalculateSKUDutyRateChange(t *testing.T) {
	rates := DefaultRates()
	in := SKUInput{Quantity: 100, Meters: 900, MaterialWidth: 590, Kind: KindFlat, PouchWidth: 100}
	before, err := CalculateSKU(in, rates)
	require.NoError(t, err)

	rates.DutyRate = 0.08
	after, err := CalculateSKU(in, rates)
	require.NoError(t, err)

	assert.Equal(t, before.Subtotal, after.Subtotal)
	assert.InDelta(t, after.Subtotal*1.08, after.WithDuty, 1e-9)
	assert.Greater(t, after.Duty, before.Duty)
}

func TestCalculateSKUErrors(t *testing.T) {
	_, err := CalculateSKU(SKUInput{Quantity: 0, Meters: 900, MaterialWidth: 590}, DefaultRates())
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = CalculateSKU(SKUInput{Quantity: -5, Meters: 900, MaterialWidth: 590}, DefaultRates())
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = CalculateSKU(SKUInput{
		Quantity:      10,
		Meters:        900,
		MaterialWidth: 590,
		Layers:        []specsheet.FilmLayer{{MaterialID: "KRAFT", Thickness: 50}},
	}, DefaultRates())
	assert.ErrorIs(t, err, ErrUnknownMaterial)
}

func TestPouchProcessingMinimumAndZipperUpgrade(t *testing.T) {
	rates := DefaultRates()
	product := specsheet.Product{
		Family:      specsheet.FamilyPouch,
		ProductType: "stand_up",
		Dimensions:  specsheet.Dimensions{Width: 200, Height: 250, Depth: 80},
		Options:     []string{"zipper-yes"},
	}
	quote, err := QuoteSKU(0, product, 200000, 1, rates)
	require.NoError(t, err)

	assert.Equal(t, KindZipperStand, quote.Plan.Kind)
	// 20 cm × 1.7 × 200,000 pouches exceeds the 280,000 minimum.
	assert.InDelta(t, 20*1.7*200000*0.12, quote.Breakdown.PouchProcessCost, 0.01)

	small, err := QuoteSKU(0, product, 100, 1, rates)
	require.NoError(t, err)
	assert.InDelta(t, 280000*0.12, small.Breakdown.PouchProcessCost, 0.01)
}
