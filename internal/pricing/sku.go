package pricing

import (
	"fmt"
	"math"

	"github.com/packquote/packquote/internal/specsheet"
)

// SKUInput is everything the cost model needs for one SKU.
type SKUInput struct {
	Quantity      int
	Meters        float64 // secured + loss
	MaterialWidth float64 // raw roll width, mm
	Columns       int
	Kind          PouchKind
	PouchWidth    float64 // mm, ignored for roll film
	Layers        []specsheet.FilmLayer
	Matte         bool
}

// Components are the JPY cost components of one SKU before duty.
type Components struct {
	Material     float64
	Printing     float64
	Lamination   float64
	Slitter      float64
	PouchProcess float64
}

// Sum adds the components without intermediate rounding.
func (c Components) Sum() float64 {
	return c.Material + c.Printing + c.Lamination + c.Slitter + c.PouchProcess
}

// SKUCostBreakdown is the JPY cost of one SKU.
type SKUCostBreakdown struct {
	MaterialCost     float64 `json:"materialCost"`
	PrintingCost     float64 `json:"printingCost"`
	LaminationCost   float64 `json:"laminationCost"`
	SlitterCost      float64 `json:"slitterCost"`
	PouchProcessCost float64 `json:"pouchProcessCost"`
	Subtotal         float64 `json:"subtotal"`
	Duty             float64 `json:"duty"`
	WithDuty         float64 `json:"withDuty"`
	TotalCost        float64 `json:"totalCost"`
	UnitCost         float64 `json:"unitCost"`
	WeightKg         float64 `json:"weightKg"`
}

// Compose builds a breakdown from JPY components. The subtotal is the exact
// component sum and duty is derived from the duty-inclusive amount.
func Compose(c Components, dutyRate float64, quantity int, weightKg float64) SKUCostBreakdown {
	subtotal := c.Sum()
	withDuty := subtotal * (1 + dutyRate)
	b := SKUCostBreakdown{
		MaterialCost:     c.Material,
		PrintingCost:     c.Printing,
		LaminationCost:   c.Lamination,
		SlitterCost:      c.Slitter,
		PouchProcessCost: c.PouchProcess,
		Subtotal:         subtotal,
		Duty:             withDuty - subtotal,
		WithDuty:         withDuty,
		TotalCost:        withDuty,
		WeightKg:         weightKg,
	}
	if quantity > 0 {
		b.UnitCost = withDuty / float64(quantity)
	}
	return b
}

// CalculateSKU prices one SKU. All components are converted to JPY with
// rates.ExchangeRate before duty is applied.
func CalculateSKU(in SKUInput, rates Rates) (SKUCostBreakdown, error) {
	if in.Quantity <= 0 {
		return SKUCostBreakdown{}, ErrInvalidQuantity
	}
	layers := in.Layers
	if len(layers) == 0 {
		layers = defaultLayers
	}
	widthM := in.MaterialWidth / 1000

	var materialKRW, weight float64
	for _, layer := range layers {
		m, ok := rates.Material(layer.MaterialID)
		if !ok {
			return SKUCostBreakdown{}, fmt.Errorf("%w: %s", ErrUnknownMaterial, layer.MaterialID)
		}
		kg := layer.Thickness / 1000 * widthM * in.Meters * m.Density
		weight += kg
		materialKRW += kg * m.UnitPrice
	}

	printingKRW := 1 * in.Meters * rates.PrintingPerM2
	if in.Matte {
		printingKRW += widthM * rates.MattePerM * in.Meters
	}

	laminations := math.Max(0, float64(len(layers)-1))
	laminationKRW := widthM * in.Meters * rates.LaminationPerM2 * laminations
	slitterKRW := math.Max(rates.SlitterMin, in.Meters*rates.SlitterPerM)

	var pouchKRW float64
	if in.Kind != KindRollFilm {
		tariff := rates.pouchTariff(in.Kind)
		pouchKRW = math.Max(in.PouchWidth/10*tariff.Coefficient*float64(in.Quantity), tariff.Minimum)
	}

	c := Components{
		Material:     rates.ToJPY(materialKRW),
		Printing:     rates.ToJPY(printingKRW),
		Lamination:   rates.ToJPY(laminationKRW),
		Slitter:      rates.ToJPY(slitterKRW),
		PouchProcess: rates.ToJPY(pouchKRW),
	}
	return Compose(c, rates.DutyRate, in.Quantity, weight), nil
}

// SKUQuote is the plan and cost of one SKU.
type SKUQuote struct {
	Index     int              `json:"skuIndex"`
	Quantity  int              `json:"quantity"`
	Plan      FilmPlan         `json:"plan"`
	Breakdown SKUCostBreakdown `json:"breakdown"`
}

// QuoteSKU plans and prices one SKU of an order of skuCount SKUs.
func QuoteSKU(index int, product specsheet.Product, quantity, skuCount int, rates Rates) (SKUQuote, error) {
	plan, err := PlanFilm(product, quantity, skuCount, rates)
	if err != nil {
		return SKUQuote{}, err
	}
	in := SKUInput{
		Quantity:      quantity,
		Meters:        plan.TotalMeters,
		MaterialWidth: plan.MaterialWidth,
		Columns:       plan.Columns,
		Kind:          plan.Kind,
		PouchWidth:    product.Dimensions.Width,
		Layers:        AdjustLayers(product.FilmLayers, product.ThicknessSelection),
		Matte:         product.Finish == specsheet.FinishMatte || product.PrintingType == "matte",
	}
	breakdown, err := CalculateSKU(in, rates)
	if err != nil {
		return SKUQuote{}, err
	}
	return SKUQuote{Index: index, Quantity: quantity, Plan: plan, Breakdown: breakdown}, nil
}
