package quotations

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/packquote/packquote/internal/pricing"
	"github.com/packquote/packquote/internal/specsheet"
)

// parseSpecs normalises the specification of every item.
func parseSpecs(items []Item) ([]specsheet.Product, error) {
	products := make([]specsheet.Product, len(items))
	for i, it := range items {
		p, err := specsheet.Parse(json.RawMessage(it.Specifications))
		if err != nil {
			return nil, fmt.Errorf("%w: item %d: %v", ErrValidation, i+1, err)
		}
		products[i] = p
	}
	return products, nil
}

// quoteItems prices every item as one SKU of the order.
func quoteItems(products []specsheet.Product, items []Item, rates pricing.Rates) ([]pricing.SKUQuote, error) {
	quotes := make([]pricing.SKUQuote, len(items))
	for i, it := range items {
		quote, err := pricing.QuoteSKU(i, products[i], it.Quantity, len(items), rates)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i+1, err)
		}
		quotes[i] = quote
	}
	return quotes, nil
}

// costSnapshot is the result of pricing a whole quotation at write time.
type costSnapshot struct {
	total       json.RawMessage
	items       []json.RawMessage
	totalMeters float64
	lossMeters  float64
}

func snapshot(quotes []pricing.SKUQuote, rates pricing.Rates) (costSnapshot, error) {
	var out costSnapshot
	breakdowns := make([]pricing.SKUCostBreakdown, len(quotes))
	for i, q := range quotes {
		breakdowns[i] = q.Breakdown
		raw, err := json.Marshal(wholeYen(q.Breakdown))
		if err != nil {
			return costSnapshot{}, err
		}
		out.items = append(out.items, raw)
		out.totalMeters += q.Plan.TotalMeters
		out.lossMeters += q.Plan.LossMeters
	}
	raw, err := json.Marshal(pricing.SnapshotOf(pricing.Aggregate(breakdowns, rates)))
	if err != nil {
		return costSnapshot{}, err
	}
	out.total = raw
	out.totalMeters = roundMeters(out.totalMeters)
	out.lossMeters = roundMeters(out.lossMeters)
	return out, nil
}

func wholeYen(b pricing.SKUCostBreakdown) pricing.SKUCostBreakdown {
	b.MaterialCost = pricing.RoundYen(b.MaterialCost)
	b.PrintingCost = pricing.RoundYen(b.PrintingCost)
	b.LaminationCost = pricing.RoundYen(b.LaminationCost)
	b.SlitterCost = pricing.RoundYen(b.SlitterCost)
	b.PouchProcessCost = pricing.RoundYen(b.PouchProcessCost)
	b.Subtotal = pricing.RoundYen(b.Subtotal)
	b.Duty = pricing.RoundYen(b.Duty)
	b.WithDuty = pricing.RoundYen(b.WithDuty)
	b.TotalCost = pricing.RoundYen(b.TotalCost)
	return b
}

func roundMeters(m float64) float64 {
	return math.Round(m*100) / 100
}
