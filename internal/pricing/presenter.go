package pricing

// Margin is the markup applied on top of a cost.
type Margin struct {
	Cost       float64 `json:"cost"`
	SellPrice  float64 `json:"sellPrice"`
	Margin     float64 `json:"margin"`
	MarginRate float64 `json:"marginRate"`
}

// ApplyMargin marks cost up by rate. A zero cost reports a zero rate.
func ApplyMargin(cost, rate float64) Margin {
	sell := cost * (1 + rate)
	m := Margin{Cost: cost, SellPrice: sell, Margin: sell - cost}
	if cost != 0 {
		m.MarginRate = m.Margin / cost
	}
	return m
}

// Profit compares the quoted subtotal with the computed cost.
type Profit struct {
	QuotedSubtotal float64 `json:"quotedSubtotal"`
	Cost           float64 `json:"cost"`
	Profit         float64 `json:"profit"`
	ProfitMargin   float64 `json:"profitMargin"`
}

// ProfitAgainst reports profit and its percentage of the quoted subtotal.
func ProfitAgainst(quotedSubtotal, cost float64) Profit {
	p := Profit{QuotedSubtotal: quotedSubtotal, Cost: cost, Profit: quotedSubtotal - cost}
	if quotedSubtotal != 0 {
		p.ProfitMargin = p.Profit / quotedSubtotal * 100
	}
	return p
}

// Amount is a whole-yen value paired with its display string.
type Amount struct {
	Value     float64 `json:"value"`
	Formatted string  `json:"formatted"`
}

func yen(v float64) Amount {
	r := RoundYen(v)
	return Amount{Value: r, Formatted: FormatYen(r)}
}

// CostSummary is the admin-facing order breakdown.
type CostSummary struct {
	Materials  Amount `json:"materials"`
	Processing Amount `json:"processing"`
	Printing   Amount `json:"printing"`
	Duty       Amount `json:"duty"`
	Delivery   Amount `json:"delivery"`
	Subtotal   Amount `json:"subtotal"`
	Total      Amount `json:"total"`
}

// SKUView is the admin-facing breakdown of one SKU.
type SKUView struct {
	Index        int      `json:"skuIndex"`
	Quantity     int      `json:"quantity"`
	Plan         FilmPlan `json:"plan"`
	Material     Amount   `json:"material"`
	Printing     Amount   `json:"printing"`
	Lamination   Amount   `json:"lamination"`
	Slitter      Amount   `json:"slitter"`
	PouchProcess Amount   `json:"pouchProcess"`
	Subtotal     Amount   `json:"subtotal"`
	Duty         Amount   `json:"duty"`
	WithDuty     Amount   `json:"withDuty"`
	UnitCost     float64  `json:"unitCost"`
	WeightKg     float64  `json:"weightKg"`
}

// CostView is everything the admin screen shows about cost and margin.
type CostView struct {
	Summary         CostSummary `json:"summary"`
	SKUs            []SKUView   `json:"skus"`
	DeliveryBoxes   int         `json:"deliveryBoxes"`
	TotalWeightKg   float64     `json:"totalWeightKg"`
	ExchangeRate    float64     `json:"exchangeRate"`
	DutyRate        float64     `json:"dutyRate"`
	SuggestedPrice  Margin      `json:"suggestedPrice"`
	Profit          Profit      `json:"profit"`
	FormattedProfit string      `json:"formattedProfit"`
	FormattedMargin string      `json:"formattedProfitMargin"`
}

// Present builds the admin view for an order. It performs no authorization.
func Present(quotes []SKUQuote, rates Rates, quotedSubtotal float64) CostView {
	breakdowns := make([]SKUCostBreakdown, 0, len(quotes))
	skus := make([]SKUView, 0, len(quotes))
	for _, q := range quotes {
		b := q.Breakdown
		breakdowns = append(breakdowns, b)
		skus = append(skus, SKUView{
			Index:        q.Index,
			Quantity:     q.Quantity,
			Plan:         q.Plan,
			Material:     yen(b.MaterialCost),
			Printing:     yen(b.PrintingCost),
			Lamination:   yen(b.LaminationCost),
			Slitter:      yen(b.SlitterCost),
			PouchProcess: yen(b.PouchProcessCost),
			Subtotal:     yen(b.Subtotal),
			Duty:         yen(b.Duty),
			WithDuty:     yen(b.WithDuty),
			UnitCost:     b.UnitCost,
			WeightKg:     b.WeightKg,
		})
	}

	order := Aggregate(breakdowns, rates)
	profit := ProfitAgainst(quotedSubtotal, order.GrandTotal)
	return CostView{
		Summary: CostSummary{
			Materials:  yen(order.Materials),
			Processing: yen(order.Processing),
			Printing:   yen(order.Printing),
			Duty:       yen(order.Duty),
			Delivery:   yen(order.Delivery.CostJPY),
			Subtotal:   yen(order.Subtotal),
			Total:      yen(order.GrandTotal),
		},
		SKUs:            skus,
		DeliveryBoxes:   order.Delivery.Boxes,
		TotalWeightKg:   order.Delivery.TotalWeight,
		ExchangeRate:    rates.ExchangeRate,
		DutyRate:        rates.DutyRate,
		SuggestedPrice:  ApplyMargin(order.GrandTotal, rates.MarginRate),
		Profit:          profit,
		FormattedProfit: FormatYen(profit.Profit),
		FormattedMargin: FormatPercent(profit.ProfitMargin / 100),
	}
}

// Snapshot is the whole-yen cost record stored with a quotation.
type Snapshot struct {
	Materials  float64 `json:"materials"`
	Processing float64 `json:"processing"`
	Printing   float64 `json:"printing"`
	Duty       float64 `json:"duty"`
	Delivery   float64 `json:"delivery"`
	Total      float64 `json:"total"`
}

// SnapshotOf rounds the order cost to whole yen for storage.
func SnapshotOf(order OrderCost) Snapshot {
	return Snapshot{
		Materials:  RoundYen(order.Materials),
		Processing: RoundYen(order.Processing),
		Printing:   RoundYen(order.Printing),
		Duty:       RoundYen(order.Duty),
		Delivery:   RoundYen(order.Delivery.CostJPY),
		Total:      RoundYen(order.GrandTotal),
	}
}
