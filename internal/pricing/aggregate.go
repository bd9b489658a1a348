package pricing

import "math"

// Delivery is the shipping estimate for an order.
type Delivery struct {
	TotalWeight float64 `json:"totalWeight"`
	Boxes       int     `json:"boxes"`
	Cost        float64 `json:"cost"`
	CostJPY     float64 `json:"costJPY"`
}

// OrderCost is the order-level roll-up of SKU costs. Processing groups
// lamination, slitting and bag making.
type OrderCost struct {
	Materials  float64  `json:"materials"`
	Processing float64  `json:"processing"`
	Printing   float64  `json:"printing"`
	Duty       float64  `json:"duty"`
	Subtotal   float64  `json:"subtotal"`
	TotalJPY   float64  `json:"totalJPY"`
	Delivery   Delivery `json:"delivery"`
	GrandTotal float64  `json:"grandTotal"`
}

// Aggregate sums SKU breakdowns and estimates delivery from the total film
// weight. Delivery.Cost is in source currency.
func Aggregate(skus []SKUCostBreakdown, rates Rates) OrderCost {
	var out OrderCost
	for _, s := range skus {
		out.Materials += s.MaterialCost
		out.Processing += s.LaminationCost + s.SlitterCost + s.PouchProcessCost
		out.Printing += s.PrintingCost
		out.Duty += s.Duty
		out.Subtotal += s.Subtotal
		out.TotalJPY += s.WithDuty
		out.Delivery.TotalWeight += s.WeightKg
	}
	out.Delivery = estimateDelivery(out.Delivery.TotalWeight, rates)
	out.GrandTotal = out.TotalJPY + out.Delivery.CostJPY
	return out
}

func estimateDelivery(weight float64, rates Rates) Delivery {
	d := Delivery{TotalWeight: weight}
	if weight <= 0 || rates.KgPerBox <= 0 {
		return d
	}
	d.Boxes = int(math.Ceil(weight / rates.KgPerBox))
	d.Cost = float64(d.Boxes) * rates.DeliveryPerBox
	d.CostJPY = rates.ToJPY(d.Cost)
	return d
}
