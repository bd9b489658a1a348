package settings

import (
	"fmt"

	"github.com/packquote/packquote/internal/pricing"
)

// Setting categories.
const (
	CategoryFilmMaterial    = "film_material"
	CategoryPouchProcessing = "pouch_processing"
	CategoryPrinting        = "printing"
	CategoryLamination      = "lamination"
	CategorySlitter         = "slitter"
	CategoryExchangeRate    = "exchange_rate"
	CategoryDutyRate        = "duty_rate"
	CategoryDelivery        = "delivery"
	CategoryProduction      = "production"
	CategoryPricing         = "pricing"
)

type bounds int

const (
	nonNegative bounds = iota
	positive
	fraction
)

// binding ties one (category, key) to a field of pricing.Rates.
type binding struct {
	category    string
	key         string
	unit        string
	description string
	bounds      bounds
	get         func(pricing.Rates) float64
	set         func(*pricing.Rates, float64)
}

var bindings = buildBindings()

func buildBindings() map[string]binding {
	list := []binding{
		{category: CategoryPrinting, key: "cost_per_m2", unit: "원/m²", description: "印刷単価（1m幅固定）",
			get: func(r pricing.Rates) float64 { return r.PrintingPerM2 }, set: func(r *pricing.Rates, v float64) { r.PrintingPerM2 = v }},
		{category: CategoryPrinting, key: "matte_cost_per_m", unit: "원/m", description: "マット印刷追加単価",
			get: func(r pricing.Rates) float64 { return r.MattePerM }, set: func(r *pricing.Rates, v float64) { r.MattePerM = v }},
		{category: CategoryLamination, key: "cost_per_m2", unit: "원/m²", description: "ラミネート単価",
			get: func(r pricing.Rates) float64 { return r.LaminationPerM2 }, set: func(r *pricing.Rates, v float64) { r.LaminationPerM2 = v }},
		{category: CategorySlitter, key: "cost_per_m", unit: "원/m", description: "スリッター単価",
			get: func(r pricing.Rates) float64 { return r.SlitterPerM }, set: func(r *pricing.Rates, v float64) { r.SlitterPerM = v }},
		{category: CategorySlitter, key: "min_cost", unit: "원", description: "スリッター最低料金",
			get: func(r pricing.Rates) float64 { return r.SlitterMin }, set: func(r *pricing.Rates, v float64) { r.SlitterMin = v }},
		{category: CategoryExchangeRate, key: "krw_to_jpy", unit: "JPY/KRW", description: "為替レート", bounds: positive,
			get: func(r pricing.Rates) float64 { return r.ExchangeRate }, set: func(r *pricing.Rates, v float64) { r.ExchangeRate = v }},
		{category: CategoryDutyRate, key: "import_duty", unit: "%", description: "関税率", bounds: fraction,
			get: func(r pricing.Rates) float64 { return r.DutyRate }, set: func(r *pricing.Rates, v float64) { r.DutyRate = v }},
		{category: CategoryDelivery, key: "cost_per_box", unit: "원", description: "配送料（1箱）",
			get: func(r pricing.Rates) float64 { return r.DeliveryPerBox }, set: func(r *pricing.Rates, v float64) { r.DeliveryPerBox = v }},
		{category: CategoryDelivery, key: "kg_per_box", unit: "kg", description: "1箱あたり最大重量", bounds: positive,
			get: func(r pricing.Rates) float64 { return r.KgPerBox }, set: func(r *pricing.Rates, v float64) { r.KgPerBox = v }},
		{category: CategoryProduction, key: "loss_meters", unit: "m", description: "ロス（1注文）",
			get: func(r pricing.Rates) float64 { return r.LossMeters }, set: func(r *pricing.Rates, v float64) { r.LossMeters = v }},
		{category: CategoryPricing, key: "default_markup_rate", unit: "%", description: "標準マージン率",
			get: func(r pricing.Rates) float64 { return r.MarginRate }, set: func(r *pricing.Rates, v float64) { r.MarginRate = v }},
		{category: CategoryPricing, key: "consumption_tax_rate", unit: "%", description: "消費税率", bounds: fraction,
			get: func(r pricing.Rates) float64 { return r.ConsumptionTaxRate }, set: func(r *pricing.Rates, v float64) { r.ConsumptionTaxRate = v }},
	}

	defaults := pricing.DefaultRates()
	for id := range defaults.Materials {
		list = append(list,
			binding{category: CategoryFilmMaterial, key: id + "_unit_price", unit: "원/kg", description: id + " 単価",
				get: func(r pricing.Rates) float64 { return r.Materials[id].UnitPrice },
				set: func(r *pricing.Rates, v float64) { updateMaterial(r, id, func(m *pricing.Material) { m.UnitPrice = v }) }},
			binding{category: CategoryFilmMaterial, key: id + "_density", unit: "g/cm³", description: id + " 比重", bounds: positive,
				get: func(r pricing.Rates) float64 { return r.Materials[id].Density },
				set: func(r *pricing.Rates, v float64) { updateMaterial(r, id, func(m *pricing.Material) { m.Density = v }) }},
		)
	}
	for kind := range defaults.PouchProcessing {
		list = append(list,
			binding{category: CategoryPouchProcessing, key: string(kind) + "_coefficient", unit: "원/cm", description: string(kind) + " 加工係数",
				get: func(r pricing.Rates) float64 { return r.PouchProcessing[kind].Coefficient },
				set: func(r *pricing.Rates, v float64) { updateTariff(r, kind, func(p *pricing.PouchProcessing) { p.Coefficient = v }) }},
			binding{category: CategoryPouchProcessing, key: string(kind) + "_minimum", unit: "원", description: string(kind) + " 最低加工費",
				get: func(r pricing.Rates) float64 { return r.PouchProcessing[kind].Minimum },
				set: func(r *pricing.Rates, v float64) { updateTariff(r, kind, func(p *pricing.PouchProcessing) { p.Minimum = v }) }},
		)
	}

	out := make(map[string]binding, len(list))
	for _, b := range list {
		out[bindingKey(b.category, b.key)] = b
	}
	return out
}

func updateMaterial(r *pricing.Rates, id string, fn func(*pricing.Material)) {
	m := r.Materials[id]
	fn(&m)
	r.Materials[id] = m
}

func updateTariff(r *pricing.Rates, kind pricing.PouchKind, fn func(*pricing.PouchProcessing)) {
	p := r.PouchProcessing[kind]
	fn(&p)
	r.PouchProcessing[kind] = p
}

func bindingKey(category, key string) string {
	return category + "/" + key
}

func lookup(category, key string) (binding, bool) {
	b, ok := bindings[bindingKey(category, key)]
	return b, ok
}

func (b binding) validate(v float64) error {
	switch {
	case v < 0:
		return fmt.Errorf("%w: %s.%s must not be negative", ErrInvalidValue, b.category, b.key)
	case b.bounds == positive && v == 0:
		return fmt.Errorf("%w: %s.%s must be positive", ErrInvalidValue, b.category, b.key)
	case b.bounds == fraction && v >= 1:
		return fmt.Errorf("%w: %s.%s must be below 1", ErrInvalidValue, b.category, b.key)
	}
	return nil
}

// BuildRates overlays active settings on the default rates. Rows with an
// unknown key or an invalid value are returned as skipped so the caller can
// log them.
func BuildRates(rows []Setting) (pricing.Rates, []error) {
	rates := pricing.DefaultRates()
	var skipped []error
	for _, row := range rows {
		if !row.IsActive {
			continue
		}
		b, ok := lookup(row.Category, row.Key)
		if !ok {
			skipped = append(skipped, fmt.Errorf("%w: %s.%s", ErrNotFound, row.Category, row.Key))
			continue
		}
		v, err := row.Number()
		if err == nil {
			err = b.validate(v)
		}
		if err != nil {
			skipped = append(skipped, err)
			continue
		}
		b.set(&rates, v)
	}
	return rates, skipped
}

// Defaults returns one row per known key holding the built-in default, used
// to seed a fresh database.
func Defaults() []Setting {
	rates := pricing.DefaultRates()
	out := make([]Setting, 0, len(bindings))
	for _, b := range bindings {
		out = append(out, Setting{
			Category:    b.category,
			Key:         b.key,
			Value:       NumberValue(b.get(rates)),
			ValueType:   "number",
			Unit:        b.unit,
			Description: b.description,
			IsActive:    true,
		})
	}
	sortSettings(out)
	return out
}
