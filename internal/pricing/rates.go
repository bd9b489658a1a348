// Package pricing computes manufacturing cost, order totals and margin for
// pouch and roll film quotations.
package pricing

import "errors"

// Errors returned by the calculators.
var (
	ErrInvalidQuantity   = errors.New("pricing: quantity must be positive")
	ErrInvalidDimensions = errors.New("pricing: width and height must be positive")
	ErrUnknownMaterial   = errors.New("pricing: unknown film material")
)

// Material holds the price (KRW per kg) and density (g/cm³) of a film
// material.
type Material struct {
	UnitPrice float64 `json:"unitPrice"`
	Density   float64 `json:"density"`
}

// PouchProcessing is the bag-making tariff for one pouch kind: coefficient in
// KRW per cm of width per pouch, with a per-order minimum in KRW.
type PouchProcessing struct {
	Coefficient float64 `json:"coefficient"`
	Minimum     float64 `json:"minimum"`
}

// Rates are the tunable inputs of the cost model. Source amounts are KRW;
// ExchangeRate converts KRW to JPY.
type Rates struct {
	Materials       map[string]Material            `json:"materials"`
	PouchProcessing map[PouchKind]PouchProcessing `json:"pouchProcessing"`

	PrintingPerM2   float64 `json:"printingPerM2"`
	MattePerM       float64 `json:"mattePerM"`
	LaminationPerM2 float64 `json:"laminationPerM2"`
	SlitterPerM     float64 `json:"slitterPerM"`
	SlitterMin      float64 `json:"slitterMin"`

	ExchangeRate float64 `json:"exchangeRate"`
	DutyRate     float64 `json:"dutyRate"`

	DeliveryPerBox float64 `json:"deliveryPerBox"`
	KgPerBox       float64 `json:"kgPerBox"`

	LossMeters         float64 `json:"lossMeters"`
	MarginRate         float64 `json:"marginRate"`
	ConsumptionTaxRate float64 `json:"consumptionTaxRate"`
}

// DefaultRates returns the rates used when system_settings has no override.
func DefaultRates() Rates {
	return Rates{
		Materials: map[string]Material{
			"PET":   {UnitPrice: 2800, Density: 1.40},
			"AL":    {UnitPrice: 7800, Density: 2.71},
			"LLDPE": {UnitPrice: 2800, Density: 0.92},
			"NY":    {UnitPrice: 5400, Density: 1.16},
			"VMPET": {UnitPrice: 3600, Density: 1.40},
		},
		PouchProcessing: map[PouchKind]PouchProcessing{
			KindFlat:        {Coefficient: 0.4, Minimum: 200000},
			KindStand:       {Coefficient: 1.2, Minimum: 250000},
			KindZipper:      {Coefficient: 1.2, Minimum: 250000},
			KindZipperStand: {Coefficient: 1.7, Minimum: 280000},
			KindTShape:      {Coefficient: 1.2, Minimum: 440000},
			KindMShape:      {Coefficient: 1.2, Minimum: 440000},
			KindBox:         {Coefficient: 1.2, Minimum: 440000},
			KindOther:       {Coefficient: 1.0, Minimum: 200000},
		},
		PrintingPerM2:      475,
		MattePerM:          20,
		LaminationPerM2:    75,
		SlitterPerM:        10,
		SlitterMin:         30000,
		ExchangeRate:       0.12,
		DutyRate:           0.05,
		DeliveryPerBox:     127980,
		KgPerBox:           29,
		LossMeters:         400,
		MarginRate:         0.5,
		ConsumptionTaxRate: 0.10,
	}
}

// Clone returns a deep copy so callers can adjust rates without touching a
// shared snapshot.
func (r Rates) Clone() Rates {
	out := r
	out.Materials = make(map[string]Material, len(r.Materials))
	for k, v := range r.Materials {
		out.Materials[k] = v
	}
	out.PouchProcessing = make(map[PouchKind]PouchProcessing, len(r.PouchProcessing))
	for k, v := range r.PouchProcessing {
		out.PouchProcessing[k] = v
	}
	return out
}

// ToJPY converts a KRW amount.
func (r Rates) ToJPY(krw float64) float64 {
	return krw * r.ExchangeRate
}

// Material looks up a film material. PE is priced as LLDPE.
func (r Rates) Material(id string) (Material, bool) {
	if m, ok := r.Materials[id]; ok {
		return m, true
	}
	if id == "PE" {
		m, ok := r.Materials["LLDPE"]
		return m, ok
	}
	return Material{}, false
}

func (r Rates) pouchTariff(kind PouchKind) PouchProcessing {
	if t, ok := r.PouchProcessing[kind]; ok {
		return t
	}
	return r.PouchProcessing[KindOther]
}
