package pricing

import (
	"math"
	"strings"

	"github.com/packquote/packquote/internal/specsheet"
)

// PouchKind is the bag-making category that drives film geometry and the
// processing tariff.
type PouchKind string

// Pouch kinds.
const (
	KindFlat        PouchKind = "flat_3_side"
	KindStand       PouchKind = "stand_up"
	KindZipper      PouchKind = "zipper"
	KindZipperStand PouchKind = "zipper_stand"
	KindTShape      PouchKind = "t_shape"
	KindMShape      PouchKind = "m_shape"
	KindBox         PouchKind = "box"
	KindOther       PouchKind = "other"
	KindRollFilm    PouchKind = "roll_film"
)

const (
	maxTwoColumnWidth = 740.0
	narrowRollMax     = 570.0
	narrowRoll        = 590.0
	wideRoll          = 760.0
	meterStep         = 50.0
	minMetersSingle   = 500.0
	minMetersMulti    = 300.0
)

var defaultLayers = []specsheet.FilmLayer{
	{MaterialID: "PET", Thickness: 12},
	{MaterialID: "AL", Thickness: 7},
	{MaterialID: "LLDPE", Thickness: 80},
}

var thicknessMultipliers = map[string]float64{
	"light":  0.9,
	"medium": 1.0,
	"heavy":  1.1,
	"ultra":  1.2,
}

// ResolvePouchKind maps an order-form bag type to a pouch kind. A zipper
// upgrades flat to zipper and stand to zipper_stand.
func ResolvePouchKind(productType string, zipper bool) PouchKind {
	t := strings.ToLower(productType)
	if t == "roll_film" {
		return KindRollFilm
	}
	if strings.Contains(t, "zipper") {
		zipper = true
	}

	var base PouchKind
	switch {
	case strings.Contains(t, "3_side"), strings.Contains(t, "flat"), strings.Contains(t, "three_side"):
		base = KindFlat
	case strings.Contains(t, "stand"):
		base = KindStand
	case strings.Contains(t, "t_shape"):
		base = KindTShape
	case strings.Contains(t, "m_shape"):
		base = KindMShape
	case strings.Contains(t, "box"), strings.Contains(t, "gusset"):
		base = KindBox
	case t == "zipper":
		base = KindFlat
	default:
		base = KindOther
	}

	if zipper {
		switch base {
		case KindFlat:
			return KindZipper
		case KindStand:
			return KindZipperStand
		}
	}
	return base
}

// FilmWidth returns the printed film width in mm for kind laid out in the
// given number of columns.
func FilmWidth(kind PouchKind, d specsheet.Dimensions, columns int) float64 {
	H, W, G := d.Height, d.Width, d.Depth
	switch kind {
	case KindStand, KindZipperStand:
		if columns == 2 {
			return H*4 + G*2 + 40
		}
		return H*2 + G + 35
	case KindTShape:
		return W*2 + 22
	case KindMShape, KindBox:
		return (G+W)*2 + 32
	default:
		if columns == 2 {
			return H*4 + 71
		}
		return H*2 + 41
	}
}

// Columns returns 2 when the two-column film fits the press, otherwise 1.
func Columns(kind PouchKind, d specsheet.Dimensions) int {
	if FilmWidth(kind, d, 2) <= maxTwoColumnWidth {
		return 2
	}
	return 1
}

// RawMaterialWidth selects the raw roll width in mm for a film width.
func RawMaterialWidth(filmWidth float64) float64 {
	if filmWidth <= narrowRollMax {
		return narrowRoll
	}
	return wideRoll
}

// Pitch is the film advance per pouch in mm.
func Pitch(kind PouchKind, d specsheet.Dimensions) float64 {
	if kind == KindMShape || kind == KindBox {
		return d.Depth + d.Width
	}
	return d.Width
}

// TheoreticalMeters is the film length needed for quantity pouches.
func TheoreticalMeters(quantity int, pitch float64, columns int) float64 {
	perMeter := (1000 / pitch) * float64(columns)
	return float64(quantity) / perMeter
}

// SecuredMeters applies the minimum order length (500 m for a single SKU,
// 300 m per SKU otherwise) and rounds up to 50 m above it.
func SecuredMeters(theoretical float64, skuCount int) float64 {
	minimum := minMetersMulti
	if skuCount <= 1 {
		minimum = minMetersSingle
	}
	if theoretical <= minimum {
		return minimum
	}
	return math.Ceil(theoretical/meterStep) * meterStep
}

// FilmPlan is the film layout and consumption of one SKU.
type FilmPlan struct {
	Kind              PouchKind `json:"kind"`
	Columns           int       `json:"columns"`
	FilmWidth         float64   `json:"filmWidth"`
	MaterialWidth     float64   `json:"materialWidth"`
	Pitch             float64   `json:"pitch"`
	TheoreticalMeters float64   `json:"theoreticalMeters"`
	SecuredMeters     float64   `json:"securedMeters"`
	LossMeters        float64   `json:"lossMeters"`
	TotalMeters       float64   `json:"totalMeters"`
}

// PlanFilm lays out the film for one SKU of an order with skuCount SKUs.
// For roll film the quantity is already a length in meters.
func PlanFilm(product specsheet.Product, quantity, skuCount int, rates Rates) (FilmPlan, error) {
	if quantity <= 0 {
		return FilmPlan{}, ErrInvalidQuantity
	}
	if skuCount < 1 {
		skuCount = 1
	}
	loss := rates.LossMeters / float64(skuCount)

	if product.IsRollFilm() {
		width := wideRoll
		if product.RollFilm != nil && product.RollFilm.MaterialWidth > 0 {
			width = product.RollFilm.MaterialWidth
		}
		secured := SecuredMeters(float64(quantity), skuCount)
		return FilmPlan{
			Kind:              KindRollFilm,
			Columns:           1,
			FilmWidth:         width,
			MaterialWidth:     RawMaterialWidth(width),
			TheoreticalMeters: float64(quantity),
			SecuredMeters:     secured,
			LossMeters:        loss,
			TotalMeters:       secured + loss,
		}, nil
	}

	d := product.Dimensions
	if d.Width <= 0 || d.Height <= 0 {
		return FilmPlan{}, ErrInvalidDimensions
	}
	kind := ResolvePouchKind(product.ProductType, product.HasOption("zipper-yes"))
	columns := Columns(kind, d)
	filmWidth := FilmWidth(kind, d, columns)
	pitch := Pitch(kind, d)
	theoretical := TheoreticalMeters(quantity, pitch, columns)
	secured := SecuredMeters(theoretical, skuCount)

	return FilmPlan{
		Kind:              kind,
		Columns:           columns,
		FilmWidth:         filmWidth,
		MaterialWidth:     RawMaterialWidth(filmWidth),
		Pitch:             pitch,
		TheoreticalMeters: theoretical,
		SecuredMeters:     secured,
		LossMeters:        loss,
		TotalMeters:       secured + loss,
	}, nil
}

// AdjustLayers scales the sealant (LLDPE/PE) layers for a thickness
// selection, rounding to whole μm. Unknown selections keep the layers.
func AdjustLayers(layers []specsheet.FilmLayer, selection string) []specsheet.FilmLayer {
	if len(layers) == 0 {
		layers = defaultLayers
	}
	out := append([]specsheet.FilmLayer(nil), layers...)
	multiplier, ok := thicknessMultipliers[selection]
	if !ok || multiplier == 1.0 {
		return out
	}
	for i, l := range out {
		if l.MaterialID == "LLDPE" || l.MaterialID == "PE" {
			out[i].Thickness = math.Round(l.Thickness * multiplier)
		}
	}
	return out
}
