// Package specsheet normalises the loosely-typed specification JSON stored on
// quotation items into a typed product description.
package specsheet

import "errors"

// ErrMalformedSpecification is returned when the specification payload is not
// a JSON object.
var ErrMalformedSpecification = errors.New("specsheet: malformed specification")

// Family discriminates roll film from pouches.
type Family string

// Product families.
const (
	FamilyPouch    Family = "pouch"
	FamilyRollFilm Family = "roll_film"
)

// Finish is the printed surface finish.
type Finish string

// Surface finishes. FinishUnspecified means the order form sent neither.
const (
	FinishUnspecified Finish = ""
	FinishGlossy      Finish = "glossy"
	FinishMatte       Finish = "matte"
)

// Label returns the Japanese display label for the finish.
func (f Finish) Label() string {
	switch f {
	case FinishGlossy:
		return "光沢仕上げ"
	case FinishMatte:
		return "マット仕上げ"
	default:
		return ""
	}
}

// Dimensions are pouch dimensions in millimetres. Depth is the gusset.
type Dimensions struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Depth  float64 `json:"depth,omitempty"`
}

// FilmLayer is one layer of the laminated structure, thickness in μm.
type FilmLayer struct {
	MaterialID string  `json:"materialId"`
	Thickness  float64 `json:"thickness"`
}

// PouchSpec holds the fields that only exist for pouches.
type PouchSpec struct {
	SealWidth       string
	FillDirection   string
	NotchShape      string
	NotchPosition   string
	HangingHole     bool
	HangingPosition string
	ZiplockPosition string
	CornerRadius    string
}

// RollFilmSpec holds the fields that only exist for roll film.
type RollFilmSpec struct {
	MaterialWidth float64
	TotalLength   float64
	RollCount     int
	Pitch         float64
}

// Product is the normalised specification of one SKU. Exactly one of Pouch
// and RollFilm is set, matching Family.
type Product struct {
	Family      Family
	ProductType string
	PouchLabel  string
	SpecNumber  string
	Size        string
	Material    string
	Contents    string

	Dimensions         Dimensions
	MaterialID         string
	ThicknessSelection string
	FilmLayers         []FilmLayer
	PrintingType       string
	Finish             Finish
	Options            []string

	Pouch    *PouchSpec
	RollFilm *RollFilmSpec
}

// IsRollFilm reports whether the product is roll film.
func (p Product) IsRollFilm() bool {
	return p.Family == FamilyRollFilm
}

// HasOption reports whether the post-processing list contains id.
func (p Product) HasOption(id string) bool {
	for _, opt := range p.Options {
		if opt == id {
			return true
		}
	}
	return false
}

// ProcessingOptions is the set of optional processing steps shown on a
// quotation.
type ProcessingOptions struct {
	Ziplock     bool `json:"ziplock"`
	Notch       bool `json:"notch"`
	HangingHole bool `json:"hangingHole"`
	CornerRound bool `json:"cornerRound"`
	GasVent     bool `json:"gasVent"`
	EasyCut     bool `json:"easyCut"`
	Embossing   bool `json:"embossing"`
}

// ProductSpecification is the flattened display record. Pouch-only fields are
// empty for roll film and roll-only fields are zero for pouches.
type ProductSpecification struct {
	SpecNumber      string  `json:"specNumber"`
	ProductType     string  `json:"productType"`
	PouchType       string  `json:"pouchType"`
	Contents        string  `json:"contents"`
	Size            string  `json:"size"`
	Material        string  `json:"material"`
	SurfaceFinish   string  `json:"surfaceFinish"`
	SealWidth       string  `json:"sealWidth"`
	FillDirection   string  `json:"fillDirection"`
	NotchShape      string  `json:"notchShape"`
	NotchPosition   string  `json:"notchPosition"`
	HangingHole     bool    `json:"hangingHole"`
	HangingPosition string  `json:"hangingPosition"`
	ZiplockPosition string  `json:"ziplockPosition"`
	CornerRadius    string  `json:"cornerRadius"`
	MaterialWidth   float64 `json:"materialWidth,omitempty"`
	TotalLength     float64 `json:"totalLength,omitempty"`
	RollCount       int     `json:"rollCount,omitempty"`
	Pitch           float64 `json:"pitch,omitempty"`
}
