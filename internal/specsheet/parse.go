package specsheet

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

const defaultProductType = "stand_pouch"

var categoryLabels = map[string]string{
	"food":              "食品",
	"health_supplement": "健康食品",
	"cosmetic":          "化粧品",
	"quasi_drug":        "医薬部外品",
	"drug":              "医薬品",
	"other":             "その他",
}

var contentsTypeLabels = map[string]string{
	"solid":  "固体",
	"powder": "粉体",
	"liquid": "液体",
}

// Parse normalises a specification payload. input may be raw JSON bytes, a
// json.RawMessage, a JSON-encoded string, or an already decoded value. An
// empty or null payload yields the default stand pouch with no options.
func Parse(input any) (Product, error) {
	data, err := toJSON(input)
	if err != nil {
		return Product{}, err
	}

	var raw rawSpec
	if len(data) > 0 {
		if err := json.Unmarshal(data, &raw); err != nil {
			return Product{}, fmt.Errorf("%w: %v", ErrMalformedSpecification, err)
		}
	}
	return normalize(raw), nil
}

// toJSON reduces the accepted inputs to the bytes of a JSON object, or nil.
func toJSON(input any) ([]byte, error) {
	var data []byte
	switch v := input.(type) {
	case nil:
		return nil, nil
	case []byte:
		data = v
	case json.RawMessage:
		data = v
	case string:
		data = []byte(v)
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedSpecification, err)
		}
		data = encoded
	}

	data = bytes.TrimSpace(data)
	// Some rows were stored double-encoded as a JSON string.
	if len(data) > 0 && data[0] == '"' {
		var inner string
		if err := json.Unmarshal(data, &inner); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedSpecification, err)
		}
		data = bytes.TrimSpace([]byte(inner))
	}
	if len(data) == 0 || string(data) == "null" || string(data) == "{}" {
		return nil, nil
	}
	if data[0] != '{' {
		return nil, fmt.Errorf("%w: expected object", ErrMalformedSpecification)
	}
	return data, nil
}

func normalize(raw rawSpec) Product {
	productType := firstNonEmpty(raw.BagType, raw.ProductType, defaultProductType)
	dimsText := firstNonEmpty(raw.dimensionsText(), raw.Size)
	options := raw.options()

	p := Product{
		ProductType:        productType,
		SpecNumber:         firstNonEmpty(raw.SpecNumber, "L"),
		Size:               firstNonEmpty(raw.Size, raw.dimensionsText()),
		Material:           raw.Material,
		Contents:           contentsLabel(raw),
		Dimensions:         dimensions(raw, dimsText),
		MaterialID:         raw.MaterialID,
		ThicknessSelection: raw.ThicknessSelection,
		FilmLayers:         layers(raw.FilmLayers),
		PrintingType:       raw.PrintingType,
		Finish:             finish(options),
		Options:            append([]string(nil), options...),
	}

	if isRollFilm(productType, dimsText) {
		p.Family = FamilyRollFilm
		p.ProductType = string(FamilyRollFilm)
		p.PouchLabel = "ロールフィルム"
		p.RollFilm = &RollFilmSpec{
			MaterialWidth: float64(raw.MaterialWidth),
			TotalLength:   float64(raw.TotalLength),
			RollCount:     int(math.Round(float64(raw.RollCount))),
			Pitch:         float64(raw.Pitch),
		}
		return p
	}

	p.Family = FamilyPouch
	p.PouchLabel = firstNonEmpty(raw.PouchType, "スタンドパウチ")
	p.Pouch = pouchSpec(raw, options)
	return p
}

func isRollFilm(productType, dims string) bool {
	switch {
	case productType == "roll_film" || productType == "ロールフィルム":
		return true
	case strings.Contains(dims, "幅") && strings.Contains(dims, "ピッチ"):
		return true
	case strings.Contains(dims, "mm") && !strings.Contains(dims, "×"):
		return true
	}
	return false
}

func finish(options []string) Finish {
	for _, opt := range options {
		switch opt {
		case "glossy":
			return FinishGlossy
		case "matte":
			return FinishMatte
		}
	}
	return FinishUnspecified
}

func pouchSpec(raw rawSpec, options []string) *PouchSpec {
	spec := &PouchSpec{
		SealWidth:       string(raw.SealWidth),
		FillDirection:   firstNonEmpty(raw.FillDirection, "上"),
		ZiplockPosition: firstNonEmpty(raw.ZiplockPosition, "指定位置"),
	}

notch:
	for _, opt := range options {
		switch opt {
		case "notch-yes":
			spec.NotchShape = "Vノッチ"
			break notch
		case "notch-straight":
			spec.NotchShape = "直線ノッチ"
			break notch
		case "notch-no":
			spec.NotchShape = "ノッチなし"
			break notch
		}
	}
	spec.NotchPosition = raw.NotchPosition
	if spec.NotchPosition == "" && spec.NotchShape != "" {
		spec.NotchPosition = "指定位置"
	}

hole:
	for _, opt := range options {
		switch opt {
		case "hang-hole-6mm":
			spec.HangingHole, spec.HangingPosition = true, "6mm"
			break hole
		case "hang-hole-8mm":
			spec.HangingHole, spec.HangingPosition = true, "8mm"
			break hole
		case "hang-hole-no":
			break hole
		}
	}

corner:
	for _, opt := range options {
		switch opt {
		case "corner-round":
			spec.CornerRadius = "R5"
			break corner
		case "corner-square":
			spec.CornerRadius = "R0"
			break corner
		}
	}
	return spec
}

func dimensions(raw rawSpec, text string) Dimensions {
	if obj, ok := raw.dimensionsObject(); ok && obj.Width > 0 {
		return obj
	}
	dims := Dimensions{Width: float64(raw.Width), Height: float64(raw.Height), Depth: float64(raw.Depth)}
	if dims.Width > 0 && dims.Height > 0 {
		return dims
	}
	if parsed, ok := parseSize(text); ok {
		return parsed
	}
	return dims
}

func layers(in []rawLayer) []FilmLayer {
	if len(in) == 0 {
		return nil
	}
	out := make([]FilmLayer, 0, len(in))
	for _, l := range in {
		if l.MaterialID == "" || l.Thickness <= 0 {
			continue
		}
		out = append(out, FilmLayer{MaterialID: strings.ToUpper(l.MaterialID), Thickness: float64(l.Thickness)})
	}
	return out
}

func contentsLabel(raw rawSpec) string {
	if raw.Contents != "" {
		return raw.Contents
	}
	category := categoryLabels[raw.ProductCategory]
	kind := contentsTypeLabels[raw.ContentsType]
	switch {
	case category != "" && kind != "":
		return category + "（" + kind + "）"
	case category != "":
		return category
	default:
		return kind
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
