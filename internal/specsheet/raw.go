package specsheet

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// rawSpec mirrors the order form payload. Numeric fields accept numbers or
// numeric strings because older rows stored both.
type rawSpec struct {
	BagType     string          `json:"bagType"`
	ProductType string          `json:"productType"`
	PouchType   string          `json:"pouchType"`
	SpecNumber  string          `json:"specNumber"`
	Dimensions  json.RawMessage `json:"dimensions"`
	Size        string          `json:"size"`
	Material    string          `json:"material"`
	Contents    string          `json:"contents"`

	ProductCategory string `json:"productCategory"`
	ContentsType    string `json:"contentsType"`

	Width  flexFloat `json:"width"`
	Height flexFloat `json:"height"`
	Depth  flexFloat `json:"depth"`

	MaterialID         string     `json:"materialId"`
	ThicknessSelection string     `json:"thicknessSelection"`
	FilmLayers         []rawLayer `json:"filmLayers"`
	PrintingType       string     `json:"printingType"`

	PostProcessingOptions []string `json:"postProcessingOptions"`
	PostProcessing        []string `json:"postProcessing"`

	SealWidth       flexString `json:"sealWidth"`
	FillDirection   string     `json:"fillDirection"`
	NotchPosition   string     `json:"notchPosition"`
	ZiplockPosition string     `json:"ziplockPosition"`

	MaterialWidth flexFloat `json:"materialWidth"`
	TotalLength   flexFloat `json:"totalLength"`
	RollCount     flexFloat `json:"rollCount"`
	Pitch         flexFloat `json:"pitch"`
}

type rawLayer struct {
	MaterialID string    `json:"materialId"`
	Thickness  flexFloat `json:"thickness"`
}

// options returns postProcessingOptions, falling back to postProcessing only
// when the former is absent. An explicit empty list wins.
func (r rawSpec) options() []string {
	if r.PostProcessingOptions != nil {
		return r.PostProcessingOptions
	}
	return r.PostProcessing
}

// dimensionsText returns the dimensions field when it was sent as a string.
func (r rawSpec) dimensionsText() string {
	var text string
	if len(r.Dimensions) > 0 && json.Unmarshal(r.Dimensions, &text) == nil {
		return text
	}
	return ""
}

// dimensionsObject returns the dimensions field when it was sent as an object.
func (r rawSpec) dimensionsObject() (Dimensions, bool) {
	trimmed := bytes.TrimSpace(r.Dimensions)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return Dimensions{}, false
	}
	var obj struct {
		Width  flexFloat `json:"width"`
		Height flexFloat `json:"height"`
		Depth  flexFloat `json:"depth"`
	}
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return Dimensions{}, false
	}
	return Dimensions{Width: float64(obj.Width), Height: float64(obj.Height), Depth: float64(obj.Depth)}, true
}

// flexFloat decodes a JSON number, a numeric string ("130", "130mm") or null.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	if data[0] == '"' {
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		*f = flexFloat(parseLeadingNumber(text))
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = flexFloat(v)
	return nil
}

// flexString decodes a JSON string or number as text.
type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	if data[0] == '"' {
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		*s = flexString(text)
		return nil
	}
	*s = flexString(string(data))
	return nil
}

// parseLeadingNumber reads the numeric prefix of text, ignoring units.
func parseLeadingNumber(text string) float64 {
	text = strings.TrimSpace(text)
	end := 0
	for end < len(text) && (text[end] == '.' || text[end] == '-' || (text[end] >= '0' && text[end] <= '9')) {
		end++
	}
	v, err := strconv.ParseFloat(text[:end], 64)
	if err != nil {
		return 0
	}
	return v
}

// parseSize reads "W×H" or "W×H×G" (also with x or *) in millimetres.
func parseSize(text string) (Dimensions, bool) {
	replacer := strings.NewReplacer("×", "x", "X", "x", "*", "x", "mm", "")
	parts := strings.Split(replacer.Replace(text), "x")
	if len(parts) < 2 {
		return Dimensions{}, false
	}
	dims := Dimensions{
		Width:  parseLeadingNumber(parts[0]),
		Height: parseLeadingNumber(parts[1]),
	}
	if len(parts) > 2 {
		dims.Depth = parseLeadingNumber(parts[2])
	}
	if dims.Width <= 0 || dims.Height <= 0 {
		return Dimensions{}, false
	}
	return dims, true
}
