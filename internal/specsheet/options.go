package specsheet

import "encoding/json"

// ProcessingOptions derives the processing flags from the post-processing IDs. Every
// ID is inspected and unknown IDs are ignored. Roll film never carries
// processing options.
func (p Product) ProcessingOptions() ProcessingOptions {
	var result ProcessingOptions
	if p.IsRollFilm() {
		return result
	}
	for _, id := range p.Options {
		switch id {
		case "zipper-yes":
			result.Ziplock = true
		case "notch-yes", "notch-straight":
			result.Notch = true
		case "hang-hole-6mm", "hang-hole-8mm":
			result.HangingHole = true
		case "corner-round":
			result.CornerRound = true
		case "valve-yes":
			result.GasVent = true
		case "tear-notch":
			result.EasyCut = true
		case "die-cut-window":
			result.Embossing = true
		}
	}
	return result
}

// ExtractProcessingOptions recomputes the quotation-level options from the
// first item's specification. No items or an empty specification yields all
// false.
func ExtractProcessingOptions(specs []json.RawMessage) (ProcessingOptions, error) {
	if len(specs) == 0 {
		return ProcessingOptions{}, nil
	}
	product, err := Parse(specs[0])
	if err != nil {
		return ProcessingOptions{}, err
	}
	return product.ProcessingOptions(), nil
}

// Specification flattens the product into its display record.
func (p Product) Specification() ProductSpecification {
	spec := ProductSpecification{
		SpecNumber:    p.SpecNumber,
		ProductType:   p.ProductType,
		PouchType:     p.PouchLabel,
		Contents:      p.Contents,
		Size:          p.Size,
		Material:      p.Material,
		SurfaceFinish: p.Finish.Label(),
	}
	if p.Pouch != nil {
		spec.SealWidth = p.Pouch.SealWidth
		spec.FillDirection = p.Pouch.FillDirection
		spec.NotchShape = p.Pouch.NotchShape
		spec.NotchPosition = p.Pouch.NotchPosition
		spec.HangingHole = p.Pouch.HangingHole
		spec.HangingPosition = p.Pouch.HangingPosition
		spec.ZiplockPosition = p.Pouch.ZiplockPosition
		spec.CornerRadius = p.Pouch.CornerRadius
	}
	if p.RollFilm != nil {
		spec.MaterialWidth = p.RollFilm.MaterialWidth
		spec.TotalLength = p.RollFilm.TotalLength
		spec.RollCount = p.RollFilm.RollCount
		spec.Pitch = p.RollFilm.Pitch
	}
	return spec
}
