package pricing

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var jaPrinter = message.NewPrinter(language.Japanese)

// FormatYen renders a whole-yen amount for display, e.g. "¥157,500".
func FormatYen(amount float64) string {
	v := int64(math.Round(amount))
	if v < 0 {
		return jaPrinter.Sprintf("-¥%d", -v)
	}
	return jaPrinter.Sprintf("¥%d", v)
}

// FormatPercent renders a ratio as a percentage with one decimal, e.g. "33.3%".
func FormatPercent(ratio float64) string {
	return jaPrinter.Sprintf("%.1f%%", ratio*100)
}
