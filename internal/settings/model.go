// Package settings stores the tunable cost rates in system_settings and
// serves them to the pricing engine through an explicit cache.
package settings

import (
	"cmp"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Errors returned by the settings package.
var (
	ErrNotFound     = errors.New("settings: setting not found")
	ErrInvalidValue = errors.New("settings: invalid value")
)

// Setting is one row of system_settings.
type Setting struct {
	ID            uuid.UUID       `json:"id"`
	Category      string          `json:"category"`
	Key           string          `json:"key"`
	Value         json.RawMessage `json:"value"`
	ValueType     string          `json:"valueType"`
	Unit          string          `json:"unit,omitempty"`
	Description   string          `json:"description,omitempty"`
	IsActive      bool            `json:"isActive"`
	UpdatedBy     *string         `json:"updatedBy,omitempty"`
	EffectiveDate time.Time       `json:"effectiveDate"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// Number decodes the JSONB value as a number. Numeric strings are accepted
// because older rows were written by hand.
func (s Setting) Number() (float64, error) {
	raw := strings.TrimSpace(string(s.Value))
	if raw == "" {
		return 0, fmt.Errorf("%w: %s.%s is empty", ErrInvalidValue, s.Category, s.Key)
	}
	var v float64
	if err := json.Unmarshal([]byte(raw), &v); err == nil {
		return v, nil
	}
	var text string
	if err := json.Unmarshal([]byte(raw), &text); err == nil {
		if v, err := strconv.ParseFloat(strings.TrimSpace(text), 64); err == nil {
			return v, nil
		}
	}
	return 0, fmt.Errorf("%w: %s.%s is not a number", ErrInvalidValue, s.Category, s.Key)
}

// NumberValue encodes v as a setting value.
func NumberValue(v float64) json.RawMessage {
	return json.RawMessage(strconv.FormatFloat(v, 'f', -1, 64))
}

func sortSettings(rows []Setting) {
	slices.SortFunc(rows, func(a, b Setting) int {
		if c := cmp.Compare(a.Category, b.Category); c != 0 {
			return c
		}
		return cmp.Compare(a.Key, b.Key)
	})
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
