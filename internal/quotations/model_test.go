package quotations

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeStatus(t *testing.T) {
	cases := map[string]Status{
		"draft":              StatusDraft,
		"DRAFT":              StatusDraft,
		"sent":               StatusSent,
		"pending":            StatusSent,
		"quotation_pending":  StatusSent,
		" Approved ":         StatusApproved,
		"quotation_approved": StatusApproved,
		"rejected":           StatusRejected,
		"expired":            StatusExpired,
		"converted":          StatusConverted,
	}
	for raw, want := range cases {
		got, err := NormalizeStatus(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}

	_, err := NormalizeStatus("cancelled")
	assert.ErrorIs(t, err, ErrValidation)
	_, err = NormalizeStatus("")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestStatusTransitions(t *testing.T) {
	all := []Status{StatusDraft, StatusSent, StatusApproved, StatusRejected, StatusExpired, StatusConverted}
	allowed := map[Status]map[Status]bool{
		StatusDraft:    {StatusSent: true, StatusExpired: true},
		StatusSent:     {StatusApproved: true, StatusRejected: true, StatusExpired: true, StatusDraft: true},
		StatusApproved: {StatusConverted: true, StatusExpired: true},
	}
	for _, from := range all {
		for _, to := range all {
			want := from == to || allowed[from][to]
			assert.Equal(t, want, from.CanTransition(to), "%s -> %s", from, to)
		}
	}
}

func TestFinalized(t *testing.T) {
	assert.False(t, StatusDraft.Finalized())
	assert.False(t, StatusSent.Finalized())
	assert.True(t, StatusApproved.Finalized())
	assert.True(t, StatusRejected.Finalized())
	assert.True(t, StatusExpired.Finalized())
	assert.True(t, StatusConverted.Finalized())
}

func TestComputeTotalsRoundsEachItem(t *testing.T) {
	q := Quotation{Items: []Item{
		{Quantity: 3, UnitPrice: 33.34},
		{Quantity: 1000, UnitPrice: 100},
		{Quantity: 7, UnitPrice: 0},
	}}
	computeTotals(&q, 0.10)

	assert.Equal(t, 200.0, q.Items[0].TotalPrice)
	assert.Equal(t, 100000.0, q.Items[1].TotalPrice)
	assert.Equal(t, 0.0, q.Items[2].TotalPrice)
	assert.Equal(t, 100200.0, q.SubtotalAmount)
	assert.Equal(t, 10020.0, q.TaxAmount)
	assert.Equal(t, 110220.0, q.TotalAmount)
	assert.Equal(t, 3, q.SKUCount)
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "QT-2026-0007", formatNumber(2026, 7))
	assert.Equal(t, "QT-2026-12345", formatNumber(2026, 12345))
}
