// Package quotations stores customer quotations and derives their totals,
// processing options and cost breakdown.
package quotations

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound      = errors.New("quotation not found")
	ErrFinalized     = errors.New("quotation is finalized")
	ErrInvalidStatus = errors.New("invalid status transition")
	ErrValidation    = errors.New("invalid quotation")
)

// Status is the lifecycle state of a quotation.
type Status string

const (
	StatusDraft     Status = "DRAFT"
	StatusSent      Status = "SENT"
	StatusApproved  Status = "APPROVED"
	StatusRejected  Status = "REJECTED"
	StatusExpired   Status = "EXPIRED"
	StatusConverted Status = "CONVERTED"
)

var statusAliases = map[string]Status{
	"draft":              StatusDraft,
	"sent":               StatusSent,
	"pending":            StatusSent,
	"quotation_pending":  StatusSent,
	"approved":           StatusApproved,
	"quotation_approved": StatusApproved,
	"rejected":           StatusRejected,
	"expired":            StatusExpired,
	"converted":          StatusConverted,
}

var transitions = map[Status][]Status{
	StatusDraft:    {StatusSent, StatusExpired},
	StatusSent:     {StatusApproved, StatusRejected, StatusExpired, StatusDraft},
	StatusApproved: {StatusConverted, StatusExpired},
}

// NormalizeStatus maps canonical and legacy workflow spellings onto a Status.
func NormalizeStatus(raw string) (Status, error) {
	s, ok := statusAliases[strings.ToLower(strings.TrimSpace(raw))]
	if !ok {
		return "", fmt.Errorf("%w: unknown status %q", ErrValidation, raw)
	}
	return s, nil
}

// Finalized reports whether items and amounts are frozen.
func (s Status) Finalized() bool {
	switch s {
	case StatusApproved, StatusRejected, StatusExpired, StatusConverted:
		return true
	}
	return false
}

// CanTransition reports whether s may move to next. Staying put is allowed.
func (s Status) CanTransition(next Status) bool {
	if s == next {
		return true
	}
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Quotation is a customer quotation header with its items.
type Quotation struct {
	ID                 uuid.UUID       `json:"id"`
	QuotationNumber    string          `json:"quotationNumber"`
	UserID             string          `json:"userId"`
	CustomerName       string          `json:"customerName"`
	CustomerEmail      string          `json:"customerEmail"`
	CustomerPhone      *string         `json:"customerPhone,omitempty"`
	Status             Status          `json:"status"`
	SubtotalAmount     float64         `json:"subtotalAmount"`
	TaxAmount          float64         `json:"taxAmount"`
	TotalAmount        float64         `json:"totalAmount"`
	SKUCount           int             `json:"skuCount"`
	TotalMeters        float64         `json:"totalMeters"`
	LossMeters         float64         `json:"lossMeters"`
	TotalCostBreakdown json.RawMessage `json:"totalCostBreakdown,omitempty"`
	Notes              *string         `json:"notes,omitempty"`
	AdminNotes         *string         `json:"adminNotes,omitempty"`
	ValidUntil         *time.Time      `json:"validUntil,omitempty"`
	CreatedAt          time.Time       `json:"createdAt"`
	UpdatedAt          time.Time       `json:"updatedAt"`
	ApprovedAt         *time.Time      `json:"approvedAt,omitempty"`
	RejectedAt         *time.Time      `json:"rejectedAt,omitempty"`
	Items              []Item          `json:"items,omitempty"`
}

// Item is one SKU line. Items belong to exactly one quotation.
type Item struct {
	ID             uuid.UUID       `json:"id"`
	QuotationID    uuid.UUID       `json:"quotationId"`
	SKUIndex       int             `json:"skuIndex"`
	ProductName    string          `json:"productName"`
	Quantity       int             `json:"quantity"`
	UnitPrice      float64         `json:"unitPrice"`
	TotalPrice     float64         `json:"totalPrice"`
	Specifications json.RawMessage `json:"specifications"`
	CostBreakdown  json.RawMessage `json:"costBreakdown,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// Specs returns the raw specification of every item in SKU order.
func (q Quotation) Specs() []json.RawMessage {
	specs := make([]json.RawMessage, 0, len(q.Items))
	for _, it := range q.Items {
		specs = append(specs, it.Specifications)
	}
	return specs
}

// VisibleTo reports whether userID may read q. Admins see everything.
func (q Quotation) VisibleTo(userID string, admin bool) bool {
	return admin || (userID != "" && q.UserID == userID)
}
