package quotations

import (
	"encoding/json"
	"time"

	"github.com/packquote/packquote/internal/pricing"
	"github.com/packquote/packquote/internal/specsheet"
)

type CreateRequest struct {
	CustomerName  string        `json:"customerName" validate:"required,max=200"`
	CustomerEmail string        `json:"customerEmail" validate:"required,email"`
	CustomerPhone *string       `json:"customerPhone,omitempty" validate:"omitempty,max=40"`
	Notes         *string       `json:"notes,omitempty"`
	ValidUntil    *time.Time    `json:"validUntil,omitempty"`
	Items         []ItemRequest `json:"items" validate:"required,min=1,dive"`
}

type ItemRequest struct {
	ProductName    string          `json:"productName" validate:"required,max=200"`
	Quantity       int             `json:"quantity" validate:"gt=0"`
	UnitPrice      float64         `json:"unitPrice" validate:"gte=0"`
	Specifications json.RawMessage `json:"specifications,omitempty"`
}

// UpdateRequest is an admin PATCH. Nil fields are left untouched.
type UpdateRequest struct {
	Status        *string        `json:"status,omitempty"`
	CustomerName  *string        `json:"customerName,omitempty" validate:"omitempty,min=1,max=200"`
	CustomerEmail *string        `json:"customerEmail,omitempty" validate:"omitempty,email"`
	CustomerPhone *string        `json:"customerPhone,omitempty" validate:"omitempty,max=40"`
	Notes         *string        `json:"notes,omitempty"`
	AdminNotes    *string        `json:"adminNotes,omitempty"`
	ValidUntil    *time.Time     `json:"validUntil,omitempty"`
	Items         *[]ItemRequest `json:"items,omitempty" validate:"omitempty,min=1,dive"`
}

// ListFilter selects a page of quotations.
type ListFilter struct {
	Status Status
	UserID string
	Search string
	Sort   string
	Desc   bool
	Page   int
	Limit  int
}

const (
	defaultLimit = 20
	maxLimit     = 100
)

var sortColumns = map[string]string{
	"created_at":       "q.created_at",
	"total_amount":     "q.total_amount",
	"quotation_number": "q.quotation_number",
}

func (f *ListFilter) normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit <= 0 {
		f.Limit = defaultLimit
	}
	if f.Limit > maxLimit {
		f.Limit = maxLimit
	}
	if _, ok := sortColumns[f.Sort]; !ok {
		f.Sort = "created_at"
		f.Desc = true
	}
}

func (f ListFilter) offset() int {
	return (f.Page - 1) * f.Limit
}

// ProcessingOptionsResponse is the derived option view of a quotation.
type ProcessingOptionsResponse struct {
	QuotationID       string                          `json:"quotationId"`
	ProcessingOptions specsheet.ProcessingOptions     `json:"processingOptions"`
	Specification     *specsheet.ProductSpecification `json:"specification,omitempty"`
}

// CostBreakdownResponse is the admin cost view of a quotation.
type CostBreakdownResponse struct {
	QuotationID     string           `json:"quotationId"`
	QuotationNumber string           `json:"quotationNumber"`
	Status          Status           `json:"status"`
	SubtotalAmount  float64          `json:"subtotalAmount"`
	Cost            pricing.CostView `json:"cost"`
}
