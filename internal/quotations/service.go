package quotations

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/packquote/packquote/internal/pricing"
	"github.com/packquote/packquote/internal/rbac"
	"github.com/packquote/packquote/internal/specsheet"
)

// RatesSource supplies the rates currently in effect.
type RatesSource interface {
	Rates(ctx context.Context) (pricing.Rates, error)
}

// Recorder receives quotation metrics.
type Recorder interface {
	QuotationWritten(operation string)
	CostBreakdownComputed()
}

type noopRecorder struct{}

func (noopRecorder) QuotationWritten(string) {}
func (noopRecorder) CostBreakdownComputed() {}

type Service struct {
	repo     Repository
	rates    RatesSource
	metrics  Recorder
	logger   *slog.Logger
	validate *validator.Validate
	now      func() time.Time
}

func NewService(repo Repository, rates RatesSource, metrics Recorder, logger *slog.Logger) *Service {
	if metrics == nil {
		metrics = noopRecorder{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:     repo,
		rates:    rates,
		metrics:  metrics,
		logger:   logger,
		validate: validator.New(),
		now:      time.Now,
	}
}

func (s *Service) Create(ctx context.Context, req CreateRequest, userID string) (Quotation, error) {
	if strings.TrimSpace(userID) == "" {
		return Quotation{}, fmt.Errorf("%w: missing user", ErrValidation)
	}
	if err := s.validate.Struct(req); err != nil {
		return Quotation{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	now := s.now().UTC()
	q := Quotation{
		ID:            uuid.New(),
		UserID:        userID,
		CustomerName:  strings.TrimSpace(req.CustomerName),
		CustomerEmail: strings.TrimSpace(req.CustomerEmail),
		CustomerPhone: req.CustomerPhone,
		Status:        StatusDraft,
		Notes:         req.Notes,
		ValidUntil:    req.ValidUntil,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	q.Items = newItems(q.ID, req.Items, now)

	if err := s.price(ctx, &q); err != nil {
		return Quotation{}, err
	}

	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		seq, err := repo.NextNumber(ctx, now.Year())
		if err != nil {
			return err
		}
		q.QuotationNumber = formatNumber(now.Year(), seq)
		return repo.Create(ctx, q)
	})
	if err != nil {
		return Quotation{}, fmt.Errorf("create quotation: %w", err)
	}

	s.metrics.QuotationWritten("create")
	s.logger.Info("quotation created",
		slog.String("quotation_id", q.ID.String()),
		slog.String("quotation_number", q.QuotationNumber),
		slog.Int("sku_count", q.SKUCount),
		slog.Float64("total_amount", q.TotalAmount))
	return q, nil
}

// price derives amounts and the cost snapshot for q.Items. Specifications
// must parse; a specification the cost engine cannot price only drops the
// snapshot.
func (s *Service) price(ctx context.Context, q *Quotation) error {
	products, err := parseSpecs(q.Items)
	if err != nil {
		return err
	}
	rates, err := s.rates.Rates(ctx)
	if err != nil {
		return fmt.Errorf("load rates: %w", err)
	}

	computeTotals(q, rates.ConsumptionTaxRate)

	q.TotalCostBreakdown = nil
	q.TotalMeters, q.LossMeters = 0, 0
	for i := range q.Items {
		q.Items[i].CostBreakdown = nil
	}

	quotes, err := quoteItems(products, q.Items, rates)
	if err == nil {
		var snap costSnapshot
		snap, err = snapshot(quotes, rates)
		if err == nil {
			q.TotalCostBreakdown = snap.total
			q.TotalMeters = snap.totalMeters
			q.LossMeters = snap.lossMeters
			for i := range q.Items {
				q.Items[i].CostBreakdown = snap.items[i]
			}
			return nil
		}
	}
	s.logger.Warn("cost snapshot skipped",
		slog.String("quotation_id", q.ID.String()),
		slog.Any("error", err))
	return nil
}

func newItems(quotationID uuid.UUID, reqs []ItemRequest, now time.Time) []Item {
	items := make([]Item, len(reqs))
	for i, r := range reqs {
		items[i] = Item{
			ID:             uuid.New(),
			QuotationID:    quotationID,
			SKUIndex:       i,
			ProductName:    strings.TrimSpace(r.ProductName),
			Quantity:       r.Quantity,
			UnitPrice:      r.UnitPrice,
			Specifications: r.Specifications,
			CreatedAt:      now,
		}
		if len(items[i].Specifications) == 0 {
			items[i].Specifications = json.RawMessage("{}")
		}
	}
	return items
}

// Get returns a quotation with items. Quotations of other users are reported
// as not found unless actor is an admin.
func (s *Service) Get(ctx context.Context, id uuid.UUID, actor rbac.Identity) (Quotation, error) {
	q, err := s.repo.Get(ctx, id)
	if err != nil {
		return Quotation{}, err
	}
	if !q.VisibleTo(actor.UserID, actor.IsAdmin()) {
		return Quotation{}, ErrNotFound
	}
	return q, nil
}

// List returns a page of quotations. Members only see their own.
func (s *Service) List(ctx context.Context, f ListFilter, actor rbac.Identity) ([]Quotation, int, error) {
	if !actor.IsAdmin() {
		f.UserID = actor.UserID
	}
	f.normalize()
	return s.repo.List(ctx, f)
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req UpdateRequest) (Quotation, error) {
	if err := s.validate.Struct(req); err != nil {
		return Quotation{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	q, err := s.repo.Get(ctx, id)
	if err != nil {
		return Quotation{}, err
	}
	previous := q.Status
	now := s.now().UTC()

	if req.Status != nil {
		next, err := NormalizeStatus(*req.Status)
		if err != nil {
			return Quotation{}, err
		}
		if !q.Status.CanTransition(next) {
			return Quotation{}, fmt.Errorf("%w: %s to %s", ErrInvalidStatus, q.Status, next)
		}
		if next != q.Status {
			switch next {
			case StatusApproved:
				q.ApprovedAt = &now
			case StatusRejected:
				q.RejectedAt = &now
			}
		}
		q.Status = next
	}
	if req.CustomerName != nil {
		q.CustomerName = strings.TrimSpace(*req.CustomerName)
	}
	if req.CustomerEmail != nil {
		q.CustomerEmail = strings.TrimSpace(*req.CustomerEmail)
	}
	if req.CustomerPhone != nil {
		q.CustomerPhone = req.CustomerPhone
	}
	if req.Notes != nil {
		q.Notes = req.Notes
	}
	if req.AdminNotes != nil {
		q.AdminNotes = req.AdminNotes
	}
	if req.ValidUntil != nil {
		q.ValidUntil = req.ValidUntil
	}

	replace := req.Items != nil
	if replace {
		if previous.Finalized() || q.Status.Finalized() {
			return Quotation{}, fmt.Errorf("%w: %s", ErrFinalized, previous)
		}
		q.Items = newItems(q.ID, *req.Items, now)
		if err := s.price(ctx, &q); err != nil {
			return Quotation{}, err
		}
	}

	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		if err := repo.Update(ctx, q); err != nil {
			return err
		}
		if replace {
			return repo.ReplaceItems(ctx, q.ID, q.Items)
		}
		return nil
	})
	if err != nil {
		return Quotation{}, fmt.Errorf("update quotation: %w", err)
	}

	s.metrics.QuotationWritten("update")
	if previous != q.Status {
		s.logger.Info("quotation status changed",
			slog.String("quotation_id", q.ID.String()),
			slog.String("from", string(previous)),
			slog.String("to", string(q.Status)))
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.metrics.QuotationWritten("delete")
	return nil
}

// ProcessingOptions derives the option flags from the first item.
func (s *Service) ProcessingOptions(ctx context.Context, id uuid.UUID, actor rbac.Identity) (ProcessingOptionsResponse, error) {
	q, err := s.Get(ctx, id, actor)
	if err != nil {
		return ProcessingOptionsResponse{}, err
	}
	opts, err := specsheet.ExtractProcessingOptions(q.Specs())
	if err != nil {
		return ProcessingOptionsResponse{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	resp := ProcessingOptionsResponse{QuotationID: q.ID.String(), ProcessingOptions: opts}
	if len(q.Items) > 0 {
		if product, err := specsheet.Parse(json.RawMessage(q.Items[0].Specifications)); err == nil {
			spec := product.Specification()
			resp.Specification = &spec
		}
	}
	return resp, nil
}

// CostBreakdown recomputes the cost of a stored quotation with current rates.
func (s *Service) CostBreakdown(ctx context.Context, id uuid.UUID) (CostBreakdownResponse, error) {
	q, err := s.repo.Get(ctx, id)
	if err != nil {
		return CostBreakdownResponse{}, err
	}
	products, err := parseSpecs(q.Items)
	if err != nil {
		return CostBreakdownResponse{}, err
	}
	rates, err := s.rates.Rates(ctx)
	if err != nil {
		return CostBreakdownResponse{}, fmt.Errorf("load rates: %w", err)
	}
	quotes, err := quoteItems(products, q.Items, rates)
	if err != nil {
		return CostBreakdownResponse{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	s.metrics.CostBreakdownComputed()
	return CostBreakdownResponse{
		QuotationID:     q.ID.String(),
		QuotationNumber: q.QuotationNumber,
		Status:          q.Status,
		SubtotalAmount:  q.SubtotalAmount,
		Cost:            pricing.Present(quotes, rates, q.SubtotalAmount),
	}, nil
}

// ReroundLegacy rewrites up to limit quotations whose stored amounts do not
// follow the current rounding rules and returns how many were fixed.
func (s *Service) ReroundLegacy(ctx context.Context, limit int) (int, error) {
	if limit <= 0 {
		return 0, nil
	}
	ids, err := s.repo.ListReroundCandidates(ctx, limit)
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}
	rates, err := s.rates.Rates(ctx)
	if err != nil {
		return 0, fmt.Errorf("load rates: %w", err)
	}

	fixed := 0
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return fixed, err
		}
		q, err := s.repo.Get(ctx, id)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return fixed, err
		}
		if !reround(&q, rates.ConsumptionTaxRate) {
			continue
		}
		err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
			if err := repo.Update(ctx, q); err != nil {
				return err
			}
			return repo.ReplaceItems(ctx, q.ID, q.Items)
		})
		if err != nil {
			return fixed, fmt.Errorf("reround %s: %w", q.QuotationNumber, err)
		}
		fixed++
		s.logger.Info("quotation rerounded",
			slog.String("quotation_id", q.ID.String()),
			slog.String("quotation_number", q.QuotationNumber),
			slog.Float64("total_amount", q.TotalAmount))
	}
	return fixed, nil
}
