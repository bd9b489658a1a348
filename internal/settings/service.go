package settings

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/packquote/packquote/internal/pricing"
)

// Service exposes settings administration.
type Service struct {
	repo   Repository
	cache  *Cache
	logger *slog.Logger
}

// NewService wires the service.
func NewService(repo Repository, cache *Cache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, cache: cache, logger: logger}
}

// UpdateRequest is the body of PUT /admin/settings/{category}/{key}.
type UpdateRequest struct {
	Value       json.RawMessage `json:"value"`
	Description string          `json:"description"`
	IsActive    *bool           `json:"isActive"`
}

// List returns settings, optionally filtered by category.
func (s *Service) List(ctx context.Context, category string) ([]Setting, error) {
	return s.repo.List(ctx, strings.TrimSpace(category))
}

// Rates returns the rates currently in effect.
func (s *Service) Rates(ctx context.Context) (pricing.Rates, error) {
	return s.cache.Rates(ctx)
}

// Update validates and stores one known setting, then invalidates the cache.
func (s *Service) Update(ctx context.Context, category, key string, req UpdateRequest, updatedBy string) (Setting, error) {
	b, ok := lookup(category, key)
	if !ok {
		return Setting{}, fmt.Errorf("%w: %s.%s", ErrNotFound, category, key)
	}
	candidate := Setting{Category: category, Key: key, Value: req.Value}
	v, err := candidate.Number()
	if err != nil {
		return Setting{}, err
	}
	if err := b.validate(v); err != nil {
		return Setting{}, err
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	desc := req.Description
	if desc == "" {
		desc = b.description
	}
	var by *string
	if updatedBy != "" {
		by = &updatedBy
	}

	saved, err := s.repo.Upsert(ctx, Setting{
		Category:    category,
		Key:         key,
		Value:       NumberValue(v),
		ValueType:   "number",
		Unit:        b.unit,
		Description: desc,
		IsActive:    active,
		UpdatedBy:   by,
	})
	if err != nil {
		return Setting{}, err
	}

	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Error("settings cache invalidate", slog.Any("error", err))
		return saved, err
	}
	s.logger.Info("setting updated",
		slog.String("category", category),
		slog.String("key", key),
		slog.Float64("value", v),
		slog.String("updated_by", updatedBy))
	return saved, nil
}

// Seed inserts the default value for every known key that is missing.
func (s *Service) Seed(ctx context.Context) (int, error) {
	inserted := 0
	for _, def := range Defaults() {
		if _, err := s.repo.Get(ctx, def.Category, def.Key); err == nil {
			continue
		} else if !isNotFound(err) {
			return inserted, err
		}
		if _, err := s.repo.Upsert(ctx, def); err != nil {
			return inserted, err
		}
		inserted++
	}
	if inserted > 0 {
		if err := s.cache.Invalidate(ctx); err != nil {
			return inserted, err
		}
	}
	return inserted, nil
}
