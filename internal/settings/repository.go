package settings

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/packquote/packquote/internal/platform/db"
)

// Repository persists system settings.
type Repository interface {
	ListActive(ctx context.Context) ([]Setting, error)
	List(ctx context.Context, category string) ([]Setting, error)
	Get(ctx context.Context, category, key string) (Setting, error)
	Upsert(ctx context.Context, s Setting) (Setting, error)
}

type repository struct {
	db db.Querier
}

// NewRepository returns a pgx-backed Repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

const settingColumns = `id, category, key, value, value_type, COALESCE(unit, ''), COALESCE(description, ''),
	is_active, updated_by, effective_date, created_at, updated_at`

func (r *repository) ListActive(ctx context.Context) ([]Setting, error) {
	rows, err := r.db.Query(ctx, `SELECT `+settingColumns+`
		FROM system_settings
		WHERE is_active AND effective_date <= NOW()
		ORDER BY category, key`)
	if err != nil {
		return nil, fmt.Errorf("settings: list active: %w", err)
	}
	return collect(rows)
}

func (r *repository) List(ctx context.Context, category string) ([]Setting, error) {
	rows, err := r.db.Query(ctx, `SELECT `+settingColumns+`
		FROM system_settings
		WHERE ($1 = '' OR category = $1)
		ORDER BY category, key`, category)
	if err != nil {
		return nil, fmt.Errorf("settings: list: %w", err)
	}
	return collect(rows)
}

func (r *repository) Get(ctx context.Context, category, key string) (Setting, error) {
	row := r.db.QueryRow(ctx, `SELECT `+settingColumns+`
		FROM system_settings
		WHERE category = $1 AND key = $2`, category, key)
	s, err := scanSetting(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Setting{}, ErrNotFound
		}
		return Setting{}, fmt.Errorf("settings: get %s.%s: %w", category, key, err)
	}
	return s, nil
}

func (r *repository) Upsert(ctx context.Context, s Setting) (Setting, error) {
	row := r.db.QueryRow(ctx, `INSERT INTO system_settings
			(category, key, value, value_type, unit, description, is_active, updated_by)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''), $7, $8)
		ON CONFLICT (category, key) DO UPDATE SET
			value = EXCLUDED.value,
			value_type = EXCLUDED.value_type,
			unit = COALESCE(EXCLUDED.unit, system_settings.unit),
			description = COALESCE(EXCLUDED.description, system_settings.description),
			is_active = EXCLUDED.is_active,
			updated_by = EXCLUDED.updated_by,
			updated_at = NOW()
		RETURNING `+settingColumns,
		s.Category, s.Key, []byte(s.Value), s.ValueType, s.Unit, s.Description, s.IsActive, s.UpdatedBy)
	saved, err := scanSetting(row)
	if err != nil {
		return Setting{}, fmt.Errorf("settings: upsert %s.%s: %w", s.Category, s.Key, err)
	}
	return saved, nil
}

func collect(rows pgx.Rows) ([]Setting, error) {
	defer rows.Close()
	var out []Setting
	for rows.Next() {
		s, err := scanSetting(rows)
		if err != nil {
			return nil, fmt.Errorf("settings: scan: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("settings: rows: %w", err)
	}
	return out, nil
}

func scanSetting(row pgx.Row) (Setting, error) {
	var s Setting
	var value []byte
	err := row.Scan(&s.ID, &s.Category, &s.Key, &value, &s.ValueType, &s.Unit, &s.Description,
		&s.IsActive, &s.UpdatedBy, &s.EffectiveDate, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return Setting{}, err
	}
	s.Value = value
	return s, nil
}
