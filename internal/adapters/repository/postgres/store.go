package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/okian/pmwiki/internal/adapters/repository"
	"github.com/okian/pmwiki/internal/domain/model"
)

// Store implements repository.Store using PostgreSQL.
type Store struct {
	pool *Pool
}

// NewStore creates a new Store.
func NewStore(pool *Pool) *Store {
	return &Store{pool: pool}
}

// Compile-time interface check.
var _ repository.Store = (*Store)(nil)

// Close closes the underlying pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

const deviceColumns = `
	id::text, status, category, manufacturer, model_name, slug, image_url, sub_model,
	one_line_summary, original_price, used_price_s, used_price_a, used_price_min,
	used_price_max, battery_replace_cost, tire_size, suspension_type, battery_voltage,
	weight, range_real_80kg, chronic_defects, used_checklist, affiliate_links,
	motor_power_peak, battery_capacity, range_official, max_speed, brake_type,
	is_discontinued, release_year, dimensions, pros, cons, charger_spec,
	bluetooth_enabled, battery_check_method, safety_rules, updated_at`

const summaryColumns = `id::text, slug, model_name, manufacturer, used_price_a, range_real_80kg, weight`

// ListPublished implements repository.DeviceStore.
func (s *Store) ListPublished(ctx context.Context, filter repository.ListFilter) ([]*model.Device, error) {
	if filter.Category != "" && !filter.Category.Valid() {
		return nil, fmt.Errorf("%w: category %q", repository.ErrInvalidInput, filter.Category)
	}
	query := `
		SELECT ` + deviceColumns + `
		FROM pm_models
		WHERE status = 'published' AND ($1::text = '' OR category = $1::text)
		ORDER BY release_year DESC NULLS LAST, used_price_a ASC NULLS LAST, slug ASC
	`
	rows, err := s.pool.Query(ctx, query, string(filter.Category))
	if err != nil {
		return nil, fmt.Errorf("list published devices: %w", err)
	}
	return collectDevices(rows)
}

// GetBySlug implements repository.DeviceStore.
func (s *Store) GetBySlug(ctx context.Context, slug string) (*model.Device, error) {
	query := `
		SELECT ` + deviceColumns + `
		FROM pm_models
		WHERE slug = $1 AND status = 'published'
	`
	d, err := scanDevice(s.pool.QueryRow(ctx, query, slug))
	if err != nil {
		if isNotFoundError(err) {
			return nil, fmt.Errorf("device %q: %w", slug, repository.ErrNotFound)
		}
		return nil, fmt.Errorf("get device by slug: %w", err)
	}
	return d, nil
}

// GetBySlugs implements repository.DeviceStore.
func (s *Store) GetBySlugs(ctx context.Context, slugs []string) ([]*model.Device, error) {
	if len(slugs) == 0 {
		return []*model.Device{}, nil
	}
	query := `
		SELECT ` + deviceColumns + `
		FROM pm_models
		WHERE status = 'published' AND slug = ANY($1)
	`
	rows, err := s.pool.Query(ctx, query, slugs)
	if err != nil {
		return nil, fmt.Errorf("get devices by slugs: %w", err)
	}
	return collectDevices(rows)
}

// Similar implements repository.DeviceStore.
func (s *Store) Similar(ctx context.Context, q repository.SimilarQuery) ([]model.Summary, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = repository.SimilarLimit
	}
	var (
		query string
		args  []any
	)
	switch q.Kind {
	case repository.SimilarByPrice:
		query = `
			SELECT ` + summaryColumns + `
			FROM pm_models
			WHERE status = 'published' AND id::text <> $1
			  AND used_price_a BETWEEN $2 AND $3
			ORDER BY used_price_a ASC, slug ASC
			LIMIT $4
		`
		args = []any{q.ExcludeID, int64(math.Max(0, q.Value-repository.UsedPriceWindow)), int64(q.Value + repository.UsedPriceWindow), limit}
	case repository.SimilarByRange:
		query = `
			SELECT ` + summaryColumns + `
			FROM pm_models
			WHERE status = 'published' AND id::text <> $1
			  AND range_real_80kg BETWEEN $2 AND $3
			ORDER BY range_real_80kg ASC, slug ASC
			LIMIT $4
		`
		args = []any{q.ExcludeID, math.Max(0, q.Value-repository.RangeWindow), q.Value + repository.RangeWindow, limit}
	case repository.SimilarByWeight:
		query = `
			SELECT ` + summaryColumns + `
			FROM pm_models
			WHERE status = 'published' AND id::text <> $1
			  AND weight < $2
			ORDER BY weight ASC, slug ASC
			LIMIT $3
		`
		args = []any{q.ExcludeID, q.Value, limit}
	default:
		return nil, fmt.Errorf("%w: similar kind %q", repository.ErrInvalidInput, q.Kind)
	}
	if q.Value <= 0 || math.IsNaN(q.Value) {
		return []model.Summary{}, nil
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("similar devices by %s: %w", q.Kind, err)
	}
	defer rows.Close()

	out := make([]model.Summary, 0, limit)
	for rows.Next() {
		var m model.Summary
		if err := rows.Scan(&m.ID, &m.Slug, &m.ModelName, &m.Manufacturer, &m.UsedPriceA, &m.RangeReal80kg, &m.Weight); err != nil {
			return nil, fmt.Errorf("scan summary: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate summaries: %w", err)
	}
	return out, nil
}

// UpsertDevice implements repository.DeviceStore. The id of an existing
// slug is kept.
func (s *Store) UpsertDevice(ctx context.Context, d *model.Device) error {
	if d == nil {
		return fmt.Errorf("%w: nil device", repository.ErrInvalidInput)
	}
	c := d.Clone()
	if err := model.NormalizeDevice(c); err != nil {
		return fmt.Errorf("%w: %w", repository.ErrInvalidInput, err)
	}
	defects, err := json.Marshal(nonNil(c.ChronicDefects))
	if err != nil {
		return fmt.Errorf("encode chronic_defects: %w", err)
	}
	checklist, err := json.Marshal(nonNil(c.UsedChecklist))
	if err != nil {
		return fmt.Errorf("encode used_checklist: %w", err)
	}
	links, err := json.Marshal(nonNil(c.AffiliateLinks))
	if err != nil {
		return fmt.Errorf("encode affiliate_links: %w", err)
	}

	query := `
		INSERT INTO pm_models (
			id, status, category, manufacturer, model_name, slug, image_url, sub_model,
			one_line_summary, original_price, used_price_s, used_price_a, used_price_min,
			used_price_max, battery_replace_cost, tire_size, suspension_type, battery_voltage,
			weight, range_real_80kg, chronic_defects, used_checklist, affiliate_links,
			motor_power_peak, battery_capacity, range_official, max_speed, brake_type,
			is_discontinued, release_year, dimensions, pros, cons, charger_spec,
			bluetooth_enabled, battery_check_method, safety_rules, updated_at
		) VALUES (
			COALESCE(NULLIF($1::text, '')::uuid, gen_random_uuid()), $2, $3, $4, $5, $6, $7, $8,
			$9, $10, $11, $12, $13,
			$14, $15, $16, $17, $18,
			$19, $20, $21::jsonb, $22::jsonb, $23::jsonb,
			$24, $25, $26, $27, $28,
			$29, $30, $31, $32::text[], $33::text[], $34,
			$35, $36, $37::text[], COALESCE($38::timestamptz, now())
		)
		ON CONFLICT (slug) DO UPDATE SET
			status = EXCLUDED.status,
			category = EXCLUDED.category,
			manufacturer = EXCLUDED.manufacturer,
			model_name = EXCLUDED.model_name,
			image_url = EXCLUDED.image_url,
			sub_model = EXCLUDED.sub_model,
			one_line_summary = EXCLUDED.one_line_summary,
			original_price = EXCLUDED.original_price,
			used_price_s = EXCLUDED.used_price_s,
			used_price_a = EXCLUDED.used_price_a,
			used_price_min = EXCLUDED.used_price_min,
			used_price_max = EXCLUDED.used_price_max,
			battery_replace_cost = EXCLUDED.battery_replace_cost,
			tire_size = EXCLUDED.tire_size,
			suspension_type = EXCLUDED.suspension_type,
			battery_voltage = EXCLUDED.battery_voltage,
			weight = EXCLUDED.weight,
			range_real_80kg = EXCLUDED.range_real_80kg,
			chronic_defects = EXCLUDED.chronic_defects,
			used_checklist = EXCLUDED.used_checklist,
			affiliate_links = EXCLUDED.affiliate_links,
			motor_power_peak = EXCLUDED.motor_power_peak,
			battery_capacity = EXCLUDED.battery_capacity,
			range_official = EXCLUDED.range_official,
			max_speed = EXCLUDED.max_speed,
			brake_type = EXCLUDED.brake_type,
			is_discontinued = EXCLUDED.is_discontinued,
			release_year = EXCLUDED.release_year,
			dimensions = EXCLUDED.dimensions,
			pros = EXCLUDED.pros,
			cons = EXCLUDED.cons,
			charger_spec = EXCLUDED.charger_spec,
			bluetooth_enabled = EXCLUDED.bluetooth_enabled,
			battery_check_method = EXCLUDED.battery_check_method,
			safety_rules = EXCLUDED.safety_rules,
			updated_at = EXCLUDED.updated_at
		RETURNING id::text, updated_at
	`
	err = s.pool.QueryRow(ctx, query,
		c.ID, string(c.Status), string(c.Category), c.Manufacturer, c.ModelName, c.Slug, c.ImageURL, c.SubModel,
		c.OneLineSummary, c.OriginalPrice, c.UsedPriceS, c.UsedPriceA, c.UsedPriceMin,
		c.UsedPriceMax, c.BatteryReplaceCost, c.TireSize, c.SuspensionType, c.BatteryVoltage,
		c.Weight, c.RangeReal80kg, string(defects), string(checklist), string(links),
		c.MotorPowerPeak, c.BatteryCapacity, c.RangeOfficial, c.MaxSpeed, c.BrakeType,
		c.IsDiscontinued, c.ReleaseYear, c.Dimensions, nonNil(c.Pros), nonNil(c.Cons), c.ChargerSpec,
		c.BluetoothEnabled, c.BatteryCheckMethod, nonNil(c.SafetyRules), nullTime(c.UpdatedAt),
	).Scan(&d.ID, &d.UpdatedAt)
	if err != nil {
		if isConstraintError(err) {
			return fmt.Errorf("%w: upsert device %s: %w", repository.ErrInvalidInput, c.Slug, err)
		}
		return fmt.Errorf("upsert device %s: %w", c.Slug, err)
	}
	return nil
}

// ListPosts implements repository.BlogStore.
func (s *Store) ListPosts(ctx context.Context) ([]*model.BlogPost, error) {
	query := `
		SELECT id::text, title, slug, content, thumbnail_url, related_models, created_at
		FROM blog_posts
		ORDER BY created_at DESC, slug ASC
	`
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	out := make([]*model.BlogPost, 0)
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate posts: %w", err)
	}
	return out, nil
}

// GetPost implements repository.BlogStore.
func (s *Store) GetPost(ctx context.Context, slug string) (*model.BlogPost, error) {
	query := `
		SELECT id::text, title, slug, content, thumbnail_url, related_models, created_at
		FROM blog_posts
		WHERE slug = $1
	`
	p, err := scanPost(s.pool.QueryRow(ctx, query, slug))
	if err != nil {
		if isNotFoundError(err) {
			return nil, fmt.Errorf("post %q: %w", slug, repository.ErrNotFound)
		}
		return nil, fmt.Errorf("get post: %w", err)
	}
	return p, nil
}

// UpsertPost implements repository.BlogStore.
func (s *Store) UpsertPost(ctx context.Context, p *model.BlogPost) error {
	if p == nil {
		return fmt.Errorf("%w: nil post", repository.ErrInvalidInput)
	}
	c := p.Clone()
	if err := model.NormalizePost(c); err != nil {
		return fmt.Errorf("%w: %w", repository.ErrInvalidInput, err)
	}
	query := `
		INSERT INTO blog_posts (id, slug, title, content, thumbnail_url, related_models, created_at)
		VALUES (COALESCE(NULLIF($1::text, '')::uuid, gen_random_uuid()), $2, $3, $4, $5, $6::text[], COALESCE($7::timestamptz, now()))
		ON CONFLICT (slug) DO UPDATE SET
			title = EXCLUDED.title,
			content = EXCLUDED.content,
			thumbnail_url = EXCLUDED.thumbnail_url,
			related_models = EXCLUDED.related_models,
			created_at = EXCLUDED.created_at
		RETURNING id::text, created_at
	`
	err := s.pool.QueryRow(ctx, query,
		c.ID, c.Slug, c.Title, c.Content, c.ThumbnailURL, nonNil(c.RelatedModels), nullTime(c.CreatedAt),
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return fmt.Errorf("upsert post %s: %w", c.Slug, err)
	}
	return nil
}

func collectDevices(rows pgx.Rows) ([]*model.Device, error) {
	defer rows.Close()
	out := make([]*model.Device, 0)
	for rows.Next() {
		d, err := scanDevice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan device: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate devices: %w", err)
	}
	return out, nil
}

// scanDevice scans a single row selected with deviceColumns.
func scanDevice(row pgx.Row) (*model.Device, error) {
	var (
		d                         model.Device
		status, category          string
		defects, checklist, links []byte
	)
	err := row.Scan(
		&d.ID, &status, &category, &d.Manufacturer, &d.ModelName, &d.Slug, &d.ImageURL, &d.SubModel,
		&d.OneLineSummary, &d.OriginalPrice, &d.UsedPriceS, &d.UsedPriceA, &d.UsedPriceMin,
		&d.UsedPriceMax, &d.BatteryReplaceCost, &d.TireSize, &d.SuspensionType, &d.BatteryVoltage,
		&d.Weight, &d.RangeReal80kg, &defects, &checklist, &links,
		&d.MotorPowerPeak, &d.BatteryCapacity, &d.RangeOfficial, &d.MaxSpeed, &d.BrakeType,
		&d.IsDiscontinued, &d.ReleaseYear, &d.Dimensions, &d.Pros, &d.Cons, &d.ChargerSpec,
		&d.BluetoothEnabled, &d.BatteryCheckMethod, &d.SafetyRules, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	d.Status = model.Status(status)
	d.Category = model.Category(category)
	if err := json.Unmarshal(defects, &d.ChronicDefects); err != nil {
		return nil, fmt.Errorf("decode chronic_defects: %w", err)
	}
	if err := json.Unmarshal(checklist, &d.UsedChecklist); err != nil {
		return nil, fmt.Errorf("decode used_checklist: %w", err)
	}
	if err := json.Unmarshal(links, &d.AffiliateLinks); err != nil {
		return nil, fmt.Errorf("decode affiliate_links: %w", err)
	}
	return &d, nil
}

func scanPost(row pgx.Row) (*model.BlogPost, error) {
	var p model.BlogPost
	if err := row.Scan(&p.ID, &p.Title, &p.Slug, &p.Content, &p.ThumbnailURL, &p.RelatedModels, &p.CreatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
