package repositories

import (
	"database/sql"

	"github.com/laurelhq/laurel/internal/models"
	"github.com/laurelhq/laurel/pkg/batch"
)

// AggregateRepository handles database operations for global and
// per-contributor aggregate values
type AggregateRepository struct {
	db *sql.DB
}

// NewAggregateRepository creates a new AggregateRepository
func NewAggregateRepository(db *sql.DB) *AggregateRepository {
	return &AggregateRepository{db: db}
}

// UpsertDefinitions inserts aggregate definitions update-on-conflict on
// name and description. The value columns are not touched, so reseeding
// definitions never clobbers a computed value.
func (r *AggregateRepository) UpsertDefinitions(aggregates []*models.Aggregate) (int64, error) {
	var affected int64

	for _, chunk := range batch.Chunks(aggregates, batch.DefaultSize) {
		query := `
			INSERT INTO aggregates (slug, name, description, created_at, updated_at)
			VALUES ` + batch.Placeholders(len(chunk), 5) + `
			ON CONFLICT(slug) DO UPDATE SET
				name = EXCLUDED.name,
				description = EXCLUDED.description,
				updated_at = CURRENT_TIMESTAMP
		`

		args := make([]interface{}, 0, len(chunk)*5)
		for _, a := range chunk {
			args = append(args, a.Slug, a.Name, a.Description, a.CreatedAt, a.UpdatedAt)
		}

		result, err := r.db.Exec(query, args...)
		if err != nil {
			return affected, err
		}

		n, err := result.RowsAffected()
		if err != nil {
			return affected, err
		}
		affected += n
	}

	return affected, nil
}

// SetGlobalValue writes the current value of a global aggregate,
// replacing any prior value. Callers skip the call entirely when there
// is nothing to write, so an existing value is never nulled out.
func (r *AggregateRepository) SetGlobalValue(slug string, value models.AggregateValue) error {
	// The insert arm only matters when the definitions stage has not
	// seeded this slug yet; the slug doubles as a placeholder name until
	// it does.
	query := `
		INSERT INTO aggregates (slug, name, value_kind, value, created_at, updated_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		ON CONFLICT(slug) DO UPDATE SET
			value_kind = EXCLUDED.value_kind,
			value = EXCLUDED.value,
			updated_at = CURRENT_TIMESTAMP
	`

	_, err := r.db.Exec(query, slug, slug, value.Kind, value.Encode())
	return err
}

// GetBySlug retrieves a global aggregate by slug
func (r *AggregateRepository) GetBySlug(slug string) (*models.Aggregate, error) {
	query := `
		SELECT slug, name, description, value_kind, value, created_at, updated_at
		FROM aggregates WHERE slug = ?
	`

	row := r.db.QueryRow(query, slug)
	aggregate, err := scanAggregate(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return aggregate, nil
}

// List retrieves all global aggregates ordered by slug
func (r *AggregateRepository) List() ([]*models.Aggregate, error) {
	query := `
		SELECT slug, name, description, value_kind, value, created_at, updated_at
		FROM aggregates ORDER BY slug ASC
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var aggregates []*models.Aggregate
	for rows.Next() {
		aggregate, err := scanAggregate(rows)
		if err != nil {
			return nil, err
		}
		aggregates = append(aggregates, aggregate)
	}

	return aggregates, rows.Err()
}

// UpsertContributorValues writes per-contributor aggregate values
// update-on-conflict: recomputation replaces the prior value, no history
// is kept
func (r *AggregateRepository) UpsertContributorValues(values []*models.ContributorAggregate) (int64, error) {
	var affected int64

	for _, chunk := range batch.Chunks(values, batch.DefaultSize) {
		query := `
			INSERT INTO contributor_aggregates (aggregate_slug, username, value_kind, value, created_at, updated_at)
			VALUES ` + batch.Placeholders(len(chunk), 6) + `
			ON CONFLICT(aggregate_slug, username) DO UPDATE SET
				value_kind = EXCLUDED.value_kind,
				value = EXCLUDED.value,
				updated_at = CURRENT_TIMESTAMP
		`

		args := make([]interface{}, 0, len(chunk)*6)
		for _, v := range chunk {
			args = append(args, v.AggregateSlug, v.Username, v.Value.Kind, v.Value.Encode(), v.CreatedAt, v.UpdatedAt)
		}

		result, err := r.db.Exec(query, args...)
		if err != nil {
			return affected, err
		}

		n, err := result.RowsAffected()
		if err != nil {
			return affected, err
		}
		affected += n
	}

	return affected, nil
}

// ListContributorValues retrieves all contributor values for an
// aggregate; an empty slug returns every value (used by the export
// snapshot)
func (r *AggregateRepository) ListContributorValues(slug string) ([]*models.ContributorAggregate, error) {
	query := `
		SELECT aggregate_slug, username, value_kind, value, created_at, updated_at
		FROM contributor_aggregates
	`
	var args []interface{}

	if slug != "" {
		query += ` WHERE aggregate_slug = ?`
		args = append(args, slug)
	}
	query += ` ORDER BY aggregate_slug ASC, username ASC`

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var values []*models.ContributorAggregate
	for rows.Next() {
		var v models.ContributorAggregate
		var kind models.ValueKind
		var raw string
		if err := rows.Scan(&v.AggregateSlug, &v.Username, &kind, &raw, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, err
		}
		value, err := models.DecodeAggregateValue(kind, raw)
		if err != nil {
			return nil, err
		}
		v.Value = value
		values = append(values, &v)
	}

	return values, rows.Err()
}

// GetContributorValue retrieves one contributor's value for an aggregate
func (r *AggregateRepository) GetContributorValue(slug, username string) (*models.ContributorAggregate, error) {
	query := `
		SELECT aggregate_slug, username, value_kind, value, created_at, updated_at
		FROM contributor_aggregates
		WHERE aggregate_slug = ? AND username = ?
	`

	var v models.ContributorAggregate
	var kind models.ValueKind
	var raw string
	err := r.db.QueryRow(query, slug, username).Scan(
		&v.AggregateSlug, &v.Username, &kind, &raw, &v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	value, err := models.DecodeAggregateValue(kind, raw)
	if err != nil {
		return nil, err
	}
	v.Value = value

	return &v, nil
}

// ListContributorValuesByUsername retrieves all aggregate values for one
// contributor
func (r *AggregateRepository) ListContributorValuesByUsername(username string) ([]*models.ContributorAggregate, error) {
	query := `
		SELECT aggregate_slug, username, value_kind, value, created_at, updated_at
		FROM contributor_aggregates
		WHERE username = ?
		ORDER BY aggregate_slug ASC
	`

	rows, err := r.db.Query(query, username)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var values []*models.ContributorAggregate
	for rows.Next() {
		var v models.ContributorAggregate
		var kind models.ValueKind
		var raw string
		if err := rows.Scan(&v.AggregateSlug, &v.Username, &kind, &raw, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, err
		}
		value, err := models.DecodeAggregateValue(kind, raw)
		if err != nil {
			return nil, err
		}
		v.Value = value
		values = append(values, &v)
	}

	return values, rows.Err()
}

func scanAggregate(row rowScanner) (*models.Aggregate, error) {
	var a models.Aggregate
	var kind sql.NullString
	var raw sql.NullString

	err := row.Scan(&a.Slug, &a.Name, &a.Description, &kind, &raw, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if kind.Valid && raw.Valid {
		value, err := models.DecodeAggregateValue(models.ValueKind(kind.String), raw.String)
		if err != nil {
			return nil, err
		}
		a.Value = &value
	}

	return &a, nil
}
