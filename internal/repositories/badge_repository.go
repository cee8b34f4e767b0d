package repositories

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/laurelhq/laurel/internal/models"
	"github.com/laurelhq/laurel/pkg/batch"
)

// BadgeRepository handles database operations for badge definitions and
// awards
type BadgeRepository struct {
	db *sql.DB
}

// NewBadgeRepository creates a new BadgeRepository
func NewBadgeRepository(db *sql.DB) *BadgeRepository {
	return &BadgeRepository{db: db}
}

// UpsertDefinitions inserts badge definitions update-on-conflict so a
// reseeded catalog refreshes names, descriptions and variant text
func (r *BadgeRepository) UpsertDefinitions(badges []*models.Badge) (int64, error) {
	var affected int64

	for _, chunk := range batch.Chunks(badges, batch.DefaultSize) {
		query := `
			INSERT INTO badges (slug, name, description, variants, created_at, updated_at)
			VALUES ` + batch.Placeholders(len(chunk), 6) + `
			ON CONFLICT(slug) DO UPDATE SET
				name = EXCLUDED.name,
				description = EXCLUDED.description,
				variants = EXCLUDED.variants,
				updated_at = CURRENT_TIMESTAMP
		`

		args := make([]interface{}, 0, len(chunk)*6)
		for _, b := range chunk {
			variants, err := json.Marshal(b.Variants)
			if err != nil {
				return affected, fmt.Errorf("failed to encode variants for badge %s: %w", b.Slug, err)
			}
			args = append(args, b.Slug, b.Name, b.Description, string(variants), b.CreatedAt, b.UpdatedAt)
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

// GetBySlug retrieves a badge definition by slug
func (r *BadgeRepository) GetBySlug(slug string) (*models.Badge, error) {
	query := `
		SELECT slug, name, description, variants, created_at, updated_at
		FROM badges WHERE slug = ?
	`

	row := r.db.QueryRow(query, slug)
	badge, err := scanBadge(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return badge, nil
}

// List retrieves all badge definitions ordered by slug
func (r *BadgeRepository) List() ([]*models.Badge, error) {
	query := `
		SELECT slug, name, description, variants, created_at, updated_at
		FROM badges ORDER BY slug ASC
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var badges []*models.Badge
	for rows.Next() {
		badge, err := scanBadge(rows)
		if err != nil {
			return nil, err
		}
		badges = append(badges, badge)
	}

	return badges, rows.Err()
}

// InsertAwards writes award candidates ignore-on-conflict: an already
// held (badge, contributor, variant) triple is a silent no-op, which is
// what makes awarding append-only. The affected count is the number of
// genuinely new awards.
func (r *BadgeRepository) InsertAwards(awards []*models.ContributorBadge) (int64, error) {
	var affected int64

	for _, chunk := range batch.Chunks(awards, batch.DefaultSize) {
		query := `
			INSERT INTO contributor_badges (id, badge_slug, username, variant, achieved_at, metadata, created_at)
			VALUES ` + batch.Placeholders(len(chunk), 7) + `
			ON CONFLICT(id) DO NOTHING
		`

		args := make([]interface{}, 0, len(chunk)*7)
		for _, a := range chunk {
			metadata, err := encodeMetadata(a.Metadata)
			if err != nil {
				return affected, fmt.Errorf("failed to encode metadata for award %s: %w", a.ID, err)
			}
			args = append(args, a.ID, a.BadgeSlug, a.Username, a.Variant, a.AchievedAt, metadata, a.CreatedAt)
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

// ListAwards retrieves awards for a badge; an empty slug returns every
// award (used by the export snapshot)
func (r *BadgeRepository) ListAwards(badgeSlug string) ([]*models.ContributorBadge, error) {
	query := `
		SELECT id, badge_slug, username, variant, achieved_at, metadata, created_at
		FROM contributor_badges
	`
	var args []interface{}

	if badgeSlug != "" {
		query += ` WHERE badge_slug = ?`
		args = append(args, badgeSlug)
	}
	query += ` ORDER BY badge_slug ASC, username ASC, variant ASC`

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectAwards(rows)
}

// ListAwardsByUsername retrieves all awards held by one contributor
func (r *BadgeRepository) ListAwardsByUsername(username string) ([]*models.ContributorBadge, error) {
	query := `
		SELECT id, badge_slug, username, variant, achieved_at, metadata, created_at
		FROM contributor_badges
		WHERE username = ?
		ORDER BY badge_slug ASC, variant ASC
	`

	rows, err := r.db.Query(query, username)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectAwards(rows)
}

// AwardCounts returns the number of awards held per contributor
func (r *BadgeRepository) AwardCounts() (map[string]int, error) {
	query := `
		SELECT username, COUNT(*)
		FROM contributor_badges
		GROUP BY username
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var username string
		var count int
		if err := rows.Scan(&username, &count); err != nil {
			return nil, err
		}
		counts[username] = count
	}

	return counts, rows.Err()
}

func scanBadge(row rowScanner) (*models.Badge, error) {
	var b models.Badge
	var variants string

	err := row.Scan(&b.Slug, &b.Name, &b.Description, &variants, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(variants), &b.Variants); err != nil {
		return nil, fmt.Errorf("failed to decode variants for badge %s: %w", b.Slug, err)
	}

	return &b, nil
}

func collectAwards(rows *sql.Rows) ([]*models.ContributorBadge, error) {
	var awards []*models.ContributorBadge
	for rows.Next() {
		var a models.ContributorBadge
		var metadata sql.NullString

		err := rows.Scan(&a.ID, &a.BadgeSlug, &a.Username, &a.Variant, &a.AchievedAt, &metadata, &a.CreatedAt)
		if err != nil {
			return nil, err
		}

		if metadata.Valid && metadata.String != "" {
			if err := json.Unmarshal([]byte(metadata.String), &a.Metadata); err != nil {
				return nil, fmt.Errorf("failed to decode metadata for award %s: %w", a.ID, err)
			}
		}

		awards = append(awards, &a)
	}

	return awards, rows.Err()
}
