package repositories

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/laurelhq/laurel/internal/models"
	"github.com/laurelhq/laurel/pkg/batch"
)

// ActivityRepository handles database operations for activities
type ActivityRepository struct {
	db *sql.DB
}

// NewActivityRepository creates a new ActivityRepository
func NewActivityRepository(db *sql.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// UpsertBatch inserts activities update-on-conflict: re-ingesting a slug
// overwrites the mutable fields, including the kind, so a re-classified
// event is never silently lost. Returns the affected row count.
func (r *ActivityRepository) UpsertBatch(activities []*models.Activity) (int64, error) {
	var affected int64

	for _, chunk := range batch.Chunks(activities, batch.DefaultSize) {
		query := `
			INSERT INTO activities (slug, username, kind, title, occurred_at, link, text, points, metadata, created_at, updated_at)
			VALUES ` + batch.Placeholders(len(chunk), 11) + `
			ON CONFLICT(slug) DO UPDATE SET
				username = EXCLUDED.username,
				kind = EXCLUDED.kind,
				title = EXCLUDED.title,
				occurred_at = EXCLUDED.occurred_at,
				link = EXCLUDED.link,
				text = EXCLUDED.text,
				points = EXCLUDED.points,
				metadata = EXCLUDED.metadata,
				updated_at = CURRENT_TIMESTAMP
		`

		args := make([]interface{}, 0, len(chunk)*11)
		for _, a := range chunk {
			metadata, err := encodeMetadata(a.Metadata)
			if err != nil {
				return affected, fmt.Errorf("failed to encode metadata for activity %s: %w", a.Slug, err)
			}
			args = append(args, a.Slug, a.Username, a.Kind, a.Title, a.OccurredAt, a.Link, a.Text, a.Points, metadata, a.CreatedAt, a.UpdatedAt)
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

// GetBySlug retrieves an activity by slug
func (r *ActivityRepository) GetBySlug(slug string) (*models.Activity, error) {
	query := selectActivity + ` WHERE slug = ?`

	row := r.db.QueryRow(query, slug)
	activity, err := scanActivity(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return activity, nil
}

// ListByKind retrieves all activities of a kind ordered by occurrence
func (r *ActivityRepository) ListByKind(kind models.ActivityKind) ([]*models.Activity, error) {
	query := selectActivity + ` WHERE kind = ? ORDER BY occurred_at ASC`

	rows, err := r.db.Query(query, kind)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectActivities(rows)
}

// List retrieves recent activities with optional kind and username
// filters; limit <= 0 means no limit (used by the export snapshot)
func (r *ActivityRepository) List(kind models.ActivityKind, username string, limit int) ([]*models.Activity, error) {
	query := selectActivity + ` WHERE 1=1`
	var args []interface{}

	if kind != "" {
		query += ` AND kind = ?`
		args = append(args, kind)
	}
	if username != "" {
		query += ` AND username = ?`
		args = append(args, username)
	}

	query += ` ORDER BY occurred_at DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectActivities(rows)
}

// PointTotal represents a contributor's total activity count and points
type PointTotal struct {
	Username   string `json:"username"`
	Activities int    `json:"activities"`
	Points     int    `json:"points"`
}

// PointTotals returns per-contributor activity and point totals, highest
// points first
func (r *ActivityRepository) PointTotals() ([]*PointTotal, error) {
	query := `
		SELECT username, COUNT(*), COALESCE(SUM(points), 0)
		FROM activities
		GROUP BY username
		ORDER BY COALESCE(SUM(points), 0) DESC, username ASC
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var totals []*PointTotal
	for rows.Next() {
		var t PointTotal
		if err := rows.Scan(&t.Username, &t.Activities, &t.Points); err != nil {
			return nil, err
		}
		totals = append(totals, &t)
	}

	return totals, rows.Err()
}

// KindCounts returns, per contributor, the count of activities of each
// kind
func (r *ActivityRepository) KindCounts() (map[string]map[models.ActivityKind]int, error) {
	query := `
		SELECT username, kind, COUNT(*)
		FROM activities
		GROUP BY username, kind
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]map[models.ActivityKind]int)
	for rows.Next() {
		var username string
		var kind models.ActivityKind
		var count int
		if err := rows.Scan(&username, &kind, &count); err != nil {
			return nil, err
		}
		if counts[username] == nil {
			counts[username] = make(map[models.ActivityKind]int)
		}
		counts[username][kind] = count
	}

	return counts, rows.Err()
}

const selectActivity = `
	SELECT slug, username, kind, title, occurred_at, link, text, points, metadata, created_at, updated_at
	FROM activities
`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanActivity(row rowScanner) (*models.Activity, error) {
	var a models.Activity
	var metadata sql.NullString

	err := row.Scan(
		&a.Slug, &a.Username, &a.Kind, &a.Title, &a.OccurredAt,
		&a.Link, &a.Text, &a.Points, &metadata, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if metadata.Valid && metadata.String != "" {
		if err := json.Unmarshal([]byte(metadata.String), &a.Metadata); err != nil {
			return nil, fmt.Errorf("failed to decode metadata for activity %s: %w", a.Slug, err)
		}
	}

	return &a, nil
}

func collectActivities(rows *sql.Rows) ([]*models.Activity, error) {
	var activities []*models.Activity
	for rows.Next() {
		activity, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		activities = append(activities, activity)
	}
	return activities, rows.Err()
}

// encodeMetadata marshals a metadata map to its stored JSON form; a nil
// map is stored as NULL
func encodeMetadata(metadata map[string]any) (*string, error) {
	if metadata == nil {
		return nil, nil
	}
	raw, err := json.Marshal(metadata)
	if err != nil {
		return nil, err
	}
	s := string(raw)
	return &s, nil
}
