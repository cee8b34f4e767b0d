package repositories

import (
	"database/sql"

	"github.com/laurelhq/laurel/internal/models"
	"github.com/laurelhq/laurel/pkg/batch"
)

// ContributorRepository handles database operations for contributors
type ContributorRepository struct {
	db *sql.DB
}

// NewContributorRepository creates a new ContributorRepository
func NewContributorRepository(db *sql.DB) *ContributorRepository {
	return &ContributorRepository{db: db}
}

// UpsertBatch inserts contributors ignore-on-conflict: the first sighting
// wins on profile fields, later syncs are silent no-ops. Returns how many
// rows were actually inserted so callers can compare against the
// submitted count.
func (r *ContributorRepository) UpsertBatch(contributors []*models.Contributor) (int64, error) {
	var affected int64

	for _, chunk := range batch.Chunks(contributors, batch.DefaultSize) {
		query := `
			INSERT INTO contributors (username, name, avatar_url, profile_url, role, created_at, updated_at)
			VALUES ` + batch.Placeholders(len(chunk), 7) + `
			ON CONFLICT(username) DO NOTHING
		`

		args := make([]interface{}, 0, len(chunk)*7)
		for _, c := range chunk {
			args = append(args, c.Username, c.Name, c.AvatarURL, c.ProfileURL, c.Role, c.CreatedAt, c.UpdatedAt)
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

// UpdateRole changes a contributor's role. This is a targeted update,
// not an upsert: profile fields stay first-write-wins.
func (r *ContributorRepository) UpdateRole(username string, role models.ContributorRole) error {
	query := `UPDATE contributors SET role = ?, updated_at = CURRENT_TIMESTAMP WHERE username = ?`
	_, err := r.db.Exec(query, role, username)
	return err
}

// GetByUsername retrieves a contributor by username
func (r *ContributorRepository) GetByUsername(username string) (*models.Contributor, error) {
	query := `
		SELECT username, name, avatar_url, profile_url, role, created_at, updated_at
		FROM contributors WHERE username = ?
	`

	var c models.Contributor
	err := r.db.QueryRow(query, username).Scan(
		&c.Username, &c.Name, &c.AvatarURL, &c.ProfileURL, &c.Role, &c.CreatedAt, &c.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return &c, nil
}

// List retrieves all contributors ordered by username
func (r *ContributorRepository) List() ([]*models.Contributor, error) {
	query := `
		SELECT username, name, avatar_url, profile_url, role, created_at, updated_at
		FROM contributors ORDER BY username ASC
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contributors []*models.Contributor
	for rows.Next() {
		var c models.Contributor
		err := rows.Scan(
			&c.Username, &c.Name, &c.AvatarURL, &c.ProfileURL, &c.Role, &c.CreatedAt, &c.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		contributors = append(contributors, &c)
	}

	return contributors, rows.Err()
}
