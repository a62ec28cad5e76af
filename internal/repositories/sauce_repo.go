package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/roy-raphael/DW-P6-Piiquante/internal/database"
	"github.com/roy-raphael/DW-P6-Piiquante/internal/models"
)

type SauceRepository struct {
	db *database.DB
}

func NewSauceRepository(db *database.DB) *SauceRepository {
	return &SauceRepository{db: db}
}

// rowScanner covers both pgx.Row and pgx.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

const sauceColumns = `id, user_id, name, manufacturer, description, main_pepper, image_url,
		heat, likes, dislikes, users_liked, users_disliked, created_at, updated_at`

func scanSauceRow(scanner rowScanner) (*models.Sauce, error) {
	var sauce models.Sauce

	err := scanner.Scan(
		&sauce.ID, &sauce.UserID, &sauce.Name, &sauce.Manufacturer,
		&sauce.Description, &sauce.MainPepper, &sauce.ImageURL,
		&sauce.Heat, &sauce.Likes, &sauce.Dislikes,
		&sauce.UsersLiked, &sauce.UsersDisliked,
		&sauce.CreatedAt, &sauce.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &sauce, nil
}

func (r *SauceRepository) Create(ctx context.Context, sauce *models.Sauce) (*models.Sauce, error) {
	sauce.ID = uuid.New().String()

	now := time.Now()
	sauce.CreatedAt = now
	sauce.UpdatedAt = now

	if sauce.UsersLiked == nil {
		sauce.UsersLiked = []string{}
	}
	if sauce.UsersDisliked == nil {
		sauce.UsersDisliked = []string{}
	}

	query := `
		INSERT INTO sauces (id, user_id, name, manufacturer, description, main_pepper, image_url,
			heat, likes, dislikes, users_liked, users_disliked, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err := r.db.Pool.Exec(ctx, query,
		sauce.ID, sauce.UserID, sauce.Name, sauce.Manufacturer,
		sauce.Description, sauce.MainPepper, sauce.ImageURL,
		sauce.Heat, sauce.Likes, sauce.Dislikes,
		sauce.UsersLiked, sauce.UsersDisliked,
		sauce.CreatedAt, sauce.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return sauce, nil
}

func (r *SauceRepository) GetByID(ctx context.Context, id string) (*models.Sauce, error) {
	query := fmt.Sprintf(`SELECT %s FROM sauces WHERE id = $1`, sauceColumns)

	return scanSauceRow(r.db.Pool.QueryRow(ctx, query, id))
}

func (r *SauceRepository) List(ctx context.Context) ([]*models.Sauce, error) {
	query := fmt.Sprintf(`SELECT %s FROM sauces ORDER BY created_at DESC`, sauceColumns)

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query sauces: %w", err)
	}
	defer rows.Close()

	sauces := make([]*models.Sauce, 0)
	for rows.Next() {
		sauce, err := scanSauceRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sauce: %w", err)
		}
		sauces = append(sauces, sauce)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return sauces, nil
}

func (r *SauceRepository) Update(ctx context.Context, sauce *models.Sauce) error {
	sauce.UpdatedAt = time.Now()

	query := `
		UPDATE sauces
		SET name = $1, manufacturer = $2, description = $3, main_pepper = $4,
			image_url = $5, heat = $6, updated_at = $7
		WHERE id = $8
	`

	result, err := r.db.Pool.Exec(ctx, query,
		sauce.Name, sauce.Manufacturer, sauce.Description, sauce.MainPepper,
		sauce.ImageURL, sauce.Heat, sauce.UpdatedAt, sauce.ID,
	)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}

func (r *SauceRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.Pool.Exec(ctx, `DELETE FROM sauces WHERE id = $1`, id)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}

// ApplyVote moves a user's vote for a sauce inside one transaction. The row
// is locked for the read-modify-write so concurrent votes cannot drop each
// other.
func (r *SauceRepository) ApplyVote(ctx context.Context, sauceID, userID string, vote int) (*models.Sauce, error) {
	var updated *models.Sauce

	err := r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		query := fmt.Sprintf(`SELECT %s FROM sauces WHERE id = $1 FOR UPDATE`, sauceColumns)

		sauce, err := scanSauceRow(tx.QueryRow(ctx, query, sauceID))
		if err != nil {
			return err
		}

		sauce.ApplyVote(userID, vote)
		sauce.UpdatedAt = time.Now()

		_, err = tx.Exec(ctx, `
			UPDATE sauces
			SET likes = $1, dislikes = $2, users_liked = $3, users_disliked = $4, updated_at = $5
			WHERE id = $6
		`, sauce.Likes, sauce.Dislikes, sauce.UsersLiked, sauce.UsersDisliked, sauce.UpdatedAt, sauce.ID)
		if err != nil {
			return database.MapPostgresError(err)
		}

		updated = sauce
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}
