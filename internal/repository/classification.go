package repository

import (
	"github.com/jmoiron/sqlx"

	"github.com/ecosnap/ecosnap/internal/model"
)

type ClassificationRepository interface {
	Create(c *model.Classification) error
	ByUser(userID string, limit int) ([]*model.Classification, error)
	All(limit int) ([]*model.Classification, error)
}

type classificationRepository struct {
	db *sqlx.DB
}

func NewClassificationRepository(db *sqlx.DB) ClassificationRepository {
	return &classificationRepository{db: db}
}

func (r *classificationRepository) Create(c *model.Classification) error {
	query := `INSERT INTO classifications (id, user_id, image_url, response, prompt, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.Exec(query,
		c.ID,
		c.UserID,
		c.ImageURL,
		c.Response,
		c.Prompt,
		c.CreatedAt,
	)

	return err
}

// ByUser returns the user's classifications, newest first.
func (r *classificationRepository) ByUser(userID string, limit int) ([]*model.Classification, error) {
	classifications := []*model.Classification{}
	query := `SELECT * FROM classifications WHERE user_id = $1 ORDER BY created_at DESC, id DESC LIMIT $2`

	err := r.db.Select(&classifications, query, userID, limit)
	if err != nil {
		return nil, err
	}

	return classifications, nil
}

func (r *classificationRepository) All(limit int) ([]*model.Classification, error) {
	classifications := []*model.Classification{}
	query := `SELECT * FROM classifications ORDER BY created_at DESC, id DESC LIMIT $1`

	err := r.db.Select(&classifications, query, limit)
	if err != nil {
		return nil, err
	}

	return classifications, nil
}
