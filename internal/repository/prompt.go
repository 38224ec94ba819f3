package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ecosnap/ecosnap/internal/model"
)

var (
	ErrPromptNotFound = errors.New("prompt not found")
)

type PromptRepository interface {
	Create(prompt *model.Prompt) error
	ByUser(userID string) ([]*model.Prompt, error)
	Update(prompt *model.Prompt) error
	Delete(userID, promptID string) error
	All(limit int) ([]*model.Prompt, error)
	SeedDefaults(userID string, defaults []model.PromptTemplate, now time.Time) (bool, error)
}

type promptRepository struct {
	db *sqlx.DB
}

func NewPromptRepository(db *sqlx.DB) PromptRepository {
	return &promptRepository{db: db}
}

const insertPromptQuery = `INSERT INTO prompts (id, user_id, label, value, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6)`

func (r *promptRepository) Create(prompt *model.Prompt) error {
	_, err := r.db.Exec(insertPromptQuery,
		prompt.ID,
		prompt.UserID,
		prompt.Label,
		prompt.Value,
		prompt.CreatedAt,
		prompt.UpdatedAt,
	)
	return err
}

// ByUser returns the user's prompts in creation order.
func (r *promptRepository) ByUser(userID string) ([]*model.Prompt, error) {
	prompts := []*model.Prompt{}
	query := `SELECT * FROM prompts WHERE user_id = $1 ORDER BY created_at ASC, label ASC`

	err := r.db.Select(&prompts, query, userID)
	if err != nil {
		return nil, err
	}

	return prompts, nil
}

// Update rewrites label and value of a prompt the user owns and refreshes
// the rest of prompt from the stored row.
func (r *promptRepository) Update(prompt *model.Prompt) error {
	query := `UPDATE prompts
	          SET label = $1, value = $2, updated_at = $3
	          WHERE id = $4 AND user_id = $5
	          RETURNING *`

	err := r.db.Get(prompt, query,
		prompt.Label,
		prompt.Value,
		prompt.UpdatedAt,
		prompt.ID,
		prompt.UserID,
	)
	if err == sql.ErrNoRows {
		return ErrPromptNotFound
	}
	return err
}

func (r *promptRepository) Delete(userID, promptID string) error {
	query := `DELETE FROM prompts WHERE id = $1 AND user_id = $2`
	result, err := r.db.Exec(query, promptID, userID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrPromptNotFound
	}

	return nil
}

// All returns prompts of every user, newest first.
func (r *promptRepository) All(limit int) ([]*model.Prompt, error) {
	prompts := []*model.Prompt{}
	query := `SELECT * FROM prompts ORDER BY created_at DESC, id DESC LIMIT $1`

	err := r.db.Select(&prompts, query, limit)
	if err != nil {
		return nil, err
	}

	return prompts, nil
}

// SeedDefaults copies the defaults to the user unless that already happened.
// The prompt_seeds primary key lets exactly one transaction claim the seed,
// so concurrent first requests cannot insert the defaults twice.
// It reports whether this call did the seeding.
func (r *promptRepository) SeedDefaults(userID string, defaults []model.PromptTemplate, now time.Time) (seeded bool, err error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return false, fmt.Errorf("failed to begin seed transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	result, err := tx.Exec(`INSERT INTO prompt_seeds (user_id, seeded_at) VALUES ($1, $2) ON CONFLICT (user_id) DO NOTHING`, userID, now)
	if err != nil {
		return false, fmt.Errorf("failed to claim prompt seed: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	if rows == 0 {
		err = tx.Rollback()
		if err != nil && !errors.Is(err, sql.ErrTxDone) {
			return false, err
		}
		return false, nil
	}

	// Offset timestamps keep the defaults in their declared order.
	for i, d := range defaults {
		created := now.Add(time.Duration(i) * time.Microsecond)
		_, err = tx.Exec(insertPromptQuery, uuid.New().String(), userID, d.Label, d.Value, created, created)
		if err != nil {
			return false, fmt.Errorf("failed to insert default prompt %q: %w", d.Label, err)
		}
	}

	err = tx.Commit()
	if err != nil {
		return false, fmt.Errorf("failed to commit prompt seed: %w", err)
	}

	return true, nil
}
