package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ecosnap/ecosnap/internal/model"
)

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already exists")
	ErrCodeNotFound   = errors.New("code not found or expired")
)

// codeColumns maps a code purpose to its (code, expires_at) columns.
var codeColumns = map[model.CodePurpose][2]string{
	model.CodePurposeVerification:  {"verification_code", "verification_code_expires_at"},
	model.CodePurposePasswordReset: {"password_reset_code", "password_reset_expires_at"},
}

type UserRepository interface {
	Create(user *model.User) error
	ByID(id string) (*model.User, error)
	ByEmail(email string) (*model.User, error)
	SetCode(userID string, purpose model.CodePurpose, code model.OneTimeCode) error
	ConsumeVerificationCode(email, code string, now time.Time) (*model.User, error)
	ConsumePasswordResetCode(email, code, passwordHash string, now time.Time) (*model.User, error)
	SetAdmin(email string, isAdmin bool) (*model.User, error)
	MarkVerified(email string) (*model.User, error)
}

type userRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(user *model.User) error {
	query := `INSERT INTO users (id, email, password_hash, name, is_admin, is_verified, verification_code, verification_code_expires_at, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.Exec(query,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.Name,
		user.IsAdmin,
		user.IsVerified,
		user.VerificationCode,
		user.VerificationCodeExpiresAt,
		user.CreatedAt,
	)
	if err != nil {
		// Check for unique constraint violation (works for both SQLite and PostgreSQL)
		errStr := err.Error()
		if strings.Contains(errStr, "UNIQUE constraint failed") || strings.Contains(errStr, "duplicate key value") {
			return ErrDuplicateEmail
		}
		return err
	}

	return nil
}

func (r *userRepository) ByID(id string) (*model.User, error) {
	user := &model.User{}
	query := `SELECT * FROM users WHERE id = $1`

	err := r.db.Get(user, query, id)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	return user, nil
}

func (r *userRepository) ByEmail(email string) (*model.User, error) {
	user := &model.User{}
	query := `SELECT * FROM users WHERE email = $1`

	err := r.db.Get(user, query, email)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	return user, nil
}

// SetCode replaces the user's code for the given purpose.
func (r *userRepository) SetCode(userID string, purpose model.CodePurpose, code model.OneTimeCode) error {
	cols, ok := codeColumns[purpose]
	if !ok {
		return fmt.Errorf("unknown code purpose %q", purpose)
	}

	query := fmt.Sprintf(`UPDATE users SET %s = $1, %s = $2 WHERE id = $3`, cols[0], cols[1])
	result, err := r.db.Exec(query, code.Code, code.ExpiresAt, userID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrUserNotFound
	}

	return nil
}

// ConsumeVerificationCode atomically clears a matching, unexpired
// verification code and marks the user verified.
func (r *userRepository) ConsumeVerificationCode(email, code string, now time.Time) (*model.User, error) {
	return r.consumeCode(model.CodePurposeVerification, email, code, now, `, is_verified = TRUE`)
}

// ConsumePasswordResetCode atomically clears a matching, unexpired reset
// code and stores the new password hash. A successful reset proves control
// of the mailbox, so the user is marked verified as well.
func (r *userRepository) ConsumePasswordResetCode(email, code, passwordHash string, now time.Time) (*model.User, error) {
	return r.consumeCode(model.CodePurposePasswordReset, email, code, now, `, password_hash = $4, is_verified = TRUE`, passwordHash)
}

// consumeCode is a single conditional UPDATE ... RETURNING, so only one of
// two concurrent requests with the same code can succeed.
func (r *userRepository) consumeCode(purpose model.CodePurpose, email, code string, now time.Time, set string, extra ...any) (*model.User, error) {
	cols := codeColumns[purpose]

	query := fmt.Sprintf(`
		UPDATE users
		SET %[1]s = NULL, %[2]s = NULL%[3]s
		WHERE email = $1
		AND %[1]s = $2
		AND %[2]s > $3
		RETURNING *
	`, cols[0], cols[1], set)

	args := append([]any{email, code, now}, extra...)

	user := &model.User{}
	err := r.db.Get(user, query, args...)
	if err == sql.ErrNoRows {
		return nil, ErrCodeNotFound
	}
	if err != nil {
		return nil, err
	}

	return user, nil
}

func (r *userRepository) SetAdmin(email string, isAdmin bool) (*model.User, error) {
	user := &model.User{}
	query := `UPDATE users SET is_admin = $1 WHERE email = $2 RETURNING *`

	err := r.db.Get(user, query, isAdmin, email)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	return user, nil
}

func (r *userRepository) MarkVerified(email string) (*model.User, error) {
	user := &model.User{}
	query := `UPDATE users
	          SET is_verified = TRUE, verification_code = NULL, verification_code_expires_at = NULL
	          WHERE email = $1
	          RETURNING *`

	err := r.db.Get(user, query, email)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	return user, nil
}
