package model

import (
	"time"
)

type User struct {
	ID                        string     `db:"id"`
	Email                     string     `db:"email"`
	PasswordHash              string     `db:"password_hash"`
	Name                      string     `db:"name"`
	IsAdmin                   bool       `db:"is_admin"`
	IsVerified                bool       `db:"is_verified"`
	VerificationCode          *string    `db:"verification_code"`
	VerificationCodeExpiresAt *time.Time `db:"verification_code_expires_at"`
	PasswordResetCode         *string    `db:"password_reset_code"`
	PasswordResetExpiresAt    *time.Time `db:"password_reset_expires_at"`
	CreatedAt                 time.Time  `db:"created_at"`
}

// PublicUser is the part of a user that is safe to send to clients.
type PublicUser struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	IsAdmin    bool      `json:"isAdmin"`
	IsVerified bool      `json:"isVerified"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (u *User) Public() PublicUser {
	return PublicUser{
		ID:         u.ID,
		Email:      u.Email,
		Name:       u.Name,
		IsAdmin:    u.IsAdmin,
		IsVerified: u.IsVerified,
		CreatedAt:  u.CreatedAt,
	}
}

// Verification returns the user's pending verification code, if any.
func (u *User) Verification() OneTimeCode {
	return codeFrom(u.VerificationCode, u.VerificationCodeExpiresAt)
}

// PasswordReset returns the user's pending password reset code, if any.
func (u *User) PasswordReset() OneTimeCode {
	return codeFrom(u.PasswordResetCode, u.PasswordResetExpiresAt)
}
