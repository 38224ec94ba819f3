package model

import (
	"time"
)

// CodePurpose selects which pair of user columns a one-time code lives in.
type CodePurpose string

const (
	CodePurposeVerification  CodePurpose = "verification"
	CodePurposePasswordReset CodePurpose = "password_reset"
)

// OneTimeCode is a short random code mailed to a user. It is valid until
// ExpiresAt and is cleared from the user row when consumed.
type OneTimeCode struct {
	Code      string
	ExpiresAt time.Time
}

func codeFrom(code *string, expiresAt *time.Time) OneTimeCode {
	var c OneTimeCode
	if code != nil {
		c.Code = *code
	}
	if expiresAt != nil {
		c.ExpiresAt = *expiresAt
	}
	return c
}

func (c OneTimeCode) IsMissing() bool {
	return c.Code == ""
}

func (c OneTimeCode) IsExpired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}

func (c OneTimeCode) IsValid(now time.Time) bool {
	return !c.IsMissing() && !c.IsExpired(now)
}
