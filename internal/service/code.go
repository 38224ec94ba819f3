package service

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/ecosnap/ecosnap/internal/model"
)

// issueCode returns a fresh 6-character hex code valid for ttl.
func issueCode(now time.Time, ttl time.Duration) (model.OneTimeCode, error) {
	b := make([]byte, 3)
	_, err := rand.Read(b)
	if err != nil {
		return model.OneTimeCode{}, err
	}
	return model.OneTimeCode{
		Code:      hex.EncodeToString(b),
		ExpiresAt: now.Add(ttl),
	}, nil
}
