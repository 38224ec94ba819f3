package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecosnap/ecosnap/internal/db/dbtest"
	"github.com/ecosnap/ecosnap/internal/model"
	"github.com/ecosnap/ecosnap/internal/repository"
)

const testSecret = "test-secret"

func newAuthService(t *testing.T) (*AuthService, *fakeMailer, repository.UserRepository) {
	t.Helper()
	users := repository.NewUserRepository(dbtest.New(t))
	mail := &fakeMailer{}
	svc := NewAuthService(users, mail, "EcoSnap", testSecret, time.Hour, 24*time.Hour, time.Hour)
	return svc, mail, users
}

func TestRegister(t *testing.T) {
	svc, mail, _ := newAuthService(t)
	ctx := context.Background()

	res, err := svc.Register(ctx, "  A@X.com ", "pw123456", " Alice ")
	require.NoError(t, err)

	assert.Equal(t, "a@x.com", res.User.Email)
	assert.Equal(t, "Alice", res.User.Name)
	assert.False(t, res.User.IsVerified)
	assert.NotEqual(t, "pw123456", res.User.PasswordHash)

	userID, err := svc.VerifyJWT(res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, userID)

	require.Equal(t, 1, mail.count())
	assert.Equal(t, "a@x.com", mail.sent[0].To)
	assert.Equal(t, *res.User.VerificationCode, mail.lastCode(t))
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, mail, _ := newAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "a@x.com", "pw123456", "Alice")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "A@x.com", "another-pass", "Alice Two")
	assert.ErrorIs(t, err, ErrEmailAlreadyExists)
	assert.Equal(t, 1, mail.count())
}

func TestRegister_Validation(t *testing.T) {
	svc, _, _ := newAuthService(t)
	ctx := context.Background()

	tests := []struct {
		name, email, password, displayName, msg string
	}{
		{"bad email", "nope", "pw123456", "Alice", "invalid email"},
		{"short password", "a@x.com", "short", "Alice", "at least 8"},
		{"common password", "a@x.com", "password123", "Alice", "too common"},
		{"missing name", "a@x.com", "pw123456", "  ", "name is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tt.email, tt.password, tt.displayName)
			assert.ErrorIs(t, err, ErrValidation)
			assert.ErrorContains(t, err, tt.msg)
		})
	}
}

func TestRegister_MailFailureIsSwallowed(t *testing.T) {
	svc, mail, _ := newAuthService(t)
	mail.err = errBoom

	res, err := svc.Register(context.Background(), "a@x.com", "pw123456", "Alice")

	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	svc, _, _ := newAuthService(t)
	ctx := context.Background()
	_, err := svc.Register(ctx, "a@x.com", "pw123456", "Alice")
	require.NoError(t, err)

	_, err = svc.Login(ctx, "nobody@x.com", "pw123456")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "a@x.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_UnverifiedKeepsValidCode(t *testing.T) {
	svc, mail, _ := newAuthService(t)
	ctx := context.Background()
	_, err := svc.Register(ctx, "a@x.com", "pw123456", "Alice")
	require.NoError(t, err)

	res, err := svc.Login(ctx, "a@x.com", "pw123456")

	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrEmailNotVerified)
	var vre *VerificationRequiredError
	require.ErrorAs(t, err, &vre)
	assert.Equal(t, "a@x.com", vre.User.Email)
	assert.Equal(t, 1, mail.count(), "a still-valid code is not re-sent")
}

func TestLogin_UnverifiedExpiredCodeIsRegenerated(t *testing.T) {
	svc, mail, users := newAuthService(t)
	ctx := context.Background()
	_, err := svc.Register(ctx, "a@x.com", "pw123456", "Alice")
	require.NoError(t, err)
	first := mail.lastCode(t)

	svc.now = func() time.Time { return time.Now().UTC().Add(25 * time.Hour) }
	_, err = svc.Login(ctx, "a@x.com", "pw123456")
	assert.ErrorIs(t, err, ErrEmailNotVerified)

	require.Equal(t, 2, mail.count())
	second := mail.lastCode(t)
	stored, err := users.ByEmail("a@x.com")
	require.NoError(t, err)
	assert.Equal(t, second, *stored.VerificationCode)
	assert.True(t, stored.VerificationCodeExpiresAt.After(svc.now()))
	if first == second {
		t.Log("codes collided, which is allowed but unlikely")
	}
}

func TestVerifyEmail(t *testing.T) {
	svc, mail, _ := newAuthService(t)
	ctx := context.Background()
	_, err := svc.Register(ctx, "a@x.com", "pw123456", "Alice")
	require.NoError(t, err)
	code := mail.lastCode(t)

	_, err = svc.VerifyEmail(ctx, "a@x.com", "zzzzzz")
	assert.ErrorIs(t, err, ErrInvalidOrExpiredCode)

	res, err := svc.VerifyEmail(ctx, "A@x.com", " "+code+" ")
	require.NoError(t, err)
	assert.True(t, res.User.IsVerified)
	assert.Nil(t, res.User.VerificationCode)
	assert.NotEmpty(t, res.Token)

	_, err = svc.VerifyEmail(ctx, "a@x.com", code)
	assert.ErrorIs(t, err, ErrInvalidOrExpiredCode)

	login, err := svc.Login(ctx, "a@x.com", "pw123456")
	require.NoError(t, err)
	assert.NotEmpty(t, login.Token)
}

func TestVerifyEmail_Expired(t *testing.T) {
	svc, mail, _ := newAuthService(t)
	ctx := context.Background()
	_, err := svc.Register(ctx, "a@x.com", "pw123456", "Alice")
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().UTC().Add(25 * time.Hour) }
	_, err = svc.VerifyEmail(ctx, "a@x.com", mail.lastCode(t))

	assert.ErrorIs(t, err, ErrInvalidOrExpiredCode)
}

func TestResendVerification(t *testing.T) {
	svc, mail, _ := newAuthService(t)
	ctx := context.Background()

	assert.ErrorIs(t, svc.ResendVerification(ctx, "nobody@x.com"), ErrUserNotFound)

	_, err := svc.Register(ctx, "a@x.com", "pw123456", "Alice")
	require.NoError(t, err)

	require.NoError(t, svc.ResendVerification(ctx, "a@x.com"))
	assert.Equal(t, 2, mail.count())

	_, err = svc.VerifyEmail(ctx, "a@x.com", mail.lastCode(t))
	require.NoError(t, err)

	assert.ErrorIs(t, svc.ResendVerification(ctx, "a@x.com"), ErrAlreadyVerified)
}

func TestResendVerification_MailFailureStillSucceeds(t *testing.T) {
	svc, mail, _ := newAuthService(t)
	ctx := context.Background()
	_, err := svc.Register(ctx, "a@x.com", "pw123456", "Alice")
	require.NoError(t, err)

	mail.err = errBoom
	assert.NoError(t, svc.ResendVerification(ctx, "a@x.com"))
}

func TestPasswordReset(t *testing.T) {
	svc, mail, _ := newAuthService(t)
	ctx := context.Background()
	_, err := svc.Register(ctx, "a@x.com", "pw123456", "Alice")
	require.NoError(t, err)

	require.NoError(t, svc.RequestPasswordReset(ctx, "nobody@x.com"))
	assert.Equal(t, 1, mail.count(), "unknown addresses get no mail")

	assert.ErrorIs(t, svc.RequestPasswordReset(ctx, "not-an-email"), ErrValidation)

	require.NoError(t, svc.RequestPasswordReset(ctx, "a@x.com"))
	require.Equal(t, 2, mail.count())
	assert.Contains(t, mail.sent[1].Subject, "Reset your password")
	code := mail.lastCode(t)

	assert.ErrorIs(t, svc.ResetPassword(ctx, "a@x.com", code, "short"), ErrValidation)
	assert.ErrorIs(t, svc.ResetPassword(ctx, "a@x.com", "000000", "new-password-1"), ErrInvalidOrExpiredCode)

	require.NoError(t, svc.ResetPassword(ctx, "a@x.com", code, "new-password-1"))
	assert.ErrorIs(t, svc.ResetPassword(ctx, "a@x.com", code, "new-password-2"), ErrInvalidOrExpiredCode)

	_, err = svc.Login(ctx, "a@x.com", "pw123456")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	res, err := svc.Login(ctx, "a@x.com", "new-password-1")
	require.NoError(t, err, "reset also verifies the account")
	assert.True(t, res.User.IsVerified)
}

func TestVerifyJWT(t *testing.T) {
	svc, _, _ := newAuthService(t)

	sign := func(method jwt.SigningMethod, key any, claims jwt.MapClaims) string {
		s, err := jwt.NewWithClaims(method, claims).SignedString(key)
		require.NoError(t, err)
		return s
	}
	future := time.Now().Add(time.Hour).Unix()

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"wrong secret", sign(jwt.SigningMethodHS256, []byte("other"), jwt.MapClaims{"user_id": "u1", "exp": future})},
		{"expired", sign(jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{"user_id": "u1", "exp": time.Now().Add(-time.Minute).Unix()})},
		{"alg none", sign(jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, jwt.MapClaims{"user_id": "u1", "exp": future})},
		{"no user id", sign(jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{"exp": future})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.VerifyJWT(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestAuthenticate(t *testing.T) {
	svc, _, _ := newAuthService(t)
	ctx := context.Background()
	res, err := svc.Register(ctx, "a@x.com", "pw123456", "Alice")
	require.NoError(t, err)

	user, err := svc.Authenticate(res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, user.ID)

	ghost, err := NewAuthService(nil, nil, "", testSecret, time.Hour, 0, 0).GenerateJWT(&model.User{ID: "ghost"})
	require.NoError(t, err)
	_, err = svc.Authenticate(ghost)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestIssueCode(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	code, err := issueCode(now, time.Hour)

	require.NoError(t, err)
	assert.Regexp(t, `^[0-9a-f]{6}$`, code.Code)
	assert.Equal(t, now.Add(time.Hour), code.ExpiresAt)
}

func TestHumanDuration(t *testing.T) {
	assert.Equal(t, "24 hours", humanDuration(24*time.Hour))
	assert.Equal(t, "1 hour", humanDuration(time.Hour))
	assert.Equal(t, "15 minutes", humanDuration(15*time.Minute))
	assert.Equal(t, "1m30s", humanDuration(90*time.Second))
}
