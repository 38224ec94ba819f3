package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/ecosnap/ecosnap/internal/mailer"
	"github.com/ecosnap/ecosnap/internal/model"
	"github.com/ecosnap/ecosnap/internal/repository"
	"github.com/ecosnap/ecosnap/internal/validation"
)

var (
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrEmailAlreadyExists   = errors.New("email already exists")
	ErrEmailNotVerified     = errors.New("email not verified")
	ErrInvalidOrExpiredCode = errors.New("invalid or expired code")
	ErrAlreadyVerified      = errors.New("email already verified")
	ErrInvalidToken         = errors.New("invalid token")
)

// VerificationRequiredError is returned by Login for a correct password on
// an unverified account. errors.Is(err, ErrEmailNotVerified) matches it.
type VerificationRequiredError struct {
	User *model.User
}

func (e *VerificationRequiredError) Error() string {
	return ErrEmailNotVerified.Error()
}

func (e *VerificationRequiredError) Is(target error) bool {
	return target == ErrEmailNotVerified
}

// AuthResult is a signed-in user and their bearer token.
type AuthResult struct {
	Token string
	User  *model.User
}

type AuthService struct {
	userRepository          repository.UserRepository
	mailer                  mailer.Mailer
	appName                 string
	jwtSecret               string
	jwtExpiry               time.Duration
	verificationCodeExpiry  time.Duration
	passwordResetCodeExpiry time.Duration
	now                     func() time.Time
}

func NewAuthService(
	userRepository repository.UserRepository,
	mailer mailer.Mailer,
	appName string,
	jwtSecret string,
	jwtExpiry time.Duration,
	verificationCodeExpiry time.Duration,
	passwordResetCodeExpiry time.Duration,
) *AuthService {
	return &AuthService{
		userRepository:          userRepository,
		mailer:                  mailer,
		appName:                 appName,
		jwtSecret:               jwtSecret,
		jwtExpiry:               jwtExpiry,
		verificationCodeExpiry:  verificationCodeExpiry,
		passwordResetCodeExpiry: passwordResetCodeExpiry,
		now:                     func() time.Time { return time.Now().UTC() },
	}
}

func (s *AuthService) Register(ctx context.Context, email, password, name string) (*AuthResult, error) {
	email = validation.NormalizeEmail(email)
	name = strings.TrimSpace(name)

	err := validation.ValidateEmail(email)
	if err != nil {
		return nil, invalid(err)
	}
	err = validation.ValidatePassword(password)
	if err != nil {
		return nil, invalid(err)
	}
	err = validation.ValidateName(name)
	if err != nil {
		return nil, invalid(err)
	}

	_, err = s.userRepository.ByEmail(email)
	if err == nil {
		return nil, ErrEmailAlreadyExists
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hash, err := s.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.now()
	code, err := issueCode(now, s.verificationCodeExpiry)
	if err != nil {
		return nil, fmt.Errorf("failed to generate code: %w", err)
	}

	user := &model.User{
		ID:                        uuid.New().String(),
		Email:                     email,
		PasswordHash:              hash,
		Name:                      name,
		VerificationCode:          &code.Code,
		VerificationCodeExpiresAt: &code.ExpiresAt,
		CreatedAt:                 now,
	}

	err = s.userRepository.Create(user)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrEmailAlreadyExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	slog.Info("user registered", "user_id", user.ID, "email", user.Email)
	s.sendVerificationCode(ctx, user, code)

	token, err := s.GenerateJWT(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &AuthResult{Token: token, User: user}, nil
}

// Login checks credentials. An unverified account gets a
// *VerificationRequiredError and, if its code is missing or expired, a new
// code by mail.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = validation.NormalizeEmail(email)

	user, err := s.userRepository.ByEmail(email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, fmt.Errorf("invalid credentials: %w", ErrInvalidCredentials)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	err = s.ComparePassword(password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("invalid credentials: %w", ErrInvalidCredentials)
	}

	if !user.IsVerified {
		now := s.now()
		if !user.Verification().IsValid(now) {
			code, err := s.storeCode(user, model.CodePurposeVerification, now)
			if err != nil {
				return nil, err
			}
			s.sendVerificationCode(ctx, user, code)
		}
		return nil, &VerificationRequiredError{User: user}
	}

	token, err := s.GenerateJWT(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &AuthResult{Token: token, User: user}, nil
}

func (s *AuthService) VerifyEmail(ctx context.Context, email, code string) (*AuthResult, error) {
	email = validation.NormalizeEmail(email)
	code = strings.ToLower(strings.TrimSpace(code))
	if email == "" || code == "" {
		return nil, ErrInvalidOrExpiredCode
	}

	// ConsumeVerificationCode atomically clears the code (prevents reuse)
	user, err := s.userRepository.ConsumeVerificationCode(email, code, s.now())
	if err != nil {
		if errors.Is(err, repository.ErrCodeNotFound) {
			return nil, ErrInvalidOrExpiredCode
		}
		return nil, fmt.Errorf("failed to verify email: %w", err)
	}

	slog.Info("email verified", "user_id", user.ID)

	token, err := s.GenerateJWT(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &AuthResult{Token: token, User: user}, nil
}

// ResendVerification issues a new verification code. Delivery is best
// effort; the call succeeds even when the mail could not be sent.
func (s *AuthService) ResendVerification(ctx context.Context, email string) error {
	email = validation.NormalizeEmail(email)

	user, err := s.userRepository.ByEmail(email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	if user.IsVerified {
		return ErrAlreadyVerified
	}

	code, err := s.storeCode(user, model.CodePurposeVerification, s.now())
	if err != nil {
		return err
	}
	s.sendVerificationCode(ctx, user, code)

	return nil
}

// RequestPasswordReset mails a reset code. Unknown addresses succeed
// silently to prevent email enumeration.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	email = validation.NormalizeEmail(email)

	err := validation.ValidateEmail(email)
	if err != nil {
		return invalid(err)
	}

	user, err := s.userRepository.ByEmail(email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			slog.Info("password reset requested for non-existent email", "email", email)
			return nil
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	code, err := s.storeCode(user, model.CodePurposePasswordReset, s.now())
	if err != nil {
		return err
	}

	subject, body := passwordResetEmailTemplate(user.Name, code.Code, s.passwordResetCodeExpiry, s.appName)
	s.send(ctx, user, "password_reset", subject, body)

	return nil
}

func (s *AuthService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	email = validation.NormalizeEmail(email)
	code = strings.ToLower(strings.TrimSpace(code))

	err := validation.ValidatePassword(newPassword)
	if err != nil {
		return invalid(err)
	}
	if email == "" || code == "" {
		return ErrInvalidOrExpiredCode
	}

	hash, err := s.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.userRepository.ConsumePasswordResetCode(email, code, hash, s.now())
	if err != nil {
		if errors.Is(err, repository.ErrCodeNotFound) {
			return ErrInvalidOrExpiredCode
		}
		return fmt.Errorf("failed to reset password: %w", err)
	}

	slog.Info("password reset", "user_id", user.ID)
	return nil
}

// Authenticate resolves a bearer token to its user. The user must still
// exist.
func (s *AuthService) Authenticate(tokenString string) (*model.User, error) {
	userID, err := s.VerifyJWT(tokenString)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepository.ByID(userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

func (s *AuthService) HashPassword(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

func (s *AuthService) ComparePassword(password, hash string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

func (s *AuthService) GenerateJWT(user *model.User) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"exp":     now.Add(s.jwtExpiry).Unix(),
		"iat":     now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// VerifyJWT checks signature and expiry and returns the user id claim.
func (s *AuthService) VerifyJWT(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", ErrInvalidToken
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return "", ErrInvalidToken
	}

	return userID, nil
}

func (s *AuthService) storeCode(user *model.User, purpose model.CodePurpose, now time.Time) (model.OneTimeCode, error) {
	ttl := s.verificationCodeExpiry
	if purpose == model.CodePurposePasswordReset {
		ttl = s.passwordResetCodeExpiry
	}

	code, err := issueCode(now, ttl)
	if err != nil {
		return model.OneTimeCode{}, fmt.Errorf("failed to generate code: %w", err)
	}

	err = s.userRepository.SetCode(user.ID, purpose, code)
	if err != nil {
		return model.OneTimeCode{}, fmt.Errorf("failed to store code: %w", err)
	}

	if purpose == model.CodePurposeVerification {
		user.VerificationCode = &code.Code
		user.VerificationCodeExpiresAt = &code.ExpiresAt
	}

	return code, nil
}

func (s *AuthService) sendVerificationCode(ctx context.Context, user *model.User, code model.OneTimeCode) bool {
	subject, body := verificationEmailTemplate(user.Name, code.Code, s.verificationCodeExpiry, s.appName)
	return s.send(ctx, user, "verification", subject, body)
}

// send delivers best effort: failures are logged and reported as false,
// never returned to the caller.
func (s *AuthService) send(ctx context.Context, user *model.User, kind, subject, body string) bool {
	err := s.mailer.Send(ctx, user.Email, subject, body)
	if err != nil {
		slog.Warn("failed to send email", "error", err, "type", kind, "user_id", user.ID)
		return false
	}
	return true
}
