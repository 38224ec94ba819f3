package service

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/ecosnap/ecosnap/internal/model"
	"github.com/ecosnap/ecosnap/internal/repository"
	"github.com/ecosnap/ecosnap/internal/validation"
)

type UserService struct {
	userRepository repository.UserRepository
}

func NewUserService(userRepository repository.UserRepository) *UserService {
	return &UserService{
		userRepository: userRepository,
	}
}

func (s *UserService) ByID(id string) (*model.User, error) {
	user, err := s.userRepository.ByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// SetAdmin grants or revokes admin rights.
func (s *UserService) SetAdmin(email string, isAdmin bool) (*model.User, error) {
	user, err := s.userRepository.SetAdmin(validation.NormalizeEmail(email), isAdmin)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	slog.Info("admin flag changed", "user_id", user.ID, "is_admin", isAdmin)
	return user, nil
}

// Verify marks an account verified without a code, for support cases
// where the mail never arrived.
func (s *UserService) Verify(email string) (*model.User, error) {
	user, err := s.userRepository.MarkVerified(validation.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to verify user: %w", err)
	}

	slog.Info("user verified manually", "user_id", user.ID)
	return user, nil
}
