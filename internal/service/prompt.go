package service

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ecosnap/ecosnap/internal/model"
	"github.com/ecosnap/ecosnap/internal/repository"
)

var ErrPromptNotFound = errors.New("prompt not found")

// AllPromptsLimit caps the admin listing.
const AllPromptsLimit = 500

type PromptService struct {
	promptRepository repository.PromptRepository
	defaults         []model.PromptTemplate
	now              func() time.Time
}

func NewPromptService(promptRepository repository.PromptRepository, defaults []model.PromptTemplate) *PromptService {
	return &PromptService{
		promptRepository: promptRepository,
		defaults:         defaults,
		now:              func() time.Time { return time.Now().UTC() },
	}
}

// List returns the user's prompts, oldest first. The defaults are copied
// to the user on the very first call only; a user who deletes all of them
// gets an empty list afterwards.
func (s *PromptService) List(userID string) ([]*model.Prompt, error) {
	seeded, err := s.promptRepository.SeedDefaults(userID, s.defaults, s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to seed default prompts: %w", err)
	}
	if seeded {
		slog.Info("default prompts seeded", "user_id", userID, "count", len(s.defaults))
	}

	prompts, err := s.promptRepository.ByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get prompts: %w", err)
	}
	return prompts, nil
}

func (s *PromptService) Create(userID, label, value string) (*model.Prompt, error) {
	label, value, err := cleanPrompt(label, value)
	if err != nil {
		return nil, err
	}

	now := s.now()
	prompt := &model.Prompt{
		ID:        uuid.New().String(),
		UserID:    userID,
		Label:     label,
		Value:     value,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = s.promptRepository.Create(prompt)
	if err != nil {
		return nil, fmt.Errorf("failed to create prompt: %w", err)
	}

	return prompt, nil
}

func (s *PromptService) Update(userID, promptID, label, value string) (*model.Prompt, error) {
	label, value, err := cleanPrompt(label, value)
	if err != nil {
		return nil, err
	}

	prompt := &model.Prompt{
		ID:        promptID,
		UserID:    userID,
		Label:     label,
		Value:     value,
		UpdatedAt: s.now(),
	}

	err = s.promptRepository.Update(prompt)
	if err != nil {
		if errors.Is(err, repository.ErrPromptNotFound) {
			return nil, ErrPromptNotFound
		}
		return nil, fmt.Errorf("failed to update prompt: %w", err)
	}

	return prompt, nil
}

func (s *PromptService) Delete(userID, promptID string) error {
	err := s.promptRepository.Delete(userID, promptID)
	if err != nil {
		if errors.Is(err, repository.ErrPromptNotFound) {
			return ErrPromptNotFound
		}
		return fmt.Errorf("failed to delete prompt: %w", err)
	}
	return nil
}

// AllPrompts returns every user's prompts, newest first.
func (s *PromptService) AllPrompts() ([]*model.Prompt, error) {
	prompts, err := s.promptRepository.All(AllPromptsLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to get prompts: %w", err)
	}
	return prompts, nil
}

func cleanPrompt(label, value string) (string, string, error) {
	label = strings.TrimSpace(label)
	value = strings.TrimSpace(value)
	if label == "" {
		return "", "", &ValidationError{Msg: "label is required"}
	}
	if value == "" {
		return "", "", &ValidationError{Msg: "value is required"}
	}
	return label, value, nil
}
