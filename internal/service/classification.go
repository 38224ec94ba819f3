package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ecosnap/ecosnap/internal/imagehost"
	"github.com/ecosnap/ecosnap/internal/markdown"
	"github.com/ecosnap/ecosnap/internal/model"
	"github.com/ecosnap/ecosnap/internal/repository"
	"github.com/ecosnap/ecosnap/internal/validation"
	"github.com/ecosnap/ecosnap/internal/vision"
)

var (
	ErrUploadFailed         = errors.New("failed to upload image")
	ErrClassificationFailed = errors.New("failed to classify image")
	ErrPersistFailed        = errors.New("failed to save classification")
)

type ClassificationService struct {
	classificationRepository repository.ClassificationRepository
	host                     imagehost.Host
	classifier               vision.Classifier
	parser                   *markdown.Parser
	now                      func() time.Time
}

func NewClassificationService(
	classificationRepository repository.ClassificationRepository,
	host imagehost.Host,
	classifier vision.Classifier,
) *ClassificationService {
	return &ClassificationService{
		classificationRepository: classificationRepository,
		host:                     host,
		classifier:               classifier,
		parser:                   markdown.NewParser(),
		now:                      func() time.Time { return time.Now().UTC() },
	}
}

// Classify uploads the photo, asks the model about it and stores the
// answer. Nothing is written unless both the upload and the model succeed.
func (s *ClassificationService) Classify(ctx context.Context, userID, image, prompt string) (*model.Classification, error) {
	img, err := validation.DecodeImage(image)
	if err != nil {
		return nil, invalid(err)
	}

	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		prompt = model.DefaultClassificationPrompt
	}

	imageURL, err := s.host.Upload(ctx, img.Data, img.MimeType)
	if err != nil {
		slog.Error("image upload failed", "error", err, "user_id", userID, "mime_type", img.MimeType, "bytes", len(img.Data))
		return nil, fmt.Errorf("%w: %w", ErrUploadFailed, err)
	}
	if imageURL == "" {
		slog.Error("image host returned no url", "user_id", userID)
		return nil, ErrUploadFailed
	}

	answer, err := s.classifier.Classify(ctx, vision.Request{
		ImageURL:    imageURL,
		Image:       img.Data,
		ImageBase64: img.Base64,
		MimeType:    img.MimeType,
		Prompt:      prompt,
	})
	if err != nil {
		slog.Error("classification failed", "error", err, "user_id", userID, "image_url", imageURL)
		return nil, fmt.Errorf("%w: %w", ErrClassificationFailed, err)
	}

	c := &model.Classification{
		ID:        uuid.New().String(),
		UserID:    userID,
		ImageURL:  imageURL,
		Response:  answer,
		Prompt:    prompt,
		CreatedAt: s.now(),
	}

	err = s.classificationRepository.Create(c)
	if err != nil {
		slog.Error("failed to persist classification", "error", err, "user_id", userID)
		return nil, fmt.Errorf("%w: %w", ErrPersistFailed, err)
	}

	slog.Info("image classified", "classification_id", c.ID, "user_id", userID)
	return c, nil
}

// History returns the user's classifications, newest first. A limit
// outside 1..HistoryLimit means HistoryLimit.
func (s *ClassificationService) History(userID string, limit int, withHTML bool) ([]*model.Classification, error) {
	if limit < 1 || limit > model.HistoryLimit {
		limit = model.HistoryLimit
	}

	history, err := s.classificationRepository.ByUser(userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get history: %w", err)
	}

	if withHTML {
		s.renderHTML(history)
	}
	return history, nil
}

// AllHistory returns every user's classifications, newest first.
func (s *ClassificationService) AllHistory(withHTML bool) ([]*model.Classification, error) {
	history, err := s.classificationRepository.All(model.HistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to get history: %w", err)
	}

	if withHTML {
		s.renderHTML(history)
	}
	return history, nil
}

func (s *ClassificationService) renderHTML(history []*model.Classification) {
	for _, c := range history {
		html, err := s.parser.Render(c.Response)
		if err != nil {
			slog.Warn("failed to render classification", "error", err, "classification_id", c.ID)
			continue
		}
		c.ResponseHTML = html
	}
}
