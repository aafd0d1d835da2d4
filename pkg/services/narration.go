package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-discovery/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-discovery/pkg/llm"
	"github.com/ekaya-inc/ekaya-discovery/pkg/logging"
	"github.com/ekaya-inc/ekaya-discovery/pkg/prompts"
	"github.com/ekaya-inc/ekaya-discovery/pkg/wizard"
)

// SuggestionRequest names the field a suggestion is wanted for.
type SuggestionRequest struct {
	Section      string
	Field        string
	CurrentInput string
}

// NarrationService produces AI prose for a session's record.
type NarrationService interface {
	// Suggest proposes text for one field of an editable session.
	Suggest(ctx context.Context, id string, req SuggestionRequest) (string, error)

	// Review writes a narrative review of the whole record.
	Review(ctx context.Context, id string) (string, error)
}

type narrationService struct {
	sessions SessionLookup
	narrator llm.Narrator
	language string
	metrics  *Metrics
	logger   *zap.Logger
}

// NewNarrationService creates a new narration service. Prompts ask for
// answers in language.
func NewNarrationService(
	sessions SessionLookup,
	narrator llm.Narrator,
	language string,
	metrics *Metrics,
	logger *zap.Logger,
) NarrationService {
	return &narrationService{
		sessions: sessions,
		narrator: narrator,
		language: language,
		metrics:  metrics,
		logger:   logger.Named("narration"),
	}
}

var _ NarrationService = (*narrationService)(nil)

func (s *narrationService) Suggest(ctx context.Context, id string, req SuggestionRequest) (string, error) {
	sess, err := s.sessions.Session(id)
	if err != nil {
		return "", err
	}
	if sess.ReadOnly() {
		return "", apperrors.ErrReadOnly
	}

	prompt := prompts.BuildSuggestionPrompt(prompts.SuggestionContext{
		Section:      req.Section,
		Field:        req.Field,
		CurrentInput: req.CurrentInput,
		ProjectName:  sess.Record().ProjectName,
	}, s.language)

	return s.generate(ctx, sess, wizard.ActionSuggest, prompt)
}

func (s *narrationService) Review(ctx context.Context, id string) (string, error) {
	sess, err := s.sessions.Session(id)
	if err != nil {
		return "", err
	}

	prompt := prompts.BuildReviewPrompt(sess.Record(), s.language)
	return s.generate(ctx, sess, wizard.ActionNarrate, prompt)
}

func (s *narrationService) generate(ctx context.Context, sess *wizard.Session, action wizard.Action, prompt string) (string, error) {
	busy := sess.Busy()
	if !busy.TryAcquire(action) {
		return "", fmt.Errorf("%s: %w", action, apperrors.ErrBusy)
	}
	defer busy.Release(action)

	s.logger.Debug("Requesting narration",
		zap.String("session_id", sess.ID),
		zap.String("action", string(action)),
		zap.String("prompt", logging.TruncateString(prompt, logging.MaxPromptLogLength)))

	text, err := s.narrator.Generate(ctx, prompt)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotConfigured) {
			s.metrics.failure(CollaboratorNarration)
			s.logger.Warn("Narration failed",
				zap.String("session_id", sess.ID),
				zap.String("action", string(action)),
				zap.String("model", s.narrator.Model()),
				zap.String("error", logging.SanitizeError(err)))
		}
		return "", err
	}
	return strings.TrimSpace(text), nil
}
