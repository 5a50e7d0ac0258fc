package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/yourusername/testhub-api/internal/domain/entity"
	"github.com/yourusername/testhub-api/internal/domain/repository"
	apperrors "github.com/yourusername/testhub-api/internal/pkg/errors"
	"github.com/yourusername/testhub-api/internal/rbac"
)

const (
	feedbackCacheTTL     = 24 * time.Hour
	feedbackMaxQuestions = 15
	feedbackQuestionCut  = 360
	feedbackAnswerCut    = 240
)

// ChatCompleter is the slice of the OpenAI client the feedback service
// needs. *openai.Client satisfies it.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// FeedbackService generates a short natural-language review of a
// completed attempt via an LLM. Results are cached per attempt, so
// repeated requests do not re-spend tokens.
type FeedbackService struct {
	attemptRepo  repository.AttemptRepository
	testRepo     repository.TestRepository
	questionRepo repository.QuestionRepository
	cacheRepo    repository.CacheRepository
	client       ChatCompleter
	model        string
	temperature  float32
}

// NewFeedbackService creates a new feedback service. A nil client means
// feedback is not configured and requests fail with ErrFeedbackUnavailable.
func NewFeedbackService(
	attemptRepo repository.AttemptRepository,
	testRepo repository.TestRepository,
	questionRepo repository.QuestionRepository,
	cacheRepo repository.CacheRepository,
	client ChatCompleter,
	model string,
	temperature float32,
) *FeedbackService {
	return &FeedbackService{
		attemptRepo:  attemptRepo,
		testRepo:     testRepo,
		questionRepo: questionRepo,
		cacheRepo:    cacheRepo,
		client:       client,
		model:        model,
		temperature:  temperature,
	}
}

// Feedback is the generated review of an attempt.
type Feedback struct {
	AttemptID uint   `json:"attempt_id"`
	Text      string `json:"text"`
	Cached    bool   `json:"cached"`
}

// GenerateFeedback returns LLM feedback for a completed attempt owned by
// the subject. The first successful generation is cached for a day.
func (s *FeedbackService) GenerateFeedback(ctx context.Context, subject rbac.Subject, attemptID uint) (*Feedback, error) {
	attempt, err := s.attemptRepo.GetWithAnswers(attemptID)
	if err != nil {
		return nil, err
	}
	if !rbac.CanViewAttempt(subject, attempt.UserID) {
		return nil, apperrors.ErrForbidden
	}
	if !attempt.IsCompleted() {
		return nil, ErrAttemptNotCompleted
	}

	cacheKey := fmt.Sprintf("attempt:%d:feedback", attempt.ID)
	if s.cacheRepo != nil {
		var cached Feedback
		if err := s.cacheRepo.GetJSON(cacheKey, &cached); err == nil && cached.Text != "" {
			cached.Cached = true
			return &cached, nil
		}
	}

	if s.client == nil {
		return nil, ErrFeedbackUnavailable
	}

	test, err := s.testRepo.GetByID(attempt.TestID)
	if err != nil {
		return nil, err
	}
	questions, err := s.questionRepo.GetByTestID(attempt.TestID)
	if err != nil {
		return nil, fmt.Errorf("failed to load questions: %w", err)
	}

	prompt := buildFeedbackPrompt(test, questions, attempt)

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       s.model,
		Temperature: s.temperature,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleSystem,
				Content: "You are a friendly tutor. Review the quiz attempt below and give the " +
					"student short, encouraging feedback: what went well, what to revisit, and " +
					"one concrete study suggestion. Answer in at most 5 sentences.",
			},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		log.Printf("[FeedbackService] completion for attempt #%d failed: %v", attempt.ID, err)
		return nil, ErrFeedbackUnavailable
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		log.Printf("[FeedbackService] empty completion for attempt #%d", attempt.ID)
		return nil, ErrFeedbackUnavailable
	}

	feedback := &Feedback{
		AttemptID: attempt.ID,
		Text:      strings.TrimSpace(resp.Choices[0].Message.Content),
	}

	if s.cacheRepo != nil {
		if err := s.cacheRepo.SetJSON(cacheKey, feedback, feedbackCacheTTL); err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			log.Printf("[FeedbackService] failed to cache feedback for attempt #%d: %v", attempt.ID, err)
		}
	}

	return feedback, nil
}

// buildFeedbackPrompt summarizes the attempt into a compact transcript.
// Question and answer texts are trimmed and the question count is capped
// to keep the prompt small.
func buildFeedbackPrompt(test *entity.Test, questions []entity.Question, attempt *entity.Attempt) string {
	answersByQuestion := make(map[uint]entity.AttemptAnswer, len(attempt.Answers))
	for _, ans := range attempt.Answers {
		answersByQuestion[ans.QuestionID] = ans
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Test: %s\n", shorten(test.Title, feedbackQuestionCut))
	fmt.Fprintf(&b, "Score: %.2f out of %.2f\n\n", attempt.Score, attempt.MaxScore)

	for i, q := range questions {
		if i >= feedbackMaxQuestions {
			fmt.Fprintf(&b, "(%d more questions omitted)\n", len(questions)-feedbackMaxQuestions)
			break
		}

		fmt.Fprintf(&b, "Q%d (%s): %s\n", i+1, q.Type, shorten(q.Text, feedbackQuestionCut))
		ans, answered := answersByQuestion[q.ID]
		if !answered {
			b.WriteString("Answer: (not answered)\n\n")
			continue
		}

		fmt.Fprintf(&b, "Answer: %s\n", shorten(describeAnswer(q, ans), feedbackAnswerCut))
		switch {
		case ans.IsCorrect == nil:
			b.WriteString("Outcome: not auto-scored\n\n")
		case *ans.IsCorrect:
			b.WriteString("Outcome: correct\n\n")
		default:
			b.WriteString("Outcome: incorrect\n\n")
		}
	}

	return b.String()
}

// describeAnswer renders the submitted answer as text, resolving option
// ids to their labels where possible.
func describeAnswer(q entity.Question, ans entity.AttemptAnswer) string {
	optionText := make(map[uint]string, len(q.Options))
	for _, opt := range q.Options {
		optionText[opt.ID] = opt.Text
	}

	switch q.Type {
	case entity.QuestionTypeFreeText:
		if ans.FreeText == "" {
			return "(empty)"
		}
		return ans.FreeText
	case entity.QuestionTypeMultipleChoice:
		if len(ans.SelectedOptionIDs) == 0 {
			return "(nothing selected)"
		}
		parts := make([]string, 0, len(ans.SelectedOptionIDs))
		for _, id := range ans.SelectedOptionIDs {
			if text, ok := optionText[id]; ok {
				parts = append(parts, text)
			} else {
				parts = append(parts, fmt.Sprintf("option #%d", id))
			}
		}
		return strings.Join(parts, "; ")
	default:
		if ans.SelectedOptionID == nil {
			return "(nothing selected)"
		}
		if text, ok := optionText[*ans.SelectedOptionID]; ok {
			return text
		}
		return fmt.Sprintf("option #%d", *ans.SelectedOptionID)
	}
}

// shorten cuts s to at most limit runes, appending an ellipsis when cut.
func shorten(s string, limit int) string {
	runes := []rune(strings.TrimSpace(s))
	if len(runes) <= limit {
		return string(runes)
	}
	return string(runes[:limit]) + "..."
}
