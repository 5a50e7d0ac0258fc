package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/testhub-api/internal/handler/dto"
	"github.com/yourusername/testhub-api/internal/service"
	"github.com/yourusername/testhub-api/internal/service/scoring"
)

// AttemptHandler serves the attempt lifecycle: start, submit, results,
// AI feedback.
type AttemptHandler struct {
	attemptService  *service.AttemptService
	feedbackService *service.FeedbackService
}

// NewAttemptHandler creates a new attempt handler.
func NewAttemptHandler(attemptService *service.AttemptService, feedbackService *service.FeedbackService) *AttemptHandler {
	return &AttemptHandler{
		attemptService:  attemptService,
		feedbackService: feedbackService,
	}
}

// SubmittedAnswerRequest is one answer in the submission payload.
// Exactly one of the value fields should be set, matching the question
// type; mismatches are scored as incorrect or rejected by validation.
type SubmittedAnswerRequest struct {
	QuestionID        uint   `json:"question_id" binding:"required"`
	SelectedOptionID  *uint  `json:"selected_option_id,omitempty"`
	SelectedOptionIDs []uint `json:"selected_option_ids,omitempty"`
	FreeText          string `json:"free_text,omitempty"`
}

// SubmitAttemptRequest is the submission payload.
type SubmitAttemptRequest struct {
	Answers []SubmittedAnswerRequest `json:"answers" binding:"required,dive"`
}

// StartAttempt handles POST /api/tests/:id/attempts.
func (h *AttemptHandler) StartAttempt(c *gin.Context) {
	testID := c.MustGet("testID").(uint)

	attempt, err := h.attemptService.StartAttempt(mustSubject(c), testID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewAttemptResponse(attempt))
}

// SubmitAttempt handles POST /api/attempts/:id/submit. Submitting an
// already completed attempt returns a conflict.
func (h *AttemptHandler) SubmitAttempt(c *gin.Context) {
	attemptID := c.MustGet("attemptID").(uint)

	var req SubmitAttemptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	answers := make([]scoring.SubmittedAnswer, len(req.Answers))
	for i, a := range req.Answers {
		answers[i] = scoring.SubmittedAnswer{
			QuestionID:        a.QuestionID,
			SelectedOptionID:  a.SelectedOptionID,
			SelectedOptionIDs: a.SelectedOptionIDs,
			FreeText:          a.FreeText,
		}
	}

	attempt, err := h.attemptService.SubmitAttempt(mustSubject(c), attemptID, answers)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewAttemptResponse(attempt))
}

// GetAttempt handles GET /api/attempts/:id. For in-progress attempts
// the embedded questions carry no answer key.
func (h *AttemptHandler) GetAttempt(c *gin.Context) {
	attemptID := c.MustGet("attemptID").(uint)

	view, err := h.attemptService.GetAttempt(mustSubject(c), attemptID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"attempt": dto.NewAttemptResponse(view.Attempt),
		"test":    dto.NewTestResponse(view.Test, true, false),
	})
}

// GetAttemptResult handles GET /api/attempts/:id/result. Only completed
// attempts have a result; it includes per-question correctness and the
// answer key.
func (h *AttemptHandler) GetAttemptResult(c *gin.Context) {
	attemptID := c.MustGet("attemptID").(uint)

	view, err := h.attemptService.GetAttemptResult(mustSubject(c), attemptID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewAttemptResultResponse(view.Attempt, view.Test))
}

// ListMyAttempts handles GET /api/attempts.
func (h *AttemptHandler) ListMyAttempts(c *gin.Context) {
	page, perPage, limit, offset := pagination(c)

	attempts, total, err := h.attemptService.ListUserAttempts(mustSubject(c), limit, offset)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewPaginatedAttemptResponse(attempts, total, page, perPage))
}

// GenerateFeedback handles POST /api/attempts/:id/feedback.
func (h *AttemptHandler) GenerateFeedback(c *gin.Context) {
	attemptID := c.MustGet("attemptID").(uint)

	feedback, err := h.feedbackService.GenerateFeedback(c.Request.Context(), mustSubject(c), attemptID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, feedback)
}
