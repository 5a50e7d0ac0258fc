package handler

import (
	"encoding/csv"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"github.com/yourusername/testhub-api/internal/domain/entity"
	"github.com/yourusername/testhub-api/internal/handler/dto"
	"github.com/yourusername/testhub-api/internal/rbac"
	"github.com/yourusername/testhub-api/internal/service"
)

// TestHandler serves test and question management endpoints.
type TestHandler struct {
	testService    *service.TestService
	attemptService *service.AttemptService
}

// NewTestHandler creates a new test handler.
func NewTestHandler(testService *service.TestService, attemptService *service.AttemptService) *TestHandler {
	return &TestHandler{
		testService:    testService,
		attemptService: attemptService,
	}
}

// TestRequest is the create/update payload for a test.
type TestRequest struct {
	Title            string `json:"title" binding:"required,min=3,max=200"`
	Description      string `json:"description" binding:"omitempty,max=2000"`
	Difficulty       int    `json:"difficulty" binding:"required,min=1,max=5"`
	TimeLimitSeconds int    `json:"time_limit_seconds" binding:"omitempty,min=0"`
	IsPublished      bool   `json:"is_published"`
}

// OptionRequest is one answer option in a question payload.
type OptionRequest struct {
	Text      string `json:"text" binding:"required,min=1,max=1000"`
	IsCorrect bool   `json:"is_correct"`
}

// QuestionRequest is the create/update payload for a question.
type QuestionRequest struct {
	Text       string          `json:"text" binding:"required,min=3,max=2000"`
	Type       string          `json:"type" binding:"required,oneof=single_choice multiple_choice free_text"`
	OrderIndex int             `json:"order_index"`
	Points     float64         `json:"points" binding:"required,gt=0"`
	Options    []OptionRequest `json:"options" binding:"omitempty,max=10,dive"`
}

// PublishRequest toggles test visibility.
type PublishRequest struct {
	IsPublished *bool `json:"is_published" binding:"required"`
}

func (req *TestRequest) toInput() service.TestInput {
	return service.TestInput{
		Title:            req.Title,
		Description:      req.Description,
		Difficulty:       req.Difficulty,
		TimeLimitSeconds: req.TimeLimitSeconds,
		IsPublished:      req.IsPublished,
	}
}

func (req *QuestionRequest) toInput() service.QuestionInput {
	in := service.QuestionInput{
		Text:       req.Text,
		Type:       req.Type,
		OrderIndex: req.OrderIndex,
		Points:     req.Points,
	}
	for _, opt := range req.Options {
		in.Options = append(in.Options, service.OptionInput{
			Text:      opt.Text,
			IsCorrect: opt.IsCorrect,
		})
	}
	return in
}

// CreateTest handles POST /api/tests.
func (h *TestHandler) CreateTest(c *gin.Context) {
	var req TestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	test, err := h.testService.CreateTest(mustSubject(c), req.toInput())
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewTestResponse(test, true, true))
}

// GetTest handles GET /api/tests/:id. Managers of the test also get
// the answer key; takers see options without correctness.
func (h *TestHandler) GetTest(c *gin.Context) {
	testID := c.MustGet("testID").(uint)
	subject := mustSubject(c)

	test, err := h.testService.GetTest(subject, testID)
	if err != nil {
		handleError(c, err)
		return
	}

	includeAnswers := rbac.CanManageTest(subject, test.CreatedBy)
	c.JSON(http.StatusOK, dto.NewTestResponse(test, true, includeAnswers))
}

// ListTests handles GET /api/tests with search and pagination. The
// listing is scoped to what the caller may see.
func (h *TestHandler) ListTests(c *gin.Context) {
	page, perPage, limit, offset := pagination(c)
	search := c.Query("search")

	tests, total, err := h.testService.ListTests(mustSubject(c), search, limit, offset)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewPaginatedTestResponse(tests, total, page, perPage))
}

// ListMyTests handles GET /api/tests/mine.
func (h *TestHandler) ListMyTests(c *gin.Context) {
	tests, err := h.testService.ListOwnTests(mustSubject(c))
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewListTestResponse(tests))
}

// UpdateTest handles PUT /api/tests/:id.
func (h *TestHandler) UpdateTest(c *gin.Context) {
	testID := c.MustGet("testID").(uint)

	var req TestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	test, err := h.testService.UpdateTest(mustSubject(c), testID, req.toInput())
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewTestResponse(test, true, true))
}

// SetPublished handles PATCH /api/tests/:id/publish.
func (h *TestHandler) SetPublished(c *gin.Context) {
	testID := c.MustGet("testID").(uint)

	var req PublishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.testService.SetPublished(mustSubject(c), testID, *req.IsPublished); err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": testID, "is_published": *req.IsPublished})
}

// DeleteTest handles DELETE /api/tests/:id. Questions, options,
// attempts and answers go with it.
func (h *TestHandler) DeleteTest(c *gin.Context) {
	testID := c.MustGet("testID").(uint)

	if err := h.testService.DeleteTest(mustSubject(c), testID); err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Test deleted"})
}

// AddQuestion handles POST /api/tests/:id/questions.
func (h *TestHandler) AddQuestion(c *gin.Context) {
	testID := c.MustGet("testID").(uint)

	var req QuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	question, err := h.testService.AddQuestion(mustSubject(c), testID, req.toInput())
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewQuestionResponse(question, true))
}

// UpdateQuestion handles PUT /api/questions/:id. The option set is
// replaced wholesale.
func (h *TestHandler) UpdateQuestion(c *gin.Context) {
	questionID := c.MustGet("questionID").(uint)

	var req QuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	question, err := h.testService.UpdateQuestion(mustSubject(c), questionID, req.toInput())
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewQuestionResponse(question, true))
}

// DeleteQuestion handles DELETE /api/questions/:id.
func (h *TestHandler) DeleteQuestion(c *gin.Context) {
	questionID := c.MustGet("questionID").(uint)

	if err := h.testService.DeleteQuestion(mustSubject(c), questionID); err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Question deleted"})
}

// ExportAttempts exports every attempt on a test in CSV or Excel format.
// GET /api/tests/:id/attempts/export?format=csv|xlsx
func (h *TestHandler) ExportAttempts(c *gin.Context) {
	testID := c.MustGet("testID").(uint)
	format := c.DefaultQuery("format", "csv")

	attempts, _, err := h.attemptService.ListTestAttempts(mustSubject(c), testID)
	if err != nil {
		handleError(c, err)
		return
	}

	filename := fmt.Sprintf("test_%d_attempts_%s", testID, time.Now().Format("2006-01-02"))

	switch format {
	case "xlsx":
		h.exportXLSX(c, attempts, filename)
	default:
		h.exportCSV(c, attempts, filename)
	}
}

var exportHeaders = []string{"Attempt ID", "User ID", "User Email", "Status", "Started At", "Finished At", "Score", "Max Score", "Percent"}

func exportRow(a *entity.Attempt) []string {
	email := ""
	if a.User != nil {
		email = a.User.Email
	}
	finished := ""
	if a.FinishedAt != nil {
		finished = a.FinishedAt.Format(time.RFC3339)
	}
	percent := ""
	if a.MaxScore > 0 && a.IsCompleted() {
		percent = fmt.Sprintf("%.1f", a.Score/a.MaxScore*100)
	}
	return []string{
		strconv.FormatUint(uint64(a.ID), 10),
		strconv.FormatUint(uint64(a.UserID), 10),
		sanitizeForExcel(email),
		a.Status,
		a.StartedAt.Format(time.RFC3339),
		finished,
		fmt.Sprintf("%.2f", a.Score),
		fmt.Sprintf("%.2f", a.MaxScore),
		percent,
	}
}

// exportCSV streams the attempts as CSV with proper escaping.
func (h *TestHandler) exportCSV(c *gin.Context, attempts []entity.Attempt, filename string) {
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.csv\"", filename))

	// BOM so Excel detects UTF-8.
	c.Writer.Write([]byte{0xEF, 0xBB, 0xBF})

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	writer.Write(exportHeaders)
	for i := range attempts {
		writer.Write(exportRow(&attempts[i]))
	}
}

// exportXLSX streams the attempts into an Excel workbook.
func (h *TestHandler) exportXLSX(c *gin.Context, attempts []entity.Attempt, filename string) {
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.xlsx\"", filename))

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Attempts"
	f.SetSheetName("Sheet1", sheetName)

	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		log.Printf("[TestHandler] Failed to create stream writer: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create Excel file"})
		return
	}

	headers := make([]interface{}, len(exportHeaders))
	for i, hd := range exportHeaders {
		headers[i] = hd
	}
	if err := sw.SetRow("A1", headers); err != nil {
		log.Printf("[TestHandler] Failed to write header row: %v", err)
	}

	for i := range attempts {
		cell := fmt.Sprintf("A%d", i+2)
		values := exportRow(&attempts[i])
		row := make([]interface{}, len(values))
		for j, v := range values {
			row[j] = v
		}
		if err := sw.SetRow(cell, row); err != nil {
			log.Printf("[TestHandler] Failed to write row %d: %v", i+2, err)
		}
	}

	if err := sw.Flush(); err != nil {
		log.Printf("[TestHandler] Failed to flush stream writer: %v", err)
	}
	if err := f.Write(c.Writer); err != nil {
		log.Printf("[TestHandler] Failed to write workbook to response: %v", err)
	}
}

// sanitizeForExcel guards exported strings against formula injection.
func sanitizeForExcel(s string) string {
	if len(s) == 0 {
		return s
	}
	if s[0] == '=' || s[0] == '+' || s[0] == '-' || s[0] == '@' || s[0] == '\t' || s[0] == '\r' {
		return "'" + s
	}
	return s
}
