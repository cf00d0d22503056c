package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/shravanthakurgit/synergiaprep/internal/response"
	"github.com/shravanthakurgit/synergiaprep/internal/service"
)

// ExamHandler serves the student-facing exam payload.
type ExamHandler struct {
	examService *service.ExamService
}

// NewExamHandler creates a new ExamHandler.
func NewExamHandler(examService *service.ExamService) *ExamHandler {
	return &ExamHandler{examService: examService}
}

// GetExamPaper godoc
// GET /api/v1/exams/:exam_id
// Returns the exam payload from Redis. Answer keys never appear here; only
// published exams are cached, so a miss means the exam is not available.
func (h *ExamHandler) GetExamPaper(c *gin.Context) {
	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	paper, err := h.examService.GetExamPaper(c.Request.Context(), examID)
	if err != nil {
		if errors.Is(err, service.ErrExamNotPublished) {
			response.Fail(c, http.StatusNotFound, response.ErrExamNotPublished)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, paper)
}
