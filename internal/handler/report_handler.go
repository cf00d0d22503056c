package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/shravanthakurgit/synergiaprep/internal/middleware"
	"github.com/shravanthakurgit/synergiaprep/internal/model"
	"github.com/shravanthakurgit/synergiaprep/internal/response"
	"github.com/shravanthakurgit/synergiaprep/internal/service"
	"github.com/shravanthakurgit/synergiaprep/internal/validator"
)

// ReportHandler handles post-exam report endpoints.
type ReportHandler struct {
	reportService     *service.ReportService
	submissionService *service.SubmissionService
	log               zerolog.Logger
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(
	reportService *service.ReportService,
	submissionService *service.SubmissionService,
	log zerolog.Logger,
) *ReportHandler {
	return &ReportHandler{
		reportService:     reportService,
		submissionService: submissionService,
		log:               log.With().Str("component", "report_handler").Logger(),
	}
}

// Generate godoc
// POST /api/v1/reports/exams/:exam_id/generate-report
// Builds the report for a scored submission, returns it immediately, and
// queues the row for asynchronous persistence.
func (h *ReportHandler) Generate(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.GenerateReportRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	submission, err := h.submissionService.GetByID(c.Request.Context(), req.SubmissionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if submission.UserID != claims.UserID {
		response.Fail(c, http.StatusForbidden, response.ErrForbidden)
		return
	}

	report, err := h.reportService.Generate(c.Request.Context(), examID, req.SubmissionID)
	if err != nil {
		if errors.Is(err, service.ErrSubmissionNotScored) {
			response.Fail(c, http.StatusConflict, response.ErrSubmissionNotScored)
			return
		}
		h.log.Error().Err(err).Str("submission_id", req.SubmissionID.String()).Msg("Report generation failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, report)
}
