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

// SubmissionHandler handles submission recording and scoring.
type SubmissionHandler struct {
	submissionService *service.SubmissionService
	scoringService    *service.ScoringService
	log               zerolog.Logger
}

// NewSubmissionHandler creates a new SubmissionHandler.
func NewSubmissionHandler(
	submissionService *service.SubmissionService,
	scoringService *service.ScoringService,
	log zerolog.Logger,
) *SubmissionHandler {
	return &SubmissionHandler{
		submissionService: submissionService,
		scoringService:    scoringService,
		log:               log.With().Str("component", "submission_handler").Logger(),
	}
}

// Record godoc
// POST /api/v1/user-submissions
// Records the full answer collection of a finished attempt. Idempotent per
// (user, exam): a retried call returns the original receipt.
func (h *SubmissionHandler) Record(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.RecordSubmissionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	receipt, err := h.submissionService.Record(c.Request.Context(), claims.UserID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrExamNotPublished):
			response.Fail(c, http.StatusNotFound, response.ErrExamNotPublished)
		case errors.Is(err, service.ErrAnswerMismatch):
			response.Fail(c, http.StatusBadRequest, response.ErrAnswerMismatch)
		default:
			h.log.Error().Err(err).Msg("Record submission failed")
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusCreated, receipt)
}

// Score godoc
// POST /api/v1/user-submissions/:submission_id/score
// Grades a recorded submission. Safe to retry: a second call recomputes
// from the same stored answers.
func (h *SubmissionHandler) Score(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	submissionID, err := uuid.Parse(c.Param("submission_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	submission, err := h.submissionService.GetByID(c.Request.Context(), submissionID)
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

	result, err := h.scoringService.ScoreSubmission(c.Request.Context(), submissionID)
	if err != nil {
		h.log.Error().Err(err).Str("submission_id", submissionID.String()).Msg("Scoring failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, result)
}
