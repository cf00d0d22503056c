package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/shravanthakurgit/synergiaprep/internal/middleware"
	"github.com/shravanthakurgit/synergiaprep/internal/response"
	"github.com/shravanthakurgit/synergiaprep/internal/service"
)

// AttemptSessionHandler handles attempt lifecycle endpoints (join, resume).
type AttemptSessionHandler struct {
	sessionService *service.AttemptSessionService
}

// NewAttemptSessionHandler creates a new AttemptSessionHandler.
func NewAttemptSessionHandler(sessionService *service.AttemptSessionService) *AttemptSessionHandler {
	return &AttemptSessionHandler{sessionService: sessionService}
}

// Join godoc
// POST /api/v1/exams/:exam_id/join
// Opens an attempt session and starts the server clock. Idempotent: joining
// again resumes the original session.
func (h *AttemptSessionHandler) Join(c *gin.Context) {
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

	session, err := h.sessionService.Join(c.Request.Context(), examID, claims.UserID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrExamNotPublished):
			response.Fail(c, http.StatusNotFound, response.ErrExamNotPublished)
		case errors.Is(err, service.ErrAttemptCompleted):
			response.Fail(c, http.StatusConflict, response.ErrAttemptCompleted)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"session": session})
}

// GetState godoc
// GET /api/v1/exams/:exam_id/state
// Returns the resume payload: autosaved answers plus the authoritative
// remaining seconds computed from the server clock.
func (h *AttemptSessionHandler) GetState(c *gin.Context) {
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

	state, err := h.sessionService.GetState(c.Request.Context(), examID, claims.UserID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrExamNotPublished):
			response.Fail(c, http.StatusNotFound, response.ErrExamNotPublished)
		case errors.Is(err, service.ErrNoActiveAttempt):
			response.Fail(c, http.StatusNotFound, response.ErrNoActiveAttempt)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, state)
}
