package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"council-vote/internal/domain/motion"
	"council-vote/internal/platform/apperr"
)

type createMotionRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Options     []string `json:"options"`
	OpensAt     string   `json:"opens_at"`
	ClosesAt    string   `json:"closes_at"`
	Majority    string   `json:"required_majority"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

type setOutcomeRequest struct {
	Outcome *string `json:"outcome"`
	Notes   *string `json:"notes"`
}

// publicMotion is what a voter sees before casting a ballot.
type publicMotion struct {
	ID          string    `json:"id"`
	Reference   string    `json:"reference"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Options     []string  `json:"options"`
	OpensAt     time.Time `json:"opens_at"`
	ClosesAt    time.Time `json:"closes_at"`
	Status      string    `json:"status"`
}

// @Summary     Create motion
// @Tags        motions
// @Security    BearerAuth
// @Accept      json
// @Produce     json
// @Param       request  body      createMotionRequest  true  "Motion"
// @Success     201      {object}  motion.Motion
// @Failure     400      {object}  map[string]string  "invalid input"
// @Failure     401      {object}  map[string]string  "unauthorized"
// @Router      /api/v1/motions [post]
func (h *Handler) handleCreateMotion(w http.ResponseWriter, r *http.Request) {
	var req createMotionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, apperr.BadRequest("invalid_input", "invalid body", err))
		return
	}
	opensAt, err := time.Parse(time.RFC3339, req.OpensAt)
	if err != nil {
		errorResponse(w, apperr.BadRequest("invalid_input", "opens_at must be RFC3339", err))
		return
	}
	closesAt, err := time.Parse(time.RFC3339, req.ClosesAt)
	if err != nil {
		errorResponse(w, apperr.BadRequest("invalid_input", "closes_at must be RFC3339", err))
		return
	}

	m := &motion.Motion{
		Title:       req.Title,
		Description: req.Description,
		Options:     req.Options,
		OpensAt:     opensAt.UTC(),
		ClosesAt:    closesAt.UTC(),
		Majority:    motion.Majority(req.Majority),
	}
	if err := h.motionSvc.Create(r.Context(), m); err != nil {
		errorResponse(w, err)
		return
	}
	httpLogger.Info("motion created", zap.String("motion_id", m.ID.String()), zap.String("by", actor(r)))
	writeJSON(w, http.StatusCreated, m)
}

// @Summary     List motions
// @Tags        motions
// @Security    BearerAuth
// @Produce     json
// @Param       status  query     string  false  "draft, open, closed or published"
// @Success     200     {array}   motion.Motion
// @Failure     400     {object}  map[string]string  "invalid status"
// @Router      /api/v1/motions [get]
func (h *Handler) handleListMotions(w http.ResponseWriter, r *http.Request) {
	var status *motion.Status
	if s := r.URL.Query().Get("status"); s != "" {
		st := motion.Status(s)
		status = &st
	}
	motions, err := h.motionSvc.List(r.Context(), status)
	if err != nil {
		errorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusOK, motions)
}

// @Summary     Get motion
// @Tags        motions
// @Produce     json
// @Param       id   path      string  true  "Motion ID"
// @Success     200  {object}  publicMotion
// @Failure     404  {object}  map[string]string  "not found"
// @Router      /api/v1/motions/{id} [get]
func (h *Handler) handleGetMotion(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		errorResponse(w, apperr.BadRequest("invalid_input", "invalid motion id", err))
		return
	}
	m, err := h.motionSvc.Get(r.Context(), id)
	if err != nil {
		errorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusOK, publicMotion{
		ID:          m.ID.String(),
		Reference:   m.Reference,
		Title:       m.Title,
		Description: m.Description,
		Options:     m.Options,
		OpensAt:     m.OpensAt,
		ClosesAt:    m.ClosesAt,
		Status:      string(m.Status),
	})
}

// @Summary     Advance motion status
// @Description Moves a motion one step: draft to open, open to closed, closed to published.
// @Tags        motions
// @Security    BearerAuth
// @Accept      json
// @Param       id       path  string               true  "Motion ID"
// @Param       request  body  updateStatusRequest  true  "Target status"
// @Success     204
// @Failure     404  {object}  map[string]string  "not found"
// @Failure     409  {object}  map[string]string  "invalid transition"
// @Router      /api/v1/motions/{id}/status [patch]
func (h *Handler) handleAdvanceMotion(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		errorResponse(w, apperr.BadRequest("invalid_input", "invalid motion id", err))
		return
	}
	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, apperr.BadRequest("invalid_input", "invalid body", err))
		return
	}
	to := motion.Status(req.Status)
	if !to.Valid() {
		errorResponse(w, motion.ErrInvalidStatus)
		return
	}
	if err := h.motionSvc.Advance(r.Context(), id, to); err != nil {
		errorResponse(w, err)
		return
	}
	httpLogger.Info("motion advanced",
		zap.String("motion_id", id.String()),
		zap.String("status", req.Status),
		zap.String("by", actor(r)),
	)
	w.WriteHeader(http.StatusNoContent)
}

// @Summary     Set administrator outcome
// @Tags        motions
// @Security    BearerAuth
// @Accept      json
// @Param       id       path  string             true  "Motion ID"
// @Param       request  body  setOutcomeRequest  true  "Outcome and notes; a null outcome clears the override"
// @Success     204
// @Failure     400  {object}  map[string]string  "invalid outcome"
// @Failure     409  {object}  map[string]string  "motion not closed"
// @Router      /api/v1/motions/{id}/outcome [put]
func (h *Handler) handleSetOutcome(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		errorResponse(w, apperr.BadRequest("invalid_input", "invalid motion id", err))
		return
	}
	var req setOutcomeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, apperr.BadRequest("invalid_input", "invalid body", err))
		return
	}
	var outcome *motion.Outcome
	if req.Outcome != nil {
		o := motion.Outcome(*req.Outcome)
		outcome = &o
	}
	if err := h.motionSvc.SetOutcome(r.Context(), id, outcome, req.Notes); err != nil {
		errorResponse(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// @Summary     Motion results
// @Description Available without authentication once the motion is closed or published.
// @Tags        motions
// @Produce     json
// @Param       id   path      string  true  "Motion ID"
// @Success     200  {object}  motion.Results
// @Failure     404  {object}  map[string]string  "not found"
// @Failure     409  {object}  map[string]string  "motion still open"
// @Router      /api/v1/motions/{id}/results [get]
func (h *Handler) handleResults(w http.ResponseWriter, r *http.Request) {
	h.writeResults(w, r, h.motionSvc.PublicResults)
}

// @Summary     Live motion tally
// @Tags        admin
// @Security    BearerAuth
// @Produce     json
// @Param       id   path      string  true  "Motion ID"
// @Success     200  {object}  motion.Results
// @Failure     404  {object}  map[string]string  "not found"
// @Router      /api/v1/admin/motions/{id}/results [get]
func (h *Handler) handleAdminResults(w http.ResponseWriter, r *http.Request) {
	h.writeResults(w, r, h.motionSvc.Results)
}

func (h *Handler) writeResults(w http.ResponseWriter, r *http.Request, load func(context.Context, uuid.UUID) (*motion.Results, error)) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		errorResponse(w, apperr.BadRequest("invalid_input", "invalid motion id", err))
		return
	}
	res, err := load(r.Context(), id)
	if err != nil {
		errorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
