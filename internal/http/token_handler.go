package api

import (
	"encoding/json"
	"net/http"

	"council-vote/internal/domain/ballot"
	"council-vote/internal/platform/apperr"
)

type issueTokensRequest struct {
	Recipients []ballot.TokenRequest `json:"recipients"`
}

// @Summary     Issue voter tokens
// @Description Token values are returned only in this response.
// @Tags        tokens
// @Security    BearerAuth
// @Accept      json
// @Produce     json
// @Param       id       path      string              true  "Motion ID"
// @Param       request  body      issueTokensRequest  true  "One entry per voter"
// @Success     201      {array}   ballot.IssuedToken
// @Failure     400      {object}  map[string]string  "invalid input"
// @Failure     409      {object}  map[string]string  "motion finished"
// @Router      /api/v1/motions/{id}/tokens [post]
func (h *Handler) handleIssueTokens(w http.ResponseWriter, r *http.Request) {
	motionID, err := parseIDParam(r, "id")
	if err != nil {
		errorResponse(w, apperr.BadRequest("invalid_input", "invalid motion id", err))
		return
	}
	var req issueTokensRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, apperr.BadRequest("invalid_input", "invalid body", err))
		return
	}
	issued, err := h.ballotSvc.IssueTokens(r.Context(), motionID, req.Recipients)
	if err != nil {
		errorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, issued)
}

// @Summary     List voter tokens
// @Tags        tokens
// @Security    BearerAuth
// @Produce     json
// @Param       id   path      string  true  "Motion ID"
// @Success     200  {array}   ballot.VoterToken
// @Failure     404  {object}  map[string]string  "not found"
// @Router      /api/v1/motions/{id}/tokens [get]
func (h *Handler) handleListTokens(w http.ResponseWriter, r *http.Request) {
	motionID, err := parseIDParam(r, "id")
	if err != nil {
		errorResponse(w, apperr.BadRequest("invalid_input", "invalid motion id", err))
		return
	}
	tokens, err := h.ballotSvc.ListTokens(r.Context(), motionID)
	if err != nil {
		errorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tokens)
}

// @Summary     Revoke a voter token
// @Tags        tokens
// @Security    BearerAuth
// @Param       id   path  string  true  "Token ID"
// @Success     204
// @Failure     409  {object}  map[string]string  "token not active"
// @Failure     422  {object}  map[string]string  "token not found"
// @Router      /api/v1/tokens/{id}/revoke [post]
func (h *Handler) handleRevokeToken(w http.ResponseWriter, r *http.Request) {
	tokenID, err := parseIDParam(r, "id")
	if err != nil {
		errorResponse(w, apperr.BadRequest("invalid_input", "invalid token id", err))
		return
	}
	if err := h.ballotSvc.Revoke(r.Context(), tokenID); err != nil {
		errorResponse(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// @Summary     Send voting invitations
// @Description Mails every active, not yet invited token its voting link.
// @Tags        tokens
// @Security    BearerAuth
// @Produce     json
// @Param       id   path      string  true  "Motion ID"
// @Success     200  {object}  ballot.InvitationReport
// @Failure     404  {object}  map[string]string  "not found"
// @Router      /api/v1/motions/{id}/invitations [post]
func (h *Handler) handleSendInvitations(w http.ResponseWriter, r *http.Request) {
	motionID, err := parseIDParam(r, "id")
	if err != nil {
		errorResponse(w, apperr.BadRequest("invalid_input", "invalid motion id", err))
		return
	}
	if h.mailer == nil {
		errorResponse(w, apperr.Internal("mailer_unavailable", "no mail transport configured", nil))
		return
	}
	report, err := h.ballotSvc.SendInvitations(r.Context(), motionID, h.mailer, h.baseURL)
	if err != nil {
		errorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
