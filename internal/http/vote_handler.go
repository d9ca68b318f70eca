package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"council-vote/internal/domain/ballot"
	"council-vote/internal/metrics"
	"council-vote/internal/platform/apperr"
)

type voteRequest struct {
	Token  string `json:"token"`
	Choice string `json:"choice"`
}

// @Summary     Cast a ballot
// @Description Records one ballot for a voter token. Each token votes once.
// @Tags        votes
// @Accept      json
// @Produce     json
// @Param       id       path      string       true  "Motion ID"
// @Param       request  body      voteRequest  true  "Ballot"
// @Success     201      {object}  ballot.Ballot
// @Failure     400      {object}  map[string]string  "invalid body"
// @Failure     409      {object}  map[string]string  "token used or revoked, motion not open, voting window"
// @Failure     422      {object}  map[string]string  "unknown token or choice"
// @Failure     429      {object}  map[string]string  "rate limited"
// @Router      /api/v1/motions/{id}/vote [post]
func (h *Handler) handleVote(w http.ResponseWriter, r *http.Request) {
	motionID, err := parseIDParam(r, "id")
	if err != nil {
		errorResponse(w, apperr.BadRequest("invalid_input", "invalid motion id", err))
		return
	}

	var req voteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, apperr.BadRequest("invalid_input", "invalid body", err))
		return
	}

	b, err := h.ballotSvc.SubmitVote(r.Context(), ballot.SubmitRequest{
		MotionID:   motionID,
		Token:      req.Token,
		Choice:     req.Choice,
		UserAgent:  r.UserAgent(),
		ClientAddr: clientIP(r),
	})
	if err != nil {
		var inel *ballot.IneligibleError
		if errors.As(err, &inel) {
			metrics.IncVote(inel.Reason)
		} else {
			metrics.IncVote("error")
		}
		errorResponse(w, err)
		return
	}

	metrics.IncVote("accepted")
	writeJSON(w, http.StatusCreated, b)
}
