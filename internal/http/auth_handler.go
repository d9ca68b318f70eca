package api

import (
	"encoding/json"
	"net/http"

	"council-vote/internal/platform/apperr"
)

type authRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type authResponse struct {
	Token     string `json:"token"`
	Username  string `json:"username"`
	Role      string `json:"role"`
	ExpiresIn int64  `json:"expires_in"`
}

// @Summary     Administrator login
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request  body      authRequest  true  "Credentials"
// @Success     200      {object}  authResponse
// @Failure     400      {object}  map[string]string  "invalid body"
// @Failure     401      {object}  map[string]string  "invalid credentials"
// @Router      /api/v1/auth/login [post]
func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req authRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, apperr.BadRequest("invalid_input", "invalid body", err))
		return
	}

	op, err := h.operatorSvc.Login(req.Username, req.Password)
	if err != nil {
		errorResponse(w, err)
		return
	}

	token, err := h.jwtMgr.Generate(op.Username, op.Role, h.tokenTTL)
	if err != nil {
		errorResponse(w, apperr.Internal("internal_error", "could not issue token", err))
		return
	}

	writeJSON(w, http.StatusOK, authResponse{
		Token:     token,
		Username:  op.Username,
		Role:      op.Role,
		ExpiresIn: int64(h.tokenTTL.Seconds()),
	})
}
