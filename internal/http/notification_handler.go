package api

import (
	"net/http"
	"strconv"

	"council-vote/internal/domain/motion"
	"council-vote/internal/platform/apperr"
)

// @Summary     Results notification state
// @Tags        notifications
// @Security    BearerAuth
// @Produce     json
// @Param       id   path      string  true  "Motion ID"
// @Success     200  {object}  notification.Notification
// @Failure     404  {object}  map[string]string  "not found"
// @Router      /api/v1/motions/{id}/notification [get]
func (h *Handler) handleGetNotification(w http.ResponseWriter, r *http.Request) {
	motionID, err := parseIDParam(r, "id")
	if err != nil {
		errorResponse(w, apperr.BadRequest("invalid_input", "invalid motion id", err))
		return
	}
	n, err := h.notificationSvc.Get(r.Context(), motionID)
	if err != nil {
		errorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

// @Summary     Enqueue results notification
// @Description Inserts the notification if absent. Safe to call repeatedly.
// @Tags        notifications
// @Security    BearerAuth
// @Produce     json
// @Param       id   path      string  true  "Motion ID"
// @Success     200  {object}  map[string]bool
// @Failure     404  {object}  map[string]string  "motion not found"
// @Failure     409  {object}  map[string]string  "motion still open"
// @Router      /api/v1/motions/{id}/notification [post]
func (h *Handler) handleEnsureNotification(w http.ResponseWriter, r *http.Request) {
	motionID, err := parseIDParam(r, "id")
	if err != nil {
		errorResponse(w, apperr.BadRequest("invalid_input", "invalid motion id", err))
		return
	}
	m, err := h.motionSvc.Get(r.Context(), motionID)
	if err != nil {
		errorResponse(w, err)
		return
	}
	if m.Status != motion.StatusClosed && m.Status != motion.StatusPublished {
		errorResponse(w, apperr.Conflict("motion_not_complete", "motion has not completed", nil))
		return
	}
	created, err := h.notificationSvc.EnsureNotification(r.Context(), motionID)
	if err != nil {
		errorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"created": created})
}

// @Summary     Re-send results notification
// @Description Resets a sent, abandoned or not applicable notification to pending.
// @Tags        notifications
// @Security    BearerAuth
// @Produce     json
// @Param       id   path      string  true  "Motion ID"
// @Success     200  {object}  notification.Notification
// @Failure     404  {object}  map[string]string  "not found"
// @Router      /api/v1/motions/{id}/notification/renotify [post]
func (h *Handler) handleRenotify(w http.ResponseWriter, r *http.Request) {
	motionID, err := parseIDParam(r, "id")
	if err != nil {
		errorResponse(w, apperr.BadRequest("invalid_input", "invalid motion id", err))
		return
	}
	n, err := h.notificationSvc.Renotify(r.Context(), motionID)
	if err != nil {
		errorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

// @Summary     Backfill results notifications
// @Tags        admin
// @Security    BearerAuth
// @Produce     json
// @Success     200  {object}  map[string]int
// @Router      /api/v1/admin/notifications/backfill [post]
func (h *Handler) handleBackfill(w http.ResponseWriter, r *http.Request) {
	created, err := h.notificationSvc.Backfill(r.Context())
	if err != nil {
		errorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"created": created})
}

// @Summary     Run a completion sweep now
// @Tags        admin
// @Security    BearerAuth
// @Produce     json
// @Success     200  {object}  worker.SweepReport
// @Router      /api/v1/admin/sweep [post]
func (h *Handler) handleSweep(w http.ResponseWriter, r *http.Request) {
	report, err := h.sweeper.SweepOnce(r.Context())
	if err != nil {
		errorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// @Summary     Run a delivery pass now
// @Tags        admin
// @Security    BearerAuth
// @Produce     json
// @Param       limit  query     int  false  "Maximum notifications to attempt"
// @Success     200    {object}  worker.DeliveryReport
// @Router      /api/v1/admin/deliver [post]
func (h *Handler) handleDeliver(w http.ResponseWriter, r *http.Request) {
	limit := h.batchSize
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			errorResponse(w, apperr.BadRequest("invalid_input", "limit must be a positive integer", err))
			return
		}
		limit = n
	}
	report, err := h.delivery.ProcessDueOnce(r.Context(), limit)
	if err != nil {
		errorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
