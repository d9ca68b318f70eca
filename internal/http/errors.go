package api

import (
	"errors"
	"net/http"

	"council-vote/internal/domain/ballot"
	"council-vote/internal/domain/motion"
	"council-vote/internal/domain/notification"
	"council-vote/internal/domain/operator"
	"council-vote/internal/platform/apperr"
)

func errorResponse(w http.ResponseWriter, err error) {
	appErr := mapError(err)
	if appErr.StatusCode() >= http.StatusInternalServerError {
		httpLogger.Error("request failed", zapError(appErr))
	}
	writeJSON(w, appErr.StatusCode(), map[string]string{
		"error":   appErr.Code,
		"message": appErr.Message,
	})
}

func mapError(err error) *apperr.AppError {
	if err == nil {
		return apperr.Internal("internal_error", "internal server error", nil)
	}

	var appErr *apperr.AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	var inel *ballot.IneligibleError
	if errors.As(err, &inel) {
		return mapIneligible(inel)
	}

	switch {
	case errors.Is(err, operator.ErrInvalidCredentials):
		return apperr.Unauthorized("invalid_credentials", "invalid credentials", err)
	case errors.Is(err, motion.ErrNotFound):
		return apperr.NotFound("motion_not_found", "motion not found", err)
	case errors.Is(err, motion.ErrTitleRequired),
		errors.Is(err, motion.ErrInvalidOptions),
		errors.Is(err, motion.ErrInvalidWindow),
		errors.Is(err, motion.ErrInvalidRule),
		errors.Is(err, motion.ErrInvalidOutcome),
		errors.Is(err, motion.ErrInvalidStatus):
		return apperr.BadRequest("invalid_input", err.Error(), err)
	case errors.Is(err, motion.ErrInvalidTransition):
		return apperr.Conflict("invalid_transition", err.Error(), err)
	case errors.Is(err, motion.ErrStatusConflict):
		return apperr.Conflict("status_conflict", "motion status changed, retry", err)
	case errors.Is(err, motion.ErrResultsNotPublic):
		return apperr.Conflict("results_not_available", err.Error(), err)
	case errors.Is(err, motion.ErrOutcomeNotAllowed):
		return apperr.Conflict("outcome_not_allowed", err.Error(), err)
	case errors.Is(err, ballot.ErrNoTokens):
		return apperr.BadRequest("invalid_input", err.Error(), err)
	case errors.Is(err, ballot.ErrMotionFinished):
		return apperr.Conflict("motion_finished", err.Error(), err)
	case errors.Is(err, ballot.ErrTokenNotActive):
		return apperr.Conflict("token_not_active", err.Error(), err)
	case errors.Is(err, notification.ErrNotFound):
		return apperr.NotFound("notification_not_found", "notification not found", err)
	case errors.Is(err, notification.ErrStale):
		return apperr.Conflict("notification_changed", "notification changed, retry", err)
	default:
		return apperr.Internal("internal_error", http.StatusText(http.StatusInternalServerError), err)
	}
}

// mapIneligible keeps the rejection reason as the error code. Rejections that
// depend on the ballot state are conflicts; malformed ones are unprocessable.
func mapIneligible(e *ballot.IneligibleError) *apperr.AppError {
	switch e {
	case ballot.ErrTokenNotFound, ballot.ErrUnknownChoice:
		return apperr.Unprocessable(e.Reason, e.Message, e)
	default:
		return apperr.Conflict(e.Reason, e.Message, e)
	}
}
