package router

import (
	"errors"
	"net/http"

	"github.com/golang/glog"

	"gradebetter/internal/qerrors"
)

// respondError maps an error to a stable HTTP status: not-found errors to
// 404, validation and policy violations to 400-class client errors, and
// everything else (including upstream failures, which are logged) to a
// generic 500.
func respondError(w http.ResponseWriter, err error) {
	switch {
	case qerrors.IsNotFound(err):
		http.Error(w, err.Error(), http.StatusNotFound)
	case qerrors.IsValidation(err):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case qerrors.IsPolicyViolation(err):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, qerrors.SubmissionConflictError):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, qerrors.GradingFailedError), errors.Is(err, qerrors.RubricGenerationFailedError):
		glog.Errorf("upstream failure: %v\n", err)
		http.Error(w, qerrors.GradingFailedError.Error(), http.StatusInternalServerError)
	default:
		glog.Errorf("internal error: %v\n", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// validateURLID rejects malformed identifiers before any database access.
func validateURLID(w http.ResponseWriter, id string) bool {
	if id == "" || len(id) > 256 {
		http.Error(w, qerrors.InvalidIDError.Error(), http.StatusBadRequest)
		return false
	}
	return true
}
