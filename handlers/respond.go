package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	apperrors "mentorLinkAPI/pkg/errors"
)

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "Internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

// respondWithServiceError maps the error taxonomy to HTTP statuses.
// Anything without a code is treated as internal; internal causes are
// logged, not leaked.
func respondWithServiceError(w http.ResponseWriter, op string, err error) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		log.Printf("%s: unexpected error: %v", op, err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	status := http.StatusInternalServerError
	switch appErr.Code {
	case apperrors.CodeUnauthenticated:
		status = http.StatusUnauthorized
	case apperrors.CodeInvalidArgument:
		status = http.StatusBadRequest
	case apperrors.CodePermissionDenied:
		status = http.StatusForbidden
	case apperrors.CodeNotFound:
		status = http.StatusNotFound
	case apperrors.CodeAlreadyExists:
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		log.Printf("%s: internal error: %v", op, err)
	}
	respondWithError(w, status, appErr.Message)
}
