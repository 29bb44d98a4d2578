package api

import (
	"encoding/json"
	"log"
	"net/http"

	apperrors "urbpark/internal/errors"
)

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}

// respondError maps an error to its stable code and HTTP status. Unexpected
// errors are logged and surface only as INTERNAL_ERROR.
func respondError(w http.ResponseWriter, err error) {
	appErr := apperrors.From(err)
	if appErr.Code == apperrors.CodeInternal {
		log.Printf("Internal error: %v", err)
	}
	respondJSON(w, appErr.Status, map[string]string{
		"code":  appErr.Code,
		"error": appErr.Message,
	})
}
