/**
 * @description
 * Shared response helpers and the error-to-status mapping for the
 * beneficiary API. Every service failure maps one-to-one onto the error
 * taxonomy: format/validation rejections are 400s, duplicates are 409s,
 * missing or foreign-owned rows are 404s, everything else is a 500.
 */

package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/alokkulkarni/beneficiaries/internal/app"
	"github.com/alokkulkarni/beneficiaries/internal/store"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("level=error component=api msg=\"failed to encode response\" err=%v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

func mapBeneficiaryError(err error) (int, string) {
	switch {
	case errors.Is(err, app.ErrInvalidFormat),
		errors.Is(err, app.ErrValidationFailed):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, store.ErrDuplicateBeneficiary):
		return http.StatusConflict, err.Error()
	case errors.Is(err, store.ErrBeneficiaryNotFound):
		return http.StatusNotFound, "Beneficiary not found."
	}
	return http.StatusInternalServerError, "Could not process beneficiary request."
}
