/**
 * @description
 * This file defines the HTTP handlers for the beneficiary lifecycle
 * endpoints. Handlers parse requests, call the appropriate service method,
 * and write responses; all business rules live in the service layer.
 *
 * @dependencies
 * - Standard Go libraries for HTTP, JSON, etc.
 * - Chi router for URL parameter handling.
 * - The service's internal packages for app logic and middleware.
 */

package api

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/alokkulkarni/beneficiaries/internal/app"
	"github.com/alokkulkarni/beneficiaries/internal/domain"
	"github.com/alokkulkarni/beneficiaries/pkg/middleware"
)

// BeneficiaryHandler holds the dependencies for beneficiary-related handlers.
type BeneficiaryHandler struct {
	service *app.BeneficiaryService
	audit   *app.AuditService
}

// NewBeneficiaryHandler creates a new BeneficiaryHandler.
func NewBeneficiaryHandler(service *app.BeneficiaryService, audit *app.AuditService) *BeneficiaryHandler {
	return &BeneficiaryHandler{service: service, audit: audit}
}

// CreateBeneficiary handles the registration of a new beneficiary for the
// authenticated customer.
func (h *BeneficiaryHandler) CreateBeneficiary(w http.ResponseWriter, r *http.Request) {
	customerID := middleware.GetCustomerIDFromContext(r.Context())
	if customerID == "" {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req domain.BeneficiaryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.CustomerID = customerID

	beneficiary, err := h.service.Create(r.Context(), &req, middleware.GetActorFromContext(r.Context()))
	if err != nil {
		status, msg := mapBeneficiaryError(err)
		if status == http.StatusInternalServerError {
			log.Printf("level=error component=api endpoint=create_beneficiary outcome=failed customer_id=%s err=%v", customerID, err)
		}
		writeError(w, status, msg)
		return
	}

	writeJSON(w, http.StatusCreated, beneficiary)
}

// UpdateBeneficiary handles rewriting an existing beneficiary.
func (h *BeneficiaryHandler) UpdateBeneficiary(w http.ResponseWriter, r *http.Request) {
	customerID := middleware.GetCustomerIDFromContext(r.Context())
	if customerID == "" {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id, err := parseBeneficiaryID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid beneficiary ID")
		return
	}

	var req domain.BeneficiaryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.CustomerID = customerID

	beneficiary, err := h.service.Update(r.Context(), id, customerID, &req, middleware.GetActorFromContext(r.Context()))
	if err != nil {
		status, msg := mapBeneficiaryError(err)
		if status == http.StatusInternalServerError {
			log.Printf("level=error component=api endpoint=update_beneficiary outcome=failed beneficiary_id=%d customer_id=%s err=%v", id, customerID, err)
		}
		writeError(w, status, msg)
		return
	}

	writeJSON(w, http.StatusOK, beneficiary)
}

// DeleteBeneficiary handles the soft deletion of a specific beneficiary.
func (h *BeneficiaryHandler) DeleteBeneficiary(w http.ResponseWriter, r *http.Request) {
	customerID := middleware.GetCustomerIDFromContext(r.Context())
	if customerID == "" {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id, err := parseBeneficiaryID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid beneficiary ID")
		return
	}

	if err := h.service.Delete(r.Context(), id, customerID, middleware.GetActorFromContext(r.Context())); err != nil {
		status, msg := mapBeneficiaryError(err)
		if status == http.StatusInternalServerError {
			log.Printf("level=error component=api endpoint=delete_beneficiary outcome=failed beneficiary_id=%d customer_id=%s err=%v", id, customerID, err)
		}
		writeError(w, status, msg)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetBeneficiary handles fetching one beneficiary by ID.
func (h *BeneficiaryHandler) GetBeneficiary(w http.ResponseWriter, r *http.Request) {
	customerID := middleware.GetCustomerIDFromContext(r.Context())
	if customerID == "" {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id, err := parseBeneficiaryID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid beneficiary ID")
		return
	}

	beneficiary, err := h.service.Get(r.Context(), id, customerID)
	if err != nil {
		status, msg := mapBeneficiaryError(err)
		writeError(w, status, msg)
		return
	}

	writeJSON(w, http.StatusOK, beneficiary)
}

// ListBeneficiaries handles listing the customer's active beneficiaries,
// optionally filtered by originating account number.
func (h *BeneficiaryHandler) ListBeneficiaries(w http.ResponseWriter, r *http.Request) {
	customerID := middleware.GetCustomerIDFromContext(r.Context())
	if customerID == "" {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	beneficiaries, err := h.service.List(r.Context(), customerID, r.URL.Query().Get("accountNumber"))
	if err != nil {
		log.Printf("level=error component=api endpoint=list_beneficiaries outcome=failed customer_id=%s err=%v", customerID, err)
		writeError(w, http.StatusInternalServerError, "Could not retrieve beneficiaries.")
		return
	}

	writeJSON(w, http.StatusOK, beneficiaries)
}

// BeneficiaryAuditHistory handles fetching the audit trail for one beneficiary.
func (h *BeneficiaryHandler) BeneficiaryAuditHistory(w http.ResponseWriter, r *http.Request) {
	customerID := middleware.GetCustomerIDFromContext(r.Context())
	if customerID == "" {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id, err := parseBeneficiaryID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid beneficiary ID")
		return
	}

	history, err := h.audit.History(r.Context(), id, customerID)
	if err != nil {
		log.Printf("level=error component=api endpoint=beneficiary_audit outcome=failed beneficiary_id=%d customer_id=%s err=%v", id, customerID, err)
		writeError(w, http.StatusInternalServerError, "Could not retrieve audit history.")
		return
	}

	writeJSON(w, http.StatusOK, history)
}

// CustomerAuditHistory handles fetching the customer's full audit trail.
func (h *BeneficiaryHandler) CustomerAuditHistory(w http.ResponseWriter, r *http.Request) {
	customerID := middleware.GetCustomerIDFromContext(r.Context())
	if customerID == "" {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	history, err := h.audit.CustomerHistory(r.Context(), customerID)
	if err != nil {
		log.Printf("level=error component=api endpoint=customer_audit outcome=failed customer_id=%s err=%v", customerID, err)
		writeError(w, http.StatusInternalServerError, "Could not retrieve audit history.")
		return
	}

	writeJSON(w, http.StatusOK, history)
}

func parseBeneficiaryID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
