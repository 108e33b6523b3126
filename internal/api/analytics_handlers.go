/**
 * @description
 * This file defines the HTTP handlers for the beneficiary search, analytics
 * and reporting endpoints. These are read-only views over a customer's
 * beneficiaries; the heavy lifting happens in the service layer.
 *
 * @dependencies
 * - Standard Go libraries for HTTP, JSON and time parsing.
 * - The service's internal packages for app logic and middleware.
 */

package api

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/alokkulkarni/beneficiaries/internal/domain"
	"github.com/alokkulkarni/beneficiaries/pkg/middleware"
)

// SearchBeneficiaries handles the filtered, paginated beneficiary search.
// The criteria come from the request body; the customer ID always comes from
// the auth context, never from the client.
func (h *BeneficiaryHandler) SearchBeneficiaries(w http.ResponseWriter, r *http.Request) {
	customerID := middleware.GetCustomerIDFromContext(r.Context())
	if customerID == "" {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var criteria domain.SearchCriteria
	if err := json.NewDecoder(r.Body).Decode(&criteria); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	criteria.CustomerID = customerID

	page, err := h.service.Search(r.Context(), criteria)
	if err != nil {
		log.Printf("level=error component=api endpoint=search_beneficiaries outcome=failed customer_id=%s err=%v", customerID, err)
		writeError(w, http.StatusInternalServerError, "Could not search beneficiaries.")
		return
	}

	writeJSON(w, http.StatusOK, page)
}

// BeneficiaryAnalytics handles the per-customer analytics summary.
func (h *BeneficiaryHandler) BeneficiaryAnalytics(w http.ResponseWriter, r *http.Request) {
	customerID := middleware.GetCustomerIDFromContext(r.Context())
	if customerID == "" {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	analytics, err := h.service.Analytics(r.Context(), customerID)
	if err != nil {
		log.Printf("level=error component=api endpoint=beneficiary_analytics outcome=failed customer_id=%s err=%v", customerID, err)
		writeError(w, http.StatusInternalServerError, "Could not compute analytics.")
		return
	}

	writeJSON(w, http.StatusOK, analytics)
}

// PotentialDuplicates handles the advisory duplicate scan over a customer's
// active beneficiaries.
func (h *BeneficiaryHandler) PotentialDuplicates(w http.ResponseWriter, r *http.Request) {
	customerID := middleware.GetCustomerIDFromContext(r.Context())
	if customerID == "" {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	pairs, err := h.service.FindPotentialDuplicates(r.Context(), customerID)
	if err != nil {
		log.Printf("level=error component=api endpoint=potential_duplicates outcome=failed customer_id=%s err=%v", customerID, err)
		writeError(w, http.StatusInternalServerError, "Could not scan for duplicates.")
		return
	}

	writeJSON(w, http.StatusOK, pairs)
}

// UsageReport handles the period usage report. startDate and endDate are
// required RFC 3339 query parameters.
func (h *BeneficiaryHandler) UsageReport(w http.ResponseWriter, r *http.Request) {
	customerID := middleware.GetCustomerIDFromContext(r.Context())
	if customerID == "" {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	start, err := time.Parse(time.RFC3339, r.URL.Query().Get("startDate"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid or missing startDate, expected RFC 3339")
		return
	}
	end, err := time.Parse(time.RFC3339, r.URL.Query().Get("endDate"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid or missing endDate, expected RFC 3339")
		return
	}
	if !end.After(start) {
		writeError(w, http.StatusBadRequest, "endDate must be after startDate")
		return
	}

	report, err := h.service.UsageReport(r.Context(), customerID, start, end)
	if err != nil {
		log.Printf("level=error component=api endpoint=usage_report outcome=failed customer_id=%s err=%v", customerID, err)
		writeError(w, http.StatusInternalServerError, "Could not build usage report.")
		return
	}

	writeJSON(w, http.StatusOK, report)
}
