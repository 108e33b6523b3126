package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"

	"github.com/alokkulkarni/beneficiaries/internal/app"
	"github.com/alokkulkarni/beneficiaries/internal/config"
	"github.com/alokkulkarni/beneficiaries/internal/domain"
	"github.com/alokkulkarni/beneficiaries/internal/store"
)

const testSecret = "test-secret"

// stubScreeningClient accepts everything except account numbers with the 999
// sanctions prefix.
type stubScreeningClient struct{}

func (c *stubScreeningClient) Screen(ctx context.Context, accountNumber, bankCode, name, beneficiaryType string) (*domain.ScreeningResult, error) {
	if strings.HasPrefix(accountNumber, "999") {
		return &domain.ScreeningResult{Valid: true, Sanctioned: true}, nil
	}
	return &domain.ScreeningResult{Valid: true, AccountStatus: "ACTIVE"}, nil
}

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	validator := app.NewValidator(app.ValidationConfig{Enabled: true}, &stubScreeningClient{})
	audit := app.NewAuditService(store.NewMemoryAuditRepository(), nil, app.AuditConfig{})
	service := app.NewBeneficiaryService(store.NewMemoryBeneficiaryRepository(), validator, audit)
	return NewRouter(&config.Config{JWTSecret: testSecret}, service, audit, nil)
}

func signToken(t *testing.T, customerID string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"customer_id": customerID,
		"actor":       "agent-7",
	})
	signed, err := token.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func doRequest(t *testing.T, handler http.Handler, method, path, customerID string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if customerID != "" {
		req.Header.Set("Authorization", "Bearer "+signToken(t, customerID))
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func validBody() map[string]string {
	return map[string]string{
		"beneficiary_name":           "John Doe",
		"beneficiary_account_number": "12345678",
		"beneficiary_bank_code":      "FNBAZA",
	}
}

func TestCreateBeneficiaryEndpoint(t *testing.T) {
	server := newTestServer(t)

	rec := doRequest(t, server, http.MethodPost, "/beneficiaries", "cust-1", validBody())
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var saved domain.Beneficiary
	if err := json.Unmarshal(rec.Body.Bytes(), &saved); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if saved.ID == 0 || saved.Status != domain.StatusActive {
		t.Fatalf("unexpected response body: %+v", saved)
	}
	// The customer identity comes from the token, never the payload.
	if saved.CustomerID != "cust-1" {
		t.Fatalf("expected token-derived customer, got %q", saved.CustomerID)
	}
}

func TestCreateBeneficiaryStatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(map[string]string)
		want   int
	}{
		{
			name:   "malformed account number is a 400",
			mutate: func(b map[string]string) { b["beneficiary_account_number"] = "123" },
			want:   http.StatusBadRequest,
		},
		{
			name:   "sanctioned beneficiary is a 400",
			mutate: func(b map[string]string) { b["beneficiary_account_number"] = "99912345678" },
			want:   http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newTestServer(t)
			body := validBody()
			tt.mutate(body)

			rec := doRequest(t, server, http.MethodPost, "/beneficiaries", "cust-1", body)
			if rec.Code != tt.want {
				t.Fatalf("expected %d, got %d: %s", tt.want, rec.Code, rec.Body.String())
			}
			var resp errorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("error body must be JSON: %v", err)
			}
			if resp.Error == "" {
				t.Fatal("error body must carry a message")
			}
		})
	}
}

func TestCreateDuplicateIsConflict(t *testing.T) {
	server := newTestServer(t)

	if rec := doRequest(t, server, http.MethodPost, "/beneficiaries", "cust-1", validBody()); rec.Code != http.StatusCreated {
		t.Fatalf("first create: expected 201, got %d", rec.Code)
	}
	rec := doRequest(t, server, http.MethodPost, "/beneficiaries", "cust-1", validBody())
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestGetBeneficiaryEndpoint(t *testing.T) {
	server := newTestServer(t)

	rec := doRequest(t, server, http.MethodPost, "/beneficiaries", "cust-1", validBody())
	var saved domain.Beneficiary
	if err := json.Unmarshal(rec.Body.Bytes(), &saved); err != nil {
		t.Fatalf("decode create response: %v", err)
	}

	rec = doRequest(t, server, http.MethodGet, fmt.Sprintf("/beneficiaries/%d", saved.ID), "cust-1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	// Ownership is enforced through the token identity.
	rec = doRequest(t, server, http.MethodGet, fmt.Sprintf("/beneficiaries/%d", saved.ID), "cust-2", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("foreign owner must get 404, got %d", rec.Code)
	}

	rec = doRequest(t, server, http.MethodGet, "/beneficiaries/9999", "cust-1", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing row must get 404, got %d", rec.Code)
	}
}

func TestDeleteBeneficiaryEndpoint(t *testing.T) {
	server := newTestServer(t)

	rec := doRequest(t, server, http.MethodPost, "/beneficiaries", "cust-1", validBody())
	var saved domain.Beneficiary
	if err := json.Unmarshal(rec.Body.Bytes(), &saved); err != nil {
		t.Fatalf("decode create response: %v", err)
	}

	rec = doRequest(t, server, http.MethodDelete, fmt.Sprintf("/beneficiaries/%d", saved.ID), "cust-1", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	rec = doRequest(t, server, http.MethodDelete, fmt.Sprintf("/beneficiaries/%d", saved.ID), "cust-1", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("second delete must get 404, got %d", rec.Code)
	}
}

func TestSearchEndpoint(t *testing.T) {
	server := newTestServer(t)

	for i := 0; i < 3; i++ {
		body := validBody()
		body["beneficiary_account_number"] = fmt.Sprintf("1234567%d", i)
		if rec := doRequest(t, server, http.MethodPost, "/beneficiaries", "cust-1", body); rec.Code != http.StatusCreated {
			t.Fatalf("create %d: got %d", i, rec.Code)
		}
	}

	rec := doRequest(t, server, http.MethodPost, "/beneficiaries/search", "cust-1", map[string]interface{}{
		"page": 0,
		"size": 2,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var page domain.PagedBeneficiaries
	if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
		t.Fatalf("decode page: %v", err)
	}
	if page.TotalElements != 3 || page.TotalPages != 2 || len(page.Content) != 2 {
		t.Fatalf("unexpected page metadata: %+v", page)
	}
	if !page.First || page.Last {
		t.Fatalf("first page flagged first=%v last=%v", page.First, page.Last)
	}
}

func TestUsageReportEndpointValidation(t *testing.T) {
	server := newTestServer(t)

	rec := doRequest(t, server, http.MethodGet, "/beneficiaries/usage-report?startDate=not-a-date&endDate=2026-05-01T00:00:00Z", "cust-1", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad start date, got %d", rec.Code)
	}

	rec = doRequest(t, server, http.MethodGet, "/beneficiaries/usage-report?startDate=2026-05-01T00:00:00Z&endDate=2026-04-01T00:00:00Z", "cust-1", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for inverted period, got %d", rec.Code)
	}

	rec = doRequest(t, server, http.MethodGet, "/beneficiaries/usage-report?startDate=2026-04-01T00:00:00Z&endDate=2026-05-01T00:00:00Z", "cust-1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestAuditEndpoints(t *testing.T) {
	server := newTestServer(t)

	rec := doRequest(t, server, http.MethodPost, "/beneficiaries", "cust-1", validBody())
	var saved domain.Beneficiary
	if err := json.Unmarshal(rec.Body.Bytes(), &saved); err != nil {
		t.Fatalf("decode create response: %v", err)
	}

	rec = doRequest(t, server, http.MethodGet, fmt.Sprintf("/beneficiaries/%d/audit", saved.ID), "cust-1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var trail []domain.BeneficiaryAudit
	if err := json.Unmarshal(rec.Body.Bytes(), &trail); err != nil {
		t.Fatalf("decode trail: %v", err)
	}
	if len(trail) != 1 || trail[0].Operation != domain.AuditOperationCreate {
		t.Fatalf("expected one CREATE record, got %+v", trail)
	}
	if trail[0].PerformedBy != "agent-7" {
		t.Fatalf("expected token actor on record, got %q", trail[0].PerformedBy)
	}

	rec = doRequest(t, server, http.MethodGet, "/beneficiaries/audit", "cust-1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthRequired(t *testing.T) {
	server := newTestServer(t)

	rec := doRequest(t, server, http.MethodGet, "/beneficiaries", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without a token, got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/beneficiaries", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	recorder := httptest.NewRecorder()
	server.ServeHTTP(recorder, req)
	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with a bad token, got %d", recorder.Code)
	}
}

func TestMapBeneficiaryError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"format error", &app.FormatError{Field: "beneficiary_name", Reason: "is required"}, http.StatusBadRequest},
		{"validation error", &app.ValidationError{Reason: "rejected"}, http.StatusBadRequest},
		{"duplicate", store.ErrDuplicateBeneficiary, http.StatusConflict},
		{"wrapped duplicate", fmt.Errorf("create: %w", store.ErrDuplicateBeneficiary), http.StatusConflict},
		{"not found", store.ErrBeneficiaryNotFound, http.StatusNotFound},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, msg := mapBeneficiaryError(tt.err)
			if got != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, got)
			}
			if msg == "" {
				t.Fatal("mapped message must not be empty")
			}
		})
	}
}
