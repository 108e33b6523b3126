/**
 * @description
 * This file defines the core domain models for the beneficiary-service.
 * A beneficiary is a named payee a customer may transfer funds to. These
 * structs are shared across the service's business logic, database
 * interactions, and API layers.
 *
 * @notes
 * - Beneficiaries are soft deleted: a DELETE transitions the row to status
 *   DELETED and keeps it for audit/history purposes. Only ACTIVE rows are
 *   visible through the regular read paths.
 * - The (customer_id, beneficiary_account_number) pair is unique among
 *   ACTIVE rows; a deleted beneficiary frees its account number for reuse.
 */

package domain

import "time"

// Beneficiary statuses.
const (
	StatusActive   = "ACTIVE"
	StatusInactive = "INACTIVE"
	StatusDeleted  = "DELETED"
)

// Beneficiary types.
const (
	TypeDomestic      = "DOMESTIC"
	TypeInternational = "INTERNATIONAL"
)

// Beneficiary represents a payee registered under exactly one customer.
// This struct maps directly to the `beneficiaries` table.
type Beneficiary struct {
	ID                       int64     `json:"id"`
	CustomerID               string    `json:"customer_id"`
	AccountNumber            string    `json:"account_number,omitempty"` // originating account, optional
	BeneficiaryName          string    `json:"beneficiary_name"`
	BeneficiaryAccountNumber string    `json:"beneficiary_account_number"`
	BeneficiaryBankCode      string    `json:"beneficiary_bank_code"`
	BeneficiaryBankName      string    `json:"beneficiary_bank_name,omitempty"`
	BeneficiaryType          string    `json:"beneficiary_type"` // DOMESTIC or INTERNATIONAL
	Status                   string    `json:"status"`           // ACTIVE, INACTIVE or DELETED
	CreatedAt                time.Time `json:"created_at"`
	UpdatedAt                time.Time `json:"updated_at"`
}

// BeneficiaryRequest is the DTO for incoming create/update API requests.
type BeneficiaryRequest struct {
	CustomerID               string `json:"customer_id"`
	AccountNumber            string `json:"account_number"`
	BeneficiaryName          string `json:"beneficiary_name"`
	BeneficiaryAccountNumber string `json:"beneficiary_account_number"`
	BeneficiaryBankCode      string `json:"beneficiary_bank_code"`
	BeneficiaryBankName      string `json:"beneficiary_bank_name"`
	BeneficiaryType          string `json:"beneficiary_type"`
}

// ScreeningResult is the verdict returned by the external risk screening
// provider for a prospective beneficiary.
type ScreeningResult struct {
	Valid         bool     `json:"valid"`
	Sanctioned    bool     `json:"sanctioned"`
	FraudScore    *float64 `json:"fraud_score,omitempty"`    // [0,1] when present
	AccountStatus string   `json:"account_status,omitempty"` // e.g. "ACTIVE", "CLOSED"
	FailureReason string   `json:"failure_reason,omitempty"`
}
