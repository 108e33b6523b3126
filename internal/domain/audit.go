/**
 * @description
 * This file defines the audit trail model for beneficiary lifecycle events.
 * One record is appended per successful create/update/delete and is never
 * modified or removed by this service; retention is an external concern.
 */

package domain

import "time"

// Audit operations.
const (
	AuditOperationCreate = "CREATE"
	AuditOperationUpdate = "UPDATE"
	AuditOperationDelete = "DELETE"
)

// AuditActorSystem is recorded when the caller supplies no actor identity.
const AuditActorSystem = "SYSTEM"

// BeneficiaryAudit is an immutable fact about one beneficiary lifecycle event.
// `Changes` holds a JSON snapshot: the full beneficiary state for CREATE and
// UPDATE, or the identifying (beneficiaryId, customerId) tuple for DELETE.
type BeneficiaryAudit struct {
	ID            int64     `json:"id"`
	BeneficiaryID int64     `json:"beneficiary_id"`
	CustomerID    string    `json:"customer_id"`
	Operation     string    `json:"operation"` // CREATE, UPDATE or DELETE
	Changes       string    `json:"changes"`
	PerformedBy   string    `json:"performed_by"`
	PerformedAt   time.Time `json:"performed_at"`
}
