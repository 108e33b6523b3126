/**
 * @description
 * This file defines the repository interfaces for the beneficiary-service,
 * which specify the contract for all data access operations required by the
 * business logic. Defining interfaces here decouples the application from
 * the specific database implementation (PostgreSQL in production, an
 * in-memory store in tests), making the code more modular and easier to test.
 *
 * @dependencies
 * - context: Standard Go library.
 * - internal/domain: For the service's domain models.
 */

package store

import (
	"context"
	"errors"

	"github.com/alokkulkarni/beneficiaries/internal/domain"
)

var (
	// ErrBeneficiaryNotFound is returned when no ACTIVE beneficiary matches the
	// given id and customer scope. A row owned by a different customer is
	// deliberately indistinguishable from a nonexistent one.
	ErrBeneficiaryNotFound = errors.New("beneficiary not found")

	// ErrDuplicateBeneficiary is returned when an ACTIVE beneficiary already
	// exists for the same (customer id, beneficiary account number) pair.
	ErrDuplicateBeneficiary = errors.New("duplicate beneficiary")
)

// BeneficiaryRepository defines persistence operations for beneficiaries.
//
// The backing store is expected to hold a `beneficiaries` table keyed by a
// surrogate bigint id, with a partial unique index on
// (customer_id, beneficiary_account_number) WHERE status = 'ACTIVE'. The
// application performs its own duplicate check before writing, but the index
// is the backstop that makes the uniqueness invariant hold under concurrent
// writers.
type BeneficiaryRepository interface {
	// Create inserts a new beneficiary and returns it with id and timestamps
	// populated. Returns ErrDuplicateBeneficiary when the active-row
	// uniqueness constraint is violated.
	Create(ctx context.Context, b *domain.Beneficiary) (*domain.Beneficiary, error)

	// Update rewrites an existing row in place. Returns
	// ErrBeneficiaryNotFound when no row matches (b.ID, b.CustomerID), or
	// ErrDuplicateBeneficiary on a uniqueness violation.
	Update(ctx context.Context, b *domain.Beneficiary) (*domain.Beneficiary, error)

	// FindByIDAndCustomerID returns the ACTIVE beneficiary with the given id
	// owned by the given customer, or ErrBeneficiaryNotFound.
	FindByIDAndCustomerID(ctx context.Context, id int64, customerID string) (*domain.Beneficiary, error)

	// FindActiveByAccountNumber returns the ACTIVE beneficiary registered for
	// (customerID, beneficiaryAccountNumber), or ErrBeneficiaryNotFound.
	FindActiveByAccountNumber(ctx context.Context, customerID, beneficiaryAccountNumber string) (*domain.Beneficiary, error)

	// FindByCustomerID lists a customer's ACTIVE beneficiaries, optionally
	// filtered by originating account number. Returns an empty slice when
	// none match.
	FindByCustomerID(ctx context.Context, customerID, accountNumber string) ([]domain.Beneficiary, error)

	// FindAllByCustomerID lists every beneficiary ever registered by the
	// customer, DELETED rows included. Used by analytics and duplicate
	// reporting, which must reflect full history.
	FindAllByCustomerID(ctx context.Context, customerID string) ([]domain.Beneficiary, error)

	// SoftDelete transitions the row to DELETED scoped to (id, customerID).
	// Returns ErrBeneficiaryNotFound when zero rows matched.
	SoftDelete(ctx context.Context, id int64, customerID string) error

	// Search returns one page of beneficiaries matching the criteria.
	Search(ctx context.Context, criteria domain.SearchCriteria) ([]domain.Beneficiary, error)

	// Count returns the total number of rows matching the criteria,
	// independent of paging.
	Count(ctx context.Context, criteria domain.SearchCriteria) (int64, error)
}

// AuditRepository defines persistence operations for the append-only
// beneficiary audit trail. Records are created once and never updated or
// deleted through this service.
type AuditRepository interface {
	Create(ctx context.Context, a *domain.BeneficiaryAudit) (*domain.BeneficiaryAudit, error)

	// FindByBeneficiaryIDAndCustomerID lists the audit history for one
	// beneficiary, most recent first.
	FindByBeneficiaryIDAndCustomerID(ctx context.Context, beneficiaryID int64, customerID string) ([]domain.BeneficiaryAudit, error)

	// FindByCustomerID lists a customer's full audit history, most recent first.
	FindByCustomerID(ctx context.Context, customerID string) ([]domain.BeneficiaryAudit, error)
}
