/**
 * @description
 * This file implements the PostgreSQL data access layer for the append-only
 * beneficiary audit trail.
 *
 * @dependencies
 * - github.com/jackc/pgx/v5/pgxpool: The PostgreSQL connection pool.
 * - internal/domain: For the BeneficiaryAudit model.
 */

package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alokkulkarni/beneficiaries/internal/domain"
)

// PostgresAuditRepository is the PostgreSQL implementation of the
// AuditRepository interface.
type PostgresAuditRepository struct {
	db *pgxpool.Pool
}

// NewPostgresAuditRepository creates a new PostgresAuditRepository.
func NewPostgresAuditRepository(db *pgxpool.Pool) *PostgresAuditRepository {
	return &PostgresAuditRepository{db: db}
}

// Create appends one audit record and returns it with the generated id.
func (r *PostgresAuditRepository) Create(ctx context.Context, a *domain.BeneficiaryAudit) (*domain.BeneficiaryAudit, error) {
	query := `
        INSERT INTO beneficiary_audits (beneficiary_id, customer_id, operation, changes, performed_by, performed_at)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id
    `
	err := r.db.QueryRow(ctx, query,
		a.BeneficiaryID,
		a.CustomerID,
		a.Operation,
		a.Changes,
		a.PerformedBy,
		a.PerformedAt,
	).Scan(&a.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create audit record: %w", err)
	}
	return a, nil
}

// FindByBeneficiaryIDAndCustomerID lists one beneficiary's audit history,
// most recent first.
func (r *PostgresAuditRepository) FindByBeneficiaryIDAndCustomerID(ctx context.Context, beneficiaryID int64, customerID string) ([]domain.BeneficiaryAudit, error) {
	query := `
        SELECT id, beneficiary_id, customer_id, operation, changes, performed_by, performed_at
        FROM beneficiary_audits
        WHERE beneficiary_id = $1 AND customer_id = $2
        ORDER BY performed_at DESC
    `
	rows, err := r.db.Query(ctx, query, beneficiaryID, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit history: %w", err)
	}
	defer rows.Close()
	return collectAudits(rows)
}

// FindByCustomerID lists a customer's full audit history, most recent first.
func (r *PostgresAuditRepository) FindByCustomerID(ctx context.Context, customerID string) ([]domain.BeneficiaryAudit, error) {
	query := `
        SELECT id, beneficiary_id, customer_id, operation, changes, performed_by, performed_at
        FROM beneficiary_audits
        WHERE customer_id = $1
        ORDER BY performed_at DESC
    `
	rows, err := r.db.Query(ctx, query, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query customer audit history: %w", err)
	}
	defer rows.Close()
	return collectAudits(rows)
}

func collectAudits(rows pgx.Rows) ([]domain.BeneficiaryAudit, error) {
	audits := []domain.BeneficiaryAudit{}
	for rows.Next() {
		var a domain.BeneficiaryAudit
		err := rows.Scan(&a.ID, &a.BeneficiaryID, &a.CustomerID, &a.Operation, &a.Changes, &a.PerformedBy, &a.PerformedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit row: %w", err)
		}
		audits = append(audits, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read audit rows: %w", err)
	}
	return audits, nil
}
