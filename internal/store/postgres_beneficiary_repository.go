/**
 * @description
 * This file implements the PostgreSQL data access layer for beneficiary
 * records, including the dynamic predicate builder behind the search and
 * count queries.
 *
 * @dependencies
 * - github.com/jackc/pgx/v5: The PostgreSQL driver and connection pool.
 * - internal/domain: For the Beneficiary model and search criteria.
 *
 * @notes
 * - Filters are appended as positional parameters ($n), never concatenated
 *   values, so user input cannot reach the SQL text.
 * - Sort field and direction come from a whitelist; anything unrecognized
 *   falls back to created_at DESC.
 */

package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alokkulkarni/beneficiaries/internal/domain"
)

const beneficiaryColumns = `id, customer_id, COALESCE(account_number, '') AS account_number,
       beneficiary_name, beneficiary_account_number, beneficiary_bank_code,
       COALESCE(beneficiary_bank_name, '') AS beneficiary_bank_name,
       beneficiary_type, status, created_at, updated_at`

// sortColumns maps the API-level sort fields to real columns. Requests naming
// anything else sort by creation time.
var sortColumns = map[string]string{
	"createdAt":       "created_at",
	"updatedAt":       "updated_at",
	"beneficiaryName": "beneficiary_name",
	"beneficiaryType": "beneficiary_type",
	"status":          "status",
}

// PostgresBeneficiaryRepository is the PostgreSQL implementation of the
// BeneficiaryRepository interface.
type PostgresBeneficiaryRepository struct {
	db *pgxpool.Pool
}

// NewPostgresBeneficiaryRepository creates a new PostgresBeneficiaryRepository.
func NewPostgresBeneficiaryRepository(db *pgxpool.Pool) *PostgresBeneficiaryRepository {
	return &PostgresBeneficiaryRepository{db: db}
}

// Create inserts a new beneficiary record and returns it with the generated
// id. A unique-index violation on the active account number maps to
// ErrDuplicateBeneficiary.
func (r *PostgresBeneficiaryRepository) Create(ctx context.Context, b *domain.Beneficiary) (*domain.Beneficiary, error) {
	query := `
        INSERT INTO beneficiaries (customer_id, account_number, beneficiary_name, beneficiary_account_number,
                                   beneficiary_bank_code, beneficiary_bank_name, beneficiary_type, status,
                                   created_at, updated_at)
        VALUES ($1, NULLIF($2, ''), $3, $4, $5, NULLIF($6, ''), $7, $8, $9, $10)
        RETURNING id
    `
	err := r.db.QueryRow(ctx, query,
		b.CustomerID,
		b.AccountNumber,
		b.BeneficiaryName,
		b.BeneficiaryAccountNumber,
		b.BeneficiaryBankCode,
		b.BeneficiaryBankName,
		b.BeneficiaryType,
		b.Status,
		b.CreatedAt,
		b.UpdatedAt,
	).Scan(&b.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateBeneficiary
		}
		return nil, fmt.Errorf("failed to create beneficiary: %w", err)
	}
	return b, nil
}

// Update rewrites a beneficiary row in place, scoped to its owning customer.
func (r *PostgresBeneficiaryRepository) Update(ctx context.Context, b *domain.Beneficiary) (*domain.Beneficiary, error) {
	query := `
        UPDATE beneficiaries
        SET account_number = NULLIF($3, ''),
            beneficiary_name = $4,
            beneficiary_account_number = $5,
            beneficiary_bank_code = $6,
            beneficiary_bank_name = NULLIF($7, ''),
            beneficiary_type = $8,
            status = $9,
            updated_at = $10
        WHERE id = $1 AND customer_id = $2
    `
	result, err := r.db.Exec(ctx, query,
		b.ID,
		b.CustomerID,
		b.AccountNumber,
		b.BeneficiaryName,
		b.BeneficiaryAccountNumber,
		b.BeneficiaryBankCode,
		b.BeneficiaryBankName,
		b.BeneficiaryType,
		b.Status,
		b.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateBeneficiary
		}
		return nil, fmt.Errorf("failed to update beneficiary: %w", err)
	}
	if result.RowsAffected() == 0 {
		return nil, ErrBeneficiaryNotFound
	}
	return b, nil
}

// FindByIDAndCustomerID fetches the ACTIVE beneficiary for (id, customerID).
func (r *PostgresBeneficiaryRepository) FindByIDAndCustomerID(ctx context.Context, id int64, customerID string) (*domain.Beneficiary, error) {
	query := `
        SELECT ` + beneficiaryColumns + `
        FROM beneficiaries
        WHERE id = $1 AND customer_id = $2 AND status = 'ACTIVE'
    `
	b, err := scanBeneficiary(r.db.QueryRow(ctx, query, id, customerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBeneficiaryNotFound
		}
		return nil, fmt.Errorf("failed to fetch beneficiary: %w", err)
	}
	return b, nil
}

// FindActiveByAccountNumber fetches the ACTIVE beneficiary registered with the
// given beneficiary account number under the customer. Used by the hard
// duplicate check.
func (r *PostgresBeneficiaryRepository) FindActiveByAccountNumber(ctx context.Context, customerID, beneficiaryAccountNumber string) (*domain.Beneficiary, error) {
	query := `
        SELECT ` + beneficiaryColumns + `
        FROM beneficiaries
        WHERE customer_id = $1 AND beneficiary_account_number = $2 AND status = 'ACTIVE'
    `
	b, err := scanBeneficiary(r.db.QueryRow(ctx, query, customerID, beneficiaryAccountNumber))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBeneficiaryNotFound
		}
		return nil, fmt.Errorf("failed to fetch beneficiary by account number: %w", err)
	}
	return b, nil
}

// FindByCustomerID lists a customer's ACTIVE beneficiaries, optionally
// narrowed to one originating account number.
func (r *PostgresBeneficiaryRepository) FindByCustomerID(ctx context.Context, customerID, accountNumber string) ([]domain.Beneficiary, error) {
	query := `
        SELECT ` + beneficiaryColumns + `
        FROM beneficiaries
        WHERE customer_id = $1 AND status = 'ACTIVE'
    `
	args := []interface{}{customerID}
	if accountNumber != "" {
		query += ` AND account_number = $2`
		args = append(args, accountNumber)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query beneficiaries: %w", err)
	}
	defer rows.Close()
	return collectBeneficiaries(rows)
}

// FindAllByCustomerID lists every row the customer has ever registered,
// DELETED ones included.
func (r *PostgresBeneficiaryRepository) FindAllByCustomerID(ctx context.Context, customerID string) ([]domain.Beneficiary, error) {
	query := `
        SELECT ` + beneficiaryColumns + `
        FROM beneficiaries
        WHERE customer_id = $1
        ORDER BY created_at DESC
    `
	rows, err := r.db.Query(ctx, query, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query beneficiary history: %w", err)
	}
	defer rows.Close()
	return collectBeneficiaries(rows)
}

// SoftDelete marks the beneficiary DELETED without removing the row.
func (r *PostgresBeneficiaryRepository) SoftDelete(ctx context.Context, id int64, customerID string) error {
	query := `
        UPDATE beneficiaries
        SET status = 'DELETED', updated_at = NOW()
        WHERE id = $1 AND customer_id = $2 AND status = 'ACTIVE'
    `
	result, err := r.db.Exec(ctx, query, id, customerID)
	if err != nil {
		return fmt.Errorf("failed to soft delete beneficiary: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrBeneficiaryNotFound
	}
	return nil
}

// Search returns one page of beneficiaries matching the criteria, ordered by
// the requested field and direction.
func (r *PostgresBeneficiaryRepository) Search(ctx context.Context, criteria domain.SearchCriteria) ([]domain.Beneficiary, error) {
	query := `SELECT ` + beneficiaryColumns + ` FROM beneficiaries`
	where, args := buildSearchPredicates(criteria)
	query += where

	orderColumn, ok := sortColumns[criteria.SortBy]
	if !ok {
		orderColumn = "created_at"
	}
	direction := "DESC"
	if strings.EqualFold(criteria.SortDirection, "ASC") {
		direction = "ASC"
	}
	argPos := len(args) + 1
	query += fmt.Sprintf(" ORDER BY %s %s LIMIT $%d OFFSET $%d", orderColumn, direction, argPos, argPos+1)
	args = append(args, criteria.Size, criteria.Page*criteria.Size)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search beneficiaries: %w", err)
	}
	defer rows.Close()
	return collectBeneficiaries(rows)
}

// Count returns the total number of rows the search predicates match.
func (r *PostgresBeneficiaryRepository) Count(ctx context.Context, criteria domain.SearchCriteria) (int64, error) {
	query := `SELECT COUNT(*) FROM beneficiaries`
	where, args := buildSearchPredicates(criteria)
	query += where

	var count int64
	if err := r.db.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count beneficiaries: %w", err)
	}
	return count, nil
}

// buildSearchPredicates compiles the optional criteria into a WHERE clause of
// AND-combined positional predicates.
func buildSearchPredicates(criteria domain.SearchCriteria) (string, []interface{}) {
	clause := ` WHERE customer_id = $1`
	args := []interface{}{criteria.CustomerID}
	argPos := 2

	if criteria.BeneficiaryName != "" {
		clause += fmt.Sprintf(` AND beneficiary_name ILIKE '%%' || $%d || '%%'`, argPos)
		args = append(args, escapeLikePattern(criteria.BeneficiaryName))
		argPos++
	}
	if criteria.BeneficiaryType != "" {
		clause += fmt.Sprintf(` AND beneficiary_type = $%d`, argPos)
		args = append(args, criteria.BeneficiaryType)
		argPos++
	}
	if criteria.Status != "" {
		clause += fmt.Sprintf(` AND status = $%d`, argPos)
		args = append(args, criteria.Status)
		argPos++
	}
	if criteria.BeneficiaryBankCode != "" {
		clause += fmt.Sprintf(` AND beneficiary_bank_code = $%d`, argPos)
		args = append(args, criteria.BeneficiaryBankCode)
		argPos++
	}
	if criteria.CreatedAfter != nil {
		clause += fmt.Sprintf(` AND created_at >= $%d`, argPos)
		args = append(args, *criteria.CreatedAfter)
		argPos++
	}
	if criteria.CreatedBefore != nil {
		clause += fmt.Sprintf(` AND created_at <= $%d`, argPos)
		args = append(args, *criteria.CreatedBefore)
		argPos++
	}
	return clause, args
}

// escapeLikePattern escapes the LIKE metacharacters so the filter value
// matches as a literal substring, the way the in-memory repository does.
func escapeLikePattern(s string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(s)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBeneficiary(row rowScanner) (*domain.Beneficiary, error) {
	var b domain.Beneficiary
	err := row.Scan(
		&b.ID, &b.CustomerID, &b.AccountNumber,
		&b.BeneficiaryName, &b.BeneficiaryAccountNumber, &b.BeneficiaryBankCode,
		&b.BeneficiaryBankName, &b.BeneficiaryType, &b.Status,
		&b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func collectBeneficiaries(rows pgx.Rows) ([]domain.Beneficiary, error) {
	beneficiaries := []domain.Beneficiary{}
	for rows.Next() {
		b, err := scanBeneficiary(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan beneficiary row: %w", err)
		}
		beneficiaries = append(beneficiaries, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read beneficiary rows: %w", err)
	}
	return beneficiaries, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
