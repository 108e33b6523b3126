/**
 * @description
 * This file provides in-memory implementations of the beneficiary and audit
 * repositories. They honor the same contracts as the PostgreSQL
 * implementations (ownership scoping, active-row uniqueness, soft delete,
 * search predicate semantics) and back the service-level tests and local
 * runs without a database.
 */

package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/alokkulkarni/beneficiaries/internal/domain"
)

// MemoryBeneficiaryRepository is a thread-safe in-memory BeneficiaryRepository.
type MemoryBeneficiaryRepository struct {
	mu     sync.RWMutex
	rows   map[int64]domain.Beneficiary
	nextID int64
}

// NewMemoryBeneficiaryRepository creates an empty in-memory repository.
func NewMemoryBeneficiaryRepository() *MemoryBeneficiaryRepository {
	return &MemoryBeneficiaryRepository{
		rows:   make(map[int64]domain.Beneficiary),
		nextID: 1,
	}
}

// Create inserts a new beneficiary, enforcing the active-row uniqueness
// constraint the way the database's partial unique index would.
func (r *MemoryBeneficiaryRepository) Create(ctx context.Context, b *domain.Beneficiary) (*domain.Beneficiary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if b.Status == domain.StatusActive && r.activeAccountExists(b.CustomerID, b.BeneficiaryAccountNumber, 0) {
		return nil, ErrDuplicateBeneficiary
	}

	b.ID = r.nextID
	r.nextID++
	r.rows[b.ID] = *b
	return b, nil
}

// Update rewrites an existing row scoped to its owning customer.
func (r *MemoryBeneficiaryRepository) Update(ctx context.Context, b *domain.Beneficiary) (*domain.Beneficiary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.rows[b.ID]
	if !ok || existing.CustomerID != b.CustomerID {
		return nil, ErrBeneficiaryNotFound
	}
	if b.Status == domain.StatusActive && r.activeAccountExists(b.CustomerID, b.BeneficiaryAccountNumber, b.ID) {
		return nil, ErrDuplicateBeneficiary
	}
	r.rows[b.ID] = *b
	return b, nil
}

// FindByIDAndCustomerID returns the ACTIVE row for (id, customerID).
func (r *MemoryBeneficiaryRepository) FindByIDAndCustomerID(ctx context.Context, id int64, customerID string) (*domain.Beneficiary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.rows[id]
	if !ok || b.CustomerID != customerID || b.Status != domain.StatusActive {
		return nil, ErrBeneficiaryNotFound
	}
	found := b
	return &found, nil
}

// FindActiveByAccountNumber returns the ACTIVE row registered with the given
// beneficiary account number under the customer.
func (r *MemoryBeneficiaryRepository) FindActiveByAccountNumber(ctx context.Context, customerID, beneficiaryAccountNumber string) (*domain.Beneficiary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, b := range r.rows {
		if b.CustomerID == customerID && b.BeneficiaryAccountNumber == beneficiaryAccountNumber && b.Status == domain.StatusActive {
			found := b
			return &found, nil
		}
	}
	return nil, ErrBeneficiaryNotFound
}

// FindByCustomerID lists ACTIVE rows, optionally filtered by originating
// account number, newest first.
func (r *MemoryBeneficiaryRepository) FindByCustomerID(ctx context.Context, customerID, accountNumber string) ([]domain.Beneficiary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := []domain.Beneficiary{}
	for _, b := range r.rows {
		if b.CustomerID != customerID || b.Status != domain.StatusActive {
			continue
		}
		if accountNumber != "" && b.AccountNumber != accountNumber {
			continue
		}
		result = append(result, b)
	}
	sortNewestFirst(result)
	return result, nil
}

// FindAllByCustomerID lists every row the customer ever registered, DELETED
// rows included, newest first.
func (r *MemoryBeneficiaryRepository) FindAllByCustomerID(ctx context.Context, customerID string) ([]domain.Beneficiary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := []domain.Beneficiary{}
	for _, b := range r.rows {
		if b.CustomerID == customerID {
			result = append(result, b)
		}
	}
	sortNewestFirst(result)
	return result, nil
}

// SoftDelete transitions the ACTIVE row to DELETED, keeping it for history.
func (r *MemoryBeneficiaryRepository) SoftDelete(ctx context.Context, id int64, customerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.rows[id]
	if !ok || b.CustomerID != customerID || b.Status != domain.StatusActive {
		return ErrBeneficiaryNotFound
	}
	b.Status = domain.StatusDeleted
	r.rows[id] = b
	return nil
}

// Search returns one page of rows matching the criteria.
func (r *MemoryBeneficiaryRepository) Search(ctx context.Context, criteria domain.SearchCriteria) ([]domain.Beneficiary, error) {
	matches := r.matching(criteria)
	sortByCriteria(matches, criteria)

	offset := criteria.Page * criteria.Size
	if offset >= len(matches) {
		return []domain.Beneficiary{}, nil
	}
	end := offset + criteria.Size
	if end > len(matches) {
		end = len(matches)
	}
	return matches[offset:end], nil
}

// Count returns the total number of rows matching the criteria.
func (r *MemoryBeneficiaryRepository) Count(ctx context.Context, criteria domain.SearchCriteria) (int64, error) {
	return int64(len(r.matching(criteria))), nil
}

func (r *MemoryBeneficiaryRepository) matching(criteria domain.SearchCriteria) []domain.Beneficiary {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matches := []domain.Beneficiary{}
	for _, b := range r.rows {
		if b.CustomerID != criteria.CustomerID {
			continue
		}
		if criteria.BeneficiaryName != "" &&
			!strings.Contains(strings.ToLower(b.BeneficiaryName), strings.ToLower(criteria.BeneficiaryName)) {
			continue
		}
		if criteria.BeneficiaryType != "" && b.BeneficiaryType != criteria.BeneficiaryType {
			continue
		}
		if criteria.Status != "" && b.Status != criteria.Status {
			continue
		}
		if criteria.BeneficiaryBankCode != "" && b.BeneficiaryBankCode != criteria.BeneficiaryBankCode {
			continue
		}
		if criteria.CreatedAfter != nil && b.CreatedAt.Before(*criteria.CreatedAfter) {
			continue
		}
		if criteria.CreatedBefore != nil && b.CreatedAt.After(*criteria.CreatedBefore) {
			continue
		}
		matches = append(matches, b)
	}
	return matches
}

// activeAccountExists reports whether another ACTIVE row holds the account
// number under the customer. Caller must hold the lock.
func (r *MemoryBeneficiaryRepository) activeAccountExists(customerID, beneficiaryAccountNumber string, excludeID int64) bool {
	for _, b := range r.rows {
		if b.ID == excludeID {
			continue
		}
		if b.CustomerID == customerID && b.BeneficiaryAccountNumber == beneficiaryAccountNumber && b.Status == domain.StatusActive {
			return true
		}
	}
	return false
}

func sortNewestFirst(rows []domain.Beneficiary) {
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].CreatedAt.Equal(rows[j].CreatedAt) {
			return rows[i].ID > rows[j].ID
		}
		return rows[i].CreatedAt.After(rows[j].CreatedAt)
	})
}

func sortByCriteria(rows []domain.Beneficiary, criteria domain.SearchCriteria) {
	asc := strings.EqualFold(criteria.SortDirection, "ASC")
	less := func(i, j int) bool {
		var cmp int
		switch criteria.SortBy {
		case "beneficiaryName":
			cmp = strings.Compare(rows[i].BeneficiaryName, rows[j].BeneficiaryName)
		case "beneficiaryType":
			cmp = strings.Compare(rows[i].BeneficiaryType, rows[j].BeneficiaryType)
		case "status":
			cmp = strings.Compare(rows[i].Status, rows[j].Status)
		case "updatedAt":
			cmp = compareTimes(rows[i].UpdatedAt, rows[j].UpdatedAt)
		default:
			cmp = compareTimes(rows[i].CreatedAt, rows[j].CreatedAt)
		}
		if cmp == 0 {
			cmp = compareIDs(rows[i].ID, rows[j].ID)
		}
		if asc {
			return cmp < 0
		}
		return cmp > 0
	}
	sort.Slice(rows, less)
}

func compareTimes(a, b time.Time) int {
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	default:
		return 0
	}
}

func compareIDs(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// MemoryAuditRepository is a thread-safe in-memory AuditRepository.
type MemoryAuditRepository struct {
	mu     sync.RWMutex
	rows   []domain.BeneficiaryAudit
	nextID int64
}

// NewMemoryAuditRepository creates an empty in-memory audit repository.
func NewMemoryAuditRepository() *MemoryAuditRepository {
	return &MemoryAuditRepository{nextID: 1}
}

// Create appends one audit record.
func (r *MemoryAuditRepository) Create(ctx context.Context, a *domain.BeneficiaryAudit) (*domain.BeneficiaryAudit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a.ID = r.nextID
	r.nextID++
	r.rows = append(r.rows, *a)
	return a, nil
}

// FindByBeneficiaryIDAndCustomerID lists one beneficiary's audit history,
// most recent first.
func (r *MemoryAuditRepository) FindByBeneficiaryIDAndCustomerID(ctx context.Context, beneficiaryID int64, customerID string) ([]domain.BeneficiaryAudit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := []domain.BeneficiaryAudit{}
	for _, a := range r.rows {
		if a.BeneficiaryID == beneficiaryID && a.CustomerID == customerID {
			result = append(result, a)
		}
	}
	sortAuditsNewestFirst(result)
	return result, nil
}

// FindByCustomerID lists a customer's full audit history, most recent first.
func (r *MemoryAuditRepository) FindByCustomerID(ctx context.Context, customerID string) ([]domain.BeneficiaryAudit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := []domain.BeneficiaryAudit{}
	for _, a := range r.rows {
		if a.CustomerID == customerID {
			result = append(result, a)
		}
	}
	sortAuditsNewestFirst(result)
	return result, nil
}

func sortAuditsNewestFirst(rows []domain.BeneficiaryAudit) {
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].PerformedAt.Equal(rows[j].PerformedAt) {
			return rows[i].ID > rows[j].ID
		}
		return rows[i].PerformedAt.After(rows[j].PerformedAt)
	})
}
