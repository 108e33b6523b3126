/**
 * @description
 * This file contains the core business logic for the beneficiary lifecycle,
 * implemented as a `BeneficiaryService`. It orchestrates the validation
 * pipeline, the blocking duplicate check, the repository writes, and the
 * audit recorder.
 *
 * @notes
 * - This service layer keeps the API handlers thin and focused on HTTP
 *   concerns while the business logic stays independent and testable
 *   against the in-memory repositories.
 * - State machine: rows are created ACTIVE, updated in place while ACTIVE,
 *   and soft-deleted to DELETED (terminal). Nothing in this service
 *   transitions a row to INACTIVE.
 */

package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/alokkulkarni/beneficiaries/internal/domain"
	"github.com/alokkulkarni/beneficiaries/internal/store"
)

// BeneficiaryService provides the beneficiary lifecycle, search, analytics
// and duplicate-reporting operations.
type BeneficiaryService struct {
	repo      store.BeneficiaryRepository
	validator *Validator
	audit     *AuditService
}

// NewBeneficiaryService creates a new BeneficiaryService.
func NewBeneficiaryService(repo store.BeneficiaryRepository, validator *Validator, audit *AuditService) *BeneficiaryService {
	return &BeneficiaryService{
		repo:      repo,
		validator: validator,
		audit:     audit,
	}
}

// Create validates the request, runs the blocking duplicate check, and
// inserts a new ACTIVE beneficiary. The new row is audited as CREATE.
func (s *BeneficiaryService) Create(ctx context.Context, req *domain.BeneficiaryRequest, performedBy string) (*domain.Beneficiary, error) {
	log.Printf("level=info component=beneficiary_service operation=create customer_id=%s", req.CustomerID)

	if err := s.validator.Validate(ctx, req); err != nil {
		return nil, err
	}

	// Hard duplicate check; the store's unique index backs this up under
	// concurrent writers.
	if _, err := s.repo.FindActiveByAccountNumber(ctx, req.CustomerID, req.BeneficiaryAccountNumber); err == nil {
		return nil, fmt.Errorf("%w: account number %s already registered for customer %s",
			store.ErrDuplicateBeneficiary, req.BeneficiaryAccountNumber, req.CustomerID)
	} else if !errors.Is(err, store.ErrBeneficiaryNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	beneficiary := &domain.Beneficiary{
		CustomerID:               req.CustomerID,
		AccountNumber:            req.AccountNumber,
		BeneficiaryName:          req.BeneficiaryName,
		BeneficiaryAccountNumber: req.BeneficiaryAccountNumber,
		BeneficiaryBankCode:      req.BeneficiaryBankCode,
		BeneficiaryBankName:      req.BeneficiaryBankName,
		BeneficiaryType:          defaultType(req.BeneficiaryType),
		Status:                   domain.StatusActive,
		CreatedAt:                now,
		UpdatedAt:                now,
	}

	saved, err := s.repo.Create(ctx, beneficiary)
	if err != nil {
		return nil, err
	}

	if _, err := s.audit.RecordCreate(ctx, saved, performedBy); err != nil {
		return nil, err
	}
	return saved, nil
}

// Update rewrites an existing ACTIVE beneficiary owned by the customer. The
// identity (id, created-at, status) is preserved; the type falls back to the
// existing one when the request supplies none. Audited as UPDATE.
func (s *BeneficiaryService) Update(ctx context.Context, id int64, customerID string, req *domain.BeneficiaryRequest, performedBy string) (*domain.Beneficiary, error) {
	log.Printf("level=info component=beneficiary_service operation=update beneficiary_id=%d customer_id=%s", id, customerID)

	existing, err := s.repo.FindByIDAndCustomerID(ctx, id, customerID)
	if err != nil {
		return nil, err
	}

	// The account number is only re-checked when it changes; keeping the
	// same number trivially satisfies the uniqueness invariant.
	if existing.BeneficiaryAccountNumber != req.BeneficiaryAccountNumber {
		if _, err := s.repo.FindActiveByAccountNumber(ctx, customerID, req.BeneficiaryAccountNumber); err == nil {
			return nil, fmt.Errorf("%w: account number %s already registered for customer %s",
				store.ErrDuplicateBeneficiary, req.BeneficiaryAccountNumber, customerID)
		} else if !errors.Is(err, store.ErrBeneficiaryNotFound) {
			return nil, err
		}
	}

	beneficiaryType := req.BeneficiaryType
	if beneficiaryType == "" {
		beneficiaryType = existing.BeneficiaryType
	}

	updated := &domain.Beneficiary{
		ID:                       existing.ID,
		CustomerID:               customerID,
		AccountNumber:            req.AccountNumber,
		BeneficiaryName:          req.BeneficiaryName,
		BeneficiaryAccountNumber: req.BeneficiaryAccountNumber,
		BeneficiaryBankCode:      req.BeneficiaryBankCode,
		BeneficiaryBankName:      req.BeneficiaryBankName,
		BeneficiaryType:          beneficiaryType,
		Status:                   existing.Status,
		CreatedAt:                existing.CreatedAt,
		UpdatedAt:                time.Now().UTC(),
	}

	saved, err := s.repo.Update(ctx, updated)
	if err != nil {
		return nil, err
	}

	if _, err := s.audit.RecordUpdate(ctx, saved, performedBy); err != nil {
		return nil, err
	}
	return saved, nil
}

// Delete soft-deletes the beneficiary scoped to (id, customerID). The row is
// retained with status DELETED and its account number becomes available for
// a new registration. Audited as DELETE.
func (s *BeneficiaryService) Delete(ctx context.Context, id int64, customerID, performedBy string) error {
	log.Printf("level=info component=beneficiary_service operation=delete beneficiary_id=%d customer_id=%s", id, customerID)

	if err := s.repo.SoftDelete(ctx, id, customerID); err != nil {
		return err
	}

	if _, err := s.audit.RecordDelete(ctx, id, customerID, performedBy); err != nil {
		return err
	}
	return nil
}

// Get fetches one ACTIVE beneficiary scoped to the owning customer.
func (s *BeneficiaryService) Get(ctx context.Context, id int64, customerID string) (*domain.Beneficiary, error) {
	return s.repo.FindByIDAndCustomerID(ctx, id, customerID)
}

// List returns the customer's ACTIVE beneficiaries, optionally filtered by
// originating account number.
func (s *BeneficiaryService) List(ctx context.Context, customerID, accountNumber string) ([]domain.Beneficiary, error) {
	return s.repo.FindByCustomerID(ctx, customerID, accountNumber)
}

func defaultType(beneficiaryType string) string {
	if beneficiaryType == "" {
		return domain.TypeDomestic
	}
	return beneficiaryType
}
