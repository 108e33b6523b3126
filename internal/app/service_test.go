package app

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/alokkulkarni/beneficiaries/internal/domain"
	"github.com/alokkulkarni/beneficiaries/internal/store"
)

// newTestService wires a BeneficiaryService over the in-memory repositories
// with validation enabled in lenient mode and a non-strict audit recorder.
func newTestService(repo store.BeneficiaryRepository, auditRepo store.AuditRepository) *BeneficiaryService {
	validator := NewValidator(ValidationConfig{Enabled: true}, &stubScreeningClient{})
	audit := NewAuditService(auditRepo, nil, AuditConfig{})
	return NewBeneficiaryService(repo, validator, audit)
}

func TestCreateBeneficiary(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(store.NewMemoryBeneficiaryRepository(), store.NewMemoryAuditRepository())

	saved, err := svc.Create(ctx, validRequest(), "agent-7")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if saved.ID == 0 {
		t.Fatal("expected an assigned ID")
	}
	if saved.Status != domain.StatusActive {
		t.Fatalf("new beneficiary must be ACTIVE, got %q", saved.Status)
	}
	if saved.CreatedAt.IsZero() || saved.UpdatedAt.IsZero() {
		t.Fatal("timestamps must be set")
	}

	got, err := svc.Get(ctx, saved.ID, "cust-1")
	if err != nil {
		t.Fatalf("round-trip read failed: %v", err)
	}
	if got.BeneficiaryName != saved.BeneficiaryName || got.BeneficiaryAccountNumber != saved.BeneficiaryAccountNumber {
		t.Fatalf("round-trip mismatch: %+v vs %+v", got, saved)
	}
}

func TestCreateDefaultsTypeToDomestic(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(store.NewMemoryBeneficiaryRepository(), store.NewMemoryAuditRepository())

	req := validRequest()
	req.BeneficiaryType = ""
	saved, err := svc.Create(ctx, req, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if saved.BeneficiaryType != domain.TypeDomestic {
		t.Fatalf("expected DOMESTIC default, got %q", saved.BeneficiaryType)
	}
}

func TestCreateRejectsDuplicateAccountNumber(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(store.NewMemoryBeneficiaryRepository(), store.NewMemoryAuditRepository())

	if _, err := svc.Create(ctx, validRequest(), ""); err != nil {
		t.Fatalf("first create failed: %v", err)
	}

	req := validRequest()
	req.BeneficiaryName = "Someone Else"
	_, err := svc.Create(ctx, req, "")
	if !errors.Is(err, store.ErrDuplicateBeneficiary) {
		t.Fatalf("expected ErrDuplicateBeneficiary, got %v", err)
	}

	// Same account number under a different customer is fine.
	req = validRequest()
	req.CustomerID = "cust-2"
	if _, err := svc.Create(ctx, req, ""); err != nil {
		t.Fatalf("cross-customer create failed: %v", err)
	}
}

func TestDeleteFreesAccountNumber(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(store.NewMemoryBeneficiaryRepository(), store.NewMemoryAuditRepository())

	saved, err := svc.Create(ctx, validRequest(), "")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := svc.Delete(ctx, saved.ID, "cust-1", ""); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	// The deleted row is no longer readable.
	if _, err := svc.Get(ctx, saved.ID, "cust-1"); !errors.Is(err, store.ErrBeneficiaryNotFound) {
		t.Fatalf("expected ErrBeneficiaryNotFound after delete, got %v", err)
	}

	// The account number is reusable.
	if _, err := svc.Create(ctx, validRequest(), ""); err != nil {
		t.Fatalf("re-registration after delete failed: %v", err)
	}

	// Deleting twice fails; DELETED is terminal.
	if err := svc.Delete(ctx, saved.ID, "cust-1", ""); !errors.Is(err, store.ErrBeneficiaryNotFound) {
		t.Fatalf("expected ErrBeneficiaryNotFound on second delete, got %v", err)
	}
}

func TestUpdateBeneficiary(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(store.NewMemoryBeneficiaryRepository(), store.NewMemoryAuditRepository())

	saved, err := svc.Create(ctx, validRequest(), "")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	req := validRequest()
	req.BeneficiaryName = "John A Doe"
	req.BeneficiaryType = ""
	updated, err := svc.Update(ctx, saved.ID, "cust-1", req, "")
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.ID != saved.ID {
		t.Fatalf("update must preserve identity, got ID %d", updated.ID)
	}
	if !updated.CreatedAt.Equal(saved.CreatedAt) {
		t.Fatal("update must preserve created-at")
	}
	if updated.BeneficiaryName != "John A Doe" {
		t.Fatalf("name not updated, got %q", updated.BeneficiaryName)
	}
	if updated.BeneficiaryType != saved.BeneficiaryType {
		t.Fatalf("empty type must fall back to existing, got %q", updated.BeneficiaryType)
	}
}

func TestUpdateRejectsConflictingAccountNumber(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(store.NewMemoryBeneficiaryRepository(), store.NewMemoryAuditRepository())

	first, err := svc.Create(ctx, validRequest(), "")
	if err != nil {
		t.Fatalf("create first failed: %v", err)
	}
	second := validRequest()
	second.BeneficiaryAccountNumber = "87654321"
	secondSaved, err := svc.Create(ctx, second, "")
	if err != nil {
		t.Fatalf("create second failed: %v", err)
	}

	// Repointing the second at the first's account number must conflict.
	req := validRequest()
	req.BeneficiaryAccountNumber = first.BeneficiaryAccountNumber
	if _, err := svc.Update(ctx, secondSaved.ID, "cust-1", req, ""); !errors.Is(err, store.ErrDuplicateBeneficiary) {
		t.Fatalf("expected ErrDuplicateBeneficiary, got %v", err)
	}

	// Keeping its own account number is never a conflict.
	req = validRequest()
	req.BeneficiaryAccountNumber = "87654321"
	req.BeneficiaryName = "Renamed Payee"
	if _, err := svc.Update(ctx, secondSaved.ID, "cust-1", req, ""); err != nil {
		t.Fatalf("same-account update failed: %v", err)
	}
}

func TestOwnershipScoping(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(store.NewMemoryBeneficiaryRepository(), store.NewMemoryAuditRepository())

	saved, err := svc.Create(ctx, validRequest(), "")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if _, err := svc.Get(ctx, saved.ID, "cust-2"); !errors.Is(err, store.ErrBeneficiaryNotFound) {
		t.Fatalf("cross-customer read must report not-found, got %v", err)
	}
	if _, err := svc.Update(ctx, saved.ID, "cust-2", validRequest(), ""); !errors.Is(err, store.ErrBeneficiaryNotFound) {
		t.Fatalf("cross-customer update must report not-found, got %v", err)
	}
	if err := svc.Delete(ctx, saved.ID, "cust-2", ""); !errors.Is(err, store.ErrBeneficiaryNotFound) {
		t.Fatalf("cross-customer delete must report not-found, got %v", err)
	}
}

func TestCreateRejectsScreenedBeneficiary(t *testing.T) {
	ctx := context.Background()
	repo := store.NewMemoryBeneficiaryRepository()
	svc := newTestService(repo, store.NewMemoryAuditRepository())

	req := validRequest()
	req.BeneficiaryAccountNumber = "99912345678"
	if _, err := svc.Create(ctx, req, ""); !errors.Is(err, ErrValidationFailed) {
		t.Fatalf("expected ErrValidationFailed for sanctioned account, got %v", err)
	}

	// A rejected create leaves no row behind.
	all, err := repo.FindAllByCustomerID(ctx, "cust-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 0 {
		t.Fatalf("expected no rows after rejected create, got %d", len(all))
	}
}

func TestLifecycleAuditTrail(t *testing.T) {
	ctx := context.Background()
	auditRepo := store.NewMemoryAuditRepository()
	svc := newTestService(store.NewMemoryBeneficiaryRepository(), auditRepo)

	saved, err := svc.Create(ctx, validRequest(), "agent-7")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	req := validRequest()
	req.BeneficiaryName = "John A Doe"
	if _, err := svc.Update(ctx, saved.ID, "cust-1", req, ""); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if err := svc.Delete(ctx, saved.ID, "cust-1", "agent-7"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	trail, err := auditRepo.FindByBeneficiaryIDAndCustomerID(ctx, saved.ID, "cust-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(trail) != 3 {
		t.Fatalf("expected 3 audit records, got %d", len(trail))
	}

	ops := map[string]domain.BeneficiaryAudit{}
	for _, a := range trail {
		ops[a.Operation] = a
	}
	create, ok := ops[domain.AuditOperationCreate]
	if !ok {
		t.Fatal("missing CREATE record")
	}
	if create.PerformedBy != "agent-7" {
		t.Fatalf("expected explicit actor on CREATE, got %q", create.PerformedBy)
	}
	update, ok := ops[domain.AuditOperationUpdate]
	if !ok {
		t.Fatal("missing UPDATE record")
	}
	if update.PerformedBy != domain.AuditActorSystem {
		t.Fatalf("missing actor must default to SYSTEM, got %q", update.PerformedBy)
	}
	if _, ok := ops[domain.AuditOperationDelete]; !ok {
		t.Fatal("missing DELETE record")
	}

	// CREATE and UPDATE snapshots are parseable JSON carrying the row state.
	var snapshot map[string]interface{}
	if err := json.Unmarshal([]byte(update.Changes), &snapshot); err != nil {
		t.Fatalf("snapshot is not valid JSON: %v", err)
	}
	if snapshot["beneficiary_name"] != "John A Doe" {
		t.Fatalf("snapshot must carry updated state, got %v", snapshot["beneficiary_name"])
	}
}
