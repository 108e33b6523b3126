/**
 * @description
 * This file implements the audit recorder: one immutable record is appended
 * per beneficiary mutation, carrying a JSON snapshot and the performing
 * actor. After the record is stored, a lifecycle event is published to
 * RabbitMQ for downstream consumers.
 *
 * @notes
 * - Snapshot serialization failure degrades to an empty-object marker
 *   rather than losing the operation/actor/timestamp fields, since those
 *   are what audit consumers query on.
 * - Whether an audit-store failure unwinds the business mutation is a
 *   configured trade-off (strict), not a silent default. Event publishing
 *   is always best-effort.
 */

package app

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/alokkulkarni/beneficiaries/internal/domain"
	"github.com/alokkulkarni/beneficiaries/internal/store"
	"github.com/alokkulkarni/beneficiaries/pkg/rabbitmq"
)

// AuditConfig controls how audit failures relate to the primary mutation.
type AuditConfig struct {
	// Strict fails the mutation when the audit record cannot be stored.
	// When false (the default), the failure is logged and the already
	// committed mutation stands.
	Strict bool
}

// AuditService appends beneficiary audit records and publishes lifecycle
// events.
type AuditService struct {
	repo     store.AuditRepository
	producer rabbitmq.Publisher
	cfg      AuditConfig
}

// NewAuditService creates a new AuditService.
func NewAuditService(repo store.AuditRepository, producer rabbitmq.Publisher, cfg AuditConfig) *AuditService {
	return &AuditService{repo: repo, producer: producer, cfg: cfg}
}

// RecordCreate appends a CREATE record with a full beneficiary snapshot.
func (s *AuditService) RecordCreate(ctx context.Context, b *domain.Beneficiary, performedBy string) (*domain.BeneficiaryAudit, error) {
	return s.record(ctx, &domain.BeneficiaryAudit{
		BeneficiaryID: b.ID,
		CustomerID:    b.CustomerID,
		Operation:     domain.AuditOperationCreate,
		Changes:       serializeSnapshot(b),
	}, performedBy)
}

// RecordUpdate appends an UPDATE record with a full beneficiary snapshot.
func (s *AuditService) RecordUpdate(ctx context.Context, b *domain.Beneficiary, performedBy string) (*domain.BeneficiaryAudit, error) {
	return s.record(ctx, &domain.BeneficiaryAudit{
		BeneficiaryID: b.ID,
		CustomerID:    b.CustomerID,
		Operation:     domain.AuditOperationUpdate,
		Changes:       serializeSnapshot(b),
	}, performedBy)
}

// RecordDelete appends a DELETE record carrying the identifying tuple only;
// the deleted row itself is retained in the beneficiaries table.
func (s *AuditService) RecordDelete(ctx context.Context, beneficiaryID int64, customerID, performedBy string) (*domain.BeneficiaryAudit, error) {
	return s.record(ctx, &domain.BeneficiaryAudit{
		BeneficiaryID: beneficiaryID,
		CustomerID:    customerID,
		Operation:     domain.AuditOperationDelete,
		Changes: serializeSnapshot(map[string]interface{}{
			"beneficiary_id": beneficiaryID,
			"customer_id":    customerID,
		}),
	}, performedBy)
}

// History lists one beneficiary's audit trail, most recent first.
func (s *AuditService) History(ctx context.Context, beneficiaryID int64, customerID string) ([]domain.BeneficiaryAudit, error) {
	return s.repo.FindByBeneficiaryIDAndCustomerID(ctx, beneficiaryID, customerID)
}

// CustomerHistory lists a customer's full audit trail, most recent first.
func (s *AuditService) CustomerHistory(ctx context.Context, customerID string) ([]domain.BeneficiaryAudit, error) {
	return s.repo.FindByCustomerID(ctx, customerID)
}

func (s *AuditService) record(ctx context.Context, audit *domain.BeneficiaryAudit, performedBy string) (*domain.BeneficiaryAudit, error) {
	if performedBy == "" {
		performedBy = domain.AuditActorSystem
	}
	audit.PerformedBy = performedBy
	audit.PerformedAt = time.Now().UTC()

	saved, err := s.repo.Create(ctx, audit)
	if err != nil {
		if s.cfg.Strict {
			return nil, err
		}
		log.Printf("level=error component=audit msg=\"audit write failed, mutation stands\" beneficiary_id=%d operation=%s err=%v",
			audit.BeneficiaryID, audit.Operation, err)
		return audit, nil
	}

	if s.producer != nil {
		event := rabbitmq.AuditEvent{
			BeneficiaryID: saved.BeneficiaryID,
			CustomerID:    saved.CustomerID,
			Operation:     saved.Operation,
			PerformedBy:   saved.PerformedBy,
			PerformedAt:   saved.PerformedAt,
		}
		if pubErr := s.producer.PublishAuditEvent(ctx, event); pubErr != nil {
			log.Printf("level=warn component=audit msg=\"audit event publish failed\" beneficiary_id=%d operation=%s err=%v",
				saved.BeneficiaryID, saved.Operation, pubErr)
		}
	}
	return saved, nil
}

// serializeSnapshot marshals the audited state, degrading to an empty-object
// marker on failure so the record itself is never lost.
func serializeSnapshot(v interface{}) string {
	data, err := json.Marshal(v)
	if err != nil {
		log.Printf("level=error component=audit msg=\"snapshot serialization failed\" err=%v", err)
		return "{}"
	}
	return string(data)
}
