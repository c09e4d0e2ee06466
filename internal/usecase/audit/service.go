package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/mrcapitals/fundledger-backend/internal/domain"
)

// defaultActorWindow bounds actor trail queries when the caller gives no
// explicit range.
const defaultActorWindow = 30 * 24 * time.Hour

// Service serves read access to the audit log. The log itself is written
// inside the transactions of the mutations it describes; nothing here mutates.
type Service struct {
	AuditRepo domain.AuditRepository
}

// NewService creates a new audit Service instance
func NewService(auditRepo domain.AuditRepository) *Service {
	return &Service{AuditRepo: auditRepo}
}

// EntityTrail returns the full history of one entity, oldest first
func (s *Service) EntityTrail(ctx context.Context, entityType domain.EntityKind, entityID int64) ([]*domain.AuditLogEntry, error) {
	switch entityType {
	case domain.EntityCashMovement, domain.EntityFundShareMovement,
		domain.EntityPosition, domain.EntityFundNav:
	default:
		return nil, fmt.Errorf("unknown entity type %q: %w", entityType, domain.ErrValidation)
	}
	return s.AuditRepo.ListByEntity(ctx, entityType, entityID)
}

// ActorTrail returns the entries one actor recorded within [from, to], oldest
// first. A zero `to` means now; a zero `from` means 30 days before `to`.
func (s *Service) ActorTrail(ctx context.Context, actorUserID int64, from, to time.Time) ([]*domain.AuditLogEntry, error) {
	if to.IsZero() {
		to = time.Now().UTC()
	}
	if from.IsZero() {
		from = to.Add(-defaultActorWindow)
	}
	if to.Before(from) {
		return nil, fmt.Errorf("trail range end precedes start: %w", domain.ErrValidation)
	}
	return s.AuditRepo.ListByActor(ctx, actorUserID, from, to)
}
