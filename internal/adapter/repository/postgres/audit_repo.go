package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mrcapitals/fundledger-backend/internal/domain"
)

// insertAuditTx appends an audit entry inside the caller's transaction so
// the entry commits (or rolls back) together with the mutation it describes.
func insertAuditTx(ctx context.Context, tx *sql.Tx, entry *domain.AuditLogEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}

	before, err := marshalSnapshot(entry.Before)
	if err != nil {
		return fmt.Errorf("failed to serialize before snapshot: %w", err)
	}
	after, err := marshalSnapshot(entry.After)
	if err != nil {
		return fmt.Errorf("failed to serialize after snapshot: %w", err)
	}

	query := `
		INSERT INTO audit_log (id, actor_user_id, action, entity_type, entity_id, before_state, after_state)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`
	err = tx.QueryRowContext(ctx, query,
		entry.ID,
		entry.ActorUserID,
		string(entry.Action),
		string(entry.EntityType),
		entry.EntityID,
		before,
		after,
	).Scan(&entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert audit entry: %w", err)
	}
	return nil
}

func marshalSnapshot(s *domain.Snapshot) ([]byte, error) {
	if s == nil {
		return nil, nil
	}
	return json.Marshal(s)
}

// auditRepository implements domain.AuditRepository
type auditRepository struct {
	db *DB
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db *DB) domain.AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) ListByEntity(ctx context.Context, entityType domain.EntityKind, entityID int64) ([]*domain.AuditLogEntry, error) {
	query := `
		SELECT id, actor_user_id, action, entity_type, entity_id, before_state, after_state, created_at
		FROM audit_log
		WHERE entity_type = $1 AND entity_id = $2
		ORDER BY created_at ASC
	`
	rows, err := r.db.QueryContext(ctx, query, string(entityType), entityID)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	defer rows.Close()
	return scanAuditRows(rows)
}

func (r *auditRepository) ListByActor(ctx context.Context, actorUserID int64, from, to time.Time) ([]*domain.AuditLogEntry, error) {
	query := `
		SELECT id, actor_user_id, action, entity_type, entity_id, before_state, after_state, created_at
		FROM audit_log
		WHERE actor_user_id = $1 AND created_at >= $2 AND created_at <= $3
		ORDER BY created_at ASC
	`
	rows, err := r.db.QueryContext(ctx, query, actorUserID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	defer rows.Close()
	return scanAuditRows(rows)
}

func scanAuditRows(rows *sql.Rows) ([]*domain.AuditLogEntry, error) {
	entries := make([]*domain.AuditLogEntry, 0)
	for rows.Next() {
		var (
			e             domain.AuditLogEntry
			before, after []byte
		)
		if err := rows.Scan(&e.ID, &e.ActorUserID, &e.Action, &e.EntityType, &e.EntityID, &before, &after, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		if len(before) > 0 {
			e.Before = &domain.Snapshot{}
			if err := json.Unmarshal(before, e.Before); err != nil {
				return nil, fmt.Errorf("failed to parse before snapshot: %w", err)
			}
		}
		if len(after) > 0 {
			e.After = &domain.Snapshot{}
			if err := json.Unmarshal(after, e.After); err != nil {
				return nil, fmt.Errorf("failed to parse after snapshot: %w", err)
			}
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}
