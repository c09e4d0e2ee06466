package domain

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// AuditAction represents the kind of mutation an audit entry describes
type AuditAction string

const (
	AuditActionCreate    AuditAction = "create"
	AuditActionUpdate    AuditAction = "update"
	AuditActionRecompute AuditAction = "recompute"
)

// EntityKind discriminates audit snapshots over the mutable entity kinds.
type EntityKind string

const (
	EntityCashMovement      EntityKind = "cash_movement"
	EntityFundShareMovement EntityKind = "fund_share_movement"
	EntityPosition          EntityKind = "account_fund_position"
	EntityFundNav           EntityKind = "fund_nav"
)

// Snapshot is a tagged variant holding the state of exactly one entity.
// Exactly the field matching Kind is non-nil. It is carried typed through the
// core and serialized to JSON only at the storage boundary.
type Snapshot struct {
	Kind      EntityKind
	Cash      *CashMovement
	FundShare *FundShareMovement
	Position  *AccountFundPosition
	Nav       *FundNav
}

// CashSnapshot captures a copy of a cash movement
func CashSnapshot(m CashMovement) *Snapshot {
	return &Snapshot{Kind: EntityCashMovement, Cash: &m}
}

// FundShareSnapshot captures a copy of a fund share movement
func FundShareSnapshot(m FundShareMovement) *Snapshot {
	return &Snapshot{Kind: EntityFundShareMovement, FundShare: &m}
}

// PositionSnapshot captures a copy of a position
func PositionSnapshot(p AccountFundPosition) *Snapshot {
	return &Snapshot{Kind: EntityPosition, Position: &p}
}

// NavSnapshot captures a copy of a NAV row
func NavSnapshot(n FundNav) *Snapshot {
	return &Snapshot{Kind: EntityFundNav, Nav: &n}
}

type snapshotEnvelope struct {
	Kind EntityKind      `json:"kind"`
	Data json.RawMessage `json:"data"`
}

// MarshalJSON serializes the snapshot as {"kind": ..., "data": {...}}
func (s *Snapshot) MarshalJSON() ([]byte, error) {
	var data any
	switch s.Kind {
	case EntityCashMovement:
		data = s.Cash
	case EntityFundShareMovement:
		data = s.FundShare
	case EntityPosition:
		data = s.Position
	case EntityFundNav:
		data = s.Nav
	default:
		return nil, errors.New("unknown snapshot kind: " + string(s.Kind))
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(snapshotEnvelope{Kind: s.Kind, Data: raw})
}

// UnmarshalJSON restores the tagged variant from its envelope form
func (s *Snapshot) UnmarshalJSON(b []byte) error {
	var env snapshotEnvelope
	if err := json.Unmarshal(b, &env); err != nil {
		return err
	}
	s.Kind = env.Kind
	switch env.Kind {
	case EntityCashMovement:
		s.Cash = &CashMovement{}
		return json.Unmarshal(env.Data, s.Cash)
	case EntityFundShareMovement:
		s.FundShare = &FundShareMovement{}
		return json.Unmarshal(env.Data, s.FundShare)
	case EntityPosition:
		s.Position = &AccountFundPosition{}
		return json.Unmarshal(env.Data, s.Position)
	case EntityFundNav:
		s.Nav = &FundNav{}
		return json.Unmarshal(env.Data, s.Nav)
	default:
		return errors.New("unknown snapshot kind: " + string(env.Kind))
	}
}

// AuditLogEntry is an immutable record of one mutation: who did it, what
// changed, and the state immediately before and after. Entries are written in
// the same transaction as the mutation they describe and are never updated
// or deleted.
type AuditLogEntry struct {
	ID          uuid.UUID
	ActorUserID *int64 // nil for system-initiated mutations
	Action      AuditAction
	EntityType  EntityKind
	EntityID    *int64 // nil when the entity id is not yet assigned
	Before      *Snapshot
	After       *Snapshot
	CreatedAt   time.Time
}
