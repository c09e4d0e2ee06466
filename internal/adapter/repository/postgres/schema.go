package postgres

import (
	"context"
	"fmt"
)

// schemaStatements is the idempotent DDL applied at startup. Ordering
// matters: enums, then tables in foreign-key order.
var schemaStatements = []string{
	`DO $$ BEGIN
		CREATE TYPE cash_movement_type AS ENUM ('deposit', 'withdrawal', 'fee');
	EXCEPTION WHEN duplicate_object THEN NULL; END $$`,

	`DO $$ BEGIN
		CREATE TYPE fund_share_movement_type AS ENUM ('subscription', 'redemption');
	EXCEPTION WHEN duplicate_object THEN NULL; END $$`,

	`DO $$ BEGIN
		CREATE TYPE app_user_status AS ENUM ('invited', 'active', 'suspended', 'disabled');
	EXCEPTION WHEN duplicate_object THEN NULL; END $$`,

	`CREATE TABLE IF NOT EXISTS app_users (
		id          BIGSERIAL PRIMARY KEY,
		subject_uid TEXT NOT NULL UNIQUE,
		email       TEXT NOT NULL UNIQUE,
		full_name   TEXT NOT NULL,
		is_admin    BOOLEAN NOT NULL DEFAULT FALSE,
		status      app_user_status NOT NULL DEFAULT 'invited',
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS accounts (
		id             BIGSERIAL PRIMARY KEY,
		user_id        BIGINT NOT NULL REFERENCES app_users(id) ON DELETE CASCADE,
		account_number TEXT NOT NULL UNIQUE,
		created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS funds (
		id         BIGSERIAL PRIMARY KEY,
		name       TEXT NOT NULL UNIQUE,
		currency   CHAR(3) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS cash_movements (
		id             BIGSERIAL PRIMARY KEY,
		account_id     BIGINT NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
		type           cash_movement_type NOT NULL,
		amount         NUMERIC(18,2) NOT NULL CHECK (amount > 0),
		currency       CHAR(3) NOT NULL,
		effective_date DATE NOT NULL,
		created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS fund_share_movements (
		id               BIGSERIAL PRIMARY KEY,
		account_id       BIGINT NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
		fund_id          BIGINT NOT NULL REFERENCES funds(id) ON DELETE CASCADE,
		cash_movement_id BIGINT REFERENCES cash_movements(id) ON DELETE SET NULL,
		type             fund_share_movement_type NOT NULL,
		shares_change    NUMERIC(24,6) NOT NULL,
		share_price      NUMERIC(24,6) NOT NULL CHECK (share_price > 0),
		total_amount     NUMERIC(18,2) NOT NULL CHECK (total_amount > 0),
		effective_date   DATE NOT NULL,
		created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS account_fund_positions (
		id            BIGSERIAL PRIMARY KEY,
		account_id    BIGINT NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
		fund_id       BIGINT NOT NULL REFERENCES funds(id) ON DELETE CASCADE,
		share_balance NUMERIC(24,6) NOT NULL CHECK (share_balance >= 0),
		cost_basis    NUMERIC(18,2) NOT NULL CHECK (cost_basis >= 0),
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (account_id, fund_id)
	)`,

	`CREATE TABLE IF NOT EXISTS fund_navs (
		id                 BIGSERIAL PRIMARY KEY,
		fund_id            BIGINT NOT NULL REFERENCES funds(id) ON DELETE CASCADE,
		as_of_date         DATE NOT NULL,
		fund_accumulated   NUMERIC(24,2) NOT NULL,
		shares_amount      NUMERIC(24,6) NOT NULL CHECK (shares_amount > 0),
		share_value        NUMERIC(24,6) NOT NULL,
		delta_previous     NUMERIC(18,6),
		delta_since_origin NUMERIC(18,6),
		created_at         TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (fund_id, as_of_date)
	)`,

	`CREATE TABLE IF NOT EXISTS audit_log (
		id            UUID PRIMARY KEY,
		actor_user_id BIGINT REFERENCES app_users(id) ON DELETE SET NULL,
		action        TEXT NOT NULL,
		entity_type   TEXT NOT NULL,
		entity_id     BIGINT,
		before_state  JSONB,
		after_state   JSONB,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE INDEX IF NOT EXISTS idx_cash_movements_account
		ON cash_movements (account_id, effective_date)`,

	`CREATE INDEX IF NOT EXISTS idx_fund_share_movements_account
		ON fund_share_movements (account_id, effective_date)`,

	`CREATE INDEX IF NOT EXISTS idx_fund_share_movements_cash
		ON fund_share_movements (cash_movement_id)`,

	`CREATE INDEX IF NOT EXISTS idx_audit_log_entity
		ON audit_log (entity_type, entity_id, created_at)`,

	`CREATE INDEX IF NOT EXISTS idx_audit_log_actor
		ON audit_log (actor_user_id, created_at)`,
}

// InitSchema applies the schema statements. Safe to run on every startup.
func (db *DB) InitSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement: %w", err)
		}
	}
	return nil
}
