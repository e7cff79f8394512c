package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema is the relational shape the console persists into. Child tables
// cascade-delete with their parent, and credential references are minted
// by the database so client code never invents one.
const Schema = `
CREATE EXTENSION IF NOT EXISTS pgcrypto;

CREATE TABLE IF NOT EXISTS tenants (
	id              UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	name            TEXT NOT NULL,
	color           TEXT NOT NULL DEFAULT 'bg-blue-600',
	crm_type        TEXT NOT NULL DEFAULT 'none',
	internal_schema JSONB,
	output_template JSONB,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS crm_configs (
	id              UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	tenant_id       UUID NOT NULL UNIQUE REFERENCES tenants(id) ON DELETE CASCADE,
	webhook_url     TEXT,
	ai_instructions TEXT,
	source_json     TEXT,
	updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS credentials (
	id            UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	tenant_id     UUID NOT NULL REFERENCES tenants(id) ON DELETE CASCADE,
	provider_id   TEXT NOT NULL,
	alias         TEXT NOT NULL DEFAULT '',
	credential_id TEXT NOT NULL DEFAULT ('sec_' || encode(gen_random_bytes(9), 'hex')),
	status        TEXT NOT NULL DEFAULT 'disconnected',
	last_tested   TEXT NOT NULL DEFAULT 'never',
	expires_at    TEXT
);

CREATE TABLE IF NOT EXISTS output_routes (
	id            UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	tenant_id     UUID NOT NULL REFERENCES tenants(id) ON DELETE CASCADE,
	name          TEXT NOT NULL,
	url           TEXT NOT NULL,
	method        TEXT NOT NULL DEFAULT 'POST',
	body_template TEXT NOT NULL DEFAULT '',
	group_name    TEXT,
	is_active     BOOLEAN NOT NULL DEFAULT true
);

CREATE TABLE IF NOT EXISTS output_route_headers (
	id       UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	route_id UUID NOT NULL REFERENCES output_routes(id) ON DELETE CASCADE,
	key      TEXT NOT NULL,
	value    TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS output_executions (
	id        UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	route_id  UUID NOT NULL REFERENCES output_routes(id) ON DELETE CASCADE,
	timestamp TIMESTAMPTZ NOT NULL DEFAULT now(),
	status    INT NOT NULL,
	payload   JSONB,
	response  JSONB,
	duration  TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS integrations (
	id            TEXT PRIMARY KEY,
	name          TEXT NOT NULL,
	type          TEXT NOT NULL DEFAULT 'custom',
	icon          TEXT,
	config_fields JSONB NOT NULL DEFAULT '[]'::jsonb
);

CREATE TABLE IF NOT EXISTS env_vars (
	id        UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	key       TEXT NOT NULL,
	value     TEXT NOT NULL,
	is_secret BOOLEAN NOT NULL DEFAULT false
);

CREATE TABLE IF NOT EXISTS user_permissions (
	id         UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	user_email TEXT NOT NULL,
	role       TEXT NOT NULL,
	scope      TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS execution_logs (
	id         UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	tenant_id  UUID REFERENCES tenants(id) ON DELETE CASCADE,
	session_id TEXT NOT NULL,
	timestamp  TIMESTAMPTZ NOT NULL DEFAULT now(),
	duration   TEXT,
	status     TEXT NOT NULL DEFAULT 'RUNNING'
);

CREATE TABLE IF NOT EXISTS execution_steps (
	id               UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	execution_log_id UUID NOT NULL REFERENCES execution_logs(id) ON DELETE CASCADE,
	step_order       INT NOT NULL,
	name             TEXT NOT NULL,
	status           TEXT NOT NULL DEFAULT 'PENDING',
	timestamp        TEXT,
	payload_in       JSONB,
	payload_out      JSONB
);
`

// ApplySchema creates every table the console uses. Statements are
// idempotent, so running it against an initialized database is safe.
func ApplySchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, Schema)
	return err
}
