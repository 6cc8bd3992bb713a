// Package billingpg is the Postgres-backed implementation of billing.Store,
// grounded the same way as internal/weigh/weighpg: a SchemaSQL-constant
// bootstrap plus a pgxpool-backed serializable transaction per call.
package billingpg

// SchemaSQL bootstraps the billing service's three tables, named per the
// spec's Provider/Rates/Trucks schema.
const SchemaSQL = `
CREATE TABLE IF NOT EXISTS providers (
	id   BIGSERIAL PRIMARY KEY,
	name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS trucks (
	truck_id    TEXT PRIMARY KEY,
	provider_id BIGINT NOT NULL REFERENCES providers (id)
);

CREATE TABLE IF NOT EXISTS rates (
	product TEXT NOT NULL,
	rate    INTEGER NOT NULL,
	scope   BIGINT
);

CREATE INDEX IF NOT EXISTS idx_trucks_provider ON trucks (provider_id);
`
