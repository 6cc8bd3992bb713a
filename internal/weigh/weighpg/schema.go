// Package weighpg is the Postgres-backed implementation of weigh.Store,
// grounded on the SchemaSQL-constant bootstrap idiom from
// other_examples/.../go_syschecker/internal/database/relational/orm.go.go
// and the pgxpool connection pattern from
// other_examples/.../oilgas-project/backend/test/testutil/database.go.
package weighpg

// SchemaSQL bootstraps the weigh engine's two tables and their indexes.
// Every statement is idempotent so Bootstrap can run on every startup.
const SchemaSQL = `
CREATE TABLE IF NOT EXISTS transactions (
	id         BIGSERIAL PRIMARY KEY,
	session_id BIGINT NOT NULL,
	datetime   TIMESTAMP NOT NULL,
	direction  TEXT NOT NULL,
	truck      TEXT NOT NULL DEFAULT '',
	containers TEXT NOT NULL DEFAULT '',
	bruto      INTEGER NOT NULL,
	truck_tara INTEGER,
	neto       INTEGER,
	produce    TEXT NOT NULL DEFAULT 'na'
);

CREATE INDEX IF NOT EXISTS idx_transactions_truck ON transactions (truck);
CREATE INDEX IF NOT EXISTS idx_transactions_datetime ON transactions (datetime);
CREATE INDEX IF NOT EXISTS idx_transactions_session ON transactions (session_id);

CREATE TABLE IF NOT EXISTS containers_registered (
	container_id TEXT PRIMARY KEY,
	weight       INTEGER NOT NULL,
	unit         TEXT NOT NULL
);
`
