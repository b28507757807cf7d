// Package migrate bootstraps the local session schema.
package migrate

import (
	"context"

	"github.com/Glenn-2k/holidaze/internal/db"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS sessions (
	id TEXT PRIMARY KEY,
	profile_name TEXT NOT NULL,
	email TEXT NOT NULL DEFAULT '',
	access_token TEXT NOT NULL,
	venue_manager BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_sessions_profile_name ON sessions(profile_name);
`

// Up applies the schema. Statements are idempotent, so there is no version
// bookkeeping; the single table does not warrant a migration ledger.
func Up(ctx context.Context, d *db.DB) error {
	return d.Exec(ctx, schemaSQL)
}
