package store

// schemaVersionV1 is the initial debate schema.
const schemaVersionV1 = 1

// currentSchemaVersion is the target schema version for this build.
const currentSchemaVersion = schemaVersionV1

// schemaV1 holds the debate aggregate plus append-only round storage.
// The payload column carries the aggregate fields as JSON; rounds and their
// messages live in their own tables so message writes stay append-only.
var schemaV1 = `
CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL);

CREATE TABLE IF NOT EXISTS debates (
	id         TEXT PRIMARY KEY,
	owner_id   TEXT NOT NULL,
	status     TEXT NOT NULL,
	created_at TEXT NOT NULL,
	payload    BLOB NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_debates_owner ON debates(owner_id, status);

CREATE TABLE IF NOT EXISTS rounds (
	debate_id TEXT NOT NULL REFERENCES debates(id) ON DELETE CASCADE,
	number    INTEGER NOT NULL,
	sealed_at TEXT NOT NULL,
	PRIMARY KEY (debate_id, number)
);

CREATE TABLE IF NOT EXISTS messages (
	id        TEXT PRIMARY KEY,
	debate_id TEXT NOT NULL REFERENCES debates(id) ON DELETE CASCADE,
	round     INTEGER NOT NULL,
	seq       INTEGER NOT NULL,
	payload   BLOB NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_messages_debate ON messages(debate_id, round, seq);
`
