package store

// Keys under which the serialized records are stored.
const (
	KeyProfile = "userProfile"
	KeyHistory = "dailyStats"
	KeySession = "currentSession"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS kv (
    key                  TEXT PRIMARY KEY,
    value                BLOB NOT NULL,
    updated_at           TEXT NOT NULL
);
`
