package sqlite

import "database/sql"

// migrations contains the SQL statements to set up the database schema.
// These run on startup to ensure tables exist.
// Foreign keys cascade downward from cycles, so deleting a cycle clears its
// invites, memberships, sessions and payments in one statement.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    username TEXT NOT NULL UNIQUE,
    email TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    image_url TEXT NOT NULL DEFAULT '',
    phone TEXT NOT NULL DEFAULT '',
    twitter TEXT NOT NULL DEFAULT '',
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS cycles (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    host_id TEXT NOT NULL,
    frequency_days INTEGER NOT NULL,
    payment_amount REAL NOT NULL,
    start_date INTEGER NOT NULL DEFAULT 0,
    has_started INTEGER NOT NULL DEFAULT 0,
    has_ended INTEGER NOT NULL DEFAULT 0,
    created_at INTEGER NOT NULL,
    FOREIGN KEY (host_id) REFERENCES users(id)
);

CREATE TABLE IF NOT EXISTS cycle_members (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    cycle_id TEXT NOT NULL,
    has_received INTEGER NOT NULL DEFAULT 0,
    UNIQUE (cycle_id, user_id),
    FOREIGN KEY (user_id) REFERENCES users(id),
    FOREIGN KEY (cycle_id) REFERENCES cycles(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS invites (
    id TEXT PRIMARY KEY,
    cycle_id TEXT NOT NULL,
    user_id TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    UNIQUE (cycle_id, user_id),
    FOREIGN KEY (user_id) REFERENCES users(id),
    FOREIGN KEY (cycle_id) REFERENCES cycles(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS sessions (
    id TEXT PRIMARY KEY,
    cycle_id TEXT NOT NULL,
    due_date INTEGER NOT NULL,
    winner_id TEXT,
    settled INTEGER NOT NULL DEFAULT 0,
    FOREIGN KEY (cycle_id) REFERENCES cycles(id) ON DELETE CASCADE,
    FOREIGN KEY (winner_id) REFERENCES cycle_members(id)
);

CREATE TABLE IF NOT EXISTS payments (
    id TEXT PRIMARY KEY,
    membership_id TEXT NOT NULL,
    session_id TEXT NOT NULL,
    has_paid INTEGER NOT NULL DEFAULT 0,
    UNIQUE (membership_id, session_id),
    FOREIGN KEY (membership_id) REFERENCES cycle_members(id) ON DELETE CASCADE,
    FOREIGN KEY (session_id) REFERENCES sessions(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_cycle_members_cycle_id ON cycle_members(cycle_id);
CREATE INDEX IF NOT EXISTS idx_cycle_members_user_id ON cycle_members(user_id);
CREATE INDEX IF NOT EXISTS idx_invites_user_id ON invites(user_id);
CREATE INDEX IF NOT EXISTS idx_sessions_cycle_id ON sessions(cycle_id);
CREATE INDEX IF NOT EXISTS idx_payments_session_id ON payments(session_id);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
