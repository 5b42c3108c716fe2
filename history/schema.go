package history

const schema = `
CREATE TABLE IF NOT EXISTS evaluations (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	source        TEXT NOT NULL,
	value         INTEGER,
	error_kind    TEXT NOT NULL DEFAULT '',
	error_message TEXT NOT NULL DEFAULT '',
	program       BLOB,
	created_at    INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS evaluations_created_at ON evaluations (created_at);
`
