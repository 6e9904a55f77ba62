package db

const schema = `
CREATE TABLE IF NOT EXISTS functions (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL,
	arity      INTEGER NOT NULL,
	name       TEXT NOT NULL,
	uri        TEXT NOT NULL,
	user_uri   TEXT NOT NULL,
	signature  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS invoke_requests (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	created_at  TIMESTAMP NOT NULL,
	function_id INTEGER NOT NULL REFERENCES functions(id),
	user_addr   TEXT NOT NULL,
	payload     TEXT
);

CREATE TABLE IF NOT EXISTS function_env (
	function_id INTEGER NOT NULL REFERENCES functions(id),
	key         TEXT NOT NULL,
	value       TEXT NOT NULL,
	PRIMARY KEY (function_id, key)
);
`
