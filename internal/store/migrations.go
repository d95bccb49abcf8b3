package store

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
//
// Cascading deletes are performed explicitly inside the deleting
// transaction rather than by ON DELETE clauses, so the restrict/cascade
// category variant stays a runtime decision.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS users (
	id            TEXT PRIMARY KEY,
	email         TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	active        INTEGER NOT NULL DEFAULT 0,
	version       TEXT NOT NULL,
	updated_at    DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS lists (
	id       TEXT PRIMARY KEY,
	name     TEXT NOT NULL UNIQUE,
	owner_id TEXT NOT NULL REFERENCES users(id),
	private  INTEGER NOT NULL DEFAULT 0,
	version  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS categories (
	id      TEXT PRIMARY KEY,
	list_id TEXT NOT NULL REFERENCES lists(id),
	name    TEXT NOT NULL,
	version TEXT NOT NULL,
	UNIQUE(list_id, name)
);

CREATE TABLE IF NOT EXISTS items (
	id          TEXT PRIMARY KEY,
	category_id TEXT NOT NULL REFERENCES categories(id),
	name        TEXT NOT NULL,
	version     TEXT NOT NULL,
	UNIQUE(category_id, name)
);

CREATE TABLE IF NOT EXISTS list_categories (
	list_id     TEXT NOT NULL REFERENCES lists(id),
	category_id TEXT NOT NULL REFERENCES categories(id),
	version     TEXT NOT NULL,
	PRIMARY KEY(list_id, category_id)
);

CREATE TABLE IF NOT EXISTS list_items (
	list_id   TEXT NOT NULL REFERENCES lists(id),
	item_id   TEXT NOT NULL REFERENCES items(id),
	type      TEXT NOT NULL,
	selection INTEGER NOT NULL DEFAULT 0,
	number    TEXT NOT NULL DEFAULT '0',
	text      TEXT NOT NULL DEFAULT '',
	version   TEXT NOT NULL,
	PRIMARY KEY(list_id, item_id)
);

CREATE INDEX IF NOT EXISTS idx_lists_owner ON lists(owner_id);
CREATE INDEX IF NOT EXISTS idx_categories_list ON categories(list_id);
CREATE INDEX IF NOT EXISTS idx_items_category ON items(category_id);
CREATE INDEX IF NOT EXISTS idx_list_items_item ON list_items(item_id);
CREATE INDEX IF NOT EXISTS idx_list_categories_category ON list_categories(category_id);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
}
