package store

import "fmt"

// sqliteDialect targets mattn/go-sqlite3. "?" is the only placeholder form
// the driver reliably binds positionally.
type sqliteDialect struct{}

func (sqliteDialect) createTableSQL(table string) string {
	return fmt.Sprintf(
		`CREATE TABLE IF NOT EXISTS %s (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			data TEXT NOT NULL UNIQUE
		)`, table)
}

func (sqliteDialect) insertIgnoreSQL(table string) string {
	return fmt.Sprintf("INSERT OR IGNORE INTO %s (data) VALUES (?)", table)
}

func (sqliteDialect) selectNewSQL(table string) string {
	return fmt.Sprintf("SELECT id, data FROM %s WHERE id > ? ORDER BY id", table)
}

// postgresDialect targets lib/pq, which requires $N positional placeholders.
type postgresDialect struct{}

func (postgresDialect) createTableSQL(table string) string {
	return fmt.Sprintf(
		`CREATE TABLE IF NOT EXISTS %s (
			id BIGSERIAL PRIMARY KEY,
			data TEXT NOT NULL UNIQUE
		)`, table)
}

func (postgresDialect) insertIgnoreSQL(table string) string {
	return fmt.Sprintf("INSERT INTO %s (data) VALUES ($1) ON CONFLICT DO NOTHING", table)
}

func (postgresDialect) selectNewSQL(table string) string {
	return fmt.Sprintf("SELECT id, data FROM %s WHERE id > $1 ORDER BY id", table)
}
