package migrations

import (
	"database/sql"
)

func init() {
	Register(Migration{
		Version: 2,
		Name:    "user_timezone",
		Up:      userTimezone,
	})
}

func userTimezone(db *sql.DB) error {
	return AddColumnIfNotExists(db, "users", "timezone", "TEXT DEFAULT 'America/Los_Angeles'")
}
