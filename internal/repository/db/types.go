package db

// DatabaseType represents supported database types
type DatabaseType string

const (
	// SQLite is the only supported store: every record lives in one local,
	// encrypted database file.
	SQLite DatabaseType = "sqlite"
)

// String returns string representation
func (dt DatabaseType) String() string {
	return string(dt)
}

// IsValid checks if database type is valid
func (dt DatabaseType) IsValid() bool {
	return dt == SQLite
}
