package config

const (
	// DefaultDatabasePath is the default path for the catalog database
	DefaultDatabasePath = "./bookshelf.db"

	// DefaultReportsDir is where generated PDF reports are written
	DefaultReportsDir = "./reports"

	DefaultJWTIssuer = "bookshelf"
)
