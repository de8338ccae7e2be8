// Package database provides the data access layer for the catalog.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Connection setup, migrations, status seeding
//	├── dbtest/          # Temp-file databases for package tests
//	├── users/           # Accounts, lockout counters
//	├── reference/       # Authors, genres, publishers
//	├── books/           # Shared book records and their associations
//	├── statuses/        # Reading status taxonomy
//	├── readinglog/      # Append-only status records per user and book
//	├── reports/         # Generated report metadata
//	└── audit/           # Audit event log
//
// # Using Sub-packages
//
// Each sub-package provides a Repository type with domain-specific operations:
//
//	db, err := database.NewDatabase("./bookshelf.db")
//
//	logRepo := readinglog.NewRepository(db.DB)
//	statusRepo := statuses.NewRepository(db.DB)
//
//	current, err := logRepo.Current(ctx, userID, bookID)
//
// Repositories return raw gorm errors (gorm.ErrRecordNotFound included);
// the service layer translates them into apperr kinds.
//
// # Time
//
// All timestamps are written in UTC. The reading log orders by
// (created_at, id), so mixed zones would break "current status".
package database
