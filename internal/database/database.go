package database

import (
	"fmt"
	"log"
	"strings"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/bookshelf/internal/entities"
)

// defaultStatuses are created on first boot and can never be deleted.
var defaultStatuses = []entities.StatusCode{
	{Name: "planned", Role: entities.StatusRolePlanned, Protected: true},
	{Name: "reading", Role: entities.StatusRoleInProgress, Protected: true},
	{Name: "completed", Role: entities.StatusRoleCompleted, Protected: true},
}

type Database struct {
	DB *gorm.DB
}

func NewDatabase(dbPath string) (*Database, error) {
	return Open(dbPath, "warn")
}

// Open connects to the sqlite file at dbPath, migrates the schema and seeds
// the protected statuses. logLevel is one of silent, error, warn, info.
func Open(dbPath, logLevel string) (*Database, error) {
	db, err := gorm.Open(sqlite.Open(dsn(dbPath)), &gorm.Config{
		Logger: logger.Default.LogMode(parseLogLevel(logLevel)),
		// Log ordering compares timestamps, so they must share one zone.
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	err = db.AutoMigrate(
		&entities.User{},
		&entities.Author{},
		&entities.Genre{},
		&entities.Publisher{},
		&entities.Book{},
		&entities.StatusCode{},
		&entities.StatusRecord{},
		&entities.Report{},
		&entities.AuditEvent{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	database := &Database{DB: db}

	if err := database.seedStatuses(); err != nil {
		return nil, fmt.Errorf("failed to seed statuses: %w", err)
	}

	log.Printf("Database initialized successfully at %s", dbPath)

	return database, nil
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping checks the underlying connection; used by the health endpoint.
func (d *Database) Ping() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// seedStatuses looks rows up by role so a renamed default is not recreated.
func (d *Database) seedStatuses() error {
	for _, status := range defaultStatuses {
		var existing entities.StatusCode
		result := d.DB.Where("role = ? AND protected = ?", status.Role, true).First(&existing)
		if result.Error == gorm.ErrRecordNotFound {
			if err := d.DB.Create(&status).Error; err != nil {
				return fmt.Errorf("failed to create status %s: %w", status.Name, err)
			}
			log.Printf("Created status: %s", status.Name)
		} else if result.Error != nil {
			return result.Error
		}
	}
	return nil
}

// dsn adds busy-timeout and immediate-transaction options so concurrent
// writers queue instead of failing with SQLITE_BUSY.
func dsn(dbPath string) string {
	if strings.Contains(dbPath, "?") {
		return dbPath
	}
	return dbPath + "?_journal=WAL&_timeout=5000&_busy_timeout=5000&_txlock=immediate"
}

func parseLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}
