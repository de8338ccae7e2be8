// Package dbtest opens throwaway databases for package tests.
package dbtest

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mrlokans/bookshelf/internal/database"
	"github.com/mrlokans/bookshelf/internal/entities"
)

// New returns a migrated, seeded database in t.TempDir(), closed on cleanup.
func New(t *testing.T) *database.Database {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"), "silent")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func CreateUser(t *testing.T, db *gorm.DB, login string, role entities.UserRole) *entities.User {
	t.Helper()
	user := &entities.User{Login: login, Name: login, PasswordHash: "x", Role: role}
	require.NoError(t, db.Create(user).Error)
	return user
}

func CreateBook(t *testing.T, db *gorm.DB, title string) *entities.Book {
	t.Helper()
	book := &entities.Book{Title: title}
	require.NoError(t, db.Create(book).Error)
	return book
}

// Status returns the seeded status with the given name.
func Status(t *testing.T, db *gorm.DB, name string) *entities.StatusCode {
	t.Helper()
	var status entities.StatusCode
	require.NoError(t, db.Where("name = ?", name).First(&status).Error)
	return &status
}
