package users

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mrlokans/bookshelf/internal/database/dbtest"
	"github.com/mrlokans/bookshelf/internal/entities"
)

func setupTestRepo(t *testing.T) (*Repository, *gorm.DB) {
	t.Helper()
	db := dbtest.New(t).DB
	return NewRepository(db), db
}

func TestRepository_CreateFirstAdmin(t *testing.T) {
	repo, _ := setupTestRepo(t)
	ctx := context.Background()

	first := &entities.User{Login: "first", PasswordHash: "x"}
	require.NoError(t, repo.CreateFirstAdmin(ctx, first))
	assert.Equal(t, entities.UserRoleAdmin, first.Role)

	second := &entities.User{Login: "second", PasswordHash: "x", Role: entities.UserRoleAdmin}
	require.NoError(t, repo.CreateFirstAdmin(ctx, second))
	assert.Equal(t, entities.UserRoleMember, second.Role)
}

func TestRepository_GetByLoginIgnoresCase(t *testing.T) {
	repo, _ := setupTestRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, &entities.User{Login: "Alice", PasswordHash: "x"}))

	user, err := repo.GetByLogin(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "Alice", user.Login)

	taken, err := repo.LoginTaken(ctx, "ALICE", 0)
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = repo.LoginTaken(ctx, "alice", user.ID)
	require.NoError(t, err)
	assert.False(t, taken)

	_, err = repo.GetByLogin(ctx, "nobody")
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestRepository_LoginCounters(t *testing.T) {
	repo, _ := setupTestRepo(t)
	ctx := context.Background()
	user := &entities.User{Login: "alice", PasswordHash: "x"}
	require.NoError(t, repo.Create(ctx, user))

	since := time.Now().UTC().Add(-time.Minute)
	until := time.Now().UTC().Add(time.Hour)
	require.NoError(t, repo.RecordFailedLogin(ctx, user.ID, 5, since, &until))

	loaded, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, loaded.FailedLoginCount)
	require.NotNil(t, loaded.FailedLoginSince)
	assert.WithinDuration(t, since, *loaded.FailedLoginSince, time.Second)
	assert.True(t, loaded.IsLocked(time.Now()))

	require.NoError(t, repo.RecordSuccessfulLogin(ctx, user.ID, time.Now().UTC()))
	loaded, err = repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Zero(t, loaded.FailedLoginCount)
	assert.Nil(t, loaded.FailedLoginSince)
	assert.Nil(t, loaded.LockedUntil)
	assert.NotNil(t, loaded.LastLoginAt)
}

func TestRepository_DeleteWithData(t *testing.T) {
	repo, db := setupTestRepo(t)
	ctx := context.Background()
	alice := dbtest.CreateUser(t, db, "alice", entities.UserRoleMember)
	bob := dbtest.CreateUser(t, db, "bob", entities.UserRoleMember)
	book := dbtest.CreateBook(t, db, "Dune")
	planned := dbtest.Status(t, db, "planned")

	for _, u := range []*entities.User{alice, bob} {
		require.NoError(t, db.Omit("Status").Create(&entities.StatusRecord{UserID: u.ID, BookID: book.ID, StatusID: planned.ID}).Error)
	}
	require.NoError(t, db.Create(&entities.Report{UserID: alice.ID, ReportType: entities.ReportTypeBookCard, FilePath: "/tmp/a.pdf"}).Error)

	files, err := repo.DeleteWithData(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"/tmp/a.pdf"}, files)

	var records int64
	require.NoError(t, db.Model(&entities.StatusRecord{}).Count(&records).Error)
	assert.Equal(t, int64(1), records)

	_, err = repo.DeleteWithData(ctx, alice.ID)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestRepository_ListAndCount(t *testing.T) {
	repo, db := setupTestRepo(t)
	ctx := context.Background()
	dbtest.CreateUser(t, db, "a", entities.UserRoleAdmin)
	dbtest.CreateUser(t, db, "b", entities.UserRoleMember)

	users, err := repo.List(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "b", users[0].Login)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}
