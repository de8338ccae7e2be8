package readinglog

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mrlokans/bookshelf/internal/database/dbtest"
	"github.com/mrlokans/bookshelf/internal/entities"
)

type fixture struct {
	db        *gorm.DB
	repo      *Repository
	user      *entities.User
	other     *entities.User
	book      *entities.Book
	planned   *entities.StatusCode
	reading   *entities.StatusCode
	completed *entities.StatusCode
}

func setupTestRepo(t *testing.T) *fixture {
	t.Helper()
	db := dbtest.New(t).DB
	return &fixture{
		db:        db,
		repo:      NewRepository(db),
		user:      dbtest.CreateUser(t, db, "alice", entities.UserRoleMember),
		other:     dbtest.CreateUser(t, db, "bob", entities.UserRoleMember),
		book:      dbtest.CreateBook(t, db, "Dune"),
		planned:   dbtest.Status(t, db, "planned"),
		reading:   dbtest.Status(t, db, "reading"),
		completed: dbtest.Status(t, db, "completed"),
	}
}

// insertAt writes a record with a fixed timestamp, bypassing Append.
func (f *fixture) insertAt(t *testing.T, userID, bookID, statusID uint, at time.Time) *entities.StatusRecord {
	t.Helper()
	record := &entities.StatusRecord{UserID: userID, BookID: bookID, StatusID: statusID, CreatedAt: at}
	require.NoError(t, f.db.Omit("Status").Create(record).Error)
	return record
}

func TestRepository_AppendAssignsIDTimestampAndStatus(t *testing.T) {
	f := setupTestRepo(t)
	ctx := context.Background()

	record := &entities.StatusRecord{UserID: f.user.ID, BookID: f.book.ID, StatusID: f.reading.ID}
	require.NoError(t, f.repo.Append(ctx, record))

	assert.NotZero(t, record.ID)
	assert.False(t, record.CreatedAt.IsZero())
	assert.Equal(t, "reading", record.Status.Name)
}

func TestRepository_CurrentAbsentIsNilNil(t *testing.T) {
	f := setupTestRepo(t)

	current, err := f.repo.Current(context.Background(), f.user.ID, f.book.ID)

	assert.NoError(t, err)
	assert.Nil(t, current)
}

func TestRepository_CurrentIsNewest(t *testing.T) {
	f := setupTestRepo(t)
	base := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	f.insertAt(t, f.user.ID, f.book.ID, f.planned.ID, base)
	f.insertAt(t, f.user.ID, f.book.ID, f.completed.ID, base.Add(2*time.Hour))
	f.insertAt(t, f.user.ID, f.book.ID, f.reading.ID, base.Add(time.Hour))

	current, err := f.repo.Current(context.Background(), f.user.ID, f.book.ID)

	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, "completed", current.Status.Name)
}

func TestRepository_SameTimestampBreaksTieByID(t *testing.T) {
	f := setupTestRepo(t)
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	f.insertAt(t, f.user.ID, f.book.ID, f.planned.ID, at)
	second := f.insertAt(t, f.user.ID, f.book.ID, f.reading.ID, at)

	current, err := f.repo.Current(context.Background(), f.user.ID, f.book.ID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, current.ID)

	history, err := f.repo.History(context.Background(), f.user.ID, f.book.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, second.ID, history[0].ID)
}

func TestRepository_HistoryNewestFirstAndScopedToUser(t *testing.T) {
	f := setupTestRepo(t)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	f.insertAt(t, f.user.ID, f.book.ID, f.planned.ID, base)
	f.insertAt(t, f.user.ID, f.book.ID, f.reading.ID, base.Add(time.Minute))
	f.insertAt(t, f.other.ID, f.book.ID, f.completed.ID, base.Add(time.Hour))

	history, err := f.repo.History(context.Background(), f.user.ID, f.book.ID)

	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "reading", history[0].Status.Name)
	assert.Equal(t, "planned", history[1].Status.Name)
}

func TestRepository_RemoveBookOnlyTouchesOneUser(t *testing.T) {
	f := setupTestRepo(t)
	ctx := context.Background()
	now := time.Now().UTC()
	f.insertAt(t, f.user.ID, f.book.ID, f.planned.ID, now)
	f.insertAt(t, f.user.ID, f.book.ID, f.reading.ID, now.Add(time.Second))
	f.insertAt(t, f.other.ID, f.book.ID, f.planned.ID, now)

	removed, err := f.repo.RemoveBook(ctx, f.user.ID, f.book.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	tracked, err := f.repo.IsTracked(ctx, f.user.ID, f.book.ID)
	require.NoError(t, err)
	assert.False(t, tracked)

	tracked, err = f.repo.IsTracked(ctx, f.other.ID, f.book.ID)
	require.NoError(t, err)
	assert.True(t, tracked)

	removed, err = f.repo.RemoveBook(ctx, f.user.ID, f.book.ID)
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestRepository_CurrentForBooks(t *testing.T) {
	f := setupTestRepo(t)
	second := dbtest.CreateBook(t, f.db, "Emma")
	untracked := dbtest.CreateBook(t, f.db, "Ulysses")
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	f.insertAt(t, f.user.ID, f.book.ID, f.planned.ID, base)
	f.insertAt(t, f.user.ID, f.book.ID, f.reading.ID, base.Add(time.Hour))
	f.insertAt(t, f.user.ID, second.ID, f.completed.ID, base)

	current, err := f.repo.CurrentForBooks(context.Background(), f.user.ID, []uint{f.book.ID, second.ID, untracked.ID})

	require.NoError(t, err)
	assert.Len(t, current, 2)
	assert.Equal(t, "reading", current[f.book.ID].Status.Name)
	assert.Equal(t, "completed", current[second.ID].Status.Name)
	assert.Nil(t, current[untracked.ID])
}

func TestRepository_CountByStatus(t *testing.T) {
	f := setupTestRepo(t)
	now := time.Now().UTC()
	f.insertAt(t, f.user.ID, f.book.ID, f.reading.ID, now)
	f.insertAt(t, f.other.ID, f.book.ID, f.reading.ID, now)

	count, err := f.repo.CountByStatus(context.Background(), f.reading.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	count, err = f.repo.CountByStatus(context.Background(), f.completed.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestRepository_FirstAddedUsesEarliestRecord(t *testing.T) {
	f := setupTestRepo(t)
	second := dbtest.CreateBook(t, f.db, "Emma")
	jan := time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC)
	f.insertAt(t, f.user.ID, f.book.ID, f.reading.ID, jan.AddDate(0, 1, 0))
	f.insertAt(t, f.user.ID, f.book.ID, f.planned.ID, jan)
	f.insertAt(t, f.user.ID, second.ID, f.planned.ID, jan.AddDate(0, 2, 0))

	added, err := f.repo.FirstAdded(context.Background(), f.user.ID)

	require.NoError(t, err)
	require.Len(t, added, 2)
	assert.True(t, jan.Equal(added[f.book.ID]))
	assert.True(t, jan.AddDate(0, 2, 0).Equal(added[second.ID]))
}

func TestRepository_StatsRowsGroupedNewestFirst(t *testing.T) {
	f := setupTestRepo(t)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	f.insertAt(t, f.user.ID, f.book.ID, f.planned.ID, base)
	f.insertAt(t, f.user.ID, f.book.ID, f.completed.ID, base.Add(time.Hour))

	rows, err := f.repo.StatsRows(context.Background(), f.user.ID)

	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, entities.StatusRoleCompleted, rows[0].Role)
	assert.Equal(t, entities.StatusRolePlanned, rows[1].Role)
}

func TestRepository_TrackedBookIDs(t *testing.T) {
	f := setupTestRepo(t)
	now := time.Now().UTC()
	f.insertAt(t, f.user.ID, f.book.ID, f.planned.ID, now)
	f.insertAt(t, f.user.ID, f.book.ID, f.reading.ID, now.Add(time.Second))

	ids, err := f.repo.TrackedBookIDs(context.Background(), f.user.ID)

	require.NoError(t, err)
	assert.Equal(t, []uint{f.book.ID}, ids)
}
