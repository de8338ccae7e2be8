package statuses

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookshelf/internal/database/dbtest"
	"github.com/mrlokans/bookshelf/internal/entities"
)

func TestRepository_ListSeeded(t *testing.T) {
	repo := NewRepository(dbtest.New(t).DB)

	statuses, err := repo.List(context.Background())

	require.NoError(t, err)
	require.Len(t, statuses, 3)
	assert.Equal(t, "planned", statuses[0].Name)
}

func TestRepository_GetByNameIgnoresCase(t *testing.T) {
	repo := NewRepository(dbtest.New(t).DB)

	status, err := repo.GetByName(context.Background(), "READING")

	require.NoError(t, err)
	assert.Equal(t, entities.StatusRoleInProgress, status.Role)
}

func TestRepository_FirstByRolePrefersProtected(t *testing.T) {
	repo := NewRepository(dbtest.New(t).DB)
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, &entities.StatusCode{Name: "wishlist", Role: entities.StatusRolePlanned}))

	status, err := repo.FirstByRole(ctx, entities.StatusRolePlanned)

	require.NoError(t, err)
	assert.Equal(t, "planned", status.Name)
	assert.True(t, status.Protected)
}

func TestRepository_NameTakenExcludesSelf(t *testing.T) {
	repo := NewRepository(dbtest.New(t).DB)
	ctx := context.Background()
	planned, err := repo.GetByName(ctx, "planned")
	require.NoError(t, err)

	taken, err := repo.NameTaken(ctx, "Planned", 0)
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = repo.NameTaken(ctx, "planned", planned.ID)
	require.NoError(t, err)
	assert.False(t, taken)
}

func TestRepository_UpdateAndDelete(t *testing.T) {
	repo := NewRepository(dbtest.New(t).DB)
	ctx := context.Background()
	status := &entities.StatusCode{Name: "paused", Role: entities.StatusRoleCustom}
	require.NoError(t, repo.Create(ctx, status))

	status.Name = "on hold"
	require.NoError(t, repo.Update(ctx, status))

	got, err := repo.GetByID(ctx, status.ID)
	require.NoError(t, err)
	assert.Equal(t, "on hold", got.Name)

	require.NoError(t, repo.Delete(ctx, status.ID))
	exists, err := repo.Exists(ctx, status.ID)
	require.NoError(t, err)
	assert.False(t, exists)
}
