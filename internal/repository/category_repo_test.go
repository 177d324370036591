package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/dict_go_server/internal/model"
	"github.com/qs3c/dict_go_server/internal/testutil"
)

func TestCategoryRepository_CreateAndList(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewCategoryRepository(db)

	light := &model.Category{Name: "spor", Slug: "spor"}
	heavy := &model.Category{Name: "gundem", Slug: "gundem", Weight: 10}
	require.NoError(t, repo.Create(light))
	require.NoError(t, repo.Create(heavy))

	list, err := repo.List()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, heavy.ID, list[0].ID)

	found, err := repo.GetByID(light.ID)
	require.NoError(t, err)
	assert.Equal(t, "spor", found.Slug)

	byIDs, err := repo.GetByIDs([]int64{light.ID})
	require.NoError(t, err)
	assert.Len(t, byIDs, 1)
}
