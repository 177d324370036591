package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/qs3c/dict_go_server/internal/testutil"
)

func strPtr(s string) *string {
	return &s
}

func TestMementoRepository_Upsert(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMementoRepository(db)
	holder := testutil.TestAccount(t, db)
	patient := testutil.TestAccount(t, db)

	created, err := repo.Upsert(holder.ID, patient.ID, strPtr("first"))
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	updated, err := repo.Upsert(holder.ID, patient.ID, strPtr("second"))
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	require.NotNil(t, updated.Body)
	assert.Equal(t, "second", *updated.Body)

	count, err := repo.CountByPair(holder.ID, patient.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestMementoRepository_Upsert_NilBody(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMementoRepository(db)
	holder := testutil.TestAccount(t, db)
	patient := testutil.TestAccount(t, db)

	memento, err := repo.Upsert(holder.ID, patient.ID, nil)
	require.NoError(t, err)
	assert.Nil(t, memento.Body)
}

func TestMementoRepository_DirectionMatters(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMementoRepository(db)
	a := testutil.TestAccount(t, db)
	b := testutil.TestAccount(t, db)

	_, err := repo.Upsert(a.ID, b.ID, strPtr("a about b"))
	require.NoError(t, err)
	_, err = repo.Upsert(b.ID, a.ID, strPtr("b about a"))
	require.NoError(t, err)

	list, err := repo.ListByHolder(a.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "a about b", *list[0].Body)
}

func TestMementoRepository_DeleteByPair(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMementoRepository(db)
	a := testutil.TestAccount(t, db)
	b := testutil.TestAccount(t, db)
	testutil.TestMemento(t, db, a.ID, b.ID, "note")

	require.NoError(t, repo.DeleteByPair(a.ID, b.ID))

	_, err := repo.GetByPair(a.ID, b.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.ErrorIs(t, repo.DeleteByPair(a.ID, b.ID), gorm.ErrRecordNotFound)
}
