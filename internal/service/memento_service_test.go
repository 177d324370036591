package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/dict_go_server/internal/model"
	"github.com/qs3c/dict_go_server/internal/testutil"
)

func body(s string) *string {
	return &s
}

func TestMementoService_SaveTwice_SingleRow(t *testing.T) {
	env := setupEnv(t)
	a := testutil.TestAccount(t, env.db)
	b := testutil.TestAccount(t, env.db)

	_, err := env.mementos.Save(a.ID, b.ID, body("x"))
	require.NoError(t, err)
	_, err = env.mementos.Save(a.ID, b.ID, body("y"))
	require.NoError(t, err)

	var rows []model.Memento
	require.NoError(t, env.db.Where("holder_id = ? AND patient_id = ?", a.ID, b.ID).Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, "y", *rows[0].Body)

	got, err := env.mementos.Get(a.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "y", *got.Body)
}

func TestMementoService_PatientCannotSeeHolderNote(t *testing.T) {
	env := setupEnv(t)
	a := testutil.TestAccount(t, env.db)
	b := testutil.TestAccount(t, env.db)

	_, err := env.mementos.Save(a.ID, b.ID, body("secret"))
	require.NoError(t, err)

	_, err = env.mementos.Get(b.ID, a.ID)
	assert.ErrorIs(t, err, ErrMementoNotFound)
}

func TestMementoService_SaveUnknownPatient(t *testing.T) {
	env := setupEnv(t)
	a := testutil.TestAccount(t, env.db)

	_, err := env.mementos.Save(a.ID, 404, body("x"))
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestMementoService_DeleteAndList(t *testing.T) {
	env := setupEnv(t)
	a := testutil.TestAccount(t, env.db)
	b := testutil.TestAccount(t, env.db)
	c := testutil.TestAccount(t, env.db)

	_, err := env.mementos.Save(a.ID, b.ID, body("b"))
	require.NoError(t, err)
	_, err = env.mementos.Save(a.ID, c.ID, nil)
	require.NoError(t, err)

	list, err := env.mementos.List(a.ID)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	require.NoError(t, env.mementos.Delete(a.ID, b.ID))
	assert.ErrorIs(t, env.mementos.Delete(a.ID, b.ID), ErrMementoNotFound)

	list, err = env.mementos.List(a.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
