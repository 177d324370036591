package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/dict_go_server/internal/model"
	"github.com/qs3c/dict_go_server/internal/model/dto"
	"github.com/qs3c/dict_go_server/internal/pkg/pubsub"
	"github.com/qs3c/dict_go_server/internal/pkg/queue"
	"github.com/qs3c/dict_go_server/internal/testutil"
	"github.com/qs3c/dict_go_server/internal/validator"
)

func TestVerificationService_IssueTwice_KeepsLatest(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	account := testutil.TestAccount(t, env.db)

	first, err := env.verification.IssueRegistration(ctx, account)
	require.NoError(t, err)
	second, err := env.verification.IssueRegistration(ctx, account)
	require.NoError(t, err)
	assert.NotEqual(t, first.Token, second.Token)
	assert.Len(t, second.Token, tokenLength)

	var rows []model.VerificationToken
	require.NoError(t, env.db.Where("account_id = ?", account.ID).Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, second.Token, rows[0].Token)

	require.Len(t, env.mail.messages, 2)
	assert.Equal(t, queue.MailRegistrationConfirm, env.mail.messages[1].Kind)
	assert.Equal(t, second.Token, env.mail.messages[1].Token)
}

func TestVerificationService_ConfirmRegistration(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	account := testutil.TestAccount(t, env.db, testutil.WithActive(false))

	vt, err := env.verification.IssueRegistration(ctx, account)
	require.NoError(t, err)

	confirmed, err := env.verification.Confirm(ctx, vt.Token)
	require.NoError(t, err)
	assert.True(t, confirmed.IsActive)

	// 令牌只能用一次
	_, err = env.verification.Confirm(ctx, vt.Token)
	assert.ErrorIs(t, err, ErrTokenNotFound)

	ok, err := env.accounts.EmailConfirmed(account.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Contains(t, env.events.types(), pubsub.EventEmailConfirmed)
}

func TestVerificationService_ConfirmExpired(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	account := testutil.TestAccount(t, env.db, testutil.WithActive(false))

	vt, err := env.verification.IssueRegistration(ctx, account)
	require.NoError(t, err)

	env.clock.Advance(25 * time.Hour)
	_, err = env.verification.Confirm(ctx, vt.Token)
	assert.ErrorIs(t, err, ErrTokenExpired)

	reloaded, err := env.accounts.GetByID(account.ID)
	require.NoError(t, err)
	assert.False(t, reloaded.IsActive)
}

func TestVerificationService_EmailChange(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	account := testutil.TestAccount(t, env.db, testutil.WithEmail("old@example.com"))

	vt, err := env.verification.RequestEmailChange(ctx, account.ID, &dto.ChangeEmailRequest{NewEmail: "new@example.com"})
	require.NoError(t, err)
	assert.True(t, vt.IsEmailChange())

	require.Len(t, env.mail.messages, 1)
	assert.Equal(t, queue.MailEmailChangeConfirm, env.mail.messages[0].Kind)
	assert.Equal(t, "new@example.com", env.mail.messages[0].To)

	updated, err := env.verification.Confirm(ctx, vt.Token)
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", updated.Email)
	assert.Contains(t, env.events.types(), pubsub.EventEmailChanged)
}

func TestVerificationService_EmailChange_Rejected(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	account := testutil.TestAccount(t, env.db)
	testutil.TestAccount(t, env.db, testutil.WithEmail("taken@example.com"))

	_, err := env.verification.RequestEmailChange(ctx, account.ID, &dto.ChangeEmailRequest{NewEmail: "taken@example.com"})
	assert.ErrorIs(t, err, ErrEmailTaken)

	_, err = env.verification.RequestEmailChange(ctx, account.ID, &dto.ChangeEmailRequest{NewEmail: "not-an-email"})
	var verr *validator.ValidationError
	assert.True(t, errors.As(err, &verr))

	_, err = env.verification.RequestEmailChange(ctx, 404, &dto.ChangeEmailRequest{NewEmail: "free@example.com"})
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestVerificationService_ConfirmUnknownToken(t *testing.T) {
	env := setupEnv(t)

	_, err := env.verification.Confirm(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrTokenNotFound)
}

func TestVerificationService_SweepStale(t *testing.T) {
	env := setupEnv(t)
	now := env.clock.Now()
	a := testutil.TestAccount(t, env.db)
	b := testutil.TestAccount(t, env.db)
	testutil.TestToken(t, env.db, a.ID, now.Add(-48*time.Hour))
	testutil.TestToken(t, env.db, b.ID, now.Add(-time.Hour))

	n, err := env.verification.SweepStale(true)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	var count int64
	require.NoError(t, env.db.Model(&model.VerificationToken{}).Count(&count).Error)
	assert.Equal(t, int64(2), count, "dry run deletes nothing")

	n, err = env.verification.SweepStale(false)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	require.NoError(t, env.db.Model(&model.VerificationToken{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
