package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/dict_go_server/internal/model"
	"github.com/qs3c/dict_go_server/internal/model/dto"
	"github.com/qs3c/dict_go_server/internal/pkg/cache"
	"github.com/qs3c/dict_go_server/internal/pkg/pubsub"
	"github.com/qs3c/dict_go_server/internal/testutil"
	"github.com/qs3c/dict_go_server/internal/validator"
)

func registerRequest(nick, email string) *dto.RegisterRequest {
	return &dto.RegisterRequest{
		Nick:     nick,
		Email:    email,
		Password: "password123",
	}
}

func TestAccountService_Register_Success(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	account, err := env.accounts.Register(ctx, registerRequest("yeni yazar", "new@example.com"))
	require.NoError(t, err)
	assert.NotZero(t, account.ID)
	assert.True(t, account.IsNovice)
	assert.False(t, account.IsActive)
	assert.Equal(t, model.StatusOnHold, account.ApplicationStatus)
	assert.Equal(t, model.GenderUnknown, account.Gender)
	assert.Equal(t, "yeni yazar:"+itoa(account.ID), account.String())
	assert.Equal(t, []string{pubsub.EventRegistered}, env.events.types())

	// 密码以 bcrypt 保存
	assert.NotEqual(t, "password123", account.PasswordHash)
	found, err := env.accounts.CheckPassword("new@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, account.ID, found.ID)

	_, err = env.accounts.CheckPassword("new@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAccountService_Register_InvalidNick(t *testing.T) {
	env := setupEnv(t)

	for _, nick := range []string{"Dede", "dede1", "dede_x", "şeker", "dede!", ""} {
		_, err := env.accounts.Register(context.Background(), registerRequest(nick, "x@example.com"))

		var verr *validator.ValidationError
		require.True(t, errors.As(err, &verr), "nick %q should be rejected", nick)
		assert.NotEmpty(t, verr.Field("nick"))
	}

	var count int64
	require.NoError(t, env.db.Model(&model.Account{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestAccountService_Register_DuplicateNickOrEmail(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	first, err := env.accounts.Register(ctx, registerRequest("ilk", "first@example.com"))
	require.NoError(t, err)

	_, err = env.accounts.Register(ctx, registerRequest("ilk", "second@example.com"))
	assert.ErrorIs(t, err, ErrNickTaken)

	_, err = env.accounts.Register(ctx, registerRequest("ikinci", "first@example.com"))
	assert.ErrorIs(t, err, ErrEmailTaken)

	// 第一个账号不受影响
	reloaded, err := env.accounts.GetByID(first.ID)
	require.NoError(t, err)
	assert.Equal(t, "ilk", reloaded.Nick)
	assert.Equal(t, "first@example.com", reloaded.Email)
}

func TestAccountService_Register_BootstrapsCategories(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	c1 := testutil.TestCategory(t, env.db, "spor")
	c2 := testutil.TestCategory(t, env.db, "bilim")
	c3 := testutil.TestCategory(t, env.db, "tarih")

	account, err := env.accounts.Register(ctx, registerRequest("abone", "abone@example.com"))
	require.NoError(t, err)

	categories, err := env.social.FollowingCategories(account.ID)
	require.NoError(t, err)
	ids := make([]int64, 0, len(categories))
	for _, c := range categories {
		ids = append(ids, c.ID)
	}
	assert.ElementsMatch(t, []int64{c1.ID, c2.ID, c3.ID}, ids)

	// 后建的频道不会补订阅
	testutil.TestCategory(t, env.db, "sanat")
	categories, err = env.social.FollowingCategories(account.ID)
	require.NoError(t, err)
	assert.Len(t, categories, 3)

	// 再次保存账号不会重新初始化订阅
	require.NoError(t, env.social.UnfollowCategory(account.ID, c1.ID))
	gender := model.GenderWoman
	_, err = env.accounts.UpdateProfile(account.ID, &dto.UpdateProfileRequest{Gender: &gender})
	require.NoError(t, err)
	categories, err = env.social.FollowingCategories(account.ID)
	require.NoError(t, err)
	assert.Len(t, categories, 2)
}

func TestAccountService_Register_IssuesVerificationToken(t *testing.T) {
	env := setupEnv(t)
	env.accounts.SetVerification(env.verification)

	account, err := env.accounts.Register(context.Background(), registerRequest("mailli", "mail@example.com"))
	require.NoError(t, err)

	require.Len(t, env.mail.messages, 1)
	assert.Equal(t, "mail@example.com", env.mail.messages[0].To)
	assert.Equal(t, account.ID, env.mail.messages[0].AccountID)

	confirmed, err := env.accounts.EmailConfirmed(account.ID)
	require.NoError(t, err)
	assert.False(t, confirmed)
}

func TestAccountService_Lookups_NotFound(t *testing.T) {
	env := setupEnv(t)

	_, err := env.accounts.GetByID(404)
	assert.ErrorIs(t, err, ErrAccountNotFound)
	_, err = env.accounts.GetByNick("kimse")
	assert.ErrorIs(t, err, ErrAccountNotFound)
	_, err = env.accounts.GetByEmail("nobody@example.com")
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestAccountService_UpdatePreferences(t *testing.T) {
	env := setupEnv(t)
	account := testutil.TestAccount(t, env.db)

	entries, topics := 30, 75
	pref := model.MessageFollowingOnly
	err := env.accounts.UpdatePreferences(account.ID, &dto.UpdatePreferencesRequest{
		EntriesPerPage:    &entries,
		TopicsPerPage:     &topics,
		MessagePreference: &pref,
	})
	require.NoError(t, err)

	updated, err := env.accounts.GetByID(account.ID)
	require.NoError(t, err)
	assert.Equal(t, 30, updated.EntriesPerPage)
	assert.Equal(t, 75, updated.TopicsPerPage)
	assert.Equal(t, model.MessageFollowingOnly, updated.MessagePreference)

	bad := 75
	err = env.accounts.UpdatePreferences(account.ID, &dto.UpdatePreferencesRequest{EntriesPerPage: &bad})
	var verr *validator.ValidationError
	assert.True(t, errors.As(err, &verr))
}

func TestAccountService_StateMachine(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	operator := testutil.TestAccount(t, env.db, testutil.WithStaff())
	plain := testutil.TestAccount(t, env.db, testutil.WithAuthor())
	novice := testutil.TestAccount(t, env.db, testutil.WithStatus(model.StatusPending))

	// pending 不能直接激活
	_, err := env.accounts.Activate(ctx, operator.ID, novice.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	held, err := env.accounts.HoldApplication(novice.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusOnHold, held.ApplicationStatus)
	require.NotNil(t, held.ApplicationDate)

	// 不能回退或重复进入 on-hold
	_, err = env.accounts.HoldApplication(novice.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	// 没有权限的操作者
	_, err = env.accounts.Activate(ctx, plain.ID, novice.ID)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	activated, err := env.accounts.Activate(ctx, operator.ID, novice.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusApproved, activated.ApplicationStatus)
	assert.False(t, activated.IsNovice)
	assert.True(t, activated.IsActive)

	reloaded, err := env.accounts.GetByID(novice.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.IsAuthor())

	// approved 之后不能再变
	_, err = env.accounts.Activate(ctx, operator.ID, novice.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = env.accounts.HoldApplication(novice.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	assert.Contains(t, env.events.types(), pubsub.EventActivated)
}

func TestAccountService_Ban(t *testing.T) {
	env := setupEnv(t)
	account := testutil.TestAccount(t, env.db, testutil.WithAuthor())

	require.NoError(t, env.accounts.Ban(account.ID, env.clock.Now().Add(48*time.Hour)))

	banned, err := env.accounts.IsBanned(account.ID)
	require.NoError(t, err)
	assert.True(t, banned)

	// 封禁与申请状态无关
	reloaded, err := env.accounts.GetByID(account.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusApproved, reloaded.ApplicationStatus)

	// 时间过去后自动解封
	env.clock.Advance(72 * time.Hour)
	banned, err = env.accounts.IsBanned(account.ID)
	require.NoError(t, err)
	assert.False(t, banned)

	assert.ErrorIs(t, env.accounts.Ban(account.ID, env.clock.Now().Add(-time.Hour)), ErrInvalidTransition)

	require.NoError(t, env.accounts.Ban(account.ID, env.clock.Now().Add(time.Hour)))
	require.NoError(t, env.accounts.Unban(account.ID))
	banned, err = env.accounts.IsBanned(account.ID)
	require.NoError(t, err)
	assert.False(t, banned)

	assert.ErrorIs(t, env.accounts.Unban(404), ErrAccountNotFound)
}

func TestAccountService_TouchActivity(t *testing.T) {
	env := setupEnv(t)
	account := testutil.TestAccount(t, env.db)

	require.NoError(t, env.accounts.TouchActivity(account.ID))

	reloaded, err := env.accounts.GetByID(account.ID)
	require.NoError(t, err)
	require.NotNil(t, reloaded.LastActivity)
	assert.True(t, env.clock.Now().Equal(*reloaded.LastActivity))
}

func TestAccountService_EntryStats(t *testing.T) {
	env := setupEnv(t)
	now := env.clock.Now()
	author := testutil.TestAccount(t, env.db, testutil.WithAuthor())

	empty, err := env.accounts.LastEntryDate(author.ID)
	require.NoError(t, err)
	assert.Nil(t, empty)

	testutil.TestEntry(t, env.db, author.ID, testutil.WithCreatedAt(now.Add(-time.Hour)))
	testutil.TestEntry(t, env.db, author.ID, testutil.WithCreatedAt(now.Add(-3*24*time.Hour)))
	testutil.TestEntry(t, env.db, author.ID, testutil.WithCreatedAt(now.Add(-20*24*time.Hour)))
	testutil.TestEntry(t, env.db, author.ID, testutil.WithCreatedAt(now.Add(-90*24*time.Hour)))
	testutil.TestEntry(t, env.db, author.ID, testutil.WithCreatedAt(now.Add(-time.Minute)), testutil.WithDraft())

	stats, err := env.accounts.Stats(context.Background(), author.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(4), stats.EntryCount)
	assert.Equal(t, int64(3), stats.EntryCountMonth)
	assert.Equal(t, int64(2), stats.EntryCountWeek)
	assert.Equal(t, int64(1), stats.EntryCountDay)
	require.NotNil(t, stats.LastEntryDate)
	assert.True(t, now.Add(-time.Hour).Equal(*stats.LastEntryDate))
	assert.Nil(t, stats.EntryNiceID)
	assert.True(t, stats.EmailConfirmed)
}

func TestAccountService_EntryNice(t *testing.T) {
	env := setupEnv(t)
	author := testutil.TestAccount(t, env.db, testutil.WithAuthor())

	nice, err := env.accounts.EntryNice(author.ID)
	require.NoError(t, err)
	assert.Nil(t, nice)

	entry := testutil.TestEntry(t, env.db, author.ID, testutil.WithVoteRate(1.0))
	nice, err = env.accounts.EntryNice(author.ID)
	require.NoError(t, err)
	assert.Nil(t, nice, "rate equal to threshold is not nice")

	require.NoError(t, env.db.Model(&model.Entry{}).Where("id = ?", entry.ID).Update("vote_rate", 1.5).Error)
	nice, err = env.accounts.EntryNice(author.ID)
	require.NoError(t, err)
	require.NotNil(t, nice)
	assert.Equal(t, entry.ID, nice.ID)
}

func TestAccountService_Followers(t *testing.T) {
	env := setupEnv(t)
	target := testutil.TestAccount(t, env.db)
	a := testutil.TestAccount(t, env.db)
	b := testutil.TestAccount(t, env.db)

	require.NoError(t, env.social.Follow(a.ID, target.ID))
	require.NoError(t, env.social.Follow(b.ID, target.ID))
	require.NoError(t, env.social.Follow(target.ID, a.ID))

	followers, err := env.accounts.Followers(target.ID)
	require.NoError(t, err)
	assert.Len(t, followers, 2)

	followers, err = env.accounts.Followers(a.ID)
	require.NoError(t, err)
	require.Len(t, followers, 1)
	assert.Equal(t, target.ID, followers[0].ID)
}

func TestAccountService_EmailConfirmed_Window(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	account := testutil.TestAccount(t, env.db)

	confirmed, err := env.accounts.EmailConfirmed(account.ID)
	require.NoError(t, err)
	assert.True(t, confirmed, "no token means confirmed")

	_, err = env.verification.IssueRegistration(ctx, account)
	require.NoError(t, err)

	confirmed, err = env.accounts.EmailConfirmed(account.ID)
	require.NoError(t, err)
	assert.False(t, confirmed, "fresh token means unconfirmed")

	env.clock.Advance(23 * time.Hour)
	confirmed, err = env.accounts.EmailConfirmed(account.ID)
	require.NoError(t, err)
	assert.False(t, confirmed)

	env.clock.Advance(2 * time.Hour)
	confirmed, err = env.accounts.EmailConfirmed(account.ID)
	require.NoError(t, err)
	assert.True(t, confirmed, "aged-out token means confirmed")
}

func TestAccountService_Stats_UsesCache(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	env.accounts.SetStatsCache(cache.NewStatsCache(client, time.Minute))

	author := testutil.TestAccount(t, env.db, testutil.WithAuthor())
	testutil.TestEntry(t, env.db, author.ID, testutil.WithCreatedAt(env.clock.Now()))

	stats, err := env.accounts.Stats(ctx, author.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.EntryCount)
	assert.True(t, mr.Exists("account:stats:"+itoa(author.ID)))

	// 缓存期内新增条目不影响结果
	testutil.TestEntry(t, env.db, author.ID, testutil.WithCreatedAt(env.clock.Now()))
	stats, err = env.accounts.Stats(ctx, author.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.EntryCount)

	// 邮箱状态不走缓存
	_, err = env.verification.IssueRegistration(ctx, author)
	require.NoError(t, err)
	stats, err = env.accounts.Stats(ctx, author.ID)
	require.NoError(t, err)
	assert.False(t, stats.EmailConfirmed)
}

func TestAccountService_Delete_Cascades(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	a := testutil.TestAccount(t, env.db)
	b := testutil.TestAccount(t, env.db)
	entry := testutil.TestEntry(t, env.db, a.ID)

	testutil.TestMemento(t, env.db, a.ID, b.ID, "about b")
	testutil.TestMemento(t, env.db, b.ID, a.ID, "about a")
	testutil.TestToken(t, env.db, b.ID, env.clock.Now())
	require.NoError(t, env.social.PinEntry(a.ID, entry.ID))

	require.NoError(t, env.accounts.Delete(ctx, b.ID))

	var mementos, tokens int64
	require.NoError(t, env.db.Model(&model.Memento{}).Count(&mementos).Error)
	require.NoError(t, env.db.Model(&model.VerificationToken{}).Count(&tokens).Error)
	assert.Zero(t, mementos)
	assert.Zero(t, tokens)

	// 删除条目后置顶被置空，账号本身保留
	require.NoError(t, env.social.DeleteEntry(entry.ID))
	reloaded, err := env.accounts.GetByID(a.ID)
	require.NoError(t, err)
	assert.Nil(t, reloaded.PinnedEntryID)

	assert.ErrorIs(t, env.accounts.Delete(ctx, b.ID), ErrAccountNotFound)
	assert.Contains(t, env.events.types(), pubsub.EventDeleted)
}

func TestAccountService_ListNovices(t *testing.T) {
	env := setupEnv(t)
	testutil.TestAccount(t, env.db)
	testutil.TestAccount(t, env.db)
	testutil.TestAccount(t, env.db, testutil.WithAuthor())

	accounts, total, err := env.accounts.ListNovices(model.StatusOnHold, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, accounts, 2)
}

func TestAccountService_CheckPassword_Banned(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	account, err := env.accounts.Register(ctx, registerRequest("yasakli", "banned@example.com"))
	require.NoError(t, err)
	require.NoError(t, env.accounts.Ban(account.ID, env.clock.Now().Add(time.Hour)))

	_, err = env.accounts.CheckPassword("banned@example.com", "password123")
	assert.ErrorIs(t, err, ErrAccountBanned)

	env.clock.Advance(2 * time.Hour)
	_, err = env.accounts.CheckPassword("banned@example.com", "password123")
	assert.NoError(t, err)
}
