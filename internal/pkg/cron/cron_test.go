package cron

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/dict_go_server/config"
	"github.com/qs3c/dict_go_server/internal/model"
	"github.com/qs3c/dict_go_server/internal/repository"
	"github.com/qs3c/dict_go_server/internal/service"
	"github.com/qs3c/dict_go_server/internal/testutil"
)

type countingSweeper struct {
	calls chan struct{}
}

func (c *countingSweeper) SweepStale(bool) (int64, error) {
	select {
	case c.calls <- struct{}{}:
	default:
	}
	return 0, nil
}

func TestNewService_DefaultInterval(t *testing.T) {
	svc := NewService(nil, 0)
	assert.Equal(t, time.Hour, svc.interval)
	assert.NotNil(t, svc.stopChan)
}

func TestService_RunNow(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	cfg := &config.Config{Account: config.AccountConfig{VerificationFreshHours: 24}}
	verification := service.NewVerificationService(
		repository.NewVerificationRepository(db),
		repository.NewAccountRepository(db),
		cfg,
	)
	svc := NewService(verification, time.Hour)

	now := time.Now()
	stale := testutil.TestAccount(t, db)
	fresh := testutil.TestAccount(t, db)
	testutil.TestToken(t, db, stale.ID, now.Add(-30*time.Hour))
	testutil.TestToken(t, db, fresh.ID, now.Add(-time.Hour))

	n, err := svc.RunNow()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	var count int64
	require.NoError(t, db.Model(&model.VerificationToken{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestService_RunNow_NilSweeper(t *testing.T) {
	n, err := NewService(nil, time.Hour).RunNow()
	assert.NoError(t, err)
	assert.Zero(t, n)
}

func TestService_StartTicks(t *testing.T) {
	sweeper := &countingSweeper{calls: make(chan struct{}, 1)}
	svc := NewService(sweeper, 10*time.Millisecond)

	svc.Start()
	defer svc.Stop()

	select {
	case <-sweeper.calls:
	case <-time.After(2 * time.Second):
		t.Fatal("sweeper was not called")
	}
}

func TestService_StopTwice(t *testing.T) {
	svc := NewService(nil, time.Hour)
	svc.Start()
	svc.Stop()
	svc.Stop()
}
