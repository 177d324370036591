package service

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/dict_go_server/config"
	"github.com/qs3c/dict_go_server/internal/pkg/pubsub"
	"github.com/qs3c/dict_go_server/internal/pkg/queue"
	"github.com/qs3c/dict_go_server/internal/repository"
	"github.com/qs3c/dict_go_server/internal/testutil"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []*pubsub.AccountEvent
}

func (p *recordingPublisher) PublishAccountEvent(_ context.Context, event *pubsub.AccountEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type recordingQueue struct {
	messages []*queue.MailMessage
}

func (q *recordingQueue) Push(_ context.Context, msg *queue.MailMessage) error {
	q.messages = append(q.messages, msg)
	return nil
}

// fakeClock 可手动推进的时钟
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.t = c.t.Add(d)
}

type testEnv struct {
	db           *gorm.DB
	cfg          *config.Config
	clock        *fakeClock
	events       *recordingPublisher
	mail         *recordingQueue
	accounts     *AccountService
	verification *VerificationService
	social       *SocialService
	mementos     *MementoService
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.CleanupTestDB(t, db) })

	cfg := &config.Config{
		Account: config.AccountConfig{VerificationFreshHours: 24},
	}

	accountRepo := repository.NewAccountRepository(db)
	entryRepo := repository.NewEntryRepository(db)
	verificationRepo := repository.NewVerificationRepository(db)
	relationRepo := repository.NewRelationRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	mementoRepo := repository.NewMementoRepository(db)

	clock := &fakeClock{t: time.Now().Truncate(time.Second)}
	events := &recordingPublisher{}
	mail := &recordingQueue{}

	verification := NewVerificationService(verificationRepo, accountRepo, cfg)
	verification.SetClock(clock.Now)
	verification.SetMailQueue(mail)
	verification.SetPublisher(events)

	accounts := NewAccountService(accountRepo, entryRepo, verificationRepo, cfg)
	accounts.SetClock(clock.Now)
	accounts.SetPublisher(events)

	return &testEnv{
		db:           db,
		cfg:          cfg,
		clock:        clock,
		events:       events,
		mail:         mail,
		accounts:     accounts,
		verification: verification,
		social:       NewSocialService(relationRepo, accountRepo, entryRepo, categoryRepo),
		mementos:     NewMementoService(mementoRepo, accountRepo),
	}
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
