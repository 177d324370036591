package admin

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/qs3c/dict_go_server/internal/model"
	"github.com/qs3c/dict_go_server/internal/service"
)

// NewDefaultRegistry 注册账号、备注、验证令牌、频道和条目
func NewDefaultRegistry(db *gorm.DB, accounts *service.AccountService, social *service.SocialService) *Registry {
	r := NewRegistry()

	r.MustRegister(NewGormResource[model.Account]("accounts", db,
		WithOrder[model.Account]("id DESC"),
		WithView(func(a *model.Account) interface{} { return NewAccountView(a) }),
		WithField[model.Account]("gender", EnumField(func(s string) bool { return model.Gender(s).Valid() })),
		WithField[model.Account]("message_preference", EnumField(func(s string) bool { return model.MessagePreference(s).Valid() })),
		WithField[model.Account]("entries_per_page", IntField(model.EntriesPerPageChoices...)),
		WithField[model.Account]("topics_per_page", IntField(model.TopicsPerPageChoices...)),
		WithField[model.Account]("banned_until", TimeField()),
		WithField[model.Account]("is_staff", BoolField()),
		WithField[model.Account]("can_activate_user", BoolField()),
		WithDelete[model.Account](func(ctx context.Context, id int64) error {
			return translate(accounts.Delete(ctx, id), service.ErrAccountNotFound)
		}),
	))

	r.MustRegister(NewGormResource[model.Memento]("mementos", db,
		WithOrder[model.Memento]("updated_at DESC, id DESC"),
		WithField[model.Memento]("body", NullableStringField()),
	))

	// 令牌只读，删除即作废
	r.MustRegister(NewGormResource[model.VerificationToken]("verification_tokens", db,
		WithOrder[model.VerificationToken]("expiration_date DESC, id DESC"),
	))

	r.MustRegister(NewGormResource[model.Category]("categories", db,
		WithOrder[model.Category]("weight DESC, id ASC"),
		WithField[model.Category]("name", StringField(64)),
		WithField[model.Category]("description", StringField(0)),
		WithField[model.Category]("weight", IntField()),
	))

	r.MustRegister(NewGormResource[model.Entry]("entries", db,
		WithField[model.Entry]("content", StringField(0)),
		WithField[model.Entry]("is_draft", BoolField()),
		WithField[model.Entry]("vote_rate", FloatField()),
		WithDelete[model.Entry](func(_ context.Context, id int64) error {
			return translate(social.DeleteEntry(id), service.ErrEntryNotFound)
		}),
	))

	return r
}

func translate(err, notFound error) error {
	if errors.Is(err, notFound) {
		return ErrRecordNotFound
	}
	return err
}
