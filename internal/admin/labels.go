package admin

import "github.com/qs3c/dict_go_server/internal/model"

// 后台展示用的中文标签，存储值保持不变
var (
	genderLabels = map[model.Gender]string{
		model.GenderMan:     "男",
		model.GenderWoman:   "女",
		model.GenderOther:   "其他",
		model.GenderUnknown: "不透露",
	}

	statusLabels = map[model.ApplicationStatus]string{
		model.StatusPending:  "待处理",
		model.StatusOnHold:   "排队中",
		model.StatusApproved: "已通过",
	}

	messagePreferenceLabels = map[model.MessagePreference]string{
		model.MessageDisabled:      "关闭私信",
		model.MessageAllUsers:      "所有用户",
		model.MessageAuthorsOnly:   "仅作者",
		model.MessageFollowingOnly: "仅我关注的人",
	}
)

func GenderLabel(g model.Gender) string {
	return labelOr(genderLabels[g], string(g))
}

func StatusLabel(s model.ApplicationStatus) string {
	return labelOr(statusLabels[s], string(s))
}

func MessagePreferenceLabel(p model.MessagePreference) string {
	return labelOr(messagePreferenceLabels[p], string(p))
}

func labelOr(label, fallback string) string {
	if label == "" {
		return fallback
	}
	return label
}

// AccountView 后台账号列表项
type AccountView struct {
	*model.Account
	Display                string `json:"display"`
	GenderLabel            string `json:"gender_label"`
	StatusLabel            string `json:"application_status_label"`
	MessagePreferenceLabel string `json:"message_preference_label"`
}

func NewAccountView(a *model.Account) *AccountView {
	return &AccountView{
		Account:                a,
		Display:                a.String(),
		GenderLabel:            GenderLabel(a.Gender),
		StatusLabel:            StatusLabel(a.ApplicationStatus),
		MessagePreferenceLabel: MessagePreferenceLabel(a.MessagePreference),
	}
}
