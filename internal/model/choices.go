package model

// Gender 性别
type Gender string

const (
	GenderMan     Gender = "MN"
	GenderWoman   Gender = "WM"
	GenderOther   Gender = "OT"
	GenderUnknown Gender = "NO"
)

func (g Gender) Valid() bool {
	switch g {
	case GenderMan, GenderWoman, GenderOther, GenderUnknown:
		return true
	}
	return false
}

// ApplicationStatus 作者申请状态，只能向前推进：pending → on-hold → approved
type ApplicationStatus string

const (
	StatusPending  ApplicationStatus = "PN"
	StatusOnHold   ApplicationStatus = "OH"
	StatusApproved ApplicationStatus = "AP"
)

var statusRank = map[ApplicationStatus]int{
	StatusPending:  0,
	StatusOnHold:   1,
	StatusApproved: 2,
}

func (s ApplicationStatus) Valid() bool {
	_, ok := statusRank[s]
	return ok
}

// CanAdvanceTo 判断是否允许从 s 迁移到 next
func (s ApplicationStatus) CanAdvanceTo(next ApplicationStatus) bool {
	from, ok := statusRank[s]
	if !ok {
		return false
	}
	to, ok := statusRank[next]
	if !ok {
		return false
	}
	return to > from
}

// MessagePreference 私信接收偏好
type MessagePreference string

const (
	MessageDisabled      MessagePreference = "DS"
	MessageAllUsers      MessagePreference = "AU"
	MessageAuthorsOnly   MessagePreference = "AO"
	MessageFollowingOnly MessagePreference = "FO"
)

func (p MessagePreference) Valid() bool {
	switch p {
	case MessageDisabled, MessageAllUsers, MessageAuthorsOnly, MessageFollowingOnly:
		return true
	}
	return false
}

// VoteDirection 投票方向，每个 (account, entry) 只保存一行
type VoteDirection int8

const (
	VoteDown VoteDirection = -1
	VoteUp   VoteDirection = 1
)

// 每页条目数 / 话题数的可选值
var (
	EntriesPerPageChoices = []int{10, 30, 50, 100}
	TopicsPerPageChoices  = []int{30, 50, 75, 100}
)

const (
	DefaultEntriesPerPage = 10
	DefaultTopicsPerPage  = 50
)

func ValidEntriesPerPage(n int) bool {
	return contains(EntriesPerPageChoices, n)
}

func ValidTopicsPerPage(n int) bool {
	return contains(TopicsPerPageChoices, n)
}

func contains(choices []int, n int) bool {
	for _, c := range choices {
		if c == n {
			return true
		}
	}
	return false
}
