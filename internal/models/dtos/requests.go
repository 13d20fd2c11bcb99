package dtos

// MessageActivityReq is posted by the chat layer for every member message it sees.
type MessageActivityReq struct {
	UserID       int64    `json:"user_id" validate:"required,gt=0"`
	Content      string   `json:"content"`
	ChannelID    *int64   `json:"channel_id,omitempty"`
	HasBonusRole bool     `json:"has_bonus_role"`
	RoleNames    []string `json:"role_names"`
}

type CreateClanReq struct {
	Name string `json:"name" validate:"required,max=50"`
}

type AssignMemberReq struct {
	UserID int64 `json:"user_id" validate:"required,gt=0"`
}

type AdjustPointsReq struct {
	UserID    int64  `json:"user_id" validate:"required,gt=0"`
	Amount    int64  `json:"amount" validate:"required,min=1,max=10000"`
	ClanName  string `json:"clan_name,omitempty" validate:"omitempty,max=50"`
	ChannelID *int64 `json:"channel_id,omitempty"`
}

type SetClanCapReq struct {
	MaxPoints int64 `json:"max_points" validate:"required,min=100,max=20000"`
}

type SetBonusRoleReq struct {
	RoleName string `json:"role_name" validate:"required,max=100"`
}

type WhitelistRoleReq struct {
	RoleName string `json:"role_name" validate:"required,max=100"`
}

type ChannelMultiplierReq struct {
	Multiplier  float64 `json:"multiplier" validate:"required,gte=0.1,lte=5"`
	ChannelName string  `json:"channel_name" validate:"max=100"`
}

type SeasonalEventReq struct {
	Name       string  `json:"name" validate:"required,max=100"`
	StartDate  string  `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate    string  `json:"end_date" validate:"required,datetime=2006-01-02"`
	Multiplier float64 `json:"multiplier" validate:"required,gte=0.5,lte=3"`
}

type SetChallengeReq struct {
	Challenge    string `json:"challenge" validate:"required,max=500"`
	RewardPoints int64  `json:"reward_points" validate:"required,min=1,max=1000"`
}

type ClaimChallengeReq struct {
	UserID int64 `json:"user_id" validate:"required,gt=0"`
}

type ShopItemReq struct {
	Name string `json:"name" validate:"required,min=1,max=100"`
	Cost int64  `json:"cost" validate:"required,min=1"`
}

type PurchaseReq struct {
	UserID   int64  `json:"user_id" validate:"required,gt=0"`
	ItemName string `json:"item_name" validate:"required,max=100"`
}

// PlatformRole mirrors a chat-platform role as seen by the integration layer.
type PlatformRole struct {
	Name      string  `json:"name" validate:"required"`
	Managed   bool    `json:"managed"`
	MemberIDs []int64 `json:"member_ids"`
}

type SyncClansReq struct {
	Roles []PlatformRole `json:"roles" validate:"required,dive"`
}
