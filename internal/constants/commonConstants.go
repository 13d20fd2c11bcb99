package constants

type (
	RequestSource string
	APIStatus     string
	CachePrefix   string
)

const (
	RequestSourceAPI RequestSource = "API"
	RequestSourceJWT RequestSource = "JWT"

	APIStatusOk    APIStatus = "ok"
	APIStatusError APIStatus = "error"

	CachePrefixRuntimeConfig CachePrefix = "CFG_"
	CachePrefixCooldown      CachePrefix = "CD_"
	CachePrefixDailyBudget   CachePrefix = "DB_"
)

// Ledger defaults. Runtime values come from config.Config.
const (
	DefaultClanMaxPoints    = 20000
	DefaultUserWeeklyCap    = 2000
	DefaultDailyPointCap    = 500
	DefaultCooldownSeconds  = 5
	DefaultLeaderboardLimit = 10
	DefaultPointLogLimit    = 10
	MaxQueryLimit           = 100
)

// Validation ranges for admin operations.
const (
	MaxManualAdjustment = 10000
	MinWeeklyCap        = 100
	MaxWeeklyCap        = 20000
	MinChannelMult      = 0.1
	MaxChannelMult      = 5.0
	MinSeasonalMult     = 0.5
	MaxSeasonalMult     = 3.0
	MinChallengeReward  = 1
	MaxChallengeReward  = 1000
	MaxClanNameLength   = 50
	MaxShopItemName     = 100
)

// Log sources
const (
	SourceMessage      = "message"
	SourceAdmin        = "admin"
	SourceAdminRemoval = "admin_removal"
	SourcePurchase     = "purchase:"
	SourceChallenge    = "challenge:"
)

// Config keys stored in the key/value config table
const (
	ConfigKeyBonusRole = "bonus_role"
)

// DateLayout is the calendar-day format used for challenges and seasonal events.
const DateLayout = "2006-01-02"
