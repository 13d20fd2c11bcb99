package constants

// Ledger Error Codes

// Award gates
const (
	ErrCodeRateLimited      = "RATE_LIMITED"
	ErrCodeDailyCapExceeded = "DAILY_CAP_EXCEEDED"
	ErrCodeClanCapExceeded  = "CLAN_CAP_EXCEEDED"
	ErrCodeMessageIgnored   = "MESSAGE_IGNORED"
)

// Identity / lookup errors
const (
	ErrCodeClanNotFound  = "CLAN_NOT_FOUND"
	ErrCodeUserNotInClan = "USER_NOT_IN_CLAN"
	ErrCodeDuplicateClan = "DUPLICATE_CLAN"
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeDuplicate     = "DUPLICATE"
)

// Validation errors
const (
	ErrCodeInvalidAmount   = "INVALID_AMOUNT"
	ErrCodeInvalidClanName = "INVALID_CLAN_NAME"
	ErrCodeInvalidInput    = "INVALID_INPUT"
	ErrCodeForbidden       = "FORBIDDEN"
)

// Transient
const (
	ErrCodePersistenceFailure = "PERSISTENCE_FAILURE"
)

// Error Messages

var LedgerErrorMessages = map[string]string{
	ErrCodeRateLimited:      "Slow down! Points are awarded at most once per cooldown window",
	ErrCodeDailyCapExceeded: "Daily point limit reached for this member",
	ErrCodeClanCapExceeded:  "The clan has reached its weekly points cap",

	ErrCodeClanNotFound:  "Clan does not exist",
	ErrCodeUserNotInClan: "Member is not in any clan",
	ErrCodeDuplicateClan: "Clan already exists",
	ErrCodeNotFound:      "The requested item was not found",
	ErrCodeDuplicate:     "This has already been done",

	ErrCodeInvalidAmount:   "The amount is outside the allowed range",
	ErrCodeInvalidClanName: "Clan name can only contain letters, numbers, spaces, hyphens, and underscores (max 50 characters)",
	ErrCodeInvalidInput:    "The request is invalid",
	ErrCodeForbidden:       "You don't have permission to do that",

	ErrCodePersistenceFailure: "The change could not be saved. Please try again",
}

// GetErrorMessage returns the human-readable message for an error code
func GetErrorMessage(code string) string {
	if msg, exists := LedgerErrorMessages[code]; exists {
		return msg
	}
	return "An unknown error occurred"
}
