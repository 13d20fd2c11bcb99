package engine

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

const (
	messageBasePoints  = 1
	messageBonusPoints = 5
	longMessageBonus   = 1
	longMessageLength  = 50
	minVisibleMessage  = 3
	weekendMultiplier  = "1.5"
)

var weekendFactor = decimal.RequireFromString(weekendMultiplier)

// MessageLengths returns the raw character count and the count after trimming whitespace.
func MessageLengths(content string) (length int, visible int) {
	return utf8.RuneCountInString(content), utf8.RuneCountInString(strings.TrimSpace(content))
}

// EligibleMessage reports whether a message may earn points at all.
// Whitespace-only content has a visible length of zero.
func EligibleMessage(visibleLength int) bool {
	return visibleLength >= minVisibleMessage
}

// MessagePoints computes the base award for one message: 1 point, or 5 with the bonus
// role, times 1.5 on Saturday and Sunday (UTC) rounded half up, plus 1 for long messages.
func MessagePoints(hasBonusRole bool, messageLength int, now time.Time) int64 {
	points := decimal.NewFromInt(messageBasePoints)
	if hasBonusRole {
		points = decimal.NewFromInt(messageBonusPoints)
	}

	switch now.UTC().Weekday() {
	case time.Saturday, time.Sunday:
		points = roundHalfUp(points.Mul(weekendFactor))
	}

	if messageLength > longMessageLength {
		points = points.Add(decimal.NewFromInt(longMessageBonus))
	}
	return points.IntPart()
}

// ApplyMultipliers scales a base amount by every factor and rounds half up once at the end.
func ApplyMultipliers(base int64, factors ...float64) int64 {
	amount := decimal.NewFromInt(base)
	for _, f := range factors {
		amount = amount.Mul(decimal.NewFromFloat(f))
	}
	return roundHalfUp(amount).IntPart()
}

// roundHalfUp rounds to the nearest integer, ties toward positive infinity.
func roundHalfUp(d decimal.Decimal) decimal.Decimal {
	return d.Add(decimal.New(5, -1)).Floor()
}
