package pricing

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidSessionType = errors.New("invalid session type")
	ErrInvalidDuration    = errors.New("invalid session duration")
	ErrInvalidRate        = errors.New("invalid rate")
)

// Session types a booking can be held over.
const (
	TypeVideo = "video"
	TypeAudio = "audio"
	TypeChat  = "chat"
)

// Supported session lengths in minutes. Anything else is rejected rather
// than silently priced as a 50-minute session.
var Durations = []int{30, 50, 75}

var typeMultipliers = map[string]decimal.Decimal{
	TypeVideo: decimal.NewFromInt(1),
	TypeAudio: decimal.RequireFromString("0.85"),
	TypeChat:  decimal.RequireFromString("0.7"),
}

var durationMultipliers = map[int]decimal.Decimal{
	30: decimal.RequireFromString("0.6"),
	50: decimal.NewFromInt(1),
	75: decimal.RequireFromString("1.5"),
}

// Quote is a derived price for one session booking. It is recomputed on
// every request and never stored.
type Quote struct {
	USDMinor int64
	Tokens   int64
}

// SessionPrice computes the payable USD price in minor units (cents) and the
// token price for a session, from the professional's base rate (cents per
// 50-minute video session) and base token rate.
func SessionPrice(baseRateMinor, baseTokenRate int64, sessionType string, durationMinutes int) (Quote, error) {
	if baseRateMinor <= 0 || baseTokenRate <= 0 {
		return Quote{}, ErrInvalidRate
	}
	typeMult, ok := typeMultipliers[sessionType]
	if !ok {
		return Quote{}, ErrInvalidSessionType
	}
	durationMult, ok := durationMultipliers[durationMinutes]
	if !ok {
		return Quote{}, ErrInvalidDuration
	}
	usd := decimal.NewFromInt(baseRateMinor).Mul(typeMult).Mul(durationMult).Round(0).IntPart()
	tokens := decimal.NewFromInt(baseTokenRate).Mul(durationMult).Round(0).IntPart()
	return Quote{USDMinor: usd, Tokens: tokens}, nil
}

// ValidSessionType reports whether sessionType is one of the bookable kinds.
func ValidSessionType(sessionType string) bool {
	_, ok := typeMultipliers[sessionType]
	return ok
}

// ValidDuration reports whether durationMinutes is a bookable length.
func ValidDuration(durationMinutes int) bool {
	_, ok := durationMultipliers[durationMinutes]
	return ok
}
