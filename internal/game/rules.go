package game

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// SurrenderRule controls whether and when the player may surrender.
type SurrenderRule int

const (
	SurrenderNone SurrenderRule = iota
	SurrenderLate
	SurrenderEarly
)

// String returns the settings token for the surrender rule.
func (s SurrenderRule) String() string {
	switch s {
	case SurrenderNone:
		return "none"
	case SurrenderLate:
		return "late"
	case SurrenderEarly:
		return "early"
	default:
		return "?"
	}
}

// DoubleDownRestriction limits which two-card totals may double.
type DoubleDownRestriction int

const (
	DoubleAnyTwoCards DoubleDownRestriction = iota
	DoubleNineToEleven
	DoubleTenToEleven
)

// String returns the settings token for the double-down restriction.
func (d DoubleDownRestriction) String() string {
	switch d {
	case DoubleAnyTwoCards:
		return "any_two_cards"
	case DoubleNineToEleven:
		return "nine_to_eleven"
	case DoubleTenToEleven:
		return "ten_to_eleven"
	default:
		return "?"
	}
}

// Permits reports whether a two-card hand of the given value may
// double under the restriction.
func (d DoubleDownRestriction) Permits(value int) bool {
	switch d {
	case DoubleNineToEleven:
		return value >= 9 && value <= 11
	case DoubleTenToEleven:
		return value >= 10 && value <= 11
	default:
		return true
	}
}

// Rules is an immutable snapshot of house rules, constructed once per
// session and passed explicitly into the shoe and each round. Never
// ambient state: concurrent test cases can run different profiles
// without cross-contamination.
type Rules struct {
	DealerHitsSoft17   bool
	BlackjackPayout    decimal.Decimal
	NumberOfDecks      int
	Surrender          SurrenderRule
	DoubleAfterSplit   bool
	ResplitAces        bool
	MaxSplits          int
	DoubleDown         DoubleDownRestriction
	PenetrationPercent int

	// SplitTenValueCards allows splitting any two ten-value cards
	// (e.g. K♠ T♦); when false only exact rank pairs split. House
	// conventions differ, so it is a toggle rather than a guess.
	SplitTenValueCards bool

	// OfferInsurance enables the insurance sub-step when the dealer
	// shows an ace.
	OfferInsurance bool
}

// DefaultRules returns a common six-deck S17 profile: 3:2 blackjack,
// late surrender, double after split, no resplit aces, 75%
// penetration.
func DefaultRules() Rules {
	return Rules{
		DealerHitsSoft17:   false,
		BlackjackPayout:    decimal.New(15, -1), // 3:2
		NumberOfDecks:      6,
		Surrender:          SurrenderLate,
		DoubleAfterSplit:   true,
		ResplitAces:        false,
		MaxSplits:          3,
		DoubleDown:         DoubleAnyTwoCards,
		PenetrationPercent: 75,
		SplitTenValueCards: false,
		OfferInsurance:     true,
	}
}

// Validate rejects out-of-domain values. Only direct construction uses
// this; the settings path normalizes instead.
func (r Rules) Validate() error {
	if r.NumberOfDecks < 1 || r.NumberOfDecks > 1000 {
		return fmt.Errorf("number of decks %d out of range [1, 1000]", r.NumberOfDecks)
	}
	if r.PenetrationPercent < 1 || r.PenetrationPercent > 100 {
		return fmt.Errorf("penetration percent %d out of range [1, 100]", r.PenetrationPercent)
	}
	if r.MaxSplits < 0 {
		return fmt.Errorf("max splits %d must not be negative", r.MaxSplits)
	}
	if !r.BlackjackPayout.IsPositive() {
		return fmt.Errorf("blackjack payout %s must be positive", r.BlackjackPayout)
	}
	return nil
}

// Settings keys recognised by RulesFromSettings. Values arrive as
// strings from the settings screen; unknown keys are dropped and
// invalid values fall back to the defaults above rather than
// propagating bad state.
const (
	SettingDealerHitsSoft17   = "dealer_hits_soft_17"
	SettingBlackjackPayout    = "blackjack_payout"
	SettingNumberOfDecks      = "number_of_decks"
	SettingSurrender          = "surrender"
	SettingDoubleAfterSplit   = "double_after_split"
	SettingResplitAces        = "resplit_aces"
	SettingMaxSplits          = "max_splits"
	SettingDoubleDown         = "double_down"
	SettingPenetrationPercent = "penetration_percent"
	SettingSplitTenValueCards = "split_ten_value_cards"
	SettingOfferInsurance     = "offer_insurance"
)

// RulesFromSettings merges a sanitized string-keyed settings mapping
// over DefaultRules. It never fails: recognised keys with invalid
// values keep their defaults.
func RulesFromSettings(settings map[string]string) Rules {
	r := DefaultRules()

	for key, raw := range settings {
		value := strings.TrimSpace(raw)
		switch key {
		case SettingDealerHitsSoft17:
			if b, err := strconv.ParseBool(value); err == nil {
				r.DealerHitsSoft17 = b
			}
		case SettingBlackjackPayout:
			if payout, ok := parsePayout(value); ok {
				r.BlackjackPayout = payout
			}
		case SettingNumberOfDecks:
			if n, err := strconv.Atoi(value); err == nil && n >= 1 && n <= 1000 {
				r.NumberOfDecks = n
			}
		case SettingSurrender:
			switch strings.ToLower(value) {
			case "none":
				r.Surrender = SurrenderNone
			case "late":
				r.Surrender = SurrenderLate
			case "early":
				r.Surrender = SurrenderEarly
			}
		case SettingDoubleAfterSplit:
			if b, err := strconv.ParseBool(value); err == nil {
				r.DoubleAfterSplit = b
			}
		case SettingResplitAces:
			if b, err := strconv.ParseBool(value); err == nil {
				r.ResplitAces = b
			}
		case SettingMaxSplits:
			if n, err := strconv.Atoi(value); err == nil && n >= 0 {
				r.MaxSplits = n
			}
		case SettingDoubleDown:
			switch strings.ToLower(value) {
			case "any_two_cards":
				r.DoubleDown = DoubleAnyTwoCards
			case "nine_to_eleven":
				r.DoubleDown = DoubleNineToEleven
			case "ten_to_eleven":
				r.DoubleDown = DoubleTenToEleven
			}
		case SettingPenetrationPercent:
			if n, err := strconv.Atoi(value); err == nil && n >= 1 && n <= 100 {
				r.PenetrationPercent = n
			}
		case SettingSplitTenValueCards:
			if b, err := strconv.ParseBool(value); err == nil {
				r.SplitTenValueCards = b
			}
		case SettingOfferInsurance:
			if b, err := strconv.ParseBool(value); err == nil {
				r.OfferInsurance = b
			}
		}
	}

	return r
}

// parsePayout accepts either a ratio token like "3:2" or a plain
// decimal like "1.5". Non-positive ratios are rejected.
func parsePayout(value string) (decimal.Decimal, bool) {
	if num, den, ok := strings.Cut(value, ":"); ok {
		n, err1 := strconv.ParseInt(strings.TrimSpace(num), 10, 64)
		d, err2 := strconv.ParseInt(strings.TrimSpace(den), 10, 64)
		if err1 != nil || err2 != nil || n <= 0 || d <= 0 {
			return decimal.Decimal{}, false
		}
		return decimal.NewFromInt(n).Div(decimal.NewFromInt(d)), true
	}

	payout, err := decimal.NewFromString(value)
	if err != nil || !payout.IsPositive() {
		return decimal.Decimal{}, false
	}
	return payout, true
}
