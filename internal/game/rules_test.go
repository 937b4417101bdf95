package game

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestRulesFromSettings(t *testing.T) {
	rules := RulesFromSettings(map[string]string{
		SettingDealerHitsSoft17:   "true",
		SettingBlackjackPayout:    "6:5",
		SettingNumberOfDecks:      "2",
		SettingSurrender:          "early",
		SettingDoubleAfterSplit:   "false",
		SettingResplitAces:        "true",
		SettingMaxSplits:          "2",
		SettingDoubleDown:         "nine_to_eleven",
		SettingPenetrationPercent: "66",
		SettingSplitTenValueCards: "true",
		SettingOfferInsurance:     "false",
	})

	if !rules.DealerHitsSoft17 {
		t.Error("DealerHitsSoft17 not applied")
	}
	if !rules.BlackjackPayout.Equal(decimal.New(12, -1)) {
		t.Errorf("BlackjackPayout = %s, expected 1.2", rules.BlackjackPayout)
	}
	if rules.NumberOfDecks != 2 {
		t.Errorf("NumberOfDecks = %d, expected 2", rules.NumberOfDecks)
	}
	if rules.Surrender != SurrenderEarly {
		t.Errorf("Surrender = %s, expected early", rules.Surrender)
	}
	if rules.DoubleAfterSplit {
		t.Error("DoubleAfterSplit not applied")
	}
	if !rules.ResplitAces {
		t.Error("ResplitAces not applied")
	}
	if rules.MaxSplits != 2 {
		t.Errorf("MaxSplits = %d, expected 2", rules.MaxSplits)
	}
	if rules.DoubleDown != DoubleNineToEleven {
		t.Errorf("DoubleDown = %s, expected nine_to_eleven", rules.DoubleDown)
	}
	if rules.PenetrationPercent != 66 {
		t.Errorf("PenetrationPercent = %d, expected 66", rules.PenetrationPercent)
	}
	if !rules.SplitTenValueCards {
		t.Error("SplitTenValueCards not applied")
	}
	if rules.OfferInsurance {
		t.Error("OfferInsurance not applied")
	}
}

func TestRulesFromSettingsNormalizesInvalidValues(t *testing.T) {
	defaults := DefaultRules()
	rules := RulesFromSettings(map[string]string{
		SettingDealerHitsSoft17:   "maybe",
		SettingBlackjackPayout:    "-3:2",
		SettingNumberOfDecks:      "0",
		SettingSurrender:          "sometimes",
		SettingMaxSplits:          "-1",
		SettingDoubleDown:         "whenever",
		SettingPenetrationPercent: "150",
		"totally_unknown_key":     "42",
	})

	if rules.DealerHitsSoft17 != defaults.DealerHitsSoft17 {
		t.Error("invalid boolean should keep default")
	}
	if !rules.BlackjackPayout.Equal(defaults.BlackjackPayout) {
		t.Errorf("invalid payout should keep default, got %s", rules.BlackjackPayout)
	}
	if rules.NumberOfDecks != defaults.NumberOfDecks {
		t.Errorf("invalid deck count should keep default, got %d", rules.NumberOfDecks)
	}
	if rules.Surrender != defaults.Surrender {
		t.Errorf("invalid surrender token should keep default, got %s", rules.Surrender)
	}
	if rules.MaxSplits != defaults.MaxSplits {
		t.Errorf("invalid max splits should keep default, got %d", rules.MaxSplits)
	}
	if rules.DoubleDown != defaults.DoubleDown {
		t.Errorf("invalid double-down token should keep default, got %s", rules.DoubleDown)
	}
	if rules.PenetrationPercent != defaults.PenetrationPercent {
		t.Errorf("invalid penetration should keep default, got %d", rules.PenetrationPercent)
	}
}

func TestRulesFromSettingsPayoutForms(t *testing.T) {
	tests := []struct {
		token    string
		expected string
	}{
		{"3:2", "1.5"},
		{"6:5", "1.2"},
		{"1:1", "1"},
		{"1.5", "1.5"},
		{"2", "2"},
	}

	for _, tt := range tests {
		rules := RulesFromSettings(map[string]string{SettingBlackjackPayout: tt.token})
		expected := decimal.RequireFromString(tt.expected)
		if !rules.BlackjackPayout.Equal(expected) {
			t.Errorf("payout %q = %s, expected %s", tt.token, rules.BlackjackPayout, expected)
		}
	}
}

func TestRulesValidate(t *testing.T) {
	if err := DefaultRules().Validate(); err != nil {
		t.Errorf("default rules should validate: %v", err)
	}

	bad := DefaultRules()
	bad.NumberOfDecks = 0
	if err := bad.Validate(); err == nil {
		t.Error("expected error for zero decks")
	}

	bad = DefaultRules()
	bad.NumberOfDecks = 1001
	if err := bad.Validate(); err == nil {
		t.Error("expected error for oversized shoe")
	}

	bad = DefaultRules()
	bad.PenetrationPercent = 0
	if err := bad.Validate(); err == nil {
		t.Error("expected error for zero penetration")
	}

	bad = DefaultRules()
	bad.BlackjackPayout = decimal.Zero
	if err := bad.Validate(); err == nil {
		t.Error("expected error for zero payout")
	}
}

func TestDoubleDownRestrictionPermits(t *testing.T) {
	tests := []struct {
		restriction DoubleDownRestriction
		value       int
		permitted   bool
	}{
		{DoubleAnyTwoCards, 5, true},
		{DoubleAnyTwoCards, 21, true},
		{DoubleNineToEleven, 8, false},
		{DoubleNineToEleven, 9, true},
		{DoubleNineToEleven, 11, true},
		{DoubleNineToEleven, 12, false},
		{DoubleTenToEleven, 9, false},
		{DoubleTenToEleven, 10, true},
		{DoubleTenToEleven, 11, true},
		{DoubleTenToEleven, 12, false},
	}

	for _, tt := range tests {
		if got := tt.restriction.Permits(tt.value); got != tt.permitted {
			t.Errorf("%s.Permits(%d) = %v, expected %v", tt.restriction, tt.value, got, tt.permitted)
		}
	}
}
