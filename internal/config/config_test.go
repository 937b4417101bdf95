package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/lox/blackjack/internal/game"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "blackjack.hcl")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	config, err := Load(filepath.Join(t.TempDir(), "nope.hcl"))
	if err != nil {
		t.Fatal(err)
	}

	if config.Server.Port != 8080 {
		t.Errorf("Port = %d, expected 8080", config.Server.Port)
	}
	if len(config.Tables) != 1 || config.Tables[0].Name != "main" {
		t.Errorf("expected a single default table, got %+v", config.Tables)
	}
	if err := config.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadFullConfig(t *testing.T) {
	path := writeConfig(t, `
server {
  address   = "0.0.0.0"
  port      = 9090
  log_level = "debug"
  database  = "casino.db"
}

table "vegas" {
  minimum_bet         = 25
  bank                = 5000
  number_of_decks     = 8
  penetration_percent = 80
  blackjack_payout    = "6:5"
  dealer_hits_soft_17 = true
  surrender           = "none"
  offer_insurance     = false
}

table "europe" {
  number_of_decks = 4
  surrender       = "early"
}
`)

	config, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := config.Validate(); err != nil {
		t.Fatal(err)
	}

	if config.Server.Address != "0.0.0.0" || config.Server.Port != 9090 {
		t.Errorf("server settings not applied: %+v", config.Server)
	}
	if config.GetServerAddress() != "0.0.0.0:9090" {
		t.Errorf("GetServerAddress() = %s", config.GetServerAddress())
	}

	vegas := config.GetTableByName("vegas")
	if vegas == nil {
		t.Fatal("vegas table not found")
	}
	if vegas.MinimumBet != 25 || vegas.Bank != 5000 {
		t.Errorf("table stakes not applied: %+v", vegas)
	}

	rules := vegas.Rules()
	if rules.NumberOfDecks != 8 {
		t.Errorf("NumberOfDecks = %d, expected 8", rules.NumberOfDecks)
	}
	if !rules.BlackjackPayout.Equal(decimal.New(12, -1)) {
		t.Errorf("BlackjackPayout = %s, expected 1.2", rules.BlackjackPayout)
	}
	if !rules.DealerHitsSoft17 {
		t.Error("DealerHitsSoft17 not applied")
	}
	if rules.Surrender != game.SurrenderNone {
		t.Errorf("Surrender = %s, expected none", rules.Surrender)
	}
	if rules.OfferInsurance {
		t.Error("OfferInsurance not applied")
	}

	if config.GetTableByName("nope") != nil {
		t.Error("expected nil for unknown table")
	}
}

func TestProfileUnsetFieldsKeepEngineDefaults(t *testing.T) {
	path := writeConfig(t, `
server {}

table "sparse" {
  number_of_decks = 2
}
`)

	config, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	sparse := config.GetTableByName("sparse")
	if sparse.MinimumBet != 1 {
		t.Errorf("MinimumBet = %d, expected default 1", sparse.MinimumBet)
	}

	rules := sparse.Rules()
	defaults := game.DefaultRules()
	if rules.NumberOfDecks != 2 {
		t.Errorf("NumberOfDecks = %d, expected 2", rules.NumberOfDecks)
	}
	if rules.Surrender != defaults.Surrender {
		t.Errorf("Surrender = %s, expected engine default", rules.Surrender)
	}
	if !rules.BlackjackPayout.Equal(defaults.BlackjackPayout) {
		t.Errorf("BlackjackPayout = %s, expected engine default", rules.BlackjackPayout)
	}
	if rules.MaxSplits != defaults.MaxSplits {
		t.Errorf("MaxSplits = %d, expected engine default", rules.MaxSplits)
	}
}

func TestLoadRejectsBadHCL(t *testing.T) {
	path := writeConfig(t, `table "broken" {`)
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestValidateRejectsBadStakes(t *testing.T) {
	config := DefaultConfig()
	config.Tables[0].MinimumBet = 100
	config.Tables[0].Bank = 50
	if err := config.Validate(); err == nil {
		t.Error("expected error when bank cannot cover the minimum bet")
	}

	config = DefaultConfig()
	config.Server.Port = 0
	if err := config.Validate(); err == nil {
		t.Error("expected error for invalid port")
	}
}
