// Package config loads table profiles and runtime settings from HCL.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/blackjack/internal/game"
)

// Config represents the complete application configuration
type Config struct {
	Server ServerSettings `hcl:"server,block"`
	Tables []TableProfile `hcl:"table,block"`
}

// ServerSettings contains settings shared by every command
type ServerSettings struct {
	Address  string `hcl:"address,optional"`
	Port     int    `hcl:"port,optional"`
	LogLevel string `hcl:"log_level,optional"`
	Database string `hcl:"database,optional"`
}

// TableProfile defines a named house-rules profile. Unset fields fall
// back to the engine defaults, so a profile only states what it
// changes.
type TableProfile struct {
	Name               string `hcl:"name,label"`
	MinimumBet         int    `hcl:"minimum_bet,optional"`
	Bank               int    `hcl:"bank,optional"`
	NumberOfDecks      int    `hcl:"number_of_decks,optional"`
	PenetrationPercent int    `hcl:"penetration_percent,optional"`
	BlackjackPayout    string `hcl:"blackjack_payout,optional"`
	DealerHitsSoft17   *bool  `hcl:"dealer_hits_soft_17,optional"`
	Surrender          string `hcl:"surrender,optional"`
	DoubleDown         string `hcl:"double_down,optional"`
	DoubleAfterSplit   *bool  `hcl:"double_after_split,optional"`
	ResplitAces        *bool  `hcl:"resplit_aces,optional"`
	MaxSplits          int    `hcl:"max_splits,optional"`
	SplitTenValueCards *bool  `hcl:"split_ten_value_cards,optional"`
	OfferInsurance     *bool  `hcl:"offer_insurance,optional"`
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerSettings{
			Address:  "localhost",
			Port:     8080,
			LogLevel: "info",
			Database: "blackjack.db",
		},
		Tables: []TableProfile{
			{
				Name:       "main",
				MinimumBet: 1,
				Bank:       1000,
			},
		},
	}
}

// Load loads configuration from an HCL file, falling back to defaults
// when the file does not exist.
func Load(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config Config
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	// Apply defaults for missing values
	if config.Server.Address == "" {
		config.Server.Address = "localhost"
	}
	if config.Server.Port == 0 {
		config.Server.Port = 8080
	}
	if config.Server.LogLevel == "" {
		config.Server.LogLevel = "info"
	}
	if config.Server.Database == "" {
		config.Server.Database = "blackjack.db"
	}

	if len(config.Tables) == 0 {
		config.Tables = DefaultConfig().Tables
	}
	for i := range config.Tables {
		if config.Tables[i].MinimumBet == 0 {
			config.Tables[i].MinimumBet = 1
		}
		if config.Tables[i].Bank == 0 {
			config.Tables[i].Bank = 1000
		}
	}

	return &config, nil
}

// Rules converts the profile to engine rules. Only fields the profile
// sets appear in the settings map; the rest keep their defaults.
func (t *TableProfile) Rules() game.Rules {
	settings := make(map[string]string)

	if t.NumberOfDecks != 0 {
		settings[game.SettingNumberOfDecks] = strconv.Itoa(t.NumberOfDecks)
	}
	if t.PenetrationPercent != 0 {
		settings[game.SettingPenetrationPercent] = strconv.Itoa(t.PenetrationPercent)
	}
	if t.BlackjackPayout != "" {
		settings[game.SettingBlackjackPayout] = t.BlackjackPayout
	}
	if t.DealerHitsSoft17 != nil {
		settings[game.SettingDealerHitsSoft17] = strconv.FormatBool(*t.DealerHitsSoft17)
	}
	if t.Surrender != "" {
		settings[game.SettingSurrender] = t.Surrender
	}
	if t.DoubleDown != "" {
		settings[game.SettingDoubleDown] = t.DoubleDown
	}
	if t.DoubleAfterSplit != nil {
		settings[game.SettingDoubleAfterSplit] = strconv.FormatBool(*t.DoubleAfterSplit)
	}
	if t.ResplitAces != nil {
		settings[game.SettingResplitAces] = strconv.FormatBool(*t.ResplitAces)
	}
	if t.MaxSplits != 0 {
		settings[game.SettingMaxSplits] = strconv.Itoa(t.MaxSplits)
	}
	if t.SplitTenValueCards != nil {
		settings[game.SettingSplitTenValueCards] = strconv.FormatBool(*t.SplitTenValueCards)
	}
	if t.OfferInsurance != nil {
		settings[game.SettingOfferInsurance] = strconv.FormatBool(*t.OfferInsurance)
	}

	return game.RulesFromSettings(settings)
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}

	if len(c.Tables) == 0 {
		return fmt.Errorf("at least one table must be configured")
	}

	for _, table := range c.Tables {
		if table.MinimumBet <= 0 {
			return fmt.Errorf("table %s: minimum bet must be positive", table.Name)
		}
		if table.Bank < table.MinimumBet {
			return fmt.Errorf("table %s: bank must cover the minimum bet", table.Name)
		}
		if err := table.Rules().Validate(); err != nil {
			return fmt.Errorf("table %s: %w", table.Name, err)
		}
	}

	return nil
}

// GetServerAddress returns the full listen address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

// GetTableByName returns a table profile by name
func (c *Config) GetTableByName(name string) *TableProfile {
	for i := range c.Tables {
		if c.Tables[i].Name == name {
			return &c.Tables[i]
		}
	}
	return nil
}
