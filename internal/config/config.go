// Package config defines the data structures related to configuration and
// includes functions for loading, validating and looking up pricing tables.
package config

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/iwvelando/blind-quote/pkg/constants"
	"github.com/spf13/viper"
)

// Configuration holds all configuration for blind-quote.
type Configuration struct {
	Logging        LoggingConfig            `yaml:"logging,omitempty"`
	Output         OutputConfig             `yaml:"output,omitempty"`
	Server         ServerConfig             `yaml:"server,omitempty"`
	Store          StoreConfig              `yaml:"store,omitempty"`
	Products       []string                 `yaml:"products"`
	Pricing        Pricing                  `yaml:"pricing"`
	Surcharges     map[string]SurchargeRule `yaml:"surcharges"`
	CommissionRate float64                  `yaml:"commissionRate"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv
}

// ServerConfig holds the HTTP editor settings.
type ServerConfig struct {
	Address     string `yaml:"address,omitempty"`
	MaxBodySize string `yaml:"maxBodySize,omitempty"`
}

// StoreConfig holds the saved-quote database settings.
type StoreConfig struct {
	Path string `yaml:"path,omitempty"`
}

// Pricing holds the two unit price tables keyed by component name. Retail is
// what the customer is charged; F1 is what the supplier charges and is the
// cost basis for profit.
type Pricing struct {
	Retail map[string]float64 `yaml:"retail"`
	F1     map[string]float64 `yaml:"f1"`
}

// SurchargeRule prices one unit of a fee (delivery, install, removal).
type SurchargeRule struct {
	Price float64 `yaml:"price"`
	Cost  float64 `yaml:"cost"`
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}

	return decode(v)
}

// LoadConfigurationFromReader loads YAML-formatted configuration from r.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := newViper()

	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config data, %s", err)
	}

	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yml")
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("products", []string{constants.ProductRollerBlind})
	v.SetDefault("output.format", constants.OutputFormatPretty)
	v.SetDefault("server.address", constants.DefaultServerAddress)
	v.SetDefault("store.path", constants.DefaultStorePath)
	v.SetDefault("commissionRate", 0.0)
	return v
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}
	return &configuration, nil
}

// ValidateConfiguration performs general validation of the configuration and returns warnings
func (c *Configuration) ValidateConfiguration() []string {
	var warnings []string

	warnings = append(warnings, validateTable("retail", c.Pricing.Retail)...)
	warnings = append(warnings, validateTable("f1", c.Pricing.F1)...)

	for _, key := range sortedKeys(c.Pricing.Retail) {
		if f1, ok := c.Pricing.F1[key]; ok && f1 > c.Pricing.Retail[key] && c.Pricing.Retail[key] > 0 {
			warnings = append(warnings, fmt.Sprintf("Component '%s' costs more from the supplier (%.2f) than it sells for (%.2f)",
				key, f1, c.Pricing.Retail[key]))
		}
	}

	feeTypes := make([]string, 0, len(c.Surcharges))
	for k := range c.Surcharges {
		feeTypes = append(feeTypes, k)
	}
	sort.Strings(feeTypes)
	for _, fee := range feeTypes {
		rule := c.Surcharges[fee]
		if rule.Price < 0 || rule.Cost < 0 {
			warnings = append(warnings, fmt.Sprintf("Surcharge '%s' has a negative price or cost", fee))
		}
	}

	if c.CommissionRate < 0 || c.CommissionRate >= 1 {
		warnings = append(warnings, fmt.Sprintf("Commission rate %.4f is outside [0, 1)", c.CommissionRate))
	}

	return warnings
}

func validateTable(name string, table map[string]float64) []string {
	var warnings []string
	for _, key := range sortedKeys(table) {
		switch price := table[key]; {
		case price < 0:
			warnings = append(warnings, fmt.Sprintf("Component '%s' has a negative %s price (%.2f)", key, name, price))
		case price == 0:
			warnings = append(warnings, fmt.Sprintf("Component '%s' has a zero %s price", key, name))
		}
	}
	return warnings
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
