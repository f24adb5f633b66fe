// Package config loads deployment configuration: logging, rent parameters,
// and the addresses the two programs are registered under.
package config

import (
	"crypto/ed25519"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/forge-markets/forge-server/pkg/ledger"
	"github.com/forge-markets/forge-server/pkg/program/amm"
	"github.com/forge-markets/forge-server/pkg/program/escrow"
)

// Config is the runtime configuration. Program ids are base58 addresses;
// the same processor code runs under whatever address a deployment assigns.
type Config struct {
	LogLevel string `mapstructure:"log_level"`

	EscrowProgram string `mapstructure:"escrow_program"`
	AmmProgram    string `mapstructure:"amm_program"`

	RentLamportsPerByteYear uint64  `mapstructure:"rent_lamports_per_byte_year"`
	RentExemptionThreshold  float64 `mapstructure:"rent_exemption_threshold"`
}

func init() {
	_ = viper.BindEnv("log_level", "LOG_LEVEL")
	_ = viper.BindEnv("escrow_program", "ESCROW_PROGRAM")
	_ = viper.BindEnv("amm_program", "AMM_PROGRAM")
	_ = viper.BindEnv("rent_lamports_per_byte_year", "RENT_LAMPORTS_PER_BYTE_YEAR")
	_ = viper.BindEnv("rent_exemption_threshold", "RENT_EXEMPTION_THRESHOLD")
}

// Load reads configuration from the optional file at path, with environment
// variables taking precedence and defaults filling the rest.
func Load(path string) (*Config, error) {
	defaultRent := ledger.DefaultRent()
	viper.SetDefault("log_level", "info")
	viper.SetDefault("rent_lamports_per_byte_year", defaultRent.LamportsPerByteYear)
	viper.SetDefault("rent_exemption_threshold", defaultRent.ExemptionThreshold)

	if path != "" {
		viper.SetConfigFile(path)
		if err := viper.ReadInConfig(); err != nil {
			return nil, errors.Wrap(err, "failed to read config file")
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	return &config, nil
}

// ConfigureLogging applies the configured level to the standard logger.
func (c *Config) ConfigureLogging() error {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return errors.Wrapf(err, "invalid log level %q", c.LogLevel)
	}
	logrus.SetLevel(level)
	return nil
}

// Rent returns the configured rent parameters.
func (c *Config) Rent() ledger.Rent {
	return ledger.Rent{
		LamportsPerByteYear: c.RentLamportsPerByteYear,
		ExemptionThreshold:  c.RentExemptionThreshold,
	}
}

func (c *Config) programID(value, name string) (ed25519.PublicKey, error) {
	if value == "" {
		return nil, errors.Errorf("%s is not configured", name)
	}
	raw, err := base58.Decode(value)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid %s address", name)
	}
	if len(raw) != ed25519.PublicKeySize {
		return nil, errors.Errorf("invalid %s address length", name)
	}
	return raw, nil
}

// NewRuntime builds a runtime over the state with both programs registered
// at their configured addresses.
func (c *Config) NewRuntime(state *ledger.State) (*ledger.Runtime, error) {
	escrowID, err := c.programID(c.EscrowProgram, "escrow_program")
	if err != nil {
		return nil, err
	}
	ammID, err := c.programID(c.AmmProgram, "amm_program")
	if err != nil {
		return nil, err
	}

	runtime := ledger.NewRuntime(state, c.Rent())
	runtime.Register(escrow.NewProcessor(escrowID))
	runtime.Register(amm.NewProcessor(ammID))
	return runtime, nil
}
