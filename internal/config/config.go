package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/brtech99/stripcalls/internal/domain"
)

type Config struct {
	Mode string `mapstructure:"mode"`
	Port int    `mapstructure:"port"`

	// Provider numbers for each group, wire format.
	ArmorerNumber   string `mapstructure:"armorer_number"`
	MedicNumber     string `mapstructure:"medic_number"`
	NatOfficeNumber string `mapstructure:"natoffice_number"`

	// Owner seed record, created on startup when the directory is empty.
	OwnerPhone string `mapstructure:"owner_phone"`
	OwnerName  string `mapstructure:"owner_name"`

	// SmsChunkLimit is the maximum body length for list output before it
	// is split into multiple messages. Carried over from the carrier
	// segment limit the deployment has always used.
	SmsChunkLimit int `mapstructure:"sms_chunk_limit"`

	// SimulatorPrefix marks wire numbers whose outbound traffic is
	// buffered for the test harness instead of being sent.
	SimulatorPrefix string `mapstructure:"simulator_prefix"`

	FirestoreProject string `mapstructure:"firestore_project"`
	TwilioAccountSID string `mapstructure:"twilio_account_sid"`
	TwilioAuthToken  string `mapstructure:"twilio_auth_token"`

	OperatorEmail string `mapstructure:"operator_email"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)

	v.SetConfigFile(fileName)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	v.SetDefault("armorer_number", "+11112223333")
	v.SetDefault("medic_number", "+14445556666")
	v.SetDefault("natoffice_number", "+17778889999")
	v.SetDefault("owner_phone", "7246122359")
	v.SetDefault("owner_name", "Brian")
	v.SetDefault("sms_chunk_limit", 155)
	v.SetDefault("simulator_prefix", "+1202555100")

	v.SetEnvPrefix("stripcalls")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("config file not found (%s), using defaults\n", fileName)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}

// GroupFor resolves the addressed group from the inbound To number.
func (c *Config) GroupFor(toNumber string) (domain.Group, bool) {
	switch toNumber {
	case c.ArmorerNumber:
		return domain.GroupArmorer, true
	case c.MedicNumber:
		return domain.GroupMedic, true
	case c.NatOfficeNumber:
		return domain.GroupNatOffice, true
	}
	return 0, false
}

// GroupNumber is the provider number a group's messages are sent from.
func (c *Config) GroupNumber(g domain.Group) string {
	switch g {
	case domain.GroupArmorer:
		return c.ArmorerNumber
	case domain.GroupMedic:
		return c.MedicNumber
	case domain.GroupNatOffice:
		return c.NatOfficeNumber
	}
	return ""
}
