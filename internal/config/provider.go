package config

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/mahzoun/create-8004-agent/internal/domain/config"
)

// PayerKeyEnv names the key that funds paid x402 checks.
const PayerKeyEnv = "TEST_PAYER_PRIVATE_KEY"

// Output formats accepted by --format.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// Provider creates RuntimeConfig for Wire dependency injection
func Provider(v *viper.Viper) (*config.RuntimeConfig, error) {
	workDir := v.GetString("work_dir")
	if workDir == "" {
		workDir = filepath.Join(os.TempDir(), "conform")
	}
	workDir, err := filepath.Abs(workDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve work dir: %w", err)
	}

	cfg := &config.RuntimeConfig{
		WorkDir:        workDir,
		Generator:      strings.Fields(v.GetString("generator")),
		Installer:      strings.Fields(v.GetString("installer")),
		Runner:         strings.Fields(v.GetString("runner")),
		PortBase:       v.GetInt("port_base"),
		PortCeiling:    v.GetInt("port_ceiling"),
		StartupTimeout: v.GetDuration("startup_timeout"),
		PollInterval:   v.GetDuration("poll_interval"),
		StopGrace:      v.GetDuration("stop_grace"),
		RequestTimeout: v.GetDuration("request_timeout"),
		ProbeAttempts:  v.GetInt("probe_attempts"),
		ProbeDelay:     v.GetDuration("probe_delay"),
		Debug:          v.GetBool("debug"),
		NonInteractive: v.GetBool("non_interactive"),
		Format:         strings.ToLower(v.GetString("format")),
		ReportPath:     v.GetString("report"),
		Timeout:        v.GetDuration("timeout"),
	}

	if cfg.PortBase <= 0 || cfg.PortCeiling < cfg.PortBase || cfg.PortCeiling > 65535 {
		return nil, fmt.Errorf("invalid port range %d-%d", cfg.PortBase, cfg.PortCeiling)
	}

	switch cfg.Format {
	case FormatTable, FormatJSON, FormatYAML:
	default:
		return nil, fmt.Errorf("unsupported format %q (want %s, %s or %s)", cfg.Format, FormatTable, FormatJSON, FormatYAML)
	}

	if key := strings.TrimSpace(v.GetString("payer_key")); key != "" {
		cfg.PayerKey, err = ParsePayerKey(key)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", PayerKeyEnv, err)
		}
	}

	return cfg, nil
}

// ParsePayerKey accepts a hex private key with or without a 0x prefix.
func ParsePayerKey(hexKey string) (*ecdsa.PrivateKey, error) {
	hexKey = strings.TrimPrefix(strings.TrimPrefix(hexKey, "0x"), "0X")
	key, err := crypto.HexToECDSA(hexKey)
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	return key, nil
}

// LoadDotEnv loads dir/.env into the process environment without
// overriding variables that are already set.
func LoadDotEnv(dir string) error {
	err := godotenv.Load(filepath.Join(dir, ".env"))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	return nil
}

// SetupViper creates and configures a viper instance
func SetupViper(dir string, cmd *cobra.Command) *viper.Viper {
	v := viper.New()

	// Set up config file
	v.SetConfigName("conform")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)

	// Set up environment variables
	v.SetEnvPrefix("CONFORM")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	_ = v.BindEnv("payer_key", PayerKeyEnv)

	// Set defaults
	v.SetDefault("work_dir", "")
	v.SetDefault("generator", "npx create-8004-agent")
	v.SetDefault("installer", "npm install")
	v.SetDefault("runner", "npx tsx")
	v.SetDefault("port_base", 30000)
	v.SetDefault("port_ceiling", 39999)
	v.SetDefault("startup_timeout", "60s")
	v.SetDefault("poll_interval", "500ms")
	v.SetDefault("stop_grace", "5s")
	v.SetDefault("request_timeout", "30s")
	v.SetDefault("probe_attempts", 3)
	v.SetDefault("probe_delay", "500ms")
	v.SetDefault("timeout", "30m")
	v.SetDefault("debug", false)
	v.SetDefault("non_interactive", false)
	v.SetDefault("format", FormatTable)
	v.SetDefault("report", "")

	// Try to read config file (ignore error if not found)
	_ = v.ReadInConfig()

	if cmd != nil {
		cmd.Flags().VisitAll(func(f *pflag.Flag) {
			key := strings.ReplaceAll(f.Name, "-", "_")
			if err := v.BindPFlag(key, f); err != nil {
				panic(err)
			}
		})
	}

	return v
}
