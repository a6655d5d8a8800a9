package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	flag "github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	defaultStoreType = "pebble"
	defaultDatadir   = ".melodot" // prefixed with the user's home directory
	defaultRPCHost   = "0.0.0.0"
	defaultRPCPort   = 9944
	defaultLogLevel  = "info"
	defaultLogOutput = "stdout"
	defaultXCacheLen = 8192
)

// Config holds the melodot-node process configuration.
type Config struct {
	Datadir string
	Store   StoreConfig
	RPC     RPCConfig
	Farmer  FarmerConfig
	Log     LogConfig
}

// StoreConfig selects and locates the persisted key-value backend.
type StoreConfig struct {
	Type string `mapstructure:"type"` // "pebble" or "memory"
}

// RPCConfig configures the das JSON-RPC HTTP server.
type RPCConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// FarmerConfig configures this node's proof-of-space farming identity and
// plot cache.
type FarmerConfig struct {
	PrivKey      string `mapstructure:"privkey"`      // Ethereum private key FarmerId is derived from
	XCacheLen    int    `mapstructure:"xCacheLen"`    // bounded X-bucket hot cache size
	KZGSetupPath string `mapstructure:"kzgSetupPath"` // trusted setup file; empty uses an insecure test setup
}

// LogConfig configures process-wide structured logging.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Output string `mapstructure:"output"`
}

// loadConfig loads configuration from flags, environment variables, and
// defaults, mirroring the node's own davinci-sequencer config loader.
func loadConfig() (*Config, error) {
	v := viper.New()

	userHomeDir, err := os.UserHomeDir()
	if err != nil {
		userHomeDir = "."
	}
	defaultDatadirPath := filepath.Join(userHomeDir, defaultDatadir)

	v.SetDefault("datadir", defaultDatadirPath)
	v.SetDefault("store.type", defaultStoreType)
	v.SetDefault("rpc.host", defaultRPCHost)
	v.SetDefault("rpc.port", defaultRPCPort)
	v.SetDefault("farmer.xCacheLen", defaultXCacheLen)
	v.SetDefault("log.level", defaultLogLevel)
	v.SetDefault("log.output", defaultLogOutput)

	flag.StringP("datadir", "d", defaultDatadirPath, "data directory for the persisted store")
	flag.String("store.type", defaultStoreType, "storage backend (pebble or memory)")
	flag.StringP("rpc.host", "h", defaultRPCHost, "das RPC listen host")
	flag.IntP("rpc.port", "p", defaultRPCPort, "das RPC listen port")
	flag.String("farmer.privkey", "", "Ethereum private key this farmer's FarmerId is derived from (required)")
	flag.Int("farmer.xCacheLen", defaultXCacheLen, "number of X-buckets to keep in the hot plot cache")
	flag.String("farmer.kzgSetupPath", "", "path to a KZG trusted setup file (uses an insecure test setup when empty)")
	flag.StringP("log.level", "l", defaultLogLevel, "log level (debug, info, warn, error, fatal)")
	flag.StringP("log.output", "o", defaultLogOutput, "log output (stdout, stderr or filepath)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "melodot-node v%s\n\n", Version)
		fmt.Fprintf(os.Stderr, "Usage: melodot-node [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEnvironment variables are also available with the same name as flags,\n")
		fmt.Fprintf(os.Stderr, "  except for dashes (-) and dots (.) which are replaced by underscores (_).\n")
		fmt.Fprintf(os.Stderr, "  For example, MELODOT_FARMER_PRIVKEY or MELODOT_RPC_PORT\n")
	}

	flag.CommandLine.SortFlags = false
	flag.Parse()

	v.SetEnvPrefix("MELODOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(flag.CommandLine); err != nil {
		return nil, fmt.Errorf("error binding flags: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return cfg, nil
}

// validateConfig checks the fields loadConfig cannot default on its own.
func validateConfig(cfg *Config) error {
	if cfg.Farmer.PrivKey == "" {
		return fmt.Errorf("farmer private key is required (use --farmer.privkey or MELODOT_FARMER_PRIVKEY)")
	}
	switch cfg.Store.Type {
	case "pebble", "memory":
	default:
		return fmt.Errorf("invalid store.type %q, must be \"pebble\" or \"memory\"", cfg.Store.Type)
	}
	return nil
}
