package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spacemeshos/smutil"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"

	"github.com/spacemeshos/bitvec/config"
)

func setFlags(flags *pflag.FlagSet, cfg *config.Config) {
	flags.StringVar(&cfgFile, "config", "", "Path to configuration file")
	flags.StringVar(&logLevel, "log-level", zapcore.InfoLevel.String(), "log level (debug, info, warn, error, dpanic, panic, fatal)")
	flags.BoolVar(&printConfig, "print-config", false, "print the used config")

	flags.StringVar(&cfg.DataDir, "datadir",
		cfg.DataDir, "The directory that relative snapshot paths are resolved against")

	flags.Uint64Var(&cfg.InitialBits, "initial-bits",
		cfg.InitialBits, "Initial capacity of bit vectors, in bits (a power of 2)")

	flags.BoolVar(&cfg.Fill, "fill",
		cfg.Fill, "Whether to pre-fill the initial storage of bit vectors with ones")

	flags.UintVar(&cfg.ChunkSize, "chunk-size",
		cfg.ChunkSize, "Number of bytes read from the input before appending them")

	flags.Uint64Var(&cfg.MaxSnapshotSize, "max-snapshot-size",
		cfg.MaxSnapshotSize, "Largest snapshot data section accepted, in bytes")
}

// loadConfig merges the config file, if any, into cfg.
// Flags set on the command line take precedence over the config file.
func loadConfig(cmd *cobra.Command, cfg *config.Config) error {
	vip := viper.New()

	if cfgFile != "" {
		vip.SetConfigFile(smutil.GetCanonicalPath(cfgFile))
		if err := vip.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := vip.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("failed to bind flags: %w", err)
	}

	if err := vip.Unmarshal(cfg); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.DataDir = smutil.GetCanonicalPath(cfg.DataDir)
	return nil
}

// snapshotPath resolves a snapshot name against the datadir.
func snapshotPath(cfg *config.Config, name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(cfg.DataDir, name)
}
