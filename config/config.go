package config

import (
	"fmt"
	"path/filepath"

	"github.com/spacemeshos/smutil"

	"github.com/spacemeshos/bitvec/bitstream"
	"github.com/spacemeshos/bitvec/bitvec"
	"github.com/spacemeshos/bitvec/persistence"
	"github.com/spacemeshos/bitvec/shared"
)

const (
	MaxChunkSize = 1 << 24
	MinChunkSize = 1

	MaxInitialBits = 1 << 40
)

const (
	DefaultDataDirName = "data"
	DefaultInitialBits = bitvec.DefaultBits
	DefaultFill        = false
	DefaultChunkSize   = bitstream.DefaultChunkSize

	// 1GB of data.
	DefaultMaxSnapshotSize = persistence.DefaultMaxSize
)

var DefaultDataDir = filepath.Join(smutil.GetUserHomeDirectory(), "bitvec", DefaultDataDirName)

type Config struct {
	DataDir string `mapstructure:"datadir"`

	InitialBits     uint64 `mapstructure:"initial-bits"`
	Fill            bool   `mapstructure:"fill"`
	ChunkSize       uint   `mapstructure:"chunk-size"`
	MaxSnapshotSize uint64 `mapstructure:"max-snapshot-size"`
}

func (cfg *Config) Validate() error {
	if !shared.IsPowerOfTwo(cfg.InitialBits) {
		return fmt.Errorf("invalid `InitialBits`; expected: a power of 2, given: %d", cfg.InitialBits)
	}

	if cfg.InitialBits < bitvec.DefaultBits {
		return fmt.Errorf("invalid `InitialBits`; expected: >= %d, given: %d", bitvec.DefaultBits, cfg.InitialBits)
	}

	if cfg.InitialBits > MaxInitialBits {
		return fmt.Errorf("invalid `InitialBits`; expected: <= %d, given: %d", uint64(MaxInitialBits), cfg.InitialBits)
	}

	if cfg.ChunkSize < MinChunkSize {
		return fmt.Errorf("invalid `ChunkSize`; expected: >= %d, given: %d", MinChunkSize, cfg.ChunkSize)
	}

	if cfg.ChunkSize > MaxChunkSize {
		return fmt.Errorf("invalid `ChunkSize`; expected: <= %d, given: %d", MaxChunkSize, cfg.ChunkSize)
	}

	if cfg.MaxSnapshotSize == 0 {
		return fmt.Errorf("invalid `MaxSnapshotSize`; expected: > 0, given: %d", cfg.MaxSnapshotSize)
	}

	return nil
}

func DefaultConfig() *Config {
	return &Config{
		DataDir:         DefaultDataDir,
		InitialBits:     DefaultInitialBits,
		Fill:            DefaultFill,
		ChunkSize:       DefaultChunkSize,
		MaxSnapshotSize: DefaultMaxSnapshotSize,
	}
}
