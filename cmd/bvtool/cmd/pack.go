package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spacemeshos/bitvec/bitstream"
	"github.com/spacemeshos/bitvec/bitvec"
	"github.com/spacemeshos/bitvec/config"
	"github.com/spacemeshos/bitvec/persistence"
	"github.com/spacemeshos/bitvec/shared"
)

var packBits uint64

// packCmd represents the pack command.
var packCmd = &cobra.Command{
	Use:   "pack <input> <snapshot>",
	Short: "Pack the bits of a file into a snapshot",
	Long: `pack streams the input file, most-significant bit first, into a bit vector
and saves it as a snapshot. Relative snapshot paths are resolved against the datadir.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		bv, err := pack(cmd.Context(), cfg, args[0], packBits, logger)
		if err != nil {
			return err
		}
		return save(snapshotPath(cfg, args[1]), bv, logger)
	},
}

func init() {
	rootCmd.AddCommand(packCmd)

	packCmd.Flags().Uint64Var(&packBits, "bits", 0, "number of bits to pack (0 packs the whole input)")
}

// pack reads numBits bits of the input file into a new BitVec, or the whole file if numBits is 0.
func pack(ctx context.Context, cfg *config.Config, input string, numBits uint64, logger *zap.Logger) (*bitvec.BitVec, error) {
	f, err := os.Open(input)
	if err != nil {
		return nil, fmt.Errorf("failed to open input: %w", err)
	}
	defer f.Close()

	bv := bitvec.New(
		bitvec.WithInitialBits(cfg.InitialBits),
		bitvec.WithFill(cfg.Fill),
		bitvec.WithLogger(logger),
	)
	br := bitstream.NewReader(bufio.NewReader(f), bitstream.WithChunkSize(int(cfg.ChunkSize)))

	limit := numBits
	if limit == 0 {
		limit = math.MaxUint64
	}
	step := 8 * uint64(cfg.ChunkSize)

	for bv.Len() < limit {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		n := limit - bv.Len()
		if n > step {
			n = step
		}
		_, err := br.ReadInto(bv, n)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read input: %w", err)
		}
	}

	if numBits != 0 && bv.Len() < numBits {
		return nil, fmt.Errorf("input is too short; requested: %d bits, available: %d bits", numBits, bv.Len())
	}

	logger.Info("packed input",
		zap.String("input", input),
		zap.Uint64("bits", bv.Len()),
	)
	return bv, nil
}

func save(filename string, bv *bitvec.BitVec, logger *zap.Logger) error {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, shared.OwnerReadWriteExec); err != nil {
		return fmt.Errorf("dir creation failure: %w", err)
	}

	required := persistence.HeaderSize + shared.BytesForBits(bv.Len())
	if err := shared.CheckAvailableSpace(dir, required); err != nil {
		return err
	}

	return persistence.Save(filename, bv, persistence.WithLogger(logger))
}
