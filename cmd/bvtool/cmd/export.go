package cmd

import (
	"bytes"
	"fmt"
	"path/filepath"

	"github.com/natefinch/atomic"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spacemeshos/bitvec/bitvec"
	"github.com/spacemeshos/bitvec/shared"
)

// exportCmd represents the export command.
var exportCmd = &cobra.Command{
	Use:   "export <snapshot> <output>",
	Short: "Write the raw bits of a snapshot to a file",
	Long: `export writes the content of a snapshot as plain bytes, most-significant bit
first. The last byte is zero-padded if the number of bits isn't a multiple of 8.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		bv, err := load(cfg, snapshotPath(cfg, args[0]), logger)
		if err != nil {
			return err
		}
		return export(bv, args[1], logger)
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
}

func export(bv *bitvec.BitVec, output string, logger *zap.Logger) error {
	var buf bytes.Buffer
	n, err := bv.WriteTo(&buf)
	if err != nil {
		return fmt.Errorf("failed to export: %w", err)
	}

	if err := shared.CheckAvailableSpace(filepath.Dir(output), uint64(n)); err != nil {
		return err
	}
	if err := atomic.WriteFile(output, &buf); err != nil {
		return fmt.Errorf("write to disk failure: %w", err)
	}

	logger.Info("exported snapshot",
		zap.String("output", output),
		zap.Uint64("bits", bv.Len()),
		zap.Int64("bytes", n),
	)
	return nil
}
