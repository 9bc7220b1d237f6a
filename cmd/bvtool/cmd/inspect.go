package cmd

import (
	"encoding/hex"
	"fmt"
	"io"
	"math/bits"
	"strconv"

	"code.cloudfoundry.org/bytefmt"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spacemeshos/bitvec/bitvec"
	"github.com/spacemeshos/bitvec/config"
	"github.com/spacemeshos/bitvec/persistence"
)

var inspectPreview int

// inspectCmd represents the inspect command.
var inspectCmd = &cobra.Command{
	Use:   "inspect <snapshot>",
	Short: "Print a summary of a snapshot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		bv, err := load(cfg, snapshotPath(cfg, args[0]), logger)
		if err != nil {
			return err
		}
		inspect(cmd.OutOrStdout(), bv, inspectPreview)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)

	inspectCmd.Flags().IntVar(&inspectPreview, "preview", 64, "number of leading bytes to hex dump (0 disables)")
}

func load(cfg *config.Config, filename string, logger *zap.Logger) (*bitvec.BitVec, error) {
	return persistence.Load(filename,
		persistence.WithLogger(logger),
		persistence.WithMaxSize(cfg.MaxSnapshotSize),
	)
}

func inspect(w io.Writer, bv *bitvec.BitVec, preview int) {
	data, numBits := bv.ToArray()

	var ones uint64
	for _, b := range data {
		ones += uint64(bits.OnesCount8(b))
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"bits", "bytes", "size", "capacity", "ones", "zeros"})
	table.SetBorder(true)
	table.Append([]string{
		strconv.FormatUint(numBits, 10),
		strconv.Itoa(len(data)),
		bytefmt.ByteSize(uint64(len(data))),
		strconv.FormatUint(bv.Cap(), 10),
		strconv.FormatUint(ones, 10),
		strconv.FormatUint(numBits-ones, 10),
	})
	table.Render()

	if preview > len(data) {
		preview = len(data)
	}
	if preview > 0 {
		fmt.Fprint(w, hex.Dump(data[:preview]))
	}
}
