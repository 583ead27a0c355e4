package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ssargent/mcapidx/pkg/scan"
)

// headerCmd represents the header command
var headerCmd = &cobra.Command{
	Use:   "header <file>",
	Short: "Print the header record of an MCAP file",
	Long: `Validate the magic of an MCAP file and decode its header record.
Only the start of the file is read.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		if err := checkFormat(format); err != nil {
			return err
		}

		e := envFrom(cmd)
		reader, err := scan.NewFileReader(scan.ReaderConfig{
			FilePath:   args[0],
			BufferSize: e.cfg.Scan.BufferSize,
		})
		if err != nil {
			return err
		}
		defer reader.Close()

		return outputHeader(cmd.OutOrStdout(), args[0], reader.HeaderRecord(), reader.Header(), format)
	},
}

// recordsCmd represents the records command
var recordsCmd = &cobra.Command{
	Use:   "records <file>",
	Short: "Stream the record descriptors of an MCAP file",
	Long: `Walk an MCAP file and print one line per record as it is read.
Unlike scan, nothing is collected in memory.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e := envFrom(cmd)
		opts := scanOptions(cmd, e.cfg)

		reader, err := scan.NewFileReader(scan.ReaderConfig{
			FilePath:   args[0],
			BufferSize: opts.BufferSize,
			Strict:     opts.Strict,
		})
		if err != nil {
			return err
		}
		defer reader.Close()

		out := cmd.OutOrStdout()
		it := reader.Iterator()
		defer it.Close()

		head := reader.HeaderRecord()
		fmt.Fprintf(out, "%d\t%s\t%d\n", head.Offset, head.Op, head.BodyLen)
		for it.Next() {
			if err := cmd.Context().Err(); err != nil {
				return err
			}
			rec := it.Record()
			fmt.Fprintf(out, "%d\t%s\t%d\n", rec.Offset, rec.Op, rec.BodyLen)
		}
		if err := it.Err(); err != nil {
			return err
		}

		e.logger.Debug("walked records",
			zap.String("path", args[0]),
			zap.Uint64("end_offset", reader.Offset()),
			zap.Stringer("terminator", reader.Terminator()))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(headerCmd)
	rootCmd.AddCommand(recordsCmd)

	headerCmd.Flags().StringP("format", "f", formatTable, "Output format (table, json)")
	recordsCmd.Flags().Bool("strict", false, "Fail when the file ends without the footer magic")
}
