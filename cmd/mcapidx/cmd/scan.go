package cmd

import (
	"github.com/spf13/cobra"
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan <file>",
	Short: "Validate an MCAP file and summarize its records",
	Long: `Validate the magic and header of an MCAP file, then walk every record
up to the footer magic without reading record bodies.

Examples:
  mcapidx scan recording.mcap
  mcapidx scan recording.mcap --strict --records
  mcapidx scan recording.mcap --format json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		showRecords, _ := cmd.Flags().GetBool("records")
		if err := checkFormat(format); err != nil {
			return err
		}

		e := envFrom(cmd)
		opts := scanOptions(cmd, e.cfg)
		opts.KeepRecords = showRecords

		res, err := newScanner(e).ScanFile(cmd.Context(), args[0], opts, nil)
		if err != nil {
			return err
		}
		return outputResult(cmd.OutOrStdout(), res, format)
	},
}

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().Bool("strict", false, "Fail when the file ends without the footer magic")
	scanCmd.Flags().Bool("records", false, "List every record descriptor")
	scanCmd.Flags().StringP("format", "f", formatTable, "Output format (table, json)")
}
