package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/segmentio/ksuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ssargent/mcapidx/pkg/catalog"
	"github.com/ssargent/mcapidx/pkg/mcap"
)

// openCatalog opens the scan catalog under the configured data directory
func openCatalog(e *env) (*catalog.Catalog, error) {
	if err := os.MkdirAll(e.cfg.DataDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}
	return catalog.Open(filepath.Join(e.cfg.DataDir, "catalog"))
}

// indexCmd represents the index command
var indexCmd = &cobra.Command{
	Use:   "index <file>...",
	Short: "Scan MCAP files and store the results in the catalog",
	Long: `Scan one or more MCAP files and save every result in the catalog.
The printed IDs can be passed to show and delete.

Examples:
  mcapidx index a.mcap b.mcap
  mcapidx index recording.mcap --strict --data-dir ./data`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e := envFrom(cmd)
		opts := scanOptions(cmd, e.cfg)

		cat, err := openCatalog(e)
		if err != nil {
			return err
		}
		defer cat.Close()

		scanner := newScanner(e)
		out := cmd.OutOrStdout()
		for _, path := range args {
			res, err := scanner.ScanFile(cmd.Context(), path, opts, nil)
			if err != nil {
				return err
			}
			id, err := cat.Save(res)
			if err != nil {
				return fmt.Errorf("failed to save scan of %s: %w", path, err)
			}
			e.logger.Info("indexed file", zap.String("path", path), zap.Stringer("id", id))
			fmt.Fprintf(out, "%s\t%s\n", id, path)
		}
		return nil
	},
}

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List catalogued scans",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		if err := checkFormat(format); err != nil {
			return err
		}

		cat, err := openCatalog(envFrom(cmd))
		if err != nil {
			return err
		}
		defer cat.Close()

		entries, err := cat.List()
		if err != nil {
			return err
		}
		return outputEntries(cmd.OutOrStdout(), entries, format)
	},
}

// showCmd represents the show command
var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a catalogued scan",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		showRecords, _ := cmd.Flags().GetBool("records")
		if err := checkFormat(format); err != nil {
			return err
		}

		id, err := ksuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid scan id %q: %w", args[0], err)
		}

		cat, err := openCatalog(envFrom(cmd))
		if err != nil {
			return err
		}
		defer cat.Close()

		entry, err := cat.Get(id)
		if err != nil {
			return err
		}

		var records []mcap.Record
		if showRecords {
			if records, err = cat.Records(id); err != nil {
				return err
			}
		}
		return outputEntry(cmd.OutOrStdout(), entry, records, format)
	},
}

// deleteCmd represents the delete command
var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a catalogued scan",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := ksuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid scan id %q: %w", args[0], err)
		}

		cat, err := openCatalog(envFrom(cmd))
		if err != nil {
			return err
		}
		defer cat.Close()

		if err := cat.Delete(id); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted scan %s\n", id)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(deleteCmd)

	indexCmd.Flags().Bool("strict", false, "Fail when a file ends without the footer magic")
	listCmd.Flags().StringP("format", "f", formatTable, "Output format (table, json)")
	showCmd.Flags().StringP("format", "f", formatTable, "Output format (table, json)")
	showCmd.Flags().Bool("records", false, "List the stored record descriptors")
}
