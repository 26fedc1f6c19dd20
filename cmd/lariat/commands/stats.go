// Package commands implements CLI command handlers for lariat.
package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/lariat/internal/config"
	"github.com/Sumatoshi-tech/lariat/pkg/intern"
	"github.com/Sumatoshi-tech/lariat/pkg/safeconv"
)

const (
	statsCmdUse   = "stats <file>..."
	statsCmdShort = "Intern tokens from files and report interner statistics"

	memoryLimitFlag  = "memory-limit"
	memoryLimitUsage = `arena memory limit, e.g. "64MiB" (empty = unbounded)`
	maxKeysFlag      = "max-keys"
	maxKeysUsage     = "maximum number of distinct strings (0 = unbounded)"
	jsonFlag         = "json"
	jsonUsage        = "emit statistics as JSON"
)

// statsReport is the JSON shape of the stats command output.
type statsReport struct {
	Tokens      int     `json:"tokens"`
	Strings     int     `json:"strings"`
	DedupHits   uint64  `json:"dedup_hits"`
	DedupMisses uint64  `json:"dedup_misses"`
	DedupRatio  float64 `json:"dedup_ratio"`
	ArenaBytes  int     `json:"arena_bytes"`
	ArenaBlocks int     `json:"arena_blocks"`
	MemoryLimit int     `json:"memory_limit,omitempty"`
}

// NewStatsCommand creates the stats subcommand.
func NewStatsCommand() *cobra.Command {
	var (
		memoryLimit string
		maxKeys     int
		asJSON      bool
	)

	cmd := &cobra.Command{
		Use:   statsCmdUse,
		Short: statsCmdShort,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadCommandConfig(cmd)
			if err != nil {
				return err
			}

			if memoryLimit != "" {
				cfg.Interner.MemoryLimit = memoryLimit
			}

			if maxKeys > 0 {
				cfg.Interner.MaxKeys = maxKeys
			}

			// Flag overrides bypass Load's validation; re-check them.
			validateErr := cfg.Validate()
			if validateErr != nil {
				return validateErr
			}

			return runStats(cfg, args, asJSON, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&memoryLimit, memoryLimitFlag, "", memoryLimitUsage)
	cmd.Flags().IntVar(&maxKeys, maxKeysFlag, 0, maxKeysUsage)
	cmd.Flags().BoolVar(&asJSON, jsonFlag, false, jsonUsage)

	return cmd
}

// loadCommandConfig loads the config honoring the root --config flag.
func loadCommandConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path, _ = cmd.Root().PersistentFlags().GetString("config")
	}

	return config.Load(path)
}

func runStats(cfg *config.Config, paths []string, asJSON bool, out io.Writer) error {
	limit, err := cfg.MemoryLimitBytes()
	if err != nil {
		return err
	}

	rodeo := intern.New(internerOptions(limit, cfg.Interner.MaxKeys, cfg.Interner.Capacity)...)

	tokens, err := internFiles(rodeo, paths)
	if err != nil {
		return err
	}

	stats := rodeo.Stats()

	report := statsReport{
		Tokens:      tokens,
		Strings:     stats.Interned,
		DedupHits:   stats.DedupHits,
		DedupMisses: stats.DedupMisses,
		DedupRatio:  stats.DedupRatio(),
		ArenaBytes:  stats.ArenaBytes,
		ArenaBlocks: stats.ArenaBlocks,
	}
	if stats.MemoryLimit < safeconv.MaxInt {
		report.MemoryLimit = stats.MemoryLimit
	}

	if asJSON {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")

		return encoder.Encode(report)
	}

	renderStatsTable(report, out)

	return nil
}

func renderStatsTable(report statsReport, out io.Writer) {
	tbl := table.NewWriter()
	tbl.SetOutputMirror(out)
	tbl.SetStyle(table.StyleLight)

	tbl.AppendHeader(table.Row{"Metric", "Value"})
	tbl.AppendRow(table.Row{"Tokens scanned", report.Tokens})
	tbl.AppendRow(table.Row{"Distinct strings", report.Strings})
	tbl.AppendRow(table.Row{"Dedup hits", report.DedupHits})
	tbl.AppendRow(table.Row{"Dedup misses", report.DedupMisses})
	tbl.AppendRow(table.Row{"Dedup ratio", fmt.Sprintf("%.2f%%", report.DedupRatio*percentScale)})
	tbl.AppendRow(table.Row{"Arena bytes", humanize.IBytes(uint64(report.ArenaBytes))})
	tbl.AppendRow(table.Row{"Arena blocks", report.ArenaBlocks})

	if report.MemoryLimit > 0 {
		tbl.AppendRow(table.Row{"Memory limit", humanize.IBytes(uint64(report.MemoryLimit))})
	}

	tbl.Render()

	color.New(color.FgGreen).Fprintf(out, "interned %d distinct strings from %d tokens\n",
		report.Strings, report.Tokens)
}

// percentScale converts a ratio to a percentage.
const percentScale = 100
