package commands

import (
	"errors"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/lariat/internal/config"
	"github.com/Sumatoshi-tech/lariat/pkg/intern"
	"github.com/Sumatoshi-tech/lariat/pkg/persist"
)

const (
	packCmdUse   = "pack <file>..."
	packCmdShort = "Intern tokens from files and write a snapshot"

	unpackCmdUse   = "unpack <snapshot>"
	unpackCmdShort = "Restore a snapshot and dump its vocabulary"

	outputFlag   = "output"
	outputShort  = "o"
	outputUsage  = "snapshot output path"
	codecFlag    = "codec"
	codecUsage   = `snapshot codec: "raw" or "lz4"`
	countFlag    = "count"
	countUsage   = "print only the number of restored strings"
	unpackArgLen = 1
)

// ErrNoOutputPath is returned when the pack --output flag is not set.
var ErrNoOutputPath = errors.New("output path is required (use --output)")

// ErrUnknownCodec indicates an unrecognized codec name.
var ErrUnknownCodec = errors.New(`unknown codec (expected "raw" or "lz4")`)

// codecByName maps a codec name to its implementation.
func codecByName(name string) (persist.Codec, error) {
	switch name {
	case "raw":
		return persist.NewRawCodec(), nil
	case "lz4":
		return persist.NewLZ4Codec(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCodec, name)
	}
}

// NewPackCommand creates the pack subcommand.
func NewPackCommand() *cobra.Command {
	var (
		outputPath string
		codecName  string
	)

	cmd := &cobra.Command{
		Use:   packCmdUse,
		Short: packCmdShort,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if outputPath == "" {
				return ErrNoOutputPath
			}

			cfg, err := loadCommandConfig(cmd)
			if err != nil {
				return err
			}

			if codecName == "" {
				codecName = cfg.Persist.Codec
			}

			return runPack(cfg, args, outputPath, codecName, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&outputPath, outputFlag, outputShort, "", outputUsage)
	cmd.Flags().StringVar(&codecName, codecFlag, "", codecUsage)

	return cmd
}

func runPack(cfg *config.Config, paths []string, outputPath, codecName string, out io.Writer) error {
	codec, err := codecByName(codecName)
	if err != nil {
		return err
	}

	limit, err := cfg.MemoryLimitBytes()
	if err != nil {
		return err
	}

	rodeo := intern.New(internerOptions(limit, cfg.Interner.MaxKeys, cfg.Interner.Capacity)...)

	tokens, err := internFiles(rodeo, paths)
	if err != nil {
		return err
	}

	saveErr := persist.Save(outputPath, rodeo, codec)
	if saveErr != nil {
		return saveErr
	}

	stats := rodeo.Stats()

	color.New(color.FgGreen).Fprintf(out, "packed %d distinct strings (%s arena) from %d tokens into %s\n",
		stats.Interned, humanize.IBytes(uint64(stats.ArenaBytes)), tokens, outputPath)

	return nil
}

// NewUnpackCommand creates the unpack subcommand.
func NewUnpackCommand() *cobra.Command {
	var (
		codecName string
		countOnly bool
	)

	cmd := &cobra.Command{
		Use:   unpackCmdUse,
		Short: unpackCmdShort,
		Args:  cobra.ExactArgs(unpackArgLen),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadCommandConfig(cmd)
			if err != nil {
				return err
			}

			if codecName == "" {
				codecName = cfg.Persist.Codec
			}

			return runUnpack(args[0], codecName, countOnly, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&codecName, codecFlag, "", codecUsage)
	cmd.Flags().BoolVar(&countOnly, countFlag, false, countUsage)

	return cmd
}

func runUnpack(path, codecName string, countOnly bool, out io.Writer) error {
	codec, err := codecByName(codecName)
	if err != nil {
		return err
	}

	rodeo, err := persist.Load(path, codec)
	if err != nil {
		return err
	}

	if countOnly {
		fmt.Fprintln(out, rodeo.Len())

		return nil
	}

	for _, s := range rodeo.All() {
		fmt.Fprintln(out, s)
	}

	return nil
}
