package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zjrosen/intermix/internal/flags"
	"github.com/zjrosen/intermix/internal/presentation"
)

var capsOutput string

var capsCmd = &cobra.Command{
	Use:   "caps [term]",
	Short: "Print the capability database of a terminal type",
	Long: `Print the string capabilities intermix resolves for a terminal type, with
each value shown quoted and as hex bytes.

Without an argument the configured term is used, then $TERM, then dumb.

Examples:
  intermix caps
  intermix caps xterm-256color
  intermix caps screen --output text`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCaps,
}

func init() {
	capsCmd.Flags().StringVarP(&capsOutput, "output", "o", presentation.FormatYAML, "output format: yaml, json or text")
	rootCmd.AddCommand(capsCmd)
}

func runCaps(cmd *cobra.Command, args []string) error {
	term := cfg.Term
	if len(args) == 1 {
		term = args[0]
	}

	formatter, err := presentation.NewFormatter(cmd.OutOrStdout(), capsOutput)
	if err != nil {
		return err
	}

	logger, cleanup, err := openLogger(cfg)
	if err != nil {
		return fmt.Errorf("initializing logging: %w", err)
	}
	defer cleanup()

	resolver := newResolver(cfg, flags.New(cfg.Flags, logger), logger)
	db, err := resolver.Resolve(cmd.Context(), term)
	if err != nil {
		return err
	}
	return formatter.FormatDatabase(presentation.FromDatabase(db))
}
