package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-discovery/pkg/models"
)

// globalOptions are the persistent flags shared by every subcommand.
type globalOptions struct {
	verbose bool
}

func (o *globalOptions) logger() *zap.Logger {
	if !o.verbose {
		return zap.NewNop()
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "discoveryctl",
		Short: "Inspect discovery records, drafts and diagrams",
		Long: `discoveryctl works on discovery records outside the server.

Subcommands:
  blueprint  - Derive diagrams and the size estimate from a record file
  drafts     - List, show or clear drafts in a local badger directory
  render     - Render a record's diagram through a Kroki server

Examples:
  discoveryctl blueprint -f record.json --format yaml
  discoveryctl drafts list --dir ./data/drafts
  discoveryctl render -f record.json --kind er -o er.svg`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log diagnostic output to stderr")

	root.AddCommand(
		newBlueprintCmd(opts),
		newDraftsCmd(opts),
		newRenderCmd(opts),
	)
	return root
}

// readRecord loads a record exported as JSON. "-" reads stdin.
func readRecord(cmd *cobra.Command, path string) (models.DiscoveryRecord, error) {
	var rec models.DiscoveryRecord

	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return rec, fmt.Errorf("read record: %w", err)
	}

	if err := json.Unmarshal(data, &rec); err != nil {
		return rec, fmt.Errorf("parse record %s: %w", path, err)
	}
	return rec, nil
}
