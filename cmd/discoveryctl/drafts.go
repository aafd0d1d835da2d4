package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ekaya-inc/ekaya-discovery/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-discovery/pkg/database"
	"github.com/ekaya-inc/ekaya-discovery/pkg/drafts"
)

type draftsOptions struct {
	*globalOptions
	dir string
}

// open opens the badger draft directory. The caller closes the mirror.
func (o *draftsOptions) open() (*drafts.BadgerMirror, error) {
	logger := o.logger()
	db, err := database.OpenBadger(database.BadgerConfig{Path: o.dir, Logger: logger})
	if err != nil {
		return nil, fmt.Errorf("open drafts directory %s: %w", o.dir, err)
	}
	return drafts.NewBadgerMirror(db, 0, logger), nil
}

func newDraftsCmd(global *globalOptions) *cobra.Command {
	opts := &draftsOptions{globalOptions: global}

	cmd := &cobra.Command{
		Use:   "drafts",
		Short: "List, show or clear drafts in a local badger directory",
	}
	cmd.PersistentFlags().StringVar(&opts.dir, "dir", "./data/drafts", "Badger drafts directory")

	cmd.AddCommand(
		newDraftsListCmd(opts),
		newDraftsShowCmd(opts),
		newDraftsClearCmd(opts),
	)
	return cmd
}

func newDraftsListCmd(opts *draftsOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored drafts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			mirror, err := opts.open()
			if err != nil {
				return err
			}
			defer mirror.Close()

			recs, err := mirror.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(recs) == 0 {
				cmd.Println("No drafts.")
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tPROJECT\tENTITIES\tFLOWS\tROLES")
			for _, r := range recs {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\n", r.ID, r.DisplayName(), len(r.Entities), len(r.Flows), len(r.Roles))
			}
			return tw.Flush()
		},
	}
}

func newDraftsShowCmd(opts *draftsOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Print a draft as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mirror, err := opts.open()
			if err != nil {
				return err
			}
			defer mirror.Close()

			rec, err := mirror.Load(cmd.Context(), args[0])
			if errors.Is(err, apperrors.ErrNotFound) {
				return fmt.Errorf("no draft with id %s", args[0])
			}
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(rec)
		},
	}
}

func newDraftsClearCmd(opts *draftsOptions) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "clear [ID...]",
		Short: "Delete drafts by id, or every draft with --all",
		RunE: func(cmd *cobra.Command, args []string) error {
			if all == (len(args) > 0) {
				return errors.New("pass draft ids or --all, not both")
			}

			mirror, err := opts.open()
			if err != nil {
				return err
			}
			defer mirror.Close()

			ids := args
			if all {
				recs, err := mirror.List(cmd.Context())
				if err != nil {
					return err
				}
				for _, r := range recs {
					ids = append(ids, r.ID)
				}
			}

			for _, id := range ids {
				if err := mirror.Delete(cmd.Context(), id); err != nil {
					return err
				}
			}
			cmd.Printf("Cleared %d draft(s).\n", len(ids))
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "Delete every draft")
	return cmd
}
