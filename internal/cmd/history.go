// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"gnoagent/internal/exterrors"
	"gnoagent/internal/history"
)

func newHistoryCommand() *cobra.Command {
	var limit int
	var historyDB string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent provisioning runs, newest first.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := history.Open(historyDB)
			if err != nil {
				return exterrors.Wrap(
					exterrors.Dependency(
						exterrors.CodeHistoryFailed,
						fmt.Sprintf("opening history database %s", historyDB),
						"pass --history-db with the path used by provision",
					),
					err,
				)
			}
			defer store.Close()

			runs, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}

			if len(runs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No provisioning runs recorded.")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "CREATED\tAGENT\tAGENT ID\tMODEL\tDELETED\tRUN ID")
			for _, run := range runs {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n",
					run.CreatedAt.Local().Format(time.DateTime),
					run.AgentName,
					run.AgentID,
					run.Model,
					run.DeletedCount,
					run.RunID,
				)
			}

			return w.Flush()
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10, "Maximum number of runs to show. 0 shows all.")
	addHistoryFlag(cmd.Flags(), &historyDB, "Provisioning history database.")

	return cmd
}
