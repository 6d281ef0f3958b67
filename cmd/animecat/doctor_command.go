package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"animecat/internal/preflight"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	var network bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check directories, the store, and optionally Shikimori reachability",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			results := preflight.RunAll(commandCtx(cmd), cfg, network)
			failed := preflight.Failed(results)

			if ctx.JSONMode() {
				if err := writeJSON(cmd, results); err != nil {
					return err
				}
			} else {
				tbl := newListTable(false, column{title: "Check"}, column{title: "Status"}, column{title: "Detail"})
				for _, r := range results {
					status := "ok"
					if !r.Passed {
						status = "FAIL"
					}
					tbl.add(r.Name, status, r.Detail)
				}
				fmt.Fprintln(cmd.OutOrStdout(), tbl)
			}
			if failed {
				return errors.New("one or more checks failed")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&network, "network", false, "Also query the Shikimori API")
	return cmd
}
