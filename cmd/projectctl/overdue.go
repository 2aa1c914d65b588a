package main

import (
	"github.com/spf13/cobra"

	"github.com/amirhosseinghanipour/gestproj/internal/application/overdue"
)

func newOverdueScanCmd(get func() *app) *cobra.Command {
	var pageSize int
	cmd := &cobra.Command{
		Use:   "overdue-scan",
		Short: "Emit project.overdue for every late project",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			n, err := overdue.RunOverdueScan(cmd.Context(), a.projectRepo, a.emitter, pageSize, a.now())
			if err != nil {
				return err
			}
			return a.print(map[string]int{"emitted": n})
		},
	}
	cmd.Flags().IntVar(&pageSize, "page-size", overdue.DefaultPageSize, "projects read per page")
	return cmd
}
