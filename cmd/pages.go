package main

import (
	"fmt"

	"github.com/Payphone-Digital/storefront/pkg/pagination"
	"github.com/spf13/cobra"
)

var (
	pagesCurrent int
	pagesTotal   int
	pagesRange   int
)

var pagesCmd = &cobra.Command{
	Use:   "pages",
	Short: "Print the pagination render plan",
	Long: `Prints the pagination bar for one page of a listing, with the current page
in brackets.

Example:
  storefront pages --page 10 --total 20
  1 2 ... 8 9 [10] 11 12 ... 19 20`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		plan, err := pagination.Compute(pagesCurrent, pagesTotal, pagesRange)
		if err != nil {
			return err
		}

		controls := pagination.ControlsFor(pagesCurrent, pagesTotal)
		fmt.Fprintln(cmd.OutOrStdout(), plan.Format(pagesCurrent))
		fmt.Fprintf(cmd.OutOrStdout(), "prev disabled: %t, next disabled: %t\n",
			controls.PrevDisabled, controls.NextDisabled)
		return nil
	},
}

func init() {
	pagesCmd.Flags().IntVar(&pagesCurrent, "page", 1, "current page")
	pagesCmd.Flags().IntVar(&pagesTotal, "total", 1, "number of pages")
	pagesCmd.Flags().IntVar(&pagesRange, "range", pagination.DefaultRange, "pages shown on each side of the current page")
	_ = pagesCmd.MarkFlagRequired("total")
}
